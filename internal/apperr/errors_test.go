package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", New(InvalidInput, "Symptom text is required"), http.StatusBadRequest},
		{"unavailable", Wrap(UpstreamUnavailable, errors.New("dial tcp: refused"), "no response"), http.StatusServiceUnavailable},
		{"upstream status kept", Upstream(http.StatusNotFound, "Backend error: 404"), http.StatusNotFound},
		{"upstream status missing", Upstream(0, "odd"), http.StatusBadGateway},
		{"invalid upstream response", New(InvalidUpstreamResponse, "missing symptom"), http.StatusInternalServerError},
		{"configuration", New(ConfigurationError, "GEMINI_API_KEY is empty"), http.StatusInternalServerError},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	base := New(UpstreamUnavailable, "timeout")
	wrapped := fmt.Errorf("classify: %w", base)

	assert.Equal(t, UpstreamUnavailable, KindOf(wrapped))
	assert.True(t, Is(wrapped, UpstreamUnavailable))
	assert.False(t, Is(nil, UpstreamUnavailable))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, "timeout", MessageOf(wrapped))
}
