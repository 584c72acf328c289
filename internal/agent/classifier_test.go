package agent

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rural-health-assistant/internal/apperr"
)

func TestSymptomClassifierSuccess(t *testing.T) {
	var got classifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"symptom": "fever", "predicted_class": "viral_fever", "score": 0.9}`)
	}))
	defer srv.Close()

	c := NewSymptomClassifier(srv.URL, 5*time.Second)
	p, err := c.Classify(context.Background(), "fever and chills")

	require.NoError(t, err)
	assert.Equal(t, "fever and chills", got.Symptom)
	assert.Equal(t, Prediction{Symptom: "fever", PredictedClass: "viral_fever"}, p)
}

func TestSymptomClassifierInvalidResponse(t *testing.T) {
	cases := map[string]string{
		"missing symptom": `{"predicted_class": "viral_fever"}`,
		"numeric class":   `{"symptom": "fever", "predicted_class": 3}`,
		"empty class":     `{"symptom": "fever", "predicted_class": ""}`,
		"not json":        `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, body)
			}))
			defer srv.Close()

			_, err := NewSymptomClassifier(srv.URL, time.Second).Classify(context.Background(), "fever")
			assert.Equal(t, apperr.InvalidUpstreamResponse, apperr.KindOf(err))
			assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))
		})
	}
}

func TestSymptomClassifierUpstreamStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	_, err := NewSymptomClassifier(srv.URL, time.Second).Classify(context.Background(), "fever")

	assert.Equal(t, apperr.UpstreamError, apperr.KindOf(err))
	assert.Equal(t, http.StatusUnprocessableEntity, apperr.HTTPStatus(err))
	assert.Equal(t, "Backend error: 422", apperr.MessageOf(err))
}

func TestSymptomClassifierUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewSymptomClassifier(url, time.Second).Classify(context.Background(), "fever")

	assert.Equal(t, apperr.UpstreamUnavailable, apperr.KindOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, apperr.HTTPStatus(err))
}

func TestSymptomClassifierTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewSymptomClassifier(srv.URL, 50*time.Millisecond).Classify(context.Background(), "fever")

	assert.Equal(t, apperr.UpstreamUnavailable, apperr.KindOf(err))
}

func TestSymptomClassifierNotConfigured(t *testing.T) {
	_, err := NewSymptomClassifier("", time.Second).Classify(context.Background(), "fever")
	assert.Equal(t, apperr.ConfigurationError, apperr.KindOf(err))
}
