package agent

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rural-health-assistant/internal/apperr"
)

type capturedUpload struct {
	path     string
	filename string
	data     []byte
}

func imageBackend(t *testing.T, status int, body string, got *capturedUpload) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			got.path = r.URL.Path
			f, hdr, err := r.FormFile("file")
			if !assert.NoError(t, err) {
				return
			}
			defer f.Close()
			got.filename = hdr.Filename
			got.data, _ = io.ReadAll(f)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestImageClassifierRoutesByCategory(t *testing.T) {
	var upload capturedUpload
	srv := imageBackend(t, http.StatusOK, `{"prediction": "eczema", "confidence": 0.91}`, &upload)
	c := NewImageClassifier(srv.URL+"/cnn-predict", srv.URL+"/cnn-predict-mouth", time.Second)
	img := Image{Name: "rash.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")}

	out, err := c.Classify(context.Background(), img, "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"prediction": "eczema", "confidence": 0.91}`, string(out))
	assert.Equal(t, "/cnn-predict", upload.path)
	assert.Equal(t, "rash.jpg", upload.filename)
	assert.Equal(t, []byte("jpeg-bytes"), upload.data)

	_, err = c.Classify(context.Background(), img, "skin")
	require.NoError(t, err)
	assert.Equal(t, "/cnn-predict", upload.path)

	_, err = c.Classify(context.Background(), img, "mouth")
	require.NoError(t, err)
	assert.Equal(t, "/cnn-predict-mouth", upload.path)

	_, err = c.Classify(context.Background(), img, "teeth")
	require.NoError(t, err)
	assert.Equal(t, "/cnn-predict-mouth", upload.path)
}

func TestImageClassifierRejectsNonImage(t *testing.T) {
	c := NewImageClassifier("http://unused", "http://unused", time.Second)

	_, err := c.Classify(context.Background(), Image{Name: "notes.txt", ContentType: "text/plain", Data: []byte("hi")}, "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
	assert.Equal(t, "File must be an image", apperr.MessageOf(err))

	_, err = c.Classify(context.Background(), Image{ContentType: "image/png"}, "")
	assert.Equal(t, apperr.InvalidInput, apperr.KindOf(err))
}

func TestImageClassifierPassesUpstreamStatus(t *testing.T) {
	srv := imageBackend(t, http.StatusUnsupportedMediaType, `{"error": "unsupported image encoding"}`, nil)
	c := NewImageClassifier(srv.URL, srv.URL, time.Second)

	_, err := c.Classify(context.Background(), Image{Name: "a.png", ContentType: "image/png", Data: []byte{1}}, "skin")

	assert.Equal(t, http.StatusUnsupportedMediaType, apperr.HTTPStatus(err))
	assert.Equal(t, "Backend error: unsupported image encoding", apperr.MessageOf(err))
}

func TestImageClassifierStatusTextWithoutErrorBody(t *testing.T) {
	srv := imageBackend(t, http.StatusInternalServerError, `boom`, nil)
	c := NewImageClassifier(srv.URL, srv.URL, time.Second)

	_, err := c.Classify(context.Background(), Image{Name: "a.png", ContentType: "image/png", Data: []byte{1}}, "skin")

	assert.Equal(t, http.StatusInternalServerError, apperr.HTTPStatus(err))
	assert.Equal(t, "Backend error: Internal Server Error", apperr.MessageOf(err))
}

func TestImageClassifierUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewImageClassifier(url, url, time.Second)
	_, err := c.Classify(context.Background(), Image{Name: "a.png", ContentType: "image/png", Data: []byte{1}}, "skin")

	assert.Equal(t, http.StatusServiceUnavailable, apperr.HTTPStatus(err))
}
