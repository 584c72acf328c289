package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	"rural-health-assistant/internal/apperr"
)

// DefaultImageCategory is used when the caller does not name one.
const DefaultImageCategory = "skin"

// Image is an uploaded photo as received from the client.
type Image struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageClassifier forwards photos to one of two CNN backends: skin images to
// the skin model, everything else to the mouth model.
type ImageClassifier struct {
	skinURL    string
	mouthURL   string
	timeout    time.Duration
	httpClient *http.Client
}

func NewImageClassifier(skinURL, mouthURL string, timeout time.Duration) *ImageClassifier {
	return &ImageClassifier{
		skinURL:    skinURL,
		mouthURL:   mouthURL,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

const imageService = "image-classifier"

func (c *ImageClassifier) endpoint(category string) string {
	if category == "" {
		category = DefaultImageCategory
	}
	if category == DefaultImageCategory {
		return c.skinURL
	}
	return c.mouthURL
}

// Classify uploads img and returns the backend's JSON answer untouched.
func (c *ImageClassifier) Classify(ctx context.Context, img Image, category string) (out json.RawMessage, err error) {
	if len(img.Data) == 0 {
		return nil, apperr.New(apperr.InvalidInput, "No file provided or invalid file format")
	}
	if !strings.HasPrefix(img.ContentType, "image/") {
		return nil, apperr.New(apperr.InvalidInput, "File must be an image")
	}

	started := time.Now()
	defer func() { observe(imageService, started, err) }()

	url := c.endpoint(category)
	if url == "" {
		return nil, apperr.New(apperr.ConfigurationError, "image backend URL is not configured")
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	name := img.Name
	if name == "" {
		name = "upload"
	}
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, apperr.Wrap(apperr.ConfigurationError, err, "invalid image backend URL")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	log.WithFields(log.Fields{"category": category, "url": url, "size": len(img.Data)}).Debug("forwarding image")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, err,
			"Backend service is not available. Please ensure the model server is running.")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, err, "No response from backend service")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperr.Upstream(resp.StatusCode, fmt.Sprintf("Backend error: %s", upstreamReason(raw, resp)))
	}

	if !json.Valid(raw) {
		return nil, apperr.New(apperr.InvalidUpstreamResponse, "Invalid response from backend")
	}
	return json.RawMessage(raw), nil
}

// upstreamReason prefers the backend's own {"error": ...} message over the
// HTTP status text.
func upstreamReason(raw []byte, resp *http.Response) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return http.StatusText(resp.StatusCode)
}
