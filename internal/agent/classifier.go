package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apex/log"

	"rural-health-assistant/internal/apperr"
)

// Prediction is what the symptom classification model answers with.
type Prediction struct {
	Symptom        string
	PredictedClass string
}

// SymptomClassifier posts free-text symptoms to the model-serving backend.
type SymptomClassifier struct {
	url        string
	timeout    time.Duration
	httpClient *http.Client
}

func NewSymptomClassifier(url string, timeout time.Duration) *SymptomClassifier {
	return &SymptomClassifier{
		url:        url,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
}

type classifyRequest struct {
	Symptom string `json:"symptom"`
}

const symptomService = "symptom-classifier"

func (c *SymptomClassifier) Classify(ctx context.Context, text string) (p Prediction, err error) {
	started := time.Now()
	defer func() { observe(symptomService, started, err) }()

	if c.url == "" {
		return Prediction{}, apperr.New(apperr.ConfigurationError, "symptom backend URL is not configured")
	}

	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(classifyRequest{Symptom: text})
	if err != nil {
		return Prediction{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Prediction{}, apperr.Wrap(apperr.ConfigurationError, err, "invalid symptom backend URL")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Refused, timed out or reset: no response either way.
		return Prediction{}, apperr.Wrap(apperr.UpstreamUnavailable, err, "Failed to connect to backend service")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Prediction{}, apperr.Wrap(apperr.UpstreamUnavailable, err, "Failed to read backend response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.WithFields(log.Fields{"status": resp.StatusCode, "body": truncate(string(raw), 200)}).
			Warn("symptom classifier returned an error status")
		return Prediction{}, apperr.Upstream(resp.StatusCode, fmt.Sprintf("Backend error: %d", resp.StatusCode))
	}

	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return Prediction{}, apperr.Wrap(apperr.InvalidUpstreamResponse, err, "Invalid response from backend")
	}

	symptom, ok := out["symptom"].(string)
	if !ok || strings.TrimSpace(symptom) == "" {
		return Prediction{}, apperr.New(apperr.InvalidUpstreamResponse, "Invalid symptom response from backend")
	}
	class, ok := out["predicted_class"].(string)
	if !ok || strings.TrimSpace(class) == "" {
		return Prediction{}, apperr.New(apperr.InvalidUpstreamResponse, "Invalid predicted class from backend")
	}

	return Prediction{Symptom: symptom, PredictedClass: class}, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
