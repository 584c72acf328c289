package agent

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/config"
)

const geminiService = "gemini"

// Gemini generates text with the configured Gemini model.
type Gemini struct {
	model   string
	timeout time.Duration
	client  lazy[*genai.Client]
}

func NewGemini(cfg config.GeminiConfig, timeout time.Duration, opts ...option.ClientOption) *Gemini {
	g := &Gemini{model: cfg.Model, timeout: timeout}
	g.client.build = func() (*genai.Client, error) {
		if cfg.APIKey == "" {
			return nil, apperr.New(apperr.ConfigurationError, "GEMINI_API_KEY is not configured")
		}
		all := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
		client, err := genai.NewClient(context.Background(), all...)
		if err != nil {
			return nil, apperr.Wrap(apperr.ConfigurationError, err, "failed to create Gemini client")
		}
		return client, nil
	}
	return g
}

// Generate sends prompt with system as the system instruction and returns the
// model's text. An empty answer is an InvalidUpstreamResponse.
func (g *Gemini) Generate(ctx context.Context, system, prompt string) (text string, err error) {
	started := time.Now()
	defer func() { observe(geminiService, started, err) }()

	client, err := g.client.get()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	model := client.GenerativeModel(g.model)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classify(geminiService, err)
	}

	text = strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", apperr.New(apperr.InvalidUpstreamResponse, "No response from Gemini")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text.WriteString(string(t))
			}
		}
		// first candidate with content only
		if text.Len() > 0 {
			break
		}
	}
	return text.String()
}
