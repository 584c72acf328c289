package agent

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"google.golang.org/api/option"
	speech "google.golang.org/api/speech/v1"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/config"
)

// DefaultSpeechLanguage is used when the client does not send a language.
const DefaultSpeechLanguage = "en-US"

const speechService = "speech-to-text"

// GoogleSpeech transcribes browser recordings (WebM/Opus at 48kHz).
type GoogleSpeech struct {
	timeout time.Duration
	svc     lazy[*speech.Service]
}

func NewGoogleSpeech(cfg config.GoogleConfig, timeout time.Duration, extra ...option.ClientOption) *GoogleSpeech {
	s := &GoogleSpeech{timeout: timeout}
	s.svc.build = func() (*speech.Service, error) {
		opts, err := googleOptions(cfg, extra)
		if err != nil {
			return nil, err
		}
		svc, err := speech.NewService(context.Background(), opts...)
		if err != nil {
			return nil, apperr.Wrap(apperr.ConfigurationError, err, "failed to create speech client")
		}
		return svc, nil
	}
	return s
}

// Transcribe returns the joined transcript of every recognized segment. No
// speech yields an empty transcript, not an error.
func (s *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, languageCode string) (transcript string, err error) {
	if len(audio) == 0 {
		return "", apperr.New(apperr.InvalidInput, "No audio file provided")
	}
	if languageCode == "" {
		languageCode = DefaultSpeechLanguage
	}

	started := time.Now()
	defer func() { observe(speechService, started, err) }()

	svc, err := s.svc.get()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	req := &speech.RecognizeRequest{
		Audio: &speech.RecognitionAudio{
			Content: base64.StdEncoding.EncodeToString(audio),
		},
		Config: &speech.RecognitionConfig{
			Encoding:                   "WEBM_OPUS",
			SampleRateHertz:            48000,
			LanguageCode:               languageCode,
			EnableAutomaticPunctuation: true,
			Model:                      "latest_long",
			UseEnhanced:                true,
		},
	}

	resp, err := svc.Speech.Recognize(req).Context(ctx).Do()
	if err != nil {
		return "", classify(speechService, err)
	}

	parts := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r == nil || len(r.Alternatives) == 0 || r.Alternatives[0] == nil {
			parts = append(parts, "")
			continue
		}
		parts = append(parts, r.Alternatives[0].Transcript)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}
