package agent

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"google.golang.org/api/option"
	texttospeech "google.golang.org/api/texttospeech/v1"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/config"
)

const ttsService = "text-to-speech"

// Voice selects a Cloud TTS voice.
type Voice struct {
	LanguageCode string
	Name         string
	SsmlGender   string
}

var voices = map[string]Voice{
	"en-US": {LanguageCode: "en-US", Name: "en-US-Standard-F", SsmlGender: "FEMALE"},
	"hi-IN": {LanguageCode: "hi-IN", Name: "hi-IN-Standard-A", SsmlGender: "FEMALE"},
	"ta-IN": {LanguageCode: "ta-IN", Name: "ta-IN-Standard-A", SsmlGender: "FEMALE"},
	"te-IN": {LanguageCode: "te-IN", Name: "te-IN-Standard-A", SsmlGender: "FEMALE"},
	"kn-IN": {LanguageCode: "kn-IN", Name: "kn-IN-Standard-A", SsmlGender: "FEMALE"},
	"ml-IN": {LanguageCode: "ml-IN", Name: "ml-IN-Standard-A", SsmlGender: "FEMALE"},
}

// VoiceFor returns the voice for a locale tag, falling back to US English.
func VoiceFor(language string) Voice {
	if v, ok := voices[language]; ok {
		return v
	}
	return voices["en-US"]
}

// GoogleVoice synthesizes MP3 speech with Cloud Text-to-Speech.
type GoogleVoice struct {
	timeout time.Duration
	svc     lazy[*texttospeech.Service]
}

func NewGoogleVoice(cfg config.GoogleConfig, timeout time.Duration, extra ...option.ClientOption) *GoogleVoice {
	v := &GoogleVoice{timeout: timeout}
	v.svc.build = func() (*texttospeech.Service, error) {
		opts, err := googleOptions(cfg, extra)
		if err != nil {
			return nil, err
		}
		svc, err := texttospeech.NewService(context.Background(), opts...)
		if err != nil {
			return nil, apperr.Wrap(apperr.ConfigurationError, err, "failed to create text-to-speech client")
		}
		return svc, nil
	}
	return v
}

func (v *GoogleVoice) Synthesize(ctx context.Context, text, language string) (audio []byte, err error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.New(apperr.InvalidInput, "Text is required")
	}

	started := time.Now()
	defer func() { observe(ttsService, started, err) }()

	svc, err := v.svc.get()
	if err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, v.timeout)
	defer cancel()

	voice := VoiceFor(language)
	req := &texttospeech.SynthesizeSpeechRequest{
		Input: &texttospeech.SynthesisInput{Text: text},
		Voice: &texttospeech.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.Name,
			SsmlGender:   voice.SsmlGender,
		},
		AudioConfig: &texttospeech.AudioConfig{
			AudioEncoding: "MP3",
			SpeakingRate:  1.0,
		},
	}

	resp, err := svc.Text.Synthesize(req).Context(ctx).Do()
	if err != nil {
		return nil, classify(ttsService, err)
	}
	if resp.AudioContent == "" {
		return nil, apperr.New(apperr.InvalidUpstreamResponse, "Failed to generate speech")
	}

	audio, err = base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return nil, apperr.Wrap(apperr.InvalidUpstreamResponse, err, "Failed to decode synthesized audio")
	}
	return audio, nil
}
