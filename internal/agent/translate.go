package agent

import (
	"context"
	"time"

	"google.golang.org/api/option"
	translate "google.golang.org/api/translate/v2"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/config"
)

const translateService = "translate"

// GoogleTranslate is the Cloud Translation v2 backend of language.Translator.
type GoogleTranslate struct {
	timeout time.Duration
	svc     lazy[*translate.Service]
}

func NewGoogleTranslate(cfg config.GoogleConfig, timeout time.Duration, extra ...option.ClientOption) *GoogleTranslate {
	t := &GoogleTranslate{timeout: timeout}
	t.svc.build = func() (*translate.Service, error) {
		opts, err := googleOptions(cfg, extra)
		if err != nil {
			return nil, err
		}
		svc, err := translate.NewService(context.Background(), opts...)
		if err != nil {
			return nil, apperr.Wrap(apperr.ConfigurationError, err, "failed to create translation client")
		}
		return svc, nil
	}
	return t
}

// Translate translates plain text into the target language code.
func (t *GoogleTranslate) Translate(ctx context.Context, text, target string) (out string, err error) {
	started := time.Now()
	defer func() { observe(translateService, started, err) }()

	svc, err := t.svc.get()
	if err != nil {
		return "", err
	}

	ctx, cancel := withTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := svc.Translations.List([]string{text}, target).Format("text").Context(ctx).Do()
	if err != nil {
		return "", classify(translateService, err)
	}
	if resp == nil || len(resp.Translations) == 0 || resp.Translations[0] == nil {
		return "", apperr.New(apperr.InvalidUpstreamResponse, "empty translation response")
	}
	return resp.Translations[0].TranslatedText, nil
}
