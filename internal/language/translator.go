package language

import (
	"context"
	"strings"

	"github.com/apex/log"

	"rural-health-assistant/internal/metrics"
)

// Backend is the upstream translation capability.
type Backend interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

// Translator never fails: when the backend errors or answers with nothing,
// the input text is returned unchanged.
type Translator struct {
	backend Backend
}

func NewTranslator(backend Backend) *Translator {
	return &Translator{backend: backend}
}

// Translate returns text in the target language. ok is false when the result
// is the untranslated input because the backend failed.
func (t *Translator) Translate(ctx context.Context, text, target string) (string, bool) {
	code := Canonicalize(target)
	if code == English && IsLikelyEnglish(text) {
		return text, true
	}

	logger := log.WithFields(log.Fields{"target": code, "length": len(text)})
	if t.backend == nil {
		logger.Warn("translate: no backend configured, returning original text")
		metrics.Fallback("translation")
		return text, false
	}

	out, err := t.backend.Translate(ctx, text, code)
	if err != nil {
		logger.WithError(err).Warn("translate: upstream failed, returning original text")
		metrics.Fallback("translation")
		return text, false
	}
	if strings.TrimSpace(out) == "" {
		logger.Warn("translate: empty upstream output, returning original text")
		metrics.Fallback("translation")
		return text, false
	}
	return out, true
}
