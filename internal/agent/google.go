package agent

import (
	"sync"

	"google.golang.org/api/option"

	"rural-health-assistant/internal/apperr"
	"rural-health-assistant/internal/config"
)

// googleOptions builds client options from the shared credentials. extra is
// appended last so callers can point a client at a different endpoint.
func googleOptions(cfg config.GoogleConfig, extra []option.ClientOption) ([]option.ClientOption, error) {
	var opts []option.ClientOption
	switch {
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	case cfg.APIKey != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	case len(extra) == 0:
		return nil, apperr.New(apperr.ConfigurationError,
			"Google credentials are not configured: set GOOGLE_API_KEY or GOOGLE_APPLICATION_CREDENTIALS")
	}
	return append(opts, extra...), nil
}

// lazy builds a client on first use and remembers the outcome, so a missing
// credential fails every call without retrying construction.
type lazy[T any] struct {
	once  sync.Once
	build func() (T, error)
	val   T
	err   error
}

func (l *lazy[T]) get() (T, error) {
	l.once.Do(func() {
		l.val, l.err = l.build()
	})
	return l.val, l.err
}
