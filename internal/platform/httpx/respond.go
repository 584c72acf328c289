// Package httpx holds the JSON response helpers shared by the HTTP handlers.
package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/apex/log"

	"rural-health-assistant/internal/apperr"
)

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Warn("failed to write response")
	}
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Fail answers with the status and message a classified error maps to.
// Unclassified errors are reported as fallback with a 500.
func Fail(w http.ResponseWriter, err error, fallback string) {
	status := apperr.HTTPStatus(err)
	msg := fallback
	if apperr.KindOf(err) != "" && apperr.KindOf(err) != apperr.ConfigurationError {
		msg = apperr.MessageOf(err)
	}
	Error(w, status, msg)
}

// Decode reads a JSON body into v. It reports an InvalidInput error for
// anything that is not a JSON object.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.InvalidInput, err, "Invalid request body")
	}
	return nil
}
