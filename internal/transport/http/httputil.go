package httptransport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	dErrors "rollcall/pkg/domain-errors"
)

// decodeJSON decodes the request body into T, writing a 400 on failure.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var payload T
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		logger.Warn("malformed request body", "path", r.URL.Path, "error", err)
		writeError(w, dErrors.Wrap(err, dErrors.CodeInvalidInput, "malformed request body"))
		var zero T
		return zero, false
	}
	return payload, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError centralizes domain error translation to HTTP responses, keeping
// a consistent JSON error envelope.
func writeError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	writeJSON(w, statusFor(code), map[string]string{
		"code":  string(code),
		"error": err.Error(),
	})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeAlreadyRecorded:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
