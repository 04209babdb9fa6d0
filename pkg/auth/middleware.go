package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/observability"
)

// Middleware guards a route group: it resolves the caller's identity,
// injects it into the request context for handlers, and maps failures to
// JSON error responses.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := Authenticate(r)
		if err != nil {
			slog.Warn("authentication failed",
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
				"error", err,
			)
			writeAuthError(w, err)
			return
		}

		credential := "cookie"
		if _, ok := user.APITokenID(); ok {
			credential = "token"
		}
		observability.AuthAttemptsTotal.WithLabelValues(credential, "ok").Inc()

		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), user)))
	})
}

// writeAuthError maps an authentication failure to its HTTP response. The
// outermost classification decides the status; the revoked-token signal gets
// its own code so clients can prompt for token regeneration.
func writeAuthError(w http.ResponseWriter, err error) {
	var (
		status int
		detail api.ErrorDetail
	)
	switch {
	case api.IsTokenRevoked(err):
		observability.AuthAttemptsTotal.WithLabelValues("token", "revoked").Inc()
		status = http.StatusUnauthorized
		detail = api.ErrorDetail{Code: "token_revoked", Message: err.Error()}
	case api.IsForbidden(err):
		observability.AuthAttemptsTotal.WithLabelValues("any", "forbidden").Inc()
		status = http.StatusForbidden
		detail = api.ErrorDetail{Code: "forbidden", Message: "must be logged in to perform that action"}
	default:
		observability.AuthAttemptsTotal.WithLabelValues("any", "error").Inc()
		status = http.StatusInternalServerError
		detail = api.ErrorDetail{Code: "server_error", Message: "internal server error"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: &detail})
}
