package transport

import (
	"log/slog"
	"net/http"

	"github.com/cargoport/cargoport/pkg/api"
)

// Recovery returns middleware that catches panics in handlers and converts
// them to server error responses. The server continues to accept new
// requests after a panic is recovered.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panicked",
					"path", r.URL.Path,
					"panic", rec,
				)
				WriteErrorResponse(w, &api.ErrorDetail{
					Code:    "server_error",
					Message: "internal server error",
				}, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
