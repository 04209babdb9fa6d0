package transport

import (
	"encoding/json"
	"net/http"

	"github.com/cargoport/cargoport/pkg/api"
)

// HTTPStatusFromError maps an error to the corresponding HTTP status code.
// Only the outermost classification counts; a forbidden error with an
// internal cause maps to 403. The revoked-token signal gets 401 so clients
// can distinguish "replace this token" from a plain rejection.
func HTTPStatusFromError(err error) int {
	switch {
	case api.IsTokenRevoked(err):
		return http.StatusUnauthorized
	case api.IsForbidden(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a JSON error response using the ErrorResponse
// envelope from pkg/api. It sets the Content-Type header and writes the
// HTTP status code.
func WriteErrorResponse(w http.ResponseWriter, detail *api.ErrorDetail, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: detail})
}

// WriteError writes an error response, deriving status and code from the
// error's classification. Internal causes are not leaked to the client.
func WriteError(w http.ResponseWriter, err error) {
	status := HTTPStatusFromError(err)

	var detail api.ErrorDetail
	switch status {
	case http.StatusUnauthorized:
		detail = api.ErrorDetail{Code: "token_revoked", Message: err.Error()}
	case http.StatusForbidden:
		detail = api.ErrorDetail{Code: "forbidden", Message: "must be logged in to perform that action"}
	default:
		detail = api.ErrorDetail{Code: "server_error", Message: "internal server error"}
	}

	WriteErrorResponse(w, &detail, status)
}
