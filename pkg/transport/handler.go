package transport

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/app"
	"github.com/cargoport/cargoport/pkg/auth"
)

// NewHandler builds the route mux. Everything under /v1 runs behind the
// auth middleware; /healthz and the metrics endpoint do not.
func NewHandler(metricsEnabled bool, metricsPath string) http.Handler {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /v1/me", handleMe)
	apiMux.HandleFunc("GET /v1/me/tokens", handleMeTokens)

	mux := http.NewServeMux()
	mux.Handle("/v1/", auth.Middleware(apiMux))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	if metricsEnabled {
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
		mux.Handle("GET "+metricsPath, promhttp.Handler())
	}

	return mux
}

// handleMe returns the authenticated caller's user record, re-fetched from
// storage.
func handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		WriteError(w, api.Internal("route not guarded by auth middleware"))
		return
	}

	conn, err := app.FromContext(ctx).Store.Acquire(ctx)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer conn.Release()

	u, err := user.FindUser(ctx, conn)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		User *api.User `json:"user"`
	}{User: u})
}

// handleMeTokens lists the caller's live API tokens, newest first.
func handleMeTokens(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user, ok := auth.UserFromContext(ctx)
	if !ok {
		WriteError(w, api.Internal("route not guarded by auth middleware"))
		return
	}

	conn, err := app.FromContext(ctx).Store.Acquire(ctx)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer conn.Release()

	tokens, err := conn.ListTokensForUser(ctx, user.UserID())
	if err != nil {
		WriteError(w, api.InternalWrap("listing tokens", err))
		return
	}
	if tokens == nil {
		tokens = []api.APIToken{}
	}

	writeJSON(w, http.StatusOK, struct {
		Tokens []api.APIToken `json:"tokens"`
	}{Tokens: tokens})
}

// writeJSON serializes v with the proper content type.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
