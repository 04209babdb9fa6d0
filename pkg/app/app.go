// Package app holds the process-wide service singleton and the middleware
// that attaches it to each request. The singleton is passed as an explicit
// handle rather than read from package-level state, so tests can substitute
// their own stores and keys.
package app

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cargoport/cargoport/pkg/config"
	"github.com/cargoport/cargoport/pkg/storage"
)

// App bundles the shared, read-mostly services every request needs: the
// configuration, the storage pool, the session-verification key, and the
// logger. One App exists per process; requests share it by reference.
type App struct {
	Config     *config.Config
	Store      storage.Store
	SessionKey []byte
	Logger     *slog.Logger
}

// New assembles an App. A nil logger falls back to slog.Default.
func New(cfg *config.Config, store storage.Store, sessionKey []byte, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		Config:     cfg,
		Store:      store,
		SessionKey: sessionKey,
		Logger:     logger,
	}
}

// appKey is a private type for the handle context key.
type appKey struct{}

// handle is the per-request attachment of the App. It is explicitly
// detached at request teardown; a missing handle at that point is a
// programming error.
type handle struct {
	mu  sync.Mutex
	app *App
}

// Middleware attaches the App handle to the request context before the
// handler runs and detaches it afterward. Detaching twice, or finding the
// handle already gone at teardown, panics: some code broke the
// one-attachment-per-request invariant.
func (a *App) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := &handle{app: a}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), appKey{}, h)))

		h.mu.Lock()
		defer h.mu.Unlock()
		if h.app == nil {
			panic("app: handle already detached at request teardown")
		}
		h.app = nil
	})
}

// FromContext returns the App attached to the request context. It panics if
// the handle is absent or already detached: callers must run inside
// Middleware, so a miss is unrecoverable.
func FromContext(ctx context.Context) *App {
	h, ok := ctx.Value(appKey{}).(*handle)
	if !ok {
		panic("app: missing App in request context (App middleware not installed?)")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.app == nil {
		panic("app: App handle used after request teardown")
	}
	return h.app
}
