package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/app"
	"github.com/cargoport/cargoport/pkg/storage/memory"
)

// serve runs a request through app middleware + auth middleware into a
// handler that reports whether an identity was injected.
func serve(t *testing.T, a *app.App, mutate func(*http.Request)) (*httptest.ResponseRecorder, *AuthenticatedUser) {
	t.Helper()

	var injected *AuthenticatedUser
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := UserFromContext(r.Context()); ok {
			injected = &u
		}
		w.WriteHeader(http.StatusOK)
	})

	handler := a.Middleware(Middleware(inner))

	r := httptest.NewRequest("GET", "/v1/me", nil)
	r.Host = "localhost:8080"
	if mutate != nil {
		mutate(r)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w, injected
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding error body %q: %v", w.Body.String(), err)
	}
	if resp.Error == nil {
		t.Fatalf("error body %q missing error field", w.Body.String())
	}
	return resp
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	st := memory.New()
	uid := st.AddUser("alice", "")
	st.AddToken(uid, "ci", "tok-middleware")
	a := app.New(nil, st, nil, nil)

	w, injected := serve(t, a, func(r *http.Request) {
		r.Header.Set("Authorization", "tok-middleware")
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if injected == nil {
		t.Fatal("no identity injected into handler context")
	}
	if injected.UserID() != uid {
		t.Errorf("UserID = %d, want %d", injected.UserID(), uid)
	}
}

func TestMiddlewareForbiddenResponse(t *testing.T) {
	a := app.New(nil, memory.New(), nil, nil)

	w, injected := serve(t, a, nil)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if injected != nil {
		t.Errorf("identity injected despite failure")
	}
	if resp := decodeError(t, w); resp.Error.Code != "forbidden" {
		t.Errorf("code = %q, want forbidden", resp.Error.Code)
	}
}

func TestMiddlewareRevokedResponse(t *testing.T) {
	st := memory.New()
	uid := st.AddUser("bob", "")
	st.AddLegacyToken(uid, "old", "tok-legacy")
	a := app.New(nil, st, nil, nil)

	w, _ := serve(t, a, func(r *http.Request) {
		r.Header.Set("Authorization", "tok-legacy")
	})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if resp := decodeError(t, w); resp.Error.Code != "token_revoked" {
		t.Errorf("code = %q, want token_revoked", resp.Error.Code)
	}
}

func TestMiddlewareOriginMismatchResponse(t *testing.T) {
	a := app.New(nil, memory.New(), nil, nil)

	w, _ := serve(t, a, func(r *http.Request) {
		r.Header.Set("Origin", "http://evil.example")
	})

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
