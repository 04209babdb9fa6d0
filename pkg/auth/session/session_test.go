package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/cargoport/cargoport/pkg/auth"
)

var testKey = []byte("test-session-key")

func signSession(t *testing.T, key []byte, subject string, expires time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwtlib.NewNumericDate(expires),
		IssuedAt:  jwtlib.NewNumericDate(time.Now()),
	})
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("signing session token: %v", err)
	}
	return signed
}

// resolveState runs a request through the verifier middleware and returns
// the state the resolver would see.
func resolveState(t *testing.T, v *Verifier, cookie string) *auth.RequestState {
	t.Helper()

	var state *auth.RequestState
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = auth.StateFromContext(r.Context())
	}))

	r := httptest.NewRequest("GET", "/v1/me", nil)
	if cookie != "" {
		r.AddCookie(&http.Cookie{Name: "cargoport_session", Value: cookie})
	}
	handler.ServeHTTP(httptest.NewRecorder(), r)
	return state
}

func TestValidCookiePopulatesTrustedID(t *testing.T) {
	v := NewVerifier(testKey, "")
	cookie := signSession(t, testKey, "42", time.Now().Add(time.Hour))

	state := resolveState(t, v, cookie)

	if state == nil {
		t.Fatal("no request state attached")
	}
	if state.TrustedUserID == nil {
		t.Fatal("TrustedUserID not populated")
	}
	if *state.TrustedUserID != 42 {
		t.Errorf("TrustedUserID = %d, want 42", *state.TrustedUserID)
	}
}

func TestAbsentCookieLeavesStateEmpty(t *testing.T) {
	v := NewVerifier(testKey, "")

	state := resolveState(t, v, "")

	if state == nil {
		t.Fatal("state must be attached even without a cookie")
	}
	if state.TrustedUserID != nil {
		t.Errorf("TrustedUserID = %d, want nil", *state.TrustedUserID)
	}
}

func TestWrongKeyRejected(t *testing.T) {
	v := NewVerifier(testKey, "")
	cookie := signSession(t, []byte("other-key"), "42", time.Now().Add(time.Hour))

	state := resolveState(t, v, cookie)

	if state.TrustedUserID != nil {
		t.Errorf("forged cookie accepted")
	}
}

func TestExpiredCookieRejected(t *testing.T) {
	v := NewVerifier(testKey, "")
	cookie := signSession(t, testKey, "42", time.Now().Add(-time.Minute))

	state := resolveState(t, v, cookie)

	if state.TrustedUserID != nil {
		t.Errorf("expired cookie accepted")
	}
}

func TestNonNumericSubjectRejected(t *testing.T) {
	v := NewVerifier(testKey, "")
	cookie := signSession(t, testKey, "alice", time.Now().Add(time.Hour))

	state := resolveState(t, v, cookie)

	if state.TrustedUserID != nil {
		t.Errorf("non-numeric subject accepted")
	}
}

func TestNoKeyConfiguredRejectsEverything(t *testing.T) {
	v := NewVerifier(nil, "")
	cookie := signSession(t, []byte{}, "42", time.Now().Add(time.Hour))

	state := resolveState(t, v, cookie)

	if state.TrustedUserID != nil {
		t.Errorf("cookie accepted with no key configured")
	}
}

func TestCustomCookieName(t *testing.T) {
	v := NewVerifier(testKey, "registry_session")
	cookie := signSession(t, testKey, "7", time.Now().Add(time.Hour))

	var state *auth.RequestState
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state = auth.StateFromContext(r.Context())
	}))
	r := httptest.NewRequest("GET", "/v1/me", nil)
	r.AddCookie(&http.Cookie{Name: "registry_session", Value: cookie})
	handler.ServeHTTP(httptest.NewRecorder(), r)

	if state == nil || state.TrustedUserID == nil || *state.TrustedUserID != 7 {
		t.Errorf("custom cookie name not honored")
	}
}
