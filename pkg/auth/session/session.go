// Package session verifies session cookies minted by the upstream login
// service. cargoport never issues sessions; it only checks the HMAC-signed
// cookie and, when valid, marks the request as carrying a trusted user id.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/cargoport/cargoport/pkg/auth"
)

// Verifier validates HS256-signed session cookies.
type Verifier struct {
	key        []byte
	cookieName string
}

// NewVerifier creates a Verifier. cookieName defaults to "cargoport_session"
// when empty.
func NewVerifier(key []byte, cookieName string) *Verifier {
	if cookieName == "" {
		cookieName = "cargoport_session"
	}
	return &Verifier{key: key, cookieName: cookieName}
}

// Middleware attaches the per-request auth state and, when the request
// carries a valid session cookie, populates the trusted user id. An absent,
// malformed, or expired cookie leaves the state empty so the resolver falls
// through to the token path.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := &auth.RequestState{}

		if id, err := v.verify(r); err == nil {
			state.TrustedUserID = &id
		} else if err != errNoCookie {
			slog.Debug("session cookie rejected", "error", err)
		}

		next.ServeHTTP(w, r.WithContext(auth.WithRequestState(r.Context(), state)))
	})
}

var errNoCookie = errors.New("no session cookie")

// verify parses and validates the session cookie and returns the user id
// from its subject claim.
func (v *Verifier) verify(r *http.Request) (int64, error) {
	cookie, err := r.Cookie(v.cookieName)
	if err != nil {
		return 0, errNoCookie
	}

	// An empty key would verify tokens signed with an empty key; refuse
	// rather than accept.
	if len(v.key) == 0 {
		return 0, fmt.Errorf("session verification disabled: no key configured")
	}

	token, err := jwtlib.ParseWithClaims(cookie.Value, &jwtlib.RegisteredClaims{},
		func(token *jwtlib.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwtlib.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return v.key, nil
		},
		jwtlib.WithValidMethods([]string{"HS256"}),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return 0, fmt.Errorf("invalid session token: %w", err)
	}

	claims, ok := token.Claims.(*jwtlib.RegisteredClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid session claims")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("session subject %q is not a user id: %w", claims.Subject, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("session subject %d out of range", id)
	}

	return id, nil
}
