package auth

import (
	"context"
	"net/http"

	"github.com/cargoport/cargoport/pkg/api"
	"github.com/cargoport/cargoport/pkg/app"
	"github.com/cargoport/cargoport/pkg/requestlog"
	"github.com/cargoport/cargoport/pkg/storage"
)

// AuthenticatedUser is the resolved identity of one request. It is
// immutable and comparable: two requests with identical credentials against
// unchanged backing state resolve to equal values.
type AuthenticatedUser struct {
	userID  int64
	tokenID int64 // 0 when the identity came from a cookie session
}

// UserID returns the principal's user id.
func (u AuthenticatedUser) UserID() int64 {
	return u.userID
}

// APITokenID returns the id of the API token the identity came from.
// The second return is false for cookie-session identities.
func (u AuthenticatedUser) APITokenID() (int64, bool) {
	if u.tokenID == 0 {
		return 0, false
	}
	return u.tokenID, true
}

// FindUser re-fetches the backing user row. An authenticated id is expected
// to reference an existing row, so any failure here, including not-found,
// is classified internal.
func (u AuthenticatedUser) FindUser(ctx context.Context, conn storage.Conn) (*api.User, error) {
	user, err := conn.FindUser(ctx, u.userID)
	if err != nil {
		return nil, api.InternalWrap("user_id from cookie or token not found in database", err)
	}
	return user, nil
}

// Authenticate resolves the caller's identity for the request or returns a
// classified error. The decision order is strict:
//
//  1. The Origin check runs first; a mismatch aborts before any identity
//     resolution.
//  2. A trusted user id in the request state (verified session cookie)
//     wins without touching storage.
//  3. Otherwise the Authorization header is looked up as an API token.
//
// On success the resolved identity is recorded on the request's log line
// ("uid", and "tokenid" for the token path).
func Authenticate(r *http.Request) (AuthenticatedUser, error) {
	if err := VerifyOrigin(r); err != nil {
		return AuthenticatedUser{}, err
	}

	ctx := r.Context()

	if state := StateFromContext(ctx); state != nil && state.TrustedUserID != nil {
		id := *state.TrustedUserID
		requestlog.Add(ctx, "uid", id)
		return AuthenticatedUser{userID: id}, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return AuthenticatedUser{}, api.ChainForbidden(api.Internal("no cookie session or auth header found"))
	}

	conn, err := app.FromContext(ctx).Store.Acquire(ctx)
	if err != nil {
		// Acquisition failure is not an authentication verdict; it
		// propagates unchanged.
		return AuthenticatedUser{}, err
	}
	defer conn.Release()

	token, err := conn.FindTokenByString(ctx, header)
	if err != nil {
		if api.IsTokenRevoked(err) {
			// The revoked signal must survive to the boundary intact.
			return AuthenticatedUser{}, err
		}
		return AuthenticatedUser{}, api.ChainForbidden(api.InternalWrap("invalid token", err))
	}

	user := AuthenticatedUser{userID: token.UserID, tokenID: token.ID}
	requestlog.Add(ctx, "uid", user.userID)
	requestlog.Add(ctx, "tokenid", user.tokenID)
	return user, nil
}
