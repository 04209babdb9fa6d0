package auth

import "context"

// RequestState is the per-request authentication state. It replaces
// type-keyed extension storage with named optional fields: each field may or
// may not be populated by the time the resolver runs.
type RequestState struct {
	// TrustedUserID is set by the session verifier when the request carried
	// a valid session cookie. Nil means no verified session.
	TrustedUserID *int64
}

// stateKey is a private type for the request-state context key.
type stateKey struct{}

// WithRequestState attaches the state to the context.
func WithRequestState(ctx context.Context, s *RequestState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

// StateFromContext returns the request state, or nil when the session
// middleware is not installed.
func StateFromContext(ctx context.Context) *RequestState {
	if s, ok := ctx.Value(stateKey{}).(*RequestState); ok {
		return s
	}
	return nil
}

// userKey is a private type for the authenticated-user context key.
type userKey struct{}

// contextWithUser stores the resolved identity for downstream handlers.
func contextWithUser(ctx context.Context, u AuthenticatedUser) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFromContext retrieves the identity resolved by Middleware.
// The second return is false on routes that are not guarded.
func UserFromContext(ctx context.Context) (AuthenticatedUser, bool) {
	u, ok := ctx.Value(userKey{}).(AuthenticatedUser)
	return u, ok
}
