// Package auth resolves the identity of the caller for each request and
// enforces that authenticated requests originate from this site.
//
// Resolution is a strict two-path decision: a trusted user id placed in the
// request state by the session verifier wins; otherwise the Authorization
// header is treated as an opaque API token and looked up in storage. Before
// either path runs, the Origin header (every occurrence) is checked against
// the origin this server believes it is being served from, rejecting
// cross-site credential use.
//
// Failures come out classified (forbidden wrapping an internal cause), with
// one exception: the revoked-insecure-token signal from storage is passed
// through untouched so the HTTP boundary can tell the user to generate a
// new token instead of returning a generic rejection.
package auth
