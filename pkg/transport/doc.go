// Package transport exposes the HTTP surface of the cargoport gateway.
//
// Routes under /v1 are guarded by the auth middleware; /healthz and the
// metrics endpoint bypass it. Handlers pull the shared App handle and the
// resolved identity from the request context, so the full middleware chain
// (requestlog, metrics, app injector, session verifier) must be installed
// around the handler returned by NewHandler.
//
// Error responses use the JSON envelope from pkg/api; the outermost error
// classification decides the status code.
package transport
