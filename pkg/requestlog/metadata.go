// Package requestlog emits one structured log line per HTTP request and
// carries a per-request metadata bag that handlers and middleware can append
// to. The authentication layer records the resolved identity ("uid",
// "tokenid") through this bag so it shows up on the request's log line.
package requestlog

import (
	"context"
	"log/slog"
	"sync"
)

// metadataKey is a private type for the metadata context key.
type metadataKey struct{}

// Metadata is a mutable, request-scoped bag of log attributes. It is safe
// for concurrent use, although each request is normally handled on a single
// goroutine.
type Metadata struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// WithMetadata attaches a fresh metadata bag to the context.
func WithMetadata(ctx context.Context) context.Context {
	return context.WithValue(ctx, metadataKey{}, &Metadata{})
}

// Add records a custom key/value pair on the request's metadata bag. Calls
// on a context without a bag are dropped silently so library code can record
// unconditionally.
func Add(ctx context.Context, key string, value any) {
	m, ok := ctx.Value(metadataKey{}).(*Metadata)
	if !ok {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attrs = append(m.attrs, slog.Any(key, value))
}

// Attrs returns a snapshot of the attributes collected so far. Used by the
// logging middleware when emitting the request's log line.
func Attrs(ctx context.Context) []slog.Attr {
	m, ok := ctx.Value(metadataKey{}).(*Metadata)
	if !ok {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]slog.Attr, len(m.attrs))
	copy(out, m.attrs)
	return out
}
