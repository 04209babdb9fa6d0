package auth

import (
	"fmt"
	"net/http"

	"github.com/cargoport/cargoport/pkg/api"
)

// The Origin header is sent with CORS requests and POST requests and names
// the site the request came from. We don't want to accept authenticated
// requests that originated from other sites, so VerifyOrigin returns an
// error unless every Origin occurrence matches what "this site" is expected
// to be: the forwarded proto+host in production, or http://{host} in local
// development.
func VerifyOrigin(r *http.Request) error {
	expected := expectedOrigin(r)

	// A request without any Origin header passes; only a present,
	// mismatching value is rejected. The first offender wins.
	for _, origin := range r.Header.Values("Origin") {
		if origin != expected {
			msg := fmt.Sprintf(
				"only same-origin requests can be authenticated. expected %s, got %q",
				expected, origin,
			)
			return api.ChainForbidden(api.Internal(msg))
		}
	}
	return nil
}

// expectedOrigin computes the origin this server is being served from. If
// X-Forwarded-Host and X-Forwarded-Proto are both present, the reverse
// proxy is trusted to tell us the proto and host. Otherwise the scheme is
// forced to http: without the proxy we know we're serving plain HTTP
// locally, and r.Host covers both named hosts and socket addresses.
func expectedOrigin(r *http.Request) string {
	host, hasHost := headerFirst(r.Header, "X-Forwarded-Host")
	proto, hasProto := headerFirst(r.Header, "X-Forwarded-Proto")
	if hasHost && hasProto {
		return proto + "://" + host
	}
	return "http://" + r.Host
}

// headerFirst returns the first value of a header and whether the header is
// present at all. An empty first value still counts as present.
func headerFirst(h http.Header, key string) (string, bool) {
	vals := h.Values(key)
	if len(vals) == 0 {
		return "", false
	}
	return vals[0], true
}
