package auth

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNoOriginHeaderPasses(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Host = "anything.example:1234"

	if err := VerifyOrigin(r); err != nil {
		t.Fatalf("VerifyOrigin = %v, want nil", err)
	}
}

func TestForwardedHeadersMatch(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Header.Set("X-Forwarded-Host", "cargoport.dev")
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("Origin", "https://cargoport.dev")

	if err := VerifyOrigin(r); err != nil {
		t.Fatalf("VerifyOrigin = %v, want nil", err)
	}
}

func TestForwardedHeadersMismatch(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Header.Set("X-Forwarded-Host", "cargoport.dev")
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("Origin", "https://evil.example")

	err := VerifyOrigin(r)
	if err == nil {
		t.Fatal("VerifyOrigin = nil, want error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "https://cargoport.dev") {
		t.Errorf("error %q missing expected origin", msg)
	}
	if !strings.Contains(msg, "https://evil.example") {
		t.Errorf("error %q missing offending origin", msg)
	}
}

func TestLocalHostDerivation(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Host = "localhost:8080"
	r.Header.Set("Origin", "http://localhost:8080")

	if err := VerifyOrigin(r); err != nil {
		t.Fatalf("VerifyOrigin = %v, want nil", err)
	}

	// Socket addresses derive the same way.
	r.Host = "127.0.0.1:8080"
	r.Header.Set("Origin", "http://127.0.0.1:8080")
	if err := VerifyOrigin(r); err != nil {
		t.Fatalf("VerifyOrigin with socket host = %v, want nil", err)
	}
}

func TestSchemeForcedToHTTPWithoutProxy(t *testing.T) {
	// Only one forwarded header present: the proxy pair is incomplete, so
	// the host-derived http:// origin applies.
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Host = "localhost:8080"
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("Origin", "https://localhost:8080")

	if err := VerifyOrigin(r); err == nil {
		t.Fatal("VerifyOrigin = nil, want mismatch against http://localhost:8080")
	}
}

func TestFirstMismatchReported(t *testing.T) {
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Host = "localhost:8080"
	r.Header.Add("Origin", "http://localhost:8080")
	r.Header.Add("Origin", "http://first.bad")
	r.Header.Add("Origin", "http://second.bad")

	err := VerifyOrigin(r)
	if err == nil {
		t.Fatal("VerifyOrigin = nil, want error")
	}
	if !strings.Contains(err.Error(), "http://first.bad") {
		t.Errorf("error %q should report the first offender", err.Error())
	}
	if strings.Contains(err.Error(), "second.bad") {
		t.Errorf("error %q should not aggregate later offenders", err.Error())
	}
}

func TestEmptyForwardedValuesStillCount(t *testing.T) {
	// Present-but-empty forwarded headers yield the origin "://".
	r := httptest.NewRequest("POST", "/v1/me", nil)
	r.Header.Set("X-Forwarded-Host", "")
	r.Header.Set("X-Forwarded-Proto", "")
	r.Header.Set("Origin", "://")

	if err := VerifyOrigin(r); err != nil {
		t.Fatalf("VerifyOrigin = %v, want nil", err)
	}
}
