package fingerprint

import (
	"net/http"
	"testing"
)

func TestTransport_KnownProfiles(t *testing.T) {
	for _, p := range []Profile{ProfileChrome, ProfileFirefox, ProfileSafari, ProfileGo} {
		t.Run(string(p), func(t *testing.T) {
			rt, err := Transport(p)
			if err != nil {
				t.Fatalf("unexpected error for %s: %v", p, err)
			}
			if _, ok := rt.(*http.Transport); !ok {
				t.Fatalf("expected *http.Transport, got %T", rt)
			}
		})
	}
}

func TestTransport_EmptyDefaultsToChrome(t *testing.T) {
	rt, err := Transport("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := rt.(*http.Transport)
	if tr.DialTLSContext == nil {
		t.Error("expected uTLS dialer for default profile")
	}
}

func TestTransport_UnknownProfile(t *testing.T) {
	if _, err := Transport("netscape"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestTransport_GoProfileIsPlain(t *testing.T) {
	rt, err := Transport(ProfileGo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr := rt.(*http.Transport)
	if tr.DialTLSContext != nil {
		t.Error("go profile should not install a custom TLS dialer")
	}
}
