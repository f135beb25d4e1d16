// Package bypass classifies blocked crawl responses. When a trending
// endpoint refuses a request, knowing which anti-bot layer triggered tells
// the operator whether retrying is worth anything or the browser fallback
// is the only way in.
package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response carries the parts of an HTTP response the detectors inspect.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Detector examines a response and reports whether a bot protection
// mechanism blocked or challenged the request.
type Detector func(res Response) (detected bool, source string)

// DefaultDetectors returns the standard detector chain.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectCaptcha,
	}
}

// Classify runs the response through the detectors and returns the first
// protection source that matches, or "" when none do.
func Classify(res Response, detectors []Detector) string {
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return source
		}
	}
	return ""
}

func detectCloudflare(res Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}

	if strings.Contains(strings.ToLower(res.Headers.Get("Server")), "cloudflare") {
		return true, "Cloudflare"
	}

	for _, sig := range [][]byte{
		[]byte("cf-browser-verification"),
		[]byte("cf-turnstile"),
		[]byte("Attention Required! | Cloudflare"),
	} {
		if bytes.Contains(res.Body, sig) {
			return true, "Cloudflare"
		}
	}
	return false, ""
}

func detectAkamai(res Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}

	if strings.Contains(strings.ToLower(res.Headers.Get("Server")), "akamai") {
		return true, "Akamai"
	}

	// Akamai block pages carry a generic "Reference #" denial
	if bytes.Contains(res.Body, []byte("Reference #")) && bytes.Contains(res.Body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

// detectCaptcha catches generic human-verification interstitials that the
// vendor-specific detectors miss.
func detectCaptcha(res Response) (bool, string) {
	if res.StatusCode < http.StatusBadRequest {
		return false, ""
	}

	lower := bytes.ToLower(res.Body)
	if bytes.Contains(lower, []byte("captcha")) || bytes.Contains(lower, []byte("verify you are human")) {
		return true, "Captcha"
	}
	return false, ""
}
