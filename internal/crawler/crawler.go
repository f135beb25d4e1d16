// Package crawler implements the retrieval strategies for trending search
// terms: a paid API client, an HTTP scrape client with bounded retry, and
// a fallback orchestrator that layers a browser extraction attempt on top
// of the scrape path.
package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
)

var (
	// ErrMissingCredential is returned when the API strategy is created
	// without a key. This is a hard precondition, not a retryable error.
	ErrMissingCredential = errors.New("crawler: missing API credential")

	// ErrNoData means the strategy completed but produced no usable items.
	ErrNoData = errors.New("crawler: no trending data retrieved")

	// ErrFallbackUnavailable means the browser engine could not be started
	// and the fallback path is disabled for this crawler's lifetime.
	ErrFallbackUnavailable = errors.New("crawler: browser fallback unavailable")
)

// Strategy retrieves one trending snapshot. A nil error with an empty
// Result is a valid outcome (the source had nothing); total failure is
// reported through the error.
type Strategy interface {
	Fetch(ctx context.Context) (*model.Result, error)
	Close() error
}

// Config holds the retrieval parameters shared by the strategies.
type Config struct {
	// Endpoint is the trending list URL (API base or page to scrape).
	Endpoint string
	// Timeout bounds each individual HTTP request.
	Timeout time.Duration
	// MaxRetries caps the scrape attempt count.
	MaxRetries int
	// RetryDelay is the base pre-request delay; each attempt waits a
	// random duration in [RetryDelay, RetryDelay+2s).
	RetryDelay time.Duration
	// UserAgent identifies the client. Empty selects from the rotation pool.
	UserAgent string
	// Proxies lists forward proxy URLs for the scrape transport. Empty
	// means direct connections.
	Proxies []string
	// Limit truncates the parsed item list.
	Limit int
	// BrowserFallback enables the headless-browser extraction when the
	// scrape path yields nothing.
	BrowserFallback bool
	// BrowserEngine names the browser to drive. Only "chromium" is supported.
	BrowserEngine string
	// Headless controls the browser window mode.
	Headless bool
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay < 0 {
		c.RetryDelay = 0
	}
	if c.Limit <= 0 {
		c.Limit = 50
	}
	if c.BrowserEngine == "" {
		c.BrowserEngine = "chromium"
	}
}
