// Package browser drives a headless Chromium through Rod to extract
// trending terms from the rendered page when plain HTTP retrieval comes
// back empty.
package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// ErrEngineStart wraps launch or connect failures. Callers treat it as
// "no browser on this host" and stop trying.
var ErrEngineStart = errors.New("browser: engine failed to start")

// Config configures the browser engine.
type Config struct {
	// Engine names the browser. Only "chromium" is supported.
	Engine string
	// Headless controls window mode.
	Headless bool
	// Timeout bounds navigation and page waits.
	Timeout time.Duration
	// SettleDelay is the fixed wait after network idle before extraction;
	// the trending widget renders after the last fetch completes.
	SettleDelay time.Duration
	// UserAgent overrides the page identity when non-empty.
	UserAgent string

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Engine == "" {
		c.Engine = "chromium"
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = 5 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Engine owns the Chromium process and the Rod connection to it.
type Engine struct {
	cfg Config

	mu      sync.Mutex
	lnch    *launcher.Launcher
	browser *rod.Browser
}

// NewEngine creates an engine. Chromium is launched lazily on first use.
func NewEngine(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{cfg: cfg}
}

// Browser returns a connected Rod browser, launching Chromium on the
// first call. Launch failures are wrapped in ErrEngineStart.
func (e *Engine) Browser() (*rod.Browser, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		return e.browser, nil
	}

	if e.cfg.Engine != "chromium" {
		return nil, fmt.Errorf("%w: unsupported engine %q", ErrEngineStart, e.cfg.Engine)
	}

	l := launcher.New().
		Headless(e.cfg.Headless).
		Set("disable-blink-features", "AutomationControlled")

	wsURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch: %v", ErrEngineStart, err)
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("%w: connect: %v", ErrEngineStart, err)
	}

	e.lnch = l
	e.browser = b
	e.cfg.Logger.Info("browser engine started", "headless", e.cfg.Headless)
	return b, nil
}

// Close shuts down Chromium. Teardown errors are logged, never returned:
// a failed close must not block process exit.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.browser != nil {
		if err := e.browser.Close(); err != nil {
			e.cfg.Logger.Error("closing browser", "err", err)
		}
		e.browser = nil
	}
	if e.lnch != nil {
		e.lnch.Cleanup()
		e.lnch = nil
	}
	return nil
}
