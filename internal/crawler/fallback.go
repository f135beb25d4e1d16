package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/FranksOps/hotwatch/internal/browser"
	"github.com/FranksOps/hotwatch/internal/metrics"
	"github.com/FranksOps/hotwatch/internal/model"
)

// PageExtractor pulls trending items out of a rendered page. The real
// implementation drives a headless browser; tests substitute stubs.
type PageExtractor interface {
	Extract(ctx context.Context, pageURL string, limit int) (*model.Result, error)
	Close() error
}

// FallbackCrawler composes a primary strategy with a browser extraction
// step. The expensive path runs only when the primary yields no usable
// data. If the browser engine fails to start once, the fallback stays
// unavailable for this crawler's lifetime.
type FallbackCrawler struct {
	primary   Strategy
	extractor PageExtractor
	cfg       Config
	logger    *slog.Logger

	unavailable bool
}

// NewFallbackCrawler wraps primary with the given extractor. The
// extractor may be nil when fallback is disabled.
func NewFallbackCrawler(primary Strategy, extractor PageExtractor, cfg Config, logger *slog.Logger) *FallbackCrawler {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackCrawler{
		primary:   primary,
		extractor: extractor,
		cfg:       cfg,
		logger:    logger,
	}
}

// Fetch tries the primary strategy first. A non-empty primary result is
// returned immediately; otherwise the browser extraction runs when
// enabled and available.
func (c *FallbackCrawler) Fetch(ctx context.Context) (*model.Result, error) {
	result, err := c.primary.Fetch(ctx)
	if err == nil && result.Total > 0 {
		c.logger.Info("primary strategy succeeded", "total", result.Total)
		return result, nil
	}
	if err != nil {
		c.logger.Warn("primary strategy failed", "err", err)
	} else {
		c.logger.Warn("primary strategy returned no items")
	}

	if !c.cfg.BrowserFallback || c.extractor == nil {
		if err != nil {
			return nil, err
		}
		return nil, ErrNoData
	}
	if c.unavailable {
		// Engine refused to start earlier; the primary outcome stands.
		c.logger.Debug("browser fallback marked unavailable")
		if err != nil {
			return nil, err
		}
		return nil, ErrNoData
	}

	c.logger.Info("invoking browser fallback", "endpoint", c.cfg.Endpoint)
	result, ferr := c.extractor.Extract(ctx, c.cfg.Endpoint, c.cfg.Limit)
	if ferr != nil {
		metrics.RecordFallback(false)
		if errors.Is(ferr, browser.ErrEngineStart) {
			// Don't retry a browser that can't launch.
			c.unavailable = true
			c.logger.Error("browser engine failed to start, disabling fallback", "err", ferr)
			if err != nil {
				return nil, err
			}
			return nil, ErrFallbackUnavailable
		}
		return nil, fmt.Errorf("crawler: browser fallback: %w", ferr)
	}

	if result.Total == 0 {
		metrics.RecordFallback(false)
		c.logger.Warn("browser fallback extracted no items")
		return nil, ErrNoData
	}

	metrics.RecordFallback(true)
	c.logger.Info("browser fallback succeeded", "total", result.Total)
	return result, nil
}

// Close releases the primary strategy and the extractor. Teardown errors
// are logged, never propagated: they must not block process exit.
func (c *FallbackCrawler) Close() error {
	if err := c.primary.Close(); err != nil {
		c.logger.Error("closing primary strategy", "err", err)
	}
	if c.extractor != nil {
		if err := c.extractor.Close(); err != nil {
			c.logger.Error("closing browser extractor", "err", err)
		}
	}
	return nil
}
