package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/pkg/backoff"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// SourceBrowser tags results extracted from the rendered page.
const SourceBrowser = "browser"

// trendingSelector loosely matches the class names trending widgets use.
const trendingSelector = `[class*="hot-search"], [class*="trending"], [class*="hot"]`

// globalProbeJS scans the window namespace for structured objects whose
// key hints at trending data. It returns only the key names: the value
// shapes are source-dependent and not safe to serialize blindly.
const globalProbeJS = `() => {
	const hits = [];
	for (const key in window) {
		const k = key.toLowerCase();
		if (k.includes('hot') || k.includes('trending') || k.includes('search')) {
			try {
				const v = window[key];
				if (typeof v === 'object' && v !== null) {
					hits.push(key);
				}
			} catch (e) {
				// cross-origin or getter traps, skip
			}
		}
	}
	return hits;
}`

// Extractor loads the trending page in a stealth tab and pulls terms out
// of the DOM. It also runs two diagnostic probes (window globals and
// inline scripts) whose findings are logged but never mapped into the
// result: their shapes change with every frontend deploy.
type Extractor struct {
	engine *Engine
	cfg    Config
}

// NewExtractor creates an extractor backed by its own engine.
func NewExtractor(cfg Config) *Extractor {
	cfg.defaults()
	return &Extractor{engine: NewEngine(cfg), cfg: cfg}
}

// Extract navigates to the page, waits for it to settle, and returns the
// items found by the DOM heuristic. The tab is closed on every path.
func (e *Extractor) Extract(ctx context.Context, pageURL string, limit int) (*model.Result, error) {
	log := e.cfg.Logger

	b, err := e.engine.Browser()
	if err != nil {
		return nil, err
	}

	page, err := stealth.Page(b)
	if err != nil {
		return nil, fmt.Errorf("browser: create stealth page: %w", err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Error("closing page", "err", err)
		}
	}()

	if e.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: e.cfg.UserAgent}); err != nil {
			log.Warn("setting user agent", "err", err)
		}
	}

	navCtx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	log.Info("navigating", "url", pageURL)
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		log.Warn("wait load timeout", "err", err)
	}
	if err := page.Context(navCtx).WaitIdle(e.cfg.Timeout); err != nil {
		log.Warn("wait idle timeout", "err", err)
	}
	if err := backoff.Sleep(ctx, e.cfg.SettleDelay); err != nil {
		return nil, fmt.Errorf("browser: cancelled during settle: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("browser: read page html: %w", err)
	}
	log.Debug("page rendered", "bytes", len(html))

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("browser: parse page html: %w", err)
	}

	result := itemsFromDOM(doc, limit)

	// Diagnostic probes run even when the DOM heuristic already matched:
	// the extra signal is what tells us which extraction path to build
	// next when the markup shifts.
	e.probeGlobals(page)
	e.scanScripts(doc)

	log.Info("browser extraction finished", "total", result.Total)
	return result, nil
}

// Close shuts the engine down.
func (e *Extractor) Close() error {
	return e.engine.Close()
}

// itemsFromDOM applies the class-pattern heuristic: every element whose
// class loosely matches a trending naming pattern contributes its trimmed
// text as a term. Heat is unknown from the DOM alone and stays 0.
func itemsFromDOM(doc *goquery.Document, limit int) *model.Result {
	result := model.NewResult(SourceBrowser)

	doc.Find(trendingSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= limit {
			return false
		}
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return true
		}
		result.AddItem(model.Item{
			Word:      text,
			Heat:      0,
			Rank:      i + 1,
			Tags:      []string{},
			CreatedAt: result.CrawlTime,
		})
		return true
	})

	return result
}

// probeGlobals logs window keys that look like trending state.
func (e *Extractor) probeGlobals(page *rod.Page) {
	res, err := page.Eval(globalProbeJS)
	if err != nil {
		e.cfg.Logger.Debug("global-state probe failed", "err", err)
		return
	}

	var keys []string
	for _, v := range res.Value.Arr() {
		keys = append(keys, v.Str())
	}
	if len(keys) > 0 {
		e.cfg.Logger.Info("global-state probe found candidate keys", "keys", keys)
	}
}

// scanScripts logs how many inline scripts mention trending keywords.
func (e *Extractor) scanScripts(doc *goquery.Document) {
	count := 0
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		text := strings.ToLower(s.Text())
		if strings.Contains(text, "hot") || strings.Contains(text, "trending") {
			count++
		}
	})
	if count > 0 {
		e.cfg.Logger.Info("inline-script scan found candidates", "scripts", count)
	}
}
