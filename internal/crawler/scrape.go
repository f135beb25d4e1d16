package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/hotwatch/internal/bypass"
	"github.com/FranksOps/hotwatch/internal/fingerprint"
	"github.com/FranksOps/hotwatch/internal/metrics"
	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/pkg/backoff"
	"github.com/FranksOps/hotwatch/pkg/httpclient"
	"github.com/FranksOps/hotwatch/pkg/proxy"
	"github.com/FranksOps/hotwatch/pkg/useragent"
)

// SourceWeb tags results retrieved by scraping the site directly.
const SourceWeb = "web"

// preDelaySpread widens the base retry delay; each attempt waits a random
// duration in [RetryDelay, RetryDelay+preDelaySpread).
const preDelaySpread = 2 * time.Second

// ScrapeCrawler fetches the trending list straight from the site with
// browser-like headers and a uTLS fingerprint, retrying transport
// failures with exponential backoff.
type ScrapeCrawler struct {
	cfg       Config
	client    *httpclient.Client
	uaPool    *useragent.Pool
	detectors []bypass.Detector
	logger    *slog.Logger

	// sleep is swapped out in tests to observe the wait schedule.
	sleep func(ctx context.Context, d time.Duration) error
}

type scrapeEntry struct {
	Word string      `json:"word"`
	Heat json.Number `json:"heat"`
	URL  string      `json:"url"`
}

// scrapePayload distinguishes a missing data key (malformed body) from an
// empty list (valid, just no trends right now).
type scrapePayload struct {
	Data *[]scrapeEntry `json:"data"`
}

// NewScrapeCrawler creates the scrape strategy. The transport presents a
// Chrome TLS fingerprint and every request carries the session headers a
// browser would send to the target site.
func NewScrapeCrawler(cfg Config, logger *slog.Logger) (*ScrapeCrawler, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	origin, err := siteOrigin(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("crawler: invalid scrape endpoint: %w", err)
	}

	transport, err := fingerprint.Transport(fingerprint.ProfileChrome)
	if err != nil {
		return nil, fmt.Errorf("crawler: build transport: %w", err)
	}

	if len(cfg.Proxies) > 0 {
		pool := proxy.NewPool(proxy.Config{})
		if err := pool.Add(cfg.Proxies...); err != nil {
			return nil, fmt.Errorf("crawler: %w", err)
		}
		if tr, ok := transport.(*http.Transport); ok {
			tr.Proxy = pool.ProxyFunc()
		}
	}

	uaPool := useragent.NewPool(nil)
	ua := cfg.UserAgent
	if ua == "" {
		ua = uaPool.Next()
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
		UseCookieJar: true,
		Transport:    transport,
		DefaultHeaders: map[string]string{
			"User-Agent":      ua,
			"Accept":          "application/json, text/plain, */*",
			"Accept-Language": "zh-CN,zh;q=0.9,en;q=0.8",
			"Referer":         origin + "/",
			"Origin":          origin,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("crawler: create scrape client: %w", err)
	}

	return &ScrapeCrawler{
		cfg:       cfg,
		client:    client,
		uaPool:    uaPool,
		detectors: bypass.DefaultDetectors(),
		logger:    logger,
		sleep:     backoff.Sleep,
	}, nil
}

// Fetch runs the bounded retry loop. Each attempt waits a jittered delay,
// issues the GET, and on failure backs off exponentially unless it was
// the last attempt.
func (c *ScrapeCrawler) Fetch(ctx context.Context) (*model.Result, error) {
	reqURL, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("crawler: invalid scrape endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("limit", fmt.Sprintf("%d", c.cfg.Limit))
	q.Set("sort", "heat")
	reqURL.RawQuery = q.Encode()

	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		c.logger.Info("scrape attempt", "attempt", attempt+1, "max", c.cfg.MaxRetries)

		if err := c.sleep(ctx, backoff.Jitter(c.cfg.RetryDelay, preDelaySpread)); err != nil {
			return nil, fmt.Errorf("crawler: cancelled before request: %w", err)
		}

		body, err := c.request(ctx, reqURL.String())
		if err == nil {
			return c.parsePayload(body)
		}
		lastErr = err
		c.logger.Warn("scrape attempt failed", "attempt", attempt+1, "err", err)

		if attempt == c.cfg.MaxRetries-1 {
			break
		}
		wait := backoff.Exponential(attempt)
		c.logger.Info("backing off before retry", "wait", wait)
		if err := c.sleep(ctx, wait); err != nil {
			return nil, fmt.Errorf("crawler: cancelled during backoff: %w", err)
		}
	}

	return nil, fmt.Errorf("crawler: all %d scrape attempts failed: %w", c.cfg.MaxRetries, lastErr)
}

// request performs one GET and returns the body on a 2xx response.
func (c *ScrapeCrawler) request(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if protection := bypass.Classify(bypass.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			Body:       body,
		}, c.detectors); protection != "" {
			c.logger.Warn("request blocked by anti-bot protection", "protection", protection)
			metrics.RecordChallenge(protection)
		}
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	return body, nil
}

// parsePayload decodes {data:[{word,heat,url}]}. A missing data key is a
// malformed body and fails the whole call; individual bad entries are
// skipped.
func (c *ScrapeCrawler) parsePayload(body []byte) (*model.Result, error) {
	var payload scrapePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("crawler: decode scrape response: %w", err)
	}
	if payload.Data == nil {
		return nil, fmt.Errorf("crawler: scrape response missing data key")
	}

	result := model.NewResult(SourceWeb)

	entries := *payload.Data
	if len(entries) > c.cfg.Limit {
		entries = entries[:c.cfg.Limit]
	}

	for idx, entry := range entries {
		if entry.Word == "" {
			c.logger.Warn("entry missing term, skipping", "position", idx+1)
			continue
		}

		heat := 0
		if f, err := entry.Heat.Float64(); err == nil && f > 0 {
			heat = int(f)
		}

		result.AddItem(model.Item{
			Word:      entry.Word,
			Heat:      heat,
			Rank:      idx + 1,
			URL:       entry.URL,
			Tags:      []string{},
			CreatedAt: result.CrawlTime,
		})
	}

	c.logger.Info("parsed scrape entries", "total", result.Total)
	return result, nil
}

// Close releases the cookie jar session. Nothing else is held.
func (c *ScrapeCrawler) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func siteOrigin(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("endpoint %q has no scheme or host", endpoint)
	}
	return u.Scheme + "://" + u.Host, nil
}
