package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/pkg/heat"
	"github.com/FranksOps/hotwatch/pkg/httpclient"
)

// SourceAPI tags results retrieved through the paid API.
const SourceAPI = "api"

// APICrawler fetches the trending list from a third-party data API. The
// API is assumed reliable per call, so there is no retry at this layer:
// the key either works or the run fails.
type APICrawler struct {
	cfg    Config
	key    string
	client *httpclient.Client
	logger *slog.Logger
}

// apiEnvelope is the API response shell. Code 200 marks success.
type apiEnvelope struct {
	Code int        `json:"code"`
	Msg  string     `json:"msg"`
	Data []apiEntry `json:"data"`
}

// apiEntry uses json.Number for rank and keeps viewnum as a string: the
// upstream mixes "5" and "1100.9w" style values freely.
type apiEntry struct {
	Name     string      `json:"name"`
	Rank     json.Number `json:"rank"`
	ViewNum  string      `json:"viewnum"`
	URL      string      `json:"url"`
	WordType string      `json:"word_type"`
}

// NewAPICrawler creates the API strategy. The key is checked up front;
// without it no network call is ever made.
func NewAPICrawler(key string, cfg Config, logger *slog.Logger) (*APICrawler, error) {
	if key == "" {
		return nil, ErrMissingCredential
	}
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
	})
	if err != nil {
		return nil, fmt.Errorf("crawler: create API client: %w", err)
	}

	return &APICrawler{cfg: cfg, key: key, client: client, logger: logger}, nil
}

// Fetch issues a single GET with the credential as a query parameter and
// parses the returned list. Item-level problems are skipped with a
// warning; an empty Result is a valid success outcome.
func (c *APICrawler) Fetch(ctx context.Context) (*model.Result, error) {
	reqURL, err := url.Parse(c.cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("crawler: invalid API endpoint: %w", err)
	}
	q := reqURL.Query()
	q.Set("key", c.key)
	reqURL.RawQuery = q.Encode()

	c.logger.Info("calling trending API", "endpoint", c.cfg.Endpoint)

	req, err := http.NewRequest(http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("crawler: build API request: %w", err)
	}

	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("crawler: API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("crawler: API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("crawler: read API response: %w", err)
	}

	var envelope apiEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("crawler: decode API response: %w", err)
	}
	if envelope.Code != 200 {
		return nil, fmt.Errorf("crawler: API error code %d: %s", envelope.Code, envelope.Msg)
	}

	return c.parseEntries(envelope.Data), nil
}

func (c *APICrawler) parseEntries(entries []apiEntry) *model.Result {
	result := model.NewResult(SourceAPI)

	if len(entries) > c.cfg.Limit {
		entries = entries[:c.cfg.Limit]
	}

	for idx, entry := range entries {
		if entry.Name == "" {
			c.logger.Warn("entry missing term, skipping", "position", idx+1)
			continue
		}

		rank := idx + 1
		if r, err := entry.Rank.Int64(); err == nil && r > 0 {
			rank = int(r)
		}

		category := entry.WordType
		if category == "" {
			category = "热"
		}

		result.AddItem(model.Item{
			Word:      entry.Name,
			Heat:      heat.Parse(entry.ViewNum),
			Rank:      rank,
			URL:       entry.URL,
			Category:  category,
			Tags:      []string{},
			CreatedAt: result.CrawlTime,
		})
		c.logger.Debug("parsed trending entry", "word", entry.Name, "viewnum", entry.ViewNum)
	}

	c.logger.Info("parsed API entries", "total", result.Total)
	return result
}

// Close is a no-op; the API strategy holds no persistent resources.
func (c *APICrawler) Close() error {
	return nil
}
