// Package proxy rotates scrape traffic across a pool of forward proxies,
// disabling endpoints that keep failing until a cooldown passes.
package proxy

import (
	"bufio"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// endpoint is one proxy with its health counters.
type endpoint struct {
	url           *url.URL
	failures      int
	disabled      bool
	disabledUntil time.Time
}

// Pool hands out healthy proxies round-robin.
type Pool struct {
	mu          sync.Mutex
	endpoints   []*endpoint
	next        int
	maxFailures int
	cooldown    time.Duration
}

// Config tunes the health tracking.
type Config struct {
	// MaxFailures before an endpoint is temporarily disabled.
	MaxFailures int
	// Cooldown is how long a disabled endpoint sits out.
	Cooldown time.Duration
}

func NewPool(cfg Config) *Pool {
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 5 * time.Minute
	}
	return &Pool{maxFailures: cfg.MaxFailures, cooldown: cfg.Cooldown}
}

// Add parses raw proxy URLs into the pool. A missing scheme defaults to
// http.
func (p *Pool) Add(rawURLs ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, raw := range rawURLs {
		if !strings.Contains(raw, "://") {
			raw = "http://" + raw
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("proxy: parse %q: %w", raw, err)
		}
		p.endpoints = append(p.endpoints, &endpoint{url: u})
	}
	return nil
}

// LoadFile reads one proxy URL per line. Blank lines and '#' comments are
// ignored.
func (p *Pool) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("proxy: %w", err)
	}
	return p.Add(urls...)
}

// Size reports how many endpoints the pool holds, disabled ones included.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.endpoints)
}

// Next returns the next healthy proxy, reviving endpoints whose cooldown
// expired. Nil means the pool is empty or everything is cooling down; the
// caller should go direct.
func (p *Pool) Next() *url.URL {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.endpoints) == 0 {
		return nil
	}

	now := time.Now()
	start := p.next
	for {
		ep := p.endpoints[p.next]
		p.next = (p.next + 1) % len(p.endpoints)

		if ep.disabled && now.After(ep.disabledUntil) {
			ep.disabled = false
			ep.failures = 0
		}
		if !ep.disabled {
			return ep.url
		}
		if p.next == start {
			return nil
		}
	}
}

// MarkSuccess relaxes the failure count for an endpoint.
func (p *Pool) MarkSuccess(proxyURL *url.URL) {
	if proxyURL == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if ep := p.find(proxyURL); ep != nil && ep.failures > 0 {
		ep.failures--
	}
}

// MarkFailure counts a failed request; hitting MaxFailures disables the
// endpoint for the cooldown period.
func (p *Pool) MarkFailure(proxyURL *url.URL) {
	if proxyURL == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	ep := p.find(proxyURL)
	if ep == nil {
		return
	}
	ep.failures++
	if ep.failures >= p.maxFailures {
		ep.disabled = true
		ep.disabledUntil = time.Now().Add(p.cooldown)
	}
}

// ProxyFunc adapts the pool to http.Transport.Proxy.
func (p *Pool) ProxyFunc() func(*http.Request) (*url.URL, error) {
	return func(*http.Request) (*url.URL, error) {
		return p.Next(), nil
	}
}

func (p *Pool) find(u *url.URL) *endpoint {
	target := u.String()
	for _, ep := range p.endpoints {
		if ep.url.String() == target {
			return ep
		}
	}
	return nil
}
