// Package metrics exposes Prometheus counters for crawl runs and a small
// /metrics server.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CrawlRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotwatch_crawl_requests_total",
			Help: "Total number of crawl runs executed",
		},
		[]string{"source", "outcome"},
	)

	CrawlItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotwatch_crawl_items_total",
			Help: "Total trending items retrieved across all crawls",
		},
		[]string{"source"},
	)

	CrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hotwatch_crawl_duration_seconds",
			Help:    "Duration of crawl runs in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"source"},
	)

	FallbackInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotwatch_fallback_invocations_total",
			Help: "Browser fallback attempts by outcome",
		},
		[]string{"outcome"},
	)

	ChallengesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hotwatch_challenges_total",
			Help: "Blocked responses classified by anti-bot source",
		},
		[]string{"protection"},
	)
)

// RecordCrawl updates the crawl counters for one completed run.
func RecordCrawl(source string, result *model.Result, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	CrawlRequestsTotal.WithLabelValues(source, outcome).Inc()
	CrawlDuration.WithLabelValues(source).Observe(duration.Seconds())
	if result != nil {
		CrawlItemsTotal.WithLabelValues(source).Add(float64(result.Total))
	}
}

// RecordFallback counts one browser fallback attempt.
func RecordFallback(succeeded bool) {
	outcome := "success"
	if !succeeded {
		outcome = "failure"
	}
	FallbackInvocationsTotal.WithLabelValues(outcome).Inc()
}

// RecordChallenge counts one classified anti-bot block.
func RecordChallenge(protection string) {
	if protection == "" {
		return
	}
	ChallengesTotal.WithLabelValues(protection).Inc()
}

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server failed: %v\n", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
