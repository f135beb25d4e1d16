//go:build integration

package test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FranksOps/hotwatch/internal/crawler"
	"github.com/FranksOps/hotwatch/internal/pipeline"
	"github.com/FranksOps/hotwatch/internal/storage/sqlite"
)

// serveTrending returns a test server that answers the scrape endpoint
// with a fixed trending payload, switchable between two days of data.
func serveTrending(pages map[string]string, current *string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, pages[*current])
	})
	return httptest.NewServer(mux)
}

func TestIntegration_ScrapeToReport(t *testing.T) {
	day1 := `{"data": [
		{"word": "第一热搜", "heat": 1200000, "url": "https://example.com/1"},
		{"word": "第二热搜", "heat": 800000, "url": "https://example.com/2"},
		{"word": "第三热搜", "heat": 500000, "url": "https://example.com/3"}
	]}`
	day2 := `{"data": [
		{"word": "第二热搜", "heat": 900000, "url": "https://example.com/2"},
		{"word": "新热搜", "heat": 700000, "url": "https://example.com/4"},
		{"word": "第一热搜", "heat": 600000, "url": "https://example.com/1"}
	]}`

	current := "day1"
	ts := serveTrending(map[string]string{"day1": day1, "day2": day2}, &current)
	defer ts.Close()

	outDir := t.TempDir()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open history store: %v", err)
	}

	strategy, err := crawler.NewScrapeCrawler(crawler.Config{
		Endpoint:   ts.URL,
		MaxRetries: 1,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create crawler: %v", err)
	}

	p := pipeline.New(strategy, store, pipeline.Config{
		OutputDir:  outDir,
		Source:     "web",
		HTMLReport: true,
	}, nil)
	defer p.Close()

	ctx := context.Background()

	first, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if first.Result.Total != 3 {
		t.Fatalf("expected 3 items on day 1, got %d", first.Result.Total)
	}
	if !first.Trend.NoPreviousData {
		t.Errorf("first run should report no previous data")
	}
	if first.Stats == nil || first.Stats.Heat.Max != 1200000 {
		t.Errorf("unexpected day 1 stats: %+v", first.Stats)
	}

	current = "day2"
	second, err := p.Run(ctx)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.Trend.NoPreviousData {
		t.Fatal("second run should diff against day 1")
	}
	if second.Trend.NewItems != 1 || second.Trend.RemovedItems != 1 {
		t.Errorf("expected 1 new and 1 removed, got %+v", second.Trend)
	}
	if len(second.Trend.NewWords) != 1 || second.Trend.NewWords[0] != "新热搜" {
		t.Errorf("unexpected new words: %v", second.Trend.NewWords)
	}

	// 第二热搜 moved 2 -> 1, 第一热搜 moved 1 -> 3.
	changes := map[string]int{}
	for _, rc := range second.Trend.RankChanges {
		changes[rc.Word] = rc.Change
	}
	if changes["第二热搜"] != 1 || changes["第一热搜"] != -2 {
		t.Errorf("unexpected rank changes: %v", changes)
	}

	// History holds both snapshots, newest first.
	snapshots, err := store.RecentSnapshots(ctx, "web", 10)
	if err != nil {
		t.Fatalf("history query failed: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 stored snapshots, got %d", len(snapshots))
	}
	if !snapshots[0].CrawlTime.After(snapshots[1].CrawlTime) {
		t.Errorf("expected newest snapshot first")
	}

	// Exports and reports landed on disk.
	for _, path := range []string{second.JSONPath, second.CSVPath, second.ReportPath, second.HTMLPath} {
		if path == "" {
			t.Fatal("expected all export paths to be set")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("export %s missing: %v", path, err)
		}
	}

	html, err := os.ReadFile(second.HTMLPath)
	if err != nil {
		t.Fatalf("failed to read HTML report: %v", err)
	}
	if !strings.Contains(string(html), "第二热搜") {
		t.Errorf("HTML report missing trending term")
	}
}

func TestIntegration_ScrapeFailureSurfaces(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer ts.Close()

	strategy, err := crawler.NewScrapeCrawler(crawler.Config{
		Endpoint:   ts.URL,
		MaxRetries: 2,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create crawler: %v", err)
	}

	p := pipeline.New(strategy, nil, pipeline.Config{}, nil)
	defer p.Close()

	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected run to fail when every attempt is blocked")
	}
}
