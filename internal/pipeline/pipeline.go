// Package pipeline orchestrates one crawl run: retrieve a snapshot,
// export it, persist it to history, analyze it, and diff it against the
// previous snapshot. Retrieval failure fails the run; export and
// persistence problems are logged and the run continues with what it has.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/FranksOps/hotwatch/internal/analysis"
	"github.com/FranksOps/hotwatch/internal/crawler"
	"github.com/FranksOps/hotwatch/internal/metrics"
	"github.com/FranksOps/hotwatch/internal/model"
	"github.com/FranksOps/hotwatch/internal/report"
	"github.com/FranksOps/hotwatch/internal/storage"
	"github.com/FranksOps/hotwatch/internal/storage/csvfile"
	"github.com/FranksOps/hotwatch/internal/storage/jsondir"
)

// Config controls the post-crawl stages.
type Config struct {
	// OutputDir receives the JSON/CSV exports and reports. Empty disables
	// file exports.
	OutputDir string
	// Source scopes the history lookup for trend comparison. Empty
	// compares against the most recent snapshot from any source.
	Source string
	// HTMLReport additionally renders the HTML report next to the text one.
	HTMLReport bool
}

// RunResult carries everything one pipeline run produced.
type RunResult struct {
	Result *model.Result
	Stats  *analysis.Stats
	Trend  *analysis.TrendReport

	SnapshotID string
	JSONPath   string
	CSVPath    string
	ReportPath string
	HTMLPath   string
}

// Pipeline wires a retrieval strategy to exports, history and analysis.
// The store may be nil; history persistence and trend comparison are
// skipped then.
type Pipeline struct {
	strategy crawler.Strategy
	store    storage.Store
	cfg      Config
	logger   *slog.Logger
}

func New(strategy crawler.Strategy, store storage.Store, cfg Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{strategy: strategy, store: store, cfg: cfg, logger: logger}
}

// Run executes one crawl and all downstream stages. The returned error is
// non-nil only when retrieval itself failed.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result, err := p.strategy.Fetch(ctx)
	metrics.RecordCrawl(sourceLabel(result, p.cfg.Source), result, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("pipeline: crawl: %w", err)
	}
	p.logger.Info("crawl completed", "source", result.Source, "total", result.Total)

	run := &RunResult{Result: result}

	// The previous snapshot must be read before this one is saved, or the
	// trend diff would compare the run against itself.
	previous := p.previousItems(ctx)

	if p.store != nil {
		id, serr := p.store.SaveSnapshot(ctx, result)
		if serr != nil {
			p.logger.Warn("saving snapshot to history failed", "err", serr)
		} else {
			run.SnapshotID = id
		}
	}

	run.Stats = analysis.Analyze(result)
	trend := analysis.DiffTrend(result.Items, previous)
	run.Trend = &trend

	if p.cfg.OutputDir != "" {
		p.export(run)
	}

	return run, nil
}

// previousItems loads the most recent stored snapshot for trend
// comparison. History problems degrade to a no-previous-data diff.
func (p *Pipeline) previousItems(ctx context.Context) []model.Item {
	if p.store == nil {
		return nil
	}
	snapshots, err := p.store.RecentSnapshots(ctx, p.cfg.Source, 1)
	if err != nil {
		p.logger.Warn("loading previous snapshot failed", "err", err)
		return nil
	}
	if len(snapshots) == 0 {
		return nil
	}
	return snapshots[0].Items
}

// export writes the JSON/CSV exports and the reports. Failures are
// logged; the crawl result is already safe at this point.
func (p *Pipeline) export(run *RunResult) {
	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		p.logger.Warn("creating output directory failed", "dir", p.cfg.OutputDir, "err", err)
		return
	}

	stamp := run.Result.CrawlTime.Format("20060102")
	base := filepath.Join(p.cfg.OutputDir, "xiaohongshu_hot_search_"+stamp)

	jsonPath := base + ".json"
	if err := jsondir.WriteFile(jsonPath, run.Result); err != nil {
		p.logger.Warn("writing JSON export failed", "err", err)
	} else {
		run.JSONPath = jsonPath
		p.logger.Info("JSON export written", "path", jsonPath)
	}

	csvPath := base + ".csv"
	if err := csvfile.WriteFile(csvPath, run.Result); err != nil {
		p.logger.Warn("writing CSV export failed", "err", err)
	} else {
		run.CSVPath = csvPath
		p.logger.Info("CSV export written", "path", csvPath)
	}

	summary := report.NewSummary(run.Result, run.Stats, run.Trend)

	reportPath := filepath.Join(p.cfg.OutputDir, "hot_search_report_"+stamp+".txt")
	if err := writeReport(reportPath, summary, report.WriteText); err != nil {
		p.logger.Warn("writing text report failed", "err", err)
	} else {
		run.ReportPath = reportPath
	}

	if p.cfg.HTMLReport {
		htmlPath := filepath.Join(p.cfg.OutputDir, "hot_search_report_"+stamp+".html")
		if err := writeReport(htmlPath, summary, report.WriteHTML); err != nil {
			p.logger.Warn("writing HTML report failed", "err", err)
		} else {
			run.HTMLPath = htmlPath
		}
	}
}

func writeReport(path string, summary report.Summary, render func(w io.Writer, s report.Summary) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := render(f, summary); err != nil {
		return err
	}
	return f.Close()
}

func sourceLabel(result *model.Result, fallback string) string {
	if result != nil && result.Source != "" {
		return result.Source
	}
	if fallback != "" {
		return fallback
	}
	return "unknown"
}

// Close releases the underlying strategy and store.
func (p *Pipeline) Close() error {
	if err := p.strategy.Close(); err != nil {
		p.logger.Error("closing strategy", "err", err)
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			p.logger.Error("closing history store", "err", err)
		}
	}
	return nil
}
