// Command hotwatch retrieves the xiaohongshu trending search list, saves
// it, and reports on it. The `api` subcommand uses the paid API; the
// `scrape` subcommand fetches the public endpoint directly, optionally
// with a headless-browser fallback.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/FranksOps/hotwatch/internal/browser"
	"github.com/FranksOps/hotwatch/internal/crawler"
	"github.com/FranksOps/hotwatch/internal/metrics"
	"github.com/FranksOps/hotwatch/internal/pipeline"
	"github.com/FranksOps/hotwatch/internal/storage"
	"github.com/FranksOps/hotwatch/internal/storage/jsondir"
	"github.com/FranksOps/hotwatch/internal/storage/postgres"
	"github.com/FranksOps/hotwatch/internal/storage/sqlite"
)

const (
	defaultAPIEndpoint    = "https://api.itapi.cn/api/hotnews/xiaohongshu"
	defaultScrapeEndpoint = "https://www.xiaohongshu.com"
)

var (
	flagEndpoint    string
	flagOutputDir   string
	flagLimit       int
	flagTimeout     time.Duration
	flagRetries     int
	flagRetryDelay  time.Duration
	flagUserAgent   string
	flagHTMLReport  bool
	flagMetricsPort int
	flagDebug       bool

	flagSQLitePath  string
	flagPostgresDSN string
	flagHistoryDir  string

	flagFallback bool
	flagHeadless bool
	flagEngine   string
	flagProxies  []string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hotwatch:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hotwatch",
		Short:         "Trending search crawler for xiaohongshu",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagOutputDir, "output", "output", "directory for JSON/CSV exports and reports")
	pf.IntVar(&flagLimit, "limit", 50, "maximum number of items to retrieve")
	pf.DurationVar(&flagTimeout, "timeout", 30*time.Second, "per-request timeout")
	pf.StringVar(&flagUserAgent, "user-agent", "", "override the request user agent")
	pf.BoolVar(&flagHTMLReport, "html", false, "also render the HTML report")
	pf.IntVar(&flagMetricsPort, "metrics-port", 0, "expose Prometheus metrics on this port (0 disables)")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.StringVar(&flagSQLitePath, "sqlite", "", "SQLite file for snapshot history")
	pf.StringVar(&flagPostgresDSN, "postgres", "", "Postgres DSN for snapshot history")
	pf.StringVar(&flagHistoryDir, "history-dir", "", "directory-backed snapshot history (JSON files)")

	// Environment variables override nothing set explicitly on the
	// command line but fill in unset flags (HOTWATCH_API_KEY and friends).
	viper.SetEnvPrefix("hotwatch")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(apiCmd(), scrapeCmd())
	return root
}

func apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Retrieve the trending list through the paid API",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := viper.GetString("api_key")
			logger := newLogger()

			c, err := crawler.NewAPICrawler(key, retrievalConfig(), logger)
			if err != nil {
				return err
			}
			return runPipeline(cmd.Context(), c, "api", logger)
		},
	}
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", defaultAPIEndpoint, "API endpoint URL")
	return cmd
}

func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Retrieve the trending list by scraping the public endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg := retrievalConfig()
			cfg.MaxRetries = flagRetries
			cfg.RetryDelay = flagRetryDelay
			cfg.BrowserFallback = flagFallback
			cfg.BrowserEngine = flagEngine
			cfg.Headless = flagHeadless
			cfg.Proxies = flagProxies

			primary, err := crawler.NewScrapeCrawler(cfg, logger)
			if err != nil {
				return err
			}

			var extractor crawler.PageExtractor
			if flagFallback {
				extractor = browser.NewExtractor(browser.Config{
					Engine:    flagEngine,
					Headless:  flagHeadless,
					Timeout:   flagTimeout,
					UserAgent: flagUserAgent,
					Logger:    logger,
				})
			}
			c := crawler.NewFallbackCrawler(primary, extractor, cfg, logger)
			return runPipeline(cmd.Context(), c, "web", logger)
		},
	}
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", defaultScrapeEndpoint, "page URL to scrape")
	cmd.Flags().IntVar(&flagRetries, "retries", 3, "maximum scrape attempts")
	cmd.Flags().DurationVar(&flagRetryDelay, "retry-delay", 0, "base delay before each attempt")
	cmd.Flags().BoolVar(&flagFallback, "fallback", false, "enable the headless-browser fallback")
	cmd.Flags().BoolVar(&flagHeadless, "headless", true, "run the fallback browser headless")
	cmd.Flags().StringVar(&flagEngine, "engine", "chromium", "fallback browser engine")
	cmd.Flags().StringSliceVar(&flagProxies, "proxy", nil, "forward proxy URL, repeatable")
	return cmd
}

func retrievalConfig() crawler.Config {
	return crawler.Config{
		Endpoint:  flagEndpoint,
		Timeout:   flagTimeout,
		UserAgent: flagUserAgent,
		Limit:     flagLimit,
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagDebug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// openStore picks the history backend from the flags. No flag means no
// history and therefore no trend comparison.
func openStore(ctx context.Context) (storage.Store, error) {
	switch {
	case flagPostgresDSN != "":
		return postgres.New(ctx, flagPostgresDSN)
	case flagSQLitePath != "":
		return sqlite.New(flagSQLitePath)
	case flagHistoryDir != "":
		return jsondir.New(flagHistoryDir)
	}
	return nil, nil
}

func runPipeline(ctx context.Context, strategy crawler.Strategy, source string, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metricsSrv *metrics.Server
	if flagMetricsPort > 0 {
		metricsSrv = metrics.Start(flagMetricsPort)
		defer metricsSrv.Stop(context.Background())
	}

	store, err := openStore(ctx)
	if err != nil {
		strategy.Close()
		return fmt.Errorf("opening history store: %w", err)
	}

	p := pipeline.New(strategy, store, pipeline.Config{
		OutputDir:  flagOutputDir,
		Source:     source,
		HTMLReport: flagHTMLReport,
	}, logger)
	defer p.Close()

	run, err := p.Run(ctx)
	if err != nil {
		return err
	}

	printRun(run)
	return nil
}

func printRun(run *pipeline.RunResult) {
	fmt.Printf("retrieved %d trending items from %s\n", run.Result.Total, run.Result.Source)

	top := run.Result.TopN(10)
	for _, item := range top {
		line := fmt.Sprintf("%2d. %s", item.Rank, item.Word)
		if item.Heat > 0 {
			line += fmt.Sprintf("  (热度 %d)", item.Heat)
		}
		fmt.Println(line)
	}

	for _, path := range []string{run.JSONPath, run.CSVPath, run.ReportPath, run.HTMLPath} {
		if path != "" {
			fmt.Println("wrote", path)
		}
	}
	if run.Trend != nil && !run.Trend.NoPreviousData {
		fmt.Printf("trend: %d new, %d removed, %d rank changes\n",
			run.Trend.NewItems, run.Trend.RemovedItems, len(run.Trend.RankChanges))
	}
}
