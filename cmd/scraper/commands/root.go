// Package commands
package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/config"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/fetch"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/limiter"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/metrics"
	"github.com/NotRanged/ranged-lodestone-recipe-db-scraper/packages/output"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	cfg config.Config

	langFiles []string
	outDir    string
)

var rootCmd = &cobra.Command{
	Use:   "scraper",
	Short: "Harvests FFXIV consumable and recipe data into per-category JSON files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		setupLogger(cfg)

		if !cmd.Flags().Changed("out") {
			outDir = cfg.OutDir
		}
		if cfg.MetricsAddr != "" {
			go metrics.ExposeMetrics(cfg.MetricsAddr)
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringArrayVarP(&langFiles, "lang-file", "l", nil,
		"Language code and path to a file mapping English names to that language, as LANG=FILE. Repeatable.")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out",
		"Directory to write the JSON datasets to.")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.Config) {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o750); err != nil {
			slog.Error("Failed to create log directory", "path", filepath.Dir(cfg.LogFile), "error", err)
		}
		out = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		})
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	})
	slog.SetDefault(slog.New(handler))
}

// runtime bundles the shared plumbing every network command needs: one
// limiter for the whole run, the fetch client drawing from it, and the
// optional cache and Postgres sink.
type runtime struct {
	limiter *limiter.Limiter
	fetch   *fetch.Client
	cache   *redis.Client
	sink    *output.Sink
}

func newRuntime(ctx context.Context, concurrency int) (*runtime, error) {
	rt := &runtime{limiter: limiter.New(concurrency)}

	if cfg.RedisAddr != "" {
		rt.cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		slog.Info("Response cache enabled", "addr", cfg.RedisAddr)
	}

	rt.fetch = fetch.NewClient(fetch.Options{
		Limiter: rt.limiter,
		Policy: fetch.Policy{
			MaxAttempts:        cfg.RetryMaxAttempts,
			Delay:              cfg.RetryDelay,
			RetryAfterFallback: cfg.RetryAfterFallback,
		},
		Timeout:  cfg.FetchTimeout,
		Cache:    rt.cache,
		CacheTTL: cfg.CacheTTL,
	})
	rt.fetch.OnRetry = func(url string, attempt int, err error) {
		slog.Debug("Fetch attempt failed, retrying", "url", url, "attempt", attempt, "error", err)
	}

	if cfg.PostgresDSN != "" {
		sink, err := output.NewSink(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		rt.sink = sink
	}
	return rt, nil
}

func (rt *runtime) Close() {
	if rt.sink != nil {
		rt.sink.Close()
	}
	if rt.cache != nil {
		_ = rt.cache.Close()
	}
}

// concurrencyFor lets the CONCURRENCY env var stand in for an omitted
// --concurrency flag; an explicit flag always wins.
func concurrencyFor(cmd *cobra.Command, flagValue int) int {
	if !cmd.Flags().Changed("concurrency") && os.Getenv("CONCURRENCY") != "" {
		return cfg.Concurrency
	}
	return flagValue
}
