// Command daystats measures how statistically extreme the target day was
// for every market: per-day metrics over the historical span, robust
// reference distributions, and target-day deviation scores.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/config"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/engine"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/logging"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/normalization"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/observability"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/reporting"
	chstore "github.com/Jamster187/oct10-black-swan-analysis/internal/storage/clickhouse"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage/memory"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage/migrations"
	pgstore "github.com/Jamster187/oct10-black-swan-analysis/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (built-in defaults when empty)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for candle history")
	clickhouseDSN := flag.String("clickhouse-dsn", "", "ClickHouse connection string for persisted results (optional)")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of a database")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	flag.Parse()

	ctx := context.Background()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fatal("init logger: %v", err)
	}

	if !*useFixtures && *postgresDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn is required when not using fixtures")
		fmt.Fprintln(os.Stderr, "Use --use-fixtures to run with demo data instead")
		os.Exit(1)
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				logger.Warn().Err(err).Str("addr", cfg.Metrics.Addr).Msg("metrics server stopped")
			}
		}()
	}

	opts, err := engine.OptionsFromConfig(cfg, nil, logger)
	if err != nil {
		fatal("build engine options: %v", err)
	}

	if *useFixtures {
		store := memory.NewCandleStore()
		span, _ := cfg.SpanWindow()
		target, _ := cfg.TargetWindow()
		engine.LoadFixtures(store, span, target)
		opts.Candles = store
		opts.Normalizer = normalization.New(engine.FixtureResolver(), cfg.USDQuotes)
		opts.MetricRecords = memory.NewMetricRecordStore()
		opts.DeviationScores = memory.NewDeviationScoreStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fatal("connect postgres: %v", err)
		}
		defer pool.Close()
		opts.Candles = pgstore.NewCandleStore(pool)

		if *clickhouseDSN != "" {
			conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
			if err != nil {
				fatal("clickhouse migrations: %v", err)
			}
			defer conn.Close()
			opts.MetricRecords = chstore.NewMetricRecordStore(conn)
			opts.DeviationScores = chstore.NewDeviationScoreStore(conn)
		}
	}

	result, err := engine.New(opts).DayStats(ctx)
	if err != nil {
		fatal("daystats pipeline: %v", err)
	}

	gen := reporting.NewGenerator(cfg.TargetDay, cfg.Span.Start, cfg.Span.End)
	report := gen.Generate(result, nil, nil)

	if err := writeOutputs(*outputDir, result, report); err != nil {
		fatal("write outputs: %v", err)
	}

	logger.Info().
		Int("scored_markets", len(result.TargetRecords)).
		Int("skipped", len(result.Skipped)).
		Str("output_dir", *outputDir).
		Msg("daystats complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func writeOutputs(dir string, result *engine.DayStatsResult, report *reporting.Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	csv := reporting.RenderScoresCSV(reporting.ScoreRows(result))
	if err := os.WriteFile(filepath.Join(dir, "deviation_scores.csv"), []byte(csv), 0o644); err != nil {
		return err
	}
	md := reporting.RenderMarkdown(report)
	return os.WriteFile(filepath.Join(dir, "deviation_report.md"), []byte(md), 0o644)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
