// Command topdrops ranks markets by their target-day metric, most extreme
// first.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jamster187/oct10-black-swan-analysis/internal/config"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/domain"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/engine"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/logging"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/normalization"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/reporting"
	"github.com/Jamster187/oct10-black-swan-analysis/internal/storage/memory"
	pgstore "github.com/Jamster187/oct10-black-swan-analysis/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (built-in defaults when empty)")
	postgresDSN := flag.String("postgres-dsn", "", "PostgreSQL connection string for candle history")
	useFixtures := flag.Bool("use-fixtures", false, "Use in-memory fixtures instead of a database")
	outputDir := flag.String("output-dir", "out", "Output directory for generated files")
	topN := flag.Int("top", 0, "Number of markets to keep (config default when 0)")
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

	n := *topN
	if n == 0 {
		n = cfg.Ranking.TopN
	}
	kind := domain.MetricKind(cfg.Ranking.Metric)

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
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			fatal("connect postgres: %v", err)
		}
		defer pool.Close()
		opts.Candles = pgstore.NewCandleStore(pool)
	}

	result, err := engine.New(opts).TopDrops(ctx, kind, n)
	if err != nil {
		fatal("top drops pipeline: %v", err)
	}

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fatal("create output dir: %v", err)
	}
	csv := reporting.RenderRankedCSV(string(kind), reporting.RankedRows(result.Ranked))
	if err := os.WriteFile(filepath.Join(*outputDir, "top_drops.csv"), []byte(csv), 0o644); err != nil {
		fatal("write csv: %v", err)
	}

	logger.Info().
		Int("ranked", len(result.Ranked)).
		Int("skipped", len(result.Skipped)).
		Str("metric", string(kind)).
		Str("output_dir", *outputDir).
		Msg("top drops complete")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
