// Package main runs the velocity feature pipeline:
// order source → feature engine → scorer → CSV.
//
// Modes:
//   - demo:       seeded synthetic orders, no database required
//   - postgres:   reads the v_orders_enriched view via pgx
//   - clickhouse: reads the denormalized orders_enriched table
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fraud-velocity-lab/internal/config"
	"fraud-velocity-lab/internal/pipeline"
	"fraud-velocity-lab/internal/storage/clickhouse"
	"fraud-velocity-lab/internal/storage/migrations"
	"fraud-velocity-lab/internal/storage/postgres"
	"fraud-velocity-lab/internal/synthetic"
)

func main() {
	mode := flag.String("mode", "demo", "Execution mode: demo | postgres | clickhouse")
	configPath := flag.String("config", "", "Optional YAML config file")
	out := flag.String("out", "", "Output CSV path (overrides config)")
	refInstant := flag.String("ref", "", "Reference instant, RFC3339 (default: max purchase timestamp)")
	flag.Parse()

	// .env is a developer convenience; absence is not an error.
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.Output = *out
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(ctx, cfg, logger, *mode, *refInstant); err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, mode, refFlag string) error {
	var ref time.Time
	if refFlag != "" {
		parsed, err := time.Parse(time.RFC3339, refFlag)
		if err != nil {
			return fmt.Errorf("parse -ref: %w", err)
		}
		ref = parsed.UTC()
	}

	scoringCfg, err := cfg.ScoringConfig()
	if err != nil {
		return err
	}

	source, cleanup, err := buildSource(ctx, cfg, logger, mode)
	if err != nil {
		return err
	}
	defer cleanup()

	runner, err := pipeline.New(pipeline.Options{
		Source:     source,
		Scoring:    scoringCfg,
		OutputPath: cfg.Output,
		RefInstant: ref,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	result, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("run completed",
		zap.String("mode", mode),
		zap.Int("orders", result.OrdersLoaded),
		zap.Int("skipped_rows", result.SkippedRows),
		zap.Int("customers", result.Customers),
		zap.String("output", result.OutputPath))
	return nil
}

// buildSource creates the order source for the selected mode. The
// returned cleanup closes any database connection.
func buildSource(ctx context.Context, cfg *config.Config, logger *zap.Logger, mode string) (pipeline.OrderSource, func(), error) {
	noop := func() {}

	switch mode {
	case "demo":
		logger.Info("generating synthetic orders",
			zap.Int("customers", cfg.Demo.Customers),
			zap.Int("span_days", cfg.Demo.SpanDays),
			zap.Int64("seed", cfg.Demo.Seed))
		return synthetic.NewGenerator(cfg.Demo.Customers, cfg.Demo.SpanDays, cfg.Demo.Seed), noop, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Database.PostgresURL)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, noop, err
		}
		store := postgres.NewOrderStore(pool)
		if err := store.EnsureViews(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		logger.Info("reading orders from postgres", zap.Duration("lookback", cfg.Database.Lookback))
		return pipeline.NewStoreSource(store, cfg.Database.Lookback), pool.Close, nil

	case "clickhouse":
		conn, err := clickhouse.NewConn(ctx, cfg.Database.ClickhouseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		store := clickhouse.NewOrderStore(conn)
		logger.Info("reading orders from clickhouse", zap.Duration("lookback", cfg.Database.Lookback))
		return pipeline.NewStoreSource(store, cfg.Database.Lookback), func() { conn.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown mode %q (want demo, postgres or clickhouse)", mode)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
