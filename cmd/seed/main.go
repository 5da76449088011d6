// Package main seeds a Postgres or ClickHouse database with synthetic
// orders so the database-backed pipeline modes have data to read.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fraud-velocity-lab/internal/config"
	"fraud-velocity-lab/internal/storage"
	"fraud-velocity-lab/internal/storage/clickhouse"
	"fraud-velocity-lab/internal/storage/migrations"
	"fraud-velocity-lab/internal/storage/postgres"
	"fraud-velocity-lab/internal/synthetic"
)

func main() {
	mode := flag.String("mode", "postgres", "Target database: postgres | clickhouse")
	configPath := flag.String("config", "", "Optional YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(ctx, cfg, logger, *mode); err != nil {
		logger.Error("seed failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger, mode string) error {
	store, cleanup, err := buildStore(ctx, cfg, mode)
	if err != nil {
		return err
	}
	defer cleanup()

	gen := synthetic.NewGenerator(cfg.Demo.Customers, cfg.Demo.SpanDays, cfg.Demo.Seed)
	orders := gen.Generate()

	if err := store.InsertBulk(ctx, orders); err != nil {
		return fmt.Errorf("insert orders: %w", err)
	}

	logger.Info("seeded synthetic orders",
		zap.String("mode", mode),
		zap.Int("orders", len(orders)),
		zap.Int("customers", cfg.Demo.Customers),
		zap.Int64("seed", cfg.Demo.Seed))
	return nil
}

func buildStore(ctx context.Context, cfg *config.Config, mode string) (storage.OrderStore, func(), error) {
	noop := func() {}

	switch mode {
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
		return store, pool.Close, nil

	case "clickhouse":
		conn, err := clickhouse.NewConn(ctx, cfg.Database.ClickhouseURL)
		if err != nil {
			return nil, noop, err
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, noop, err
		}
		return clickhouse.NewOrderStore(conn), func() { conn.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown mode %q (want postgres or clickhouse)", mode)
	}
}
