package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/txnimport/internal/config"
	"github.com/JonMunkholm/txnimport/internal/core"
	"github.com/JonMunkholm/txnimport/internal/core/rules"
	"github.com/JonMunkholm/txnimport/internal/logging"
	"github.com/JonMunkholm/txnimport/internal/store/memory"
	"github.com/JonMunkholm/txnimport/internal/store/postgres"
	"github.com/JonMunkholm/txnimport/internal/web"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// backend is the set of collaborators the service runs on.
type backend struct {
	mappings   core.MappingStore
	txns       core.TransactionStore
	categories core.CategorySource
	runs       core.RunRecorder
	close      func()
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ruleSet, err := rules.Load(cfg.Import.Locale, cfg.Import.RulesFile)
	if err != nil {
		slog.Error("failed to load import rules", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer be.close()

	service, err := core.NewService(core.Deps{
		Mappings:     be.mappings,
		Transactions: be.txns,
		Categories:   be.categories,
		Runs:         be.runs,
		Rules:        ruleSet,
		Dedup:        core.DedupPolicy{MatchAmount: cfg.Import.DedupMatchAmount},
	})
	if err != nil {
		slog.Error("failed to create service", "error", err)
		os.Exit(1)
	}
	slog.Info("import rules ready", "locale", ruleSet.Locale, "keywords", len(ruleSet.Descriptions))

	server := web.NewServer(service, cfg)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		be.close()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openBackend connects to PostgreSQL when a URL is configured and falls back
// to the in-memory store otherwise.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if !cfg.Database.UsesDatabase() {
		slog.Warn("DATABASE_URL not set, keeping data in memory")
		st := memory.New()
		return &backend{mappings: st, txns: st, categories: st, runs: st, close: func() {}}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if cfg.Database.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
	}
	slog.Info("connected to database", "database", poolConfig.ConnConfig.Database)

	st := postgres.New(pool)
	return &backend{mappings: st, txns: st, categories: st, runs: st, close: pool.Close}, nil
}
