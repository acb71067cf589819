package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/recon-ledger/internal/api"
	"github.com/example/recon-ledger/internal/config"
	"github.com/example/recon-ledger/internal/ledger"
	"github.com/example/recon-ledger/internal/settlement"
	"github.com/example/recon-ledger/pkg/audit"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := ledger.SyncSchema(cfg.DatabaseURL); err != nil {
		logger.Error("failed to sync schema", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to create postgres pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	store := ledger.NewPostgresStore(pool)
	settlementStore := settlement.NewPostgresStore(pool)
	auditor := audit.NewChainLogger()

	router, err := api.NewRouter(api.Dependencies{
		Logger:       logger,
		Matcher:      ledger.NewMatchingEngine(store),
		Handshakes:   ledger.NewService(store, logger, auditor),
		Settlements:  settlement.NewService(settlementStore, logger, auditor),
		Calculator:   settlement.NewCalculator(settlementStore),
		Shows:        store,
		Outgoing:     store,
		Auditor:      auditor,
		MaxBodyBytes: cfg.MaxBodyBytes,
	})
	if err != nil {
		logger.Error("failed to build router", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	logger.Info("recon ledger api listening", "addr", cfg.ListenAddr, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
