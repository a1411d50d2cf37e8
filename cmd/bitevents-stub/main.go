// cmd/bitevents-stub is a self-contained development server that speaks the
// BitEvents REST API. It keeps everything in an in-memory SQLite database and
// reseeds demo data on every start, so the CLI can be exercised without any
// external services.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bitevents/bitevents/internal/config"
	"github.com/bitevents/bitevents/internal/stub"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	// ── 1. Open the in-memory database ───────────────────────────────────
	store, err := stub.NewStore(ctx)
	if err != nil {
		logger.Fatal("open store", zap.Error(err))
	}
	defer store.Close()

	// ── 2. Wire up layers and seed demo data ─────────────────────────────
	svc := stub.NewService(store, cfg.Stub.JWTSecret, cfg.Stub.TokenExpiry)
	if err := stub.Seed(ctx, store, svc); err != nil {
		logger.Fatal("seed", zap.Error(err))
	}
	handler := stub.NewHandler(svc, store, logger)

	// ── 3. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         cfg.Stub.Addr,
		Handler:      stub.NewRouter(handler, logger),
		ReadTimeout:  cfg.Stub.ReadTimeout,
		WriteTimeout: cfg.Stub.WriteTimeout,
		IdleTimeout:  cfg.Stub.IdleTimeout,
	}

	go func() {
		logger.Info("stub server listening",
			zap.String("addr", cfg.Stub.Addr),
			zap.String("demo_user", "demo@bitevents.sk / demo12345"),
			zap.String("demo_organizer", "organizer@bitevents.sk / organizer1"),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
