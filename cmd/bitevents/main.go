// cmd/bitevents is the terminal client for the BitEvents directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/cli"
	"github.com/bitevents/bitevents/internal/config"
	"github.com/bitevents/bitevents/internal/session"
	"github.com/bitevents/bitevents/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() //nolint:errcheck

	store, err := storage.NewFileStore(cfg.StateFile)
	if err != nil {
		logger.Fatal("open state file", zap.Error(err))
	}
	sess := session.NewStore(store, logger)

	client := api.New(cfg.APIBaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithTokenSource(sess),
		api.WithLogger(logger),
		api.WithUnauthorizedHook(func() {
			logger.Info("session rejected by server, logging out")
			sess.Logout()
		}),
	)

	// Ctrl-C cancels in-flight requests and unwinds browse mode.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := cli.NewApp(client, sess, logger, os.Stdout, os.Stdin)
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		// Interactive tool: stay quiet unless asked for more.
		lvl = zapcore.WarnLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := cfg.Build(zap.ErrorOutput(zapcore.Lock(os.Stderr)))
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	return logger
}
