package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/ewilliams-labs/moodqueue/internal/adapters/rest"
	"github.com/ewilliams-labs/moodqueue/internal/adapters/wsplayer"
	"github.com/ewilliams-labs/moodqueue/internal/app"
	"github.com/ewilliams-labs/moodqueue/internal/config"
	"github.com/ewilliams-labs/moodqueue/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a moodqueue.yaml file")
	flag.Parse()

	// 1. Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	// Saved queues belong to moodctl; the server keeps no state between requests.
	cfg.Storage.Driver = config.StorageNone

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Adapters and core services
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire application", zap.Error(err))
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close failed", zap.Error(err))
		}
	}()

	// 3. Driving adapters
	players := wsplayer.NewHandler(application.PlayerConfig(), nil, logger)
	handler := rest.NewHandler(application.Orchestrator, players, logger)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("moodqueue api listening", zap.String("addr", cfg.Server.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		players.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}
}
