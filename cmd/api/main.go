package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vendor-registry-api/internal"
	"vendor-registry-api/internal/config"
	"vendor-registry-api/internal/store"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}
	logger := cfg.NewLogger(os.Stdout)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		logger.Error("open store", "db_type", cfg.DBType, "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		logger.Error("ensure schema", "error", err)
		st.Close()
		os.Exit(1)
	}

	srv := internal.NewServer(st, cfg, logger)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting vendor registry api",
			"addr", httpServer.Addr,
			"db_type", cfg.DBType,
			"base_path", cfg.BasePath,
			"metrics", cfg.EnableMetrics,
			"reset", cfg.EnableReset,
		)
		errCh <- httpServer.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}
}
