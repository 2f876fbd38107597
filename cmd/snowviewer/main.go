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
	"time"

	"snowstack/internal/config"
	"snowstack/internal/logger"
	"snowstack/internal/viewer"
)

var configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)

	srv := &http.Server{
		Addr:              cfg.Viewer.ListenAddr,
		Handler:           viewer.New(cfg.Results.TrueColorDir, cfg.Results.FalseColorDir, cfg.Viewer.AllowedOrigins).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Failed to shut down cleanly: %v", err)
		}
	}()

	logger.Info("Viewer listening on %s (true-color: %s, false-color: %s)",
		cfg.Viewer.ListenAddr, cfg.Results.TrueColorDir, cfg.Results.FalseColorDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Viewer server failed: %v", err)
	}
	logger.Info("Viewer stopped")
}
