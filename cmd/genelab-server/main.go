package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daniacca/genelab/internal/content"
	"github.com/daniacca/genelab/internal/lab"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	catalog, err := loadCatalog(cfg.ContentDir)
	if err != nil {
		logger.Fatalf("Failed to load content: %v", err)
	}

	rules, err := loadRulesFile(cfg.RulesFile)
	if err != nil {
		logger.Fatalf("Failed to load rules: %v", err)
	}
	if cfg.LevelCap > 0 {
		rules.LevelCap = cfg.LevelCap
	}

	var rng lab.RandomSource = lab.DefaultRNG()
	if cfg.Seed != 0 {
		rng = lab.NewSeededRNG(cfg.Seed)
	}

	srv := NewServer(logger, catalog, lab.ControllerConfig{
		Rules:           rules,
		SimulationDelay: cfg.SimulationDelay,
		Verdicts:        lab.NewVerdictSource(cfg.VerdictMode, rng),
	})

	if cfg.WebhookURL != "" {
		if err := srv.RegisterProgressWebhook(cfg.WebhookURL); err != nil {
			logger.Fatalf("Failed to register progress webhook: %v", err)
		}
		logger.Infof("Progress webhook registered: url=%s", cfg.WebhookURL)
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("genelab-server listening on %s (level_cap=%d verdict_mode=%s simulation_delay=%s)",
			cfg.Addr, srv.rules.LevelCap, cfg.VerdictMode, cfg.SimulationDelay)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Infof("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP shutdown: %v", err)
	}
	if err := srv.Close(); err != nil {
		logger.Errorf("Closing notifiers: %v", err)
	}
}

func loadCatalog(dir string) (*content.Catalog, error) {
	if dir == "" {
		return content.Load()
	}
	return content.LoadDir(dir)
}
