// Package main wires together the property edge gateway binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/salambumi/property-edge/internal/api"
	"github.com/salambumi/property-edge/internal/clock/system"
	"github.com/salambumi/property-edge/internal/config"
	"github.com/salambumi/property-edge/internal/gemini"
	"github.com/salambumi/property-edge/internal/logging"
	"github.com/salambumi/property-edge/internal/metrics"
	"github.com/salambumi/property-edge/internal/ratelimit"
	"github.com/salambumi/property-edge/internal/sharecard"
	"github.com/salambumi/property-edge/internal/store/supabase"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	provider := supabase.New(supabase.Config{
		BaseURL:         cfg.Supabase.URL,
		APIKey:          cfg.Supabase.AnonKey,
		PropertiesTable: cfg.Supabase.PropertiesTable,
		LeadsTable:      cfg.Supabase.LeadsTable,
		Timeout:         cfg.SupabaseTimeout(),
	})

	var generator api.DescriptionGenerator
	if cfg.Gemini.APIKey != "" {
		generator = gemini.New(gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.GeminiTimeout(),
		})
	} else {
		logger.Warn("gemini api key not set, description generation disabled")
	}

	clk := system.New()
	limiter := ratelimit.NewWindow(clk, tiersFromConfig(cfg.RateLimit))
	renderer := sharecard.New(cfg.Site.Name, cfg.Site.PlaceholderImage)

	server := api.NewServer(provider, limiter, renderer, generator, clk, cfg, logger)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("edge gateway listening", zap.Int("port", cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func tiersFromConfig(rl config.RateLimitConfig) map[ratelimit.Tier]ratelimit.TierConfig {
	toTier := func(t config.TierLimit) ratelimit.TierConfig {
		return ratelimit.TierConfig{
			Window:      time.Duration(t.WindowMs) * time.Millisecond,
			MaxRequests: t.MaxRequests,
		}
	}
	return map[ratelimit.Tier]ratelimit.TierConfig{
		ratelimit.TierDefault: toTier(rl.Default),
		ratelimit.TierAPI:     toTier(rl.API),
		ratelimit.TierUpload:  toTier(rl.Upload),
	}
}
