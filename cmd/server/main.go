package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camperoutlet/camperdeals/internal/blob"
	"github.com/camperoutlet/camperdeals/internal/config"
	"github.com/camperoutlet/camperdeals/internal/copy"
	"github.com/camperoutlet/camperdeals/internal/notifier"
	"github.com/camperoutlet/camperdeals/internal/pipeline"
	"github.com/camperoutlet/camperdeals/internal/scraper"
	"github.com/camperoutlet/camperdeals/internal/server"
	"github.com/camperoutlet/camperdeals/internal/store"
)

func main() {
	slog.Info("Starting camperdeals server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	catalog, err := store.Open(cfg.DatabasePath)
	if err != nil {
		slog.Error("Critical error opening catalog database", "error", err)
		os.Exit(1)
	}
	defer catalog.Close()

	runner := scraper.NewRunner(cfg.ScraperCommand, cfg.ScraperResultsFile, cfg.ScraperTimeout)
	tg := notifier.New(cfg.TelegramBotToken, cfg.TelegramChannelID)
	sync := pipeline.New(catalog, tg, runner, cfg)

	// Assign through the interface only when configured, so an unset blob
	// store stays a nil interface rather than a typed nil.
	var uploader blob.Uploader
	if bs := blob.NewHTTPStore(cfg.BlobEndpoint, cfg.BlobBucket, cfg.BlobAPIKey); bs != nil {
		uploader = bs
	}

	srv := server.New(cfg, sync, catalog, buildCopyChain(ctx, cfg), uploader)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

// buildCopyChain assembles the AI provider chain. Constructors return
// untyped nil pointers when unconfigured, so each one is nil-checked before
// entering the chain to avoid a typed-nil interface value.
func buildCopyChain(ctx context.Context, cfg *config.Config) *copy.Chain {
	var providers []copy.Provider

	gemini, err := copy.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Warn("Failed to initialize Gemini provider", "error", err)
	} else if gemini != nil {
		providers = append(providers, gemini)
	}

	if or := copy.NewOpenRouter(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.SiteURL); or != nil {
		providers = append(providers, or)
	}

	return copy.NewChain(providers...)
}
