package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/agridoc/internal/api"
	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/config"
	"github.com/dgallion1/agridoc/internal/history"
	"github.com/dgallion1/agridoc/internal/metrics"
	"github.com/dgallion1/agridoc/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hist, err := history.Open(cfg.HistoryDB, cfg.HistoryMaxItems)
	if err != nil {
		log.Error("open history", "error", err)
		os.Exit(1)
	}
	m := metrics.New()
	stats := assistant.NewLLMStats(time.Hour)

	// Initialize generation, when configured.
	var gemini *assistant.GeminiClient
	var orch *pipeline.Orchestrator
	if cfg.GenerationEnabled() {
		gemini, err = assistant.NewGeminiClient(ctx, assistant.GeminiConfig{
			APIKey:   cfg.GeminiAPIKey,
			Model:    cfg.GeminiModel,
			ProModel: cfg.GeminiProModel,
			BaseURL:  cfg.GeminiBaseURL,
			Timeout:  cfg.GeminiTimeout,
		})
		if err != nil {
			log.Error("create gemini client", "error", err)
			os.Exit(1)
		}
		orch = pipeline.NewOrchestrator(cfg, gemini, hist, stats, m, log)
		orch.Start(ctx)
	} else {
		log.Warn("GEMINI_API_KEY not set, ask endpoints disabled")
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, hist, stats, m, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		// Stop taking requests before the queue closes.
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if orch != nil {
			orch.Stop()
		}

		if gemini != nil {
			gemini.Close()
		}
		hist.Close()
	}()

	log.Info("starting agridoc", "port", cfg.Port, "generation", cfg.GenerationEnabled())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done
}
