package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"videonotes/internal/app"
	"videonotes/internal/config"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API turns YouTube videos into Markdown notes in an Obsidian vault,
// with every section heading linked to the moment it is discussed.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Video Notes API
//   description: |
//     Generates timestamped Markdown notes from YouTube transcripts using an LLM.
//     Notes are written to the configured vault and recorded for listing.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

// Summarizing long transcripts can take minutes.
const writeTimeout = 15 * time.Minute

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	app.SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		_ = a.Close()
	}()

	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting API server", "addr", server.Addr)
		slog.Debug("LLM configuration", "provider", cfg.LLM.Provider, "fallback", cfg.LLM.FallbackProvider, "model", cfg.LLM.Model)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed to start: %v", err)
		}
	case <-ctx.Done():
		slog.Info("Shutting down API server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Graceful shutdown failed", "error", err)
		}
	}
}
