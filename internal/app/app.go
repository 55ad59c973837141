// Package app wires configuration into the running services shared by the
// API server and the command line tool.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"videonotes/internal/config"
	apphttp "videonotes/internal/http"
	"videonotes/internal/llm"
	"videonotes/internal/service"
	"videonotes/internal/storage"
	"videonotes/internal/transcript"
	"videonotes/internal/vault"
)

// App holds the wired dependencies.
type App struct {
	Config    *config.Config
	DB        *sql.DB
	Vault     *vault.Manager
	LLM       *llm.Registry
	Notes     service.NoteService
	Providers []string
}

// SetupLogging installs the default slog logger for the configured level and format.
func SetupLogging(cfg *config.Config) {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)
}

// New opens the database, runs migrations and builds the note service.
// The caller must call Close.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	vaultManager, err := vault.NewManager(cfg.Vault.Path, cfg.Vault.NotesFolder, cfg.Vault.TemplatePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize vault: %w", err)
	}
	slog.Info("Vault initialized", "path", cfg.Vault.Path, "folder", cfg.Vault.NotesFolder)

	registry, err := NewRegistry(ctx, cfg.LLM)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	source := service.NewCachedSource(
		transcript.NewYouTubeClient("", cfg.Transcript.Languages, cfg.Retry.Policy()),
		storage.NewTranscriptRepo(db),
		cfg.Transcript.CacheTTL,
	)

	notes := service.NewNoteService(
		source,
		registry,
		vaultManager,
		storage.NewNoteRepo(db),
		storage.NewHeadingRepo(db),
		service.Options{
			Chunk:             cfg.Chunk.Options(),
			Match:             cfg.Match.Matcher(),
			Retry:             cfg.Retry.Policy(),
			Concurrency:       cfg.LLM.Concurrency,
			RequestsPerMinute: cfg.LLM.RequestsPerMinute,
			Prompt:            cfg.SummaryPrompt,
		},
	)

	return &App{
		Config:    cfg,
		DB:        db,
		Vault:     vaultManager,
		LLM:       registry,
		Notes:     notes,
		Providers: registry.Names(),
	}, nil
}

// NewRegistry registers the configured LLM backends and applies the
// primary/fallback selection. With preloading enabled the OpenAI-compatible
// model is loaded before the registry is returned.
func NewRegistry(ctx context.Context, cfg config.LLMConfig) (*llm.Registry, error) {
	registry := llm.NewRegistry()
	if cfg.Uses(config.ProviderOpenAI) {
		registry.Register(llm.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Model))
	}
	if cfg.Uses(config.ProviderGemini) {
		registry.Register(llm.NewGeminiClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if err := registry.SetPrimary(cfg.Provider); err != nil {
		return nil, fmt.Errorf("llm primary: %w", err)
	}
	if err := registry.SetFallback(cfg.FallbackProvider); err != nil {
		return nil, fmt.Errorf("llm fallback: %w", err)
	}
	slog.Info("LLM backends registered", "primary", cfg.Provider, "fallback", cfg.FallbackProvider)

	if cfg.PreloadModel && cfg.Uses(config.ProviderOpenAI) {
		slog.Info("Preloading model", "model", cfg.Model)
		if err := llm.NewModelLoader(cfg.BaseURL).LoadModel(ctx, cfg.Model, nil); err != nil {
			return nil, fmt.Errorf("failed to preload model %q: %w", cfg.Model, err)
		}
	}
	return registry, nil
}

// Router builds the HTTP handler for the API server.
func (a *App) Router() http.Handler {
	return apphttp.NewRouter(&apphttp.Deps{
		NoteService: a.Notes,
		DB:          a.DB,
		Vault:       a.Vault,
		Providers:   a.Providers,
	})
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
