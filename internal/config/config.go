package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/joho/godotenv"

	"videonotes/internal/chunker"
	"videonotes/internal/retry"
	"videonotes/internal/timestamps"
)

// LLM provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration for the application.
type Config struct {
	LogLevel      slog.Level
	LogFormat     string
	APIPort       string
	DBPath        string
	SummaryPrompt string // Empty selects the built-in prompt

	Vault      VaultConfig
	LLM        LLMConfig
	Retry      RetryConfig
	Transcript TranscriptConfig
	Chunk      ChunkConfig
	Match      MatchConfig
}

// VaultConfig locates the Markdown vault notes are written to.
type VaultConfig struct {
	Path         string
	NotesFolder  string
	TemplatePath string
}

// Validate validates the vault configuration.
func (c *VaultConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required.Error("VAULT_PATH is required")),
		validation.Field(&c.NotesFolder, validation.Required),
	)
}

// LLMConfig selects and configures the summarization backends.
type LLMConfig struct {
	Provider          string
	FallbackProvider  string
	BaseURL           string
	APIKey            string
	Model             string
	PreloadModel      bool
	GeminiBaseURL     string
	GeminiAPIKey      string
	GeminiModel       string
	Concurrency       int
	RequestsPerMinute int
}

// Uses reports whether name is the primary or fallback provider.
func (c *LLMConfig) Uses(name string) bool {
	return c.Provider == name || c.FallbackProvider == name
}

// Validate validates the LLM configuration.
func (c *LLMConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(ProviderOpenAI, ProviderGemini)),
		validation.Field(&c.FallbackProvider, validation.In(ProviderOpenAI, ProviderGemini)),
		validation.Field(&c.BaseURL, validation.When(c.Uses(ProviderOpenAI), validation.Required, is.URL)),
		validation.Field(&c.Model, validation.When(c.Uses(ProviderOpenAI), validation.Required)),
		validation.Field(&c.GeminiAPIKey, validation.When(c.Uses(ProviderGemini), validation.Required)),
		validation.Field(&c.GeminiModel, validation.When(c.Uses(ProviderGemini), validation.Required)),
		validation.Field(&c.GeminiBaseURL, is.URL),
		validation.Field(&c.Concurrency, validation.Min(1), validation.Max(32)),
		validation.Field(&c.RequestsPerMinute, validation.Min(0)),
	); err != nil {
		return err
	}
	if c.FallbackProvider != "" && c.FallbackProvider == c.Provider {
		return fmt.Errorf("llm: fallback provider %q is the same as the primary", c.FallbackProvider)
	}
	return nil
}

// RetryConfig bounds retries of upstream calls.
type RetryConfig struct {
	MaxRetries  int
	InitialWait time.Duration
	MaxWait     time.Duration
}

// Validate validates the retry configuration.
func (c *RetryConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.MaxRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.InitialWait, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.MaxWait, validation.Required),
	); err != nil {
		return err
	}
	if c.MaxWait < c.InitialWait {
		return fmt.Errorf("retry: RETRY_MAX_WAIT (%s) is less than RETRY_INITIAL_WAIT (%s)", c.MaxWait, c.InitialWait)
	}
	return nil
}

// Policy converts the configuration into a retry policy.
func (c RetryConfig) Policy() retry.Config {
	return retry.Config{
		MaxRetries:  c.MaxRetries,
		InitialWait: c.InitialWait,
		MaxWait:     c.MaxWait,
		Multiplier:  retry.DefaultConfig.Multiplier,
	}
}

// TranscriptConfig controls caption track selection and caching.
type TranscriptConfig struct {
	Languages []string
	CacheTTL  time.Duration
}

// Validate validates the transcript configuration.
func (c *TranscriptConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Languages, validation.Required),
		validation.Field(&c.CacheTTL, validation.Min(time.Duration(0))),
	)
}

// ChunkConfig sizes transcript chunks for summarization.
type ChunkConfig struct {
	MaxChars    int
	OverlapCues int
}

// Validate validates the chunk configuration.
func (c *ChunkConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MaxChars, validation.Required, validation.Min(200)),
		validation.Field(&c.OverlapCues, validation.Min(0), validation.Max(20)),
	)
}

// Options converts the configuration into chunker options.
func (c ChunkConfig) Options() chunker.Options {
	return chunker.Options{MaxRunes: c.MaxChars, Overlap: c.OverlapCues}
}

// MatchConfig tunes heading to timestamp matching.
type MatchConfig struct {
	WindowCues int
	MarginCues int
	Threshold  float64
	Stopwords  []string // nil selects the built-in list
}

// Validate validates the match configuration.
func (c *MatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.WindowCues, validation.Required, validation.Min(1), validation.Max(20)),
		validation.Field(&c.MarginCues, validation.Min(0), validation.Max(50)),
		validation.Field(&c.Threshold, validation.Min(0.0), validation.Max(1.0)),
	)
}

// Matcher converts the configuration into matcher settings.
func (c MatchConfig) Matcher() timestamps.Config {
	cfg := timestamps.DefaultConfig()
	cfg.WindowSize = c.WindowCues
	cfg.MarginCues = c.MarginCues
	cfg.Threshold = c.Threshold
	cfg.Stopwords = c.Stopwords
	return cfg
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogFormat, validation.In(LogFormatText, LogFormatJSON)),
		validation.Field(&c.APIPort, validation.Required, is.Port),
		validation.Field(&c.DBPath, validation.Required),
	); err != nil {
		return err
	}
	if err := c.Vault.Validate(); err != nil {
		return fmt.Errorf("vault: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Retry.Validate(); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	if err := c.Transcript.Validate(); err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	if err := c.Chunk.Validate(); err != nil {
		return fmt.Errorf("chunk: %w", err)
	}
	if err := c.Match.Validate(); err != nil {
		return fmt.Errorf("match: %w", err)
	}
	return nil
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or up to five parents, it is loaded.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		LogFormat:     strings.ToLower(getEnv("LOG_FORMAT", LogFormatText)),
		APIPort:       getEnv("API_PORT", "9000"),
		DBPath:        getEnv("DB_PATH", "./data/videonotes.db"),
		SummaryPrompt: getEnv("SUMMARY_PROMPT", ""),
		Vault: VaultConfig{
			Path:         getEnv("VAULT_PATH", ""),
			NotesFolder:  getEnv("VAULT_NOTES_FOLDER", "Video Notes"),
			TemplatePath: getEnv("NOTE_TEMPLATE_PATH", ""),
		},
		LLM: LLMConfig{
			Provider:         strings.ToLower(getEnv("LLM_PROVIDER", ProviderOpenAI)),
			FallbackProvider: strings.ToLower(getEnv("LLM_FALLBACK_PROVIDER", "")),
			BaseURL:          getEnv("LLM_BASE_URL", "http://localhost:8080"),
			APIKey:           getEnv("LLM_API_KEY", ""),
			Model:            getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
			GeminiBaseURL:    getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
			GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
			GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Transcript: TranscriptConfig{
			Languages: splitList(getEnv("TRANSCRIPT_LANGUAGES", "en")),
		},
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	var err error
	ints := []struct {
		key string
		def int
		dst *int
	}{
		{"LLM_CONCURRENCY", 3, &cfg.LLM.Concurrency},
		{"LLM_REQUESTS_PER_MINUTE", 60, &cfg.LLM.RequestsPerMinute},
		{"RETRY_MAX", 3, &cfg.Retry.MaxRetries},
		{"CHUNK_MAX_CHARS", chunker.DefaultMaxRunes, &cfg.Chunk.MaxChars},
		{"CHUNK_OVERLAP_CUES", chunker.DefaultOverlap, &cfg.Chunk.OverlapCues},
		{"MATCH_WINDOW_CUES", timestamps.DefaultWindowSize, &cfg.Match.WindowCues},
		{"MATCH_MARGIN_CUES", timestamps.DefaultMarginCues, &cfg.Match.MarginCues},
	}
	for _, v := range ints {
		if *v.dst, err = getEnvInt(v.key, v.def); err != nil {
			return nil, err
		}
	}

	durations := []struct {
		key string
		def time.Duration
		dst *time.Duration
	}{
		{"RETRY_INITIAL_WAIT", 500 * time.Millisecond, &cfg.Retry.InitialWait},
		{"RETRY_MAX_WAIT", 10 * time.Second, &cfg.Retry.MaxWait},
		{"TRANSCRIPT_CACHE_TTL", 168 * time.Hour, &cfg.Transcript.CacheTTL},
	}
	for _, v := range durations {
		if *v.dst, err = getEnvDuration(v.key, v.def); err != nil {
			return nil, err
		}
	}

	if cfg.Match.Threshold, err = getEnvFloat("MATCH_THRESHOLD", timestamps.DefaultThreshold); err != nil {
		return nil, err
	}
	if cfg.LLM.PreloadModel, err = getEnvBool("LLM_PRELOAD_MODEL", false); err != nil {
		return nil, err
	}
	if raw, ok := os.LookupEnv("MATCH_STOPWORDS"); ok {
		cfg.Match.Stopwords = splitList(raw)
		if cfg.Match.Stopwords == nil {
			cfg.Match.Stopwords = []string{}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Create the data directory for the database file
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads the first .env found in the working directory or its parents.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 6; i++ { // Limit search depth
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return // Reached filesystem root
		}
		dir = parent
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 500ms or 2h: %w", key, err)
	}
	return v, nil
}

// splitList splits a comma-separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
