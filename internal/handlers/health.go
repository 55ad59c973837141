package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"videonotes/internal/contextutil"
	"videonotes/internal/vault"
)

// Pinger checks database connectivity. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// NoteScanner lists the notes in the vault. *vault.Manager implements it.
type NoteScanner interface {
	ScanAll(ctx context.Context) ([]vault.ScannedFile, error)
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	db                 Pinger
	notes              NoteScanner
	providers          []string
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, notes NoteScanner, providers []string) *HealthHandler {
	return &HealthHandler{
		db:                 db,
		notes:              notes,
		providers:          providers,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of Markdown notes in the notes folder
	NoteCount int `json:"note_count"`

	// Registered LLM backends
	Providers []string `json:"providers,omitempty"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns the health status of the database and the vault.
//
// responses:
//
//	'200': HealthResponse
//	'503': HealthResponse
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
		Providers: h.providers,
	}

	if h.checkDatabase(checkCtx, logger) {
		response.Checks["database"] = "ok"
	} else {
		response.Checks["database"] = "error"
		response.Issues = append(response.Issues, "database_unavailable")
	}

	if count, ok := h.checkVault(checkCtx, logger); ok {
		response.Checks["vault"] = "ok"
		response.NoteCount = count
	} else {
		response.Checks["vault"] = "error"
		response.Issues = append(response.Issues, "vault_unreadable")
	}

	response.Status = "healthy"
	httpStatus := http.StatusOK
	if len(response.Issues) > 0 {
		response.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(ctx, w, httpStatus, response)
}

func (h *HealthHandler) checkDatabase(ctx context.Context, logger *slog.Logger) bool {
	if err := h.db.PingContext(ctx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		return false
	}
	return true
}

func (h *HealthHandler) checkVault(ctx context.Context, logger *slog.Logger) (int, bool) {
	files, err := h.notes.ScanAll(ctx)
	if err != nil {
		logger.WarnContext(ctx, "vault health check failed", "error", err)
		return 0, false
	}
	return len(files), true
}
