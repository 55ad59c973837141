package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"videonotes/internal/handlers"
	"videonotes/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	NoteService service.NoteService
	DB          handlers.Pinger
	Vault       VaultFiles
	Providers   []string // Registered LLM backends, reported by the health check
}

// VaultFiles is what the router needs from the vault. *vault.Manager implements it.
type VaultFiles interface {
	handlers.NoteFiles
	handlers.NoteScanner
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	// Add CORS middleware
	r.Use(CORS)

	notesHandler := handlers.NewNotesHandler(deps.NoteService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Vault, deps.Providers)
	noteHandler := handlers.NewNoteHandler(deps.Vault)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Route("/notes", func(r chi.Router) {
			r.Post("/", notesHandler.Create)
			r.Get("/", notesHandler.List)
			r.Get("/{id}", notesHandler.Get)
		})
	})

	// Rendered vault notes
	r.Method(http.MethodGet, "/notes/*", noteHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/notes", http.StatusFound)
	})

	return r
}
