package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"videonotes/internal/contextutil"
	"videonotes/internal/service"
	"videonotes/internal/storage"
)

const maxRequestBody = 64 << 10

// NotesHandler handles HTTP requests for generating and listing video notes.
type NotesHandler struct {
	noteService service.NoteService
}

// NewNotesHandler creates a new NotesHandler.
func NewNotesHandler(noteService service.NoteService) *NotesHandler {
	return &NotesHandler{
		noteService: noteService,
	}
}

// GenerateNoteRequest represents the HTTP request payload for note generation.
//
// swagger:model GenerateNoteRequest
type GenerateNoteRequest struct {
	// YouTube watch, share, shorts or embed URL, or a bare video ID
	// required: true
	URL      string `json:"url"`
	Title    string `json:"title,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
	Provider string `json:"provider,omitempty"`
}

// GenerateNoteResponse represents the HTTP response payload for note generation.
//
// swagger:model GenerateNoteResponse
type GenerateNoteResponse struct {
	ID         string `json:"id"`
	VideoID    string `json:"video_id"`
	Title      string `json:"title"`
	Path       string `json:"path"`
	ViewURL    string `json:"view_url"`
	Provider   string `json:"provider"`
	Chunks     int    `json:"chunks"`
	Headings   int    `json:"headings"`
	Linked     int    `json:"linked"`
	Suppressed int    `json:"suppressed"`
	NoMatch    int    `json:"no_match"`
	Malformed  int    `json:"malformed"`
}

// NoteResponse is one stored note.
//
// swagger:model NoteResponse
type NoteResponse struct {
	ID           string    `json:"id"`
	VideoID      string    `json:"video_id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Path         string    `json:"path"`
	ViewURL      string    `json:"view_url"`
	Provider     string    `json:"provider"`
	ChunkCount   int       `json:"chunk_count"`
	HeadingCount int       `json:"heading_count"`
	LinkedCount  int       `json:"linked_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// HeadingResponse is the timestamp resolution of one heading.
type HeadingResponse struct {
	Position      int      `json:"position"`
	Level         int      `json:"level"`
	Text          string   `json:"text"`
	ChunkID       int      `json:"chunk_id"`
	Outcome       string   `json:"outcome"`
	OffsetSeconds *float64 `json:"offset_seconds,omitempty"`
	Confidence    float64  `json:"confidence,omitempty"`
}

// NoteDetailResponse is a note with its heading resolutions.
//
// swagger:model NoteDetailResponse
type NoteDetailResponse struct {
	NoteResponse
	Headings []HeadingResponse `json:"headings"`
}

// ListNotesResponse wraps the recent notes.
//
// swagger:model ListNotesResponse
type ListNotesResponse struct {
	Notes []NoteResponse `json:"notes"`
}

// Create generates a note for a video.
//
// swagger:route POST /api/notes notes generateNote
//
// Generate a timestamped note for a YouTube video and write it into the vault.
//
// responses:
//
//	'201': GenerateNoteResponse
//	'400': ErrorResponse
//	'404': ErrorResponse
//	'502': ErrorResponse
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req GenerateNoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Convert HTTP request to service request
	res, err := h.noteService.Generate(ctx, service.GenerateRequest{
		URL:      req.URL,
		Title:    req.Title,
		Prompt:   req.Prompt,
		Provider: strings.ToLower(strings.TrimSpace(req.Provider)),
	})
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to generate note")
		return
	}

	writeJSON(ctx, w, http.StatusCreated, GenerateNoteResponse{
		ID:         res.ID,
		VideoID:    res.VideoID,
		Title:      res.Title,
		Path:       res.Path,
		ViewURL:    ViewURL(res.Path),
		Provider:   res.Provider,
		Chunks:     res.Chunks,
		Headings:   res.Headings(),
		Linked:     res.Outcomes.Linked,
		Suppressed: res.Outcomes.Suppressed,
		NoMatch:    res.Outcomes.NoMatch,
		Malformed:  res.Outcomes.Malformed,
	})
}

// List returns recent notes.
//
// swagger:route GET /api/notes notes listNotes
//
// List recently generated notes, newest first.
//
// responses:
//
//	'200': ListNotesResponse
//	'400': ErrorResponse
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	notes, err := h.noteService.List(ctx, limit)
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to list notes")
		return
	}

	resp := ListNotesResponse{Notes: make([]NoteResponse, 0, len(notes))}
	for _, n := range notes {
		resp.Notes = append(resp.Notes, toNoteResponse(n))
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

// Get returns one note with its heading resolutions.
//
// swagger:route GET /api/notes/{id} notes getNote
//
// responses:
//
//	'200': NoteDetailResponse
//	'400': ErrorResponse
//	'404': ErrorResponse
func (h *NotesHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	detail, err := h.noteService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(ctx, w, err, "Failed to get note")
		return
	}

	resp := NoteDetailResponse{
		NoteResponse: toNoteResponse(detail.Note),
		Headings:     make([]HeadingResponse, 0, len(detail.Headings)),
	}
	for _, hd := range detail.Headings {
		resp.Headings = append(resp.Headings, HeadingResponse{
			Position:      hd.Position,
			Level:         hd.Level,
			Text:          hd.Text,
			ChunkID:       hd.ChunkID,
			Outcome:       hd.Outcome,
			OffsetSeconds: hd.Offset,
			Confidence:    hd.Confidence,
		})
	}
	writeJSON(ctx, w, http.StatusOK, resp)
}

func toNoteResponse(n storage.NoteRecord) NoteResponse {
	return NoteResponse{
		ID:           n.ID,
		VideoID:      n.VideoID,
		URL:          n.URL,
		Title:        n.Title,
		Path:         n.RelPath,
		ViewURL:      ViewURL(n.RelPath),
		Provider:     n.Provider,
		ChunkCount:   n.ChunkCount,
		HeadingCount: n.HeadingCount,
		LinkedCount:  n.LinkedCount,
		CreatedAt:    n.CreatedAt,
	}
}

// ViewURL returns the path under which NoteHandler renders a vault note.
func ViewURL(relPath string) string {
	segments := strings.Split(relPath, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/notes/" + strings.Join(segments, "/")
}
