package http

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"videonotes/internal/service"
	"videonotes/internal/service/mocks"
	"videonotes/internal/storage"
	"videonotes/internal/vault"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type okPinger struct{}

func (okPinger) PingContext(ctx context.Context) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockNoteService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockNoteService := mocks.NewMockNoteService(ctrl)

	v, err := vault.NewManager(t.TempDir(), "Video Notes", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	return NewRouter(&Deps{
		NoteService: mockNoteService,
		DB:          okPinger{},
		Vault:       v,
		Providers:   []string{"openai"},
	}), mockNoteService
}

func TestNewRouter(t *testing.T) {
	router, _ := newTestRouter(t)
	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		mockSetup  func(*mocks.MockNoteService)
		wantStatus int
	}{
		{
			name:       "GET root redirects",
			method:     http.MethodGet,
			path:       "/",
			wantStatus: http.StatusFound,
		},
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/notes exists",
			method:     http.MethodPost,
			path:       "/api/notes",
			body:       "not json",
			wantStatus: http.StatusBadRequest, // Bad request due to invalid body, but route exists
		},
		{
			name:   "GET /api/notes",
			method: http.MethodGet,
			path:   "/api/notes?limit=3",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().List(gomock.Any(), 3).Return([]storage.NoteRecord{}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "GET /api/notes/{id}",
			method: http.MethodGet,
			path:   "/api/notes/abc",
			mockSetup: func(m *mocks.MockNoteService) {
				m.EXPECT().Get(gomock.Any(), "abc").Return(nil, service.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "DELETE /api/notes method not allowed",
			method:     http.MethodDelete,
			path:       "/api/notes",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "GET missing vault note",
			method:     http.MethodGet,
			path:       "/notes/Video%20Notes/missing.md",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			path:       "/api/notes",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, mockNoteService := newTestRouter(t)
			if tt.mockSetup != nil {
				tt.mockSetup(mockNoteService)
			}

			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/notes", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// Check CORS headers are present
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("Router should apply CORS middleware")
	}
}
