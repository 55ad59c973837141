package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"gopkg.in/yaml.v3"

	"videonotes/internal/contextutil"
)

// NoteFiles resolves vault-relative note paths.
type NoteFiles interface {
	AbsPath(relPath string) (string, error)
}

// NoteHandler serves vault notes as rendered HTML pages.
type NoteHandler struct {
	files    NoteFiles
	md       goldmark.Markdown
	template *template.Template
}

// noteMeta is the subset of the note frontmatter shown on the page.
type noteMeta struct {
	Title    string `yaml:"title"`
	URL      string `yaml:"url"`
	Author   string `yaml:"author"`
	Duration string `yaml:"duration"`
	Provider string `yaml:"provider"`
}

// notePageData holds template data for rendered note pages.
type notePageData struct {
	Meta    noteMeta
	RelPath string
	Content template.HTML
}

var notePage = template.Must(template.New("note").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Meta.Title}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif; margin: 0 auto; padding: 2rem; max-width: 860px; line-height: 1.65; background: #fafaf7; color: #1f2328; }
    header { border-bottom: 1px solid #d8dee4; margin-bottom: 1.5rem; padding-bottom: 1rem; }
    h1 { margin: 0; font-size: 1.9rem; }
    h2 a, h3 a { font-size: 0.8rem; font-weight: normal; margin-left: 0.4rem; }
    .meta { color: #59636e; font-size: 0.95rem; }
    a { color: #0969da; text-decoration: none; }
    a:hover { text-decoration: underline; }
    code { background: #eff1f3; padding: 1px 4px; border-radius: 4px; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Meta.Title}}</h1>
    <p class="meta">
      {{if .Meta.Author}}{{.Meta.Author}} &middot; {{end}}{{if .Meta.Duration}}{{.Meta.Duration}} &middot; {{end}}{{if .Meta.URL}}<a href="{{.Meta.URL}}">Watch on YouTube</a> &middot; {{end}}{{.RelPath}}
    </p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

// NewNoteHandler creates a new handler for serving note files.
func NewNoteHandler(files NoteFiles) *NoteHandler {
	return &NoteHandler{
		files: files,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: notePage,
	}
}

// ServeHTTP renders the requested note file as HTML.
func (h *NoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	decoded, err := url.PathUnescape(chi.URLParam(r, "*"))
	if err != nil {
		http.Error(w, "invalid path encoding", http.StatusBadRequest)
		return
	}

	relPath, err := cleanRelPath(decoded)
	if err != nil {
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}
	if !strings.EqualFold(path.Ext(relPath), ".md") {
		http.Error(w, "not a note", http.StatusNotFound)
		return
	}

	absPath, err := h.files.AbsPath(relPath)
	if err != nil {
		logger.WarnContext(ctx, "invalid note path", "rel_path", relPath, "error", err)
		http.Error(w, "invalid path", http.StatusBadRequest)
		return
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "note not found", http.StatusNotFound)
			return
		}
		logger.ErrorContext(ctx, "failed to read note", "path", absPath, "error", err)
		http.Error(w, "failed to read note", http.StatusInternalServerError)
		return
	}

	meta, body := splitFrontmatter(data)
	if meta.Title == "" {
		meta.Title = inferTitle(relPath)
	}

	htmlContent, err := h.renderMarkdown(body)
	if err != nil {
		logger.ErrorContext(ctx, "failed to render markdown", "path", absPath, "error", err)
		http.Error(w, "failed to render note", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.template.Execute(w, notePageData{
		Meta:    meta,
		RelPath: relPath,
		Content: template.HTML(htmlContent),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to execute note template", "path", absPath, "error", err)
	}
}

func (h *NoteHandler) renderMarkdown(content []byte) (string, error) {
	var buf bytes.Buffer
	if err := h.md.Convert(content, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return buf.String(), nil
}

// splitFrontmatter separates a leading YAML block from the Markdown body.
// Unparseable frontmatter is left in the body.
func splitFrontmatter(data []byte) (noteMeta, []byte) {
	var meta noteMeta
	rest, ok := bytes.CutPrefix(data, []byte("---\n"))
	if !ok {
		return meta, data
	}
	block, body, ok := bytes.Cut(rest, []byte("\n---\n"))
	if !ok {
		return meta, data
	}
	if err := yaml.Unmarshal(block, &meta); err != nil {
		return noteMeta{}, data
	}
	return meta, body
}

func cleanRelPath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", errors.New("empty path")
	}
	for _, segment := range strings.Split(trimmed, "/") {
		if segment == ".." {
			return "", errors.New("path traversal detected")
		}
	}

	cleaned := strings.TrimPrefix(path.Clean("/"+trimmed), "/")
	if cleaned == "" || cleaned == "." {
		return "", errors.New("invalid path")
	}
	return cleaned, nil
}

func inferTitle(rel string) string {
	base := filepath.Base(rel)
	if base == "." || base == "" {
		return "Note"
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
