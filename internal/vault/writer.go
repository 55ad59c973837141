package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

const maxNameRunes = 120

// DefaultTemplate renders the note body below the frontmatter.
const DefaultTemplate = `# {{ .Title }}

{{ if .Author }}> {{ .Author }}{{ if .Duration }} · {{ .Duration }}{{ end }} · [Watch on YouTube]({{ .URL }}){{ else }}> [Watch on YouTube]({{ .URL }}){{ end }}

{{ .Body }}
`

// DefaultTags are added to every note's frontmatter.
var DefaultTags = []string{"video-notes", "youtube"}

// Note is a generated note ready to be written into the vault.
type Note struct {
	Title     string
	URL       string
	VideoID   string
	Author    string
	Duration  time.Duration
	Provider  string
	Tags      []string
	Body      string // Markdown with timestamp links already spliced in
	CreatedAt time.Time
}

// frontmatter is the YAML block at the top of each note.
type frontmatter struct {
	Title    string   `yaml:"title"`
	URL      string   `yaml:"url"`
	VideoID  string   `yaml:"video_id"`
	Author   string   `yaml:"author,omitempty"`
	Duration string   `yaml:"duration,omitempty"`
	Created  string   `yaml:"created"`
	Provider string   `yaml:"provider,omitempty"`
	Tags     []string `yaml:"tags,flow"`
}

// templateData is what note templates can reference.
type templateData struct {
	Title    string
	URL      string
	VideoID  string
	Author   string
	Duration string
	Provider string
	Created  string
	Body     string
}

func loadTemplate(path string) (*template.Template, error) {
	if path == "" {
		return template.Must(template.New("note").Parse(DefaultTemplate)), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read note template: %w", err)
	}
	tmpl, err := template.New(filepath.Base(path)).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse note template: %w", err)
	}
	return tmpl, nil
}

// Render produces the full note file content: YAML frontmatter followed by
// the rendered template.
func (m *Manager) Render(note Note) ([]byte, error) {
	created := note.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	tags := note.Tags
	if len(tags) == 0 {
		tags = DefaultTags
	}
	duration := ""
	if note.Duration > 0 {
		duration = FormatDuration(note.Duration)
	}

	fm, err := yaml.Marshal(frontmatter{
		Title:    note.Title,
		URL:      note.URL,
		VideoID:  note.VideoID,
		Author:   note.Author,
		Duration: duration,
		Created:  created.Format(time.RFC3339),
		Provider: note.Provider,
		Tags:     tags,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")

	err = m.tmpl.Execute(&buf, templateData{
		Title:    note.Title,
		URL:      note.URL,
		VideoID:  note.VideoID,
		Author:   note.Author,
		Duration: duration,
		Provider: note.Provider,
		Created:  created.Format("2006-01-02"),
		Body:     strings.TrimSpace(note.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render note template: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteNote renders the note and writes it into the notes folder. Existing
// files are never overwritten: a " (2)", " (3)"... suffix is added instead.
// Returns the slash-separated path relative to the vault root.
func (m *Manager) WriteNote(ctx context.Context, note Note) (string, error) {
	content, err := m.Render(note)
	if err != nil {
		return "", err
	}

	dir := filepath.Join(m.root, m.notesFolder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpPath, err := writeTemp(dir, content)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	base := SanitizeFileName(note.Title)
	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := base + ".md"
		if n > 1 {
			name = fmt.Sprintf("%s (%d).md", base, n)
		}
		target := filepath.Join(dir, name)

		// Link fails if target exists, so concurrent writers never clobber each other.
		err := os.Link(tmpPath, target)
		if err == nil {
			return filepath.ToSlash(filepath.Join(m.notesFolder, name)), nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("failed to place note %s: %w", target, err)
		}
	}
}

// writeTemp writes data to a synced temp file in dir and returns its path.
func writeTemp(dir string, data []byte) (string, error) {
	tmpFile, err := os.CreateTemp(dir, ".videonote-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("setting permissions: %w", err)
	}
	return tmpPath, nil
}

// SanitizeFileName turns a note title into a file name that is valid on
// common filesystems and inside Obsidian links.
func SanitizeFileName(title string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range title {
		switch {
		case strings.ContainsRune(`\/:*?"<>|#^[]`, r), unicode.IsControl(r):
			r = ' '
		}
		if unicode.IsSpace(r) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}

	name := strings.Trim(b.String(), " .")
	if runes := []rune(name); len(runes) > maxNameRunes {
		name = strings.TrimRight(string(runes[:maxNameRunes]), " .")
	}
	if name == "" {
		return "Untitled"
	}
	return name
}

// FormatDuration formats a duration as H:MM:SS, or M:SS under an hour.
func FormatDuration(d time.Duration) string {
	total := int(d / time.Second)
	h := total / 3600
	m := (total / 60) % 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
