package vault

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func testNote() Note {
	return Note{
		Title:     "Sorting: Algorithms?",
		URL:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:   "dQw4w9WgXcQ",
		Author:    "CS Channel",
		Duration:  612 * time.Second,
		Provider:  "openai",
		Body:      "\n## Quicksort [Watch](https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=40s)\n\nPivot and partition.\n",
		CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func splitFrontmatter(t *testing.T, content string) (frontmatter, string) {
	t.Helper()

	if !strings.HasPrefix(content, "---\n") {
		t.Fatalf("content does not start with frontmatter: %q", content)
	}
	end := strings.Index(content[4:], "\n---\n")
	if end < 0 {
		t.Fatalf("unterminated frontmatter: %q", content)
	}

	var fm frontmatter
	if err := yaml.Unmarshal([]byte(content[4:4+end]), &fm); err != nil {
		t.Fatalf("invalid frontmatter yaml: %v", err)
	}
	return fm, content[4+end+5:]
}

func TestManager_Render(t *testing.T) {
	m, err := NewManager(t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	out, err := m.Render(testNote())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	fm, body := splitFrontmatter(t, string(out))
	if fm.Title != "Sorting: Algorithms?" || fm.VideoID != "dQw4w9WgXcQ" || fm.Author != "CS Channel" {
		t.Errorf("frontmatter = %+v", fm)
	}
	if fm.Duration != "10:12" {
		t.Errorf("frontmatter duration = %q, want 10:12", fm.Duration)
	}
	if fm.Created != "2026-03-01T10:00:00Z" {
		t.Errorf("frontmatter created = %q", fm.Created)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "video-notes" {
		t.Errorf("frontmatter tags = %v, want defaults", fm.Tags)
	}

	for _, want := range []string{
		"# Sorting: Algorithms?\n",
		"> CS Channel · 10:12 · [Watch on YouTube](https://www.youtube.com/watch?v=dQw4w9WgXcQ)\n",
		"## Quicksort [Watch](https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=40s)\n\nPivot and partition.\n",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestManager_Render_CustomTemplate(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "note.tmpl")
	if err := os.WriteFile(tmplPath, []byte("{{ .Title }} by {{ .Author }} on {{ .Created }}\n{{ .Body }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(root, "", tmplPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	note := testNote()
	note.Tags = []string{"cs"}
	out, err := m.Render(note)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	fm, body := splitFrontmatter(t, string(out))
	if len(fm.Tags) != 1 || fm.Tags[0] != "cs" {
		t.Errorf("frontmatter tags = %v, want [cs]", fm.Tags)
	}
	if !strings.HasPrefix(body, "\nSorting: Algorithms? by CS Channel on 2026-03-01\n## Quicksort") {
		t.Errorf("body = %q", body)
	}
}

func TestManager_Render_TemplateError(t *testing.T) {
	root := t.TempDir()
	tmplPath := filepath.Join(root, "note.tmpl")
	if err := os.WriteFile(tmplPath, []byte("{{ .Missing }}"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(root, "", tmplPath)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if _, err := m.Render(testNote()); err == nil {
		t.Error("Render() with unknown field should fail")
	}
}

func TestManager_WriteNote(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root, "Video Notes", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	ctx := context.Background()

	first, err := m.WriteNote(ctx, testNote())
	if err != nil {
		t.Fatalf("WriteNote() error = %v", err)
	}
	if first != "Video Notes/Sorting Algorithms.md" {
		t.Errorf("WriteNote() path = %q", first)
	}

	second, err := m.WriteNote(ctx, testNote())
	if err != nil {
		t.Fatalf("WriteNote() second error = %v", err)
	}
	if second != "Video Notes/Sorting Algorithms (2).md" {
		t.Errorf("WriteNote() second path = %q", second)
	}

	abs, err := m.AbsPath(first)
	if err != nil {
		t.Fatalf("AbsPath() error = %v", err)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(content), "Pivot and partition.") {
		t.Errorf("written note missing body: %s", content)
	}

	entries, err := os.ReadDir(filepath.Join(root, "Video Notes"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("notes folder has %v, want exactly the two notes", names)
	}
}

func TestManager_WriteNote_Cancelled(t *testing.T) {
	m, err := NewManager(t.TempDir(), "", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.WriteNote(ctx, testNote()); err == nil {
		t.Error("WriteNote() with cancelled context should fail")
	}
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sorting Algorithms", "Sorting Algorithms"},
		{"A/B: C?", "A B C"},
		{"  ..hidden.. ", "hidden"},
		{"tabs\tand\nnewlines", "tabs and newlines"},
		{"[Tag] #1 ^block", "Tag 1 block"},
		{"###", "Untitled"},
		{"", "Untitled"},
		{strings.Repeat("é", 200), strings.Repeat("é", maxNameRunes)},
	}

	for _, tt := range tests {
		if got := SanitizeFileName(tt.in); got != tt.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{612 * time.Second, "10:12"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1:02:03"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
