package vault

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestManager_ScanAll(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root, "Video Notes", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	files := map[string]time.Time{
		"Video Notes/Old.md":           time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		"Video Notes/New.md":           time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		"Video Notes/Series/Part 1.md": time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		"Video Notes/readme.txt":       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"Video Notes/.obsidian/x.md":   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"Video Notes/.videonote-1.tmp": time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		"Elsewhere/Unrelated.md":       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	for rel, mod := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("# note"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	scanned, err := m.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}

	want := []string{"Video Notes/New.md", "Video Notes/Series/Part 1.md", "Video Notes/Old.md"}
	if len(scanned) != len(want) {
		t.Fatalf("ScanAll() returned %d files (%+v), want %d", len(scanned), scanned, len(want))
	}
	for i, rel := range want {
		if scanned[i].RelPath != rel {
			t.Errorf("ScanAll()[%d] = %s, want %s", i, scanned[i].RelPath, rel)
		}
	}
	if scanned[0].Title != "New" || scanned[0].Size != int64(len("# note")) {
		t.Errorf("ScanAll()[0] = %+v", scanned[0])
	}
}

func TestManager_ScanAll_ContextCancellation(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root, "", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, DefaultNotesFolder, "a.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := m.ScanAll(ctx); err == nil {
		t.Error("ScanAll() with cancelled context should fail")
	}
}

func TestManager_ScanAll_MissingFolder(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root, "", "")
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	if err := os.RemoveAll(filepath.Join(root, DefaultNotesFolder)); err != nil {
		t.Fatal(err)
	}

	scanned, err := m.ScanAll(context.Background())
	if err != nil {
		t.Fatalf("ScanAll() error = %v", err)
	}
	if len(scanned) != 0 {
		t.Errorf("ScanAll() = %v, want none", scanned)
	}
}
