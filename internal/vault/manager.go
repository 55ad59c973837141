package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

// ErrOutsideVault is returned when a relative path escapes the vault root.
var ErrOutsideVault = errors.New("path outside vault")

// DefaultNotesFolder is the vault folder generated notes are written to.
const DefaultNotesFolder = "Video Notes"

// Manager owns the vault root and writes generated notes into it.
type Manager struct {
	root        string
	notesFolder string
	tmpl        *template.Template
}

// NewManager creates a vault manager. The root must be an existing directory;
// the notes folder is created when missing. An empty templatePath selects the
// built-in note template.
func NewManager(root, notesFolder, templatePath string) (*Manager, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve vault root: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to access vault root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault root is not a directory: %s", absRoot)
	}

	if notesFolder == "" {
		notesFolder = DefaultNotesFolder
	}
	notesFolder = filepath.Clean(filepath.FromSlash(notesFolder))
	if filepath.IsAbs(notesFolder) || notesFolder == ".." || strings.HasPrefix(notesFolder, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: notes folder %q", ErrOutsideVault, notesFolder)
	}
	if err := os.MkdirAll(filepath.Join(absRoot, notesFolder), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create notes folder: %w", err)
	}

	tmpl, err := loadTemplate(templatePath)
	if err != nil {
		return nil, err
	}

	return &Manager{
		root:        absRoot,
		notesFolder: notesFolder,
		tmpl:        tmpl,
	}, nil
}

// Root returns the absolute vault root.
func (m *Manager) Root() string {
	return m.root
}

// NotesFolder returns the notes folder relative to the vault root, slash separated.
func (m *Manager) NotesFolder() string {
	return filepath.ToSlash(m.notesFolder)
}

// AbsPath returns the absolute path for a slash-separated path relative to
// the vault root. Paths that escape the root return ErrOutsideVault.
func (m *Manager) AbsPath(relPath string) (string, error) {
	if relPath == "" {
		return "", fmt.Errorf("%w: empty path", ErrOutsideVault)
	}
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, relPath)
	}

	abs := filepath.Join(m.root, clean)
	rel, err := filepath.Rel(m.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, relPath)
	}
	return abs, nil
}
