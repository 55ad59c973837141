package vault

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ScannedFile represents a markdown note found in the notes folder.
type ScannedFile struct {
	RelPath string // Relative path from vault root (e.g., "Video Notes/Sorting.md")
	Title   string // File name without extension
	ModTime time.Time
	Size    int64
}

// ScanAll lists the markdown files under the notes folder, newest first.
func (m *Manager) ScanAll(ctx context.Context) ([]ScannedFile, error) {
	var scannedFiles []ScannedFile
	dir := filepath.Join(m.root, m.notesFolder)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == dir {
				return filepath.SkipDir
			}
			return fmt.Errorf("failed to access path %s: %w", path, err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			// Skip .obsidian and other hidden directories
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".md" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		relPath, err := filepath.Rel(m.root, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}

		scannedFiles = append(scannedFiles, ScannedFile{
			RelPath: filepath.ToSlash(relPath),
			Title:   strings.TrimSuffix(d.Name(), ".md"),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan notes folder: %w", err)
	}

	sort.SliceStable(scannedFiles, func(i, j int) bool {
		if !scannedFiles[i].ModTime.Equal(scannedFiles[j].ModTime) {
			return scannedFiles[i].ModTime.After(scannedFiles[j].ModTime)
		}
		return scannedFiles[i].RelPath < scannedFiles[j].RelPath
	})
	return scannedFiles, nil
}
