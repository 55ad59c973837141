package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 20

// NoteStore defines the interface for note storage operations.
type NoteStore interface {
	// Insert stores a new note record. A missing ID or CreatedAt is filled in.
	Insert(ctx context.Context, note *NoteRecord) error
	// GetByID gets a note by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*NoteRecord, error)
	// List returns the most recent notes first.
	List(ctx context.Context, limit int) ([]NoteRecord, error)
	// Delete removes a note and its headings.
	Delete(ctx context.Context, id string) error
}

// NoteRepo provides methods for note operations.
// It implements the NoteStore interface.
type NoteRepo struct {
	db *sql.DB
}

// NewNoteRepo creates a new NoteRepo.
func NewNoteRepo(db *sql.DB) *NoteRepo {
	return &NoteRepo{db: db}
}

const noteColumns = "id, video_id, url, title, rel_path, provider, chunk_count, heading_count, linked_count, created_at"

// Insert stores a new note record. A missing ID gets a fresh UUID and a zero
// CreatedAt is set to now.
func (r *NoteRepo) Insert(ctx context.Context, note *NoteRecord) error {
	if note.ID == "" {
		note.ID = uuid.New().String()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO notes ("+noteColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		note.ID, note.VideoID, note.URL, note.Title, note.RelPath, note.Provider,
		note.ChunkCount, note.HeadingCount, note.LinkedCount, note.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}
	return nil
}

// GetByID gets a note by its ID. Returns ErrNotFound if not found.
func (r *NoteRepo) GetByID(ctx context.Context, id string) (*NoteRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+noteColumns+" FROM notes WHERE id = ?", id)

	note, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query note: %w", err)
	}
	return note, nil
}

// List returns up to limit notes, newest first. A non-positive limit uses
// DefaultListLimit. Returns an empty slice if there are no notes.
func (r *NoteRepo) List(ctx context.Context, limit int) ([]NoteRecord, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT "+noteColumns+" FROM notes ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	notes := []NoteRecord{}
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, *note)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return notes, nil
}

// Delete removes a note and, through the foreign key, its headings.
// Returns ErrNotFound if the note does not exist.
func (r *NoteRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*NoteRecord, error) {
	var note NoteRecord
	var createdAt string
	err := row.Scan(&note.ID, &note.VideoID, &note.URL, &note.Title, &note.RelPath, &note.Provider,
		&note.ChunkCount, &note.HeadingCount, &note.LinkedCount, &createdAt)
	if err != nil {
		return nil, err
	}

	note.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at timestamp: %w", err)
	}
	return &note, nil
}
