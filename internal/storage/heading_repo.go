package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// HeadingStore defines the interface for heading resolution storage.
type HeadingStore interface {
	// InsertAll stores all heading records of a note in one transaction.
	InsertAll(ctx context.Context, headings []HeadingRecord) error
	// ListByNote returns a note's headings ordered by position.
	ListByNote(ctx context.Context, noteID string) ([]HeadingRecord, error)
}

// HeadingRepo provides methods for heading operations.
// It implements the HeadingStore interface.
type HeadingRepo struct {
	db *sql.DB
}

// NewHeadingRepo creates a new HeadingRepo.
func NewHeadingRepo(db *sql.DB) *HeadingRepo {
	return &HeadingRepo{db: db}
}

// InsertAll stores all heading records in one transaction. The parent note
// must already exist.
func (r *HeadingRepo) InsertAll(ctx context.Context, headings []HeadingRecord) error {
	if len(headings) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO note_headings (note_id, position, level, text, chunk_id, outcome, offset_seconds, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare heading insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, h := range headings {
		var offset sql.NullFloat64
		if h.Offset != nil {
			offset = sql.NullFloat64{Float64: *h.Offset, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			h.NoteID, h.Position, h.Level, h.Text, h.ChunkID, h.Outcome, offset, h.Confidence,
		); err != nil {
			return fmt.Errorf("failed to insert heading %d: %w", h.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit headings: %w", err)
	}
	return nil
}

// ListByNote returns a note's headings ordered by position.
// Returns an empty slice if there are none (not an error).
func (r *HeadingRepo) ListByNote(ctx context.Context, noteID string) ([]HeadingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT note_id, position, level, text, chunk_id, outcome, offset_seconds, confidence
		 FROM note_headings WHERE note_id = ? ORDER BY position`,
		noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query headings: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	headings := []HeadingRecord{}
	for rows.Next() {
		var h HeadingRecord
		var offset sql.NullFloat64
		if err := rows.Scan(&h.NoteID, &h.Position, &h.Level, &h.Text, &h.ChunkID, &h.Outcome, &offset, &h.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan heading: %w", err)
		}
		if offset.Valid {
			v := offset.Float64
			h.Offset = &v
		}
		headings = append(headings, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return headings, nil
}
