package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is the fixed-width UTC format used for every timestamp column,
// so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// New opens a SQLite database connection at the given path.
// Foreign keys and a busy timeout are enabled on every pooled connection.
func New(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			video_id TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			author TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			duration_seconds INTEGER NOT NULL DEFAULT 0,
			cues_json TEXT NOT NULL,
			fetched_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL,
			rel_path TEXT NOT NULL UNIQUE,
			provider TEXT NOT NULL,
			chunk_count INTEGER NOT NULL DEFAULT 0,
			heading_count INTEGER NOT NULL DEFAULT 0,
			linked_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_notes_created_at ON notes (created_at);`,
		`CREATE TABLE IF NOT EXISTS note_headings (
			note_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			level INTEGER NOT NULL,
			text TEXT NOT NULL,
			chunk_id INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			offset_seconds REAL,
			confidence REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (note_id, position),
			FOREIGN KEY (note_id) REFERENCES notes(id) ON DELETE CASCADE
		);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
