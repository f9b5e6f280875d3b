// Package store persists users, videos, audios, files, and sessions in sqlite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict is returned on unique-constraint violations (duplicate email).
	ErrConflict = errors.New("store: conflict")
)

// Store wraps the sqlite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// sqlite allows one writer; serialize access through a single connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for advanced callers (avoid when possible).
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS videos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_email TEXT NOT NULL,
			video_task_id TEXT NOT NULL,
			remote_task_id TEXT,
			status TEXT NOT NULL,
			prompt TEXT,
			model TEXT,
			video_url TEXT,
			object_key TEXT,
			file_size INTEGER,
			error TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_user ON videos(user_email)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_task ON videos(video_task_id)`,
		`CREATE TABLE IF NOT EXISTS audios (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_email TEXT NOT NULL,
			text_input TEXT NOT NULL,
			voice_name TEXT NOT NULL,
			language_code TEXT NOT NULL,
			audio_format TEXT NOT NULL,
			status TEXT NOT NULL,
			file_path TEXT,
			file_size INTEGER,
			duration INTEGER,
			created_at TEXT NOT NULL,
			updated_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_email TEXT,
			session_id INTEGER,
			original_filename TEXT NOT NULL,
			object_key TEXT NOT NULL,
			bucket TEXT NOT NULL,
			size INTEGER NOT NULL,
			content_type TEXT,
			category TEXT,
			public_url TEXT,
			description TEXT,
			is_public INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_session ON files(session_id)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_email TEXT NOT NULL,
			name TEXT,
			description TEXT,
			status TEXT NOT NULL,
			user_prompt TEXT,
			video_prompt TEXT,
			audio_prompt TEXT,
			output_video_path TEXT,
			total_files INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			updated_at TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(time.RFC3339, v)
	return t
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullInt(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: v != 0}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
