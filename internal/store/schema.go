package store

import (
	"context"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
)

// Schema notes:
//   - (stable_id, translation) is the identity key on both tables.
//   - List-valued annotation fields are stored as JSON text so the same
//     DDL runs on SQLite and PostgreSQL.
//   - embedding is NULL whenever no semantic model produced one.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS verses (
		stable_id     TEXT NOT NULL,
		translation   TEXT NOT NULL,
		book          TEXT NOT NULL,
		chapter       INTEGER NOT NULL,
		verse         INTEGER NOT NULL,
		ref_display   TEXT NOT NULL,
		text          TEXT NOT NULL,
		char_count    INTEGER NOT NULL,
		word_count    INTEGER NOT NULL,
		reading_grade REAL NOT NULL,
		text_hash     TEXT NOT NULL,
		PRIMARY KEY (stable_id, translation)
	)`,
	`CREATE TABLE IF NOT EXISTS verse_annotations (
		stable_id     TEXT NOT NULL,
		translation   TEXT NOT NULL,
		themes        TEXT NOT NULL,
		moods         TEXT NOT NULL,
		daypart_probs TEXT NOT NULL,
		tone_probs    TEXT NOT NULL,
		safety        TEXT NOT NULL,
		familiarity   REAL NOT NULL,
		embedding     TEXT,
		PRIMARY KEY (stable_id, translation)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_verses_book ON verses (translation, book, chapter, verse)`,
}

// Migrate creates the schema if it does not exist. Safe to run on every
// start.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range schema {
		if _, err := s.db.ExecContext(ctx, ddl); err != nil {
			return verrors.NewIO("migrate", "", err)
		}
	}
	return nil
}
