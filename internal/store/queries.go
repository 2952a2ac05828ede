package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/verse"
)

// VerseCount reports the stored verse rows for one translation.
func (s *Store) VerseCount(ctx context.Context, translation string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM verses WHERE translation = ?`),
		translation,
	).Scan(&n)
	return n, err
}

// AnnotationCount reports the stored annotation rows for one translation.
func (s *Store) AnnotationCount(ctx context.Context, translation string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT COUNT(*) FROM verse_annotations WHERE translation = ?`),
		translation,
	).Scan(&n)
	return n, err
}

// GetVerse fetches one verse row by identity key.
func (s *Store) GetVerse(ctx context.Context, stableID, translation string) (verse.Record, error) {
	var rec verse.Record
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT stable_id, translation, book, chapter, verse, ref_display,
		       text, char_count, word_count, reading_grade, text_hash
		FROM verses WHERE stable_id = ? AND translation = ?`),
		stableID, translation,
	).Scan(
		&rec.StableID, &rec.Translation, &rec.Book, &rec.Chapter, &rec.Verse,
		&rec.RefDisplay, &rec.Text, &rec.CharCount, &rec.WordCount,
		&rec.ReadingGrade, &rec.TextHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, verrors.ErrNotFound
	}
	return rec, err
}

// GetAnnotation fetches one annotation row by identity key, decoding the
// JSON list fields. Embedding is nil when the column is NULL.
func (s *Store) GetAnnotation(ctx context.Context, stableID, translation string) (verse.Annotation, error) {
	var (
		ann       verse.Annotation
		themes    string
		moods     string
		dayparts  string
		tones     string
		safety    string
		embedding sql.NullString
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT stable_id, translation, themes, moods, daypart_probs,
		       tone_probs, safety, familiarity, embedding
		FROM verse_annotations WHERE stable_id = ? AND translation = ?`),
		stableID, translation,
	).Scan(
		&ann.StableID, &ann.Translation, &themes, &moods, &dayparts,
		&tones, &safety, &ann.Familiarity, &embedding,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return ann, verrors.ErrNotFound
	}
	if err != nil {
		return ann, err
	}

	for _, field := range []struct {
		raw  string
		into any
	}{
		{themes, &ann.Themes},
		{moods, &ann.Moods},
		{dayparts, &ann.DaypartProbs},
		{tones, &ann.ToneProbs},
		{safety, &ann.Safety},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.into); err != nil {
			return ann, verrors.NewParse("annotation", stableID, err.Error())
		}
	}
	if embedding.Valid {
		if err := json.Unmarshal([]byte(embedding.String), &ann.Embedding); err != nil {
			return ann, verrors.NewParse("annotation", stableID, err.Error())
		}
	}
	return ann, nil
}
