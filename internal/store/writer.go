package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/FocuswithJustin/versetag/core/verse"
)

const upsertVerseSQL = `
INSERT INTO verses (
	stable_id, translation, book, chapter, verse, ref_display,
	text, char_count, word_count, reading_grade, text_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stable_id, translation) DO UPDATE SET
	book = excluded.book,
	chapter = excluded.chapter,
	verse = excluded.verse,
	ref_display = excluded.ref_display,
	text = excluded.text,
	char_count = excluded.char_count,
	word_count = excluded.word_count,
	reading_grade = excluded.reading_grade,
	text_hash = excluded.text_hash`

// patchVerseSQL fills text and derived metrics only where the stored text is
// empty. Rows with text already present keep every column untouched.
const patchVerseSQL = `
INSERT INTO verses (
	stable_id, translation, book, chapter, verse, ref_display,
	text, char_count, word_count, reading_grade, text_hash
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stable_id, translation) DO UPDATE SET
	text          = CASE WHEN verses.text = '' THEN excluded.text ELSE verses.text END,
	char_count    = CASE WHEN verses.text = '' THEN excluded.char_count ELSE verses.char_count END,
	word_count    = CASE WHEN verses.text = '' THEN excluded.word_count ELSE verses.word_count END,
	reading_grade = CASE WHEN verses.text = '' THEN excluded.reading_grade ELSE verses.reading_grade END,
	text_hash     = CASE WHEN verses.text = '' THEN excluded.text_hash ELSE verses.text_hash END`

const upsertAnnotationSQL = `
INSERT INTO verse_annotations (
	stable_id, translation, themes, moods, daypart_probs, tone_probs,
	safety, familiarity, embedding
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (stable_id, translation) DO UPDATE SET
	themes = excluded.themes,
	moods = excluded.moods,
	daypart_probs = excluded.daypart_probs,
	tone_probs = excluded.tone_probs,
	safety = excluded.safety,
	familiarity = excluded.familiarity,
	embedding = excluded.embedding`

// UpsertVerse inserts or fully replaces one verse row inside tx.
func (s *Store) UpsertVerse(ctx context.Context, tx *sql.Tx, rec verse.Record) error {
	_, err := tx.ExecContext(ctx, s.rebind(upsertVerseSQL),
		rec.StableID, rec.Translation, rec.Book, rec.Chapter, rec.Verse,
		rec.RefDisplay, rec.Text, rec.CharCount, rec.WordCount,
		rec.ReadingGrade, rec.TextHash,
	)
	return err
}

// PatchVerse inserts the verse if absent, or fills its text and metrics if
// the stored text is empty. Non-empty rows are left unchanged.
func (s *Store) PatchVerse(ctx context.Context, tx *sql.Tx, rec verse.Record) error {
	_, err := tx.ExecContext(ctx, s.rebind(patchVerseSQL),
		rec.StableID, rec.Translation, rec.Book, rec.Chapter, rec.Verse,
		rec.RefDisplay, rec.Text, rec.CharCount, rec.WordCount,
		rec.ReadingGrade, rec.TextHash,
	)
	return err
}

// UpsertAnnotation inserts or replaces the annotation row for one verse.
// List-valued fields are serialized to JSON; a nil embedding stores NULL.
func (s *Store) UpsertAnnotation(ctx context.Context, tx *sql.Tx, ann verse.Annotation) error {
	themes, err := json.Marshal(ann.Themes)
	if err != nil {
		return err
	}
	moods, err := json.Marshal(ann.Moods)
	if err != nil {
		return err
	}
	dayparts, err := json.Marshal(ann.DaypartProbs)
	if err != nil {
		return err
	}
	tones, err := json.Marshal(ann.ToneProbs)
	if err != nil {
		return err
	}
	safety, err := json.Marshal(ann.Safety)
	if err != nil {
		return err
	}

	var embedding any
	if ann.Embedding != nil {
		enc, err := json.Marshal(ann.Embedding)
		if err != nil {
			return err
		}
		embedding = string(enc)
	}

	_, err = tx.ExecContext(ctx, s.rebind(upsertAnnotationSQL),
		ann.StableID, ann.Translation, string(themes), string(moods),
		string(dayparts), string(tones), string(safety), ann.Familiarity,
		embedding,
	)
	return err
}
