// Package verse defines the per-verse record types produced by extraction and
// annotation, plus the pure text-metric functions derived from canonical text.
package verse

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/FocuswithJustin/versetag/core/ref"
)

// Record is one extracted verse in canonical form.
// (StableID, Translation) uniquely identifies a verse.
type Record struct {
	StableID     string  `json:"stable_id"`
	Translation  string  `json:"translation"`
	Book         string  `json:"book"`
	Chapter      int     `json:"chapter"`
	Verse        int     `json:"verse"`
	RefDisplay   string  `json:"ref_display"`
	Text         string  `json:"text"`
	CharCount    int     `json:"char_count"`
	WordCount    int     `json:"word_count"`
	ReadingGrade float64 `json:"reading_grade"`
	TextHash     string  `json:"text_hash"`
}

// SafetyFlags are independent keyword-backstop content flags.
// KidSafe is derived: !(Violence || Sexual).
type SafetyFlags struct {
	Violence    bool `json:"violence"`
	Sexual      bool `json:"sexual"`
	Slavery     bool `json:"slavery"`
	HarshRebuke bool `json:"harsh_rebuke"`
	KidSafe     bool `json:"kid_safe"`
}

// Annotation is the semantic fingerprint of one verse, keyed like Record.
// Embedding is nil unless a real semantic model produced it; the deterministic
// fallback path never populates it.
type Annotation struct {
	StableID     string      `json:"stable_id"`
	Translation  string      `json:"translation"`
	Themes       []string    `json:"themes"`
	Moods        []string    `json:"moods"`
	DaypartProbs []float64   `json:"daypart_probs"`
	ToneProbs    []float64   `json:"tone_probs"`
	Safety       SafetyFlags `json:"safety"`
	Familiarity  float64     `json:"familiarity"`
	Embedding    []float32   `json:"embedding,omitempty"`
}

var whitespace = regexp.MustCompile(`\s+`)

// Canonicalize collapses internal whitespace to single spaces and trims.
func Canonicalize(raw string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(raw, " "))
}

// New builds a complete Record from a normalized reference and verse text.
// Metrics and hash are derived from the canonical form so re-ingesting
// identical source yields identical values.
func New(translation string, r ref.Ref, text string) Record {
	clean := Canonicalize(text)
	return Record{
		StableID:     r.StableID(),
		Translation:  translation,
		Book:         r.BookName,
		Chapter:      r.Chapter,
		Verse:        r.Verse,
		RefDisplay:   r.Display(),
		Text:         clean,
		CharCount:    utf8.RuneCountInString(clean),
		WordCount:    WordCount(clean),
		ReadingGrade: ReadingGrade(clean),
		TextHash:     Hash(clean),
	}
}
