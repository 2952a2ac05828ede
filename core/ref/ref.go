// Package ref normalizes format-native verse identifiers into canonical
// (book, chapter, verse) references with stable ids and display strings.
package ref

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
)

// Ref is a canonical scripture reference.
type Ref struct {
	// Book is the OSIS book code (e.g., "Gen", "1Pet").
	Book string

	// BookName is the human-friendly display name (e.g., "1 Peter").
	// Unknown book codes pass through verbatim.
	BookName string

	// Chapter is the chapter number. 0 means the raw token carried no digits.
	Chapter int

	// Verse is the verse number. 0 means the raw token carried no digits.
	Verse int
}

// StableID returns the format-independent identifier "Book.Chapter.Verse".
func (r Ref) StableID() string {
	return fmt.Sprintf("%s.%d.%d", r.Book, r.Chapter, r.Verse)
}

// Display returns the human-readable reference, e.g. "1 Peter 5:7".
func (r Ref) Display() string {
	return fmt.Sprintf("%s %d:%d", r.BookName, r.Chapter, r.Verse)
}

// Anomalous reports whether chapter or verse extraction defaulted to 0.
// Anomalous refs are kept, counted, and logged rather than dropped.
func (r Ref) Anomalous() bool {
	return r.Chapter == 0 || r.Verse == 0
}

// osisGrammar is the participle grammar for OSIS-style ids.
// Examples: "Gen.1.1", "1Pet.5.7", "Matt.5.3-12", "Ps.119.105a"
//
//nolint:govet // participle grammar tags are not standard struct tags
type osisGrammar struct {
	BookPrefix string       `parser:"@Int?"`
	BookName   string       `parser:"@Ident"`
	ChapterRef *chapterPart `parser:"( \".\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter  int        `parser:"@Int"`
	VerseRef *versePart `parser:"( \".\" @@ )?"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse    int     `parser:"@Int"`
	SubVerse *string `parser:"@SubVerse?"`
	RangeEnd *int    `parser:"( \"-\" @Int )?"`
}

// osisLexer tokenizes OSIS ids. Ident starts with uppercase to distinguish
// book names from single-lowercase sub-verse letters.
var osisLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Za-z]*`},
	{Name: "SubVerse", Pattern: `[a-z]`},
	{Name: "Punct", Pattern: `[.\-]`},
})

var osisParser = participle.MustBuild[osisGrammar](
	participle.Lexer(osisLexer),
)

var nonDigit = regexp.MustCompile(`\D`)

// digits extracts the numeric value of a raw chapter/verse token by stripping
// every non-digit character. Tokens with no digits yield 0.
func digits(raw string) int {
	s := nonDigit.ReplaceAllString(raw, "")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Normalize builds a canonical Ref from an OSIS book code and raw
// chapter/verse tokens. Non-numeric fragments are reduced to their digits;
// tokens without digits default to 0 and the ref reports Anomalous.
func Normalize(osisCode, rawChapter, rawVerse string) Ref {
	return Ref{
		Book:     osisCode,
		BookName: BookName(osisCode),
		Chapter:  digits(rawChapter),
		Verse:    digits(rawVerse),
	}
}

// ParseOSISID parses a composite OSIS id such as "1Pet.5.7" into a Ref.
// Ids with fewer than 3 dot-separated segments are malformed. Verse ranges
// collapse to the range start; sub-verse letters are dropped.
func ParseOSISID(osisID string) (Ref, error) {
	id := strings.TrimSpace(osisID)
	parts := strings.Split(id, ".")
	if len(parts) < 3 {
		return Ref{}, verrors.NewRef(osisID, "fewer than 3 segments")
	}

	book := parts[0]
	chapter, verse := 0, 0

	if parsed, err := osisParser.ParseString("", id); err == nil {
		book = parsed.BookPrefix + parsed.BookName
		if parsed.ChapterRef != nil {
			chapter = parsed.ChapterRef.Chapter
			if parsed.ChapterRef.VerseRef != nil {
				verse = parsed.ChapterRef.VerseRef.Verse
			}
		}
	} else {
		// Dialect quirks like "Gen.ch1.v1": fall back to digit extraction.
		chapter = digits(parts[1])
		verse = digits(parts[2])
	}

	return Ref{
		Book:     book,
		BookName: BookName(book),
		Chapter:  chapter,
		Verse:    verse,
	}, nil
}
