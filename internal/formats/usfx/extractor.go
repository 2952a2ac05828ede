// Package usfx extracts verse records from the streaming USFX dialect, where
// verse boundaries are milestone markers and text lives between them.
package usfx

import (
	"encoding/xml"
	"io"
	"strings"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/ref"
	"github.com/FocuswithJustin/versetag/core/verse"
	"github.com/FocuswithJustin/versetag/internal/formats"
)

// skipNames are element names whose text is never scripture: footnotes,
// cross references and their wrappers.
var skipNames = map[string]bool{
	"note":     true,
	"xref":     true,
	"f":        true,
	"footnote": true,
	"x":        true,
	"rf":       true,
	"fn":       true,
}

// Extractor is the token-streaming extractor for dialect B. It holds no
// state between calls; a fresh walker is built per Extract.
type Extractor struct{}

// New returns the streaming extractor.
func New() *Extractor {
	return &Extractor{}
}

// Dialect identifies this extractor.
func (e *Extractor) Dialect() string { return formats.DialectUSFX }

// walker is the per-file milestone state machine. A verse is open from a
// <v> marker until the next boundary (<ve>, <v>, <c>, or book end), and
// character data is buffered only while a book, chapter, and verse are all
// open and no skip element encloses the cursor.
type walker struct {
	translation string
	emit        formats.EmitFunc
	stats       formats.Stats

	book      string // OSIS code of the open book, "" outside any book
	chapter   string // raw chapter marker id
	verseID   string // raw verse marker id
	verseOpen bool
	skipDepth int
	buf       strings.Builder
}

// Extract walks the token stream and emits one record per closed verse span.
// Verses that close with an empty buffer are dropped and counted.
func (e *Extractor) Extract(r io.Reader, translation string, emit formats.EmitFunc) (formats.Stats, error) {
	w := &walker{translation: translation, emit: emit}

	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return w.stats, verrors.NewParse("USFX", "", err.Error())
		}
		if err := w.step(tok); err != nil {
			return w.stats, err
		}
	}

	// A final book end normally closes the last verse; tolerate truncated
	// documents by flushing whatever is still open.
	if err := w.flush(); err != nil {
		return w.stats, err
	}
	return w.stats, nil
}

func (w *walker) step(tok xml.Token) error {
	switch t := tok.(type) {
	case xml.StartElement:
		return w.startElement(t)
	case xml.EndElement:
		return w.endElement(t)
	case xml.CharData:
		if w.collecting() {
			w.buf.Write(t)
		}
	}
	return nil
}

func (w *walker) startElement(t xml.StartElement) error {
	if w.skipDepth > 0 {
		w.skipDepth++
		return nil
	}
	name := t.Name.Local
	if skipNames[name] {
		w.skipDepth = 1
		return nil
	}

	switch name {
	case "book":
		if err := w.flush(); err != nil {
			return err
		}
		id := attr(t, "id")
		if id == "" {
			w.stats.SkippedMalformed++
			w.book = ""
			return nil
		}
		w.book = ref.OSISCode(id)
		w.chapter, w.verseID = "", ""

	case "c":
		id := attr(t, "id")
		if !hasDigits(id) {
			// Headings and intro markers carry digit-free ids. The open
			// verse stays open across them.
			w.stats.AnomalousRefs++
			return nil
		}
		if err := w.flush(); err != nil {
			return err
		}
		w.chapter = id

	case "v":
		id := attr(t, "id")
		if id == "" {
			w.stats.SkippedMalformed++
			return nil
		}
		if !hasDigits(id) {
			w.stats.AnomalousRefs++
			return nil
		}
		if err := w.flush(); err != nil {
			return err
		}
		w.verseID = id
		w.verseOpen = true
		w.buf.Reset()
	}
	return nil
}

func (w *walker) endElement(t xml.EndElement) error {
	if w.skipDepth > 0 {
		w.skipDepth--
		return nil
	}
	switch t.Name.Local {
	case "ve":
		return w.flush()
	case "book":
		if err := w.flush(); err != nil {
			return err
		}
		w.book = ""
	}
	return nil
}

// collecting reports whether character data at the cursor belongs to the
// open verse.
func (w *walker) collecting() bool {
	return w.verseOpen && w.skipDepth == 0 && w.book != "" && w.chapter != ""
}

// flush closes the open verse span, emitting it unless the buffered text is
// empty after canonicalization.
func (w *walker) flush() error {
	if !w.verseOpen {
		return nil
	}
	w.verseOpen = false

	text := verse.Canonicalize(w.buf.String())
	w.buf.Reset()
	if text == "" {
		w.stats.SkippedEmpty++
		return nil
	}

	vr := ref.Normalize(w.book, w.chapter, w.verseID)
	if vr.Anomalous() {
		w.stats.AnomalousRefs++
	}
	if err := w.emit(verse.New(w.translation, vr, text)); err != nil {
		return err
	}
	w.stats.Verses++
	return nil
}

func attr(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func hasDigits(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
