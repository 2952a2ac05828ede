// Package formats defines the extractor abstraction shared by the verse
// source dialects and the helpers for opening and sniffing source files.
package formats

import (
	"bytes"
	"io"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/verse"
)

// Dialect names.
const (
	DialectOSIS = "osis"
	DialectUSFX = "usfx"
)

// Stats are per-file extraction counters. Skips and anomalies are non-fatal;
// they are surfaced here instead of as errors.
type Stats struct {
	// Verses is the number of records emitted.
	Verses int
	// SkippedMalformed counts records dropped for malformed identifiers.
	SkippedMalformed int
	// SkippedEmpty counts verse boundaries with no buffered text.
	SkippedEmpty int
	// AnomalousRefs counts refs whose chapter/verse defaulted to 0.
	AnomalousRefs int
}

// Skipped is the total number of dropped records.
func (s Stats) Skipped() int {
	return s.SkippedMalformed + s.SkippedEmpty
}

// EmitFunc receives one completed verse record. Returning an error aborts
// extraction and propagates to the caller.
type EmitFunc func(verse.Record) error

// Extractor reconstructs verse records from one source dialect. Extraction is
// a single lazy pass: records are emitted before the rest of the input is
// read, and a stream cannot be restarted without reopening the source.
type Extractor interface {
	// Dialect identifies the source dialect this extractor consumes.
	Dialect() string

	// Extract reads the entire source once, emitting each completed verse.
	Extract(r io.Reader, translation string, emit EmitFunc) (Stats, error)
}

// detectWindow is how much of the file head Detect inspects.
const detectWindow = 4096

// Detect sniffs the source dialect from the head of the (decompressed)
// content.
func Detect(head []byte) (string, error) {
	switch {
	case bytes.Contains(head, []byte("<usfx")):
		return DialectUSFX, nil
	case bytes.Contains(head, []byte("<osis")):
		return DialectOSIS, nil
	}
	return "", verrors.NewUnsupported("dialect", "no osis or usfx marker in file head")
}
