// Package osis extracts verse records from the DOM-friendly OSIS dialect,
// where each verse is a self-contained element carrying a composite osisID.
package osis

import (
	"io"

	"github.com/antchfx/xmlquery"

	verrors "github.com/FocuswithJustin/versetag/core/errors"
	"github.com/FocuswithJustin/versetag/core/ref"
	"github.com/FocuswithJustin/versetag/core/verse"
	"github.com/FocuswithJustin/versetag/internal/formats"
)

// verseQuery selects every verse element with an osisID, tolerant of
// namespaced documents.
const verseQuery = "//*[local-name()='verse' and @osisID]"

// Extractor is the one-pass DOM extractor for dialect A.
type Extractor struct {
	// SkipEmpty drops verses whose flattened text is empty. The patch-if-empty
	// writer sets this; normal ingestion keeps empty records out at the
	// streaming stage only.
	SkipEmpty bool
}

// New returns an extractor with default options.
func New() *Extractor {
	return &Extractor{}
}

// Dialect identifies this extractor.
func (e *Extractor) Dialect() string { return formats.DialectOSIS }

// Extract parses the entire file into a tree, selects every verse node, and
// emits one record per node with all descendant text flattened to canonical
// form. Records with malformed identifiers (fewer than 3 segments) are
// skipped, not fatal.
func (e *Extractor) Extract(r io.Reader, translation string, emit formats.EmitFunc) (formats.Stats, error) {
	var stats formats.Stats

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return stats, verrors.NewParse("OSIS", "", err.Error())
	}

	nodes, err := xmlquery.QueryAll(doc, verseQuery)
	if err != nil {
		return stats, verrors.NewParse("OSIS", "", err.Error())
	}

	for _, node := range nodes {
		osisID := node.SelectAttr("osisID")
		vr, err := ref.ParseOSISID(osisID)
		if err != nil {
			stats.SkippedMalformed++
			continue
		}

		text := verse.Canonicalize(node.InnerText())
		if text == "" && e.SkipEmpty {
			stats.SkippedEmpty++
			continue
		}

		if vr.Anomalous() {
			stats.AnomalousRefs++
		}

		if err := emit(verse.New(translation, vr, text)); err != nil {
			return stats, err
		}
		stats.Verses++
	}

	return stats, nil
}
