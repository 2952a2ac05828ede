package semantic

import (
	"context"
	"fmt"

	"github.com/FocuswithJustin/versetag/core/verse"
)

// Annotator derives annotations for verse batches. The embedder is an
// explicitly injected capability: passing nil (or a non-semantic embedder)
// selects the degraded keyword path, which tests and model-less runs rely on.
type Annotator struct {
	emb Embedder
	cat *Catalog
}

// NewAnnotator builds an annotator. For a semantic embedder the process-wide
// centroid catalog is initialized here, once, so concurrent annotation later
// only reads shared state.
func NewAnnotator(ctx context.Context, emb Embedder) (*Annotator, error) {
	a := &Annotator{emb: emb}
	if emb != nil && emb.Semantic() {
		cat, err := LoadCatalog(ctx, emb)
		if err != nil {
			return nil, fmt.Errorf("building label centroids: %w", err)
		}
		a.cat = cat
	}
	return a, nil
}

// NewAnnotatorWithCatalog wires an explicit catalog, bypassing the
// process-wide cache. Intended for tests.
func NewAnnotatorWithCatalog(emb Embedder, cat *Catalog) *Annotator {
	return &Annotator{emb: emb, cat: cat}
}

// Semantic reports whether annotations will come from real fingerprints.
func (a *Annotator) Semantic() bool {
	return a.emb != nil && a.emb.Semantic() && a.cat != nil
}

// Annotate produces one annotation per record. Pure given the embedder: the
// same batch always yields the same annotations. Safety flags and familiarity
// are computed on both paths; fingerprints are embedded and persisted only on
// the semantic path.
func (a *Annotator) Annotate(ctx context.Context, batch []verse.Record) ([]verse.Annotation, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	var vecs [][]float32
	if a.Semantic() {
		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Text
		}
		var err error
		vecs, err = a.emb.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embedding %d verses: %w", len(batch), err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d verses", len(vecs), len(batch))
		}
	}

	out := make([]verse.Annotation, len(batch))
	for i, rec := range batch {
		ann := verse.Annotation{
			StableID:    rec.StableID,
			Translation: rec.Translation,
			Safety:      SafetyFlags(rec.Text),
			Familiarity: verse.Familiarity(rec.Text),
		}
		if vecs != nil {
			fp := vecs[i]
			ann.Themes = a.cat.ThemeTags(fp)
			ann.Moods = a.cat.MoodTags(fp)
			ann.DaypartProbs = a.cat.DaypartProbs(fp)
			ann.ToneProbs = a.cat.ToneProbs(fp)
			ann.Embedding = fp
		} else {
			ann.Themes = keywordThemes(rec.Text)
			ann.Moods = keywordMoods(rec.Text)
			ann.DaypartProbs = priorDaypartProbs()
			ann.ToneProbs = priorToneProbs()
		}
		out[i] = ann
	}
	return out, nil
}
