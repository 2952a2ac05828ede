package semantic

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Centroid is a label's embedded description vector, the classification
// target for cosine comparison.
type Centroid struct {
	Label  string
	Vector []float32
}

// Catalog holds the centroids for every label vocabulary. It is built once
// and read-only afterwards, so concurrent readers need no synchronization.
type Catalog struct {
	themes   []Centroid
	moods    []Centroid
	tones    []Centroid
	dayparts []Centroid
}

var (
	catalogOnce sync.Once
	catalogVal  *Catalog
	catalogErr  error
)

// LoadCatalog returns the process-wide centroid catalog, building it on first
// use with the given embedder. Later calls return the cached catalog
// regardless of the embedder passed.
func LoadCatalog(ctx context.Context, emb Embedder) (*Catalog, error) {
	catalogOnce.Do(func() {
		catalogVal, catalogErr = BuildCatalog(ctx, emb)
	})
	return catalogVal, catalogErr
}

// BuildCatalog embeds every label description in a single batch and slices
// the result into per-vocabulary centroid lists.
func BuildCatalog(ctx context.Context, emb Embedder) (*Catalog, error) {
	var texts []string
	for _, l := range Themes {
		texts = append(texts, l.text())
	}
	for _, l := range Moods {
		texts = append(texts, l.text())
	}
	for _, l := range Tones {
		texts = append(texts, l.text())
	}
	for _, l := range Dayparts {
		texts = append(texts, l.text())
	}

	vecs, err := emb.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding label descriptions: %w", err)
	}
	if len(vecs) != len(texts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d labels", len(vecs), len(texts))
	}

	cat := &Catalog{}
	i := 0
	for _, l := range Themes {
		cat.themes = append(cat.themes, Centroid{Label: l.Name, Vector: vecs[i]})
		i++
	}
	for _, l := range Moods {
		cat.moods = append(cat.moods, Centroid{Label: l.Name, Vector: vecs[i]})
		i++
	}
	for _, l := range Tones {
		cat.tones = append(cat.tones, Centroid{Label: l.Name, Vector: vecs[i]})
		i++
	}
	for _, l := range Dayparts {
		cat.dayparts = append(cat.dayparts, Centroid{Label: l.Name, Vector: vecs[i]})
		i++
	}
	return cat, nil
}

// ranked pairs a label with its similarity for sorting.
type ranked struct {
	label string
	sim   float64
}

func rankBySimilarity(centroids []Centroid, fingerprint []float32) []ranked {
	out := make([]ranked, len(centroids))
	for i, c := range centroids {
		out[i] = ranked{label: c.Label, sim: dot(c.Vector, fingerprint)}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].sim > out[b].sim })
	return out
}

// ThemeTags classifies a fingerprint against the theme centroids: results at
// or above the similarity floor, capped to the top 3. When nothing clears the
// floor the fixed default theme applies.
func (c *Catalog) ThemeTags(fingerprint []float32) []string {
	var tags []string
	for _, r := range rankBySimilarity(c.themes, fingerprint) {
		if r.sim < themeFloor {
			continue
		}
		tags = append(tags, r.label)
		if len(tags) == maxThemes {
			break
		}
	}
	if len(tags) == 0 {
		tags = []string{DefaultTheme}
	}
	return tags
}

// MoodTags returns the top 2 moods by centroid ranking. No floor: a verse
// always gets at least one mood.
func (c *Catalog) MoodTags(fingerprint []float32) []string {
	var tags []string
	for _, r := range rankBySimilarity(c.moods, fingerprint) {
		tags = append(tags, r.label)
		if len(tags) == maxMoods {
			break
		}
	}
	return tags
}

// ToneProbs returns a probability distribution over all tone categories in
// vocabulary order.
func (c *Catalog) ToneProbs(fingerprint []float32) []float64 {
	return softmaxOver(c.tones, fingerprint)
}

// DaypartProbs returns a probability distribution over all daypart categories
// in vocabulary order.
func (c *Catalog) DaypartProbs(fingerprint []float32) []float64 {
	return softmaxOver(c.dayparts, fingerprint)
}

func softmaxOver(centroids []Centroid, fingerprint []float32) []float64 {
	sims := make([]float64, len(centroids))
	for i, c := range centroids {
		sims[i] = dot(c.Vector, fingerprint)
	}
	return softmax(sims)
}

// softmax turns similarity scores into a non-negative distribution summing to
// 1, max-shifted for numeric stability.
func softmax(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
