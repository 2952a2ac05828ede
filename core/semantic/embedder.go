// Package semantic turns verse text into a fingerprint vector and derives
// calibrated tag sets and probability distributions from it. A deterministic
// non-semantic fallback keeps the pipeline runnable without a model.
package semantic

import (
	"context"
	"math"
	"math/rand"
)

// Dim is the fingerprint dimension, matching the MiniLM sentence-embedding
// family the real provider is expected to serve.
const Dim = 384

// Embedder converts a batch of texts into unit-length vectors of fixed
// dimension. Implementations must return exactly one vector per input text,
// in order.
type Embedder interface {
	// EmbedBatch embeds texts in one call; batching amortizes the fixed cost
	// of model invocation.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dim is the vector dimension this embedder produces.
	Dim() int

	// Semantic reports whether vectors carry real semantic signal. Consumers
	// must not persist fingerprints from non-semantic embedders.
	Semantic() bool
}

// Deterministic is the fallback embedder: a fixed-seed pseudo-random source
// producing unit-length vectors. Explicitly non-semantic; useful for schema
// tests and for running the pipeline without a model.
type Deterministic struct{}

// EmbedBatch returns reproducible unit vectors. The generator restarts from
// the same seed on every call, so a given batch shape always embeds the same
// way.
func (Deterministic) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	rng := rand.New(rand.NewSource(42))
	out := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, Dim)
		for j := range vec {
			vec[j] = float32(rng.Float64())
		}
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

// Dim returns the fingerprint dimension.
func (Deterministic) Dim() int { return Dim }

// Semantic is always false for the fallback path.
func (Deterministic) Semantic() bool { return false }

// normalize scales vec to unit length in place. Zero vectors are left as-is.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
}

// dot returns the dot product of two vectors. For unit-length inputs this is
// the cosine similarity.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
