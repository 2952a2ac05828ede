package semantic

import (
	"context"
	"math"
	"testing"

	"github.com/FocuswithJustin/versetag/core/ref"
	"github.com/FocuswithJustin/versetag/core/verse"
)

// stubEmbedder is a deterministic embedder that pretends to be semantic, so
// tests can exercise the centroid path without a model. Vectors are derived
// from text bytes and normalized.
type stubEmbedder struct{}

func (stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, Dim)
		for j := 0; j < len(t) && j < Dim; j++ {
			vec[j] = float32(t[j])
		}
		// Guard against all-zero vectors for empty text.
		vec[Dim-1] += 1
		normalize(vec)
		out[i] = vec
	}
	return out, nil
}

func (stubEmbedder) Dim() int       { return Dim }
func (stubEmbedder) Semantic() bool { return true }

func record(t *testing.T, id, text string) verse.Record {
	t.Helper()
	r, err := ref.ParseOSISID(id)
	if err != nil {
		t.Fatalf("ParseOSISID(%q) failed: %v", id, err)
	}
	return verse.New("KJV", r, text)
}

func TestDeterministicEmbedder(t *testing.T) {
	ctx := context.Background()
	emb := Deterministic{}

	if emb.Semantic() {
		t.Fatal("fallback embedder must not claim semantic output")
	}

	a, err := emb.EmbedBatch(ctx, []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	b, err := emb.EmbedBatch(ctx, []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}

	t.Run("reproducible", func(t *testing.T) {
		for i := range a {
			for j := range a[i] {
				if a[i][j] != b[i][j] {
					t.Fatalf("vector %d differs between identical calls at %d", i, j)
				}
			}
		}
	})

	t.Run("unit length", func(t *testing.T) {
		for i, vec := range a {
			if len(vec) != Dim {
				t.Fatalf("vector %d has dim %d, want %d", i, len(vec), Dim)
			}
			var sum float64
			for _, v := range vec {
				sum += float64(v) * float64(v)
			}
			if math.Abs(math.Sqrt(sum)-1) > 1e-5 {
				t.Errorf("vector %d norm = %v, want 1", i, math.Sqrt(sum))
			}
		}
	})
}

func TestSoftmax(t *testing.T) {
	probs := softmax([]float64{0.9, 0.1, -0.5, 0.3})
	var sum float64
	for _, p := range probs {
		if p < 0 {
			t.Errorf("probability %v is negative", p)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("probabilities sum to %v, want 1", sum)
	}
	if probs[0] <= probs[1] || probs[1] <= probs[2] {
		t.Error("softmax must preserve score ordering")
	}

	// Max-shift keeps large scores stable.
	big := softmax([]float64{1000, 999})
	if math.IsNaN(big[0]) || math.IsInf(big[0], 0) {
		t.Error("softmax overflowed on large scores")
	}
}

func TestCatalogClassification(t *testing.T) {
	ctx := context.Background()
	cat, err := BuildCatalog(ctx, stubEmbedder{})
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}

	fp, err := stubEmbedder{}.EmbedBatch(ctx, []string{"comfort: assurance of God's care"})
	if err != nil {
		t.Fatalf("EmbedBatch failed: %v", err)
	}
	fingerprint := fp[0]

	t.Run("theme cardinality", func(t *testing.T) {
		themes := cat.ThemeTags(fingerprint)
		if len(themes) == 0 || len(themes) > 3 {
			t.Errorf("got %d themes, want 1..3", len(themes))
		}
	})

	t.Run("theme floor falls back to default", func(t *testing.T) {
		// A fingerprint orthogonal to every centroid clears no floor.
		far := make([]float32, Dim)
		far[Dim-1] = -1
		themes := cat.ThemeTags(far)
		if len(themes) != 1 || themes[0] != DefaultTheme {
			t.Errorf("themes = %v, want [%s]", themes, DefaultTheme)
		}
	})

	t.Run("moods always present", func(t *testing.T) {
		moods := cat.MoodTags(fingerprint)
		if len(moods) != 2 {
			t.Errorf("got %d moods, want 2", len(moods))
		}
	})

	t.Run("distributions sum to one", func(t *testing.T) {
		for name, probs := range map[string][]float64{
			"tone":    cat.ToneProbs(fingerprint),
			"daypart": cat.DaypartProbs(fingerprint),
		} {
			var sum float64
			for _, p := range probs {
				if p < 0 {
					t.Errorf("%s probability %v is negative", name, p)
				}
				sum += p
			}
			if math.Abs(sum-1) > 1e-9 {
				t.Errorf("%s probabilities sum to %v, want 1", name, sum)
			}
		}
		if len(cat.ToneProbs(fingerprint)) != len(Tones) {
			t.Error("tone distribution must cover the full vocabulary")
		}
		if len(cat.DaypartProbs(fingerprint)) != len(Dayparts) {
			t.Error("daypart distribution must cover the full vocabulary")
		}
	})
}

func TestSafetyFlags(t *testing.T) {
	tests := []struct {
		name string
		text string
		want verse.SafetyFlags
	}{
		{
			"violence keyword",
			"They that take the sword shall perish with the sword.",
			verse.SafetyFlags{Violence: true, KidSafe: false},
		},
		{
			"clean text",
			"Casting all your care upon him; for he careth for you.",
			verse.SafetyFlags{KidSafe: true},
		},
		{
			"rebuke keyword",
			"Woe unto you, scribes and Pharisees, hypocrites!",
			verse.SafetyFlags{HarshRebuke: true, KidSafe: true},
		},
		{
			"slavery keyword",
			"As a bondservant of Christ.",
			verse.SafetyFlags{Slavery: true, KidSafe: true},
		},
		{
			"case insensitive",
			"SWORD against sword",
			verse.SafetyFlags{Violence: true, KidSafe: false},
		},
		{
			"whole word only",
			"he passwords his swordfish", // no whole-word matches
			verse.SafetyFlags{KidSafe: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafetyFlags(tt.text); got != tt.want {
				t.Errorf("SafetyFlags(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestAnnotateDegradedPath(t *testing.T) {
	ctx := context.Background()
	ann, err := NewAnnotator(ctx, nil)
	if err != nil {
		t.Fatalf("NewAnnotator failed: %v", err)
	}
	if ann.Semantic() {
		t.Fatal("annotator without embedder must not be semantic")
	}

	batch := []verse.Record{
		record(t, "1Pet.5.7", "Casting all your care upon him; for he careth for you."),
		record(t, "Ps.23.1", "The LORD is my shepherd; I shall not want."),
	}
	got, err := ann.Annotate(ctx, batch)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if len(got) != len(batch) {
		t.Fatalf("got %d annotations, want %d", len(got), len(batch))
	}

	first := got[0]
	if first.Embedding != nil {
		t.Error("degraded path must not persist an embedding")
	}
	if len(first.Themes) == 0 || len(first.Themes) > 3 {
		t.Errorf("themes = %v, want 1..3 entries", first.Themes)
	}
	// "care" keyword should pick comfort, "anxious" cues too.
	if first.Themes[0] != "comfort" {
		t.Errorf("themes[0] = %q, want comfort", first.Themes[0])
	}
	if len(first.Moods) == 0 || len(first.Moods) > 2 {
		t.Errorf("moods = %v, want 1..2 entries", first.Moods)
	}
	for name, probs := range map[string][]float64{"tone": first.ToneProbs, "daypart": first.DaypartProbs} {
		var sum float64
		for _, p := range probs {
			sum += p
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("%s prior sums to %v, want 1", name, sum)
		}
	}
	if !first.Safety.KidSafe {
		t.Error("1Pet.5.7 should be kid-safe")
	}
	if first.Familiarity != verse.Familiarity(batch[0].Text) {
		t.Error("familiarity should follow the length formula")
	}
}

func TestAnnotateSemanticPath(t *testing.T) {
	ctx := context.Background()
	cat, err := BuildCatalog(ctx, stubEmbedder{})
	if err != nil {
		t.Fatalf("BuildCatalog failed: %v", err)
	}
	ann := NewAnnotatorWithCatalog(stubEmbedder{}, cat)
	if !ann.Semantic() {
		t.Fatal("annotator with semantic embedder and catalog must be semantic")
	}

	batch := []verse.Record{
		record(t, "John.11.35", "Jesus wept."),
	}
	got, err := ann.Annotate(ctx, batch)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	a := got[0]
	if a.Embedding == nil {
		t.Error("semantic path must carry the fingerprint")
	}
	if len(a.Embedding) != Dim {
		t.Errorf("embedding dim = %d, want %d", len(a.Embedding), Dim)
	}
	if len(a.Themes) == 0 || len(a.Themes) > 3 {
		t.Errorf("themes = %v, want 1..3 entries", a.Themes)
	}
	if len(a.Moods) != 2 {
		t.Errorf("moods = %v, want exactly 2 entries", a.Moods)
	}

	// Pure given the embedder: annotating the same batch twice is identical.
	again, err := ann.Annotate(ctx, batch)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if again[0].Themes[0] != a.Themes[0] || again[0].Moods[0] != a.Moods[0] {
		t.Error("annotation must be deterministic for identical input")
	}
}

func TestAnnotateEmptyBatch(t *testing.T) {
	ann, err := NewAnnotator(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewAnnotator failed: %v", err)
	}
	got, err := ann.Annotate(context.Background(), nil)
	if err != nil {
		t.Fatalf("Annotate failed: %v", err)
	}
	if got != nil {
		t.Errorf("empty batch should yield nil, got %v", got)
	}
}
