package semantic

import "strings"

// Degraded classification used when no real fingerprint is available:
// keyword guesses over the raw text instead of centroid similarity. Clearly
// lower-quality, but it keeps the pipeline runnable without a model.

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// keywordThemes picks up to 3 themes from simple keyword cues, defaulting to
// the fixed fallback theme.
func keywordThemes(text string) []string {
	t := strings.ToLower(text)
	var picks []string
	if containsAny(t, "peace", "rest", "refuge", "care", "burden", "anxiety") {
		picks = append(picks, "comfort")
	}
	if containsAny(t, "hope", "promise") {
		picks = append(picks, "hope")
	}
	if containsAny(t, "trust", "refuge", "shield") {
		picks = append(picks, "trust")
	}
	if containsAny(t, "wisdom", "understanding") {
		picks = append(picks, "wisdom")
	}
	if len(picks) == 0 {
		picks = []string{DefaultTheme}
	}
	if len(picks) > maxThemes {
		picks = picks[:maxThemes]
	}
	return picks
}

// keywordMoods picks up to 2 moods from simple keyword cues, defaulting to
// "hopeful".
func keywordMoods(text string) []string {
	t := strings.ToLower(text)
	var picks []string
	if containsAny(t, "fear", "anxiety", "care", "trouble") {
		picks = append(picks, "anxious")
	}
	if containsAny(t, "weary", "rest") {
		picks = append(picks, "tired")
	}
	if containsAny(t, "praise", "thanks") {
		picks = append(picks, "grateful")
	}
	if containsAny(t, "hope", "joy") {
		picks = append(picks, "hopeful")
	}
	if len(picks) == 0 {
		picks = []string{"hopeful"}
	}
	if len(picks) > maxMoods {
		picks = picks[:maxMoods]
	}
	return picks
}

// priorDaypartProbs returns a copy of the fixed daypart prior.
func priorDaypartProbs() []float64 {
	out := make([]float64, len(daypartPrior))
	copy(out, daypartPrior)
	return out
}

// priorToneProbs returns a copy of the fixed tone prior.
func priorToneProbs() []float64 {
	out := make([]float64, len(tonePrior))
	copy(out, tonePrior)
	return out
}
