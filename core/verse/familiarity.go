package verse

import "math"

// Familiarity scores how likely a verse is to be widely known, as a pure
// function of text length: clamp(0.5 + max(0, 140-chars)/400, 0, 1) rounded
// to 3 decimals. Shorter verses score higher; at 140 characters and beyond
// the score flattens to 0.5.
func Familiarity(text string) float64 {
	chars := len([]rune(text))
	base := 0.5
	if chars < 140 {
		base += float64(140-chars) / 400
	}
	base = math.Round(base*1000) / 1000
	return math.Max(0, math.Min(1, base))
}
