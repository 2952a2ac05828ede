package verse

import (
	"math"
	"regexp"
	"strings"
)

var (
	wordToken = regexp.MustCompile(`\w+`)
	sentence  = regexp.MustCompile(`[.!?]`)
	vowelRun  = regexp.MustCompile(`[aeiouy]+`)
)

// WordCount returns the number of word-boundary tokens in canonical text.
func WordCount(text string) int {
	return len(wordToken.FindAllString(text, -1))
}

// ReadingGrade estimates a Flesch-Kincaid style grade level:
// 0.39*(words/sentences) + 11.8*(syllables/words) - 15.59, rounded to one
// decimal. Sentences are terminal punctuation marks floored to 1; syllables
// approximate per-word contiguous vowel runs, floored to 1 overall.
func ReadingGrade(text string) float64 {
	words := wordToken.FindAllString(text, -1)
	sents := len(sentence.FindAllString(text, -1))

	syllables := 0
	for _, w := range words {
		syllables += len(vowelRun.FindAllString(strings.ToLower(w), -1))
	}
	if syllables == 0 {
		syllables = 1
	}
	if sents < 1 {
		sents = 1
	}
	nWords := len(words)
	if nWords < 1 {
		nWords = 1
	}

	grade := 0.39*(float64(len(words))/float64(sents)) + 11.8*(float64(syllables)/float64(nWords)) - 15.59
	return math.Round(grade*10) / 10
}
