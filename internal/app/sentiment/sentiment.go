// Package sentiment assigns a coarse sentiment label to free-text
// reviews so the admin dashboard can aggregate feedback.
package sentiment

import (
	"strings"
)

var positiveWords = map[string]struct{}{
	"good": {}, "great": {}, "excellent": {}, "amazing": {}, "awesome": {},
	"smooth": {}, "easy": {}, "fast": {}, "simple": {}, "helpful": {},
	"love": {}, "loved": {}, "like": {}, "liked": {}, "nice": {},
	"best": {}, "fantastic": {}, "wonderful": {}, "secure": {}, "convenient": {},
}

var negativeWords = map[string]struct{}{
	"bad": {}, "poor": {}, "terrible": {}, "awful": {}, "horrible": {},
	"slow": {}, "confusing": {}, "difficult": {}, "hard": {}, "broken": {},
	"hate": {}, "hated": {}, "worst": {}, "useless": {}, "frustrating": {},
	"buggy": {}, "crash": {}, "crashed": {}, "error": {}, "failed": {},
}

// Classify scores the text by counting lexicon hits and returns
// "positive", "negative" or "neutral".
func Classify(text string) string {
	score := 0
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}

	switch {
	case score > 0:
		return "positive"
	case score < 0:
		return "negative"
	default:
		return "neutral"
	}
}
