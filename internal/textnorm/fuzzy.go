package textnorm

import (
	"strings"

	"github.com/agext/levenshtein"
)

// DefaultFuzzyDistance is the edit-distance cap used by Normalize.
// NormalizeWith lets callers thread a configured cap instead.
const DefaultFuzzyDistance = 2

// correctTokens runs the bounded fuzzy dictionary pass: each token of
// length >= 3 is matched against the closed vocabulary and replaced
// when a unique best match sits within the distance cap. Replacements
// always land inside the vocabulary, which keeps the pass idempotent.
func correctTokens(s string, maxDist int) string {
	if maxDist <= 0 {
		return s
	}
	toks := strings.Fields(s)
	for i, tok := range toks {
		core := strings.Trim(tok, ".,;:")
		if len([]rune(core)) < 3 {
			continue
		}
		low := strings.ToLower(core)
		if knownToken(low) {
			continue
		}
		if best, ok := bestVocabMatch(low, maxDist); ok {
			toks[i] = titleToken(best)
		}
	}
	return strings.Join(toks, " ")
}

// knownToken reports tokens that need no correction: vocabulary words,
// food/brand lexicon words, units and pure numbers.
func knownToken(low string) bool {
	for _, w := range fuzzyVocab {
		if low == w {
			return true
		}
	}
	if _, ok := foodWords[low]; ok {
		return true
	}
	if IsUnit(low) || isAllDigits(low) {
		return true
	}
	return false
}

// bestVocabMatch returns the unique closest vocabulary word within
// maxDist. Ties are rejected; length-3 tokens only accept distance 1.
// The length-difference precheck caps the distance computation cheaply.
func bestVocabMatch(low string, maxDist int) (string, bool) {
	if len([]rune(low)) == 3 && maxDist > 1 {
		maxDist = 1
	}
	best, bestDist, ties := "", maxDist+1, 0
	for _, w := range fuzzyVocab {
		diff := len(low) - len(w)
		if diff < -2 || diff > 2 {
			continue
		}
		d := levenshtein.Distance(low, w, nil)
		switch {
		case d < bestDist:
			best, bestDist, ties = w, d, 1
		case d == bestDist:
			ties++
		}
	}
	if bestDist > maxDist || ties != 1 {
		return "", false
	}
	return best, true
}
