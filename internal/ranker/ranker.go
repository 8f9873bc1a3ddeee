// Package ranker scores normalized candidate lines and produces a
// stable best-first ordering. Candidates are never mutated after
// ranking; every pass returns a new list.
package ranker

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/textnorm"
)

// Candidate is a normalized single-line result with its derived score
// and provenance.
type Candidate struct {
	Text   string
	Score  float64
	Source constants.RecognitionZone
}

// New builds a scored candidate from a normalized line.
func New(text string, source constants.RecognitionZone) Candidate {
	return Candidate{Text: text, Score: Score(text), Source: source}
}

// allowedPunct is the punctuation the scorer tolerates without
// penalty. Anything else counts as garbage.
const allowedPunct = " '&.,-"

// Score assigns the heuristic score for one normalized line. Weights
// are tuned for relative ordering, not absolute meaning: known food
// bigrams dominate, garbage characters and digit-heavy lines sink.
func Score(line string) float64 {
	if line == "" {
		return 0
	}

	letters, digits, vowels, garbage := 0, 0, 0, 0
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			letters++
			if strings.ContainsRune("aeiouAEIOU", r) {
				vowels++
			}
		case unicode.IsDigit(r):
			digits++
		case strings.ContainsRune(allowedPunct, r):
		default:
			garbage++
		}
	}

	score := float64(letters) * 0.1
	score += 6.0 * float64(textnorm.FoodBigramCount(line))
	score += 2.5 * float64(textnorm.FoodWordCount(line))
	score += 1.5 * float64(textnorm.BrandWordCount(line))
	if textnorm.HasBeansPhrase(line) {
		score += 2.0
	}

	score -= 2.0 * float64(garbage)
	if letters > 0 {
		if ratio := float64(digits) / float64(letters); ratio > 0.4 {
			score -= 6.0 * ratio
		}
		if float64(vowels) < 0.25*float64(letters) {
			score -= 4.0
		}
	} else {
		score -= 4.0
	}
	if hasTrailingStub(line) {
		score -= 2.0
	}
	return score
}

func hasTrailingStub(line string) bool {
	toks := strings.Fields(line)
	if len(toks) < 2 {
		return false
	}
	last := toks[len(toks)-1]
	if len([]rune(last)) > 2 || textnorm.IsUnit(last) {
		return false
	}
	for _, r := range last {
		if unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Dedupe removes candidates whose lowercased text already appeared,
// keeping the first (highest-priority) occurrence.
func Dedupe(cands []Candidate) []Candidate {
	seen := make(map[string]struct{}, len(cands))
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		key := strings.ToLower(c.Text)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

// sourcePriority breaks score ties: vision fallback lines win ties
// over local lines, per the merge contract.
func sourcePriority(s constants.RecognitionZone) int {
	if s == constants.SourceVision {
		return 1
	}
	return 0
}

// Sort orders candidates by (score desc, source priority desc, length
// desc, text asc). The final text key makes the ordering byte-stable
// across runs for identical input sets.
func Sort(cands []Candidate) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := sourcePriority(a.Source), sourcePriority(b.Source); pa != pb {
			return pa > pb
		}
		if len(a.Text) != len(b.Text) {
			return len(a.Text) > len(b.Text)
		}
		return a.Text < b.Text
	})
	return out
}

// Rank deduplicates, sorts, and applies the guard passes in their
// fixed order. brandText is the independently recognized Brand-zone
// line ("" when that zone was skipped or empty).
func Rank(cands []Candidate, brandText string) []Candidate {
	out := Sort(Dedupe(cands))
	out = filterBoilerplate(out)
	out = mergeOrganic(out)
	out = demoteBrandOnly(out, brandText)
	out = dropBrandEcho(out, brandText)
	return out
}
