package ranker

import (
	"strings"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/textnorm"
)

// filterBoilerplate drops nutrition/marketing and pure size/weight
// lines. Those must never become the returned name, however they
// scored. If every candidate is boilerplate nothing is dropped, so a
// degenerate label still returns something.
func filterBoilerplate(cands []Candidate) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if textnorm.IsBoilerplate(c.Text) || textnorm.IsSizeLine(c.Text) {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		return cands
	}
	return out
}

// mergeOrganic synthesizes "<organic line> <food line>" when the label
// split the organic claim and the food name across lines, then
// re-sorts with the merged candidate included.
func mergeOrganic(cands []Candidate) []Candidate {
	organicIdx, foodIdx := -1, -1
	for i, c := range cands {
		low := strings.ToLower(c.Text)
		hasFood := textnorm.HasFoodWord(c.Text)
		if organicIdx < 0 && !hasFood && strings.Contains(low, "organic") {
			organicIdx = i
		}
		if foodIdx < 0 && hasFood {
			foodIdx = i
		}
	}
	if organicIdx < 0 || foodIdx < 0 {
		return cands
	}

	merged := cands[organicIdx].Text + " " + cands[foodIdx].Text
	mc := New(merged, constants.SourceMerged)
	// The synthesized line leads even when its raw score does not.
	if top := topScore(cands); mc.Score <= top {
		mc.Score = top + 0.5
	}
	return Sort(Dedupe(append([]Candidate{mc}, cands...)))
}

func topScore(cands []Candidate) float64 {
	best := 0.0
	for i, c := range cands {
		if i == 0 || c.Score > best {
			best = c.Score
		}
	}
	return best
}

// isBrandOnly reports a line that is just a brand echo: no food word,
// and either a known brand name or the Brand-zone text plus at most a
// short suffix.
func isBrandOnly(text, brandText string) bool {
	if textnorm.HasFoodWord(text) {
		return false
	}
	if textnorm.MatchesBrand(text) {
		return true
	}
	if brandText == "" {
		return false
	}
	low := strings.ToLower(strings.TrimSpace(text))
	brand := strings.ToLower(strings.TrimSpace(brandText))
	if low == brand {
		return true
	}
	return strings.HasPrefix(low, brand) && len(low)-len(brand) <= 4
}

// demoteBrandOnly moves a brand-only top line below the first
// food-bearing candidate regardless of raw score.
func demoteBrandOnly(cands []Candidate, brandText string) []Candidate {
	if len(cands) < 2 || !isBrandOnly(cands[0].Text, brandText) {
		return cands
	}
	foodIdx := -1
	for i, c := range cands[1:] {
		if textnorm.HasFoodWord(c.Text) {
			foodIdx = i + 1
			break
		}
	}
	if foodIdx < 0 {
		return cands
	}
	out := make([]Candidate, 0, len(cands))
	out = append(out, cands[1:foodIdx+1]...)
	out = append(out, cands[0])
	out = append(out, cands[foodIdx+1:]...)
	return out
}

// dropBrandEcho removes remaining brand-only lines once the top line
// is confirmed food-bearing; a clean food name should not be followed
// by a redundant brand echo.
func dropBrandEcho(cands []Candidate, brandText string) []Candidate {
	if len(cands) == 0 || !textnorm.HasFoodWord(cands[0].Text) {
		return cands
	}
	out := make([]Candidate, 0, len(cands))
	out = append(out, cands[0])
	for _, c := range cands[1:] {
		if isBrandOnly(c.Text, brandText) {
			continue
		}
		out = append(out, c)
	}
	return out
}
