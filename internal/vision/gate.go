package vision

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/ranker"
	"github.com/pantrysnap/labelreader/internal/textnorm"
)

// Gate decides whether the local result is weak enough to warrant the
// cloud second opinion, and merges its output back through the ranker.
type Gate struct {
	det TextDetector
	cfg common.RecognitionConfig
	log *slog.Logger
}

func NewGate(det TextDetector, cfg common.RecognitionConfig, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{det: det, cfg: cfg, log: log}
}

// ShouldTrigger applies the fallback condition: no local candidates at
// all, or a non-food top line that is short or low-scoring. Fast mode
// never triggers (latency guard); the coordinator enforces that before
// asking.
func (g *Gate) ShouldTrigger(cands []ranker.Candidate) bool {
	if g.det == nil {
		return false
	}
	if len(cands) == 0 {
		return true
	}
	top := cands[0]
	if textnorm.HasFoodWord(top.Text) {
		return false
	}
	return alphaCount(top.Text) < g.cfg.FallbackMinAlpha || top.Score < g.cfg.FallbackMinScore
}

// Apply calls the external service and merges its lines with the
// existing candidates, fallback lines taking tie-break precedence,
// then re-ranks. Any failure or empty result leaves the candidates
// unchanged.
func (g *Gate) Apply(ctx context.Context, image []byte, cands []ranker.Candidate, brandText string) []ranker.Candidate {
	text, err := g.det.DetectText(ctx, image)
	if err != nil {
		g.log.Warn("vision.gate.soft_fail", "error", err)
		return cands
	}
	if strings.TrimSpace(text) == "" {
		g.log.Info("vision.gate.empty")
		return cands
	}

	merged := make([]ranker.Candidate, 0, len(cands)+4)
	merged = append(merged, cands...)
	added := 0
	for _, line := range strings.Split(text, "\n") {
		norm := textnorm.NormalizeWith(line, g.cfg.FuzzyMaxDistance)
		if norm == "" {
			continue
		}
		merged = append(merged, ranker.New(norm, constants.SourceVision))
		added++
	}
	g.log.Info("vision.gate.merged", "fallback_lines", added)
	return ranker.Rank(merged, brandText)
}

func alphaCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
