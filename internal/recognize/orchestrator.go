// Package recognize drives the OCR engine across image variants per
// zone and coordinates the whole per-request pipeline.
package recognize

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/disintegration/imaging"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/engine"
	"github.com/pantrysnap/labelreader/internal/ranker"
	"github.com/pantrysnap/labelreader/internal/textnorm"
	"github.com/pantrysnap/labelreader/internal/variants"
)

const (
	maxGeneralCandidates = 5
	maxGeneralVariants   = 3

	brandWhitelist = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789'& ."
	sizeWhitelist  = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz.() "
)

// generalConfigs are the two page-segmentation strategies tried per
// general-zone variant, in order.
var generalConfigs = []engine.Config{
	{PageSegMode: engine.PageSegAuto, DPI: 300},
	{PageSegMode: engine.PageSegSingleBlock, DPI: 300},
}

// Orchestrator runs the per-zone attempt chains against one engine
// session. Every individual attempt sits behind a soft timeout; a
// failed attempt yields no result, never an error.
type Orchestrator struct {
	rec       engine.Recognizer
	mode      constants.Mode
	budgets   common.BudgetConfig
	fuzzyDist int
	log       *slog.Logger
}

func NewOrchestrator(rec engine.Recognizer, mode constants.Mode, budgets common.BudgetConfig, fuzzyDist int, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{rec: rec, mode: mode, budgets: budgets, fuzzyDist: fuzzyDist, log: log}
}

// General recognizes the general zone. Fast mode issues at most two
// attempts against the first variant and stops on the first non-empty
// text; thorough mode accumulates across up to three variants and both
// configurations. Returns the scored top candidates plus the first
// cleaned line as the best-effort fallback.
func (o *Orchestrator) General(ctx context.Context, vars []variants.Variant) ([]ranker.Candidate, string) {
	if len(vars) == 0 {
		return nil, ""
	}
	budget := o.budgets.Attempt(constants.ZoneGeneral, o.mode)

	var texts []string
	if o.mode == constants.ModeThorough {
		n := len(vars)
		if n > maxGeneralVariants {
			n = maxGeneralVariants
		}
		for i, v := range vars[:n] {
			for _, cfg := range generalConfigs {
				res, ok := engine.RecognizeSoft(ctx, o.rec, v.Img, cfg, budget, o.log)
				if ok && strings.TrimSpace(res.Text) != "" {
					res.Zone, res.Variant = constants.ZoneGeneral, i
					o.logAttempt(res)
					texts = append(texts, res.Text)
				}
			}
		}
	} else {
		for _, cfg := range generalConfigs {
			res, ok := engine.RecognizeSoft(ctx, o.rec, vars[0].Img, cfg, budget, o.log)
			if ok && strings.TrimSpace(res.Text) != "" {
				res.Zone, res.Variant = constants.ZoneGeneral, 0
				o.logAttempt(res)
				texts = append(texts, res.Text)
				break
			}
		}
	}
	if len(texts) == 0 {
		o.log.Info("recognize.general.empty", "mode", string(o.mode))
		return nil, ""
	}

	cands, bestEffort := o.linesToCandidates(texts, constants.ZoneGeneral)
	ranked := ranker.Sort(ranker.Dedupe(cands))
	if len(ranked) > maxGeneralCandidates {
		ranked = ranked[:maxGeneralCandidates]
	}
	o.log.Info("recognize.general.ok",
		"raw_texts", len(texts),
		"candidates", len(ranked),
	)
	return ranked, bestEffort
}

// Reread runs one extra attempt on the middle label band. Used as a
// guard when the merged candidate set carries no food-bearing line.
func (o *Orchestrator) Reread(ctx context.Context, vars []variants.Variant) []ranker.Candidate {
	for i, v := range vars {
		if !strings.HasPrefix(v.Desc, "band-middle") {
			continue
		}
		budget := o.budgets.Attempt(constants.ZoneGeneral, o.mode)
		res, ok := engine.RecognizeSoft(ctx, o.rec, v.Img, generalConfigs[1], budget, o.log)
		if !ok || strings.TrimSpace(res.Text) == "" {
			return nil
		}
		res.Zone, res.Variant = constants.ZoneGeneral, i
		o.logAttempt(res)
		cands, _ := o.linesToCandidates([]string{res.Text}, constants.ZoneGeneral)
		o.log.Info("recognize.reread.ok", "candidates", len(cands))
		return cands
	}
	return nil
}

// Brand recognizes the brand band with a short-circuit chain: a plain
// single-line read per available variant, then a down-scaled sparse
// read as the last resort. Returns the first non-empty normalized
// line, or "".
func (o *Orchestrator) Brand(ctx context.Context, vars []variants.Variant) string {
	if len(vars) == 0 {
		return ""
	}
	budget := o.budgets.Attempt(constants.ZoneBrand, o.mode)
	cfg := engine.Config{PageSegMode: engine.PageSegSingleLine, Whitelist: brandWhitelist, DPI: 300}

	for i, v := range vars {
		res, ok := engine.RecognizeSoft(ctx, o.rec, v.Img, cfg, budget, o.log)
		if !ok {
			continue
		}
		if line := o.firstLine(res.Text); line != "" {
			res.Zone, res.Variant = constants.ZoneBrand, i
			o.logAttempt(res)
			o.log.Info("recognize.brand.ok", "variant", v.Desc)
			return line
		}
	}

	// All band reads failed; try a half-size sparse-layout pass.
	small := imaging.Resize(vars[0].Img, vars[0].Img.Bounds().Dx()/2, 0, imaging.Lanczos)
	sparse := engine.Config{PageSegMode: engine.PageSegSparse, Whitelist: brandWhitelist, DPI: 150}
	if res, ok := engine.RecognizeSoft(ctx, o.rec, small, sparse, budget, o.log); ok {
		if line := o.firstLine(res.Text); line != "" {
			res.Zone, res.Variant = constants.ZoneBrand, 0
			o.logAttempt(res)
			o.log.Info("recognize.brand.ok", "variant", "downscale/sparse")
			return line
		}
	}
	o.log.Info("recognize.brand.empty")
	return ""
}

// Size recognizes the size band. Fast mode makes exactly one bounded
// attempt; thorough mode tries up to two variants against two
// configurations, stopping once two distinct non-empty reads are
// collected, and joins them.
func (o *Orchestrator) Size(ctx context.Context, vars []variants.Variant) string {
	if len(vars) == 0 {
		return ""
	}
	budget := o.budgets.Attempt(constants.ZoneSize, o.mode)
	cfgs := []engine.Config{
		{PageSegMode: engine.PageSegSingleLine, Whitelist: sizeWhitelist, DPI: 300},
		{PageSegMode: engine.PageSegSparse, Whitelist: sizeWhitelist, DPI: 300},
	}

	if o.mode != constants.ModeThorough {
		res, ok := engine.RecognizeSoft(ctx, o.rec, vars[0].Img, cfgs[0], budget, o.log)
		if !ok {
			return ""
		}
		res.Zone, res.Variant = constants.ZoneSize, 0
		o.logAttempt(res)
		return o.firstLine(res.Text)
	}

	var reads []string
	seen := map[string]struct{}{}
	n := len(vars)
	if n > 2 {
		n = 2
	}
	for i, v := range vars[:n] {
		for _, cfg := range cfgs {
			res, ok := engine.RecognizeSoft(ctx, o.rec, v.Img, cfg, budget, o.log)
			if !ok {
				continue
			}
			res.Zone, res.Variant = constants.ZoneSize, i
			o.logAttempt(res)
			line := o.firstLine(res.Text)
			if line == "" {
				continue
			}
			key := strings.ToLower(line)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			reads = append(reads, line)
			if len(reads) == 2 {
				return strings.Join(reads, " ")
			}
		}
	}
	return strings.Join(reads, " ")
}

// linesToCandidates normalizes every raw line, applies the word gate,
// and scores survivors. bestEffort is the first cleaned non-empty line
// regardless of the gate.
func (o *Orchestrator) linesToCandidates(texts []string, source constants.RecognitionZone) ([]ranker.Candidate, string) {
	var cands []ranker.Candidate
	bestEffort := ""
	for _, text := range texts {
		for _, raw := range strings.Split(text, "\n") {
			norm := textnorm.NormalizeWith(raw, o.fuzzyDist)
			if norm == "" {
				continue
			}
			if bestEffort == "" {
				bestEffort = norm
			}
			if !looksLikeWords(norm) {
				continue
			}
			cands = append(cands, ranker.New(norm, source))
		}
	}
	return cands, bestEffort
}

// logAttempt records one successful raw attempt with its provenance
// and the engine's mean word confidence.
func (o *Orchestrator) logAttempt(res engine.Result) {
	o.log.Debug("recognize.attempt.ok",
		"zone", string(res.Zone),
		"variant", res.Variant,
		"confidence", engine.MeanConfidence(res.Words),
		"text_len", len(res.Text),
	)
}

func (o *Orchestrator) firstLine(text string) string {
	for _, raw := range strings.Split(text, "\n") {
		if norm := textnorm.NormalizeWith(raw, o.fuzzyDist); norm != "" {
			return norm
		}
	}
	return ""
}

// spacedLettersRe rejects "S P A C E D" single-letter runs the engine
// emits for stylized type.
var spacedLettersRe = regexp.MustCompile(`^(?:[A-Za-z] ){2,}[A-Za-z]$`)

// looksLikeWords gates a normalized line on character densities before
// it may become a candidate: mostly letters, few digits, little
// punctuation, and at least four characters.
func looksLikeWords(line string) bool {
	if len([]rune(line)) < 4 {
		return false
	}
	if spacedLettersRe.MatchString(line) {
		return false
	}
	letters, digits, other, total := 0, 0, 0, 0
	for _, r := range line {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		default:
			other++
		}
	}
	if total == 0 {
		return false
	}
	return float64(letters) >= 0.55*float64(total) &&
		float64(digits) <= 0.25*float64(total) &&
		float64(other) <= 0.15*float64(total)
}
