package recognize

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/engine"
	"github.com/pantrysnap/labelreader/internal/variants"
)

// scriptedEngine replays one text per call, in order, and records the
// configuration of every attempt. Calls past the end of the script
// return empty text.
type scriptedEngine struct {
	texts []string
	calls int
	cfgs  []engine.Config
}

func (s *scriptedEngine) Recognize(_ context.Context, _ image.Image, cfg engine.Config) (engine.Result, error) {
	s.cfgs = append(s.cfgs, cfg)
	s.calls++
	if s.calls <= len(s.texts) {
		return engine.Result{Text: s.texts[s.calls-1]}, nil
	}
	return engine.Result{}, nil
}

func (s *scriptedEngine) Release() error { return nil }

func testBudgets() common.BudgetConfig {
	return common.BudgetConfig{
		GeneralFast:     200 * time.Millisecond,
		GeneralThorough: 200 * time.Millisecond,
		BrandFast:       200 * time.Millisecond,
		BrandThorough:   200 * time.Millisecond,
		SizeFast:        200 * time.Millisecond,
		SizeThorough:    200 * time.Millisecond,
		Request:         5 * time.Second,
	}
}

func zoneVars(zone constants.RecognitionZone, descs ...string) []variants.Variant {
	img := image.NewRGBA(image.Rect(0, 0, 120, 60))
	out := make([]variants.Variant, 0, len(descs))
	for _, d := range descs {
		out = append(out, variants.Variant{Zone: zone, Desc: d, Rect: img.Bounds(), Img: img})
	}
	return out
}

func newTestOrchestrator(mode constants.Mode, s *scriptedEngine) *Orchestrator {
	return NewOrchestrator(s, mode, testBudgets(), 2, nil)
}

// The brand chain returns on the first successful band read without
// touching later variants or the sparse fallback.
func TestBrandShortCircuits(t *testing.T) {
	s := &scriptedEngine{texts: []string{"TRADER JOE'S"}}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneBrand,
		"band-brand/plain", "band-brand/threshold", "band-brand/threshold-invert")

	got := orch.Brand(context.Background(), vars)
	if got != "Trader Joe's" {
		t.Errorf("brand = %q", got)
	}
	if s.calls != 1 {
		t.Errorf("attempts = %d, want 1", s.calls)
	}
	if cfg := s.cfgs[0]; cfg.PageSegMode != engine.PageSegSingleLine || cfg.Whitelist == "" {
		t.Errorf("band read config = %+v", cfg)
	}
}

// The downscaled sparse read runs only after every band variant
// yielded nothing.
func TestBrandFallsBackToSparse(t *testing.T) {
	s := &scriptedEngine{texts: []string{"", "", "", "TRADER JOE'S"}}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneBrand,
		"band-brand/plain", "band-brand/threshold", "band-brand/threshold-invert")

	got := orch.Brand(context.Background(), vars)
	if got != "Trader Joe's" {
		t.Errorf("brand = %q", got)
	}
	if s.calls != 4 {
		t.Fatalf("attempts = %d, want 3 band reads then sparse", s.calls)
	}
	for i := 0; i < 3; i++ {
		if s.cfgs[i].PageSegMode != engine.PageSegSingleLine {
			t.Errorf("attempt %d mode = %v, want single line", i, s.cfgs[i].PageSegMode)
		}
	}
	if last := s.cfgs[3]; last.PageSegMode != engine.PageSegSparse || last.DPI != 150 {
		t.Errorf("last resort config = %+v, want downscaled sparse", last)
	}
}

func TestBrandEmptyWhenAllFail(t *testing.T) {
	s := &scriptedEngine{}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneBrand,
		"band-brand/plain", "band-brand/threshold", "band-brand/threshold-invert")

	if got := orch.Brand(context.Background(), vars); got != "" {
		t.Errorf("brand = %q, want empty", got)
	}
	if s.calls != 4 {
		t.Errorf("attempts = %d, want full chain", s.calls)
	}
}

// Fast-mode size makes exactly one bounded attempt.
func TestSizeFastSingleAttempt(t *testing.T) {
	s := &scriptedEngine{texts: []string{"15.5 OZ", "PACK OF 2"}}
	orch := newTestOrchestrator(constants.ModeFast, s)
	vars := zoneVars(constants.ZoneSize, "band-size/plain", "band-size/threshold-invert")

	got := orch.Size(context.Background(), vars)
	if got != "15.5 Oz" {
		t.Errorf("size = %q", got)
	}
	if s.calls != 1 {
		t.Errorf("attempts = %d, want 1", s.calls)
	}
}

// Thorough-mode size stops as soon as two distinct non-empty reads
// are collected; duplicates do not count.
func TestSizeThoroughEarlyExit(t *testing.T) {
	s := &scriptedEngine{texts: []string{"15.5 OZ", "15.5 OZ", "PACK OF 2", "NEVER READ"}}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneSize, "band-size/plain", "band-size/threshold-invert")

	got := orch.Size(context.Background(), vars)
	if got != "15.5 Oz Pack Of 2" {
		t.Errorf("size = %q", got)
	}
	if s.calls != 3 {
		t.Errorf("attempts = %d, want early exit after second distinct read", s.calls)
	}
}

// Fast-mode general stops at the first configuration that yields text.
func TestGeneralFastShortCircuits(t *testing.T) {
	s := &scriptedEngine{texts: []string{"LENTILS"}}
	orch := newTestOrchestrator(constants.ModeFast, s)
	vars := zoneVars(constants.ZoneGeneral, "full/sharpen", "band-top/sharpen")

	cands, bestEffort := orch.General(context.Background(), vars)
	if s.calls != 1 {
		t.Errorf("attempts = %d, want 1", s.calls)
	}
	if len(cands) != 1 || cands[0].Text != "Lentils" {
		t.Errorf("candidates = %+v", cands)
	}
	if bestEffort != "Lentils" {
		t.Errorf("best effort = %q", bestEffort)
	}
}

// Thorough-mode general accumulates across up to three variants and
// both configurations, with no short-circuit.
func TestGeneralThoroughAccumulates(t *testing.T) {
	s := &scriptedEngine{texts: []string{"ORGANIC KIDNEY BEANS", "", "LENTILS", "", "", ""}}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneGeneral,
		"full/sharpen", "band-top/sharpen", "band-middle/sharpen", "band-bottom/sharpen")

	cands, _ := orch.General(context.Background(), vars)
	if s.calls != 6 {
		t.Errorf("attempts = %d, want 3 variants x 2 configs", s.calls)
	}
	if len(cands) != 2 {
		t.Fatalf("candidates = %+v", cands)
	}
	if cands[0].Text != "Organic Kidney Beans" {
		t.Errorf("top candidate = %q", cands[0].Text)
	}
}

// Reread targets the middle band only, with the single-block config.
func TestRereadMiddleBand(t *testing.T) {
	s := &scriptedEngine{texts: []string{"KIDNEY BEANS"}}
	orch := newTestOrchestrator(constants.ModeThorough, s)
	vars := zoneVars(constants.ZoneGeneral,
		"full/sharpen", "band-middle/sharpen", "band-bottom/sharpen")

	cands := orch.Reread(context.Background(), vars)
	if s.calls != 1 {
		t.Errorf("attempts = %d, want 1", s.calls)
	}
	if len(cands) != 1 || cands[0].Text != "Kidney Beans" {
		t.Errorf("candidates = %+v", cands)
	}
	if s.cfgs[0].PageSegMode != engine.PageSegSingleBlock {
		t.Errorf("config = %+v, want single block", s.cfgs[0])
	}
}

func TestRereadWithoutMiddleBand(t *testing.T) {
	s := &scriptedEngine{texts: []string{"KIDNEY BEANS"}}
	orch := newTestOrchestrator(constants.ModeThorough, s)

	if cands := orch.Reread(context.Background(), zoneVars(constants.ZoneGeneral, "full/sharpen")); cands != nil {
		t.Errorf("candidates = %+v, want none", cands)
	}
	if s.calls != 0 {
		t.Errorf("attempts = %d, want 0", s.calls)
	}
}
