package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/ranker"
)

type stubDetector struct {
	text  string
	err   error
	calls int
}

func (s *stubDetector) DetectText(_ context.Context, _ []byte) (string, error) {
	s.calls++
	return s.text, s.err
}

func gateConfig() common.RecognitionConfig {
	return common.RecognitionConfig{
		FallbackMinScore: 3.0,
		FallbackMinAlpha: 12,
		FuzzyMaxDistance: 2,
	}
}

func TestShouldTrigger(t *testing.T) {
	g := NewGate(&stubDetector{}, gateConfig(), nil)

	if !g.ShouldTrigger(nil) {
		t.Error("empty candidate set must trigger")
	}
	garbage := []ranker.Candidate{ranker.New("trader Joe's", constants.ZoneGeneral)}
	if !g.ShouldTrigger(garbage) {
		t.Error("short low-scoring non-food top must trigger")
	}
	food := []ranker.Candidate{ranker.New("Organic Kidney Beans", constants.ZoneGeneral)}
	if g.ShouldTrigger(food) {
		t.Error("food-bearing top must not trigger")
	}
}

// A garbage local read replaced by a clean fallback annotation: the
// merged top line is the fallback's.
func TestApplyMergesFallback(t *testing.T) {
	det := &stubDetector{text: "Organic Fusilli Pasta\nTRADER JOE'S"}
	g := NewGate(det, gateConfig(), nil)

	local := []ranker.Candidate{ranker.New("trader Joe's", constants.ZoneGeneral)}
	out := g.Apply(context.Background(), []byte("img"), local, "")
	if len(out) == 0 || out[0].Text != "Organic Fusilli Pasta" {
		t.Fatalf("want fallback line first, got %+v", out)
	}
	if det.calls != 1 {
		t.Errorf("detector calls = %d, want 1", det.calls)
	}
}

func TestApplySoftFails(t *testing.T) {
	local := []ranker.Candidate{ranker.New("trader Joe's", constants.ZoneGeneral)}

	g := NewGate(&stubDetector{err: errors.New("unreachable")}, gateConfig(), nil)
	out := g.Apply(context.Background(), []byte("img"), local, "")
	if len(out) != 1 || out[0].Text != local[0].Text {
		t.Errorf("error must leave candidates unchanged, got %+v", out)
	}

	g = NewGate(&stubDetector{text: "   "}, gateConfig(), nil)
	out = g.Apply(context.Background(), []byte("img"), local, "")
	if len(out) != 1 || out[0].Text != local[0].Text {
		t.Errorf("empty text must leave candidates unchanged, got %+v", out)
	}
}
