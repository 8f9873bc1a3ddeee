// Package engine defines the boundary to the external OCR engine. The
// engine itself is an opaque recognizer behind the Recognizer
// interface; the tesseract subpackage provides the real
// implementation, and tests substitute their own.
//
// Sessions are per request, never shared or pooled: each is acquired,
// configured, used and released as one complete lifecycle.
package engine

import (
	"context"
	"image"

	"github.com/pantrysnap/labelreader/constants"
)

// PageSeg selects the engine's page-segmentation strategy for one
// attempt.
type PageSeg int

const (
	PageSegAuto PageSeg = iota
	PageSegSingleBlock
	PageSegSingleLine
	PageSegSparse
)

// Config is one recognition attempt's engine configuration.
type Config struct {
	PageSegMode PageSeg
	Whitelist   string // empty means unrestricted
	DPI         int    // hint; 0 leaves the engine default
}

// Word is a recognized word with its box and confidence in 0..1.
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
}

// Result is one raw recognition attempt's output. Ephemeral: consumed
// by the orchestrator and discarded. Zone and Variant are filled in by
// the caller, which knows which crop it submitted.
type Result struct {
	Zone    constants.RecognitionZone
	Variant int
	Text    string
	Words   []Word
}

// MeanConfidence averages the per-word confidences of a result, 0
// when the engine returned no word boxes.
func MeanConfidence(words []Word) float64 {
	if len(words) == 0 {
		return 0
	}
	sum := 0.0
	for _, w := range words {
		sum += w.Confidence
	}
	return sum / float64(len(words))
}

// Recognizer is the engine session. The engine has no built-in
// timeout; callers impose their own via RecognizeSoft.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image, cfg Config) (Result, error)
	Release() error
}
