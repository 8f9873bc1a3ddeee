// Package tesseract is the gosseract-backed engine session. It is the
// only package that links against the tesseract C library.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strconv"
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/pantrysnap/labelreader/internal/engine"
)

// Session is a gosseract-backed engine.Recognizer. The underlying
// client is not safe for concurrent use, so attempts from concurrent
// zone goroutines serialize on a mutex.
type Session struct {
	mu     sync.Mutex
	client *gosseract.Client
	closed bool
	log    *slog.Logger
}

// Acquire creates and configures an engine session for one request.
func Acquire(lang, tessdataDir string, log *slog.Logger) (*Session, error) {
	if log == nil {
		log = slog.Default()
	}
	client := gosseract.NewClient()
	if tessdataDir != "" {
		if err := client.SetTessdataPrefix(tessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	return &Session{client: client, log: log}, nil
}

func pageSegMode(m engine.PageSeg) gosseract.PageSegMode {
	switch m {
	case engine.PageSegSingleBlock:
		return gosseract.PSM_SINGLE_BLOCK
	case engine.PageSegSingleLine:
		return gosseract.PSM_SINGLE_LINE
	case engine.PageSegSparse:
		return gosseract.PSM_SPARSE_TEXT
	default:
		return gosseract.PSM_AUTO
	}
}

// Recognize runs one attempt against the engine.
func (s *Session) Recognize(ctx context.Context, img image.Image, cfg engine.Config) (engine.Result, error) {
	if err := ctx.Err(); err != nil {
		return engine.Result{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return engine.Result{}, fmt.Errorf("encode variant: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return engine.Result{}, fmt.Errorf("session released")
	}

	if err := s.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return engine.Result{}, fmt.Errorf("set image: %w", err)
	}
	if err := s.client.SetPageSegMode(pageSegMode(cfg.PageSegMode)); err != nil {
		return engine.Result{}, fmt.Errorf("set psm: %w", err)
	}
	if err := s.client.SetWhitelist(cfg.Whitelist); err != nil {
		return engine.Result{}, fmt.Errorf("set whitelist: %w", err)
	}
	if cfg.DPI > 0 {
		_ = s.client.SetVariable("user_defined_dpi", strconv.Itoa(cfg.DPI))
	}

	text, err := s.client.Text()
	if err != nil {
		return engine.Result{}, fmt.Errorf("recognize: %w", err)
	}

	res := engine.Result{Text: text}
	// Word boxes are best effort; text alone is still usable.
	if boxes, berr := s.client.GetBoundingBoxes(gosseract.RIL_WORD); berr == nil {
		res.Words = make([]engine.Word, 0, len(boxes))
		for _, b := range boxes {
			if b.Word == "" {
				continue
			}
			res.Words = append(res.Words, engine.Word{
				Text:       b.Word,
				Confidence: b.Confidence / 100.0,
				Box:        b.Box,
			})
		}
	}
	return res, nil
}

// Release closes the session. Safe to call more than once; only the
// first call reaches the engine.
func (s *Session) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.client.Close()
}
