package engine

import (
	"context"
	"image"
	"log/slog"
	"time"
)

// RecognizeSoft runs one recognition attempt under a budget. On
// timeout or engine error it returns a zero Result and false instead
// of an error, so a single failed attempt never aborts its zone. The
// underlying engine call is abandoned on expiry, not killed.
func RecognizeSoft(ctx context.Context, r Recognizer, img image.Image, cfg Config, budget time.Duration, log *slog.Logger) (Result, bool) {
	if log == nil {
		log = slog.Default()
	}
	type outcome struct {
		res Result
		err error
	}
	ch := make(chan outcome, 1)
	start := time.Now()

	go func() {
		res, err := r.Recognize(ctx, img, cfg)
		ch <- outcome{res, err}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case out := <-ch:
		if out.err != nil {
			log.Debug("engine.attempt.soft_fail",
				"error", out.err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return Result{}, false
		}
		return out.res, true
	case <-timer.C:
		log.Debug("engine.attempt.timeout",
			"budget_ms", budget.Milliseconds(),
		)
		return Result{}, false
	case <-ctx.Done():
		log.Debug("engine.attempt.canceled",
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return Result{}, false
	}
}
