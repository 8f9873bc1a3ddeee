package recognize

import (
	"bytes"
	"context"
	"image/png"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pantrysnap/labelreader/constants"
	"github.com/pantrysnap/labelreader/internal/cache"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/engine"
	"github.com/pantrysnap/labelreader/internal/ranker"
	"github.com/pantrysnap/labelreader/internal/textnorm"
	"github.com/pantrysnap/labelreader/internal/variants"
	"github.com/pantrysnap/labelreader/internal/vision"
)

const maxResultLines = 5

// AcquireFunc opens one engine session for one request.
type AcquireFunc func() (engine.Recognizer, error)

// Coordinator is the top-level per-request orchestration: variant
// build, zone recognition in order, guard passes, the vision fallback
// gate, and final assembly. The engine session acquired for a request
// is released exactly once on every path.
type Coordinator struct {
	cfg     *common.Config
	builder *variants.Builder
	acquire AcquireFunc
	gate    *vision.Gate // nil disables the fallback
	results *cache.Cache // nil disables the result cache
	log     *slog.Logger
}

func NewCoordinator(cfg *common.Config, builder *variants.Builder, acquire AcquireFunc, gate *vision.Gate, results *cache.Cache, log *slog.Logger) *Coordinator {
	if log == nil {
		log = slog.Default()
	}
	return &Coordinator{
		cfg:     cfg,
		builder: builder,
		acquire: acquire,
		gate:    gate,
		results: results,
		log:     log,
	}
}

// Recognize turns one image payload into the newline-joined ranked
// candidate lines, best first.
func (c *Coordinator) Recognize(ctx context.Context, image []byte) (string, error) {
	rid := uuid.New().String()
	log := c.log.With("req_id", rid)
	start := time.Now()
	state := constants.StateIdle
	advance := func(next constants.RequestState) {
		state = next
		log.Debug("recognize.state", "state", string(state))
	}

	// Reject known-unsupported containers before any recognition work.
	format := constants.DetectImageFormat(image)
	if !constants.IsSupportedFormat(format) {
		advance(constants.StateRejectedFormat)
		log.Warn("recognize.rejected_format", "format", string(format))
		return "", common.NewAppError("UNSUPPORTED_IMAGE",
			"container cannot be decoded: "+string(format), common.ErrUnsupportedImage)
	}

	hash := cache.Hash(image)
	if c.results != nil {
		if text, ok := c.results.Get(ctx, hash); ok {
			log.Info("recognize.cache_hit")
			return text, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Budgets.Request)
	defer cancel()

	mode := c.cfg.Recognition.Mode
	advance(constants.StateBuildingVariants)
	set, err := c.builder.Build(image, mode)
	if err != nil {
		advance(constants.StateFailed)
		return "", common.NewAppError("DECODE", "image decode failed", common.WrapError(err, "build variants"))
	}

	session, err := c.acquire()
	if err != nil {
		advance(constants.StateFailed)
		return "", common.NewAppError("ENGINE_INIT", "engine session acquisition failed",
			common.WrapError(common.ErrEngine, err.Error()))
	}
	defer func() {
		if rerr := session.Release(); rerr != nil {
			log.Warn("recognize.session_release_failed", "error", rerr)
		}
	}()

	orch := NewOrchestrator(session, mode, c.cfg.Budgets, c.cfg.Recognition.FuzzyMaxDistance, log)

	advance(constants.StateRecognizingGen)
	general, bestEffort := orch.General(ctx, set.General)
	ranked := ranker.Rank(general, "")
	if err := c.deadline(ctx, state, log); err != nil {
		return "", err
	}

	// Brand and size only affect disambiguation; skip both when
	// general-zone confidence is already high.
	brandText, sizeText := "", ""
	if len(ranked) > 0 && ranked[0].Score >= c.cfg.Recognition.GoodEnoughScore {
		advance(constants.StateSkippedBands)
		log.Info("recognize.bands_skipped", "top_score", ranked[0].Score)
	} else {
		advance(constants.StateRecognizingBands)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			brandText = orch.Brand(ctx, set.Brand)
		}()
		go func() {
			defer wg.Done()
			sizeText = orch.Size(ctx, set.Size)
		}()
		wg.Wait()
	}
	if err := c.deadline(ctx, state, log); err != nil {
		return "", err
	}

	advance(constants.StateGuardPasses)
	all := make([]ranker.Candidate, 0, len(general)+2)
	all = append(all, general...)
	if brandText != "" {
		all = append(all, ranker.New(brandText, constants.ZoneBrand))
	}
	if sizeText != "" {
		all = append(all, ranker.New(sizeText, constants.ZoneSize))
	}
	merged := ranker.Rank(all, brandText)

	// Label-band re-read: a thorough pass gets one more chance at the
	// middle band when nothing food-bearing surfaced.
	if mode == constants.ModeThorough && !anyFoodBearing(merged) {
		if extra := orch.Reread(ctx, set.General); len(extra) > 0 {
			merged = ranker.Rank(append(merged, extra...), brandText)
		}
	}
	if err := c.deadline(ctx, state, log); err != nil {
		return "", err
	}

	// The cloud backstop is a latency risk; fast mode skips it
	// unconditionally.
	if mode == constants.ModeFast || c.gate == nil || !c.gate.ShouldTrigger(merged) {
		advance(constants.StateSkippedFallback)
	} else {
		advance(constants.StateVisionFallback)
		merged = c.gate.Apply(ctx, encodePrimary(set, image), merged, brandText)
	}

	advance(constants.StateFinalizing)
	text := joinCandidates(merged)
	if text == "" {
		// Zero ranked candidates: fall back to the cleaned best-effort
		// general line rather than an empty result.
		text = bestEffort
	}
	if text != "" && c.results != nil {
		c.results.Put(ctx, hash, text)
	}

	advance(constants.StateDone)
	log.Info("recognize.done",
		"mode", string(mode),
		"lines", len(merged),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// deadline surfaces the whole-request ceiling as the distinct timeout
// failure.
func (c *Coordinator) deadline(ctx context.Context, state constants.RequestState, log *slog.Logger) error {
	if ctx.Err() == nil {
		return nil
	}
	log.Warn("recognize.request_timeout", "state", string(state))
	return common.NewAppError("TIMEOUT", "request budget exceeded", common.ErrRequestTimeout)
}

func anyFoodBearing(cands []ranker.Candidate) bool {
	for _, c := range cands {
		if textnorm.HasFoodWord(c.Text) {
			return true
		}
	}
	return false
}

func joinCandidates(cands []ranker.Candidate) string {
	n := len(cands)
	if n > maxResultLines {
		n = maxResultLines
	}
	lines := make([]string, 0, n)
	for _, c := range cands[:n] {
		lines = append(lines, c.Text)
	}
	return strings.Join(lines, "\n")
}

// encodePrimary hands the fallback the orientation-normalized primary
// image; if encoding fails the original payload goes instead.
func encodePrimary(set *variants.Set, original []byte) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, set.Primary); err != nil {
		return original
	}
	return buf.Bytes()
}
