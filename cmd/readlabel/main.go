package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pantrysnap/labelreader/internal/cache"
	"github.com/pantrysnap/labelreader/internal/common"
	"github.com/pantrysnap/labelreader/internal/engine"
	"github.com/pantrysnap/labelreader/internal/engine/tesseract"
	"github.com/pantrysnap/labelreader/internal/recognize"
	"github.com/pantrysnap/labelreader/internal/variants"
	"github.com/pantrysnap/labelreader/internal/vision"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "readlabel <image-file>")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	image, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read image", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	var gate *vision.Gate
	if cfg.Vision.Endpoint != "" {
		gate = vision.NewGate(vision.NewClient(cfg.Vision, logger), cfg.Recognition, logger)
	}

	var results *cache.Cache
	if cfg.Cache.Enabled {
		if results, err = cache.Open(cfg.Cache.Path, logger); err != nil {
			logger.Warn("result cache unavailable", "error", err)
			results = nil
		} else {
			defer func() {
				if cerr := results.Close(); cerr != nil {
					logger.Error("close result cache", "error", cerr)
				}
			}()
		}
	}

	acquire := func() (engine.Recognizer, error) {
		return tesseract.Acquire(cfg.Recognition.TesseractLang, cfg.Recognition.TessdataDir, logger)
	}
	builder := variants.NewBuilder(cfg.Recognition.MaxEdgePx, logger)
	coord := recognize.NewCoordinator(cfg, builder, acquire, gate, results, logger)

	text, err := coord.Recognize(context.Background(), image)
	if err != nil {
		logger.Error("recognition failed", "error", common.StatusFromError(err, cfg.DevMode))
		switch {
		case errors.Is(err, common.ErrUnsupportedImage):
			os.Exit(3)
		case errors.Is(err, common.ErrRequestTimeout):
			os.Exit(4)
		default:
			os.Exit(1)
		}
	}

	fmt.Println(text)
}
