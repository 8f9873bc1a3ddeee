package common

import (
	"os"
	"strconv"
	"time"

	"github.com/pantrysnap/labelreader/constants"
)

// Config holds all application configuration
type Config struct {
	Recognition RecognitionConfig
	Budgets     BudgetConfig
	Vision      VisionConfig
	Cache       CacheConfig
	DevMode     bool
}

// RecognitionConfig holds engine and scoring configuration.
type RecognitionConfig struct {
	Mode          constants.Mode
	TesseractLang string
	TessdataDir   string

	// MaxEdgePx bounds the longest image edge before variants are
	// derived, to bound per-attempt recognition latency.
	MaxEdgePx int

	// GoodEnoughScore is the general-zone score above which the brand
	// and size zones are skipped entirely.
	GoodEnoughScore float64

	// FallbackMinScore and FallbackMinAlpha gate the cloud vision
	// backstop: a non-food top candidate below either threshold
	// triggers the second opinion.
	FallbackMinScore float64
	FallbackMinAlpha int

	// FuzzyMaxDistance caps the edit distance accepted by the
	// dictionary correction pass.
	FuzzyMaxDistance int
}

// BudgetConfig holds per-zone per-mode attempt timeouts plus the
// whole-request ceiling. All values are wall-clock budgets.
type BudgetConfig struct {
	GeneralFast     time.Duration
	GeneralThorough time.Duration
	BrandFast       time.Duration
	BrandThorough   time.Duration
	SizeFast        time.Duration
	SizeThorough    time.Duration
	Request         time.Duration
}

// Attempt returns the per-attempt budget for a zone under a mode.
func (b BudgetConfig) Attempt(zone constants.RecognitionZone, mode constants.Mode) time.Duration {
	thorough := mode == constants.ModeThorough
	switch zone {
	case constants.ZoneBrand:
		if thorough {
			return b.BrandThorough
		}
		return b.BrandFast
	case constants.ZoneSize:
		if thorough {
			return b.SizeThorough
		}
		return b.SizeFast
	default:
		if thorough {
			return b.GeneralThorough
		}
		return b.GeneralFast
	}
}

// VisionConfig holds cloud OCR fallback configuration.
type VisionConfig struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// CacheConfig holds the best-effort result cache configuration.
type CacheConfig struct {
	Path    string
	Enabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	cachePath := getEnv("RESULT_CACHE_PATH", "")
	return &Config{
		Recognition: RecognitionConfig{
			Mode:             constants.ParseMode(getEnv("LABELREADER_MODE", "fast")),
			TesseractLang:    getEnv("TESSERACT_LANG", "eng"),
			TessdataDir:      getEnv("TESSDATA_PREFIX", ""),
			MaxEdgePx:        getEnvAsInt("MAX_EDGE_PX", 1600),
			GoodEnoughScore:  getEnvAsFloat64("GOOD_ENOUGH_SCORE", 9.0),
			FallbackMinScore: getEnvAsFloat64("FALLBACK_MIN_SCORE", 3.0),
			FallbackMinAlpha: getEnvAsInt("FALLBACK_MIN_ALPHA", 12),
			FuzzyMaxDistance: getEnvAsInt("FUZZY_MAX_DISTANCE", 2),
		},
		Budgets: BudgetConfig{
			GeneralFast:     getEnvAsDuration("BUDGET_GENERAL_FAST", 900*time.Millisecond),
			GeneralThorough: getEnvAsDuration("BUDGET_GENERAL_THOROUGH", 2500*time.Millisecond),
			BrandFast:       getEnvAsDuration("BUDGET_BRAND_FAST", 400*time.Millisecond),
			BrandThorough:   getEnvAsDuration("BUDGET_BRAND_THOROUGH", 1200*time.Millisecond),
			SizeFast:        getEnvAsDuration("BUDGET_SIZE_FAST", 400*time.Millisecond),
			SizeThorough:    getEnvAsDuration("BUDGET_SIZE_THOROUGH", 1000*time.Millisecond),
			Request:         getEnvAsDuration("BUDGET_REQUEST", 12*time.Second),
		},
		Vision: VisionConfig{
			Endpoint: getEnv("VISION_ENDPOINT", ""),
			APIKey:   getEnv("VISION_API_KEY", ""),
			Timeout:  getEnvAsDuration("VISION_TIMEOUT", 5*time.Second),
		},
		Cache: CacheConfig{
			Path:    cachePath,
			Enabled: cachePath != "",
		},
		DevMode: getEnvAsBool("DEV_MODE", false),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Budgets.Request <= 0 {
		return NewAppError("CONFIG_ERROR", "BUDGET_REQUEST must be positive", ErrInvalidInput)
	}
	if c.Recognition.MaxEdgePx < 200 {
		return NewAppError("CONFIG_ERROR", "MAX_EDGE_PX too small", ErrInvalidInput)
	}
	if c.Recognition.FuzzyMaxDistance < 0 || c.Recognition.FuzzyMaxDistance > 3 {
		return NewAppError("CONFIG_ERROR", "FUZZY_MAX_DISTANCE out of range", ErrInvalidInput)
	}
	return nil
}
