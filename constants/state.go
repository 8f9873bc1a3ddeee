package constants

// RequestState is the coordinator's position in the per-request state
// machine. States are logged, not persisted.
type RequestState string

const (
	StateIdle              RequestState = "IDLE"
	StateBuildingVariants  RequestState = "BUILDING_VARIANTS"
	StateRecognizingGen    RequestState = "RECOGNIZING_GENERAL"
	StateRecognizingBands  RequestState = "RECOGNIZING_BRAND_SIZE"
	StateSkippedBands      RequestState = "SKIPPED_BRAND_SIZE"
	StateGuardPasses       RequestState = "GUARD_PASSES"
	StateVisionFallback    RequestState = "VISION_FALLBACK"
	StateSkippedFallback   RequestState = "SKIPPED_FALLBACK"
	StateFinalizing        RequestState = "FINALIZING"
	StateDone              RequestState = "DONE"
	StateRejectedFormat    RequestState = "REJECTED_UNSUPPORTED_FORMAT"
	StateFailed            RequestState = "FAILED"
)
