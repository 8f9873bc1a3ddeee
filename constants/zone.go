package constants

// RecognitionZone is a logical region of the label image. Each zone is
// recognized with its own character whitelist, page segmentation and
// timeout budget.
type RecognitionZone string

const (
	ZoneGeneral RecognitionZone = "GENERAL"
	ZoneBrand   RecognitionZone = "BRAND"
	ZoneSize    RecognitionZone = "SIZE"
)

// Candidate provenance tags beyond the three recognition zones.
const (
	SourceVision RecognitionZone = "VISION" // cloud fallback lines
	SourceMerged RecognitionZone = "MERGED" // synthesized organic+food lines
)

// Mode trades recognition latency against exhaustiveness. Fast mode is
// meant for interactive requests, thorough mode for background re-reads.
type Mode string

const (
	ModeFast     Mode = "FAST"
	ModeThorough Mode = "THOROUGH"
)

// ParseMode maps a config string to a Mode, defaulting to fast.
func ParseMode(s string) Mode {
	if Mode(normalizeUpper(s)) == ModeThorough {
		return ModeThorough
	}
	return ModeFast
}
