package model

// EventKind identifies which detector produced a haptic event
type EventKind string

const (
	EventKindBeat  EventKind = "beat"
	EventKindOnset EventKind = "onset"
)

// OutputFormat identifies a pattern serialization target
type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatAHAP OutputFormat = "ahap"
)

var ValidFormats = []OutputFormat{FormatJSON, FormatAHAP}

// DefaultFormats is used when a job message does not name any formats
var DefaultFormats = []OutputFormat{FormatJSON, FormatAHAP}

// HapticEvent is a single transient vibration.
// Events are value objects; equality is field equality.
type HapticEvent struct {
	Time      float64   `json:"time"`
	Intensity float64   `json:"intensity"`
	Duration  float64   `json:"duration"`
	Kind      EventKind `json:"type"`
	Sharpness float64   `json:"sharpness"`
}

// PatternMetadata summarizes a generated pattern
type PatternMetadata struct {
	Tempo       float64 `json:"tempo"`
	TotalEvents int     `json:"total_events"`
	Duration    float64 `json:"duration"`
}

// HapticPattern is the deduplicated, time-ordered event timeline for one job
type HapticPattern struct {
	Events   []HapticEvent   `json:"events"`
	Metadata PatternMetadata `json:"metadata"`
}

// FeatureBundle holds the time-aligned descriptors extracted from a waveform.
// All time values are seconds. Immutable once produced.
type FeatureBundle struct {
	Tempo            float64   `json:"tempo"`
	BeatTimes        []float64 `json:"beats"`
	OnsetTimes       []float64 `json:"onset_times"`
	Energy           []float64 `json:"rms"`
	SpectralCentroid []float64 `json:"spectral_centroid"`
	SpectralRolloff  []float64 `json:"spectral_rolloff"`
	Duration         float64   `json:"duration"`
}
