package haptic

import (
	"sort"

	"github.com/hapticstudio/worker/internal/config"
	"github.com/hapticstudio/worker/internal/model"
)

// Synthesizer maps a FeatureBundle onto a deduplicated, time-sorted haptic
// event timeline. Synthesis is a pure function of its input: the same bundle
// always yields the same pattern.
type Synthesizer struct {
	cfg config.HapticConfig
}

// DefaultConfig returns the fixed synthesis policy: intensities, durations
// and sharpness per event kind, and the minimum spacing between kept events.
func DefaultConfig() config.HapticConfig {
	return config.HapticConfig{
		MinEventGap:    0.05,
		BeatIntensity:  1.0,
		BeatDuration:   0.1,
		BeatSharpness:  0.8,
		OnsetIntensity: 0.6,
		OnsetDuration:  0.05,
		OnsetSharpness: 0.5,
	}
}

func NewSynthesizer(cfg config.HapticConfig) *Synthesizer {
	return &Synthesizer{cfg: cfg}
}

// Synthesize builds the haptic pattern for a feature bundle. Beats become
// strong sharp transients, onsets softer ones. Candidates are merged with a
// stable sort (beats are appended first, so a beat wins a timestamp tie
// against an onset) and then thinned by a greedy forward scan: an event is
// kept only if it is more than MinEventGap later than the last kept event.
// First-in-window wins; later candidates in the window are dropped regardless
// of intensity. Empty beat and onset lists are not an error and produce an
// empty pattern.
func (s *Synthesizer) Synthesize(features *model.FeatureBundle) *model.HapticPattern {
	candidates := make([]model.HapticEvent, 0, len(features.BeatTimes)+len(features.OnsetTimes))

	for _, t := range features.BeatTimes {
		candidates = append(candidates, model.HapticEvent{
			Time:      t,
			Intensity: s.cfg.BeatIntensity,
			Duration:  s.cfg.BeatDuration,
			Kind:      model.EventKindBeat,
			Sharpness: s.cfg.BeatSharpness,
		})
	}
	for _, t := range features.OnsetTimes {
		candidates = append(candidates, model.HapticEvent{
			Time:      t,
			Intensity: s.cfg.OnsetIntensity,
			Duration:  s.cfg.OnsetDuration,
			Kind:      model.EventKindOnset,
			Sharpness: s.cfg.OnsetSharpness,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Time < candidates[j].Time
	})

	events := make([]model.HapticEvent, 0, len(candidates))
	lastKept := -1.0
	for _, event := range candidates {
		if event.Time > lastKept+s.cfg.MinEventGap {
			events = append(events, event)
			lastKept = event.Time
		}
	}

	return &model.HapticPattern{
		Events: events,
		Metadata: model.PatternMetadata{
			Tempo:       features.Tempo,
			TotalEvents: len(events),
			Duration:    features.Duration,
		},
	}
}
