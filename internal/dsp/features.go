package dsp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hapticstudio/worker/internal/model"
)

// ErrEmptyWaveform is returned when the decoded waveform has zero samples.
var ErrEmptyWaveform = errors.New("waveform contains no samples")

// Analysis frame geometry shared by every descriptor so all series stay
// aligned to the same time base.
const (
	defaultWindowSize = 1024
	defaultHopSize    = 512

	rolloffThreshold = 0.85
	onsetDelta       = 1.0  // stddevs above mean flux to accept a peak
	minOnsetInterval = 0.03 // seconds between accepted onsets
)

// Extractor turns a mono PCM waveform into a FeatureBundle. It is stateless,
// side-effect free, and deterministic for identical input.
type Extractor struct {
	windowSize int
	hopSize    int
}

// NewExtractor creates a feature extractor with the default frame geometry.
func NewExtractor() *Extractor {
	return &Extractor{
		windowSize: defaultWindowSize,
		hopSize:    defaultHopSize,
	}
}

// Extract computes tempo, beats, onsets, RMS energy, spectral centroid and
// spectral rolloff for the given waveform. All time values are seconds.
// Inputs longer than the analysis cap must be truncated by the caller.
func (e *Extractor) Extract(samples []float64, sampleRate int) (*model.FeatureBundle, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyWaveform
	}

	duration := float64(len(samples)) / float64(sampleRate)
	frameTime := float64(e.hopSize) / float64(sampleRate)

	bundle := &model.FeatureBundle{
		BeatTimes:        []float64{},
		OnsetTimes:       []float64{},
		Energy:           []float64{},
		SpectralCentroid: []float64{},
		SpectralRolloff:  []float64{},
		Duration:         duration,
	}

	mag := spectrogram(samples, e.windowSize, e.hopSize)
	if mag == nil {
		// Too short for a single analysis frame: no rhythmic content to
		// describe, but still a valid (empty) bundle.
		return bundle, nil
	}

	bundle.Energy = shortTimeEnergy(samples, e.windowSize, e.hopSize)
	bundle.SpectralCentroid = spectralCentroids(mag, sampleRate)
	bundle.SpectralRolloff = spectralRolloffs(mag, sampleRate, rolloffThreshold)

	flux := spectralFlux(mag)
	minIntervalFrames := int(minOnsetInterval / frameTime)
	if minIntervalFrames < 1 {
		minIntervalFrames = 1
	}

	onsetFrames := pickPeaks(flux, onsetDelta, minIntervalFrames)
	for _, f := range onsetFrames {
		// Flux index f measures the change into spectrogram frame f+1.
		t := float64(f+1) * frameTime
		if t <= duration {
			bundle.OnsetTimes = append(bundle.OnsetTimes, t)
		}
	}

	bundle.Tempo = estimateTempo(bundle.OnsetTimes)
	bundle.BeatTimes = trackBeats(flux, bundle.OnsetTimes, bundle.Tempo, frameTime, duration)

	return bundle, nil
}

// trackBeats lays a beat grid at the estimated tempo, anchored on the
// strongest detected onset, and snaps each grid position to the nearest
// onset-strength peak so beats line up with actual transients.
func trackBeats(flux []float64, onsetTimes []float64, tempo, frameTime, duration float64) []float64 {
	if tempo <= 0 || len(flux) == 0 {
		return []float64{}
	}

	period := 60.0 / tempo

	anchor := strongestOnset(flux, onsetTimes, frameTime)

	// Walk the grid back to the start of the signal, then forward to the end.
	start := anchor
	for start-period >= 0 {
		start -= period
	}

	snapRadius := int(period / 8 / frameTime)
	beats := []float64{}
	for t := start; t <= duration; t += period {
		beats = append(beats, snapToFluxPeak(flux, t, snapRadius, frameTime, duration))
	}

	return beats
}

// strongestOnset returns the onset time with the highest flux value, or the
// global flux maximum when no onsets were detected.
func strongestOnset(flux []float64, onsetTimes []float64, frameTime float64) float64 {
	if len(onsetTimes) == 0 {
		return float64(floats.MaxIdx(flux)+1) * frameTime
	}

	best := onsetTimes[0]
	bestFlux := math.Inf(-1)
	for _, t := range onsetTimes {
		f := int(t/frameTime) - 1
		if f < 0 || f >= len(flux) {
			continue
		}
		if flux[f] > bestFlux {
			bestFlux = flux[f]
			best = t
		}
	}
	return best
}

// snapToFluxPeak moves a grid time to the local flux maximum within radius
// frames, clamped to [0, duration].
func snapToFluxPeak(flux []float64, t float64, radius int, frameTime, duration float64) float64 {
	center := int(t/frameTime) - 1
	lo := center - radius
	hi := center + radius
	if lo < 0 {
		lo = 0
	}
	if hi >= len(flux) {
		hi = len(flux) - 1
	}
	if lo > hi {
		return clamp(t, 0, duration)
	}

	best := lo + floats.MaxIdx(flux[lo:hi+1])
	return clamp(float64(best+1)*frameTime, 0, duration)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
