package dsp

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// shortTimeEnergy calculates per-frame RMS energy over overlapping frames.
func shortTimeEnergy(signal []float64, frameSize, hopSize int) []float64 {
	if len(signal) < frameSize || frameSize <= 0 || hopSize <= 0 {
		return []float64{}
	}

	numFrames := (len(signal)-frameSize)/hopSize + 1
	energies := make([]float64, numFrames)

	for i := 0; i < numFrames; i++ {
		start := i * hopSize
		sumSquares := 0.0
		for j := start; j < start+frameSize; j++ {
			sumSquares += signal[j] * signal[j]
		}
		energies[i] = math.Sqrt(sumSquares / float64(frameSize))
	}

	return energies
}

// pickPeaks finds local maxima in an envelope that exceed an adaptive
// threshold (mean + delta stddevs) and are at least minIntervalFrames apart.
// Returns frame indices.
func pickPeaks(envelope []float64, delta float64, minIntervalFrames int) []int {
	if len(envelope) < 3 {
		return nil
	}

	mean, std := stat.MeanStdDev(envelope, nil)
	threshold := mean + delta*std

	var peaks []int
	lastPeak := -minIntervalFrames
	for i := 1; i < len(envelope)-1; i++ {
		if envelope[i] > envelope[i-1] &&
			envelope[i] >= envelope[i+1] &&
			envelope[i] >= threshold &&
			i-lastPeak >= minIntervalFrames {
			peaks = append(peaks, i)
			lastPeak = i
		}
	}

	return peaks
}

// estimateTempo derives a BPM estimate from inter-onset intervals by voting
// into a bank of common tempi. Intervals outside the 30-300 BPM range are
// ignored. Fewer than two onsets carry no rhythmic information and yield 0,
// which also suppresses beat tracking.
func estimateTempo(onsetTimes []float64) float64 {
	if len(onsetTimes) < 2 {
		return 0
	}

	tempoBank := []float64{60, 70, 80, 90, 100, 110, 120, 130, 140, 150, 160, 170, 180, 200}
	counts := make([]int, len(tempoBank))

	for i := 1; i < len(onsetTimes); i++ {
		interval := onsetTimes[i] - onsetTimes[i-1]
		if interval <= 0.2 || interval >= 2.0 {
			continue
		}
		tempo := 60.0 / interval

		bestIdx := 0
		bestDiff := math.Abs(tempo - tempoBank[0])
		for j, ref := range tempoBank {
			if diff := math.Abs(tempo - ref); diff < bestDiff {
				bestDiff = diff
				bestIdx = j
			}
		}
		if bestDiff < 10.0 {
			counts[bestIdx]++
		}
	}

	best := 120.0
	maxCount := 0
	for i, count := range counts {
		if count > maxCount {
			maxCount = count
			best = tempoBank[i]
		}
	}

	return best
}
