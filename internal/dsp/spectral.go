package dsp

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// spectralFlux computes the onset strength envelope from a magnitude
// spectrogram: the L2 norm of positive bin-wise changes between consecutive
// frames. Energy decreases are ignored so note releases do not register.
func spectralFlux(spectrogram [][]float64) []float64 {
	if len(spectrogram) < 2 {
		return nil
	}

	flux := make([]float64, len(spectrogram)-1)
	for t := 1; t < len(spectrogram); t++ {
		sum := 0.0
		for f := range spectrogram[t] {
			diff := spectrogram[t][f] - spectrogram[t-1][f]
			if diff > 0 {
				sum += diff * diff
			}
		}
		flux[t-1] = math.Sqrt(sum)
	}
	return flux
}

// spectralCentroids computes the per-frame center of mass of the spectrum
// in Hz. Silent frames yield 0.
func spectralCentroids(spectrogram [][]float64, sampleRate int) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	freqs := frequencyBins(len(spectrogram[0]), sampleRate)
	centroids := make([]float64, len(spectrogram))

	for t, spectrum := range spectrogram {
		denominator := floats.Sum(spectrum)
		if denominator == 0 {
			continue
		}
		numerator := 0.0
		for i, mag := range spectrum {
			numerator += freqs[i] * mag
		}
		centroids[t] = numerator / denominator
	}

	return centroids
}

// spectralRolloffs computes, per frame, the frequency below which the given
// fraction of the spectral energy is contained.
func spectralRolloffs(spectrogram [][]float64, sampleRate int, threshold float64) []float64 {
	if len(spectrogram) == 0 {
		return []float64{}
	}

	freqs := frequencyBins(len(spectrogram[0]), sampleRate)
	rolloffs := make([]float64, len(spectrogram))

	for t, spectrum := range spectrogram {
		totalEnergy := 0.0
		for _, mag := range spectrum {
			totalEnergy += mag * mag
		}
		if totalEnergy == 0 {
			continue
		}

		targetEnergy := threshold * totalEnergy
		cumulative := 0.0
		rolloffs[t] = freqs[len(freqs)-1]
		for i, mag := range spectrum {
			cumulative += mag * mag
			if cumulative >= targetEnergy {
				rolloffs[t] = freqs[i]
				break
			}
		}
	}

	return rolloffs
}
