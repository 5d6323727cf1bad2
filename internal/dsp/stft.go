package dsp

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// spectrogram computes a Hann-windowed magnitude spectrogram.
// Rows are time frames, columns the windowSize/2+1 positive frequency bins.
// Frames are advanced by hopSize; a trailing partial frame is dropped.
func spectrogram(signal []float64, windowSize, hopSize int) [][]float64 {
	if len(signal) < windowSize || windowSize <= 0 || hopSize <= 0 {
		return nil
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	freqBins := windowSize/2 + 1
	window := hannWindow(windowSize)

	magnitude := make([][]float64, numFrames)
	frame := make([]float64, windowSize)

	for t := 0; t < numFrames; t++ {
		start := t * hopSize
		for i := 0; i < windowSize; i++ {
			frame[i] = signal[start+i] * window[i]
		}

		spectrum := fft.FFTReal(frame)

		magnitude[t] = make([]float64, freqBins)
		for i := 0; i < freqBins; i++ {
			magnitude[t][i] = cmplx.Abs(spectrum[i])
		}
	}

	return magnitude
}

// frequencyBins returns the center frequency of each spectrogram bin in Hz.
func frequencyBins(numBins, sampleRate int) []float64 {
	bins := make([]float64, numBins)
	for i := range bins {
		bins[i] = float64(i) * float64(sampleRate) / float64((numBins-1)*2)
	}
	return bins
}
