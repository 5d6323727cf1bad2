package dsp

import "math"

// hannWindow returns periodic Hann window coefficients of the given size.
// The periodic form is the right one for overlap-add STFT analysis.
func hannWindow(size int) []float64 {
	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 0.5 * (1.0 - math.Cos(2*math.Pi*float64(i)/float64(size)))
	}
	return coeffs
}
