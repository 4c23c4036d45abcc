package utils

import (
	"fmt"
	"math"

	"github.com/setanarut/mediancut"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes how far a quantized image is from its source.
type Stats struct {
	// Mean squared error over the red, green and blue samples.
	MSE float64
	// Per-channel mean squared error, red, green, blue.
	ChannelMSE [3]float64
	// Peak signal-to-noise ratio in dB. +Inf for identical images.
	PSNR float64
	// Largest absolute difference of any sample.
	MaxError float64
	// Number of distinct colors in the quantized image.
	Colors int
}

func (s Stats) String() string {
	return fmt.Sprintf("colors=%d mse=%.3f psnr=%.2fdB max=%.0f", s.Colors, s.MSE, s.PSNR, s.MaxError)
}

// Measure compares a source pixel buffer with its quantized version.
func Measure(source, quantized []mediancut.Color) (Stats, error) {
	if len(source) != len(quantized) {
		return Stats{}, fmt.Errorf("%w: %d source pixels, %d quantized", mediancut.ErrDimensions, len(source), len(quantized))
	}
	var s Stats
	s.Colors = len(DistinctColors(quantized))
	if len(source) == 0 {
		s.PSNR = math.Inf(1)
		return s, nil
	}

	var diffs [3][]float64
	for ch := range diffs {
		diffs[ch] = make([]float64, len(source))
	}
	for i := range source {
		for ch := range diffs {
			d := float64(source[i][ch]) - float64(quantized[i][ch])
			diffs[ch][i] = d * d
		}
	}
	for ch := range diffs {
		s.ChannelMSE[ch] = stat.Mean(diffs[ch], nil)
		s.MaxError = max(s.MaxError, math.Sqrt(floats.Max(diffs[ch])))
	}
	s.MSE = stat.Mean(s.ChannelMSE[:], nil)
	if s.MSE == 0 {
		s.PSNR = math.Inf(1)
	} else {
		s.PSNR = 10 * math.Log10(255*255/s.MSE)
	}
	return s, nil
}
