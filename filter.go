package main

import (
	"math"
	"sort"

	"github.com/mjibson/go-dsp/dsputils"
	"github.com/mjibson/go-dsp/fft"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// Smoother turns a raw intensity trace into a filtered one of the same length.
type Smoother interface {
	Smooth(signal []float64) ([]float64, error)
	Name() string
}

type MedianFilter struct {
	kernel int
}

func NewMedianFilter(kernel int) (*MedianFilter, error) {
	if kernel < 1 || kernel%2 == 0 {
		return nil, errors.Errorf("median kernel size must be odd and positive, got %d", kernel)
	}
	return &MedianFilter{kernel}, nil
}

func (f *MedianFilter) Name() string {
	return "median"
}

// Smooth replaces each sample with the median of the window centered on it.
// Samples past either end count as zero.
func (f *MedianFilter) Smooth(signal []float64) ([]float64, error) {
	half := f.kernel / 2
	res := make([]float64, len(signal))
	window := make([]float64, f.kernel)
	for i := 0; i < len(signal); i++ {
		for k := -half; k <= half; k++ {
			j := i + k
			if j < 0 || j >= len(signal) {
				window[k+half] = 0
			} else {
				window[k+half] = signal[j]
			}
		}
		sort.Float64s(window)
		res[i] = stat.Quantile(0.5, stat.Empirical, window, nil)
	}
	return res, nil
}

// LowpassFilter convolves with a Blackman windowed-sinc kernel.
type LowpassFilter struct {
	m      int
	fc     float64
	kernel []float64
}

func NewLowpassFilter(m int, fc float64) (*LowpassFilter, error) {
	if m < 2 || m%2 != 0 {
		return nil, errors.Errorf("lowpass order must be even and at least 2, got %d", m)
	}
	if fc <= 0 || fc >= 0.5 {
		return nil, errors.Errorf("lowpass cutoff must be in (0, 0.5) cycles per sample, got %v", fc)
	}
	return &LowpassFilter{m, fc, windowSincKernelLp(m, fc)}, nil
}

func (f *LowpassFilter) Name() string {
	return "lowpass"
}

// Smooth shifts the convolution back by m/2 so peaks stay on their pixels.
func (f *LowpassFilter) Smooth(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return []float64{}, nil
	}
	n := len(signal) + f.m
	kernel := dsputils.ZeroPadF(f.kernel, n)
	padded := dsputils.ZeroPadF(signal, n)

	fftK := fft.FFTReal(kernel)
	fftS := fft.FFTReal(padded)
	r := make([]complex128, n)
	for i := 0; i < n; i++ {
		r[i] = fftK[i] * fftS[i]
	}
	full := ToReal(fft.IFFT(r))

	delay := f.m / 2
	res := make([]float64, len(signal))
	copy(res, full[delay:delay+len(signal)])
	return res, nil
}

func windowSincKernelLp(m int, fc float64) []float64 {
	h := make([]float64, m+1)
	mF := float64(m)
	mF2 := float64(m / 2)
	for i := 0; i <= m; i++ {
		// Blackman window
		iF := float64(i)
		w := 0.42 - 0.5*math.Cos(2*math.Pi*iF/mF) + 0.08*math.Cos(4*math.Pi*iF/mF)
		if i == m/2 {
			h[i] = 2 * math.Pi * fc
		} else {
			h[i] = w * math.Sin(2*math.Pi*fc*(iF-mF2)) / (iF - mF2)
		}
	}
	divVS(h, sumV(h))
	return h
}

func ToReal(a []complex128) []float64 {
	r := make([]float64, len(a))
	for i := 0; i < len(a); i++ {
		r[i] = real(a[i])
	}
	return r
}
