package main

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const defaultExcitation = 532.0

// Calibration is a linear equation y = x*Slope + Intercept.
type Calibration struct {
	Slope     float64
	Intercept float64
}

func (c Calibration) Apply(x float64) float64 {
	return x*c.Slope + c.Intercept
}

// Invert returns the x that maps to y.
func (c Calibration) Invert(y float64) (float64, error) {
	if c.Slope == 0 {
		return 0, errors.New("calibration with zero slope is not invertible")
	}
	return (y - c.Intercept) / c.Slope, nil
}

func (c Calibration) ApplyV(xs []float64) []float64 {
	res := make([]float64, len(xs))
	for i := 0; i < len(xs); i++ {
		res[i] = c.Apply(xs[i])
	}
	return res
}

// PixelToWavelength maps pixel indices to nanometers with the neon calibration.
func PixelToWavelength(neon Calibration, pixels []float64) []float64 {
	return neon.ApplyV(pixels)
}

// AdjustShift corrects Raman shift values with the acetonitrile calibration.
func AdjustShift(acetonitrile Calibration, shifts []float64) []float64 {
	return acetonitrile.ApplyV(shifts)
}

// WavelengthToShift converts a wavelength in nm to Raman shift in cm^-1
// relative to the excitation line.
func WavelengthToShift(wavelength, excitation float64) float64 {
	return (1.0/excitation - 1.0/wavelength) * 1e7
}

func WavelengthsToShift(wavelengths []float64, excitation float64) ([]float64, error) {
	if excitation <= 0 {
		return nil, errors.Errorf("excitation wavelength must be positive, got %v", excitation)
	}
	res := make([]float64, len(wavelengths))
	for i, w := range wavelengths {
		if w <= 0 {
			return nil, errors.Errorf("non-positive wavelength %v at row %d", w, i)
		}
		res[i] = WavelengthToShift(w, excitation)
	}
	return res, nil
}

// ReadCalibration takes Slope and Intercept from the first data row.
func ReadCalibration(r io.Reader) (Calibration, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return Calibration{}, errors.Wrap(err, "reading header")
	}
	header[0] = trimBOM(header[0])
	slopeIdx, interceptIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "Slope":
			slopeIdx = i
		case "Intercept":
			interceptIdx = i
		}
	}
	if slopeIdx < 0 {
		return Calibration{}, errors.New("missing Slope column")
	}
	if interceptIdx < 0 {
		return Calibration{}, errors.New("missing Intercept column")
	}

	row, err := reader.Read()
	if err == io.EOF {
		return Calibration{}, errors.New("no calibration row")
	}
	if err != nil {
		return Calibration{}, errors.Wrap(err, "reading calibration row")
	}

	var c Calibration
	if c.Slope, err = strconv.ParseFloat(strings.TrimSpace(row[slopeIdx]), 64); err != nil {
		return Calibration{}, errors.Wrap(err, "parsing Slope")
	}
	if c.Intercept, err = strconv.ParseFloat(strings.TrimSpace(row[interceptIdx]), 64); err != nil {
		return Calibration{}, errors.Wrap(err, "parsing Intercept")
	}
	return c, nil
}

func LoadCalibration(name string) (Calibration, error) {
	file, err := os.Open(name)
	if err != nil {
		return Calibration{}, errors.Wrap(err, "opening calibration file")
	}
	defer file.Close()
	c, err := ReadCalibration(file)
	if err != nil {
		return Calibration{}, errors.Wrapf(err, "calibration file %s", name)
	}
	return c, nil
}
