package main

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	pixelColumn              = "Pixels #"
	intensityColumn          = "Intensity (a.u.)"
	wavelengthColumn         = "Wavelength (nm)"
	shiftColumn              = "Raman shift (cm-1)"
	adjustedShiftColumn      = "Raman shift (cm-1) adjusted"
	filteredIntensityColumn  = "Filtered Intensity (a.u.)"
	baselinedIntensityColumn = "Baselined Filtered Intensity (a.u.)"
)

// Spectrum is a sample table. Cells read from disk are kept verbatim; derived
// columns are appended on the right.
type Spectrum struct {
	header []string
	rows   [][]string

	Pixels    []float64
	Intensity []float64
	// IntegerIntensity is set when every intensity cell is a whole number.
	IntegerIntensity bool
}

func ReadSpectrum(r io.Reader) (*Spectrum, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing csv")
	}
	if len(records) == 0 {
		return nil, errors.New("empty csv")
	}
	header := records[0]
	header[0] = trimBOM(header[0])
	rows := records[1:]
	if len(rows) == 0 {
		return nil, errors.New("no data rows")
	}

	s := &Spectrum{header: header, rows: rows}
	pixelIdx := s.columnIndex(pixelColumn)
	if pixelIdx < 0 {
		return nil, errors.Errorf("missing %q column", pixelColumn)
	}
	intensityIdx := s.columnIndex(intensityColumn)
	if intensityIdx < 0 {
		return nil, errors.Errorf("missing %q column", intensityColumn)
	}

	s.Pixels = make([]float64, len(rows))
	s.Intensity = make([]float64, len(rows))
	s.IntegerIntensity = true
	for i, row := range rows {
		if s.Pixels[i], err = strconv.ParseFloat(strings.TrimSpace(row[pixelIdx]), 64); err != nil {
			return nil, errors.Wrapf(err, "row %d: %s", i+1, pixelColumn)
		}
		if s.Intensity[i], err = strconv.ParseFloat(strings.TrimSpace(row[intensityIdx]), 64); err != nil {
			return nil, errors.Wrapf(err, "row %d: %s", i+1, intensityColumn)
		}
		if _, err := strconv.ParseInt(strings.TrimSpace(row[intensityIdx]), 10, 64); err != nil {
			s.IntegerIntensity = false
		}
	}
	return s, nil
}

// trimBOM drops the UTF-8 byte order mark some exporters put before the first header.
func trimBOM(cell string) string {
	return strings.TrimPrefix(cell, "\ufeff")
}

func LoadSpectrum(name string) (*Spectrum, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "opening sample file")
	}
	defer file.Close()
	s, err := ReadSpectrum(file)
	if err != nil {
		return nil, errors.Wrapf(err, "sample file %s", name)
	}
	return s, nil
}

func (s *Spectrum) Len() int {
	return len(s.rows)
}

func (s *Spectrum) Header() []string {
	return s.header
}

func (s *Spectrum) columnIndex(name string) int {
	for i, h := range s.header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Column returns the raw cells of a column, or nil if there is no such column.
func (s *Spectrum) Column(name string) []string {
	idx := s.columnIndex(name)
	if idx < 0 {
		return nil
	}
	res := make([]string, len(s.rows))
	for i, row := range s.rows {
		res[i] = row[idx]
	}
	return res
}

// SetColumn overwrites the named column or appends it.
func (s *Spectrum) SetColumn(name string, values []float64) error {
	return s.setColumn(name, values, formatFloat)
}

// SetIntegerColumn is SetColumn for whole-number values, written without a fraction.
func (s *Spectrum) SetIntegerColumn(name string, values []float64) error {
	return s.setColumn(name, values, formatInteger)
}

func (s *Spectrum) setColumn(name string, values []float64, format func(float64) string) error {
	if len(values) != len(s.rows) {
		return errors.Errorf("column %q has %d values for %d rows", name, len(values), len(s.rows))
	}
	idx := s.columnIndex(name)
	if idx < 0 {
		s.header = append(s.header, name)
		for i := range s.rows {
			s.rows[i] = append(s.rows[i], format(values[i]))
		}
		return nil
	}
	for i := range s.rows {
		s.rows[i][idx] = format(values[i])
	}
	return nil
}

func (s *Spectrum) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(s.header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	if err := writer.WriteAll(s.rows); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	return nil
}

func (s *Spectrum) Save(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "creating output csv")
	}
	if err := s.WriteCSV(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "output csv %s", name)
	}
	return errors.Wrapf(file.Close(), "closing output csv %s", name)
}

// formatFloat writes the shortest decimal that round-trips, switching to
// exponent form below 1e-4 and from 1e16 on.
func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	if math.IsInf(v, 0) {
		if v > 0 {
			return "inf"
		}
		return "-inf"
	}
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func formatInteger(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
