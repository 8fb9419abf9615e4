package main

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Processor struct {
	Neon         Calibration
	Acetonitrile Calibration
	Excitation   float64
	Smoother     Smoother
	Baseline     BaselineOptions
	OutputDir    string
	HTML         bool
	KeepGoing    bool
}

// Calibrated holds every trace derived from one spectrum.
type Calibrated struct {
	Wavelength    []float64
	Shift         []float64
	AdjustedShift []float64
	Filtered      []float64
	Baselined     []float64
	Baseline      *Baseline
}

type Result struct {
	Input      string
	CSV        string
	PNG        string
	HTML       string
	Rows       int
	Iterations int
	Converged  bool
}

// Calibrate computes the derived traces and stores them as columns of s.
func (p *Processor) Calibrate(s *Spectrum) (*Calibrated, error) {
	c := &Calibrated{}
	c.Wavelength = PixelToWavelength(p.Neon, s.Pixels)
	shift, err := WavelengthsToShift(c.Wavelength, p.Excitation)
	if err != nil {
		return nil, err
	}
	c.Shift = shift
	c.AdjustedShift = AdjustShift(p.Acetonitrile, c.Shift)

	if c.Filtered, err = p.Smoother.Smooth(s.Intensity); err != nil {
		return nil, errors.Wrapf(err, "%s filter", p.Smoother.Name())
	}
	// The baseline is fitted on the raw trace and removed from the filtered one.
	if c.Baseline, err = AirPLS(s.Intensity, p.Baseline); err != nil {
		return nil, errors.Wrap(err, "baseline")
	}
	c.Baselined = subV(c.Filtered, c.Baseline.Values)

	columns := []struct {
		name   string
		values []float64
	}{
		{wavelengthColumn, c.Wavelength},
		{shiftColumn, c.Shift},
		{adjustedShiftColumn, c.AdjustedShift},
		{filteredIntensityColumn, c.Filtered},
		{baselinedIntensityColumn, c.Baselined},
	}
	for _, col := range columns {
		if err := s.SetColumn(col.name, col.values); err != nil {
			return nil, err
		}
	}
	// A median of whole numbers is a whole number; keep the input's integer form.
	if _, ok := p.Smoother.(*MedianFilter); ok && s.IntegerIntensity {
		if err := s.SetIntegerColumn(filteredIntensityColumn, c.Filtered); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Process calibrates one sample file and writes its csv, png and html outputs.
func (p *Processor) Process(name string) (*Result, error) {
	out := outputsFor(p.OutputDir, name)
	if sameFile(out.csv, name) {
		return nil, errors.Errorf("output %s would overwrite the sample file", out.csv)
	}

	s, err := LoadSpectrum(name)
	if err != nil {
		return nil, err
	}
	log.Debugf("Loaded %d rows from %s", s.Len(), name)

	c, err := p.Calibrate(s)
	if err != nil {
		return nil, errors.Wrapf(err, "calibrating %s", name)
	}
	log.WithFields(log.Fields{
		"file":       filepath.Base(name),
		"iterations": c.Baseline.Iterations,
		"converged":  c.Baseline.Converged,
	}).Debug("Baseline fitted")
	if len(c.Baseline.TolHistory) > 0 {
		log.Tracef("Tolerance history for %s: %v", name, c.Baseline.TolHistory)
	}

	if err := s.Save(out.csv); err != nil {
		return nil, err
	}
	if err := drawPlot(out.png, c.AdjustedShift, s.Intensity); err != nil {
		return nil, err
	}

	res := &Result{
		Input:      name,
		CSV:        out.csv,
		PNG:        out.png,
		Rows:       s.Len(),
		Iterations: c.Baseline.Iterations,
		Converged:  c.Baseline.Converged,
	}
	if p.HTML {
		err := drawChart(out.html, filepath.Base(name), c.AdjustedShift,
			chartSeries{"Raw", s.Intensity},
			chartSeries{"Filtered", c.Filtered},
			chartSeries{"Baselined", c.Baselined},
		)
		if err != nil {
			return nil, err
		}
		res.HTML = out.html
	}
	return res, nil
}

// Run processes the files one after another. With KeepGoing a failed file is
// logged and skipped; the returned error then reports how many failed.
func (p *Processor) Run(files []string) ([]*Result, error) {
	if len(files) == 0 {
		return nil, errors.New("no sample files selected")
	}
	if err := checkDistinctOutputs(p.OutputDir, files); err != nil {
		return nil, err
	}
	results := make([]*Result, 0, len(files))
	failed := 0
	for _, name := range files {
		log.Infof("Processing %s", name)
		res, err := p.Process(name)
		if err != nil {
			if !p.KeepGoing {
				return results, err
			}
			log.WithField("file", name).WithError(err).Error("Calibration failed")
			failed++
			continue
		}
		results = append(results, res)
	}
	if failed > 0 {
		return results, errors.Errorf("%d of %d sample files failed", failed, len(files))
	}
	return results, nil
}

func sameFile(a, b string) bool {
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}
