package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// ramancal applies the daily calibration of the DIY Raman setup to sample spectra:
//
//	pixel -> nm            neon coefficients file
//	nm -> Raman shift      excitation line, 532 nm by default
//	shift correction       acetonitrile coefficients file
//
// then smooths the intensity, removes the baseline and writes csv, png and html
// next to each other in data/processed/processed_data/<date>.
func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	var logLevel string
	var neonFile, acetonitrileFile, sampleDir, outputFolder, smoother string
	var excitation, lowpassCutoff float64
	var kernel, lowpassOrder int
	var noHTML, keepGoing bool
	baseline := DefaultBaselineOptions()

	return &cli.App{
		Name:                 "ramancal",
		Writer:               out,
		Usage:                "Apply neon and acetonitrile calibration to Raman spectra",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Logging level (trace, debug, info, warn, error)",
				Value:       "info",
				EnvVars:     []string{"RAMANCAL_LOG_LEVEL"},
				Destination: &logLevel,
			},
		},
		Before: func(cCtx *cli.Context) error {
			return setupLogging(logLevel)
		},
		Commands: []*cli.Command{
			{
				Name:      "calibrate",
				Aliases:   []string{"c"},
				Usage:     "Calibrate sample spectra",
				ArgsUsage: "FILE...",
				Action: func(cCtx *cli.Context) error {
					files := cCtx.Args().Slice()
					if sampleDir != "" {
						dirFiles, err := listSampleFiles(sampleDir)
						if err != nil {
							return err
						}
						files = append(files, dirFiles...)
					}
					if len(files) == 0 {
						return errors.New("no sample files selected")
					}

					s, err := newSmoother(smoother, kernel, lowpassOrder, lowpassCutoff)
					if err != nil {
						return err
					}
					neon, err := LoadCalibration(neonFile)
					if err != nil {
						return err
					}
					acetonitrile, err := LoadCalibration(acetonitrileFile)
					if err != nil {
						return err
					}
					log.WithFields(log.Fields{
						"neon_slope":             neon.Slope,
						"neon_intercept":         neon.Intercept,
						"acetonitrile_slope":     acetonitrile.Slope,
						"acetonitrile_intercept": acetonitrile.Intercept,
					}).Debug("Loaded calibration")

					dir, err := outputDir(outputFolder, files)
					if err != nil {
						return err
					}
					log.Infof("Writing to %s", dir)

					p := &Processor{
						Neon:         neon,
						Acetonitrile: acetonitrile,
						Excitation:   excitation,
						Smoother:     s,
						Baseline:     baseline,
						OutputDir:    dir,
						HTML:         !noHTML,
						KeepGoing:    keepGoing,
					}
					results, err := p.Run(files)
					if err != nil {
						color.New(color.FgRed).Fprintf(out, "Calibration applied to %d of %d sample file(s).\n", len(results), len(files))
						return err
					}
					color.New(color.FgGreen).Fprintf(out, "Calibration applied to %d sample file(s).\n", len(results))
					return nil
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "neon",
						Aliases:     []string{"n"},
						Usage:       "Neon calibration file (pixel to nm)",
						EnvVars:     []string{"RAMANCAL_NEON"},
						Destination: &neonFile,
						Required:    true,
					},
					&cli.StringFlag{
						Name:        "acetonitrile",
						Aliases:     []string{"a"},
						Usage:       "Acetonitrile calibration file (Raman shift correction)",
						EnvVars:     []string{"RAMANCAL_ACETONITRILE"},
						Destination: &acetonitrileFile,
						Required:    true,
					},
					&cli.StringFlag{
						Name:        "dir",
						Aliases:     []string{"d"},
						Usage:       "Process every csv file in this folder",
						Destination: &sampleDir,
					},
					&cli.StringFlag{
						Name:        "output",
						Aliases:     []string{"o"},
						Usage:       "Output folder, derived from the raw/<date> path when empty",
						Destination: &outputFolder,
					},
					&cli.Float64Flag{
						Name:        "excitation",
						Usage:       "Excitation wavelength in nm",
						Value:       defaultExcitation,
						Destination: &excitation,
					},
					&cli.StringFlag{
						Name:        "smoother",
						Usage:       "Intensity filter: median or lowpass",
						Value:       "median",
						Destination: &smoother,
					},
					&cli.IntFlag{
						Name:        "kernel",
						Usage:       "Median filter kernel size, odd",
						Value:       5,
						Destination: &kernel,
					},
					&cli.IntFlag{
						Name:        "lowpass-order",
						Usage:       "Windowed-sinc kernel order, even",
						Value:       40,
						Destination: &lowpassOrder,
					},
					&cli.Float64Flag{
						Name:        "lowpass-cutoff",
						Usage:       "Lowpass cutoff in cycles per sample",
						Value:       0.1,
						Destination: &lowpassCutoff,
					},
					&cli.Float64Flag{
						Name:        "lambda",
						Usage:       "Baseline smoothness",
						Value:       baseline.Lambda,
						Destination: &baseline.Lambda,
					},
					&cli.IntFlag{
						Name:        "diff-order",
						Usage:       "Baseline difference order",
						Value:       baseline.DiffOrder,
						Destination: &baseline.DiffOrder,
					},
					&cli.IntFlag{
						Name:        "max-iter",
						Usage:       "Baseline iteration limit",
						Value:       baseline.MaxIter,
						Destination: &baseline.MaxIter,
					},
					&cli.Float64Flag{
						Name:        "tol",
						Usage:       "Baseline convergence tolerance",
						Value:       baseline.Tol,
						Destination: &baseline.Tol,
					},
					&cli.BoolFlag{
						Name:        "no-html",
						Usage:       "Skip the interactive html chart",
						Destination: &noHTML,
					},
					&cli.BoolFlag{
						Name:        "keep-going",
						Usage:       "Continue with the next file when one fails",
						Destination: &keepGoing,
					},
				},
			},
			{
				Name:      "shift",
				Aliases:   []string{"s"},
				Usage:     "Print the Raman shift of wavelengths",
				ArgsUsage: "WAVELENGTH...",
				Action: func(cCtx *cli.Context) error {
					if cCtx.NArg() == 0 {
						return errors.New("no wavelengths given")
					}
					for _, arg := range cCtx.Args().Slice() {
						w, err := strconv.ParseFloat(arg, 64)
						if err != nil {
							return errors.Wrapf(err, "parsing wavelength %q", arg)
						}
						shift, err := WavelengthsToShift([]float64{w}, excitation)
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "%g nm: %.4f cm-1\n", w, shift[0])
					}
					return nil
				},
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:        "excitation",
						Usage:       "Excitation wavelength in nm",
						Value:       defaultExcitation,
						Destination: &excitation,
					},
				},
			},
		},
	}
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func newSmoother(name string, kernel, order int, cutoff float64) (Smoother, error) {
	switch name {
	case "median":
		return NewMedianFilter(kernel)
	case "lowpass":
		return NewLowpassFilter(order, cutoff)
	default:
		return nil, errors.Errorf("unknown smoother %q", name)
	}
}
