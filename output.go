package main

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const rawFolder = "raw"

var processedFolder = filepath.Join("processed", "processed_data")

// deriveOutputDir mirrors data/raw/<date...> onto data/processed/processed_data/<date...>.
func deriveOutputDir(sampleFolder string) (string, error) {
	dir := filepath.Clean(sampleFolder)
	tail := []string{}
	for {
		base := filepath.Base(dir)
		parent := filepath.Dir(dir)
		if base == rawFolder {
			parts := append([]string{parent, processedFolder}, tail...)
			return filepath.Join(parts...), nil
		}
		if parent == dir {
			return "", errors.Errorf("folder %s is not under a %q folder, set the output folder explicitly", sampleFolder, rawFolder)
		}
		tail = append([]string{base}, tail...)
		dir = parent
	}
}

// outputDir picks the folder all outputs of a run go to and creates it.
func outputDir(override string, files []string) (string, error) {
	if len(files) == 0 {
		return "", errors.New("no sample files selected")
	}
	dir := override
	if dir == "" {
		var err error
		if dir, err = deriveOutputDir(filepath.Dir(files[0])); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "creating output folder %s", dir)
	}
	return dir, nil
}

type outputPaths struct {
	csv, png, html string
}

func outputsFor(dir, sampleFile string) outputPaths {
	name := filepath.Base(sampleFile)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return outputPaths{
		csv:  filepath.Join(dir, name),
		png:  filepath.Join(dir, stem+".png"),
		html: filepath.Join(dir, stem+".html"),
	}
}

// checkDistinctOutputs rejects selections where two samples would be written
// to the same output file.
func checkDistinctOutputs(dir string, files []string) error {
	seen := make(map[string]string, len(files))
	for _, name := range files {
		out := outputsFor(dir, name).png
		if prev, ok := seen[out]; ok {
			return errors.Errorf("%s and %s would both be written to %s", prev, name, out)
		}
		seen[out] = name
	}
	return nil
}

// listSampleFiles returns the csv files of a folder in name order.
func listSampleFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, errors.Wrapf(err, "reading folder %s", folder)
	}
	files := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(folder, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
