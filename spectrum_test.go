package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleCSV = "Pixels #,Intensity (a.u.),Exposure\n0,10,100\n1,12.5,100\n2,11,100\n"

func TestReadSpectrum(t *testing.T) {
	s, err := ReadSpectrum(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d rows, want 3", s.Len())
	}
	requireSliceNearlyEqual(t, s.Pixels, []float64{0, 1, 2}, 0)
	requireSliceNearlyEqual(t, s.Intensity, []float64{10, 12.5, 11}, 0)
	if got := s.Column("Exposure"); len(got) != 3 || got[0] != "100" {
		t.Fatalf("unexpected Exposure column %v", got)
	}
	if s.Column("missing") != nil {
		t.Fatal("expected nil for unknown column")
	}
}

func TestReadSpectrumWithBOM(t *testing.T) {
	s, err := ReadSpectrum(strings.NewReader("\ufeffPixels #,Intensity (a.u.)\n0,1\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	requireSliceNearlyEqual(t, s.Pixels, []float64{0, 1}, 0)
	if s.Header()[0] != pixelColumn {
		t.Fatalf("got first header %q", s.Header()[0])
	}
}

func TestReadSpectrumIntegerIntensity(t *testing.T) {
	tests := []struct {
		data string
		want bool
	}{
		{"Pixels #,Intensity (a.u.)\n0,10\n1, 12\n", true},
		{"Pixels #,Intensity (a.u.)\n0,10\n1,12.5\n", false},
		{"Pixels #,Intensity (a.u.)\n0,10.0\n", false},
	}
	for _, tt := range tests {
		s, err := ReadSpectrum(strings.NewReader(tt.data))
		if err != nil {
			t.Fatal(err)
		}
		if s.IntegerIntensity != tt.want {
			t.Errorf("%q: got IntegerIntensity %v, want %v", tt.data, s.IntegerIntensity, tt.want)
		}
	}
}

func TestReadSpectrumErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"header only", "Pixels #,Intensity (a.u.)\n"},
		{"no pixels", "Pixel,Intensity (a.u.)\n0,1\n"},
		{"no intensity", "Pixels #,Counts\n0,1\n"},
		{"bad pixel", "Pixels #,Intensity (a.u.)\nx,1\n"},
		{"bad intensity", "Pixels #,Intensity (a.u.)\n0,\n"},
		{"ragged", "Pixels #,Intensity (a.u.)\n0,1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadSpectrum(strings.NewReader(tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSpectrumSetColumnAndWrite(t *testing.T) {
	s, err := ReadSpectrum(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetColumn("Wavelength (nm)", []float64{530, 530.05, 530.1}); err != nil {
		t.Fatal(err)
	}
	// Overwriting keeps the column in place.
	if err := s.SetColumn("Exposure", []float64{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetColumn("short", []float64{1}); err == nil {
		t.Fatal("expected length error")
	}

	var buf bytes.Buffer
	if err := s.WriteCSV(&buf); err != nil {
		t.Fatal(err)
	}
	want := "Pixels #,Intensity (a.u.),Exposure,Wavelength (nm)\n" +
		"0,10,1.0,530.0\n" +
		"1,12.5,2.0,530.05\n" +
		"2,11,3.0,530.1\n"
	if buf.String() != want {
		t.Fatalf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestSpectrumSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	if err := os.WriteFile(in, []byte(sampleCSV), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadSpectrum(in)
	if err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.csv")
	if err := s.Save(out); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != sampleCSV {
		t.Fatalf("round trip changed the file:\n%s", data)
	}

	if _, err := LoadSpectrum(filepath.Join(dir, "missing.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSetIntegerColumn(t *testing.T) {
	s, err := ReadSpectrum(strings.NewReader("Pixels #,Intensity (a.u.)\n0,1\n1,2\n"))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetIntegerColumn("Filtered", []float64{3, -4}); err != nil {
		t.Fatal(err)
	}
	if got := s.Column("Filtered"); got[0] != "3" || got[1] != "-4" {
		t.Fatalf("got %v", got)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2.5, "-2.5"},
		{2130.325814536, "2130.325814536"},
		{1e-5, "1e-05"},
		{0.0001, "0.0001"},
		{1e16, "1e+16"},
		{123456789, "123456789.0"},
	}
	for _, tt := range tests {
		if got := formatFloat(tt.in); got != tt.want {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
