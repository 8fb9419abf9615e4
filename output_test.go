package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDeriveOutputDir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/data/raw/2025-01-31", "/data/processed/processed_data/2025-01-31"},
		{"/data/raw/2025/01/31/", "/data/processed/processed_data/2025/01/31"},
		{"/data/raw", "/data/processed/processed_data"},
		{"/a/raw/b/raw/2025-01-31", "/a/raw/b/processed/processed_data/2025-01-31"},
		{"raw/2025-01-31", "processed/processed_data/2025-01-31"},
	}
	for _, tt := range tests {
		got, err := deriveOutputDir(filepath.FromSlash(tt.in))
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if want := filepath.FromSlash(tt.want); got != want {
			t.Errorf("deriveOutputDir(%q) = %q, want %q", tt.in, got, want)
		}
	}
}

func TestDeriveOutputDirWithoutRaw(t *testing.T) {
	for _, in := range []string{"/data/samples/2025-01-31", ".", "/data/rawdata"} {
		if _, err := deriveOutputDir(filepath.FromSlash(in)); err == nil {
			t.Errorf("%s: expected error", in)
		}
	}
}

func TestOutputDir(t *testing.T) {
	root := t.TempDir()
	sample := filepath.Join(root, "raw", "2025-01-31", "a.csv")

	dir, err := outputDir("", []string{sample})
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "processed", "processed_data", "2025-01-31"); dir != want {
		t.Fatalf("got %s, want %s", dir, want)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("output folder not created: %v", err)
	}

	override := filepath.Join(root, "elsewhere")
	if dir, err = outputDir(override, []string{sample}); err != nil || dir != override {
		t.Fatalf("override: got %s, %v", dir, err)
	}

	if _, err := outputDir("", nil); err == nil {
		t.Fatal("expected error for empty selection")
	}
}

func TestOutputsFor(t *testing.T) {
	out := outputsFor("out", filepath.Join("raw", "x", "sample_01.csv"))
	if out.csv != filepath.Join("out", "sample_01.csv") ||
		out.png != filepath.Join("out", "sample_01.png") ||
		out.html != filepath.Join("out", "sample_01.html") {
		t.Fatalf("unexpected outputs %+v", out)
	}
}

func TestListSampleFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.csv", "a.CSV", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.csv"), 0755); err != nil {
		t.Fatal(err)
	}
	files, err := listSampleFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(dir, "a.CSV"), filepath.Join(dir, "b.csv")}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Fatalf("got %v, want %v", files, want)
	}

	if _, err := listSampleFiles(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("expected error for missing folder")
	}
}
