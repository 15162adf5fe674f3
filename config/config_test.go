package config

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeSample(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			c := color.RGBA{0, 0, 0, 255}
			if (x+y)%2 == 0 {
				c = color.RGBA{255, 255, 255, 255}
			}
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("create sample: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode sample: %v", err)
	}
}

func writeTileBitmap(t *testing.T, dir, name string) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, color.RGBA{10, 20, 30, 255})
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(filepath.Join(dir, name+".bmp"))
	if err != nil {
		t.Fatalf("create tile: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode tile: %v", err)
	}
}

func TestLoadAppliesDefaultsAndBuildsOverlapping(t *testing.T) {
	dir := t.TempDir()
	writeSample(t, dir, "checker.png")

	manifest := Manifest{
		ImageDir: dir,
		Overlapping: map[string]*OverlappingJob{
			"checker": {Image: "checker.png", N: 2},
		},
	}
	data, err := json.Marshal(manifest)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "samples.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	job := m.Overlapping["checker"]
	if job.Width != 48 || job.Height != 48 {
		t.Errorf("defaults not applied: width=%d height=%d", job.Width, job.Height)
	}
	if job.Symmetry != 8 {
		t.Errorf("symmetry default = %d, want 8", job.Symmetry)
	}
	if job.PeriodicIn == nil || !*job.PeriodicIn {
		t.Errorf("periodic_in default not applied")
	}

	overlap, err := BuildOverlapping(m.ImageDir, job)
	if err != nil {
		t.Fatalf("BuildOverlapping: %v", err)
	}
	if overlap.NumPatterns() == 0 {
		t.Errorf("expected at least one pattern")
	}
}

func TestLoadRejectsMissingRequiredField(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "samples.json")
	if err := os.WriteFile(path, []byte(`{"image_dir":".","overlapping":{"bad":{"n":3}}}`), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for overlapping job missing \"image\"")
	}
}

func TestBuildTiledReadsBitmapsAndNeighbors(t *testing.T) {
	dir := t.TempDir()
	tileDir := filepath.Join(dir, "grass")
	writeTileBitmap(t, tileDir, "grass")

	job := &TiledJob{
		Subdir:      "grass",
		TileSize:    2,
		PeriodicOut: true,
		Tiles:       []TileSpec{{Name: "grass", Symmetry: "X", Weight: 1}},
		Neighbors:   []NeighborSpec{{Left: TileRef{Name: "grass"}, Right: TileRef{Name: "grass"}}},
		Width:       4,
		Height:      4,
	}

	m, err := BuildTiled(dir, job)
	if err != nil {
		t.Fatalf("BuildTiled: %v", err)
	}
	if m.NumPatterns() != 1 {
		t.Fatalf("expected 1 pattern for an X-symmetry tile, got %d", m.NumPatterns())
	}
}

func TestBuildTiledUnknownSubsetErrors(t *testing.T) {
	dir := t.TempDir()
	tileDir := filepath.Join(dir, "grass")
	writeTileBitmap(t, tileDir, "grass")

	job := &TiledJob{
		Subdir:   "grass",
		Subset:   "missing",
		TileSize: 2,
		Tiles:    []TileSpec{{Name: "grass", Symmetry: "X", Weight: 1}},
		Width:    4,
		Height:   4,
	}
	if _, err := BuildTiled(dir, job); err == nil {
		t.Fatalf("expected error for unknown subset")
	}
}
