// Package config parses job manifests (spec.md §6 "Configuration
// surface") and turns them into runnable models. The manifest format is
// a direct JSON re-expression of the reference implementation's CFG
// schema (samples.cfg -> samples.json): an image_dir prefix, an
// "overlapping" object keyed by output name, and a "tiled" object keyed
// by output name. No example repo in the retrieval pack grounds a
// config-file library, so this package is built on encoding/json.
package config

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/palette"
	"github.com/arjwright/wfc/pattern"
)

// Manifest is the top-level job file (spec.md §6: "configuration surface,
// passed to model builders").
type Manifest struct {
	ImageDir    string                     `json:"image_dir"`
	Overlapping map[string]*OverlappingJob `json:"overlapping"`
	Tiled       map[string]*TiledJob       `json:"tiled"`
}

// OverlappingJob is one entry under "overlapping".
type OverlappingJob struct {
	Image       string `json:"image"`
	N           int    `json:"n"`
	Symmetry    int    `json:"symmetry"`
	PeriodicIn  *bool  `json:"periodic_in"`
	PeriodicOut *bool  `json:"periodic_out"`
	Foundation  bool   `json:"foundation"`

	Width       int `json:"width"`
	Height      int `json:"height"`
	Limit       int `json:"limit"`
	Screenshots int `json:"screenshots"`
}

// TiledJob is one entry under "tiled".
type TiledJob struct {
	Subdir      string                `json:"subdir"`
	Subset      string                `json:"subset"`
	TileSize    int                   `json:"tile_size"`
	Unique      bool                  `json:"unique"`
	PeriodicOut bool                  `json:"periodic"`
	Tiles       []TileSpec          `json:"tiles"`
	Neighbors   []NeighborSpec      `json:"neighbors"`
	Subsets     map[string][]string `json:"subsets"`

	Width       int `json:"width"`
	Height      int `json:"height"`
	Limit       int `json:"limit"`
	Screenshots int `json:"screenshots"`
}

// TileSpec is one hand-authored tile declaration.
type TileSpec struct {
	Name     string  `json:"name"`
	Symmetry string  `json:"symmetry"`
	Weight   float64 `json:"weight"`
}

// TileRef names a tile together with one of its 8 orientations, encoded
// in the job file as a 2-element JSON array: ["name", rotation].
type TileRef struct {
	Name     string
	Rotation int
}

func (r *TileRef) UnmarshalJSON(b []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("config: neighbor tile ref must be a 2-element array [name, rotation]: %w", err)
	}
	if err := json.Unmarshal(pair[0], &r.Name); err != nil {
		return fmt.Errorf("config: neighbor tile ref name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &r.Rotation); err != nil {
		return fmt.Errorf("config: neighbor tile ref rotation: %w", err)
	}
	return nil
}

// NeighborSpec declares a left-right tile adjacency (spec.md §6:
// `{left: [name, rotation], right: [name, rotation]}`).
type NeighborSpec struct {
	Left  TileRef `json:"left"`
	Right TileRef `json:"right"`
}

// Load reads and parses a job manifest from path, applying every
// default listed in spec.md §6.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: couldn't read job file %q: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: couldn't parse job file %q: %w", path, err)
	}

	for name, job := range m.Overlapping {
		job.applyDefaults()
		if job.Image == "" {
			return nil, fmt.Errorf("config: overlapping job %q is missing required field %q", name, "image")
		}
	}
	for name, job := range m.Tiled {
		job.applyDefaults()
		if job.Subdir == "" {
			return nil, fmt.Errorf("config: tiled job %q is missing required field %q", name, "subdir")
		}
	}

	return &m, nil
}

func (j *OverlappingJob) applyDefaults() {
	if j.N == 0 {
		j.N = 3
	}
	if j.Symmetry == 0 {
		j.Symmetry = 8
	}
	if j.PeriodicIn == nil {
		t := true
		j.PeriodicIn = &t
	}
	if j.PeriodicOut == nil {
		t := true
		j.PeriodicOut = &t
	}
	if j.Width == 0 {
		j.Width = 48
	}
	if j.Height == 0 {
		j.Height = 48
	}
	if j.Screenshots == 0 {
		j.Screenshots = 2
	}
}

func (j *TiledJob) applyDefaults() {
	if j.TileSize == 0 {
		j.TileSize = 16
	}
	if j.Width == 0 {
		j.Width = 48
	}
	if j.Height == 0 {
		j.Height = 48
	}
	if j.Screenshots == 0 {
		j.Screenshots = 2
	}
}

// BuildOverlapping loads the job's sample image from imageDir, extracts
// its patterns, and constructs the Overlapping model it describes.
func BuildOverlapping(imageDir string, job *OverlappingJob) (*model.Overlap, error) {
	path := filepath.Join(imageDir, job.Image)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: couldn't open sample image %q: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("config: couldn't decode sample image %q: %w", path, err)
	}

	sample, err := palette.New(img)
	if err != nil {
		return nil, fmt.Errorf("config: sample image %q: %w", path, err)
	}

	prevalence, err := pattern.Extract(sample, job.N, *job.PeriodicIn, job.Symmetry)
	if err != nil {
		return nil, fmt.Errorf("config: sample image %q: %w", path, err)
	}

	var foundationHash pattern.Hash
	if job.Foundation {
		foundationHash = pattern.ExtractFoundation(sample, job.N)
	}

	m := model.NewOverlapping(prevalence, sample.Palette, job.N, *job.PeriodicOut, job.Width, job.Height, foundationHash, job.Foundation)
	return m, nil
}

// BuildTiled loads the job's tile bitmaps from imageDir/subdir and
// constructs the Tiled model it describes.
func BuildTiled(imageDir string, job *TiledJob) (*model.Tiled, error) {
	root := filepath.Join(imageDir, job.Subdir)

	loader := func(name string) ([]color.RGBA, error) {
		path := filepath.Join(root, name+".bmp")
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: couldn't open tile bitmap %q: %w", path, err)
		}
		defer f.Close()

		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("config: couldn't decode tile bitmap %q: %w", path, err)
		}

		bounds := img.Bounds()
		out := make([]color.RGBA, 0, bounds.Dx()*bounds.Dy())
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, a := img.At(x, y).RGBA()
				out = append(out, color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)})
			}
		}
		return out, nil
	}

	var subset []string
	if job.Subset != "" {
		names, ok := job.Subsets[job.Subset]
		if !ok {
			return nil, fmt.Errorf("config: tiled job references unknown subset %q", job.Subset)
		}
		subset = names
	}

	tiles := make([]model.TileDef, len(job.Tiles))
	for i, t := range job.Tiles {
		tiles[i] = model.TileDef{Name: t.Name, Symmetry: t.Symmetry, Weight: t.Weight}
	}

	neighbors := make([]model.NeighborDef, len(job.Neighbors))
	for i, n := range job.Neighbors {
		neighbors[i] = model.NeighborDef{
			LeftTile:      n.Left.Name,
			LeftRotation:  n.Left.Rotation,
			RightTile:     n.Right.Name,
			RightRotation: n.Right.Rotation,
		}
	}

	m, err := model.NewTiled(tiles, neighbors, subset, job.TileSize, job.Unique, loader, job.Width, job.Height, job.PeriodicOut)
	if err != nil {
		return nil, fmt.Errorf("config: tiled job %q: %w", job.Subdir, err)
	}
	return m, nil
}
