// Command wfc runs the jobs named in one or more job manifests,
// writing a PNG (and, with --gif, an animated GIF) per screenshot.
// --watch instead opens a live preview window of the first job found.
package main

import (
	"flag"
	"fmt"
	"image/png"
	"log"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/arjwright/wfc/anim"
	"github.com/arjwright/wfc/config"
	"github.com/arjwright/wfc/engine"
	"github.com/arjwright/wfc/model"
	"github.com/arjwright/wfc/render"
	"github.com/arjwright/wfc/solve"
	"github.com/arjwright/wfc/wave"
)

const maxAttemptsPerScreenshot = 10

var (
	exportGIF = flag.Bool("gif", false, "Export an animated GIF alongside each PNG.")
	watch     = flag.Bool("watch", false, "Open a live preview window instead of writing files.")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "wfc [-h|--help] [--gif] [--watch] [job-file...]")
		flag.PrintDefaults()
	}
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		files = []string{"samples.json"}
	}

	if *watch {
		runWatch(files)
		return
	}

	if err := os.MkdirAll("output", 0o755); err != nil {
		log.Fatalf("couldn't create output directory: %v", err)
	}

	for _, path := range files {
		if err := runJobFile(path); err != nil {
			log.Fatalf("%s: %v", path, err)
		}
	}
}

func runJobFile(path string) error {
	manifest, err := config.Load(path)
	if err != nil {
		return err
	}

	for _, name := range sortedKeys(manifest.Overlapping) {
		job := manifest.Overlapping[name]
		log.Printf("running overlapping job %q", name)
		m, err := config.BuildOverlapping(manifest.ImageDir, job)
		if err != nil {
			return fmt.Errorf("overlapping job %q: %w", name, err)
		}
		if err := runAndWrite(name, job.Screenshots, job.Limit, m); err != nil {
			return fmt.Errorf("overlapping job %q: %w", name, err)
		}
	}

	for _, name := range sortedKeys(manifest.Tiled) {
		job := manifest.Tiled[name]
		log.Printf("running tiled job %q", name)
		m, err := config.BuildTiled(manifest.ImageDir, job)
		if err != nil {
			return fmt.Errorf("tiled job %q: %w", name, err)
		}
		if err := runAndWrite(name, job.Screenshots, job.Limit, m); err != nil {
			return fmt.Errorf("tiled job %q: %w", name, err)
		}
	}

	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runAndWrite solves m "screenshots" times, retrying up to
// maxAttemptsPerScreenshot times on contradiction, and writes each
// success out as a PNG (and, with --gif, a GIF of the solve). A slot that
// never succeeds within the attempt budget is logged and skipped rather
// than aborting the rest of the job (spec.md §7: contradictions are
// reported, not fatal; only configuration/I/O errors abort a job).
func runAndWrite(name string, screenshots, limit int, m model.Model) error {
	for i := 0; i < screenshots; i++ {
		var result solve.Result
		succeeded := false
		attempts := 0

		for attempt := 0; attempt < maxAttemptsPerScreenshot; attempt++ {
			attempts = attempt + 1
			seed := rand.Int63()
			w := solve.NewWave(m)

			var rec *anim.Recorder
			var snapshot solve.Snapshot
			if *exportGIF {
				rec = anim.NewRecorder(m)
				snapshot = rec.Snapshot
			}

			result = solve.Run(m, w, seed, limit, snapshot)

			if result == solve.Success {
				if err := writePNG(name, i, m, w); err != nil {
					return err
				}
				if rec != nil {
					rec.Finish(w, result)
					if err := rec.WriteFile(fmt.Sprintf("output/%s_%d.gif", name, i)); err != nil {
						return err
					}
				}
				fmt.Printf("%s_%d: %s after attempt %d\n", name, i, result, attempt+1)
				succeeded = true
				break
			}
			if result == solve.Unfinished {
				break // iteration limit reached: reported, not retried
			}
		}

		if !succeeded {
			log.Printf("%s_%d: gave up after %d attempts, last result %s", name, i, attempts, result)
		}
	}
	return nil
}

func writePNG(name string, i int, m model.Model, w *wave.Wave) error {
	path := fmt.Sprintf("output/%s_%d.png", name, i)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("couldn't create %q: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, render.Render(m, w)); err != nil {
		return fmt.Errorf("couldn't encode %q: %w", path, err)
	}
	return nil
}

func runWatch(files []string) {
	for _, path := range files {
		manifest, err := config.Load(path)
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}

		for _, name := range sortedKeys(manifest.Overlapping) {
			m, err := config.BuildOverlapping(manifest.ImageDir, manifest.Overlapping[name])
			if err != nil {
				log.Fatalf("overlapping job %q: %v", name, err)
			}
			preview := engine.NewPreview(m)
			preview.Solve(time.Now().UnixNano(), manifest.Overlapping[name].Limit)
			if err := ebiten.RunGame(preview); err != nil {
				log.Fatal(err)
			}
			return
		}

		for _, name := range sortedKeys(manifest.Tiled) {
			m, err := config.BuildTiled(manifest.ImageDir, manifest.Tiled[name])
			if err != nil {
				log.Fatalf("tiled job %q: %v", name, err)
			}
			preview := engine.NewPreview(m)
			preview.Solve(time.Now().UnixNano(), manifest.Tiled[name].Limit)
			if err := ebiten.RunGame(preview); err != nil {
				log.Fatal(err)
			}
			return
		}
	}

	log.Fatalf("no jobs found to watch")
}
