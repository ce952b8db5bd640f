package batch

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"holomesh/internal/camera"
	"holomesh/internal/config"
	"holomesh/internal/importer"
	"holomesh/internal/model"
	"holomesh/internal/output"
	"holomesh/internal/postprocess"
	"holomesh/internal/raster"
	"holomesh/internal/render"
	"holomesh/internal/scene"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir   string
	Format      output.Format
	Width       int
	Height      int
	Supersample int
	Frames      int
	// FrameStep is the number of animation frames between two written
	// frames. Zero spreads Frames over one full turn.
	FrameStep int
	Stereo    bool
	Layout    string
	IPD       float32
	FitRadius float32
	Lighting  bool
	Import    importer.Options
	Workers   int
	Logger    *slog.Logger
	// Progress receives the periodic rate line. Nil discards it.
	Progress io.Writer
}

// Job is one model to render. Scene, when set, is used instead of reading
// Path.
type Job struct {
	Name  string
	Path  string
	Scene *scene.Scene
}

// Result holds the outcome of processing one job.
type Result struct {
	Name      string
	Source    string
	Images    []string
	Meshes    int
	Skipped   int
	Triangles int
	Success   bool
	Error     string
}

// Discover returns one job per FBX file under input, sorted by path. A
// file input yields a single job whatever its extension.
func Discover(input string) ([]Job, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}
	if !info.IsDir() {
		return []Job{fileJob(input)}, nil
	}

	var jobs []Job
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".fbx") {
			jobs = append(jobs, fileJob(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch: scan %s: %w", input, err)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Path < jobs[j].Path })
	return jobs, nil
}

func fileJob(path string) Job {
	return Job{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Path: path}
}

// Run processes all jobs using a worker pool. Results keep the order of
// jobs.
func Run(cfg Config, jobs []Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	progress := cfg.Progress
	if progress == nil {
		progress = io.Discard
	}

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(p) / elapsed
					fmt.Fprintf(progress, "  [%d/%d] %.1f models/sec\n", p, total, rate)
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = safeProcess(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

// process is swapped out by tests.
var process = Process

// safeProcess turns a panic in one job into a failed Result so the other
// workers keep going.
func safeProcess(cfg Config, job Job) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			logger := cfg.Logger
			if logger == nil {
				logger = slog.Default()
			}
			logger.Error("model panicked", "model", job.Name, "panic", p, "stack", string(debug.Stack()))
			res = Result{Name: job.Name, Source: job.Path, Error: fmt.Sprintf("panic: %v", p)}
		}
	}()
	return process(cfg, job)
}

// Process imports one model, renders its frames on a software device and
// writes them to OutputDir.
func Process(cfg Config, job Job) Result {
	res := Result{Name: job.Name, Source: job.Path}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("model", job.Name)

	opts := cfg.Import
	opts.Logger = logger
	im := importer.New(opts)

	var (
		m   *model.Assembly
		err error
	)
	if job.Scene != nil {
		m, err = im.LoadScene(job.Scene)
	} else {
		m, err = im.LoadModelFromFile(job.Path)
	}
	if report := im.Report(); report != nil {
		res.Meshes = report.Built()
		res.Skipped = len(report.Skipped())
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	if len(m.Meshes()) == 0 {
		res.Error = "no meshes in model"
		return res
	}
	_, res.Triangles = m.Stats()

	images, err := renderFrames(cfg, job.Name, m, logger)
	res.Images = images
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Success = true
	logger.Debug("model rendered", "images", len(images), "triangles", res.Triangles)
	return res
}

func renderFrames(cfg Config, name string, m *model.Assembly, logger *slog.Logger) ([]string, error) {
	w, h := cfg.Width, cfg.Height
	if w <= 0 || h <= 0 {
		w, h = render.DefaultWidth, render.DefaultHeight
	}
	rw, rh := postprocess.Factor(w, h, cfg.Supersample)

	devOpts := raster.Options{Width: rw, Height: rh}
	if cfg.Lighting {
		lc := raster.DefaultLightConfig()
		devOpts.Lighting = &lc
	}
	dev := raster.New(devOpts)

	r, err := render.New(dev, m, render.Options{
		Width:     rw,
		Height:    rh,
		FitRadius: cfg.FitRadius,
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}
	defer r.Close()
	if !r.Ready(cfg.Stereo) {
		return nil, fmt.Errorf("batch: %s: shader program not linked", name)
	}

	if cfg.Stereo {
		ipd := cfg.IPD
		if ipd <= 0 {
			ipd = camera.DefaultIPD
		}
		eyes := camera.StereoViewProjection(float32(rw)/float32(rh), ipd)
		r.SetHolographicViewProjection(eyes[0], eyes[1])
	}

	frames := max(cfg.Frames, 1)
	step := frameStep(cfg.FrameStep, frames)

	var images []string
	for i := 0; i < frames; i++ {
		if i > 0 {
			r.Advance(step - 1)
		}
		r.Draw(cfg.Stereo)

		var written []string
		if cfg.Stereo {
			left := postprocess.Downsample(dev.Snapshot(0), w, h)
			right := postprocess.Downsample(dev.Snapshot(1), w, h)
			written, err = saveStereo(cfg, name, i, left, right)
		} else {
			img := postprocess.Downsample(dev.Snapshot(0), w, h)
			written, err = save(cfg, name, i, "", img)
		}
		images = append(images, written...)
		if err != nil {
			return images, err
		}
	}
	return images, nil
}

// frameStep spreads frames over one turn when step is not positive.
func frameStep(step, frames int) int {
	if step > 0 {
		return step
	}
	return max(int(math.Round(2*math.Pi*render.SpinRate/float64(frames))), 1)
}

func saveStereo(cfg Config, name string, frame int, left, right *image.NRGBA) ([]string, error) {
	switch cfg.Layout {
	case config.LayoutSideBySide:
		return save(cfg, name, frame, "", postprocess.SideBySide(left, right, 0))
	case config.LayoutAnaglyph:
		return save(cfg, name, frame, "", postprocess.Anaglyph(left, right))
	default:
		l, err := save(cfg, name, frame, "left", left)
		if err != nil {
			return l, err
		}
		r, err := save(cfg, name, frame, "right", right)
		return append(l, r...), err
	}
}

func save(cfg Config, name string, frame int, eye string, img *image.NRGBA) ([]string, error) {
	f := cfg.Format
	if f == "" {
		f = output.WebP
	}
	rel := output.FrameName(name, frame, eye, f)
	if err := output.Save(filepath.Join(cfg.OutputDir, rel), img); err != nil {
		return nil, fmt.Errorf("batch: save %s: %w", rel, err)
	}
	return []string{rel}, nil
}
