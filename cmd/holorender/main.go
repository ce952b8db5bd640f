package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"holomesh/internal/batch"
	"holomesh/internal/config"
	"holomesh/internal/importer"
	"holomesh/internal/output"
	"holomesh/internal/scene"
	"holomesh/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to a .json, .toml or .yaml config file")
	input := flag.String("input", "", "FBX file or directory of FBX files (default: procedural demo scene)")
	outputDir := flag.String("output", "", "Output directory (default: <base>/renders)")
	format := flag.String("format", "", "Frame format: webp, png or tga (default: webp)")
	width := flag.Int("width", 0, "Frame width (default: 640)")
	height := flag.Int("height", 0, "Frame height (default: 360)")
	supersample := flag.Int("supersample", 0, "Supersample factor (default: 2)")
	frames := flag.Int("frames", 0, "Frames per model (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log-level", "", "debug, info, warn or error (default: info)")
	stereo := flag.Bool("stereo", false, "Render both eyes with the holographic program")
	strict := flag.Bool("strict", false, "Fail a model on its first mesh error")
	lighting := flag.Bool("lighting", false, "Shade vertex colours with the studio light rig")
	watchInput := flag.Bool("watch", false, "Re-render models when their files change")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		Input:       *input,
		OutputDir:   *outputDir,
		Format:      *format,
		Width:       *width,
		Height:      *height,
		Supersample: *supersample,
		Frames:      *frames,
		Workers:     *workers,
		LogLevel:    *logLevel,
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "stereo":
			flags.Stereo = stereo
		case "strict":
			flags.Strict = strict
		case "lighting":
			flags.Lighting = lighting
		}
	})

	// CLI flags override config file
	cfg.Resolve(flags)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Build texture index
	texIndex := texture.BuildIndex(cfg.TextureDirs...)
	texCache := texture.NewCache(texIndex)
	fmt.Printf("Textures: %d indexed\n", texIndex.Len())

	jobs, err := discover(cfg.Input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(jobs) == 0 {
		fmt.Println("No models to render.")
		os.Exit(0)
	}

	frameFormat, _ := output.ParseFormat(cfg.Format)
	batchCfg := batch.Config{
		OutputDir:   cfg.OutputDir,
		Format:      frameFormat,
		Width:       cfg.Width,
		Height:      cfg.Height,
		Supersample: cfg.Supersample,
		Frames:      cfg.Frames,
		FrameStep:   cfg.FrameStep,
		Stereo:      cfg.Stereo,
		Layout:      cfg.StereoLayout,
		IPD:         float32(cfg.IPD),
		FitRadius:   float32(cfg.FitRadius),
		Lighting:    cfg.Lighting,
		Import: importer.Options{
			Strict:         cfg.Strict,
			KeepPolygons:   cfg.KeepPolygons,
			BakeTransforms: cfg.BakeTransforms,
			Textures:       texCache,
		},
		Workers:  cfg.Workers,
		Logger:   logger,
		Progress: os.Stdout,
	}

	mode := "mono"
	if cfg.Stereo {
		mode = "stereo, " + cfg.StereoLayout
	}
	fmt.Printf("FBX → %s (%s)\n", cfg.Format, mode)
	fmt.Printf("Models: %d, Frames: %d, Size: %dx%d, Workers: %d\n",
		len(jobs), cfg.Frames, cfg.Width, cfg.Height, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)

	failed := render(batchCfg, jobs)

	if *watchInput {
		if cfg.Input == "" {
			fmt.Fprintln(os.Stderr, "Error: -watch needs an input file or directory")
			os.Exit(1)
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Input)
		err := watch(ctx, cfg.Input, logger, func(paths []string) {
			var changed []batch.Job
			for _, p := range paths {
				j, err := batch.Discover(p)
				if err != nil {
					logger.Warn("watch: skipping changed file", "path", p, "err", err)
					continue
				}
				changed = append(changed, j...)
			}
			if len(changed) > 0 {
				render(batchCfg, changed)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// discover returns the FBX jobs under input, or the procedural demo scene
// when no input is configured.
func discover(input string) ([]batch.Job, error) {
	if input != "" {
		return batch.Discover(input)
	}
	sc, err := scene.Procedural(scene.DemoSolids(), 0)
	if err != nil {
		return nil, err
	}
	return []batch.Job{{Name: "demo", Scene: sc}}, nil
}

// render runs one batch, prints the summary and writes the manifest. It
// returns the number of failed models.
func render(cfg batch.Config, jobs []batch.Job) int {
	fmt.Println("------------------------------------------------------------")
	start := time.Now()

	results := batch.Run(cfg, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, images := 0, 0
	var errors []batch.Result
	for _, r := range results {
		images += len(r.Images)
		if r.Success {
			success++
		} else {
			errors = append(errors, r)
		}
	}

	fmt.Printf("Rendered: %d/%d models, %d images\n", success, len(jobs), images)

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", len(errors))
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}
	return len(errors)
}
