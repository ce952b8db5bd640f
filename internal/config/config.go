// Package config loads holorender settings from a JSON, TOML or YAML file
// and merges command line overrides.
package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"holomesh/internal/camera"
	"holomesh/internal/output"
)

// Stereo layouts for writing the two eyes of a frame.
const (
	LayoutSeparate   = "separate"
	LayoutSideBySide = "side-by-side"
	LayoutAnaglyph   = "anaglyph"
)

// Config holds all configurable paths and render settings.
type Config struct {
	// Paths
	BaseDir     string   `json:"base_dir" toml:"base_dir" yaml:"base_dir"`
	Input       string   `json:"input" toml:"input" yaml:"input"`
	TextureDirs []string `json:"texture_dirs" toml:"texture_dirs" yaml:"texture_dirs"`
	OutputDir   string   `json:"output_dir" toml:"output_dir" yaml:"output_dir"`

	// Render settings
	Format       string  `json:"format" toml:"format" yaml:"format"`
	Width        int     `json:"width" toml:"width" yaml:"width"`
	Height       int     `json:"height" toml:"height" yaml:"height"`
	Supersample  int     `json:"supersample" toml:"supersample" yaml:"supersample"`
	Frames       int     `json:"frames" toml:"frames" yaml:"frames"`
	FrameStep    int     `json:"frame_step" toml:"frame_step" yaml:"frame_step"`
	Stereo       bool    `json:"stereo" toml:"stereo" yaml:"stereo"`
	StereoLayout string  `json:"stereo_layout" toml:"stereo_layout" yaml:"stereo_layout"`
	IPD          float64 `json:"ipd" toml:"ipd" yaml:"ipd"`
	Lighting     bool    `json:"lighting" toml:"lighting" yaml:"lighting"`
	FitRadius    float64 `json:"fit_radius" toml:"fit_radius" yaml:"fit_radius"`

	// Import settings
	Strict         bool `json:"strict" toml:"strict" yaml:"strict"`
	BakeTransforms bool `json:"bake_transforms" toml:"bake_transforms" yaml:"bake_transforms"`
	KeepPolygons   bool `json:"keep_polygons" toml:"keep_polygons" yaml:"keep_polygons"`

	Workers  int    `json:"workers" toml:"workers" yaml:"workers"`
	LogLevel string `json:"log_level" toml:"log_level" yaml:"log_level"`
}

// Load reads a config file, picking the decoder by extension (.json,
// .toml, .yaml or .yml). Fields not set in the file keep their zero
// values; BaseDir defaults to the file's directory.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("config: %s: unknown extension %q", path, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	} else if !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(filepath.Dir(path), cfg.BaseDir)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values and nil pointers leave the file value alone.
type Flags struct {
	Input       string
	OutputDir   string
	Format      string
	Width       int
	Height      int
	Supersample int
	Frames      int
	Workers     int
	LogLevel    string
	Stereo      *bool
	Strict      *bool
	Lighting    *bool
}

// Resolve applies flags, resolves relative paths against BaseDir and fills
// in defaults.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.Input != "" {
		c.Input = flags.Input
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Format != "" {
		c.Format = flags.Format
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}
	if flags.Stereo != nil {
		c.Stereo = *flags.Stereo
	}
	if flags.Strict != nil {
		c.Strict = *flags.Strict
	}
	if flags.Lighting != nil {
		c.Lighting = *flags.Lighting
	}

	if c.BaseDir == "" {
		c.BaseDir, _ = os.Getwd()
	}
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(c.BaseDir, p)
	}
	c.Input = abs(c.Input)
	for i, d := range c.TextureDirs {
		c.TextureDirs[i] = abs(d)
	}
	if c.OutputDir == "" {
		c.OutputDir = filepath.Join(c.BaseDir, "renders")
	} else {
		c.OutputDir = abs(c.OutputDir)
	}
	if len(c.TextureDirs) == 0 && c.Input != "" {
		dir := filepath.Dir(c.Input)
		if info, err := os.Stat(c.Input); err == nil && info.IsDir() {
			dir = c.Input
		}
		c.TextureDirs = []string{dir}
	}

	// Defaults for render settings
	if c.Format == "" {
		c.Format = string(output.WebP)
	}
	if c.Width <= 0 {
		c.Width = 640
	}
	if c.Height <= 0 {
		c.Height = 360
	}
	if c.Supersample <= 0 {
		c.Supersample = 2
	}
	if c.Frames <= 0 {
		c.Frames = 1
	}
	if c.StereoLayout == "" {
		c.StereoLayout = LayoutSeparate
	}
	if c.IPD <= 0 {
		c.IPD = camera.DefaultIPD
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate reports settings Resolve cannot repair.
func (c *Config) Validate() error {
	if _, err := output.ParseFormat(c.Format); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.StereoLayout {
	case LayoutSeparate, LayoutSideBySide, LayoutAnaglyph:
	default:
		return fmt.Errorf("config: unknown stereo layout %q", c.StereoLayout)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
