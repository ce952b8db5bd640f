// Package output encodes rendered frames to disk.
package output

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format is an output image encoding.
type Format string

const (
	WebP Format = "webp"
	PNG  Format = "png"
	TGA  Format = "tga"
)

// ErrUnknownFormat is returned for format names and extensions that have
// no encoder.
var ErrUnknownFormat = errors.New("output: unknown format")

// ParseFormat accepts a format name with or without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case WebP, PNG, TGA:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the file extension including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	case PNG:
		err = png.Encode(w, img)
	case TGA:
		err = tga.Encode(w, img)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil {
		return fmt.Errorf("output: %s encode: %w", f, err)
	}
	return nil
}

// Save writes img to path, creating parent directories. The format comes
// from the extension.
func Save(path string, img image.Image) error {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("output: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("output: %w", err)
	}
	if err := Encode(file, img, f); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// FrameName returns the file name of frame i of a model, e.g.
// "robot_003.webp", or "robot_003_right.png" for the right eye.
func FrameName(model string, frame int, eye string, f Format) string {
	stem := strings.TrimSuffix(filepath.Base(model), filepath.Ext(model))
	name := fmt.Sprintf("%s_%03d", stem, frame)
	if eye != "" {
		name += "_" + eye
	}
	return name + f.Ext()
}
