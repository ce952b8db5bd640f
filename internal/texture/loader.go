package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

type codec struct {
	decode func(io.Reader) (image.Image, error)
	config func(io.Reader) (image.Config, error)
}

// Decoders are picked by sniffed format rather than through image.Decode:
// the TGA package registers itself without a signature.
var codecs = map[string]codec{
	"png":  {png.Decode, png.DecodeConfig},
	"jpg":  {jpeg.Decode, jpeg.DecodeConfig},
	"gif":  {gif.Decode, gif.DecodeConfig},
	"bmp":  {bmp.Decode, bmp.DecodeConfig},
	"webp": {webp.Decode, webp.DecodeConfig},
	"tga":  {tga.Decode, tga.DecodeConfig},
}

var (
	// ErrNotFound is returned when a texture name is not in the index.
	ErrNotFound = errors.New("texture: not found")
	// ErrUnsupportedFormat is returned for files that are neither a
	// sniffable image nor TGA.
	ErrUnsupportedFormat = errors.New("texture: unsupported format")
)

// Format returns the sniffed image format of data ("png", "jpg", "bmp",
// "webp", ...). TGA has no signature and is recognised by extension only.
func Format(path string, data []byte) (string, error) {
	kind, _ := filetype.Match(data)
	if kind != filetype.Unknown {
		if !filetype.IsImage(data) {
			return "", fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, kind.MIME.Value)
		}
		return kind.Extension, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		return "tga", nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}

// Load reads an image file and returns it as NRGBA.
func Load(path string) (*image.NRGBA, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("texture: read %s: %w", path, err)
	}
	img, err := decode(path, raw)
	if err != nil {
		return nil, err
	}
	return toNRGBA(img), nil
}

// Size returns the pixel dimensions of an image file without decoding the
// pixels.
func Size(path string) (w, h int, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("texture: read %s: %w", path, err)
	}
	c, err := codecFor(path, raw)
	if err != nil {
		return 0, 0, err
	}
	cfg, err := c.config(bytes.NewReader(raw))
	if err != nil {
		return 0, 0, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func codecFor(path string, raw []byte) (codec, error) {
	format, err := Format(path, raw)
	if err != nil {
		return codec{}, err
	}
	c, ok := codecs[format]
	if !ok {
		return codec{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedFormat, path, format)
	}
	return c, nil
}

func decode(path string, raw []byte) (image.Image, error) {
	c, err := codecFor(path, raw)
	if err != nil {
		return nil, err
	}
	img, err := c.decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return img, nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
