package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func fill(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleKeepsOpaqueColour(t *testing.T) {
	red := color.NRGBA{200, 10, 10, 255}
	out := Downsample(fill(64, 32, red), 16, 8)
	assert.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())
	c := out.NRGBAAt(8, 4)
	assert.InDelta(t, red.R, c.R, 1)
	assert.InDelta(t, red.G, c.G, 1)
	assert.Equal(t, red.A, c.A)
}

func TestDownsampleNoFringe(t *testing.T) {
	// left half opaque white, right half transparent black
	img := fill(32, 32, color.NRGBA{})
	for y := 0; y < 32; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Downsample(img, 8, 8)
	for x := 0; x < 8; x++ {
		c := out.NRGBAAt(x, 4)
		if c.A > 0 {
			assert.GreaterOrEqual(t, c.R, uint8(250), "x=%d", x)
		}
	}
}

func TestDownsampleSmallerIsUnchanged(t *testing.T) {
	img := fill(4, 4, color.NRGBA{1, 2, 3, 4})
	assert.Same(t, img, Downsample(img, 8, 8))
	assert.Same(t, img, Downsample(img, 0, 8))
}

func TestFactor(t *testing.T) {
	w, h := Factor(320, 240, 2)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
	w, h = Factor(320, 240, 0)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestSideBySide(t *testing.T) {
	l := fill(4, 3, color.NRGBA{255, 0, 0, 255})
	r := fill(5, 2, color.NRGBA{0, 0, 255, 255})
	pair := SideBySide(l, r, 2)
	assert.Equal(t, image.Rect(0, 0, 11, 3), pair.Bounds())
	assert.Equal(t, uint8(255), pair.NRGBAAt(3, 0).R)
	assert.Equal(t, uint8(0), pair.NRGBAAt(4, 0).A)
	assert.Equal(t, uint8(255), pair.NRGBAAt(6, 1).B)
	assert.Equal(t, uint8(0), pair.NRGBAAt(6, 2).A)
}

func TestAnaglyph(t *testing.T) {
	l := fill(2, 2, color.NRGBA{200, 100, 100, 255})
	r := fill(2, 2, color.NRGBA{50, 60, 70, 0})
	out := Anaglyph(l, r)
	assert.Equal(t, color.NRGBA{200, 60, 70, 255}, out.NRGBAAt(1, 1))
}
