package raster

import (
	"image"

	"github.com/chewxy/math32"
)

// FrameBuffer holds one render-target layer as flat slices for cache locality.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float32 // negated NDC depth per pixel, larger is nearer
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{
		Width:  w,
		Height: h,
		Color:  make([]uint8, w*h*4),
		ZBuf:   make([]float32, w*h),
	}
	fb.ClearDepth()
	return fb
}

// ClearDepth resets every depth sample to -inf.
func (fb *FrameBuffer) ClearDepth() {
	inf := math32.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
}

// ClearColor fills the colour buffer with one RGBA value.
func (fb *FrameBuffer) ClearColor(c [4]uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		copy(fb.Color[i:i+4], c[:])
	}
}

// Image copies the colour buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}
