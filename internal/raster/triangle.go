package raster

import (
	"image"

	"github.com/chewxy/math32"
)

type screenVertex struct {
	x, y, z float32
	color   [4]float32
}

// rasterize fills one screen-space triangle into fb with barycentric
// colour and depth interpolation, writing only inside clip. Depth samples
// are negated NDC z, so larger is nearer. It returns the number of
// fragments written. The pixel loop does not allocate.
func (d *Device) rasterize(fb *FrameBuffer, v [3]screenVertex, shade float32, clip image.Rectangle) int {
	x0, y0, z0 := v[0].x, v[0].y, v[0].z
	x1, y1, z1 := v[1].x, v[1].y, v[1].z
	x2, y2, z2 := v[2].x, v[2].y, v[2].z

	// Bounding box
	minX := int(math32.Floor(math32.Min(math32.Min(x0, x1), x2)))
	maxX := int(math32.Ceil(math32.Max(math32.Max(x0, x1), x2)))
	minY := int(math32.Floor(math32.Min(math32.Min(y0, y1), y2)))
	maxY := int(math32.Ceil(math32.Max(math32.Max(y0, y1), y2)))

	minX = max(minX, clip.Min.X)
	maxX = min(maxX, clip.Max.X-1)
	minY = max(minY, clip.Min.Y)
	maxY = min(maxY, clip.Max.Y-1)
	if minX > maxX || minY > maxY {
		return 0
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return 0
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	lc := d.opts.Lighting
	written := 0
	for sy := minY; sy <= maxY; sy++ {
		dsy := float32(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float32(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			if !ndcDepthVisible(z) {
				continue
			}
			zIdx := rowOff + sx
			if d.depthTest {
				if z <= fb.ZBuf[zIdx] {
					continue
				}
				fb.ZBuf[zIdx] = z
			}

			var c [4]float32
			for k := 0; k < 4; k++ {
				c[k] = w0*v[0].color[k] + w1*v[1].color[k] + w2*v[2].color[k]
			}
			if lc != nil {
				for k := 0; k < 3; k++ {
					c[k] = float32(lc.Apply(float64(c[k]), float64(shade)))
				}
			}

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(float64(c[0]) * 255)
			fb.Color[pxIdx+1] = clamp255(float64(c[1]) * 255)
			fb.Color[pxIdx+2] = clamp255(float64(c[2]) * 255)
			fb.Color[pxIdx+3] = clamp255(float64(c[3]) * 255)
			written++
		}
	}
	return written
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
