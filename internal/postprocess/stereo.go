package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// SideBySide places the left and right eye images next to each other with
// gap transparent pixels between them. The result is as tall as the taller
// input; both are top aligned.
func SideBySide(left, right *image.NRGBA, gap int) *image.NRGBA {
	lb, rb := left.Bounds(), right.Bounds()
	gap = max(gap, 0)
	pair := image.NewNRGBA(image.Rect(0, 0, lb.Dx()+gap+rb.Dx(), max(lb.Dy(), rb.Dy())))
	draw.Copy(pair, image.Pt(0, 0), left, lb, draw.Src, nil)
	draw.Copy(pair, image.Pt(lb.Dx()+gap, 0), right, rb, draw.Src, nil)
	return pair
}

// Anaglyph merges a stereo pair into one red/cyan image: red from the left
// eye, green and blue from the right. Alpha is the larger of the two.
// Both images must have the same size.
func Anaglyph(left, right *image.NRGBA) *image.NRGBA {
	b := left.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			l := left.NRGBAAt(b.Min.X+x, b.Min.Y+y)
			r := right.NRGBAAt(right.Bounds().Min.X+x, right.Bounds().Min.Y+y)
			i := out.PixOffset(x, y)
			out.Pix[i] = l.R
			out.Pix[i+1] = r.G
			out.Pix[i+2] = r.B
			out.Pix[i+3] = max(l.A, r.A)
		}
	}
	return out
}
