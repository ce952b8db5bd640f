package raster

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/gpu"
	"holomesh/internal/mathutil"
)

type clipVertex struct {
	clip  mgl32.Vec4
	color [4]float32
	ok    bool
}

func (d *Device) fetch(a *attribState, i int) (mgl32.Vec4, bool) {
	buf := d.buffers[a.buffer]
	if buf == nil || a.size <= 0 {
		return mgl32.Vec4{}, false
	}
	stride := a.stride
	if stride == 0 {
		stride = a.size
	}
	base := a.offset + i*stride
	if base < 0 || base+a.size > len(buf.floats) {
		return mgl32.Vec4{}, false
	}
	v := mgl32.Vec4{0, 0, 0, 1}
	for k := 0; k < a.size && k < 4; k++ {
		v[k] = buf.floats[base+k]
	}
	return v, true
}

func (d *Device) enabledAttrib(p *program, name string) *attribState {
	loc, ok := p.attribs[name]
	if !ok {
		return nil
	}
	a := d.attribs[loc]
	if a == nil || !a.enabled {
		return nil
	}
	return a
}

func (d *Device) draw(count, instances int, instanced bool) {
	prog := d.programs[d.current]
	if prog == nil {
		return
	}
	el := d.buffers[d.element]
	if el == nil || el.indices == nil {
		return
	}
	count = min(count, len(el.indices))
	count -= count % 3
	pos := d.enabledAttrib(prog, PositionAttrib)
	if pos == nil || count <= 0 {
		return
	}
	col := d.enabledAttrib(prog, ColorAttrib)
	model := prog.matrix(ModelUniform, 0)
	d.Stats.DrawCalls++

	for inst := 0; inst < instances; inst++ {
		d.Stats.Instances++
		layer := 0
		var mvp mgl32.Mat4
		if prog.stereo {
			if a := d.enabledAttrib(prog, RenderTargetIndexAttrib); a != nil {
				idx := 0
				if a.divisor > 0 {
					idx = inst / a.divisor
				}
				if v, ok := d.fetch(a, idx); ok {
					layer = int(v[0])
				}
			}
			if layer < 0 || layer >= prog.sizes[prog.uniforms[StereoViewProjUniform]] {
				continue
			}
			mvp = prog.matrix(StereoViewProjUniform, layer).Mul4(model)
		} else {
			mvp = prog.matrix(ProjUniform, 0).Mul4(prog.matrix(ViewUniform, 0)).Mul4(model)
		}
		if layer >= len(d.layers) {
			continue
		}
		d.drawInstance(d.layers[layer], el.indices[:count], pos, col, mvp)
	}
}

func (d *Device) drawInstance(fb *FrameBuffer, indices []uint16, pos, col *attribState, mvp mgl32.Mat4) {
	maxIdx := 0
	for _, i := range indices {
		maxIdx = max(maxIdx, int(i))
	}
	cache := make([]clipVertex, maxIdx+1)
	done := make([]bool, maxIdx+1)
	vertex := func(i int) clipVertex {
		if done[i] {
			return cache[i]
		}
		done[i] = true
		p, ok := d.fetch(pos, i)
		if !ok {
			return cache[i]
		}
		v := clipVertex{clip: mvp.Mul4x1(p), color: [4]float32{1, 1, 1, 1}, ok: true}
		if col != nil {
			if c, ok := d.fetch(col, i); ok {
				v.color = c
			}
		}
		cache[i] = v
		return v
	}

	// GL viewport origin is bottom-left, image rows run top-down.
	vp := d.viewport
	vx, vw := float32(vp.Min.X), float32(vp.Dx())
	vy, vh := float32(vp.Min.Y), float32(vp.Dy())
	H := float32(fb.Height)
	clipRect := image.Rect(vp.Min.X, fb.Height-vp.Max.Y, vp.Max.X, fb.Height-vp.Min.Y).
		Intersect(image.Rect(0, 0, fb.Width, fb.Height))

	for t := 0; t+2 < len(indices); t += 3 {
		var cv [3]clipVertex
		valid := true
		for k := 0; k < 3; k++ {
			cv[k] = vertex(int(indices[t+k]))
			valid = valid && cv[k].ok
		}
		if !valid {
			continue
		}
		if cv[0].clip[3] <= 1e-6 || cv[1].clip[3] <= 1e-6 || cv[2].clip[3] <= 1e-6 {
			d.Stats.Clipped++
			continue
		}

		var ndc [3]mgl32.Vec3
		for k := range cv {
			ndc[k] = cv[k].clip.Vec3().Mul(1 / cv[k].clip[3])
		}
		area := (ndc[1][0]-ndc[0][0])*(ndc[2][1]-ndc[0][1]) - (ndc[2][0]-ndc[0][0])*(ndc[1][1]-ndc[0][1])
		if area == 0 {
			continue
		}
		front := area > 0
		if d.frontFace == gpu.CW {
			front = !front
		}
		if d.cull && (d.cullFace == gpu.Back) != front {
			d.Stats.Culled++
			continue
		}
		d.Stats.Triangles++

		shade := float32(1)
		if d.opts.Lighting != nil {
			e1, e2 := ndc[1].Sub(ndc[0]), ndc[2].Sub(ndc[0])
			n := e1.Cross(e2)
			if l := n.Len(); l > 1e-12 {
				n = n.Mul(1 / l)
			}
			shade = float32(d.opts.Lighting.ComputeShade(mathutil.V3(float64(n[0]), float64(n[1]), float64(n[2]))))
		}

		var sv [3]screenVertex
		for k := range sv {
			sv[k] = screenVertex{
				x:     vx + (ndc[k][0]+1)*0.5*vw,
				y:     H - (vy + (ndc[k][1]+1)*0.5*vh),
				z:     -ndc[k][2],
				color: cv[k].color,
			}
		}
		d.Stats.Fragments += d.rasterize(fb, sv, shade, clipRect)
	}
}

// ndcDepthVisible reports whether a negated NDC depth lies inside the
// near and far planes.
func ndcDepthVisible(z float32) bool {
	return z >= -1 && z <= 1 && !math32.IsNaN(z)
}
