// Package raster is a software implementation of gpu.Device. It links
// programs by scanning their GLSL declarations and runs a fixed vertex
// stage in place of the shader code: clip = proj * view * model * position
// for mono programs, and clip = holographicViewProjection[rtv] * model *
// position for stereo programs, where rtv comes from a per-instance
// attribute and selects the render-target layer. Fragments take the
// interpolated vertex colour.
package raster

import (
	"fmt"
	"image"

	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/gpu"
)

// Options configures a Device.
type Options struct {
	Width, Height int
	// Layers is the number of render-target layers, 2 when zero.
	Layers int
	// Lighting enables flat shading of the vertex colours.
	Lighting *LightConfig
}

// Stats counts work done since the last ResetStats.
type Stats struct {
	DrawCalls int
	Instances int
	Triangles int
	Culled    int
	Clipped   int
	Fragments int
}

type bufferData struct {
	floats  []float32
	indices []uint16
}

type attribState struct {
	enabled bool
	buffer  gpu.Buffer
	size    int
	stride  int
	offset  int
	divisor int
}

// Device renders into in-memory layers.
type Device struct {
	opts   Options
	layers []*FrameBuffer

	next     uint32
	buffers  map[gpu.Buffer]*bufferData
	programs map[gpu.Program]*program
	current  gpu.Program
	array    gpu.Buffer
	element  gpu.Buffer
	attribs  map[gpu.AttribLocation]*attribState

	viewport   image.Rectangle
	clearColor [4]uint8
	depthTest  bool
	cull       bool
	cullFace   gpu.Face
	frontFace  gpu.Winding

	Stats Stats
}

// New allocates a device with cleared layers.
func New(opts Options) *Device {
	if opts.Width <= 0 {
		opts.Width = 1
	}
	if opts.Height <= 0 {
		opts.Height = 1
	}
	if opts.Layers <= 0 {
		opts.Layers = 2
	}
	d := &Device{
		opts:     opts,
		buffers:  make(map[gpu.Buffer]*bufferData),
		programs: make(map[gpu.Program]*program),
		attribs:  make(map[gpu.AttribLocation]*attribState),
		viewport: image.Rect(0, 0, opts.Width, opts.Height),
	}
	for i := 0; i < opts.Layers; i++ {
		d.layers = append(d.layers, NewFrameBuffer(opts.Width, opts.Height))
	}
	return d
}

// Layers returns the number of render-target layers.
func (d *Device) Layers() int { return len(d.layers) }

// Snapshot copies layer i into an image. Out-of-range layers return nil.
func (d *Device) Snapshot(layer int) *image.NRGBA {
	if layer < 0 || layer >= len(d.layers) {
		return nil
	}
	return d.layers[layer].Image()
}

// ResetStats zeroes the draw counters.
func (d *Device) ResetStats() { d.Stats = Stats{} }

// LiveBuffers returns the number of buffers not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CreateVertexBuffer(data []float32, usage gpu.Usage) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty vertex data", gpu.ErrInvalidBuffer)
	}
	b := gpu.Buffer(d.handle())
	d.buffers[b] = &bufferData{floats: append([]float32(nil), data...)}
	return b, nil
}

func (d *Device) CreateIndexBuffer(data []uint16, usage gpu.Usage) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty index data", gpu.ErrInvalidBuffer)
	}
	b := gpu.Buffer(d.handle())
	d.buffers[b] = &bufferData{indices: append([]uint16(nil), data...)}
	return b, nil
}

func (d *Device) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) {
	if target == gpu.ElementArrayBuffer {
		d.element = b
	} else {
		d.array = b
	}
}

func (d *Device) DeleteBuffer(b gpu.Buffer) {
	delete(d.buffers, b)
	if d.array == b {
		d.array = 0
	}
	if d.element == b {
		d.element = 0
	}
}

func (d *Device) LinkProgram(src gpu.ProgramSource) (gpu.Program, error) {
	p, err := link(src)
	if err != nil {
		return 0, err
	}
	h := gpu.Program(d.handle())
	d.programs[h] = p
	return h, nil
}

func (d *Device) UseProgram(p gpu.Program) { d.current = p }

func (d *Device) DeleteProgram(p gpu.Program) {
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) AttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	if prog := d.programs[p]; prog != nil {
		if loc, ok := prog.attribs[name]; ok {
			return loc
		}
	}
	return gpu.NoLocation
}

func (d *Device) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if prog := d.programs[p]; prog != nil {
		if loc, ok := prog.uniforms[name]; ok {
			return loc
		}
	}
	return gpu.NoLocation
}

func (d *Device) UniformMatrix4(loc gpu.UniformLocation, m ...mgl32.Mat4) {
	prog := d.programs[d.current]
	if prog == nil || loc < 0 {
		return
	}
	for i, v := range m {
		prog.values[loc+gpu.UniformLocation(i)] = v
	}
}

func (d *Device) attrib(loc gpu.AttribLocation) *attribState {
	a := d.attribs[loc]
	if a == nil {
		a = &attribState{}
		d.attribs[loc] = a
	}
	return a
}

func (d *Device) EnableVertexAttribArray(loc gpu.AttribLocation) {
	if loc >= 0 {
		d.attrib(loc).enabled = true
	}
}

func (d *Device) VertexAttribPointer(loc gpu.AttribLocation, size, stride, offset int) {
	if loc < 0 {
		return
	}
	a := d.attrib(loc)
	a.buffer, a.size, a.stride, a.offset = d.array, size, stride, offset
}

func (d *Device) VertexAttribDivisor(loc gpu.AttribLocation, divisor int) {
	if loc >= 0 {
		d.attrib(loc).divisor = divisor
	}
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = image.Rect(x, y, x+width, y+height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.clearColor = [4]uint8{
		clamp255(float64(r) * 255), clamp255(float64(g) * 255),
		clamp255(float64(b) * 255), clamp255(float64(a) * 255),
	}
}

// Clear clears every layer.
func (d *Device) Clear(color, depth bool) {
	for _, fb := range d.layers {
		if color {
			fb.ClearColor(d.clearColor)
		}
		if depth {
			fb.ClearDepth()
		}
	}
}

func (d *Device) Enable(c gpu.Capability)  { d.setCap(c, true) }
func (d *Device) Disable(c gpu.Capability) { d.setCap(c, false) }

func (d *Device) setCap(c gpu.Capability, on bool) {
	switch c {
	case gpu.DepthTest:
		d.depthTest = on
	case gpu.CullFace:
		d.cull = on
	}
}

func (d *Device) CullFace(f gpu.Face)     { d.cullFace = f }
func (d *Device) FrontFace(w gpu.Winding) { d.frontFace = w }

func (d *Device) DrawElements(count int) {
	d.draw(count, 1, false)
}

func (d *Device) DrawElementsInstanced(count, instances int) {
	d.draw(count, instances, true)
}

var _ gpu.Device = (*Device)(nil)
