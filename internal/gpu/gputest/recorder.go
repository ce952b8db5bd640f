// Package gputest provides a gpu.Device that records calls for tests.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/gpu"
)

// Recorder implements gpu.Device without drawing anything. Every call is
// appended to Calls in a compact text form.
type Recorder struct {
	Calls []string
	// FailLink makes LinkProgram return gpu.ErrLinkFailed.
	FailLink bool
	// Attribs and Uniforms map names to locations; unknown names get
	// gpu.NoLocation.
	Attribs  map[string]gpu.AttribLocation
	Uniforms map[string]gpu.UniformLocation

	// Live holds buffers created and not yet deleted.
	Live     map[gpu.Buffer]bool
	Deleted  []gpu.Buffer
	Matrices map[gpu.UniformLocation][]mgl32.Mat4
	next     uint32
}

// New returns a recorder that knows the attribute and uniform names used
// by the holomesh shaders.
func New() *Recorder {
	return &Recorder{
		Attribs: map[string]gpu.AttribLocation{
			"aPosition":               0,
			"aColor":                  1,
			"aRenderTargetArrayIndex": 2,
		},
		Uniforms: map[string]gpu.UniformLocation{
			"uModelMatrix":                    0,
			"uViewMatrix":                     1,
			"uProjMatrix":                     2,
			"uHolographicViewProjectionMatrix": 3,
		},
		Live:     make(map[gpu.Buffer]bool),
		Matrices: make(map[gpu.UniformLocation][]mgl32.Mat4),
	}
}

func (r *Recorder) record(format string, args ...any) {
	r.Calls = append(r.Calls, fmt.Sprintf(format, args...))
}

// Count returns how many recorded calls start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// Reset clears the call log.
func (r *Recorder) Reset() {
	r.Calls = nil
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) CreateVertexBuffer(data []float32, usage gpu.Usage) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, gpu.ErrInvalidBuffer
	}
	b := gpu.Buffer(r.handle())
	r.Live[b] = true
	r.record("CreateVertexBuffer(%d)", len(data))
	return b, nil
}

func (r *Recorder) CreateIndexBuffer(data []uint16, usage gpu.Usage) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, gpu.ErrInvalidBuffer
	}
	b := gpu.Buffer(r.handle())
	r.Live[b] = true
	r.record("CreateIndexBuffer(%d)", len(data))
	return b, nil
}

func (r *Recorder) BindBuffer(target gpu.BufferTarget, b gpu.Buffer) {
	r.record("BindBuffer(%d, %d)", target, b)
}

func (r *Recorder) DeleteBuffer(b gpu.Buffer) {
	r.record("DeleteBuffer(%d)", b)
	delete(r.Live, b)
	r.Deleted = append(r.Deleted, b)
}

func (r *Recorder) LinkProgram(src gpu.ProgramSource) (gpu.Program, error) {
	r.record("LinkProgram")
	if r.FailLink {
		return 0, gpu.ErrLinkFailed
	}
	return gpu.Program(r.handle()), nil
}

func (r *Recorder) UseProgram(p gpu.Program) {
	r.record("UseProgram(%d)", p)
}

func (r *Recorder) DeleteProgram(p gpu.Program) {
	r.record("DeleteProgram(%d)", p)
}

func (r *Recorder) AttribLocation(p gpu.Program, name string) gpu.AttribLocation {
	if loc, ok := r.Attribs[name]; ok {
		return loc
	}
	return gpu.NoLocation
}

func (r *Recorder) UniformLocation(p gpu.Program, name string) gpu.UniformLocation {
	if loc, ok := r.Uniforms[name]; ok {
		return loc
	}
	return gpu.NoLocation
}

func (r *Recorder) UniformMatrix4(loc gpu.UniformLocation, m ...mgl32.Mat4) {
	r.record("UniformMatrix4(%d, %d)", loc, len(m))
	r.Matrices[loc] = append([]mgl32.Mat4(nil), m...)
}

func (r *Recorder) EnableVertexAttribArray(loc gpu.AttribLocation) {
	r.record("EnableVertexAttribArray(%d)", loc)
}

func (r *Recorder) VertexAttribPointer(loc gpu.AttribLocation, size, stride, offset int) {
	r.record("VertexAttribPointer(%d, %d)", loc, size)
}

func (r *Recorder) VertexAttribDivisor(loc gpu.AttribLocation, divisor int) {
	r.record("VertexAttribDivisor(%d, %d)", loc, divisor)
}

func (r *Recorder) Viewport(x, y, width, height int) {
	r.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
}

func (r *Recorder) ClearColor(cr, cg, cb, ca float32) {
	r.record("ClearColor")
}

func (r *Recorder) Clear(color, depth bool) {
	r.record("Clear(%t, %t)", color, depth)
}

func (r *Recorder) Enable(c gpu.Capability) {
	r.record("Enable(%d)", c)
}

func (r *Recorder) Disable(c gpu.Capability) {
	r.record("Disable(%d)", c)
}

func (r *Recorder) CullFace(f gpu.Face) {
	r.record("CullFace(%d)", f)
}

func (r *Recorder) FrontFace(w gpu.Winding) {
	r.record("FrontFace(%d)", w)
}

func (r *Recorder) DrawElements(count int) {
	r.record("DrawElements(%d)", count)
}

func (r *Recorder) DrawElementsInstanced(count, instances int) {
	r.record("DrawElementsInstanced(%d, %d)", count, instances)
}

var _ gpu.Device = (*Recorder)(nil)
