// Package gpu describes the graphics device the model and frame renderer
// draw through. Handles are opaque integers; zero is never a live handle.
package gpu

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrLinkFailed is returned when a program does not compile or link.
	ErrLinkFailed = errors.New("gpu: program link failed")
	// ErrInvalidBuffer is returned for empty uploads and unknown handles.
	ErrInvalidBuffer = errors.New("gpu: invalid buffer")
)

type (
	Buffer          uint32
	Program         uint32
	AttribLocation  int32
	UniformLocation int32
)

// NoLocation is returned for attributes and uniforms a program lacks.
const NoLocation = -1

// BufferTarget selects the binding point of a buffer.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Usage is the upload frequency hint.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
	StreamDraw
)

// Capability is a toggleable pipeline state.
type Capability int

const (
	DepthTest Capability = iota
	CullFace
)

// Face selects the face culled when CullFace is enabled.
type Face int

const (
	Back Face = iota
	Front
)

// Winding selects the front-facing orientation.
type Winding int

const (
	CCW Winding = iota
	CW
)

type (
	VertexShader   string
	FragmentShader string
)

// ProgramSource pairs the two shader stages of a program.
type ProgramSource struct {
	Vertex   VertexShader
	Fragment FragmentShader
}

// Device is the subset of an OpenGL ES 2 style API the renderer uses,
// including ANGLE instanced drawing.
type Device interface {
	CreateVertexBuffer(data []float32, usage Usage) (Buffer, error)
	CreateIndexBuffer(data []uint16, usage Usage) (Buffer, error)
	BindBuffer(target BufferTarget, b Buffer)
	DeleteBuffer(b Buffer)

	LinkProgram(src ProgramSource) (Program, error)
	UseProgram(p Program)
	DeleteProgram(p Program)
	AttribLocation(p Program, name string) AttribLocation
	UniformLocation(p Program, name string) UniformLocation
	// UniformMatrix4 sets a mat4 uniform, or consecutive elements of a
	// mat4 array starting at loc.
	UniformMatrix4(loc UniformLocation, m ...mgl32.Mat4)

	EnableVertexAttribArray(loc AttribLocation)
	// VertexAttribPointer sources loc from the bound array buffer: size
	// floats per vertex, stride and offset in floats (0 stride = packed).
	VertexAttribPointer(loc AttribLocation, size, stride, offset int)
	VertexAttribDivisor(loc AttribLocation, divisor int)

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear(color, depth bool)
	Enable(c Capability)
	Disable(c Capability)
	CullFace(f Face)
	FrontFace(w Winding)

	// DrawElements draws count indices of the bound element buffer as
	// triangles.
	DrawElements(count int)
	// DrawElementsInstanced draws the same indices once per instance.
	DrawElementsInstanced(count, instances int)
}
