// Package render drives the per-frame draw of an assembled model through a
// gpu.Device, either as one mono view or as an instanced stereo pair.
package render

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"holomesh/internal/camera"
	"holomesh/internal/gpu"
	"holomesh/internal/model"
)

// Default window size of the mono view.
const (
	DefaultWidth  = 1268
	DefaultHeight = 720
)

// SpinRate is the number of frames per radian of model rotation.
const SpinRate = 50

// Options configures a Renderer. Zero values select defaults.
type Options struct {
	Width, Height int
	// Position places the model; nil means camera.ModelPosition.
	Position *mgl32.Vec3
	// FitRadius rescales the model to this half diagonal. Zero fills
	// about half the view, negative disables fitting.
	FitRadius float32
	// ClearColor defaults to transparent blue.
	ClearColor *[4]float32
	Logger     *slog.Logger
}

type program struct {
	id       gpu.Program
	position gpu.AttribLocation
	color    gpu.AttribLocation
	rtv      gpu.AttribLocation
	model    gpu.UniformLocation
	view     gpu.UniformLocation
	proj     gpu.UniformLocation
	stereoVP gpu.UniformLocation
}

// Renderer owns the two shader programs and the render-target index buffer.
// Apart from the draw counter it keeps no per-frame state.
type Renderer struct {
	dev      gpu.Device
	model    *model.Assembly
	logger   *slog.Logger
	mono     program
	holo     program
	rtv      gpu.Buffer
	fit      mgl32.Mat4
	position mgl32.Vec3
	clear    [4]float32
	width    int
	height   int
	draws    int
	closed   bool
}

// New links both programs, uploads the model and binds its attribute
// locations to the mono program. A program that fails to link is logged and
// left unset; drawing in that mode then only clears. Errors are returned
// for failed uploads.
func New(dev gpu.Device, m *model.Assembly, opts Options) (*Renderer, error) {
	r := &Renderer{
		dev:      dev,
		model:    m,
		logger:   opts.Logger,
		position: camera.ModelPosition,
		clear:    [4]float32{0, 0, 1, 0},
		width:    opts.Width,
		height:   opts.Height,
		fit:      mgl32.Ident4(),
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.width <= 0 || r.height <= 0 {
		r.width, r.height = DefaultWidth, DefaultHeight
	}
	if opts.Position != nil {
		r.position = *opts.Position
	}
	if opts.ClearColor != nil {
		r.clear = *opts.ClearColor
	}

	r.mono = r.link("mono", Mono)
	r.holo = r.link("holographic", Holographic)

	if m != nil {
		if opts.FitRadius >= 0 {
			radius := opts.FitRadius
			if radius == 0 {
				radius = camera.FillRadius(r.position.Len(), 0.5)
			}
			lo, hi := m.Bounds()
			r.fit = camera.Fit(lo, hi, radius)
		}
		if err := m.Upload(dev); err != nil {
			r.Close()
			return nil, fmt.Errorf("render: %w", err)
		}
		if r.mono.id != 0 {
			m.SetPositionAttribLocation(r.mono.position)
			m.SetColorAttribLocation(r.mono.color)
		}
	}

	rtv, err := dev.CreateVertexBuffer([]float32{0, 1}, gpu.StaticDraw)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("render: render target indices: %w", err)
	}
	r.rtv = rtv
	dev.Viewport(0, 0, r.width, r.height)
	return r, nil
}

func (r *Renderer) link(name string, src gpu.ProgramSource) program {
	id, err := r.dev.LinkProgram(src)
	if err != nil {
		r.logger.Warn("shader program not linked", "program", name, "err", err)
		return program{}
	}
	return program{
		id:       id,
		position: r.dev.AttribLocation(id, "aPosition"),
		color:    r.dev.AttribLocation(id, "aColor"),
		rtv:      r.dev.AttribLocation(id, "aRenderTargetArrayIndex"),
		model:    r.dev.UniformLocation(id, "uModelMatrix"),
		view:     r.dev.UniformLocation(id, "uViewMatrix"),
		proj:     r.dev.UniformLocation(id, "uProjMatrix"),
		stereoVP: r.dev.UniformLocation(id, "uHolographicViewProjectionMatrix"),
	}
}

// Ready reports whether the program for the given mode linked.
func (r *Renderer) Ready(stereo bool) bool {
	if stereo {
		return r.holo.id != 0
	}
	return r.mono.id != 0
}

// DrawCount returns the number of frames drawn with a linked program.
func (r *Renderer) DrawCount() int { return r.draws }

// Advance moves the animation forward n frames without drawing.
func (r *Renderer) Advance(n int) {
	if n > 0 {
		r.draws += n
	}
}

// ModelMatrix returns the model transform of the next frame.
func (r *Renderer) ModelMatrix() mgl32.Mat4 {
	return camera.SimpleModel(float32(r.draws)/SpinRate, r.position).Mul4(r.fit)
}

// SetHolographicViewProjection uploads the left and right eye
// view-projections to the holographic program.
func (r *Renderer) SetHolographicViewProjection(left, right mgl32.Mat4) {
	if r.holo.id == 0 {
		return
	}
	r.dev.UseProgram(r.holo.id)
	r.dev.UniformMatrix4(r.holo.stereoVP, left, right)
}

// Draw clears the target and renders one frame. In stereo the caller must
// have set the eye matrices with SetHolographicViewProjection. A closed
// renderer issues no device calls.
func (r *Renderer) Draw(stereo bool) {
	if r.closed {
		return
	}
	dev := r.dev
	dev.Enable(gpu.DepthTest)
	dev.ClearColor(r.clear[0], r.clear[1], r.clear[2], r.clear[3])
	dev.Clear(true, true)
	dev.Enable(gpu.CullFace)
	dev.CullFace(gpu.Back)
	dev.FrontFace(gpu.CCW)

	p := r.mono
	if stereo {
		p = r.holo
	}
	if p.id == 0 {
		return
	}
	dev.UseProgram(p.id)
	dev.UniformMatrix4(p.model, r.ModelMatrix())

	if r.model != nil {
		r.model.SetPositionAttribLocation(p.position)
		r.model.SetColorAttribLocation(p.color)
	}

	if stereo {
		dev.BindBuffer(gpu.ArrayBuffer, r.rtv)
		dev.VertexAttribPointer(p.rtv, 1, 0, 0)
		dev.EnableVertexAttribArray(p.rtv)
		dev.VertexAttribDivisor(p.rtv, 1)
	} else {
		dev.UniformMatrix4(p.view, camera.SimpleView())
		dev.UniformMatrix4(p.proj, camera.SimpleProjection(float32(r.width)/float32(r.height)))
	}
	if r.model != nil {
		r.model.Render(dev, stereo)
	}
	r.draws++
}

// UpdateWindowSize resizes the viewport and the mono aspect ratio.
// Non-positive sizes are ignored.
func (r *Renderer) UpdateWindowSize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.dev.Viewport(0, 0, width, height)
	r.width, r.height = width, height
}

// Close releases the programs, the index buffer and the model's buffers.
// Later calls do nothing.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	for _, p := range []*program{&r.mono, &r.holo} {
		if p.id != 0 {
			r.dev.DeleteProgram(p.id)
			p.id = 0
		}
	}
	if r.rtv != 0 {
		r.dev.DeleteBuffer(r.rtv)
		r.rtv = 0
	}
	if r.model != nil {
		r.model.Release(r.dev)
	}
}
