package raster

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holomesh/internal/gpu"
)

const testVS = `
attribute vec4 aPosition;
attribute vec4 aColor;
uniform mat4 uModelMatrix;
uniform mat4 uViewMatrix;
uniform mat4 uProjMatrix;
varying vec4 vColor;
void main() {
	gl_Position = uProjMatrix * uViewMatrix * uModelMatrix * aPosition;
	vColor = aColor;
}`

const testStereoVS = `
#extension GL_NV_viewport_array2 : require
in vec4 aPosition;
in highp vec4 aColor;
layout(location = 2) in float aRenderTargetArrayIndex;
uniform mat4 uModelMatrix;
uniform mat4 uHolographicViewProjectionMatrix[2];
out vec4 vColor;
void main() {
	int rtv = int(aRenderTargetArrayIndex);
	gl_Position = uHolographicViewProjectionMatrix[rtv] * uModelMatrix * aPosition;
	gl_Layer = rtv;
	vColor = aColor;
}`

const testFS = `
precision mediump float;
varying vec4 vColor;
void main() {
	gl_FragColor = vColor;
}`

func setup(t *testing.T, d *Device, vs string, positions []float32, colors []float32, indices []uint16) gpu.Program {
	t.Helper()
	prog, err := d.LinkProgram(gpu.ProgramSource{Vertex: gpu.VertexShader(vs), Fragment: testFS})
	require.NoError(t, err)
	d.UseProgram(prog)

	pb, err := d.CreateVertexBuffer(positions, gpu.StaticDraw)
	require.NoError(t, err)
	cb, err := d.CreateVertexBuffer(colors, gpu.StaticDraw)
	require.NoError(t, err)
	ib, err := d.CreateIndexBuffer(indices, gpu.StaticDraw)
	require.NoError(t, err)

	pos := d.AttribLocation(prog, PositionAttrib)
	col := d.AttribLocation(prog, ColorAttrib)
	d.BindBuffer(gpu.ArrayBuffer, pb)
	d.EnableVertexAttribArray(pos)
	d.VertexAttribPointer(pos, 4, 0, 0)
	d.BindBuffer(gpu.ArrayBuffer, cb)
	d.EnableVertexAttribArray(col)
	d.VertexAttribPointer(col, 4, 0, 0)
	d.BindBuffer(gpu.ElementArrayBuffer, ib)
	return prog
}

var (
	bigTriangle = []float32{-1, -1, 0, 1, 1, -1, 0, 1, 0, 1, 0, 1}
	red3        = []float32{1, 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1}
)

func pixel(d *Device, layer, x, y int) [4]uint8 {
	img := d.Snapshot(layer)
	i := img.PixOffset(x, y)
	return [4]uint8{img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3]}
}

func TestLinkScansDeclarations(t *testing.T) {
	d := New(Options{Width: 4, Height: 4})
	prog, err := d.LinkProgram(gpu.ProgramSource{Vertex: testStereoVS, Fragment: testFS})
	require.NoError(t, err)

	assert.Equal(t, gpu.AttribLocation(0), d.AttribLocation(prog, PositionAttrib))
	assert.Equal(t, gpu.AttribLocation(2), d.AttribLocation(prog, RenderTargetIndexAttrib))
	assert.Equal(t, gpu.AttribLocation(gpu.NoLocation), d.AttribLocation(prog, "aNormal"))
	assert.Equal(t, gpu.UniformLocation(0), d.UniformLocation(prog, ModelUniform))
	assert.Equal(t, gpu.UniformLocation(1), d.UniformLocation(prog, StereoViewProjUniform))
	assert.Equal(t, gpu.UniformLocation(gpu.NoLocation), d.UniformLocation(prog, ViewUniform))
	assert.True(t, d.programs[prog].stereo)
	assert.Equal(t, gpu.AttribLocation(gpu.NoLocation), d.AttribLocation(prog+99, PositionAttrib))
}

func TestLinkFailures(t *testing.T) {
	d := New(Options{})
	for name, src := range map[string]gpu.ProgramSource{
		"no vertex main":   {Vertex: "attribute vec4 aPosition;", Fragment: testFS},
		"no fragment main": {Vertex: testVS, Fragment: "precision mediump float;"},
		"no position":      {Vertex: "attribute vec4 aColor; void main() {}", Fragment: testFS},
		"bad uniform":      {Vertex: "attribute vec4 aPosition;\nuniform sampler2D uTex;\nvoid main() {}", Fragment: testFS},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := d.LinkProgram(src)
			assert.ErrorIs(t, err, gpu.ErrLinkFailed)
		})
	}
}

func TestEmptyBuffersRejected(t *testing.T) {
	d := New(Options{})
	_, err := d.CreateVertexBuffer(nil, gpu.StaticDraw)
	assert.ErrorIs(t, err, gpu.ErrInvalidBuffer)
	_, err = d.CreateIndexBuffer([]uint16{}, gpu.StaticDraw)
	assert.ErrorIs(t, err, gpu.ErrInvalidBuffer)
}

func TestDrawMonoTriangle(t *testing.T) {
	d := New(Options{Width: 16, Height: 16})
	setup(t, d, testVS, bigTriangle, red3, []uint16{0, 1, 2})
	d.ClearColor(0, 0, 0, 0)
	d.Clear(true, true)
	d.Enable(gpu.DepthTest)
	d.DrawElements(3)

	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(d, 0, 8, 8))
	// top corners lie outside the triangle
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 0, 0, 0))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 0, 15, 0))
	// layer 1 is untouched by mono draws
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 1, 8, 8))
	assert.Equal(t, 1, d.Stats.Triangles)
	assert.Positive(t, d.Stats.Fragments)
}

func TestBackFaceCulling(t *testing.T) {
	d := New(Options{Width: 8, Height: 8})
	setup(t, d, testVS, bigTriangle, red3, []uint16{0, 2, 1})
	d.Enable(gpu.CullFace)
	d.CullFace(gpu.Back)
	d.FrontFace(gpu.CCW)
	d.DrawElements(3)
	assert.Equal(t, 1, d.Stats.Culled)
	assert.Zero(t, d.Stats.Fragments)

	d.FrontFace(gpu.CW)
	d.DrawElements(3)
	assert.Equal(t, 1, d.Stats.Triangles)
}

func TestDepthTestKeepsNearest(t *testing.T) {
	d := New(Options{Width: 8, Height: 8})
	// far blue quad-triangle drawn after the near red one
	positions := append(append([]float32{}, bigTriangle...),
		-1, -1, 0.5, 1, 1, -1, 0.5, 1, 0, 1, 0.5, 1)
	colors := append(append([]float32{}, red3...), 0, 0, 1, 1, 0, 0, 1, 1, 0, 0, 1, 1)
	setup(t, d, testVS, positions, colors, []uint16{0, 1, 2, 3, 4, 5})
	d.Clear(true, true)
	d.Enable(gpu.DepthTest)
	d.DrawElements(6)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(d, 0, 4, 4))

	d.Disable(gpu.DepthTest)
	d.Clear(true, true)
	d.DrawElements(6)
	assert.Equal(t, [4]uint8{0, 0, 255, 255}, pixel(d, 0, 4, 4))
}

func TestUniformsTransformVertices(t *testing.T) {
	d := New(Options{Width: 16, Height: 16})
	prog := setup(t, d, testVS, bigTriangle, red3, []uint16{0, 1, 2})
	// push the triangle off to the right half only
	d.UniformMatrix4(d.UniformLocation(prog, ModelUniform), mgl32.Translate3D(1, 0, 0))
	d.DrawElements(3)
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 0, 2, 12))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(d, 0, 12, 12))
}

func TestStereoInstancedDrawsEachLayer(t *testing.T) {
	d := New(Options{Width: 16, Height: 16})
	prog := setup(t, d, testStereoVS, bigTriangle, red3, []uint16{0, 1, 2})

	rb, err := d.CreateVertexBuffer([]float32{0, 1}, gpu.StaticDraw)
	require.NoError(t, err)
	rtv := d.AttribLocation(prog, RenderTargetIndexAttrib)
	d.BindBuffer(gpu.ArrayBuffer, rb)
	d.EnableVertexAttribArray(rtv)
	d.VertexAttribPointer(rtv, 1, 0, 0)
	d.VertexAttribDivisor(rtv, 1)

	left := mgl32.Translate3D(-1, 0, 0)
	right := mgl32.Translate3D(1, 0, 0)
	d.UniformMatrix4(d.UniformLocation(prog, StereoViewProjUniform), left, right)
	d.DrawElementsInstanced(3, 2)

	assert.Equal(t, 2, d.Stats.Instances)
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(d, 0, 3, 12))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 0, 12, 12))
	assert.Equal(t, [4]uint8{255, 0, 0, 255}, pixel(d, 1, 12, 12))
	assert.Equal(t, [4]uint8{0, 0, 0, 0}, pixel(d, 1, 3, 12))
}

func TestDeletedBufferStopsDrawing(t *testing.T) {
	d := New(Options{Width: 8, Height: 8})
	setup(t, d, testVS, bigTriangle, red3, []uint16{0, 1, 2})
	assert.Equal(t, 3, d.LiveBuffers())
	// handle 1 is the program, 4 the index buffer
	d.DeleteBuffer(4)
	assert.Equal(t, 2, d.LiveBuffers())
	d.DrawElements(3)
	assert.Zero(t, d.Stats.DrawCalls)
	assert.Nil(t, d.Snapshot(5))
}

func TestLightingShadesColour(t *testing.T) {
	lc := DefaultLightConfig()
	d := New(Options{Width: 8, Height: 8, Lighting: &lc})
	grey := []float32{0.5, 0.5, 0.5, 1, 0.5, 0.5, 0.5, 1, 0.5, 0.5, 0.5, 1}
	setup(t, d, testVS, bigTriangle, grey, []uint16{0, 1, 2})
	d.DrawElements(3)
	p := pixel(d, 0, 4, 4)
	assert.NotEqual(t, uint8(128), p[0])
	assert.Equal(t, p[0], p[1])
	assert.Equal(t, uint8(255), p[3])
}
