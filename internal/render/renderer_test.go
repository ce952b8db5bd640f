package render

import (
	"image"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holomesh/internal/camera"
	"holomesh/internal/gpu"
	"holomesh/internal/gpu/gputest"
	"holomesh/internal/mesh"
	"holomesh/internal/model"
	"holomesh/internal/raster"
)

// quad is a red unit square in the XY plane facing +Z.
func quad() *model.Assembly {
	red := [4]float32{1, 0, 0, 1}
	a := model.New()
	a.AddMesh(&mesh.Record{
		Name:      "quad",
		Positions: [][4]float32{{-1, -1, 0, 1}, {1, -1, 0, 1}, {1, 1, 0, 1}, {-1, 1, 0, 1}},
		Normals:   [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Colors:    [][4]float32{red, red, red, red},
		Indices:   []uint16{0, 1, 2, 0, 2, 3},
	})
	a.MarkLoaded()
	return a
}

func TestDrawMono(t *testing.T) {
	dev := gputest.New()
	r, err := New(dev, quad(), Options{})
	require.NoError(t, err)
	require.True(t, r.Ready(false))
	require.True(t, r.Ready(true))

	dev.Reset()
	r.Draw(false)
	assert.Equal(t, 1, dev.Count("Clear(true, true)"))
	assert.Equal(t, 1, dev.Count("DrawElements(6)"))
	assert.Zero(t, dev.Count("DrawElementsInstanced"))
	assert.Zero(t, dev.Count("VertexAttribDivisor"))
	assert.Contains(t, dev.Matrices, gpu.UniformLocation(1))
	assert.Contains(t, dev.Matrices, gpu.UniformLocation(2))
	assert.Equal(t, 1, r.DrawCount())
}

func TestDrawStereo(t *testing.T) {
	dev := gputest.New()
	r, err := New(dev, quad(), Options{})
	require.NoError(t, err)

	vps := camera.StereoViewProjection(1, camera.DefaultIPD)
	r.SetHolographicViewProjection(vps[0], vps[1])
	assert.Len(t, dev.Matrices[3], 2)

	dev.Reset()
	r.Draw(true)
	assert.Equal(t, 1, dev.Count("DrawElementsInstanced(6, 2)"))
	assert.Equal(t, 1, dev.Count("VertexAttribDivisor(2, 1)"))
	assert.Equal(t, 1, dev.Count("VertexAttribPointer(2, 1)"))
	assert.Zero(t, dev.Count("UniformMatrix4(1"))
}

func TestModelMatrixSpins(t *testing.T) {
	dev := gputest.New()
	r, err := New(dev, quad(), Options{FitRadius: -1})
	require.NoError(t, err)

	first := r.ModelMatrix()
	assert.True(t, first.ApproxEqual(mgl32.Translate3D(0, 0, -10)))

	for i := 0; i < SpinRate; i++ {
		r.Draw(false)
	}
	want := camera.SimpleModel(1, camera.ModelPosition)
	assert.True(t, r.ModelMatrix().ApproxEqualThreshold(want, 1e-5))

	r.Advance(SpinRate)
	r.Advance(-3)
	assert.Equal(t, 2*SpinRate, r.DrawCount())
}

func TestLinkFailureOnlyClears(t *testing.T) {
	dev := gputest.New()
	dev.FailLink = true
	r, err := New(dev, quad(), Options{})
	require.NoError(t, err)
	assert.False(t, r.Ready(false))

	dev.Reset()
	r.Draw(false)
	r.Draw(true)
	assert.Equal(t, 2, dev.Count("Clear(true, true)"))
	assert.Zero(t, dev.Count("UseProgram"))
	assert.Zero(t, dev.Count("DrawElements"))
	assert.Zero(t, r.DrawCount())
}

func TestUnloadedModelDrawsNothing(t *testing.T) {
	dev := gputest.New()
	a := model.New()
	r, err := New(dev, a, Options{})
	require.NoError(t, err)
	r.Draw(false)
	assert.Zero(t, dev.Count("DrawElements"))
	assert.Equal(t, 1, r.DrawCount())
}

func TestUpdateWindowSize(t *testing.T) {
	dev := gputest.New()
	r, err := New(dev, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Count("Viewport(0, 0, 1268, 720)"))

	r.UpdateWindowSize(640, 480)
	r.UpdateWindowSize(0, 480)
	assert.Equal(t, 1, dev.Count("Viewport(0, 0, 640, 480)"))
	assert.Equal(t, 2, dev.Count("Viewport"))

	dev.Reset()
	r.Draw(false)
	want := camera.SimpleProjection(640.0 / 480)
	assert.Equal(t, want, dev.Matrices[2][0])
}

func TestCloseReleasesOnce(t *testing.T) {
	dev := gputest.New()
	r, err := New(dev, quad(), Options{})
	require.NoError(t, err)
	assert.Len(t, dev.Live, 5)

	r.Close()
	r.Close()
	assert.Empty(t, dev.Live)
	assert.Len(t, dev.Deleted, 5)
	assert.Equal(t, 2, dev.Count("DeleteProgram"))

	dev.Reset()
	r.Draw(false)
	r.Draw(true)
	assert.Empty(t, dev.Calls)
	assert.Zero(t, r.DrawCount())
}

func centre(img *image.NRGBA) (int, int) {
	b := img.Bounds()
	return b.Dx() / 2, b.Dy() / 2
}

func TestRasterMonoFrame(t *testing.T) {
	dev := raster.New(raster.Options{Width: 64, Height: 64})
	r, err := New(dev, quad(), Options{Width: 64, Height: 64, ClearColor: &[4]float32{0, 0, 0, 1}})
	require.NoError(t, err)

	r.Draw(false)
	img := dev.Snapshot(0)
	x, y := centre(img)
	c := img.NRGBAAt(x, y)
	assert.Equal(t, uint8(255), c.R)
	assert.Zero(t, c.B)

	corner := img.NRGBAAt(0, 0)
	assert.Equal(t, uint8(0), corner.R)
	assert.Equal(t, uint8(255), corner.A)
}

func TestRasterStereoFrame(t *testing.T) {
	dev := raster.New(raster.Options{Width: 64, Height: 64})
	r, err := New(dev, quad(), Options{Width: 64, Height: 64})
	require.NoError(t, err)

	vps := camera.StereoViewProjection(1, camera.DefaultIPD)
	r.SetHolographicViewProjection(vps[0], vps[1])
	r.Draw(true)

	assert.Equal(t, 2, dev.Stats.Instances)
	for layer := 0; layer < 2; layer++ {
		img := dev.Snapshot(layer)
		x, y := centre(img)
		assert.Equal(t, uint8(255), img.NRGBAAt(x, y).R, "layer %d", layer)
	}
}
