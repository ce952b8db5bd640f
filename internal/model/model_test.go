package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holomesh/internal/gpu"
	"holomesh/internal/gpu/gputest"
	"holomesh/internal/mathutil"
	"holomesh/internal/mesh"
)

func triangle(name string, offset float32) *mesh.Record {
	return &mesh.Record{
		Name: name,
		Positions: [][4]float32{
			{offset, 0, 0, 1}, {offset + 1, 0, 0, 1}, {offset, 1, 0, 1},
		},
		Normals: [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
		Colors:  [][4]float32{{1, 0, 0, 1}, {1, 0, 0, 1}, {1, 0, 0, 1}},
		Indices: []uint16{0, 1, 2},
	}
}

func TestRenderBeforeLoaded(t *testing.T) {
	dev := gputest.New()
	a := New()
	a.AddMesh(triangle("a", 0))
	require.NoError(t, a.Upload(dev))
	dev.Reset()

	a.PreRender(dev, false)
	a.Render(dev, false)
	a.Render(dev, true)
	assert.Empty(t, dev.Calls)
	assert.False(t, a.Loaded())

	a.MarkLoaded()
	a.Render(dev, false)
	assert.Equal(t, 1, dev.Count("DrawElements("))
}

func TestRenderMonoAndStereo(t *testing.T) {
	dev := gputest.New()
	a := New()
	a.SetPositionAttribLocation(0)
	a.SetColorAttribLocation(1)
	a.AddMesh(triangle("a", 0))
	a.AddMesh(triangle("b", 2))
	a.MarkLoaded()
	require.NoError(t, a.Upload(dev))

	dev.Reset()
	a.Render(dev, false)
	assert.Equal(t, 2, dev.Count("DrawElements(3)"))
	assert.Zero(t, dev.Count("DrawElementsInstanced"))
	assert.Equal(t, 2, dev.Count("VertexAttribPointer(0, 4)"))
	assert.Equal(t, 2, dev.Count("VertexAttribPointer(1, 4)"))

	dev.Reset()
	a.Render(dev, true)
	assert.Equal(t, 2, dev.Count("DrawElementsInstanced(3, 2)"))
	assert.Zero(t, dev.Count("DrawElements("))
}

func TestBindingsFollowAssembly(t *testing.T) {
	a := New()
	early := a.AddMesh(triangle("early", 0))
	assert.Equal(t, gpu.AttribLocation(gpu.NoLocation), early.PositionAttrib)

	a.SetPositionAttribLocation(5)
	a.SetColorAttribLocation(6)
	late := a.AddMesh(triangle("late", 0))

	for _, m := range []*Mesh{early, late} {
		assert.Equal(t, gpu.AttribLocation(5), m.PositionAttrib)
		assert.Equal(t, gpu.AttribLocation(6), m.ColorAttrib)
	}
	assert.Len(t, a.Meshes(), 2)
}

func TestReleaseOnce(t *testing.T) {
	dev := gputest.New()
	a := New()
	a.AddMesh(triangle("a", 0))
	a.AddMesh(triangle("b", 0))
	require.NoError(t, a.Upload(dev))
	assert.Len(t, dev.Live, 8)

	a.Release(dev)
	a.Release(dev)
	assert.Empty(t, dev.Live)
	assert.Len(t, dev.Deleted, 8)

	seen := map[gpu.Buffer]bool{}
	for _, b := range dev.Deleted {
		assert.False(t, seen[b], "buffer %d deleted twice", b)
		seen[b] = true
	}
	for _, m := range a.Meshes() {
		assert.False(t, m.Uploaded())
	}
}

func TestUploadSkipsEmptyAndNormals(t *testing.T) {
	dev := gputest.New()
	a := New()
	a.AddMesh(&mesh.Record{Name: "empty"})
	r := triangle("bare", 0)
	r.Normals = nil
	a.AddMesh(r)
	require.NoError(t, a.Upload(dev))

	assert.Equal(t, 2, dev.Count("CreateVertexBuffer"))
	assert.Equal(t, 1, dev.Count("CreateIndexBuffer(3)"))
	assert.False(t, a.Meshes()[0].Uploaded())
	assert.True(t, a.Meshes()[1].Uploaded())

	// uploading again does not duplicate buffers
	require.NoError(t, a.Upload(dev))
	assert.Len(t, dev.Live, 3)
}

func TestUploadFailureReleasesPartialMesh(t *testing.T) {
	dev := gputest.New()
	a := New()
	a.AddMesh(triangle("good", 0))
	bad := triangle("no-colours", 0)
	bad.Colors = nil
	a.AddMesh(bad)

	err := a.Upload(dev)
	require.ErrorIs(t, err, gpu.ErrInvalidBuffer)
	assert.Contains(t, err.Error(), "no-colours")
	// the good mesh keeps its four buffers, the bad one leaks nothing.
	assert.Len(t, dev.Live, 4)
	assert.True(t, a.Meshes()[0].Uploaded())
	assert.False(t, a.Meshes()[1].Uploaded())
}

func TestBoundsAndStats(t *testing.T) {
	a := New()
	lo, hi := a.Bounds()
	assert.Equal(t, mathutil.Vec3{}, lo)
	assert.Equal(t, mathutil.Vec3{}, hi)

	a.AddMesh(triangle("a", -1))
	a.AddMesh(triangle("b", 3))
	lo, hi = a.Bounds()
	assert.Equal(t, mathutil.V3(-1, 0, 0), lo)
	assert.Equal(t, mathutil.V3(4, 1, 0), hi)

	v, tris := a.Stats()
	assert.Equal(t, 6, v)
	assert.Equal(t, 2, tris)
}
