package importer

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holomesh/internal/fbx"
	"holomesh/internal/gpu"
	"holomesh/internal/gpu/gputest"
	"holomesh/internal/mathutil"
	"holomesh/internal/mesh"
	"holomesh/internal/scene"
)

var quiet = slog.New(slog.DiscardHandler)

func up(n int) []scene.Vector3 {
	out := make([]scene.Vector3, n)
	for i := range out {
		out[i] = mathutil.V3(0, 0, 1)
	}
	return out
}

// quadNode holds a red two-triangle square stored as one quad polygon.
func quadNode(name string) *scene.Node {
	g := &scene.Geometry{
		Name:            name + "Mesh",
		ControlPoints:   []scene.Vector3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		PolygonVertices: []int{0, 1, 2, 3},
		PolygonSizes:    []int{4},
		Normals: []scene.NormalElement{{
			Mapping: scene.ByControlPoint, Reference: scene.Direct, Direct: up(4),
		}},
		Materials: []scene.MaterialElement{{
			Mapping: scene.AllSame, Reference: scene.IndexToDirect, Index: []int{0},
		}},
	}
	n := scene.NewNode(name)
	n.AddGeometry(g)
	n.Materials = []*scene.Material{{
		Name: "Red", ShadingModel: "Lambert", Kind: scene.MaterialLambert, Diffuse: scene.RGB(1, 0, 0),
	}}
	return n
}

// bareNode has no normal layer and cannot be built.
func bareNode(name string) *scene.Node {
	n := scene.NewNode(name)
	n.AddGeometry(scene.NewTriangleGeometry(name+"Mesh",
		[]scene.Vector3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}, []int{0, 1, 2}))
	return n
}

func newScene(children ...*scene.Node) *scene.Scene {
	root := scene.NewNode("RootNode")
	for _, c := range children {
		root.AddChild(c)
	}
	return &scene.Scene{Root: root, Source: "memory"}
}

func TestLoadSceneTriangulatesAndBinds(t *testing.T) {
	im := New(Options{Logger: quiet})
	im.SetShaderAttributes(3, 4)

	m, err := im.LoadScene(newScene(quadNode("A")))
	require.NoError(t, err)
	require.True(t, m.Loaded())
	require.Len(t, m.Meshes(), 1)

	mm := m.Meshes()[0]
	assert.Equal(t, gpu.AttribLocation(3), mm.PositionAttrib)
	assert.Equal(t, gpu.AttribLocation(4), mm.ColorAttrib)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, mm.Record.Indices)
	for _, c := range mm.Record.Colors {
		assert.Equal(t, [4]float32{1, 0, 0, 1}, c)
	}

	rep := im.Report()
	require.NotNil(t, rep)
	assert.Equal(t, 1, rep.Built())
	require.Len(t, rep.Materials, 1)
	assert.Equal(t, "Red", rep.Materials[0].Name)
}

func TestLoadSceneKeepPolygons(t *testing.T) {
	im := New(Options{Logger: quiet, KeepPolygons: true})
	m, err := im.LoadScene(newScene(quadNode("A")))
	require.NoError(t, err)
	assert.Empty(t, m.Meshes())

	skipped := im.Report().Skipped()
	require.Len(t, skipped, 1)
	assert.ErrorIs(t, skipped[0].Err, mesh.ErrUnsupportedGeometry)

	im = New(Options{Logger: quiet})
	m, err = im.LoadScene(newScene(quadNode("A")))
	require.NoError(t, err)
	assert.Len(t, m.Meshes()[0].Record.Indices, 6)
}

func TestLoadSceneSkipsBadMesh(t *testing.T) {
	var logs bytes.Buffer
	im := New(Options{Logger: slog.New(slog.NewTextHandler(&logs, nil))})

	m, err := im.LoadScene(newScene(quadNode("A"), bareNode("B"), quadNode("C")))
	require.NoError(t, err)
	assert.True(t, m.Loaded())
	assert.Len(t, m.Meshes(), 2)

	skipped := im.Report().Skipped()
	require.Len(t, skipped, 1)
	assert.Equal(t, "B", skipped[0].Node)
	assert.ErrorIs(t, skipped[0].Err, mesh.ErrUnsupportedGeometry)
	assert.True(t, IsMeshError(skipped[0].Err))
	assert.Contains(t, logs.String(), "skipping mesh")
}

func TestLoadSceneStrict(t *testing.T) {
	im := New(Options{Logger: quiet, Strict: true})
	m, err := im.LoadScene(newScene(quadNode("A"), bareNode("B")))
	require.ErrorIs(t, err, mesh.ErrUnsupportedGeometry)
	assert.Nil(t, m)
	assert.Contains(t, err.Error(), `"B"`)
}

func TestLoadSceneIndexOverflow(t *testing.T) {
	n := quadNode("Big")
	g := n.Mesh()
	g.ControlPoints = make([]scene.Vector3, 70001)
	g.Normals[0].Direct = up(70001)
	g.PolygonVertices = []int{0, 1, 70000}
	g.PolygonSizes = []int{3}

	im := New(Options{Logger: quiet, Strict: true})
	_, err := im.LoadScene(newScene(n))
	require.ErrorIs(t, err, mesh.ErrIndexOverflow)

	im = New(Options{Logger: quiet})
	m, err := im.LoadScene(newScene(n))
	require.NoError(t, err)
	assert.Empty(t, m.Meshes())
	assert.True(t, m.Loaded())
}

func TestLoadSceneBakeTransforms(t *testing.T) {
	n := quadNode("Moved")
	n.Transform.Translation = mathutil.V3(5, 0, 0)

	im := New(Options{Logger: quiet, BakeTransforms: true})
	m, err := im.LoadScene(newScene(n))
	require.NoError(t, err)
	assert.Equal(t, [4]float32{5, 0, 0, 1}, m.Meshes()[0].Record.Positions[0])

	im = New(Options{Logger: quiet})
	m, err = im.LoadScene(newScene(n))
	require.NoError(t, err)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, m.Meshes()[0].Record.Positions[0])
}

func TestLoadSceneNil(t *testing.T) {
	_, err := New(Options{Logger: quiet}).LoadScene(nil)
	assert.ErrorIs(t, err, fbx.ErrImportFailure)
}

func TestLoadModelFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.fbx")
	var buf bytes.Buffer
	require.NoError(t, fbx.ExportScene(&buf, newScene(quadNode("A"), bareNode("B")), fbx.EncodeOptions{}))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	im := New(Options{Logger: quiet})
	im.SetShaderAttributes(0, 1)
	m, err := im.LoadModelFromFile(path)
	require.NoError(t, err)
	require.Len(t, m.Meshes(), 1)
	assert.Equal(t, 2, m.Meshes()[0].Record.TriangleCount())
	assert.Equal(t, path, im.Report().Source)

	dev := gputest.New()
	require.NoError(t, m.Upload(dev))
	m.Render(dev, true)
	assert.Equal(t, 1, dev.Count("DrawElementsInstanced(6, 2)"))
}

func TestLoadModelFromFileErrors(t *testing.T) {
	im := New(Options{Logger: quiet})
	_, err := im.LoadModelFromFile(filepath.Join(t.TempDir(), "missing.fbx"))
	require.ErrorIs(t, err, fbx.ErrImportFailure)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, IsMeshError(err))

	bad := filepath.Join(t.TempDir(), "bad.fbx")
	require.NoError(t, os.WriteFile(bad, []byte("Kaydara FBX Binary  \x00\x1a\x00"), 0o644))
	_, err = im.LoadModelFromFile(bad)
	assert.ErrorIs(t, err, fbx.ErrImportFailure)
}

func TestLoadProceduralScene(t *testing.T) {
	sc, err := scene.Procedural(scene.DemoSolids()[:1], 8)
	require.NoError(t, err)

	im := New(Options{Logger: quiet})
	m, err := im.LoadScene(sc)
	require.NoError(t, err)
	require.Len(t, m.Meshes(), 1)
	r := m.Meshes()[0].Record
	assert.Greater(t, r.TriangleCount(), 0)
	assert.Equal(t, r.VertexCount(), len(r.Colors))
}
