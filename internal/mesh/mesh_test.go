package mesh

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"holomesh/internal/mathutil"
	"holomesh/internal/scene"
)

func triangle() *scene.Geometry {
	g := scene.NewTriangleGeometry("tri",
		[]scene.Vector3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		[]int{0, 1, 2})
	g.Normals = []scene.NormalElement{{
		Mapping:   scene.ByControlPoint,
		Reference: scene.Direct,
		Direct:    []scene.Vector3{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}},
	}}
	return g
}

func attach(g *scene.Geometry, materials ...*scene.Material) *scene.Node {
	n := scene.NewNode("node")
	n.AddGeometry(g)
	n.Materials = materials
	return n
}

func lambert(name string, c scene.Colour) *scene.Material {
	return &scene.Material{Name: name, Kind: scene.MaterialLambert, Diffuse: c}
}

func TestResolveNormalByControlPointDirect(t *testing.T) {
	g := triangle()
	g.Normals[0].Direct = []scene.Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for i, want := range g.Normals[0].Direct {
		got, err := ResolveNormal(g, i, i)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestResolveNormalIndexToDirect(t *testing.T) {
	g := triangle()
	g.Normals[0] = scene.NormalElement{
		Mapping:   scene.ByControlPoint,
		Reference: scene.IndexToDirect,
		Direct:    []scene.Vector3{{1, 0, 0}, {0, 1, 0}},
		Index:     []int{1, 0, 1},
	}
	for i, idx := range g.Normals[0].Index {
		got, err := ResolveNormal(g, i, i)
		require.NoError(t, err)
		assert.Equal(t, g.Normals[0].Direct[idx], got)
	}
}

func TestResolveNormalByPolygonVertexUsesCornerKey(t *testing.T) {
	g := triangle()
	g.Normals[0] = scene.NormalElement{
		Mapping:   scene.ByPolygonVertex,
		Reference: scene.Direct,
		Direct:    []scene.Vector3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	}
	got, err := ResolveNormal(g, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, scene.Vector3{0, 0, 1}, got)
}

func TestResolveNormalErrors(t *testing.T) {
	noNormals := triangle()
	noNormals.Normals = nil
	_, err := ResolveNormal(noNormals, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	_, err = ResolveNormal(nil, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	ref := triangle()
	ref.Normals[0].Reference = scene.Index
	_, err = ResolveNormal(ref, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedReferenceMode)

	mapping := triangle()
	mapping.Normals[0].Mapping = scene.ByPolygon
	_, err = ResolveNormal(mapping, 0, 0)
	assert.ErrorIs(t, err, ErrUnsupportedMappingMode)

	short := triangle()
	short.Normals[0].Direct = short.Normals[0].Direct[:1]
	_, err = ResolveNormal(short, 2, 2)
	assert.ErrorIs(t, err, ErrNormalIndex)

	badIndex := triangle()
	badIndex.Normals[0].Reference = scene.IndexToDirect
	badIndex.Normals[0].Index = []int{0, 7, 0}
	_, err = ResolveNormal(badIndex, 1, 1)
	assert.ErrorIs(t, err, ErrNormalIndex)
}

func TestTriangleMaterialMap(t *testing.T) {
	quad := func() *scene.Geometry {
		return scene.NewTriangleGeometry("two",
			[]scene.Vector3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
			[]int{0, 1, 2, 0, 2, 3})
	}

	g := quad()
	assert.Equal(t, []int{0, 0}, BuildTriangleMaterialMap(g))

	g.Materials = []scene.MaterialElement{{Mapping: scene.ByPolygon, Index: []int{2, 1}}}
	assert.Equal(t, []int{2, 1}, BuildTriangleMaterialMap(g))

	g.Materials[0].Index = []int{2, 1, 0}
	assert.Equal(t, []int{0, 0}, BuildTriangleMaterialMap(g), "count mismatch leaves defaults")

	g.Materials = []scene.MaterialElement{{Mapping: scene.AllSame, Index: []int{3}}}
	assert.Equal(t, []int{3, 3}, BuildTriangleMaterialMap(g))

	g.Materials[0].Index = nil
	assert.Equal(t, []int{0, 0}, BuildTriangleMaterialMap(g))

	assert.Nil(t, BuildTriangleMaterialMap(nil))
}

func TestBuildScenario(t *testing.T) {
	g := triangle()
	r, err := Build(g, BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, [][4]float32{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 1, 0, 1}}, r.Positions)
	assert.Equal(t, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}, r.Normals)
	assert.Equal(t, []uint16{0, 1, 2}, r.Indices)
	// no node and no materials: default opaque black
	for _, c := range r.Colors {
		assert.Equal(t, [4]float32{0, 0, 0, 1}, c)
	}
	assert.Equal(t, 3, r.VertexCount())
	assert.Equal(t, 1, r.TriangleCount())
}

func TestBuildAllSameRed(t *testing.T) {
	g := triangle()
	g.Materials = []scene.MaterialElement{{Mapping: scene.AllSame, Reference: scene.IndexToDirect, Index: []int{0}}}
	attach(g, lambert("red", scene.RGB(1, 0, 0)))

	r, err := Build(g, BuildOptions{})
	require.NoError(t, err)
	require.Len(t, r.Colors, 3)
	for _, c := range r.Colors {
		assert.Equal(t, [4]float32{1, 0, 0, 1}, c)
	}
}

func TestBuildColoursFollowFirstPolygon(t *testing.T) {
	g := scene.NewTriangleGeometry("two",
		[]scene.Vector3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}, {5, 5, 5}},
		[]int{0, 1, 2, 0, 2, 3})
	g.Normals = []scene.NormalElement{{Mapping: scene.ByControlPoint, Direct: make([]scene.Vector3, 5)}}
	g.Materials = []scene.MaterialElement{{Mapping: scene.ByPolygon, Index: []int{1, 0}}}
	attach(g,
		lambert("green", scene.RGB(0, 1, 0)),
		&scene.Material{Name: "blue", Kind: scene.MaterialPhong, Properties: []scene.Property{
			{Name: "DiffuseColor", Type: scene.PropColor4, Values: []float64{0, 0, 1, 0.5}},
		}},
	)

	r, err := Build(g, BuildOptions{})
	require.NoError(t, err)
	blue := [4]float32{0, 0, 1, 0.5}
	green := [4]float32{0, 1, 0, 1}
	assert.Equal(t, [][4]float32{blue, blue, blue, green, green}, r.Colors)
}

func TestBuildIndexOverflow(t *testing.T) {
	g := triangle()
	g.PolygonVertices = []int{0, 1, 70000}
	_, err := Build(g, BuildOptions{})
	assert.ErrorIs(t, err, ErrIndexOverflow)
}

func TestBuildIndexOutOfRange(t *testing.T) {
	g := triangle()
	g.PolygonVertices = []int{0, 1, 3}
	_, err := Build(g, BuildOptions{})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	g.PolygonVertices = []int{0, -1, 2}
	_, err = Build(g, BuildOptions{})
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestBuildRejectsPolygons(t *testing.T) {
	g := &scene.Geometry{
		Name:            "quad",
		ControlPoints:   []scene.Vector3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		PolygonVertices: []int{0, 1, 2, 3},
		PolygonSizes:    []int{4},
		Normals:         []scene.NormalElement{{Mapping: scene.ByControlPoint, Direct: make([]scene.Vector3, 4)}},
	}
	_, err := Build(g, BuildOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	r, err := Build(scene.Triangulate(g), BuildOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, r.TriangleCount())
}

func TestBuildPropagatesNormalErrors(t *testing.T) {
	g := triangle()
	g.Normals = nil
	_, err := Build(g, BuildOptions{})
	assert.True(t, errors.Is(err, ErrUnsupportedGeometry))

	_, err = Build(nil, BuildOptions{})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}

func TestBuildInvariantOverProceduralScene(t *testing.T) {
	sc, err := scene.Procedural(scene.DemoSolids(), 10)
	require.NoError(t, err)
	scene.Traverse(sc.Root, func(n *scene.Node, g *scene.Geometry) {
		r, err := Build(g, BuildOptions{Logger: slog.New(slog.DiscardHandler)})
		require.NoError(t, err)
		cps := g.ControlPointCount()
		assert.Len(t, r.Positions, cps)
		assert.Len(t, r.Normals, cps)
		assert.Len(t, r.Colors, cps)
		for _, idx := range r.Indices {
			assert.Less(t, int(idx), cps)
		}
		want := n.Materials[0].Diffuse.Float32()
		assert.Equal(t, want, r.Colors[0])
	})
}

func TestBuildBakeTransform(t *testing.T) {
	g := triangle()
	m := mathutil.TRS(mathutil.V3(0, 0, 5), mathutil.V3(0, 90, 0), mathutil.V3(1, 1, 1))
	r, err := Build(g, BuildOptions{BakeTransform: &m})
	require.NoError(t, err)

	// +X rotates to -Z about Y, then moves 5 along Z.
	assert.InDelta(t, 0, r.Positions[1][0], 1e-6)
	assert.InDelta(t, 4, r.Positions[1][2], 1e-6)
	// +Z normals rotate to +X.
	assert.InDelta(t, 1, r.Normals[0][0], 1e-6)
	assert.InDelta(t, 0, r.Normals[0][2], 1e-6)

	lo, hi := r.Bounds()
	assert.InDelta(t, 4, lo[2], 1e-6)
	assert.InDelta(t, 5, hi[2], 1e-6)
}

func TestSampleDiffuse(t *testing.T) {
	n := scene.NewNode("n")
	n.Materials = []*scene.Material{
		lambert("plain", scene.RGB(0.2, 0.4, 0.6)),
		{Name: "shader", Kind: scene.MaterialHardwareShader, Diffuse: scene.RGB(1, 1, 1)},
		{Name: "bad", Kind: scene.MaterialPhong, Properties: []scene.Property{{Name: "DiffuseColor", Type: scene.PropDouble, Values: []float64{1}}}},
		{Name: "empty", Kind: scene.MaterialPhong},
	}
	assert.Equal(t, scene.RGB(0.2, 0.4, 0.6), SampleDiffuse(n, 0))
	assert.Equal(t, scene.DefaultColour, SampleDiffuse(n, 1))
	assert.Equal(t, scene.DefaultColour, SampleDiffuse(n, 2))
	assert.Equal(t, scene.DefaultColour, SampleDiffuse(n, 3))
	assert.Equal(t, scene.DefaultColour, SampleDiffuse(n, 9))
	assert.Equal(t, scene.DefaultColour, SampleDiffuse(nil, 0))
}

type fakeTextures map[string][2]int

func (f fakeTextures) Dimensions(t *scene.Texture) (int, int, error) {
	d, ok := f[t.Name]
	if !ok {
		return 0, 0, errors.New("missing")
	}
	return d[0], d[1], nil
}

func TestDescribeMaterials(t *testing.T) {
	world := mathutil.Mat4Identity()
	shader := &scene.Material{
		Name: "fx",
		Kind: scene.MaterialHardwareShader,
		Properties: []scene.Property{
			{Name: "Maya|UseTexture", Type: scene.PropBool, Values: []float64{1}},
			{Name: "Maya|World", Type: scene.PropMatrix4x4, Values: world[:]},
		},
		Implementation: &scene.Implementation{
			Language: "CGFX",
			Entries: []scene.BindingEntry{
				{Source: "Maya|DiffuseTex", Destination: "diffuse"},
				{Source: "Maya|UseTexture", Destination: "use"},
				{Source: "Maya|World", Destination: "world"},
				{Source: "Maya|Gone", Destination: "gone"},
				{Source: "Gain", Destination: "gain", Kind: scene.EntryConstant},
			},
			Constants: []scene.Property{{Name: "Gain", Type: scene.PropFloat, Values: []float64{0.5}}},
		},
	}
	shader.BindTexture("Maya|DiffuseTex", &scene.Texture{Name: "bricks", FileName: "bricks.tga"})

	phong := &scene.Material{Name: "p", Kind: scene.MaterialPhong, Diffuse: scene.RGB(1, 0, 0), Opacity: 1}
	phong.BindTexture("DiffuseColor", &scene.Texture{Name: "wood"})
	n := scene.NewNode("n")
	n.Materials = []*scene.Material{shader, phong, {Name: "odd", ShadingModel: "toon"}}

	reports := DescribeMaterials(n, slog.New(slog.DiscardHandler), fakeTextures{"bricks": {64, 32}})
	require.Len(t, reports, 3)

	fields := func(r MaterialReport) map[string]string {
		m := map[string]string{}
		for _, f := range r.Fields {
			m[f.Key] = f.Value
		}
		return m
	}
	fx := fields(reports[0])
	assert.Equal(t, "CGFX", fx["language"])
	assert.Contains(t, fx["entry diffuse"], "64x32")
	assert.Equal(t, "bool true", fx["entry use"])
	assert.Contains(t, fx["entry world"], "matrix4x4 [1 0 0 0]")
	assert.Equal(t, "unresolved Maya|Gone", fx["entry gone"])
	assert.Equal(t, "float 0.5", fx["entry gain"])

	p := fields(reports[1])
	assert.Equal(t, "#ff0000", p["diffuse"])
	assert.Contains(t, p["texture DiffuseColor"], "wood")
	assert.Contains(t, p["texture DiffuseColor"], "unresolved")

	assert.Equal(t, `unknown material class "toon"`, fields(reports[2])["class"])
	assert.Nil(t, DescribeMaterials(nil, nil, nil))
}
