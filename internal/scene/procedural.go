package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"holomesh/internal/mathutil"
)

// SolidKind selects the primitive a procedural solid is built from.
type SolidKind int

const (
	SolidBox SolidKind = iota
	SolidSphere
	SolidCylinder
)

func (k SolidKind) String() string {
	switch k {
	case SolidSphere:
		return "sphere"
	case SolidCylinder:
		return "cylinder"
	default:
		return "box"
	}
}

// Solid describes one primitive of a procedural scene. Size is the box
// extent, (radius, _, _) for a sphere or (radius, height, _) for a
// cylinder. Offset becomes the node translation.
type Solid struct {
	Name   string
	Kind   SolidKind
	Size   Vector3
	Offset Vector3
	Colour Colour
}

// DefaultMeshCells is the marching cubes resolution along the longest axis.
const DefaultMeshCells = 24

// DemoSolids returns the three-solid scene used when no asset is configured.
func DemoSolids() []Solid {
	return []Solid{
		{Name: "Box", Kind: SolidBox, Size: mathutil.V3(1.5, 1.5, 1.5), Offset: mathutil.V3(-2, 0, 0), Colour: RGB(0.8, 0.2, 0.2)},
		{Name: "Sphere", Kind: SolidSphere, Size: mathutil.V3(1, 0, 0), Colour: RGB(0.2, 0.7, 0.3)},
		{Name: "Cylinder", Kind: SolidCylinder, Size: mathutil.V3(0.6, 2, 0), Offset: mathutil.V3(2, 0, 0), Colour: RGB(0.2, 0.3, 0.9)},
	}
}

// Procedural builds a scene with one child node per solid. Each solid is
// meshed with marching cubes, welded into shared control points with
// averaged per-control-point normals, and given one Phong material.
func Procedural(solids []Solid, cells int) (*Scene, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	root := NewNode("RootNode")
	for _, s := range solids {
		g, err := meshSolid(s, cells)
		if err != nil {
			return nil, fmt.Errorf("scene: procedural %s: %w", s.Name, err)
		}
		n := NewNode(s.Name)
		n.Transform.Translation = s.Offset
		n.AddGeometry(g)
		n.Materials = append(n.Materials, &Material{
			Name:         s.Name + "Material",
			ShadingModel: "Phong",
			Kind:         MaterialPhong,
			Ambient:      RGB(0.1, 0.1, 0.1),
			Diffuse:      s.Colour,
			Specular:     RGB(0.5, 0.5, 0.5),
			Emissive:     DefaultColour,
			Opacity:      1,
			Shininess:    20,
			Properties: []Property{
				{Name: "DiffuseColor", Type: PropColor3, Values: []float64{s.Colour.R, s.Colour.G, s.Colour.B}},
			},
		})
		root.AddChild(n)
	}
	return &Scene{Root: root, Creator: "holomesh procedural", Version: 7400}, nil
}

func buildSDF(s Solid) (sdf.SDF3, error) {
	switch s.Kind {
	case SolidSphere:
		return sdf.Sphere3D(s.Size[0])
	case SolidCylinder:
		return sdf.Cylinder3D(s.Size[1], s.Size[0], 0)
	default:
		return sdf.Box3D(v3.Vec{X: s.Size[0], Y: s.Size[1], Z: s.Size[2]}, 0)
	}
}

func meshSolid(s Solid, cells int) (*Geometry, error) {
	solid, err := buildSDF(s)
	if err != nil {
		return nil, err
	}
	triangles := render.ToTriangles(solid, render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, errors.New("empty mesh")
	}

	type key [3]int64
	quant := func(v v3.Vec) key {
		return key{int64(math.Round(v.X * 1e5)), int64(math.Round(v.Y * 1e5)), int64(math.Round(v.Z * 1e5))}
	}
	lookup := make(map[key]int)
	var points, sums []Vector3
	indices := make([]int, 0, len(triangles)*3)
	for _, tri := range triangles {
		n := tri.Normal()
		fn := mathutil.V3(n.X, n.Y, n.Z)
		for j := 0; j < 3; j++ {
			v := tri[j]
			k := quant(v)
			i, ok := lookup[k]
			if !ok {
				i = len(points)
				lookup[k] = i
				points = append(points, mathutil.V3(v.X, v.Y, v.Z))
				sums = append(sums, Vector3{})
			}
			sums[i] = sums[i].Add(fn)
			indices = append(indices, i)
		}
	}

	normals := make([]Vector3, len(sums))
	for i, v := range sums {
		normals[i] = v.Normalize()
	}
	g := NewTriangleGeometry(s.Name+"Mesh", points, indices)
	g.Normals = []NormalElement{{Mapping: ByControlPoint, Reference: Direct, Direct: normals}}
	g.Materials = []MaterialElement{{Mapping: AllSame, Reference: IndexToDirect, Index: []int{0}}}
	return g, nil
}
