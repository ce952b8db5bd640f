package mesh

import (
	"fmt"
	"log/slog"
	"math"

	"holomesh/internal/mathutil"
	"holomesh/internal/scene"
)

// BuildOptions configures Build.
type BuildOptions struct {
	// BakeTransform, when set, is applied to positions, and its normal
	// matrix to normals.
	BakeTransform *mathutil.Mat4
	Logger        *slog.Logger
}

// Build converts one geometry into a Record.
//
// Normals are resolved with the control point index passed as both the
// control point and the polygon-vertex key. That is exact for
// by-control-point normals and for by-polygon-vertex data whose corners
// line up one to one with control points; other layouts get the normal
// stored at the aliased corner.
//
// Each control point takes the diffuse colour of the material of the
// first polygon that references it, or material 0 if none does.
//
// g must be a triangle mesh; other polygon sizes are rejected.
func Build(g *scene.Geometry, opts BuildOptions) (*Record, error) {
	if g == nil {
		return nil, ErrUnsupportedGeometry
	}
	if !g.IsTriangleMesh() {
		return nil, fmt.Errorf("%w: %s has non-triangle polygons", ErrUnsupportedGeometry, g.Name)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	n := g.ControlPointCount()
	r := &Record{
		Name:      g.Name,
		Positions: make([][4]float32, n),
		Normals:   make([][3]float32, n),
		Colors:    make([][4]float32, n),
		Indices:   make([]uint16, len(g.PolygonVertices)),
	}

	var normalMat mathutil.Mat3
	if opts.BakeTransform != nil {
		normalMat = opts.BakeTransform.NormalMatrix()
	}
	for i, p := range g.ControlPoints {
		if opts.BakeTransform != nil {
			p = opts.BakeTransform.MulPoint(p)
		}
		r.Positions[i] = [4]float32{float32(p[0]), float32(p[1]), float32(p[2]), 1}

		nv, err := ResolveNormal(g, i, i)
		if err != nil {
			return nil, fmt.Errorf("mesh: %s control point %d: %w", g.Name, i, err)
		}
		if opts.BakeTransform != nil {
			nv = normalMat.MulVec3(nv).Normalize()
		}
		r.Normals[i] = nv.Float32()
	}

	for k, v := range g.PolygonVertices {
		if v > math.MaxUint16 {
			return nil, fmt.Errorf("mesh: %s index %d is %d: %w", g.Name, k, v, ErrIndexOverflow)
		}
		if v < 0 || v >= n {
			return nil, fmt.Errorf("mesh: %s index %d is %d of %d control points: %w", g.Name, k, v, n, ErrIndexOutOfRange)
		}
		r.Indices[k] = uint16(v)
	}

	materials := BuildTriangleMaterialMap(g)
	owner := firstPolygon(g, n)
	cache := make(map[int][4]float32)
	for i := range r.Colors {
		m := 0
		if p := owner[i]; p >= 0 && p < len(materials) {
			m = materials[p]
		}
		c, ok := cache[m]
		if !ok {
			c = SampleDiffuse(g.Node, m).Float32()
			cache[m] = c
		}
		r.Colors[i] = c
	}

	logger.Debug("mesh: built",
		"geometry", g.Name,
		"vertices", r.VertexCount(),
		"triangles", r.TriangleCount(),
		"materials", len(cache))
	return r, nil
}

// firstPolygon maps each control point to the first polygon that uses it,
// or -1.
func firstPolygon(g *scene.Geometry, n int) []int {
	owner := make([]int, n)
	for i := range owner {
		owner[i] = -1
	}
	k := 0
	for p, size := range g.PolygonSizes {
		for j := 0; j < size && k < len(g.PolygonVertices); j++ {
			if v := g.PolygonVertices[k]; v >= 0 && v < n && owner[v] < 0 {
				owner[v] = p
			}
			k++
		}
	}
	return owner
}
