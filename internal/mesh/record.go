package mesh

import (
	"math"

	"holomesh/internal/mathutil"
)

// Record is the renderer-agnostic output of Build. Positions, Normals and
// Colors hold one entry per control point; Indices lists triangle corners.
// A Record is not modified after Build returns.
type Record struct {
	Name      string
	Positions [][4]float32
	Normals   [][3]float32
	Colors    [][4]float32
	Indices   []uint16
}

// VertexCount returns the number of control points.
func (r *Record) VertexCount() int {
	return len(r.Positions)
}

// TriangleCount returns the number of index triples.
func (r *Record) TriangleCount() int {
	return len(r.Indices) / 3
}

// Bounds returns the axis-aligned box around all positions. An empty
// record returns two zero vectors.
func (r *Record) Bounds() (lo, hi mathutil.Vec3) {
	if len(r.Positions) == 0 {
		return
	}
	lo = mathutil.V3(math.Inf(1), math.Inf(1), math.Inf(1))
	hi = mathutil.V3(math.Inf(-1), math.Inf(-1), math.Inf(-1))
	for _, p := range r.Positions {
		for k := 0; k < 3; k++ {
			v := float64(p[k])
			lo[k] = math.Min(lo[k], v)
			hi[k] = math.Max(hi[k], v)
		}
	}
	return lo, hi
}

// FlatPositions returns positions as a packed float slice, 4 per vertex.
func (r *Record) FlatPositions() []float32 {
	out := make([]float32, 0, len(r.Positions)*4)
	for _, p := range r.Positions {
		out = append(out, p[:]...)
	}
	return out
}

// FlatNormals returns normals packed 3 per vertex.
func (r *Record) FlatNormals() []float32 {
	out := make([]float32, 0, len(r.Normals)*3)
	for _, n := range r.Normals {
		out = append(out, n[:]...)
	}
	return out
}

// FlatColors returns colours packed 4 per vertex.
func (r *Record) FlatColors() []float32 {
	out := make([]float32, 0, len(r.Colors)*4)
	for _, c := range r.Colors {
		out = append(out, c[:]...)
	}
	return out
}
