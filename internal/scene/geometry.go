package scene

// MappingMode says how a layer element associates with mesh topology.
type MappingMode int

const (
	MappingNone MappingMode = iota
	ByControlPoint
	ByPolygonVertex
	ByPolygon
	ByEdge
	AllSame
)

func (m MappingMode) String() string {
	switch m {
	case ByControlPoint:
		return "ByControlPoint"
	case ByPolygonVertex:
		return "ByPolygonVertex"
	case ByPolygon:
		return "ByPolygon"
	case ByEdge:
		return "ByEdge"
	case AllSame:
		return "AllSame"
	default:
		return "None"
	}
}

// ReferenceMode says whether element data is stored at the target index
// or behind one extra level of indexing.
type ReferenceMode int

const (
	Direct ReferenceMode = iota
	Index
	IndexToDirect
)

func (r ReferenceMode) String() string {
	switch r {
	case Direct:
		return "Direct"
	case Index:
		return "Index"
	case IndexToDirect:
		return "IndexToDirect"
	default:
		return "Unknown"
	}
}

// NormalElement is one normal channel of a geometry.
type NormalElement struct {
	Mapping   MappingMode
	Reference ReferenceMode
	Direct    []Vector3
	Index     []int
}

// MaterialElement maps polygons to indices into the owning node's
// material list.
type MaterialElement struct {
	Mapping   MappingMode
	Reference ReferenceMode
	Index     []int
}

// Geometry is a polygon mesh. PolygonVertices is the flattened list of
// control point indices, one per polygon corner; PolygonSizes holds the
// corner count of each polygon in order.
type Geometry struct {
	Name            string
	ControlPoints   []Vector3
	PolygonVertices []int
	PolygonSizes    []int
	Normals         []NormalElement
	Materials       []MaterialElement
	Node            *Node
}

// ControlPointCount returns the number of unique positions.
func (g *Geometry) ControlPointCount() int {
	return len(g.ControlPoints)
}

// PolygonCount returns the number of faces.
func (g *Geometry) PolygonCount() int {
	return len(g.PolygonSizes)
}

// PolygonVertexCount returns the length of the flattened corner list.
func (g *Geometry) PolygonVertexCount() int {
	return len(g.PolygonVertices)
}

// IsTriangleMesh reports whether every polygon has three corners.
func (g *Geometry) IsTriangleMesh() bool {
	for _, n := range g.PolygonSizes {
		if n != 3 {
			return false
		}
	}
	return true
}

// ElementNormal returns normal channel i, or nil.
func (g *Geometry) ElementNormal(i int) *NormalElement {
	if i < 0 || i >= len(g.Normals) {
		return nil
	}
	return &g.Normals[i]
}

// ElementMaterial returns material channel 0, or nil when the geometry
// carries no material element.
func (g *Geometry) ElementMaterial() *MaterialElement {
	if len(g.Materials) == 0 {
		return nil
	}
	return &g.Materials[0]
}

// NewTriangleGeometry builds a triangle-only geometry from control points
// and a flat index list whose length is a multiple of three.
func NewTriangleGeometry(name string, points []Vector3, indices []int) *Geometry {
	sizes := make([]int, len(indices)/3)
	for i := range sizes {
		sizes[i] = 3
	}
	return &Geometry{
		Name:            name,
		ControlPoints:   points,
		PolygonVertices: indices,
		PolygonSizes:    sizes,
	}
}
