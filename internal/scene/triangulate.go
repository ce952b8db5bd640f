package scene

// Triangulate returns a copy of g in which every polygon is split into a
// triangle fan around its first corner. Polygons with fewer than three
// corners are dropped. Per-polygon material indices are repeated for each
// resulting triangle and per-polygon-vertex normals follow their corners.
// Element data whose length does not match the topology is carried over
// unchanged. g itself is not modified.
func Triangulate(g *Geometry) *Geometry {
	if g == nil {
		return nil
	}
	out := &Geometry{
		Name:          g.Name,
		ControlPoints: g.ControlPoints,
		Node:          g.Node,
	}

	// corners[i] is the source polygon-vertex index of output corner i;
	// polys[t] is the source polygon of output triangle t.
	var corners, polys []int
	start := 0
	for p, size := range g.PolygonSizes {
		for k := 1; k+1 < size; k++ {
			corners = append(corners, start, start+k, start+k+1)
			polys = append(polys, p)
		}
		start += size
	}
	out.PolygonVertices = make([]int, len(corners))
	for i, c := range corners {
		out.PolygonVertices[i] = g.PolygonVertices[c]
	}
	out.PolygonSizes = make([]int, len(polys))
	for i := range out.PolygonSizes {
		out.PolygonSizes[i] = 3
	}

	for _, ne := range g.Normals {
		out.Normals = append(out.Normals, remapNormals(ne, g, corners, polys))
	}
	for _, me := range g.Materials {
		out.Materials = append(out.Materials, remapMaterials(me, g, polys))
	}
	return out
}

func remapNormals(ne NormalElement, g *Geometry, corners, polys []int) NormalElement {
	var keys []int
	var want int
	switch ne.Mapping {
	case ByPolygonVertex:
		keys, want = corners, g.PolygonVertexCount()
	case ByPolygon:
		keys, want = polys, g.PolygonCount()
	default:
		return ne
	}

	out := NormalElement{Mapping: ByPolygonVertex, Reference: ne.Reference, Direct: ne.Direct}
	if ne.Mapping == ByPolygon {
		// Expand to one entry per triangle corner.
		expanded := make([]int, 0, len(keys)*3)
		for _, p := range keys {
			expanded = append(expanded, p, p, p)
		}
		keys = expanded
	}
	switch ne.Reference {
	case Direct:
		if len(ne.Direct) != want {
			return ne
		}
		out.Direct = make([]Vector3, len(keys))
		for i, k := range keys {
			out.Direct[i] = ne.Direct[k]
		}
	case IndexToDirect, Index:
		if len(ne.Index) != want {
			return ne
		}
		out.Index = make([]int, len(keys))
		for i, k := range keys {
			out.Index[i] = ne.Index[k]
		}
	}
	return out
}

func remapMaterials(me MaterialElement, g *Geometry, polys []int) MaterialElement {
	if me.Mapping != ByPolygon || len(me.Index) != g.PolygonCount() {
		return me
	}
	out := MaterialElement{Mapping: ByPolygon, Reference: me.Reference, Index: make([]int, len(polys))}
	for t, p := range polys {
		out.Index[t] = me.Index[p]
	}
	return out
}
