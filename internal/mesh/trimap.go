package mesh

import "holomesh/internal/scene"

// BuildTriangleMaterialMap returns one material index per polygon of g.
// Geometry without a material element maps every polygon to 0. By-polygon
// data is copied only when its length matches the polygon count; all-same
// data broadcasts its first entry. Anything else leaves the zero map.
func BuildTriangleMaterialMap(g *scene.Geometry) []int {
	if g == nil {
		return nil
	}
	out := make([]int, g.PolygonCount())
	me := g.ElementMaterial()
	if me == nil {
		return out
	}
	switch me.Mapping {
	case scene.ByPolygon:
		if len(me.Index) == len(out) {
			copy(out, me.Index)
		}
	case scene.AllSame:
		if len(me.Index) > 0 {
			for i := range out {
				out[i] = me.Index[0]
			}
		}
	}
	return out
}
