package mesh

import (
	"fmt"

	"holomesh/internal/scene"
)

// ResolveNormal looks up the normal for a corner of g from normal channel
// 0. By-control-point data is keyed by cp, by-polygon-vertex data by pv.
func ResolveNormal(g *scene.Geometry, cp, pv int) (scene.Vector3, error) {
	if g == nil || len(g.Normals) == 0 {
		return scene.Vector3{}, ErrUnsupportedGeometry
	}
	ne := &g.Normals[0]

	var key int
	switch ne.Mapping {
	case scene.ByControlPoint:
		key = cp
	case scene.ByPolygonVertex:
		key = pv
	default:
		return scene.Vector3{}, fmt.Errorf("%w: %s", ErrUnsupportedMappingMode, ne.Mapping)
	}

	switch ne.Reference {
	case scene.Direct:
	case scene.IndexToDirect:
		if key < 0 || key >= len(ne.Index) {
			return scene.Vector3{}, fmt.Errorf("%w: %d of %d indices", ErrNormalIndex, key, len(ne.Index))
		}
		key = ne.Index[key]
	default:
		return scene.Vector3{}, fmt.Errorf("%w: %s", ErrUnsupportedReferenceMode, ne.Reference)
	}
	if key < 0 || key >= len(ne.Direct) {
		return scene.Vector3{}, fmt.Errorf("%w: %d of %d normals", ErrNormalIndex, key, len(ne.Direct))
	}
	return ne.Direct[key], nil
}
