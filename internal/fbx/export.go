package fbx

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"holomesh/internal/scene"
)

// ExportScene writes sc as a binary FBX file: model hierarchy, mesh
// geometry with normal and material layers, materials and textures.
func ExportScene(w io.Writer, sc *scene.Scene, opts EncodeOptions) error {
	root, err := SceneNodes(sc, opts.Version)
	if err != nil {
		return err
	}
	return Encode(w, root, opts)
}

type exporter struct {
	next      int64
	objects   *Node
	conns     *Node
	materials map[*scene.Material]int64
	counts    map[string]int
}

// SceneNodes converts sc to an FBX record tree ready for Encode.
func SceneNodes(sc *scene.Scene, version uint32) (*Node, error) {
	if sc == nil || sc.Root == nil {
		return nil, fmt.Errorf("fbx: export: empty scene")
	}
	if version == 0 {
		version = DefaultVersion
	}
	e := &exporter{
		next:      1000000,
		objects:   NewNode("Objects"),
		conns:     NewNode("Connections"),
		materials: make(map[*scene.Material]int64),
		counts:    make(map[string]int),
	}
	for _, c := range sc.Root.Children {
		e.model(c, RootID)
	}

	creator := sc.Creator
	if creator == "" {
		creator = "holomesh"
	}
	header := NewNode("FBXHeaderExtension").Add(
		NewNode("FBXHeaderVersion", int32(1003)),
		NewNode("FBXVersion", int32(version)),
		NewNode("Creator", creator),
	)
	settings := NewNode("GlobalSettings").Add(
		NewNode("Version", int32(1000)),
		NewNode("Properties70").Add(
			pRow("UpAxis", "int", "Integer", "", int32(1)),
			pRow("UpAxisSign", "int", "Integer", "", int32(1)),
			pRow("UnitScaleFactor", "double", "Number", "", 1.0),
		),
	)
	defs := NewNode("Definitions").Add(NewNode("Version", int32(100)))
	total := 0
	for _, class := range []string{"Model", "Geometry", "Material", "Texture"} {
		if n := e.counts[class]; n > 0 {
			total += n
			defs.Add(NewNode("ObjectType", class).Add(NewNode("Count", int32(n))))
		}
	}
	defs.Add(NewNode("Count", int32(total)))

	root := &Node{Properties: []Property{{'I', int32(version)}}}
	root.Add(header, NewNode("Creator", creator), settings, defs, e.objects, e.conns)
	return root, nil
}

func (e *exporter) id() int64 {
	e.next++
	return e.next
}

func (e *exporter) connect(kind string, child, parent int64, prop string) {
	if kind == "OP" {
		e.conns.Add(NewNode("C", kind, child, parent, prop))
		return
	}
	e.conns.Add(NewNode("C", kind, child, parent))
}

func (e *exporter) model(n *scene.Node, parent int64) {
	id := e.id()
	sub := "Null"
	if n.Mesh() != nil {
		sub = "Mesh"
	}
	t := n.Transform
	m := NewNode("Model", id, n.Name+nameSep+"Model", sub).Add(
		NewNode("Version", int32(232)),
		NewNode("Properties70").Add(
			pRow("Lcl Translation", "Lcl Translation", "", "A", t.Translation[0], t.Translation[1], t.Translation[2]),
			pRow("Lcl Rotation", "Lcl Rotation", "", "A", t.Rotation[0], t.Rotation[1], t.Rotation[2]),
			pRow("Lcl Scaling", "Lcl Scaling", "", "A", t.Scaling[0], t.Scaling[1], t.Scaling[2]),
		),
		NewNode("Shading", true),
		NewNode("Culling", "CullingOff"),
	)
	e.objects.Add(m)
	e.counts["Model"]++
	e.connect("OO", id, parent, "")

	if g := n.Mesh(); g != nil {
		gid := e.id()
		e.objects.Add(geometryNode(gid, g))
		e.counts["Geometry"]++
		e.connect("OO", gid, id, "")
	}
	for _, mat := range n.Materials {
		e.connect("OO", e.material(mat), id, "")
	}
	for _, c := range n.Children {
		e.model(c, id)
	}
}

func (e *exporter) material(m *scene.Material) int64 {
	if id, ok := e.materials[m]; ok {
		return id
	}
	id := e.id()
	e.materials[m] = id

	colour := func(name string, c scene.Colour) *Node {
		return pRow(name, "Color", "", "A", c.R, c.G, c.B)
	}
	props := NewNode("Properties70").Add(
		colour("AmbientColor", m.Ambient),
		colour("DiffuseColor", m.Diffuse),
		colour("EmissiveColor", m.Emissive),
		pRow("Opacity", "double", "Number", "", m.Opacity),
	)
	shading := "lambert"
	if m.Kind == scene.MaterialPhong {
		shading = "phong"
		props.Add(
			colour("SpecularColor", m.Specular),
			pRow("Shininess", "double", "Number", "", m.Shininess),
			pRow("ReflectionFactor", "double", "Number", "", m.Reflectivity),
		)
	}
	e.objects.Add(NewNode("Material", id, m.Name+nameSep+"Material", "").Add(
		NewNode("Version", int32(102)),
		NewNode("ShadingModel", shading),
		NewNode("MultiLayer", int32(0)),
		props,
	))
	e.counts["Material"]++

	for _, prop := range slices.Sorted(maps.Keys(m.Textures)) {
		for _, t := range m.Textures[prop] {
			tid := e.id()
			e.objects.Add(NewNode("Texture", tid, t.Name+nameSep+"Texture", "").Add(
				NewNode("Type", "TextureVideoClip"),
				NewNode("FileName", t.FileName),
				NewNode("RelativeFilename", t.RelativeFileName),
			))
			e.counts["Texture"]++
			e.connect("OP", tid, id, prop)
		}
	}
	return id
}

func geometryNode(id int64, g *scene.Geometry) *Node {
	verts := make([]float64, 0, len(g.ControlPoints)*3)
	for _, p := range g.ControlPoints {
		verts = append(verts, p[0], p[1], p[2])
	}
	pvi := make([]int32, len(g.PolygonVertices))
	at := 0
	for _, size := range g.PolygonSizes {
		for k := 0; k < size && at < len(pvi); k++ {
			v := int32(g.PolygonVertices[at])
			if k == size-1 {
				v = ^v
			}
			pvi[at] = v
			at++
		}
	}

	n := NewNode("Geometry", id, g.Name+nameSep+"Geometry", "Mesh").Add(
		NewNode("Vertices", verts),
		NewNode("PolygonVertexIndex", pvi),
		NewNode("GeometryVersion", int32(124)),
	)
	layer := NewNode("Layer", int32(0)).Add(NewNode("Version", int32(100)))
	for i, ne := range g.Normals {
		flat := make([]float64, 0, len(ne.Direct)*3)
		for _, v := range ne.Direct {
			flat = append(flat, v[0], v[1], v[2])
		}
		le := NewNode("LayerElementNormal", int32(i)).Add(
			NewNode("Version", int32(101)),
			NewNode("Name", ""),
			NewNode("MappingInformationType", mappingName(ne.Mapping)),
			NewNode("ReferenceInformationType", ne.Reference.String()),
			NewNode("Normals", flat),
		)
		if ne.Reference != scene.Direct {
			le.Add(NewNode("NormalsIndex", int32s(ne.Index)))
		}
		n.Add(le)
		if i == 0 {
			layer.Add(layerElement("LayerElementNormal"))
		}
	}
	for i, me := range g.Materials {
		n.Add(NewNode("LayerElementMaterial", int32(i)).Add(
			NewNode("Version", int32(101)),
			NewNode("Name", ""),
			NewNode("MappingInformationType", mappingName(me.Mapping)),
			NewNode("ReferenceInformationType", me.Reference.String()),
			NewNode("Materials", int32s(me.Index)),
		))
		if i == 0 {
			layer.Add(layerElement("LayerElementMaterial"))
		}
	}
	if len(layer.Children) > 1 {
		n.Add(layer)
	}
	return n
}

func layerElement(kind string) *Node {
	return NewNode("LayerElement").Add(
		NewNode("Type", kind),
		NewNode("TypedIndex", int32(0)),
	)
}

func mappingName(m scene.MappingMode) string {
	switch m {
	case scene.ByControlPoint:
		return "ByVertice"
	case scene.MappingNone:
		return "NoMappingInformation"
	}
	return m.String()
}

func int32s(v []int) []int32 {
	out := make([]int32, len(v))
	for i, x := range v {
		out[i] = int32(x)
	}
	return out
}

func pRow(name, typ, label, flags string, values ...any) *Node {
	args := append([]any{name, typ, label, flags}, values...)
	return NewNode("P", args...)
}
