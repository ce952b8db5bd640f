package fbx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"holomesh/internal/mathutil"
	"holomesh/internal/scene"
)

// ImportOptions configures Import.
type ImportOptions struct {
	Logger *slog.Logger
}

func (o ImportOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// Import opens, decodes and converts an FBX file. The file is closed on
// every path. Open and decode failures wrap ErrImportFailure.
func Import(path string, opts ImportOptions) (*scene.Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}
	defer f.Close()

	sc, err := ImportReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("fbx: import %s: %w", path, err)
	}
	sc.Source = path
	return sc, nil
}

// ImportReader decodes r and converts it to a scene graph.
func ImportReader(r io.Reader, opts ImportOptions) (*scene.Scene, error) {
	root, err := Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}
	doc, err := BuildDocument(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrImportFailure, err)
	}
	return Convert(doc, opts), nil
}

type converter struct {
	doc       *Document
	log       *slog.Logger
	nodes     map[int64]*scene.Node
	materials map[int64]*scene.Material
}

// Convert builds a scene graph from an indexed document. Malformed
// geometry is logged and left out; it never fails the conversion.
func Convert(doc *Document, opts ImportOptions) *scene.Scene {
	c := &converter{
		doc:       doc,
		log:       opts.logger(),
		nodes:     make(map[int64]*scene.Node),
		materials: make(map[int64]*scene.Material),
	}
	root := scene.NewNode("RootNode")

	for _, o := range doc.ObjectsOfClass("Material") {
		c.materials[o.ID] = c.material(o)
	}
	models := doc.ObjectsOfClass("Model")
	for _, o := range models {
		c.nodes[o.ID] = c.model(o)
	}

	// Hierarchy follows connection order so children keep document order.
	attached := make(map[int64]bool)
	for _, conn := range doc.Connections {
		n, ok := c.nodes[conn.Child]
		if !ok || attached[conn.Child] || conn.Kind != "OO" {
			continue
		}
		if conn.Parent == RootID {
			root.AddChild(n)
			attached[conn.Child] = true
		} else if p, ok := c.nodes[conn.Parent]; ok {
			p.AddChild(n)
			attached[conn.Child] = true
		}
	}
	for _, o := range models {
		if !attached[o.ID] {
			root.AddChild(c.nodes[o.ID])
		}
	}

	for _, o := range models {
		c.attach(o, c.nodes[o.ID])
	}

	c.log.Debug("fbx: converted document",
		"version", doc.Version,
		"objects", len(doc.Order),
		"models", len(models),
		"materials", len(c.materials))
	return &scene.Scene{Root: root, Creator: doc.Creator, Version: doc.Version}
}

func (c *converter) model(o *Object) *scene.Node {
	n := scene.NewNode(o.Name)
	rows := Properties70(o.Node)
	if v, ok := vec3(rows, "Lcl Translation"); ok {
		n.Transform.Translation = v
	}
	if v, ok := vec3(rows, "Lcl Rotation"); ok {
		n.Transform.Rotation = v
	}
	if v, ok := vec3(rows, "Lcl Scaling"); ok {
		n.Transform.Scaling = v
	}
	return n
}

func vec3(rows []P, name string) (scene.Vector3, bool) {
	p, ok := FindP(rows, name)
	if !ok || len(p.Values) < 3 {
		return scene.Vector3{}, false
	}
	f := p.Floats()
	return mathutil.V3(f[0], f[1], f[2]), true
}

// attach wires geometry, node attributes and materials onto n.
func (c *converter) attach(o *Object, n *scene.Node) {
	for _, l := range c.doc.Children(o.ID) {
		child := l.Object
		switch child.Class {
		case "Geometry":
			if child.SubClass != "Mesh" {
				n.Attributes = append(n.Attributes, scene.Attribute{Kind: attributeKind(child.SubClass), Name: child.Name})
				continue
			}
			g, err := geometry(child)
			if err != nil {
				c.log.Warn("fbx: skipping geometry", "node", n.Name, "geometry", child.Name, "err", err)
				continue
			}
			n.AddGeometry(g)
		case "NodeAttribute":
			n.Attributes = append(n.Attributes, scene.Attribute{Kind: attributeKind(child.SubClass), Name: child.Name})
		case "Material":
			if m := c.materials[child.ID]; m != nil {
				n.Materials = append(n.Materials, m)
			}
		}
	}
	if len(n.Attributes) == 0 && o.SubClass != "" && o.SubClass != "Mesh" {
		if k := attributeKind(o.SubClass); k != scene.AttrUnknown {
			n.Attributes = append(n.Attributes, scene.Attribute{Kind: k, Name: n.Name})
		}
	}
}

func attributeKind(sub string) scene.AttributeKind {
	switch sub {
	case "Null":
		return scene.AttrNull
	case "Marker":
		return scene.AttrMarker
	case "LimbNode", "Limb", "Root":
		return scene.AttrSkeleton
	case "Mesh":
		return scene.AttrMesh
	case "Nurb", "Nurbs":
		return scene.AttrNurbs
	case "Patch":
		return scene.AttrPatch
	case "Camera":
		return scene.AttrCamera
	case "CameraStereo":
		return scene.AttrCameraStereo
	case "CameraSwitcher":
		return scene.AttrCameraSwitcher
	case "Light":
		return scene.AttrLight
	case "OpticalReference":
		return scene.AttrOpticalReference
	case "OpticalMarker":
		return scene.AttrOpticalMarker
	case "NurbsCurve":
		return scene.AttrNurbsCurve
	case "TrimNurbsSurface":
		return scene.AttrTrimNurbsSurface
	case "Boundary":
		return scene.AttrBoundary
	case "NurbsSurface":
		return scene.AttrNurbsSurface
	case "Shape":
		return scene.AttrShape
	case "LodGroup", "LODGroup":
		return scene.AttrLODGroup
	case "SubDiv":
		return scene.AttrSubDiv
	}
	return scene.AttrUnknown
}

func geometry(o *Object) (*scene.Geometry, error) {
	n := o.Node
	verts := n.Child("Vertices").Prop(0).Floats()
	if len(verts)%3 != 0 {
		return nil, fmt.Errorf("vertex array length %d is not a multiple of 3", len(verts))
	}
	g := &scene.Geometry{Name: o.Name, ControlPoints: make([]scene.Vector3, len(verts)/3)}
	for i := range g.ControlPoints {
		g.ControlPoints[i] = mathutil.V3(verts[i*3], verts[i*3+1], verts[i*3+2])
	}

	size := 0
	for _, idx := range n.Child("PolygonVertexIndex").Prop(0).Ints() {
		size++
		if idx < 0 {
			idx = ^idx
			g.PolygonSizes = append(g.PolygonSizes, size)
			size = 0
		}
		if idx >= len(g.ControlPoints) {
			return nil, fmt.Errorf("polygon vertex %d references control point %d of %d",
				len(g.PolygonVertices), idx, len(g.ControlPoints))
		}
		g.PolygonVertices = append(g.PolygonVertices, idx)
	}
	if size > 0 {
		g.PolygonSizes = append(g.PolygonSizes, size)
	}

	for _, le := range n.ChildrenNamed("LayerElementNormal") {
		flat := le.Child("Normals").Prop(0).Floats()
		ne := scene.NormalElement{
			Mapping:   mappingMode(le.ChildText("MappingInformationType")),
			Reference: referenceMode(le.ChildText("ReferenceInformationType")),
			Direct:    make([]scene.Vector3, len(flat)/3),
		}
		for i := range ne.Direct {
			ne.Direct[i] = mathutil.V3(flat[i*3], flat[i*3+1], flat[i*3+2])
		}
		idx := le.Child("NormalsIndex")
		if idx == nil {
			idx = le.Child("NormalIndex")
		}
		ne.Index = idx.Prop(0).Ints()
		g.Normals = append(g.Normals, ne)
	}
	for _, le := range n.ChildrenNamed("LayerElementMaterial") {
		g.Materials = append(g.Materials, scene.MaterialElement{
			Mapping:   mappingMode(le.ChildText("MappingInformationType")),
			Reference: referenceMode(le.ChildText("ReferenceInformationType")),
			Index:     le.Child("Materials").Prop(0).Ints(),
		})
	}
	return g, nil
}

func mappingMode(s string) scene.MappingMode {
	switch s {
	case "ByVertice", "ByVertex", "ByControlPoint":
		return scene.ByControlPoint
	case "ByPolygonVertex":
		return scene.ByPolygonVertex
	case "ByPolygon":
		return scene.ByPolygon
	case "ByEdge":
		return scene.ByEdge
	case "AllSame":
		return scene.AllSame
	}
	return scene.MappingNone
}

func referenceMode(s string) scene.ReferenceMode {
	switch s {
	case "Index":
		return scene.Index
	case "IndexToDirect":
		return scene.IndexToDirect
	}
	return scene.Direct
}

func (c *converter) material(o *Object) *scene.Material {
	m := &scene.Material{
		Name:         o.Name,
		ShadingModel: o.Node.ChildText("ShadingModel"),
		Ambient:      scene.DefaultColour,
		Diffuse:      scene.DefaultColour,
		Specular:     scene.DefaultColour,
		Emissive:     scene.DefaultColour,
		Opacity:      1,
	}
	m.Kind = scene.KindFromShadingModel(m.ShadingModel)

	for _, row := range Properties70(o.Node) {
		p := scene.Property{Name: row.Name, Type: propertyType(row.Type)}
		if p.Type == scene.PropString {
			p.Text = row.Text()
		} else {
			p.Values = row.Floats()
		}
		m.Properties = append(m.Properties, p)
	}

	colour := func(name string) scene.Colour {
		if p, ok := m.Property(name); ok {
			if c, ok := p.Colour(); ok {
				return c
			}
		}
		return scene.DefaultColour
	}
	scalar := func(def float64, names ...string) float64 {
		for _, name := range names {
			if p, ok := m.Property(name); ok {
				return p.Scalar(def)
			}
		}
		return def
	}
	switch m.Kind {
	case scene.MaterialPhong:
		m.Specular = colour("SpecularColor")
		m.Shininess = scalar(0, "Shininess", "ShininessExponent")
		m.Reflectivity = scalar(0, "ReflectionFactor")
		fallthrough
	case scene.MaterialLambert:
		m.Ambient = colour("AmbientColor")
		m.Diffuse = colour("DiffuseColor")
		m.Emissive = colour("EmissiveColor")
		m.Opacity = scalar(1, "Opacity")
	}

	for _, l := range c.doc.Children(o.ID) {
		switch l.Object.Class {
		case "Texture", "LayeredTexture", "ProceduralTexture":
			m.BindTexture(l.Property, texture(l.Object))
		case "Implementation":
			m.Implementation = c.implementation(l.Object)
			m.Kind = scene.MaterialHardwareShader
		}
	}
	return m
}

func propertyType(t string) scene.PropertyType {
	switch strings.ToLower(t) {
	case "bool":
		return scene.PropBool
	case "int", "integer":
		return scene.PropInt
	case "enum":
		return scene.PropEnum
	case "float":
		return scene.PropFloat
	case "double", "number", "fieldofview", "intensity":
		return scene.PropDouble
	case "kstring", "string", "url", "xrefurl", "datetime":
		return scene.PropString
	case "vector2d", "vector2":
		return scene.PropVector2
	case "vector3d", "vector", "lcl translation", "lcl rotation", "lcl scaling":
		return scene.PropVector3
	case "color", "colorrgb":
		return scene.PropColor3
	case "vector4d", "vector4":
		return scene.PropVector4
	case "colorandalpha", "colorrgba":
		return scene.PropColor4
	case "matrix", "fbxmatrix", "matrix4x4":
		return scene.PropMatrix4x4
	}
	return scene.PropUnknown
}

func texture(o *Object) *scene.Texture {
	t := &scene.Texture{
		Name:             o.Name,
		FileName:         o.Node.ChildText("FileName"),
		RelativeFileName: o.Node.ChildText("RelativeFilename"),
	}
	switch o.Class {
	case "LayeredTexture":
		t.Kind = scene.TextureLayered
	case "ProceduralTexture":
		t.Kind = scene.TextureProcedural
	}
	return t
}

var implementationRows = map[string]bool{
	"ShaderLanguage":        true,
	"ShaderLanguageVersion": true,
	"RenderAPI":             true,
	"RenderAPIVersion":      true,
	"RootBindingName":       true,
	"Constants":             true,
}

func (c *converter) implementation(o *Object) *scene.Implementation {
	rows := Properties70(o.Node)
	im := &scene.Implementation{}
	if p, ok := FindP(rows, "ShaderLanguage"); ok {
		im.Language = p.Text()
	}
	for _, row := range rows {
		if implementationRows[row.Name] {
			continue
		}
		p := scene.Property{Name: row.Name, Type: propertyType(row.Type)}
		if p.Type == scene.PropString {
			p.Text = row.Text()
		} else {
			p.Values = row.Floats()
		}
		im.Constants = append(im.Constants, p)
	}

	if tables := c.doc.ChildrenOfClass(o.ID, "BindingTable"); len(tables) > 0 {
		bt := tables[0]
		btRows := Properties70(bt.Node)
		if p, ok := FindP(btRows, "DescAbsoluteURL"); ok {
			im.URL = p.Text()
		}
		if p, ok := FindP(btRows, "DescTAG"); ok {
			im.Technique = p.Text()
		}
		for _, e := range bt.Node.ChildrenNamed("Entry") {
			entry := scene.BindingEntry{
				Source:      e.Prop(0).Text(),
				Destination: e.Prop(2).Text(),
			}
			switch e.Prop(1).Text() {
			case "FbxConstantEntry":
				entry.Kind = scene.EntryConstant
			case "FbxSemanticEntry":
				entry.Kind = scene.EntrySemantic
			}
			im.Entries = append(im.Entries, entry)
		}
	}
	return im
}
