package scene

import "holomesh/internal/mathutil"

// Vector3 is a plain three-double value.
type Vector3 = mathutil.Vec3

// AttributeKind tags the node attribute variants a scene can carry.
type AttributeKind int

const (
	AttrUnknown AttributeKind = iota
	AttrNull
	AttrMarker
	AttrSkeleton
	AttrMesh
	AttrNurbs
	AttrPatch
	AttrCamera
	AttrCameraStereo
	AttrCameraSwitcher
	AttrLight
	AttrOpticalReference
	AttrOpticalMarker
	AttrNurbsCurve
	AttrTrimNurbsSurface
	AttrBoundary
	AttrNurbsSurface
	AttrShape
	AttrLODGroup
	AttrSubDiv
)

func (k AttributeKind) String() string {
	switch k {
	case AttrNull:
		return "null"
	case AttrMarker, AttrOpticalMarker:
		return "marker"
	case AttrSkeleton:
		return "skeleton"
	case AttrMesh:
		return "mesh"
	case AttrNurbs:
		return "nurbs"
	case AttrPatch:
		return "patch"
	case AttrCamera:
		return "camera"
	case AttrCameraStereo:
		return "stereo"
	case AttrCameraSwitcher:
		return "camera switcher"
	case AttrLight:
		return "light"
	case AttrOpticalReference:
		return "optical reference"
	case AttrNurbsCurve:
		return "nurbs curve"
	case AttrTrimNurbsSurface:
		return "trim nurbs surface"
	case AttrBoundary:
		return "boundary"
	case AttrNurbsSurface:
		return "nurbs surface"
	case AttrShape:
		return "shape"
	case AttrLODGroup:
		return "lodgroup"
	case AttrSubDiv:
		return "subdiv"
	default:
		return "unidentified"
	}
}

// Attribute is one typed attribute attached to a node. Geometry is set
// only for AttrMesh.
type Attribute struct {
	Kind     AttributeKind
	Name     string
	Geometry *Geometry
}

// Transform holds a node's local translation, Euler XYZ rotation in
// degrees and scale.
type Transform struct {
	Translation Vector3
	Rotation    Vector3
	Scaling     Vector3
}

// IdentityTransform has unit scale and no translation or rotation.
var IdentityTransform = Transform{Scaling: Vector3{1, 1, 1}}

// Node is one element of the scene hierarchy.
type Node struct {
	Name       string
	Transform  Transform
	Attributes []Attribute
	Children   []*Node
	Materials  []*Material
	Parent     *Node
}

// NewNode returns a named node with an identity transform.
func NewNode(name string) *Node {
	return &Node{Name: name, Transform: IdentityTransform}
}

// AddChild appends c to n's children in document order.
func (n *Node) AddChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// AddGeometry attaches g as a mesh attribute and points it back at n.
func (n *Node) AddGeometry(g *Geometry) {
	g.Node = n
	n.Attributes = append(n.Attributes, Attribute{Kind: AttrMesh, Name: g.Name, Geometry: g})
}

// Mesh returns the node's first mesh geometry, or nil.
func (n *Node) Mesh() *Geometry {
	if n == nil {
		return nil
	}
	for _, a := range n.Attributes {
		if a.Kind == AttrMesh && a.Geometry != nil {
			return a.Geometry
		}
	}
	return nil
}

// Material returns the material at index i, or nil when out of range.
func (n *Node) Material(i int) *Material {
	if n == nil || i < 0 || i >= len(n.Materials) {
		return nil
	}
	return n.Materials[i]
}

// LocalMatrix composes the node's local transform.
func (n *Node) LocalMatrix() mathutil.Mat4 {
	t := n.Transform
	return mathutil.TRS(t.Translation, t.Rotation, t.Scaling)
}

// GlobalMatrix chains local matrices from the root down to n.
func (n *Node) GlobalMatrix() mathutil.Mat4 {
	m := n.LocalMatrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = mathutil.Mat4Mul(p.LocalMatrix(), m)
	}
	return m
}

// Scene is an imported scene graph. Root carries no geometry of its own
// for imported files.
type Scene struct {
	Root    *Node
	Creator string
	Version int
	Source  string
}
