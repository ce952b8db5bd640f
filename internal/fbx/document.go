package fbx

import (
	"fmt"
	"strings"
)

// nameSep separates object name and class in binary files.
const nameSep = "\x00\x01"

// RootID is the implicit id of the scene root model.
const RootID int64 = 0

// Object is one record under Objects.
type Object struct {
	ID int64
	// Class is the record name: Model, Geometry, Material, ...
	Class string
	Name  string
	// SubClass is the third property: Mesh, Null, LimbNode, ...
	SubClass string
	Node     *Node
}

// Connection links a child object to a parent object, or to one of the
// parent's properties for OP links.
type Connection struct {
	Kind     string
	Child    int64
	Parent   int64
	Property string
}

// Link is a resolved connection seen from one end.
type Link struct {
	Object   *Object
	Property string
}

// Document is a decoded file indexed by object id.
type Document struct {
	Version     int
	Creator     string
	Objects     map[int64]*Object
	Order       []*Object
	Connections []Connection

	children map[int64][]Link
	parents  map[int64][]Link
}

// SplitName normalises an object name from either "Name\x00\x01Class"
// (binary) or "Class::Name" (ASCII) to the bare name and class.
func SplitName(s string) (name, class string) {
	if i := strings.Index(s, nameSep); i >= 0 {
		return s[:i], s[i+len(nameSep):]
	}
	if i := strings.Index(s, "::"); i >= 0 {
		return s[i+2:], s[:i]
	}
	return s, ""
}

// BuildDocument indexes the Objects and Connections sections of root.
func BuildDocument(root *Node) (*Document, error) {
	d := &Document{
		Version:  Version(root),
		Objects:  make(map[int64]*Object),
		children: make(map[int64][]Link),
		parents:  make(map[int64][]Link),
	}
	if d.Version != 0 && d.Version < 7000 {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.Version)
	}
	d.Creator = root.ChildText("Creator")
	if d.Creator == "" {
		d.Creator = root.Child("FBXHeaderExtension").ChildText("Creator")
	}

	objects := root.Child("Objects")
	if objects == nil {
		return nil, fmt.Errorf("%w: no Objects section", ErrNotFBX)
	}
	for _, n := range objects.Children {
		if len(n.Properties) < 2 {
			continue
		}
		id := n.Prop(0)
		if id.Type == 'S' {
			return nil, fmt.Errorf("%w: object %s has no numeric id", ErrUnsupportedVersion, n.Name)
		}
		name, _ := SplitName(n.Prop(1).Text())
		o := &Object{
			ID:       id.Int(),
			Class:    n.Name,
			Name:     name,
			SubClass: n.Prop(2).Text(),
			Node:     n,
		}
		d.Objects[o.ID] = o
		d.Order = append(d.Order, o)
	}

	for _, c := range root.Child("Connections").ChildrenNamed("C") {
		if len(c.Properties) < 3 {
			continue
		}
		conn := Connection{
			Kind:     c.Prop(0).Text(),
			Child:    c.Prop(1).Int(),
			Parent:   c.Prop(2).Int(),
			Property: c.Prop(3).Text(),
		}
		d.Connections = append(d.Connections, conn)
		child, parent := d.Objects[conn.Child], d.Objects[conn.Parent]
		if child != nil {
			d.children[conn.Parent] = append(d.children[conn.Parent], Link{child, conn.Property})
		}
		if parent != nil {
			d.parents[conn.Child] = append(d.parents[conn.Child], Link{parent, conn.Property})
		}
	}
	return d, nil
}

// Children returns the objects connected below id, in connection order.
func (d *Document) Children(id int64) []Link {
	return d.children[id]
}

// ChildrenOfClass filters Children by record class.
func (d *Document) ChildrenOfClass(id int64, class string) []*Object {
	var out []*Object
	for _, l := range d.children[id] {
		if l.Object.Class == class {
			out = append(out, l.Object)
		}
	}
	return out
}

// Parents returns the objects id is connected to.
func (d *Document) Parents(id int64) []Link {
	return d.parents[id]
}

// IsRootChild reports whether id is connected directly to the scene root.
func (d *Document) IsRootChild(id int64) bool {
	for _, c := range d.Connections {
		if c.Child == id && c.Parent == RootID {
			return true
		}
	}
	return false
}

// ObjectsOfClass returns every object of the given class in file order.
func (d *Document) ObjectsOfClass(class string) []*Object {
	var out []*Object
	for _, o := range d.Order {
		if o.Class == class {
			out = append(out, o)
		}
	}
	return out
}

// P is one row of a Properties70 table.
type P struct {
	Name   string
	Type   string
	Label  string
	Flags  string
	Values []Property
}

// Properties70 reads the typed property table of an object node.
func Properties70(n *Node) []P {
	rows := n.Child("Properties70").ChildrenNamed("P")
	out := make([]P, 0, len(rows))
	for _, r := range rows {
		p := P{
			Name:  r.Prop(0).Text(),
			Type:  r.Prop(1).Text(),
			Label: r.Prop(2).Text(),
			Flags: r.Prop(3).Text(),
		}
		if len(r.Properties) > 4 {
			p.Values = r.Properties[4:]
		}
		out = append(out, p)
	}
	return out
}

// Floats returns the numeric values of the row.
func (p P) Floats() []float64 {
	out := make([]float64, 0, len(p.Values))
	for _, v := range p.Values {
		out = append(out, v.Float())
	}
	return out
}

// Text returns the first value of the row as a string.
func (p P) Text() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0].Text()
}

// FindP looks up a row by name.
func FindP(rows []P, name string) (P, bool) {
	for _, r := range rows {
		if r.Name == name {
			return r, true
		}
	}
	return P{}, false
}
