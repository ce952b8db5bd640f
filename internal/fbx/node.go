// Package fbx reads and writes the Autodesk FBX scene format, binary and
// ASCII, and converts documents to and from the scene graph.
package fbx

import (
	"fmt"
	"strings"
)

// Node is one record of an FBX file: a name, a list of typed properties
// and nested records.
type Node struct {
	Name       string
	Properties []Property
	Children   []*Node
}

// NewNode builds a node from Go values. See Prop for the accepted types.
func NewNode(name string, values ...any) *Node {
	n := &Node{Name: name}
	for _, v := range values {
		n.Properties = append(n.Properties, Prop(v))
	}
	return n
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Child returns the first direct child with the given name.
func (n *Node) Child(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildrenNamed returns every direct child with the given name.
func (n *Node) ChildrenNamed(name string) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Prop returns property i, or the zero Property when absent.
func (n *Node) Prop(i int) Property {
	if n == nil || i < 0 || i >= len(n.Properties) {
		return Property{}
	}
	return n.Properties[i]
}

// ChildText returns the first property of the named child as a string.
func (n *Node) ChildText(name string) string {
	return n.Child(name).Prop(0).Text()
}

// Property is a typed FBX value. Type holds the binary type code:
//
//	Y int16, C bool, I int32, L int64, F float32, D float64,
//	S string, R raw bytes, and lower-case f d l i b for arrays.
type Property struct {
	Type  byte
	Value any
}

// Prop wraps a Go value in the matching property type.
func Prop(v any) Property {
	switch x := v.(type) {
	case Property:
		return x
	case bool:
		return Property{'C', x}
	case int16:
		return Property{'Y', x}
	case int32:
		return Property{'I', x}
	case int:
		return Property{'L', int64(x)}
	case int64:
		return Property{'L', x}
	case float32:
		return Property{'F', x}
	case float64:
		return Property{'D', x}
	case string:
		return Property{'S', x}
	case []byte:
		return Property{'R', x}
	case []float32:
		return Property{'f', x}
	case []float64:
		return Property{'d', x}
	case []int64:
		return Property{'l', x}
	case []int32:
		return Property{'i', x}
	case []bool:
		return Property{'b', x}
	default:
		panic(fmt.Sprintf("fbx: unsupported property value %T", v))
	}
}

// IsArray reports whether the property holds an array.
func (p Property) IsArray() bool {
	switch p.Type {
	case 'f', 'd', 'l', 'i', 'b':
		return true
	}
	return false
}

// Int returns the property as an integer, converting from any numeric or
// boolean storage. ASCII files store every integer as a number token, so
// callers should not depend on the exact type code.
func (p Property) Int() int64 {
	switch x := p.Value.(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return int64(x)
	case float64:
		return int64(x)
	case string:
		if x == "T" || x == "Y" {
			return 1
		}
	}
	return 0
}

// Float returns the property as a float64.
func (p Property) Float() float64 {
	switch x := p.Value.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	default:
		return float64(p.Int())
	}
}

// Bool reports whether the property is non-zero.
func (p Property) Bool() bool {
	return p.Int() != 0
}

// Text returns a string property, or "" for other types.
func (p Property) Text() string {
	switch x := p.Value.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	}
	return ""
}

// Floats returns an array property as float64s. Scalars become a single
// element slice.
func (p Property) Floats() []float64 {
	switch x := p.Value.(type) {
	case []float64:
		return x
	case []float32:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out
	case []int32:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out
	case []int64:
		out := make([]float64, len(x))
		for i, v := range x {
			out[i] = float64(v)
		}
		return out
	case nil, string, []byte, []bool:
		return nil
	}
	return []float64{p.Float()}
}

// Ints returns an array property as ints.
func (p Property) Ints() []int {
	switch x := p.Value.(type) {
	case []int32:
		out := make([]int, len(x))
		for i, v := range x {
			out[i] = int(v)
		}
		return out
	case []int64:
		out := make([]int, len(x))
		for i, v := range x {
			out[i] = int(v)
		}
		return out
	case []float64:
		out := make([]int, len(x))
		for i, v := range x {
			out[i] = int(v)
		}
		return out
	case []float32:
		out := make([]int, len(x))
		for i, v := range x {
			out[i] = int(v)
		}
		return out
	case []bool:
		out := make([]int, len(x))
		for i, v := range x {
			if v {
				out[i] = 1
			}
		}
		return out
	case nil, string, []byte:
		return nil
	}
	return []int{int(p.Int())}
}

// Len returns the element count of an array property, or 1 for scalars.
func (p Property) Len() int {
	switch x := p.Value.(type) {
	case []float32:
		return len(x)
	case []float64:
		return len(x)
	case []int32:
		return len(x)
	case []int64:
		return len(x)
	case []bool:
		return len(x)
	case nil:
		return 0
	}
	return 1
}

func (p Property) String() string {
	if p.IsArray() {
		return fmt.Sprintf("*%d", p.Len())
	}
	switch x := p.Value.(type) {
	case string:
		return fmt.Sprintf("%q", strings.ReplaceAll(x, nameSep, "::"))
	case []byte:
		return fmt.Sprintf("<%d bytes>", len(x))
	case nil:
		return "<nil>"
	}
	return fmt.Sprint(p.Value)
}

// Version returns the file version recorded on a decoded root.
func Version(root *Node) int {
	if root == nil {
		return 0
	}
	if v := root.Prop(0).Int(); v != 0 {
		return int(v)
	}
	return int(root.Child("FBXHeaderExtension").Child("FBXVersion").Prop(0).Int())
}
