package scene

import (
	"fmt"
	"io"
	"strings"
)

// PrintChildren prints every child of root as a tree. The root itself is
// an anonymous container for imported scenes and is skipped.
func PrintChildren(w io.Writer, root *Node) error {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if err := printNode(w, c, 0); err != nil {
			return err
		}
	}
	return nil
}

// Print prints n and its subtree.
func Print(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	return printNode(w, n, 0)
}

func printNode(w io.Writer, n *Node, depth int) error {
	indent := strings.Repeat("\t", depth)
	t := n.Transform
	if _, err := fmt.Fprintf(w, "%s<node name='%s' translation='%s' rotation='%s' scaling='%s'>\n",
		indent, n.Name, triple(t.Translation), triple(t.Rotation), triple(t.Scaling)); err != nil {
		return err
	}
	for _, a := range n.Attributes {
		if _, err := fmt.Fprintf(w, "%s\t<attribute type='%s' name='%s'/>\n", indent, a.Kind, a.Name); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := printNode(w, c, depth+1); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "%s</node>\n", indent)
	return err
}

func triple(v Vector3) string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}
