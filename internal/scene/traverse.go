package scene

// Traverse walks the hierarchy under root in document order, node before
// children, and calls visit once for every node that bears a mesh. A nil
// root yields no visits.
func Traverse(root *Node, visit func(*Node, *Geometry)) {
	if root == nil {
		return
	}
	if g := root.Mesh(); g != nil {
		visit(root, g)
	}
	for _, c := range root.Children {
		Traverse(c, visit)
	}
}

// Count returns the number of nodes under and including root.
func Count(root *Node) int {
	if root == nil {
		return 0
	}
	n := 1
	for _, c := range root.Children {
		n += Count(c)
	}
	return n
}

// Find returns the first node in document order with the given name.
func Find(root *Node, name string) *Node {
	if root == nil {
		return nil
	}
	if root.Name == name {
		return root
	}
	for _, c := range root.Children {
		if n := Find(c, name); n != nil {
			return n
		}
	}
	return nil
}
