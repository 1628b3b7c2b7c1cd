// Package scene provides the in-memory scene tree produced by the importer.
// Nodes carry a local transform, an optional mesh and their children; a
// host (glTF writer, CLI printer) consumes the tree after resolution.
package scene

import (
	"github.com/Faultbox/wowobj/pkg/math"
)

// Kind identifies what a node holds.
type Kind int

const (
	KindEmpty Kind = iota // Grouping node without geometry
	KindMesh              // Node with a mesh
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindMesh {
		return "mesh"
	}
	return "empty"
}

// Transform is a node's local transform. Rotation is applied X, then Y,
// then Z.
type Transform struct {
	Location math.Vec3
	Rotation math.Euler // Radians
	Scale    math.Vec3
}

// IdentityTransform returns a transform with unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: math.Vec3One()}
}

// Matrix returns the local transformation matrix.
func (t Transform) Matrix() math.Mat4 {
	return math.TRS(t.Location, t.Rotation, t.Scale)
}

// Node is an object in the scene tree.
type Node struct {
	Name       string
	Kind       Kind
	Source     string // Geometry file the node was imported from
	Transform  Transform
	Mesh       *Mesh
	Collection string // Doodad set the node belongs to, if any
	Instance   bool   // Cloned from a previously imported node

	Parent   *Node
	Children []*Node
}

// NewEmpty creates a grouping node.
func NewEmpty(name string) *Node {
	return &Node{Name: name, Kind: KindEmpty, Transform: IdentityTransform()}
}

// NewMeshNode creates a node holding a mesh.
func NewMeshNode(name string, mesh *Mesh) *Node {
	return &Node{Name: name, Kind: KindMesh, Mesh: mesh, Transform: IdentityTransform()}
}

// AddChild parents child under n.
func (n *Node) AddChild(child *Node) {
	child.SetParent(n)
}

// SetParent moves n under parent. A nil parent detaches n.
func (n *Node) SetParent(parent *Node) {
	if n.Parent == parent {
		return
	}
	n.Detach()
	if parent == nil {
		return
	}
	n.Parent = parent
	parent.Children = append(parent.Children, n)
}

// Detach removes n from its parent.
func (n *Node) Detach() {
	if n.Parent == nil {
		return
	}
	siblings := n.Parent.Children
	for i, c := range siblings {
		if c == n {
			n.Parent.Children = append(siblings[:i:i], siblings[i+1:]...)
			break
		}
	}
	n.Parent = nil
}

// Clone returns a parentless copy of n without children. With deep set the
// mesh is copied, otherwise it is shared.
func (n *Node) Clone(name string, deep bool) *Node {
	c := &Node{
		Name:      name,
		Kind:      n.Kind,
		Source:    n.Source,
		Transform: n.Transform,
		Mesh:      n.Mesh,
		Instance:  true,
	}
	if deep && n.Mesh != nil {
		c.Mesh = n.Mesh.Copy()
	}
	return c
}

// WorldMatrix returns the node's transform composed with its ancestors'.
func (n *Node) WorldMatrix() math.Mat4 {
	m := n.Transform.Matrix()
	for p := n.Parent; p != nil; p = p.Parent {
		m = p.Transform.Matrix().Mul(m)
	}
	return m
}

// WorldLocation returns the node's origin in world space.
func (n *Node) WorldLocation() math.Vec3 {
	return n.WorldMatrix().Translation()
}

// Walk visits n and its descendants depth first. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	type frame struct {
		node  *Node
		depth int
	}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(f.node, f.depth) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{f.node.Children[i], f.depth + 1})
		}
	}
}

// Find returns the first node named name in n's subtree.
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node, _ int) bool {
		if found != nil {
			return false
		}
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// FindAll returns every node in n's subtree whose source is source.
func (n *Node) FindAll(source string) []*Node {
	var nodes []*Node
	n.Walk(func(node *Node, _ int) bool {
		if node.Source == source {
			nodes = append(nodes, node)
		}
		return true
	})
	return nodes
}

// TreeStats summarizes a subtree.
type TreeStats struct {
	Nodes     int
	Meshes    int
	Instances int
	Faces     int
	MaxDepth  int
}

// Stats walks n's subtree and counts its contents. Faces of shared meshes
// are counted once per node.
func (n *Node) Stats() TreeStats {
	var s TreeStats
	n.Walk(func(node *Node, depth int) bool {
		s.Nodes++
		if node.Kind == KindMesh {
			s.Meshes++
		}
		if node.Instance {
			s.Instances++
		}
		if node.Mesh != nil {
			s.Faces += len(node.Mesh.Faces)
		}
		s.MaxDepth = max(s.MaxDepth, depth)
		return true
	})
	return s
}
