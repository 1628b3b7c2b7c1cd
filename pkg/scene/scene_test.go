package scene

import (
	"testing"

	"github.com/Faultbox/wowobj/pkg/math"
)

const epsilon = 1e-9

func TestSetParent(t *testing.T) {
	a := NewEmpty("a")
	b := NewEmpty("b")
	c := NewEmpty("c")

	a.AddChild(c)
	if c.Parent != a || len(a.Children) != 1 {
		t.Fatal("expected c under a")
	}

	c.SetParent(b)
	if c.Parent != b {
		t.Error("expected c under b")
	}
	if len(a.Children) != 0 {
		t.Errorf("expected a to lose its child, has %d", len(a.Children))
	}
	if len(b.Children) != 1 {
		t.Errorf("expected b to have 1 child, has %d", len(b.Children))
	}

	// Re-parenting to the same parent is a no-op.
	c.SetParent(b)
	if len(b.Children) != 1 {
		t.Errorf("expected 1 child after no-op, got %d", len(b.Children))
	}

	c.SetParent(nil)
	if c.Parent != nil || len(b.Children) != 0 {
		t.Error("expected c to be detached")
	}
}

func TestDetachKeepsSiblingOrder(t *testing.T) {
	root := NewEmpty("root")
	names := []string{"a", "b", "c", "d"}
	nodes := make([]*Node, len(names))
	for i, name := range names {
		nodes[i] = NewEmpty(name)
		root.AddChild(nodes[i])
	}

	nodes[1].Detach()

	want := []string{"a", "c", "d"}
	if len(root.Children) != len(want) {
		t.Fatalf("expected %d children, got %d", len(want), len(root.Children))
	}
	for i, name := range want {
		if root.Children[i].Name != name {
			t.Errorf("child %d = %q, want %q", i, root.Children[i].Name, name)
		}
	}
}

func TestClone(t *testing.T) {
	mesh := &Mesh{Name: "tree", Positions: [][3]float32{{1, 2, 3}}, Faces: []Face{{Indices: [3]int{0, 0, 0}}}}
	orig := NewMeshNode("tree.obj", mesh)
	orig.Source = "tree.obj"
	orig.Transform.Rotation = math.EulerDegrees(90, 0, 0)
	orig.AddChild(NewEmpty("child"))

	shallow := orig.Clone("tree.obj.001", false)
	if shallow.Mesh != mesh {
		t.Error("expected shallow clone to share its mesh")
	}
	if len(shallow.Children) != 0 || shallow.Parent != nil {
		t.Error("expected clone without children or parent")
	}
	if !shallow.Instance {
		t.Error("expected clone to be marked as instance")
	}
	if shallow.Source != "tree.obj" {
		t.Errorf("expected source to be kept, got %q", shallow.Source)
	}

	deep := orig.Clone("tree.obj.002", true)
	if deep.Mesh == mesh {
		t.Fatal("expected deep clone to copy its mesh")
	}
	deep.Mesh.Positions[0][0] = 99
	if mesh.Positions[0][0] != 1 {
		t.Error("deep clone mutated the original mesh")
	}

	// Transforms are independent.
	shallow.Transform.Location = math.Vec3{X: 5}
	if orig.Transform.Location.X != 0 {
		t.Error("clone transform aliases the original")
	}
}

func TestWorldMatrix(t *testing.T) {
	root := NewEmpty("root")
	root.Transform.Location = math.Vec3{X: 10}

	group := NewEmpty("group")
	group.Transform.Rotation = math.EulerDegrees(0, 0, 90)
	root.AddChild(group)

	leaf := NewEmpty("leaf")
	leaf.Transform.Location = math.Vec3{X: 1}
	group.AddChild(leaf)

	got := leaf.WorldLocation()
	want := math.Vec3{X: 10, Y: 1, Z: 0}
	if !got.ApproxEqual(want, epsilon) {
		t.Errorf("WorldLocation = %+v, want %+v", got, want)
	}
}

func TestWalkAndFind(t *testing.T) {
	root := NewEmpty("root")
	a := NewEmpty("a")
	b := NewEmpty("b")
	a1 := NewEmpty("a1")
	root.AddChild(a)
	root.AddChild(b)
	a.AddChild(a1)

	var order []string
	root.Walk(func(n *Node, _ int) bool {
		order = append(order, n.Name)
		return true
	})
	want := []string{"root", "a", "a1", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("walk order = %v, want %v", order, want)
		}
	}

	var pruned []string
	root.Walk(func(n *Node, _ int) bool {
		pruned = append(pruned, n.Name)
		return n.Name != "a"
	})
	if len(pruned) != 3 {
		t.Errorf("expected a's children to be skipped, got %v", pruned)
	}

	if root.Find("a1") != a1 {
		t.Error("Find(a1) failed")
	}
	if root.Find("missing") != nil {
		t.Error("expected nil for missing node")
	}
}

func TestStats(t *testing.T) {
	mesh := &Mesh{Faces: make([]Face, 3)}
	root := NewMeshNode("root", mesh)
	child := root.Clone("root.001", false)
	group := NewEmpty("group")
	root.AddChild(group)
	group.AddChild(child)

	s := root.Stats()
	if s.Nodes != 3 || s.Meshes != 2 || s.Instances != 1 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.Faces != 6 {
		t.Errorf("expected 6 faces, got %d", s.Faces)
	}
	if s.MaxDepth != 2 {
		t.Errorf("expected depth 2, got %d", s.MaxDepth)
	}
}

func TestFacesByMaterial(t *testing.T) {
	mesh := &Mesh{Faces: []Face{
		{Material: 1},
		{Material: NoMaterial},
		{Material: 0},
		{Material: 1},
	}}

	slots, faces := mesh.FacesByMaterial()
	wantSlots := []int{0, 1, NoMaterial}
	if len(slots) != len(wantSlots) {
		t.Fatalf("slots = %v, want %v", slots, wantSlots)
	}
	for i := range wantSlots {
		if slots[i] != wantSlots[i] {
			t.Fatalf("slots = %v, want %v", slots, wantSlots)
		}
	}
	if len(faces[1]) != 2 || faces[1][0] != 0 || faces[1][1] != 3 {
		t.Errorf("unexpected faces for slot 1: %v", faces[1])
	}
}

func TestMaterialIndex(t *testing.T) {
	mesh := &Mesh{Materials: []*Material{{Name: "bark"}, {Name: "leaf_B2"}}}
	if mesh.MaterialIndex("leaf_B2") != 1 {
		t.Error("expected leaf_B2 at slot 1")
	}
	if mesh.MaterialIndex("leaf") != NoMaterial {
		t.Error("expected leaf to be missing")
	}
}

func TestEnumStrings(t *testing.T) {
	if BlendBlend.String() != "BLEND" || BlendClip.String() != "CLIP" || BlendOpaque.String() != "OPAQUE" {
		t.Error("unexpected blend method names")
	}
	if ExtensionExtend.String() != "EXTEND" || ExtensionClip.String() != "CLIP" || ExtensionRepeat.String() != "REPEAT" {
		t.Error("unexpected extension names")
	}
	if KindMesh.String() != "mesh" || KindEmpty.String() != "empty" {
		t.Error("unexpected kind names")
	}
}
