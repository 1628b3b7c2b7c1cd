package scene

import "slices"

// NoMaterial marks a face without a material slot.
const NoMaterial = -1

// Face is a triangle referencing vertex indices.
type Face struct {
	Indices  [3]int
	Material int // Index into Mesh.Materials, or NoMaterial
}

// UVLayer is a per-vertex texture coordinate layer.
type UVLayer struct {
	Name   string
	Coords [][2]float32
}

// VertexGroup names a set of vertices.
type VertexGroup struct {
	Name    string
	Indices []int // Sorted
}

// MeshStats counts faces dropped while building a mesh.
type MeshStats struct {
	FaceRecords int // Faces offered to the builder
	Degenerate  int // Faces repeating a vertex
	Duplicate   int // Faces repeating an earlier face's vertex set
	OutOfRange  int // Faces referencing a missing vertex
}

// Skipped returns the number of dropped faces.
func (s MeshStats) Skipped() int {
	return s.Degenerate + s.Duplicate + s.OutOfRange
}

// Mesh is triangle geometry with its material slots.
type Mesh struct {
	Name         string
	Positions    [][3]float32
	Normals      [][3]float32
	UVLayers     []UVLayer
	Faces        []Face
	Materials    []*Material
	VertexGroups []VertexGroup
	Stats        MeshStats
}

// Copy returns a deep copy of the mesh geometry. Materials are shared.
func (m *Mesh) Copy() *Mesh {
	c := &Mesh{
		Name:      m.Name,
		Positions: slices.Clone(m.Positions),
		Normals:   slices.Clone(m.Normals),
		Faces:     slices.Clone(m.Faces),
		Materials: slices.Clone(m.Materials),
		Stats:     m.Stats,
	}
	for _, l := range m.UVLayers {
		c.UVLayers = append(c.UVLayers, UVLayer{Name: l.Name, Coords: slices.Clone(l.Coords)})
	}
	for _, g := range m.VertexGroups {
		c.VertexGroups = append(c.VertexGroups, VertexGroup{Name: g.Name, Indices: slices.Clone(g.Indices)})
	}
	return c
}

// MaterialIndex returns the slot of the named material, or NoMaterial.
func (m *Mesh) MaterialIndex(name string) int {
	for i, mat := range m.Materials {
		if mat.Name == name {
			return i
		}
	}
	return NoMaterial
}

// FacesByMaterial partitions face indices per material slot, in slot order.
// Faces without a material come last under NoMaterial.
func (m *Mesh) FacesByMaterial() (slots []int, faces map[int][]int) {
	faces = make(map[int][]int)
	for i, f := range m.Faces {
		if _, ok := faces[f.Material]; !ok {
			slots = append(slots, f.Material)
		}
		faces[f.Material] = append(faces[f.Material], i)
	}
	slices.SortFunc(slots, func(a, b int) int {
		switch {
		case a == b:
			return 0
		case a == NoMaterial:
			return 1
		case b == NoMaterial:
			return -1
		}
		return a - b
	})
	return slots, faces
}
