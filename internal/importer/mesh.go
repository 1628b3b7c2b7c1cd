package importer

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/Faultbox/wowobj/pkg/encoding"
	"github.com/Faultbox/wowobj/pkg/formats"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// buildMesh turns parsed geometry into a mesh bound to materials.
func (s *Session) buildMesh(name string, obj *formats.OBJ, materials []*scene.Material) *scene.Mesh {
	n := len(obj.Vertices)
	mesh := &scene.Mesh{
		Name:      name,
		Positions: obj.Vertices,
		Materials: materials,
	}
	if len(obj.Normals) == n {
		mesh.Normals = obj.Normals
	}

	seen := make(map[[3]int]struct{})
	for _, g := range obj.Groups {
		slot := mesh.MaterialIndex(g.Material)
		for _, f := range g.Faces {
			mesh.Stats.FaceRecords++

			if f[0] >= n || f[1] >= n || f[2] >= n {
				mesh.Stats.OutOfRange++
				continue
			}
			if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
				mesh.Stats.Degenerate++
				continue
			}
			key := f
			slices.Sort(key[:])
			if _, ok := seen[key]; ok {
				mesh.Stats.Duplicate++
				continue
			}
			seen[key] = struct{}{}

			mesh.Faces = append(mesh.Faces, scene.Face{Indices: f, Material: slot})
		}
	}

	for i, layer := range obj.UVs {
		coords := make([][2]float32, n)
		copy(coords, layer)
		mesh.UVLayers = append(mesh.UVLayers, scene.UVLayer{Name: uvLayerName(i), Coords: coords})
	}

	if s.cfg.CreateVertexGroups {
		mesh.VertexGroups = vertexGroups(obj.Groups, s.cfg.VertexGroupBlendNames)
	}

	return mesh
}

func uvLayerName(i int) string {
	if i == 0 {
		return "UVMap"
	}
	return "UV" + strconv.Itoa(i+1) + "Map"
}

// vertexGroups creates one vertex group per mesh group, ordered by
// case-folded name. Repeated names gain a numeric suffix.
func vertexGroups(groups []*formats.OBJGroup, blendNames bool) []scene.VertexGroup {
	type named struct {
		name  string
		group *formats.OBJGroup
	}

	list := make([]named, 0, len(groups))
	for _, g := range groups {
		name := g.Name
		if blendNames {
			name += blendSuffix(g.Material)
		}
		list = append(list, named{name, g})
	}
	slices.SortStableFunc(list, func(a, b named) int {
		return strings.Compare(encoding.FoldName(a.name), encoding.FoldName(b.name))
	})

	used := make(map[string]int)
	out := make([]scene.VertexGroup, 0, len(list))
	for _, item := range list {
		name := item.name
		if n, ok := used[name]; ok {
			for {
				n++
				candidate := fmt.Sprintf("%s.%03d", name, n)
				if _, taken := used[candidate]; !taken {
					used[name] = n
					name = candidate
					break
				}
			}
		}
		used[name] = 0

		indices := make([]int, 0, len(item.group.Verts))
		for v := range item.group.Verts {
			indices = append(indices, v)
		}
		slices.Sort(indices)
		out = append(out, scene.VertexGroup{Name: name, Indices: indices})
	}
	return out
}

// blendSuffix returns the "_B<mode>" suffix of a blend variant material
// name, or "".
func blendSuffix(material string) string {
	i := strings.LastIndex(material, formats.BlendSuffix)
	if i < 0 {
		return ""
	}
	mode := material[i+len(formats.BlendSuffix):]
	if _, err := strconv.Atoi(mode); err != nil || mode == "" {
		return ""
	}
	return material[i:]
}

