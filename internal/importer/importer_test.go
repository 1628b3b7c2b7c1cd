package importer

import (
	"io/fs"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/wowobj/internal/config"
	"github.com/Faultbox/wowobj/pkg/math"
	"github.com/Faultbox/wowobj/pkg/scene"
)

func TestImportSingleFile(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"models/box.obj": `v 0 0 0
v 1 0 0
v 0 1 0
v 1 1 0
vn 0 0 1
vn 0 0 1
vn 0 0 1
vn 0 0 1
vt 0 0
vt 1 0
vt2 0.5 0.5
g first
f 1/1/1 2/2/2 3/3/3
f 3 2 1
f 1 1 2
g second
f 2 4 3
f 1 2 9
`,
	}, nil)

	root, err := s.Import("models/box.obj")
	require.NoError(t, err)

	assert.Equal(t, "box.obj", root.Name)
	assert.Equal(t, "models/box.obj", root.Source)
	assert.Equal(t, scene.KindMesh, root.Kind)
	assert.True(t, root.Transform.Rotation.ApproxEqual(math.EulerDegrees(90, 0, 0), 1e-9))

	mesh := root.Mesh
	require.NotNil(t, mesh)
	assert.Len(t, mesh.Positions, 4)
	assert.Len(t, mesh.Normals, 4)
	require.Len(t, mesh.Faces, 2)
	assert.Equal(t, [3]int{0, 1, 2}, mesh.Faces[0].Indices)
	assert.Equal(t, [3]int{1, 3, 2}, mesh.Faces[1].Indices)
	assert.Equal(t, scene.NoMaterial, mesh.Faces[0].Material)

	assert.Equal(t, scene.MeshStats{FaceRecords: 5, Degenerate: 1, Duplicate: 1, OutOfRange: 1}, mesh.Stats)

	require.Len(t, mesh.UVLayers, 2)
	assert.Equal(t, "UVMap", mesh.UVLayers[0].Name)
	assert.Equal(t, "UV2Map", mesh.UVLayers[1].Name)
	assert.Len(t, mesh.UVLayers[1].Coords, 4)
	assert.Equal(t, [2]float32{0.5, 0.5}, mesh.UVLayers[1].Coords[0])
	assert.Equal(t, [2]float32{0, 0}, mesh.UVLayers[1].Coords[3])
	assert.Empty(t, mesh.VertexGroups)

	stats := s.Stats()
	assert.Equal(t, 1, stats.FilesParsed)
	assert.Equal(t, 3, stats.FacesSkipped)
	assert.Equal(t, []*scene.Node{root}, s.Roots())
}

func TestImportWithoutGroups(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"loose.obj": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n",
	}, func(c *config.ImportConfig) { c.CreateVertexGroups = true })

	root, err := s.Import("loose.obj")
	require.NoError(t, err)
	require.Len(t, root.Mesh.Faces, 1)
	require.Len(t, root.Mesh.VertexGroups, 1)
	assert.Equal(t, "default", root.Mesh.VertexGroups[0].Name)
	assert.Equal(t, []int{0, 1, 2}, root.Mesh.VertexGroups[0].Indices)
}

func TestImportMissingFile(t *testing.T) {
	s := newTestSession(t, nil, nil)

	_, err := s.Import("nowhere.obj")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Empty(t, s.Roots())
}

func TestImportRootNames(t *testing.T) {
	s := newTestSession(t, map[string]string{"tri.obj": triangle}, nil)

	first, err := s.Import("tri.obj")
	require.NoError(t, err)
	second, err := s.Import("tri.obj")
	require.NoError(t, err)

	assert.Equal(t, "tri.obj", first.Name)
	assert.Equal(t, "tri.obj.001", second.Name)
	assert.Equal(t, 2, s.Stats().FilesParsed)
}

func TestSessionID(t *testing.T) {
	a := newTestSession(t, nil, nil)
	b := newTestSession(t, nil, nil)

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestImportSkipsPlacementWhenDisabled(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"adt_1_1.obj": triangle,
		"adt_1_1_ModelPlacementInformation.csv": csvTable(tileHeader,
			"tree.obj;0;0;0;0;0;0;0;1;1;m2;"),
		"tree.obj": triangle,
	}, func(c *config.ImportConfig) {
		c.ImportWMO = false
		c.ImportWMOSets = false
		c.ImportM2 = false
		c.ImportGOBJ = false
	})

	root, err := s.Import("adt_1_1.obj")
	require.NoError(t, err)
	assert.Empty(t, root.Children)
	assert.Equal(t, 1, s.Stats().FilesParsed)
}
