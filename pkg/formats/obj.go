package formats

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Faultbox/wowobj/pkg/encoding"
)

// DefaultGroupName names the implicit group that collects faces declared
// before the first "g" record.
const DefaultGroupName = "default"

// BlendSuffix is inserted between a material name and its blend mode when a
// material is split per blend mode.
const BlendSuffix = "_B"

// BlendVariantName returns the material name used for a blend mode.
func BlendVariantName(material string, mode int) string {
	return material + BlendSuffix + strconv.Itoa(mode)
}

// OBJGroup is a named partition of faces sharing one material.
type OBJGroup struct {
	Name        string
	Material    string           // Normalized, possibly with a blend suffix
	Section     int              // Skin section index (skinned models only)
	Verts       map[int]struct{} // 0-based vertex indices used by the group
	Faces       [][3]int         // 0-based vertex indices
	FaceRecords int              // Face records seen, including malformed ones
}

// OBJ is a parsed wow.export geometry file.
type OBJ struct {
	MaterialLib string
	Vertices    [][3]float32
	Normals     [][3]float32
	UVs         [][][2]float32 // One slice per UV layer
	Groups      []*OBJGroup

	// BlendModes lists, per base material name, the blend modes it was bound
	// with (in encounter order, possibly repeated).
	BlendModes map[string][]int

	// MeshToSkinSection maps group ordinals to skin sections for skinned
	// models.
	MeshToSkinSection map[int]int

	// Skipped counts malformed records.
	Skipped int
}

// OBJOptions controls how material bindings are resolved.
type OBJOptions struct {
	Meta     *ModelMeta // Optional sidecar
	UseAlpha bool       // Split materials per blend mode
}

// FaceCount returns the number of faces across all groups.
func (o *OBJ) FaceCount() int {
	n := 0
	for _, g := range o.Groups {
		n += len(g.Faces)
	}
	return n
}

// ReadOBJ parses the geometry file at path.
func ReadOBJ(path string, opts OBJOptions) (*OBJ, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening geometry %s: %w", path, err)
	}
	defer f.Close()
	return ParseOBJ(f, opts)
}

// ParseOBJ parses a geometry file.
// Unknown records are ignored and malformed records are skipped.
func ParseOBJ(r io.Reader, opts OBJOptions) (*OBJ, error) {
	obj := &OBJ{
		BlendModes:        make(map[string][]int),
		MeshToSkinSection: make(map[int]int),
	}
	skinned := opts.Meta != nil && opts.Meta.FileType == MetaM2

	var cur *OBJGroup
	current := func() *OBJGroup {
		if cur == nil {
			cur = obj.newGroup(DefaultGroupName, skinned)
		}
		return cur
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		if len(fields) == 0 {
			continue
		}
		tag, args := fields[0], fields[1:]

		switch {
		case bytes.Equal(tag, []byte("mtllib")):
			if len(args) < 1 {
				obj.Skipped++
				continue
			}
			obj.MaterialLib = encoding.DecodeToken(args[0])

		case bytes.Equal(tag, []byte("v")):
			v, ok := parseVec3(args)
			if !ok {
				obj.Skipped++
				continue
			}
			obj.Vertices = append(obj.Vertices, v)

		case bytes.Equal(tag, []byte("vn")):
			n, ok := parseVec3(args)
			if !ok {
				obj.Skipped++
				continue
			}
			obj.Normals = append(obj.Normals, n)

		case bytes.HasPrefix(tag, []byte("vt")):
			layer, ok := uvLayerIndex(tag)
			if !ok {
				obj.Skipped++
				continue
			}
			uv, ok := parseVec2(args)
			if !ok {
				obj.Skipped++
				continue
			}
			for len(obj.UVs) <= layer {
				obj.UVs = append(obj.UVs, nil)
			}
			obj.UVs[layer] = append(obj.UVs[layer], uv)

		case bytes.Equal(tag, []byte("f")):
			g := current()
			g.FaceRecords++
			face, ok := parseFace(args)
			if !ok {
				obj.Skipped++
				continue
			}
			g.Faces = append(g.Faces, face)
			for _, idx := range face {
				g.Verts[idx] = struct{}{}
			}

		case bytes.Equal(tag, []byte("g")):
			if len(args) < 1 {
				obj.Skipped++
				continue
			}
			cur = obj.newGroup(encoding.DecodeToken(args[0]), skinned)

		case bytes.Equal(tag, []byte("usemtl")):
			if len(args) < 1 {
				obj.Skipped++
				continue
			}
			g := current()
			name := NormalizeName(encoding.DecodeToken(args[0]))
			if opts.UseAlpha && opts.Meta != nil {
				if mode, ok := opts.Meta.BlendModeFor(g.Section, name); ok {
					obj.BlendModes[name] = append(obj.BlendModes[name], mode)
					name = BlendVariantName(name, mode)
				}
			}
			g.Material = name
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading geometry: %w", err)
	}

	return obj, nil
}

// newGroup appends a group and records its skin section.
func (o *OBJ) newGroup(name string, skinned bool) *OBJGroup {
	ordinal := len(o.Groups)
	g := &OBJGroup{
		Name:    name,
		Section: ordinal,
		Verts:   make(map[int]struct{}),
	}
	if skinned {
		g.Section = SkinSectionForGroup(name, ordinal)
		o.MeshToSkinSection[ordinal] = g.Section
	}
	o.Groups = append(o.Groups, g)
	return g
}

// uvLayerIndex maps "vt" to layer 0 and "vtN" to layer N-1.
func uvLayerIndex(tag []byte) (int, bool) {
	if len(tag) == 2 {
		return 0, true
	}
	n, err := strconv.Atoi(string(tag[2:]))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}

// parseFace reads three face-vertex tokens, keeping the 1-based position
// index before the first slash and converting it to 0-based.
func parseFace(args [][]byte) ([3]int, bool) {
	var face [3]int
	if len(args) < 3 {
		return face, false
	}
	for i := 0; i < 3; i++ {
		token := args[i]
		if slash := bytes.IndexByte(token, '/'); slash >= 0 {
			token = token[:slash]
		}
		idx, err := strconv.Atoi(string(token))
		if err != nil || idx < 1 {
			return face, false
		}
		face[i] = idx - 1
	}
	return face, true
}

func parseVec3(args [][]byte) ([3]float32, bool) {
	var v [3]float32
	if len(args) < 3 {
		return v, false
	}
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(string(args[i]), 32)
		if err != nil {
			return v, false
		}
		v[i] = float32(f)
	}
	return v, true
}

func parseVec2(args [][]byte) ([2]float32, bool) {
	var v [2]float32
	if len(args) < 2 {
		return v, false
	}
	for i := 0; i < 2; i++ {
		f, err := strconv.ParseFloat(string(args[i]), 32)
		if err != nil {
			return v, false
		}
		v[i] = float32(f)
	}
	return v, true
}
