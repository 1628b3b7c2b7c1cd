// Package export writes resolved scene trees as glTF 2.0.
package export

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/internal/config"
	"github.com/Faultbox/wowobj/internal/logger"
	"github.com/Faultbox/wowobj/pkg/math"
	"github.com/Faultbox/wowobj/pkg/scene"
)

// ErrEmptyScene is returned when there is nothing to export.
var ErrEmptyScene = errors.New("empty scene")

// alphaCutoff is the mask threshold of clipped materials.
const alphaCutoff = 0.5

// yUpFrame turns the scene's Z-up frame into glTF's Y-up frame.
var yUpFrame = math.EulerDegrees(-90, 0, 0).ToQuat()

// Options controls the written document.
type Options struct {
	Binary      bool // Write a single .glb file
	DoubleSided bool // Mark every material double sided
	YUp         bool // Rotate roots into glTF's Y-up frame

	// SourceRoot is the directory texture paths are relative to. When set,
	// Save rewrites image URIs relative to the written file.
	SourceRoot string
}

// OptionsFromConfig returns the export options held in cfg for a scene read
// from sourceRoot.
func OptionsFromConfig(cfg config.ExportConfig, sourceRoot string) Options {
	return Options{
		Binary:      cfg.Binary,
		DoubleSided: cfg.DoubleSided,
		YUp:         cfg.YUp,
		SourceRoot:  sourceRoot,
	}
}

// Exporter converts scene trees to a glTF document. Meshes, materials,
// images and samplers are written once and shared by every node that uses
// them.
type Exporter struct {
	doc    *gltf.Document
	opts   Options
	outDir string // Absolute directory of the written file, if known

	meshes    map[*scene.Mesh]int
	materials map[*scene.Material]int
	images    map[string]int
	samplers  map[scene.Extension]int
	textures  map[textureKey]int
}

type textureKey struct {
	image   int
	sampler int
}

// NewExporter creates an exporter writing into a fresh document.
func NewExporter(opts Options) *Exporter {
	doc := gltf.NewDocument()
	if len(doc.Scenes) == 0 {
		doc.Scenes = append(doc.Scenes, &gltf.Scene{Name: "Root Scene"})
		setIndex(&doc.Scene, 0)
	}

	return &Exporter{
		doc:       doc,
		opts:      opts,
		meshes:    make(map[*scene.Mesh]int),
		materials: make(map[*scene.Material]int),
		images:    make(map[string]int),
		samplers:  make(map[scene.Extension]int),
		textures:  make(map[textureKey]int),
	}
}

// Document builds a document holding roots as top-level scene nodes. Image
// URIs are the texture paths as stored in the scene.
func Document(roots []*scene.Node, opts Options) (*gltf.Document, error) {
	return NewExporter(opts).build(roots)
}

func (e *Exporter) build(roots []*scene.Node) (*gltf.Document, error) {
	if len(roots) == 0 {
		return nil, ErrEmptyScene
	}

	for _, root := range roots {
		e.AddRoot(root)
	}

	logger.Debug("built glTF document",
		zap.Int("nodes", len(e.doc.Nodes)),
		zap.Int("meshes", len(e.doc.Meshes)),
		zap.Int("materials", len(e.doc.Materials)),
		zap.Int("images", len(e.doc.Images)))

	return e.doc, nil
}

// Save writes roots to path. A ".glb" extension forces binary output.
func Save(path string, roots []*scene.Node, opts Options) error {
	e := NewExporter(opts)
	if opts.SourceRoot != "" {
		var err error
		if e.opts.SourceRoot, err = filepath.Abs(opts.SourceRoot); err != nil {
			return fmt.Errorf("resolving source root: %w", err)
		}
		if e.outDir, err = filepath.Abs(filepath.Dir(path)); err != nil {
			return fmt.Errorf("resolving output directory: %w", err)
		}
	}

	doc, err := e.build(roots)
	if err != nil {
		return err
	}

	if opts.Binary || strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		embedBuffers(doc)
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Write encodes roots to w.
func Write(w io.Writer, roots []*scene.Node, opts Options) error {
	doc, err := Document(roots, opts)
	if err != nil {
		return err
	}

	if !opts.Binary {
		embedBuffers(doc)
	}

	enc := gltf.NewEncoder(w)
	enc.AsBinary = opts.Binary
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding glTF: %w", err)
	}
	return nil
}

// embedBuffers stores buffer data inline so a .gltf file stands alone.
func embedBuffers(doc *gltf.Document) {
	for _, b := range doc.Buffers {
		if b.URI == "" && len(b.Data) > 0 {
			b.EmbeddedResource()
		}
	}
}

// AddRoot adds n and its subtree to the default scene.
func (e *Exporter) AddRoot(n *scene.Node) int {
	var frame *math.Quat
	if e.opts.YUp {
		frame = &yUpFrame
	}
	idx := e.addNode(n, frame)
	appendIndex(&e.doc.Scenes[0].Nodes, idx)
	return idx
}

// addNode writes n and its descendants and returns n's node index. A
// non-nil frame is applied on top of n's own transform.
func (e *Exporter) addNode(n *scene.Node, frame *math.Quat) int {
	node := &gltf.Node{Name: n.Name}

	t := n.Transform
	loc, q := t.Location, t.Rotation.ToQuat()
	if frame != nil {
		loc, q = frame.Rotate(loc), frame.Mul(q)
	}
	setVec(node.Translation[:], loc.X, loc.Y, loc.Z)
	setVec(node.Rotation[:], q.X, q.Y, q.Z, q.W)
	setVec(node.Scale[:], t.Scale.X, t.Scale.Y, t.Scale.Z)

	if n.Mesh != nil {
		if mesh, ok := e.mesh(n.Mesh); ok {
			setIndex(&node.Mesh, mesh)
		}
	}

	extras := map[string]any{}
	if n.Source != "" {
		extras["source"] = n.Source
	}
	if n.Collection != "" {
		extras["doodadSet"] = n.Collection
	}
	if len(extras) > 0 {
		node.Extras = extras
	}

	idx := len(e.doc.Nodes)
	e.doc.Nodes = append(e.doc.Nodes, node)

	for _, child := range n.Children {
		appendIndex(&node.Children, e.addNode(child, nil))
	}
	return idx
}

// mesh writes m once and returns its mesh index. Meshes without faces are
// not written.
func (e *Exporter) mesh(m *scene.Mesh) (int, bool) {
	if idx, ok := e.meshes[m]; ok {
		return idx, true
	}
	if len(m.Faces) == 0 || len(m.Positions) == 0 {
		return 0, false
	}

	doc := e.doc
	position := int(modeler.WritePosition(doc, m.Positions))

	normal := -1
	if len(m.Normals) == len(m.Positions) {
		normal = int(modeler.WriteNormal(doc, m.Normals))
	}

	var texcoords []int
	for _, layer := range m.UVLayers {
		// Texture space V points down in glTF.
		coords := make([][2]float32, len(layer.Coords))
		for i, uv := range layer.Coords {
			coords[i] = [2]float32{uv[0], 1 - uv[1]}
		}
		texcoords = append(texcoords, int(modeler.WriteTextureCoord(doc, coords)))
	}

	gm := &gltf.Mesh{Name: m.Name}
	slots, faces := m.FacesByMaterial()
	for _, slot := range slots {
		indices := make([]uint32, 0, len(faces[slot])*3)
		for _, fi := range faces[slot] {
			for _, v := range m.Faces[fi].Indices {
				indices = append(indices, uint32(v))
			}
		}

		prim := &gltf.Primitive{Mode: gltf.PrimitiveTriangles}
		setAttribute(&prim.Attributes, gltf.POSITION, position)
		if normal >= 0 {
			setAttribute(&prim.Attributes, gltf.NORMAL, normal)
		}
		for i, tc := range texcoords {
			setAttribute(&prim.Attributes, fmt.Sprintf("TEXCOORD_%d", i), tc)
		}
		setIndex(&prim.Indices, int(modeler.WriteIndices(doc, indices)))

		if slot != scene.NoMaterial && slot < len(m.Materials) {
			setIndex(&prim.Material, e.material(m.Materials[slot]))
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	idx := len(doc.Meshes)
	doc.Meshes = append(doc.Meshes, gm)
	e.meshes[m] = idx
	return idx, true
}

// material writes mat once and returns its material index.
func (e *Exporter) material(mat *scene.Material) int {
	if idx, ok := e.materials[mat]; ok {
		return idx
	}

	gm := &gltf.Material{
		Name:                 mat.Name,
		DoubleSided:          e.opts.DoubleSided,
		AlphaMode:            gltf.AlphaOpaque,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{},
	}
	setFloat(&gm.PBRMetallicRoughness.MetallicFactor, 0)

	switch {
	case mat.BlendMethod == scene.BlendBlend:
		gm.AlphaMode = gltf.AlphaBlend
	case mat.BlendMethod == scene.BlendClip && mat.AlphaLinked:
		gm.AlphaMode = gltf.AlphaMask
		setFloat(&gm.AlphaCutoff, alphaCutoff)
	}

	if texture := materialTexture(mat); texture != "" {
		info := &gltf.TextureInfo{}
		setInt(&info.Index, e.texture(texture, mat.Extension))
		gm.PBRMetallicRoughness.BaseColorTexture = info

		if mat.Emissive {
			emissive := &gltf.TextureInfo{}
			setInt(&emissive.Index, info.Index)
			gm.EmissiveTexture = emissive
			setVec(gm.EmissiveFactor[:], 1, 1, 1)
		}
	}

	extras := map[string]any{}
	if mat.BlendMode != scene.NoBlendMode {
		extras["blendMode"] = mat.BlendMode
	}
	if mat.Shader != nil {
		extras["pixelShader"] = mat.Shader.PixelShader
		extras["vertexShader"] = mat.Shader.VertexShader
	}
	if len(extras) > 0 {
		gm.Extras = extras
	}

	idx := len(e.doc.Materials)
	e.doc.Materials = append(e.doc.Materials, gm)
	e.materials[mat] = idx
	return idx
}

// materialTexture returns the diffuse texture of mat. Terrain materials use
// their first layer.
func materialTexture(mat *scene.Material) string {
	if mat.Terrain != nil && len(mat.Terrain.Layers) > 0 {
		return mat.Terrain.Layers[0].File
	}
	return mat.Texture
}

// texture writes the image at uri with the sampler for ext, once per pair.
func (e *Exporter) texture(uri string, ext scene.Extension) int {
	key := textureKey{image: e.image(uri), sampler: e.sampler(ext)}
	if idx, ok := e.textures[key]; ok {
		return idx
	}

	tex := &gltf.Texture{}
	setIndex(&tex.Source, key.image)
	setIndex(&tex.Sampler, key.sampler)

	idx := len(e.doc.Textures)
	e.doc.Textures = append(e.doc.Textures, tex)
	e.textures[key] = idx
	return idx
}

func (e *Exporter) image(uri string) int {
	if idx, ok := e.images[uri]; ok {
		return idx
	}
	idx := len(e.doc.Images)
	e.doc.Images = append(e.doc.Images, &gltf.Image{
		Name: strings.TrimSuffix(filepath.Base(uri), filepath.Ext(uri)),
		URI:  e.imageURI(uri),
	})
	e.images[uri] = idx
	return idx
}

// imageURI returns the URI of a texture path. With a source root and an
// output directory the URI is relative to the written file.
func (e *Exporter) imageURI(texture string) string {
	uri := filepath.ToSlash(texture)
	if e.opts.SourceRoot != "" && e.outDir != "" {
		src := filepath.Join(e.opts.SourceRoot, filepath.FromSlash(texture))
		if rel, err := filepath.Rel(e.outDir, src); err == nil {
			uri = filepath.ToSlash(rel)
		} else {
			uri = filepath.ToSlash(src)
		}
	}
	return (&url.URL{Path: uri}).String()
}

func (e *Exporter) sampler(ext scene.Extension) int {
	if idx, ok := e.samplers[ext]; ok {
		return idx
	}

	wrap := gltf.WrapRepeat
	if ext != scene.ExtensionRepeat {
		wrap = gltf.WrapClampToEdge
	}

	idx := len(e.doc.Samplers)
	e.doc.Samplers = append(e.doc.Samplers, &gltf.Sampler{WrapS: wrap, WrapT: wrap})
	e.samplers[ext] = idx
	return idx
}
