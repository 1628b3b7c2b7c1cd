package importer

import (
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/wowobj/pkg/encoding"
	"github.com/Faultbox/wowobj/pkg/formats"
	"github.com/Faultbox/wowobj/pkg/scene"
)

const (
	terrainPrefix        = "adt_"
	terrainTexturePrefix = "tex_"
)

// materialBuild carries what every material of one file needs.
type materialBuild struct {
	dir       string
	obj       *formats.OBJ
	meta      *formats.ModelMeta
	used      map[string]struct{}
	extension scene.Extension
	log       *zap.Logger
}

// buildMaterials returns the material slots of one file, in library order.
// Materials already in the session library are reused by name.
func (s *Session) buildMaterials(base, dir string, obj *formats.OBJ, mtl *formats.MTL, meta *formats.ModelMeta) []*scene.Material {
	if mtl.Len() == 0 {
		return nil
	}

	b := &materialBuild{
		dir:       dir,
		obj:       obj,
		meta:      meta,
		used:      make(map[string]struct{}),
		extension: scene.ExtensionRepeat,
		log:       s.log.With(zap.String("file", path.Join(dir, base))),
	}
	for _, g := range obj.Groups {
		b.used[g.Material] = struct{}{}
	}
	if strings.HasPrefix(base, terrainPrefix) {
		b.extension = textureExtension(mtl)
	}

	var slots []*scene.Material
	for _, entry := range mtl.Entries {
		mat := s.baseMaterial(b, entry)
		if _, ok := b.used[entry.Name]; ok && mat != nil {
			slots = append(slots, mat)
		}

		for _, mode := range uniqueModes(obj.BlendModes[entry.Name]) {
			name := formats.BlendVariantName(entry.Name, mode)
			if _, ok := b.used[name]; !ok {
				continue
			}
			slots = append(slots, s.variantMaterial(b, entry, name, mode))
		}
	}
	return slots
}

// baseMaterial returns the material for a library entry, building it when
// the session does not have it yet. Unused entries only get terrain
// materials.
func (s *Session) baseMaterial(b *materialBuild, entry formats.MTLEntry) *scene.Material {
	if mat, ok := s.materials[entry.Name]; ok {
		return mat
	}

	var mat *scene.Material
	if s.cfg.UseTerrainBlending {
		mat = s.terrainMaterial(b, entry)
	}
	if mat == nil {
		if _, ok := b.used[entry.Name]; !ok {
			return nil
		}
		if unit := b.textureUnit(entry.Name, true); unit != nil {
			mat = b.advancedMaterial(entry.Name, entry.Texture, unit)
		} else {
			mat = standardMaterial(entry.Name, entry.Texture, scene.NoBlendMode, false, b.extension)
		}
	}

	s.materials[entry.Name] = mat
	return mat
}

// variantMaterial returns the material for one blend mode of an entry.
func (s *Session) variantMaterial(b *materialBuild, entry formats.MTLEntry, name string, mode int) *scene.Material {
	if mat, ok := s.materials[name]; ok {
		return mat
	}

	var mat *scene.Material
	if unit := b.textureUnit(name, false); unit != nil {
		mat = b.advancedMaterial(name, entry.Texture, unit)
	} else {
		mat = standardMaterial(name, entry.Texture, mode, s.cfg.CreateEmissiveMaterials, b.extension)
	}

	s.materials[name] = mat
	return mat
}

// terrainMaterial reads the <name>.json layer sidecar next to the geometry.
func (s *Session) terrainMaterial(b *materialBuild, entry formats.MTLEntry) *scene.Material {
	data, err := s.assets.Load(path.Join(b.dir, entry.Name+".json"))
	if err != nil {
		return nil
	}

	terrain, err := formats.ParseTerrainMaterial(data)
	if err != nil {
		b.log.Debug("ignoring terrain material", zap.String("material", entry.Name), zap.Error(err))
		return nil
	}
	if terrain == nil {
		return nil
	}

	for i := range terrain.Layers {
		layer := &terrain.Layers[i]
		layer.File = encoding.JoinPath(b.dir, layer.File)
		if layer.HeightFile != "" {
			layer.HeightFile = encoding.JoinPath(b.dir, layer.HeightFile)
		}
	}

	return &scene.Material{
		Name:        entry.Name,
		Texture:     entry.Texture,
		BlendMode:   scene.NoBlendMode,
		BlendMethod: scene.BlendOpaque,
		Extension:   b.extension,
		Terrain:     terrain,
	}
}

// textureUnit finds the skin texture unit of the first group bound to name.
// With variants set, groups bound to a blend variant of name also match.
func (b *materialBuild) textureUnit(name string, variants bool) *formats.TextureUnit {
	if !b.meta.HasAdvancedM2() {
		return nil
	}

	for i, g := range b.obj.Groups {
		match := g.Material == name ||
			(variants && strings.HasPrefix(g.Material, name+formats.BlendSuffix))
		if !match {
			continue
		}

		section, ok := b.obj.MeshToSkinSection[i]
		if !ok {
			section = i
		}
		if unit, ok := b.meta.SkinTexUnits[section]; ok {
			return unit
		}
	}
	return nil
}

// advancedMaterial builds a skinned model material from its texture unit.
func (b *materialBuild) advancedMaterial(name, texture string, unit *formats.TextureUnit) *scene.Material {
	var m2 formats.M2Material
	if unit.MaterialIndex >= 0 && unit.MaterialIndex < len(b.meta.M2Materials) {
		m2 = b.meta.M2Materials[unit.MaterialIndex]
	}

	var textures []string
	for _, file := range b.meta.TextureFiles(unit) {
		textures = append(textures, encoding.JoinPath(b.dir, file))
	}
	if len(textures) > 0 {
		texture = textures[0]
	}

	method := scene.BlendOpaque
	switch m2.BlendingMode {
	case 2, 4:
		method = scene.BlendBlend
	case 1, 5:
		method = scene.BlendClip
	}

	return &scene.Material{
		Name:        name,
		Texture:     texture,
		BlendMode:   m2.BlendingMode,
		BlendMethod: method,
		AlphaLinked: m2.BlendingMode != 0,
		Extension:   b.extension,
		Shader: &scene.ShaderInfo{
			PixelShader:    formats.PixelShaderName(unit.ShaderID, unit.TextureCount),
			VertexShader:   formats.VertexShaderName(unit.ShaderID, unit.TextureCount),
			Flags:          formats.DecodeRenderFlags(m2.Flags),
			Textures:       textures,
			TransformCombo: unit.TextureTransformComboIndex,
		},
	}
}

// standardMaterial builds a single-texture material. Blend modes 2 and 4
// blend, everything else clips; mode 4 glows when emissive is set.
func standardMaterial(name, texture string, mode int, emissive bool, ext scene.Extension) *scene.Material {
	mat := &scene.Material{
		Name:        name,
		Texture:     texture,
		BlendMode:   mode,
		BlendMethod: scene.BlendClip,
		Extension:   ext,
	}
	if mode == 2 || mode == 4 {
		mat.BlendMethod = scene.BlendBlend
	}
	mat.Emissive = mode == 4 && emissive
	mat.AlphaLinked = mode != 0 && !mat.Emissive
	return mat
}

// textureExtension picks how terrain textures are sampled at tile edges.
// Tiles split into sub-textures ("tex_<map>_<x>_<y>") extend, whole-tile
// textures clip.
func textureExtension(mtl *formats.MTL) scene.Extension {
	for _, entry := range mtl.Entries {
		if !strings.HasPrefix(entry.Name, terrainTexturePrefix) {
			continue
		}
		if len(strings.Split(entry.Name, "_")) == 4 {
			return scene.ExtensionExtend
		}
	}
	return scene.ExtensionClip
}

func uniqueModes(modes []int) []int {
	var out []int
	seen := make(map[int]struct{}, len(modes))
	for _, m := range modes {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
