package formats

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Metadata sidecar errors.
var (
	ErrInvalidMeta    = errors.New("invalid model metadata")
	ErrInvalidTerrain = errors.New("invalid terrain material")
)

// MetaFileType discriminates the metadata sidecar shapes.
type MetaFileType string

const (
	MetaM2  MetaFileType = "m2"  // Skinned model
	MetaWMO MetaFileType = "wmo" // Composite world map object
)

// NoTransformCombo marks a texture unit without a texture transform.
const NoTransformCombo = -1

// M2Material is a render material of a skinned model.
type M2Material struct {
	Flags        int // Render flags (unlit, unfogged, two sided, ...)
	BlendingMode int // Blend mode enumerant
}

// M2Texture is a texture referenced by a skinned model.
type M2Texture struct {
	FileNameExternal string // Exported texture path, relative to the model
}

// TextureUnit binds a skin section to a material and a texture combo.
type TextureUnit struct {
	SkinSectionIndex           int
	MaterialIndex              int
	ShaderID                   int
	TextureCount               int
	TextureComboIndex          int
	TextureTransformComboIndex int // NoTransformCombo if absent
}

// WMOTexture maps a texture file data ID to its exported material name.
type WMOTexture struct {
	FileDataID uint32
	MtlName    string
}

// WMOMaterial is a material of a composite world map object.
type WMOMaterial struct {
	Texture1  uint32 // File data ID of the diffuse texture
	BlendMode int
}

// ModelMeta is the parsed <model>.json sidecar.
type ModelMeta struct {
	FileType MetaFileType

	// Skinned model (m2)
	M2Materials             []M2Material
	M2Textures              []M2Texture
	TextureCombos           []int
	TextureUnits            []TextureUnit
	TextureTransformsLookup []int
	SkinTexUnits            map[int]*TextureUnit // Skin section index -> texture unit

	// Composite object (wmo)
	WMOTextures   []WMOTexture
	WMOMaterials  []WMOMaterial
	MtlTextureIDs map[uint32]string // Texture file data ID -> material name
	MtlIndexes    map[string]int    // Material name -> index into WMOMaterials
}

type rawMeta struct {
	FileType  string `json:"fileType"`
	Materials []struct {
		Flags        int    `json:"flags"`
		BlendingMode int    `json:"blendingMode"`
		Texture1     uint32 `json:"texture1"`
		BlendMode    int    `json:"blendMode"`
	} `json:"materials"`
	Textures []struct {
		FileDataID       uint32 `json:"fileDataID"`
		MtlName          string `json:"mtlName"`
		FileNameExternal string `json:"fileNameExternal"`
	} `json:"textures"`
	TextureCombos []int `json:"textureCombos"`
	Skin          *struct {
		TextureUnits []struct {
			SkinSectionIndex           int  `json:"skinSectionIndex"`
			MaterialIndex              int  `json:"materialIndex"`
			ShaderID                   int  `json:"shaderID"`
			TextureCount               int  `json:"textureCount"`
			TextureComboIndex          int  `json:"textureComboIndex"`
			TextureTransformComboIndex *int `json:"textureTransformComboIndex"`
		} `json:"textureUnits"`
	} `json:"skin"`
	TextureTransformsLookup []int `json:"textureTransformsLookup"`
}

// ParseModelMeta parses a model metadata sidecar.
func ParseModelMeta(data []byte) (*ModelMeta, error) {
	var raw rawMeta
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMeta, err)
	}

	meta := &ModelMeta{FileType: MetaFileType(raw.FileType)}

	switch meta.FileType {
	case MetaM2:
		for _, m := range raw.Materials {
			meta.M2Materials = append(meta.M2Materials, M2Material{Flags: m.Flags, BlendingMode: m.BlendingMode})
		}
		for _, tex := range raw.Textures {
			meta.M2Textures = append(meta.M2Textures, M2Texture{FileNameExternal: tex.FileNameExternal})
		}
		meta.TextureCombos = raw.TextureCombos
		meta.TextureTransformsLookup = raw.TextureTransformsLookup
		meta.SkinTexUnits = make(map[int]*TextureUnit)

		if raw.Skin != nil {
			meta.TextureUnits = make([]TextureUnit, 0, len(raw.Skin.TextureUnits))
			for _, u := range raw.Skin.TextureUnits {
				unit := TextureUnit{
					SkinSectionIndex:           u.SkinSectionIndex,
					MaterialIndex:              u.MaterialIndex,
					ShaderID:                   u.ShaderID,
					TextureCount:               u.TextureCount,
					TextureComboIndex:          u.TextureComboIndex,
					TextureTransformComboIndex: NoTransformCombo,
				}
				if u.TextureTransformComboIndex != nil {
					unit.TextureTransformComboIndex = *u.TextureTransformComboIndex
				}
				meta.TextureUnits = append(meta.TextureUnits, unit)
			}
			// Later units win, matching a dict built from the list.
			for i := range meta.TextureUnits {
				meta.SkinTexUnits[meta.TextureUnits[i].SkinSectionIndex] = &meta.TextureUnits[i]
			}
		}

	case MetaWMO:
		meta.MtlTextureIDs = make(map[uint32]string, len(raw.Textures))
		for _, tex := range raw.Textures {
			meta.WMOTextures = append(meta.WMOTextures, WMOTexture{FileDataID: tex.FileDataID, MtlName: tex.MtlName})
			meta.MtlTextureIDs[tex.FileDataID] = tex.MtlName
		}
		meta.MtlIndexes = make(map[string]int)
		for i, m := range raw.Materials {
			meta.WMOMaterials = append(meta.WMOMaterials, WMOMaterial{Texture1: m.Texture1, BlendMode: m.BlendMode})
			if name, ok := meta.MtlTextureIDs[m.Texture1]; ok {
				meta.MtlIndexes[name] = i
			}
		}
	}

	return meta, nil
}

// HasAdvancedM2 reports whether the sidecar carries skin texture units.
func (m *ModelMeta) HasAdvancedM2() bool {
	return m != nil && m.FileType == MetaM2 && len(m.TextureUnits) > 0
}

// SkinSectionForGroup derives the skin section index of a mesh group from
// the trailing number of its name ("Geoset_003" -> 3), falling back to the
// group's ordinal.
func SkinSectionForGroup(name string, ordinal int) int {
	parts := strings.Split(name, "_")
	if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
		return n
	}
	return ordinal
}

// BlendModeFor returns the blend mode bound to a mesh group.
// Skinned models look the mode up by skin section, composite objects by
// material name.
func (m *ModelMeta) BlendModeFor(section int, material string) (int, bool) {
	if m == nil {
		return 0, false
	}

	switch m.FileType {
	case MetaM2:
		unit, ok := m.SkinTexUnits[section]
		if !ok || unit.MaterialIndex < 0 || unit.MaterialIndex >= len(m.M2Materials) {
			return 0, false
		}
		return m.M2Materials[unit.MaterialIndex].BlendingMode, true

	case MetaWMO:
		idx, ok := m.MtlIndexes[material]
		if !ok || idx >= len(m.WMOMaterials) {
			return 0, false
		}
		return m.WMOMaterials[idx].BlendMode, true
	}

	return 0, false
}

// TextureFiles resolves the texture paths a texture unit samples through the
// texture combo table.
func (m *ModelMeta) TextureFiles(unit *TextureUnit) []string {
	if unit == nil || unit.TextureCount <= 0 || unit.TextureComboIndex < 0 || unit.TextureComboIndex >= len(m.TextureCombos) {
		return nil
	}

	end := min(unit.TextureComboIndex+unit.TextureCount, len(m.TextureCombos))

	var files []string
	for _, texIndex := range m.TextureCombos[unit.TextureComboIndex:end] {
		if texIndex < 0 || texIndex >= len(m.M2Textures) {
			continue
		}
		if name := m.M2Textures[texIndex].FileNameExternal; name != "" {
			files = append(files, name)
		}
	}
	return files
}

// TerrainLayer is one layer of a blended terrain material.
type TerrainLayer struct {
	File         string  // Diffuse texture
	Scale        float64 // Tiling scale
	HeightFile   string  // Optional height texture
	HeightScale  float64 // Defaults to 0
	HeightOffset float64 // Defaults to 1
}

// TerrainMaterial is the parsed <material>.json sidecar of a terrain chunk.
type TerrainMaterial struct {
	Layers []TerrainLayer
}

// ParseTerrainMaterial parses a per-material terrain sidecar.
// A sidecar without a layers array is not a terrain material and yields nil.
func ParseTerrainMaterial(data []byte) (*TerrainMaterial, error) {
	var raw struct {
		Layers []struct {
			File         string   `json:"file"`
			Scale        float64  `json:"scale"`
			HeightFile   string   `json:"heightFile"`
			HeightScale  *float64 `json:"heightScale"`
			HeightOffset *float64 `json:"heightOffset"`
		} `json:"layers"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTerrain, err)
	}
	if raw.Layers == nil {
		return nil, nil
	}

	tm := &TerrainMaterial{Layers: make([]TerrainLayer, 0, len(raw.Layers))}
	for _, l := range raw.Layers {
		layer := TerrainLayer{
			File:         l.File,
			Scale:        l.Scale,
			HeightFile:   l.HeightFile,
			HeightOffset: 1,
		}
		if l.HeightScale != nil {
			layer.HeightScale = *l.HeightScale
		}
		if l.HeightOffset != nil {
			layer.HeightOffset = *l.HeightOffset
		}
		tm.Layers = append(tm.Layers, layer)
	}
	return tm, nil
}
