package scene

import "github.com/Faultbox/wowobj/pkg/formats"

// NoBlendMode marks a material without a blend mode from metadata.
const NoBlendMode = -1

// BlendMethod is how a material composites.
type BlendMethod int

const (
	BlendOpaque BlendMethod = iota
	BlendClip
	BlendBlend
)

// String returns the method name.
func (b BlendMethod) String() string {
	switch b {
	case BlendClip:
		return "CLIP"
	case BlendBlend:
		return "BLEND"
	default:
		return "OPAQUE"
	}
}

// Extension is how a texture is sampled outside [0,1].
type Extension int

const (
	ExtensionRepeat Extension = iota
	ExtensionClip
	ExtensionExtend
)

// String returns the extension name.
func (e Extension) String() string {
	switch e {
	case ExtensionClip:
		return "CLIP"
	case ExtensionExtend:
		return "EXTEND"
	default:
		return "REPEAT"
	}
}

// ShaderInfo describes a skinned model material's shader selection.
type ShaderInfo struct {
	PixelShader    string
	VertexShader   string
	Flags          formats.RenderFlags
	Textures       []string // Resolved texture paths
	TransformCombo int      // formats.NoTransformCombo if absent
}

// Material is a named surface description.
type Material struct {
	Name        string
	Texture     string
	BlendMode   int // NoBlendMode if unknown
	BlendMethod BlendMethod
	Emissive    bool
	AlphaLinked bool
	Extension   Extension
	Terrain     *formats.TerrainMaterial // Blended terrain layers
	Shader      *ShaderInfo              // Skinned model shading
}
