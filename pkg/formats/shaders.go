package formats

// Shader id bits.
const (
	shaderFlagEffect  = 0x8000
	shaderFlagEnv0    = 0x80
	shaderFlagEnv1    = 0x8
	shaderFlagT2      = 0x4000
	shaderMaskOpMod   = 0x70
	shaderMaskOpLower = 0x7
)

// Material render flag bits.
const (
	RenderFlagUnlit       = 0x1
	RenderFlagUnfogged    = 0x2
	RenderFlagTwoSided    = 0x4
	RenderFlagNoDepthTest = 0x10
	RenderFlagNoDepthMask = 0x20
)

// RenderFlags are the decoded render flags of a skinned model material.
type RenderFlags struct {
	Unlit      bool
	Unfogged   bool
	TwoSided   bool
	DepthTest  bool
	DepthWrite bool
}

// DecodeRenderFlags decodes material flags.
func DecodeRenderFlags(flags int) RenderFlags {
	return RenderFlags{
		Unlit:      flags&RenderFlagUnlit != 0,
		Unfogged:   flags&RenderFlagUnfogged != 0,
		TwoSided:   flags&RenderFlagTwoSided != 0,
		DepthTest:  flags&RenderFlagNoDepthTest == 0,
		DepthWrite: flags&RenderFlagNoDepthMask == 0,
	}
}

// PixelShaderName returns the combiner pixel shader selected by a texture
// unit's shader id and texture count.
func PixelShaderName(shaderID, textureCount int) string {
	if shaderID&shaderFlagEffect != 0 {
		return "PS_Combiners_Opaque"
	}

	if textureCount == 1 {
		if shaderID&shaderMaskOpMod != 0 {
			return "PS_Combiners_Mod"
		}
		return "PS_Combiners_Opaque"
	}

	lower := shaderID & shaderMaskOpLower
	if shaderID&shaderMaskOpMod != 0 {
		switch lower {
		case 0:
			return "PS_Combiners_Mod_Opaque"
		case 3:
			return "PS_Combiners_Mod_Add"
		case 4:
			return "PS_Combiners_Mod_Mod2x"
		case 6:
			return "PS_Combiners_Mod_Mod2xNA"
		case 7:
			return "PS_Combiners_Mod_AddNA"
		default:
			return "PS_Combiners_Mod_Mod"
		}
	}

	switch lower {
	case 0:
		return "PS_Combiners_Opaque_Opaque"
	case 3, 7:
		return "PS_Combiners_Opaque_AddAlpha"
	case 4:
		return "PS_Combiners_Opaque_Mod2x"
	case 6:
		return "PS_Combiners_Opaque_Mod2xNA"
	default:
		return "PS_Combiners_Opaque_Mod"
	}
}

// VertexShaderName returns the vertex shader selected by a texture unit's
// shader id and texture count.
func VertexShaderName(shaderID, textureCount int) string {
	if shaderID&shaderFlagEffect != 0 {
		return "VS_Diffuse_T1_T1"
	}

	if textureCount == 1 {
		switch {
		case shaderID&shaderFlagEnv0 != 0:
			return "VS_Diffuse_Env"
		case shaderID&shaderFlagT2 != 0:
			return "VS_Diffuse_T2"
		default:
			return "VS_Diffuse_T1"
		}
	}

	switch {
	case shaderID&shaderFlagEnv0 != 0 && shaderID&shaderFlagEnv1 != 0:
		return "VS_Diffuse_Env_Env"
	case shaderID&shaderFlagEnv0 != 0:
		return "VS_Diffuse_Env_T1"
	case shaderID&shaderFlagEnv1 != 0:
		return "VS_Diffuse_T1_Env"
	case shaderID&shaderFlagT2 != 0:
		return "VS_Diffuse_T1_T2"
	default:
		return "VS_Diffuse_T1_T1"
	}
}
