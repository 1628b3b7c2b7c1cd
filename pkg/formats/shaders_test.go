package formats

import "testing"

func TestPixelShaderName(t *testing.T) {
	tests := []struct {
		shaderID     int
		textureCount int
		want         string
	}{
		{0x8000, 2, "PS_Combiners_Opaque"},
		{0x8003, 1, "PS_Combiners_Opaque"},
		{0x10, 1, "PS_Combiners_Mod"},
		{0x0, 1, "PS_Combiners_Opaque"},
		{0x10, 2, "PS_Combiners_Mod_Opaque"},
		{0x13, 2, "PS_Combiners_Mod_Add"},
		{0x14, 2, "PS_Combiners_Mod_Mod2x"},
		{0x16, 2, "PS_Combiners_Mod_Mod2xNA"},
		{0x17, 2, "PS_Combiners_Mod_AddNA"},
		{0x11, 2, "PS_Combiners_Mod_Mod"},
		{0x0, 2, "PS_Combiners_Opaque_Opaque"},
		{0x3, 2, "PS_Combiners_Opaque_AddAlpha"},
		{0x4, 2, "PS_Combiners_Opaque_Mod2x"},
		{0x6, 2, "PS_Combiners_Opaque_Mod2xNA"},
		{0x7, 2, "PS_Combiners_Opaque_AddAlpha"},
		{0x1, 2, "PS_Combiners_Opaque_Mod"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := PixelShaderName(tt.shaderID, tt.textureCount); got != tt.want {
				t.Errorf("PixelShaderName(%#x, %d) = %q, want %q", tt.shaderID, tt.textureCount, got, tt.want)
			}
		})
	}
}

func TestVertexShaderName(t *testing.T) {
	tests := []struct {
		shaderID     int
		textureCount int
		want         string
	}{
		{0x8000, 1, "VS_Diffuse_T1_T1"},
		{0x80, 1, "VS_Diffuse_Env"},
		{0x4000, 1, "VS_Diffuse_T2"},
		{0x0, 1, "VS_Diffuse_T1"},
		{0x88, 2, "VS_Diffuse_Env_Env"},
		{0x80, 2, "VS_Diffuse_Env_T1"},
		{0x8, 2, "VS_Diffuse_T1_Env"},
		{0x4000, 2, "VS_Diffuse_T1_T2"},
		{0x0, 2, "VS_Diffuse_T1_T1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := VertexShaderName(tt.shaderID, tt.textureCount); got != tt.want {
				t.Errorf("VertexShaderName(%#x, %d) = %q, want %q", tt.shaderID, tt.textureCount, got, tt.want)
			}
		})
	}
}

func TestDecodeRenderFlags(t *testing.T) {
	tests := []struct {
		flags int
		want  RenderFlags
	}{
		{0, RenderFlags{DepthTest: true, DepthWrite: true}},
		{0x1 | 0x4, RenderFlags{Unlit: true, TwoSided: true, DepthTest: true, DepthWrite: true}},
		{0x2 | 0x10 | 0x20, RenderFlags{Unfogged: true}},
	}

	for _, tt := range tests {
		if got := DecodeRenderFlags(tt.flags); got != tt.want {
			t.Errorf("DecodeRenderFlags(%#x) = %+v, want %+v", tt.flags, got, tt.want)
		}
	}
}
