package projectfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/heimdex/jr3d/internal/errors"
)

func TestIsVersionCompatible(t *testing.T) {
	tests := []struct {
		version string
		want    bool
	}{
		{"1.0.0", true},
		{"1.4.2", true},
		{"2.0.0", false},
		{"0.9.0", false},
		{"1.0", false},
		{"", false},
		{"banana", false},
	}
	for _, tc := range tests {
		t.Run(tc.version, func(t *testing.T) {
			assert.Equal(t, tc.want, IsVersionCompatible(tc.version))
		})
	}
}

func TestExportOptions_Validate(t *testing.T) {
	err := ExportOptions{IncludeAnimations: true, IncludeShader: true, IncludeEffects: true}.Validate()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNoExportableContent, apperrors.CodeOf(err))

	assert.NoError(t, ExportOptions{Include2D: true}.Validate())
	assert.NoError(t, ExportOptions{Include3DModels: true}.Validate())
}

func TestExportOptions_Effective(t *testing.T) {
	all := ExportOptions{
		Include2D:         true,
		IncludeAnimations: true,
		IncludeShader:     true,
		IncludeEffects:    true,
		IncludeAudio:      true,
	}
	eff := all.Effective()
	assert.True(t, eff.IncludeAnimations, "2D alone allows the timeline")
	assert.False(t, eff.IncludeShader, "shader requires 3D")
	assert.False(t, eff.IncludeEffects, "effects live on models")
	assert.False(t, eff.IncludeAudio, "audio is reserved")

	eff = DefaultExportOptions().Effective()
	assert.Equal(t, DefaultExportOptions(), eff)
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "models/m1/hero.fbx", ModelFilePath("m1", "uploads/hero.fbx"))
	assert.Equal(t, "models/m1/textures/skin.png", ModelTexturePath("m1", `C:\tex\skin.png`))
	assert.Equal(t, "models/m1/shader/textures/noiseTexture_0_1_0.png", ShaderTexturePath("m1", "noiseTexture", 0, 1, 0, "png"))
	assert.Equal(t, "assets/images/e1.jpg", ImagePath("e1", "jpg"))
	assert.Equal(t, "assets/spine/s1/skeleton.skel", SpineSkeletonPath("s1"))
	assert.Equal(t, "assets/spine/s1/textures/body.png", SpineTexturePath("s1", "body.png"))
	assert.Equal(t, "assets/effects/m1/fx1/spark.png", EffectResourcePath("m1", "fx1", "Texture/sub/spark.png"))
	assert.Equal(t, "file", FileSegment(".."))
	assert.Equal(t, "png", Ext("Foo.PNG"))
}

func TestDecodeParams(t *testing.T) {
	f, err := EncodeFeature("f1", FeatureDissolve, true, DissolveParams{Threshold: 0.4, NoiseTexture: "models/m1/shader/textures/noiseTexture_0_0_0.png"})
	require.NoError(t, err)

	decoded, err := f.DecodeParams()
	require.NoError(t, err)
	p, ok := decoded.(*DissolveParams)
	require.True(t, ok)
	assert.Equal(t, 0.4, p.Threshold)
	assert.Equal(t, "models/m1/shader/textures/noiseTexture_0_0_0.png", p.NoiseTexture)

	_, err = SerializableShaderFeature{Type: "bloom"}.DecodeParams()
	assert.Error(t, err)
}
