package projectfile

import (
	"encoding/json"
	"fmt"
)

// Feature type tags, one per params record below.
const (
	FeatureRimLight       = "rimLight"
	FeatureDissolve       = "dissolve"
	FeatureToon           = "toon"
	FeatureTextureOverlay = "textureOverlay"
)

// Texture fields hold archive paths; empty means the slot was unset or its
// file could not be exported.

type RimLightParams struct {
	Color     string  `json:"color"`
	Intensity float64 `json:"intensity"`
	Power     float64 `json:"power"`
}

type DissolveParams struct {
	Threshold    float64 `json:"threshold"`
	EdgeWidth    float64 `json:"edgeWidth"`
	EdgeColor    string  `json:"edgeColor"`
	NoiseTexture string  `json:"noiseTexture,omitempty"`
}

type ToonParams struct {
	Steps       int     `json:"steps"`
	OutlineSize float64 `json:"outlineSize"`
	RampTexture string  `json:"rampTexture,omitempty"`
}

type TextureOverlayParams struct {
	Opacity   float64 `json:"opacity"`
	BlendMode string  `json:"blendMode"`
	TilingU   float64 `json:"tilingU"`
	TilingV   float64 `json:"tilingV"`
	Texture   string  `json:"texture,omitempty"`
	MaskMap   string  `json:"maskMap,omitempty"`
}

// DecodeParams decodes a feature's params into the record its Type selects.
func (f SerializableShaderFeature) DecodeParams() (any, error) {
	var target any
	switch f.Type {
	case FeatureRimLight:
		target = &RimLightParams{}
	case FeatureDissolve:
		target = &DissolveParams{}
	case FeatureToon:
		target = &ToonParams{}
	case FeatureTextureOverlay:
		target = &TextureOverlayParams{}
	default:
		return nil, fmt.Errorf("unknown shader feature type %q", f.Type)
	}
	if len(f.Params) > 0 {
		if err := json.Unmarshal(f.Params, target); err != nil {
			return nil, fmt.Errorf("decode %s params: %w", f.Type, err)
		}
	}
	return target, nil
}

// EncodeFeature builds a feature DTO around a typed params record.
func EncodeFeature(id, typ string, enabled bool, params any) (SerializableShaderFeature, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return SerializableShaderFeature{}, fmt.Errorf("encode %s params: %w", typ, err)
	}
	return SerializableShaderFeature{ID: id, Type: typ, Enabled: enabled, Params: raw}, nil
}
