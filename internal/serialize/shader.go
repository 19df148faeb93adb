package serialize

import (
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// ShaderGroups serializes the material groups of one model. Texture slots
// are written to the model's shader namespace and replaced by their paths.
func ShaderGroups(modelID string, groups []session.ShaderGroup, c *Collector) []projectfile.SerializableShaderGroup {
	out := make([]projectfile.SerializableShaderGroup, 0, len(groups))
	for g, group := range groups {
		sg := projectfile.SerializableShaderGroup{
			ID:        group.ID,
			Name:      group.Name,
			Enabled:   group.Enabled,
			MeshNames: append([]string{}, group.MeshNames...),
			Features:  make([]projectfile.SerializableShaderFeature, 0, len(group.Features)),
		}
		for f, feature := range group.Features {
			sf, ok := shaderFeature(modelID, g, f, feature, c)
			if !ok {
				continue
			}
			sg.Features = append(sg.Features, sf)
		}
		out = append(out, sg)
	}
	return out
}

func shaderFeature(modelID string, g, f int, feature session.ShaderFeature, c *Collector) (projectfile.SerializableShaderFeature, bool) {
	if feature.Params == nil {
		c.Warn("shader_feature", "shader feature has no params, skipped", "model_id", modelID, "feature_id", feature.ID)
		return projectfile.SerializableShaderFeature{}, false
	}

	slots := feature.Params.TextureSlots()
	texPaths := make([]string, len(slots))
	for n, slot := range slots {
		texPaths[n] = shaderTexture(modelID, slot, g, f, n, c)
	}

	var params any
	switch p := feature.Params.(type) {
	case session.RimLightParams:
		params = projectfile.RimLightParams{Color: p.Color, Intensity: p.Intensity, Power: p.Power}
	case session.DissolveParams:
		params = projectfile.DissolveParams{
			Threshold:    p.Threshold,
			EdgeWidth:    p.EdgeWidth,
			EdgeColor:    p.EdgeColor,
			NoiseTexture: texPaths[0],
		}
	case session.ToonParams:
		params = projectfile.ToonParams{Steps: p.Steps, OutlineSize: p.OutlineSize, RampTexture: texPaths[0]}
	case session.TextureOverlayParams:
		params = projectfile.TextureOverlayParams{
			Opacity:   p.Opacity,
			BlendMode: p.BlendMode,
			TilingU:   p.TilingU,
			TilingV:   p.TilingV,
			Texture:   texPaths[0],
			MaskMap:   texPaths[1],
		}
	default:
		c.Warn("shader_feature", "unsupported shader feature params, skipped", "model_id", modelID, "feature_id", feature.ID)
		return projectfile.SerializableShaderFeature{}, false
	}

	sf, err := projectfile.EncodeFeature(feature.ID, string(feature.Params.Kind()), feature.Enabled, params)
	if err != nil {
		c.Warn("shader_feature", "shader feature not encodable, skipped", "model_id", modelID, "feature_id", feature.ID, "error", err)
		return projectfile.SerializableShaderFeature{}, false
	}
	return sf, true
}

func shaderTexture(modelID string, slot session.TextureSlot, g, f, n int, c *Collector) string {
	if slot.Blob == nil {
		return ""
	}
	if len(slot.Blob.Data) == 0 {
		c.Warn("shader_texture", "shader texture has no data, slot left empty", "model_id", modelID, "key", slot.Key)
		return ""
	}
	ext := projectfile.Ext(slot.Blob.Name)
	if ext == "" {
		ext = ImageExt(slot.Blob.MimeType, slot.Blob.Data)
	}
	p := projectfile.ShaderTexturePath(modelID, slot.Key, g, f, n, ext)
	c.Add(p, slot.Blob.Data)
	return p
}
