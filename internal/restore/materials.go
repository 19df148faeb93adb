package restore

import (
	"fmt"

	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// restoreMaterials rebuilds shader groups. A texture missing from the
// archive leaves its slot empty; the feature is still restored.
func restoreMaterials(r *run) {
	for _, rm := range r.restored {
		if len(rm.src.ShaderGroups) == 0 {
			continue
		}
		groups := make([]session.ShaderGroup, 0, len(rm.src.ShaderGroups))
		for _, sg := range rm.src.ShaderGroups {
			group := session.ShaderGroup{
				ID:        session.NewID(),
				Name:      sg.Name,
				Enabled:   sg.Enabled,
				MeshNames: append([]string{}, sg.MeshNames...),
			}
			for _, sf := range sg.Features {
				params, err := featureParams(r, rm.newID, sf)
				if err != nil {
					r.warn("shader feature not restored", "model_id", rm.newID, "feature_id", sf.ID, "error", err)
					continue
				}
				group.Features = append(group.Features, session.ShaderFeature{
					ID:      session.NewID(),
					Enabled: sf.Enabled,
					Params:  params,
				})
			}
			groups = append(groups, group)
		}
		if err := r.opts.Models.UpdateModel(rm.newID, session.ModelUpdate{ShaderGroups: groups}); err != nil {
			r.warn("shader groups not applied", "model_id", rm.newID, "error", err)
		}
	}
}

func featureParams(r *run, modelID string, sf projectfile.SerializableShaderFeature) (session.FeatureParams, error) {
	decoded, err := sf.DecodeParams()
	if err != nil {
		return nil, err
	}
	texture := func(path string) *session.Blob {
		if path == "" {
			return nil
		}
		b, err := r.blob(path)
		if err != nil {
			r.warn("shader texture missing, slot left empty", "model_id", modelID, "path", path)
			return nil
		}
		return b
	}

	switch p := decoded.(type) {
	case *projectfile.RimLightParams:
		return session.RimLightParams{Color: p.Color, Intensity: p.Intensity, Power: p.Power}, nil
	case *projectfile.DissolveParams:
		return session.DissolveParams{
			Threshold:    p.Threshold,
			EdgeWidth:    p.EdgeWidth,
			EdgeColor:    p.EdgeColor,
			NoiseTexture: texture(p.NoiseTexture),
		}, nil
	case *projectfile.ToonParams:
		return session.ToonParams{Steps: p.Steps, OutlineSize: p.OutlineSize, RampTexture: texture(p.RampTexture)}, nil
	case *projectfile.TextureOverlayParams:
		return session.TextureOverlayParams{
			Opacity:   p.Opacity,
			BlendMode: p.BlendMode,
			TilingU:   p.TilingU,
			TilingV:   p.TilingV,
			Texture:   texture(p.Texture),
			MaskMap:   texture(p.MaskMap),
		}, nil
	}
	return nil, fmt.Errorf("unsupported shader feature type %q", sf.Type)
}
