package serialize

import (
	"fmt"

	"github.com/heimdex/jr3d/internal/animation"
	"github.com/heimdex/jr3d/internal/fetch"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// ModelOptions selects the optional sections serialized with each model.
type ModelOptions struct {
	Animations bool
	Shader     bool
	Effects    bool
}

// Model serializes m and collects its binary files. effects holds the
// resolved files of m.Effects by index. A model without a model file cannot
// be restored and is skipped: ok is false.
func Model(m *session.Model, opts ModelOptions, effects []fetch.Resolved, c *Collector) (projectfile.SerializableModel, bool) {
	if m.ModelFile == nil || len(m.ModelFile.Data) == 0 {
		c.Warn("model", "model file missing, model skipped", "model_id", m.ID, "name", m.Name)
		return projectfile.SerializableModel{}, false
	}

	modelPath := projectfile.ModelFilePath(m.ID, modelFileName(m))
	c.Add(modelPath, m.ModelFile.Data)

	out := projectfile.SerializableModel{
		ID:           m.ID,
		Name:         m.Name,
		ModelPath:    modelPath,
		TexturePaths: textures(m, c),
		Position:     vec3(m.Transform.Position),
		Rotation:     vec3(m.Transform.Rotation),
		Scale:        vec3(m.Transform.Scale),
		Visible:      m.Visible,
		Opacity:      m.Opacity,
		Snapshots:    snapshots(m, c),
	}

	if opts.Animations {
		for _, cc := range m.CreatedClips {
			out.CreatedClips = append(out.CreatedClips, Clip(cc))
		}
	}
	if opts.Shader {
		out.ShaderGroups = ShaderGroups(m.ID, m.ShaderGroups, c)
	}
	if opts.Effects {
		for i, e := range m.Effects {
			var res fetch.Resolved
			if i < len(effects) {
				res = effects[i]
			}
			out.Effects = append(out.Effects, Effect(m.ID, e, res, c))
		}
	}
	return out, true
}

func modelFileName(m *session.Model) string {
	if m.ModelFile.Name != "" {
		return m.ModelFile.Name
	}
	return m.Name + ".fbx"
}

// textures writes every texture of m. Names that collide within the model
// are prefixed with their index.
func textures(m *session.Model, c *Collector) []string {
	paths := []string{}
	names := nameSet{}
	for i, t := range m.Textures {
		if t == nil || len(t.Data) == 0 {
			c.Warn("texture", "texture has no data, skipped", "model_id", m.ID, "index", i)
			continue
		}
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("texture_%d.%s", i, ImageExt(t.MimeType, t.Data))
		}
		p := projectfile.ModelTexturePath(m.ID, names.claim(i, name))
		c.Add(p, t.Data)
		paths = append(paths, p)
	}
	return paths
}

func snapshots(m *session.Model, c *Collector) []projectfile.SerializableSnapshot {
	var out []projectfile.SerializableSnapshot
	for _, s := range m.Snapshots {
		data, ext, err := imageBytes(s.Image, s.ImageDataURL)
		if err != nil {
			c.Warn("snapshot", "snapshot image unavailable, skipped", "model_id", m.ID, "snapshot_id", s.ID, "error", err)
			continue
		}
		p := projectfile.SnapshotPath(m.ID, s.ID, ext)
		c.Add(p, data)
		out = append(out, projectfile.SerializableSnapshot{
			ID:        s.ID,
			Name:      s.Name,
			CreatedAt: s.CreatedAt,
			ImagePath: p,
		})
	}
	return out
}

// Clip serializes a cut clip's frame range; keyframes are not stored and
// are re-extracted from the model's original clip on import.
func Clip(cc *animation.CutClip) projectfile.SerializableClip {
	return projectfile.SerializableClip{
		CustomID:     cc.CustomID,
		DisplayName:  cc.DisplayName,
		OriginalName: cc.OriginalName,
		StartFrame:   cc.StartFrame,
		EndFrame:     cc.EndFrame,
		Duration:     cc.Duration,
		FPS:          cc.FPS,
	}
}

func vec3(v session.Vec3) projectfile.Vec3 {
	return projectfile.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Settings serializes the scene-wide settings.
func Settings(s session.GlobalSettings) projectfile.GlobalSettings {
	return projectfile.GlobalSettings{
		BackgroundColor:  s.BackgroundColor,
		ShowGrid:         s.ShowGrid,
		ShowAxes:         s.ShowAxes,
		AmbientIntensity: s.AmbientIntensity,
		CameraPosition:   vec3(s.CameraPosition),
		CameraTarget:     vec3(s.CameraTarget),
	}
}
