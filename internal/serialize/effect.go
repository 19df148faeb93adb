package serialize

import (
	"github.com/heimdex/jr3d/internal/fetch"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// Effect builds the DTO of one effect placement from its already resolved
// files. Resources that failed to resolve are left out with a warning; the
// effect itself is always kept.
func Effect(modelID string, e *session.Effect, res fetch.Resolved, c *Collector) projectfile.SerializableEffect {
	out := projectfile.SerializableEffect{
		ID:            e.ID,
		Name:          e.Name,
		SourceType:    string(session.NormalizeEffectSource(e.SourceType)),
		EffectPath:    e.EffectPath,
		ResourcePaths: []string{},
		Position:      vec3(e.Transform.Position),
		Rotation:      vec3(e.Transform.Rotation),
		Scale:         vec3(e.Transform.Scale),
		Speed:         e.Speed,
		Loop:          e.Loop,
		Enabled:       e.Enabled,
		BoundBoneName: e.BoundBoneName,
	}

	// Resources are flattened into one folder. The effect file itself keeps
	// its plain name since restore finds it by that name.
	names := nameSet{}
	primary := -1
	for i, f := range res.Files {
		if e.EffectPath != "" && f.RelativePath == e.EffectPath {
			primary = i
			names.claim(i, f.RelativePath)
			break
		}
	}
	for i, f := range res.Files {
		name := projectfile.FileSegment(f.RelativePath)
		if i != primary {
			name = names.claim(i, f.RelativePath)
		}
		p := projectfile.EffectResourcePath(modelID, e.ID, name)
		c.Add(p, f.Data)
		out.ResourcePaths = append(out.ResourcePaths, p)
	}
	for _, failure := range res.Failures {
		c.Warn("effect_resource", "effect resource unavailable, skipped",
			"model_id", modelID,
			"effect_id", e.ID,
			"path", failure.RelativePath,
			"error", failure.Err,
		)
	}

	for _, t := range e.Triggers {
		st := projectfile.SerializableTrigger{ID: t.ID, ClipID: t.ClipID, Frame: t.Frame}
		if t.Duration != nil {
			d := *t.Duration
			st.Duration = &d
		}
		out.Triggers = append(out.Triggers, st)
	}
	return out
}
