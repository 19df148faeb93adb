package restore

import (
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// restoreEffects rebuilds effect placements from the files stored in the
// archive. Trigger clip references go through the clip ledger; a reference
// with no entry keeps its stale id so it can be repaired by hand.
func restoreEffects(r *run) {
	for _, rm := range r.restored {
		if len(rm.src.Effects) == 0 {
			continue
		}
		live, ok := r.opts.Models.GetModel(rm.newID)
		if !ok {
			continue
		}

		effects := make([]*session.Effect, 0, len(rm.src.Effects))
		for _, se := range rm.src.Effects {
			effects = append(effects, restoreEffect(r, live, se))
		}
		if err := r.opts.Models.UpdateModel(rm.newID, session.ModelUpdate{Effects: effects}); err != nil {
			r.warn("effects not applied", "model_id", rm.newID, "error", err)
		}
	}
}

func restoreEffect(r *run, live *session.Model, se projectfile.SerializableEffect) *session.Effect {
	source := session.NormalizeEffectSource(session.EffectSource(se.SourceType))
	e := &session.Effect{
		ID:         session.NewID(),
		Name:       se.Name,
		SourceType: source,
		EffectPath: se.EffectPath,
		Transform: session.Transform{
			Position: vec3(se.Position),
			Rotation: vec3(se.Rotation),
			Scale:    vec3(se.Scale),
		},
		Speed:         se.Speed,
		Loop:          se.Loop,
		Enabled:       se.Enabled,
		BoundBoneName: se.BoundBoneName,
	}
	// Uploaded effect files were flattened on export.
	if source == session.EffectSourceUploaded && se.EffectPath != "" {
		e.EffectPath = projectfile.FileSegment(se.EffectPath)
	}

	for _, p := range se.ResourcePaths {
		b, err := r.blob(p)
		if err != nil {
			r.warn("effect resource missing, skipped", "model_id", live.ID, "effect_id", se.ID, "path", p)
			continue
		}
		e.Assets = append(e.Assets, session.EffectAsset{RelativePath: b.Name, Blob: b})
	}

	if se.BoundBoneName != "" {
		if bone, ok := live.Skeleton.BoneByName(se.BoundBoneName); ok {
			e.BoundBoneUUID = bone.UUID
		} else {
			r.warn("bone not found, effect left unbound", "model_id", live.ID, "effect_id", se.ID, "bone", se.BoundBoneName)
		}
	}

	for _, st := range se.Triggers {
		t := session.Trigger{ID: session.NewID(), ClipID: st.ClipID, Frame: st.Frame}
		if st.Duration != nil {
			d := *st.Duration
			t.Duration = &d
		}
		if newID, ok := r.ledger.ResolveClip(st.ClipID); ok {
			t.ClipID = newID
		} else {
			r.warn("trigger clip unresolved, stale reference kept", "effect_id", se.ID, "clip_id", st.ClipID)
		}
		e.Triggers = append(e.Triggers, t)
	}
	return e
}
