package restore

import (
	"github.com/jinzhu/copier"

	"github.com/heimdex/jr3d/internal/animation"
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// restoreModels loads every model whose primary file is present. A model
// without its file gets no ledger entry, so references to it stay
// unresolved in later phases.
func (l *Loader) restoreModels(r *run) {
	if clearer, ok := r.opts.Models.(ModelClearer); ok {
		clearer.ClearModels()
	}

	total := len(r.state.Models)
	for i := range r.state.Models {
		sm := &r.state.Models[i]
		r.progress(5+45*i/max(total, 1), "loading "+sm.Name)

		file, err := r.blob(sm.ModelPath)
		if err != nil {
			r.warn("model file missing, model skipped", "model_id", sm.ID, "path", sm.ModelPath)
			continue
		}

		var textures []*session.Blob
		for _, p := range sm.TexturePaths {
			tex, err := r.blob(p)
			if err != nil {
				r.warn("texture missing, skipped", "model_id", sm.ID, "path", p)
				continue
			}
			textures = append(textures, tex)
		}

		model, err := l.models.LoadModel(r.ctx, ModelSource{Name: sm.Name, ModelFile: file, Textures: textures})
		if err != nil {
			r.warn("model could not be loaded, skipped", "model_id", sm.ID, "error", err)
			continue
		}
		if model.ID == "" {
			model.ID = session.NewID()
		}
		model.Name = sm.Name
		model.Snapshots = restoreSnapshots(r, sm)

		if err := r.opts.Models.AddModel(model); err != nil {
			r.warn("model could not be registered, skipped", "model_id", sm.ID, "error", err)
			continue
		}
		r.ledger.RecordModel(sm.ID, model.ID)
		r.restored = append(r.restored, restoredModel{src: sm, newID: model.ID})
	}
}

func restoreSnapshots(r *run, sm *projectfile.SerializableModel) []session.Snapshot {
	var out []session.Snapshot
	for _, s := range sm.Snapshots {
		img, err := r.blob(s.ImagePath)
		if err != nil {
			r.warn("snapshot image missing, skipped", "model_id", sm.ID, "path", s.ImagePath)
			continue
		}
		out = append(out, session.Snapshot{
			ID:        session.NewID(),
			Name:      s.Name,
			CreatedAt: s.CreatedAt,
			Image:     img,
		})
	}
	return out
}

// transformRecord mirrors the transform fields of a serialized model.
type transformRecord struct {
	Position projectfile.Vec3
	Rotation projectfile.Vec3
	Scale    projectfile.Vec3
}

func restoreTransforms(r *run) {
	for _, rm := range r.restored {
		var t session.Transform
		src := transformRecord{Position: rm.src.Position, Rotation: rm.src.Rotation, Scale: rm.src.Scale}
		if err := copier.Copy(&t, &src); err != nil {
			r.warn("transform not applied", "model_id", rm.newID, "error", err)
			continue
		}
		visible, opacity := rm.src.Visible, rm.src.Opacity
		err := r.opts.Models.UpdateModel(rm.newID, session.ModelUpdate{
			Transform: &t,
			Visible:   &visible,
			Opacity:   &opacity,
		})
		if err != nil {
			r.warn("transform not applied", "model_id", rm.newID, "error", err)
		}
	}
}

// restoreClips re-extracts each serialized clip from the live model's
// original clip. Models without one keep their clip list untouched.
func (l *Loader) restoreClips(r *run) {
	fallbackFPS := 30.0
	if r.state.Director != nil && r.state.Director.FPS > 0 {
		fallbackFPS = float64(r.state.Director.FPS)
	}

	for _, rm := range r.restored {
		if len(rm.src.CreatedClips) == 0 {
			continue
		}
		live, ok := r.opts.Models.GetModel(rm.newID)
		if !ok {
			continue
		}
		if live.OriginalClip == nil {
			r.warn("model has no source animation, clips skipped", "model_id", rm.newID, "clips", len(rm.src.CreatedClips))
			continue
		}

		names := live.ClipNames()
		var created []*animation.CutClip
		var ids [][2]string
		for _, sc := range rm.src.CreatedClips {
			fps := sc.FPS
			if fps <= 0 {
				fps = fallbackFPS
			}
			cc, err := l.extractor.CreateSubClip(live.OriginalClip, sc.DisplayName, sc.StartFrame, sc.EndFrame, fps, names)
			if err != nil {
				r.warn("clip could not be extracted, skipped", "model_id", rm.newID, "clip_id", sc.CustomID, "error", err)
				continue
			}
			if sc.OriginalName != "" {
				cc.OriginalName = sc.OriginalName
			}
			names = append(names, cc.DisplayName)
			created = append(created, cc)
			ids = append(ids, [2]string{sc.CustomID, cc.CustomID})
		}
		if len(created) == 0 {
			continue
		}

		clips := append(append([]*animation.CutClip{}, live.CreatedClips...), created...)
		if err := r.opts.Models.UpdateModel(rm.newID, session.ModelUpdate{CreatedClips: clips}); err != nil {
			r.warn("clips not applied", "model_id", rm.newID, "error", err)
			continue
		}
		for _, id := range ids {
			r.ledger.RecordClip(id[0], id[1])
		}
	}
}
