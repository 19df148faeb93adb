package restore

import (
	"github.com/heimdex/jr3d/internal/session"
)

type createdClip struct {
	trackID string
	clipID  string
	update  session.ClipUpdate
}

// restoreDirector rebuilds the timeline. A clip whose source entity was not
// restored is dropped; an unresolved animation reference is kept as-is.
func restoreDirector(r *run) {
	dc := r.opts.Director
	sd := r.state.Director

	dc.Reset()
	dc.SetFPS(sd.FPS)
	dc.SetTotalFrames(sd.TotalFrames)
	dc.SetInPoint(sd.InPoint)
	dc.SetOutPoint(sd.OutPoint)
	if sd.LoopRegionEnabled {
		dc.ToggleLoopRegion()
	}

	var created []createdClip
	for _, st := range sd.Tracks {
		trackID := dc.AddTrack(st.Name)
		locked, muted := st.IsLocked, st.IsMuted
		if err := dc.UpdateTrack(trackID, session.TrackUpdate{IsLocked: &locked, IsMuted: &muted}); err != nil {
			r.warn("track state not applied", "track_id", st.ID, "error", err)
		}

		for _, sc := range st.Clips {
			clip := session.DirectorClip{
				Name:              sc.Name,
				SourceType:        session.ClipSourceType(sc.SourceType),
				SourceAnimationID: sc.SourceAnimationID,
				StartFrame:        sc.StartFrame,
				EndFrame:          sc.EndFrame,
				BlendIn:           sc.BlendIn,
				BlendOut:          sc.BlendOut,
				Speed:             1,
			}
			if clip.SourceType == "" {
				clip.SourceType = session.ClipSourceModel
			}

			if clip.SourceType == session.ClipSourceSpine {
				newID, ok := r.ledger.ResolveSpine(sc.SourceModelID)
				if !ok {
					r.warn("director clip source not restored, clip dropped", "clip_id", sc.ID, "spine_id", sc.SourceModelID)
					continue
				}
				clip.SourceModelID = newID
			} else {
				newID, ok := r.ledger.ResolveModel(sc.SourceModelID)
				if !ok {
					r.warn("director clip source not restored, clip dropped", "clip_id", sc.ID, "model_id", sc.SourceModelID)
					continue
				}
				clip.SourceModelID = newID
				if animID, ok := r.ledger.ResolveClip(sc.SourceAnimationID); ok {
					clip.SourceAnimationID = animID
				} else if sc.SourceAnimationID != "" {
					r.warn("director clip animation unresolved, stale reference kept", "clip_id", sc.ID, "animation_id", sc.SourceAnimationID)
				}
			}

			clipID, err := dc.AddClip(trackID, clip)
			if err != nil {
				r.warn("director clip could not be added, dropped", "clip_id", sc.ID, "error", err)
				continue
			}
			trimStart, trimEnd, speed, loop := sc.TrimStart, sc.TrimEnd, sc.Speed, sc.Loop
			created = append(created, createdClip{
				trackID: trackID,
				clipID:  clipID,
				update:  session.ClipUpdate{TrimStart: &trimStart, TrimEnd: &trimEnd, Speed: &speed, Loop: &loop},
			})
		}
	}

	for _, c := range created {
		if err := dc.UpdateClip(c.trackID, c.clipID, c.update); err != nil {
			r.warn("director clip settings not applied", "clip_id", c.clipID, "error", err)
		}
	}
}
