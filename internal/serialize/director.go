package serialize

import (
	"github.com/heimdex/jr3d/internal/projectfile"
	"github.com/heimdex/jr3d/internal/session"
)

// Director serializes the timeline. Source references are written as-is;
// they are remapped on import.
func Director(d *session.Director) *projectfile.SerializableDirector {
	if d == nil {
		d = session.DefaultDirector()
	}
	out := &projectfile.SerializableDirector{
		FPS:               d.FPS,
		TotalFrames:       d.TotalFrames,
		InPoint:           d.InPoint,
		OutPoint:          d.OutPoint,
		LoopRegionEnabled: d.LoopRegionEnabled,
		Tracks:            make([]projectfile.SerializableDirectorTrack, 0, len(d.Tracks)),
	}
	for _, t := range d.Tracks {
		st := projectfile.SerializableDirectorTrack{
			ID:       t.ID,
			Name:     t.Name,
			Order:    t.Order,
			IsLocked: t.IsLocked,
			IsMuted:  t.IsMuted,
			Clips:    make([]projectfile.SerializableDirectorClip, 0, len(t.Clips)),
		}
		for _, c := range t.Clips {
			st.Clips = append(st.Clips, projectfile.SerializableDirectorClip{
				ID:                c.ID,
				Name:              c.Name,
				SourceType:        string(c.SourceType),
				SourceModelID:     c.SourceModelID,
				SourceAnimationID: c.SourceAnimationID,
				StartFrame:        c.StartFrame,
				EndFrame:          c.EndFrame,
				TrimStart:         c.TrimStart,
				TrimEnd:           c.TrimEnd,
				Speed:             c.Speed,
				Loop:              c.Loop,
				BlendIn:           c.BlendIn,
				BlendOut:          c.BlendOut,
			})
		}
		out.Tracks = append(out.Tracks, st)
	}
	return out
}
