package workspace

import (
	"fmt"
	"slices"

	"github.com/heimdex/jr3d/internal/session"
)

// Reset replaces the timeline with an empty default one.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director = session.DefaultDirector()
}

func (w *Workspace) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director.FPS = fps
}

func (w *Workspace) SetTotalFrames(frames int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director.TotalFrames = max(frames, 0)
}

func (w *Workspace) SetInPoint(frame int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director.InPoint = max(frame, 0)
}

func (w *Workspace) SetOutPoint(frame int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director.OutPoint = max(frame, 0)
}

func (w *Workspace) ToggleLoopRegion() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.director.LoopRegionEnabled = !w.director.LoopRegionEnabled
}

// AddTrack appends an empty track and returns its id.
func (w *Workspace) AddTrack(name string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := session.NewID()
	w.director.Tracks = append(w.director.Tracks, session.DirectorTrack{
		ID:    id,
		Name:  name,
		Order: len(w.director.Tracks),
	})
	return id
}

func (w *Workspace) UpdateTrack(trackID string, u session.TrackUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.track(trackID)
	if err != nil {
		return err
	}
	u.Apply(t)
	return nil
}

// AddClip places clip on a track under a fresh id.
func (w *Workspace) AddClip(trackID string, clip session.DirectorClip) (string, error) {
	if clip.EndFrame < clip.StartFrame {
		return "", fmt.Errorf("clip ends at %d before it starts at %d", clip.EndFrame, clip.StartFrame)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.track(trackID)
	if err != nil {
		return "", err
	}
	clip.ID = session.NewID()
	t.Clips = append(t.Clips, clip)
	return clip.ID, nil
}

func (w *Workspace) UpdateClip(trackID, clipID string, u session.ClipUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, err := w.track(trackID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(t.Clips, func(c session.DirectorClip) bool { return c.ID == clipID })
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}
	u.Apply(&t.Clips[i])
	return nil
}

func (w *Workspace) track(id string) (*session.DirectorTrack, error) {
	for i := range w.director.Tracks {
		if w.director.Tracks[i].ID == id {
			return &w.director.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrTrackNotFound, id)
}
