package workspace

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heimdex/jr3d/internal/session"
)

func TestWorkspace_Models(t *testing.T) {
	w := New("demo")
	require.NoError(t, w.AddModel(&session.Model{ID: "m1", Name: "Hero"}))
	err := w.AddModel(&session.Model{ID: "m1"})
	assert.True(t, errors.Is(err, ErrModelExists))

	name := "Villain"
	require.NoError(t, w.UpdateModel("m1", session.ModelUpdate{Name: &name}))
	m, ok := w.GetModel("m1")
	require.True(t, ok)
	assert.Equal(t, "Villain", m.Name)

	m.Name = "changed"
	again, _ := w.GetModel("m1")
	assert.Equal(t, "Villain", again.Name, "GetModel returns a copy")

	err = w.UpdateModel("nope", session.ModelUpdate{})
	assert.True(t, errors.Is(err, ErrModelNotFound))

	assert.True(t, w.RemoveModel("m1"))
	assert.False(t, w.RemoveModel("m1"))
}

func TestWorkspace_Director(t *testing.T) {
	w := New("demo")
	w.Reset()
	w.SetFPS(24)
	w.SetFPS(0)
	w.SetOutPoint(120)
	w.ToggleLoopRegion()

	trackID := w.AddTrack("Main")
	locked := true
	require.NoError(t, w.UpdateTrack(trackID, session.TrackUpdate{IsLocked: &locked}))

	clipID, err := w.AddClip(trackID, session.DirectorClip{SourceModelID: "m1", StartFrame: 0, EndFrame: 30})
	require.NoError(t, err)
	speed := 2.0
	require.NoError(t, w.UpdateClip(trackID, clipID, session.ClipUpdate{Speed: &speed}))

	_, err = w.AddClip("missing", session.DirectorClip{})
	assert.True(t, errors.Is(err, ErrTrackNotFound))
	assert.True(t, errors.Is(w.UpdateClip(trackID, "missing", session.ClipUpdate{}), ErrClipNotFound))

	p := w.Project()
	assert.Equal(t, 24, p.Director.FPS)
	assert.Equal(t, 120, p.Director.OutPoint)
	assert.True(t, p.Director.LoopRegionEnabled)
	require.Len(t, p.Director.Tracks, 1)
	assert.True(t, p.Director.Tracks[0].IsLocked)
	assert.Equal(t, 2.0, p.Director.Tracks[0].Clips[0].Speed)

	// The snapshot is detached from later edits.
	w.SetFPS(60)
	assert.Equal(t, 24, p.Director.FPS)

	s := w.Summary()
	assert.Equal(t, 1, s.Tracks)
	assert.Equal(t, 1, s.DirectorClips)
}

func TestWorkspace_Layers(t *testing.T) {
	w := New("demo")
	require.NoError(t, w.AddSpineInstance(&session.SpineInstance{ID: "s1"}))
	require.NoError(t, w.AddLayer(&session.Layer{ID: "l1"}))
	assert.Error(t, w.AddLayer(&session.Layer{}))

	p := w.Project()
	assert.Len(t, p.Layers, 1)
	assert.Len(t, p.SpineInstances, 1)

	w.ResetLayers()
	assert.Empty(t, w.Project().Layers)
}

func TestWorkspace_Concurrent(t *testing.T) {
	w := New("demo")
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.AddModel(&session.Model{ID: session.NewID()})
			w.Summary()
			w.Project()
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, w.Summary().Models)
}
