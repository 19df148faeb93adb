package restore

import (
	"context"

	"github.com/heimdex/jr3d/internal/animation"
	"github.com/heimdex/jr3d/internal/session"
)

// ModelSource is the raw material a ModelLoader builds a live model from.
type ModelSource struct {
	Name      string
	ModelFile *session.Blob
	Textures  []*session.Blob
}

// ModelLoader decodes a model file into a live model with a fresh ID. It
// may fill Skeleton and OriginalClip.
type ModelLoader interface {
	LoadModel(ctx context.Context, src ModelSource) (*session.Model, error)
}

// ClipExtractor cuts a named frame range out of a model's original clip.
type ClipExtractor interface {
	CreateSubClip(original *animation.Clip, name string, startFrame, endFrame int, fps float64, existingNames []string) (*animation.CutClip, error)
}

// ModelRegistry is the live set of model instances.
type ModelRegistry interface {
	AddModel(m *session.Model) error
	UpdateModel(id string, u session.ModelUpdate) error
	GetModel(id string) (*session.Model, bool)
}

// ModelClearer is implemented by registries that can drop every model
// before an import.
type ModelClearer interface {
	ClearModels()
}

// DirectorController edits the live director timeline.
type DirectorController interface {
	Reset()
	SetFPS(fps int)
	SetTotalFrames(frames int)
	SetInPoint(frame int)
	SetOutPoint(frame int)
	ToggleLoopRegion()
	AddTrack(name string) string
	UpdateTrack(trackID string, u session.TrackUpdate) error
	AddClip(trackID string, clip session.DirectorClip) (string, error)
	UpdateClip(trackID, clipID string, u session.ClipUpdate) error
}

// LayerStore holds the 2D composition.
type LayerStore interface {
	ResetLayers()
	AddSpineInstance(s *session.SpineInstance) error
	AddLayer(l *session.Layer) error
}

// SettingsStore receives the project name and scene settings.
type SettingsStore interface {
	ApplySettings(name string, s session.GlobalSettings)
}

// ProgressFunc receives the overall progress of an import, 0 to 100.
type ProgressFunc func(percent int, message string)
