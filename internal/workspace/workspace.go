// Package workspace is the live editing session shared by the HTTP API, the
// CLI and the inbox watcher. It is the export source and the import target.
package workspace

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jinzhu/copier"

	"github.com/heimdex/jr3d/internal/session"
)

var (
	ErrModelNotFound = errors.New("model not found")
	ErrModelExists   = errors.New("model already exists")
	ErrTrackNotFound = errors.New("track not found")
	ErrClipNotFound  = errors.New("clip not found")
)

// Workspace is safe for concurrent use.
type Workspace struct {
	mu        sync.RWMutex
	name      string
	createdAt time.Time
	models    []*session.Model
	director  *session.Director
	layers    []*session.Layer
	spines    []*session.SpineInstance
	settings  session.GlobalSettings
}

func New(name string) *Workspace {
	return &Workspace{
		name:      name,
		createdAt: time.Now().UTC(),
		director:  session.DefaultDirector(),
		settings:  session.DefaultGlobalSettings(),
	}
}

func (w *Workspace) Name() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.name
}

func (w *Workspace) SetName(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.name = name
}

// Project returns a snapshot of the session for export. Entity pointers are
// shared; the director is deep-copied so the timeline cannot shift under
// an export.
func (w *Workspace) Project() *session.Project {
	w.mu.RLock()
	defer w.mu.RUnlock()

	var director session.Director
	if err := copier.CopyWithOption(&director, w.director, copier.Option{DeepCopy: true}); err != nil {
		director = *w.director
	}
	return &session.Project{
		Name:           w.name,
		CreatedAt:      w.createdAt,
		Models:         slices.Clone(w.models),
		Director:       &director,
		Layers:         slices.Clone(w.layers),
		SpineInstances: slices.Clone(w.spines),
		Settings:       w.settings,
	}
}

// Summary counts the entities of the session.
type Summary struct {
	Name           string `json:"name"`
	Models         int    `json:"models"`
	Clips          int    `json:"clips"`
	Effects        int    `json:"effects"`
	Tracks         int    `json:"tracks"`
	DirectorClips  int    `json:"directorClips"`
	Layers         int    `json:"layers"`
	SpineInstances int    `json:"spineInstances"`
}

func (w *Workspace) Summary() Summary {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Summary{
		Name:           w.name,
		Models:         len(w.models),
		Tracks:         len(w.director.Tracks),
		Layers:         len(w.layers),
		SpineInstances: len(w.spines),
	}
	for _, m := range w.models {
		s.Clips += len(m.CreatedClips)
		s.Effects += len(m.Effects)
	}
	for _, t := range w.director.Tracks {
		s.DirectorClips += len(t.Clips)
	}
	return s
}

// Models

func (w *Workspace) AddModel(m *session.Model) error {
	if m == nil || m.ID == "" {
		return fmt.Errorf("add model: missing id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.modelIndex(m.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrModelExists, m.ID)
	}
	w.models = append(w.models, m)
	return nil
}

func (w *Workspace) UpdateModel(id string, u session.ModelUpdate) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.modelIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	u.Apply(w.models[i])
	return nil
}

// GetModel returns a shallow copy of the model.
func (w *Workspace) GetModel(id string) (*session.Model, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	i := w.modelIndex(id)
	if i < 0 {
		return nil, false
	}
	m := *w.models[i]
	return &m, true
}

func (w *Workspace) RemoveModel(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.modelIndex(id)
	if i < 0 {
		return false
	}
	w.models = slices.Delete(w.models, i, i+1)
	return true
}

func (w *Workspace) ClearModels() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.models = nil
}

func (w *Workspace) modelIndex(id string) int {
	return slices.IndexFunc(w.models, func(m *session.Model) bool { return m.ID == id })
}

// Settings

func (w *Workspace) ApplySettings(name string, s session.GlobalSettings) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if name != "" {
		w.name = name
	}
	w.settings = s
}

func (w *Workspace) Settings() session.GlobalSettings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// 2D layers

func (w *Workspace) ResetLayers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layers = nil
	w.spines = nil
}

func (w *Workspace) AddSpineInstance(s *session.SpineInstance) error {
	if s == nil || s.ID == "" {
		return fmt.Errorf("add spine instance: missing id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.spines = append(w.spines, s)
	return nil
}

func (w *Workspace) AddLayer(l *session.Layer) error {
	if l == nil || l.ID == "" {
		return fmt.Errorf("add layer: missing id")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.layers = append(w.layers, l)
	return nil
}
