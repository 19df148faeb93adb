// Package session holds the live, in-memory editing session: model
// instances, their cut clips and materials, effect placements, 2D layers,
// Spine instances and the director timeline. Nothing here is serializable
// as-is; binary content lives in Blob handles.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/heimdex/jr3d/internal/animation"
)

// NewID returns a fresh identifier for a live entity.
func NewID() string {
	return uuid.NewString()
}

// Blob is an in-memory binary handle (uploaded file, decoded image, fetched resource).
type Blob struct {
	Name     string
	MimeType string
	Data     []byte
}

// Size returns the byte length of the blob, zero for nil.
func (b *Blob) Size() int {
	if b == nil {
		return 0
	}
	return len(b.Data)
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// IdentityTransform is the transform of a freshly loaded model.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{X: 1, Y: 1, Z: 1}}
}

type Bone struct {
	UUID string
	Name string
}

type Skeleton struct {
	Bones []Bone
}

// BoneByName returns the first bone with the given name.
func (s *Skeleton) BoneByName(name string) (Bone, bool) {
	if s == nil || name == "" {
		return Bone{}, false
	}
	for _, b := range s.Bones {
		if b.Name == name {
			return b, true
		}
	}
	return Bone{}, false
}

// Snapshot is a captured preview image of a model. Image may be empty when
// only the data URL form is held.
type Snapshot struct {
	ID           string
	Name         string
	CreatedAt    time.Time
	Image        *Blob
	ImageDataURL string
}

type Model struct {
	ID           string
	Name         string
	ModelFile    *Blob
	Textures     []*Blob
	Transform    Transform
	Visible      bool
	Opacity      float64
	Skeleton     *Skeleton
	OriginalClip *animation.Clip
	CreatedClips []*animation.CutClip
	ShaderGroups []ShaderGroup
	Effects      []*Effect
	Snapshots    []Snapshot
}

// ClipNames returns the display names of the model's cut clips.
func (m *Model) ClipNames() []string {
	names := make([]string, 0, len(m.CreatedClips))
	for _, c := range m.CreatedClips {
		names = append(names, c.DisplayName)
	}
	return names
}

// ModelUpdate is a partial update applied to a live model. Pointer fields
// are applied when non-nil, slice fields when non-nil.
type ModelUpdate struct {
	Name         *string
	Transform    *Transform
	Visible      *bool
	Opacity      *float64
	CreatedClips []*animation.CutClip
	ShaderGroups []ShaderGroup
	Effects      []*Effect
	Snapshots    []Snapshot
}

// Apply writes the set fields of u onto m.
func (u ModelUpdate) Apply(m *Model) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.Transform != nil {
		m.Transform = *u.Transform
	}
	if u.Visible != nil {
		m.Visible = *u.Visible
	}
	if u.Opacity != nil {
		m.Opacity = *u.Opacity
	}
	if u.CreatedClips != nil {
		m.CreatedClips = u.CreatedClips
	}
	if u.ShaderGroups != nil {
		m.ShaderGroups = u.ShaderGroups
	}
	if u.Effects != nil {
		m.Effects = u.Effects
	}
	if u.Snapshots != nil {
		m.Snapshots = u.Snapshots
	}
}

type GlobalSettings struct {
	BackgroundColor  string
	ShowGrid         bool
	ShowAxes         bool
	AmbientIntensity float64
	CameraPosition   Vec3
	CameraTarget     Vec3
}

// DefaultGlobalSettings mirrors a new, empty scene.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		BackgroundColor:  "#1e1e1e",
		ShowGrid:         true,
		ShowAxes:         true,
		AmbientIntensity: 0.6,
		CameraPosition:   Vec3{X: 0, Y: 1.5, Z: 5},
	}
}

// Project is everything an export reads from the live session.
type Project struct {
	Name           string
	CreatedAt      time.Time
	Models         []*Model
	Director       *Director
	Layers         []*Layer
	SpineInstances []*SpineInstance
	Settings       GlobalSettings
}
