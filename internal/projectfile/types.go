// Package projectfile defines the documents stored in a .jr3d archive: the
// manifest, the project-state DTO tree, the export option policy and the
// deterministic entry paths binary assets are stored under.
package projectfile

import (
	"encoding/json"
	"time"
)

const (
	ManifestPath     = "manifest.json"
	ProjectStatePath = "project-state.json"
	FileExtension    = ".jr3d"
)

type Manifest struct {
	Version       string    `json:"version"`
	CreatedAt     time.Time `json:"createdAt"`
	AppVersion    string    `json:"appVersion"`
	ProjectName   string    `json:"projectName"`
	ModelCount    int       `json:"modelCount"`
	HasAnimations bool      `json:"hasAnimations"`
}

// ProjectState is the full project document. Director is present iff
// animations were exported; Layers and SpineInstances are present, possibly
// empty, iff 2D content was exported.
type ProjectState struct {
	Version        string                      `json:"version"`
	Name           string                      `json:"name"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
	ExportOptions  ExportOptions               `json:"exportOptions"`
	Models         []SerializableModel         `json:"models"`
	Director       *SerializableDirector       `json:"director,omitempty"`
	GlobalSettings GlobalSettings              `json:"globalSettings"`
	Layers         []SerializableLayer         `json:"layers,omitzero"`
	SpineInstances []SerializableSpineInstance `json:"spineInstances,omitzero"`
}

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type GlobalSettings struct {
	BackgroundColor  string  `json:"backgroundColor"`
	ShowGrid         bool    `json:"showGrid"`
	ShowAxes         bool    `json:"showAxes"`
	AmbientIntensity float64 `json:"ambientIntensity"`
	CameraPosition   Vec3    `json:"cameraPosition"`
	CameraTarget     Vec3    `json:"cameraTarget"`
}

type SerializableModel struct {
	ID           string                    `json:"id"`
	Name         string                    `json:"name"`
	ModelPath    string                    `json:"modelPath"`
	TexturePaths []string                  `json:"texturePaths"`
	CreatedClips []SerializableClip        `json:"createdClips,omitempty"`
	Position     Vec3                      `json:"position"`
	Rotation     Vec3                      `json:"rotation"`
	Scale        Vec3                      `json:"scale"`
	Visible      bool                      `json:"visible"`
	Opacity      float64                   `json:"opacity"`
	ShaderGroups []SerializableShaderGroup `json:"shaderGroups,omitempty"`
	Effects      []SerializableEffect      `json:"effects,omitempty"`
	Snapshots    []SerializableSnapshot    `json:"snapshots,omitempty"`
}

type SerializableClip struct {
	CustomID     string  `json:"customId"`
	DisplayName  string  `json:"displayName"`
	OriginalName string  `json:"originalName"`
	StartFrame   int     `json:"startFrame"`
	EndFrame     int     `json:"endFrame"`
	Duration     float64 `json:"duration"`
	FPS          float64 `json:"fps"`
}

type SerializableSnapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	ImagePath string    `json:"imagePath"`
}

type SerializableDirector struct {
	FPS               int                         `json:"fps"`
	TotalFrames       int                         `json:"totalFrames"`
	InPoint           int                         `json:"inPoint"`
	OutPoint          int                         `json:"outPoint"`
	LoopRegionEnabled bool                        `json:"loopRegionEnabled"`
	Tracks            []SerializableDirectorTrack `json:"tracks"`
}

type SerializableDirectorTrack struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	Order    int                        `json:"order"`
	IsLocked bool                       `json:"isLocked"`
	IsMuted  bool                       `json:"isMuted"`
	Clips    []SerializableDirectorClip `json:"clips"`
}

type SerializableDirectorClip struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	SourceType        string  `json:"sourceType"`
	SourceModelID     string  `json:"sourceModelId"`
	SourceAnimationID string  `json:"sourceAnimationId"`
	StartFrame        int     `json:"startFrame"`
	EndFrame          int     `json:"endFrame"`
	TrimStart         int     `json:"trimStart"`
	TrimEnd           int     `json:"trimEnd"`
	Speed             float64 `json:"speed"`
	Loop              bool    `json:"loop"`
	BlendIn           int     `json:"blendIn"`
	BlendOut          int     `json:"blendOut"`
}

type SerializableShaderGroup struct {
	ID        string                      `json:"id"`
	Name      string                      `json:"name"`
	Enabled   bool                        `json:"enabled"`
	MeshNames []string                    `json:"meshNames"`
	Features  []SerializableShaderFeature `json:"features"`
}

// SerializableShaderFeature carries a per-type params record; decode it
// with DecodeParams.
type SerializableShaderFeature struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Enabled bool            `json:"enabled"`
	Params  json.RawMessage `json:"params"`
}

type SerializableEffect struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	SourceType    string                `json:"sourceType"`
	EffectPath    string                `json:"effectPath"`
	ResourcePaths []string              `json:"resourcePaths"`
	Position      Vec3                  `json:"position"`
	Rotation      Vec3                  `json:"rotation"`
	Scale         Vec3                  `json:"scale"`
	Speed         float64               `json:"speed"`
	Loop          bool                  `json:"loop"`
	Enabled       bool                  `json:"enabled"`
	BoundBoneName string                `json:"boundBoneName,omitempty"`
	Triggers      []SerializableTrigger `json:"triggers,omitempty"`
}

type SerializableTrigger struct {
	ID       string `json:"id"`
	ClipID   string `json:"clipId"`
	Frame    int    `json:"frame"`
	Duration *int   `json:"duration,omitempty"`
}

type SerializableLayer struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Visible  bool                  `json:"visible"`
	Locked   bool                  `json:"locked"`
	Opacity  float64               `json:"opacity"`
	Order    int                   `json:"order"`
	Elements []SerializableElement `json:"elements"`
}

type SerializableElement struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Width           float64 `json:"width"`
	Height          float64 `json:"height"`
	Rotation        float64 `json:"rotation"`
	Opacity         float64 `json:"opacity"`
	Visible         bool    `json:"visible"`
	ImagePath       string  `json:"imagePath,omitempty"`
	Text            string  `json:"text,omitempty"`
	SpineInstanceID string  `json:"spineInstanceId,omitempty"`
}

type SerializableSpineInstance struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SkeletonPath string   `json:"skeletonPath"`
	AtlasPath    string   `json:"atlasPath"`
	TexturePaths []string `json:"texturePaths"`
	Animation    string   `json:"animation"`
	Skin         string   `json:"skin,omitempty"`
	Loop         bool     `json:"loop"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Scale        float64  `json:"scale"`
}
