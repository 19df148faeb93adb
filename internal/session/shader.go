package session

// FeatureKind names a shader feature variant.
type FeatureKind string

const (
	FeatureRimLight       FeatureKind = "rimLight"
	FeatureDissolve       FeatureKind = "dissolve"
	FeatureToon           FeatureKind = "toon"
	FeatureTextureOverlay FeatureKind = "textureOverlay"
)

// TextureSlot is one binary parameter of a shader feature.
type TextureSlot struct {
	Key  string
	Blob *Blob
}

// FeatureParams is the closed set of typed shader feature parameter records.
type FeatureParams interface {
	Kind() FeatureKind
	// TextureSlots lists the binary parameters in a fixed order. Unset
	// textures are reported with a nil Blob so slot numbering stays stable.
	TextureSlots() []TextureSlot
	sealed()
}

type RimLightParams struct {
	Color     string
	Intensity float64
	Power     float64
}

func (RimLightParams) Kind() FeatureKind           { return FeatureRimLight }
func (RimLightParams) TextureSlots() []TextureSlot { return nil }
func (RimLightParams) sealed()                     {}

type DissolveParams struct {
	Threshold    float64
	EdgeWidth    float64
	EdgeColor    string
	NoiseTexture *Blob
}

func (DissolveParams) Kind() FeatureKind { return FeatureDissolve }
func (p DissolveParams) TextureSlots() []TextureSlot {
	return []TextureSlot{{Key: "noiseTexture", Blob: p.NoiseTexture}}
}
func (DissolveParams) sealed() {}

type ToonParams struct {
	Steps       int
	OutlineSize float64
	RampTexture *Blob
}

func (ToonParams) Kind() FeatureKind { return FeatureToon }
func (p ToonParams) TextureSlots() []TextureSlot {
	return []TextureSlot{{Key: "rampTexture", Blob: p.RampTexture}}
}
func (ToonParams) sealed() {}

type TextureOverlayParams struct {
	Opacity   float64
	BlendMode string
	TilingU   float64
	TilingV   float64
	Texture   *Blob
	MaskMap   *Blob
}

func (TextureOverlayParams) Kind() FeatureKind { return FeatureTextureOverlay }
func (p TextureOverlayParams) TextureSlots() []TextureSlot {
	return []TextureSlot{
		{Key: "texture", Blob: p.Texture},
		{Key: "maskMap", Blob: p.MaskMap},
	}
}
func (TextureOverlayParams) sealed() {}

type ShaderFeature struct {
	ID      string
	Enabled bool
	Params  FeatureParams
}

type ShaderGroup struct {
	ID        string
	Name      string
	Enabled   bool
	MeshNames []string
	Features  []ShaderFeature
}
