package session

// EffectSource selects how an effect's files are resolved at export time.
type EffectSource string

const (
	// EffectSourcePublic effects live in the shared resource library and are
	// fetched from the resource root.
	EffectSourcePublic EffectSource = "public"
	// EffectSourceUploaded effects were uploaded by the user and are held in memory.
	EffectSourceUploaded EffectSource = "uploaded"
)

// NormalizeEffectSource maps an absent source type to public.
func NormalizeEffectSource(s EffectSource) EffectSource {
	if s == "" {
		return EffectSourcePublic
	}
	return s
}

// EffectAsset is one in-memory file of an effect.
type EffectAsset struct {
	RelativePath string
	Blob         *Blob
}

// Trigger fires an effect when clip ClipID reaches Frame.
type Trigger struct {
	ID       string
	ClipID   string
	Frame    int
	Duration *int
}

type Effect struct {
	ID         string
	Name       string
	SourceType EffectSource
	// EffectPath is the primary effect file, relative to the resource root
	// for public effects and to the upload root for uploaded ones.
	EffectPath   string
	Dependencies []string
	Assets       []EffectAsset
	Transform    Transform
	Speed        float64
	Loop         bool
	Enabled      bool

	// Bones are bound by name; the UUID is only valid for the currently
	// loaded skeleton.
	BoundBoneName string
	BoundBoneUUID string

	Triggers []Trigger
}
