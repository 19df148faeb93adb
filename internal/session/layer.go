package session

type ElementKind string

const (
	ElementImage ElementKind = "image"
	ElementText  ElementKind = "text"
	ElementSpine ElementKind = "spine"
)

type Element struct {
	ID       string
	Name     string
	Kind     ElementKind
	X        float64
	Y        float64
	Width    float64
	Height   float64
	Rotation float64
	Opacity  float64
	Visible  bool

	// Image content, either as bytes or as a canvas data URL.
	Image        *Blob
	ImageDataURL string

	Text string

	SpineInstanceID string
}

type Layer struct {
	ID       string
	Name     string
	Visible  bool
	Locked   bool
	Opacity  float64
	Order    int
	Elements []*Element
}

type SpineInstance struct {
	ID        string
	Name      string
	Skeleton  *Blob
	Atlas     *Blob
	Textures  []*Blob
	Animation string
	Skin      string
	Loop      bool
	X         float64
	Y         float64
	Scale     float64
}
