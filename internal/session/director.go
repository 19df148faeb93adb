package session

// ClipSourceType tells which ledger a director clip's source resolves through.
type ClipSourceType string

const (
	ClipSourceModel ClipSourceType = "model"
	ClipSourceSpine ClipSourceType = "spine"
)

type DirectorClip struct {
	ID                string
	Name              string
	SourceType        ClipSourceType
	SourceModelID     string
	SourceAnimationID string
	StartFrame        int
	EndFrame          int
	TrimStart         int
	TrimEnd           int
	Speed             float64
	Loop              bool
	BlendIn           int
	BlendOut          int
}

// Frames returns the clip's length on the timeline.
func (c DirectorClip) Frames() int {
	return c.EndFrame - c.StartFrame
}

type DirectorTrack struct {
	ID       string
	Name     string
	Order    int
	IsLocked bool
	IsMuted  bool
	Clips    []DirectorClip
}

type Director struct {
	FPS               int
	TotalFrames       int
	InPoint           int
	OutPoint          int
	LoopRegionEnabled bool
	Tracks            []DirectorTrack
}

// DefaultDirector is the timeline of a new session.
func DefaultDirector() *Director {
	return &Director{FPS: 30, TotalFrames: 300, OutPoint: 300}
}

// TrackUpdate is a partial update of a director track.
type TrackUpdate struct {
	Name     *string
	IsLocked *bool
	IsMuted  *bool
}

func (u TrackUpdate) Apply(t *DirectorTrack) {
	if u.Name != nil {
		t.Name = *u.Name
	}
	if u.IsLocked != nil {
		t.IsLocked = *u.IsLocked
	}
	if u.IsMuted != nil {
		t.IsMuted = *u.IsMuted
	}
}

// ClipUpdate is a partial update of a director clip's playback settings.
type ClipUpdate struct {
	TrimStart *int
	TrimEnd   *int
	Speed     *float64
	Loop      *bool
	BlendIn   *int
	BlendOut  *int
}

func (u ClipUpdate) Apply(c *DirectorClip) {
	if u.TrimStart != nil {
		c.TrimStart = *u.TrimStart
	}
	if u.TrimEnd != nil {
		c.TrimEnd = *u.TrimEnd
	}
	if u.Speed != nil {
		c.Speed = *u.Speed
	}
	if u.Loop != nil {
		c.Loop = *u.Loop
	}
	if u.BlendIn != nil {
		c.BlendIn = *u.BlendIn
	}
	if u.BlendOut != nil {
		c.BlendOut = *u.BlendOut
	}
}
