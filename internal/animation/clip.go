// Package animation holds keyframe clips and the reference sub-clip
// extractor that slices a model's full-length clip into named frame ranges.
package animation

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrInvalidFPS   = errors.New("fps must be positive")
	ErrInvalidRange = errors.New("end frame must be after start frame")
	ErrOutOfRange   = errors.New("frame range exceeds source clip")
	ErrNoSource     = errors.New("source clip is nil")
)

// frameEpsilon absorbs float rounding when comparing range end to clip duration.
const frameEpsilon = 1e-6

// Track is one animated property. Values holds Stride components per key.
type Track struct {
	Name   string
	Times  []float64
	Values []float64
	Stride int
}

// Len returns the number of keyframes.
func (t Track) Len() int {
	return len(t.Times)
}

// ValueAt returns the linearly interpolated value at time tm, clamped to
// the first and last key.
func (t Track) ValueAt(tm float64) []float64 {
	n := t.Len()
	if n == 0 || t.Stride <= 0 {
		return nil
	}
	if tm <= t.Times[0] {
		return slices.Clone(t.Values[:t.Stride])
	}
	if tm >= t.Times[n-1] {
		return slices.Clone(t.Values[(n-1)*t.Stride : n*t.Stride])
	}
	i := sort.SearchFloat64s(t.Times, tm)
	if t.Times[i] == tm {
		return slices.Clone(t.Values[i*t.Stride : (i+1)*t.Stride])
	}
	t0, t1 := t.Times[i-1], t.Times[i]
	alpha := (tm - t0) / (t1 - t0)
	out := make([]float64, t.Stride)
	for k := 0; k < t.Stride; k++ {
		a := t.Values[(i-1)*t.Stride+k]
		b := t.Values[i*t.Stride+k]
		out[k] = a + (b-a)*alpha
	}
	return out
}

// Clip is a keyframed animation; Duration is in seconds.
type Clip struct {
	Name     string
	Duration float64
	Tracks   []Track
}

// CutClip is a named frame range cut from a model's original clip.
// CustomID is the stable cross-reference key used by director clips and
// effect triggers.
type CutClip struct {
	CustomID     string
	DisplayName  string
	OriginalName string
	StartFrame   int
	EndFrame     int
	FPS          float64
	Duration     float64
	Clip         *Clip
}

// Extractor is the default sub-clip extraction collaborator.
type Extractor struct{}

// CreateSubClip slices original over [startFrame, endFrame] at fps. The
// result has a fresh CustomID and a display name unique among existingNames.
func (Extractor) CreateSubClip(original *Clip, name string, startFrame, endFrame int, fps float64, existingNames []string) (*CutClip, error) {
	if original == nil {
		return nil, ErrNoSource
	}
	if fps <= 0 {
		return nil, ErrInvalidFPS
	}
	if startFrame < 0 || endFrame <= startFrame {
		return nil, fmt.Errorf("%w: %d-%d", ErrInvalidRange, startFrame, endFrame)
	}

	start := float64(startFrame) / fps
	end := float64(endFrame) / fps
	if end > original.Duration+frameEpsilon {
		return nil, fmt.Errorf("%w: frame %d at %.0f fps is past %.3fs", ErrOutOfRange, endFrame, fps, original.Duration)
	}

	sliced := &Clip{
		Name:     name,
		Duration: end - start,
		Tracks:   make([]Track, 0, len(original.Tracks)),
	}
	for _, tr := range original.Tracks {
		if tr.Len() == 0 {
			continue
		}
		sliced.Tracks = append(sliced.Tracks, sliceTrack(tr, start, end))
	}

	return &CutClip{
		CustomID:     uuid.NewString(),
		DisplayName:  UniqueName(name, existingNames),
		OriginalName: original.Name,
		StartFrame:   startFrame,
		EndFrame:     endFrame,
		FPS:          fps,
		Duration:     float64(endFrame-startFrame) / fps,
		Clip:         sliced,
	}, nil
}

// sliceTrack keeps the keys strictly inside (start, end), adds interpolated
// keys at both boundaries and rebases times to zero.
func sliceTrack(tr Track, start, end float64) Track {
	out := Track{Name: tr.Name, Stride: tr.Stride}
	out.Times = append(out.Times, 0)
	out.Values = append(out.Values, tr.ValueAt(start)...)
	for i, tm := range tr.Times {
		if tm <= start || tm >= end {
			continue
		}
		out.Times = append(out.Times, tm-start)
		out.Values = append(out.Values, tr.Values[i*tr.Stride:(i+1)*tr.Stride]...)
	}
	out.Times = append(out.Times, end-start)
	out.Values = append(out.Values, tr.ValueAt(end)...)
	return out
}

// UniqueName returns name, or name suffixed " (n)" with the lowest n >= 2
// that does not collide with existing.
func UniqueName(name string, existing []string) string {
	if !slices.Contains(existing, name) {
		return name
	}
	for n := 2; n < math.MaxInt32; n++ {
		candidate := fmt.Sprintf("%s (%d)", name, n)
		if !slices.Contains(existing, candidate) {
			return candidate
		}
	}
	return name
}
