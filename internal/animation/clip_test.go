package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkClip() *Clip {
	return &Clip{
		Name:     "mixamo.com",
		Duration: 3.0,
		Tracks: []Track{
			{
				Name:   "Hips.position",
				Times:  []float64{0, 1, 2, 3},
				Values: []float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 3, 0, 0},
				Stride: 3,
			},
			{Name: "empty", Stride: 1},
		},
	}
}

func TestCreateSubClip_DurationAndRange(t *testing.T) {
	cut, err := Extractor{}.CreateSubClip(walkClip(), "Attack", 10, 40, 30, nil)
	require.NoError(t, err)

	assert.Equal(t, "Attack", cut.DisplayName)
	assert.Equal(t, "mixamo.com", cut.OriginalName)
	assert.InDelta(t, float64(40-10)/30, cut.Duration, 1e-9)
	assert.InDelta(t, 1.0, cut.Clip.Duration, 1e-9)
	assert.NotEmpty(t, cut.CustomID)
	require.Len(t, cut.Clip.Tracks, 1, "empty tracks are dropped")
}

func TestCreateSubClip_SlicesKeyframes(t *testing.T) {
	cut, err := Extractor{}.CreateSubClip(walkClip(), "Mid", 15, 75, 30, nil)
	require.NoError(t, err)

	tr := cut.Clip.Tracks[0]
	// 0.5s..2.5s: interpolated start, keys at 1 and 2, interpolated end.
	assert.Equal(t, []float64{0, 0.5, 1.5, 2.0}, tr.Times)
	assert.InDeltaSlice(t, []float64{0.5, 0, 0, 1, 0, 0, 2, 0, 0, 2.5, 0, 0}, tr.Values, 1e-9)
}

func TestCreateSubClip_Deterministic(t *testing.T) {
	a, err := Extractor{}.CreateSubClip(walkClip(), "A", 3, 50, 30, nil)
	require.NoError(t, err)
	b, err := Extractor{}.CreateSubClip(walkClip(), "A", 3, 50, 30, nil)
	require.NoError(t, err)

	assert.Equal(t, a.Clip.Tracks, b.Clip.Tracks)
	assert.NotEqual(t, a.CustomID, b.CustomID)
}

func TestCreateSubClip_UniqueName(t *testing.T) {
	cut, err := Extractor{}.CreateSubClip(walkClip(), "Attack", 0, 30, 30, []string{"Attack", "Attack (2)"})
	require.NoError(t, err)
	assert.Equal(t, "Attack (3)", cut.DisplayName)
}

func TestCreateSubClip_Errors(t *testing.T) {
	tests := []struct {
		name       string
		clip       *Clip
		start, end int
		fps        float64
		want       error
	}{
		{"nil source", nil, 0, 10, 30, ErrNoSource},
		{"zero fps", walkClip(), 0, 10, 0, ErrInvalidFPS},
		{"empty range", walkClip(), 10, 10, 30, ErrInvalidRange},
		{"negative start", walkClip(), -1, 10, 30, ErrInvalidRange},
		{"past end", walkClip(), 0, 120, 30, ErrOutOfRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extractor{}.CreateSubClip(tc.clip, "x", tc.start, tc.end, tc.fps, nil)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTrackValueAt_Clamps(t *testing.T) {
	tr := walkClip().Tracks[0]
	assert.Equal(t, []float64{0, 0, 0}, tr.ValueAt(-1))
	assert.Equal(t, []float64{3, 0, 0}, tr.ValueAt(10))
	assert.Equal(t, []float64{2, 0, 0}, tr.ValueAt(2))
}
