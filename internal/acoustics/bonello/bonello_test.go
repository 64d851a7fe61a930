package bonello

import (
	"testing"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(fs ...float64) []modes.Mode {
	out := make([]modes.Mode, len(fs))
	for i, f := range fs {
		out[i] = modes.Mode{Frequency: f, Type: modes.Axial, P: i + 1}
	}
	return out
}

func TestBands(t *testing.T) {
	bs := Bands(300)
	require.Len(t, bs, 12)
	assert.Equal(t, 20.0, bs[0].Nominal)
	assert.Equal(t, 250.0, bs[len(bs)-1].Nominal)

	for i := 1; i < len(bs); i++ {
		assert.InDelta(t, bs[i-1].High, bs[i].Low, 1e-9, "bands are contiguous")
	}
	assert.LessOrEqual(t, bs[len(bs)-1].High, 300.0)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		modes    []modes.Mode
		cutoff   float64
		pass     bool
		problems []float64
	}{
		{
			name:   "non-decreasing counts pass",
			modes:  at(42, 52, 53, 64, 65),
			cutoff: 75,
			pass:   true,
		},
		{
			name:     "decrease flagged",
			modes:    at(42, 43, 52),
			cutoff:   75,
			pass:     false,
			problems: []float64{50, 63},
		},
		{
			name:     "gap after modes flagged",
			modes:    at(42, 62, 80),
			cutoff:   90,
			pass:     false,
			problems: []float64{50},
		},
		{
			name:   "leading empty bands ignored",
			modes:  at(63, 80, 81),
			cutoff: 90,
			pass:   true,
		},
		{
			name:   "no modes",
			cutoff: 300,
			pass:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Evaluate(tt.modes, tt.cutoff)
			assert.Equal(t, tt.pass, res.Pass)
			assert.Equal(t, tt.problems, res.ProblemFrequencies)
		})
	}
}

func TestEvaluateRoom(t *testing.T) {
	room, err := geometry.NewRoom(geometry.RoomDimensions{Length: 5, Width: 4, Height: 2.5})
	require.NoError(t, err)
	ms, err := modes.Calculate(room, modes.DefaultCutoff)
	require.NoError(t, err)

	res := Evaluate(ms, modes.DefaultCutoff)
	total := 0
	for _, b := range res.Bands {
		total += b.Count
	}
	// Modes above the last full band (280.6 Hz) are not counted.
	assert.Equal(t, len(modes.Below(ms, res.Bands[len(res.Bands)-1].High)), total)
	assert.Equal(t, res.Pass, len(res.ProblemFrequencies) == 0)
}
