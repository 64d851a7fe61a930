package schroeder

import (
	"math"
	"testing"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyze(t *testing.T) {
	res, err := Analyze(50, 0.25)
	require.NoError(t, err)

	assert.InDelta(t, 141.42, res.Frequency, 0.01)
	assert.Equal(t, Range{Low: 0, High: res.Frequency}, res.BassTrapRange)
	assert.Equal(t, Range{Low: res.Frequency, High: UpperAudible}, res.AbsorberRange)
	assert.Less(t, res.TransitionZone.Low, res.Frequency)
	assert.Greater(t, res.TransitionZone.High, res.Frequency)
	assert.InDelta(t, res.TransitionZone.High/res.Frequency, math.Pow(2, 1.0/6), 1e-12)
	assert.Greater(t, res.ModalDensity, 0.0)
}

func TestFrequencyMonotonic(t *testing.T) {
	prev := 0.0
	for _, rt := range []float64{0.1, 0.2, 0.3, 0.5, 1.0, 2.0} {
		f := Frequency(rt, 60)
		assert.Greater(t, f, prev, "rt60 %v", rt)
		prev = f
	}

	prev = math.Inf(1)
	for _, v := range []float64{10, 30, 60, 120, 500} {
		f := Frequency(0.3, v)
		assert.Less(t, f, prev, "volume %v", v)
		prev = f
	}
}

func TestAnalyzeRejects(t *testing.T) {
	_, err := Analyze(0, 0.3)
	assert.True(t, errs.IsValidation(err))
	_, err = Analyze(50, -1)
	assert.True(t, errs.IsValidation(err))
	_, err = Analyze(math.NaN(), 0.3)
	assert.True(t, errs.IsValidation(err))
}

func TestForRoomDefaultsByUsage(t *testing.T) {
	room, err := geometry.NewRoom(geometry.RoomDimensions{Length: 5, Width: 4, Height: 2.5, Usage: geometry.Mixing})
	require.NoError(t, err)

	res, err := ForRoom(room, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, res.RT60, 1e-12)

	res, err = ForRoom(room, 0.4)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, res.RT60, 1e-12)
}

func TestClassify(t *testing.T) {
	res := Result{Frequency: 100}
	assert.Equal(t, StrongModal, res.Classify(30))
	assert.Equal(t, TransitionalModal, res.Classify(80))
	assert.Equal(t, TransitionalDiffuse, res.Classify(150))
	assert.Equal(t, Diffuse, res.Classify(400))
}

func TestMinDiffuserDistance(t *testing.T) {
	assert.InDelta(t, 2.058, MinDiffuserDistance(500), 1e-3)
}
