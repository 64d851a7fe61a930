package recommend

import (
	"testing"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/bonello"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildInput(t *testing.T, d geometry.RoomDimensions, opts placement.Options) Input {
	t.Helper()
	room, err := geometry.NewRoom(d)
	require.NoError(t, err)
	ms, err := modes.Calculate(room, modes.DefaultCutoff)
	require.NoError(t, err)
	rt, err := absorption.NewEngine(nil).EstimateRoom(room, nil)
	require.NoError(t, err)
	pl, err := placement.Compute(room, opts)
	require.NoError(t, err)
	return Input{
		Room:      room,
		Modes:     ms,
		Bonello:   bonello.Evaluate(ms, modes.DefaultCutoff),
		RT60:      rt,
		Placement: pl,
	}
}

func reference(t *testing.T) Input {
	return buildInput(t, geometry.RoomDimensions{Length: 5, Width: 4, Height: 2.5}, placement.Options{})
}

func tiers(p Plan) []Tier {
	var out []Tier
	for _, r := range p.Recommendations {
		out = append(out, r.Tier)
	}
	return out
}

func byTier(p Plan, t Tier) []Recommendation {
	var out []Recommendation
	for _, r := range p.Recommendations {
		if r.Tier == t {
			out = append(out, r)
		}
	}
	return out
}

func TestGenerateBaseline(t *testing.T) {
	in := reference(t)
	in.Bonello = bonello.Result{Pass: true}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)

	assert.Equal(t, []Tier{
		TierFirstReflection, TierFirstReflection, TierFirstReflection,
		TierRearWall, TierRT60, TierFlutter,
	}, tiers(plan))
	for _, r := range plan.Recommendations {
		assert.Equal(t, int(r.Tier), r.Priority)
	}

	first := byTier(plan, TierFirstReflection)
	assert.Equal(t, absorption.LeftWall, first[0].Location)
	require.NotNil(t, first[0].Position)
	assert.InDelta(t, 0, first[0].Position.X, 1e-9)
	assert.Equal(t, absorption.Ceiling, first[2].Location)
	assert.Equal(t, 2, first[2].Quantity)

	rear := byTier(plan, TierRearWall)[0]
	assert.Equal(t, panel.Broadband, rear.Kind, "an untreated drywall room is far above target")
	assert.Equal(t, CodeRT60AboveTarget, rear.Rationale.Code)
	assert.Equal(t, 3, rear.Quantity)

	trim := byTier(plan, TierRT60)[0]
	assert.Equal(t, CodeRT60Trim, trim.Rationale.Code)
	assert.Greater(t, trim.Quantity, 20)

	flutter := byTier(plan, TierFlutter)
	require.Len(t, flutter, 1, "carpet floor and a treated rear wall leave only the side walls")
	assert.Equal(t, "left_wall+right_wall", flutter[0].Location)
	assert.Equal(t, panel.QRD, flutter[0].Kind)
	assert.InDelta(t, 343.0/8, flutter[0].Rationale.Frequencies[0], 1e-9)

	// Every 100 mm board shares one BOM line.
	require.NotEmpty(t, plan.BOM)
	assert.Equal(t, "600 x 1200 x 100 mm", plan.BOM[0].Dimensions)
	assert.Equal(t, float64(4+3+trim.Quantity), plan.BOM[0].Quantity)
}

func TestGenerateModalTier(t *testing.T) {
	in := reference(t)
	in.Bonello = bonello.Result{Pass: false, ProblemFrequencies: []float64{63, 40, 400}}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)

	modal := byTier(plan, TierModal)
	require.Len(t, modal, 1)
	trap := modal[0]
	assert.Equal(t, panel.CornerTrap, trap.Kind)
	assert.Equal(t, 4, trap.Quantity)
	assert.Equal(t, CodeBonelloFailed, trap.Rationale.Code)
	assert.Equal(t, []float64{63, 40}, trap.Rationale.Frequencies)
	assert.InDelta(t, panel.MinCornerTrapFrequency(), trap.TargetFrequency, 1e-9, "40 Hz is clamped to the deepest trap")
	require.NotNil(t, trap.Design)
	assert.Equal(t, 2500.0, trap.Design.HeightMM)
	assert.Equal(t, TierModal, plan.Recommendations[0].Tier)

	trim := byTier(plan, TierRT60)[0]
	baseline := in
	baseline.Bonello = bonello.Result{Pass: true}
	basePlan, err := NewEngine(nil, nil).Generate(baseline)
	require.NoError(t, err)
	assert.Less(t, trim.Quantity, byTier(basePlan, TierRT60)[0].Quantity, "corner traps count toward the RT60 target")
}

func TestGenerateMeasuredPeaks(t *testing.T) {
	in := reference(t)
	in.Bonello = bonello.Result{Pass: true}
	in.Measurement = &measurement.Analysis{ModalProblems: []measurement.ModalProblem{
		{Frequency: 45, ExcessDB: 8},
		{Frequency: 120, ExcessDB: 5},
		{Frequency: 250, ExcessDB: 4},
		{Frequency: 20, ExcessDB: 3},
	}}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)

	modal := byTier(plan, TierModal)
	require.Len(t, modal, 3)
	assert.Equal(t, panel.CornerTrap, modal[0].Kind)
	assert.Equal(t, "measurement", modal[0].Rationale.Source)
	assert.Equal(t, panel.Helmholtz, modal[1].Kind)
	assert.InDelta(t, 45, modal[1].AchievedFrequency, 0.01)
	assert.Equal(t, panel.Membrane, modal[2].Kind)
	assert.Equal(t, "hardboard_3mm", modal[2].Design.Membrane.Material)
	assert.Empty(t, plan.Skipped, "the fourth peak is beyond the tuned-device limit")
}

func TestGenerateSkipsUnreachable(t *testing.T) {
	in := reference(t)
	in.Bonello = bonello.Result{Pass: true}
	in.Measurement = &measurement.Analysis{ModalProblems: []measurement.ModalProblem{{Frequency: 20, ExcessDB: 9}}}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, panel.Helmholtz, plan.Skipped[0].Kind)
	assert.Equal(t, 20.0, plan.Skipped[0].TargetFrequency)
	assert.Len(t, byTier(plan, TierModal), 1, "the corner trap is still recommended")
}

func TestGenerateRearDiffusion(t *testing.T) {
	in := reference(t)
	in.Bonello = bonello.Result{Pass: true}
	in.RT60 = absorption.RT60Result{RT60: 0.25, Volume: 50, Absorption: 32.2}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)

	rear := byTier(plan, TierRearWall)[0]
	assert.Equal(t, panel.QRD, rear.Kind)
	assert.Equal(t, CodeRT60WithinTarget, rear.Rationale.Code)
	assert.Equal(t, panel.DefaultQRDFrequency, rear.TargetFrequency)
	assert.Equal(t, 5, rear.Quantity)

	trim := byTier(plan, TierRT60)[0]
	assert.Equal(t, 0, trim.Quantity)
	assert.Equal(t, CodeRT60OnTarget, trim.Rationale.Code)
	assert.Nil(t, trim.Design)
}

func TestGenerateRearDiffuserTooClose(t *testing.T) {
	t.Run("design frequency raised", func(t *testing.T) {
		in := buildInput(t, geometry.RoomDimensions{Length: 3, Width: 3, Height: 2.4}, placement.Options{})
		in.Bonello = bonello.Result{Pass: true}
		in.RT60 = absorption.RT60Result{RT60: 0.25, Volume: 21.6, Absorption: 13.9}

		plan, err := NewEngine(nil, nil).Generate(in)
		require.NoError(t, err)
		rear := byTier(plan, TierRearWall)[0]
		assert.Equal(t, panel.QRD, rear.Kind)
		assert.InDelta(t, 3*343/1.86, rear.TargetFrequency, 0.01)
	})

	t.Run("falls back to absorption", func(t *testing.T) {
		in := buildInput(t, geometry.RoomDimensions{Length: 4, Width: 3, Height: 2.4}, placement.Options{ListenerFraction: 0.95})
		in.Bonello = bonello.Result{Pass: true}
		in.RT60 = absorption.RT60Result{RT60: 0.25, Volume: 28.8, Absorption: 18.5}

		plan, err := NewEngine(nil, nil).Generate(in)
		require.NoError(t, err)
		rear := byTier(plan, TierRearWall)[0]
		assert.Equal(t, panel.Broadband, rear.Kind)
		assert.Equal(t, CodeDiffuserTooClose, rear.Rationale.Code)
		require.Len(t, plan.Skipped, 1)
		assert.Equal(t, TierRearWall, plan.Skipped[0].Tier)
	})
}

func TestFlutterHardFloor(t *testing.T) {
	in := buildInput(t, geometry.RoomDimensions{Length: 5, Width: 4, Height: 2.5, Usage: geometry.Other}, placement.Options{})
	in.Bonello = bonello.Result{Pass: true}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)

	var locations []string
	for _, r := range byTier(plan, TierFlutter) {
		locations = append(locations, r.Location)
	}
	assert.Equal(t, []string{"left_wall+right_wall", "floor+ceiling"}, locations)
}

func TestFlutterLowCeiling(t *testing.T) {
	in := buildInput(t, geometry.RoomDimensions{Length: 5, Width: 4, Height: 1.6, Usage: geometry.Other}, placement.Options{})
	in.Bonello = bonello.Result{Pass: true}

	plan, err := NewEngine(nil, nil).Generate(in)
	require.NoError(t, err)
	for _, r := range byTier(plan, TierFlutter) {
		assert.NotEqual(t, "floor+ceiling", r.Location, "1.6 m spacing is below the flutter threshold")
	}
}

func TestGenerateIdempotent(t *testing.T) {
	in := reference(t)
	in.Measurement = &measurement.Analysis{ModalProblems: []measurement.ModalProblem{{Frequency: 70, ExcessDB: 7}}}
	e := NewEngine(nil, nil)

	a, err := e.Generate(in)
	require.NoError(t, err)
	b, err := e.Generate(in)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "modal", TierModal.String())
	assert.Equal(t, "flutter", TierFlutter.String())
	assert.Equal(t, "unknown", Tier(9).String())
}
