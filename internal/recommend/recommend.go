// Package recommend turns room analysis into a prioritized treatment plan.
//
// The plan is built by a fixed pipeline of tier evaluators. Each evaluator
// sees the shared analysis input plus the recommendations made by earlier
// tiers, so later tiers can account for absorption already planned.
package recommend

import (
	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/bonello"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
)

// Tier is both the pipeline stage and the recommendation priority; 1 is most critical.
type Tier int

const (
	TierModal Tier = iota + 1
	TierFirstReflection
	TierRearWall
	TierRT60
	TierFlutter
)

func (t Tier) String() string {
	switch t {
	case TierModal:
		return "modal"
	case TierFirstReflection:
		return "first_reflection"
	case TierRearWall:
		return "rear_wall"
	case TierRT60:
		return "rt60"
	case TierFlutter:
		return "flutter"
	}
	return "unknown"
}

// Rationale codes.
const (
	CodeBonelloFailed    = "bonello_failed"
	CodeModalProblems    = "modal_problems"
	CodeMeasuredPeak     = "measured_peak"
	CodeFirstReflection  = "first_reflection"
	CodeRT60AboveTarget  = "rt60_above_target"
	CodeRT60WithinTarget = "rt60_within_target"
	CodeDiffuserTooClose = "diffuser_too_close"
	CodeRT60Trim         = "rt60_trim"
	CodeRT60OnTarget     = "rt60_on_target"
	CodeRT60BelowTarget  = "rt60_below_target"
	CodeFlutterEcho      = "flutter_echo"
)

// Rationale links a recommendation back to the analysis that triggered it.
type Rationale struct {
	Code        string         `json:"code"`
	Source      string         `json:"source,omitempty"`
	Frequencies []float64      `json:"frequencies,omitempty"`
	RT60        float64        `json:"rt60,omitempty"`
	Target      *geometry.Band `json:"target,omitempty"`
	Value       float64        `json:"value,omitempty"`
}

// Recommendation is one treatment item.
type Recommendation struct {
	Tier              Tier             `json:"tier"`
	Priority          int              `json:"priority"`
	Kind              panel.Kind       `json:"kind"`
	Item              string           `json:"item"`
	Location          string           `json:"location"`
	Position          *placement.Point `json:"position,omitempty"`
	Quantity          int              `json:"quantity"`
	WidthMM           float64          `json:"width_mm,omitempty"`
	HeightMM          float64          `json:"height_mm,omitempty"`
	MinDepthMM        float64          `json:"min_depth_mm,omitempty"`
	TargetFrequency   float64          `json:"target_frequency,omitempty"`
	AchievedFrequency float64          `json:"achieved_frequency,omitempty"`
	Rationale         Rationale        `json:"rationale"`
	Design            *panel.Design    `json:"design,omitempty"`
}

// Skipped records a device the engine wanted but could not realize.
type Skipped struct {
	Tier            Tier       `json:"tier"`
	Kind            panel.Kind `json:"kind"`
	TargetFrequency float64    `json:"target_frequency"`
	Reason          string     `json:"reason"`
}

// Plan is the ordered recommendation list and its merged bill of materials.
type Plan struct {
	Recommendations []Recommendation `json:"recommendations"`
	BOM             []panel.BOMEntry `json:"bill_of_materials"`
	Skipped         []Skipped        `json:"skipped,omitempty"`
}

// Input is the shared analysis context every tier reads.
type Input struct {
	Room        geometry.Room
	Modes       []modes.Mode
	Bonello     bonello.Result
	RT60        absorption.RT60Result
	Surfaces    []absorption.Surface
	Placement   placement.Result
	Measurement *measurement.Analysis
}

type evaluator func(e *Engine, in Input, prior []Recommendation) ([]Recommendation, []Skipped, error)

var pipeline = []evaluator{
	modalTier,
	firstReflectionTier,
	rearWallTier,
	rt60Tier,
	flutterTier,
}

// Engine holds the read-only collaborators the tiers design with.
type Engine struct {
	designer *panel.Designer
	absorb   *absorption.Engine
}

// NewEngine wires the panel designer and absorption engine.
func NewEngine(designer *panel.Designer, absorb *absorption.Engine) *Engine {
	if absorb == nil {
		absorb = absorption.NewEngine(nil)
	}
	if designer == nil {
		designer = panel.NewDesigner(absorb.Catalog())
	}
	return &Engine{designer: designer, absorb: absorb}
}

// Generate runs every tier in order. Identical input yields an identical plan.
func (e *Engine) Generate(in Input) (Plan, error) {
	var plan Plan
	for _, ev := range pipeline {
		recs, skipped, err := ev(e, in, plan.Recommendations)
		if err != nil {
			return Plan{}, err
		}
		plan.Recommendations = append(plan.Recommendations, recs...)
		plan.Skipped = append(plan.Skipped, skipped...)
	}

	var lists [][]panel.BOMEntry
	for _, r := range plan.Recommendations {
		if r.Design != nil && r.Quantity > 0 {
			lists = append(lists, r.Design.Materials)
		}
	}
	plan.BOM = panel.MergeBOM(lists...)
	return plan, nil
}

func recommendation(tier Tier, item, location string, d panel.Design, qty int, why Rationale) Recommendation {
	r := Recommendation{
		Tier:              tier,
		Priority:          int(tier),
		Kind:              d.Kind,
		Item:              item,
		Location:          location,
		Quantity:          qty,
		WidthMM:           d.WidthMM,
		HeightMM:          d.HeightMM,
		MinDepthMM:        d.DepthMM,
		TargetFrequency:   d.TargetFrequency,
		AchievedFrequency: d.AchievedFrequency,
		Rationale:         why,
	}
	if qty > 0 {
		scaled := d.Scale(qty)
		r.Design = &scaled
	}
	return r
}
