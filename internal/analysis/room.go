package analysis

import (
	"context"
	"math"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/bonello"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/acoustics/schroeder"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/rs/zerolog/log"
)

// AnalyzeOptions override the service defaults for one request.
type AnalyzeOptions struct {
	Cutoff   float64              `json:"cutoff,omitempty"`
	Surfaces []absorption.Surface `json:"surfaces,omitempty"`
}

// ModalAnalysis is the mode list and its distribution quality.
type ModalAnalysis struct {
	Cutoff             float64           `json:"cutoff"`
	Modes              []modes.Mode      `json:"modes"`
	Ratio              modes.RatioReport `json:"ratio"`
	Bonello            bonello.Result    `json:"bonello"`
	ProblemFrequencies []float64         `json:"problem_frequencies"`
	Spacing            modes.Spacing     `json:"spacing"`
	BassNotes          []modes.NoteMatch `json:"bass_notes,omitempty"`
}

// RoomAnalysis combines modes, the Schroeder transition and the RT60 estimate.
type RoomAnalysis struct {
	Room       geometry.Room         `json:"room"`
	Volume     float64               `json:"volume"`
	Modal      ModalAnalysis         `json:"modal"`
	Schroeder  schroeder.Result      `json:"schroeder"`
	RT60       absorption.RT60Result `json:"rt60"`
	RT60Target geometry.Band         `json:"rt60_target"`
}

// RoomInfo summarises the room for the quick view.
type RoomInfo struct {
	Room               geometry.Room `json:"room"`
	Volume             float64       `json:"volume"`
	SurfaceArea        float64       `json:"surface_area"`
	FloorArea          float64       `json:"floor_area"`
	SchroederFrequency float64       `json:"schroeder_frequency"`
}

// QuickModal is the headline modal summary.
type QuickModal struct {
	FirstAxialMode float64       `json:"first_axial_mode"`
	ModesBelow200  int           `json:"modes_below_200hz"`
	BonelloPass    bool          `json:"bonello_pass"`
	RatioQuality   modes.Quality `json:"ratio_quality"`
}

// QuickRecommendation is a generic starting point that needs no measurement.
type QuickRecommendation struct {
	Item       string     `json:"item"`
	Kind       panel.Kind `json:"kind"`
	Quantity   int        `json:"quantity"`
	Priority   int        `json:"priority"`
	MinDepthMM float64    `json:"min_depth_mm,omitempty"`
	WidthMM    float64    `json:"width_mm,omitempty"`
	HeightMM   float64    `json:"height_mm,omitempty"`
}

// QuickAnalysis is the reduced result for a first look at a room.
type QuickAnalysis struct {
	RoomInfo             RoomInfo              `json:"room_info"`
	ModalAnalysis        QuickModal            `json:"modal_analysis"`
	ProblemFrequencies   []float64             `json:"problem_frequencies"`
	QuickRecommendations []QuickRecommendation `json:"quick_recommendations"`
}

// Materials is the reference data exposed to clients.
type Materials struct {
	Materials []absorption.Material `json:"materials"`
	Sheets    []panel.SheetMaterial `json:"membrane_sheets"`
}

const (
	quickProblemCount     = 5
	quickTrapDepthMM      = 100.0
	diffuserRearClearance = 3.0
)

func (s *service) analyze(room geometry.Room, cutoff float64, surfaces []absorption.Surface) (RoomAnalysis, error) {
	if cutoff == 0 {
		cutoff = s.cutoff
	}
	ms, err := modes.Calculate(room, cutoff)
	if err != nil {
		return RoomAnalysis{}, err
	}
	rt, err := s.absorb.EstimateRoom(room, surfaces)
	if err != nil {
		return RoomAnalysis{}, err
	}
	sch, err := schroeder.ForRoom(room, rt.RT60)
	if err != nil {
		return RoomAnalysis{}, err
	}
	bon := bonello.Evaluate(ms, cutoff)

	return RoomAnalysis{
		Room:   room,
		Volume: room.Volume(),
		Modal: ModalAnalysis{
			Cutoff:             cutoff,
			Modes:              ms,
			Ratio:              modes.RatioQuality(room),
			Bonello:            bon,
			ProblemFrequencies: bon.ProblemFrequencies,
			Spacing:            modes.AnalyzeSpacing(ms),
			BassNotes:          modes.BassNoteMatches(ms),
		},
		Schroeder:  sch,
		RT60:       rt,
		RT60Target: room.Usage.TargetRT60(),
	}, nil
}

func (s *service) QuickAnalysis(ctx context.Context, dims geometry.RoomDimensions) (QuickAnalysis, error) {
	room, err := geometry.NewRoom(dims)
	if err != nil {
		return QuickAnalysis{}, err
	}
	full, err := s.analyze(room, 0, nil)
	if err != nil {
		return QuickAnalysis{}, err
	}

	axial := modes.Filter(full.Modal.Modes, modes.Axial)
	var first float64
	if len(axial) > 0 {
		first = round1(axial[0].Frequency)
	}
	problems := make([]float64, 0, quickProblemCount)
	for _, m := range axial[:min(quickProblemCount, len(axial))] {
		problems = append(problems, math.Round(m.Frequency))
	}

	rear := QuickRecommendation{Item: "broadband_panel", Kind: panel.Broadband, Quantity: 1, Priority: 3}
	if room.Length*(1-placement.DefaultListenerFraction) > diffuserRearClearance {
		rear = QuickRecommendation{Item: "qrd_diffuser", Kind: panel.QRD, Quantity: 1, Priority: 3}
	}

	res := QuickAnalysis{
		RoomInfo: RoomInfo{
			Room:               room,
			Volume:             room.Volume(),
			SurfaceArea:        room.SurfaceArea(),
			FloorArea:          room.FloorArea(),
			SchroederFrequency: math.Round(full.Schroeder.Frequency),
		},
		ModalAnalysis: QuickModal{
			FirstAxialMode: first,
			ModesBelow200:  len(modes.Below(full.Modal.Modes, quickAnalysisCeiling)),
			BonelloPass:    full.Modal.Bonello.Pass,
			RatioQuality:   full.Modal.Ratio.Quality,
		},
		ProblemFrequencies: problems,
		QuickRecommendations: []QuickRecommendation{
			{Item: "corner_bass_trap", Kind: panel.CornerTrap, Quantity: 4, Priority: 1, MinDepthMM: quickTrapDepthMM},
			{Item: "broadband_panel", Kind: panel.Broadband, Quantity: 3, Priority: 2, WidthMM: panel.BroadbandWidthMM, HeightMM: panel.BroadbandHeightMM},
			rear,
		},
	}

	log.Ctx(ctx).Info().
		Str("operation", OpQuickAnalysis).
		Float64("volume", res.RoomInfo.Volume).
		Float64("first_axial_mode", first).
		Msg("Quick analysis complete")
	s.metrics.ObserveAnalysis(OpQuickAnalysis)
	return res, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
