// Package analysis is the facade over the acoustics core. Transports call
// Service; it validates geometry once and fans out to the calculators.
package analysis

import (
	"context"
	"fmt"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/metrics"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/RMahshie/roomtreat/internal/recommend"
	"github.com/rs/zerolog/log"
)

// Operation names, used as log fields and metric labels.
const (
	OpAnalyzeRoom        = "analyze_room"
	OpQuickAnalysis      = "quick_analysis"
	OpImportMeasurement  = "import_measurement"
	OpTreatmentPlan      = "treatment_plan"
	OpDesignPanel        = "design_panel"
	OpSpeakerPlacement   = "speaker_placement"
	quickAnalysisCeiling = 200.0
)

// Service exposes the room analysis operations.
type Service interface {
	AnalyzeRoom(ctx context.Context, dims geometry.RoomDimensions, opts AnalyzeOptions) (RoomAnalysis, error)
	QuickAnalysis(ctx context.Context, dims geometry.RoomDimensions) (QuickAnalysis, error)
	ImportMeasurement(ctx context.Context, data []byte, filename, hint string) (measurement.Series, error)
	GenerateTreatmentPlan(ctx context.Context, req PlanRequest) (TreatmentPlan, error)
	DesignPanel(ctx context.Context, req panel.Request) (panel.Design, error)
	SpeakerPlacement(ctx context.Context, dims geometry.RoomDimensions, opts placement.Options) (placement.Result, error)
	Materials(ctx context.Context, category absorption.Category) Materials
}

// SeriesLoader fetches a previously imported measurement by id.
type SeriesLoader interface {
	LoadSeries(ctx context.Context, id string) (measurement.Series, error)
}

// Options configure NewService. Zero values select defaults.
type Options struct {
	Limits  measurement.Limits
	Cutoff  float64
	Catalog *absorption.Catalog
	Metrics *metrics.Metrics
	Loader  SeriesLoader
}

type service struct {
	cutoff    float64
	parser    *measurement.Parser
	absorb    *absorption.Engine
	designer  *panel.Designer
	recommend *recommend.Engine
	metrics   *metrics.Metrics
	loader    SeriesLoader
}

// NewService builds the facade. The catalogs are shared read-only by every request.
func NewService(opts Options) (Service, error) {
	cutoff := opts.Cutoff
	if cutoff == 0 {
		cutoff = modes.DefaultCutoff
	}
	if err := modes.ValidateCutoff(cutoff); err != nil {
		return nil, fmt.Errorf("analysis: %w", err)
	}
	absorb := absorption.NewEngine(opts.Catalog)
	designer := panel.NewDesigner(absorb.Catalog())
	return &service{
		cutoff:    cutoff,
		parser:    measurement.NewParser(opts.Limits),
		absorb:    absorb,
		designer:  designer,
		recommend: recommend.NewEngine(designer, absorb),
		metrics:   opts.Metrics,
		loader:    opts.Loader,
	}, nil
}

func (s *service) AnalyzeRoom(ctx context.Context, dims geometry.RoomDimensions, opts AnalyzeOptions) (RoomAnalysis, error) {
	room, err := geometry.NewRoom(dims)
	if err != nil {
		return RoomAnalysis{}, err
	}
	res, err := s.analyze(room, opts.Cutoff, opts.Surfaces)
	if err != nil {
		return RoomAnalysis{}, err
	}

	log.Ctx(ctx).Info().
		Str("operation", OpAnalyzeRoom).
		Float64("volume", res.Volume).
		Int("modes", len(res.Modal.Modes)).
		Bool("bonello_pass", res.Modal.Bonello.Pass).
		Float64("rt60", res.RT60.RT60).
		Msg("Room analyzed")
	s.metrics.ObserveAnalysis(OpAnalyzeRoom)
	return res, nil
}

func (s *service) DesignPanel(ctx context.Context, req panel.Request) (panel.Design, error) {
	d, err := s.designer.Design(req)
	if err != nil {
		return panel.Design{}, err
	}
	log.Ctx(ctx).Info().
		Str("operation", OpDesignPanel).
		Str("kind", string(d.Kind)).
		Float64("target", d.TargetFrequency).
		Float64("achieved", d.AchievedFrequency).
		Int("warnings", len(d.Warnings)).
		Msg("Panel designed")
	s.metrics.ObserveAnalysis(OpDesignPanel)
	return d, nil
}

func (s *service) SpeakerPlacement(ctx context.Context, dims geometry.RoomDimensions, opts placement.Options) (placement.Result, error) {
	room, err := geometry.NewRoom(dims)
	if err != nil {
		return placement.Result{}, err
	}
	res, err := placement.Compute(room, opts)
	if err != nil {
		return placement.Result{}, err
	}
	log.Ctx(ctx).Info().
		Str("operation", OpSpeakerPlacement).
		Str("speaker_type", string(res.SpeakerType)).
		Float64("triangle_side", res.TriangleSide).
		Msg("Speakers placed")
	s.metrics.ObserveAnalysis(OpSpeakerPlacement)
	return res, nil
}

// Materials lists the absorption catalog and the membrane sheet catalog.
func (s *service) Materials(_ context.Context, category absorption.Category) Materials {
	return Materials{
		Materials: s.absorb.Catalog().Materials(category),
		Sheets:    panel.SheetMaterials(),
	}
}
