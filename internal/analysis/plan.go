package analysis

import (
	"context"
	"errors"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/bonello"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/RMahshie/roomtreat/internal/measurement"
	"github.com/RMahshie/roomtreat/internal/metrics"
	"github.com/RMahshie/roomtreat/internal/placement"
	"github.com/RMahshie/roomtreat/internal/recommend"
	"github.com/rs/zerolog/log"
)

// Measurement states reported alongside a plan.
const (
	MeasurementNone   = "none"
	MeasurementUsed   = "used"
	MeasurementFailed = "failed"
)

// Failure kinds that are not parse errors.
const (
	KindUnavailable = "unavailable"
	KindLoadFailed  = "load_failed"
)

// ErrLoaderUnavailable means a stored measurement was requested but no store is configured.
var ErrLoaderUnavailable = errors.New("analysis: measurement store not configured")

// MeasurementSource names either a stored measurement or inline file contents.
type MeasurementSource struct {
	ID       string `json:"id,omitempty"`
	Data     []byte `json:"data,omitempty"`
	Filename string `json:"filename,omitempty"`
	Format   string `json:"format,omitempty"`
}

// PlanRequest is everything a treatment plan depends on.
type PlanRequest struct {
	Room        geometry.RoomDimensions `json:"room"`
	Surfaces    []absorption.Surface    `json:"surfaces,omitempty"`
	Cutoff      float64                 `json:"cutoff,omitempty"`
	Placement   placement.Options       `json:"placement,omitempty"`
	Measurement *MeasurementSource      `json:"measurement,omitempty"`
}

// MeasurementStatus reports what happened to the optional measurement.
type MeasurementStatus struct {
	State  string `json:"state"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
	Points int    `json:"points,omitempty"`
}

// TreatmentPlan is the recommendation plan plus the context it was built from.
type TreatmentPlan struct {
	recommend.Plan
	Room              geometry.Room         `json:"room"`
	RT60              absorption.RT60Result `json:"rt60"`
	RT60Target        geometry.Band         `json:"rt60_target"`
	Bonello           bonello.Result        `json:"bonello"`
	Placement         placement.Result      `json:"placement"`
	Measurement       *measurement.Analysis `json:"measurement,omitempty"`
	MeasurementStatus MeasurementStatus     `json:"measurement_status"`
}

func (s *service) ImportMeasurement(ctx context.Context, data []byte, filename, hint string) (measurement.Series, error) {
	logger := log.Ctx(ctx)
	series, err := s.parse(data, filename, hint)
	if err != nil {
		kind, _ := errs.ParseKindOf(err)
		logger.Warn().Err(err).Str("operation", OpImportMeasurement).Str("filename", filename).Str("kind", string(kind)).Msg("Measurement rejected")
		s.metrics.ObserveImport(hint, metrics.ResultRejected)
		return measurement.Series{}, err
	}

	logger.Info().
		Str("operation", OpImportMeasurement).
		Str("filename", filename).
		Str("format", string(series.Metadata.Format)).
		Int("points", series.Len()).
		Int("skipped_rows", series.Metadata.SkippedRows).
		Msg("Measurement imported")
	s.metrics.ObserveImport(string(series.Metadata.Format), metrics.ResultOK)
	return series, nil
}

func (s *service) parse(data []byte, filename, hint string) (measurement.Series, error) {
	format, err := measurement.ParseFormat(hint)
	if err != nil {
		return measurement.Series{}, err
	}
	return s.parser.Parse(data, filename, format)
}

func (s *service) GenerateTreatmentPlan(ctx context.Context, req PlanRequest) (TreatmentPlan, error) {
	if err := ctx.Err(); err != nil {
		return TreatmentPlan{}, err
	}
	room, err := geometry.NewRoom(req.Room)
	if err != nil {
		return TreatmentPlan{}, err
	}
	cutoff := req.Cutoff
	if cutoff == 0 {
		cutoff = s.cutoff
	}
	ms, err := modes.Calculate(room, cutoff)
	if err != nil {
		return TreatmentPlan{}, err
	}
	rt, err := s.absorb.EstimateRoom(room, req.Surfaces)
	if err != nil {
		return TreatmentPlan{}, err
	}
	pl, err := placement.Compute(room, req.Placement)
	if err != nil {
		return TreatmentPlan{}, err
	}

	in := recommend.Input{
		Room:      room,
		Modes:     ms,
		Bonello:   bonello.Evaluate(ms, cutoff),
		RT60:      rt,
		Surfaces:  req.Surfaces,
		Placement: pl,
	}
	status := MeasurementStatus{State: MeasurementNone}
	if req.Measurement != nil {
		var ma *measurement.Analysis
		ma, status = s.measure(ctx, *req.Measurement, ms)
		in.Measurement = ma
	}

	plan, err := s.recommend.Generate(in)
	if err != nil {
		return TreatmentPlan{}, err
	}

	log.Ctx(ctx).Info().
		Str("operation", OpTreatmentPlan).
		Int("recommendations", len(plan.Recommendations)).
		Int("skipped", len(plan.Skipped)).
		Int("bom_lines", len(plan.BOM)).
		Str("measurement", status.State).
		Msg("Treatment plan generated")
	s.metrics.ObserveAnalysis(OpTreatmentPlan)

	return TreatmentPlan{
		Plan:              plan,
		Room:              room,
		RT60:              rt,
		RT60Target:        room.Usage.TargetRT60(),
		Bonello:           in.Bonello,
		Placement:         pl,
		Measurement:       in.Measurement,
		MeasurementStatus: status,
	}, nil
}

// measure loads or parses the measurement. Failures degrade the plan to
// geometry only and are reported in the status, never returned.
func (s *service) measure(ctx context.Context, src MeasurementSource, ms []modes.Mode) (*measurement.Analysis, MeasurementStatus) {
	logger := log.Ctx(ctx)
	var (
		series measurement.Series
		err    error
	)
	switch {
	case src.ID != "":
		if s.loader == nil {
			err = ErrLoaderUnavailable
			break
		}
		series, err = s.loader.LoadSeries(ctx, src.ID)
	default:
		series, err = s.ImportMeasurement(ctx, src.Data, src.Filename, src.Format)
	}
	if err != nil {
		st := MeasurementStatus{State: MeasurementFailed, Kind: KindLoadFailed, Detail: err.Error()}
		if kind, ok := errs.ParseKindOf(err); ok {
			st.Kind = string(kind)
		} else if errors.Is(err, ErrLoaderUnavailable) {
			st.Kind = KindUnavailable
		}
		logger.Warn().Err(err).Str("kind", st.Kind).Msg("Measurement unusable, planning from geometry only")
		return nil, st
	}

	a := measurement.Analyze(series, modes.Frequencies(ms))
	return &a, MeasurementStatus{State: MeasurementUsed, Points: series.Len()}
}
