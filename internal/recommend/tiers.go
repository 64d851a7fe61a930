package recommend

import (
	"errors"
	"math"
	"slices"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/acoustics/schroeder"
	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/RMahshie/roomtreat/internal/panel"
	"github.com/RMahshie/roomtreat/internal/placement"
)

const (
	modalLimit         = 300.0
	helmholtzLimit     = 80.0
	membraneLimit      = 200.0
	maxTunedDevices    = 3
	cornerTrapCount    = 4
	ceilingPanelCount  = 2
	rearCoverage       = 0.5
	reflectiveAlpha    = 0.2
	treatedFraction    = 0.2
	flutterMinSpacing  = 1.7
	spotDiffuserCount  = 2
	firstReflectionGap = 50.0
	rearAirGapMM       = 100.0
	panelThicknessMM   = 100.0
)

// skip turns an unreachable design into a Skipped entry; other errors propagate.
func skip(tier Tier, kind panel.Kind, target float64, err error) (Skipped, error) {
	var u *errs.UnreachableError
	if errors.As(err, &u) {
		return Skipped{Tier: tier, Kind: kind, TargetFrequency: target, Reason: u.Reason}, nil
	}
	return Skipped{}, err
}

// modalTier recommends corner traps sized at the dominant problem frequency,
// plus tuned absorbers for the strongest measured bass peaks.
func modalTier(e *Engine, in Input, _ []Recommendation) ([]Recommendation, []Skipped, error) {
	var problems []float64
	for _, f := range in.Bonello.ProblemFrequencies {
		if f < modalLimit {
			problems = append(problems, f)
		}
	}
	var measured []float64
	if in.Measurement != nil {
		for _, mp := range in.Measurement.ModalProblems {
			measured = append(measured, mp.Frequency)
		}
	}
	if in.Bonello.Pass && len(problems) == 0 && len(measured) == 0 {
		return nil, nil, nil
	}

	why := Rationale{Code: CodeModalProblems, Source: "bonello", Frequencies: problems}
	if !in.Bonello.Pass {
		why.Code = CodeBonelloFailed
	}
	var target float64
	switch {
	case len(measured) > 0:
		target = measured[0]
		why.Source = "measurement"
		why.Frequencies = measured
	case len(problems) > 0:
		target = slices.Min(problems)
	case len(in.Modes) > 0:
		target = in.Modes[0].Frequency
	default:
		target = panel.MinCornerTrapFrequency()
	}
	target = math.Max(target, panel.MinCornerTrapFrequency())
	why.Value = target

	var (
		recs    []Recommendation
		skipped []Skipped
	)
	trap, err := e.designer.CornerTrap(panel.CornerTrapParams{TargetFrequency: target, HeightMM: in.Room.Height * 1000})
	if err != nil {
		s, err := skip(TierModal, panel.CornerTrap, target, err)
		if err != nil {
			return nil, nil, err
		}
		skipped = append(skipped, s)
	} else {
		recs = append(recs, recommendation(TierModal, "corner_bass_trap", "tri_corners", trap, cornerTrapCount, why))
	}

	if in.Measurement == nil {
		return recs, skipped, nil
	}
	for i, mp := range in.Measurement.ModalProblems {
		if i == maxTunedDevices {
			break
		}
		var (
			d    panel.Design
			kind panel.Kind
			item string
		)
		switch {
		case mp.Frequency < helmholtzLimit:
			kind, item = panel.Helmholtz, "helmholtz_resonator"
			d, err = panel.DesignHelmholtz(panel.HelmholtzParams{TargetFrequency: mp.Frequency})
		case mp.Frequency <= membraneLimit:
			kind, item = panel.Membrane, "membrane_absorber"
			d, err = panel.DesignMembrane(panel.MembraneParams{TargetFrequency: mp.Frequency})
		default:
			continue
		}
		if err != nil {
			s, err := skip(TierModal, kind, mp.Frequency, err)
			if err != nil {
				return nil, nil, err
			}
			skipped = append(skipped, s)
			continue
		}
		recs = append(recs, recommendation(TierModal, item, "front_wall", d, 1, Rationale{
			Code:        CodeMeasuredPeak,
			Source:      "measurement",
			Frequencies: []float64{mp.Frequency},
			Value:       mp.ExcessDB,
		}))
	}
	return recs, skipped, nil
}

// firstReflectionTier always places broadband panels at the side-wall and ceiling reflection points.
func firstReflectionTier(e *Engine, in Input, _ []Recommendation) ([]Recommendation, []Skipped, error) {
	d, err := e.designer.Broadband(panel.BroadbandParams{ThicknessMM: panelThicknessMM, AirGapMM: firstReflectionGap})
	if err != nil {
		return nil, nil, err
	}

	var recs []Recommendation
	for _, side := range []struct{ surface, speaker string }{
		{absorption.LeftWall, "left"},
		{absorption.RightWall, "right"},
	} {
		r := recommendation(TierFirstReflection, "broadband_panel", side.surface, d, 1, Rationale{Code: CodeFirstReflection, Source: "geometry"})
		if ref, ok := in.Placement.ReflectionOn(side.surface, side.speaker); ok {
			p := ref.Point
			r.Position = &p
			r.Rationale.Value = ref.PathDiff
		}
		recs = append(recs, r)
	}

	r := recommendation(TierFirstReflection, "broadband_panel", absorption.Ceiling, d, ceilingPanelCount, Rationale{Code: CodeFirstReflection, Source: "geometry"})
	lc, okL := in.Placement.ReflectionOn(absorption.Ceiling, "left")
	rc, okR := in.Placement.ReflectionOn(absorption.Ceiling, "right")
	if okL && okR {
		r.Position = &placement.Point{
			X: (lc.Point.X + rc.Point.X) / 2,
			Y: (lc.Point.Y + rc.Point.Y) / 2,
			Z: (lc.Point.Z + rc.Point.Z) / 2,
		}
		r.Rationale.Value = lc.PathDiff
	}
	recs = append(recs, r)
	return recs, nil, nil
}

// rearWallTier absorbs when the room is too live and diffuses otherwise.
func rearWallTier(e *Engine, in Input, _ []Recommendation) ([]Recommendation, []Skipped, error) {
	band := in.Room.Usage.TargetRT60()
	absorb := func(code string) ([]Recommendation, error) {
		d, err := e.designer.Broadband(panel.BroadbandParams{ThicknessMM: panelThicknessMM, AirGapMM: rearAirGapMM})
		if err != nil {
			return nil, err
		}
		qty := fit(in.Room.Width*rearCoverage, d.WidthMM)
		return []Recommendation{recommendation(TierRearWall, "broadband_panel", absorption.RearWall, d, qty, Rationale{
			Code:   code,
			Source: "rt60",
			RT60:   in.RT60.RT60,
			Target: &band,
		})}, nil
	}

	if in.RT60.RT60 > band.Max {
		recs, err := absorb(CodeRT60AboveTarget)
		return recs, nil, err
	}

	dist := in.Room.Length - in.Placement.Listener.Y
	f0 := panel.DefaultQRDFrequency
	if dist > 0 && dist < schroeder.MinDiffuserDistance(f0) {
		f0 = 3 * geometry.SpeedOfSound / dist
	}
	d, err := panel.DesignQRD(panel.QRDParams{DesignFrequency: f0})
	if err != nil {
		s, err := skip(TierRearWall, panel.QRD, f0, err)
		if err != nil {
			return nil, nil, err
		}
		recs, err := absorb(CodeDiffuserTooClose)
		return recs, []Skipped{s}, err
	}
	qty := fit(in.Room.Width*rearCoverage, d.WidthMM)
	return []Recommendation{recommendation(TierRearWall, "qrd_diffuser", absorption.RearWall, d, qty, Rationale{
		Code:   CodeRT60WithinTarget,
		Source: "rt60",
		RT60:   in.RT60.RT60,
		Target: &band,
		Value:  dist,
	})}, nil, nil
}

// rt60Tier sizes extra broadband panels so the planned absorption reaches
// the middle of the usage band. It is always present, possibly with zero quantity.
func rt60Tier(e *Engine, in Input, prior []Recommendation) ([]Recommendation, []Skipped, error) {
	band := in.Room.Usage.TargetRT60()
	d, err := e.designer.Broadband(panel.BroadbandParams{ThicknessMM: panelThicknessMM})
	if err != nil {
		return nil, nil, err
	}

	required := absorption.RequiredAbsorption(in.RT60.Volume, band.Mid())
	var planned float64
	for _, r := range prior {
		planned += e.sabins(r)
	}
	deficit := required - in.RT60.Absorption - planned
	per := faceArea(d) * d.Broadband.Coefficients.Mid()

	qty := 0
	code := CodeRT60OnTarget
	switch {
	case in.RT60.RT60 < band.Min:
		code = CodeRT60BelowTarget
	case deficit > 0 && per > 0:
		qty = int(math.Ceil(deficit / per))
		code = CodeRT60Trim
	}
	return []Recommendation{recommendation(TierRT60, "broadband_panel", "distributed", d, qty, Rationale{
		Code:   code,
		Source: "rt60",
		RT60:   in.RT60.RT60,
		Target: &band,
		Value:  math.Max(0, deficit),
	})}, nil, nil
}

// flutterTier flags parallel reflective pairs the plan leaves largely bare.
func flutterTier(e *Engine, in Input, prior []Recommendation) ([]Recommendation, []Skipped, error) {
	surfaces := in.Surfaces
	if len(surfaces) == 0 {
		surfaces = absorption.DefaultSurfaces(in.Room)
	}

	var recs []Recommendation
	for _, pair := range []struct {
		a, b    string
		spacing float64
	}{
		{absorption.FrontWall, absorption.RearWall, in.Room.Length},
		{absorption.LeftWall, absorption.RightWall, in.Room.Width},
		{absorption.Floor, absorption.Ceiling, in.Room.Height},
	} {
		if pair.spacing < flutterMinSpacing {
			continue
		}
		alphaA, areaA, err := e.highAlpha(surfaces, pair.a)
		if err != nil {
			return nil, nil, err
		}
		alphaB, areaB, err := e.highAlpha(surfaces, pair.b)
		if err != nil {
			return nil, nil, err
		}
		if areaA == 0 || areaB == 0 || alphaA > reflectiveAlpha || alphaB > reflectiveAlpha {
			continue
		}
		treated := treatedArea(prior, pair.a) + treatedArea(prior, pair.b)
		if treated >= treatedFraction*math.Min(areaA, areaB) {
			continue
		}

		d, err := panel.DesignQRD(panel.QRDParams{})
		if err != nil {
			return nil, nil, err
		}
		recs = append(recs, recommendation(TierFlutter, "spot_diffuser", pair.a+"+"+pair.b, d, spotDiffuserCount, Rationale{
			Code:        CodeFlutterEcho,
			Source:      "geometry",
			Frequencies: []float64{geometry.SpeedOfSound / (2 * pair.spacing)},
			Value:       pair.spacing,
		}))
	}
	return recs, nil, nil
}

// highAlpha is the area-weighted 1–4 kHz coefficient of every surface named name.
func (e *Engine) highAlpha(surfaces []absorption.Surface, name string) (alpha, area float64, err error) {
	var sabins float64
	for _, s := range surfaces {
		if s.Name != name {
			continue
		}
		co, err := e.absorb.Resolve(s)
		if err != nil {
			return 0, 0, err
		}
		area += s.Area
		sabins += s.Area * co.High()
	}
	if area == 0 {
		return 0, 0, nil
	}
	return sabins / area, area, nil
}

// sabins estimates the mid-band absorption a recommendation adds.
func (e *Engine) sabins(r Recommendation) float64 {
	if r.Design == nil || r.Quantity == 0 {
		return 0
	}
	var alpha float64
	switch r.Kind {
	case panel.Broadband:
		alpha = r.Design.Broadband.Coefficients.Mid()
	default:
		key := string(r.Kind)
		if r.Kind == panel.Helmholtz {
			key = string(panel.Membrane)
		}
		if m, ok := e.absorb.Catalog().Lookup(key); ok {
			alpha = m.Coefficients.Mid()
		}
	}
	return faceArea(*r.Design) * alpha * float64(r.Quantity)
}

func treatedArea(recs []Recommendation, location string) float64 {
	var area float64
	for _, r := range recs {
		if r.Location == location && r.Design != nil {
			area += faceArea(*r.Design) * float64(r.Quantity)
		}
	}
	return area
}

func faceArea(d panel.Design) float64 {
	return d.WidthMM * d.HeightMM / 1e6
}

// fit is how many items of widthMM fit across spanM, at least one.
func fit(spanM, widthMM float64) int {
	return max(1, int(spanM*1000/widthMM))
}
