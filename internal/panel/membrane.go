package panel

import (
	"math"
	"slices"

	"github.com/RMahshie/roomtreat/internal/errs"
)

const (
	// membraneConstant is the 60 in f = 60/√(m·d), m in kg/m², d in metres.
	membraneConstant = 60.0

	defaultMembraneDepthMM = 100.0
)

// SheetMaterial is a standard membrane skin.
type SheetMaterial struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	ThicknessMM float64 `json:"thickness_mm"`
	SurfaceMass float64 `json:"surface_mass"`
}

// sheetMaterials is ordered by surface mass.
var sheetMaterials = []SheetMaterial{
	{Key: "plywood_3mm", Name: "3 mm plywood", ThicknessMM: 3, SurfaceMass: 1.8},
	{Key: "hardboard_3mm", Name: "3 mm hardboard", ThicknessMM: 3, SurfaceMass: 3.0},
	{Key: "mdf_6mm", Name: "6 mm MDF", ThicknessMM: 6, SurfaceMass: 4.4},
	{Key: "plywood_9mm", Name: "9 mm plywood", ThicknessMM: 9, SurfaceMass: 5.4},
	{Key: "mdf_9mm", Name: "9 mm MDF", ThicknessMM: 9, SurfaceMass: 6.6},
	{Key: "mdf_12mm", Name: "12 mm MDF", ThicknessMM: 12, SurfaceMass: 8.8},
	{Key: "mdf_18mm", Name: "18 mm MDF", ThicknessMM: 18, SurfaceMass: 13.2},
}

// SheetMaterials returns a copy of the membrane catalog, lightest first.
func SheetMaterials() []SheetMaterial {
	return slices.Clone(sheetMaterials)
}

// MembraneParams choose a cavity depth and optionally pin the skin material.
type MembraneParams struct {
	TargetFrequency float64 `json:"target_frequency"`
	CavityDepthMM   float64 `json:"cavity_depth_mm,omitempty"`
	Material        string  `json:"material,omitempty"`
}

// MembraneDetail reports required vs selected surface mass.
type MembraneDetail struct {
	CavityDepthMM float64 `json:"cavity_depth_mm"`
	RequiredMass  float64 `json:"required_mass"`
	Material      string  `json:"material"`
	SurfaceMass   float64 `json:"surface_mass"`
}

// MembraneMass solves f = 60/√(m·d) for m.
func MembraneMass(f, depthM float64) float64 {
	r := membraneConstant / f
	return r * r / depthM
}

// MembraneFrequency is the resonance of surface mass m over depth d.
func MembraneFrequency(mass, depthM float64) float64 {
	return membraneConstant / math.Sqrt(mass*depthM)
}

// DesignMembrane selects the lightest sheet at least as heavy as required,
// so the panel never resonates above its target. A pinned lighter sheet is
// honoured with a warning.
func DesignMembrane(p MembraneParams) (Design, error) {
	if err := requireTarget("membrane.target_frequency", p.TargetFrequency); err != nil {
		return Design{}, err
	}
	if err := positive("membrane.cavity_depth_mm", p.CavityDepthMM); err != nil {
		return Design{}, err
	}
	depth := orDefault(p.CavityDepthMM, defaultMembraneDepthMM)
	required := MembraneMass(p.TargetFrequency, depth/1000)

	var (
		sheet    SheetMaterial
		warnings []errs.Warning
	)
	if p.Material != "" {
		i := slices.IndexFunc(sheetMaterials, func(s SheetMaterial) bool { return s.Key == p.Material })
		if i < 0 {
			return Design{}, errs.Validation("membrane.material", p.Material, "unknown sheet material")
		}
		sheet = sheetMaterials[i]
		if sheet.SurfaceMass < required {
			warnings = append(warnings, errs.Warning{Code: WarnMembraneLighter, Field: "membrane.material", Value: sheet.SurfaceMass})
		}
	} else {
		i := slices.IndexFunc(sheetMaterials, func(s SheetMaterial) bool { return s.SurfaceMass >= required })
		if i < 0 {
			return Design{}, errs.Unreachable(string(Membrane), p.TargetFrequency, "required surface mass exceeds the heaviest sheet")
		}
		sheet = sheetMaterials[i]
	}

	achieved := MembraneFrequency(sheet.SurfaceMass, depth/1000)

	return Design{
		Kind:              Membrane,
		Quantity:          1,
		WidthMM:           BroadbandWidthMM,
		HeightMM:          BroadbandHeightMM,
		DepthMM:           depth + sheet.ThicknessMM,
		TargetFrequency:   p.TargetFrequency,
		AchievedFrequency: round(achieved, 2),
		Membrane: &MembraneDetail{
			CavityDepthMM: depth,
			RequiredMass:  round(required, 3),
			Material:      sheet.Key,
			SurfaceMass:   sheet.SurfaceMass,
		},
		Materials: []BOMEntry{
			{Item: sheet.Name, Dimensions: dims(BroadbandWidthMM, BroadbandHeightMM, sheet.ThicknessMM), Quantity: 1, Unit: "pcs"},
			{Item: "Timber frame", Dimensions: dims(depth, frameStockMM), Quantity: round(2*(BroadbandWidthMM+BroadbandHeightMM)/1000, 2), Unit: "m"},
			{Item: "Mineral wool fill", Dimensions: dims(BroadbandWidthMM, BroadbandHeightMM, fillThicknessMM), Quantity: 1, Unit: "pcs"},
		},
		Warnings: warnings,
	}, nil
}
