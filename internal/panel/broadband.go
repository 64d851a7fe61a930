package panel

import (
	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/errs"
)

// Standard broadband panel face.
const (
	BroadbandWidthMM  = 600.0
	BroadbandHeightMM = 1200.0

	defaultBroadbandThicknessMM = 100.0
	defaultPorousMaterial       = "owens_703"
	frameStockMM                = 19.0
	fabricHemMM                 = 100.0
)

// BroadbandParams describe a porous panel on standard 600x1200 mm face.
type BroadbandParams struct {
	ThicknessMM float64 `json:"thickness_mm,omitempty"`
	AirGapMM    float64 `json:"air_gap_mm,omitempty"`
	Material    string  `json:"material,omitempty"`
	Density     float64 `json:"density,omitempty"`
}

// BroadbandDetail reports the panel's low-frequency bound and predicted absorption.
type BroadbandDetail struct {
	Material        string                    `json:"material"`
	ThicknessMM     float64                   `json:"thickness_mm"`
	AirGapMM        float64                   `json:"air_gap_mm"`
	Density         float64                   `json:"density"`
	FlowResistivity float64                   `json:"flow_resistivity"`
	LowFrequency    float64                   `json:"low_frequency"`
	Coefficients    absorption.Coefficients   `json:"coefficients"`
	NRC             float64                   `json:"nrc"`
	Model           absorption.ImpedanceModel `json:"model"`
	MassKg          float64                   `json:"mass_kg"`
}

// BroadbandLowFrequency is the quarter-wavelength bound c/(4·d_total).
func BroadbandLowFrequency(thicknessMM, airGapMM float64) float64 {
	return c / (4 * (thicknessMM + airGapMM) / 1000)
}

// Broadband reports the bound of a fixed-size panel. It does not solve for a target.
func (d *Designer) Broadband(p BroadbandParams) (Design, error) {
	if err := positive("broadband.thickness_mm", p.ThicknessMM); err != nil {
		return Design{}, err
	}
	if err := positive("broadband.air_gap_mm", p.AirGapMM); err != nil {
		return Design{}, err
	}
	if err := positive("broadband.density", p.Density); err != nil {
		return Design{}, err
	}
	thickness := orDefault(p.ThicknessMM, defaultBroadbandThicknessMM)
	key := p.Material
	if key == "" {
		key = defaultPorousMaterial
	}

	mat, ok := d.catalog.Lookup(key)
	if !ok {
		return Design{}, errs.Validation("broadband.material", key, "unknown material")
	}
	if mat.FlowResistivity <= 0 {
		return Design{}, errs.Validation("broadband.material", key, "material has no flow resistivity")
	}
	density := orDefault(p.Density, mat.Density)

	pred, err := absorption.PredictPorous(absorption.PorousLayer{
		ThicknessMM:     thickness,
		AirGapMM:        p.AirGapMM,
		FlowResistivity: mat.FlowResistivity,
		Model:           absorption.Miki,
	})
	if err != nil {
		return Design{}, err
	}

	low := BroadbandLowFrequency(thickness, p.AirGapMM)
	volume := BroadbandWidthMM * BroadbandHeightMM * thickness / 1e9
	depth := thickness + p.AirGapMM
	fabricW := BroadbandWidthMM + 2*thickness + fabricHemMM
	fabricH := BroadbandHeightMM + 2*thickness + fabricHemMM

	return Design{
		Kind:              Broadband,
		Quantity:          1,
		WidthMM:           BroadbandWidthMM,
		HeightMM:          BroadbandHeightMM,
		DepthMM:           depth,
		AchievedFrequency: round(low, 2),
		Broadband: &BroadbandDetail{
			Material:        mat.Key,
			ThicknessMM:     thickness,
			AirGapMM:        p.AirGapMM,
			Density:         density,
			FlowResistivity: mat.FlowResistivity,
			LowFrequency:    round(low, 2),
			Coefficients:    pred.Random,
			NRC:             pred.NRC,
			Model:           pred.Model,
			MassKg:          round(volume*density, 2),
		},
		Materials: []BOMEntry{
			{Item: mat.Name, Dimensions: dims(BroadbandWidthMM, BroadbandHeightMM, thickness), Quantity: 1, Unit: "pcs"},
			{Item: "Timber frame", Dimensions: dims(thickness, frameStockMM), Quantity: round(2*(BroadbandWidthMM+BroadbandHeightMM)/1000, 2), Unit: "m"},
			{Item: "Acoustic fabric", Quantity: round(fabricW*fabricH/1e6, 2), Unit: "m2"},
		},
		Warnings: densityWarning(density),
	}, nil
}
