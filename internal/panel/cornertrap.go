package panel

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/errs"
)

const (
	defaultTrapHeightMM = 2400.0
	defaultTrapMaterial = "rockwool_60"

	// MaxCornerDepthMM is the deepest corner fill that still fits a domestic room.
	MaxCornerDepthMM = 1500.0
	minCornerDepthMM = 50.0
)

// CornerTrapParams size a triangular corner fill for a target low-frequency bound.
type CornerTrapParams struct {
	TargetFrequency float64 `json:"target_frequency"`
	HeightMM        float64 `json:"height_mm,omitempty"`
	Material        string  `json:"material,omitempty"`
	Density         float64 `json:"density,omitempty"`
}

// CornerTrapDetail describes the fill. Legs run along both walls; the face is the hypotenuse.
type CornerTrapDetail struct {
	Material    string  `json:"material"`
	LegMM       float64 `json:"leg_mm"`
	FaceWidthMM float64 `json:"face_width_mm"`
	HeightMM    float64 `json:"height_mm"`
	AreaM2      float64 `json:"area_m2"`
	VolumeM3    float64 `json:"volume_m3"`
	Density     float64 `json:"density"`
	MassKg      float64 `json:"mass_kg"`
}

// CornerTrapDepthMM solves the quarter-wavelength relation for depth.
func CornerTrapDepthMM(f float64) float64 {
	return c / (4 * f) * 1000
}

// MinCornerTrapFrequency is the lowest target a MaxCornerDepthMM trap reaches.
func MinCornerTrapFrequency() float64 {
	return c / (4 * MaxCornerDepthMM / 1000)
}

// CornerTrap sizes a trap. Density outside 48–96 kg/m³ is accepted with a warning.
func (d *Designer) CornerTrap(p CornerTrapParams) (Design, error) {
	if err := requireTarget("corner_trap.target_frequency", p.TargetFrequency); err != nil {
		return Design{}, err
	}
	if err := positive("corner_trap.height_mm", p.HeightMM); err != nil {
		return Design{}, err
	}
	if err := positive("corner_trap.density", p.Density); err != nil {
		return Design{}, err
	}
	height := orDefault(p.HeightMM, defaultTrapHeightMM)
	key := p.Material
	if key == "" {
		key = defaultTrapMaterial
	}
	mat, ok := d.catalog.Lookup(key)
	if !ok {
		return Design{}, errs.Validation("corner_trap.material", key, "unknown material")
	}
	density := orDefault(p.Density, mat.Density)
	if density <= 0 {
		return Design{}, errs.Validation("corner_trap.density", density, "material has no density; supply one")
	}

	leg := CornerTrapDepthMM(p.TargetFrequency)
	switch {
	case leg > MaxCornerDepthMM+1e-6:
		return Design{}, errs.Unreachable(string(CornerTrap), p.TargetFrequency, "required depth exceeds 1500 mm")
	case leg < minCornerDepthMM:
		return Design{}, errs.Unreachable(string(CornerTrap), p.TargetFrequency, "required depth is below 50 mm")
	}

	area := (leg / 1000) * (leg / 1000) / 2
	volume := area * height / 1000
	mass := volume * density
	face := leg * math.Sqrt2

	return Design{
		Kind:              CornerTrap,
		Quantity:          1,
		WidthMM:           round(face, 1),
		HeightMM:          height,
		DepthMM:           round(leg/math.Sqrt2, 1),
		TargetFrequency:   p.TargetFrequency,
		AchievedFrequency: p.TargetFrequency,
		CornerTrap: &CornerTrapDetail{
			Material:    mat.Key,
			LegMM:       round(leg, 1),
			FaceWidthMM: round(face, 1),
			HeightMM:    height,
			AreaM2:      round(area, 4),
			VolumeM3:    round(volume, 4),
			Density:     density,
			MassKg:      round(mass, 2),
		},
		Materials: []BOMEntry{
			{Item: mat.Name, Dimensions: dims(leg, leg, height), Quantity: round(mass, 2), Unit: "kg"},
			{Item: "Acoustic fabric", Quantity: round(face*height/1e6, 2), Unit: "m2"},
			{Item: "Timber batten", Dimensions: dims(frameStockMM, frameStockMM), Quantity: round(2*height/1000+2*face/1000, 2), Unit: "m"},
		},
		Warnings: densityWarning(density),
	}, nil
}
