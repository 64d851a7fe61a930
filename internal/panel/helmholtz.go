package panel

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/errs"
)

const (
	// endCorrection is applied to slot width in the effective neck length L + 0.8w.
	endCorrection = 0.8
	// helmholtzQ sets the reported bandwidth as f/Q.
	helmholtzQ = 5.0

	defaultPanelThicknessMM = 18.0
	defaultSlotWidthMM      = 12.0
	defaultCavityWidthMM    = 600.0
	defaultCavityHeightMM   = 1200.0
	defaultCavityDepthMM    = 200.0
	cabinetStockMM          = 18.0
	fillThicknessMM         = 50.0
	minSlotLengthMM         = 50.0
)

// HelmholtzParams describe a slotted-front resonator. Slots run across the cavity width.
type HelmholtzParams struct {
	TargetFrequency  float64 `json:"target_frequency"`
	PanelThicknessMM float64 `json:"panel_thickness_mm,omitempty"`
	SlotWidthMM      float64 `json:"slot_width_mm,omitempty"`
	SlotLengthMM     float64 `json:"slot_length_mm,omitempty"`
	CavityWidthMM    float64 `json:"cavity_width_mm,omitempty"`
	CavityHeightMM   float64 `json:"cavity_height_mm,omitempty"`
	CavityDepthMM    float64 `json:"cavity_depth_mm,omitempty"`
}

// HelmholtzDetail separates the continuous solution from the slot-discretized build.
type HelmholtzDetail struct {
	RequiredSlotAreaMM2 float64 `json:"required_slot_area_mm2"`
	SlotCount           int     `json:"slot_count"`
	SlotWidthMM         float64 `json:"slot_width_mm"`
	SlotLengthMM        float64 `json:"slot_length_mm"`
	SlotAreaMM2         float64 `json:"slot_area_mm2"`
	StripHeightMM       float64 `json:"strip_height_mm"`
	EffectiveNeckMM     float64 `json:"effective_neck_mm"`
	CavityVolumeM3      float64 `json:"cavity_volume_m3"`
	BandwidthHz         float64 `json:"bandwidth_hz"`
	BandLow             float64 `json:"band_low"`
	BandHigh            float64 `json:"band_high"`
}

// HelmholtzSlotArea solves f = (c/2π)·√(S/(V·L_eff)) for S, all SI units.
func HelmholtzSlotArea(f, volume, effNeck float64) float64 {
	k := 2 * math.Pi * f / c
	return k * k * volume * effNeck
}

// HelmholtzFrequency is the resonance of slot area S over cavity volume V.
func HelmholtzFrequency(slotArea, volume, effNeck float64) float64 {
	return c / (2 * math.Pi) * math.Sqrt(slotArea/(volume*effNeck))
}

// DesignHelmholtz solves for slot area, rounds it to whole slots and reports
// the frequency the rounded design actually achieves.
func DesignHelmholtz(p HelmholtzParams) (Design, error) {
	if err := requireTarget("helmholtz.target_frequency", p.TargetFrequency); err != nil {
		return Design{}, err
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"helmholtz.panel_thickness_mm", p.PanelThicknessMM},
		{"helmholtz.slot_width_mm", p.SlotWidthMM},
		{"helmholtz.slot_length_mm", p.SlotLengthMM},
		{"helmholtz.cavity_width_mm", p.CavityWidthMM},
		{"helmholtz.cavity_height_mm", p.CavityHeightMM},
		{"helmholtz.cavity_depth_mm", p.CavityDepthMM},
	} {
		if err := positive(f.name, f.v); err != nil {
			return Design{}, err
		}
	}

	thick := orDefault(p.PanelThicknessMM, defaultPanelThicknessMM)
	slotW := orDefault(p.SlotWidthMM, defaultSlotWidthMM)
	cavW := orDefault(p.CavityWidthMM, defaultCavityWidthMM)
	cavH := orDefault(p.CavityHeightMM, defaultCavityHeightMM)
	cavD := orDefault(p.CavityDepthMM, defaultCavityDepthMM)
	slotL := orDefault(p.SlotLengthMM, cavW)
	if slotL > cavW {
		return Design{}, errs.Validation("helmholtz.slot_length_mm", slotL, "longer than the cavity width")
	}
	if slotW >= cavH {
		return Design{}, errs.Validation("helmholtz.slot_width_mm", slotW, "not smaller than the cavity height")
	}

	volume := cavW * cavH * cavD / 1e9
	effNeck := (thick + endCorrection*slotW) / 1000
	required := HelmholtzSlotArea(p.TargetFrequency, volume, effNeck) * 1e6

	perSlot := slotW * slotL
	n := int(math.Round(required / perSlot))
	if n < 1 {
		n = 1
		// Below one full slot a free slot length is shortened instead of rounding up.
		if p.SlotLengthMM == 0 {
			slotL = required / slotW
			if slotL < minSlotLengthMM {
				return Design{}, errs.Unreachable(string(Helmholtz), p.TargetFrequency, "required slot area is below a single 50 mm slot")
			}
			perSlot = slotW * slotL
		}
	}
	// Every slot needs a strip of board at least as tall as the slot above it.
	maxSlots := int(cavH / (2 * slotW))
	if n > maxSlots {
		return Design{}, errs.Unreachable(string(Helmholtz), p.TargetFrequency, "required slot area does not fit the front panel")
	}

	area := float64(n) * perSlot
	achieved := HelmholtzFrequency(area/1e6, volume, effNeck)
	bw := achieved / helmholtzQ
	strip := (cavH - float64(n)*slotW) / float64(n+1)

	var warnings []errs.Warning
	if math.Abs(achieved-p.TargetFrequency) > p.TargetFrequency/helmholtzQ {
		warnings = append(warnings, errs.Warning{Code: WarnAchievedOffTarget, Field: "achieved_frequency", Value: round(achieved, 2)})
	}

	return Design{
		Kind:              Helmholtz,
		Quantity:          1,
		WidthMM:           cavW + 2*cabinetStockMM,
		HeightMM:          cavH + 2*cabinetStockMM,
		DepthMM:           cavD + thick + cabinetStockMM,
		TargetFrequency:   p.TargetFrequency,
		AchievedFrequency: round(achieved, 2),
		Helmholtz: &HelmholtzDetail{
			RequiredSlotAreaMM2: round(required, 1),
			SlotCount:           n,
			SlotWidthMM:         slotW,
			SlotLengthMM:        slotL,
			SlotAreaMM2:         round(area, 1),
			StripHeightMM:       round(strip, 1),
			EffectiveNeckMM:     round(effNeck*1000, 2),
			CavityVolumeM3:      round(volume, 4),
			BandwidthHz:         round(bw, 2),
			BandLow:             round(achieved-bw/2, 2),
			BandHigh:            round(achieved+bw/2, 2),
		},
		Materials: []BOMEntry{
			{Item: "Front board strip", Dimensions: dims(cavW, strip, thick), Quantity: float64(n + 1), Unit: "pcs"},
			{Item: "Cabinet side", Dimensions: dims(cavH+2*cabinetStockMM, cavD, cabinetStockMM), Quantity: 2, Unit: "pcs"},
			{Item: "Cabinet top/bottom", Dimensions: dims(cavW, cavD, cabinetStockMM), Quantity: 2, Unit: "pcs"},
			{Item: "Cabinet back", Dimensions: dims(cavW+2*cabinetStockMM, cavH+2*cabinetStockMM, cabinetStockMM), Quantity: 1, Unit: "pcs"},
			{Item: "Mineral wool fill", Dimensions: dims(cavW, cavH, fillThicknessMM), Quantity: 1, Unit: "pcs"},
		},
		Warnings: warnings,
	}, nil
}
