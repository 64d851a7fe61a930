// Package panel sizes the five DIY treatment archetypes and lists the materials to build them.
package panel

import (
	"fmt"
	"math"
	"strings"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

const c = geometry.SpeedOfSound

// Kind is the closed set of panel archetypes.
type Kind string

const (
	Broadband  Kind = "broadband"
	CornerTrap Kind = "corner_trap"
	Helmholtz  Kind = "helmholtz"
	Membrane   Kind = "membrane"
	QRD        Kind = "qrd"
)

// Kinds lists every archetype in display order.
var Kinds = []Kind{Broadband, CornerTrap, Helmholtz, Membrane, QRD}

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", errs.Validation("kind", s, "must be one of broadband, corner_trap, helmholtz, membrane, qrd")
}

// Warning codes.
const (
	WarnDensityOutOfRange = "density_out_of_range"
	WarnMembraneLighter   = "membrane_lighter_than_required"
	WarnAchievedOffTarget = "achieved_frequency_off_target"
)

// BOMEntry is one line of a bill of materials.
type BOMEntry struct {
	Item       string  `json:"item"`
	Dimensions string  `json:"dimensions,omitempty"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
}

func (e BOMEntry) key() string {
	return e.Item + "\x00" + e.Dimensions + "\x00" + e.Unit
}

// MergeBOM combines entries sharing item, dimensions and unit. Order follows first appearance.
func MergeBOM(entries ...[]BOMEntry) []BOMEntry {
	var out []BOMEntry
	index := make(map[string]int)
	for _, list := range entries {
		for _, e := range list {
			if i, ok := index[e.key()]; ok {
				out[i].Quantity = round(out[i].Quantity+e.Quantity, 3)
				continue
			}
			index[e.key()] = len(out)
			e.Quantity = round(e.Quantity, 3)
			out = append(out, e)
		}
	}
	return out
}

// Design is a resolved panel. Exactly one of the detail pointers matches Kind.
type Design struct {
	Kind              Kind    `json:"kind"`
	Quantity          int     `json:"quantity"`
	WidthMM           float64 `json:"width_mm"`
	HeightMM          float64 `json:"height_mm"`
	DepthMM           float64 `json:"depth_mm"`
	TargetFrequency   float64 `json:"target_frequency,omitempty"`
	AchievedFrequency float64 `json:"achieved_frequency"`

	Broadband  *BroadbandDetail  `json:"broadband,omitempty"`
	CornerTrap *CornerTrapDetail `json:"corner_trap,omitempty"`
	Helmholtz  *HelmholtzDetail  `json:"helmholtz,omitempty"`
	Membrane   *MembraneDetail   `json:"membrane,omitempty"`
	QRD        *QRDDetail        `json:"qrd,omitempty"`

	Materials []BOMEntry     `json:"materials"`
	Warnings  []errs.Warning `json:"warnings,omitempty"`
}

// Scale returns a copy describing n identical panels.
func (d Design) Scale(n int) Design {
	if n < 1 {
		n = 1
	}
	out := d
	out.Quantity = n
	out.Materials = make([]BOMEntry, len(d.Materials))
	for i, e := range d.Materials {
		e.Quantity = round(e.Quantity*float64(n), 3)
		out.Materials[i] = e
	}
	return out
}

// Request selects a calculator by Kind. Only the matching params block is read; nil means defaults.
type Request struct {
	Kind       Kind              `json:"kind"`
	Quantity   int               `json:"quantity,omitempty"`
	Broadband  *BroadbandParams  `json:"broadband,omitempty"`
	CornerTrap *CornerTrapParams `json:"corner_trap,omitempty"`
	Helmholtz  *HelmholtzParams  `json:"helmholtz,omitempty"`
	Membrane   *MembraneParams   `json:"membrane,omitempty"`
	QRD        *QRDParams        `json:"qrd,omitempty"`
}

// Designer holds the read-only material catalog the porous calculators need.
type Designer struct {
	catalog *absorption.Catalog
}

// NewDesigner uses the default catalog when catalog is nil.
func NewDesigner(catalog *absorption.Catalog) *Designer {
	if catalog == nil {
		catalog = absorption.DefaultCatalog()
	}
	return &Designer{catalog: catalog}
}

// Design dispatches on req.Kind.
func (d *Designer) Design(req Request) (Design, error) {
	if req.Quantity < 0 {
		return Design{}, errs.Validation("quantity", req.Quantity, "must not be negative")
	}

	var (
		out Design
		err error
	)
	switch req.Kind {
	case Broadband:
		out, err = d.Broadband(deref(req.Broadband))
	case CornerTrap:
		out, err = d.CornerTrap(deref(req.CornerTrap))
	case Helmholtz:
		out, err = DesignHelmholtz(deref(req.Helmholtz))
	case Membrane:
		out, err = DesignMembrane(deref(req.Membrane))
	case QRD:
		out, err = DesignQRD(deref(req.QRD))
	default:
		return Design{}, errs.Validation("kind", req.Kind, "unknown panel kind")
	}
	if err != nil {
		return Design{}, err
	}
	return out.Scale(req.Quantity), nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// positive rejects negative, NaN and infinite values; zero is left to orDefault.
func positive(field string, v float64) error {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return errs.Validation(field, v, "must be a positive finite number")
	}
	return nil
}

func requireTarget(field string, f float64) error {
	if !(f > 0) || math.IsInf(f, 0) {
		return errs.Validation(field, f, "target frequency must be positive")
	}
	return nil
}

func densityWarning(density float64) []errs.Warning {
	if density < absorption.MinPorousDensity || density > absorption.MaxPorousDensity {
		return []errs.Warning{{Code: WarnDensityOutOfRange, Field: "density", Value: density}}
	}
	return nil
}

func dims(mm ...float64) string {
	parts := make([]string, len(mm))
	for i, v := range mm {
		parts[i] = fmt.Sprintf("%.0f", v)
	}
	return strings.Join(parts, " x ") + " mm"
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
