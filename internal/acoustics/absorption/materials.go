// Package absorption estimates reverberation time from room surfaces and a material catalog.
package absorption

import (
	"sort"
	"sync"

	"github.com/RMahshie/roomtreat/internal/errs"
)

// Bands are the octave-band centres every coefficient table covers.
var Bands = [6]float64{125, 250, 500, 1000, 2000, 4000}

// Coefficients holds one absorption coefficient per octave band.
type Coefficients [6]float64

// Mid is the average of the 500 Hz and 1 kHz bands.
func (c Coefficients) Mid() float64 {
	return (c[2] + c[3]) / 2
}

// High is the average of the 1–4 kHz bands.
func (c Coefficients) High() float64 {
	return (c[3] + c[4] + c[5]) / 3
}

// Category groups catalog entries.
type Category string

const (
	SurfaceFinish Category = "surface"
	Treatment     Category = "treatment"
	Porous        Category = "porous"
)

// Recommended density window for porous absorbers, kg/m³.
const (
	MinPorousDensity = 48.0
	MaxPorousDensity = 96.0
)

// Material is immutable reference data.
type Material struct {
	Key             string       `json:"key"`
	Name            string       `json:"name"`
	Category        Category     `json:"category"`
	Density         float64      `json:"density,omitempty"`
	FlowResistivity float64      `json:"flow_resistivity,omitempty"`
	Coefficients    Coefficients `json:"coefficients"`
}

// Validate checks coefficient bounds and physical fields.
func (m Material) Validate() error {
	if m.Key == "" {
		return errs.Validation("material.key", m.Key, "must not be empty")
	}
	for i, a := range m.Coefficients {
		if a < 0 || a > 1 {
			return errs.Validation("material."+m.Key+".coefficients", Bands[i], "must be within [0, 1]")
		}
	}
	if m.Density < 0 || m.FlowResistivity < 0 {
		return errs.Validation("material."+m.Key, m.Density, "density and flow resistivity must not be negative")
	}
	return nil
}

// Catalog is a read-only lookup of materials by key.
type Catalog struct {
	byKey map[string]Material
	keys  []string
}

// NewCatalog validates materials and rejects duplicate keys.
func NewCatalog(materials ...Material) (*Catalog, error) {
	c := &Catalog{byKey: make(map[string]Material, len(materials))}
	for _, m := range materials {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byKey[m.Key]; dup {
			return nil, errs.Validation("material.key", m.Key, "duplicate")
		}
		c.byKey[m.Key] = m
		c.keys = append(c.keys, m.Key)
	}
	sort.Strings(c.keys)
	return c, nil
}

// Lookup returns the material for key.
func (c *Catalog) Lookup(key string) (Material, bool) {
	m, ok := c.byKey[key]
	return m, ok
}

// Materials returns every entry sorted by key, optionally filtered by category.
func (c *Catalog) Materials(cat Category) []Material {
	out := make([]Material, 0, len(c.keys))
	for _, k := range c.keys {
		m := c.byKey[k]
		if cat == "" || m.Category == cat {
			out = append(out, m)
		}
	}
	return out
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := NewCatalog(defaultMaterials...)
	if err != nil {
		panic(err)
	}
	return c
})

// DefaultCatalog returns the built-in catalog. It is built once and never mutated.
func DefaultCatalog() *Catalog {
	return defaultCatalog()
}

var defaultMaterials = []Material{
	{Key: "concrete", Name: "Concrete", Category: SurfaceFinish, Coefficients: Coefficients{0.01, 0.01, 0.02, 0.02, 0.02, 0.03}},
	{Key: "drywall", Name: "Drywall on studs", Category: SurfaceFinish, Coefficients: Coefficients{0.29, 0.10, 0.05, 0.04, 0.07, 0.09}},
	{Key: "plywood", Name: "Plywood panelling", Category: SurfaceFinish, Coefficients: Coefficients{0.28, 0.22, 0.17, 0.09, 0.10, 0.11}},
	{Key: "carpet", Name: "Carpet on concrete", Category: SurfaceFinish, Coefficients: Coefficients{0.01, 0.02, 0.06, 0.15, 0.25, 0.45}},
	{Key: "hardwood", Name: "Hardwood floor", Category: SurfaceFinish, Coefficients: Coefficients{0.15, 0.11, 0.10, 0.07, 0.06, 0.07}},
	{Key: "glass", Name: "Window glass", Category: SurfaceFinish, Coefficients: Coefficients{0.35, 0.25, 0.18, 0.12, 0.07, 0.04}},
	{Key: "brick", Name: "Unpainted brick", Category: SurfaceFinish, Coefficients: Coefficients{0.03, 0.03, 0.03, 0.04, 0.05, 0.07}},
	{Key: "acoustic_tile", Name: "Suspended acoustic tile", Category: SurfaceFinish, Coefficients: Coefficients{0.10, 0.20, 0.40, 0.55, 0.60, 0.55}},

	{Key: "fiberglass_50", Name: "50 mm fiberglass panel", Category: Treatment, Density: 48, Coefficients: Coefficients{0.22, 0.82, 1, 1, 1, 1}},
	{Key: "fiberglass_100", Name: "100 mm fiberglass panel", Category: Treatment, Density: 48, Coefficients: Coefficients{0.84, 1, 1, 1, 1, 1}},
	{Key: "rockwool_50", Name: "50 mm mineral wool panel", Category: Treatment, Density: 60, Coefficients: Coefficients{0.30, 0.75, 1, 1, 1, 1}},
	{Key: "rockwool_100", Name: "100 mm mineral wool panel", Category: Treatment, Density: 60, Coefficients: Coefficients{0.80, 1, 1, 1, 1, 1}},
	{Key: "corner_trap", Name: "Corner bass trap", Category: Treatment, Coefficients: Coefficients{0.90, 1, 1, 1, 1, 1}},
	{Key: "membrane", Name: "Membrane absorber", Category: Treatment, Coefficients: Coefficients{0.85, 0.60, 0.30, 0.10, 0.05, 0.05}},
	{Key: "foam_50", Name: "50 mm acoustic foam", Category: Treatment, Coefficients: Coefficients{0.11, 0.30, 0.68, 0.95, 1, 0.97}},
	{Key: "foam_100", Name: "100 mm acoustic foam", Category: Treatment, Coefficients: Coefficients{0.24, 0.60, 0.95, 1, 1, 1}},
	{Key: "qrd", Name: "Quadratic residue diffuser", Category: Treatment, Coefficients: Coefficients{0.15, 0.25, 0.30, 0.25, 0.20, 0.15}},

	{Key: "rockwool_60", Name: "Mineral wool 60 kg/m³", Category: Porous, Density: 60, FlowResistivity: 20000, Coefficients: Coefficients{0.80, 1, 1, 1, 1, 1}},
	{Key: "owens_703", Name: "Rigid fiberglass 48 kg/m³", Category: Porous, Density: 48, FlowResistivity: 15000, Coefficients: Coefficients{0.84, 1, 1, 1, 1, 1}},
	{Key: "owens_705", Name: "Rigid fiberglass 96 kg/m³", Category: Porous, Density: 96, FlowResistivity: 40000, Coefficients: Coefficients{0.75, 1, 1, 1, 1, 1}},
	{Key: "rockwool_80", Name: "Mineral wool 80 kg/m³", Category: Porous, Density: 80, FlowResistivity: 30000, Coefficients: Coefficients{0.78, 1, 1, 1, 1, 1}},
}
