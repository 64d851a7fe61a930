package absorption

import (
	"fmt"
	"math"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

// SabineConstant is 24·ln(10)/c rounded to the customary 0.161 s/m.
const SabineConstant = 0.161

// SabineLimit is the average coefficient above which Eyring is used.
const SabineLimit = 0.2

// Model names the reverberation formula.
type Model string

const (
	Sabine Model = "sabine"
	Eyring Model = "eyring"
)

// Surface is a boundary patch with either a catalog material or bare coefficients.
type Surface struct {
	Name         string        `json:"name"`
	Area         float64       `json:"area"`
	Material     string        `json:"material,omitempty"`
	Coefficients *Coefficients `json:"coefficients,omitempty"`
}

// BandResult is the estimate for one octave band. A band with no absorption
// never decays; it is flagged Unbounded and carries no RT60 or model.
type BandResult struct {
	Frequency    float64 `json:"frequency"`
	Absorption   float64 `json:"absorption"`
	AverageAlpha float64 `json:"average_alpha"`
	RT60         float64 `json:"rt60"`
	Model        Model   `json:"model,omitempty"`
	Unbounded    bool    `json:"unbounded,omitempty"`
}

// RT60Result is the headline mid-frequency estimate plus per-band detail.
type RT60Result struct {
	RT60         float64      `json:"rt60"`
	Model        Model        `json:"model"`
	AverageAlpha float64      `json:"average_alpha"`
	Absorption   float64      `json:"absorption"`
	TotalArea    float64      `json:"total_area"`
	Volume       float64      `json:"volume"`
	Bands        []BandResult `json:"bands"`
	Defaulted    bool         `json:"defaulted"`
}

// SabineRT60 is 0.161·V / (S·ᾱ).
func SabineRT60(volume, area, alpha float64) float64 {
	return SabineConstant * volume / (area * alpha)
}

// EyringRT60 is 0.161·V / (−S·ln(1−ᾱ)). A fully absorbing room has zero decay time.
func EyringRT60(volume, area, alpha float64) float64 {
	if alpha >= 1 {
		return 0
	}
	return SabineConstant * volume / (-area * math.Log(1-alpha))
}

// Predict picks Sabine for ᾱ <= 0.2 and Eyring above.
func Predict(volume, area, alpha float64) (float64, Model) {
	if alpha <= SabineLimit {
		return SabineRT60(volume, area, alpha), Sabine
	}
	return EyringRT60(volume, area, alpha), Eyring
}

// Engine resolves surface materials against a catalog.
type Engine struct {
	catalog *Catalog
}

// NewEngine creates an engine over catalog.
func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the engine's material catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Resolve returns the coefficients a surface contributes.
func (e *Engine) Resolve(s Surface) (Coefficients, error) {
	if s.Coefficients != nil {
		m := Material{Key: "bare", Coefficients: *s.Coefficients}
		if err := m.Validate(); err != nil {
			return Coefficients{}, err
		}
		return *s.Coefficients, nil
	}
	if s.Material == "" {
		return Coefficients{}, errs.Validation("surface."+s.Name, "", "needs a material or coefficients")
	}
	m, ok := e.catalog.Lookup(s.Material)
	if !ok {
		return Coefficients{}, errs.Validation("surface."+s.Name+".material", s.Material, "unknown material")
	}
	return m.Coefficients, nil
}

// Estimate computes RT60 for the given surfaces enclosing volume.
func (e *Engine) Estimate(volume float64, surfaces []Surface) (RT60Result, error) {
	if !(volume > 0) || math.IsInf(volume, 0) {
		return RT60Result{}, errs.Validation("volume", volume, "must be positive")
	}

	var totalArea float64
	var sabins Coefficients
	for i, s := range surfaces {
		if math.IsNaN(s.Area) || s.Area < 0 {
			return RT60Result{}, errs.Validation(fmt.Sprintf("surfaces[%d].area", i), s.Area, "must not be negative")
		}
		coeffs, err := e.Resolve(s)
		if err != nil {
			return RT60Result{}, err
		}
		totalArea += s.Area
		for b := range sabins {
			sabins[b] += s.Area * coeffs[b]
		}
	}
	if totalArea <= 0 {
		return RT60Result{}, errs.Validation("surfaces.total_area", totalArea, "must be positive")
	}

	res := RT60Result{TotalArea: totalArea, Volume: volume, Bands: make([]BandResult, len(Bands))}
	for b, f := range Bands {
		alpha := sabins[b] / totalArea
		br := BandResult{Frequency: f, Absorption: sabins[b], AverageAlpha: alpha}
		if alpha > 0 {
			br.RT60, br.Model = Predict(volume, totalArea, alpha)
		} else {
			br.Unbounded = true
		}
		res.Bands[b] = br
	}

	res.AverageAlpha = (sabins[2] + sabins[3]) / 2 / totalArea
	if res.AverageAlpha <= 0 {
		return RT60Result{}, errs.Validation("surfaces.absorption", totalArea, "no absorption at 500 Hz and 1 kHz")
	}
	res.Absorption = res.AverageAlpha * totalArea
	res.RT60, res.Model = Predict(volume, totalArea, res.AverageAlpha)
	return res, nil
}

// EstimateRoom uses the supplied surfaces, or the usage default profile when none are given.
func (e *Engine) EstimateRoom(room geometry.Room, surfaces []Surface) (RT60Result, error) {
	defaulted := false
	if len(surfaces) == 0 {
		surfaces = DefaultSurfaces(room)
		defaulted = true
	}
	res, err := e.Estimate(room.Volume(), surfaces)
	if err != nil {
		return RT60Result{}, err
	}
	res.Defaulted = defaulted
	return res, nil
}

// RequiredAbsorption is the Sabine absorption (m² sabins) that gives target seconds.
func RequiredAbsorption(volume, target float64) float64 {
	return SabineConstant * volume / target
}

// AddedAbsorption is how much absorption moves res to target, by the inverted Sabine relation.
// It is zero when the room is already at or below target.
func AddedAbsorption(res RT60Result, target float64) float64 {
	if res.RT60 <= 0 {
		return 0
	}
	delta := RequiredAbsorption(res.Volume, target) - RequiredAbsorption(res.Volume, res.RT60)
	return math.Max(0, delta)
}

// Profile names the catalog materials used when no surfaces are supplied.
type Profile struct {
	Floor   string `json:"floor"`
	Ceiling string `json:"ceiling"`
	Walls   string `json:"walls"`
}

// DefaultProfile returns the finish assumed for an untreated room of the given usage.
func DefaultProfile(u geometry.Usage) Profile {
	switch u {
	case geometry.Mixing, geometry.Production:
		return Profile{Floor: "carpet", Ceiling: "drywall", Walls: "drywall"}
	default:
		return Profile{Floor: "hardwood", Ceiling: "drywall", Walls: "drywall"}
	}
}

// Boundary names used for the six room surfaces.
const (
	Floor     = "floor"
	Ceiling   = "ceiling"
	FrontWall = "front_wall"
	RearWall  = "rear_wall"
	LeftWall  = "left_wall"
	RightWall = "right_wall"
)

// DefaultSurfaces builds the six boundaries of room with the usage profile.
func DefaultSurfaces(room geometry.Room) []Surface {
	p := DefaultProfile(room.Usage)
	lw := room.Length * room.Width
	wh := room.Width * room.Height
	lh := room.Length * room.Height
	return []Surface{
		{Name: Floor, Area: lw, Material: p.Floor},
		{Name: Ceiling, Area: lw, Material: p.Ceiling},
		{Name: FrontWall, Area: wh, Material: p.Walls},
		{Name: RearWall, Area: wh, Material: p.Walls},
		{Name: LeftWall, Area: lh, Material: p.Walls},
		{Name: RightWall, Area: lh, Material: p.Walls},
	}
}
