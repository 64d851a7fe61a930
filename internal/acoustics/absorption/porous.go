package absorption

import (
	"math"
	"math/cmplx"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

// AirDensity at 20 °C, kg/m³.
const AirDensity = 1.204

// ImpedanceModel selects the empirical porous-material model.
type ImpedanceModel string

const (
	DelanyBazley ImpedanceModel = "delany_bazley"
	Miki         ImpedanceModel = "miki"
)

// maxIncidence is the upper integration angle for random incidence.
const maxIncidence = 78 * math.Pi / 180

const incidenceSteps = 72

// PorousLayer is a porous slab on a rigid wall, optionally spaced off it.
type PorousLayer struct {
	ThicknessMM     float64        `json:"thickness_mm"`
	AirGapMM        float64        `json:"air_gap_mm"`
	FlowResistivity float64        `json:"flow_resistivity"`
	Model           ImpedanceModel `json:"model"`
}

// PorousResult carries per-band coefficients for a layer.
type PorousResult struct {
	Normal Coefficients   `json:"normal"`
	Random Coefficients   `json:"random"`
	NRC    float64        `json:"nrc"`
	Model  ImpedanceModel `json:"model"`
}

// Validate rejects non-physical layers.
func (l PorousLayer) Validate() error {
	if !(l.ThicknessMM > 0) {
		return errs.Validation("thickness_mm", l.ThicknessMM, "must be positive")
	}
	if l.AirGapMM < 0 || math.IsNaN(l.AirGapMM) {
		return errs.Validation("air_gap_mm", l.AirGapMM, "must not be negative")
	}
	if !(l.FlowResistivity > 0) {
		return errs.Validation("flow_resistivity", l.FlowResistivity, "must be positive")
	}
	switch l.Model {
	case "", DelanyBazley, Miki:
	default:
		return errs.Validation("model", l.Model, "must be delany_bazley or miki")
	}
	return nil
}

// PredictPorous evaluates the layer at the six octave bands.
func PredictPorous(l PorousLayer) (PorousResult, error) {
	if err := l.Validate(); err != nil {
		return PorousResult{}, err
	}
	if l.Model == "" {
		l.Model = Miki
	}

	res := PorousResult{Model: l.Model}
	for i, f := range Bands {
		zs := l.SurfaceImpedance(f)
		res.Normal[i] = normalIncidence(zs)
		res.Random[i] = randomIncidence(zs)
	}
	nrc := (res.Random[1] + res.Random[2] + res.Random[3] + res.Random[4]) / 4
	res.NRC = math.Round(nrc*20) / 20
	return res, nil
}

func airImpedance() float64 {
	return AirDensity * geometry.SpeedOfSound
}

// characteristic returns the layer's characteristic impedance and propagation constant.
func (l PorousLayer) characteristic(f float64) (zc, gamma complex128) {
	z0 := airImpedance()
	x := AirDensity * f / l.FlowResistivity
	k0 := 2 * math.Pi * f / geometry.SpeedOfSound

	if l.Model == DelanyBazley {
		zc = complex(z0*(1+0.0571*math.Pow(x, -0.754)), -z0*0.087*math.Pow(x, -0.732))
		gamma = complex(k0*0.189*math.Pow(x, -0.595), k0*(1+0.0978*math.Pow(x, -0.700)))
		return zc, gamma
	}
	zc = complex(z0*(1+0.070*math.Pow(x, -0.632)), -z0*0.107*math.Pow(x, -0.632))
	gamma = complex(k0*0.160*math.Pow(x, -0.618), k0*(1+0.109*math.Pow(x, -0.618)))
	return zc, gamma
}

// SurfaceImpedance at frequency f using a two-layer transfer matrix.
func (l PorousLayer) SurfaceImpedance(f float64) complex128 {
	zc, gamma := l.characteristic(f)
	gd := gamma * complex(l.ThicknessMM/1000, 0)
	ch, sh := cmplx.Cosh(gd), cmplx.Sinh(gd)

	if l.AirGapMM > 0 {
		k0 := 2 * math.Pi * f / geometry.SpeedOfSound
		if t := math.Tan(k0 * l.AirGapMM / 1000); math.Abs(t) > 1e-12 {
			zb := complex(0, -airImpedance()/t)
			return zc * (zb*ch + zc*sh) / (zb*sh + zc*ch)
		}
	}
	return zc * ch / sh
}

func normalIncidence(zs complex128) float64 {
	z0 := complex(airImpedance(), 0)
	r := (zs - z0) / (zs + z0)
	return clamp01(1 - math.Pow(cmplx.Abs(r), 2))
}

// randomIncidence integrates oblique coefficients with Paris' sin·cos weighting.
func randomIncidence(zs complex128) float64 {
	z0 := complex(airImpedance(), 0)
	var sum, weight float64
	for i := 0; i < incidenceSteps; i++ {
		theta := 0.001 + (maxIncidence-0.001)*float64(i)/float64(incidenceSteps-1)
		cos, sin := math.Cos(theta), math.Sin(theta)
		zc := zs * complex(cos, 0)
		r := (zc - z0) / (zc + z0)
		a := clamp01(1 - math.Pow(cmplx.Abs(r), 2))
		sum += a * sin * cos
		weight += sin * cos
	}
	return clamp01(sum / weight)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
