// Package schroeder computes the modal/diffuse transition of a room.
package schroeder

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

// UpperAudible bounds the absorber-effective range.
const UpperAudible = 20000.0

// Range is a closed frequency interval in Hz.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Contains reports whether f lies in the range.
func (r Range) Contains(f float64) bool {
	return f >= r.Low && f <= r.High
}

// Result holds the transition frequency and the ranges derived from it.
type Result struct {
	Frequency      float64 `json:"frequency"`
	RT60           float64 `json:"rt60"`
	Volume         float64 `json:"volume"`
	BassTrapRange  Range   `json:"bass_trap_range"`
	AbsorberRange  Range   `json:"absorber_range"`
	TransitionZone Range   `json:"transition_zone"`
	ModalDensity   float64 `json:"modal_density"`
	ModalOverlap   float64 `json:"modal_overlap"`
}

// Frequency is 2000·√(T60/V).
func Frequency(rt60, volume float64) float64 {
	return 2000 * math.Sqrt(rt60/volume)
}

// Analyze computes the transition frequency for a volume (m³) and RT60 (s).
func Analyze(volume, rt60 float64) (Result, error) {
	if !(volume > 0) || math.IsInf(volume, 0) {
		return Result{}, errs.Validation("volume", volume, "must be positive")
	}
	if !(rt60 > 0) || math.IsInf(rt60, 0) {
		return Result{}, errs.Validation("rt60", rt60, "must be positive")
	}

	fc := Frequency(rt60, volume)
	third := math.Pow(2, 1.0/6)
	return Result{
		Frequency:      fc,
		RT60:           rt60,
		Volume:         volume,
		BassTrapRange:  Range{Low: 0, High: fc},
		AbsorberRange:  Range{Low: fc, High: UpperAudible},
		TransitionZone: Range{Low: fc / third, High: fc * third},
		ModalDensity:   ModalDensity(volume, fc),
		ModalOverlap:   ModalOverlap(volume, rt60, fc),
	}, nil
}

// ForRoom uses the supplied RT60, or the usage default when rt60 <= 0.
func ForRoom(room geometry.Room, rt60 float64) (Result, error) {
	if rt60 <= 0 {
		rt60 = room.Usage.DefaultRT60()
	}
	return Analyze(room.Volume(), rt60)
}

// ModalDensity is the expected number of modes per Hz at f, 4πVf²/c³.
func ModalDensity(volume, f float64) float64 {
	c := geometry.SpeedOfSound
	return 4 * math.Pi * volume * f * f / (c * c * c)
}

// ModalOverlap is density times the 2.2/T60 half-power bandwidth.
func ModalOverlap(volume, rt60, f float64) float64 {
	return ModalDensity(volume, f) * 2.2 / rt60
}

// Behavior classifies how a room responds at a frequency.
type Behavior string

const (
	StrongModal         Behavior = "strong_modal"
	TransitionalModal   Behavior = "transitional_modal"
	TransitionalDiffuse Behavior = "transitional_diffuse"
	Diffuse             Behavior = "diffuse"
)

// Classify places f relative to the transition frequency.
func (r Result) Classify(f float64) Behavior {
	switch {
	case f < r.Frequency/2:
		return StrongModal
	case f < r.Frequency:
		return TransitionalModal
	case f < 2*r.Frequency:
		return TransitionalDiffuse
	default:
		return Diffuse
	}
}

// MinDiffuserDistance is the listener distance (m) a diffuser designed for f needs, three wavelengths.
func MinDiffuserDistance(f float64) float64 {
	return 3 * geometry.SpeedOfSound / f
}
