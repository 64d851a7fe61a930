// Package modes enumerates rectangular room resonances with the Rayleigh equation.
package modes

import (
	"fmt"
	"math"
	"sort"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

const (
	DefaultCutoff = 300.0
	MaxCutoff     = 1000.0
)

// Type is the mode family, derived from how many indices are nonzero.
type Type string

const (
	Axial      Type = "axial"
	Tangential Type = "tangential"
	Oblique    Type = "oblique"
)

func (t Type) rank() int {
	switch t {
	case Axial:
		return 0
	case Tangential:
		return 1
	default:
		return 2
	}
}

// Mode is a single room resonance.
type Mode struct {
	Frequency float64 `json:"frequency"`
	Type      Type    `json:"type"`
	P         int     `json:"p"`
	Q         int     `json:"q"`
	R         int     `json:"r"`
}

// Indices returns (p, q, r).
func (m Mode) Indices() [3]int {
	return [3]int{m.P, m.Q, m.R}
}

// Wavelength in metres.
func (m Mode) Wavelength() float64 {
	return geometry.SpeedOfSound / m.Frequency
}

func (m Mode) String() string {
	return fmt.Sprintf("%s(%d,%d,%d) %.2f Hz", m.Type, m.P, m.Q, m.R, m.Frequency)
}

// Classify maps an index tuple to its mode type. The all-zero tuple is not a mode.
func Classify(p, q, r int) (Type, bool) {
	n := 0
	for _, i := range [3]int{p, q, r} {
		if i != 0 {
			n++
		}
	}
	switch n {
	case 1:
		return Axial, true
	case 2:
		return Tangential, true
	case 3:
		return Oblique, true
	}
	return "", false
}

// Frequency evaluates the Rayleigh equation for one index tuple.
func Frequency(room geometry.Room, p, q, r int) float64 {
	a := float64(p) / room.Length
	b := float64(q) / room.Width
	c := float64(r) / room.Height
	return geometry.SpeedOfSound / 2 * math.Sqrt(a*a+b*b+c*c)
}

// ValidateCutoff rejects cutoffs outside (0, MaxCutoff].
func ValidateCutoff(cutoff float64) error {
	if math.IsNaN(cutoff) || cutoff <= 0 || cutoff > MaxCutoff {
		return errs.Validation("cutoff", cutoff, "must be in (0, 1000] Hz")
	}
	return nil
}

// Calculate returns every mode with frequency <= cutoff in deterministic order:
// ascending frequency, then axial < tangential < oblique, then (p, q, r).
func Calculate(room geometry.Room, cutoff float64) ([]Mode, error) {
	if err := ValidateCutoff(cutoff); err != nil {
		return nil, err
	}

	// Beyond these bounds the single-axis term alone exceeds the cutoff.
	maxP := indexBound(room.Length, cutoff)
	maxQ := indexBound(room.Width, cutoff)
	maxR := indexBound(room.Height, cutoff)

	var out []Mode
	for p := 0; p <= maxP; p++ {
		for q := 0; q <= maxQ; q++ {
			for r := 0; r <= maxR; r++ {
				t, ok := Classify(p, q, r)
				if !ok {
					continue
				}
				f := Frequency(room, p, q, r)
				if f > cutoff {
					continue
				}
				out = append(out, Mode{Frequency: f, Type: t, P: p, Q: q, R: r})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out, nil
}

func indexBound(dim, cutoff float64) int {
	return int(math.Floor(2 * cutoff * dim / geometry.SpeedOfSound))
}

func less(a, b Mode) bool {
	if a.Frequency != b.Frequency {
		return a.Frequency < b.Frequency
	}
	if a.Type.rank() != b.Type.rank() {
		return a.Type.rank() < b.Type.rank()
	}
	if a.P != b.P {
		return a.P < b.P
	}
	if a.Q != b.Q {
		return a.Q < b.Q
	}
	return a.R < b.R
}

// Filter returns the modes of type t, preserving order.
func Filter(ms []Mode, t Type) []Mode {
	var out []Mode
	for _, m := range ms {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// Below returns modes strictly under f.
func Below(ms []Mode, f float64) []Mode {
	var out []Mode
	for _, m := range ms {
		if m.Frequency < f {
			out = append(out, m)
		}
	}
	return out
}

// Frequencies extracts the frequency column.
func Frequencies(ms []Mode) []float64 {
	out := make([]float64, len(ms))
	for i, m := range ms {
		out[i] = m.Frequency
	}
	return out
}
