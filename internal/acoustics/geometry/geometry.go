// Package geometry validates room dimensions and normalizes them to metres.
package geometry

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/errs"
)

// SpeedOfSound in air at roughly 20 °C, m/s.
const SpeedOfSound = 343.0

// FeetToMeters is the exact international foot.
const FeetToMeters = 0.3048

// MaxDimension bounds each room dimension in metres. Mode enumeration grows with volume.
const MaxDimension = 30.0

// Unit is the unit system a caller used for dimensions.
type Unit string

const (
	Metric   Unit = "metric"
	Imperial Unit = "imperial"
)

// Usage is the intended use of the room.
type Usage string

const (
	Mixing     Usage = "mixing"
	Recording  Usage = "recording"
	Production Usage = "production"
	Other      Usage = "other"
)

// RoomDimensions is the caller-facing room description.
type RoomDimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   Unit    `json:"unit"`
	Usage  Usage   `json:"usage"`
}

// Room is a validated rectangular room in metres.
type Room struct {
	Length float64 `json:"length_m"`
	Width  float64 `json:"width_m"`
	Height float64 `json:"height_m"`
	Usage  Usage   `json:"usage"`
	Unit   Unit    `json:"unit"`
}

// ToMeters converts v from unit u to metres.
func ToMeters(v float64, u Unit) float64 {
	if u == Imperial {
		return v * FeetToMeters
	}
	return v
}

// FromMeters converts v metres into unit u.
func FromMeters(v float64, u Unit) float64 {
	if u == Imperial {
		return v / FeetToMeters
	}
	return v
}

// ParseUnit accepts the empty string as metric.
func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", Metric:
		return Metric, nil
	case Imperial:
		return Imperial, nil
	}
	return "", errs.Validation("unit", s, "must be metric or imperial")
}

// ParseUsage accepts the empty string as mixing.
func ParseUsage(s string) (Usage, error) {
	switch Usage(s) {
	case "", Mixing:
		return Mixing, nil
	case Recording, Production, Other:
		return Usage(s), nil
	}
	return "", errs.Validation("usage", s, "must be mixing, recording, production or other")
}

// NewRoom validates d and returns the room in metres.
func NewRoom(d RoomDimensions) (Room, error) {
	unit, err := ParseUnit(string(d.Unit))
	if err != nil {
		return Room{}, err
	}
	usage, err := ParseUsage(string(d.Usage))
	if err != nil {
		return Room{}, err
	}

	fields := []struct {
		name  string
		value float64
	}{
		{"length", d.Length},
		{"width", d.Width},
		{"height", d.Height},
	}
	meters := make([]float64, len(fields))
	for i, f := range fields {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value <= 0 {
			return Room{}, errs.Validation(f.name, f.value, "must be a positive finite number")
		}
		m := ToMeters(f.value, unit)
		if m > MaxDimension {
			return Room{}, errs.Validation(f.name, f.value, "exceeds the 30 m limit")
		}
		meters[i] = m
	}

	return Room{
		Length: meters[0],
		Width:  meters[1],
		Height: meters[2],
		Usage:  usage,
		Unit:   unit,
	}, nil
}

// Volume in cubic metres.
func (r Room) Volume() float64 {
	return r.Length * r.Width * r.Height
}

// SurfaceArea is the total boundary area in square metres.
func (r Room) SurfaceArea() float64 {
	return 2 * (r.Length*r.Width + r.Length*r.Height + r.Width*r.Height)
}

func (r Room) FloorArea() float64 {
	return r.Length * r.Width
}

// Dimensions returns length, width, height.
func (r Room) Dimensions() [3]float64 {
	return [3]float64{r.Length, r.Width, r.Height}
}

// Sorted returns the dimensions ascending.
func (r Room) Sorted() [3]float64 {
	d := r.Dimensions()
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
	if d[1] > d[2] {
		d[1], d[2] = d[2], d[1]
	}
	if d[0] > d[1] {
		d[0], d[1] = d[1], d[0]
	}
	return d
}

// In converts the room back to the caller's unit system.
func (r Room) In(u Unit) RoomDimensions {
	return RoomDimensions{
		Length: FromMeters(r.Length, u),
		Width:  FromMeters(r.Width, u),
		Height: FromMeters(r.Height, u),
		Unit:   u,
		Usage:  r.Usage,
	}
}

// Band is a closed RT60 interval in seconds.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Mid is the centre of the band.
func (b Band) Mid() float64 {
	return (b.Min + b.Max) / 2
}

// Contains reports whether v lies inside the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// TargetRT60 is the recommended reverberation band for the usage.
func (u Usage) TargetRT60() Band {
	switch u {
	case Production:
		return Band{Min: 0.25, Max: 0.35}
	case Recording:
		return Band{Min: 0.2, Max: 0.4}
	case Other:
		return Band{Min: 0.3, Max: 0.5}
	default:
		return Band{Min: 0.2, Max: 0.3}
	}
}

// DefaultRT60 is the estimate used when none is supplied, clamped to 0.2–0.3 s.
func (u Usage) DefaultRT60() float64 {
	return math.Min(0.3, math.Max(0.2, u.TargetRT60().Mid()))
}
