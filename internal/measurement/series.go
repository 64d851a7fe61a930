// Package measurement imports frequency-response exports into a normalized series.
package measurement

import (
	"sort"
	"time"
)

// Format identifies a measurement file encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "txt"
	FormatFRD  Format = "frd"
	FormatMDAT Format = "mdat"
)

// Point is one row of a frequency response.
type Point struct {
	Frequency float64 `json:"frequency"`
	Magnitude float64 `json:"magnitude"`
	Phase     float64 `json:"phase,omitempty"`
}

// Metadata describes where a series came from.
type Metadata struct {
	Format      Format            `json:"format"`
	Name        string            `json:"name,omitempty"`
	Channel     string            `json:"channel,omitempty"`
	CapturedAt  *time.Time        `json:"captured_at,omitempty"`
	Blocks      []string          `json:"blocks,omitempty"`
	ActiveBlock int               `json:"active_block"`
	Fields      map[string]string `json:"fields,omitempty"`
	SkippedRows int               `json:"skipped_rows"`
}

// Series is a frequency response with strictly increasing frequencies.
type Series struct {
	Points   []Point  `json:"points"`
	HasPhase bool     `json:"has_phase"`
	Metadata Metadata `json:"metadata"`
}

// Len returns the number of points.
func (s Series) Len() int {
	return len(s.Points)
}

// Range returns the first and last frequency.
func (s Series) Range() (float64, float64) {
	if len(s.Points) == 0 {
		return 0, 0
	}
	return s.Points[0].Frequency, s.Points[len(s.Points)-1].Frequency
}

// MagnitudeAt linearly interpolates the magnitude at f, clamping outside the range.
func (s Series) MagnitudeAt(f float64) float64 {
	n := len(s.Points)
	if n == 0 {
		return 0
	}
	i := sort.Search(n, func(i int) bool { return s.Points[i].Frequency >= f })
	switch {
	case i == 0:
		return s.Points[0].Magnitude
	case i == n:
		return s.Points[n-1].Magnitude
	}
	a, b := s.Points[i-1], s.Points[i]
	t := (f - a.Frequency) / (b.Frequency - a.Frequency)
	return a.Magnitude + t*(b.Magnitude-a.Magnitude)
}

// Limits bound the work a single import may do.
type Limits struct {
	MaxBytes     int64
	MaxRows      int
	MaxBlocks    int
	MaxLineBytes int
}

// DefaultLimits fit a dense REW export with room to spare.
var DefaultLimits = Limits{
	MaxBytes:     8 << 20,
	MaxRows:      200_000,
	MaxBlocks:    64,
	MaxLineBytes: 64 << 10,
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes <= 0 {
		l.MaxBytes = DefaultLimits.MaxBytes
	}
	if l.MaxRows <= 0 {
		l.MaxRows = DefaultLimits.MaxRows
	}
	if l.MaxBlocks <= 0 {
		l.MaxBlocks = DefaultLimits.MaxBlocks
	}
	if l.MaxLineBytes <= 0 {
		l.MaxLineBytes = DefaultLimits.MaxLineBytes
	}
	return l
}
