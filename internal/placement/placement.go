// Package placement positions the listener and speakers and derives the
// boundary interactions that drive first-reflection treatment.
package placement

import (
	"math"
	"strings"

	"github.com/RMahshie/roomtreat/internal/acoustics/absorption"
	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
	"github.com/RMahshie/roomtreat/internal/errs"
)

const c = geometry.SpeedOfSound

// SpeakerType selects the listening-triangle size.
type SpeakerType string

const (
	Nearfield SpeakerType = "nearfield"
	Midfield  SpeakerType = "midfield"
)

// ParseSpeakerType maps empty to nearfield.
func ParseSpeakerType(s string) (SpeakerType, error) {
	switch SpeakerType(strings.ToLower(strings.TrimSpace(s))) {
	case "", Nearfield:
		return Nearfield, nil
	case Midfield:
		return Midfield, nil
	}
	return "", errs.Validation("speaker_type", s, "must be nearfield or midfield")
}

func (t SpeakerType) triangleSide() float64 {
	if t == Midfield {
		return 2.2
	}
	return 1.5
}

const (
	// DefaultListenerFraction puts the listener 38% of the way from the front wall.
	DefaultListenerFraction = 0.38
	earHeight               = 1.2
	maxSpreadFraction       = 0.8
	minSideClearance        = 0.6
	minFrontClearance       = 0.3

	sbirLow       = 40.0
	sbirHigh      = 300.0
	nullTolerance = 0.025
)

// nullFractions are the length fractions where axial standing waves null or peak.
var nullFractions = []float64{0.25, 1.0 / 3, 0.5, 2.0 / 3, 0.75}

// Point is a position in metres: X across the width from the left wall,
// Y from the front wall, Z above the floor.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Point) dist(q Point) float64 {
	return math.Sqrt((p.X-q.X)*(p.X-q.X) + (p.Y-q.Y)*(p.Y-q.Y) + (p.Z-q.Z)*(p.Z-q.Z))
}

// Speaker is one monitor of the stereo pair.
type Speaker struct {
	Name     string  `json:"name"`
	Position Point   `json:"position"`
	ToeIn    float64 `json:"toe_in"`
}

// SBIRNote is the quarter-wave cancellation from one speaker-boundary distance.
type SBIRNote struct {
	Speaker   string  `json:"speaker"`
	Boundary  string  `json:"boundary"`
	Distance  float64 `json:"distance"`
	Frequency float64 `json:"frequency"`
	Audible   bool    `json:"audible"`
}

// Reflection is a first-order specular reflection point on a boundary.
type Reflection struct {
	Surface  string  `json:"surface"`
	Speaker  string  `json:"speaker"`
	Point    Point   `json:"point"`
	PathDiff float64 `json:"path_difference"`
}

// SubwooferOption is a candidate subwoofer location.
type SubwooferOption struct {
	Name     string `json:"name"`
	Position Point  `json:"position"`
}

// Options tune the layout.
type Options struct {
	SpeakerType      SpeakerType `json:"speaker_type,omitempty"`
	ListenerFraction float64     `json:"listener_fraction,omitempty"`
}

// Result is the layout for one room.
type Result struct {
	SpeakerType      SpeakerType       `json:"speaker_type"`
	Listener         Point             `json:"listener"`
	Speakers         []Speaker         `json:"speakers"`
	TriangleSide     float64           `json:"triangle_side"`
	ToeIn            float64           `json:"toe_in"`
	SBIR             []SBIRNote        `json:"sbir"`
	FirstReflections []Reflection      `json:"first_reflections"`
	Subwoofers       []SubwooferOption `json:"subwoofers"`
	Warnings         []errs.Warning    `json:"warnings,omitempty"`
}

// ReflectionOn returns the first reflection on surface for the named speaker.
func (r Result) ReflectionOn(surface, speaker string) (Reflection, bool) {
	for _, ref := range r.FirstReflections {
		if ref.Surface == surface && ref.Speaker == speaker {
			return ref, true
		}
	}
	return Reflection{}, false
}

// Compute lays out an equilateral listening triangle facing the front wall.
func Compute(room geometry.Room, opts Options) (Result, error) {
	t := opts.SpeakerType
	if t == "" {
		t = Nearfield
	}
	if _, err := ParseSpeakerType(string(t)); err != nil {
		return Result{}, err
	}
	frac := opts.ListenerFraction
	if frac == 0 {
		frac = DefaultListenerFraction
	}
	if !(frac > 0 && frac < 1) {
		return Result{}, errs.Validation("listener_fraction", frac, "must be between 0 and 1")
	}

	W, L, H := room.Width, room.Length, room.Height
	listener := Point{X: W / 2, Y: frac * L, Z: math.Min(earHeight, H/2)}

	side := math.Min(t.triangleSide(), maxSpreadFraction*W)
	if W > 2*minSideClearance {
		side = math.Min(side, W-2*minSideClearance)
	}
	depthFactor := math.Sqrt(3) / 2
	if avail := listener.Y - minFrontClearance; avail > 0 {
		side = math.Min(side, avail/depthFactor)
	}

	spkY := math.Max(listener.Y-side*depthFactor, 0)
	left := Speaker{Name: "left", Position: Point{X: W/2 - side/2, Y: spkY, Z: listener.Z}}
	right := Speaker{Name: "right", Position: Point{X: W/2 + side/2, Y: spkY, Z: listener.Z}}
	toe := toeIn(left.Position, listener)
	left.ToeIn, right.ToeIn = toe, toe

	res := Result{
		SpeakerType:  t,
		Listener:     listener,
		Speakers:     []Speaker{left, right},
		TriangleSide: side,
		ToeIn:        toe,
	}
	for _, s := range res.Speakers {
		res.SBIR = append(res.SBIR, sbir(s, W)...)
	}
	res.FirstReflections = firstReflections(left, right, listener, W, H)
	res.Subwoofers = []SubwooferOption{
		{Name: "front_wall_center", Position: Point{X: W / 2, Y: 0, Z: 0}},
		{Name: "front_wall_quarter", Position: Point{X: W / 4, Y: 0, Z: 0}},
		{Name: "front_corner", Position: Point{X: 0, Y: 0, Z: 0}},
	}
	for _, f := range nullFractions {
		if math.Abs(frac-f) < nullTolerance {
			res.Warnings = append(res.Warnings, errs.Warning{Code: "listener_near_null", Field: "listener_fraction", Value: f})
		}
	}
	return res, nil
}

// toeIn is the angle in degrees between the speaker's forward axis and the listener.
func toeIn(spk, listener Point) float64 {
	return math.Atan2(math.Abs(listener.X-spk.X), listener.Y-spk.Y) * 180 / math.Pi
}

func sbir(s Speaker, width float64) []SBIRNote {
	side, sideDist := absorption.LeftWall, s.Position.X
	if d := width - s.Position.X; d < sideDist {
		side, sideDist = absorption.RightWall, d
	}
	var out []SBIRNote
	for _, b := range []struct {
		name string
		d    float64
	}{
		{absorption.FrontWall, s.Position.Y},
		{side, sideDist},
		{absorption.Floor, s.Position.Z},
	} {
		if b.d <= 0 {
			continue
		}
		f := c / (4 * b.d)
		out = append(out, SBIRNote{
			Speaker:   s.Name,
			Boundary:  b.name,
			Distance:  b.d,
			Frequency: f,
			Audible:   f >= sbirLow && f <= sbirHigh,
		})
	}
	return out
}

// firstReflections mirrors each speaker across a boundary and intersects the
// image-to-listener line with that boundary.
func firstReflections(left, right Speaker, listener Point, width, height float64) []Reflection {
	reflect := func(surface string, s Speaker, image Point, t float64) Reflection {
		p := Point{
			X: image.X + t*(listener.X-image.X),
			Y: image.Y + t*(listener.Y-image.Y),
			Z: image.Z + t*(listener.Z-image.Z),
		}
		return Reflection{
			Surface:  surface,
			Speaker:  s.Name,
			Point:    p,
			PathDiff: image.dist(listener) - s.Position.dist(listener),
		}
	}

	var out []Reflection
	ls := left.Position
	img := Point{X: -ls.X, Y: ls.Y, Z: ls.Z}
	out = append(out, reflect(absorption.LeftWall, left, img, ls.X/(ls.X+listener.X)))

	rs := right.Position
	img = Point{X: 2*width - rs.X, Y: rs.Y, Z: rs.Z}
	out = append(out, reflect(absorption.RightWall, right, img, (width-rs.X)/((width-rs.X)+(width-listener.X))))

	for _, s := range []Speaker{left, right} {
		p := s.Position
		img := Point{X: p.X, Y: p.Y, Z: 2*height - p.Z}
		out = append(out, reflect(absorption.Ceiling, s, img, (height-p.Z)/((height-p.Z)+(height-listener.Z))))
	}
	return out
}
