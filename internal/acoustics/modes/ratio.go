package modes

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/acoustics/geometry"
)

// Quality grades a room's proportions.
type Quality string

const (
	Excellent Quality = "excellent"
	Good      Quality = "good"
	Fair      Quality = "fair"
	Poor      Quality = "poor"
)

// Published preferred ratios, normalized to the smallest dimension.
var referenceRatios = []struct {
	name  string
	ratio [3]float64
}{
	{"bolt", [3]float64{1, 1.28, 1.54}},
	{"sepmeyer_a", [3]float64{1, 1.14, 1.39}},
	{"sepmeyer_b", [3]float64{1, 1.28, 1.54}},
	{"sepmeyer_c", [3]float64{1, 1.60, 2.33}},
	{"louden", [3]float64{1, 1.4, 1.9}},
}

const (
	coincidenceTolerance = 0.05
	doublingTolerance    = 0.01
)

// RatioReport describes how close the room is to a preferred ratio.
type RatioReport struct {
	Ratios       [3]float64 `json:"ratios"`
	BestMatch    string     `json:"best_match"`
	Deviation    float64    `json:"deviation"`
	InBoltArea   bool       `json:"in_bolt_area"`
	Degenerate   bool       `json:"degenerate"`
	Coincidences []string   `json:"coincidences,omitempty"`
	Quality      Quality    `json:"quality"`
}

// RatioQuality grades the room's dimension ratios.
//
// Quality comes from the Euclidean distance to the nearest reference ratio
// (<0.1 excellent, <0.2 good, <0.3 fair, otherwise poor). A room inside Bolt's
// area is never graded below fair. Degenerate rooms are always poor.
func RatioQuality(room geometry.Room) RatioReport {
	s := room.Sorted()
	ratios := [3]float64{1, s[1] / s[0], s[2] / s[0]}

	rep := RatioReport{Ratios: ratios, Deviation: math.Inf(1)}
	for _, ref := range referenceRatios {
		var sum float64
		for i := range ratios {
			d := ratios[i] - ref.ratio[i]
			sum += d * d
		}
		if dev := math.Sqrt(sum); dev < rep.Deviation {
			rep.Deviation = dev
			rep.BestMatch = ref.name
		}
	}

	rep.InBoltArea = inBoltArea(ratios[1], ratios[2])
	rep.Coincidences = coincidences(room)
	rep.Degenerate = len(rep.Coincidences) > 0

	switch {
	case rep.Degenerate:
		rep.Quality = Poor
	case rep.Deviation < 0.1:
		rep.Quality = Excellent
	case rep.Deviation < 0.2:
		rep.Quality = Good
	case rep.Deviation < 0.3 || rep.InBoltArea:
		rep.Quality = Fair
	default:
		rep.Quality = Poor
	}
	return rep
}

// inBoltArea uses Walker's linear approximation of Bolt's region with height = 1.
func inBoltArea(w, l float64) bool {
	if w >= 3 || l >= 3 {
		return false
	}
	return l >= 1.1*w && l <= 4.5*w-4
}

func coincidences(room geometry.Room) []string {
	names := [3]string{"length", "width", "height"}
	d := room.Dimensions()

	var out []string
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			a, b := d[i], d[j]
			if math.Abs(a-b)/math.Max(a, b) <= coincidenceTolerance {
				out = append(out, names[i]+"~"+names[j])
				continue
			}
			big, small := math.Max(a, b), math.Min(a, b)
			if math.Abs(big-2*small)/(2*small) <= doublingTolerance {
				if a > b {
					out = append(out, names[i]+"=2x"+names[j])
				} else {
					out = append(out, names[j]+"=2x"+names[i])
				}
			}
		}
	}
	return out
}
