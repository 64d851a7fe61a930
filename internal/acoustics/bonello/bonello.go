// Package bonello scores modal distribution with the Bonello criterion.
package bonello

import (
	"math"

	"github.com/RMahshie/roomtreat/internal/acoustics/modes"
)

// Nominal third-octave centres for n = -17 .. -1 of the base-2 series 1000·2^(n/3).
var nominal = []float64{
	20, 25, 31.5, 40, 50, 63, 80, 100, 125, 160, 200, 250, 315, 400, 500, 630, 800,
}

const firstBand = -17

// Reason explains why a band is a problem.
type Reason string

const (
	Decrease Reason = "decrease"
	Gap      Reason = "gap"
)

// Band is one third-octave band and its mode count.
type Band struct {
	Nominal float64 `json:"nominal"`
	Center  float64 `json:"center"`
	Low     float64 `json:"low"`
	High    float64 `json:"high"`
	Count   int     `json:"count"`
}

// Violation marks a band breaking the criterion.
type Violation struct {
	Band   Band   `json:"band"`
	Reason Reason `json:"reason"`
}

// Result is the Bonello verdict.
type Result struct {
	Pass               bool        `json:"pass"`
	Bands              []Band      `json:"bands"`
	Violations         []Violation `json:"violations,omitempty"`
	ProblemFrequencies []float64   `json:"problem_frequencies,omitempty"`
}

// Bands returns the third-octave bands from 20 Hz whose upper edge does not exceed cutoff.
func Bands(cutoff float64) []Band {
	edge := math.Pow(2, 1.0/6)
	var out []Band
	for i, nom := range nominal {
		c := 1000 * math.Pow(2, float64(firstBand+i)/3)
		b := Band{Nominal: nom, Center: c, Low: c / edge, High: c * edge}
		if b.High > cutoff {
			break
		}
		out = append(out, b)
	}
	return out
}

// Evaluate counts modes per band and checks that counts never decrease and
// that no band is empty once a lower band has modes. Empty bands below the
// room's first mode are not problems.
func Evaluate(ms []modes.Mode, cutoff float64) Result {
	bands := Bands(cutoff)
	for _, m := range ms {
		for i := range bands {
			if m.Frequency >= bands[i].Low && m.Frequency < bands[i].High {
				bands[i].Count++
				break
			}
		}
	}

	res := Result{Bands: bands}
	seen := false
	for i, b := range bands {
		if i > 0 && seen {
			switch {
			case b.Count == 0:
				res.Violations = append(res.Violations, Violation{Band: b, Reason: Gap})
			case b.Count < bands[i-1].Count:
				res.Violations = append(res.Violations, Violation{Band: b, Reason: Decrease})
			}
		}
		if b.Count > 0 {
			seen = true
		}
	}
	for _, v := range res.Violations {
		res.ProblemFrequencies = append(res.ProblemFrequencies, v.Band.Nominal)
	}
	res.Pass = len(res.Violations) == 0
	return res
}
