package measurement

import (
	"math"
	"sort"
)

const (
	peakRegionLimit = 500.0
	minProminence   = 3.0
	modalLimit      = 300.0
	modeMatchHz     = 5.0
	severeExcessDB  = 6.0
)

// Extremum is a peak or dip with its topographic prominence in dB.
type Extremum struct {
	Frequency  float64 `json:"frequency"`
	Level      float64 `json:"level"`
	Prominence float64 `json:"prominence"`
}

// ModalProblem is a measured bass peak, optionally matched to a computed mode.
type ModalProblem struct {
	Frequency   float64 `json:"frequency"`
	ExcessDB    float64 `json:"excess_db"`
	MatchesMode bool    `json:"matches_mode"`
	Mode        float64 `json:"mode,omitempty"`
	Severe      bool    `json:"severe"`
}

// Analysis summarizes a measured response.
type Analysis struct {
	TargetLevel     float64        `json:"target_level"`
	AverageLevel    float64        `json:"average_level"`
	Deviation       float64        `json:"deviation"`
	BassAverage     float64        `json:"bass_average"`
	FlatnessPercent float64        `json:"flatness_percent"`
	Peaks           []Extremum     `json:"peaks"`
	Dips            []Extremum     `json:"dips"`
	ModalProblems   []ModalProblem `json:"modal_problems"`
}

// Analyze measures flatness against the 200 Hz–4 kHz average and finds bass
// peaks and dips below 500 Hz with at least 3 dB prominence. Peaks below
// 300 Hz are matched against modeFreqs within 5 Hz.
func Analyze(s Series, modeFreqs []float64) Analysis {
	var a Analysis
	if len(s.Points) == 0 {
		return a
	}

	a.AverageLevel = mean(s.Points, 0, math.Inf(1))
	a.TargetLevel = a.AverageLevel
	if hasRange(s.Points, 200, 4000) {
		a.TargetLevel = mean(s.Points, 200, 4000)
	}
	if hasRange(s.Points, 20, 200) {
		a.BassAverage = mean(s.Points, 20, 200)
	}

	var sq float64
	within := 0
	for _, p := range s.Points {
		d := p.Magnitude - a.TargetLevel
		sq += d * d
		if math.Abs(d) <= 3 {
			within++
		}
	}
	a.Deviation = math.Sqrt(sq / float64(len(s.Points)))
	a.FlatnessPercent = 100 * float64(within) / float64(len(s.Points))

	var region []Point
	for _, p := range s.Points {
		if p.Frequency < peakRegionLimit {
			region = append(region, p)
		}
	}
	a.Peaks = extrema(region, false)
	a.Dips = extrema(region, true)

	for _, pk := range a.Peaks {
		if pk.Frequency >= modalLimit {
			continue
		}
		mp := ModalProblem{Frequency: pk.Frequency, ExcessDB: pk.Prominence, Severe: pk.Prominence > severeExcessDB}
		for _, m := range modeFreqs {
			if math.Abs(pk.Frequency-m) < modeMatchHz {
				mp.MatchesMode, mp.Mode = true, m
				break
			}
		}
		a.ModalProblems = append(a.ModalProblems, mp)
	}
	return a
}

func hasRange(ps []Point, lo, hi float64) bool {
	for _, p := range ps {
		if p.Frequency >= lo && p.Frequency <= hi {
			return true
		}
	}
	return false
}

func mean(ps []Point, lo, hi float64) float64 {
	var sum float64
	n := 0
	for _, p := range ps {
		if p.Frequency >= lo && p.Frequency <= hi {
			sum += p.Magnitude
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// extrema finds strict local maxima (or minima when invert) and their
// prominence, sorted by prominence descending then frequency.
func extrema(ps []Point, invert bool) []Extremum {
	level := func(i int) float64 {
		if invert {
			return -ps[i].Magnitude
		}
		return ps[i].Magnitude
	}

	leftMin := reachMin(len(ps), level, false)
	rightMin := reachMin(len(ps), level, true)

	var out []Extremum
	for i := 1; i+1 < len(ps); i++ {
		v := level(i)
		if !(v > level(i-1) && v > level(i+1)) {
			continue
		}
		prom := v - math.Max(leftMin[i], rightMin[i])
		if prom >= minProminence {
			out = append(out, Extremum{Frequency: ps[i].Frequency, Level: ps[i].Magnitude, Prominence: prom})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Prominence != out[j].Prominence {
			return out[i].Prominence > out[j].Prominence
		}
		return out[i].Frequency < out[j].Frequency
	})
	return out
}

// reachMin returns, for every index, the lowest level between it and the
// nearest strictly higher level on one side (or the series edge). A
// monotonic stack keeps this linear.
func reachMin(n int, level func(int) float64, fromRight bool) []float64 {
	type span struct{ top, low float64 }
	mins := make([]float64, n)
	stack := make([]span, 0, 64)
	for k := 0; k < n; k++ {
		i := k
		if fromRight {
			i = n - 1 - k
		}
		v := level(i)
		low := v
		for len(stack) > 0 && stack[len(stack)-1].top <= v {
			low = math.Min(low, stack[len(stack)-1].low)
			stack = stack[:len(stack)-1]
		}
		mins[i] = low
		stack = append(stack, span{top: v, low: low})
	}
	return mins
}
