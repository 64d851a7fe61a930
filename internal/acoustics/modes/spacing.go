package modes

import "math"

const (
	clusterWidth   = 5.0
	clusterMinSize = 3
	noteTolerance  = 3.0
)

// Cluster is a run of at least three modes packed within 5 Hz.
type Cluster struct {
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
	Center float64 `json:"center"`
	Count  int     `json:"count"`
}

// Spacing summarizes gaps between consecutive modes.
type Spacing struct {
	Average  float64   `json:"average"`
	Min      float64   `json:"min"`
	Max      float64   `json:"max"`
	StdDev   float64   `json:"std_dev"`
	Clusters []Cluster `json:"clusters,omitempty"`
}

// AnalyzeSpacing computes gap statistics and clusters for an ordered mode list.
func AnalyzeSpacing(ms []Mode) Spacing {
	var s Spacing
	if len(ms) < 2 {
		return s
	}

	gaps := make([]float64, 0, len(ms)-1)
	for i := 1; i < len(ms); i++ {
		gaps = append(gaps, ms[i].Frequency-ms[i-1].Frequency)
	}
	s.Min, s.Max = gaps[0], gaps[0]
	var sum float64
	for _, g := range gaps {
		sum += g
		s.Min = math.Min(s.Min, g)
		s.Max = math.Max(s.Max, g)
	}
	s.Average = sum / float64(len(gaps))
	var sq float64
	for _, g := range gaps {
		sq += (g - s.Average) * (g - s.Average)
	}
	s.StdDev = math.Sqrt(sq / float64(len(gaps)))

	for i := 0; i < len(ms); {
		j := i
		for j+1 < len(ms) && ms[j+1].Frequency-ms[i].Frequency <= clusterWidth {
			j++
		}
		if n := j - i + 1; n >= clusterMinSize {
			var c float64
			for _, m := range ms[i : j+1] {
				c += m.Frequency
			}
			s.Clusters = append(s.Clusters, Cluster{
				Low:    ms[i].Frequency,
				High:   ms[j].Frequency,
				Center: c / float64(n),
				Count:  n,
			})
			i = j + 1
			continue
		}
		i++
	}
	return s
}

// NoteMatch is an axial mode sitting close to a common bass note.
type NoteMatch struct {
	Note      string  `json:"note"`
	NoteFreq  float64 `json:"note_frequency"`
	Mode      Mode    `json:"mode"`
	Deviation float64 `json:"deviation"`
}

var bassNotes = []struct {
	name string
	freq float64
}{
	{"E1", 41.20}, {"F1", 43.65}, {"F#1", 46.25}, {"G1", 49.00}, {"G#1", 51.91},
	{"A1", 55.00}, {"A#1", 58.27}, {"B1", 61.74}, {"C2", 65.41}, {"C#2", 69.30},
	{"D2", 73.42}, {"D#2", 77.78}, {"E2", 82.41}, {"F2", 87.31}, {"F#2", 92.50},
	{"G2", 98.00}, {"G#2", 103.83}, {"A2", 110.00}, {"A#2", 116.54}, {"B2", 123.47},
}

// BassNoteMatches pairs each axial mode with its nearest note from E1 to B2
// when that note is within 3 Hz.
func BassNoteMatches(ms []Mode) []NoteMatch {
	var out []NoteMatch
	for _, m := range ms {
		if m.Type != Axial {
			continue
		}
		best := -1
		bestDev := math.Inf(1)
		for i, n := range bassNotes {
			if d := math.Abs(m.Frequency - n.freq); d < bestDev {
				best, bestDev = i, d
			}
		}
		if bestDev <= noteTolerance {
			n := bassNotes[best]
			out = append(out, NoteMatch{Note: n.name, NoteFreq: n.freq, Mode: m, Deviation: bestDev})
		}
	}
	return out
}
