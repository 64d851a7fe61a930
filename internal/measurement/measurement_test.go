package measurement

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/RMahshie/roomtreat/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireKind(t *testing.T, err error, kind errs.ParseKind) *errs.ParseError {
	t.Helper()
	require.Error(t, err)
	var pe *errs.ParseError
	require.True(t, errors.As(err, &pe), "expected *errs.ParseError, got %T", err)
	assert.Equal(t, kind, pe.Kind)
	return pe
}

func TestParseText(t *testing.T) {
	p := NewParser(Limits{})

	s, err := p.Parse([]byte("20 80.0\n25 82.0 10\n31.5 79\n"), "sweep.txt", FormatAuto)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.False(t, s.HasPhase, "phase needs a value on every row")
	assert.Equal(t, Point{Frequency: 25, Magnitude: 82}, s.Points[1])
	assert.Equal(t, FormatText, s.Metadata.Format)
	assert.Equal(t, "sweep", s.Metadata.Name)

	lo, hi := s.Range()
	assert.Equal(t, 20.0, lo)
	assert.Equal(t, 31.5, hi)
}

func TestParseTextWithPhaseAndComments(t *testing.T) {
	data := strings.Join([]string{
		"* Measurement: Left speaker",
		"* Date: Oct 1, 2025",
		"* Freq(Hz), SPL(dB), Phase(degrees)",
		"20, 78.5, -12.0",
		"",
		"40, 81.0, 4.5",
		"80, 80.2, 30",
	}, "\n")

	s, err := NewParser(Limits{}).Parse([]byte(data), "left.txt", FormatAuto)
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())
	assert.True(t, s.HasPhase)
	assert.Equal(t, -12.0, s.Points[0].Phase)
	assert.Equal(t, "Left speaker", s.Metadata.Name)
	assert.Equal(t, "Oct 1, 2025", s.Metadata.Fields["Date"])
}

func TestParseSkipsBadRows(t *testing.T) {
	data := "20 80\n30\n0 70\n-5 70\n40 81\n"
	s, err := NewParser(Limits{}).Parse([]byte(data), "", FormatText)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 3, s.Metadata.SkippedRows)
}

func TestParseFRD(t *testing.T) {
	t.Run("frequency header accepted", func(t *testing.T) {
		data := "Freq(Hz) SPL(dB) Phase\n100 85 0\n200 86 -10\n"
		s, err := NewParser(Limits{}).Parse([]byte(data), "woofer.frd", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, FormatFRD, s.Metadata.Format)
		assert.True(t, s.HasPhase)
		assert.Equal(t, 2, s.Len())
	})

	t.Run("unrelated header rejected", func(t *testing.T) {
		data := "garbage line\n100 85\n"
		_, err := NewParser(Limits{}).Parse([]byte(data), "woofer.frd", FormatAuto)
		pe := requireKind(t, err, errs.MalformedHeader)
		assert.Equal(t, "header", pe.Field)
		assert.Equal(t, 1, pe.Line)
	})

	t.Run("plain text tolerates the same header", func(t *testing.T) {
		data := "garbage line\n100 85\n"
		s, err := NewParser(Limits{}).Parse([]byte(data), "woofer.txt", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, 1, s.Len())
	})
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		filename string
		hint     Format
		limits   Limits
		kind     errs.ParseKind
		field    string
		line     int
	}{
		{
			name:     "repeated frequency",
			data:     []byte("20 80\n20 81\n"),
			filename: "a.txt",
			kind:     errs.NonMonotonicFrequencyAxis,
			field:    "frequency",
			line:     2,
		},
		{
			name:     "decreasing frequency",
			data:     []byte("# header\n30 80\n20 81\n"),
			filename: "a.txt",
			kind:     errs.NonMonotonicFrequencyAxis,
			field:    "frequency",
			line:     3,
		},
		{
			name:     "comments only",
			data:     []byte("# nothing here\n"),
			filename: "a.txt",
			kind:     errs.EmptySeries,
			field:    "rows",
		},
		{
			name:     "empty file",
			data:     nil,
			filename: "a.txt",
			kind:     errs.EmptySeries,
			field:    "rows",
		},
		{
			name:     "binary with unknown extension",
			data:     []byte{0x01, 0x00, 0xff, 0xfe},
			filename: "capture.bin",
			kind:     errs.UnsupportedFormat,
			field:    "extension",
		},
		{
			name:  "binary without extension",
			data:  []byte{0x01, 0x00, 0xff, 0xfe},
			kind:  errs.UnsupportedFormat,
			field: "signature",
		},
		{
			name:  "binary forced as text",
			data:  []byte("20 80\x00\n"),
			hint:  FormatText,
			kind:  errs.UnsupportedFormat,
			field: "content",
		},
		{
			name:   "too many bytes",
			data:   []byte("20 80\n30 81\n"),
			limits: Limits{MaxBytes: 8},
			kind:   errs.InputTooLarge,
			field:  "bytes",
		},
		{
			name:   "too many rows",
			data:   []byte("20 80\n30 81\n40 82\n"),
			limits: Limits{MaxRows: 2},
			kind:   errs.InputTooLarge,
			field:  "rows",
			line:   3,
		},
		{
			name:   "line too long",
			data:   []byte("20 80\n" + strings.Repeat("9", 300) + "\n"),
			limits: Limits{MaxLineBytes: 64},
			kind:   errs.InputTooLarge,
			field:  "line",
			line:   2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.limits).Parse(tt.data, tt.filename, tt.hint)
			pe := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.field, pe.Field)
			assert.Equal(t, tt.line, pe.Line)
		})
	}
}

func TestParseErrorSentinels(t *testing.T) {
	_, err := NewParser(Limits{}).Parse([]byte("20 80\n10 80\n"), "a.txt", FormatAuto)
	assert.True(t, errors.Is(err, errs.ErrNonMonotonicFrequencyAxis))
	assert.False(t, errors.Is(err, errs.ErrEmptySeries))
}

func TestDetect(t *testing.T) {
	mdat, err := EncodeMDAT([]Block{{Name: "L", Points: []Point{{Frequency: 20, Magnitude: 80}}}}, -1)
	require.NoError(t, err)

	tests := []struct {
		name     string
		filename string
		data     []byte
		hint     Format
		want     Format
	}{
		{"hint wins over extension", "a.frd", []byte("20 80"), FormatText, FormatText},
		{"txt extension", "a.TXT", []byte("20 80"), FormatAuto, FormatText},
		{"csv extension", "a.csv", []byte("20,80"), "", FormatText},
		{"frd extension", "a.frd", []byte("20 80"), FormatAuto, FormatFRD},
		{"mdat extension", "a.mdat", []byte("junk"), FormatAuto, FormatMDAT},
		{"mdat signature", "", mdat, FormatAuto, FormatMDAT},
		{"mdat signature under unknown extension", "a.dat", mdat, FormatAuto, FormatMDAT},
		{"text signature", "upload", []byte("20 80\n"), FormatAuto, FormatText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Detect(tt.filename, tt.data, tt.hint)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFormat(t *testing.T) {
	for hint, want := range map[string]Format{"": FormatAuto, "AUTO": FormatAuto, "csv": FormatText, "frd": FormatFRD, " mdat ": FormatMDAT} {
		got, err := ParseFormat(hint)
		require.NoError(t, err, hint)
		assert.Equal(t, want, got, hint)
	}

	_, err := ParseFormat("wav")
	requireKind(t, err, errs.UnsupportedFormat)
}

func sweep(n int, phase bool) []Point {
	ps := make([]Point, n)
	for i := range ps {
		ps[i] = Point{Frequency: 20 * float64(i+1), Magnitude: 75 + float64(i%7)}
		if phase {
			ps[i].Phase = float64(i) * -3
		}
	}
	return ps
}

func TestMDATRoundTrip(t *testing.T) {
	captured := time.Date(2025, 10, 1, 12, 30, 0, 0, time.UTC)
	blocks := []Block{
		{Name: "Left", Points: sweep(10, false)},
		{Name: "Right", Points: sweep(12, true), HasPhase: true, CapturedAt: captured},
	}

	t.Run("active block decoded", func(t *testing.T) {
		data, err := EncodeMDAT(blocks, 1)
		require.NoError(t, err)

		s, err := NewParser(Limits{}).Parse(data, "session.mdat", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, FormatMDAT, s.Metadata.Format)
		assert.Equal(t, []string{"Left", "Right"}, s.Metadata.Blocks)
		assert.Equal(t, 1, s.Metadata.ActiveBlock)
		assert.Equal(t, "Right", s.Metadata.Name)
		assert.True(t, s.HasPhase)
		assert.Equal(t, blocks[1].Points, s.Points)
		require.NotNil(t, s.Metadata.CapturedAt)
		assert.True(t, captured.Equal(*s.Metadata.CapturedAt))
	})

	t.Run("unset active flag falls back to first block", func(t *testing.T) {
		data, err := EncodeMDAT(blocks, -1)
		require.NoError(t, err)

		s, err := NewParser(Limits{}).Parse(data, "", FormatAuto)
		require.NoError(t, err)
		assert.Equal(t, 0, s.Metadata.ActiveBlock)
		assert.Equal(t, "Left", s.Metadata.Name)
		assert.False(t, s.HasPhase)
		assert.Nil(t, s.Metadata.CapturedAt)
		assert.Equal(t, blocks[0].Points, s.Points)
	})
}

func TestMDATMalformed(t *testing.T) {
	good, err := EncodeMDAT([]Block{
		{Name: "A", Points: sweep(4, false)},
		{Name: "B", Points: sweep(4, false)},
	}, 0)
	require.NoError(t, err)

	mutate := func(f func(b []byte) []byte) []byte {
		return f(bytes.Clone(good))
	}

	tests := []struct {
		name   string
		data   []byte
		limits Limits
		kind   errs.ParseKind
		field  string
	}{
		{"short header", []byte("MDAT\x01\x00"), Limits{}, errs.MalformedHeader, "header"},
		{"bad magic", mutate(func(b []byte) []byte { copy(b, "MDAX"); return b }), Limits{}, errs.MalformedHeader, "magic"},
		{"unknown version", mutate(func(b []byte) []byte { b[4] = 9; return b }), Limits{}, errs.MalformedHeader, "version"},
		{"active out of range", mutate(func(b []byte) []byte { b[12] = 5; return b }), Limits{}, errs.MalformedHeader, "active_block"},
		{"truncated block", good[:len(good)-5], Limits{}, errs.MalformedHeader, "blocks[1]"},
		{"too many blocks", good, Limits{MaxBlocks: 1}, errs.MalformedHeader, "block_count"},
		{"too many points", good, Limits{MaxRows: 3}, errs.InputTooLarge, "blocks[0].points"},
		{"no blocks", mutate(func(b []byte) []byte { b[8] = 0; return b[:mdatHeaderSize] }), Limits{}, errs.EmptySeries, "blocks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewParser(tt.limits).Parse(tt.data, "x.mdat", FormatAuto)
			pe := requireKind(t, err, tt.kind)
			assert.Equal(t, tt.field, pe.Field)
		})
	}
}

func TestMDATEmptyBlock(t *testing.T) {
	data, err := EncodeMDAT([]Block{{Name: "silent"}}, 0)
	require.NoError(t, err)

	_, err = NewParser(Limits{}).Parse(data, "x.mdat", FormatAuto)
	requireKind(t, err, errs.EmptySeries)
}

func TestEncodeMDATValidation(t *testing.T) {
	_, err := EncodeMDAT(nil, 0)
	assert.True(t, errs.IsValidation(err))

	_, err = EncodeMDAT([]Block{{Name: "a"}}, 1)
	assert.True(t, errs.IsValidation(err))
}

func TestMagnitudeAt(t *testing.T) {
	s := Series{Points: []Point{{Frequency: 100, Magnitude: 80}, {Frequency: 200, Magnitude: 90}}}
	assert.Equal(t, 80.0, s.MagnitudeAt(50))
	assert.InDelta(t, 85.0, s.MagnitudeAt(150), 1e-9)
	assert.Equal(t, 90.0, s.MagnitudeAt(500))
	assert.Equal(t, 0.0, Series{}.MagnitudeAt(100))
}

func TestAnalyze(t *testing.T) {
	var ps []Point
	for f := 20.0; f < 2000; f += 10 {
		m := 80.0
		switch f {
		case 50:
			m = 88
		case 120:
			m = 75
		case 800:
			m = 90
		}
		ps = append(ps, Point{Frequency: f, Magnitude: m})
	}
	s := Series{Points: ps}

	a := Analyze(s, []float64{48, 130})

	require.Len(t, a.Peaks, 1, "the 800 Hz peak is outside the bass region")
	assert.Equal(t, 50.0, a.Peaks[0].Frequency)
	assert.InDelta(t, 8.0, a.Peaks[0].Prominence, 1e-9)

	require.Len(t, a.Dips, 1)
	assert.Equal(t, 120.0, a.Dips[0].Frequency)
	assert.InDelta(t, 5.0, a.Dips[0].Prominence, 1e-9)

	require.Len(t, a.ModalProblems, 1)
	mp := a.ModalProblems[0]
	assert.True(t, mp.MatchesMode)
	assert.Equal(t, 48.0, mp.Mode)
	assert.True(t, mp.Severe)

	assert.InDelta(t, 100*195.0/198.0, a.FlatnessPercent, 1e-9)
	assert.Greater(t, a.TargetLevel, 80.0)
	assert.Greater(t, a.Deviation, 0.0)
}

func TestAnalyzeOrdersByProminence(t *testing.T) {
	var ps []Point
	for i, m := range []float64{70, 74, 70, 79, 70, 76, 70} {
		ps = append(ps, Point{Frequency: float64(40 + 20*i), Magnitude: m})
	}
	a := Analyze(Series{Points: ps}, nil)

	var got []string
	for _, p := range a.Peaks {
		got = append(got, fmt.Sprintf("%.0f", p.Frequency))
	}
	assert.Equal(t, []string{"100", "140", "60"}, got)
	for _, mp := range a.ModalProblems {
		assert.False(t, mp.MatchesMode)
	}
}

// scanProminence walks outward from every maximum; it is the slow reference
// the stack-based extrema must agree with.
func scanProminence(ps []Point) map[float64]float64 {
	out := map[float64]float64{}
	for i := 1; i+1 < len(ps); i++ {
		v := ps[i].Magnitude
		if !(v > ps[i-1].Magnitude && v > ps[i+1].Magnitude) {
			continue
		}
		left, right := v, v
		for j := i - 1; j >= 0 && ps[j].Magnitude <= v; j-- {
			left = math.Min(left, ps[j].Magnitude)
		}
		for j := i + 1; j < len(ps) && ps[j].Magnitude <= v; j++ {
			right = math.Min(right, ps[j].Magnitude)
		}
		out[ps[i].Frequency] = v - math.Max(left, right)
	}
	return out
}

func TestExtremaMatchesOutwardScan(t *testing.T) {
	var ps []Point
	for i := 0; i < 400; i++ {
		m := 80 + 10*math.Sin(float64(i)*0.37) + 4*math.Sin(float64(i)*2.3) + float64(i%7)
		ps = append(ps, Point{Frequency: 20 + float64(i), Magnitude: m})
	}

	want := scanProminence(ps)
	got := extrema(ps, false)
	require.NotEmpty(t, got)
	for _, e := range got {
		assert.InDelta(t, want[e.Frequency], e.Prominence, 1e-9, "peak at %.0f Hz", e.Frequency)
	}
	count := 0
	for _, p := range want {
		if p >= minProminence {
			count++
		}
	}
	assert.Len(t, got, count)
}

func TestAnalyzeRisingZigZagIsLinear(t *testing.T) {
	const rows = 200000
	ps := make([]Point, rows)
	for i := range ps {
		ps[i] = Point{Frequency: 20 + float64(i)*0.002, Magnitude: float64(i)*0.001 + float64(i%2)*5}
	}

	start := time.Now()
	a := Analyze(Series{Points: ps}, nil)
	elapsed := time.Since(start)

	assert.Len(t, a.Peaks, rows/2-1)
	assert.Len(t, a.Dips, rows/2-1)
	assert.InDelta(t, 4.999, a.Peaks[0].Prominence, 1e-6)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestAnalyzeEmpty(t *testing.T) {
	assert.Equal(t, Analysis{}, Analyze(Series{}, nil))
}
