package measurement

import (
	"bufio"
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/RMahshie/roomtreat/internal/errs"
)

// Lines starting with any of these are comments. REW writes "* key: value" metadata.
var commentMarkers = []string{"*", "#", ";", "//", "\""}

// headerAllowance is how many non-data lines a text file may carry beyond MaxRows.
const headerAllowance = 1024

type row struct {
	line   int
	values []float64
}

// decodeText reads plain-text and .frd exports. The .frd variant additionally
// requires any uncommented leading header to name a frequency column.
func decodeText(data []byte, format Format, limits Limits) (Series, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return Series{}, errs.Parse(errs.UnsupportedFormat, "content", "binary", 0)
	}
	if lines := bytes.Count(data, []byte{'\n'}) + 1; lines > limits.MaxRows+headerAllowance {
		return Series{}, errs.Parse(errs.InputTooLarge, "lines", lines, 0)
	}

	meta := Metadata{Format: format}
	var rows []row

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, min(4096, limits.MaxLineBytes)), limits.MaxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if isComment(line) {
			addField(&meta, line)
			continue
		}

		values, ok := numericFields(line)
		if !ok {
			// Header or trailing junk. Only a leading .frd header is checked.
			if format == FormatFRD && len(rows) == 0 && !namesFrequency(line) {
				return Series{}, errs.Parse(errs.MalformedHeader, "header", line, lineNo)
			}
			continue
		}
		if len(values) < 2 {
			meta.SkippedRows++
			continue
		}
		if len(rows) >= limits.MaxRows {
			return Series{}, errs.Parse(errs.InputTooLarge, "rows", len(rows)+1, lineNo)
		}
		rows = append(rows, row{line: lineNo, values: values})
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return Series{}, errs.Parse(errs.InputTooLarge, "line", lineNo+1, lineNo+1)
		}
		return Series{}, err
	}

	return buildSeries(rows, meta)
}

func buildSeries(rows []row, meta Metadata) (Series, error) {
	hasPhase := len(rows) > 0
	for _, r := range rows {
		if len(r.values) < 3 {
			hasPhase = false
			break
		}
	}

	s := Series{HasPhase: hasPhase, Metadata: meta}
	prev := math.Inf(-1)
	for _, r := range rows {
		f, mag := r.values[0], r.values[1]
		if !(f > 0) || math.IsInf(f, 0) || math.IsNaN(mag) || math.IsInf(mag, 0) {
			s.Metadata.SkippedRows++
			continue
		}
		if f <= prev {
			return Series{}, errs.Parse(errs.NonMonotonicFrequencyAxis, "frequency", f, r.line)
		}
		prev = f
		p := Point{Frequency: f, Magnitude: mag}
		if hasPhase {
			p.Phase = r.values[2]
		}
		s.Points = append(s.Points, p)
	}
	if len(s.Points) == 0 {
		return Series{}, errs.Parse(errs.EmptySeries, "rows", 0, 0)
	}
	return s, nil
}

func isComment(line string) bool {
	for _, m := range commentMarkers {
		if strings.HasPrefix(line, m) {
			return true
		}
	}
	return false
}

// addField records "* Key: value" comment lines.
func addField(meta *Metadata, line string) {
	body := strings.TrimLeft(line, "*#;/\" ")
	key, value, ok := strings.Cut(body, ":")
	if !ok {
		return
	}
	key, value = strings.TrimSpace(key), strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if meta.Fields == nil {
		meta.Fields = make(map[string]string)
	}
	meta.Fields[key] = value
	if strings.EqualFold(key, "measurement") && meta.Name == "" {
		meta.Name = value
	}
}

func splitFields(line string) []string {
	return strings.FieldsFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
}

// numericFields parses every token of line as a float. ok is false if the
// first token is not numeric; parsing stops at the first non-numeric token after it.
func numericFields(line string) ([]float64, bool) {
	tokens := splitFields(line)
	out := make([]float64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			if i == 0 {
				return nil, false
			}
			break
		}
		out = append(out, v)
	}
	return out, len(out) > 0
}

func namesFrequency(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "freq") || strings.Contains(l, "hz")
}
