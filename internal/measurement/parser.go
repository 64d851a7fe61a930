package measurement

import (
	"path/filepath"
	"strings"

	"github.com/RMahshie/roomtreat/internal/errs"
)

// Parser turns raw measurement files into a Series. It is safe for concurrent use.
type Parser struct {
	limits Limits
}

// NewParser creates a parser; zero limit fields take DefaultLimits.
func NewParser(limits Limits) *Parser {
	return &Parser{limits: limits.withDefaults()}
}

// Limits returns the effective limits.
func (p *Parser) Limits() Limits {
	return p.limits
}

// Parse checks the size cap, detects the format, then dispatches to its decoder.
func (p *Parser) Parse(data []byte, filename string, hint Format) (Series, error) {
	if int64(len(data)) > p.limits.MaxBytes {
		return Series{}, errs.Parse(errs.InputTooLarge, "bytes", len(data), 0)
	}

	format, err := Detect(filename, data, hint)
	if err != nil {
		return Series{}, err
	}

	var s Series
	switch format {
	case FormatText, FormatFRD:
		s, err = decodeText(data, format, p.limits)
	case FormatMDAT:
		s, err = decodeMDAT(data, p.limits)
	default:
		return Series{}, errs.Parse(errs.UnsupportedFormat, "format", format, 0)
	}
	if err != nil {
		return Series{}, err
	}

	if s.Metadata.Name == "" && filename != "" {
		s.Metadata.Name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return s, nil
}
