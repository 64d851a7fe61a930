package measurement

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/RMahshie/roomtreat/internal/errs"
)

var mdatMagic = []byte("MDAT")

const sniffLen = 512

// ParseFormat maps a caller hint to a Format. The empty hint means auto.
func ParseFormat(hint string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(hint)) {
	case "", "auto":
		return FormatAuto, nil
	case "txt", "text", "csv":
		return FormatText, nil
	case "frd":
		return FormatFRD, nil
	case "mdat":
		return FormatMDAT, nil
	}
	return "", errs.Parse(errs.UnsupportedFormat, "format", hint, 0)
}

// Detect decides the format from an explicit hint, then the file extension, then the content signature.
func Detect(filename string, data []byte, hint Format) (Format, error) {
	if hint != "" && hint != FormatAuto {
		return hint, nil
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".txt", ".csv":
		return FormatText, nil
	case ".frd":
		return FormatFRD, nil
	case ".mdat":
		return FormatMDAT, nil
	case "":
	default:
		if !bytes.HasPrefix(data, mdatMagic) && !isText(data) {
			return "", errs.Parse(errs.UnsupportedFormat, "extension", ext, 0)
		}
	}

	if bytes.HasPrefix(data, mdatMagic) {
		return FormatMDAT, nil
	}
	if isText(data) {
		return FormatText, nil
	}
	return "", errs.Parse(errs.UnsupportedFormat, "signature", signature(data), 0)
}

// isText looks at the leading bytes only.
func isText(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
		// Avoid rejecting a rune split at the cut.
		for i := 0; i < utf8.UTFMax && !utf8.Valid(head); i++ {
			head = head[:len(head)-1]
		}
	}
	return utf8.Valid(head) && bytes.IndexByte(head, 0) < 0
}

func signature(data []byte) string {
	n := 4
	if len(data) < n {
		n = len(data)
	}
	return fmt.Sprintf("% x", data[:n])
}
