package measurement

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/RMahshie/roomtreat/internal/errs"
)

// The .mdat container, all integers little-endian:
//
//	header  magic "MDAT" | version u16 | flags u16 | block count u32 | active block u32
//	table   block count x (offset u32 | length u32)
//	block   name length u16 | name | captured unix seconds i64 | point count u32 |
//	        point flags u8 | points x (frequency f64 | magnitude f64 [| phase f64])
//
// Header flag bit 0 marks the active-block field as valid; otherwise block 0 is decoded.
// Point flag bit 0 marks the presence of phase.
const (
	mdatVersion     = 1
	mdatHeaderSize  = 16
	mdatEntrySize   = 8
	mdatBlockFixed  = 2 + 8 + 4 + 1
	flagActiveValid = 1
	flagPointPhase  = 1
)

// Block is one named measurement inside an .mdat container.
type Block struct {
	Name       string
	CapturedAt time.Time
	Points     []Point
	HasPhase   bool
}

type blockRef struct {
	offset, length uint32
}

func decodeMDAT(data []byte, limits Limits) (Series, error) {
	if len(data) < mdatHeaderSize {
		return Series{}, errs.Parse(errs.MalformedHeader, "header", len(data), 0)
	}
	if !bytes.Equal(data[:4], mdatMagic) {
		return Series{}, errs.Parse(errs.MalformedHeader, "magic", signature(data), 0)
	}
	le := binary.LittleEndian
	version := le.Uint16(data[4:6])
	flags := le.Uint16(data[6:8])
	count := le.Uint32(data[8:12])
	active := le.Uint32(data[12:16])

	if version != mdatVersion {
		return Series{}, errs.Parse(errs.MalformedHeader, "version", version, 0)
	}
	if count == 0 {
		return Series{}, errs.Parse(errs.EmptySeries, "blocks", 0, 0)
	}
	if int64(count) > int64(limits.MaxBlocks) {
		return Series{}, errs.Parse(errs.MalformedHeader, "block_count", count, 0)
	}
	tableEnd := mdatHeaderSize + int(count)*mdatEntrySize
	if tableEnd > len(data) {
		return Series{}, errs.Parse(errs.MalformedHeader, "block_table", count, 0)
	}
	if flags&flagActiveValid == 0 {
		active = 0
	} else if active >= count {
		return Series{}, errs.Parse(errs.MalformedHeader, "active_block", active, 0)
	}

	refs := make([]blockRef, count)
	names := make([]string, count)
	for i := range refs {
		at := mdatHeaderSize + i*mdatEntrySize
		ref := blockRef{offset: le.Uint32(data[at:]), length: le.Uint32(data[at+4:])}
		end := uint64(ref.offset) + uint64(ref.length)
		if uint64(ref.offset) < uint64(tableEnd) || end > uint64(len(data)) || ref.length < mdatBlockFixed {
			return Series{}, errs.Parse(errs.MalformedHeader, fmt.Sprintf("blocks[%d]", i), ref.offset, 0)
		}
		name, err := blockName(data[ref.offset:end], i)
		if err != nil {
			return Series{}, err
		}
		refs[i], names[i] = ref, name
	}

	ref := refs[active]
	blk, err := decodeBlock(data[ref.offset:ref.offset+ref.length], int(active), limits)
	if err != nil {
		return Series{}, err
	}

	meta := Metadata{
		Format:      FormatMDAT,
		Name:        blk.Name,
		Channel:     blk.Name,
		Blocks:      names,
		ActiveBlock: int(active),
	}
	if !blk.CapturedAt.IsZero() {
		t := blk.CapturedAt
		meta.CapturedAt = &t
	}

	rows := make([]row, len(blk.Points))
	for i, p := range blk.Points {
		values := []float64{p.Frequency, p.Magnitude}
		if blk.HasPhase {
			values = append(values, p.Phase)
		}
		rows[i] = row{line: i + 1, values: values}
	}
	return buildSeries(rows, meta)
}

func blockName(b []byte, idx int) (string, error) {
	n := int(binary.LittleEndian.Uint16(b))
	if n+mdatBlockFixed > len(b) {
		return "", errs.Parse(errs.MalformedHeader, fmt.Sprintf("blocks[%d].name", idx), n, 0)
	}
	return string(b[2 : 2+n]), nil
}

func decodeBlock(b []byte, idx int, limits Limits) (Block, error) {
	le := binary.LittleEndian
	name, err := blockName(b, idx)
	if err != nil {
		return Block{}, err
	}
	at := 2 + len(name)
	captured := int64(le.Uint64(b[at:]))
	count := le.Uint32(b[at+8:])
	pflags := b[at+12]
	at += 13

	if count == 0 {
		return Block{}, errs.Parse(errs.EmptySeries, fmt.Sprintf("blocks[%d].points", idx), 0, 0)
	}
	if int64(count) > int64(limits.MaxRows) {
		return Block{}, errs.Parse(errs.InputTooLarge, fmt.Sprintf("blocks[%d].points", idx), count, 0)
	}
	stride := 16
	if pflags&flagPointPhase != 0 {
		stride = 24
	}
	if uint64(at)+uint64(count)*uint64(stride) > uint64(len(b)) {
		return Block{}, errs.Parse(errs.MalformedHeader, fmt.Sprintf("blocks[%d].points", idx), count, 0)
	}

	blk := Block{Name: name, HasPhase: stride == 24, Points: make([]Point, count)}
	if captured != 0 {
		blk.CapturedAt = time.Unix(captured, 0).UTC()
	}
	for i := range blk.Points {
		p := Point{
			Frequency: math.Float64frombits(le.Uint64(b[at:])),
			Magnitude: math.Float64frombits(le.Uint64(b[at+8:])),
		}
		if blk.HasPhase {
			p.Phase = math.Float64frombits(le.Uint64(b[at+16:]))
		}
		blk.Points[i] = p
		at += stride
	}
	return blk, nil
}

// EncodeMDAT writes blocks into an .mdat container. active < 0 leaves the
// active-block flag unset so readers fall back to the first block.
func EncodeMDAT(blocks []Block, active int) ([]byte, error) {
	if len(blocks) == 0 {
		return nil, errs.Validation("blocks", 0, "at least one block is required")
	}
	if active >= len(blocks) {
		return nil, errs.Validation("active", active, "out of range")
	}

	payloads := make([][]byte, len(blocks))
	for i, blk := range blocks {
		var buf bytes.Buffer
		le := binary.LittleEndian
		if len(blk.Name) > math.MaxUint16 {
			return nil, errs.Validation(fmt.Sprintf("blocks[%d].name", i), len(blk.Name), "too long")
		}
		var captured int64
		if !blk.CapturedAt.IsZero() {
			captured = blk.CapturedAt.Unix()
		}
		var pflags uint8
		if blk.HasPhase {
			pflags = flagPointPhase
		}
		_ = binary.Write(&buf, le, uint16(len(blk.Name)))
		buf.WriteString(blk.Name)
		_ = binary.Write(&buf, le, captured)
		_ = binary.Write(&buf, le, uint32(len(blk.Points)))
		buf.WriteByte(pflags)
		for _, p := range blk.Points {
			_ = binary.Write(&buf, le, p.Frequency)
			_ = binary.Write(&buf, le, p.Magnitude)
			if blk.HasPhase {
				_ = binary.Write(&buf, le, p.Phase)
			}
		}
		payloads[i] = buf.Bytes()
	}

	var out bytes.Buffer
	le := binary.LittleEndian
	out.Write(mdatMagic)
	var flags uint16
	activeIdx := uint32(0)
	if active >= 0 {
		flags = flagActiveValid
		activeIdx = uint32(active)
	}
	_ = binary.Write(&out, le, uint16(mdatVersion))
	_ = binary.Write(&out, le, flags)
	_ = binary.Write(&out, le, uint32(len(blocks)))
	_ = binary.Write(&out, le, activeIdx)

	offset := uint32(mdatHeaderSize + len(blocks)*mdatEntrySize)
	for _, p := range payloads {
		_ = binary.Write(&out, le, offset)
		_ = binary.Write(&out, le, uint32(len(p)))
		offset += uint32(len(p))
	}
	for _, p := range payloads {
		out.Write(p)
	}
	return out.Bytes(), nil
}
