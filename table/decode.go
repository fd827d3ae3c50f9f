package table

import (
	"bytes"
	"fmt"
	"io"

	"github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/table/internal/binary"
)

// Control byte layout: the low nibble selects the identifier encoding,
// the high nibble the offset encoding. Bit 3 of the high nibble marks
// an offset delta counted in pointer-size units.
const (
	idModeMask   = 0x0f
	offModeShift = 4
	offModeMask  = 0x07
	offScaled    = 0x08
)

// Field encodings shared by the identifier and the offset.
const (
	modeLiteral64 = iota // u64 literal
	modeNext             // prev + 1
	modeAdd8             // prev + u8
	modeSub8             // prev - u8
	modeAdd16            // prev + u16
	modeSub16            // prev - u16
	modeLiteral16        // u16 literal
	modeLiteral32        // u32 literal
)

// modeSize is the number of payload bytes each mode consumes.
var modeSize = [8]int{8, 0, 1, 1, 2, 2, 2, 4}

// maxCapacityHint caps map preallocation so a corrupt record count cannot
// force a huge allocation before the records are proven to exist.
const maxCapacityHint = 1 << 20

// DecodeBytes decodes a table held in memory.
func DecodeBytes(data []byte) (*Table, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one address table from r. It consumes the header and
// exactly record_count records; trailing bytes are not read.
func Decode(r io.Reader) (*Table, error) {
	br := binary.NewReader(r)

	format, err := br.ReadU32()
	if err != nil {
		return nil, br.WrapError("format", 4, err)
	}
	if format != FormatVersion {
		return nil, errors.Format(format, FormatVersion)
	}

	var hdr Header
	for i := range hdr.Version {
		if hdr.Version[i], err = br.ReadU32(); err != nil {
			return nil, br.WrapError(fmt.Sprintf("version[%d]", i), 4, err)
		}
	}

	nameLen, err := br.ReadI32()
	if err != nil {
		return nil, br.WrapError("name_len", 4, err)
	}
	if nameLen < 0 || nameLen >= MaxNameLen {
		return nil, errors.Range("name_len", int64(nameLen), 0, MaxNameLen)
	}

	if hdr.ModuleName, err = br.ReadBytes(int(nameLen)); err != nil {
		return nil, br.WrapError("name", int(nameLen), err)
	}

	if hdr.PointerSize, err = br.ReadU32(); err != nil {
		return nil, br.WrapError("pointer_size", 4, err)
	}

	count, err := br.ReadU32()
	if err != nil {
		return nil, br.WrapError("record_count", 4, err)
	}

	t := newTable(int(min(count, maxCapacityHint)))
	t.FormatVersion = format
	t.Version = hdr.Version
	t.ModuleNameRaw = hdr.ModuleName
	t.PointerSize = hdr.PointerSize

	ptrSize := uint64(hdr.PointerSize)
	var prevID, prevOffset uint64

	for i := uint32(0); i < count; i++ {
		ctl, err := br.ReadU8()
		if err != nil {
			return nil, br.WrapError(recordField(i, "type"), 1, err)
		}

		idMode := ctl & idModeMask
		if int(idMode) >= len(modeSize) {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Field(recordField(i, "type")).
				Value(ctl).
				Detail("identifier mode %d at position %d", idMode, br.Position()-1).
				Build()
		}

		id, err := readField(br, idMode, prevID)
		if err != nil {
			return nil, br.WrapError(recordField(i, "id"), modeSize[idMode], err)
		}

		offMode := ctl >> offModeShift
		scaled := offMode&offScaled != 0
		base := prevOffset
		if scaled {
			if ptrSize == 0 {
				return nil, errors.InvalidData(errors.PhaseDecode, recordField(i, "offset"),
					"scaled offset with zero pointer_size")
			}
			base = prevOffset / ptrSize
		}

		sub := offMode & offModeMask
		off, err := readField(br, sub, base)
		if err != nil {
			return nil, br.WrapError(recordField(i, "offset"), modeSize[sub], err)
		}
		if scaled {
			off *= ptrSize
		}

		t.insert(id, off)
		prevID = id
		prevOffset = off
	}

	return t, nil
}

// readField decodes one identifier or offset against the running value prev.
// Arithmetic wraps modulo 2^64.
func readField(r *binary.Reader, mode byte, prev uint64) (uint64, error) {
	switch mode {
	case modeLiteral64:
		return r.ReadU64()
	case modeNext:
		return prev + 1, nil
	case modeAdd8:
		v, err := r.ReadU8()
		return prev + uint64(v), err
	case modeSub8:
		v, err := r.ReadU8()
		return prev - uint64(v), err
	case modeAdd16:
		v, err := r.ReadU16()
		return prev + uint64(v), err
	case modeSub16:
		v, err := r.ReadU16()
		return prev - uint64(v), err
	case modeLiteral16:
		v, err := r.ReadU16()
		return uint64(v), err
	case modeLiteral32:
		v, err := r.ReadU32()
		return uint64(v), err
	default:
		panic(fmt.Sprintf("table: field mode %d out of range", mode))
	}
}

func recordField(i uint32, name string) string {
	return fmt.Sprintf("record[%d].%s", i, name)
}
