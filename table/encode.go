package table

import (
	"io"
	"math"

	"github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/table/internal/binary"
)

// Encode writes a format 2 table holding entries, in the order given.
// Each field gets the shortest encoding that reproduces it from the
// previous record; offsets that are multiples of PointerSize use the
// scaled encoding when that is shorter.
func Encode(w io.Writer, h Header, entries []Entry) error {
	if len(h.ModuleName) >= MaxNameLen {
		return errors.New(errors.PhaseEncode, errors.KindRange).
			Field("name_len").
			Value(int64(len(h.ModuleName))).
			Detail("value %d outside [0, %d)", len(h.ModuleName), MaxNameLen).
			Build()
	}
	if uint64(len(entries)) > math.MaxUint32 {
		return errors.New(errors.PhaseEncode, errors.KindRange).
			Field("record_count").
			Value(int64(len(entries))).
			Detail("%d records do not fit in a u32 count", len(entries)).
			Build()
	}

	bw := binary.NewWriter()
	bw.WriteU32(FormatVersion)
	for _, v := range h.Version {
		bw.WriteU32(v)
	}
	bw.WriteI32(int32(len(h.ModuleName)))
	bw.WriteBytes(h.ModuleName)
	bw.WriteU32(h.PointerSize)
	bw.WriteU32(uint32(len(entries)))

	ptrSize := uint64(h.PointerSize)
	var prevID, prevOffset uint64

	for _, e := range entries {
		idMode, idVal := chooseMode(prevID, e.ID)

		offMode, offVal := chooseMode(prevOffset, e.Offset)
		scaled := false
		if ptrSize != 0 && e.Offset%ptrSize == 0 {
			sMode, sVal := chooseMode(prevOffset/ptrSize, e.Offset/ptrSize)
			if modeSize[sMode] < modeSize[offMode] {
				offMode, offVal, scaled = sMode, sVal, true
			}
		}

		ctl := idMode | offMode<<offModeShift
		if scaled {
			ctl |= offScaled << offModeShift
		}
		bw.WriteU8(ctl)
		writeField(bw, idMode, idVal)
		writeField(bw, offMode, offVal)

		prevID = e.ID
		prevOffset = e.Offset
	}

	if _, err := w.Write(bw.Bytes()); err != nil {
		return errors.Wrap(errors.PhaseEncode, errors.KindIO, err, "write table")
	}
	return nil
}

// Encode writes t in identifier order.
func (t *Table) Encode(w io.Writer) error {
	return Encode(w, t.Header(), t.Entries())
}

// chooseMode picks the cheapest mode producing next from prev and returns
// it with the payload to store. Delta arithmetic wraps like the decoder's.
func chooseMode(prev, next uint64) (byte, uint64) {
	up := next - prev
	down := prev - next

	switch {
	case up == 1:
		return modeNext, 0
	case up <= math.MaxUint8:
		return modeAdd8, up
	case down <= math.MaxUint8:
		return modeSub8, down
	case next <= math.MaxUint16:
		return modeLiteral16, next
	case up <= math.MaxUint16:
		return modeAdd16, up
	case down <= math.MaxUint16:
		return modeSub16, down
	case next <= math.MaxUint32:
		return modeLiteral32, next
	default:
		return modeLiteral64, next
	}
}

func writeField(w *binary.Writer, mode byte, v uint64) {
	switch mode {
	case modeLiteral64:
		w.WriteU64(v)
	case modeNext:
	case modeAdd8, modeSub8:
		w.WriteU8(byte(v))
	case modeAdd16, modeSub16, modeLiteral16:
		w.WriteU16(uint16(v))
	case modeLiteral32:
		w.WriteU32(uint32(v))
	}
}
