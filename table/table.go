package table

import (
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/version"
)

// FormatVersion is the only address table format this package reads and writes.
const FormatVersion uint32 = 2

// MaxNameLen bounds the module name length stored in the header (exclusive).
const MaxNameLen = 0x10000

// Entry is one identifier/offset pair.
type Entry struct {
	ID     uint64
	Offset uint64
}

// Header holds the table fields that precede the records.
type Header struct {
	ModuleName  []byte
	Version     version.Quad
	PointerSize uint32
}

// Table is a decoded address table. It is immutable once returned by
// Decode and safe for concurrent readers.
type Table struct {
	forward       map[uint64]uint64
	reverse       map[uint64]uint64
	ModuleNameRaw []byte
	FormatVersion uint32
	Version       version.Quad
	PointerSize   uint32
}

func newTable(capacity int) *Table {
	return &Table{
		forward: make(map[uint64]uint64, capacity),
		reverse: make(map[uint64]uint64, capacity),
	}
}

func (t *Table) insert(id, offset uint64) {
	t.forward[id] = offset
	t.reverse[offset] = id
}

// ModuleName returns the module name as text. The table stays usable when
// the raw bytes are not valid UTF-8; only this accessor fails.
func (t *Table) ModuleName() (string, error) {
	if !utf8.Valid(t.ModuleNameRaw) {
		return "", errors.InvalidUTF8(errors.PhaseDecode, "name", t.ModuleNameRaw)
	}
	return string(t.ModuleNameRaw), nil
}

// Lookup returns the offset recorded for id.
func (t *Table) Lookup(id uint64) (uint64, bool) {
	off, ok := t.forward[id]
	return off, ok
}

// ReverseLookup returns the identifier recorded for offset.
func (t *Table) ReverseLookup(offset uint64) (uint64, bool) {
	id, ok := t.reverse[offset]
	return id, ok
}

// Has reports whether id is present.
func (t *Table) Has(id uint64) bool {
	_, ok := t.forward[id]
	return ok
}

// Len returns the number of distinct identifiers.
func (t *Table) Len() int {
	return len(t.forward)
}

// Header returns the header fields of t.
func (t *Table) Header() Header {
	return Header{
		ModuleName:  slices.Clone(t.ModuleNameRaw),
		Version:     t.Version,
		PointerSize: t.PointerSize,
	}
}

// Entries returns the forward map sorted by identifier.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.forward))
	for _, id := range slices.Sorted(maps.Keys(t.forward)) {
		out = append(out, Entry{ID: id, Offset: t.forward[id]})
	}
	return out
}

// Equal reports whether both tables carry the same header and maps.
func (t *Table) Equal(o *Table) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.FormatVersion == o.FormatVersion &&
		t.Version == o.Version &&
		t.PointerSize == o.PointerSize &&
		string(t.ModuleNameRaw) == string(o.ModuleNameRaw) &&
		maps.Equal(t.forward, o.forward) &&
		maps.Equal(t.reverse, o.reverse)
}
