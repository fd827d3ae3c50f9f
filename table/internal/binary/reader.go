package binary

import (
	"encoding/binary"
	"errors"
	"io"

	verrors "github.com/wippyai/versionlib/errors"
)

// Reader wraps an io.Reader with position tracking and fixed-width
// little-endian read methods.
type Reader struct {
	r   io.Reader
	buf [8]byte
	pos int
}

// NewReader creates a new Reader wrapping the given io.Reader.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, pos: 0}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// fill reads exactly n bytes into the scratch buffer. The position only
// advances on success so that a failed read reports where its field began.
func (r *Reader) fill(n int) ([]byte, error) {
	b := r.buf[:n]
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, err
	}
	r.pos += n
	return b, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (uint8, error) {
	b, err := r.fill(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	b, err := r.fill(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	b, err := r.fill(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadU64 reads a little-endian uint64.
func (r *Reader) ReadU64() (uint64, error) {
	b, err := r.fill(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBytes reads exactly n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(r.r, out); err != nil {
		return nil, err
	}
	r.pos += n
	return out, nil
}

// WrapError converts a failed read of field into a structured error.
// Running out of input is reported as truncation; anything else is an
// I/O failure of the underlying source.
func (r *Reader) WrapError(field string, need int, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return verrors.Truncated(field, r.pos, need, err)
	}
	return verrors.New(verrors.PhaseDecode, verrors.KindIO).
		Field(field).
		Detail("read failed at position %d", r.pos).
		Cause(err).
		Build()
}
