package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"

	verrors "github.com/wippyai/versionlib/errors"
)

func TestReaderReadU8(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(bytes.NewReader(data))

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadU8()
		if err != nil {
			t.Fatalf("ReadU8 %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadU8 %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Position() != 3 {
		t.Errorf("final position: got %d, want 3", r.Position())
	}

	_, err := r.ReadU8()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderFixedWidth(t *testing.T) {
	data := []byte{
		0x34, 0x12, // u16
		0x78, 0x56, 0x34, 0x12, // u32
		0xff, 0xff, 0xff, 0xff, // i32 -1
		0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01, // u64
	}
	r := NewReader(bytes.NewReader(data))

	u16, err := r.ReadU16()
	if err != nil || u16 != 0x1234 {
		t.Fatalf("ReadU16: got 0x%x, %v", u16, err)
	}
	u32, err := r.ReadU32()
	if err != nil || u32 != 0x12345678 {
		t.Fatalf("ReadU32: got 0x%x, %v", u32, err)
	}
	i32, err := r.ReadI32()
	if err != nil || i32 != -1 {
		t.Fatalf("ReadI32: got %d, %v", i32, err)
	}
	u64, err := r.ReadU64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("ReadU64: got 0x%x, %v", u64, err)
	}
	if r.Position() != len(data) {
		t.Errorf("position: got %d, want %d", r.Position(), len(data))
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))

	_, err := r.ReadU32()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("position after failed read: got %d, want 0", r.Position())
	}
}

func TestReaderReadBytes(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(bytes.NewReader(data))

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}

	if r.Position() != 3 {
		t.Errorf("position: got %d, want 3", r.Position())
	}

	_, err = r.ReadBytes(10)
	if err == nil {
		t.Error("expected error for reading past EOF")
	}
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReaderWrapError(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	_, err := r.ReadU32()
	wrapped := r.WrapError("format", 4, err)
	if !errors.Is(wrapped, verrors.ErrTruncated) {
		t.Errorf("EOF should wrap as truncated, got %v", wrapped)
	}

	ioErr := errors.New("disk on fire")
	r = NewReader(failingReader{err: ioErr})
	_, err = r.ReadU8()
	wrapped = r.WrapError("record[0].type", 1, err)
	var verr *verrors.Error
	if !errors.As(wrapped, &verr) || verr.Phase != verrors.PhaseDecode || verr.Kind != verrors.KindIO {
		t.Errorf("I/O failure should wrap as a decode io error, got %v", wrapped)
	}
	if errors.Is(wrapped, verrors.ErrOpen) {
		t.Error("I/O failure of a reader is not an open error")
	}
	if !errors.Is(wrapped, ioErr) {
		t.Error("wrapped error should keep its cause")
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter()
	w.WriteU8(0xab)
	w.WriteU16(0xbeef)
	w.WriteU32(0xdeadbeef)
	w.WriteI32(-5)
	w.WriteU64(0x0123456789abcdef)
	w.WriteBytes([]byte("SkyrimSE.exe"))

	if w.Len() != 1+2+4+4+8+12 {
		t.Fatalf("Len: got %d", w.Len())
	}

	r := NewReader(bytes.NewReader(w.Bytes()))
	if v, _ := r.ReadU8(); v != 0xab {
		t.Errorf("u8: got 0x%x", v)
	}
	if v, _ := r.ReadU16(); v != 0xbeef {
		t.Errorf("u16: got 0x%x", v)
	}
	if v, _ := r.ReadU32(); v != 0xdeadbeef {
		t.Errorf("u32: got 0x%x", v)
	}
	if v, _ := r.ReadI32(); v != -5 {
		t.Errorf("i32: got %d", v)
	}
	if v, _ := r.ReadU64(); v != 0x0123456789abcdef {
		t.Errorf("u64: got 0x%x", v)
	}
	if v, _ := r.ReadBytes(12); string(v) != "SkyrimSE.exe" {
		t.Errorf("bytes: got %q", v)
	}
}
