// Package version handles target-binary version quads: parsing dotted
// version strings, packing them into the 32-bit form used for
// compatibility checks, and deriving address table file names.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/versionlib/errors"
)

// Quad is a (major, minor, patch, build) version descriptor.
type Quad [4]uint32

// String returns the dotted form, e.g. "1.6.323.0".
func (q Quad) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", q[0], q[1], q[2], q[3])
}

// Packed returns Pack(q).
func (q Quad) Packed() uint32 {
	return Pack(q)
}

// Pack encodes q as major:8 minor:8 patch:12 build:4, most significant
// first. Components wider than their field are truncated.
func Pack(q Quad) uint32 {
	return ((q[0] & 0xff) << 24) |
		((q[1] & 0xff) << 16) |
		((q[2] & 0xfff) << 4) |
		(q[3] & 0xf)
}

// Unpack is the inverse of Pack for quads whose components fit their fields.
func Unpack(packed uint32) Quad {
	return Quad{
		packed >> 24,
		(packed >> 16) & 0xff,
		(packed >> 4) & 0xfff,
		packed & 0xf,
	}
}

// Parse parses a dotted version string with one to four components.
// Missing trailing components are zero.
func Parse(s string) (Quad, error) {
	var q Quad
	s = strings.TrimSpace(s)
	if s == "" {
		return q, errors.InvalidInput(errors.PhaseParse, "empty version string")
	}

	parts := strings.Split(s, ".")
	if len(parts) > len(q) {
		return q, errors.InvalidInput(errors.PhaseParse,
			fmt.Sprintf("version %q has %d components, at most 4 allowed", s, len(parts)))
	}

	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Quad{}, errors.New(errors.PhaseParse, errors.KindInvalidInput).
				Field(fmt.Sprintf("version[%d]", i)).
				Value(p).
				Detail("invalid component %q in %q", p, s).
				Cause(err).
				Build()
		}
		q[i] = uint32(v)
	}
	return q, nil
}

// FileName derives the address table file name for a version string:
// dots become dashes and surrounding whitespace is dropped.
//
//	FileName("1.6.323.0") == "versionlib-1-6-323-0.bin"
func FileName(s string) string {
	return "versionlib-" + strings.TrimSpace(strings.ReplaceAll(s, ".", "-")) + ".bin"
}
