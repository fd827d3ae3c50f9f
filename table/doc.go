// Package table decodes and encodes delta-compressed address tables.
//
// An address table maps stable identifiers to the offsets they have in one
// particular build of a target executable. The file starts with a header:
//
//	format        u32     always 2
//	version       u32[4]  major, minor, patch, build
//	name_len      i32     0 <= name_len < 0x10000
//	name          [name_len]byte
//	pointer_size  u32
//	record_count  u32
//
// followed by record_count records. Each record is a control byte and up
// to two payloads. The low nibble of the control byte encodes the
// identifier, the high nibble the offset, both against the value of the
// previous record (initially zero):
//
//	0  u64 literal      4  prev + u16
//	1  prev + 1         5  prev - u16
//	2  prev + u8        6  u16 literal
//	3  prev - u8        7  u32 literal
//
// When bit 3 of the offset nibble is set the previous offset is first
// divided by pointer_size, the offset is decoded against that, and the
// result is multiplied by pointer_size.
//
// # Usage
//
//	t, err := table.Load("versionlib-1-6-323-0.bin")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	off, ok := t.Lookup(401203)
//
// Tables are immutable after decoding and may be shared between goroutines.
package table
