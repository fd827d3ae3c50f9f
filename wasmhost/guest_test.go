package wasmhost

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// guestModule assembles a core wasm module that imports the three host
// functions from hostModule and re-exports each one through a wrapper.
// Host modules cannot be called directly, so tests go through a guest.
func guestModule(hostModule string) []byte {
	const (
		valI32     = 0x7f
		valI64     = 0x7e
		funcType   = 0x60
		externFunc = 0x00
		opLocalGet = 0x20
		opCall     = 0x10
		opEnd      = 0x0b
	)

	types := vec(
		[]byte{funcType, 1, valI64, 2, valI64, valI32}, // (i64) -> (i64, i32)
		[]byte{funcType, 0, 1, valI32},                 // () -> i32
	)
	imports := vec(
		cat(name(hostModule), name(FuncLookup), []byte{externFunc, 0}),
		cat(name(hostModule), name(FuncReverseLookup), []byte{externFunc, 0}),
		cat(name(hostModule), name(FuncTargetVersion), []byte{externFunc, 1}),
	)
	// Functions 3..5 wrap imports 0..2.
	funcs := vec([]byte{0}, []byte{0}, []byte{1})
	exports := vec(
		cat(name(FuncLookup), []byte{externFunc, 3}),
		cat(name(FuncReverseLookup), []byte{externFunc, 4}),
		cat(name(FuncTargetVersion), []byte{externFunc, 5}),
	)
	code := vec(
		body(opLocalGet, 0, opCall, 0, opEnd),
		body(opLocalGet, 0, opCall, 1, opEnd),
		body(opCall, 2, opEnd),
	)

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = append(out, section(1, types)...)
	out = append(out, section(2, imports)...)
	out = append(out, section(3, funcs)...)
	out = append(out, section(7, exports)...)
	out = append(out, section(10, code)...)
	return out
}

func section(id byte, content []byte) []byte {
	out := binary.AppendUvarint([]byte{id}, uint64(len(content)))
	return append(out, content...)
}

func vec(items ...[]byte) []byte {
	out := binary.AppendUvarint(nil, uint64(len(items)))
	return cat(append([][]byte{out}, items...)...)
}

func name(s string) []byte {
	return append(binary.AppendUvarint(nil, uint64(len(s))), s...)
}

// body encodes a function body with no locals.
func body(instrs ...byte) []byte {
	content := append([]byte{0}, instrs...)
	return append(binary.AppendUvarint(nil, uint64(len(content))), content...)
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// instantiateGuest links a guest against the host module named hostModule.
func instantiateGuest(t *testing.T, ctx context.Context, rt wazero.Runtime, hostModule, guestName string) api.Module {
	t.Helper()
	guest, err := rt.InstantiateWithConfig(ctx, guestModule(hostModule),
		wazero.NewModuleConfig().WithName(guestName))
	if err != nil {
		t.Fatalf("instantiate guest: %v", err)
	}
	return guest
}
