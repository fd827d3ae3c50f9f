package wasmhost

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	verrors "github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/table"
	"github.com/wippyai/versionlib/version"
)

func fixtureTable(t *testing.T) *table.Table {
	t.Helper()
	var buf bytes.Buffer
	h := table.Header{Version: version.Quad{1, 6, 323, 0}, ModuleName: []byte("SkyrimSE.exe"), PointerSize: 8}
	entries := []table.Entry{
		{ID: 401203, Offset: 0x2f9a800},
		{ID: 14720, Offset: 0x1a1c00},
		{ID: 195890, Offset: 0x1699720},
	}
	if err := table.Encode(&buf, h, entries); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	tbl, err := table.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return tbl
}

func TestHostModuleCalls(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Instantiate(ctx, rt, fixtureTable(t))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if mod.Name() != DefaultModuleName {
		t.Errorf("module name = %q, want %q", mod.Name(), DefaultModuleName)
	}

	guest := instantiateGuest(t, ctx, rt, DefaultModuleName, "guest")

	tests := []struct {
		name string
		fn   string
		args []uint64
		want []uint64
	}{
		{"lookup hit", FuncLookup, []uint64{401203}, []uint64{0x2f9a800, 1}},
		{"lookup miss", FuncLookup, []uint64{1}, []uint64{0, 0}},
		{"reverse hit", FuncReverseLookup, []uint64{0x1a1c00}, []uint64{14720, 1}},
		{"reverse miss", FuncReverseLookup, []uint64{0x10}, []uint64{0, 0}},
		{"target version", FuncTargetVersion, nil, []uint64{0x01061430}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := guest.ExportedFunction(tt.fn)
			if fn == nil {
				t.Fatalf("function %q not exported", tt.fn)
			}
			got, err := fn.Call(ctx, tt.args...)
			if err != nil {
				t.Fatalf("Call: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("results = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("result[%d] = %#x, want %#x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestHostModuleLogsMisses(t *testing.T) {
	prev := Logger()
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	if _, err := Instantiate(ctx, rt, fixtureTable(t)); err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	guest := instantiateGuest(t, ctx, rt, DefaultModuleName, "plugin")

	if _, err := guest.ExportedFunction(FuncLookup).Call(ctx, 401203); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if n := logs.FilterMessage("guest lookup miss").Len(); n != 0 {
		t.Errorf("hit logged %d misses", n)
	}

	if _, err := guest.ExportedFunction(FuncLookup).Call(ctx, 7); err != nil {
		t.Fatalf("Call: %v", err)
	}
	misses := logs.FilterMessage("guest lookup miss").All()
	if len(misses) != 1 {
		t.Fatalf("got %d miss logs, want 1", len(misses))
	}
	fields := misses[0].ContextMap()
	if fields["module"] != "plugin" || fields["id"] != uint64(7) {
		t.Errorf("fields = %v", fields)
	}

	if _, err := guest.ExportedFunction(FuncReverseLookup).Call(ctx, 0x10); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if n := logs.FilterMessage("guest reverse lookup miss").Len(); n != 1 {
		t.Errorf("got %d reverse miss logs, want 1", n)
	}
}

func TestHostModuleName(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	mod, err := Instantiate(ctx, rt, fixtureTable(t), WithModuleName("addrlib"))
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	if mod.Name() != "addrlib" {
		t.Errorf("module name = %q, want addrlib", mod.Name())
	}
	if rt.Module(DefaultModuleName) != nil {
		t.Error("default module name should not be registered")
	}

	guest := instantiateGuest(t, ctx, rt, "addrlib", "guest")
	got, err := guest.ExportedFunction(FuncTargetVersion).Call(ctx)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(got) != 1 || got[0] != 0x01061430 {
		t.Errorf("target_version = %v, want [0x1061430]", got)
	}
}

func TestHostModuleDuplicate(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	tbl := fixtureTable(t)
	if _, err := Instantiate(ctx, rt, tbl); err != nil {
		t.Fatalf("first Instantiate: %v", err)
	}
	_, err := Instantiate(ctx, rt, tbl)
	var verr *verrors.Error
	if !errors.As(err, &verr) || verr.Kind != verrors.KindRegistration {
		t.Fatalf("err = %v, want registration error", err)
	}
}

func TestHostModuleNilTable(t *testing.T) {
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	defer rt.Close(ctx)

	_, err := Instantiate(ctx, rt, nil)
	var verr *verrors.Error
	if !errors.As(err, &verr) || verr.Kind != verrors.KindInvalidInput {
		t.Fatalf("err = %v, want invalid input", err)
	}
}
