// Package wasmhost exposes an address table to WebAssembly guests as a
// wazero host module.
//
// The module (named "versionlib" unless overridden) exports:
//
//	lookup(id i64) -> (offset i64, found i32)
//	reverse_lookup(offset i64) -> (id i64, found i32)
//	target_version() -> i32
//
// found is 1 on a hit and 0 on a miss, in which case the first result is 0.
// target_version returns the packed version quad of the table.
package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/table"
	"github.com/wippyai/versionlib/version"
)

// DefaultModuleName is the import module guests use.
const DefaultModuleName = "versionlib"

// Exported function names.
const (
	FuncLookup        = "lookup"
	FuncReverseLookup = "reverse_lookup"
	FuncTargetVersion = "target_version"
)

// Option configures the host module.
type Option func(*options)

type options struct {
	moduleName string
}

// WithModuleName overrides the module name the functions are exported under.
func WithModuleName(name string) Option {
	return func(o *options) {
		o.moduleName = name
	}
}

var (
	i32 = api.ValueTypeI32
	i64 = api.ValueTypeI64
)

// Instantiate registers the host module for t in r. The table is read-only,
// so the module may be shared by any number of guest instances.
func Instantiate(ctx context.Context, r wazero.Runtime, t *table.Table, opts ...Option) (api.Module, error) {
	if t == nil {
		return nil, errors.InvalidInput(errors.PhaseHost, "nil address table")
	}

	o := options{moduleName: DefaultModuleName}
	for _, opt := range opts {
		opt(&o)
	}

	packed := version.Pack(t.Version)

	lookup := api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		id := stack[0]
		off, ok := t.Lookup(id)
		if !ok {
			Logger().Debug("guest lookup miss",
				zap.String("module", mod.Name()),
				zap.Uint64("id", id))
		}
		stack[0], stack[1] = off, found(ok)
	})

	reverseLookup := api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		off := stack[0]
		id, ok := t.ReverseLookup(off)
		if !ok {
			Logger().Debug("guest reverse lookup miss",
				zap.String("module", mod.Name()),
				zap.Uint64("offset", off))
		}
		stack[0], stack[1] = id, found(ok)
	})

	targetVersion := api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		stack[0] = api.EncodeU32(packed)
	})

	builder := r.NewHostModuleBuilder(o.moduleName)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(lookup, []api.ValueType{i64}, []api.ValueType{i64, i32}).
		WithParameterNames("id").
		WithResultNames("offset", "found").
		Export(FuncLookup)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(reverseLookup, []api.ValueType{i64}, []api.ValueType{i64, i32}).
		WithParameterNames("offset").
		WithResultNames("id", "found").
		Export(FuncReverseLookup)
	builder.NewFunctionBuilder().
		WithGoModuleFunction(targetVersion, nil, []api.ValueType{i32}).
		WithResultNames("packed").
		Export(FuncTargetVersion)

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		return nil, errors.Registration(o.moduleName, "*", err)
	}

	Logger().Debug("registered address table host module",
		zap.String("module", o.moduleName),
		zap.Stringer("version", t.Version),
		zap.Int("entries", t.Len()))
	return mod, nil
}

func found(ok bool) uint64 {
	if ok {
		return 1
	}
	return 0
}
