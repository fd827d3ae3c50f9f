// Package versionlib reads versioned address tables that map stable
// identifiers to module-relative offsets.
//
// A table file (versionlib-<a>-<b>-<c>-<d>.bin) describes one build of a
// target executable. Its records are delta-compressed, so a file is decoded
// sequentially into a pair of hash maps supporting lookups in both directions.
//
// # Package Layout
//
//	versionlib/
//	├── table/       Binary format: Decode, Encode, Load and the Table type
//	├── resolver/    Version string to table, memoized per process
//	├── version/     Version quads: Parse, Pack, Unpack, FileName
//	├── wasmhost/    wazero host module exposing lookups to guests
//	├── errors/      Structured error types
//	└── cmd/         versionlib command line tool
//
// # Quick Start
//
//	r := resolver.New(&resolver.Config{Dir: "Data/SKSE/Plugins"})
//
//	t, err := r.Resolve("1.6.323.0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	off, err := resolver.Lookup(t, 14720)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%#x\n", off) // 0x1a1c00
//
// # Errors
//
// Every failure is an *errors.Error carrying a Phase and Kind. Match them with
// the standard library:
//
//	if errors.Is(err, verrors.ErrNotFound) {
//	    // no table shipped for this version
//	}
//
// # Thread Safety
//
// A decoded Table is immutable and safe for concurrent reads. Resolver loads
// each version at most once, even when many goroutines ask for it at the same
// time. Failed loads are not cached and are retried on the next call.
package versionlib
