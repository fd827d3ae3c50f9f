// Package resolver gives callers process-lifetime access to address tables
// keyed by target version.
//
// A Resolver is an explicit cache: whoever constructs it owns it and hands
// it to the code that needs lookups. The first Resolve for a version reads
// versionlib-<version with dots as dashes>.bin from the configured
// directory; every later call returns the same *table.Table without
// touching the filesystem. Concurrent first callers share a single load.
//
//	r := resolver.New(&resolver.Config{Dir: "versionlib/bin"})
//	t, err := r.Resolve("1.6.323.0")
//	if err != nil {
//	    return err
//	}
//	off, err := resolver.Lookup(t, 401203)
//
// Lookups never fall back to a default: a missing identifier or offset is
// an error of kind errors.KindUnknownIdentifier or errors.KindUnknownOffset.
package resolver
