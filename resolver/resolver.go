package resolver

import (
	goerrors "errors"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/wippyai/versionlib/errors"
	"github.com/wippyai/versionlib/table"
	"github.com/wippyai/versionlib/version"
)

// Config holds configuration for resolver creation
type Config struct {
	// Fs is the filesystem tables are read from.
	// nil means the OS filesystem.
	Fs afero.Fs

	// Logger overrides the package logger for this resolver.
	Logger *zap.Logger

	// Dir is the directory holding versionlib-*.bin files.
	// Empty means the working directory.
	Dir string
}

// Resolver memoizes one decoded table per target version. Each entry is
// loaded at most once, on first request, and is never evicted.
// A Resolver is safe for concurrent use.
type Resolver struct {
	fs     afero.Fs
	logger *zap.Logger
	tables map[string]*table.Table
	group  singleflight.Group
	dir    string
	mu     sync.RWMutex
}

// New creates a resolver. A nil cfg uses the defaults of Config.
func New(cfg *Config) *Resolver {
	r := &Resolver{
		fs:     afero.NewOsFs(),
		logger: Logger(),
		tables: make(map[string]*table.Table),
	}
	if cfg != nil {
		if cfg.Fs != nil {
			r.fs = cfg.Fs
		}
		if cfg.Logger != nil {
			r.logger = cfg.Logger
		}
		r.dir = cfg.Dir
	}
	return r
}

// Path returns the file a version string resolves to.
func (r *Resolver) Path(targetVersion string) string {
	return filepath.Join(r.dir, version.FileName(targetVersion))
}

// Resolve returns the table for targetVersion, loading it on first use.
// Loader errors are returned unchanged; a missing file is reported as
// errors.KindNotFound. Failed loads are not cached. Versions containing a
// path separator are rejected so lookups stay inside the configured Dir.
func (r *Resolver) Resolve(targetVersion string) (*table.Table, error) {
	if strings.ContainsAny(targetVersion, `/\`) {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Value(targetVersion).
			Detail("version %q contains a path separator", targetVersion).
			Build()
	}
	path := r.Path(targetVersion)
	if t, ok := r.cached(path); ok {
		return t, nil
	}

	v, err, _ := r.group.Do(path, func() (any, error) {
		// A flight that finished between the check above and Do has
		// already installed the table.
		if t, ok := r.cached(path); ok {
			return t, nil
		}

		t, err := r.load(targetVersion, path)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.tables[path] = t
		r.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*table.Table), nil
}

// Cached returns the table for targetVersion if it has been loaded.
func (r *Resolver) Cached(targetVersion string) (*table.Table, bool) {
	return r.cached(r.Path(targetVersion))
}

func (r *Resolver) cached(path string) (*table.Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[path]
	return t, ok
}

func (r *Resolver) load(targetVersion, path string) (*table.Table, error) {
	start := time.Now()

	t, err := table.LoadFs(r.fs, path)
	if err != nil {
		if goerrors.Is(err, fs.ErrNotExist) {
			nf := errors.NotFound(targetVersion, path)
			nf.Cause = err
			err = nf
		}
		r.logger.Warn("failed to load address table",
			zap.String("version", targetVersion),
			zap.String("path", path),
			zap.Error(err))
		return nil, err
	}

	r.logger.Debug("loaded address table",
		zap.String("version", targetVersion),
		zap.String("path", path),
		zap.Stringer("table_version", t.Version),
		zap.Uint32("pointer_size", t.PointerSize),
		zap.Int("entries", t.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return t, nil
}

// Lookup returns the offset of id in t.
func Lookup(t *table.Table, id uint64) (uint64, error) {
	off, ok := t.Lookup(id)
	if !ok {
		return 0, errors.UnknownIdentifier(id)
	}
	return off, nil
}

// ReverseLookup returns the identifier whose offset is offset in t.
func ReverseLookup(t *table.Table, offset uint64) (uint64, error) {
	id, ok := t.ReverseLookup(offset)
	if !ok {
		return 0, errors.UnknownOffset(offset)
	}
	return id, nil
}

// PackVersion returns the packed form of t's version quad.
func PackVersion(t *table.Table) uint32 {
	return version.Pack(t.Version)
}
