package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/versionlib/resolver"
	"github.com/wippyai/versionlib/table"
	"github.com/wippyai/versionlib/version"
)

type options struct {
	dir         string
	version     string
	file        string
	id          string
	offset      string
	dump        bool
	interactive bool
	verbose     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	var o options
	fs := flag.NewFlagSet("versionlib", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.dir, "dir", ".", "Directory holding versionlib-*.bin tables")
	fs.StringVar(&o.version, "version", "", "Target version (e.g. 1.6.323.0)")
	fs.StringVar(&o.file, "file", "", "Path to a table file (instead of -dir/-version)")
	fs.StringVar(&o.id, "id", "", "Comma-separated identifiers to look up")
	fs.StringVar(&o.offset, "offset", "", "Comma-separated hex offsets to reverse look up")
	fs.BoolVar(&o.dump, "dump", false, "List every entry sorted by id")
	fs.BoolVar(&o.interactive, "i", false, "Interactive lookup console")
	fs.BoolVar(&o.verbose, "v", false, "Log table loading to stderr")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: versionlib -version <x.y.z.w> [-dir path] [-id n,...] [-offset hex,...] [-dump]")
		fmt.Fprintln(stderr, "       versionlib -file <table.bin> [-id n,...] [-offset hex,...] [-dump]")
		fmt.Fprintln(stderr, "       versionlib -version <x.y.z.w> -i  (interactive mode)")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.version == "" && o.file == "" {
		fs.Usage()
		return nil, fmt.Errorf("one of -version or -file is required")
	}
	return &o, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := zap.NewNop()
	if o.verbose {
		logger = newLogger(stderr)
		defer func() { _ = logger.Sync() }()
	}

	t, source, err := openTable(o, logger)
	if err != nil {
		return err
	}

	if o.interactive {
		if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return runInteractive(t, source)
		}
		return runScript(t, source, stdin, stdout)
	}

	printInfo(stdout, t, source)

	for _, s := range splitList(o.id) {
		line, err := execute(t, source, "id "+s)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, line)
	}
	for _, s := range splitList(o.offset) {
		line, err := execute(t, source, "off "+s)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, line)
	}

	if o.dump {
		fmt.Fprintln(stdout)
		for _, e := range t.Entries() {
			fmt.Fprintf(stdout, "%d\t%#x\n", e.ID, e.Offset)
		}
	}
	return nil
}

// newLogger returns a development-style console logger writing to w.
func newLogger(w io.Writer) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel))
}

func openTable(o *options, logger *zap.Logger) (*table.Table, string, error) {
	if o.file != "" {
		start := time.Now()
		t, err := table.Load(o.file)
		if err != nil {
			logger.Warn("failed to load address table",
				zap.String("path", o.file),
				zap.Error(err))
			return nil, "", err
		}
		logger.Debug("loaded address table",
			zap.String("path", o.file),
			zap.Stringer("table_version", t.Version),
			zap.Uint32("pointer_size", t.PointerSize),
			zap.Int("entries", t.Len()),
			zap.Duration("elapsed", time.Since(start)))
		return t, o.file, nil
	}
	r := resolver.New(&resolver.Config{Dir: o.dir, Logger: logger})
	t, err := r.Resolve(o.version)
	if err != nil {
		return nil, "", err
	}
	return t, r.Path(o.version), nil
}

func printInfo(w io.Writer, t *table.Table, source string) {
	name, err := t.ModuleName()
	if err != nil {
		name = fmt.Sprintf("%q (not UTF-8)", t.ModuleNameRaw)
	}
	fmt.Fprintf(w, "Table: %s\n", source)
	fmt.Fprintf(w, "Format: %d\n", t.FormatVersion)
	fmt.Fprintf(w, "Version: %s (packed %#08x)\n", t.Version, version.Pack(t.Version))
	fmt.Fprintf(w, "Module: %s\n", name)
	fmt.Fprintf(w, "Pointer size: %d\n", t.PointerSize)
	fmt.Fprintf(w, "Entries: %d\n", t.Len())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseOffset(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}
