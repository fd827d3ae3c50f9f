package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLoad    Phase = "load"    // opening and reading a table file
	PhaseDecode  Phase = "decode"  // table bytes to Go
	PhaseEncode  Phase = "encode"  // Go to table bytes
	PhaseResolve Phase = "resolve" // version string to table
	PhaseLookup  Phase = "lookup"  // id/offset queries
	PhaseParse   Phase = "parse"   // version string parsing
	PhaseHost    Phase = "host"    // wasm host module registration
)

// Kind categorizes the error
type Kind string

const (
	KindOpen              Kind = "open"
	KindTruncated         Kind = "truncated"
	KindFormat            Kind = "format"
	KindRange             Kind = "range"
	KindNotFound          Kind = "not_found"
	KindUnknownIdentifier Kind = "unknown_identifier"
	KindUnknownOffset     Kind = "unknown_offset"
	KindInvalidUTF8       Kind = "invalid_utf8"
	KindInvalidData       Kind = "invalid_data"
	KindInvalidInput      Kind = "invalid_input"
	KindIO                Kind = "io"
	KindRegistration      Kind = "registration"
)

// Match targets for errors.Is. Only Phase and Kind are compared.
var (
	ErrOpen              = &Error{Phase: PhaseLoad, Kind: KindOpen}
	ErrTruncated         = &Error{Phase: PhaseDecode, Kind: KindTruncated}
	ErrFormat            = &Error{Phase: PhaseDecode, Kind: KindFormat}
	ErrRange             = &Error{Phase: PhaseDecode, Kind: KindRange}
	ErrNotFound          = &Error{Phase: PhaseResolve, Kind: KindNotFound}
	ErrUnknownIdentifier = &Error{Phase: PhaseLookup, Kind: KindUnknownIdentifier}
	ErrUnknownOffset     = &Error{Phase: PhaseLookup, Kind: KindUnknownOffset}
)

// Error is the structured error type used throughout versionlib
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Field  string
	File   string
	Detail string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at ")
		b.WriteString(e.Field)
	}

	if e.File != "" {
		b.WriteString(" in ")
		b.WriteString(e.File)
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Field sets the name of the field being processed
func (b *Builder) Field(name string) *Builder {
	b.err.Field = name
	return b
}

// File sets the path of the table file
func (b *Builder) File(path string) *Builder {
	b.err.File = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Open creates an error for a table file that could not be opened or read
func Open(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindOpen,
		File:   path,
		Detail: "could not open the file",
		Cause:  cause,
	}
}

// Truncated creates an error for a field that ran past the end of input
func Truncated(field string, position, need int, cause error) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindTruncated,
		Field:  field,
		Detail: fmt.Sprintf("need %d byte(s) at position %d", need, position),
		Value:  position,
		Cause:  cause,
	}
}

// Format creates an unsupported format tag error
func Format(format, want uint32) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindFormat,
		Field:  "format",
		Detail: fmt.Sprintf("unexpected format %d (want %d)", format, want),
		Value:  format,
	}
}

// Range creates an error for a header length outside its allowed range
func Range(field string, value int64, lo, hi int64) *Error {
	return &Error{
		Phase:  PhaseDecode,
		Kind:   KindRange,
		Field:  field,
		Detail: fmt.Sprintf("value %d outside [%d, %d)", value, lo, hi),
		Value:  value,
	}
}

// NotFound creates a missing table error
func NotFound(version, path string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		File:   path,
		Detail: fmt.Sprintf("no address table for version %q", version),
		Value:  version,
	}
}

// UnknownIdentifier creates a forward lookup miss error
func UnknownIdentifier(id uint64) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindUnknownIdentifier,
		Detail: fmt.Sprintf("identifier %d is not in the table", id),
		Value:  id,
	}
}

// UnknownOffset creates a reverse lookup miss error
func UnknownOffset(offset uint64) *Error {
	return &Error{
		Phase:  PhaseLookup,
		Kind:   KindUnknownOffset,
		Detail: fmt.Sprintf("offset %#x is not in the table", offset),
		Value:  offset,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, field string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Field:  field,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, field string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Field:  field,
		Detail: detail,
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a host function registration error
func Registration(module, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s.%s", module, name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
