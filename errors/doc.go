// Package errors provides structured error types for versionlib.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the field being decoded, the table file, the offending
// value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindRange).
//		Field("name_len").
//		Value(int64(-1)).
//		Detail("negative length").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Truncated("record[3].offset", 41, 2, io.ErrUnexpectedEOF)
//	err := errors.UnknownIdentifier(401203)
//
// All errors implement the standard error interface and support errors.Is/As.
// The exported Err* values are match targets: errors.Is compares Phase and Kind only.
//
//	if errors.Is(err, verrors.ErrTruncated) { ... }
package errors
