// Package errors provides structured error types for the layout engine.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the member path that caused it, the C type involved,
// and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindInvalidAttribute).
//		Path("outer", "inner", "b").
//		CType("int").
//		Detail("aligned(%d) is not a power of two", 3).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.BitfieldTooWide(path, "int", 40, 32)
//	err := errors.TrailingMember(path, "data")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
