// Package errors provides structured error types for the module host.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the location path (category, module, file) and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindInvalidPath).
//		Path("Gates", "and.wasm").
//		Detail("module path has no category").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Compile(cause)
//	err := errors.NotFound(errors.PhaseInstantiate, "category", "Gates")
//
// All errors implement the standard error interface and support errors.Is/As.
// Is matches on Phase and Kind only, so a bare &Error{Phase, Kind} works as a target.
package errors
