// Package errors provides structured error types for the fsbridge module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the subject (handle kind, registry, export name),
// the offending value and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAlloc, errors.KindDoubleFree).
//		Subject("fatfs.FIL").
//		Value(addr).
//		Detail("block already released").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotWired(errors.PhaseMount, "littlefs.Config")
//	err := errors.NotFound(errors.PhaseDispatch, "context", "7")
//
// Engine result codes (fatfs.DiskResult, fatfs.Result, littlefs.Error) are
// not wrapped in this type: they are forwarded verbatim and implement error
// themselves. This package covers wiring, registry and allocator paths only.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
