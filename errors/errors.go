package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseAlloc    Phase = "alloc"    // opaque handle allocation
	PhaseWire     Phase = "wire"     // callback slot installation
	PhaseMount    Phase = "mount"    // handing a configuration to an engine
	PhaseDispatch Phase = "dispatch" // context/driver resolution
	PhaseHost     Phase = "host"     // wasm host module registration
	PhaseDevice   Phase = "device"   // block device access
)

// Kind categorizes the error
type Kind string

const (
	KindAllocation    Kind = "allocation"
	KindDoubleFree    Kind = "double_free"
	KindNotWired      Kind = "not_wired"
	KindNotFound      Kind = "not_found"
	KindInvalidInput  Kind = "invalid_input"
	KindOutOfBounds   Kind = "out_of_bounds"
	KindRegistration  Kind = "registration"
	KindInstantiation Kind = "instantiation"
	KindUnsupported   Kind = "unsupported"
	KindClosed        Kind = "closed"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Subject string
	Detail  string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Subject != "" {
		b.WriteString(" on ")
		b.WriteString(e.Subject)
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

// Subject sets the thing the error is about
func (b *Builder) Subject(s string) *Builder {
	b.err.Subject = s
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

// AllocationFailed creates an allocation failure error
func AllocationFailed(subject string, size int) *Error {
	return &Error{
		Phase:   PhaseAlloc,
		Kind:    KindAllocation,
		Subject: subject,
		Detail:  fmt.Sprintf("failed to allocate %d bytes", size),
		Value:   size,
	}
}

// DoubleFree creates an error for releasing a block that is not live
func DoubleFree(subject string, addr uintptr) *Error {
	return &Error{
		Phase:   PhaseAlloc,
		Kind:    KindDoubleFree,
		Subject: subject,
		Detail:  fmt.Sprintf("block %#x is not live", addr),
		Value:   addr,
	}
}

// NotWired creates an error for a configuration whose callback slots are not installed
func NotWired(phase Phase, subject string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindNotWired,
		Subject: subject,
		Detail:  "callback slots not installed",
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
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

// OutOfBounds creates an out of bounds error
func OutOfBounds(phase Phase, subject string, offset, length, limit uint64) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindOutOfBounds,
		Subject: subject,
		Detail:  fmt.Sprintf("range [%d, %d) exceeds %d", offset, offset+length, limit),
		Value:   offset,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// Closed creates an error for operations on a closed registry or arena
func Closed(phase Phase, subject string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindClosed,
		Subject: subject,
	}
}

// Registration creates a registration error
func Registration(module, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s#%s", module, name),
		Cause:  cause,
	}
}

// Instantiation creates an instantiation error
func Instantiation(module string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindInstantiation,
		Detail: fmt.Sprintf("instantiate module %q", module),
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
