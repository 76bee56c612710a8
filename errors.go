package fudge

import (
	"fmt"
)

// An IOFailure wraps an error returned by the underlying transport. The
// original error is reachable with errors.Unwrap / errors.As.
type IOFailure struct {
	Op  string
	Err error
}

// Error returns string representation of current instance error.
func (e *IOFailure) Error() string {
	return fmt.Sprintf("fudge: %s: %s", e.Op, e.Err)
}

// Unwrap returns the wrapped transport error.
func (e *IOFailure) Unwrap() error {
	return e.Err
}

// A Truncated error is raised when a stream ends mid-field or mid-envelope.
// The reader transitions to a terminal state after returning this error;
// the current message cannot be recovered.
type Truncated struct {
	Op     string
	Wanted int
	Got    int
	Offset int64
}

// Error returns string representation of current instance error.
func (e *Truncated) Error() string {
	return fmt.Sprintf("fudge: truncated stream at offset %d: %s wanted %d bytes, got %d",
		e.Offset, e.Op, e.Wanted, e.Got)
}

// A FramingViolation error is raised when length fields disagree, an
// ordinal is out of range, or a name length would overlap the payload.
// Fatal for the current message.
type FramingViolation struct {
	Reason string
	Offset int64
}

// Error returns string representation of current instance error.
func (e *FramingViolation) Error() string {
	return fmt.Sprintf("fudge: framing violation at offset %d: %s", e.Offset, e.Reason)
}

// An UnknownType error describes a wire type id that is not registered in
// the dictionary. The reader never returns it: it recovers by keeping the
// field's payload as opaque bytes under the field's own wire type id, with
// Field.Unknown set, rather than aborting the message. Field.UnknownTypeError
// builds one on demand so callers inspecting a field's provenance can tell
// an opaque field apart from a registered one.
type UnknownType struct {
	TypeID byte
}

// Error returns string representation of current instance error.
func (e *UnknownType) Error() string {
	return fmt.Sprintf("fudge: unknown wire type id %d", e.TypeID)
}

// A TypeMismatch error is raised on encode when the caller supplies a value
// whose native Go type cannot be resolved to any registered wire type.
type TypeMismatch struct {
	Value interface{}
}

// Error returns string representation of current instance error.
func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("fudge: no wire type registered for %T", e.Value)
}

// A CapacityExceeded error is raised when a message would grow beyond the
// 32767-field short-count ceiling, or when an ordinal value overflows the
// signed 16-bit range.
type CapacityExceeded struct {
	Reason string
}

// Error returns string representation of current instance error.
func (e *CapacityExceeded) Error() string {
	return fmt.Sprintf("fudge: capacity exceeded: %s", e.Reason)
}
