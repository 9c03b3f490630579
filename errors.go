package duckbridge

import (
	"errors"
	"fmt"
)

// Kind classifies the failures this layer can produce. Engine failures carry
// the engine's message verbatim; everything else is detected on the Go side
// before native memory is touched.
type Kind int

const (
	// KindAllocation reports a failed buffer allocation.
	KindAllocation Kind = iota + 1

	// KindInvalidHandle reports use of a nil or closed handle.
	KindInvalidHandle

	// KindIndexOutOfRange reports a column or row index outside the
	// bounds of the result, chunk, or vector it was used against.
	KindIndexOutOfRange

	// KindUnsupportedType reports a column whose logical type is outside
	// the supported streaming set.
	KindUnsupportedType

	// KindEngine wraps an error message produced by the engine itself.
	KindEngine
)

func (k Kind) String() string {
	switch k {
	case KindAllocation:
		return "allocation"
	case KindInvalidHandle:
		return "invalid handle"
	case KindIndexOutOfRange:
		return "index out of range"
	case KindUnsupportedType:
		return "unsupported column type"
	case KindEngine:
		return "engine"
	default:
		return "unknown"
	}
}

// Error is the concrete error type returned by every fallible operation in
// this package. There is no shared last-error slot: each call reports its own
// failure, and handle-scoped engine messages (prepare, append) are attached
// to the returned error directly.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// IsKind reports whether err (or anything it wraps) is a duckbridge error of
// the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func errAllocation(what string) error {
	return &Error{Kind: KindAllocation, Message: "failed to allocate " + what}
}

func errInvalidHandle(what string) error {
	return &Error{Kind: KindInvalidHandle, Message: what + " is nil or closed"}
}

func errIndexOutOfRange(what string, index, limit int) error {
	return &Error{
		Kind:    KindIndexOutOfRange,
		Message: fmt.Sprintf("%s index %d out of range [0, %d)", what, index, limit),
	}
}

func errUnsupportedType(column string, index int, t TypeID) error {
	return &Error{
		Kind:    KindUnsupportedType,
		Message: fmt.Sprintf("column %q (index %d) has unsupported type %s", column, index, t),
	}
}

// engineError surfaces an engine message verbatim. The fallback is used when
// the engine reports failure without a message.
func engineError(message, fallback string) error {
	if message == "" {
		message = fallback
	}
	return &Error{Kind: KindEngine, Message: message}
}
