package rhi

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// ErrorKind classifies every error reported by the RHI.
type ErrorKind uint8

const (
	// KindUnknown is reported for errors that did not originate in the RHI.
	KindUnknown ErrorKind = iota
	// KindInvalidArgument marks a malformed create info or call argument.
	KindInvalidArgument
	// KindInvalidState marks API misuse: wrong map mode, pass nesting
	// violations, submitting a command buffer that is not executable.
	KindInvalidState
	// KindInvalidRange marks a view or map range outside the resource.
	KindInvalidRange
	// KindResourceExhausted marks a fixed-capacity pool running dry
	// (scratch descriptors, swap chain images).
	KindResourceExhausted
	// KindUnsupportedFeature marks a capability the adapter or backend lacks.
	KindUnsupportedFeature
	// KindBackendError marks a failed native call.
	KindBackendError
)

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInvalidState:
		return "InvalidState"
	case KindInvalidRange:
		return "InvalidRange"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindUnsupportedFeature:
		return "UnsupportedFeature"
	case KindBackendError:
		return "BackendError"
	default:
		return "Unknown"
	}
}

// Kind sentinels. Match them with errors.Is:
//
//	if errors.Is(err, rhi.ErrInvalidState) { ... }
var (
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrInvalidState       = &Error{Kind: KindInvalidState}
	ErrInvalidRange       = &Error{Kind: KindInvalidRange}
	ErrResourceExhausted  = &Error{Kind: KindResourceExhausted}
	ErrUnsupportedFeature = &Error{Kind: KindUnsupportedFeature}
	ErrBackendError       = &Error{Kind: KindBackendError}
)

// Error is the concrete error type returned by every RHI operation.
type Error struct {
	// Kind is the taxonomy class.
	Kind ErrorKind

	// Op names the failing operation, e.g. "CreateBuffer".
	Op string

	// Msg describes the failure.
	Msg string

	// Code is the native result code for BackendError when one is known
	// (a VkResult for Vulkan, an HRESULT for DirectX 12). Zero otherwise.
	Code int64

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	s := "rhi: "
	if e.Op != "" {
		s += e.Op + ": "
	}
	s += e.Kind.String()
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Code != 0 {
		s += fmt.Sprintf(" (native code %d)", e.Code)
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the kind sentinel of e.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Msg == "" && t.Err == nil && t.Code == 0 && t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// NewError builds an *Error with a formatted message.
func NewError(kind ErrorKind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// InvalidArgument returns a KindInvalidArgument error for op.
func InvalidArgument(op, format string, args ...any) error {
	return NewError(KindInvalidArgument, op, format, args...)
}

// InvalidState returns a KindInvalidState error for op.
func InvalidState(op, format string, args ...any) error {
	return NewError(KindInvalidState, op, format, args...)
}

// InvalidRange returns a KindInvalidRange error for op.
func InvalidRange(op, format string, args ...any) error {
	return NewError(KindInvalidRange, op, format, args...)
}

// ResourceExhausted returns a KindResourceExhausted error for op.
func ResourceExhausted(op, format string, args ...any) error {
	return NewError(KindResourceExhausted, op, format, args...)
}

// Unsupported returns a KindUnsupportedFeature error for op.
func Unsupported(op, format string, args ...any) error {
	return NewError(KindUnsupportedFeature, op, format, args...)
}

// BackendFailure wraps a native failure as KindBackendError.
// Errors that are already *Error pass through unchanged.
func BackendFailure(op string, code int64, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: KindBackendError, Op: op, Code: code, Err: err}
}

// IsDeviceLost reports whether err carries a lost-device condition from
// the execution layer.
func IsDeviceLost(err error) bool {
	return errors.Is(err, hal.ErrDeviceLost)
}
