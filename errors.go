package pixglyph

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes the errors a pixglyph component can raise.
type ErrorKind int

const (
	// ErrInvalidConfig is raised when a ConverterConfig (or an option
	// derived from one) fails validation, e.g. contrast = 259, an empty
	// charset, or a non-positive width.
	ErrInvalidConfig ErrorKind = iota
	// ErrSourceOpen is raised when a FrameSource cannot interpret its
	// input bytes as a supported image or video container.
	ErrSourceOpen
	// ErrDecode is raised on a mid-stream decode failure.
	ErrDecode
	// ErrQuantize is raised when a pixel buffer is too small to form even
	// one full NeuQuant training sample.
	ErrQuantize
	// ErrEncode is raised when an underlying encoder rejects a frame or
	// produces invalid output.
	ErrEncode
	// ErrInvalidState is raised when an EncoderHost lifecycle is
	// violated (add after finalize, double finalize, and so on).
	ErrInvalidState
	// ErrCancelled is raised when a cooperative cancellation is observed.
	// It is a non-error termination as far as callers are concerned: it
	// is never retried.
	ErrCancelled
	// ErrTimeout is raised when a configured wait (FrameSource open or
	// probe) is exceeded.
	ErrTimeout
)

// String returns a lowercase, log-friendly name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidConfig:
		return "invalid_config"
	case ErrSourceOpen:
		return "source_open"
	case ErrDecode:
		return "decode"
	case ErrQuantize:
		return "quantize"
	case ErrEncode:
		return "encode"
	case ErrInvalidState:
		return "invalid_state"
	case ErrCancelled:
		return "cancelled"
	case ErrTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error is the error type surfaced by every pixglyph component. It carries a
// machine-checkable Kind (see spec §7's error taxonomy) alongside the
// originating component name and a human-readable summary, following the
// same "pkg: summary: cause" shape the teacher's sentinel errors used, but
// generalized so callers can errors.As for the Kind instead of comparing
// against a specific sentinel value.
type Error struct {
	Kind      ErrorKind
	Component string
	Summary   string
	Err       error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Component, e.Summary, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Component, e.Summary)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError constructs a *Error. component is the originating package/type
// (e.g. "pixglyph", "neuquant", "gif", "pipeline"); summary is a short
// human-readable description; cause may be nil.
func NewError(kind ErrorKind, component, summary string, cause error) *Error {
	return &Error{Kind: kind, Component: component, Summary: summary, Err: cause}
}

// IsCancelled reports whether err is (or wraps) a pixglyph cancellation.
func IsCancelled(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == ErrCancelled
	}
	return false
}
