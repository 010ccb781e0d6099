package ighalo

import "fmt"

// Kind classifies why UpdateHalo failed, per the four error categories of
// the exchange orchestrator's error design: a caller misuse the core could
// have checked up front, a neighbour-classification inconsistency found
// mid-exchange, an allocation/pinning failure, or a transport failure.
type Kind int

const (
	// Precondition covers caller misuse caught before any transport is
	// attempted: a field with no halo on any dimension,
	// a duplicate field in the call, heterogeneous element types across
	// fields, or a disabled backend.
	Precondition Kind = iota
	// Structural covers an incoherent neighbour classification within a
	// single dimension (see classifyDim).
	Structural
	// Resource covers buffer allocation or host-memory pinning failures.
	Resource
	// Transport covers message send/receive failures at the Messenger
	// boundary.
	Transport
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case Precondition:
		return "precondition"
	case Structural:
		return "structural"
	case Resource:
		return "resource"
	case Transport:
		return "transport"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// HaloError is the single error type UpdateHalo returns. Every failure
// names its Kind and the offending field index or dimension so a caller
// can log or report it without re-deriving which input it came from.
// A Precondition error is returned before any field is touched. Structural,
// Resource and Transport errors can arise after earlier dimensions (or
// earlier sides of the failing dimension) have already been exchanged;
// those halo updates are not rolled back. The buffer pool may also have
// grown; growth is idempotent and is not rolled back either.
type HaloError struct {
	Kind  Kind
	Field int // offending field index in the UpdateHalo call, or -1
	Dim   int // offending dimension, or -1
	Msg   string
	Cause error
}

// Error implements the error interface.
func (e *HaloError) Error() string {
	switch {
	case e.Field >= 0 && e.Dim >= 0:
		return fmt.Sprintf("%s: field %d, dim %d: %s", e.Kind, e.Field, e.Dim, e.Msg)
	case e.Field >= 0:
		return fmt.Sprintf("%s: field %d: %s", e.Kind, e.Field, e.Msg)
	case e.Dim >= 0:
		return fmt.Sprintf("%s: dim %d: %s", e.Kind, e.Dim, e.Msg)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
	}
}

// Unwrap returns the underlying cause, if any.
func (e *HaloError) Unwrap() error {
	return e.Cause
}

func newPreconditionError(field int, format string, args ...any) *HaloError {
	return &HaloError{Kind: Precondition, Field: field, Dim: -1, Msg: fmt.Sprintf(format, args...)}
}

func newStructuralError(dim int, format string, args ...any) *HaloError {
	return &HaloError{Kind: Structural, Field: -1, Dim: dim, Msg: fmt.Sprintf(format, args...)}
}

func newResourceError(field int, cause error, format string, args ...any) *HaloError {
	return &HaloError{Kind: Resource, Field: field, Dim: -1, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

func newTransportError(dim int, cause error, format string, args ...any) *HaloError {
	return &HaloError{Kind: Transport, Field: -1, Dim: dim, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// IsHaloError reports whether err is a *HaloError, optionally narrowing to
// a specific Kind when want is not -1.
func IsHaloError(err error, want Kind) bool {
	he, ok := err.(*HaloError)
	if !ok {
		return false
	}
	return want == -1 || he.Kind == want
}
