package poker

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Class is the error taxonomy: a small closed set of error classes that
// determines propagation policy at the Table Mutator boundary.
type Class int

const (
	// ClassValidation is a malformed request: invalid card, invalid
	// barcode, non-positive amount. Never mutates state.
	ClassValidation Class = iota
	// ClassForbidden is a caller lacking authority for the command.
	ClassForbidden
	// ClassPrecondition is a correct caller, wrong state: NotYourTurn,
	// WrongState, CardAlreadyDealt, InvalidRaise, InsufficientChips, etc.
	ClassPrecondition
	// ClassConflict is optimistic-concurrency / lock contention, retried
	// internally by the Table Mutator before surfacing as Busy.
	ClassConflict
	// ClassFatal is storage corruption or an invariant violation found at
	// load time. The transaction aborts and the table stays readable; the
	// Table Mutator does not block later commands against the table.
	ClassFatal
)

func (c Class) grpcCode() codes.Code {
	switch c {
	case ClassValidation:
		return codes.InvalidArgument
	case ClassForbidden:
		return codes.PermissionDenied
	case ClassPrecondition:
		return codes.FailedPrecondition
	case ClassConflict:
		return codes.Aborted
	case ClassFatal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Error is the engine's error representation. Kind is a stable,
// machine-readable label (NotYourTurn, WrongState, CardAlreadyDealt, ...)
// that callers can switch on; Class determines how the Table Mutator
// propagates it.
type Error struct {
	Class Class
	Kind  string
	msg   string
}

func (e *Error) Error() string {
	if e.msg == "" {
		return e.Kind
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// GRPCStatus lets google.golang.org/grpc/status.FromError recover the
// coded status for any transport placed in front of the engine, without
// the engine itself depending on a transport.
func (e *Error) GRPCStatus() *status.Status {
	return status.New(e.Class.grpcCode(), e.Error())
}

func newErr(class Class, kind, format string, args ...interface{}) *Error {
	return &Error{Class: class, Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Sentinel validation errors used with errors.Is/errors.As.
var (
	ErrInvalidCard    = &Error{Class: ClassValidation, Kind: "InvalidCard"}
	ErrInvalidBarcode = &Error{Class: ClassValidation, Kind: "InvalidBarcode"}
	ErrInvalidInput   = &Error{Class: ClassValidation, Kind: "InvalidInput"}
)

// As reports whether err (or something it wraps) is an *Error, and if so
// returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// ValidationError, ForbiddenError, PreconditionError, ConflictError and
// FatalError let callers outside this package (the Table Mutator, the
// Command Router) raise errors in the same taxonomy the engine itself
// uses, without reaching into unexported constructors.
func ValidationError(kind, format string, args ...interface{}) *Error {
	return validationErr(kind, format, args...)
}

func ForbiddenError(format string, args ...interface{}) *Error {
	return forbiddenErr(format, args...)
}

func PreconditionError(kind, format string, args ...interface{}) *Error {
	return preconditionErr(kind, format, args...)
}

func ConflictError(format string, args ...interface{}) *Error {
	return conflictErr(format, args...)
}

func FatalError(format string, args ...interface{}) *Error {
	return fatalErr(format, args...)
}

func validationErr(kind, format string, args ...interface{}) *Error {
	return newErr(ClassValidation, kind, format, args...)
}

func forbiddenErr(format string, args ...interface{}) *Error {
	return newErr(ClassForbidden, "Forbidden", format, args...)
}

func preconditionErr(kind, format string, args ...interface{}) *Error {
	return newErr(ClassPrecondition, kind, format, args...)
}

func conflictErr(format string, args ...interface{}) *Error {
	return newErr(ClassConflict, "Busy", format, args...)
}

func fatalErr(format string, args ...interface{}) *Error {
	return newErr(ClassFatal, "Fatal", format, args...)
}
