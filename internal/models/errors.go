package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for broad classification. An *OpError matches the sentinel
// of its kind under errors.Is.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrIllegalState         = errors.New("illegal state")
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// ErrorKind is a coarse-grained categorization for domain errors.
type ErrorKind string

const (
	KindInvalidArgument      ErrorKind = "invalid_argument"
	KindIllegalState         ErrorKind = "illegal_state"
	KindUnsupportedOperation ErrorKind = "unsupported_operation"
)

// OpError reports a rejected domain operation. The aggregate it was called on
// is left unchanged.
type OpError struct {
	Op   string
	Kind ErrorKind
	Msg  string
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Msg)
}

// Is reports whether target is the sentinel for this error's kind.
func (e *OpError) Is(target error) bool {
	if e == nil {
		return false
	}
	switch target {
	case ErrInvalidArgument:
		return e.Kind == KindInvalidArgument
	case ErrIllegalState:
		return e.Kind == KindIllegalState
	case ErrUnsupportedOperation:
		return e.Kind == KindUnsupportedOperation
	}
	return false
}

// IsKind lets callers classify errors without matching on messages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

func invalidArg(op, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindInvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func illegalState(op, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindIllegalState, Msg: fmt.Sprintf(format, args...)}
}

func unsupported(op, format string, args ...any) error {
	return &OpError{Op: op, Kind: KindUnsupportedOperation, Msg: fmt.Sprintf(format, args...)}
}
