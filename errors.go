package bloomgo

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedOperation is returned for operations a filter variant
	// does not support: Remove on anything but the cuckoo filter, and
	// MergeInPlace on cuckoo and scalable filters.
	ErrUnsupportedOperation = errors.New("operation not supported by this filter variant")

	// ErrIncompatibleMerge is returned when merge operands differ in
	// variant, bit size or hash count, or when the operand is nil.
	ErrIncompatibleMerge = errors.New("incompatible merge")
)

// ErrInvalidArgument indicates an out-of-range build parameter.
type ErrInvalidArgument struct {
	Param  string
	Reason string
}

func (e *ErrInvalidArgument) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Param, e.Reason)
}

func invalidArgf(param, format string, args ...any) error {
	return &ErrInvalidArgument{Param: param, Reason: fmt.Sprintf(format, args...)}
}

func incompatibleMergef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompatibleMerge, fmt.Sprintf(format, args...))
}
