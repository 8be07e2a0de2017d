package dialect

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownDialect = errors.New("unknown dialect")
	ErrUnsupported    = errors.New("unsupported by dialect")
)

// CapabilityError reports a feature the resolved dialect cannot provide
type CapabilityError struct {
	Dialect string
	Feature string
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("dialect %s: %s is not supported", e.Dialect, e.Feature)
}

// Is matches ErrUnsupported
func (e *CapabilityError) Is(target error) bool {
	return target == ErrUnsupported
}

// Unsupported builds a CapabilityError for d
func Unsupported(d Dialect, feature string) error {
	return &CapabilityError{Dialect: d.Name, Feature: feature}
}
