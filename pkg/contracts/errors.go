package contracts

import (
	"errors"
	"fmt"
)

// Sentinel errors of the generators.
var (
	// ErrMissingParameter is matched by MissingParameterError.
	ErrMissingParameter = errors.New("missing parameter")
	// ErrAddressConflict is returned when two accounts of an allocation
	// share an address.
	ErrAddressConflict = errors.New("allocation address conflict")
)

// MissingParameterError names a required input that was not supplied.
type MissingParameterError struct {
	Name string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing parameter %q", e.Name)
}

func (e *MissingParameterError) Unwrap() error {
	return ErrMissingParameter
}
