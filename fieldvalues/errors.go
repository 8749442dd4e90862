package fieldvalues

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-sitetree/domain"
	"github.com/google/uuid"
)

var (
	ErrTypeMismatch     = errors.New("fieldvalues: value incompatible with field type")
	ErrStoreUnavailable = errors.New("fieldvalues: no store registered for field type")
)

// TypeMismatchError reports a value that could not be coerced to the field's
// declared type.
type TypeMismatchError struct {
	FieldID uuid.UUID
	Type    domain.FieldType
	Value   any
}

func (e *TypeMismatchError) Error() string {
	if e == nil {
		return ErrTypeMismatch.Error()
	}
	return fmt.Sprintf("%s: %T is not a %s", ErrTypeMismatch.Error(), e.Value, e.Type)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

// StoreUnavailableError reports a field type with no registered store variant.
type StoreUnavailableError struct {
	Type domain.FieldType
}

func (e *StoreUnavailableError) Error() string {
	if e == nil {
		return ErrStoreUnavailable.Error()
	}
	return fmt.Sprintf("%s: %s", ErrStoreUnavailable.Error(), e.Type)
}

func (e *StoreUnavailableError) Unwrap() error {
	return ErrStoreUnavailable
}
