package templates

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNameRequired     = errors.New("templates: name is required")
	ErrCodeNameRequired = errors.New("templates: code name is required")
	ErrCodeNameInvalid  = errors.New("templates: code name contains invalid characters")
	ErrCodeNameTaken    = errors.New("templates: code name already used in template")
	ErrCodeNameReserved = errors.New("templates: code name collides with a page accessor")
	ErrTemplateExists   = errors.New("templates: template code name already exists")
	ErrFieldTypeUnknown = errors.New("templates: unknown field type")
	ErrTemplateNotFound = errors.New("templates: template not found")
	ErrFieldNotFound    = errors.New("templates: field not found")
)

// requestError maps a field-keyed validation result onto the package's
// sentinel errors.
func requestError(err error) error {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		return err
	}
	switch {
	case fields["name"] != nil:
		return ErrNameRequired
	case fields["code_name"] != nil:
		return ErrCodeNameRequired
	case fields["type_tag"] != nil:
		return ErrFieldTypeUnknown
	case fields["template_id"] != nil:
		return &TemplateNotFoundError{}
	}
	return err
}

// TemplateNotFoundError captures template lookup misses.
type TemplateNotFoundError struct {
	Key string
}

func (e *TemplateNotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Key) == "" {
		return ErrTemplateNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrTemplateNotFound.Error(), e.Key)
}

func (e *TemplateNotFoundError) Unwrap() error {
	return ErrTemplateNotFound
}

// FieldNotFoundError captures field lookup misses.
type FieldNotFoundError struct {
	Key string
}

func (e *FieldNotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Key) == "" {
		return ErrFieldNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrFieldNotFound.Error(), e.Key)
}

func (e *FieldNotFoundError) Unwrap() error {
	return ErrFieldNotFound
}

// ReservedNameError reports which accessor a proposed code name collides with,
// including collisions through its singular or plural form.
type ReservedNameError struct {
	CodeName string
	Collides string
}

func (e *ReservedNameError) Error() string {
	if e == nil {
		return ErrCodeNameReserved.Error()
	}
	if e.Collides != "" && e.Collides != e.CodeName {
		return fmt.Sprintf("%s: %s (via %s)", ErrCodeNameReserved.Error(), e.CodeName, e.Collides)
	}
	return fmt.Sprintf("%s: %s", ErrCodeNameReserved.Error(), e.CodeName)
}

func (e *ReservedNameError) Unwrap() error {
	return ErrCodeNameReserved
}
