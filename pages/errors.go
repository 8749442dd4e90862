package pages

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var (
	ErrNameRequired   = errors.New("pages: name is required")
	ErrNoTemplate     = errors.New("pages: no template available")
	ErrPageNotFound   = errors.New("pages: page not found")
	ErrParentNotFound = errors.New("pages: parent page not found")
	ErrParentCycle    = errors.New("pages: parent assignment creates hierarchy cycle")
	ErrPathNotFound   = errors.New("pages: no page matches path")
	ErrPageRequired   = errors.New("pages: page id required")
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
	case fields["id"] != nil, fields["page_id"] != nil:
		return ErrPageRequired
	}
	return err
}

// PageNotFoundError captures page lookup misses.
type PageNotFoundError struct {
	Key string
}

func (e *PageNotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Key) == "" {
		return ErrPageNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPageNotFound.Error(), e.Key)
}

func (e *PageNotFoundError) Unwrap() error {
	return ErrPageNotFound
}

// PathNotFoundError captures path resolution misses.
type PathNotFoundError struct {
	Path string
}

func (e *PathNotFoundError) Error() string {
	if e == nil || strings.TrimSpace(e.Path) == "" {
		return ErrPathNotFound.Error()
	}
	return fmt.Sprintf("%s: %s", ErrPathNotFound.Error(), e.Path)
}

func (e *PathNotFoundError) Unwrap() error {
	return ErrPathNotFound
}
