package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when an entity does not exist or is hidden
	// from the viewer. Callers cannot tell the two apart.
	ErrNotFound = errors.New("blogicum: not found")

	// ErrPermissionDenied is returned when an authenticated viewer tries to
	// change content they do not own.
	ErrPermissionDenied = errors.New("blogicum: permission denied")

	// ErrAuthRequired is returned when an anonymous viewer tries to change
	// anything.
	ErrAuthRequired = errors.New("blogicum: authentication required")

	// ErrBadCredentials is returned by Authenticate for an unknown user or a
	// wrong password.
	ErrBadCredentials = errors.New("blogicum: bad credentials")
)

// NotFoundError names what was looked up.
type NotFoundError struct {
	Label string
	ID    any
}

func (e *NotFoundError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("blogicum: %s not found (id=%v)", e.Label, e.ID)
	}
	return fmt.Sprintf("blogicum: %s not found", e.Label)
}

// Is makes errors.Is(err, ErrNotFound) hold.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{Label: label, ID: id}
}

// PermissionDeniedError carries the page the viewer is sent back to.
type PermissionDeniedError struct {
	Redirect string
}

func (e *PermissionDeniedError) Error() string {
	return "blogicum: permission denied"
}

func (e *PermissionDeniedError) Is(err error) bool {
	return err == ErrPermissionDenied
}

// ValidationError holds one message per rejected form field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "blogicum: invalid input: " + strings.Join(parts, "; ")
}

// fieldErrors collects messages and turns into a *ValidationError when
// anything was added.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}
