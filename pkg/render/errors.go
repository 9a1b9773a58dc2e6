package render

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrNoTemplateFound is wrapped by NoTemplateFoundError.
	ErrNoTemplateFound = errors.New("render: no template found")
	// ErrNoRendererFound is wrapped by NoRendererFoundError.
	ErrNoRendererFound = errors.New("render: no renderer found")
	// ErrFacadeUninitialized is returned when the facade is used before a
	// renderer was installed.
	ErrFacadeUninitialized = errors.New("render: facade not initialized")
)

// NoTemplateFoundError is returned by a single directory renderer that walked
// the whole hierarchy of the object without finding a template file.
type NoTemplateFoundError struct {
	Type string
}

func (e *NoTemplateFoundError) Error() string {
	return fmt.Sprintf("render: cannot render object of type '%s'. No template found.", e.Type)
}

func (e *NoTemplateFoundError) Unwrap() error { return ErrNoTemplateFound }

// NoRendererFoundError is returned by a chain when no renderer in any tier
// accepted the object. Trace holds the lookup log of every polled renderer.
type NoRendererFoundError struct {
	Type  string
	Trace string
}

func (e *NoRendererFoundError) Error() string {
	return fmt.Sprintf("render: renderer not found. Unable to find renderer for object of type '%s'. Path tested: %s", e.Type, e.Trace)
}

func (e *NoRendererFoundError) Unwrap() error { return ErrNoRendererFound }
