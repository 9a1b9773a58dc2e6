// Package facade holds the process wide renderer used by code that cannot
// receive one explicitly, such as objects rendering themselves.
package facade

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/goliatone/go-renderchain/pkg/render"
)

type slot struct {
	renderer render.Renderer
}

var current atomic.Pointer[slot]

// Init installs renderer, replacing any previous one. A nil renderer leaves
// the facade uninitialized.
func Init(renderer render.Renderer) {
	if renderer == nil {
		current.Store(nil)
		return
	}
	current.Store(&slot{renderer: renderer})
}

// Reset uninstalls the renderer. Tests call it between cases.
func Reset() {
	current.Store(nil)
}

// Current returns the installed renderer, if any.
func Current() (render.Renderer, bool) {
	s := current.Load()
	if s == nil {
		return nil, false
	}
	return s.renderer, true
}

// Render forwards to the installed renderer. It fails with
// render.ErrFacadeUninitialized when Init was never called.
func Render(ctx context.Context, w io.Writer, object any, variant string) error {
	renderer, ok := Current()
	if !ok {
		return render.ErrFacadeUninitialized
	}
	return renderer.Render(ctx, w, object, variant)
}

// MustRender is Render for template helpers that cannot return errors.
func MustRender(ctx context.Context, w io.Writer, object any, variant string) {
	if err := Render(ctx, w, object, variant); err != nil {
		panic(err)
	}
}
