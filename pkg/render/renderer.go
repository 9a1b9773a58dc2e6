package render

import (
	"context"
	"io"
)

// Renderer writes the HTML representation of an object. The variant narrows
// which flavour of template is used ("" selects the default one).
type Renderer interface {
	Render(ctx context.Context, w io.Writer, object any, variant string) error
}

// Chainable renderers take part in chain resolution: the chain asks each of
// them, in tier order, whether they know how to render an object before
// delegating the actual rendering to the first positive one.
type Chainable interface {
	Renderer
	// CanRender reports whether the renderer handles the object for the
	// given variant. See Verdict for the meaning of each answer.
	CanRender(ctx context.Context, object any, variant string) Verdict
	// DebugCanRender walks the same steps as CanRender without trusting any
	// cached decision and returns a human readable account of what was tried.
	DebugCanRender(ctx context.Context, object any, variant string) string
}

// Descriptor is implemented by chainable renderers that can place themselves
// in a tier. It is only consulted during discovery.
type Descriptor interface {
	Tier() Tier
	Priority() int
}

// Container resolves renderer handles by name.
type Container interface {
	Get(name string) (any, error)
}

// StateExposer lets an object provide the variables its templates see. When
// absent, exported struct fields are used.
type StateExposer interface {
	ExposeState() map[string]any
}

// TypeNamer lets an object choose its own type identity, bypassing reflection.
// Dynamic documents (decoded YAML, JSON payloads) rely on it.
type TypeNamer interface {
	RenderTypeName() string
}

// ThisKey is the reserved variable under which templates find the rendered
// object itself.
const ThisKey = "this"
