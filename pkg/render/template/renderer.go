package template

import (
	"io"
)

// TemplateRenderer is the structured template engine seam. Names are paths
// relative to the engine's template root.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}

// CodeExecutor runs code templates: files that are executable themselves and
// see the bindings as their local scope.
type CodeExecutor interface {
	Execute(name string, bindings map[string]any, out io.Writer) error
}
