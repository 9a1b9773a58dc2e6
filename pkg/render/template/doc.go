// Package template defines the engine seams used by file based renderers:
// TemplateRenderer for structured templates and CodeExecutor for code
// templates. Adapters live in the gotemplate (pongo2) and htmltemplate
// (html/template) sub packages.
package template
