// Package htmltemplate executes code templates with html/template. The
// variable bag is the dot of the template, so {{.this.Title}} reaches the
// rendered object.
package htmltemplate

import (
	"html/template"
	"io"
	"io/fs"
	"sync"

	"github.com/cockroachdb/errors"

	rendertemplate "github.com/goliatone/go-renderchain/pkg/render/template"
)

// Executor parses files from an fs.FS on first use and memoizes them.
type Executor struct {
	mu     sync.RWMutex
	files  fs.FS
	funcs  template.FuncMap
	parsed map[string]*template.Template
}

// Ensure Executor implements the CodeExecutor interface.
var _ rendertemplate.CodeExecutor = (*Executor)(nil)

// Option configures an Executor.
type Option func(*Executor)

// WithFuncs makes helper functions available to every template.
func WithFuncs(funcs template.FuncMap) Option {
	return func(e *Executor) {
		for name, fn := range funcs {
			e.funcs[name] = fn
		}
	}
}

// New builds an executor reading from files.
func New(files fs.FS, opts ...Option) (*Executor, error) {
	if files == nil {
		return nil, errors.New("htmltemplate: fs is required")
	}
	e := &Executor{
		files:  files,
		funcs:  template.FuncMap{},
		parsed: make(map[string]*template.Template),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e, nil
}

// Execute runs the template stored at name with bindings as its data.
func (e *Executor) Execute(name string, bindings map[string]any, out io.Writer) error {
	tmpl, err := e.lookup(name)
	if err != nil {
		return err
	}
	if err := tmpl.Execute(out, bindings); err != nil {
		return errors.Wrapf(err, "htmltemplate: execute %q", name)
	}
	return nil
}

// Reset drops parsed templates.
func (e *Executor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parsed = make(map[string]*template.Template)
}

func (e *Executor) lookup(name string) (*template.Template, error) {
	e.mu.RLock()
	tmpl, ok := e.parsed[name]
	e.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if tmpl, ok := e.parsed[name]; ok {
		return tmpl, nil
	}

	content, err := fs.ReadFile(e.files, name)
	if err != nil {
		return nil, errors.Wrapf(err, "htmltemplate: read %q", name)
	}
	tmpl, err = template.New(name).Funcs(e.funcs).Parse(string(content))
	if err != nil {
		return nil, errors.Wrapf(err, "htmltemplate: parse %q", name)
	}
	e.parsed[name] = tmpl
	return tmpl, nil
}
