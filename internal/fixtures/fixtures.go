// Package fixtures holds the sample types and template directories shared by
// renderer tests.
package fixtures

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-renderchain/pkg/typeinfo"
)

//go:embed templates templateTemplates
var files embed.FS

// Directory labels used in lookup traces.
const (
	TemplatesDir         = "tests/templates"
	TemplateTemplatesDir = "tests/templateTemplates"
	CustomTemplatesDir   = "tests/customTemplates"
)

// Foo has a template in the package directory and an overriding one in the
// template directory.
type Foo struct{}

// ExtendedFoo has no template of its own and falls back to Foo's.
type ExtendedFoo struct {
	Foo `render:"extends"`
}

// MyInterface is rendered by a code template.
type MyInterface interface {
	Bar() string
}

// MyImplementation has no class level template and falls back to the one
// registered for MyInterface.
type MyImplementation struct{}

func (MyImplementation) Bar() string { return "bar" }

// Unknown has no template anywhere.
type Unknown struct{}

// Hierarchy returns a fresh hierarchy with the fixture types declared.
func Hierarchy() *typeinfo.Hierarchy {
	h := typeinfo.New()
	h.MustRegister(Foo{})
	h.MustRegister(ExtendedFoo{})
	h.MustRegister(MyImplementation{}, typeinfo.Implements[MyInterface]())
	return h
}

// Templates is the package level template directory.
func Templates() fs.FS { return sub("templates") }

// TemplateTemplates is the template tier directory.
func TemplateTemplates() fs.FS { return sub("templateTemplates") }

// CustomTemplates is an empty custom tier directory.
func CustomTemplates() fs.FS { return sub("customTemplates") }

func sub(dir string) fs.FS {
	out, err := fs.Sub(files, dir)
	if err != nil {
		panic(err)
	}
	return out
}
