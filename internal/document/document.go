// Package document decodes data files into renderable objects. A document
// names its own type identity, so templates are looked up exactly as for Go
// types declared in the hierarchy.
package document

import (
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-renderchain/pkg/render"
)

// TypeField holds the identity in a data file.
const TypeField = "type"

// ErrMissingType is returned for data without a type.
var ErrMissingType = errors.New("document: type is required")

// Document is a renderable bag of fields with a declared type identity.
type Document struct {
	Type   string
	Fields map[string]any
}

var (
	_ render.TypeNamer    = (*Document)(nil)
	_ render.StateExposer = (*Document)(nil)
)

// New builds a document of the given type.
func New(typeName string, fields map[string]any) *Document {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Document{Type: strings.TrimSpace(typeName), Fields: fields}
}

func (d *Document) RenderTypeName() string { return d.Type }

// ExposeState exposes the fields as template variables.
func (d *Document) ExposeState() map[string]any {
	out := make(map[string]any, len(d.Fields))
	for key, value := range d.Fields {
		out[key] = value
	}
	return out
}

// Decode reads a YAML (or JSON) mapping. The type comes from typeName when
// set, else from the "type" key.
func Decode(r io.Reader, typeName string) (*Document, error) {
	fields := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&fields); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "document: decode")
	}

	if typeName == "" {
		if raw, ok := fields[TypeField].(string); ok {
			typeName = raw
		}
	}
	delete(fields, TypeField)
	if strings.TrimSpace(typeName) == "" {
		return nil, ErrMissingType
	}
	return New(typeName, fields), nil
}

// Load decodes the file at path. An empty path yields an empty document of
// typeName.
func Load(path, typeName string) (*Document, error) {
	if path == "" {
		if strings.TrimSpace(typeName) == "" {
			return nil, ErrMissingType
		}
		return New(typeName, nil), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "document: open %s", path)
	}
	defer f.Close()
	return Decode(f, typeName)
}
