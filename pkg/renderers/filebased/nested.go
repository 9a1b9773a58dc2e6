package filebased

import (
	"bytes"
	"context"
	"html/template"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-renderchain/pkg/facade"
)

// renderHelper is the name templates use to render a nested object through
// the installed facade renderer, e.g. {{ render(this.Author, "card") }}.
const renderHelper = "render"

func renderNested(object any, variant []string) (string, error) {
	v := ""
	if len(variant) > 0 {
		v = variant[0]
	}
	var buf bytes.Buffer
	if err := facade.Render(context.Background(), &buf, object, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// structuredRender marks the nested output safe so pongo2 does not escape it
// a second time.
func structuredRender(object any, variant ...string) (*pongo2.Value, error) {
	out, err := renderNested(object, variant)
	if err != nil {
		return nil, err
	}
	return pongo2.AsSafeValue(out), nil
}

func codeRender(object any, variant ...string) (template.HTML, error) {
	out, err := renderNested(object, variant)
	if err != nil {
		return "", err
	}
	return template.HTML(out), nil
}
