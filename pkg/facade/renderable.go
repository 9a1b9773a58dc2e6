package facade

import (
	"context"
	"io"
)

// Renderable is embedded by types that render themselves through the facade.
// It carries the variant used by ToHTML.
//
//	type Card struct {
//		facade.Renderable
//		Title string
//	}
//
//	card := &Card{Title: "Hello"}
//	card.SetVariant("compact")
//	err := card.ToHTML(ctx, w, card)
type Renderable struct {
	variant string
}

// SetVariant selects the variant used by ToHTML.
func (r *Renderable) SetVariant(variant string) {
	r.variant = variant
}

// Variant returns the selected variant.
func (r *Renderable) Variant() string {
	return r.variant
}

// ToHTML renders self, the value embedding r, with the facade renderer. Go
// has no way to reach the outer value from an embedded one, hence self.
func (r *Renderable) ToHTML(ctx context.Context, w io.Writer, self any) error {
	return Render(ctx, w, self, r.variant)
}
