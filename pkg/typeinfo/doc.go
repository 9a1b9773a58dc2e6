// Package typeinfo maps Go values to the type identities used to look up
// templates, and walks the declared hierarchy of a type: the type itself, its
// ancestors nearest first, then the interfaces it implements.
//
// Identities default to "<last package path element>.<TypeName>", so a
// value of type github.com/acme/shop/catalog.Product is known as
// "catalog.Product". When that short name already belongs to a registered
// type from another package, the full import path is used instead
// ("github.com/acme/shop/catalog.Product"), and registering the second type
// requires Named. Named overrides the default and render.TypeNamer lets a
// value pick its identity at runtime.
//
//	h := typeinfo.New()
//	h.MustRegister(catalog.Product{})
//	h.MustRegister(catalog.Bundle{}, typeinfo.Extends(catalog.Product{}))
//	_ = typeinfo.RegisterInterface[catalog.Priced](h)
//
//	for identity := range h.Candidates(&catalog.Bundle{}) {
//		// "catalog.Bundle", "catalog.Product", "catalog.Priced"
//	}
package typeinfo
