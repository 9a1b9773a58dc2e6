package typeinfo

import (
	"path"
	"reflect"
	"strings"

	"github.com/goliatone/go-renderchain/pkg/render"
)

// maxUnwrap bounds pointer unwrapping when normalising a type.
const maxUnwrap = 8

// normalize strips pointers until a named type is reached. Unnamed types
// (anonymous structs, maps, funcs) yield nil.
func normalize(t reflect.Type) reflect.Type {
	for i := 0; t != nil && i < maxUnwrap; i++ {
		if t.Kind() != reflect.Pointer {
			break
		}
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return nil
	}
	return t
}

// derivedName computes "<pkg>.<Type>" from the last element of the package
// path, dropping generic instantiation parameters.
func derivedName(t reflect.Type) string {
	name := typeName(t)
	if p := t.PkgPath(); p != "" {
		return path.Base(p) + "." + name
	}
	return name
}

// qualifiedName computes "<import path>.<Type>". It is used when the short
// name already belongs to a type from another package.
func qualifiedName(t reflect.Type) string {
	name := typeName(t)
	if p := t.PkgPath(); p != "" {
		return p + "." + name
	}
	return name
}

func typeName(t reflect.Type) string {
	name := t.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return name
}

func typeOf(object any) reflect.Type {
	if object == nil {
		return nil
	}
	if t, ok := object.(reflect.Type); ok {
		return t
	}
	return reflect.TypeOf(object)
}

// Identity returns the type identity of object, or "" when the object has no
// usable name.
func (h *Hierarchy) Identity(object any) string {
	if object == nil {
		return ""
	}
	if namer, ok := object.(render.TypeNamer); ok {
		return strings.TrimSpace(namer.RenderTypeName())
	}
	return h.identityOf(normalize(typeOf(object)))
}

func (h *Hierarchy) identityOf(t reflect.Type) string {
	if t == nil {
		return ""
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.identityLocked(t)
}

// identityLocked resolves t while h.mu is held. A derived name owned by
// another type falls back to the qualified name, so types sharing a package
// base name never share hierarchy nodes or cache entries.
func (h *Hierarchy) identityLocked(t reflect.Type) string {
	if name, ok := h.names[t]; ok {
		return name
	}
	name := derivedName(t)
	if owner, ok := h.owners[name]; ok && owner != t {
		return qualifiedName(t)
	}
	return name
}
