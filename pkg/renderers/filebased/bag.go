package filebased

import (
	"reflect"

	"github.com/goliatone/go-renderchain/pkg/render"
)

// Bag builds the variables a template sees for object. Objects implementing
// render.StateExposer choose their own variables; string keyed maps are used
// as they are; structs contribute their exported fields. The object itself
// is bound under render.ThisKey unless the variables already define it.
func Bag(object any) map[string]any {
	bag := state(object)
	if _, ok := bag[render.ThisKey]; !ok {
		bag[render.ThisKey] = object
	}
	return bag
}

func state(object any) map[string]any {
	switch v := object.(type) {
	case nil:
		return map[string]any{}
	case render.StateExposer:
		return copyMap(v.ExposeState())
	case map[string]any:
		return copyMap(v)
	}

	rv := reflect.ValueOf(object)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{}
	}

	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		out[field.Name] = rv.Field(i).Interface()
	}
	return out
}

func copyMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+1)
	for key, value := range in {
		out[key] = value
	}
	return out
}
