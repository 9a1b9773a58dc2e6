package render

import "strings"

// Verdict is the answer a chainable renderer gives to CanRender.
type Verdict int

const (
	// CannotRender: the renderer does not handle this type at all.
	CannotRender Verdict = iota
	// CannotRenderObject: the renderer declines this object but could render
	// another instance of the same type.
	CannotRenderObject
	// CanRenderObject: the renderer handles this particular instance only.
	CanRenderObject
	// CanRenderClass: the renderer handles every instance of this type.
	CanRenderClass
)

// Positive reports whether the renderer accepted the object.
func (v Verdict) Positive() bool {
	return v == CanRenderClass || v == CanRenderObject
}

// ObjectSpecific reports whether the verdict depends on the instance rather
// than its type. Such verdicts must never be cached per type.
func (v Verdict) ObjectSpecific() bool {
	return v == CanRenderObject || v == CannotRenderObject
}

func (v Verdict) String() string {
	switch v {
	case CannotRender:
		return "cannot-render"
	case CannotRenderObject:
		return "cannot-render-object"
	case CanRenderObject:
		return "can-render-object"
	case CanRenderClass:
		return "can-render-class"
	default:
		return "unknown"
	}
}

// Tier groups renderers by precedence: every custom renderer is polled before
// the template renderer, which is polled before every package renderer.
type Tier string

const (
	TierCustom   Tier = "custom"
	TierTemplate Tier = "template"
	TierPackage  Tier = "package"
)

// ParseTier normalises a configured tier name. Unknown values fall back to
// the custom tier.
func ParseTier(raw string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case TierTemplate:
		return TierTemplate
	case TierPackage:
		return TierPackage
	default:
		return TierCustom
	}
}
