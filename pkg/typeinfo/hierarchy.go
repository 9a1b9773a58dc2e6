package typeinfo

import (
	"iter"
	"reflect"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnnamedType is returned when a sample has no named type to register.
	ErrUnnamedType = errors.New("typeinfo: type has no name")
	// ErrNotInterface is returned when Implements is given a non interface type.
	ErrNotInterface = errors.New("typeinfo: not an interface type")
	// ErrEmptyName is returned when an explicit name is blank.
	ErrEmptyName = errors.New("typeinfo: empty name provided")
	// ErrConflictingRegistration indicates an attempt to rename a type.
	ErrConflictingRegistration = errors.New("typeinfo: conflicting type registration")
)

// maxDepth bounds ancestor walks; declared chains longer than this are cut.
const maxDepth = 64

// ExtendsTag marks an embedded struct field as the parent of its container:
//
//	type Article struct {
//		Entry `render:"extends"`
//	}
const ExtendsTag = "extends"

type ifaceRef struct {
	name string
	t    reflect.Type
}

type node struct {
	parent     string
	parentType reflect.Type
	interfaces []ifaceRef
}

// Hierarchy is the type metadata registry consulted when walking from an
// object to the template candidates for its type. Go has no class
// inheritance, so ancestors and interfaces are declared up front; capability
// interfaces registered with RegisterInterface are also detected at runtime.
type Hierarchy struct {
	mu           sync.RWMutex
	names        map[reflect.Type]string
	owners       map[string]reflect.Type
	nodes        map[string]node
	capabilities []ifaceRef
}

// New returns an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{
		names:  make(map[reflect.Type]string),
		owners: make(map[string]reflect.Type),
		nodes:  make(map[string]node),
	}
}

var defaultHierarchy = New()

// Default returns the process-wide hierarchy used by renderers that were not
// given one explicitly.
func Default() *Hierarchy {
	return defaultHierarchy
}

type declaration struct {
	name       string
	parent     string
	parentType reflect.Type
	interfaces []ifaceRef
	err        error
}

// Option configures a type declaration.
type Option func(*declaration)

// Named overrides the identity derived from the Go type.
func Named(name string) Option {
	return func(d *declaration) {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			d.err = ErrEmptyName
			return
		}
		d.name = trimmed
	}
}

// Extends declares the type of sample as the parent.
func Extends(sample any) Option {
	return func(d *declaration) {
		t := normalize(typeOf(sample))
		if t == nil {
			d.err = errors.Wrap(ErrUnnamedType, "typeinfo: extends")
			return
		}
		d.parentType = t
	}
}

// ExtendsName declares a parent by identity.
func ExtendsName(name string) Option {
	return func(d *declaration) {
		d.parent = strings.TrimSpace(name)
	}
}

// Implements declares that the type implements interface I. Declared
// interfaces are tried in declaration order.
func Implements[I any]() Option {
	return func(d *declaration) {
		t := reflect.TypeFor[I]()
		if t.Kind() != reflect.Interface {
			d.err = errors.Wrapf(ErrNotInterface, "typeinfo: implements %s", t)
			return
		}
		d.interfaces = append(d.interfaces, ifaceRef{t: t})
	}
}

// ImplementsName declares an interface by identity.
func ImplementsName(name string) Option {
	return func(d *declaration) {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			d.interfaces = append(d.interfaces, ifaceRef{name: trimmed})
		}
	}
}

// Register declares the type of sample and returns its identity. Two Go types
// cannot claim the same identity: a type whose derived name is taken by a type
// from another package must be registered with Named.
func (h *Hierarchy) Register(sample any, opts ...Option) (string, error) {
	t := normalize(typeOf(sample))
	if t == nil {
		return "", ErrUnnamedType
	}
	d, err := buildDeclaration(opts)
	if err != nil {
		return "", err
	}
	if d.parent == "" && d.parentType == nil {
		d.parentType = embeddedParent(t)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	identity := derivedName(t)
	if existing, ok := h.names[t]; ok {
		if d.name != "" && d.name != existing {
			return "", errors.Wrapf(ErrConflictingRegistration, "typeinfo: %s already registered as %q", t, existing)
		}
		identity = existing
	} else if d.name != "" {
		identity = d.name
	}
	if owner, ok := h.owners[identity]; ok && owner != t {
		return "", errors.Wrapf(ErrConflictingRegistration, "typeinfo: %s and %s both claim %q", owner, t, identity)
	}
	if d.name != "" {
		h.names[t] = identity
	}
	h.owners[identity] = t

	h.nodes[identity] = node{
		parent:     d.parent,
		parentType: d.parentType,
		interfaces: d.interfaces,
	}
	return identity, nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (h *Hierarchy) MustRegister(sample any, opts ...Option) string {
	identity, err := h.Register(sample, opts...)
	if err != nil {
		panic(err)
	}
	return identity
}

// DeclareName declares a type known only by identity, such as a dynamic
// document implementing render.TypeNamer. Named is ignored.
func (h *Hierarchy) DeclareName(name string, opts ...Option) error {
	identity := strings.TrimSpace(name)
	if identity == "" {
		return ErrEmptyName
	}
	d, err := buildDeclaration(opts)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes[identity] = node{
		parent:     d.parent,
		parentType: d.parentType,
		interfaces: d.interfaces,
	}
	return nil
}

// RegisterInterface makes I a runtime detected capability: every object whose
// type implements I gets I among its interface candidates, after the
// declared ones. An optional name overrides the derived identity.
func RegisterInterface[I any](h *Hierarchy, name ...string) error {
	t := reflect.TypeFor[I]()
	if t.Kind() != reflect.Interface {
		return errors.Wrapf(ErrNotInterface, "typeinfo: register %s", t)
	}
	ref := ifaceRef{t: t}
	if len(name) > 0 {
		if trimmed := strings.TrimSpace(name[0]); trimmed != "" {
			ref.name = trimmed
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ref.name != "" {
		if existing, ok := h.names[t]; ok && existing != ref.name {
			return errors.Wrapf(ErrConflictingRegistration, "typeinfo: %s already registered as %q", t, existing)
		}
		h.names[t] = ref.name
	}
	for _, existing := range h.capabilities {
		if existing.t == t {
			return nil
		}
	}
	h.capabilities = append(h.capabilities, ref)
	return nil
}

// Candidates yields the identities to try for object: the type itself, its
// ancestors nearest first, then its interfaces. Consumers stop iterating at
// the first hit, so interfaces are only resolved when no ancestor matched.
func (h *Hierarchy) Candidates(object any) iter.Seq[string] {
	return func(yield func(string) bool) {
		identity := h.Identity(object)
		if identity == "" {
			return
		}
		if !yield(identity) {
			return
		}

		lineage := []string{identity}
		for _, parent := range h.Ancestors(identity) {
			if !yield(parent) {
				return
			}
			lineage = append(lineage, parent)
		}

		emitted := make(map[string]struct{})
		emit := func(name string) bool {
			if name == "" {
				return true
			}
			if _, ok := emitted[name]; ok {
				return true
			}
			emitted[name] = struct{}{}
			return yield(name)
		}

		for _, name := range lineage {
			for _, iface := range h.interfacesOf(name) {
				if !emit(iface) {
					return
				}
			}
		}

		for _, iface := range h.detectedInterfaces(typeOf(object)) {
			if !emit(iface) {
				return
			}
		}
	}
}

// Ancestors returns the declared ancestors of identity, nearest first.
func (h *Hierarchy) Ancestors(identity string) []string {
	var out []string
	visited := map[string]struct{}{identity: {}}
	current := identity
	for depth := 0; depth < maxDepth; depth++ {
		parent, ok := h.parentOf(current)
		if !ok {
			break
		}
		if _, seen := visited[parent]; seen {
			break
		}
		visited[parent] = struct{}{}
		out = append(out, parent)
		current = parent
	}
	return out
}

func (h *Hierarchy) parentOf(identity string) (string, bool) {
	h.mu.RLock()
	n, ok := h.nodes[identity]
	h.mu.RUnlock()
	if !ok {
		return "", false
	}
	if n.parent != "" {
		return n.parent, true
	}
	if n.parentType != nil {
		if name := h.identityOf(n.parentType); name != "" {
			return name, true
		}
	}
	return "", false
}

func (h *Hierarchy) interfacesOf(identity string) []string {
	h.mu.RLock()
	n, ok := h.nodes[identity]
	h.mu.RUnlock()
	if !ok || len(n.interfaces) == 0 {
		return nil
	}
	out := make([]string, 0, len(n.interfaces))
	for _, ref := range n.interfaces {
		out = append(out, h.refName(ref))
	}
	return out
}

func (h *Hierarchy) detectedInterfaces(t reflect.Type) []string {
	if t == nil {
		return nil
	}
	h.mu.RLock()
	capabilities := append([]ifaceRef(nil), h.capabilities...)
	h.mu.RUnlock()
	if len(capabilities) == 0 {
		return nil
	}

	base := normalize(t)
	var out []string
	for _, ref := range capabilities {
		if implements(t, base, ref.t) {
			out = append(out, h.refName(ref))
		}
	}
	return out
}

func (h *Hierarchy) refName(ref ifaceRef) string {
	if ref.name != "" {
		return ref.name
	}
	return h.identityOf(ref.t)
}

func implements(dynamic, base, iface reflect.Type) bool {
	if dynamic.Implements(iface) {
		return true
	}
	if base == nil {
		return false
	}
	return base.Implements(iface) || reflect.PointerTo(base).Implements(iface)
}

func buildDeclaration(opts []Option) (declaration, error) {
	var d declaration
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&d)
		if d.err != nil {
			return declaration{}, d.err
		}
	}
	return d, nil
}

// embeddedParent returns the type of the first embedded struct field tagged
// `render:"extends"`, if any.
func embeddedParent(t reflect.Type) reflect.Type {
	if t.Kind() != reflect.Struct {
		return nil
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous || field.Tag.Get("render") != ExtendsTag {
			continue
		}
		if parent := normalize(field.Type); parent != nil {
			return parent
		}
	}
	return nil
}
