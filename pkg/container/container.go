// Package container provides the small service container renderers are
// wired through: named, lazily built and memoized services.
package container

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-renderchain/pkg/render"
)

var (
	// ErrNotFound is returned for names nothing was registered under.
	ErrNotFound = errors.New("container: service not found")
	// ErrCycle is returned when a factory asks, directly or not, for the
	// service it is building.
	ErrCycle = errors.New("container: dependency cycle")
)

// Factory builds a service. It may resolve other services through c, which
// remembers what is being built so cycles fail instead of recursing.
type Factory func(c *Container) (any, error)

type entry struct {
	// build serialises concurrent first builds of the same service.
	build    sync.Mutex
	factory  Factory
	instance any
	built    bool
}

type registry struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string
}

// Container stores services by name. Factories run on first Get and their
// result is reused afterwards; a failed build is retried on the next Get.
// Concurrent first Gets of one service wait for a single build.
type Container struct {
	reg *registry
	// resolving holds the services being built by this call chain.
	resolving []string
}

// Ensure Container satisfies the lookup contract renderers depend on.
var _ render.Container = (*Container)(nil)

// New creates an empty container.
func New() *Container {
	return &Container{reg: &registry{entries: make(map[string]*entry)}}
}

// Set registers or replaces the factory for name. Replacing drops any
// instance built by the previous factory.
func (c *Container) Set(name string, factory Factory) error {
	if name == "" {
		return errors.New("container: service name is required")
	}
	if factory == nil {
		return errors.Newf("container: factory for %q is required", name)
	}
	c.reg.put(name, &entry{factory: factory})
	return nil
}

// SetInstance registers an already built service.
func (c *Container) SetInstance(name string, instance any) error {
	if name == "" {
		return errors.New("container: service name is required")
	}
	c.reg.put(name, &entry{instance: instance, built: true})
	return nil
}

func (r *registry) put(name string, e *entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; !exists {
		r.order = append(r.order, name)
	}
	r.entries[name] = e
}

func (r *registry) lookup(name string) (*entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	return e, ok
}

func (r *registry) instance(e *entry) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return e.instance, e.built
}

// store memoizes instance unless the entry was replaced while it was built.
func (r *registry) store(name string, e *entry, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.entries[name]; ok && current == e {
		e.instance = instance
		e.built = true
	}
}

// Get returns the service registered under name, building it if needed.
func (c *Container) Get(name string) (any, error) {
	if slices.Contains(c.resolving, name) {
		return nil, errors.Wrapf(ErrCycle, "container: %q", name)
	}
	e, ok := c.reg.lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "container: %q", name)
	}
	if instance, built := c.reg.instance(e); built {
		return instance, nil
	}

	e.build.Lock()
	defer e.build.Unlock()
	if instance, built := c.reg.instance(e); built {
		return instance, nil
	}

	scope := &Container{reg: c.reg, resolving: append(slices.Clone(c.resolving), name)}
	instance, err := e.factory(scope)
	if err != nil {
		return nil, errors.Wrapf(err, "container: build %q", name)
	}
	c.reg.store(name, e, instance)
	return instance, nil
}

// MustGet panics if the service cannot be resolved.
func (c *Container) MustGet(name string) any {
	instance, err := c.Get(name)
	if err != nil {
		panic(err)
	}
	return instance
}

// Has reports whether something is registered under name.
func (c *Container) Has(name string) bool {
	_, ok := c.reg.lookup(name)
	return ok
}

// Names lists registered names in registration order.
func (c *Container) Names() []string {
	c.reg.mu.Lock()
	defer c.reg.mu.Unlock()
	return slices.Clone(c.reg.order)
}

// Lookup resolves name and asserts its type.
func Lookup[T any](c render.Container, name string) (T, error) {
	var zero T
	instance, err := c.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, errors.Newf("container: %q is %T", name, instance)
	}
	return typed, nil
}
