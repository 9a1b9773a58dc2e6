package chain

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/render"
)

// Members lists the custom and package renderer names, in polling order.
type Members struct {
	Custom  []string
	Package []string
}

type discovered struct {
	name     string
	tier     render.Tier
	priority int
	order    int
}

// Discover builds every service in c and groups the chainable renderers that
// describe their tier. Within a tier higher priorities come first and ties
// keep registration order. Template tier renderers are left out: the template
// renderer is chosen by whoever installs the chain, through
// WithTemplateRendererName or SetTemplateRendererName. Services that are
// still being built, such as a chain discovering its own container, are
// skipped.
func Discover(c *container.Container) (Members, error) {
	var found []discovered
	for i, name := range c.Names() {
		instance, err := c.Get(name)
		if errors.Is(err, container.ErrCycle) {
			continue
		}
		if err != nil {
			return Members{}, errors.Wrapf(err, "chain: discover %q", name)
		}
		if _, ok := instance.(render.Chainable); !ok {
			continue
		}
		desc, ok := instance.(render.Descriptor)
		if !ok {
			continue
		}
		found = append(found, discovered{name: name, tier: desc.Tier(), priority: desc.Priority(), order: i})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].priority == found[j].priority {
			return found[i].order < found[j].order
		}
		return found[i].priority > found[j].priority
	})

	var out Members
	for _, d := range found {
		switch d.tier {
		case render.TierTemplate:
			continue
		case render.TierPackage:
			out.Package = append(out.Package, d.name)
		default:
			out.Custom = append(out.Custom, d.name)
		}
	}
	return out, nil
}

// NewDiscovered discovers the renderers registered in c and builds a chain
// over them.
func NewDiscovered(c *container.Container, cc cache.Cache, name string, opts ...Option) (*Renderer, error) {
	members, err := Discover(c)
	if err != nil {
		return nil, err
	}
	return New(c, members.Custom, members.Package, cc, name, opts...), nil
}
