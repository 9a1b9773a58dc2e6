// Package chain selects, for each object, the first renderer able to render
// it. Renderers are polled by tier: every custom renderer, then the template
// renderer, then every package renderer.
package chain

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/render"
	"github.com/goliatone/go-renderchain/pkg/typeinfo"
)

const cacheKeyPrefix = "chain_"

type Option func(*Renderer)

// WithLogger sets the logger used for selection events.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithHierarchy sets the hierarchy used to compute type identities for cache
// keys and error messages. Defaults to typeinfo.Default().
func WithHierarchy(h *typeinfo.Hierarchy) Option {
	return func(r *Renderer) {
		if h != nil {
			r.hierarchy = h
		}
	}
}

// WithTemplateRendererName sets the initial template renderer.
func WithTemplateRendererName(name string) Option {
	return func(r *Renderer) {
		r.templateName = name
	}
}

type member struct {
	name     string
	tier     render.Tier
	renderer render.Chainable
}

// Renderer is a render.Renderer delegating to chainable renderers looked up
// by name in a container.
type Renderer struct {
	container    render.Container
	customNames  []string
	packageNames []string
	cache        cache.Cache
	name         string
	hierarchy    *typeinfo.Hierarchy
	logger       *zap.Logger

	mu           sync.Mutex
	templateName string
	custom       []member
	packages     []member
	resolved     bool
}

var _ render.Renderer = (*Renderer)(nil)

// New builds a chain. name must be unique among chains sharing c's cache.
// Renderer names are resolved through the container on first use.
func New(c render.Container, custom, packages []string, cc cache.Cache, name string, opts ...Option) *Renderer {
	if cc == nil {
		cc = cache.Nop()
	}
	r := &Renderer{
		container:    c,
		customNames:  append([]string(nil), custom...),
		packageNames: append([]string(nil), packages...),
		cache:        cc,
		name:         name,
		hierarchy:    typeinfo.Default(),
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = r.logger.Named("chain").With(zap.String("component", name))
	return r
}

// Name returns the unique chain name.
func (r *Renderer) Name() string { return r.name }

// SetTemplateRendererName selects the template tier renderer. An empty name
// removes it. The renderer is looked up again on every use.
func (r *Renderer) SetTemplateRendererName(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateName = name
}

// TemplateRendererName returns the current template renderer name.
func (r *Renderer) TemplateRendererName() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.templateName
}

// Render writes object with the first renderer that accepts it. When none
// does the error carries the lookup log of every polled renderer.
func (r *Renderer) Render(ctx context.Context, w io.Writer, object any, variant string) error {
	renderer, err := r.Resolve(ctx, object, variant)
	if errors.Is(err, render.ErrNoRendererFound) {
		return &render.NoRendererFoundError{
			Type:  r.typeName(object),
			Trace: r.DebugTrace(ctx, object, variant),
		}
	}
	if err != nil {
		return err
	}
	return renderer.Render(ctx, w, object, variant)
}

// Resolve returns the renderer for object. Cached decisions are trusted
// without asking the renderer again. It fails with render.ErrNoRendererFound
// when nothing accepts the object.
func (r *Renderer) Resolve(ctx context.Context, object any, variant string) (render.Chainable, error) {
	templateName := r.TemplateRendererName()
	identity := r.hierarchy.Identity(object)
	key := r.cacheKey(templateName, identity, variant)

	if identity != "" {
		if cached, ok := r.cache.Get(ctx, key); ok {
			if name, ok := cached.(string); ok && name != "" {
				return container.Lookup[render.Chainable](r.container, name)
			}
		}
	}

	members, err := r.polled(templateName)
	if err != nil {
		return nil, err
	}

	cacheable := identity != ""
	for _, m := range members {
		verdict := m.renderer.CanRender(ctx, object, variant)
		if verdict.ObjectSpecific() {
			cacheable = false
		}
		if !verdict.Positive() {
			continue
		}
		r.logger.Debug("renderer selected",
			zap.String("renderer", m.name),
			zap.String("tier", string(m.tier)),
			zap.String("type", identity),
			zap.String("variant", variant),
			zap.Stringer("verdict", verdict),
			zap.Bool("cacheable", cacheable),
		)
		if cacheable {
			r.cache.Set(ctx, key, m.name)
		}
		return m.renderer, nil
	}

	r.logger.Debug("no renderer found", zap.String("type", identity), zap.String("variant", variant))
	return nil, errors.Wrapf(render.ErrNoRendererFound, "chain %q: type %q", r.name, identity)
}

// DebugTrace polls renderers in tier order, ignoring the chain cache, and
// concatenates their lookup logs up to and including the first one accepting
// the object.
func (r *Renderer) DebugTrace(ctx context.Context, object any, variant string) string {
	members, err := r.polled(r.TemplateRendererName())
	if err != nil {
		return "Unable to resolve renderers: " + err.Error() + "\n"
	}

	var b strings.Builder
	for _, m := range members {
		b.WriteString(m.renderer.DebugCanRender(ctx, object, variant))
		if m.renderer.CanRender(ctx, object, variant).Positive() {
			break
		}
	}
	return b.String()
}

// polled returns custom, template and package renderers in polling order.
func (r *Renderer) polled(templateName string) ([]member, error) {
	custom, packages, err := r.snapshot()
	if err != nil {
		return nil, err
	}

	out := make([]member, 0, len(custom)+len(packages)+1)
	out = append(out, custom...)
	if templateName != "" {
		tpl, err := container.Lookup[render.Chainable](r.container, templateName)
		if err != nil {
			return nil, errors.Wrapf(err, "chain %q: template renderer", r.name)
		}
		out = append(out, member{name: templateName, tier: render.TierTemplate, renderer: tpl})
	}
	return append(out, packages...), nil
}

// snapshot resolves custom and package renderers once. A failure is not
// remembered, so the next call tries again from scratch.
func (r *Renderer) snapshot() ([]member, []member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return r.custom, r.packages, nil
	}

	custom, err := r.resolve(r.customNames, render.TierCustom)
	if err != nil {
		return nil, nil, err
	}
	packages, err := r.resolve(r.packageNames, render.TierPackage)
	if err != nil {
		return nil, nil, err
	}

	r.custom, r.packages, r.resolved = custom, packages, true
	return custom, packages, nil
}

func (r *Renderer) resolve(names []string, tier render.Tier) ([]member, error) {
	out := make([]member, 0, len(names))
	for _, name := range names {
		renderer, err := container.Lookup[render.Chainable](r.container, name)
		if err != nil {
			return nil, errors.Wrapf(err, "chain %q: %s renderer", r.name, tier)
		}
		out = append(out, member{name: name, tier: tier, renderer: renderer})
	}
	return out, nil
}

func (r *Renderer) typeName(object any) string {
	if identity := r.hierarchy.Identity(object); identity != "" {
		return identity
	}
	return fmt.Sprintf("%T", object)
}

func (r *Renderer) cacheKey(templateName, identity, variant string) string {
	sum := md5.Sum([]byte(r.name + "\x00" + templateName + "\x00" + identity + "\x00" + variant))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
