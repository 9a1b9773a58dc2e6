// Package filebased renders objects with template files found in a single
// directory. Files are named after the object's type identity, and the
// renderer falls back through ancestors and interfaces until one matches.
package filebased

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/locator"
	"github.com/goliatone/go-renderchain/pkg/render"
	rendertemplate "github.com/goliatone/go-renderchain/pkg/render/template"
	"github.com/goliatone/go-renderchain/pkg/render/template/gotemplate"
	"github.com/goliatone/go-renderchain/pkg/render/template/htmltemplate"
	"github.com/goliatone/go-renderchain/pkg/typeinfo"
)

const cacheKeyPrefix = "filebased_"

type Option func(*config)

type config struct {
	files         fs.FS
	hierarchy     *typeinfo.Hierarchy
	structuredExt string
	codeExt       string
	tier          render.Tier
	priority      int
	logger        *zap.Logger
	templates     rendertemplate.TemplateRenderer
	code          rendertemplate.CodeExecutor
	globalData    map[string]any
}

// WithFS reads templates from files instead of the directory on disk. The
// directory is still used as the trace label and in cache keys.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.files = files
	}
}

// WithHierarchy sets the type hierarchy used to walk ancestors and
// interfaces. Defaults to typeinfo.Default().
func WithHierarchy(h *typeinfo.Hierarchy) Option {
	return func(cfg *config) {
		if h != nil {
			cfg.hierarchy = h
		}
	}
}

// WithExtensions overrides the structured and code template extensions.
func WithExtensions(structured, code string) Option {
	return func(cfg *config) {
		cfg.structuredExt = structured
		cfg.codeExt = code
	}
}

// WithTier declares the tier used when the renderer is discovered.
func WithTier(tier render.Tier) Option {
	return func(cfg *config) {
		cfg.tier = tier
	}
}

// WithPriority declares the priority used when the renderer is discovered.
// Higher values are polled first within a tier.
func WithPriority(priority int) Option {
	return func(cfg *config) {
		cfg.priority = priority
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithTemplateEngine injects the engine used for structured templates.
func WithTemplateEngine(engine rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if engine != nil {
			cfg.templates = engine
		}
	}
}

// WithCodeEngine injects the executor used for code templates.
func WithCodeEngine(exec rendertemplate.CodeExecutor) Option {
	return func(cfg *config) {
		if exec != nil {
			cfg.code = exec
		}
	}
}

// WithGlobalData exposes values to every template rendered by this renderer.
// Object variables win over globals with the same name.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[key] = value
		}
	}
}

// Renderer is a chainable renderer bound to one template directory.
type Renderer struct {
	locator   *locator.Locator
	cache     cache.Cache
	hierarchy *typeinfo.Hierarchy
	tier      render.Tier
	priority  int
	logger    *zap.Logger
	templates rendertemplate.TemplateRenderer
	code      rendertemplate.CodeExecutor
	globals   map[string]any
}

var (
	_ render.Chainable  = (*Renderer)(nil)
	_ render.Descriptor = (*Renderer)(nil)
)

// New builds a renderer for dir. A nil cache disables memoization.
func New(dir string, c cache.Cache, options ...Option) (*Renderer, error) {
	cfg := config{tier: render.TierCustom}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if c == nil {
		c = cache.Nop()
	}
	if cfg.hierarchy == nil {
		cfg.hierarchy = typeinfo.Default()
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	loc := locator.New(dir,
		locator.WithFS(cfg.files),
		locator.WithExtensions(cfg.structuredExt, cfg.codeExt),
	)
	structuredExt, _ := loc.Extensions()

	templates := cfg.templates
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(loc.FS()),
			gotemplate.WithExtension(structuredExt),
			gotemplate.WithGlobalData(cfg.globalData),
			gotemplate.WithTemplateFunc(map[string]any{renderHelper: structuredRender}),
		)
		if err != nil {
			return nil, errors.Wrap(err, "filebased: configure template engine")
		}
		templates = engine
	}

	code := cfg.code
	if code == nil {
		exec, err := htmltemplate.New(loc.FS(),
			htmltemplate.WithFuncs(template.FuncMap{renderHelper: codeRender}),
		)
		if err != nil {
			return nil, errors.Wrap(err, "filebased: configure code engine")
		}
		code = exec
	}

	return &Renderer{
		locator:   loc,
		cache:     c,
		hierarchy: cfg.hierarchy,
		tier:      render.ParseTier(string(cfg.tier)),
		priority:  cfg.priority,
		logger:    cfg.logger.Named("filebased").With(zap.String("renderer", loc.Dir())),
		templates: templates,
		code:      code,
		globals:   cfg.globalData,
	}, nil
}

// Dir returns the template directory label.
func (r *Renderer) Dir() string { return r.locator.Dir() }

func (r *Renderer) Tier() render.Tier { return r.tier }

func (r *Renderer) Priority() int { return r.priority }

// CanRender answers CanRenderClass when a template exists for the object's
// type, one of its ancestors or one of its interfaces.
func (r *Renderer) CanRender(ctx context.Context, object any, variant string) render.Verdict {
	if r.lookup(ctx, object, variant).Found() {
		return render.CanRenderClass
	}
	return render.CannotRender
}

// DebugCanRender checks the filesystem again, ignoring any cached result,
// and returns the lookup log. The fresh outcome replaces the cached one.
func (r *Renderer) DebugCanRender(ctx context.Context, object any, variant string) string {
	trace := locator.NewTrace(r.locator.Dir())
	identity := r.hierarchy.Identity(object)
	if identity == "" {
		trace.Note("Object has no type identity")
		return trace.String()
	}
	result := r.walk(object, variant, trace)
	r.cache.Set(ctx, r.cacheKey(identity, variant), result)
	return trace.String()
}

// Render writes the object using the first template found for it.
func (r *Renderer) Render(ctx context.Context, w io.Writer, object any, variant string) error {
	result := r.lookup(ctx, object, variant)
	if !result.Found() {
		name := r.hierarchy.Identity(object)
		if name == "" {
			name = fmt.Sprintf("%T", object)
		}
		return &render.NoTemplateFoundError{Type: name}
	}

	bag := Bag(object)
	switch result.Kind {
	case locator.KindStructured:
		if _, err := r.templates.RenderTemplate(result.Path, bag, w); err != nil {
			return errors.Wrapf(err, "filebased: render %s", result.Path)
		}
	case locator.KindCode:
		for key, value := range r.globals {
			if _, ok := bag[key]; !ok {
				bag[key] = value
			}
		}
		if err := r.code.Execute(result.Path, bag, w); err != nil {
			return errors.Wrapf(err, "filebased: execute %s", result.Path)
		}
	}
	return nil
}

// Reset drops templates compiled by the engines, for engines that memoize.
func (r *Renderer) Reset() {
	for _, engine := range []any{r.templates, r.code} {
		if resetter, ok := engine.(interface{ Reset() }); ok {
			resetter.Reset()
		}
	}
}

// lookup returns the cached result for the object's identity, checking the
// filesystem on a miss. Negative results are cached too.
func (r *Renderer) lookup(ctx context.Context, object any, variant string) locator.Result {
	identity := r.hierarchy.Identity(object)
	if identity == "" {
		return locator.Result{}
	}

	key := r.cacheKey(identity, variant)
	if cached, ok := r.cache.Get(ctx, key); ok {
		if result, ok := cached.(locator.Result); ok {
			return result
		}
	}

	result := r.walk(object, variant, nil)
	r.cache.Set(ctx, key, result)
	r.logger.Debug("template lookup",
		zap.String("type", identity),
		zap.String("variant", variant),
		zap.String("cache_key", key),
		zap.String("path", result.Path),
	)
	return result
}

func (r *Renderer) walk(object any, variant string, trace *locator.Trace) locator.Result {
	for candidate := range r.hierarchy.Candidates(object) {
		if result := r.locator.Locate(candidate, variant, trace); result.Found() {
			return result
		}
	}
	return locator.Result{}
}

func (r *Renderer) cacheKey(identity, variant string) string {
	sum := md5.Sum([]byte(r.locator.Dir() + "\x00" + identity + "\x00" + variant))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
