// Package app assembles the renderer services renderctl works with from a
// loaded configuration.
package app

import (
	"context"
	"io"
	"path/filepath"

	"github.com/cockroachdb/errors"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/internal/config"
	"github.com/goliatone/go-renderchain/internal/document"
	"github.com/goliatone/go-renderchain/internal/watcher"
	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/provider"
	"github.com/goliatone/go-renderchain/pkg/render"
	"github.com/goliatone/go-renderchain/pkg/renderers/chain"
	"github.com/goliatone/go-renderchain/pkg/renderers/filebased"
	"github.com/goliatone/go-renderchain/pkg/typeinfo"
)

// App holds the services built from a configuration.
type App struct {
	Config    config.Config
	Container *container.Container
	Hierarchy *typeinfo.Hierarchy
	Cache     *cache.InMemory
	Renderer  render.Renderer
	options   provider.Options
	logger    *zap.Logger
}

// Build declares the configured document types and registers the renderer
// services.
func Build(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	hierarchy, err := Hierarchy(cfg.Types)
	if err != nil {
		return nil, err
	}

	memory := cache.NewInMemory("renderer", cfg.Cache.Expiration, cfg.Cache.CleanupInterval, logger)
	packages := make([]provider.Package, 0, len(cfg.Packages))
	for _, pkg := range cfg.Packages {
		packages = append(packages, provider.Package{Dir: pkg.Dir, Priority: pkg.Priority})
	}

	selector, err := ThemeSelector(cfg.Theme)
	if err != nil {
		return nil, err
	}

	c := container.New()
	opts := provider.Options{
		Root:          cfg.Root,
		CustomDir:     cfg.CustomDir,
		TemplateDir:   cfg.TemplateDir,
		Packages:      packages,
		Cache:         memory,
		Hierarchy:     hierarchy,
		Logger:        logger,
		StructuredExt: cfg.Extensions.Structured,
		CodeExt:       cfg.Extensions.Code,
		GlobalData:    cfg.Globals,
		ChainName:     cfg.ChainName,
		Discover:      cfg.Discover,
	}
	if selector != nil {
		opts.ThemeSelector = selector
		opts.Theme = cfg.Theme.Name
		opts.ThemeVariant = cfg.Theme.Variant
	}
	if err := provider.Register(c, opts); err != nil {
		return nil, errors.Wrap(err, "app: register renderers")
	}

	renderer, err := provider.Renderer(c, cfg.ChainName)
	if err != nil {
		return nil, errors.Wrap(err, "app: build chain")
	}

	return &App{
		Config:    cfg,
		Container: c,
		Hierarchy: hierarchy,
		Cache:     memory,
		Renderer:  renderer,
		options:   opts,
		logger:    logger,
	}, nil
}

// ThemeSelector builds a selector over the declared themes. It returns nil
// when no theme is selected.
func ThemeSelector(cfg config.ThemeConfig) (theme.ThemeSelector, error) {
	if cfg.Name == "" {
		return nil, nil
	}
	manifests := make([]*theme.Manifest, 0, len(cfg.Themes))
	for _, decl := range cfg.Themes {
		m := &theme.Manifest{
			Name:      decl.Name,
			Templates: map[string]string{provider.ThemeTemplatesKey: decl.Templates},
		}
		if len(decl.Variants) > 0 {
			m.Variants = make(map[string]theme.Variant, len(decl.Variants))
			for variant, dir := range decl.Variants {
				m.Variants[variant] = theme.Variant{
					Templates: map[string]string{provider.ThemeTemplatesKey: dir},
				}
			}
		}
		manifests = append(manifests, m)
	}
	selector, err := provider.NewManifestSelector(cfg.Name, cfg.Variant, manifests...)
	if err != nil {
		return nil, errors.Wrap(err, "app: themes")
	}
	return selector, nil
}

// Hierarchy declares every type in decls on a fresh hierarchy.
func Hierarchy(decls []config.TypeDecl) (*typeinfo.Hierarchy, error) {
	h := typeinfo.New()
	for _, decl := range decls {
		var opts []typeinfo.Option
		if decl.Extends != "" {
			opts = append(opts, typeinfo.ExtendsName(decl.Extends))
		}
		for _, iface := range decl.Implements {
			opts = append(opts, typeinfo.ImplementsName(iface))
		}
		if err := h.DeclareName(decl.Name, opts...); err != nil {
			return nil, errors.Wrapf(err, "app: declare type %q", decl.Name)
		}
	}
	return h, nil
}

// UseTheme switches the chain's template tier to the named theme. Themes must
// be declared in the configuration.
func (a *App) UseTheme(name, variant string) error {
	if a.options.ThemeSelector == nil {
		selector, err := ThemeSelector(config.ThemeConfig{Name: name, Variant: variant, Themes: a.Config.Theme.Themes})
		if err != nil {
			return err
		}
		a.options.ThemeSelector = selector
	}
	serviceName, err := provider.SelectTheme(a.Container, a.options, name, variant)
	if err != nil {
		return errors.Wrap(err, "app: use theme")
	}
	a.logger.Debug("template tier switched", zap.String("theme", name), zap.String("renderer", serviceName))
	return nil
}

// Render loads the document at dataPath, typed typeName, and renders it.
func (a *App) Render(ctx context.Context, w io.Writer, typeName, dataPath, variant string) error {
	doc, err := document.Load(dataPath, typeName)
	if err != nil {
		return err
	}
	return a.Renderer.Render(ctx, w, doc, variant)
}

// Debug returns the lookup trace of every renderer polled for a document of
// typeName.
func (a *App) Debug(ctx context.Context, typeName, variant string) (string, error) {
	tracer, ok := a.Renderer.(*chain.Renderer)
	if !ok {
		return "", errors.Newf("app: %T does not trace lookups", a.Renderer)
	}
	doc, err := document.Load("", typeName)
	if err != nil {
		return "", err
	}
	return tracer.DebugTrace(ctx, doc, variant), nil
}

// Dirs returns the template directories on disk, custom first.
func (a *App) Dirs() []string {
	join := func(dir string) string {
		if a.Config.Root == "" || filepath.IsAbs(dir) {
			return filepath.Clean(dir)
		}
		return filepath.Join(a.Config.Root, dir)
	}
	dirs := []string{join(a.Config.CustomDir)}
	if a.Config.TemplateDir != "" {
		dirs = append(dirs, join(a.Config.TemplateDir))
	}
	for _, decl := range a.Config.Theme.Themes {
		dirs = append(dirs, join(decl.Templates))
		for _, dir := range decl.Variants {
			dirs = append(dirs, join(dir))
		}
	}
	for _, pkg := range a.Config.Packages {
		dirs = append(dirs, join(pkg.Dir))
	}
	return dirs
}

// Invalidate drops cached decisions and compiled templates after template
// files changed.
func (a *App) Invalidate(ctx context.Context) error {
	var resetters []watcher.Resetter
	for _, name := range a.Container.Names() {
		instance, err := a.Container.Get(name)
		if err != nil {
			return errors.Wrapf(err, "app: resolve %q", name)
		}
		if r, ok := instance.(*filebased.Renderer); ok {
			resetters = append(resetters, r)
		}
	}
	if err := watcher.Invalidate(ctx, a.Cache, resetters...); err != nil {
		return err
	}
	a.logger.Info("templates reloaded", zap.Int("renderers", len(resetters)))
	return nil
}
