// Package provider registers the default renderer services in a container:
// the shared cache, the custom renderer, one renderer per package template
// directory, an optional template renderer and the chain tying them together.
// The template renderer may come from a go-theme selection.
package provider

import (
	"io/fs"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	theme "github.com/goliatone/go-theme"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/render"
	"github.com/goliatone/go-renderchain/pkg/renderers/chain"
	"github.com/goliatone/go-renderchain/pkg/renderers/filebased"
	"github.com/goliatone/go-renderchain/pkg/typeinfo"
)

// Service names.
const (
	CacheServiceName      = "rendererCacheService"
	CustomRendererName    = "customRenderer"
	CustomRenderersName   = "customRenderers"
	PackageRenderersName  = "packageRenderers"
	TemplateRendererName  = "templateRenderer"
	DefaultChainName      = "chainRenderer"
	PackageRendererPrefix = "packageRenderer_"
)

// DefaultCustomDir is the custom template directory, relative to the root.
const DefaultCustomDir = "src/templates"

// Package describes a package level template directory.
type Package struct {
	Dir string
	// FS overrides reading Dir from disk.
	FS       fs.FS
	Priority int
}

// Options configures Register. The zero value registers a custom renderer on
// src/templates and a chain named chainRenderer.
type Options struct {
	Root      string
	CustomDir string
	CustomFS  fs.FS

	// TemplateDir enables the template tier when set.
	TemplateDir string
	TemplateFS  fs.FS

	Packages []Package

	// ThemeSelector, when set, picks the template tier from the manifest of
	// the selected theme. It wins over TemplateDir.
	ThemeSelector theme.ThemeSelector
	Theme         string
	ThemeVariant  string

	// Cache replaces the default in-memory renderer cache.
	Cache cache.Cache
	// SharedCache, when set, sits behind the in-memory cache.
	SharedCache cache.Cache

	Hierarchy     *typeinfo.Hierarchy
	Logger        *zap.Logger
	StructuredExt string
	CodeExt       string
	GlobalData    map[string]any

	ChainName string
	// Discover builds the chain from every described renderer in the
	// container instead of the custom and package lists.
	Discover bool
}

// PackageRendererName returns the service name of a package renderer.
func PackageRendererName(dir string) string {
	return PackageRendererPrefix + dir
}

// Register adds the renderer services to c.
func Register(c *container.Container, opts Options) error {
	if c == nil {
		return errors.New("provider: container is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Hierarchy == nil {
		opts.Hierarchy = typeinfo.Default()
	}
	chainName := strings.TrimSpace(opts.ChainName)
	if chainName == "" {
		chainName = DefaultChainName
	}

	if err := c.Set(CacheServiceName, func(*container.Container) (any, error) {
		if opts.Cache != nil {
			return opts.Cache, nil
		}
		memory := cache.NewInMemory("renderer", cache.DefaultExpiration, cache.DefaultCleanupInterval, opts.Logger)
		if opts.SharedCache != nil {
			return cache.NewChained(memory, opts.SharedCache), nil
		}
		return memory, nil
	}); err != nil {
		return err
	}

	customDir := opts.CustomDir
	if customDir == "" {
		customDir = DefaultCustomDir
	}
	if err := c.Set(CustomRendererName, fileRenderer(opts, joinRoot(opts.Root, customDir), opts.CustomFS, render.TierCustom, 0)); err != nil {
		return err
	}
	customs := container.NewPriorityList()
	customs.Insert(CustomRendererName, 0)
	if err := c.SetInstance(CustomRenderersName, customs); err != nil {
		return err
	}

	packages := container.NewPriorityList()
	for _, pkg := range opts.Packages {
		dir := strings.TrimSpace(pkg.Dir)
		if dir == "" {
			return errors.New("provider: package directory is required")
		}
		name := PackageRendererName(dir)
		if err := c.Set(name, fileRenderer(opts, joinRoot(opts.Root, dir), pkg.FS, render.TierPackage, pkg.Priority)); err != nil {
			return err
		}
		packages.Insert(name, pkg.Priority)
	}
	if err := c.SetInstance(PackageRenderersName, packages); err != nil {
		return err
	}

	templateName := ""
	if opts.TemplateDir != "" {
		templateName = TemplateRendererName
		if err := c.Set(TemplateRendererName, fileRenderer(opts, joinRoot(opts.Root, opts.TemplateDir), opts.TemplateFS, render.TierTemplate, 0)); err != nil {
			return err
		}
	}
	if opts.ThemeSelector != nil {
		name, err := registerTheme(c, opts, opts.Theme, opts.ThemeVariant)
		if err != nil {
			return err
		}
		templateName = name
	}

	return c.Set(chainName, func(c *container.Container) (any, error) {
		cc, err := container.Lookup[cache.Cache](c, CacheServiceName)
		if err != nil {
			return nil, err
		}
		chainOpts := []chain.Option{
			chain.WithHierarchy(opts.Hierarchy),
			chain.WithLogger(opts.Logger),
			chain.WithTemplateRendererName(templateName),
		}
		if opts.Discover {
			return chain.NewDiscovered(c, cc, chainName, chainOpts...)
		}

		customNames, err := container.Lookup[*container.PriorityList](c, CustomRenderersName)
		if err != nil {
			return nil, err
		}
		packageNames, err := container.Lookup[*container.PriorityList](c, PackageRenderersName)
		if err != nil {
			return nil, err
		}
		return chain.New(c, customNames.Names(), packageNames.Names(), cc, chainName, chainOpts...), nil
	})
}

// Renderer returns the chain registered under name, DefaultChainName when
// name is empty.
func Renderer(c *container.Container, name string) (render.Renderer, error) {
	if name == "" {
		name = DefaultChainName
	}
	return container.Lookup[render.Renderer](c, name)
}

func fileRenderer(opts Options, dir string, files fs.FS, tier render.Tier, priority int) container.Factory {
	return func(c *container.Container) (any, error) {
		cc, err := container.Lookup[cache.Cache](c, CacheServiceName)
		if err != nil {
			return nil, err
		}
		return filebased.New(dir, cc,
			filebased.WithFS(files),
			filebased.WithHierarchy(opts.Hierarchy),
			filebased.WithExtensions(opts.StructuredExt, opts.CodeExt),
			filebased.WithTier(tier),
			filebased.WithPriority(priority),
			filebased.WithLogger(opts.Logger),
			filebased.WithGlobalData(opts.GlobalData),
		)
	}
}

func joinRoot(root, dir string) string {
	if root == "" || path.IsAbs(dir) {
		return dir
	}
	return path.Join(root, dir)
}
