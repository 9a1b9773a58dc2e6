package provider_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-renderchain/internal/fixtures"
	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/facade"
	"github.com/goliatone/go-renderchain/pkg/provider"
	"github.com/goliatone/go-renderchain/pkg/renderers/chain"
	"github.com/goliatone/go-renderchain/pkg/renderers/filebased"
	"github.com/goliatone/go-renderchain/pkg/testsupport"
)

func fixtureOptions(t *testing.T) provider.Options {
	return provider.Options{
		CustomDir: fixtures.CustomTemplatesDir,
		CustomFS:  fixtures.CustomTemplates(),
		Packages: []provider.Package{
			{Dir: fixtures.TemplatesDir, FS: fixtures.Templates()},
			{Dir: fixtures.TemplateTemplatesDir, FS: fixtures.TemplateTemplates(), Priority: 1},
		},
		Hierarchy: fixtures.Hierarchy(),
		Logger:    zaptest.NewLogger(t),
	}
}

func TestRegister_PackagePriorities(t *testing.T) {
	c := container.New()
	require.NoError(t, provider.Register(c, fixtureOptions(t)))

	packages, err := container.Lookup[*container.PriorityList](c, provider.PackageRenderersName)
	require.NoError(t, err)
	require.Equal(t, []string{
		"packageRenderer_tests/templateTemplates",
		"packageRenderer_tests/templates",
	}, packages.Names())

	renderer, err := provider.Renderer(c, "")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, renderer.Render(context.Background(), &buf, fixtures.MyImplementation{}, ""))
	require.Equal(t, "bar", buf.String())

	// The higher priority package wins for types both directories know.
	buf.Reset()
	require.NoError(t, renderer.Render(context.Background(), &buf, fixtures.Foo{}, ""))
	require.Equal(t, "FooTemplate", buf.String())
}

func TestRegister_ServicesShareTheCache(t *testing.T) {
	c := container.New()
	shared := testsupport.NewRecordingCache()
	opts := fixtureOptions(t)
	opts.SharedCache = shared
	// Poll the directory holding the variant template first.
	opts.Packages[1].Priority = -1
	require.NoError(t, provider.Register(c, opts))

	cc, err := container.Lookup[cache.Cache](c, provider.CacheServiceName)
	require.NoError(t, err)
	require.IsType(t, &cache.Chained{}, cc)

	custom, err := container.Lookup[*filebased.Renderer](c, provider.CustomRendererName)
	require.NoError(t, err)
	require.Equal(t, fixtures.CustomTemplatesDir, custom.Dir())

	renderer, err := provider.Renderer(c, "")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, renderer.Render(context.Background(), &buf, fixtures.Foo{}, "context"))
	require.Equal(t, "Foocontext", buf.String())
	require.NotZero(t, shared.Len(), "decisions reach the shared layer")
}

func TestRegister_TemplateTierAndRoot(t *testing.T) {
	c := container.New()
	require.NoError(t, provider.Register(c, provider.Options{
		Root:        "/srv/app",
		CustomFS:    fixtures.CustomTemplates(),
		TemplateDir: "theme",
		TemplateFS:  fixtures.TemplateTemplates(),
		Packages:    []provider.Package{{Dir: "vendor/acme", FS: fixtures.Templates()}},
		Hierarchy:   fixtures.Hierarchy(),
		ChainName:   "siteRenderer",
	}))

	custom, err := container.Lookup[*filebased.Renderer](c, provider.CustomRendererName)
	require.NoError(t, err)
	require.Equal(t, "/srv/app/src/templates", custom.Dir())

	require.True(t, c.Has(provider.PackageRendererName("vendor/acme")))
	require.False(t, c.Has(provider.DefaultChainName))

	siteRenderer, err := container.Lookup[*chain.Renderer](c, "siteRenderer")
	require.NoError(t, err)
	require.Equal(t, provider.TemplateRendererName, siteRenderer.TemplateRendererName())

	trace := siteRenderer.DebugTrace(context.Background(), fixtures.Unknown{}, "")
	require.Contains(t, trace, "Testing renderer for directory '/srv/app/theme'")
	require.Contains(t, trace, "Testing renderer for directory '/srv/app/vendor/acme'")

	var buf bytes.Buffer
	require.NoError(t, siteRenderer.Render(context.Background(), &buf, fixtures.Foo{}, ""))
	require.Equal(t, "FooTemplate", buf.String())
}

func TestRegister_DiscoveredChain(t *testing.T) {
	c := container.New()
	opts := fixtureOptions(t)
	opts.Discover = true
	require.NoError(t, provider.Register(c, opts))

	members, err := chain.Discover(c)
	require.NoError(t, err)
	require.Equal(t, chain.Members{
		Custom:  []string{provider.CustomRendererName},
		Package: []string{"packageRenderer_tests/templateTemplates", "packageRenderer_tests/templates"},
	}, members)

	renderer, err := provider.Renderer(c, "")
	require.NoError(t, err)
	facade.Init(renderer)
	t.Cleanup(facade.Reset)

	var buf bytes.Buffer
	require.NoError(t, facade.Render(context.Background(), &buf, &fixtures.ExtendedFoo{}, ""))
	require.Equal(t, "FooTemplate", buf.String())
}

func TestRegister_DiscoveredChainKeepsConfiguredTemplateRenderer(t *testing.T) {
	c := container.New()
	require.NoError(t, provider.Register(c, provider.Options{
		CustomFS:    fixtures.CustomTemplates(),
		TemplateDir: fixtures.TemplateTemplatesDir,
		TemplateFS:  fixtures.TemplateTemplates(),
		Packages:    []provider.Package{{Dir: fixtures.TemplatesDir, FS: fixtures.Templates()}},
		Hierarchy:   fixtures.Hierarchy(),
		Discover:    true,
	}))

	members, err := chain.Discover(c)
	require.NoError(t, err)
	require.Equal(t, []string{"packageRenderer_tests/templates"}, members.Package)
	require.NotContains(t, members.Custom, provider.TemplateRendererName)

	auto, err := container.Lookup[*chain.Renderer](c, provider.DefaultChainName)
	require.NoError(t, err)
	require.Equal(t, provider.TemplateRendererName, auto.TemplateRendererName())

	var buf bytes.Buffer
	require.NoError(t, auto.Render(context.Background(), &buf, fixtures.Foo{}, ""))
	require.Equal(t, "FooTemplate", buf.String())
}

func TestRegister_Errors(t *testing.T) {
	require.Error(t, provider.Register(nil, provider.Options{}))
	require.Error(t, provider.Register(container.New(), provider.Options{
		Packages: []provider.Package{{Dir: " "}},
	}))
}
