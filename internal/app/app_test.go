package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/goliatone/go-renderchain/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func siteConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "vendor/base/content/Page.twig"), "{{ site }} page: {{ title }}")
	writeFile(t, filepath.Join(root, "post.yaml"), "title: Hello\n")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src/templates"), 0o755))

	cfg := config.Defaults()
	cfg.Root = root
	cfg.Packages = []config.Package{{Dir: "vendor/base"}}
	cfg.Types = []config.TypeDecl{{
		Name:       "blog.Post",
		Extends:    "content.Page",
		Implements: []string{"content.Summarizable"},
	}}
	cfg.Globals = map[string]any{"site": "Docs"}
	return cfg
}

func TestBuild_RendersThroughDeclaredAncestor(t *testing.T) {
	cfg := siteConfig(t)
	a, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Render(context.Background(), &buf, "blog.Post", filepath.Join(cfg.Root, "post.yaml"), ""))
	require.Equal(t, "Docs page: Hello", buf.String())
}

func TestApp_InvalidatePicksUpNewTemplates(t *testing.T) {
	ctx := context.Background()
	cfg := siteConfig(t)
	a, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	data := filepath.Join(cfg.Root, "post.yaml")

	var buf bytes.Buffer
	require.NoError(t, a.Render(ctx, &buf, "blog.Post", data, ""))
	require.Equal(t, "Docs page: Hello", buf.String())

	writeFile(t, filepath.Join(cfg.Root, "src/templates/blog/Post.twig"), "post: {{ title }}")

	buf.Reset()
	require.NoError(t, a.Render(ctx, &buf, "blog.Post", data, ""))
	require.Equal(t, "Docs page: Hello", buf.String(), "decisions stay cached until invalidated")

	require.NoError(t, a.Invalidate(ctx))
	require.Zero(t, a.Cache.Len())

	buf.Reset()
	require.NoError(t, a.Render(ctx, &buf, "blog.Post", data, ""))
	require.Equal(t, "post: Hello", buf.String())
}

func TestApp_Debug(t *testing.T) {
	cfg := siteConfig(t)
	a, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	trace, err := a.Debug(context.Background(), "blog.Post", "")
	require.NoError(t, err)
	require.Contains(t, trace, "Testing renderer for directory '"+cfg.Root+"/src/templates'\n")
	require.Contains(t, trace, "  Tested file: "+cfg.Root+"/src/templates/blog/Post.twig\n")
	require.Contains(t, trace, "  Found file: "+cfg.Root+"/vendor/base/content/Page.twig\n")

	_, err = a.Debug(context.Background(), "", "")
	require.Error(t, err)
}

func TestApp_Dirs(t *testing.T) {
	cfg := config.Defaults()
	cfg.Root = "/srv/site"
	cfg.TemplateDir = "theme"
	cfg.Packages = []config.Package{{Dir: "vendor/acme"}, {Dir: "/opt/shared"}}

	a := &App{Config: cfg}
	require.Equal(t, []string{
		"/srv/site/src/templates",
		"/srv/site/theme",
		"/srv/site/vendor/acme",
		"/opt/shared",
	}, a.Dirs())
}

func TestBuild_ThemeSelectsTemplateTier(t *testing.T) {
	ctx := context.Background()
	cfg := siteConfig(t)
	writeFile(t, filepath.Join(cfg.Root, "themes/acme/content/Page.twig"), "acme: {{ title }}")
	writeFile(t, filepath.Join(cfg.Root, "themes/acme-dark/content/Page.twig"), "dark: {{ title }}")
	cfg.Theme = config.ThemeConfig{
		Name: "acme",
		Themes: []config.ThemeDecl{{
			Name:      "acme",
			Templates: "themes/acme",
			Variants:  map[string]string{"dark": "themes/acme-dark"},
		}},
	}
	data := filepath.Join(cfg.Root, "post.yaml")

	a, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, a.Render(ctx, &buf, "blog.Post", data, ""))
	require.Equal(t, "acme: Hello", buf.String())

	require.NoError(t, a.UseTheme("acme", "dark"))
	buf.Reset()
	require.NoError(t, a.Render(ctx, &buf, "blog.Post", data, ""))
	require.Equal(t, "dark: Hello", buf.String())

	require.Error(t, a.UseTheme("other", ""))
	require.Contains(t, a.Dirs(), filepath.Join(cfg.Root, "themes/acme-dark"))
}

func TestApp_UseThemeWithoutConfiguredTheme(t *testing.T) {
	cfg := siteConfig(t)
	writeFile(t, filepath.Join(cfg.Root, "themes/acme/content/Page.twig"), "acme: {{ title }}")
	cfg.Theme.Themes = []config.ThemeDecl{{Name: "acme", Templates: "themes/acme"}}

	a, err := Build(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, a.UseTheme("acme", ""))

	var buf bytes.Buffer
	require.NoError(t, a.Render(context.Background(), &buf, "blog.Post", filepath.Join(cfg.Root, "post.yaml"), ""))
	require.Equal(t, "acme: Hello", buf.String())
}

func TestHierarchy_RejectsBlankNames(t *testing.T) {
	_, err := Hierarchy([]config.TypeDecl{{Name: " "}})
	require.Error(t, err)
}
