package provider

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-renderchain/pkg/container"
	"github.com/goliatone/go-renderchain/pkg/render"
	"github.com/goliatone/go-renderchain/pkg/renderers/chain"
)

// ThemeTemplatesKey is the manifest template entry holding the template tier
// directory of a theme. Variants may override it.
const ThemeTemplatesKey = "renderchain.templates"

// ThemeRendererPrefix prefixes the service name of a theme's template tier
// renderer.
const ThemeRendererPrefix = "themeRenderer_"

// ThemeRendererName returns the service name of the renderer for themeName.
func ThemeRendererName(themeName string) string {
	return ThemeRendererPrefix + themeName
}

// ThemeTemplateDir returns the template directory of a selection, preferring
// the selected variant's entry. Empty when the theme declares none.
func ThemeTemplateDir(sel *theme.Selection) string {
	if sel == nil || sel.Manifest == nil {
		return ""
	}
	if v, ok := sel.Manifest.Variants[sel.Variant]; ok {
		if dir := strings.TrimSpace(v.Templates[ThemeTemplatesKey]); dir != "" {
			return dir
		}
	}
	return strings.TrimSpace(sel.Manifest.Templates[ThemeTemplatesKey])
}

// SelectTheme resolves name and variant with opts.ThemeSelector, registers
// the theme's template tier renderer when missing and makes it the template
// renderer of the chain. It returns the renderer service name.
func SelectTheme(c *container.Container, opts Options, name, variant string) (string, error) {
	if opts.ThemeSelector == nil {
		return "", errors.New("provider: theme selector is required")
	}
	serviceName, err := registerTheme(c, opts, name, variant)
	if err != nil {
		return "", err
	}

	chainName := strings.TrimSpace(opts.ChainName)
	if chainName == "" {
		chainName = DefaultChainName
	}
	renderer, err := container.Lookup[*chain.Renderer](c, chainName)
	if err != nil {
		return "", err
	}
	renderer.SetTemplateRendererName(serviceName)
	return serviceName, nil
}

func registerTheme(c *container.Container, opts Options, name, variant string) (string, error) {
	sel, err := opts.ThemeSelector.Select(name, variant)
	if err != nil {
		return "", errors.Wrapf(err, "provider: select theme %q", name)
	}
	dir := ThemeTemplateDir(sel)
	if dir == "" {
		return "", errors.Newf("provider: theme %q declares no %s", sel.Theme, ThemeTemplatesKey)
	}

	serviceName := ThemeRendererName(sel.Theme)
	if sel.Variant != "" {
		serviceName += "_" + sel.Variant
	}
	if c.Has(serviceName) {
		return serviceName, nil
	}
	factory := fileRenderer(opts, joinRoot(opts.Root, dir), nil, render.TierTemplate, 0)
	if err := c.Set(serviceName, factory); err != nil {
		return "", err
	}
	return serviceName, nil
}

// ManifestSelector selects among a fixed set of theme manifests.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector indexes manifests by name. Empty names passed to Select
// fall back to defaultTheme and defaultVariant.
func NewManifestSelector(defaultTheme, defaultVariant string, manifests ...*theme.Manifest) (*ManifestSelector, error) {
	s := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultTheme:   defaultTheme,
		defaultVariant: defaultVariant,
	}
	for _, m := range manifests {
		if m == nil || strings.TrimSpace(m.Name) == "" {
			return nil, errors.New("provider: theme manifest needs a name")
		}
		if _, ok := s.manifests[m.Name]; ok {
			return nil, errors.Newf("provider: theme %q declared twice", m.Name)
		}
		s.manifests[m.Name] = m
	}
	return s, nil
}

// Select implements theme.ThemeSelector.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if name == "" {
		name = s.defaultTheme
		if variant == "" {
			variant = s.defaultVariant
		}
	}
	m, ok := s.manifests[name]
	if !ok {
		return nil, errors.Newf("provider: unknown theme %q (known: %s)", name, strings.Join(s.names(), ", "))
	}
	if variant != "" {
		if _, ok := m.Variants[variant]; !ok {
			return nil, errors.Newf("provider: theme %q has no variant %q", name, variant)
		}
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: m}, nil
}

func (s *ManifestSelector) names() []string {
	out := make([]string, 0, len(s.manifests))
	for name := range s.manifests {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
