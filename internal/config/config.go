// Package config loads renderctl settings from a YAML file, RENDERCHAIN_*
// environment variables and defaults, in increasing order of precedence for
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-renderchain/pkg/cache"
	"github.com/goliatone/go-renderchain/pkg/locator"
	"github.com/goliatone/go-renderchain/pkg/provider"
)

// EnvPrefix prefixes environment overrides, e.g. RENDERCHAIN_LOG_LEVEL.
const EnvPrefix = "RENDERCHAIN"

// DefaultPath is where install writes the configuration.
const DefaultPath = ".renderchain/config.yaml"

// Config is the renderctl configuration.
type Config struct {
	Root        string         `mapstructure:"root" yaml:"root"`
	CustomDir   string         `mapstructure:"custom_dir" yaml:"custom_dir"`
	TemplateDir string         `mapstructure:"template_dir" yaml:"template_dir,omitempty"`
	ChainName   string         `mapstructure:"chain_name" yaml:"chain_name"`
	Discover    bool           `mapstructure:"discover" yaml:"discover,omitempty"`
	Packages    []Package      `mapstructure:"packages" yaml:"packages,omitempty"`
	Extensions  Extensions     `mapstructure:"extensions" yaml:"extensions"`
	Cache       CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Log         LogConfig      `mapstructure:"log" yaml:"log"`
	Theme       ThemeConfig    `mapstructure:"theme" yaml:"theme,omitempty"`
	Types       []TypeDecl     `mapstructure:"types" yaml:"types,omitempty"`
	Globals     map[string]any `mapstructure:"globals" yaml:"globals,omitempty"`
}

// Package is a package template directory.
type Package struct {
	Dir      string `mapstructure:"dir" yaml:"dir"`
	Priority int    `mapstructure:"priority" yaml:"priority,omitempty"`
}

// Extensions selects template file extensions.
type Extensions struct {
	Structured string `mapstructure:"structured" yaml:"structured"`
	Code       string `mapstructure:"code" yaml:"code"`
}

// CacheConfig configures the in-memory renderer cache.
type CacheConfig struct {
	Expiration      time.Duration `mapstructure:"expiration" yaml:"expiration"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`
}

// ThemeConfig selects the template tier from declared themes. Name picks one
// of Themes; an empty Name keeps template_dir.
type ThemeConfig struct {
	Name    string      `mapstructure:"name" yaml:"name,omitempty"`
	Variant string      `mapstructure:"variant" yaml:"variant,omitempty"`
	Themes  []ThemeDecl `mapstructure:"themes" yaml:"themes,omitempty"`
}

// ThemeDecl declares a theme's template directory and per variant overrides.
type ThemeDecl struct {
	Name      string            `mapstructure:"name" yaml:"name"`
	Templates string            `mapstructure:"templates" yaml:"templates"`
	Variants  map[string]string `mapstructure:"variants" yaml:"variants,omitempty"`
}

// TypeDecl declares a document type identity: its parent and the interface
// names it implements. Documents rendered from data files carry these names.
type TypeDecl struct {
	Name       string   `mapstructure:"name" yaml:"name"`
	Extends    string   `mapstructure:"extends" yaml:"extends,omitempty"`
	Implements []string `mapstructure:"implements" yaml:"implements,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Root:      ".",
		CustomDir: provider.DefaultCustomDir,
		ChainName: provider.DefaultChainName,
		Extensions: Extensions{
			Structured: locator.DefaultStructuredExt,
			Code:       locator.DefaultCodeExt,
		},
		Cache: CacheConfig{
			Expiration:      cache.DefaultExpiration,
			CleanupInterval: cache.DefaultCleanupInterval,
		},
		Log: LogConfig{Level: "info"},
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("root", d.Root)
	v.SetDefault("custom_dir", d.CustomDir)
	v.SetDefault("template_dir", d.TemplateDir)
	v.SetDefault("chain_name", d.ChainName)
	v.SetDefault("extensions.structured", d.Extensions.Structured)
	v.SetDefault("extensions.code", d.Extensions.Code)
	v.SetDefault("cache.expiration", d.Cache.Expiration)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("discover", d.Discover)
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load reads path when it is not empty and returns the merged configuration.
// A missing file at DefaultPath is not an error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return LoadWithViper(v)
		}
		path = DefaultPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}
	return LoadWithViper(v)
}

// LoadWithViper decodes the configuration held by v.
func LoadWithViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: unmarshal")
	}
	return cfg, cfg.Validate()
}

// Validate reports configuration mistakes.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ChainName) == "" {
		return errors.New("config: chain_name is required")
	}
	seen := map[string]bool{}
	for _, pkg := range c.Packages {
		if strings.TrimSpace(pkg.Dir) == "" {
			return errors.New("config: package dir is required")
		}
		if seen[pkg.Dir] {
			return errors.Newf("config: package %q listed twice", pkg.Dir)
		}
		seen[pkg.Dir] = true
	}
	themes := map[string]bool{}
	for _, decl := range c.Theme.Themes {
		if strings.TrimSpace(decl.Name) == "" || strings.TrimSpace(decl.Templates) == "" {
			return errors.New("config: theme name and templates are required")
		}
		themes[decl.Name] = true
	}
	if c.Theme.Name != "" && !themes[c.Theme.Name] {
		return errors.Newf("config: theme %q is not declared", c.Theme.Name)
	}
	for _, decl := range c.Types {
		if strings.TrimSpace(decl.Name) == "" {
			return errors.New("config: type name is required")
		}
	}
	return nil
}

// Write stores cfg as YAML at path, creating parent directories.
func Write(path string, cfg Config) error {
	payload, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "config: marshal")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "config: create directory")
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.Wrapf(err, "config: write %s", path)
	}
	return nil
}
