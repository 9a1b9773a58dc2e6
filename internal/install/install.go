// Package install writes a renderctl configuration and creates the custom
// templates directory, prompting for the paths unless told to accept the
// defaults.
package install

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-renderchain/internal/config"
)

// Options configure Run.
type Options struct {
	// ConfigPath defaults to config.DefaultPath.
	ConfigPath string
	// Yes skips every prompt and accepts Defaults.
	Yes      bool
	Defaults config.Config
	Logger   *zap.Logger
}

// Result describes what Run wrote.
type Result struct {
	Config     config.Config
	ConfigPath string
	CustomDir  string
}

// Run asks for the project layout, creates the custom templates directory and
// writes the configuration.
func Run(ctx context.Context, driver PromptDriver, opts Options) (Result, error) {
	cfg := opts.Defaults
	if cfg.ChainName == "" {
		cfg = config.Defaults()
	}
	path := opts.ConfigPath
	if path == "" {
		path = config.DefaultPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if !opts.Yes {
		if driver == nil {
			return Result{}, errors.New("install: prompt driver is required")
		}
		var err error
		if cfg, err = ask(ctx, driver, cfg); err != nil {
			return Result{}, err
		}
		ok, err := driver.Confirm(ctx, ConfirmConfig{
			Message: "Write configuration to " + path + "?",
			Default: true,
		})
		if err != nil {
			return Result{}, err
		}
		if !ok {
			return Result{}, ErrAborted
		}
	}

	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}

	customDir := filepath.Join(cfg.Root, cfg.CustomDir)
	if err := os.MkdirAll(customDir, 0o775); err != nil {
		return Result{}, errors.Wrapf(err, "install: create %s", customDir)
	}
	if err := config.Write(path, cfg); err != nil {
		return Result{}, err
	}

	logger.Info("installed",
		zap.String("config", path),
		zap.String("custom_dir", customDir),
	)
	return Result{Config: cfg, ConfigPath: path, CustomDir: customDir}, nil
}

func ask(ctx context.Context, driver PromptDriver, cfg config.Config) (config.Config, error) {
	var err error
	if cfg.Root, err = driver.Input(ctx, InputConfig{
		Message:   "Project root",
		Default:   cfg.Root,
		Validator: required("project root"),
	}); err != nil {
		return cfg, err
	}
	if cfg.CustomDir, err = driver.Input(ctx, InputConfig{
		Message:   "Custom templates directory",
		Default:   cfg.CustomDir,
		Help:      "Relative to the project root. Templates here override every other renderer.",
		Validator: required("custom templates directory"),
	}); err != nil {
		return cfg, err
	}
	if cfg.TemplateDir, err = driver.Input(ctx, InputConfig{
		Message: "Template (theme) directory",
		Default: cfg.TemplateDir,
		Help:    "Leave empty when the project has no template renderer.",
	}); err != nil {
		return cfg, err
	}
	cfg.TemplateDir = strings.TrimSpace(cfg.TemplateDir)

	for {
		more, err := driver.Confirm(ctx, ConfirmConfig{Message: "Add a package template directory?"})
		if err != nil {
			return cfg, err
		}
		if !more {
			break
		}
		dir, err := driver.Input(ctx, InputConfig{
			Message:   "Package template directory",
			Validator: required("package directory"),
		})
		if err != nil {
			return cfg, err
		}
		raw, err := driver.Input(ctx, InputConfig{
			Message:   "Priority",
			Default:   "0",
			Help:      "Higher priorities are polled first.",
			Validator: integer,
		})
		if err != nil {
			return cfg, err
		}
		priority, _ := strconv.Atoi(strings.TrimSpace(raw))
		cfg.Packages = append(cfg.Packages, config.Package{Dir: strings.TrimSpace(dir), Priority: priority})
	}
	return cfg, nil
}

func required(label string) func(string) error {
	return func(value string) error {
		if strings.TrimSpace(value) == "" {
			return errors.Newf("%s is required", label)
		}
		return nil
	}
}

func integer(value string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(value)); err != nil {
		return errors.New("priority must be an integer")
	}
	return nil
}
