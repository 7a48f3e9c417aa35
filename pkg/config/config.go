// Package config loads gitscope's TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/gitscope/config.toml (falling back to
// ~/.config/gitscope/config.toml) unless a path is given explicitly:
//
//	repo = "~/src/project"
//
//	[export]
//	depth = 6
//	max_nodes = 300
//	formats = ["svg", "json"]
//	seed = 7
//	follow_hidden = false
//	detailed = true
//	frontier = true
//
//	[serve]
//	addr = "127.0.0.1:7420"
//
// Command-line flags override file values; file values override defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gitscope/pkg/errors"
	"github.com/matzehuels/gitscope/pkg/ident"
	"github.com/matzehuels/gitscope/pkg/pipeline"
)

const (
	appName  = "gitscope"
	fileName = "config.toml"

	// DefaultAddr is the default listen address of the exploration server.
	DefaultAddr = "127.0.0.1:7420"
)

// Config is the on-disk configuration.
type Config struct {
	Repo   string       `toml:"repo"`
	Export ExportConfig `toml:"export"`
	Serve  ServeConfig  `toml:"serve"`
}

// ExportConfig holds defaults for the export command.
type ExportConfig struct {
	Depth        int      `toml:"depth"`
	MaxNodes     int      `toml:"max_nodes"`
	Formats      []string `toml:"formats"`
	Seed         uint64   `toml:"seed"`
	FollowHidden bool     `toml:"follow_hidden"`
	Detailed     bool     `toml:"detailed"`
	Frontier     bool     `toml:"frontier"`
}

// ServeConfig holds defaults for the serve command.
type ServeConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Repo: ".",
		Export: ExportConfig{
			Depth:    pipeline.DefaultMaxDepth,
			MaxNodes: pipeline.DefaultMaxNodes,
			Formats:  []string{pipeline.FormatJSON},
			Seed:     pipeline.DefaultSeed,
		},
		Serve: ServeConfig{Addr: DefaultAddr},
	}
}

// DefaultPath returns the XDG config file path (~/.config/gitscope/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the configuration at path on top of [Default]. An empty path
// means [DefaultPath], and a missing default file is not an error. An
// explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.Repo = expandHome(cfg.Repo)
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if err := errors.ValidatePath(c.Repo); err != nil {
		return err
	}
	if c.Export.Depth < pipeline.Unlimited || c.Export.MaxNodes < pipeline.Unlimited {
		return errors.New(errors.ErrCodeInvalidConfig, "export limits must be positive or %d for unlimited", pipeline.Unlimited)
	}
	if err := pipeline.ValidateFormats(c.Export.Formats); err != nil {
		return err
	}
	if c.Serve.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "serve.addr cannot be empty")
	}
	return nil
}

// PipelineOptions converts the export section into pipeline options for
// the given start set.
func (c Config) PipelineOptions(start []ident.Identifier) pipeline.Options {
	return pipeline.Options{
		Start:        start,
		MaxDepth:     c.Export.Depth,
		MaxNodes:     c.Export.MaxNodes,
		FollowHidden: c.Export.FollowHidden,
		Seed:         c.Export.Seed,
		Formats:      append([]string(nil), c.Export.Formats...),
		Detailed:     c.Export.Detailed,
		Frontier:     c.Export.Frontier,
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
