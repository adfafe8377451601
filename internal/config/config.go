// Package config loads the optional site configuration file.
//
// The file is YAML with environment variables expanded before parsing. Values
// given on the command line are applied on top by the caller; everything left
// unset falls back to the defaults in defaults.go.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/simplesite/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "simplesite.yaml"

// Config represents the site configuration.
type Config struct {
	// TemplateExtension marks files that are rendered rather than copied.
	TemplateExtension string `yaml:"template_extension,omitempty"`
	// OutputExtension replaces every extension of a rendered template's name.
	OutputExtension string `yaml:"output_extension,omitempty"`
	// StringsFile is the localization table. A relative path is resolved
	// against the working directory.
	StringsFile string `yaml:"strings_file,omitempty"`
	// IgnoreFile lists template names to skip, relative to the source directory.
	IgnoreFile string `yaml:"ignore_file,omitempty"`
	// SymlinkAssets makes secondary locales link to the primary locale's assets.
	SymlinkAssets *bool `yaml:"symlink_assets,omitempty"`
	// OnCycle is "error" or "partial".
	OnCycle string `yaml:"on_cycle,omitempty"`
	// MetricsFile receives Prometheus textfile output after each build.
	MetricsFile string `yaml:"metrics_file,omitempty"`
}

// Load reads the configuration at path. When explicit is false a missing
// file is not an error and the defaults are returned.
func Load(path string, explicit bool) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path) // #nosec G304 -- user-selected config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !explicit {
			cfg := &Config{}
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "read configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "parse configuration file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML configuration, expanding environment variables first,
// then applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}

	example := Config{}
	example.ApplyDefaults()

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil { // #nosec G306 -- config is not secret
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "write configuration file").
			WithContext("path", path).
			Build()
	}
	return nil
}
