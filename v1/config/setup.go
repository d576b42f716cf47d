package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the YAML file at path, if path is not empty, and overrides its
// values with the environment variables named in the sections' envconfig
// tags. Variables that are not set leave the file's values untouched.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigFile, err)
		}
		if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.DisallowUnknownField()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
		}
	}

	for _, section := range cfg.sections() {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrEnvironment, err)
		}
	}

	return &cfg, nil
}
