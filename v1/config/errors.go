package config

import "errors"

var (
	// ErrConfigFile is returned when the configuration file cannot be read or parsed.
	ErrConfigFile = errors.New("config: invalid configuration file")

	// ErrEnvironment is returned when an environment variable cannot be
	// converted to its field's type.
	ErrEnvironment = errors.New("config: invalid environment")
)
