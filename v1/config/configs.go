package config

import (
	"github.com/Aleph-Alpha/reqtrace/v1/httpd"
	"github.com/Aleph-Alpha/reqtrace/v1/logger"
	"github.com/Aleph-Alpha/reqtrace/v1/metrics"
	"github.com/Aleph-Alpha/reqtrace/v1/reqtrace"
	"github.com/Aleph-Alpha/reqtrace/v1/tracer"
)

// Config is the configuration of the reqtraced application, one section per
// package. Empty fields take the defaults of the package constructors.
type Config struct {
	Logger  logger.Config   `yaml:"logger"`
	Metrics metrics.Config  `yaml:"metrics"`
	Tracer  tracer.Config   `yaml:"tracer"`
	Tracker reqtrace.Config `yaml:"tracker"`
	HTTPD   httpd.Config    `yaml:"httpd"`
}

// sections returns the sections the environment is applied to.
func (c *Config) sections() []interface{} {
	return []interface{}{
		&c.Logger,
		&c.Metrics,
		&c.Tracer,
		&c.Tracker,
		&c.HTTPD,
	}
}
