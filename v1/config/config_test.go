package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
logger:
  level: debug
  enable_tracing: true
httpd:
  name: edge
  address: ":8081"
  allowed_methods: [GET, HEAD]
  read_header_timeout: 5s
tracer:
  service_name: edge
  propagators: [tracecontext]
tracker:
  finished_memory: 16
metrics:
  address: ":9100"
  namespace: edge
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqtraced.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.True(t, cfg.Logger.EnableTracing)
	assert.Equal(t, "edge", cfg.HTTPD.Name)
	assert.Equal(t, ":8081", cfg.HTTPD.Address)
	assert.Equal(t, []string{"GET", "HEAD"}, cfg.HTTPD.AllowedMethods)
	assert.Equal(t, 5*time.Second, cfg.HTTPD.ReadHeaderTimeout)
	assert.Equal(t, "edge", cfg.Tracer.ServiceName)
	assert.Equal(t, []string{"tracecontext"}, cfg.Tracer.Propagators)
	assert.Equal(t, 16, cfg.Tracker.FinishedMemory)
	assert.Equal(t, ":9100", cfg.Metrics.Address)
	assert.Equal(t, "edge", cfg.Metrics.Namespace)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("HTTPD_ADDRESS", ":9000")
	t.Setenv("TRACER_PROPAGATORS", "tracecontext,baggage")
	t.Setenv("TRACKER_FINISHED_MEMORY", "-1")

	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPD.Address)
	assert.Equal(t, "edge", cfg.HTTPD.Name)
	assert.Equal(t, []string{"tracecontext", "baggage"}, cfg.Tracer.Propagators)
	assert.Equal(t, -1, cfg.Tracker.FinishedMemory)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TRACER_SERVICE_NAME", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Tracer.ServiceName)
	assert.Empty(t, cfg.HTTPD.Name)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrConfigFile)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := Load(writeConfig(t, "httpd:\n  port: 80\n"))
		assert.ErrorIs(t, err, ErrConfigFile)
	})

	t.Run("bad environment value", func(t *testing.T) {
		t.Setenv("TRACKER_FINISHED_MEMORY", "lots")
		_, err := Load("")
		assert.ErrorIs(t, err, ErrEnvironment)
	})
}
