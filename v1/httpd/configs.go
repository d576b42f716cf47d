package httpd

import (
	"net/http"
	"time"
)

// Defaults applied by NewServer to empty Config fields.
const (
	DefaultName              = "reqtraced"
	DefaultAddress           = ":8080"
	DefaultRequestIDHeader   = "X-Request-Id"
	DefaultReadHeaderTimeout = 10 * time.Second
)

// DefaultAllowedMethods are served when Config.AllowedMethods is empty.
var DefaultAllowedMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// Config holds the host server settings.
type Config struct {
	// Name identifies this server definition. Together with Address it forms
	// the server config identifier attached to every request.
	Name string `yaml:"name" envconfig:"HTTPD_NAME"`

	// Address is the listen address, e.g. ":8080".
	Address string `yaml:"address" envconfig:"HTTPD_ADDRESS"`

	// DocumentRoot, when set, is served as static files under "/".
	DocumentRoot string `yaml:"document_root" envconfig:"HTTPD_DOCUMENT_ROOT"`

	// AllowedMethods lists the methods the server implements. Requests with
	// any other method are answered with 501 without reaching the modules'
	// post-read-request hooks.
	AllowedMethods []string `yaml:"allowed_methods" envconfig:"HTTPD_ALLOWED_METHODS"`

	// RequestIDHeader is read as the request's log id and echoed on responses.
	RequestIDHeader string `yaml:"request_id_header" envconfig:"HTTPD_REQUEST_ID_HEADER"`

	// ReadHeaderTimeout bounds how long reading request headers may take.
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" envconfig:"HTTPD_READ_HEADER_TIMEOUT"`
}

func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Address == "" {
		c.Address = DefaultAddress
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = DefaultAllowedMethods
	}
	if c.RequestIDHeader == "" {
		c.RequestIDHeader = DefaultRequestIDHeader
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	return c
}
