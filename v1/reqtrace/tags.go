package reqtrace

import (
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// SpanTypeWeb is the span.type of every request span.
const SpanTypeWeb = "web"

// Tags set when a span starts.
const (
	SpanTypeKey      = attribute.Key("span.type")
	OperationNameKey = attribute.Key("operation.name")
	HTTPURLKey       = semconv.HTTPURLKey
	HTTPMethodKey    = semconv.HTTPMethodKey
	PeerAddressKey   = attribute.Key("peer.address")
	UserAgentKey     = attribute.Key("http.user_agent")
	AuthTypeKey      = attribute.Key("http.auth_type")
	ServerConfigKey  = attribute.Key("httpd.server_config")
)

// Tags set when a span finishes.
const (
	LogIDKey      = attribute.Key("httpd.log_id")
	HandlerKey    = attribute.Key("httpd.handler")
	FilenameKey   = attribute.Key("httpd.filename")
	HostnameKey   = attribute.Key("httpd.hostname")
	StatusCodeKey = semconv.HTTPStatusCodeKey
	ErrorKey      = attribute.Key("error")
)
