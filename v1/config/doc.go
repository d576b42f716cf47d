// Package config loads the reqtraced configuration.
//
// Values come from an optional YAML file and are overridden by environment
// variables:
//
//	httpd:
//	  name: edge
//	  address: ":8080"
//	  document_root: /srv/www
//	tracer:
//	  service_name: edge
//	  enable_export: true
//	  endpoint: http://collector:4318/v1/traces
//	tracker:
//	  finished_memory: 4096
//
//	HTTPD_ADDRESS=:9000 reqtraced serve --config reqtraced.yaml
//
// Each section is the Config of the package it configures; see their
// envconfig tags for the variable names.
package config
