package reqtrace

import (
	"net/http"
	"strings"
)

// RequestID identifies one in-flight request, sub-requests included. It is
// generated by the host server and never reused.
type RequestID string

// Origin tells where a request span got its parent from.
type Origin string

const (
	// OriginRoot spans start a new trace.
	OriginRoot Origin = "root"

	// OriginPropagated spans continue a trace received in the request headers.
	OriginPropagated Origin = "propagated"

	// OriginChild spans belong to a sub-request and are children of the main request's span.
	OriginChild Origin = "child"

	// OriginSynthesized spans were started by End because Begin never ran.
	OriginSynthesized Origin = "synthesized"
)

// Request is the tracker's view of a request.
//
// The fields up to Header are read by Begin. The late-bound fields are only
// known once the response is final and are read by End; empty values are not
// tagged.
type Request struct {
	ID     RequestID
	MainID RequestID // set for sub-requests

	Method       string
	URI          string
	RequestLine  string // e.g. "GET /index.html?x=1 HTTP/1.1"
	ClientAddr   string
	AuthType     string
	ServerConfig string

	// Header holds the inbound headers. Begin reads propagation headers from
	// it and writes the started span's context back into it.
	Header http.Header

	LogID    string
	Handler  string
	Filename string
	Hostname string
	Status   int
}

// spanName returns the request line without its query string, falling back
// to "METHOD URI".
func (r *Request) spanName() string {
	if r.RequestLine == "" {
		return strings.TrimSpace(r.Method + " " + stripQuery(r.URI))
	}

	parts := strings.SplitN(r.RequestLine, " ", 3)
	if len(parts) >= 2 {
		parts[1] = stripQuery(parts[1])
	}
	return strings.Join(parts, " ")
}

func stripQuery(target string) string {
	path, _, _ := strings.Cut(target, "?")
	return path
}
