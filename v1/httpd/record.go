package httpd

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record holds the state of one request as it passes through the server,
// from header read to transaction log. Modules read it in their hooks;
// handlers reach it with RecordFromContext.
type Record struct {
	// ID is unique per request, sub-requests included.
	ID string

	// Main is the request a sub-request was issued from; nil otherwise.
	Main *Record

	Method      string
	URI         string // path, without query
	Args        string // raw query
	Protocol    string
	RequestLine string
	ClientIP    string
	AuthType    string // Authorization scheme, e.g. "Basic"
	Hostname    string

	// HeadersIn are the inbound request headers. Modules may add to them.
	HeadersIn http.Header

	// ServerConfig identifies the server definition that handles the request.
	ServerConfig string

	// Set while the request is handled.
	Handler  string
	Filename string
	LogID    string
	Status   int

	Start time.Time
}

type recordKey struct{}

// RecordFromContext returns the Record of the request being served.
func RecordFromContext(ctx context.Context) (*Record, bool) {
	rec, ok := ctx.Value(recordKey{}).(*Record)
	return rec, ok
}

func withRecord(ctx context.Context, rec *Record) context.Context {
	return context.WithValue(ctx, recordKey{}, rec)
}

func (s *Server) newRecord(r *http.Request, main *Record) *Record {
	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	rec := &Record{
		ID:           uuid.NewString(),
		Main:         main,
		Method:       r.Method,
		URI:          r.URL.Path,
		Args:         r.URL.RawQuery,
		Protocol:     r.Proto,
		RequestLine:  r.Method + " " + target + " " + r.Proto,
		ClientIP:     clientIP(r.RemoteAddr),
		AuthType:     authType(r.Header.Get("Authorization")),
		Hostname:     hostname(r.Host),
		HeadersIn:    r.Header,
		ServerConfig: s.serverConfig,
		Start:        time.Now(),
	}
	if rec.HeadersIn == nil {
		rec.HeadersIn = make(http.Header)
		r.Header = rec.HeadersIn
	}

	rec.LogID = r.Header.Get(s.cfg.RequestIDHeader)
	if rec.LogID == "" {
		rec.LogID = rec.ID
	}
	return rec
}

func clientIP(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func authType(authorization string) string {
	scheme, _, _ := strings.Cut(strings.TrimSpace(authorization), " ")
	return scheme
}

func hostname(host string) string {
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.Trim(host, "[]"))
}
