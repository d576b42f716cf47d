package httpd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/reqtrace/v1/observability"
)

// recordingModule records the hook calls it receives.
type recordingModule struct {
	mu        sync.Mutex
	initErr   error
	inits     int
	postRead  []*Record
	logged    []*Record
	seenByCtx []bool
}

func (m *recordingModule) Name() string { return "recording" }

func (m *recordingModule) ChildInit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inits++
	return m.initErr
}

type postReadKey struct{}

func (m *recordingModule) PostReadRequest(ctx context.Context, rec *Record) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.postRead = append(m.postRead, rec)
	return context.WithValue(ctx, postReadKey{}, rec.ID)
}

func (m *recordingModule) LogTransaction(ctx context.Context, rec *Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logged = append(m.logged, rec)
	m.seenByCtx = append(m.seenByCtx, ctx.Value(postReadKey{}) == rec.ID)
}

func newQuietLogger(t *testing.T) *MockLogger {
	ctrl := gomock.NewController(t)
	log := NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return log
}

func newTestServer(t *testing.T, cfg Config) (*Server, *recordingModule) {
	t.Helper()
	s := NewServer(cfg, newQuietLogger(t))
	m := &recordingModule{}
	s.Register(m)
	return s, m
}

func TestServeRunsHooksInOrder(t *testing.T) {
	s, m := newTestServer(t, Config{Name: "edge", Address: ":8081"})
	s.Handle("hello", "/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := RecordFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, rec.ID, r.Context().Value(postReadKey{}))
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/hello?x=1", nil)
	req.Host = "Example.COM:8081"
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, m.postRead, 1)
	require.Len(t, m.logged, 1)
	assert.True(t, m.seenByCtx[0])

	logged := m.logged[0]
	assert.Same(t, m.postRead[0], logged)
	assert.Equal(t, http.StatusAccepted, logged.Status)
	assert.Equal(t, "hello", logged.Handler)
	assert.Equal(t, "/hello", logged.URI)
	assert.Equal(t, "x=1", logged.Args)
	assert.Equal(t, "GET /hello?x=1 HTTP/1.1", logged.RequestLine)
	assert.Equal(t, "Bearer", logged.AuthType)
	assert.Equal(t, "example.com", logged.Hostname)
	assert.Equal(t, "192.0.2.1", logged.ClientIP)
	assert.Equal(t, "edge::8081", logged.ServerConfig)
	assert.Equal(t, logged.ID, logged.LogID)
	assert.Equal(t, logged.LogID, rec.Header().Get(DefaultRequestIDHeader))
	assert.Nil(t, logged.Main)
}

func TestInboundRequestIDBecomesLogID(t *testing.T) {
	s, m := newTestServer(t, Config{})
	s.Handle("hello", "/hello", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/hello", nil)
	req.Header.Set(DefaultRequestIDHeader, "abc-123")
	s.ServeHTTP(httptest.NewRecorder(), req)

	require.Len(t, m.logged, 1)
	assert.Equal(t, "abc-123", m.logged[0].LogID)
	assert.NotEqual(t, "abc-123", m.logged[0].ID)
}

func TestRejectedRequestsSkipPostReadRequest(t *testing.T) {
	cases := []struct {
		name   string
		method string
		target string
		status int
	}{
		{name: "unimplemented method", method: "PROPFIND", target: "/hello", status: http.StatusNotImplemented},
		{name: "dot dot segment", method: http.MethodGet, target: "/a/../../etc/passwd", status: http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, m := newTestServer(t, Config{})
			s.Handle("hello", "/hello", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatal("handler must not run")
			}))

			req := httptest.NewRequest(tc.method, "/hello", nil)
			req.URL.Path = tc.target
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			assert.Empty(t, m.postRead)
			require.Len(t, m.logged, 1)
			assert.Equal(t, tc.status, m.logged[0].Status)
			assert.Empty(t, m.logged[0].Handler)
		})
	}
}

func TestUnmatchedRouteIsNotFound(t *testing.T) {
	s, m := newTestServer(t, Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, m.postRead, 1)
	assert.Equal(t, http.StatusNotFound, m.logged[0].Status)
}

func TestHandlerPanicBecomes500(t *testing.T) {
	s, m := newTestServer(t, Config{})
	s.Handle("boom", "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, m.logged, 1)
	assert.Equal(t, http.StatusInternalServerError, m.logged[0].Status)
}

func TestServeFilesRecordsFilename(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "page.html"), []byte("hi"), 0o644))

	s, m := newTestServer(t, Config{})
	s.ServeFiles("static", "/static/", root)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/docs/page.html", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hi", rec.Body.String())
	require.Len(t, m.logged, 1)
	assert.Equal(t, filepath.Join(root, "docs", "page.html"), m.logged[0].Filename)
	assert.Equal(t, "static", m.logged[0].Handler)
}

func TestSubRequest(t *testing.T) {
	s, m := newTestServer(t, Config{})
	s.Handle("fragment", "/fragment", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Fragment", "yes")
		_, _ = io.WriteString(w, "fragment body")
	}))
	s.Handle("page", "/page", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp, err := s.SubRequest(r, http.MethodGet, "/fragment")
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Equal(t, "yes", resp.Header.Get("X-Fragment"))
		_, _ = fmt.Fprintf(w, "page with %s", resp.Body)
	}))

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/page", nil))

	assert.Equal(t, "page with fragment body", rec.Body.String())
	require.Len(t, m.logged, 2)

	sub, main := m.logged[0], m.logged[1]
	assert.Equal(t, "fragment", sub.Handler)
	assert.Equal(t, "page", main.Handler)
	assert.Same(t, main, sub.Main)
	assert.NotEqual(t, main.ID, sub.ID)
	assert.Equal(t, main.ClientIP, sub.ClientIP)
}

func TestSubRequestNeedsServedParent(t *testing.T) {
	s, _ := newTestServer(t, Config{})

	_, err := s.SubRequest(httptest.NewRequest(http.MethodGet, "/", nil), http.MethodGet, "/x")

	assert.ErrorIs(t, err, ErrNoMainRequest)
}

func TestObserverNotified(t *testing.T) {
	s, _ := newTestServer(t, Config{})
	var ops []observability.OperationContext
	s.WithObserver(observability.ObserverFunc(func(op observability.OperationContext) {
		ops = append(ops, op)
	}))
	s.Handle("hello", "/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hello", nil))
	s.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nothing", nil))

	require.Len(t, ops, 2)
	assert.Equal(t, "httpd", ops[0].Component)
	assert.Equal(t, "hello", ops[0].Resource)
	assert.Equal(t, "5xx", ops[0].SubResource)
	assert.Equal(t, "none", ops[1].Resource)
	assert.Equal(t, "4xx", ops[1].SubResource)
}

func TestChildInitError(t *testing.T) {
	s, m := newTestServer(t, Config{})
	m.initErr = errors.New("no backend")

	err := s.Start(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, m.initErr)
	assert.Empty(t, s.Addr())
}

func TestStartAndShutdown(t *testing.T) {
	s, m := newTestServer(t, Config{Address: "127.0.0.1:0"})
	s.Handle("hello", "/hello", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello")
	}))

	assert.ErrorIs(t, s.Shutdown(context.Background()), ErrNotStarted)

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, 1, m.inits)

	resp, err := http.Get("http://" + s.Addr() + "/hello")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "hello", string(body))
	assert.NotEmpty(t, resp.Header.Get(DefaultRequestIDHeader))

	require.NoError(t, s.Shutdown(context.Background()))
}

func TestRecordHelpers(t *testing.T) {
	assert.Equal(t, "10.0.0.1", clientIP("10.0.0.1:5555"))
	assert.Equal(t, "::1", clientIP("[::1]:80"))
	assert.Equal(t, "pipe", clientIP("pipe"))

	assert.Equal(t, "Basic", authType("Basic dXNlcjpwYXNz"))
	assert.Empty(t, authType(""))

	assert.Equal(t, "example.com", hostname("EXAMPLE.com:443"))
	assert.Equal(t, "::1", hostname("[::1]:8080"))
	assert.Empty(t, hostname(""))
}
