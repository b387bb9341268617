package admin

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/rebind/pkg/options/server"
	"github.com/kart-io/rebind/pkg/response"
	"github.com/kart-io/rebind/pkg/utils/json"
)

type fakeRebinder struct {
	names      []string
	rebindErr  error
	allErr     error
	rebound    bool
	allCalls   int
	lastRebind string
}

func (f *fakeRebinder) RebindAll() error {
	f.allCalls++
	return f.allErr
}

func (f *fakeRebinder) Rebind(name string) (bool, error) {
	f.lastRebind = name
	return f.rebound, f.rebindErr
}

func (f *fakeRebinder) Names() []string { return f.names }

func (f *fakeRebinder) IsRegistered(name string) bool {
	for _, n := range f.names {
		if n == name {
			return true
		}
	}
	return false
}

func newTestServer(rb Rebinder) *Server {
	opts := server.NewOptions()
	opts.Mode = gin.TestMode
	return NewServer(opts, rb)
}

func doRequest(t *testing.T, s *Server, method, path string) (*httptest.ResponseRecorder, *response.Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, &resp
}

func TestRebindAllEndpoint(t *testing.T) {
	rb := &fakeRebinder{names: []string{"cfg-a", "cfg-b"}}
	s := newTestServer(rb)

	w, resp := doRequest(t, s, http.MethodPost, "/admin/rebind")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, 1, rb.allCalls)
}

func TestRebindAllEndpointAggregatedFailure(t *testing.T) {
	rb := &fakeRebinder{
		names:  []string{"cfg-a"},
		allErr: errors.New("cfg-a: validate config for key \"cache\""),
	}
	s := newTestServer(rb)

	w, resp := doRequest(t, s, http.MethodPost, "/admin/rebind")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotZero(t, resp.Code)
	assert.Equal(t, 1, rb.allCalls)
}

func TestRebindOneEndpoint(t *testing.T) {
	rb := &fakeRebinder{names: []string{"cfg-a"}, rebound: true}
	s := newTestServer(rb)

	w, resp := doRequest(t, s, http.MethodPost, "/admin/rebind/cfg-a")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "cfg-a", rb.lastRebind)
}

func TestRebindOneEndpointNotFound(t *testing.T) {
	rb := &fakeRebinder{names: []string{"cfg-a"}}
	s := newTestServer(rb)

	w, resp := doRequest(t, s, http.MethodPost, "/admin/rebind/missing")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotZero(t, resp.Code)
	assert.Empty(t, rb.lastRebind, "rebind must not run for unknown components")
}

func TestListComponentsEndpoint(t *testing.T) {
	rb := &fakeRebinder{names: []string{"cfg-a", "cfg-b"}}
	s := newTestServer(rb)

	w, resp := doRequest(t, s, http.MethodGet, "/admin/components")

	assert.Equal(t, http.StatusOK, w.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 2, data["count"])
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(&fakeRebinder{})

	w, resp := doRequest(t, s, http.MethodGet, "/healthz")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
}

func TestRequestIDEchoed(t *testing.T) {
	s := newTestServer(&fakeRebinder{})

	req := httptest.NewRequest(http.MethodGet, "/admin/components", nil)
	req.Header.Set(HeaderXRequestID, "test-id-123")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, "test-id-123", w.Header().Get(HeaderXRequestID))

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test-id-123", resp.RequestID)
}

func TestStartBindFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	rb := &fakeRebinder{}
	opts := server.NewOptions()
	opts.Mode = gin.TestMode
	opts.Addr = ln.Addr().String()
	s := NewServer(opts, rb)

	err = s.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), opts.Addr)
}

func TestStartAndStop(t *testing.T) {
	rb := &fakeRebinder{}
	opts := server.NewOptions()
	opts.Mode = gin.TestMode
	opts.Addr = "127.0.0.1:0"
	s := NewServer(opts, rb)

	require.NoError(t, s.Start(context.Background()))

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))

	select {
	case err := <-s.Errors():
		t.Fatalf("unexpected serve error after shutdown: %v", err)
	default:
	}
}
