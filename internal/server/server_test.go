package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowgrid-dev/flowgrid/pkg/cache"
	gio "github.com/flowgrid-dev/flowgrid/pkg/io"
	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

func newTestServer(t *testing.T, c cache.Cache) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	srv := httptest.NewServer(New(logger, c, layout.DefaultOptions()).Handler())
	t.Cleanup(srv.Close)
	return srv
}

const sampleRequest = `{
  "graph": {
    "nodes": [
      {"id": "a", "width": 100, "height": 40},
      {"id": "b", "width": 100, "height": 40},
      {"id": "c", "width": 100, "height": 40}
    ],
    "edges": [
      {"from": "a", "to": "b"},
      {"from": "b", "to": "c"},
      {"from": "c", "to": "a"}
    ]
  }
}`

func postLayout(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/layout", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestLayout_Success(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postLayout(t, srv, sampleRequest)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc gio.LayoutDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))

	assert.Len(t, doc.Nodes, 3)
	assert.Len(t, doc.Edges, 3)
	for _, e := range doc.Edges {
		assert.GreaterOrEqual(t, len(e.Points), 2, "edge %s->%s", e.From, e.To)
	}
}

func TestLayout_OptionsOverride(t *testing.T) {
	srv := newTestServer(t, nil)

	tight := `{
  "graph": {"nodes": [{"id": "a"}, {"id": "b"}], "edges": [{"from": "a", "to": "b"}]},
  "options": {"x_margin": 4, "y_margin": 2, "row_margin": 8, "col_margin": 8}
}`
	resp := postLayout(t, srv, tight)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc gio.LayoutDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Len(t, doc.Nodes, 2)
}

func TestLayout_PartialOptionsKeepDefaults(t *testing.T) {
	srv := newTestServer(t, nil)

	base := postLayout(t, srv, sampleRequest)
	require.Equal(t, http.StatusOK, base.StatusCode)
	var want gio.LayoutDocument
	require.NoError(t, json.NewDecoder(base.Body).Decode(&want))

	// x_margin restates its default; the other margins are absent and
	// must keep theirs rather than collapse to zero.
	patched := `{
  "graph": {
    "nodes": [
      {"id": "a", "width": 100, "height": 40},
      {"id": "b", "width": 100, "height": 40},
      {"id": "c", "width": 100, "height": 40}
    ],
    "edges": [
      {"from": "a", "to": "b"},
      {"from": "b", "to": "c"},
      {"from": "c", "to": "a"}
    ]
  },
  "options": {"x_margin": 10}
}`
	resp := postLayout(t, srv, patched)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got gio.LayoutDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, want, got)
}

func TestLayout_MalformedJSON(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postLayout(t, srv, "{graph")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var e struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	assert.NotEmpty(t, e.Error)
}

func TestLayout_UnknownEdgeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	bad := `{"graph": {"nodes": [{"id": "a"}], "edges": [{"from": "a", "to": "ghost"}]}}`
	resp := postLayout(t, srv, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayout_NegativeMargins(t *testing.T) {
	srv := newTestServer(t, nil)

	bad := `{
  "graph": {"nodes": [{"id": "a"}], "edges": []},
  "options": {"x_margin": -1}
}`
	resp := postLayout(t, srv, bad)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLayout_CacheRoundTrip(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := newTestServer(t, fc)

	first := postLayout(t, srv, sampleRequest)
	require.Equal(t, http.StatusOK, first.StatusCode)
	assert.Equal(t, "miss", first.Header.Get("X-Flowgrid-Cache"))

	var fresh gio.LayoutDocument
	require.NoError(t, json.NewDecoder(first.Body).Decode(&fresh))

	second := postLayout(t, srv, sampleRequest)
	require.Equal(t, http.StatusOK, second.StatusCode)
	assert.Equal(t, "hit", second.Header.Get("X-Flowgrid-Cache"))

	var cached gio.LayoutDocument
	require.NoError(t, json.NewDecoder(second.Body).Decode(&cached))
	assert.Equal(t, fresh, cached)
}

func TestLayout_DifferentOptionsMissCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	srv := newTestServer(t, fc)

	first := postLayout(t, srv, sampleRequest)
	require.Equal(t, "miss", first.Header.Get("X-Flowgrid-Cache"))

	wider := `{
  "graph": {
    "nodes": [
      {"id": "a", "width": 100, "height": 40},
      {"id": "b", "width": 100, "height": 40},
      {"id": "c", "width": 100, "height": 40}
    ],
    "edges": [
      {"from": "a", "to": "b"},
      {"from": "b", "to": "c"},
      {"from": "c", "to": "a"}
    ]
  },
  "options": {"x_margin": 20, "y_margin": 5, "row_margin": 16, "col_margin": 16}
}`
	second := postLayout(t, srv, wider)
	assert.Equal(t, "miss", second.Header.Get("X-Flowgrid-Cache"))
}

func TestLayout_RequestIDPropagated(t *testing.T) {
	srv := newTestServer(t, nil)

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/layout", bytes.NewBufferString(sampleRequest))
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "caller-supplied")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "caller-supplied", resp.Header.Get("X-Request-ID"))
}
