package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netcanvas/internal/repository/sqlite"
	"netcanvas/internal/service"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ws := service.NewWorkspace(service.NewEventBus(), store, service.WorkspaceConfig{Width: 400, Height: 300})
	mux := http.NewServeMux()
	NewCanvasHandler(ws, nil).Register(mux)
	return Chain(mux, Recover, CORS, Logger)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func setMode(t *testing.T, h http.Handler, mode string) {
	t.Helper()
	rec := do(t, h, http.MethodPut, "/api/mode", `{"mode": "`+mode+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func press(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodPost, "/api/pointer", body)
}

func TestModeEndpoints(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/mode", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "navigate", decode[ModeResponse](t, rec).Mode.String())

	setMode(t, h, "router")
	assert.Equal(t, "place-router", decode[ModeResponse](t, do(t, h, http.MethodGet, "/api/mode", "")).Mode.String())

	rec = do(t, h, http.MethodPut, "/api/mode", `{"mode": "erase"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid mode", decode[ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodPut, "/api/mode", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPointerEndpoint(t *testing.T) {
	h := newTestServer(t)

	setMode(t, h, "place-router")
	rec := press(t, h, `{"kind": "press", "target": "background", "position": {"x": 100, "y": 100}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode[service.State](t, rec)
	require.Len(t, state.Nodes, 1)
	assert.Equal(t, "router", state.Nodes[0].Type)

	rec = press(t, h, `{"kind": "press", "target": "background", "position": {"x": 110, "y": 100}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Placement rejected", decode[ErrorResponse](t, rec).Error)

	setMode(t, h, "place-pc")
	require.Equal(t, http.StatusOK, press(t, h, `{"kind": "press", "target": "background", "position": {"x": 300, "y": 100}}`).Code)

	setMode(t, h, "connect")
	require.Equal(t, http.StatusOK, press(t, h, `{"kind": "press", "target": "marker", "nodeId": 1}`).Code)
	rec = press(t, h, `{"kind": "press", "target": "marker", "nodeId": 2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	state = decode[service.State](t, rec)
	require.Len(t, state.Edges, 1)
	assert.Equal(t, []int{2}, state.Nodes[0].ConnectedTo)

	rec = press(t, h, `{"kind": "press", "target": "marker", "nodeId": 9}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPointerValidation(t *testing.T) {
	h := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `press`},
		{"missing kind", `{"target": "background"}`},
		{"unknown kind", `{"kind": "scroll"}`},
		{"unknown target", `{"kind": "press", "target": "toolbar"}`},
		{"marker without node", `{"kind": "press", "target": "marker"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, press(t, h, tt.body).Code)
		})
	}
}

func TestPointerBodyLimit(t *testing.T) {
	h := newTestServer(t)
	body := `{"kind": "press", "target": "background", "status": "` + strings.Repeat("x", maxRequestBytes) + `"}`

	rec := press(t, h, body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, "Request too large", decode[ErrorResponse](t, rec).Error)
	assert.Empty(t, decode[service.State](t, do(t, h, http.MethodGet, "/api/graph", "")).Nodes)
}

func TestGraphIncludesStyledLines(t *testing.T) {
	h := newTestServer(t)
	doc := `[
  {"id": 1, "x": 0, "y": 0, "status": "active", "connections": 1, "connectedTo": [2], "type": "router"},
  {"id": 2, "x": 100, "y": 0, "status": "active", "connections": 1, "connectedTo": [1], "type": "pc"}
]`
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/import/json", doc).Code)

	state := decode[service.State](t, do(t, h, http.MethodGet, "/api/graph", ""))

	require.Len(t, state.Lines, 1)
	assert.Equal(t, "#ffa500", state.Lines[0].Color)
	assert.InDelta(t, 20, state.Lines[0].From.X, 1e-9)
	assert.InDelta(t, 80, state.Lines[0].To.X, 1e-9)
}

func TestGetNode(t *testing.T) {
	h := newTestServer(t)
	setMode(t, h, "place-pc")
	press(t, h, `{"kind": "press", "target": "background", "position": {"x": 12.5, "y": 6}}`)

	rec := do(t, h, http.MethodGet, "/api/nodes/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decode[service.NodeDetail](t, rec)
	assert.Equal(t, 1, detail.Node.ID)
	assert.Contains(t, detail.Info, "PC Information")
	assert.Contains(t, detail.Info, "Location: (12.50, 6.00)")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/nodes/7", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/api/nodes/abc", "").Code)
}

func TestImportExport(t *testing.T) {
	h := newTestServer(t)
	doc := `[
  {"id": 1, "x": 0, "y": 0, "status": "active", "connections": 1, "connectedTo": [2], "type": "router"},
  {"id": 2, "x": 100, "y": 0, "status": "active", "connections": 1, "connectedTo": [1], "type": "pc"}
]`

	rec := do(t, h, http.MethodPost, "/api/import/json", doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode[service.State](t, rec).Edges, 1)

	rec = do(t, h, http.MethodGet, "/api/export/json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=network_graph.json", rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "\n  {\n    \"id\": 1,")

	rec = do(t, h, http.MethodGet, "/api/export/yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "connectedTo:")

	rec = do(t, h, http.MethodGet, "/api/export/png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = do(t, h, http.MethodPost, "/api/import/yaml", "id: 1\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Malformed document", decode[ErrorResponse](t, rec).Error)

	rec = do(t, h, http.MethodGet, "/api/graph", "")
	assert.Len(t, decode[service.State](t, rec).Nodes, 2, "failed import keeps the graph")
}

func TestImportNmap(t *testing.T) {
	h := newTestServer(t)
	scan := `<nmaprun><host><status state="up"/><address addr="192.168.0.1" addrtype="ipv4"/></host>` +
		`<host><status state="up"/><address addr="192.168.0.5" addrtype="ipv4"/></host></nmaprun>`

	rec := do(t, h, http.MethodPost, "/api/import/nmap", scan)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	state := decode[service.State](t, rec)
	assert.Len(t, state.Nodes, 2)
	assert.Len(t, state.Edges, 1)
}

func TestSnapshotEndpoints(t *testing.T) {
	h := newTestServer(t)
	setMode(t, h, "place-router")
	press(t, h, `{"kind": "press", "target": "background", "position": {"x": 50, "y": 50}}`)

	rec := do(t, h, http.MethodPut, "/api/snapshots/home", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/snapshots", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "home", list[0]["name"])
	assert.Equal(t, float64(1), list[0]["node_count"])

	do(t, h, http.MethodPost, "/api/import/json", "[]")
	rec = do(t, h, http.MethodPost, "/api/snapshots/home/load", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[service.State](t, rec).Nodes, 1)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/api/snapshots/home", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodDelete, "/api/snapshots/home", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/api/snapshots/home/load", "").Code)
}

func TestMiddleware(t *testing.T) {
	t.Run("CORS preflight short-circuits", func(t *testing.T) {
		h := newTestServer(t)

		rec := do(t, h, http.MethodOptions, "/api/graph", "")

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Recover converts panics to 500", func(t *testing.T) {
		h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			panic("boom")
		}), Recover, Logger)

		rec := do(t, h, http.MethodGet, "/", "")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal server error", decode[ErrorResponse](t, rec).Error)
	})

	t.Run("Chain applies the first middleware outermost", func(t *testing.T) {
		var order []string
		mark := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}
		h := Chain(http.NotFoundHandler(), mark("a"), mark("b"))

		do(t, h, http.MethodGet, "/", "")

		assert.Equal(t, []string{"a", "b"}, order)
	})

	t.Run("Logger keeps the writer flushable", func(t *testing.T) {
		var flushable bool
		h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, flushable = w.(http.Flusher)
		}))

		do(t, h, http.MethodGet, "/events", "")

		assert.True(t, flushable)
	})
}
