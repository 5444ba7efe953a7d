package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/psidex/arat/internal/enrollment"
	"github.com/psidex/arat/internal/graphs"
	"github.com/psidex/arat/internal/graphs/vis"
	"github.com/psidex/arat/internal/lib"
)

type mockLoader struct {
	mock.Mock
}

func (m *mockLoader) Load(ctx context.Context, limit int) (*graphs.Graph, error) {
	args := m.Called(limit)
	g, _ := args.Get(0).(*graphs.Graph)
	return g, args.Error(1)
}

func (m *mockLoader) Student(ctx context.Context, id string) (*graphs.Graph, error) {
	args := m.Called(id)
	g, _ := args.Get(0).(*graphs.Graph)
	return g, args.Error(1)
}

func sampleGraph() *graphs.Graph {
	b := graphs.NewBuilder()
	b.AddNode(graphs.Node{ID: "s1", Label: enrollment.StudentLabel, Size: enrollment.StudentSize, Color: enrollment.StudentColor, Title: "Carrera: Eng"})
	b.AddNode(graphs.Node{ID: "g1", Label: "Math", Size: enrollment.GroupSize, Color: enrollment.GroupColor})
	b.AddNode(graphs.Node{ID: "g2", Label: "Physics", Size: enrollment.GroupSize, Color: enrollment.GroupColor})
	b.AddEdge(graphs.Edge{Source: "s1", Target: "g1", Label: enrollment.EnrollmentLabel})
	b.AddEdge(graphs.Edge{Source: "s1", Target: "g2", Label: enrollment.EnrollmentLabel})
	return b.Graph()
}

func newTestServer(t *testing.T, loader *mockLoader, health http.Handler) *httptest.Server {
	t.Helper()
	s := New(Options{
		Loader: loader,
		Bounds: enrollment.DefaultBounds(),
		Health: health,
		Vis:    vis.DefaultOptions(),
		Logger: lib.DiscardLogger(),
	})
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// findByID returns the element with the given id attribute.
func findByID(t *testing.T, doc *html.Node, id string) *html.Node {
	t.Helper()
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	require.NotNil(t, found, "element #%s", id)
	return found
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func parse(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestDashboardDefaults(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", enrollment.DefaultLimit).Return(sampleGraph(), nil).Once()
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	loader.AssertExpectations(t)

	doc := parse(t, body)
	slider := findByID(t, doc, "limit")
	assert.Equal(t, "range", attr(slider, "type"))
	assert.Equal(t, "10", attr(slider, "min"))
	assert.Equal(t, "500", attr(slider, "max"))
	assert.Equal(t, "1", attr(slider, "step"))
	assert.Equal(t, "50", attr(slider, "value"))

	assert.Contains(t, body, "<title>ARAT Visualizer</title>")
	assert.Contains(t, body, "Cantidad de relaciones a mostrar")
	assert.Contains(t, body, "Vista anonimizada de relaciones Académicas.")
	assert.Equal(t, "Nodos visualizados: 3", text(findByID(t, doc, "node-count")))
	assert.Equal(t, "Cargando grafo desde Neo4j...", text(findByID(t, doc, "spinner")))

	assert.False(t, hasAttr(findByID(t, doc, "graph"), "hidden"))
	assert.True(t, hasAttr(findByID(t, doc, "warning"), "hidden"))
	assert.True(t, hasAttr(findByID(t, doc, "error"), "hidden"))
	assert.Contains(t, body, `"from":"s1"`)
}

func TestDashboardLimitParameter(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", 120).Return(sampleGraph(), nil).Once()
	loader.On("Load", enrollment.MaxLimit).Return(sampleGraph(), nil).Once()
	srv := newTestServer(t, loader, nil)

	_, body := get(t, srv.URL+"/?limit=120")
	assert.Equal(t, "120", attr(findByID(t, parse(t, body), "limit"), "value"))

	_, body = get(t, srv.URL+"/?limit=100000")
	assert.Equal(t, "500", attr(findByID(t, parse(t, body), "limit"), "value"))

	loader.AssertExpectations(t)
}

func TestDashboardEmptyShowsWarning(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", enrollment.DefaultLimit).Return(graphs.NewGraph(), nil)
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	doc := parse(t, body)
	warning := findByID(t, doc, "warning")
	assert.False(t, hasAttr(warning, "hidden"))
	assert.Equal(t, "No se encontraron datos. ¿Ya ejecutaste el script de ingesta?", text(warning))
	assert.True(t, hasAttr(findByID(t, doc, "graph"), "hidden"))
	assert.Equal(t, "Nodos visualizados: 0", text(findByID(t, doc, "node-count")))
}

func TestDashboardErrors(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", enrollment.DefaultLimit).Return(nil, errors.New("connection refused"))
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	doc := parse(t, body)
	banner := findByID(t, doc, "error")
	assert.False(t, hasAttr(banner, "hidden"))
	assert.Contains(t, text(banner), "connection refused")
	assert.True(t, hasAttr(findByID(t, doc, "warning"), "hidden"))

	resp, body = get(t, srv.URL+"/?limit=lots")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, text(findByID(t, parse(t, body), "error")), "invalid limit")
}

func TestAPIGraph(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", 10).Return(sampleGraph(), nil).Once()
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/api/graph?limit=10")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var msg graphMessage
	require.NoError(t, json.Unmarshal([]byte(body), &msg))
	assert.Equal(t, typeGraph, msg.Type)
	assert.Equal(t, 10, msg.Limit)
	assert.Equal(t, 3, msg.NodeCount)
	assert.Len(t, msg.Edges, 2)
	loader.AssertExpectations(t)
}

func TestAPIErrors(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", enrollment.DefaultLimit).Return(nil, errors.New("boom"))
	loader.On("Student", "missing").Return(nil, fmt.Errorf("student %q: %w", "missing", enrollment.ErrNotFound))
	loader.On("Student", "broken").Return(nil, errors.New("boom"))
	srv := newTestServer(t, loader, nil)

	tests := []struct {
		path   string
		status int
		error  string
	}{
		{"/api/graph?limit=abc", http.StatusBadRequest, "Invalid limit"},
		{"/api/graph", http.StatusInternalServerError, "Failed to load graph"},
		{"/export/echarts?limit=1.5", http.StatusBadRequest, "Invalid limit"},
		{"/api/students/missing", http.StatusNotFound, "Student not found"},
		{"/api/students/broken", http.StatusInternalServerError, "Failed to load student"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, srv.URL+tt.path)
			assert.Equal(t, tt.status, resp.StatusCode)

			var e ErrorResponse
			require.NoError(t, json.Unmarshal([]byte(body), &e))
			assert.Equal(t, tt.error, e.Error)
			assert.NotEmpty(t, e.Details)
		})
	}
}

func TestAPIStudent(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Student", "s1").Return(sampleGraph(), nil)
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/api/students/s1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var g graphs.Graph
	require.NoError(t, json.Unmarshal([]byte(body), &g))
	assert.Equal(t, sampleGraph(), &g)
}

func TestExportECharts(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", 25).Return(sampleGraph(), nil)
	srv := newTestServer(t, loader, nil)

	resp, body := get(t, srv.URL+"/export/echarts?limit=25")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "echarts")
}

func TestMetricsAndHealth(t *testing.T) {
	healthy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	srv := newTestServer(t, &mockLoader{}, healthy)

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "arat_websocket_sessions")

	resp, _ = get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	noHealth := newTestServer(t, &mockLoader{}, nil)
	resp, _ = get(t, noHealth.URL+"/healthz")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebsocketSession(t *testing.T) {
	loader := &mockLoader{}
	loader.On("Load", 10).Return(sampleGraph(), nil).Once()
	loader.On("Load", enrollment.DefaultLimit).Return(graphs.NewGraph(), nil).Once()
	loader.On("Load", enrollment.MaxLimit).Return(nil, errors.New("query timed out")).Once()
	srv := newTestServer(t, loader, nil)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.Close()

	roundTrip := func(req string) map[string]any {
		t.Helper()
		require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte(req)))
		var reply map[string]any
		require.NoError(t, c.ReadJSON(&reply))
		return reply
	}

	reply := roundTrip(`{"limit": 10}`)
	assert.Equal(t, "graph", reply["type"])
	assert.EqualValues(t, 10, reply["limit"])
	assert.EqualValues(t, 3, reply["nodeCount"])
	assert.Len(t, reply["edges"], 2)

	reply = roundTrip(`{}`)
	assert.Equal(t, "graph", reply["type"])
	assert.EqualValues(t, 0, reply["nodeCount"])
	assert.Equal(t, []any{}, reply["nodes"])

	reply = roundTrip(`{"limit": 9999}`)
	assert.Equal(t, "error", reply["type"])
	assert.Equal(t, "query timed out", reply["error"])

	reply = roundTrip(`{"limit": "many"}`)
	assert.Equal(t, "error", reply["type"])
	assert.Contains(t, reply["error"], "invalid limit")

	reply = roundTrip(`not json`)
	assert.Equal(t, "error", reply["type"])

	loader.AssertExpectations(t)
}
