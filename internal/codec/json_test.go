package codec

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"netcanvas/internal/domain"
)

// nodeView is a comparable projection of a node
type nodeView struct {
	ID          int
	X, Y        float64
	Status      string
	Kind        domain.Kind
	Connections int
	Neighbors   []int
}

func viewOf(g *domain.Graph) []nodeView {
	var out []nodeView
	for _, n := range g.Nodes() {
		out = append(out, nodeView{
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Status:      n.Status,
			Kind:        n.Kind,
			Connections: n.ConnectionCount(),
			Neighbors:   n.Neighbors(),
		})
	}
	return out
}

var neighborSetOpt = cmpopts.SortSlices(func(a, b int) bool { return a < b })

// sampleGraph builds 3 nodes and 2 edges: 1(router)-2(pc), 1-3(pc)
func sampleGraph(t *testing.T) *domain.Graph {
	t.Helper()
	g := domain.NewGraph()
	require.NoError(t, g.AddNode(domain.NewNode(1, domain.KindRouter, 100, 100)))
	require.NoError(t, g.AddNode(domain.NewNode(2, domain.KindPC, 250.5, 100)))
	pc := domain.NewNode(3, domain.KindPC, 100, 260.25)
	pc.Status = "maintenance"
	require.NoError(t, g.AddNode(pc))
	require.NoError(t, g.AddEdge(1, 3))
	require.NoError(t, g.AddEdge(1, 2))
	return g
}

func TestJSONCodecRoundTrip(t *testing.T) {
	c := NewJSONCodec(nil)
	original := sampleGraph(t)

	var buf bytes.Buffer
	require.NoError(t, c.Encode(&buf, original))

	restored := domain.NewGraph()
	require.NoError(t, c.Decode(&buf, restored))

	require.NoError(t, restored.Validate())
	if diff := cmp.Diff(viewOf(original), viewOf(restored), neighborSetOpt); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestJSONCodecEncode(t *testing.T) {
	t.Run("writes records with 2-space indent", func(t *testing.T) {
		g := domain.NewGraph()
		require.NoError(t, g.AddNode(domain.NewNode(1, domain.KindRouter, 0, 0)))

		var buf bytes.Buffer
		require.NoError(t, NewJSONCodec(nil).Encode(&buf, g))

		want := `[
  {
    "id": 1,
    "x": 0,
    "y": 0,
    "status": "active",
    "connections": 0,
    "connectedTo": [],
    "type": "router"
  }
]
`
		assert.Equal(t, want, buf.String())
	})

	t.Run("empty graph is an empty array", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewJSONCodec(nil).Encode(&buf, domain.NewGraph()))
		assert.Equal(t, "[]\n", buf.String())
	})

	t.Run("neighbors are written in ascending order", func(t *testing.T) {
		g := sampleGraph(t)

		records := Records(g)

		assert.Equal(t, []int{2, 3}, records[0].ConnectedTo)
		assert.Equal(t, 2, records[0].Connections)
	})

	t.Run("repeated saves are byte identical", func(t *testing.T) {
		g := sampleGraph(t)
		var a, b bytes.Buffer
		require.NoError(t, NewJSONCodec(nil).Encode(&a, g))
		require.NoError(t, NewJSONCodec(nil).Encode(&b, g))
		assert.Equal(t, a.String(), b.String())
	})
}

func TestJSONCodecDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid syntax", `[{"id": 1,`},
		{"empty input", ``},
		{"top-level object", `{"id": 1}`},
		{"top-level null", `null`},
		{"missing field", `[{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 0, "type": "pc"}]`},
		{"null neighbors", `[{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": null, "type": "pc"}]`},
		{"unknown type", `[{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "switch"}]`},
		{"non-positive id", `[{"id": 0, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc"}]`},
		{"fractional id", `[{"id": 1.5, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc"}]`},
		{"null element", `[null]`},
		{"duplicate id", `[
			{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc"},
			{"id": 1, "x": 90, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc"}]`},
		{"trailing data", `[] x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := sampleGraph(t)
			before := viewOf(g)

			err := NewJSONCodec(nil).Decode(strings.NewReader(tt.doc), g)

			var malformed *domain.MalformedDataError
			require.True(t, errors.As(err, &malformed), "expected MalformedDataError, got %v", err)
			assert.Equal(t, before, viewOf(g), "graph must be untouched")
		})
	}
}

func TestJSONCodecCorruptedSaveLeavesGraphUnaffected(t *testing.T) {
	g := sampleGraph(t)
	before := viewOf(g)

	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec(nil).Encode(&buf, g))
	corrupted := strings.Replace(buf.String(), `"connectedTo": [`, `"connectedTo": [[`, 1)

	err := NewJSONCodec(nil).Decode(strings.NewReader(corrupted), g)

	var malformed *domain.MalformedDataError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, before, viewOf(g))
	assert.Len(t, g.Nodes(), 3)
}

func TestJSONCodecDecode(t *testing.T) {
	t.Run("skips edges to ids not in the document", func(t *testing.T) {
		doc := `[
			{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 2, "connectedTo": [2, 9], "type": "router"},
			{"id": 2, "x": 200, "y": 0, "status": "active", "connections": 1, "connectedTo": [1], "type": "pc"}
		]`
		g := domain.NewGraph()

		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(doc), g))

		require.NoError(t, g.Validate())
		assert.Equal(t, 2, g.Len())
		assert.Equal(t, []int{2}, g.Neighbors(1))
		n, _ := g.Node(1)
		assert.Equal(t, 1, n.ConnectionCount())
	})

	t.Run("edge referencing a later node is restored", func(t *testing.T) {
		doc := `[
			{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 1, "connectedTo": [3], "type": "pc"},
			{"id": 3, "x": 200, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc"}
		]`
		g := domain.NewGraph()

		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(doc), g))

		assert.True(t, g.Connected(3, 1))
		n, _ := g.Node(3)
		assert.Equal(t, 1, n.ConnectionCount())
	})

	t.Run("derives counts from edges, not the recorded field", func(t *testing.T) {
		doc := `[{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 7, "connectedTo": [1], "type": "router"}]`
		g := domain.NewGraph()

		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(doc), g))

		n, _ := g.Node(1)
		assert.Equal(t, 0, n.ConnectionCount())
	})

	t.Run("replaces previous contents", func(t *testing.T) {
		g := sampleGraph(t)
		doc := `[{"id": 5, "x": 1, "y": 2, "status": "down", "connections": 0, "connectedTo": [], "type": "pc"}]`

		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(doc), g))

		require.Equal(t, 1, g.Len())
		n, ok := g.Node(5)
		require.True(t, ok)
		assert.Equal(t, "down", n.Status)
		assert.Equal(t, domain.KindPC, n.Kind)
	})

	t.Run("empty array clears the graph", func(t *testing.T) {
		g := sampleGraph(t)
		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(`[]`), g))
		assert.Equal(t, 0, g.Len())
	})

	t.Run("unknown fields are ignored", func(t *testing.T) {
		doc := `[{"id": 1, "x": 0, "y": 0, "status": "active", "connections": 0, "connectedTo": [], "type": "pc", "label": "desk"}]`
		g := domain.NewGraph()
		require.NoError(t, NewJSONCodec(nil).Decode(strings.NewReader(doc), g))
		assert.Equal(t, 1, g.Len())
	})
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		wantErr bool
	}{
		{"network_graph.json", "json", false},
		{"topo.YAML", "yaml", false},
		{"topo.yml", "yaml", false},
		{"inventory", "", true},
		{"topo.xml", "", true},
	}

	for _, tt := range tests {
		c, err := ForPath(tt.path)
		if tt.wantErr {
			assert.Error(t, err, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.format, c.Format())
	}
}
