package graphology

import (
	"encoding/json"
	"io"
	"math"
	"strconv"

	"github.com/psidex/arat/internal/graphs"
)

// Graphology defines a Renderer that writes graphology serialized JSON, ready for
// sigma.js. Nodes are laid out on a circle so the client has a starting position to
// run its own layout from.
type Graphology struct{}

var _ graphs.Renderer = Graphology{}

func NewGraphology() Graphology {
	return Graphology{}
}

func (Graphology) Extension() string {
	return ".json"
}

func (Graphology) Render(w io.Writer, g *graphs.Graph) error {
	return json.NewEncoder(w).Encode(Serialize(g))
}

// Serialize converts g. Edge keys are their 1-based position in g.Edges, which keeps
// parallel edges apart since the graph is a multi graph.
func Serialize(g *graphs.Graph) *SerializedGraph {
	out := &SerializedGraph{
		Options: Options{Type: "directed", Multi: true, AllowSelfLoops: true},
		Nodes:   make([]Node, 0, len(g.Nodes)),
		Edges:   make([]Edge, 0, len(g.Edges)),
	}

	step := 0.0
	if len(g.Nodes) > 0 {
		step = 2 * math.Pi / float64(len(g.Nodes))
	}

	for i, n := range g.Nodes {
		angle := step * float64(i)
		out.Nodes = append(out.Nodes, Node{
			Key: n.ID,
			Attributes: NodeAttributes{
				X:     math.Cos(angle),
				Y:     math.Sin(angle),
				Size:  float64(n.Size),
				Label: n.Label,
				Color: n.Color,
				Title: n.Title,
			},
		})
	}

	for i, e := range g.Edges {
		out.Edges = append(out.Edges, Edge{
			Key:    strconv.Itoa(i + 1),
			Source: e.Source,
			Target: e.Target,
			Attributes: EdgeAttributes{
				Size:  2,
				Label: e.Label,
			},
		})
	}

	return out
}
