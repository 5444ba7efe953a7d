package webserver

import "github.com/psidex/arat/internal/graphs"

// Message types sent to the dashboard over the websocket.
const (
	typeGraph = "graph"
	typeError = "error"
)

// limitRequest is what the dashboard sends whenever the slider moves.
type limitRequest struct {
	Limit int `json:"limit"`
}

// graphMessage carries a freshly loaded graph. It is also the /api/graph body.
type graphMessage struct {
	Type      string        `json:"type"`
	Limit     int           `json:"limit"`
	Nodes     []graphs.Node `json:"nodes"`
	Edges     []graphs.Edge `json:"edges"`
	NodeCount int           `json:"nodeCount"`
}

func newGraphMessage(limit int, g *graphs.Graph) graphMessage {
	return graphMessage{
		Type:      typeGraph,
		Limit:     limit,
		Nodes:     g.Nodes,
		Edges:     g.Edges,
		NodeCount: len(g.Nodes),
	}
}

type errorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func newErrorMessage(err error) errorMessage {
	return errorMessage{Type: typeError, Error: err.Error()}
}
