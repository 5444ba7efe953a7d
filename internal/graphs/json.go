package graphs

import (
	"encoding/json"
	"io"
)

// JSON defines a Renderer that writes the graph as indented {"nodes", "edges"} JSON.
type JSON struct{}

var _ Renderer = JSON{}

func (JSON) Extension() string {
	return ".json"
}

func (JSON) Render(w io.Writer, g *Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(g)
}
