package vis

import (
	"html/template"
	"io"

	"github.com/psidex/arat/internal/graphs"
)

// Vis defines a Renderer that writes a standalone HTML page drawing the graph with
// vis-network.
type Vis struct {
	Title   string
	Options Options
}

var _ graphs.Renderer = Vis{}

func NewVis() Vis {
	return Vis{
		Title:   "ARAT Visualizer",
		Options: DefaultOptions(),
	}
}

func (Vis) Extension() string {
	return ".html"
}

func (v Vis) Render(w io.Writer, g *graphs.Graph) error {
	return page.Execute(w, struct {
		Title   string
		Width   template.CSS
		Height  template.CSS
		Graph   *graphs.Graph
		Options map[string]any
	}{
		Title:   v.Title,
		Width:   template.CSS(v.Options.Width),
		Height:  template.CSS(v.Options.Height),
		Graph:   g,
		Options: v.Options.NetworkOptions(),
	})
}
