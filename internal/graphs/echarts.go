package graphs

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

// ECharts defines a Renderer that renders a go-echarts HTML page. Nodes are grouped
// into one category per Group, nodes without one fall back to their label.
type ECharts struct {
	PageTitle string
	Height    string
	Width     string
}

var _ Renderer = ECharts{}

func NewECharts() ECharts {
	return ECharts{
		PageTitle: "ARAT Visualizer",
		Height:    "100vh",
		Width:     "100vw",
	}
}

func (ECharts) Extension() string {
	return ".html"
}

func (e ECharts) Render(w io.Writer, g *Graph) error {
	page := components.NewPage()
	page.SetPageTitle(e.PageTitle)
	page.AddCharts(e.graphBase(g))
	return page.Render(w)
}

func (e ECharts) graphBase(g *Graph) *charts.Graph {
	categoryIndex := map[string]int{}
	categories := []*opts.GraphCategory{}
	nodeIndex := make(map[string]int, len(g.Nodes))
	names := displayNames(g.Nodes)

	nodes := make([]opts.GraphNode, 0, len(g.Nodes))
	for i, n := range g.Nodes {
		nodeIndex[n.ID] = i

		kind := n.Group
		if kind == "" {
			kind = n.Label
		}
		idx, ok := categoryIndex[kind]
		if !ok {
			idx = len(categories)
			categoryIndex[kind] = idx
			categories = append(categories, &opts.GraphCategory{Name: kind})
		}

		node := opts.GraphNode{
			Name:       names[i],
			Category:   idx,
			SymbolSize: n.Size,
			ItemStyle:  &opts.ItemStyle{Color: n.Color},
		}
		if n.Title != "" {
			node.Tooltip = &opts.Tooltip{
				Show:      opts.Bool(true),
				Formatter: types.FuncStr(n.Title),
			}
		}
		nodes = append(nodes, node)
	}

	// Names are for display and may repeat across graphs, links point at indexes.
	links := make([]opts.GraphLink, 0, len(g.Edges))
	for _, edge := range g.Edges {
		source, okSource := nodeIndex[edge.Source]
		target, okTarget := nodeIndex[edge.Target]
		if !okSource || !okTarget {
			continue
		}
		links = append(links, opts.GraphLink{
			Source: source,
			Target: target,
		})
	}

	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: e.PageTitle,
			Height:    e.Height,
			Width:     e.Width,
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
	)
	graph.AddSeries(
		"graph",
		nodes,
		links,
		charts.WithGraphChartOpts(
			opts.GraphChart{
				Layout:     "force",
				Draggable:  opts.Bool(true),
				Roam:       opts.Bool(true),
				Force:      &opts.GraphForce{Repulsion: 400},
				Categories: categories,
			},
		),
		charts.WithLabelOpts(opts.Label{
			Show:     opts.Bool(true),
			Color:    "black",
			Position: "top",
		}),
	)
	return graph
}

// displayNames gives every node a unique echarts name. A label used by a single
// node is shown as is, repeated labels get the node ID appended.
func displayNames(nodes []Node) []string {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.Label]++
	}

	names := make([]string, len(nodes))
	for i, n := range nodes {
		switch {
		case n.Label == "":
			names[i] = n.ID
		case counts[n.Label] == 1:
			names[i] = n.Label
		default:
			names[i] = fmt.Sprintf("%s (%s)", n.Label, n.ID)
		}
	}
	return names
}
