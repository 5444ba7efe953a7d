package vis

// Options mirror the knobs of the dashboard graph widget.
type Options struct {
	Width          string
	Height         string
	Directed       bool
	Hover          bool
	HighlightColor string
}

// DefaultOptions is the dashboard configuration: full width, 600px tall, directed
// edges and hover highlighting. Nodes never collapse into clusters.
func DefaultOptions() Options {
	return Options{
		Width:          "100%",
		Height:         "600px",
		Directed:       true,
		Hover:          true,
		HighlightColor: "#F7A7A6",
	}
}

// NetworkOptions is the options object handed to `new vis.Network(...)`.
func (o Options) NetworkOptions() map[string]any {
	highlight := map[string]any{
		"background": o.HighlightColor,
		"border":     o.HighlightColor,
	}

	return map[string]any{
		"autoResize": true,
		"nodes": map[string]any{
			"shape": "dot",
			"color": map[string]any{
				"highlight": highlight,
				"hover":     highlight,
			},
		},
		"edges": map[string]any{
			"arrows": map[string]any{
				"to": map[string]any{"enabled": o.Directed},
			},
			"color": map[string]any{
				"highlight": o.HighlightColor,
				"hover":     o.HighlightColor,
			},
			"font": map[string]any{"align": "middle"},
		},
		"interaction": map[string]any{
			"hover":                o.Hover,
			"hoverConnectedEdges":  o.Hover,
			"selectConnectedEdges": o.Hover,
		},
		"physics": map[string]any{
			"enabled": true,
			"solver":  "barnesHut",
			"barnesHut": map[string]any{
				"gravitationalConstant": -10_000,
			},
		},
	}
}
