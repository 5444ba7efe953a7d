package graphs

import (
	. "github.com/psidex/arat/internal/lib"
)

// Node is a single visual node. IDs are unique within one Graph.
type Node struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Size  int    `json:"size"`
	Color string `json:"color"`
	Title string `json:"title,omitempty"`
	// Group is the kind of node, nodes of one group share a legend entry. It is
	// also vis-network's group attribute.
	Group string `json:"group,omitempty"`
}

// Edge is a directed visual edge between two node IDs of the same Graph.
type Edge struct {
	Source string `json:"from"`
	Target string `json:"to"`
	Label  string `json:"label"`
}

// Graph is built from scratch for every render and thrown away afterwards.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func NewGraph() *Graph {
	return &Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}
}

// Empty reports whether there is nothing to draw.
func (g *Graph) Empty() bool {
	return len(g.Nodes) == 0
}

// Builder accumulates a Graph, dropping nodes whose ID has already been added.
// Edges are never de-duplicated.
type Builder struct {
	graph     *Graph
	seenNodes Set[string]
}

func NewBuilder() *Builder {
	return &Builder{
		graph:     NewGraph(),
		seenNodes: NewSet[string](),
	}
}

// AddNode appends n unless a node with the same ID exists, and reports whether it
// was appended.
func (b *Builder) AddNode(n Node) bool {
	if !b.seenNodes.Insert(n.ID) {
		return false
	}
	b.graph.Nodes = append(b.graph.Nodes, n)
	return true
}

func (b *Builder) AddEdge(e Edge) {
	b.graph.Edges = append(b.graph.Edges, e)
}

// Graph returns the graph built so far. The Builder should not be used afterwards.
func (b *Builder) Graph() *Graph {
	return b.graph
}
