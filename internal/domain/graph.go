package domain

import (
	"fmt"
	"slices"
)

// Graph is the topology: nodes keyed by id with symmetric adjacency.
// Insertion order is preserved so serialization is deterministic.
type Graph struct {
	nodes map[int]*Node
	order []int
}

// Edge is an unordered pair of connected node ids with A < B
type Edge struct {
	A int `json:"a"`
	B int `json:"b"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes: make(map[int]*Node),
		order: make([]int, 0),
	}
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.order)
}

// NextID returns the id for the next placed node: node count + 1, advanced past
// any id already taken (possible after loading a document with sparse ids).
func (g *Graph) NextID() int {
	id := len(g.order) + 1
	for {
		if _, ok := g.nodes[id]; !ok {
			return id
		}
		id++
	}
}

// AddNode inserts a node. Any neighbors on the given node are ignored; edges are
// only created through AddEdge.
func (g *Graph) AddNode(node Node) error {
	if _, ok := g.nodes[node.ID]; ok {
		return &DuplicateIDError{ID: node.ID}
	}
	node.neighbors = nil
	g.nodes[node.ID] = &node
	g.order = append(g.order, node.ID)
	return nil
}

// AddEdge connects two nodes. Self loops and existing edges are no-ops.
func (g *Graph) AddEdge(a, b int) error {
	na, ok := g.nodes[a]
	if !ok {
		return &UnknownNodeError{ID: a}
	}
	nb, ok := g.nodes[b]
	if !ok {
		return &UnknownNodeError{ID: b}
	}
	if a == b || na.HasNeighbor(b) {
		return nil
	}
	na.neighbors = append(na.neighbors, b)
	nb.neighbors = append(nb.neighbors, a)
	return nil
}

// Connected reports whether an edge exists between a and b
func (g *Graph) Connected(a, b int) bool {
	n, ok := g.nodes[a]
	return ok && n.HasNeighbor(b)
}

// Node returns a copy of the node with the given id
func (g *Graph) Node(id int) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Neighbors returns the neighbor ids of a node in insertion order, or nil if absent
func (g *Graph) Neighbors(id int) []int {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return n.Neighbors()
}

// Nodes returns a snapshot of all nodes in insertion order
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].clone())
	}
	return out
}

// Edges returns every edge once, ordered by the insertion order of the lower
// endpoint's node and then by that node's neighbor order
func (g *Graph) Edges() []Edge {
	var edges []Edge
	seen := make(map[Edge]struct{})
	for _, id := range g.order {
		for _, other := range g.nodes[id].neighbors {
			e := Edge{A: min(id, other), B: max(id, other)}
			if _, ok := seen[e]; ok {
				continue
			}
			seen[e] = struct{}{}
			edges = append(edges, e)
		}
	}
	return edges
}

// MoveNode updates a node position
func (g *Graph) MoveNode(id int, x, y float64) error {
	n, ok := g.nodes[id]
	if !ok {
		return &UnknownNodeError{ID: id}
	}
	n.X, n.Y = x, y
	return nil
}

// Nearest returns the node closest to p, if any
func (g *Graph) Nearest(p Point) (Node, float64, bool) {
	var (
		best     *Node
		bestDist float64
	)
	for _, id := range g.order {
		n := g.nodes[id]
		d := n.Position().Distance(p)
		if best == nil || d < bestDist {
			best, bestDist = n, d
		}
	}
	if best == nil {
		return Node{}, 0, false
	}
	return best.clone(), bestDist, true
}

// Clear removes every node
func (g *Graph) Clear() {
	clear(g.nodes)
	g.order = g.order[:0]
}

// Validate checks the adjacency invariants: ids match keys, every neighbor
// exists, adjacency is symmetric and free of self loops and duplicates.
func (g *Graph) Validate() error {
	if len(g.order) != len(g.nodes) {
		return fmt.Errorf("order has %d ids for %d nodes", len(g.order), len(g.nodes))
	}
	for _, id := range g.order {
		n, ok := g.nodes[id]
		if !ok {
			return fmt.Errorf("ordered id %d has no node", id)
		}
		if n.ID != id {
			return fmt.Errorf("node keyed %d reports id %d", id, n.ID)
		}
		for i, other := range n.neighbors {
			if other == id {
				return fmt.Errorf("node %d is connected to itself", id)
			}
			if slices.Contains(n.neighbors[:i], other) {
				return fmt.Errorf("node %d lists neighbor %d twice", id, other)
			}
			peer, ok := g.nodes[other]
			if !ok {
				return fmt.Errorf("node %d references missing node %d", id, other)
			}
			if !peer.HasNeighbor(id) {
				return fmt.Errorf("edge %d-%d is not symmetric", id, other)
			}
		}
	}
	return nil
}
