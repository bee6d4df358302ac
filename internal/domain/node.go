package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Kind discriminates the type of node placed on the canvas
type Kind string

const (
	KindRouter Kind = "router"
	KindPC     Kind = "pc"
)

// DefaultStatus is the status given to newly placed nodes
const DefaultStatus = "active"

// ParseKind converts a string to Kind
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "router":
		return KindRouter, nil
	case "pc":
		return KindPC, nil
	default:
		return "", fmt.Errorf("unknown node kind %q", s)
	}
}

// Valid reports whether k is one of the known kinds
func (k Kind) Valid() bool {
	return k == KindRouter || k == KindPC
}

// Title returns the display name used in inspection text
func (k Kind) Title() string {
	switch k {
	case KindRouter:
		return "Router"
	case KindPC:
		return "PC"
	default:
		return "Node"
	}
}

// Node represents a router or PC placed on the canvas
type Node struct {
	ID     int
	X      float64
	Y      float64
	Status string
	Kind   Kind

	// neighbors is kept in insertion order; the graph owns mutation
	neighbors []int
}

// NewNode creates a new node with the default status and no connections
func NewNode(id int, kind Kind, x, y float64) Node {
	return Node{
		ID:     id,
		X:      x,
		Y:      y,
		Status: DefaultStatus,
		Kind:   kind,
	}
}

// Position returns the node centre
func (n Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// ConnectionCount returns the number of nodes this node is connected to
func (n Node) ConnectionCount() int {
	return len(n.neighbors)
}

// Neighbors returns a copy of the neighbor ids in insertion order
func (n Node) Neighbors() []int {
	return slices.Clone(n.neighbors)
}

// HasNeighbor reports whether id is a neighbor of n
func (n Node) HasNeighbor(id int) bool {
	return slices.Contains(n.neighbors, id)
}

// clone returns a copy that shares no state with n
func (n Node) clone() Node {
	n.neighbors = slices.Clone(n.neighbors)
	return n
}
