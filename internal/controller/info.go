package controller

import (
	"fmt"
	"strconv"
	"strings"

	"netcanvas/internal/domain"
)

// Describe renders the inspection text for a node: a title by kind, then id,
// location rounded to two decimals, status, connection count and neighbors.
func Describe(n domain.Node) string {
	title := n.Kind.Title()

	var b strings.Builder
	fmt.Fprintf(&b, "%s Information\n", title)
	fmt.Fprintf(&b, "%s ID: %d\n", title, n.ID)
	fmt.Fprintf(&b, "Location: (%.2f, %.2f)\n", n.X, n.Y)
	fmt.Fprintf(&b, "Status: %s\n", n.Status)
	fmt.Fprintf(&b, "Connections: %d\n", n.ConnectionCount())

	neighbors := n.Neighbors()
	if len(neighbors) == 0 {
		b.WriteString("No connections")
		return b.String()
	}

	ids := make([]string, len(neighbors))
	for i, id := range neighbors {
		ids[i] = strconv.Itoa(id)
	}
	fmt.Fprintf(&b, "Connected to: [%s]", strings.Join(ids, ", "))
	return b.String()
}
