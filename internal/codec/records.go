package codec

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"

	"netcanvas/internal/domain"
)

var recordValidate = validator.New()

// NodeRecord is the serialized form of one node
type NodeRecord struct {
	ID          int     `json:"id" yaml:"id"`
	X           float64 `json:"x" yaml:"x"`
	Y           float64 `json:"y" yaml:"y"`
	Status      string  `json:"status" yaml:"status"`
	Connections int     `json:"connections" yaml:"connections"`
	ConnectedTo []int   `json:"connectedTo" yaml:"connectedTo"`
	Type        string  `json:"type" yaml:"type"`
}

// rawRecord mirrors NodeRecord with pointers so missing fields can be told
// apart from zero values
type rawRecord struct {
	ID          *int     `json:"id" yaml:"id" validate:"required,gt=0"`
	X           *float64 `json:"x" yaml:"x" validate:"required"`
	Y           *float64 `json:"y" yaml:"y" validate:"required"`
	Status      *string  `json:"status" yaml:"status" validate:"required"`
	Connections *int     `json:"connections" yaml:"connections" validate:"required,gte=0"`
	ConnectedTo []int    `json:"connectedTo" yaml:"connectedTo" validate:"required"`
	Type        *string  `json:"type" yaml:"type" validate:"required,oneof=router pc"`
}

// Records converts a graph to node records in insertion order. Neighbor ids
// are written in ascending order so repeated saves are byte-identical.
func Records(g *domain.Graph) []NodeRecord {
	nodes := g.Nodes()
	records := make([]NodeRecord, 0, len(nodes))
	for _, n := range nodes {
		neighbors := n.Neighbors()
		slices.Sort(neighbors)
		if neighbors == nil {
			neighbors = []int{}
		}
		records = append(records, NodeRecord{
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Status:      n.Status,
			Connections: n.ConnectionCount(),
			ConnectedTo: neighbors,
			Type:        string(n.Kind),
		})
	}
	return records
}

// validateRecords checks the shape of every raw record and that ids are
// unique. It returns a MalformedDataError on the first problem.
func validateRecords(raw []rawRecord) ([]NodeRecord, error) {
	if raw == nil {
		return nil, &domain.MalformedDataError{Err: errors.New("document is not an array of nodes")}
	}

	records := make([]NodeRecord, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))
	for i, r := range raw {
		if err := recordValidate.Struct(r); err != nil {
			return nil, &domain.MalformedDataError{Err: fmt.Errorf("node %d: %s", i, describeValidation(err))}
		}
		if _, dup := seen[*r.ID]; dup {
			return nil, &domain.MalformedDataError{Err: fmt.Errorf("node %d: duplicate id %d", i, *r.ID)}
		}
		seen[*r.ID] = struct{}{}

		records = append(records, NodeRecord{
			ID:          *r.ID,
			X:           *r.X,
			Y:           *r.Y,
			Status:      *r.Status,
			Connections: *r.Connections,
			ConnectedTo: r.ConnectedTo,
			Type:        *r.Type,
		})
	}
	return records, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("missing %s", fe.Field()))
		case "oneof":
			parts = append(parts, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			parts = append(parts, fmt.Sprintf("%s fails %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(parts, ", ")
}

// build replaces the contents of g with the records. Records must already be
// validated. Nodes are inserted first so the edge pass can reference any of
// them; edges to ids outside the document are skipped.
func build(records []NodeRecord, g *domain.Graph, log *slog.Logger) {
	g.Clear()

	for _, r := range records {
		node := domain.NewNode(r.ID, domain.Kind(r.Type), r.X, r.Y)
		node.Status = r.Status
		if err := g.AddNode(node); err != nil {
			// ids were checked for uniqueness during validation
			log.Warn("skipping node", "id", r.ID, "error", err)
		}
	}

	for _, r := range records {
		for _, other := range r.ConnectedTo {
			if err := g.AddEdge(r.ID, other); err != nil {
				log.Warn("skipping connection", "from", r.ID, "to", other, "error", err)
			}
		}
	}

	for _, r := range records {
		n, _ := g.Node(r.ID)
		if n.ConnectionCount() != r.Connections {
			log.Debug("recorded connection count differs from edges",
				"id", r.ID, "recorded", r.Connections, "actual", n.ConnectionCount())
		}
	}
}

func loggerOrDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
