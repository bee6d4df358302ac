package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"netcanvas/internal/domain"
)

// JSONCodec handles the network_graph.json document
type JSONCodec struct {
	log *slog.Logger
}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec(log *slog.Logger) *JSONCodec {
	return &JSONCodec{log: loggerOrDefault(log)}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Decode replaces the contents of g with the JSON document read from r.
// g is left untouched if the document is malformed.
func (c *JSONCodec) Decode(r io.Reader, g *domain.Graph) error {
	var raw []rawRecord
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return &domain.MalformedDataError{Err: fmt.Errorf("failed to parse JSON: %w", err)}
	}
	if decoder.More() {
		return &domain.MalformedDataError{Err: errors.New("unexpected data after node array")}
	}

	records, err := validateRecords(raw)
	if err != nil {
		return err
	}

	build(records, g, c.log)
	return nil
}

// Encode writes g as a 2-space indented JSON array
func (c *JSONCodec) Encode(w io.Writer, g *domain.Graph) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(Records(g)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
