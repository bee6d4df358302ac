package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"netcanvas/internal/domain"
)

// YAMLCodec handles the node record document as YAML
type YAMLCodec struct {
	log *slog.Logger
}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec(log *slog.Logger) *YAMLCodec {
	return &YAMLCodec{log: loggerOrDefault(log)}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Decode replaces the contents of g with the YAML document read from r.
// g is left untouched if the document is malformed.
func (c *YAMLCodec) Decode(r io.Reader, g *domain.Graph) error {
	var raw []rawRecord
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return &domain.MalformedDataError{Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	records, err := validateRecords(raw)
	if err != nil {
		return err
	}

	build(records, g, c.log)
	return nil
}

// Encode writes g as a YAML sequence of node records
func (c *YAMLCodec) Encode(w io.Writer, g *domain.Graph) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(Records(g)); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
