// Package codec serializes a topology graph to portable documents and
// rebuilds graphs from them.
//
// Every format shares one record shape (see NodeRecord) and one load
// procedure: the whole document is parsed and validated before the target
// graph is touched, then the graph is cleared, every node is inserted, and
// a second pass adds the recorded edges. Edges pointing at ids that are not
// in the document are skipped.
package codec

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"netcanvas/internal/domain"
)

// Decoder reads a topology document into a graph
type Decoder interface {
	Decode(r io.Reader, g *domain.Graph) error
	Format() string
}

// Encoder writes a graph as a topology document
type Encoder interface {
	Encode(w io.Writer, g *domain.Graph) error
	Format() string
}

// Codec both reads and writes a format
type Codec interface {
	Decoder
	Encoder
}

// DefaultFileName is the conventional name for a saved topology
const DefaultFileName = "network_graph.json"

// ForFormat returns the codec registered under name
func ForFormat(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return NewJSONCodec(nil), nil
	case "yaml", "yml":
		return NewYAMLCodec(nil), nil
	case "ansible", "ansible-inventory":
		return NewAnsibleCodec(nil), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", name)
	}
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("cannot infer format of %q", path)
	}
	return ForFormat(ext)
}
