package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/panotour/pkg/graph"
)

// WriteView encodes a graph view in the given format and writes it to w.
// The output can be read back with [ReadView] and rebuilt with
// [graph.FromView].
func WriteView(v graph.View, w io.Writer, format Format) error {
	return Encode(v, w, format)
}

// ExportView writes a graph view to path, choosing the format from the
// file extension.
func ExportView(v graph.View, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteView(v, f, FormatFromPath(path))
}

// ReadView decodes a graph view from r.
func ReadView(r io.Reader, format Format) (graph.View, error) {
	var v graph.View
	var err error
	switch format {
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&v)
	default:
		err = json.NewDecoder(r).Decode(&v)
	}
	if err != nil {
		return graph.View{}, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// ImportView reads a graph view file and rebuilds the graph it describes.
func ImportView(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	v, err := ReadView(f, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	return graph.FromView(v)
}

// Encode writes any value as indented JSON or as YAML.
func Encode(v any, w io.Writer, format Format) error {
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}
