package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// DefaultNodeSize is used for nodes whose width or height is omitted from
// the input document.
var DefaultNodeSize = layout.Size{Width: 120, Height: 48}

// ErrEmptyNodeID is returned when a node entry carries no id field.
var ErrEmptyNodeID = errors.New("node id must not be empty")

// Document is the serialized form of an input graph.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is one input node: its identifier and box size in scene units.
type Node struct {
	ID     string `json:"id"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Edge is one input edge between node IDs.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Build validates the document and converts it into a digraph plus node
// sizes. Nodes keep their document order, which fixes the deterministic
// layout order downstream. Build returns an error if a node id is empty
// or duplicated, or an edge references an unknown id; errors are wrapped
// with the offending node or edge for context.
func (d *Document) Build() (*graph.Digraph[string], map[string]layout.Size, error) {
	g := graph.New[string]()
	sizes := make(map[string]layout.Size, len(d.Nodes))
	for _, n := range d.Nodes {
		if n.ID == "" {
			return nil, nil, ErrEmptyNodeID
		}
		if err := g.AddNode(n.ID); err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		size := layout.Size{Width: n.Width, Height: n.Height}
		if size.Width <= 0 {
			size.Width = DefaultNodeSize.Width
		}
		if size.Height <= 0 {
			size.Height = DefaultNodeSize.Height
		}
		sizes[n.ID] = size
	}
	for _, e := range d.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, sizes, nil
}

// ReadJSON decodes a JSON graph from r into a digraph plus its node sizes.
//
// ReadJSON returns an error if the JSON is malformed or the document fails
// the validation performed by [Document.Build]. The returned graph is
// independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Digraph[string], map[string]layout.Size, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}
	return doc.Build()
}

// ImportJSON reads the JSON file at path and returns the decoded graph and
// sizes. It opens the file, decodes it using [ReadJSON], and closes the
// file; errors wrap the underlying cause with the file path for context.
func ImportJSON(path string) (*graph.Digraph[string], map[string]layout.Size, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
