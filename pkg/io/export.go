package io

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/flowgrid-dev/flowgrid/pkg/layout"
)

// LayoutDocument is the serialized form of a computed layout.
type LayoutDocument struct {
	Nodes map[string]layout.Point `json:"nodes"`
	Edges []LayoutEdge            `json:"edges"`
}

// LayoutEdge is one routed edge: its endpoints and the Manhattan polyline
// between them.
type LayoutEdge struct {
	From   string         `json:"from"`
	To     string         `json:"to"`
	Points []layout.Point `json:"points"`
}

// NewLayoutDocument converts a layout result into its serializable form,
// with edges sorted by source then destination ID.
func NewLayoutDocument(result *layout.Result[string]) *LayoutDocument {
	doc := &LayoutDocument{
		Nodes: result.Nodes,
		Edges: make([]LayoutEdge, 0, len(result.Edges)),
	}
	for e, pts := range result.Edges {
		doc.Edges = append(doc.Edges, LayoutEdge{From: e.From, To: e.To, Points: pts})
	}
	slices.SortFunc(doc.Edges, func(a, b LayoutEdge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		return cmp.Compare(a.To, b.To)
	})
	return doc
}

// WriteJSON encodes a layout result as indented JSON and writes it to w.
// The edge order is deterministic, so repeated exports of one layout are
// byte-identical.
func WriteJSON(result *layout.Result[string], w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewLayoutDocument(result)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a layout result to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(result *layout.Result[string], path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(result, f)
}
