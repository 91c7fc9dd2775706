// Package io provides JSON import for graphs and JSON export for computed
// layouts.
//
// # Graph Format
//
// The input format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "a", "width": 100, "height": 40},
//	    {"id": "b"}
//	  ],
//	  "edges": [
//	    {"from": "a", "to": "b"}
//	  ]
//	}
//
// Node fields:
//   - id: required unique string identifier
//   - width, height: node box in scene units; omitted or zero dimensions
//     fall back to [DefaultNodeSize]
//
// Edge fields:
//   - from, to: required node IDs; duplicates are ignored, self-loops and
//     cycles are accepted
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, sizes, err := io.ImportJSON("graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Both functions validate the JSON structure and graph constraints
// (non-empty IDs, no duplicate IDs, edges referencing known nodes). Errors
// are wrapped with context about which node or edge caused the problem.
//
// # Layout Format
//
// The output format pairs final node anchors with edge polylines:
//
//	{
//	  "nodes": {"a": {"x": 36, "y": 42}},
//	  "edges": [{"from": "a", "to": "b", "points": [{"x": 86, "y": 82}, ...]}]
//	}
//
// Use [ExportJSON] to write a layout to a file, or [WriteJSON] to write to
// any io.Writer. Edges are emitted sorted by source then destination ID so
// repeated exports of one layout are byte-identical.
package io
