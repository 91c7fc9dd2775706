package layout

import (
	"slices"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

// assignRows computes longest-path layering over the acyclic projection:
// every node lands at one past the deepest of its predecessors. Because
// nodes are visited in quasi-topological order, each predecessor's row is
// final before its successors are pushed.
func assignRows[N comparable](dag *graph.Digraph[N], ordered []N) (map[N]int, int) {
	rows := make(map[N]int, len(ordered))
	maxRow := 0

	for _, n := range ordered {
		row := rows[n] // sources default to row 0
		if row > maxRow {
			maxRow = row
		}
		for _, succ := range dag.Successors(n) {
			if r, ok := rows[succ]; !ok || r < row+1 {
				rows[succ] = row + 1
				if row+1 > maxRow {
					maxRow = row + 1
				}
			}
		}
	}
	return rows, maxRow
}

// nodesByRow groups nodes by their row, each row sorted by the caller's
// comparator so siblings get a stable left-to-right order.
func nodesByRow[N comparable](ordered []N, rows map[N]int, compare func(a, b N) int) map[int][]N {
	byRow := make(map[int][]N)
	for _, n := range ordered {
		byRow[rows[n]] = append(byRow[rows[n]], n)
	}
	for _, ns := range byRow {
		slices.SortStableFunc(ns, compare)
	}
	return byRow
}
