package layout

import (
	"fmt"
	"slices"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

// assignColumns places every node in a column of its row.
//
// Pass 1 walks rows bottom-up: a node is centered over the column band of
// its already-placed successors, falling back to a running cursor that
// advances monotonically across the row so siblings never collide.
//
// Pass 2 walks rows top-down: nodes with at least two predecessors are
// re-centered over their predecessors' band, with detectOverlap shoving
// them right until they clear every sibling by more than one column.
//
// The returned max column is the highest assigned column plus one,
// leaving a free routing channel to the right of the rightmost node.
func assignColumns[N comparable](dag *graph.Digraph[N], byRow map[int][]N, maxRow int) (map[N]GridIndex, int, error) {
	cols := make(map[N]int)
	locs := make(map[N]GridIndex)
	globalMax := 0

	// Pass 1: bottom-up seeding from successors.
	for rowIdx := maxRow; rowIdx >= 0; rowIdx-- {
		nextMin, nextMax := 1, 2

		for _, node := range byRow[rowIdx] {
			minCol, maxCol := 0, 0
			haveBand := false
			for _, succ := range dag.Successors(node) {
				c, ok := cols[succ]
				if !ok {
					continue
				}
				if !haveBand {
					minCol, maxCol = c, c+1
					haveBand = true
					continue
				}
				if c < minCol {
					minCol = c
				}
				if c > maxCol {
					maxCol = c + 1
				}
			}

			if !haveBand {
				minCol, maxCol = nextMin, nextMax
			} else {
				if minCol < nextMin {
					minCol = nextMin
				}
				if maxCol < nextMin {
					maxCol = nextMin + 1
				}
			}

			col := (minCol + maxCol) / 2
			cols[node] = col
			locs[node] = GridIndex{Col: col, Row: rowIdx}
			if col > globalMax {
				globalMax = col
			}

			// Advance the cursor past this node: by two when the band
			// collapsed to a point, else by one.
			if minCol == maxCol {
				nextMin = maxCol + 2
			} else {
				nextMin = maxCol + 1
			}
			nextMax = nextMin + 1
		}
	}

	// Pass 2: top-down alignment with predecessors.
	for rowIdx := 0; rowIdx <= maxRow; rowIdx++ {
		rowNodes := byRow[rowIdx]
		nextMin, nextMax := 0, 0
		haveNext := false

		for _, node := range rowNodes {
			preds := dag.Predecessors(node)
			if len(preds) < 2 {
				// Keep the pass-1 column; only push the cursor forward.
				col := cols[node]
				nextMin = max(nextMin, col+2)
				nextMax = max(nextMax, col+3)
				haveNext = true
				continue
			}

			minCol, maxCol := nextMin, nextMax
			haveBand := haveNext
			for _, pred := range preds {
				c, ok := cols[pred]
				if !ok {
					continue
				}
				if !haveBand {
					minCol, maxCol = c, c+1
					haveBand = true
					continue
				}
				if minCol > c {
					minCol = c
				}
				if maxCol < c {
					maxCol = c + 1
				}
			}
			if !haveBand {
				return nil, 0, fmt.Errorf("%w: empty column band for node with %d predecessors", ErrInternal, len(preds))
			}

			col := (minCol + maxCol) / 2
			col = detectOverlap(node, cols, col, rowNodes, minCol)

			cols[node] = col
			locs[node] = GridIndex{Col: col, Row: rowIdx}

			nextMin = maxCol + 1
			nextMax = nextMin + 1
			haveNext = true

			if col > globalMax {
				globalMax = col
			}
		}
	}

	return locs, globalMax + 1, nil
}

// detectOverlap checks the ideal column against the other nodes of the
// row. A collision is any node within one column of the ideal; while
// scanning, a suggested column starting at the band's lower bound is
// pushed to other+2 whenever the suggestion itself collides, stopping
// once it clears the current node by more than one. The result keeps a
// minimum gap of two columns between row siblings.
func detectOverlap[N comparable](node N, cols map[N]int, ideal int, rowNodes []N, minCol int) int {
	overlap := false
	suggested := minCol

	byCol := slices.Clone(rowNodes)
	slices.SortStableFunc(byCol, func(a, b N) int { return cols[a] - cols[b] })

	for _, other := range byCol {
		if other == node {
			continue
		}
		c := cols[other]
		if c-1 <= ideal && ideal <= c+1 {
			overlap = true
		}
		if c-1 <= suggested && suggested <= c+1 {
			suggested = c + 2
		}
		if overlap && suggested < c-1 {
			break
		}
	}

	if overlap {
		return suggested
	}
	return ideal
}
