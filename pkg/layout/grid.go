package layout

// borderMinWidth keeps the outermost, node-free columns wide enough that
// edges routed around the whole graph stay visible.
const borderMinWidth = 20

// sizeGrid computes concrete row heights and column widths. Rows grow to
// the tallest node they carry; a node contributes half its width to each
// of its two columns. Cells carrying routed lanes demand (maxLane+2)
// margins of extra room so parallel lanes never touch.
func sizeGrid[N comparable](nodes []N, locs map[N]GridIndex, sizes map[N]Size, maxRow, maxCol int, vmax, hmax map[GridIndex]int, opts Options) (rowHeights, colWidths []int) {
	rowHeights = make([]int, maxRow+2)
	colWidths = make([]int, maxCol+2)

	for _, n := range nodes {
		loc := locs[n]
		size := sizes[n]

		if rowHeights[loc.Row] < size.Height {
			rowHeights[loc.Row] = size.Height
		}
		if colWidths[loc.Col] < size.Width/2 {
			colWidths[loc.Col] = size.Width / 2
		}
		if next := loc.Col + 1; next < len(colWidths) && colWidths[next] < size.Width/2 {
			colWidths[next] = size.Width / 2
		}
	}

	for col := 0; col < len(colWidths); col++ {
		for row := 0; row < len(rowHeights); row++ {
			gi := GridIndex{Col: col, Row: row}
			if lane, ok := vmax[gi]; ok {
				if w := (lane + 2) * opts.XMargin; colWidths[col] < w {
					colWidths[col] = w
				}
			}
			if lane, ok := hmax[gi]; ok {
				if h := (lane + 2) * opts.YMargin; rowHeights[row] < h {
					rowHeights[row] = h
				}
			}
		}
	}

	colWidths[0] = max(borderMinWidth, colWidths[0])
	colWidths[len(colWidths)-1] = max(borderMinWidth, colWidths[len(colWidths)-1])

	return rowHeights, colWidths
}
