package layout

import (
	"fmt"
	"slices"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

// router owns the mutable routing state for one layout run: the validity
// grid marking cells covered by node bodies, and the vertical/horizontal
// lane grids recording which lanes each cell has handed out. It is built,
// used, and discarded inside a single Layout call.
type router[N comparable] struct {
	g      *graph.Digraph[N]
	locs   map[N]GridIndex
	maxCol int
	maxRow int
	opts   Options

	// valid[col][row] is false where a node body sits; edges may not
	// route vertically through those cells. Sized (maxCol+2) x (maxRow+2).
	valid [][]bool

	// vertical[col][row] and horizontal[col][row] map lane index to
	// occupancy. Sized (maxCol+2) x (maxRow+3): routing can use one
	// column right of the rightmost node and one row below the deepest.
	vertical   [][]map[int]bool
	horizontal [][]map[int]bool

	inEdges  map[N][]*SegmentedEdge[N]
	outEdges map[N][]*SegmentedEdge[N]
	inOrder  []N
	outOrder []N
}

func newRouter[N comparable](g *graph.Digraph[N], locs map[N]GridIndex, maxCol, maxRow int, opts Options) *router[N] {
	r := &router[N]{
		g:        g,
		locs:     locs,
		maxCol:   maxCol,
		maxRow:   maxRow,
		opts:     opts,
		inEdges:  make(map[N][]*SegmentedEdge[N]),
		outEdges: make(map[N][]*SegmentedEdge[N]),
	}

	cols, rows := maxCol+2, maxRow+3
	r.valid = make([][]bool, cols)
	r.vertical = make([][]map[int]bool, cols)
	r.horizontal = make([][]map[int]bool, cols)
	for c := 0; c < cols; c++ {
		r.valid[c] = make([]bool, rows)
		for i := range r.valid[c] {
			r.valid[c][i] = true
		}
		r.vertical[c] = make([]map[int]bool, rows)
		r.horizontal[c] = make([]map[int]bool, rows)
		for i := 0; i < rows; i++ {
			r.vertical[c][i] = make(map[int]bool)
			r.horizontal[c][i] = make(map[int]bool)
		}
	}

	// A node visually spans the two columns (col, col+1) of its row;
	// reserve both so edge lanes never cross a node body.
	for _, gi := range locs {
		r.valid[gi.Col][gi.Row] = false
		r.valid[gi.Col+1][gi.Row] = false
	}
	return r
}

// available reports whether the column's vertical span [startRow, endRow)
// is free of node bodies.
func (r *router[N]) available(col, startRow, endRow int) bool {
	if col < 0 || col >= len(r.valid) {
		return false
	}
	for row := startRow; row < endRow; row++ {
		if row >= 0 && row < len(r.valid[col]) && !r.valid[col][row] {
			return false
		}
	}
	return true
}

// firstFreeLane returns the smallest lane index absent from used. This is
// first-fit bin packing: freed or skipped lanes are refilled before new
// ones are opened, keeping lane numbers dense.
func firstFreeLane(used map[int]bool) int {
	for lane := 0; ; lane++ {
		if !used[lane] {
			return lane
		}
	}
}

// claimVertical allocates one lane for a vertical segment spanning rows
// [lo, hi) of col: first-fit over the union of lanes already used by any
// spanned cell, then written into every spanned cell so later lookups
// agree.
func (r *router[N]) claimVertical(col, lo, hi int) int {
	used := make(map[int]bool)
	for row := lo; row < hi; row++ {
		for lane := range r.vertical[col][row] {
			used[lane] = true
		}
	}
	lane := firstFreeLane(used)
	for row := lo; row < hi; row++ {
		r.vertical[col][row][lane] = true
	}
	return lane
}

// claimHorizontal is claimVertical's counterpart for a horizontal segment
// spanning columns [lo, hi) of row.
func (r *router[N]) claimHorizontal(row, lo, hi int) int {
	used := make(map[int]bool)
	for col := lo; col < hi; col++ {
		for lane := range r.horizontal[col][row] {
			used[lane] = true
		}
	}
	lane := firstFreeLane(used)
	for col := lo; col < hi; col++ {
		r.horizontal[col][row][lane] = true
	}
	return lane
}

// routeAll routes every edge of the original graph in insertion order,
// then ranks the edges sharing each endpoint.
func (r *router[N]) routeAll() ([]*SegmentedEdge[N], error) {
	var edges []*SegmentedEdge[N]
	for _, e := range r.g.Edges() {
		if e.From == e.To && r.opts.DropSelfLoops {
			continue
		}
		routed, err := r.routeEdge(e.From, e.To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, routed)
	}
	r.setInEdgeIndices()
	r.setOutEdgeIndices()
	return edges, nil
}

// routeEdge produces the orthogonal grid path for one edge: a vertical
// stub below the source, an optional jog to a free vertical channel, the
// vertical travel to the destination row, and an optional jog to the
// destination column.
func (r *router[N]) routeEdge(src, dst N) (*SegmentedEdge[N], error) {
	e := &SegmentedEdge[N]{Src: src, Dst: dst}

	start := r.locs[src]
	end := r.locs[dst]
	// Route from the source's center column, one row down, to the
	// destination's center column at the destination's row.
	startCol, startRow := start.Col+1, start.Row+1
	endCol, endRow := end.Col+1, end.Row

	lane := r.claimVertical(startCol, startRow, startRow+1)
	e.Points = append(e.Points, EdgeCoord{Col: startCol, Row: startRow, Lane: lane})

	minRow, maxRow := startRow, endRow
	if endRow < startRow {
		minRow, maxRow = endRow, startRow
	}

	// Scan outward, alternating right and left, for a vertical channel
	// whose span is clear of node bodies. The border columns carry no
	// nodes, so the scan always terminates.
	col := startCol
	if !r.available(col, minRow, maxRow) {
		found := false
		for offset := 1; offset <= r.maxCol+2; offset++ {
			if r.available(col+offset, minRow, maxRow) {
				col += offset
				found = true
				break
			}
			if r.available(col-offset, minRow, maxRow) {
				col -= offset
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: no vertical channel for edge rows %d..%d", ErrInternal, minRow, maxRow)
		}
	}

	if col != startCol {
		lo, hi, move := startCol, col, MoveRight
		if col < startCol {
			lo, hi, move = col, startCol, MoveLeft
		}
		lane := r.claimHorizontal(startRow, lo, hi)
		e.Points = append(e.Points, EdgeCoord{Col: col, Row: startRow, Lane: lane})
		e.Moves = append(e.Moves, move)
	}

	if startRow != endRow {
		lo, hi := minRow, maxRow
		if col == startCol {
			// Straight drop: the stub already occupies startRow, so the
			// travel segment owns only the rows below it.
			lo = startRow + 1
		}
		lane := e.Points[len(e.Points)-1].Lane
		if lo < hi {
			lane = r.claimVertical(col, lo, hi)
		}
		e.Points = append(e.Points, EdgeCoord{Col: col, Row: endRow, Lane: lane})
	}

	if col != endCol {
		lo, hi, move := col, endCol, MoveRight
		if endCol < col {
			lo, hi, move = endCol, col, MoveLeft
		}
		lane := r.claimHorizontal(endRow, lo, hi)
		e.Points = append(e.Points, EdgeCoord{Col: endCol, Row: endRow, Lane: lane})
		e.Moves = append(e.Moves, move)
	}

	if _, ok := r.outEdges[src]; !ok {
		r.outOrder = append(r.outOrder, src)
	}
	r.outEdges[src] = append(r.outEdges[src], e)
	if _, ok := r.inEdges[dst]; !ok {
		r.inOrder = append(r.inOrder, dst)
	}
	r.inEdges[dst] = append(r.inEdges[dst], e)

	return e, nil
}

// setInEdgeIndices ranks the edges entering each node. With exactly two
// siblings under the directional policy the pair is ordered by last jog,
// Right before Left; otherwise the routing encounter order stands.
func (r *router[N]) setInEdgeIndices() {
	for _, n := range r.inOrder {
		edges := r.inEdges[n]
		if len(edges) == 2 && r.opts.TwinOrdering == TwinDirectional {
			edges = slices.Clone(edges)
			slices.SortStableFunc(edges, func(a, b *SegmentedEdge[N]) int {
				return int(b.LastMove()) - int(a.LastMove())
			})
		}
		for i, e := range edges {
			e.EndIndex = i
			e.MaxEndIndex = len(edges) - 1
		}
	}
}

// setOutEdgeIndices ranks the edges leaving each node. The two-sibling
// directional order is the mirror of the incoming one: first jog, Left
// before Right.
func (r *router[N]) setOutEdgeIndices() {
	for _, n := range r.outOrder {
		edges := r.outEdges[n]
		if len(edges) == 2 && r.opts.TwinOrdering == TwinDirectional {
			edges = slices.Clone(edges)
			slices.SortStableFunc(edges, func(a, b *SegmentedEdge[N]) int {
				return int(a.FirstMove()) - int(b.FirstMove())
			})
		}
		for i, e := range edges {
			e.StartIndex = i
			e.MaxStartIndex = len(edges) - 1
		}
	}
}

// maxLanes reports the highest lane index observed per grid cell, for the
// vertical and horizontal grids respectively. Grid sizing turns these
// into extra column width and row height.
func (r *router[N]) maxLanes() (vmax, hmax map[GridIndex]int) {
	vmax = make(map[GridIndex]int)
	hmax = make(map[GridIndex]int)
	for col := range r.vertical {
		for row := range r.vertical[col] {
			if m := maxLaneOf(r.vertical[col][row]); m >= 0 {
				vmax[GridIndex{Col: col, Row: row}] = m
			}
			if m := maxLaneOf(r.horizontal[col][row]); m >= 0 {
				hmax[GridIndex{Col: col, Row: row}] = m
			}
		}
	}
	return vmax, hmax
}

func maxLaneOf(lanes map[int]bool) int {
	m := -1
	for lane := range lanes {
		if lane > m {
			m = lane
		}
	}
	return m
}
