package layout

import (
	"fmt"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

// coordResolver turns grid addresses and lane indices into absolute scene
// coordinates. It is the last stage: everything it reads is final.
type coordResolver[N comparable] struct {
	sizes      map[N]Size
	locs       map[N]GridIndex
	nodePts    map[N]Point
	rowHeights []int
	colWidths  []int
	gridX      []int
	gridY      []int
	rowMaxLane map[int]int
	nodes      []N
	opts       Options
}

// resolveCoordinates computes final node anchors and edge polylines.
func resolveCoordinates[N comparable](nodes []N, sizes map[N]Size, locs map[N]GridIndex, edges []*SegmentedEdge[N], rowHeights, colWidths []int, hmax map[GridIndex]int, maxRow, maxCol int, opts Options) (*Result[N], error) {
	cr := &coordResolver[N]{
		sizes:      sizes,
		locs:       locs,
		nodePts:    make(map[N]Point, len(nodes)),
		rowHeights: rowHeights,
		colWidths:  colWidths,
		rowMaxLane: make(map[int]int),
		nodes:      nodes,
		opts:       opts,
	}

	// Highest horizontal lane bordering each row; it widens the band the
	// row's horizontal jogs run through.
	for gi, lane := range hmax {
		if cur, ok := cr.rowMaxLane[gi.Row]; !ok || lane > cur {
			cr.rowMaxLane[gi.Row] = lane
		}
	}

	// Accumulate scene coordinates: each row's extent is its height plus
	// a band that grows with the horizontal lanes passing above the next
	// row; columns add a fixed margin.
	cr.gridY = make([]int, maxRow+2)
	y := cr.bandHeight(0)
	for row := 0; row <= maxRow+1; row++ {
		cr.gridY[row] = y
		y += rowHeights[row] + cr.bandHeight(row+1)
	}
	cr.gridX = make([]int, maxCol+2)
	x := 0
	for col := 0; col <= maxCol+1; col++ {
		cr.gridX[col] = x
		x += colWidths[col] + opts.ColMargin
	}

	// A node is centered within the two-column-wide, one-row-tall cell it
	// occupies.
	for _, n := range nodes {
		loc := locs[n]
		size := sizes[n]
		cellW := colWidths[loc.Col] + colWidths[loc.Col+1]
		cr.nodePts[n] = Point{
			X: cr.gridX[loc.Col] + (cellW/2 - size.Width/2),
			Y: cr.gridY[loc.Row] + (rowHeights[loc.Row]/2 - size.Height/2),
		}
	}

	result := &Result[N]{
		Nodes: cr.nodePts,
		Edges: make(map[graph.Edge[N]][]Point, len(edges)),
	}
	for _, e := range edges {
		pts, err := cr.resolveEdge(e)
		if err != nil {
			return nil, err
		}
		e.Polyline = pts
		result.Edges[graph.Edge[N]{From: e.Src, To: e.Dst}] = pts
	}
	return result, nil
}

// bandHeight is the vertical extent of the routing band above the given
// row: two row margins, plus lane spacing when horizontal jogs run there.
func (cr *coordResolver[N]) bandHeight(row int) int {
	h := cr.opts.RowMargin * 2
	if lane, ok := cr.rowMaxLane[row]; ok {
		h += cr.opts.YMargin * (lane + 2)
	}
	return h
}

// vChannelX is the x coordinate of a vertical lane within a column.
func (cr *coordResolver[N]) vChannelX(col, lane int) int {
	return cr.gridX[col] + cr.opts.XMargin*(lane+1)
}

// hChannelY is the y coordinate of a horizontal lane in the band above a
// row.
func (cr *coordResolver[N]) hChannelY(row, lane int) int {
	return cr.gridY[row] - cr.opts.RowMargin - cr.opts.YMargin*(lane+1)
}

// fanOffset centers a fan of sibling edges under or above a node: rank i
// of maxRank+1 edges, spaced one margin apart.
func fanOffset(rank, maxRank, margin int) int {
	return rank*margin - maxRank*margin/2
}

// clearanceY finds a y for the first horizontal jog that clears every
// node of the source's row between the two columns. Without it an edge
// leaving a short node could cut through a taller sibling.
func (cr *coordResolver[N]) clearanceY(srcRow, colA, colB, base int) int {
	lo, hi := colA, colB
	if hi < lo {
		lo, hi = hi, lo
	}
	y := base
	for _, m := range cr.nodes {
		loc := cr.locs[m]
		if loc.Row != srcRow {
			continue
		}
		// The node body spans columns (Col, Col+1).
		if loc.Col+1 < lo || loc.Col > hi {
			continue
		}
		if b := cr.nodePts[m].Y + cr.sizes[m].Height + cr.opts.YMargin; b > y {
			y = b
		}
	}
	return y
}

// resolveEdge walks an edge's grid waypoints into a scene polyline. The
// first point leaves the source's bottom edge offset by the edge's rank
// among its outgoing siblings; the last enters the destination's top edge
// offset by its rank among the incoming ones. Breaks between segments sit
// at each waypoint's lane channel; collinear points are merged as they
// are added.
func (cr *coordResolver[N]) resolveEdge(e *SegmentedEdge[N]) ([]Point, error) {
	sLoc := cr.locs[e.Src]
	sPos, sSize := cr.nodePts[e.Src], cr.sizes[e.Src]
	dPos, dSize := cr.nodePts[e.Dst], cr.sizes[e.Dst]

	startX := sPos.X + sSize.Width/2 + fanOffset(e.StartIndex, e.MaxStartIndex, cr.opts.XMargin)
	endX := dPos.X + dSize.Width/2 + fanOffset(e.EndIndex, e.MaxEndIndex, cr.opts.XMargin)
	endY := dPos.Y

	var line polyline
	line.add(startX, sPos.Y+sSize.Height)
	curX := startX

	n := len(e.Points)
	endsWithJog := false
	for i := 1; i < n; i++ {
		prev, p := e.Points[i-1], e.Points[i]
		if p.Row != prev.Row {
			// Vertical travel: the drop is emitted by the jog before or
			// after it, or by the final approach below.
			continue
		}
		y := cr.hChannelY(p.Row, p.Lane)
		if i == 1 {
			y = cr.clearanceY(sLoc.Row, prev.Col, p.Col, y)
		}
		var tx int
		if i == n-1 {
			// Last jog: land on the destination approach.
			tx = endX
			endsWithJog = true
		} else {
			tx = cr.vChannelX(p.Col, e.Points[i+1].Lane)
		}
		line.add(curX, y)
		line.add(tx, y)
		curX = tx
	}

	if !endsWithJog {
		// The path ends in a vertical channel (or never left the stub):
		// break in the band above the destination row, then drop in.
		last := e.Points[n-1]
		breakY := cr.hChannelY(last.Row, last.Lane)
		line.add(curX, breakY)
		line.add(endX, breakY)
	}
	line.add(endX, endY)

	if err := line.validate(); err != nil {
		return nil, fmt.Errorf("edge %v->%v: %w", e.Src, e.Dst, err)
	}
	return line.pts, nil
}

// polyline accumulates Manhattan path points, merging collinear runs by
// replacing the previous point rather than appending, so the result holds
// only true direction changes.
type polyline struct {
	pts []Point
}

func (p *polyline) add(x, y int) {
	pt := Point{X: x, Y: y}
	n := len(p.pts)
	if n > 0 && p.pts[n-1] == pt {
		return
	}
	if n >= 2 {
		a, b := p.pts[n-2], p.pts[n-1]
		if (a.X == b.X && b.X == x) || (a.Y == b.Y && b.Y == y) {
			p.pts[n-1] = pt
			return
		}
	}
	p.pts = append(p.pts, pt)
}

// validate checks that every segment is axis-aligned. A diagonal segment
// means a waypoint walk bug, reported as ErrInternal.
func (p *polyline) validate() error {
	for i := 1; i < len(p.pts); i++ {
		a, b := p.pts[i-1], p.pts[i]
		if a.X != b.X && a.Y != b.Y {
			return fmt.Errorf("%w: segment %v-%v is not axis-aligned", ErrInternal, a, b)
		}
	}
	return nil
}
