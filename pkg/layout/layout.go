package layout

import (
	"errors"
	"fmt"

	"github.com/flowgrid-dev/flowgrid/pkg/graph"
)

var (
	// ErrMissingSize is returned by [Layout] when the graph references a
	// node that has no entry in the size map. Sizes are a caller contract:
	// every node must have one.
	ErrMissingSize = errors.New("node has no size")

	// ErrBadOptions is returned by [Layout] when an option carries a
	// negative margin.
	ErrBadOptions = errors.New("margins must be non-negative")

	// ErrInternal signals a broken layout invariant. It never triggers on
	// valid input; seeing it means a bug in the engine, not a recoverable
	// runtime condition.
	ErrInternal = errors.New("internal layout invariant broken")
)

// Point is an absolute scene coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Size is a node's extent in scene units, supplied by the caller.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GridIndex is an integer grid address. Columns grow rightward, rows grow
// downward. A node occupies the two columns (Col, Col+1) of its row.
type GridIndex struct {
	Col int
	Row int
}

// EdgeCoord is one waypoint of a routed edge: a grid cell plus the lane
// index that disambiguates multiple edge segments sharing that cell.
type EdgeCoord struct {
	Col  int
	Row  int
	Lane int
}

// Move is the horizontal direction of an edge jog.
//
// The numeric values mirror the ordering the directional twin tie-break
// relies on: Left < None < Right.
type Move int

const (
	MoveLeft Move = iota
	MoveNone
	MoveRight
)

func (m Move) String() string {
	switch m {
	case MoveLeft:
		return "left"
	case MoveRight:
		return "right"
	default:
		return "none"
	}
}

// TwinOrder selects how two edges sharing an endpoint are ranked relative
// to each other. With more or fewer than two siblings the encounter order
// is always used; the policy only matters for the exactly-two case.
type TwinOrder int

const (
	// TwinDirectional ranks two incoming edges Right-before-Left by their
	// last jog, and two outgoing edges Left-before-Right by their first
	// jog. This matches the visual behavior of the layout this engine
	// descends from; its necessity beyond "some deterministic order" is
	// unconfirmed, which is why it is a policy rather than hard-coded.
	TwinDirectional TwinOrder = iota

	// TwinArrival keeps the routing encounter order.
	TwinArrival
)

// Options are the spacing constants for one layout run.
//
// XMargin and YMargin space parallel edge lanes apart; RowMargin and
// ColMargin pad the grid between rows and columns. All must be
// non-negative. Use DefaultOptions for the standard values.
type Options struct {
	XMargin   int `json:"x_margin" toml:"x_margin"`
	YMargin   int `json:"y_margin" toml:"y_margin"`
	RowMargin int `json:"row_margin" toml:"row_margin"`
	ColMargin int `json:"col_margin" toml:"col_margin"`

	// TwinOrdering is the two-sibling edge ranking policy.
	TwinOrdering TwinOrder `json:"-" toml:"-"`

	// DropSelfLoops skips routing edges whose source and destination are
	// the same node. By default self-loops are routed as visible loops
	// steered around the node body.
	DropSelfLoops bool `json:"-" toml:"-"`
}

// DefaultOptions returns the standard spacing constants.
func DefaultOptions() Options {
	return Options{XMargin: 10, YMargin: 5, RowMargin: 16, ColMargin: 16}
}

func (o Options) validate() error {
	if o.XMargin < 0 || o.YMargin < 0 || o.RowMargin < 0 || o.ColMargin < 0 {
		return ErrBadOptions
	}
	return nil
}

// SegmentedEdge is the routing record of a single edge: its grid
// waypoints, the direction of each horizontal jog, its rank among the
// edges sharing its endpoints, and the final scene polyline.
type SegmentedEdge[N comparable] struct {
	Src N
	Dst N

	// Points are the grid waypoints in travel order. The first is always
	// the vertical stub below the source.
	Points []EdgeCoord

	// Moves are the horizontal jog directions, one per jog, in travel
	// order.
	Moves []Move

	// StartIndex ranks this edge among the edges leaving Src;
	// MaxStartIndex is the highest rank among those siblings. Used to
	// center a fan of outgoing edges under the node.
	StartIndex    int
	MaxStartIndex int

	// EndIndex and MaxEndIndex are the incoming-edge counterparts.
	EndIndex    int
	MaxEndIndex int

	// Polyline is the final scene-coordinate path, collinear-merged.
	Polyline []Point
}

// FirstMove returns the direction of the first horizontal jog, or
// MoveNone if the edge never jogs.
func (e *SegmentedEdge[N]) FirstMove() Move {
	if len(e.Moves) == 0 {
		return MoveNone
	}
	return e.Moves[0]
}

// LastMove returns the direction of the last horizontal jog, or MoveNone
// if the edge never jogs.
func (e *SegmentedEdge[N]) LastMove() Move {
	if len(e.Moves) == 0 {
		return MoveNone
	}
	return e.Moves[len(e.Moves)-1]
}

// Result is a completed layout: one anchor point per node (top-left of
// the node box) and one polyline per routed edge. The first polyline
// point sits on the source node's bottom edge, the last on the
// destination node's top edge.
type Result[N comparable] struct {
	Nodes map[N]Point
	Edges map[graph.Edge[N]][]Point
}

// Layout computes a hierarchical grid layout for an arbitrary directed
// graph. Cycles and self-loops are permitted; back-edges are dropped for
// placement purposes but still routed as real edges.
//
// sizes must contain an entry for every node in g. compare breaks ties in
// the left-to-right ordering of nodes sharing a row; it must be a total
// order for deterministic output.
//
// Layout is a pure computation: it never mutates g, holds no global
// state, and independent calls may run concurrently.
func Layout[N comparable](g *graph.Digraph[N], sizes map[N]Size, compare func(a, b N) int, opts Options) (*Result[N], []*SegmentedEdge[N], error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	nodes := g.Nodes()
	for _, n := range nodes {
		if _, ok := sizes[n]; !ok {
			return nil, nil, fmt.Errorf("%w: %v", ErrMissingSize, n)
		}
	}
	if len(nodes) == 0 {
		return &Result[N]{
			Nodes: map[N]Point{},
			Edges: map[graph.Edge[N]][]Point{},
		}, nil, nil
	}

	ordered, err := quasiTopoOrder(g)
	if err != nil {
		return nil, nil, err
	}
	dag := acyclicProjection(g, ordered)

	rows, maxRow := assignRows(dag, ordered)
	byRow := nodesByRow(ordered, rows, compare)
	locs, maxCol, err := assignColumns(dag, byRow, maxRow)
	if err != nil {
		return nil, nil, err
	}

	r := newRouter(g, locs, maxCol, maxRow, opts)
	edges, err := r.routeAll()
	if err != nil {
		return nil, nil, err
	}
	vmax, hmax := r.maxLanes()

	rowHeights, colWidths := sizeGrid(nodes, locs, sizes, maxRow, maxCol, vmax, hmax, opts)

	result, err := resolveCoordinates(nodes, sizes, locs, edges, rowHeights, colWidths, hmax, maxRow, maxCol, opts)
	if err != nil {
		return nil, nil, err
	}
	return result, edges, nil
}
