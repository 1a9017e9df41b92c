package grid

import (
	"errors"
	"fmt"
)

const (
	// DefaultStep is the distance between adjacent cells when none is given.
	DefaultStep = 1.0
	// DefaultTolerance absorbs floating-point noise in cell coordinates.
	DefaultTolerance = 0.1
)

var (
	// ErrDuplicateCell is returned by Build when two cells share a coordinate.
	ErrDuplicateCell = errors.New("grid: duplicate cell coordinate")
	// ErrInvalidStep is returned by Build for a non-positive step or a
	// tolerance that would make neighboring cells ambiguous.
	ErrInvalidStep = errors.New("grid: invalid step or tolerance")
)

// Coord is a 2-D world coordinate.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String renders the coordinate as "(x,y)".
func (c Coord) String() string {
	return fmt.Sprintf("(%g,%g)", c.X, c.Y)
}

// Cell describes one traversable cell handed to Build. Payload is an opaque
// handle owned by the caller (a label, a sprite, a scene object) and is
// carried through to the resulting Node untouched.
type Cell struct {
	Pos     Coord
	Payload any
}

// Node is one traversable cell of a built Graph.
//
// ID is the node's index in Graph.Nodes and is stable for the lifetime of the
// graph, which lets searches keep their scratch state in plain slices.
type Node struct {
	ID      int
	Pos     Coord
	Payload any

	neighbors []*Node
}

// Neighbors returns the orthogonally adjacent nodes, ordered by ID.
// The returned slice is shared with the graph and must not be modified.
func (n *Node) Neighbors() []*Node {
	return n.neighbors
}

// String renders the node as "#id(x,y)".
func (n *Node) String() string {
	return fmt.Sprintf("#%d%s", n.ID, n.Pos)
}

// bucketKey indexes cells by the step-sized square they fall into.
type bucketKey struct {
	x, y int
}
