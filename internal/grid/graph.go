package grid

import (
	"fmt"
	"math"
	"slices"
)

// Graph is an immutable set of nodes with symmetric orthogonal adjacency.
type Graph struct {
	step      float64
	tolerance float64
	edges     int

	nodes   []*Node
	buckets map[bucketKey][]*Node
}

// Options controls how Build decides adjacency.
type Options struct {
	Step      float64
	Tolerance float64
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStep sets the distance between orthogonally adjacent cells.
func WithStep(step float64) Option {
	return func(o *Options) { o.Step = step }
}

// WithTolerance sets the epsilon used for every coordinate comparison.
func WithTolerance(tolerance float64) Option {
	return func(o *Options) { o.Tolerance = tolerance }
}

// Build creates a graph with one node per cell, linking each node to its
// orthogonal neighbors. Node IDs follow the order of cells. An empty input
// yields an empty graph.
//
// Cells are indexed by step-sized buckets so that each cell is only compared
// with the handful of cells around it, giving linear construction time for
// lattice-shaped inputs.
func Build(cells []Cell, options ...Option) (*Graph, error) {
	opts := Options{Step: DefaultStep, Tolerance: DefaultTolerance}
	for _, option := range options {
		option(&opts)
	}
	// A tolerance of half a step or more would let one cell match two
	// lattice positions at once.
	if !(opts.Step > 0) || opts.Tolerance < 0 || opts.Tolerance >= opts.Step/2 {
		return nil, fmt.Errorf("%w: step=%g tolerance=%g", ErrInvalidStep, opts.Step, opts.Tolerance)
	}

	g := &Graph{
		step:      opts.Step,
		tolerance: opts.Tolerance,
		nodes:     make([]*Node, 0, len(cells)),
		buckets:   make(map[bucketKey][]*Node, len(cells)),
	}

	for i, cell := range cells {
		n := &Node{ID: i, Pos: cell.Pos, Payload: cell.Payload}
		key := g.keyOf(n.Pos)

		// Within tolerance < step/2, a neighbor along an axis lands at most
		// two buckets away and at most one bucket off the other axis.
		for dx := -2; dx <= 2; dx++ {
			for dy := -2; dy <= 2; dy++ {
				for _, other := range g.buckets[bucketKey{key.x + dx, key.y + dy}] {
					if g.coincide(n.Pos, other.Pos) {
						return nil, fmt.Errorf("%w: cell %d %s overlaps cell %d %s", ErrDuplicateCell, n.ID, n.Pos, other.ID, other.Pos)
					}
					if g.adjacent(n.Pos, other.Pos) {
						n.neighbors = append(n.neighbors, other)
						other.neighbors = append(other.neighbors, n)
						g.edges++
					}
				}
			}
		}

		g.buckets[key] = append(g.buckets[key], n)
		g.nodes = append(g.nodes, n)
	}

	for _, n := range g.nodes {
		slices.SortFunc(n.neighbors, func(a, b *Node) int { return a.ID - b.ID })
	}
	return g, nil
}

// keyOf returns the bucket a coordinate falls into.
func (g *Graph) keyOf(c Coord) bucketKey {
	return bucketKey{
		x: int(math.Floor(c.X / g.step)),
		y: int(math.Floor(c.Y / g.step)),
	}
}

// coincide reports whether two coordinates are the same cell.
func (g *Graph) coincide(a, b Coord) bool {
	return math.Abs(a.X-b.X) <= g.tolerance && math.Abs(a.Y-b.Y) <= g.tolerance
}

// adjacent reports whether two coordinates are exactly one step apart along
// one axis and aligned on the other.
func (g *Graph) adjacent(a, b Coord) bool {
	dx := math.Abs(a.X - b.X)
	dy := math.Abs(a.Y - b.Y)
	horizontal := math.Abs(dx-g.step) <= g.tolerance && dy <= g.tolerance
	vertical := math.Abs(dy-g.step) <= g.tolerance && dx <= g.tolerance
	return horizontal || vertical
}

// Step returns the distance between adjacent cells.
func (g *Graph) Step() float64 { return g.step }

// Tolerance returns the coordinate comparison epsilon.
func (g *Graph) Tolerance() float64 { return g.tolerance }

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// EdgeCount returns the number of undirected edges.
func (g *Graph) EdgeCount() int { return g.edges }

// Nodes returns all nodes ordered by ID. The slice is a copy; the nodes are not.
func (g *Graph) Nodes() []*Node {
	return slices.Clone(g.nodes)
}

// Node returns the node with the given ID.
func (g *Graph) Node(id int) (*Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return nil, false
	}
	return g.nodes[id], true
}

// Contains reports whether n is a node of this graph (and not merely a node
// with the same ID from another graph).
func (g *Graph) Contains(n *Node) bool {
	if g == nil || n == nil {
		return false
	}
	found, ok := g.Node(n.ID)
	return ok && found == n
}

// At returns the node whose coordinate matches c within the tolerance.
func (g *Graph) At(c Coord) (*Node, bool) {
	key := g.keyOf(c)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for _, n := range g.buckets[bucketKey{key.x + dx, key.y + dy}] {
				if g.coincide(c, n.Pos) {
					return n, true
				}
			}
		}
	}
	return nil, false
}

// Components partitions the graph into connected components. Components are
// ordered by their lowest node ID and each one lists its nodes by ID.
func (g *Graph) Components() [][]*Node {
	seen := make([]bool, len(g.nodes))
	var components [][]*Node

	for _, root := range g.nodes {
		if seen[root.ID] {
			continue
		}
		seen[root.ID] = true
		component := []*Node{root}
		for i := 0; i < len(component); i++ {
			for _, nb := range component[i].neighbors {
				if !seen[nb.ID] {
					seen[nb.ID] = true
					component = append(component, nb)
				}
			}
		}
		slices.SortFunc(component, func(a, b *Node) int { return a.ID - b.ID })
		components = append(components, component)
	}
	return components
}
