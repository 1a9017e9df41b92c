package pathfind

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
)

var (
	// ErrPrecondition marks caller errors: an empty graph, or a start or goal
	// node that does not belong to the graph being searched.
	ErrPrecondition = errors.New("pathfind: precondition violated")
	// ErrExpansionLimit is returned when a search expands more nodes than
	// allowed by WithMaxExpansions.
	ErrExpansionLimit = errors.New("pathfind: expansion limit exceeded")
)

// Heuristic estimates the number of hops between two coordinates on a grid
// with the given step. It must be admissible and consistent; closed nodes
// are never reopened.
type Heuristic func(from, to grid.Coord, step float64) int

// Manhattan is the default heuristic: |Δx| + |Δy| measured in grid steps.
// The distance is rounded so that coordinate noise below half a step does
// not turn an exact estimate into an overestimate.
func Manhattan(from, to grid.Coord, step float64) int {
	d := math.Abs(from.X-to.X) + math.Abs(from.Y-to.Y)
	return int(math.Round(d / step))
}

// Zero is a heuristic that turns the search into a uniform-cost
// (breadth-first) search.
func Zero(grid.Coord, grid.Coord, float64) int { return 0 }

// Result contains the outcome of a search.
type Result struct {
	// Path lists the nodes from start to goal inclusive. Nil unless Found.
	Path []*grid.Node
	// Found reports whether the goal was reached.
	Found bool
	// Expanded counts the nodes taken off the open set.
	Expanded int
}

// Hops returns the number of edges on the path, or -1 when no path was found.
func (r Result) Hops() int {
	if !r.Found {
		return -1
	}
	return len(r.Path) - 1
}

// Options defines parameters for the search.
type Options struct {
	MaxExpansions int
	Heuristic     Heuristic
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithMaxExpansions bounds the number of expanded nodes. Zero means unbounded.
func WithMaxExpansions(limit int) Option {
	return func(o *Options) { o.MaxExpansions = limit }
}

// WithHeuristic replaces the Manhattan heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *Options) { o.Heuristic = h }
}

// FindPath computes a minimum-hop path from start to goal over g.
//
// When start == goal the path is the single node. An unreachable goal yields
// a Result with Found unset and a nil error.
func FindPath(ctx context.Context, g *grid.Graph, start, goal *grid.Node, options ...Option) (Result, error) {
	opts := Options{Heuristic: Manhattan}
	for _, option := range options {
		option(&opts)
	}

	if g == nil || g.Len() == 0 {
		return Result{}, fmt.Errorf("%w: graph is empty", ErrPrecondition)
	}
	if !g.Contains(start) {
		return Result{}, fmt.Errorf("%w: start node %v is not part of the graph", ErrPrecondition, start)
	}
	if !g.Contains(goal) {
		return Result{}, fmt.Errorf("%w: goal node %v is not part of the graph", ErrPrecondition, goal)
	}

	s := newSearch(g, goal, opts)
	res, err := s.run(ctx, start)

	ctxlog.FromContext(ctx).Debug("Path search finished.",
		"start", start.Pos.String(),
		"goal", goal.Pos.String(),
		"found", res.Found,
		"hops", res.Hops(),
		"expanded", res.Expanded,
	)
	return res, err
}

// FindPathBetween resolves two coordinates to nodes of g and runs FindPath.
// A coordinate that matches no cell is a precondition error.
func FindPathBetween(ctx context.Context, g *grid.Graph, from, to grid.Coord, options ...Option) (Result, error) {
	if g == nil {
		return Result{}, fmt.Errorf("%w: graph is empty", ErrPrecondition)
	}
	start, ok := g.At(from)
	if !ok {
		return Result{}, fmt.Errorf("%w: no cell at start coordinate %v", ErrPrecondition, from)
	}
	goal, ok := g.At(to)
	if !ok {
		return Result{}, fmt.Errorf("%w: no cell at goal coordinate %v", ErrPrecondition, to)
	}
	return FindPath(ctx, g, start, goal, options...)
}

// search holds the scratch state of a single query, indexed by node ID.
type search struct {
	graph *grid.Graph
	goal  *grid.Node
	opts  Options

	gScore []int
	parent []int
	closed []bool
	open   []*openItem // live open-set entry per node, nil when not open

	queue openQueue
	seq   uint64
}

func newSearch(g *grid.Graph, goal *grid.Node, opts Options) *search {
	n := g.Len()
	s := &search{
		graph:  g,
		goal:   goal,
		opts:   opts,
		gScore: make([]int, n),
		parent: make([]int, n),
		closed: make([]bool, n),
		open:   make([]*openItem, n),
	}
	for i := range s.gScore {
		s.gScore[i] = math.MaxInt
		s.parent[i] = -1
	}
	return s
}

func (s *search) heuristic(n *grid.Node) int {
	return s.opts.Heuristic(n.Pos, s.goal.Pos, s.graph.Step())
}

func (s *search) push(n *grid.Node, g int) {
	h := s.heuristic(n)
	item := &openItem{node: n, g: g, h: h, f: g + h, seq: s.seq}
	s.seq++
	s.open[n.ID] = item
	heap.Push(&s.queue, item)
}

func (s *search) run(ctx context.Context, start *grid.Node) (Result, error) {
	s.gScore[start.ID] = 0
	s.push(start, 0)

	expanded := 0
	for s.queue.Len() > 0 {
		if err := ctx.Err(); err != nil {
			return Result{Expanded: expanded}, err
		}

		current := heap.Pop(&s.queue).(*openItem)
		s.open[current.node.ID] = nil
		expanded++

		if current.node == s.goal {
			path, err := s.reconstruct(start)
			if err != nil {
				return Result{Expanded: expanded}, err
			}
			return Result{Path: path, Found: true, Expanded: expanded}, nil
		}
		if s.opts.MaxExpansions > 0 && expanded >= s.opts.MaxExpansions {
			return Result{Expanded: expanded}, fmt.Errorf("%w: %d nodes expanded", ErrExpansionLimit, expanded)
		}

		s.closed[current.node.ID] = true
		tentative := s.gScore[current.node.ID] + 1

		for _, nb := range current.node.Neighbors() {
			if s.closed[nb.ID] || tentative >= s.gScore[nb.ID] {
				continue
			}
			s.parent[nb.ID] = current.node.ID
			s.gScore[nb.ID] = tentative

			if item := s.open[nb.ID]; item != nil {
				item.g = tentative
				item.f = tentative + item.h
				heap.Fix(&s.queue, item.index)
			} else {
				s.push(nb, tentative)
			}
		}
	}
	return Result{Expanded: expanded}, nil
}

// reconstruct follows parent links from the goal back to start.
func (s *search) reconstruct(start *grid.Node) ([]*grid.Node, error) {
	path := []*grid.Node{s.goal}
	for current := s.goal; current != start; {
		id := s.parent[current.ID]
		if id < 0 || len(path) > s.graph.Len() {
			return nil, fmt.Errorf("pathfind: broken parent chain at node %v", current)
		}
		current, _ = s.graph.Node(id)
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
