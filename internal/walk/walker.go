package walk

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/specialistvlad/gridwalk/internal/pathfind"
)

// DefaultStepDelay is the pause between two consecutive step events.
const DefaultStepDelay = 500 * time.Millisecond

var (
	// ErrNotPlaced is returned by Run before a successful Place or PlaceRandom.
	ErrNotPlaced = errors.New("walk: start and goal not placed")
	// ErrNoPath is returned by Run when the goal is unreachable from the start.
	ErrNoPath = errors.New("walk: no path")
	// ErrTooFewCells is returned by PlaceRandom on grids with fewer than two cells.
	ErrTooFewCells = errors.New("walk: grid needs at least two cells")
	// ErrUnknownCell is returned by Place for a coordinate that is not a cell.
	ErrUnknownCell = errors.New("walk: no cell at coordinate")
)

// Options configures a Walker.
type Options struct {
	StepDelay time.Duration
	Search    []pathfind.Option
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithStepDelay sets the pause between step events. Zero disables it.
func WithStepDelay(d time.Duration) Option {
	return func(o *Options) { o.StepDelay = d }
}

// WithSearchOptions passes options through to pathfind.FindPath.
func WithSearchOptions(opts ...pathfind.Option) Option {
	return func(o *Options) { o.Search = append(o.Search, opts...) }
}

// Walker walks one actor over a graph. Its methods are safe to call from
// several goroutines, but Place and Run are expected to be driven from one.
type Walker struct {
	name  string
	graph *grid.Graph
	sink  Sink
	opts  Options

	mu    sync.Mutex
	phase Phase
	start *grid.Node
	goal  *grid.Node
	path  []*grid.Node
}

// New creates an idle walker named name over g. A nil sink discards events.
func New(name string, g *grid.Graph, sink Sink, options ...Option) *Walker {
	opts := Options{StepDelay: DefaultStepDelay}
	for _, o := range options {
		o(&opts)
	}
	if sink == nil {
		sink = SinkFunc(func(context.Context, Event) error { return nil })
	}
	return &Walker{name: name, graph: g, sink: sink, opts: opts}
}

// Name returns the walker's name.
func (w *Walker) Name() string { return w.name }

// Phase returns the current phase.
func (w *Walker) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

// Path returns a copy of the last path found, or nil.
func (w *Walker) Path() []*grid.Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.path)
}

func (w *Walker) setPhase(p Phase) {
	w.mu.Lock()
	w.phase = p
	w.mu.Unlock()
}

// Place puts the actor on the cell at start and the target on the cell at
// goal, then emits a placed event. The walker stays in PhasePlacingGoal until
// Run is called.
func (w *Walker) Place(ctx context.Context, start, goal grid.Coord) error {
	w.setPhase(PhasePlacingStart)
	s, ok := w.graph.At(start)
	if !ok {
		w.setPhase(PhaseFailed)
		return fmt.Errorf("%w: start %s", ErrUnknownCell, start)
	}
	w.setPhase(PhasePlacingGoal)
	g, ok := w.graph.At(goal)
	if !ok {
		w.setPhase(PhaseFailed)
		return fmt.Errorf("%w: goal %s", ErrUnknownCell, goal)
	}
	return w.placed(ctx, s, g)
}

// PlaceRandom picks the start uniformly among all cells, then draws the goal
// until it differs from the start.
func (w *Walker) PlaceRandom(ctx context.Context, rng *rand.Rand) error {
	nodes := w.graph.Nodes()
	if len(nodes) < 2 {
		w.setPhase(PhaseFailed)
		return fmt.Errorf("%w: have %d", ErrTooFewCells, len(nodes))
	}
	w.setPhase(PhasePlacingStart)
	s := nodes[rng.IntN(len(nodes))]
	w.setPhase(PhasePlacingGoal)
	g := s
	for g == s {
		g = nodes[rng.IntN(len(nodes))]
	}
	return w.placed(ctx, s, g)
}

func (w *Walker) placed(ctx context.Context, s, g *grid.Node) error {
	w.mu.Lock()
	w.start, w.goal, w.path = s, g, nil
	w.mu.Unlock()

	return w.emit(ctx, Event{Kind: EventPlaced, Pos: s.Pos, Payload: s.Payload})
}

// Run searches for a path between the placed cells and emits one step event
// per path cell. The first step is emitted immediately, the rest after the
// configured delay. It returns ErrNoPath when the goal is unreachable and
// ctx.Err() when the context ends before the walk does.
func (w *Walker) Run(ctx context.Context) error {
	w.mu.Lock()
	start, goal := w.start, w.goal
	w.mu.Unlock()
	if start == nil || goal == nil {
		return ErrNotPlaced
	}
	logger := ctxlog.FromContext(ctx).With("walk", w.name)

	w.setPhase(PhaseSearching)
	res, err := pathfind.FindPath(ctx, w.graph, start, goal, w.opts.Search...)
	if err != nil {
		w.setPhase(PhaseFailed)
		return fmt.Errorf("walk %q: %w", w.name, err)
	}
	if !res.Found {
		if err := w.emit(ctx, Event{Kind: EventNoPath}); err != nil {
			return err
		}
		w.setPhase(PhaseFailed)
		return fmt.Errorf("walk %q: %w from %s to %s", w.name, ErrNoPath, start.Pos, goal.Pos)
	}

	w.mu.Lock()
	w.path = res.Path
	w.phase = PhaseAnimating
	w.mu.Unlock()
	logger.Debug("Walking path.", "hops", res.Hops(), "expanded", res.Expanded)

	for i, n := range res.Path {
		if i > 0 {
			if err := sleep(ctx, w.opts.StepDelay); err != nil {
				w.setPhase(PhaseFailed)
				return err
			}
		}
		ev := Event{Kind: EventStep, Index: i, Total: len(res.Path), Pos: n.Pos, Payload: n.Payload}
		if err := w.emit(ctx, ev); err != nil {
			return err
		}
	}

	if err := w.emit(ctx, Event{Kind: EventArrived, Pos: goal.Pos, Payload: goal.Payload}); err != nil {
		return err
	}
	w.setPhase(PhaseCompleted)
	return nil
}

// emit fills in the walk identity and forwards ev to the sink. A sink error
// moves the walker to PhaseFailed.
func (w *Walker) emit(ctx context.Context, ev Event) error {
	w.mu.Lock()
	ev.Walk = w.name
	ev.Start, ev.Goal = w.start.Pos, w.goal.Pos
	w.mu.Unlock()

	if err := w.sink.Emit(ctx, ev); err != nil {
		w.setPhase(PhaseFailed)
		return fmt.Errorf("walk %q: emit %s: %w", w.name, ev.Kind, err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
