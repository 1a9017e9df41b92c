// Package walk drives a single actor across a built grid.
//
// A Walker owns one placement (start and goal) at a time and moves through
// the phases Idle, PlacingStart, PlacingGoal, Searching, Animating and
// finally Completed, or Failed when no route exists or a sink rejects an
// event. Every observable change is reported as an Event to a Sink: the
// placement, one step per path cell with a fixed delay between them, and
// either the arrival or the absence of a path.
//
// The grid itself is never mutated; many walkers can share one graph.
package walk
