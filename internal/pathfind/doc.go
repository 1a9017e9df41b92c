// Package pathfind finds minimum-hop routes between two nodes of a grid.Graph
// using A* with a Manhattan-distance heuristic and a uniform edge cost of 1.
//
// Every query owns its own scratch state (scores, parents, open and closed
// sets), indexed by node ID and discarded when the query returns. The graph
// itself is only read, so any number of queries may run concurrently against
// the same graph.
//
// A query has exactly one of three outcomes:
//
//   - a Result with Found set and the route from start to goal,
//   - a Result with Found unset when the goal is unreachable (not an error),
//   - an error: ErrPrecondition for caller mistakes, ErrExpansionLimit when
//     WithMaxExpansions cuts the search short, or the context's error.
//
// Among open nodes with equal fScore, the one with the smaller heuristic
// (the deeper one) is expanded first, then the one discovered first. The
// chosen route is therefore deterministic for a given graph, though other
// routes of the same length may exist.
package pathfind
