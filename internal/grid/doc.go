// Package grid turns a set of cell coordinates into an undirected graph in
// which every cell is connected to its orthogonal (4-directional) neighbors.
//
// # Why Grid Package Exists
//
// Path queries need a fixed topology to run against. The grid package owns
// that topology and nothing else: it is built once from the cells a caller
// supplies and is never mutated afterwards. Search bookkeeping (scores,
// parents, open and closed sets) lives in the pathfind package, local to a
// single query.
//
// # Adjacency
//
// Two cells are neighbors when they differ along exactly one axis by one grid
// step, and agree on the other axis. Both comparisons allow a small tolerance
// so that floating-point world coordinates (for example cells laid out 300
// units apart by a scene editor) still connect:
//
//	|Δa - step| <= tolerance  and  |Δb| <= tolerance
//
// Diagonal cells, cells further than one step away and the cell itself are
// never neighbors. Two cells closer than the tolerance on both axes are
// duplicates, and Build rejects them.
//
// # Lifecycle
//
//  1. **Built** once by Build from a slice of Cell values.
//  2. **Queried** concurrently by any number of path searches.
//  3. **Replaced** wholesale when the underlying cells change; a Graph is
//     never edited in place.
//
// # Thread-Safety
//
// A Graph is immutable after Build returns and is safe for concurrent use.
package grid
