package grid

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lattice returns a w×h block of cells at integer coordinates offset by origin.
func lattice(origin Coord, w, h int, step float64) []Cell {
	cells := make([]Cell, 0, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cells = append(cells, Cell{Pos: Coord{X: origin.X + float64(x)*step, Y: origin.Y + float64(y)*step}})
		}
	}
	return cells
}

// requireWellFormed checks the adjacency invariants every built graph must hold.
func requireWellFormed(t *testing.T, g *Graph) {
	t.Helper()
	edges := 0
	for _, n := range g.Nodes() {
		for _, nb := range n.Neighbors() {
			require.NotSame(t, n, nb, "node %v lists itself as a neighbor", n)

			dx := math.Abs(n.Pos.X - nb.Pos.X)
			dy := math.Abs(n.Pos.Y - nb.Pos.Y)
			horizontal := math.Abs(dx-g.Step()) <= g.Tolerance() && dy <= g.Tolerance()
			vertical := math.Abs(dy-g.Step()) <= g.Tolerance() && dx <= g.Tolerance()
			require.True(t, horizontal != vertical, "%v and %v are not orthogonal neighbors", n, nb)

			require.Contains(t, nb.Neighbors(), n, "adjacency %v -> %v is not symmetric", n, nb)
			edges++
		}
	}
	require.Equal(t, g.EdgeCount()*2, edges)
}

func TestBuild_Lattice3x3(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	cells := lattice(Coord{}, 3, 3, 1)

	// --- Act ---
	g, err := Build(cells)

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, 9, g.Len())
	assert.Equal(t, 12, g.EdgeCount())
	requireWellFormed(t, g)

	center, ok := g.At(Coord{X: 1, Y: 1})
	require.True(t, ok)
	assert.Len(t, center.Neighbors(), 4)

	corner, ok := g.At(Coord{X: 0, Y: 0})
	require.True(t, ok)
	var got []Coord
	for _, nb := range corner.Neighbors() {
		got = append(got, nb.Pos)
	}
	assert.ElementsMatch(t, []Coord{{X: 1, Y: 0}, {X: 0, Y: 1}}, got)
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	g, err := Build(nil)

	require.NoError(t, err)
	assert.Equal(t, 0, g.Len())
	assert.Empty(t, g.Nodes())
	assert.Empty(t, g.Components())
}

func TestBuild_WorldUnitsWithNoise(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Cells 300 units apart with jitter well inside the tolerance.
	rng := rand.New(rand.NewPCG(7, 11))
	cells := lattice(Coord{X: -450, Y: 150}, 4, 3, 300)
	for i := range cells {
		cells[i].Pos.X += (rng.Float64() - 0.5) * 0.08
		cells[i].Pos.Y += (rng.Float64() - 0.5) * 0.08
	}

	// --- Act ---
	g, err := Build(cells, WithStep(300), WithTolerance(0.1))

	// --- Assert ---
	require.NoError(t, err)
	requireWellFormed(t, g)
	// A 4x3 lattice has 3*3 horizontal and 4*2 vertical edges.
	assert.Equal(t, 17, g.EdgeCount())
	assert.Len(t, g.Components(), 1)
}

func TestBuild_NoDiagonalsOrLongJumps(t *testing.T) {
	t.Parallel()

	cells := []Cell{
		{Pos: Coord{X: 0, Y: 0}},
		{Pos: Coord{X: 1, Y: 1}},   // diagonal
		{Pos: Coord{X: 2, Y: 0}},   // two steps away
		{Pos: Coord{X: 0, Y: 0.5}}, // half a step away
	}

	g, err := Build(cells)

	require.NoError(t, err)
	for _, n := range g.Nodes() {
		assert.Empty(t, n.Neighbors(), "node %v should be isolated", n)
	}
	assert.Len(t, g.Components(), 4)
}

func TestBuild_DuplicateCell(t *testing.T) {
	t.Parallel()

	cells := []Cell{
		{Pos: Coord{X: 0, Y: 0}},
		{Pos: Coord{X: 1, Y: 0}},
		{Pos: Coord{X: 0.05, Y: -0.05}},
	}

	_, err := Build(cells)

	require.ErrorIs(t, err, ErrDuplicateCell)
	assert.Contains(t, err.Error(), "cell 2")
}

func TestBuild_InvalidOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options []Option
	}{
		{name: "zero step", options: []Option{WithStep(0)}},
		{name: "negative step", options: []Option{WithStep(-1)}},
		{name: "NaN step", options: []Option{WithStep(math.NaN())}},
		{name: "negative tolerance", options: []Option{WithTolerance(-0.1)}},
		{name: "tolerance of half a step", options: []Option{WithStep(2), WithTolerance(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(lattice(Coord{}, 2, 2, 1), tt.options...)
			require.ErrorIs(t, err, ErrInvalidStep)
		})
	}
}

func TestBuild_RandomHolesStayWellFormed(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 20; round++ {
		var cells []Cell
		for _, c := range lattice(Coord{X: -3, Y: -3}, 9, 7, 1) {
			if rng.IntN(4) != 0 {
				cells = append(cells, c)
			}
		}
		rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })

		g, err := Build(cells)
		require.NoError(t, err)
		requireWellFormed(t, g)

		// Every lattice-adjacent pair present in the input must be linked.
		for _, n := range g.Nodes() {
			for _, offset := range []Coord{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
				other, ok := g.At(Coord{X: n.Pos.X + offset.X, Y: n.Pos.Y + offset.Y})
				if ok {
					assert.Contains(t, n.Neighbors(), other)
				}
			}
		}
	}
}

func TestGraph_Lookups(t *testing.T) {
	t.Parallel()

	g, err := Build(lattice(Coord{}, 2, 2, 10), WithStep(10))
	require.NoError(t, err)

	n, ok := g.At(Coord{X: 10.05, Y: 9.98})
	require.True(t, ok)
	assert.Equal(t, Coord{X: 10, Y: 10}, n.Pos)

	_, ok = g.At(Coord{X: 5, Y: 5})
	assert.False(t, ok)

	byID, ok := g.Node(n.ID)
	require.True(t, ok)
	assert.Same(t, n, byID)
	_, ok = g.Node(99)
	assert.False(t, ok)

	assert.True(t, g.Contains(n))
	other, err := Build(lattice(Coord{}, 2, 2, 10), WithStep(10))
	require.NoError(t, err)
	foreign, _ := other.Node(n.ID)
	assert.False(t, g.Contains(foreign), "a node from another graph must not be accepted")
	assert.False(t, g.Contains(nil))
}

func TestGraph_Components(t *testing.T) {
	t.Parallel()

	// Two 2x2 blocks separated by a gap column.
	cells := append(lattice(Coord{}, 2, 2, 1), lattice(Coord{X: 3}, 2, 2, 1)...)
	g, err := Build(cells)
	require.NoError(t, err)

	components := g.Components()

	require.Len(t, components, 2)
	assert.Len(t, components[0], 4)
	assert.Len(t, components[1], 4)
	assert.Equal(t, 0, components[0][0].ID)
	assert.Equal(t, 4, components[1][0].ID)
}
