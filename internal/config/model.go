package config

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/gridwalk/internal/grid"
)

var (
	// ErrUnknownGrid is returned when a walk refers to a grid that was not defined.
	ErrUnknownGrid = errors.New("config: unknown grid")
	// ErrDuplicateName is returned when two files define the same grid or walk.
	ErrDuplicateName = errors.New("config: duplicate name")
)

// Model is the unified, format-agnostic representation of all loaded grid files.
type Model struct {
	Grids map[string]*Grid
	Walks map[string]*Walk
}

// Grid is the format-agnostic representation of a `grid` block.
type Grid struct {
	Name      string
	Step      float64
	Tolerance float64
	Origin    grid.Coord
	Layout    []string
	Cells     []Cell
	Source    string // file the grid was loaded from
}

// Cell is an explicitly placed cell in world coordinates.
type Cell struct {
	X     float64
	Y     float64
	Label string
}

// Walk is the format-agnostic representation of a `walk` block. A walk
// without Start and Goal places both at random.
type Walk struct {
	Name   string
	Grid   string
	Start  *grid.Coord
	Goal   *grid.Coord
	Source string
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		Grids: make(map[string]*Grid),
		Walks: make(map[string]*Walk),
	}
}

// NewGrid returns a grid definition with the default step and tolerance.
func NewGrid(name string) *Grid {
	return &Grid{
		Name:      name,
		Step:      grid.DefaultStep,
		Tolerance: grid.DefaultTolerance,
	}
}

// Merge combines models into a new one. Defining the same grid or walk name
// twice is an error.
func Merge(models ...*Model) (*Model, error) {
	merged := NewModel()
	for _, m := range models {
		if m == nil {
			continue
		}
		for name, g := range m.Grids {
			if prev, ok := merged.Grids[name]; ok {
				return nil, fmt.Errorf("%w: grid %q defined in %s and %s", ErrDuplicateName, name, prev.Source, g.Source)
			}
			merged.Grids[name] = g
		}
		for name, w := range m.Walks {
			if prev, ok := merged.Walks[name]; ok {
				return nil, fmt.Errorf("%w: walk %q defined in %s and %s", ErrDuplicateName, name, prev.Source, w.Source)
			}
			merged.Walks[name] = w
		}
	}
	return merged, nil
}

// Validate checks cross references between walks and grids.
func (m *Model) Validate() error {
	for _, name := range m.WalkNames() {
		w := m.Walks[name]
		if _, ok := m.Grids[w.Grid]; !ok {
			return fmt.Errorf("%w: walk %q refers to grid %q", ErrUnknownGrid, name, w.Grid)
		}
		if (w.Start == nil) != (w.Goal == nil) {
			return fmt.Errorf("walk %q: start and goal must be set together", name)
		}
	}
	return nil
}

// GridNames returns the grid names in sorted order.
func (m *Model) GridNames() []string {
	return sortedKeys(m.Grids)
}

// WalkNames returns the walk names in sorted order.
func (m *Model) WalkNames() []string {
	return sortedKeys(m.Walks)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildCells expands the layout and appends the explicit cells. Layout cells
// carry their "r<row>c<col>" label, explicit cells their own label.
func (g *Grid) BuildCells() ([]grid.Cell, error) {
	cells, err := grid.LayoutCells(g.Layout, g.Origin, g.Step)
	if err != nil {
		return nil, fmt.Errorf("grid %q: %w", g.Name, err)
	}
	for _, c := range g.Cells {
		cells = append(cells, grid.Cell{Pos: grid.Coord{X: c.X, Y: c.Y}, Payload: c.Label})
	}
	return cells, nil
}

// Build expands the grid's cells and builds its graph.
func (g *Grid) Build() (*grid.Graph, error) {
	cells, err := g.BuildCells()
	if err != nil {
		return nil, err
	}
	graph, err := grid.Build(cells, grid.WithStep(g.Step), grid.WithTolerance(g.Tolerance))
	if err != nil {
		return nil, fmt.Errorf("grid %q: %w", g.Name, err)
	}
	return graph, nil
}
