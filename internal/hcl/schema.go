package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all possible top-level blocks from any file.
type fileRoot struct {
	Grids  []*gridBlock `hcl:"grid,block"`
	Walks  []*walkBlock `hcl:"walk,block"`
	Remain hcl.Body     `hcl:",remain"`
}

// gridBlock represents a `grid` block: a layout map, explicit cells, or both.
type gridBlock struct {
	Name      string         `hcl:"name,label"`
	Step      *float64       `hcl:"step,optional"`
	Tolerance *float64       `hcl:"tolerance,optional"`
	Origin    hcl.Expression `hcl:"origin,optional"`
	Layout    []string       `hcl:"layout,optional"`
	Cells     []*cellBlock   `hcl:"cell,block"`
}

// cellBlock represents an explicit `cell` inside a grid, in world coordinates.
type cellBlock struct {
	X     float64 `hcl:"x"`
	Y     float64 `hcl:"y"`
	Label string  `hcl:"label,optional"`
}

// walkBlock represents a `walk` block. Start and goal are `[x, y]` tuples;
// leaving both out asks for random placement.
type walkBlock struct {
	Name  string         `hcl:"name,label"`
	Grid  string         `hcl:"grid"`
	Start hcl.Expression `hcl:"start,optional"`
	Goal  hcl.Expression `hcl:"goal,optional"`
}
