// This file contains the logic for translating HCL schema structs (from
// schema.go) into the format-agnostic configuration model defined in the
// config package.

package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// coordType is the cty type every coordinate attribute is converted to.
var coordType = cty.List(cty.Number)

// translateGrid converts the HCL-specific grid schema into the agnostic model.
func translateGrid(ctx context.Context, b *gridBlock, file string) (*config.Grid, error) {
	g := config.NewGrid(b.Name)
	g.Source = file
	g.Layout = b.Layout
	if b.Step != nil {
		g.Step = *b.Step
	}
	if b.Tolerance != nil {
		g.Tolerance = *b.Tolerance
	}

	origin, err := decodeCoord(ctx, b.Origin)
	if err != nil {
		return nil, fmt.Errorf("in grid '%s', attribute 'origin': %w", b.Name, err)
	}
	if origin != nil {
		g.Origin = *origin
	}

	for _, c := range b.Cells {
		g.Cells = append(g.Cells, config.Cell{X: c.X, Y: c.Y, Label: c.Label})
	}
	return g, nil
}

// translateWalk converts the HCL-specific walk schema into the agnostic model.
func translateWalk(ctx context.Context, b *walkBlock, file string) (*config.Walk, error) {
	start, err := decodeCoord(ctx, b.Start)
	if err != nil {
		return nil, fmt.Errorf("in walk '%s', attribute 'start': %w", b.Name, err)
	}
	goal, err := decodeCoord(ctx, b.Goal)
	if err != nil {
		return nil, fmt.Errorf("in walk '%s', attribute 'goal': %w", b.Name, err)
	}
	return &config.Walk{
		Name:   b.Name,
		Grid:   b.Grid,
		Start:  start,
		Goal:   goal,
		Source: file,
	}, nil
}

// decodeCoord evaluates an `[x, y]` expression. A missing attribute (which
// gohcl hands over as a null-valued expression) decodes to nil.
func decodeCoord(ctx context.Context, expr hcl.Expression) (*grid.Coord, error) {
	logger := ctxlog.FromContext(ctx)
	if expr == nil {
		return nil, nil
	}

	val, diags := expr.Value(nil)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, nil
	}

	converted, err := convert.Convert(val, coordType)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), coordType.FriendlyName(), err)
	}
	if !val.Type().Equals(converted.Type()) {
		logger.Debug("Implicitly converted value type.",
			"from", val.Type().FriendlyName(),
			"to", converted.Type().FriendlyName(),
		)
	}

	var xy []float64
	if err := gocty.FromCtyValue(converted, &xy); err != nil {
		return nil, err
	}
	if len(xy) != 2 {
		return nil, fmt.Errorf("expected [x, y], got %d elements", len(xy))
	}
	return &grid.Coord{X: xy[0], Y: xy[1]}, nil
}
