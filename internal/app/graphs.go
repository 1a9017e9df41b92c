package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
)

// graphSet is one immutable generation of loaded definitions and their built
// graphs. A reload builds a new set and swaps it in whole.
type graphSet struct {
	model  *config.Model
	graphs map[string]*grid.Graph
}

// loadGraphSet runs every loader over path, merges and validates the result,
// and builds a graph per grid definition.
func loadGraphSet(ctx context.Context, path string, loaders []config.Loader) (*graphSet, error) {
	logger := ctxlog.FromContext(ctx)

	models := make([]*config.Model, 0, len(loaders))
	for _, l := range loaders {
		m, err := l.Load(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		models = append(models, m)
	}
	model, err := config.Merge(models...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	graphs := make(map[string]*grid.Graph, len(model.Grids))
	for _, name := range model.GridNames() {
		g, err := model.Grids[name].Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build %w", err)
		}
		logger.Debug("Grid built.",
			"grid", name,
			"nodes", g.Len(),
			"edges", g.EdgeCount(),
			"components", len(g.Components()),
		)
		graphs[name] = g
	}
	return &graphSet{model: model, graphs: graphs}, nil
}

// reload rebuilds every graph from disk and swaps the new set in. On failure
// the previous set stays active.
func (a *App) reload(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	set, err := loadGraphSet(ctx, a.config.GridPath, a.loaders)
	if err != nil {
		logger.Error("Reload failed, keeping previous grids.", "error", err)
		return err
	}
	a.graphs.Store(set)
	logger.Info("🔄 Grids reloaded.", "grids", len(set.graphs), "walks", len(set.model.Walks))
	return nil
}
