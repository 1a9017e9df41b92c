package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/specialistvlad/gridwalk/internal/broadcast"
	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/specialistvlad/gridwalk/internal/walk"
	"github.com/specialistvlad/gridwalk/internal/watch"
	"golang.org/x/sync/errgroup"
)

// Run executes the configured walks. With an HTTP port it keeps serving path
// queries (and reloading grids when watching) until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "seed", a.seed)

	sinks := []walk.Sink{walk.LogSink{}}
	if a.config.EventsURL != "" {
		pub, err := broadcast.Dial(ctx, a.config.EventsURL, a.config.EventsNamespace, a.config.EventsInsecure)
		if err != nil {
			return fmt.Errorf("failed to connect event viewer: %w", err)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}
	sink := walk.Sinks(sinks...)

	serving := a.config.HTTPPort > 0
	if serving {
		if err := a.startServer(ctx); err != nil {
			return err
		}
		defer a.closeServer(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	if a.config.Watch {
		w, err := watch.New([]string{a.config.GridPath}, gridFileExtensions(), watch.DefaultDebounce)
		if err != nil {
			return fmt.Errorf("failed to watch grid files: %w", err)
		}
		g.Go(func() error { return w.Run(gctx) })
		g.Go(func() error {
			for file := range w.Changes {
				a.logger.Info("Grid files changed, reloading.", "file", file)
				_ = a.reload(gctx)
			}
			return nil
		})
	}
	g.Go(func() error { return a.runWalks(gctx, sink) })
	if serving {
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	err := g.Wait()
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// Interrupted from outside; not a failure.
		err = nil
	}
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// runWalks places and walks every selected walk concurrently. Each walk gets
// its own random source derived from the app seed, so seeded runs repeat.
func (a *App) runWalks(ctx context.Context, sink walk.Sink) error {
	set := a.graphs.Load()
	names := set.model.WalkNames()
	if a.config.Walk != "" {
		names = []string{a.config.Walk}
	}
	if len(names) == 0 {
		a.logger.Warn("No walks defined, nothing to run.")
		return nil
	}

	a.logger.Info("🚀 Starting walks...", "count", len(names), "seed", a.seed)
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		def := set.model.Walks[name]
		graph := set.graphs[def.Grid]
		rng := rand.New(rand.NewPCG(a.seed, uint64(i)))
		g.Go(func() error { return a.runWalk(gctx, def, graph, sink, rng) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("🏁 Walks finished.")
	return nil
}

func (a *App) runWalk(ctx context.Context, def *config.Walk, g *grid.Graph, sink walk.Sink, rng *rand.Rand) error {
	ctx = ctxlog.With(ctx, "grid", def.Grid)
	logger := ctxlog.FromContext(ctx).With("walk", def.Name)

	w := walk.New(def.Name, g, sink,
		walk.WithStepDelay(a.config.StepDelay),
		walk.WithSearchOptions(a.searchOptions()...),
	)
	var err error
	if def.Start != nil {
		err = w.Place(ctx, *def.Start, *def.Goal)
	} else {
		err = w.PlaceRandom(ctx, rng)
	}
	if err != nil {
		return fmt.Errorf("walk %q: %w", def.Name, err)
	}

	err = w.Run(ctx)
	if errors.Is(err, walk.ErrNoPath) {
		logger.Warn("Goal unreachable from start.", "error", err)
		return nil
	}
	return err
}
