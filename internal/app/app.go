package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"github.com/specialistvlad/gridwalk/internal/hcl"
	"github.com/specialistvlad/gridwalk/internal/pathfind"
	"github.com/specialistvlad/gridwalk/internal/yamlconf"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	loaders    []config.Loader
	seed       uint64
	graphs     atomic.Pointer[graphSet]
	httpServer *http.Server
}

// defaultLoaders covers every grid file format gridwalk understands.
func defaultLoaders() []config.Loader {
	return []config.Loader{hcl.NewLoader(), yamlconf.NewLoader()}
}

// gridFileExtensions are the extensions the file watcher reacts to.
func gridFileExtensions() []string {
	return append([]string{hcl.Extension}, yamlconf.Extensions...)
}

// NewApp is the constructor for the main application. It loads every grid
// file, builds the graphs, and returns a ready App with its own isolated
// logger. Configuration that cannot be loaded is a fatal startup error and
// panics.
func NewApp(outW io.Writer, appConfig *Config, loaders ...config.Loader) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(loaders) == 0 {
		loaders = defaultLoaders()
	}

	set, err := loadGraphSet(ctx, appConfig.GridPath, loaders)
	if err != nil {
		panic(err)
	}
	logger.Debug("Configuration loaded and graphs built.", "grids", len(set.graphs), "walks", len(set.model.Walks))

	if appConfig.Walk != "" {
		if _, ok := set.model.Walks[appConfig.Walk]; !ok {
			panic(fmt.Errorf("unknown walk %q", appConfig.Walk))
		}
	}

	seed := appConfig.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	a := &App{
		outW:    outW,
		logger:  logger,
		config:  appConfig,
		loaders: loaders,
		seed:    seed,
	}
	a.graphs.Store(set)
	return a
}

// Graph returns the currently active graph for the named grid.
func (a *App) Graph(name string) (*grid.Graph, bool) {
	g, ok := a.graphs.Load().graphs[name]
	return g, ok
}

// searchOptions returns the path search options derived from the config.
func (a *App) searchOptions() []pathfind.Option {
	if a.config.MaxExpansions > 0 {
		return []pathfind.Option{pathfind.WithMaxExpansions(a.config.MaxExpansions)}
	}
	return nil
}
