package yamlconf

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/fsutil"
	"github.com/specialistvlad/gridwalk/internal/grid"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file extensions handled by this loader.
var Extensions = []string{".yaml", ".yml"}

type fileSpec struct {
	Grids map[string]gridSpec `yaml:"grids"`
	Walks map[string]walkSpec `yaml:"walks"`
}

type gridSpec struct {
	Step      *float64   `yaml:"step"`
	Tolerance *float64   `yaml:"tolerance"`
	Origin    []float64  `yaml:"origin"`
	Layout    []string   `yaml:"layout"`
	Cells     []cellSpec `yaml:"cells"`
}

type cellSpec struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	Label string  `yaml:"label"`
}

type walkSpec struct {
	Grid  string    `yaml:"grid"`
	Start []float64 `yaml:"start"`
	Goal  []float64 `yaml:"goal"`
}

// Loader implements config.Loader for YAML files.
type Loader struct{}

// NewLoader creates a new YAML configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads every .yaml/.yml file under paths and merges them into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := fsutil.FindFilesByExtension(paths, Extensions...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered YAML files.", "count", len(files))

	models := make([]*config.Model, 0, len(files))
	for _, file := range files {
		model, err := loadFile(file)
		if err != nil {
			return nil, err
		}
		models = append(models, model)
	}
	return config.Merge(models...)
}

func loadFile(file string) (*config.Model, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("yamlconf: load %s: %w", file, err)
	}
	var spec fileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("yamlconf: unmarshal %s: %w", file, err)
	}

	model := config.NewModel()
	for name, gs := range spec.Grids {
		g := config.NewGrid(name)
		g.Source = file
		g.Layout = gs.Layout
		if gs.Step != nil {
			g.Step = *gs.Step
		}
		if gs.Tolerance != nil {
			g.Tolerance = *gs.Tolerance
		}
		origin, err := toCoord(gs.Origin)
		if err != nil {
			return nil, fmt.Errorf("yamlconf: %s: grid %q origin: %w", file, name, err)
		}
		if origin != nil {
			g.Origin = *origin
		}
		for _, c := range gs.Cells {
			g.Cells = append(g.Cells, config.Cell(c))
		}
		model.Grids[name] = g
	}
	for name, ws := range spec.Walks {
		if ws.Grid == "" {
			return nil, fmt.Errorf("yamlconf: %s: walk %q: grid is required", file, name)
		}
		start, err := toCoord(ws.Start)
		if err != nil {
			return nil, fmt.Errorf("yamlconf: %s: walk %q start: %w", file, name, err)
		}
		goal, err := toCoord(ws.Goal)
		if err != nil {
			return nil, fmt.Errorf("yamlconf: %s: walk %q goal: %w", file, name, err)
		}
		model.Walks[name] = &config.Walk{
			Name:   name,
			Grid:   ws.Grid,
			Start:  start,
			Goal:   goal,
			Source: file,
		}
	}
	return model, nil
}

func toCoord(xy []float64) (*grid.Coord, error) {
	switch len(xy) {
	case 0:
		return nil, nil
	case 2:
		return &grid.Coord{X: xy[0], Y: xy[1]}, nil
	default:
		return nil, fmt.Errorf("expected [x, y], got %d elements", len(xy))
	}
}
