package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/gridwalk/internal/config"
	"github.com/specialistvlad/gridwalk/internal/ctxlog"
	"github.com/specialistvlad/gridwalk/internal/fsutil"
)

// Extension is the file extension handled by this loader.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under paths and merges their grid and walk
// blocks into one model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	var models []*config.Model

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		model := config.NewModel()
		for _, block := range root.Grids {
			if _, dup := model.Grids[block.Name]; dup {
				return nil, fmt.Errorf("%w: grid %q defined twice in %s", config.ErrDuplicateName, block.Name, file)
			}
			g, err := translateGrid(ctx, block, file)
			if err != nil {
				return nil, err
			}
			model.Grids[g.Name] = g
		}
		for _, block := range root.Walks {
			if _, dup := model.Walks[block.Name]; dup {
				return nil, fmt.Errorf("%w: walk %q defined twice in %s", config.ErrDuplicateName, block.Name, file)
			}
			w, err := translateWalk(ctx, block, file)
			if err != nil {
				return nil, err
			}
			model.Walks[w.Name] = w
		}
		models = append(models, model)
	}

	merged, err := config.Merge(models...)
	if err != nil {
		return nil, err
	}
	logger.Debug("HCL loading complete.", "grids", len(merged.Grids), "walks", len(merged.Walks))
	return merged, nil
}
