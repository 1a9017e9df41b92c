package config

import "context"

// Loader is the interface for a format-specific grid file loader.
type Loader interface {
	// Load reads every file under the given paths that this loader
	// understands and translates them into the format-agnostic model.
	// Files of other formats are ignored.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
