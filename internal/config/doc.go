// Package config defines the format-agnostic model of grid files (grids and
// the walks to run on them), along with the Loader interface implemented by
// the format-specific packages.
//
// The `config.Model` is the single source of truth for the app package.
// Concrete loaders, such as for HCL or YAML, are provided in separate packages.
package config
