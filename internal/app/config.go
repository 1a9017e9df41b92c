package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GridPath string // .hcl, .yaml and .yml files
	Walk     string // run only this walk; empty runs all

	StepDelay     time.Duration
	MaxExpansions int
	Seed          uint64 // 0 picks a time based seed

	HTTPPort int
	Watch    bool

	EventsURL       string
	EventsNamespace string
	EventsInsecure  bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GridPath == "" {
		return nil, errors.New("GridPath is a required configuration field and cannot be empty")
	}
	if cfg.StepDelay < 0 {
		return nil, errors.New("step-delay cannot be negative")
	}
	if cfg.MaxExpansions < 0 {
		return nil, errors.New("max-expansions cannot be negative")
	}
	if cfg.HTTPPort < 0 || cfg.HTTPPort > 65535 {
		return nil, errors.New("http-port must be between 0 and 65535")
	}
	if cfg.Watch && cfg.HTTPPort == 0 {
		return nil, errors.New("watch requires http-port: rebuilt grids are only visible to the path API")
	}
	if cfg.EventsNamespace != "" && cfg.EventsURL == "" {
		return nil, errors.New("events-namespace requires events-url")
	}
	return &cfg, nil
}
