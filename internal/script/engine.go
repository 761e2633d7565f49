// Package script runs user scripts against the variable store.
//
// The store is copied into an Environment, an Engine executes the script
// against it, and afterwards only the names that existed before the script
// ran are written back. Variables a script introduces are dropped.
package script

import (
	"context"
	"fmt"
	"path/filepath"
	"time"
)

// Engine names
const (
	EngineJS    = "js"
	EngineTengo = "tengo"
)

// Config holds the execution budget and engine choice.
type Config struct {
	// Engine is the default engine name (js, tengo)
	Engine string

	// Timeout bounds a single script execution (default: 30s)
	Timeout time.Duration

	// MaxAllocs caps object allocations for engines that support it (default: 10,000,000)
	MaxAllocs int64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Engine:    EngineJS,
		Timeout:   30 * time.Second,
		MaxAllocs: 10_000_000,
	}
}

// Engine executes script source against an Environment.
type Engine interface {
	// Name returns the engine name
	Name() string

	// Execute runs code with env's variables as globals, then writes the
	// script's globals back to env. It returns anything the script printed.
	Execute(ctx context.Context, code string, env Environment) (string, error)
}

// NewEngine creates the engine called name.
func NewEngine(name string, cfg Config) (Engine, error) {
	switch name {
	case EngineJS:
		return NewJSEngine(cfg), nil
	case EngineTengo:
		return NewTengoEngine(cfg), nil
	default:
		return nil, fmt.Errorf("unknown script engine: %q (valid options: js, tengo)", name)
	}
}

// ValidateEngine checks if the given engine name is valid
func ValidateEngine(name string) (string, error) {
	switch name {
	case EngineJS, EngineTengo:
		return name, nil
	default:
		return "", fmt.Errorf("unknown script engine: %q (valid options: js, tengo)", name)
	}
}

// EngineForFile picks an engine from the script's extension, or returns
// fallback for unknown extensions.
func EngineForFile(path, fallback string) string {
	switch filepath.Ext(path) {
	case ".js":
		return EngineJS
	case ".tengo":
		return EngineTengo
	default:
		return fallback
	}
}

// budget derives the execution context for one run.
func budget(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
