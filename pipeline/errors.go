// Package pipeline sequences the generation phases across the plugin list:
// provider scan, declare, validate, assign, and render. Any failure at any
// phase aborts the whole run; a failed run produces zero emitted files.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for pipeline failure classes.
var (
	// ErrUnsatisfied indicates a plugin requirement with no provider or
	// declaration.
	ErrUnsatisfied = errors.New("sourcerer: unsatisfied requirement")
	// ErrCycle indicates a circular dependency between plugins.
	ErrCycle = errors.New("sourcerer: circular plugin dependency")
	// ErrPlugin indicates a failure inside a plugin's declare or render
	// body, attributed to that plugin.
	ErrPlugin = errors.New("sourcerer: plugin execution failed")
)

// UnsatisfiedError reports a requirement nothing declares or provides.
type UnsatisfiedError struct {
	Plugin      string
	Requirement string
	Category    bool // the requirement names a bare category, not a capability
}

// Error implements the error interface.
func (e *UnsatisfiedError) Error() string {
	what := "capability"
	if e.Category {
		what = "category"
	}
	return fmt.Sprintf("sourcerer: plugin %q requires %s %q, which nothing declares or provides",
		e.Plugin, what, e.Requirement)
}

// Is reports whether the target matches the unsatisfied sentinel.
func (e *UnsatisfiedError) Is(target error) bool {
	return target == ErrUnsatisfied
}

// CycleError reports a cycle in the plugin dependency graph. Path lists the
// plugin names along the cycle, ending where it started.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return "sourcerer: circular plugin dependency: " + strings.Join(e.Path, " -> ")
}

// Is reports whether the target matches the cycle sentinel.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

// PluginError wraps a failure raised inside a plugin's declare or render
// body, including recovered panics.
type PluginError struct {
	Plugin string
	Phase  string // "declare" or "render"
	Err    error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("sourcerer: plugin %q failed during %s: %v", e.Plugin, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches the plugin-failure sentinel.
func (e *PluginError) Is(target error) bool {
	return target == ErrPlugin
}
