// Package plugin defines the contract between the generation pipeline and
// independently-authored generator plugins. Plugins never see each other
// directly: they cooperate through capabilities resolved by the symbol
// registry.
package plugin

import (
	"context"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

// Plugin is one generator. The pipeline calls Declare on every plugin in
// configured list order, then Render in the same order. A plugin whose
// render references another plugin's output must appear after it in the
// list; the pipeline does not reorder.
type Plugin interface {
	// Name identifies the plugin in errors and provider bindings.
	Name() string

	// Provides lists the capabilities the plugin contributes. A
	// colon-free entry claims providership of that whole category.
	Provides() []string

	// Requires lists capabilities or bare categories that must have a
	// declaration or provider before render begins. Requirements feed
	// validation only; they never record reference edges.
	Requires() []string

	// Uses lists capabilities the plugin will reference during render
	// regardless of branching. The pipeline resolves them eagerly before
	// calling Render so a missing target fails the run up front.
	Uses() []string

	// Declare announces the symbols the plugin will render. It runs with
	// read-only access to the data model and naming services.
	Declare(ctx context.Context, dc *DeclareContext) ([]*registry.Declaration, error)

	// Render produces the declared symbols. The registry is available
	// for cross-plugin imports and metadata.
	Render(ctx context.Context, rc *RenderContext) ([]*registry.Rendered, error)
}

// DeclareContext carries the read-only services available during the
// declare phase.
type DeclareContext struct {
	// Schema is the introspected data model.
	Schema *schema.Schema
	// Naming is the naming-policy service; plugins derive symbol names
	// through it and record provenance for generated names.
	Naming *naming.Service
	// Hints is an optional hint registry, passed through uninterpreted.
	Hints map[string]any
	// Options holds this plugin's configuration options.
	Options map[string]any
}

// RenderContext extends the declare-phase services with the registry and
// the plugin's own declarations. It is an explicit value threaded into each
// render call; the registry's ambient capability context is managed by the
// pipeline around that call.
type RenderContext struct {
	DeclareContext
	// Registry is the symbol registry, for imports and rendered-symbol
	// metadata.
	Registry *registry.Registry
	// Owned is exactly what this plugin declared, in declaration order.
	Owned []*registry.Declaration
}

// Import returns a handle for another plugin's symbol.
func (rc *RenderContext) Import(cap string) (*registry.Handle, error) {
	return rc.Registry.Import(capability.Parse(cap))
}

// MustImport is Import that panics on a missing capability. The pipeline
// converts the panic into a plugin execution failure for the run.
func (rc *RenderContext) MustImport(cap string) *registry.Handle {
	return rc.Registry.MustImport(capability.Parse(cap))
}

// ForSymbol narrows reference attribution to a single owned symbol for the
// duration of fn. Plugins that render several symbols in one call use it so
// each symbol's imports are attributed individually.
func (rc *RenderContext) ForSymbol(cap string, fn func() error) error {
	return rc.Registry.ForSymbol(capability.Parse(cap), fn)
}

// StringOption reads a string option with a default.
func (dc *DeclareContext) StringOption(key, fallback string) string {
	if v, ok := dc.Options[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// BoolOption reads a boolean option with a default.
func (dc *DeclareContext) BoolOption(key string, fallback bool) bool {
	if v, ok := dc.Options[key].(bool); ok {
		return v
	}
	return fallback
}
