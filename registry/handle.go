package registry

import (
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
)

// SetCurrentCapabilities establishes the ambient render context: every
// reference recorded until the next Set/Clear is attributed to these source
// capabilities. The orchestrator sets a plugin's full owned set around its
// render call.
func (r *Registry) SetCurrentCapabilities(keys ...capability.Key) {
	r.current = append([]capability.Key(nil), keys...)
}

// ClearCurrentCapabilities drops the ambient render context.
func (r *Registry) ClearCurrentCapabilities() {
	r.current = nil
}

// ForSymbol narrows the ambient context to a single capability for the
// duration of fn, then restores the previous context exactly. It is
// required whenever one plugin call renders several symbols at once and
// each symbol's imports must be attributed individually rather than to the
// whole batch.
func (r *Registry) ForSymbol(k capability.Key, fn func() error) error {
	prev := r.current
	r.current = []capability.Key{r.ResolveCapability(k)}
	defer func() { r.current = prev }()
	return fn()
}

// recordReference adds one edge per ambient source capability. Edges are
// deduplicated; recording outside any ambient context is a no-op, since
// there is no symbol to attribute the usage to.
func (r *Registry) recordReference(target capability.Key) {
	for _, src := range r.current {
		ref := Reference{Source: r.ResolveCapability(src), Target: target}
		id := [2]string{ref.Source.String(), ref.Target.String()}
		if r.refSet[id] {
			continue
		}
		r.refSet[id] = true
		r.refs = append(r.refs, ref)
	}
}

// Handle is an ephemeral view of another plugin's symbol. Its accessors
// return source-text fragments and, when actually invoked, record a
// reference edge from the current ambient context to the target symbol.
// Obtaining a handle alone records nothing.
type Handle struct {
	registry *Registry
	target   capability.Key
	decl     *Declaration
}

// Import returns a handle for the symbol declared under the capability,
// failing with a not-found error when no declaration resolves.
func (r *Registry) Import(k capability.Key) (*Handle, error) {
	d, err := r.Lookup(k)
	if err != nil {
		return nil, err
	}
	return &Handle{registry: r, target: d.Capability, decl: d}, nil
}

// MustImport is Import for call sites that treat a missing capability as a
// programming error; it panics instead of returning the failure.
func (r *Registry) MustImport(k capability.Key) *Handle {
	h, err := r.Import(k)
	if err != nil {
		panic(err)
	}
	return h
}

// Name returns the symbol's declared name without recording a reference.
// Use it for log output and diagnostics only: generated code that embeds
// the name must go through Ref so the import is synthesized.
func (h *Handle) Name() string {
	return h.decl.Name
}

// Declaration exposes the target declaration without recording a reference.
func (h *Handle) Declaration() *Declaration {
	return h.decl
}

// Metadata returns the cross-plugin metadata attached to the target's
// rendered symbol, when the target has already rendered. Reading metadata
// records no reference: metadata travel does not require an import.
func (h *Handle) Metadata() map[string]any {
	if s, ok := h.registry.RenderedFor(h.target); ok {
		return s.Metadata
	}
	return nil
}

// Ref returns the identifier for referencing the symbol and records a
// reference edge.
func (h *Handle) Ref() string {
	h.registry.recordReference(h.target)
	return h.decl.Name
}

// TypeRef returns the identifier for use in type position and records a
// reference edge. The emitter decides between value and type-only import
// forms from the target's declaration kind, so TypeRef and Ref record the
// same edge.
func (h *Handle) TypeRef() string {
	h.registry.recordReference(h.target)
	return h.decl.Name
}

// Invoke returns a call expression on the symbol and records a reference
// edge.
func (h *Handle) Invoke(args ...string) string {
	h.registry.recordReference(h.target)
	return h.decl.Name + "(" + strings.Join(args, ", ") + ")"
}
