package registry

import (
	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/tsast"
)

// ExportKind says how a rendered symbol is exported from its output file.
type ExportKind int

const (
	// ExportNone marks a symbol that carries only cross-plugin metadata
	// and emits no code.
	ExportNone ExportKind = iota
	// ExportNamed marks an ordinary named export.
	ExportNamed
	// ExportDefault marks the module's default export.
	ExportDefault
)

// Declaration announces, during the declare phase, that a symbol will be
// rendered under a capability. BaseEntityName groups derived artifacts
// under one parent entity so they co-locate in output; OutputPath, when
// set, bypasses file assignment entirely.
type Declaration struct {
	Name           string
	Capability     capability.Key
	BaseEntityName string
	OutputPath     string

	// Plugin is recorded by the orchestrator when the declaration is
	// registered; plugins leave it empty.
	Plugin string
}

// ExternalImport is an import a rendered symbol needs from a module outside
// the generated tree, e.g. a published npm package. TypeOnly imports merge
// into "import type" statements, separate from value imports.
type ExternalImport struct {
	Module   string
	Names    []string
	TypeOnly bool
}

// UserImport is a user-authored module reference, resolved relative to the
// configured output root.
type UserImport struct {
	Module   string
	Names    []string
	TypeOnly bool
}

// Rendered is the render-phase product for one declared capability.
type Rendered struct {
	Name            string
	Capability      capability.Key
	Node            tsast.Node
	Export          ExportKind
	Metadata        map[string]any
	ExternalImports []ExternalImport
	UserImports     []UserImport
	FileHeader      string
}

// Reference is one recorded fact that the symbol rendered under Source
// uses the identifier of the symbol under Target. References are recorded
// only when a symbol handle accessor is actually invoked, never from static
// requirement declarations, so the synthesized import set exactly matches
// usage.
type Reference struct {
	Source capability.Key
	Target capability.Key
}

// Registry is the pipeline's single mutable store. It is not safe for
// concurrent use: the ambient current-capability context is single-writer
// state, valid only because plugin execution is strictly sequential.
type Registry struct {
	decls     map[string]*Declaration
	declOrder []*Declaration

	providers     map[string]string // category -> plugin name
	providerNames map[string]bool   // set of provider plugin names

	rendered      map[string]*Rendered
	renderedOrder []*Rendered

	refs   []Reference
	refSet map[[2]string]bool

	current []capability.Key
	owned   map[string][]*Declaration
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		decls:         make(map[string]*Declaration),
		providers:     make(map[string]string),
		providerNames: make(map[string]bool),
		rendered:      make(map[string]*Rendered),
		refSet:        make(map[[2]string]bool),
		owned:         make(map[string][]*Declaration),
	}
}

// RegisterCategoryProvider binds a category to its owning plugin. Any
// second registration for the category conflicts, including a duplicate by
// the same plugin.
func (r *Registry) RegisterCategoryProvider(category, plugin string) error {
	if existing, ok := r.providers[category]; ok {
		return &ConflictError{Category: category, Existing: existing, Plugin: plugin}
	}
	r.providers[category] = plugin
	r.providerNames[plugin] = true
	return nil
}

// ProviderFor returns the plugin bound to a category.
func (r *Registry) ProviderFor(category string) (string, bool) {
	p, ok := r.providers[category]
	return p, ok
}

// ProviderNames returns the set of plugin names registered as category
// providers. File assignment uses it to skip provider tokens when deriving
// an entity name from a capability string.
func (r *Registry) ProviderNames() map[string]bool {
	out := make(map[string]bool, len(r.providerNames))
	for name := range r.providerNames {
		out[name] = true
	}
	return out
}

// ResolveCapability rewrites a key into its fully qualified form. Bare keys
// and keys whose category has no provider pass through unchanged. A key
// whose first path segment names a registered provider is treated as
// already qualified; everything else gains the category's provider as its
// second segment.
func (r *Registry) ResolveCapability(k capability.Key) capability.Key {
	if k.IsBare() || k.Category == "" {
		return k
	}
	provider, ok := r.providers[k.Category]
	if !ok {
		return k
	}
	if k.Qualified() {
		return k
	}
	if first := k.First(); first != "" && r.providerNames[first] {
		// The plugin spelled the provider out itself; promote the
		// segment instead of inserting a second one.
		return k.MarkQualified()
	}
	return k.Qualify(provider)
}

// Register stores a declaration, failing with a collision when its resolved
// capability is already taken.
func (r *Registry) Register(d *Declaration) error {
	key := r.ResolveCapability(d.Capability)
	id := key.String()
	if existing, ok := r.decls[id]; ok {
		return &CollisionError{Capability: id, Existing: existing.Plugin, Incoming: d.Plugin}
	}
	d.Capability = key
	r.decls[id] = d
	r.declOrder = append(r.declOrder, d)
	return nil
}

// Has reports whether a declaration exists for the capability, resolving
// through the provider rewrite first.
func (r *Registry) Has(k capability.Key) bool {
	_, ok := r.decls[r.ResolveCapability(k).String()]
	return ok
}

// Lookup returns the declaration for a capability, resolving first. It is
// the single fallible accessor; callers that want to crash on a missing
// capability unwrap explicitly.
func (r *Registry) Lookup(k capability.Key) (*Declaration, error) {
	key := r.ResolveCapability(k)
	d, ok := r.decls[key.String()]
	if !ok {
		return nil, &NotFoundError{Capability: key.String()}
	}
	return d, nil
}

// Declarations returns every declaration in registration order.
func (r *Registry) Declarations() []*Declaration {
	return r.declOrder
}

// SetOwnedDeclarations records which declarations a plugin registered, so
// the plugin can re-enumerate them during render without recomputation.
func (r *Registry) SetOwnedDeclarations(plugin string, decls []*Declaration) {
	r.owned[plugin] = decls
}

// Own returns exactly the declarations the named plugin registered.
func (r *Registry) Own(plugin string) []*Declaration {
	return r.owned[plugin]
}

// AddRendered caches a render-phase product under its resolved capability.
// Rendering the same capability twice is a collision: render output is
// keyed one-to-one with declarations.
func (r *Registry) AddRendered(s *Rendered) error {
	key := r.ResolveCapability(s.Capability)
	id := key.String()
	if _, ok := r.rendered[id]; ok {
		return &CollisionError{Capability: id}
	}
	s.Capability = key
	r.rendered[id] = s
	r.renderedOrder = append(r.renderedOrder, s)
	return nil
}

// RenderedFor returns the cached render product for a capability.
func (r *Registry) RenderedFor(k capability.Key) (*Rendered, bool) {
	s, ok := r.rendered[r.ResolveCapability(k).String()]
	return s, ok
}

// Rendered returns every cached render product in render order.
func (r *Registry) Rendered() []*Rendered {
	return r.renderedOrder
}

// References returns the recorded reference edges in recording order,
// deduplicated.
func (r *Registry) References() []Reference {
	return r.refs
}

// ReferencesFrom returns the targets referenced by one source capability,
// in recording order.
func (r *Registry) ReferencesFrom(source capability.Key) []capability.Key {
	src := r.ResolveCapability(source).String()
	var out []capability.Key
	for _, ref := range r.refs {
		if ref.Source.String() == src {
			out = append(out, ref.Target)
		}
	}
	return out
}
