package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/layout"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

// FileGroup is every symbol assigned to one output file, in declaration
// order. Groups are ordered by first appearance of their path, which keeps
// the whole run deterministic without sorting paths.
type FileGroup struct {
	Path    string
	Symbols []*layout.Assigned
}

// Result is the orchestration product handed to the emitter.
type Result struct {
	Declarations []*registry.Declaration
	Rendered     []*registry.Rendered
	FileGroups   []*FileGroup
	Registry     *registry.Registry
	References   []registry.Reference
}

// Pipeline runs the generation phases over a configured plugin list.
// Execution is strictly sequential: no phase, plugin, or symbol is
// processed concurrently with another.
type Pipeline struct {
	schema      *schema.Schema
	naming      *naming.Service
	plugins     []plugin.Plugin
	rules       []layout.Rule
	defaultRule *layout.Rule
	hints       map[string]any
	options     map[string]map[string]any
	logger      *zap.Logger
}

// Option configures a pipeline.
type Option func(*Pipeline) error

// WithPlugins appends plugins in execution order. Order is load-bearing: a
// plugin whose render references another plugin's output must come later.
func WithPlugins(plugins ...plugin.Plugin) Option {
	return func(p *Pipeline) error {
		p.plugins = append(p.plugins, plugins...)
		return nil
	}
}

// WithRules sets the ordered file-assignment rule list.
func WithRules(rules ...layout.Rule) Option {
	return func(p *Pipeline) error {
		p.rules = append(p.rules, rules...)
		return nil
	}
}

// WithDefaultRule sets the rule applied when no pattern matches.
func WithDefaultRule(rule layout.Rule) Option {
	return func(p *Pipeline) error {
		p.defaultRule = &rule
		return nil
	}
}

// WithHints sets the pass-through hint registry.
func WithHints(hints map[string]any) Option {
	return func(p *Pipeline) error {
		p.hints = hints
		return nil
	}
}

// WithPluginOptions sets one plugin's configuration options.
func WithPluginOptions(pluginName string, options map[string]any) Option {
	return func(p *Pipeline) error {
		if p.options == nil {
			p.options = make(map[string]map[string]any)
		}
		p.options[pluginName] = options
		return nil
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) error {
		if logger != nil {
			p.logger = logger
		}
		return nil
	}
}

// New builds a pipeline over an introspected schema.
func New(s *schema.Schema, svc *naming.Service, opts ...Option) (*Pipeline, error) {
	if s == nil {
		return nil, fmt.Errorf("sourcerer: pipeline requires a schema")
	}
	if svc == nil {
		svc = naming.New()
	}
	p := &Pipeline{schema: s, naming: svc, logger: zap.NewNop()}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Run executes the five phases and returns the orchestration result. Any
// failure aborts the whole run with no partial output.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	reg := registry.New()

	// Phase 0: bind category providers from colon-free Provides entries.
	categories := make(map[string]bool)
	for _, pl := range p.plugins {
		for _, cap := range pl.Provides() {
			if capability.Parse(cap).IsBare() {
				if err := reg.RegisterCategoryProvider(cap, pl.Name()); err != nil {
					return nil, err
				}
				categories[cap] = true
			}
		}
	}
	p.logger.Debug("provider scan complete", zap.Int("categories", len(categories)))

	// Phase 1: declare, in list order.
	for _, pl := range p.plugins {
		dc := p.declareContext(pl)
		var decls []*registry.Declaration
		err := capture(pl.Name(), "declare", func() error {
			var declErr error
			decls, declErr = pl.Declare(ctx, dc)
			return declErr
		})
		if err != nil {
			return nil, err
		}
		for _, d := range decls {
			d.Plugin = pl.Name()
			if err := reg.Register(d); err != nil {
				return nil, err
			}
		}
		reg.SetOwnedDeclarations(pl.Name(), decls)
		p.logger.Debug("plugin declared", zap.String("plugin", pl.Name()), zap.Int("symbols", len(decls)))
	}

	// Phase 2: validate. Read-only.
	if err := validate(reg, p.plugins); err != nil {
		return nil, err
	}

	// Phase 3: assign. Pure.
	assigner := layout.NewAssigner(p.rules, p.defaultRule, p.naming, categories, reg.ProviderNames())
	assigned, err := assigner.Assign(reg.Declarations())
	if err != nil {
		return nil, err
	}
	groups := groupByFile(assigned)
	p.logger.Debug("assignment complete", zap.Int("files", len(groups)))

	// Phase 4: render, in list order, with ambient context per plugin.
	for _, pl := range p.plugins {
		owned := reg.Own(pl.Name())
		keys := make([]capability.Key, len(owned))
		for i, d := range owned {
			keys[i] = d.Capability
		}
		reg.SetCurrentCapabilities(keys...)

		// Eagerly resolve pre-declared references so a missing target
		// fails the run before the plugin branches around it.
		for _, use := range pl.Uses() {
			if _, err := reg.Lookup(capability.Parse(use)); err != nil {
				reg.ClearCurrentCapabilities()
				return nil, err
			}
		}

		rc := &plugin.RenderContext{
			DeclareContext: *p.declareContext(pl),
			Registry:       reg,
			Owned:          owned,
		}
		var rendered []*registry.Rendered
		err := capture(pl.Name(), "render", func() error {
			var renderErr error
			rendered, renderErr = pl.Render(ctx, rc)
			return renderErr
		})
		if err != nil {
			reg.ClearCurrentCapabilities()
			return nil, err
		}
		for _, s := range rendered {
			if err := reg.AddRendered(s); err != nil {
				reg.ClearCurrentCapabilities()
				return nil, err
			}
		}
		reg.ClearCurrentCapabilities()
		p.logger.Debug("plugin rendered", zap.String("plugin", pl.Name()), zap.Int("symbols", len(rendered)))
	}

	return &Result{
		Declarations: reg.Declarations(),
		Rendered:     reg.Rendered(),
		FileGroups:   groups,
		Registry:     reg,
		References:   reg.References(),
	}, nil
}

func (p *Pipeline) declareContext(pl plugin.Plugin) *plugin.DeclareContext {
	return &plugin.DeclareContext{
		Schema:  p.schema,
		Naming:  p.naming,
		Hints:   p.hints,
		Options: p.options[pl.Name()],
	}
}

// groupByFile buckets assigned symbols by path, preserving declaration
// order inside each group and first-appearance order across groups.
func groupByFile(assigned []*layout.Assigned) []*FileGroup {
	index := make(map[string]*FileGroup)
	var groups []*FileGroup
	for _, a := range assigned {
		g, ok := index[a.FilePath]
		if !ok {
			g = &FileGroup{Path: a.FilePath}
			index[a.FilePath] = g
			groups = append(groups, g)
		}
		g.Symbols = append(g.Symbols, a)
	}
	return groups
}

// capture runs one plugin phase and converts both returned errors and
// panics into PluginError. Registry accessors panic on programming errors
// like MustImport of an undeclared capability; those surface here as plugin
// execution failures instead of crashing the process.
func capture(pluginName, phase string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rErr, ok := r.(error); ok {
				err = &PluginError{Plugin: pluginName, Phase: phase, Err: rErr}
				return
			}
			err = &PluginError{Plugin: pluginName, Phase: phase, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if fnErr := fn(); fnErr != nil {
		return &PluginError{Plugin: pluginName, Phase: phase, Err: fnErr}
	}
	return nil
}
