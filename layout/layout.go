// Package layout maps symbol declarations to output file paths. It is the
// single place file-layout policy lives, which is what lets unrelated
// plugins' outputs for one logical entity co-locate without direct
// coordination. Assignment is a pure function of its inputs: identical
// declarations, rules, and naming state always produce identical paths.
package layout

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
)

// ErrNoRule indicates a declaration no file rule matches and no default
// rule is configured. It is a fatal configuration error.
var ErrNoRule = errors.New("sourcerer: no file rule matches")

// RuleError reports the declaration that fell through the rule list.
type RuleError struct {
	Capability string
	Name       string
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("sourcerer: no file rule matches capability %q (symbol %q) and no default rule is configured",
		e.Capability, e.Name)
}

// Is reports whether the target matches the no-rule sentinel.
func (e *RuleError) Is(target error) bool {
	return target == ErrNoRule
}

// Context is the naming context derived for one declaration, handed to a
// rule's filename function.
type Context struct {
	Entity  string // canonical entity name, e.g. "User"
	Base    string // base entity grouping derived artifacts, e.g. "User" for "NewUser"
	Variant string // derived-artifact discriminator, e.g. "insert"
	Schema  string // database schema for schema-qualified entities
	Folder  string // folder name computed from Base via the naming service
}

// NameFunc computes a filename (with extension) from a derived context.
type NameFunc func(Context) string

// StaticName returns a NameFunc that ignores the context.
func StaticName(filename string) NameFunc {
	return func(Context) string { return filename }
}

// TemplateName expands {entity}, {base}, {variant}, {schema} and {folder}
// placeholders in a filename template.
func TemplateName(tmpl string) NameFunc {
	return func(ctx Context) string {
		r := strings.NewReplacer(
			"{entity}", ctx.Entity,
			"{base}", ctx.Base,
			"{variant}", ctx.Variant,
			"{schema}", ctx.Schema,
			"{folder}", ctx.Folder,
		)
		return r.Replace(tmpl)
	}
}

// Rule places capabilities matching a string prefix into a directory with a
// computed filename. Rules are ordered; the first match wins.
type Rule struct {
	Pattern string // capability string prefix, e.g. "queries:"
	Dir     string // output directory relative to the output root
	Name    NameFunc
}

// Assigned pairs a declaration with its output file path.
type Assigned struct {
	Declaration *registry.Declaration
	FilePath    string
}

// Assigner evaluates the ordered rule list for each declaration.
type Assigner struct {
	rules      []Rule
	defaultTo  *Rule
	naming     *naming.Service
	categories map[string]bool
	providers  map[string]bool
}

// NewAssigner builds an assigner. categories and providers are the bound
// category names and provider plugin names; textual entity derivation skips
// those tokens when it walks a capability's segments.
func NewAssigner(rules []Rule, defaultRule *Rule, svc *naming.Service, categories, providers map[string]bool) *Assigner {
	return &Assigner{
		rules:      rules,
		defaultTo:  defaultRule,
		naming:     svc,
		categories: categories,
		providers:  providers,
	}
}

// FileFor maps one declaration to its output path. A declaration with an
// explicit OutputPath bypasses the rule list entirely.
func (a *Assigner) FileFor(d *registry.Declaration) (string, error) {
	if d.OutputPath != "" {
		return path.Clean(d.OutputPath), nil
	}
	ctx := a.deriveContext(d)
	for i := range a.rules {
		rule := &a.rules[i]
		if d.Capability.HasPrefix(rule.Pattern) {
			return a.apply(rule, ctx), nil
		}
	}
	if a.defaultTo != nil {
		return a.apply(a.defaultTo, ctx), nil
	}
	return "", &RuleError{Capability: d.Capability.String(), Name: d.Name}
}

// Assign maps every declaration, preserving input order.
func (a *Assigner) Assign(decls []*registry.Declaration) ([]*Assigned, error) {
	out := make([]*Assigned, 0, len(decls))
	for _, d := range decls {
		p, err := a.FileFor(d)
		if err != nil {
			return nil, err
		}
		out = append(out, &Assigned{Declaration: d, FilePath: p})
	}
	return out, nil
}

func (a *Assigner) apply(rule *Rule, ctx Context) string {
	name := rule.Name(ctx)
	if rule.Dir == "" {
		return path.Clean(name)
	}
	return path.Join(rule.Dir, name)
}

// deriveContext derives {entity, base, variant, schema} for a declaration,
// in priority order: naming provenance recorded for the declared name, the
// declaration's own BaseEntityName, then textual parsing of the capability.
func (a *Assigner) deriveContext(d *registry.Declaration) Context {
	var ctx Context
	switch {
	case a.provenance(d, &ctx):
	case d.BaseEntityName != "":
		ctx.Entity = d.BaseEntityName
		ctx.Base = d.BaseEntityName
	default:
		a.parseCapability(d, &ctx)
	}
	if ctx.Base == "" {
		ctx.Base = ctx.Entity
	}
	ctx.Folder = a.naming.FolderName(ctx.Base)
	return ctx
}

func (a *Assigner) provenance(d *registry.Declaration, ctx *Context) bool {
	p, ok := a.naming.Lookup(d.Name)
	if !ok {
		return false
	}
	ctx.Entity = p.Entity
	ctx.Base = p.Base
	ctx.Variant = p.Variant
	ctx.Schema = p.Schema
	return true
}

// parseCapability takes the first capability segment that is neither the
// category nor a provider token as the entity, splitting "schema.entity"
// forms, and falls back to the last segment when nothing else remains.
func (a *Assigner) parseCapability(d *registry.Declaration, ctx *Context) {
	k := d.Capability
	for i, seg := range k.Path {
		if i == 0 && k.Provider == "" && a.providers[seg] {
			continue
		}
		if a.categories[seg] {
			continue
		}
		ctx.Schema, ctx.Entity = naming.SplitSchema(seg)
		if len(k.Path) > i+1 {
			ctx.Variant = k.Path[len(k.Path)-1]
		}
		return
	}
	ctx.Entity = k.Last()
	if ctx.Entity == "" {
		ctx.Entity = k.Category
	}
}
