// Package tstypes generates the TypeScript model types every other plugin
// builds on: one row interface per table, insert and update shapes, and one
// alias (or enum) per database enum type. It claims the whole "types"
// category.
package tstypes

import (
	"context"
	"fmt"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugins"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
	"github.com/DanielFGray/pg-sourcerer-sub001/tsast"
)

func init() {
	plugins.Register("tstypes", func() plugin.Plugin { return &tstypes{} })
}

type tstypes struct{}

func (*tstypes) Name() string { return "tstypes" }

// Provides claims the whole types category: every types:* capability
// resolves through this plugin.
func (*tstypes) Provides() []string { return []string{"types"} }

func (*tstypes) Requires() []string { return nil }

func (*tstypes) Uses() []string { return nil }

// Declare announces, per enum, one alias symbol and, per table, the row,
// insert, and update shapes. Provenance is recorded for each name so file
// assignment groups the derived shapes under their entity.
func (t *tstypes) Declare(_ context.Context, dc *plugin.DeclareContext) ([]*registry.Declaration, error) {
	var decls []*registry.Declaration

	for _, e := range dc.Schema.Enums {
		name := dc.Naming.Pascal(e.Name)
		dc.Naming.Record(name, naming.Provenance{Entity: name, Base: name, Schema: e.Schema})
		decls = append(decls, &registry.Declaration{
			Name:       name,
			Capability: capability.Parse("types:" + name),
		})
	}

	for _, tbl := range dc.Schema.Tables {
		entity := dc.Naming.EntityName(tbl.Name)
		dc.Naming.Record(entity, naming.Provenance{Entity: entity, Base: entity, Schema: tbl.Schema})
		decls = append(decls, &registry.Declaration{
			Name:           entity,
			Capability:     capability.Parse("types:" + entity),
			BaseEntityName: entity,
		})

		if tbl.View {
			// Views have no insert or update shapes.
			continue
		}
		for _, variant := range []string{"insert", "update"} {
			name := entity + dc.Naming.Pascal(variant)
			dc.Naming.Record(name, naming.Provenance{Entity: name, Base: entity, Variant: variant, Schema: tbl.Schema})
			decls = append(decls, &registry.Declaration{
				Name:           name,
				Capability:     capability.Parse(fmt.Sprintf("types:%s:%s", entity, variant)),
				BaseEntityName: entity,
			})
		}
	}
	return decls, nil
}

// Render produces the declared types. Enum-typed columns reference the
// generated enum symbol through a handle so the emitter synthesizes the
// cross-file import.
func (t *tstypes) Render(_ context.Context, rc *plugin.RenderContext) ([]*registry.Rendered, error) {
	asEnum := rc.StringOption("enumStyle", "union") == "enum"

	var out []*registry.Rendered
	for _, e := range rc.Schema.Enums {
		name := rc.Naming.Pascal(e.Name)
		out = append(out, &registry.Rendered{
			Name:       name,
			Capability: capability.Parse("types:" + name),
			Node:       enumNode(rc, name, e, asEnum),
			Export:     registry.ExportNamed,
			Metadata:   map[string]any{"enum": e.Name, "values": e.Values},
		})
	}

	for _, tbl := range rc.Schema.Tables {
		entity := rc.Naming.EntityName(tbl.Name)
		row, err := t.renderShape(rc, tbl, entity, "")
		if err != nil {
			return nil, err
		}
		out = append(out, row)
		if tbl.View {
			continue
		}
		for _, variant := range []string{"insert", "update"} {
			shape, err := t.renderShape(rc, tbl, entity, variant)
			if err != nil {
				return nil, err
			}
			out = append(out, shape)
		}
	}
	return out, nil
}

func (t *tstypes) renderShape(rc *plugin.RenderContext, tbl *schema.Table, entity, variant string) (*registry.Rendered, error) {
	name := entity
	cap := "types:" + entity
	if variant != "" {
		name = entity + rc.Naming.Pascal(variant)
		cap = fmt.Sprintf("types:%s:%s", entity, variant)
	}

	var fields []tsast.Field
	err := rc.ForSymbol(cap, func() error {
		for _, c := range tbl.Columns {
			fields = append(fields, tsast.Field{
				Name:     c.Name,
				Type:     columnType(rc, c),
				Optional: optional(c, variant),
				Doc:      c.Comment,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &registry.Rendered{
		Name:       name,
		Capability: capability.Parse(cap),
		Node:       tsast.Interface(name, fields),
		Export:     registry.ExportNamed,
		Metadata: map[string]any{
			"table":      tbl.QualifiedName(),
			"primaryKey": tbl.PrimaryKey,
		},
	}, nil
}

// columnType resolves a column's TypeScript type, going through the symbol
// registry for enum columns and appending the null arm for nullable ones.
func columnType(rc *plugin.RenderContext, c *schema.Column) string {
	typ := plugins.TSType(c)
	if c.Enum != "" {
		typ = rc.MustImport("types:" + rc.Naming.Pascal(c.Enum)).TypeRef()
	}
	if c.Nullable {
		typ += " | null"
	}
	return typ
}

// optional decides per variant: row fields are always present, insert
// fields are optional when the database can supply the value, and update
// fields are all optional.
func optional(c *schema.Column, variant string) bool {
	switch variant {
	case "insert":
		return c.Nullable || c.HasDefault
	case "update":
		return true
	}
	return false
}

func enumNode(rc *plugin.RenderContext, name string, e *schema.Enum, asEnum bool) tsast.Node {
	if asEnum {
		members := make([]tsast.EnumMember, len(e.Values))
		for i, v := range e.Values {
			members[i] = tsast.EnumMember{Name: rc.Naming.Pascal(v), Value: tsast.StringLit(v)}
		}
		return tsast.Enum(name, members)
	}
	return tsast.TypeAlias(name, tsast.UnionOfStrings(e.Values))
}
