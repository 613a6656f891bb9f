// Package zod generates zod runtime validators for the row shapes, typed
// against the model interfaces so the validator and the type can never
// drift apart.
package zod

import (
	"context"
	"fmt"
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugins"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
	"github.com/DanielFGray/pg-sourcerer-sub001/tsast"
)

func init() {
	plugins.Register("zod", func() plugin.Plugin { return &zod{} })
}

type zod struct{}

func (*zod) Name() string { return "zod" }

func (*zod) Provides() []string { return []string{"schemas"} }

// Requires names the types category: validators are typed against the row
// interfaces, so generation without a types provider cannot succeed.
func (*zod) Requires() []string { return []string{"types"} }

func (*zod) Uses() []string { return nil }

func (z *zod) Declare(_ context.Context, dc *plugin.DeclareContext) ([]*registry.Declaration, error) {
	var decls []*registry.Declaration
	for _, tbl := range dc.Schema.Tables {
		entity := dc.Naming.EntityName(tbl.Name)
		name := dc.Naming.Camel(entity) + "Schema"
		dc.Naming.Record(name, naming.Provenance{Entity: name, Base: entity, Variant: "schema", Schema: tbl.Schema})
		decls = append(decls, &registry.Declaration{
			Name:           name,
			Capability:     capability.Parse("schemas:" + entity),
			BaseEntityName: entity,
		})
	}
	return decls, nil
}

func (z *zod) Render(_ context.Context, rc *plugin.RenderContext) ([]*registry.Rendered, error) {
	var out []*registry.Rendered
	for _, tbl := range rc.Schema.Tables {
		entity := rc.Naming.EntityName(tbl.Name)
		name := rc.Naming.Camel(entity) + "Schema"
		cap := "schemas:" + entity

		var node tsast.Node
		err := rc.ForSymbol(cap, func() error {
			rowType := rc.MustImport("types:" + entity).TypeRef()
			node = tsast.Const(name, fmt.Sprintf("z.ZodType<%s>", rowType), objectExpr(rc, tbl))
			return nil
		})
		if err != nil {
			return nil, err
		}

		out = append(out, &registry.Rendered{
			Name:       name,
			Capability: capability.Parse(cap),
			Node:       node,
			Export:     registry.ExportNamed,
			ExternalImports: []registry.ExternalImport{
				{Module: "zod", Names: []string{"z"}},
			},
		})
	}
	return out, nil
}

// objectExpr renders the z.object literal for a table's row shape. Enum
// columns validate against the database enum's value list directly rather
// than importing the generated type.
func objectExpr(rc *plugin.RenderContext, tbl *schema.Table) string {
	var b strings.Builder
	b.WriteString("z.object({\n")
	for _, c := range tbl.Columns {
		expr := plugins.ZodExpr(c)
		if c.Enum != "" {
			expr = enumExpr(rc.Schema.Enum(c.Enum))
		}
		if c.Nullable {
			expr += ".nullable()"
		}
		fmt.Fprintf(&b, "  %s: %s,\n", c.Name, expr)
	}
	b.WriteString("})")
	return b.String()
}

func enumExpr(e *schema.Enum) string {
	if e == nil {
		return "z.string()"
	}
	quoted := make([]string, len(e.Values))
	for i, v := range e.Values {
		quoted[i] = tsast.StringLit(v)
	}
	return "z.enum([" + strings.Join(quoted, ", ") + "])"
}
