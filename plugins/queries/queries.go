// Package queries generates kysely query functions per table and the
// Database interface that binds table names to their row types. It claims
// the "queries" category under the provider name "kysely", so consumers may
// reference either queries:User:findById or queries:kysely:User:findById.
package queries

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
	plugins.Register("kysely", func() plugin.Plugin { return &kysely{} })
}

type kysely struct{}

func (*kysely) Name() string { return "kysely" }

func (*kysely) Provides() []string { return []string{"queries"} }

func (*kysely) Requires() []string { return []string{"types"} }

func (*kysely) Uses() []string { return nil }

// Declare announces the Database interface plus, per table, findById (when
// the table has a single-column primary key), list, and insertOne.
func (k *kysely) Declare(_ context.Context, dc *plugin.DeclareContext) ([]*registry.Declaration, error) {
	decls := []*registry.Declaration{{
		Name:       "Database",
		Capability: capability.Parse("queries:Database"),
		OutputPath: dc.StringOption("databaseFile", "db.ts"),
	}}

	for _, tbl := range dc.Schema.Tables {
		entity := dc.Naming.EntityName(tbl.Name)
		for _, op := range operations(dc.Naming, tbl, entity) {
			dc.Naming.Record(op.name, naming.Provenance{Entity: op.name, Base: entity, Variant: "queries", Schema: tbl.Schema})
			decls = append(decls, &registry.Declaration{
				Name:           op.name,
				Capability:     capability.Parse(fmt.Sprintf("queries:%s:%s", entity, op.verb)),
				BaseEntityName: entity,
			})
		}
	}
	return decls, nil
}

type operation struct {
	verb string
	name string
}

func operations(n *naming.Service, tbl *schema.Table, entity string) []operation {
	var ops []operation
	if len(tbl.PrimaryKey) == 1 {
		ops = append(ops, operation{verb: "findById", name: "find" + entity + "ById"})
	}
	ops = append(ops, operation{verb: "list", name: "list" + n.Plural(entity)})
	if !tbl.View {
		ops = append(ops, operation{verb: "insertOne", name: "insert" + entity})
	}
	return ops
}

func (k *kysely) Render(_ context.Context, rc *plugin.RenderContext) ([]*registry.Rendered, error) {
	out := []*registry.Rendered{k.renderDatabase(rc)}

	for _, tbl := range rc.Schema.Tables {
		entity := rc.Naming.EntityName(tbl.Name)
		for _, op := range operations(rc.Naming, tbl, entity) {
			cap := fmt.Sprintf("queries:%s:%s", entity, op.verb)
			var node tsast.Node
			err := rc.ForSymbol(cap, func() error {
				node = k.renderOperation(rc, tbl, entity, op)
				return nil
			})
			if err != nil {
				return nil, err
			}
			out = append(out, &registry.Rendered{
				Name:       op.name,
				Capability: capability.Parse(cap),
				Node:       node,
				Export:     registry.ExportNamed,
				Metadata:   map[string]any{"table": tbl.QualifiedName(), "verb": op.verb},
				ExternalImports: []registry.ExternalImport{
					{Module: "kysely", Names: []string{"Kysely"}, TypeOnly: true},
				},
			})
		}
	}
	return out, nil
}

// renderDatabase emits the interface kysely is parameterized over, one
// property per table keyed by its qualified name.
func (k *kysely) renderDatabase(rc *plugin.RenderContext) *registry.Rendered {
	var fields []tsast.Field
	_ = rc.ForSymbol("queries:Database", func() error {
		for _, tbl := range rc.Schema.Tables {
			rowType := rc.MustImport("types:" + rc.Naming.EntityName(tbl.Name)).TypeRef()
			fields = append(fields, tsast.Field{Name: tbl.QualifiedName(), Type: rowType})
		}
		return nil
	})
	return &registry.Rendered{
		Name:       "Database",
		Capability: capability.Parse("queries:Database"),
		Node:       tsast.Interface("Database", fields),
		Export:     registry.ExportNamed,
	}
}

func (k *kysely) renderOperation(rc *plugin.RenderContext, tbl *schema.Table, entity string, op operation) tsast.Node {
	dbType := "Kysely<" + rc.MustImport("queries:Database").TypeRef() + ">"
	rowType := rc.MustImport("types:" + entity).TypeRef()
	table := tsast.StringLit(tbl.QualifiedName())

	switch op.verb {
	case "findById":
		pk := tbl.PrimaryKey[0]
		idType := plugins.TSType(tbl.Column(pk))
		if idType == "" {
			idType = "string"
		}
		return tsast.Func(op.name,
			[]tsast.Param{{Name: "db", Type: dbType}, {Name: "id", Type: idType}},
			fmt.Sprintf("Promise<%s | undefined>", rowType), true,
			fmt.Sprintf("return await db.selectFrom(%s)", table),
			"  .selectAll()",
			fmt.Sprintf("  .where(%s, '=', id)", tsast.StringLit(pk)),
			"  .executeTakeFirst();",
		)
	case "insertOne":
		insertType := rc.MustImport(fmt.Sprintf("types:%s:insert", entity)).TypeRef()
		return tsast.Func(op.name,
			[]tsast.Param{{Name: "db", Type: dbType}, {Name: "values", Type: insertType}},
			fmt.Sprintf("Promise<%s>", rowType), true,
			fmt.Sprintf("return await db.insertInto(%s)", table),
			"  .values(values)",
			"  .returningAll()",
			"  .executeTakeFirstOrThrow();",
		)
	default: // list
		return tsast.Func(op.name,
			[]tsast.Param{{Name: "db", Type: dbType}},
			fmt.Sprintf("Promise<%s[]>", rowType), true,
			fmt.Sprintf("return await db.selectFrom(%s)", table),
			"  .selectAll()",
			"  .execute();",
		)
	}
}
