// Package httpd generates express route registration functions over the
// generated query layer: one register function per table wiring GET and
// POST handlers to the query functions.
package httpd

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
	plugins.Register("httpd", func() plugin.Plugin { return &httpd{} })
}

type httpd struct{}

func (*httpd) Name() string { return "httpd" }

func (*httpd) Provides() []string { return []string{"routes"} }

// Requires names the queries category as a whole: route handlers are thin
// adapters over query functions and cannot exist without a provider.
func (*httpd) Requires() []string { return []string{"queries"} }

// Uses pre-declares the Database reference every handler signature needs,
// so a run with a misconfigured queries provider fails before render.
func (*httpd) Uses() []string { return []string{"queries:Database"} }

func (h *httpd) Declare(_ context.Context, dc *plugin.DeclareContext) ([]*registry.Declaration, error) {
	var decls []*registry.Declaration
	for _, tbl := range dc.Schema.Tables {
		entity := dc.Naming.EntityName(tbl.Name)
		name := "register" + entity + "Routes"
		dc.Naming.Record(name, naming.Provenance{Entity: name, Base: entity, Variant: "routes", Schema: tbl.Schema})
		decls = append(decls, &registry.Declaration{
			Name:           name,
			Capability:     capability.Parse("routes:" + entity),
			BaseEntityName: entity,
		})
	}
	return decls, nil
}

func (h *httpd) Render(_ context.Context, rc *plugin.RenderContext) ([]*registry.Rendered, error) {
	var out []*registry.Rendered
	for _, tbl := range rc.Schema.Tables {
		entity := rc.Naming.EntityName(tbl.Name)
		name := "register" + entity + "Routes"
		cap := "routes:" + entity

		var node tsast.Node
		err := rc.ForSymbol(cap, func() error {
			node = h.renderRoutes(rc, tbl, entity, name)
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
				{Module: "express", Names: []string{"Router"}, TypeOnly: true},
				{Module: "kysely", Names: []string{"Kysely"}, TypeOnly: true},
			},
		})
	}
	return out, nil
}

func (h *httpd) renderRoutes(rc *plugin.RenderContext, tbl *schema.Table, entity, name string) tsast.Node {
	dbType := "Kysely<" + rc.MustImport("queries:Database").TypeRef() + ">"
	resource := "/" + rc.Naming.Kebab(rc.Naming.Plural(entity))

	body := []string{
		fmt.Sprintf("router.get(%s, async (_req, res) => {", tsast.StringLit(resource)),
		fmt.Sprintf("  res.json(await %s);", mustInvoke(rc, entity, "list", "db")),
		"});",
	}
	if len(tbl.PrimaryKey) == 1 {
		idExpr := "req.params.id"
		if c := tbl.Column(tbl.PrimaryKey[0]); c != nil && plugins.TSType(c) == "number" {
			idExpr = "Number(req.params.id)"
		}
		body = append(body,
			fmt.Sprintf("router.get(%s, async (req, res) => {", tsast.StringLit(resource+"/:id")),
			fmt.Sprintf("  const row = await %s;", mustInvoke(rc, entity, "findById", "db", idExpr)),
			"  if (row === undefined) {",
			"    res.status(404).end();",
			"    return;",
			"  }",
			"  res.json(row);",
			"});",
		)
	}
	if !tbl.View {
		body = append(body,
			fmt.Sprintf("router.post(%s, async (req, res) => {", tsast.StringLit(resource)),
			fmt.Sprintf("  res.status(201).json(await %s);", mustInvoke(rc, entity, "insertOne", "db", "req.body")),
			"});",
		)
	}

	return tsast.Func(name,
		[]tsast.Param{{Name: "router", Type: "Router"}, {Name: "db", Type: dbType}},
		"void", false, body...)
}

// mustInvoke builds the call expression for a query operation, recording
// the reference edge that makes the emitter import it.
func mustInvoke(rc *plugin.RenderContext, entity, verb string, args ...string) string {
	return rc.MustImport(fmt.Sprintf("queries:%s:%s", entity, verb)).Invoke(args...)
}
