package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

type postgres struct {
	db *sql.DB
}

const (
	pgEnumsQuery = `
SELECT n.nspname, t.typname, e.enumlabel
FROM pg_type t
JOIN pg_enum e ON e.enumtypid = t.oid
JOIN pg_namespace n ON n.oid = t.typnamespace
WHERE n.nspname = ANY($1)
ORDER BY n.nspname, t.typname, e.enumsortorder`

	pgTablesQuery = `
SELECT table_schema, table_name, table_type
FROM information_schema.tables
WHERE table_schema = ANY($1) AND table_type IN ('BASE TABLE', 'VIEW')
ORDER BY table_schema, table_name`

	pgColumnsQuery = `
SELECT table_schema, table_name, column_name, udt_name, is_nullable, column_default
FROM information_schema.columns
WHERE table_schema = ANY($1)
ORDER BY table_schema, table_name, ordinal_position`

	pgPrimaryKeysQuery = `
SELECT tc.table_schema, tc.table_name, kcu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = ANY($1)
ORDER BY tc.table_schema, tc.table_name, kcu.ordinal_position`

	pgForeignKeysQuery = `
SELECT tc.table_schema, tc.table_name, tc.constraint_name,
       kcu.column_name, ccu.table_name, ccu.column_name
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
  ON kcu.constraint_name = tc.constraint_name AND kcu.table_schema = tc.table_schema
JOIN information_schema.constraint_column_usage ccu
  ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = ANY($1)
ORDER BY tc.table_schema, tc.table_name, tc.constraint_name, kcu.ordinal_position`
)

// Introspect implements Introspector over pg_catalog and
// information_schema. Every query orders its rows so the resulting model
// is deterministic.
func (p *postgres) Introspect(ctx context.Context, schemas []string) (*schema.Schema, error) {
	if len(schemas) == 0 {
		schemas = []string{"public"}
	}
	out := &schema.Schema{Name: schemas[0]}

	if err := p.enums(ctx, schemas, out); err != nil {
		return nil, err
	}
	tables, err := p.tables(ctx, schemas, out)
	if err != nil {
		return nil, err
	}
	if err := p.columns(ctx, schemas, tables, out); err != nil {
		return nil, err
	}
	if err := p.primaryKeys(ctx, schemas, tables); err != nil {
		return nil, err
	}
	if err := p.foreignKeys(ctx, schemas, tables); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *postgres) enums(ctx context.Context, schemas []string, out *schema.Schema) error {
	rows, err := p.db.QueryContext(ctx, pgEnumsQuery, pq.Array(schemas))
	if err != nil {
		return fmt.Errorf("sourcerer: introspect enums: %w", err)
	}
	defer rows.Close()
	byName := make(map[string]*schema.Enum)
	for rows.Next() {
		var ns, name, label string
		if err := rows.Scan(&ns, &name, &label); err != nil {
			return err
		}
		e, ok := byName[ns+"."+name]
		if !ok {
			e = &schema.Enum{Schema: ns, Name: name}
			byName[ns+"."+name] = e
			out.Enums = append(out.Enums, e)
		}
		e.Values = append(e.Values, label)
	}
	return rows.Err()
}

func (p *postgres) tables(ctx context.Context, schemas []string, out *schema.Schema) (map[string]*schema.Table, error) {
	rows, err := p.db.QueryContext(ctx, pgTablesQuery, pq.Array(schemas))
	if err != nil {
		return nil, fmt.Errorf("sourcerer: introspect tables: %w", err)
	}
	defer rows.Close()
	tables := make(map[string]*schema.Table)
	for rows.Next() {
		var ns, name, kind string
		if err := rows.Scan(&ns, &name, &kind); err != nil {
			return nil, err
		}
		t := &schema.Table{Schema: ns, Name: name, View: kind == "VIEW"}
		tables[ns+"."+name] = t
		out.Tables = append(out.Tables, t)
	}
	return tables, rows.Err()
}

func (p *postgres) columns(ctx context.Context, schemas []string, tables map[string]*schema.Table, out *schema.Schema) error {
	rows, err := p.db.QueryContext(ctx, pgColumnsQuery, pq.Array(schemas))
	if err != nil {
		return fmt.Errorf("sourcerer: introspect columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ns, table, name, udt, nullable string
		var dflt sql.NullString
		if err := rows.Scan(&ns, &table, &name, &udt, &nullable, &dflt); err != nil {
			return err
		}
		t, ok := tables[ns+"."+table]
		if !ok {
			continue
		}
		c := &schema.Column{
			Name:       name,
			Type:       udt,
			Nullable:   nullable == "YES",
			HasDefault: dflt.Valid,
		}
		if out.Enum(udt) != nil {
			c.Enum = udt
		}
		t.Columns = append(t.Columns, c)
	}
	return rows.Err()
}

func (p *postgres) primaryKeys(ctx context.Context, schemas []string, tables map[string]*schema.Table) error {
	rows, err := p.db.QueryContext(ctx, pgPrimaryKeysQuery, pq.Array(schemas))
	if err != nil {
		return fmt.Errorf("sourcerer: introspect primary keys: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ns, table, column string
		if err := rows.Scan(&ns, &table, &column); err != nil {
			return err
		}
		if t, ok := tables[ns+"."+table]; ok {
			t.PrimaryKey = append(t.PrimaryKey, column)
		}
	}
	return rows.Err()
}

func (p *postgres) foreignKeys(ctx context.Context, schemas []string, tables map[string]*schema.Table) error {
	rows, err := p.db.QueryContext(ctx, pgForeignKeysQuery, pq.Array(schemas))
	if err != nil {
		return fmt.Errorf("sourcerer: introspect foreign keys: %w", err)
	}
	defer rows.Close()
	byName := make(map[string]*schema.ForeignKey)
	for rows.Next() {
		var ns, table, constraint, column, refTable, refColumn string
		if err := rows.Scan(&ns, &table, &constraint, &column, &refTable, &refColumn); err != nil {
			return err
		}
		t, ok := tables[ns+"."+table]
		if !ok {
			continue
		}
		fk, ok := byName[ns+"."+table+"."+constraint]
		if !ok {
			fk = &schema.ForeignKey{Name: constraint, RefTable: refTable}
			byName[ns+"."+table+"."+constraint] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	return rows.Err()
}
