package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

type mysql struct {
	db *sql.DB
}

const (
	myTablesQuery = `
SELECT TABLE_NAME, TABLE_TYPE
FROM information_schema.TABLES
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
ORDER BY TABLE_NAME`

	myColumnsQuery = `
SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, COLUMN_KEY
FROM information_schema.COLUMNS
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
ORDER BY TABLE_NAME, ORDINAL_POSITION`

	myForeignKeysQuery = `
SELECT TABLE_NAME, CONSTRAINT_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME
FROM information_schema.KEY_COLUMN_USAGE
WHERE TABLE_SCHEMA = COALESCE(NULLIF(?, ''), DATABASE())
  AND REFERENCED_TABLE_NAME IS NOT NULL
ORDER BY TABLE_NAME, CONSTRAINT_NAME, ORDINAL_POSITION`
)

// Introspect implements Introspector. MySQL has one namespace per
// database; only the first schema argument is honored, and an empty list
// falls back to the connection's default database. Enum columns carry
// their values inline in COLUMN_TYPE, so each becomes a synthetic enum
// named "{table}_{column}".
func (m *mysql) Introspect(ctx context.Context, schemas []string) (*schema.Schema, error) {
	target := ""
	if len(schemas) > 0 {
		target = schemas[0]
	}
	out := &schema.Schema{Name: target}

	tables, err := m.tables(ctx, target, out)
	if err != nil {
		return nil, err
	}
	if err := m.columns(ctx, target, tables, out); err != nil {
		return nil, err
	}
	return out, m.foreignKeys(ctx, target, tables)
}

func (m *mysql) tables(ctx context.Context, target string, out *schema.Schema) (map[string]*schema.Table, error) {
	rows, err := m.db.QueryContext(ctx, myTablesQuery, target)
	if err != nil {
		return nil, fmt.Errorf("sourcerer: introspect tables: %w", err)
	}
	defer rows.Close()
	tables := make(map[string]*schema.Table)
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		t := &schema.Table{Schema: target, Name: name, View: kind == "VIEW"}
		tables[name] = t
		out.Tables = append(out.Tables, t)
	}
	return tables, rows.Err()
}

func (m *mysql) columns(ctx context.Context, target string, tables map[string]*schema.Table, out *schema.Schema) error {
	rows, err := m.db.QueryContext(ctx, myColumnsQuery, target)
	if err != nil {
		return fmt.Errorf("sourcerer: introspect columns: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var table, name, dataType, columnType, nullable, key string
		var dflt sql.NullString
		if err := rows.Scan(&table, &name, &dataType, &columnType, &nullable, &dflt, &key); err != nil {
			return err
		}
		t, ok := tables[table]
		if !ok {
			continue
		}
		c := &schema.Column{
			Name:       name,
			Type:       dataType,
			Nullable:   nullable == "YES",
			HasDefault: dflt.Valid,
		}
		if dataType == "enum" {
			enumName := table + "_" + name
			if out.Enum(enumName) == nil {
				out.Enums = append(out.Enums, &schema.Enum{
					Schema: target,
					Name:   enumName,
					Values: parseInlineEnum(columnType),
				})
			}
			c.Enum = enumName
		}
		t.Columns = append(t.Columns, c)
		if key == "PRI" {
			t.PrimaryKey = append(t.PrimaryKey, name)
		}
	}
	return rows.Err()
}

func (m *mysql) foreignKeys(ctx context.Context, target string, tables map[string]*schema.Table) error {
	rows, err := m.db.QueryContext(ctx, myForeignKeysQuery, target)
	if err != nil {
		return fmt.Errorf("sourcerer: introspect foreign keys: %w", err)
	}
	defer rows.Close()
	byName := make(map[string]*schema.ForeignKey)
	for rows.Next() {
		var table, constraint, column, refTable, refColumn string
		if err := rows.Scan(&table, &constraint, &column, &refTable, &refColumn); err != nil {
			return err
		}
		t, ok := tables[table]
		if !ok {
			continue
		}
		fk, ok := byName[table+"."+constraint]
		if !ok {
			fk = &schema.ForeignKey{Name: constraint, RefTable: refTable}
			byName[table+"."+constraint] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	return rows.Err()
}

// parseInlineEnum extracts the labels from a COLUMN_TYPE value like
// "enum('a','b')".
func parseInlineEnum(columnType string) []string {
	open := strings.IndexByte(columnType, '(')
	end := strings.LastIndexByte(columnType, ')')
	if open < 0 || end <= open {
		return nil
	}
	parts := strings.Split(columnType[open+1:end], ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		p = strings.Trim(p, "'")
		p = strings.ReplaceAll(p, "''", "'")
		values = append(values, p)
	}
	return values
}
