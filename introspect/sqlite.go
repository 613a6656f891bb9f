package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

type sqlite struct {
	db *sql.DB
}

const liteTablesQuery = `
SELECT name, type FROM sqlite_master
WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
ORDER BY name`

// Introspect implements Introspector over sqlite_master and the table_info
// and foreign_key_list pragmas. SQLite has no schema namespaces or enum
// types; the schemas argument is ignored.
func (s *sqlite) Introspect(ctx context.Context, _ []string) (*schema.Schema, error) {
	out := &schema.Schema{Name: "main"}

	rows, err := s.db.QueryContext(ctx, liteTablesQuery)
	if err != nil {
		return nil, fmt.Errorf("sourcerer: introspect tables: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, kind string
		if err := rows.Scan(&name, &kind); err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, &schema.Table{Name: name, View: kind == "view"})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, t := range out.Tables {
		if err := s.columns(ctx, t); err != nil {
			return nil, err
		}
		if err := s.foreignKeys(ctx, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *sqlite) columns(ctx context.Context, t *schema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(t.Name)))
	if err != nil {
		return fmt.Errorf("sourcerer: table_info(%s): %w", t.Name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			cid     int
			name    string
			typ     string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		t.Columns = append(t.Columns, &schema.Column{
			Name:       name,
			Type:       strings.ToLower(typ),
			Nullable:   notNull == 0 && pk == 0,
			HasDefault: dflt.Valid,
		})
		if pk > 0 {
			t.PrimaryKey = append(t.PrimaryKey, name)
		}
	}
	return rows.Err()
}

func (s *sqlite) foreignKeys(ctx context.Context, t *schema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(t.Name)))
	if err != nil {
		return fmt.Errorf("sourcerer: foreign_key_list(%s): %w", t.Name, err)
	}
	defer rows.Close()
	byID := make(map[int]*schema.ForeignKey)
	for rows.Next() {
		var (
			id, seq                      int
			refTable, from, to           string
			onUpdate, onDelete, matching string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matching); err != nil {
			return err
		}
		fk, ok := byID[id]
		if !ok {
			fk = &schema.ForeignKey{
				Name:     fmt.Sprintf("%s_fk_%d", t.Name, id),
				RefTable: refTable,
			}
			byID[id] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, from)
		fk.RefColumns = append(fk.RefColumns, to)
	}
	return rows.Err()
}

// quoteIdent double-quotes an identifier for interpolation into a PRAGMA,
// which cannot take bound parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
