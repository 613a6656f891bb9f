// Package schema holds the introspected database model consumed by
// generator plugins. The model is deliberately plain data: the generation
// core passes it through to plugins without interpreting it, and nothing in
// it survives across pipeline runs.
package schema

import "sort"

// Schema is one introspected database schema (namespace).
type Schema struct {
	Name   string   `msgpack:"name"`
	Tables []*Table `msgpack:"tables"`
	Enums  []*Enum  `msgpack:"enums"`
}

// Table is one introspected table or view.
type Table struct {
	Schema      string        `msgpack:"schema"`
	Name        string        `msgpack:"name"`
	Comment     string        `msgpack:"comment,omitempty"`
	View        bool          `msgpack:"view,omitempty"`
	Columns     []*Column     `msgpack:"columns"`
	PrimaryKey  []string      `msgpack:"primary_key,omitempty"`
	ForeignKeys []*ForeignKey `msgpack:"foreign_keys,omitempty"`
}

// Column is one table column.
type Column struct {
	Name       string `msgpack:"name"`
	Type       string `msgpack:"type"` // raw database type, e.g. "timestamptz"
	Nullable   bool   `msgpack:"nullable,omitempty"`
	HasDefault bool   `msgpack:"has_default,omitempty"`
	Comment    string `msgpack:"comment,omitempty"`
	Enum       string `msgpack:"enum,omitempty"` // enum type name when the column is enum-typed
}

// Enum is one database enum type.
type Enum struct {
	Schema string   `msgpack:"schema"`
	Name   string   `msgpack:"name"`
	Values []string `msgpack:"values"`
}

// ForeignKey is one outgoing reference from a table.
type ForeignKey struct {
	Name       string   `msgpack:"name"`
	Columns    []string `msgpack:"columns"`
	RefTable   string   `msgpack:"ref_table"`
	RefColumns []string `msgpack:"ref_columns"`
}

// QualifiedName returns "schema.table", or just the table name when the
// schema is the empty or default namespace.
func (t *Table) QualifiedName() string {
	if t.Schema == "" || t.Schema == "public" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// IsPrimary reports whether the named column is part of the primary key.
func (t *Table) IsPrimary(name string) bool {
	for _, pk := range t.PrimaryKey {
		if pk == name {
			return true
		}
	}
	return false
}

// Table returns the named table, or nil. Lookup accepts both bare and
// schema-qualified names.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name || t.QualifiedName() == name {
			return t
		}
	}
	return nil
}

// Enum returns the named enum type, or nil.
func (s *Schema) Enum(name string) *Enum {
	for _, e := range s.Enums {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Sort orders tables, enums, columns of the model by name. Introspection
// queries already order their results, but snapshots assembled by hand in
// tests go through Sort to keep generation deterministic.
func (s *Schema) Sort() {
	sort.Slice(s.Tables, func(i, j int) bool {
		return s.Tables[i].QualifiedName() < s.Tables[j].QualifiedName()
	})
	sort.Slice(s.Enums, func(i, j int) bool { return s.Enums[i].Name < s.Enums[j].Name })
}
