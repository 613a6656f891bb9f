package plugins

import "github.com/DanielFGray/pg-sourcerer-sub001/schema"

// tsTypes maps raw database column types to TypeScript types. Postgres
// types use their udt names; MySQL and SQLite spellings are included so
// the same plugins serve every supported dialect. bigint maps to string
// because drivers return it as text to avoid precision loss.
var tsTypes = map[string]string{
	"int2": "number", "int4": "number", "int8": "string",
	"smallint": "number", "int": "number", "integer": "number",
	"mediumint": "number", "bigint": "string", "serial": "number",
	"float4": "number", "float8": "number", "real": "number",
	"double": "number", "float": "number", "numeric": "string",
	"decimal": "string", "money": "string",
	"bool": "boolean", "boolean": "boolean",
	"text": "string", "varchar": "string", "bpchar": "string",
	"char": "string", "citext": "string", "name": "string",
	"uuid": "string", "inet": "string", "cidr": "string",
	"macaddr": "string", "tinytext": "string", "mediumtext": "string",
	"longtext": "string",
	"date": "Date", "timestamp": "Date", "timestamptz": "Date",
	"datetime": "Date",
	"time": "string", "timetz": "string", "interval": "string",
	"json": "unknown", "jsonb": "unknown",
	"bytea": "Buffer", "blob": "Buffer", "varbinary": "Buffer",
}

// TSType returns the TypeScript type for a column, without nullability.
// Enum-typed columns return the empty string: the caller references the
// generated enum symbol instead of an inline type.
func TSType(c *schema.Column) string {
	if c.Enum != "" {
		return ""
	}
	if t, ok := tsTypes[c.Type]; ok {
		return t
	}
	return "unknown"
}

// zodExprs maps TypeScript types to their zod validator expressions.
var zodExprs = map[string]string{
	"number":  "z.number()",
	"string":  "z.string()",
	"boolean": "z.boolean()",
	"Date":    "z.coerce.date()",
	"Buffer":  "z.instanceof(Buffer)",
	"unknown": "z.unknown()",
}

// ZodExpr returns the zod validator expression for a non-enum column.
func ZodExpr(c *schema.Column) string {
	if e, ok := zodExprs[TSType(c)]; ok {
		return e
	}
	return "z.unknown()"
}
