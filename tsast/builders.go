package tsast

import (
	"fmt"
	"strings"
)

// Raw wraps pre-rendered declaration text with an explicit kind. The text
// must not carry its own export keyword; exporting is the emitter's job.
func Raw(kind DeclKind, text string) *Decl {
	return &Decl{kind: kind, text: text}
}

// Field is one property of an interface or object type literal.
type Field struct {
	Name     string
	Type     string
	Optional bool
	Readonly bool
	Doc      string
}

func (f Field) render(b *strings.Builder) {
	if f.Doc != "" {
		fmt.Fprintf(b, "  /** %s */\n", f.Doc)
	}
	b.WriteString("  ")
	if f.Readonly {
		b.WriteString("readonly ")
	}
	b.WriteString(propertyName(f.Name))
	if f.Optional {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(f.Type)
	b.WriteString(";\n")
}

// Interface builds an interface declaration.
func Interface(name string, fields []Field) *Decl {
	var b strings.Builder
	fmt.Fprintf(&b, "interface %s {\n", name)
	for _, f := range fields {
		f.render(&b)
	}
	b.WriteString("}")
	return &Decl{kind: KindInterface, text: b.String()}
}

// TypeAlias builds a type alias declaration.
func TypeAlias(name, rhs string) *Decl {
	return &Decl{kind: KindTypeAlias, text: fmt.Sprintf("type %s = %s;", name, rhs)}
}

// Const builds a const declaration. The type annotation is omitted when typ
// is empty.
func Const(name, typ, expr string) *Decl {
	if typ == "" {
		return &Decl{kind: KindConst, text: fmt.Sprintf("const %s = %s;", name, expr)}
	}
	return &Decl{kind: KindConst, text: fmt.Sprintf("const %s: %s = %s;", name, typ, expr)}
}

// Param is one function parameter.
type Param struct {
	Name string
	Type string
}

// Func builds a function declaration with the given body lines, indented one
// level. An empty ret leaves the return type inferred.
func Func(name string, params []Param, ret string, async bool, body ...string) *Decl {
	var b strings.Builder
	if async {
		b.WriteString("async ")
	}
	b.WriteString("function ")
	b.WriteString(name)
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteString(": ")
		b.WriteString(p.Type)
	}
	b.WriteString(")")
	if ret != "" {
		b.WriteString(": ")
		b.WriteString(ret)
	}
	b.WriteString(" {\n")
	for _, line := range body {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("}")
	return &Decl{kind: KindFunction, text: b.String()}
}

// EnumMember is one member of an enum declaration.
type EnumMember struct {
	Name  string
	Value string
}

// Enum builds a TypeScript enum declaration.
func Enum(name string, members []EnumMember) *Decl {
	var b strings.Builder
	fmt.Fprintf(&b, "enum %s {\n", name)
	for _, m := range members {
		fmt.Fprintf(&b, "  %s = %s,\n", m.Name, m.Value)
	}
	b.WriteString("}")
	return &Decl{kind: KindEnum, text: b.String()}
}

// UnionOfStrings renders a string-literal union type, the usual mapping for
// SQL enum columns.
func UnionOfStrings(values []string) string {
	if len(values) == 0 {
		return "never"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = StringLit(v)
	}
	return strings.Join(quoted, " | ")
}

// StringLit renders a single-quoted TypeScript string literal.
func StringLit(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// propertyName quotes a property name when it is not a valid identifier.
func propertyName(name string) string {
	if isIdent(name) {
		return name
	}
	return StringLit(name)
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
