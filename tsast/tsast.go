// Package tsast is a minimal TypeScript syntax representation for generated
// code. It deliberately models only what the emitter needs from a syntax
// value: a declaration-kind classification, export-wrapping, and rendering
// to source text. Plugins build nodes with the constructors in builders.go
// or wrap pre-rendered text with Raw.
package tsast

import (
	"io"
	"strings"
)

// DeclKind classifies a top-level declaration. Two exported declarations
// may share a name in one module only when their kinds differ, because
// TypeScript keeps values and types in separate namespaces.
type DeclKind int

const (
	KindUnknown DeclKind = iota
	KindConst
	KindLet
	KindVar
	KindFunction
	KindClass
	KindInterface
	KindTypeAlias
	KindEnum
	KindNamespace
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindConst:     "const",
	KindLet:       "let",
	KindVar:       "var",
	KindFunction:  "function",
	KindClass:     "class",
	KindInterface: "interface",
	KindTypeAlias: "type",
	KindEnum:      "enum",
	KindNamespace: "namespace",
}

// String returns the TypeScript keyword for the kind.
func (k DeclKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// TypeLevel reports whether declarations of this kind live in the type
// namespace rather than the value namespace.
func (k DeclKind) TypeLevel() bool {
	return k == KindInterface || k == KindTypeAlias
}

// Node is one top-level declaration or statement. Any pluggable syntax
// representation must be able to classify itself, report whether it is
// already wrapped in an export form, and render to source text.
type Node interface {
	Kind() DeclKind
	Exported() bool
	Render(w io.Writer) error
}

// Decl is the textual Node implementation used by the built-in plugins.
type Decl struct {
	kind     DeclKind
	exported bool
	deflt    bool
	text     string
}

// Kind implements Node.
func (d *Decl) Kind() DeclKind { return d.kind }

// Exported implements Node.
func (d *Decl) Exported() bool { return d.exported }

// Default reports whether the declaration is a default export.
func (d *Decl) Default() bool { return d.deflt }

// Render implements Node. The export keyword, when present, is part of the
// rendered text so that re-rendering is stable.
func (d *Decl) Render(w io.Writer) error {
	text := d.text
	if d.exported {
		prefix := "export "
		if d.deflt {
			prefix = "export default "
		}
		text = prefix + text
	}
	_, err := io.WriteString(w, text)
	return err
}

// Export returns a node wrapped in an export form. Nodes that are already
// exported are returned unchanged, so double-wrapping cannot occur.
func Export(n Node) Node {
	if n.Exported() {
		return n
	}
	if d, ok := n.(*Decl); ok {
		e := *d
		e.exported = true
		return &e
	}
	return &exportWrap{Node: n}
}

// ExportDefault marks a declaration as the module's default export.
func ExportDefault(d *Decl) *Decl {
	e := *d
	e.exported = true
	e.deflt = true
	return &e
}

// exportWrap adapts foreign Node implementations that cannot re-render
// themselves with an export keyword.
type exportWrap struct {
	Node
}

func (e *exportWrap) Exported() bool { return true }

func (e *exportWrap) Render(w io.Writer) error {
	if _, err := io.WriteString(w, "export "); err != nil {
		return err
	}
	return e.Node.Render(w)
}

// Sprint renders a node to a string. Render errors cannot occur when
// writing to a strings.Builder, so Sprint has no error return.
func Sprint(n Node) string {
	var b strings.Builder
	_ = n.Render(&b)
	return b.String()
}
