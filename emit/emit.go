package emit

import (
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/layout"
	"github.com/DanielFGray/pg-sourcerer-sub001/pipeline"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
	"github.com/DanielFGray/pg-sourcerer-sub001/tsast"
)

// File is one serialized output unit.
type File struct {
	Path    string
	Content string
}

// Emitter serializes file groups. It is pure: it reads the orchestration
// result and writes nothing itself.
type Emitter struct {
	importExt string
	header    string
}

// Option configures an emitter.
type Option func(*Emitter)

// WithImportExtension sets the extension written into synthesized relative
// import specifiers, replacing the source ".ts". The default ".js" matches
// ESM-style module resolution; pass "" for extensionless specifiers.
func WithImportExtension(ext string) Option {
	return func(e *Emitter) { e.importExt = ext }
}

// WithHeader sets the comment line prepended to every emitted file.
func WithHeader(header string) Option {
	return func(e *Emitter) { e.header = header }
}

// NewEmitter builds an emitter.
func NewEmitter(opts ...Option) *Emitter {
	e := &Emitter{
		importExt: ".js",
		header:    "// Code generated by pg-sourcerer. DO NOT EDIT.",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit serializes every file group. Files whose symbols are all
// metadata-only are absent from the returned set.
func (e *Emitter) Emit(res *pipeline.Result) ([]*File, error) {
	fileOf := make(map[string]string)
	for _, g := range res.FileGroups {
		for _, a := range g.Symbols {
			fileOf[a.Declaration.Capability.String()] = g.Path
		}
	}

	files := make([]*File, 0, len(res.FileGroups))
	for _, g := range res.FileGroups {
		f, err := e.emitFile(res.Registry, g, fileOf)
		if err != nil {
			return nil, err
		}
		if f != nil {
			files = append(files, f)
		}
	}
	return files, nil
}

// bodyEntry is one exported declaration of a file body.
type bodyEntry struct {
	name string
	kind tsast.DeclKind
	text string
}

// namedImport accumulates the names pulled from one module, keeping first
// appearance order and deduplicating.
type namedImport struct {
	module string
	names  []string
	seen   map[string]bool
}

func (n *namedImport) add(name string) {
	if n.seen[name] {
		return
	}
	n.seen[name] = true
	n.names = append(n.names, name)
}

func newNamedImport(module string) *namedImport {
	return &namedImport{module: module, seen: make(map[string]bool)}
}

func (n *namedImport) render(typeOnly bool) string {
	kw := "import"
	if typeOnly {
		kw = "import type"
	}
	return kw + " { " + strings.Join(n.names, ", ") + " } from " + tsast.StringLit(n.module) + ";"
}

// accumulator keys imports by module in first-appearance order.
type accumulator struct {
	order []string
	byMod map[string]*namedImport
}

func newAccumulator() *accumulator {
	return &accumulator{byMod: make(map[string]*namedImport)}
}

func (a *accumulator) at(module string) *namedImport {
	imp, ok := a.byMod[module]
	if !ok {
		imp = newNamedImport(module)
		a.byMod[module] = imp
		a.order = append(a.order, module)
	}
	return imp
}

func (a *accumulator) render(typeOnly bool) []string {
	out := make([]string, 0, len(a.order))
	for _, mod := range a.order {
		out = append(out, a.byMod[mod].render(typeOnly))
	}
	return out
}

func (e *Emitter) emitFile(reg *registry.Registry, g *pipeline.FileGroup, fileOf map[string]string) (*File, error) {
	var (
		body        []*bodyEntry
		kindsByName = make(map[string]map[tsast.DeclKind]bool)
		crossFile   = newAccumulator()
		extValues   = newAccumulator()
		extTypes    = newAccumulator()
		userImports []string
		userSeen    = make(map[string]bool)
		headers     []string
		headerSeen  = make(map[string]bool)
	)

	addBody := func(a *layout.Assigned, r *registry.Rendered) error {
		kinds := kindsByName[r.Name]
		if kinds == nil {
			kinds = make(map[tsast.DeclKind]bool)
			kindsByName[r.Name] = kinds
		}
		kind := r.Node.Kind()
		if kinds[kind] {
			return &ExportCollisionError{File: g.Path, Name: r.Name, Kind: kind.String()}
		}
		kinds[kind] = true

		node := r.Node
		if r.Export == registry.ExportDefault {
			if d, ok := node.(*tsast.Decl); ok {
				node = tsast.ExportDefault(d)
			} else {
				node = tsast.Export(node)
			}
		} else {
			node = tsast.Export(node)
		}
		body = append(body, &bodyEntry{name: r.Name, kind: kind, text: tsast.Sprint(node)})
		return nil
	}

	for _, a := range g.Symbols {
		r, ok := reg.RenderedFor(a.Declaration.Capability)
		if !ok {
			return nil, &MissingRenderError{
				Capability: a.Declaration.Capability.String(),
				Plugin:     a.Declaration.Plugin,
			}
		}

		if r.FileHeader != "" && !headerSeen[r.FileHeader] {
			headerSeen[r.FileHeader] = true
			headers = append(headers, r.FileHeader)
		}

		// Metadata-only symbols contribute no code and therefore no
		// imports.
		if r.Export == registry.ExportNone {
			continue
		}

		// Cross-file imports come from recorded reference edges.
		for _, target := range reg.ReferencesFrom(a.Declaration.Capability) {
			targetFile, ok := fileOf[target.String()]
			if !ok || targetFile == g.Path {
				continue
			}
			if tr, ok := reg.RenderedFor(target); ok && tr.Export == registry.ExportNone {
				continue
			}
			decl, err := reg.Lookup(target)
			if err != nil {
				return nil, err
			}
			crossFile.at(e.moduleSpecifier(g.Path, targetFile)).add(decl.Name)
		}

		// External imports, split value vs type-only per module.
		for _, imp := range r.ExternalImports {
			module := e.resolveUserModule(g.Path, imp.Module)
			acc := extValues
			if imp.TypeOnly {
				acc = extTypes
			}
			for _, name := range imp.Names {
				acc.at(module).add(name)
			}
		}

		// User-authored imports, deduplicated by the full rendered
		// statement.
		for _, imp := range r.UserImports {
			module := e.resolveUserModule(g.Path, imp.Module)
			n := newNamedImport(module)
			for _, name := range imp.Names {
				n.add(name)
			}
			stmt := n.render(imp.TypeOnly)
			if !userSeen[stmt] {
				userSeen[stmt] = true
				userImports = append(userImports, stmt)
			}
		}

		if err := addBody(a, r); err != nil {
			return nil, err
		}
	}

	// A file with no surviving body entries is never written.
	if len(body) == 0 {
		return nil, nil
	}

	// Assemble in order: user imports, type-only imports, value imports,
	// cross-file imports, body.
	var lines []string
	lines = append(lines, userImports...)
	lines = append(lines, extTypes.render(true)...)
	lines = append(lines, extValues.render(false)...)
	lines = append(lines, crossFile.render(false)...)
	if len(lines) > 0 {
		lines = append(lines, "")
	}
	for i, entry := range body {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, strings.Split(entry.text, "\n")...)
	}

	content := strings.Join(blankBeforeExports(lines), "\n") + "\n"
	content = e.prependHeaders(headers, content)
	return &File{Path: g.Path, Content: content}, nil
}

// blankBeforeExports guarantees a blank line precedes every top-level
// export line.
func blankBeforeExports(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.HasPrefix(line, "export ") && len(out) > 0 && out[len(out)-1] != "" {
			out = append(out, "")
		}
		out = append(out, line)
	}
	return out
}

func (e *Emitter) prependHeaders(legacy []string, content string) string {
	var b strings.Builder
	if e.header != "" {
		b.WriteString(e.header)
		b.WriteString("\n")
	}
	for _, h := range legacy {
		b.WriteString(strings.TrimRight(h, "\n"))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return content
	}
	b.WriteString("\n")
	b.WriteString(content)
	return b.String()
}
