package emit

import (
	"path"
	"strings"
)

// moduleSpecifier computes the import specifier for toPath as seen from
// fromPath: common directory prefix trimmed, one "../" per remaining source
// level, "./" when the files share a directory, and the ".ts" extension
// rewritten for module resolution.
func (e *Emitter) moduleSpecifier(fromPath, toPath string) string {
	spec := relativePath(path.Dir(fromPath), toPath)
	return e.rewriteExtension(spec)
}

// resolveUserModule resolves a relative-looking user module (anchored at
// the output root) into a specifier relative to fromPath. Bare module names
// pass through untouched.
func (e *Emitter) resolveUserModule(fromPath, module string) string {
	if !strings.HasPrefix(module, "./") && !strings.HasPrefix(module, "../") {
		return module
	}
	anchored := path.Clean(module)
	spec := relativePath(path.Dir(fromPath), anchored)
	if strings.HasSuffix(spec, ".ts") {
		return e.rewriteExtension(spec)
	}
	return spec
}

func (e *Emitter) rewriteExtension(spec string) string {
	return strings.TrimSuffix(spec, ".ts") + e.importExt
}

// relativePath is pure slash-path math: output paths never go through the
// OS-specific filepath package.
func relativePath(fromDir, to string) string {
	if fromDir == "." || fromDir == "" {
		if strings.HasPrefix(to, "../") {
			return to
		}
		return "./" + to
	}
	fromParts := strings.Split(fromDir, "/")
	toParts := strings.Split(to, "/")

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	var b strings.Builder
	for i := common; i < len(fromParts); i++ {
		b.WriteString("../")
	}
	if b.Len() == 0 {
		b.WriteString("./")
	}
	b.WriteString(strings.Join(toParts[common:], "/"))
	return b.String()
}
