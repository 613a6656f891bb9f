// Package emit turns the orchestration result into serialized output
// files: it synthesizes cross-file imports from recorded reference edges,
// merges external and user-authored imports, detects export collisions,
// and assembles each file body deterministically.
package emit

import (
	"errors"
	"fmt"
)

// ErrExportCollision indicates two same-name, same-kind exports in one
// output file.
var ErrExportCollision = errors.New("sourcerer: export collision")

// ExportCollisionError reports the file and symbol of a collision. Two
// exports may share a name when their declaration kinds differ, because
// the value and type namespaces of a module are separate; identical kinds
// are fatal.
type ExportCollisionError struct {
	File string
	Name string
	Kind string
}

// Error implements the error interface.
func (e *ExportCollisionError) Error() string {
	return fmt.Sprintf("sourcerer: file %q exports %s %q twice", e.File, e.Kind, e.Name)
}

// Is reports whether the target matches the export-collision sentinel.
func (e *ExportCollisionError) Is(target error) bool {
	return target == ErrExportCollision
}

// MissingRenderError reports a declared symbol that was never rendered.
type MissingRenderError struct {
	Capability string
	Plugin     string
}

// Error implements the error interface.
func (e *MissingRenderError) Error() string {
	return fmt.Sprintf("sourcerer: plugin %q declared capability %q but never rendered it", e.Plugin, e.Capability)
}
