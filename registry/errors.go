// Package registry implements the symbol registry: the authoritative table
// of declared and rendered symbols, category-provider bindings, and the
// cross-reference graph. It is the only mutable state in the generation
// pipeline.
package registry

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry failure classes.
var (
	// ErrCollision indicates a second declaration under one capability.
	ErrCollision = errors.New("sourcerer: capability collision")
	// ErrCategoryConflict indicates a second provider binding for a category.
	ErrCategoryConflict = errors.New("sourcerer: category provider conflict")
	// ErrNotFound indicates a lookup of an undeclared capability.
	ErrNotFound = errors.New("sourcerer: capability not found")
)

// CollisionError reports a duplicate symbol declaration. The first writer
// always wins; the second always fails.
type CollisionError struct {
	Capability string
	Existing   string // plugin owning the first declaration
	Incoming   string // plugin attempting the second
}

// Error implements the error interface.
func (e *CollisionError) Error() string {
	if e.Existing != "" && e.Incoming != "" {
		return fmt.Sprintf("sourcerer: capability %q already declared by plugin %q, rejected duplicate from %q",
			e.Capability, e.Existing, e.Incoming)
	}
	return fmt.Sprintf("sourcerer: capability %q already declared", e.Capability)
}

// Is reports whether the target matches the collision sentinel.
func (e *CollisionError) Is(target error) bool {
	return target == ErrCollision
}

// ConflictError reports a duplicate category-provider binding. Even a
// repeat registration by the same plugin conflicts: a category is bound
// exactly once.
type ConflictError struct {
	Category string
	Existing string
	Plugin   string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("sourcerer: category %q already provided by plugin %q, rejected registration from %q",
		e.Category, e.Existing, e.Plugin)
}

// Is reports whether the target matches the conflict sentinel.
func (e *ConflictError) Is(target error) bool {
	return target == ErrCategoryConflict
}

// NotFoundError reports a reference to a capability with no declaration.
type NotFoundError struct {
	Capability string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("sourcerer: no symbol declared for capability %q", e.Capability)
}

// Is reports whether the target matches the not-found sentinel.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
