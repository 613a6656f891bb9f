package pipeline

import (
	"strings"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
)

// validate proves, before any render runs, that every stated requirement is
// satisfiable, that the plugin dependency graph is acyclic, and that no
// declaration trespasses into another plugin's category. It reads the final
// declaration set and never mutates the registry.
func validate(reg *registry.Registry, plugins []plugin.Plugin) error {
	if err := checkRequirements(reg, plugins); err != nil {
		return err
	}
	if err := checkCategoryOwnership(reg); err != nil {
		return err
	}
	return checkCycles(reg, plugins)
}

func checkRequirements(reg *registry.Registry, plugins []plugin.Plugin) error {
	for _, pl := range plugins {
		for _, req := range pl.Requires() {
			if !strings.Contains(req, capability.Sep) {
				if _, ok := reg.ProviderFor(req); !ok {
					return &UnsatisfiedError{Plugin: pl.Name(), Requirement: req, Category: true}
				}
				continue
			}
			if !reg.Has(capability.Parse(req)) {
				return &UnsatisfiedError{Plugin: pl.Name(), Requirement: req}
			}
		}
	}
	return nil
}

// checkCategoryOwnership catches category conflicts Phase 0 cannot see: a
// declaration under a bound category registered by a plugin other than the
// category's provider.
func checkCategoryOwnership(reg *registry.Registry) error {
	for _, d := range reg.Declarations() {
		cat := d.Capability.Category
		if cat == "" {
			continue
		}
		owner, ok := reg.ProviderFor(cat)
		if ok && d.Plugin != "" && d.Plugin != owner {
			return &registry.ConflictError{Category: cat, Existing: owner, Plugin: d.Plugin}
		}
	}
	return nil
}

// checkCycles builds a directed graph with one node per plugin and an edge
// from provider to consumer for every satisfied requirement, then rejects
// cycles with recursion-stack DFS.
func checkCycles(reg *registry.Registry, plugins []plugin.Plugin) error {
	// consumers depend on providers: edge provider -> consumer.
	edges := make(map[string][]string)
	names := make([]string, 0, len(plugins))
	for _, pl := range plugins {
		names = append(names, pl.Name())
		for _, req := range pl.Requires() {
			provider := providerOf(reg, req)
			if provider == "" || provider == pl.Name() {
				continue
			}
			edges[provider] = append(edges[provider], pl.Name())
		}
	}

	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int, len(names))
	var stack []string

	var visit func(string) *CycleError
	visit = func(n string) *CycleError {
		state[n] = inStack
		stack = append(stack, n)
		for _, next := range edges[n] {
			switch state[next] {
			case inStack:
				// Slice the recorded stack from the first occurrence of
				// next to close the cycle path.
				for i, s := range stack {
					if s == next {
						path := append(append([]string(nil), stack[i:]...), next)
						return &CycleError{Path: path}
					}
				}
				return &CycleError{Path: []string{next, n, next}}
			case unvisited:
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return nil
	}

	for _, n := range names {
		if state[n] == unvisited {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// providerOf resolves a requirement to the plugin that fulfills it: the
// category provider for bare categories, the declaring plugin otherwise.
func providerOf(reg *registry.Registry, req string) string {
	if !strings.Contains(req, capability.Sep) {
		p, _ := reg.ProviderFor(req)
		return p
	}
	if d, err := reg.Lookup(capability.Parse(req)); err == nil {
		return d.Plugin
	}
	return ""
}
