// Package plugins is the factory registry for built-in generator plugins.
// Each built-in registers itself from an init function; the command wires
// configured plugin names to instances through New.
package plugins

import (
	"fmt"
	"sort"
	"sync"

	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
)

// Factory constructs a fresh plugin instance. Instances hold no
// configuration; per-plugin options travel through the pipeline contexts.
type Factory func() plugin.Plugin

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register binds a plugin name to its factory. Registering the same name
// twice is a programming error.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, ok := factories[name]; ok {
		panic(fmt.Sprintf("sourcerer: duplicate plugin registration %q", name))
	}
	factories[name] = f
}

// New instantiates a registered plugin by name.
func New(name string) (plugin.Plugin, error) {
	mu.RLock()
	f, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("sourcerer: unknown plugin %q (registered: %v)", name, Names())
	}
	return f(), nil
}

// Names returns the registered plugin names, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
