package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugin"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
)

func regWith(t *testing.T, decls map[string]string) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for cap, owner := range decls {
		require.NoError(t, reg.Register(&registry.Declaration{
			Name:       "sym_" + owner,
			Capability: capability.Parse(cap),
			Plugin:     owner,
		}))
	}
	return reg
}

func TestCheckRequirements(t *testing.T) {
	t.Run("capability requirement satisfied by declaration", func(t *testing.T) {
		reg := regWith(t, map[string]string{"types:User": "tstypes"})
		plugins := []plugin.Plugin{&fakePlugin{name: "zod", requires: []string{"types:User"}}}
		assert.NoError(t, validate(reg, plugins))
	})

	t.Run("missing capability requirement", func(t *testing.T) {
		reg := registry.New()
		plugins := []plugin.Plugin{&fakePlugin{name: "zod", requires: []string{"types:User"}}}
		err := validate(reg, plugins)
		require.Error(t, err)
		var ue *UnsatisfiedError
		require.ErrorAs(t, err, &ue)
		assert.Equal(t, "zod", ue.Plugin)
		assert.Equal(t, "types:User", ue.Requirement)
		assert.False(t, ue.Category)
	})

	t.Run("category requirement needs a provider binding", func(t *testing.T) {
		reg := registry.New()
		plugins := []plugin.Plugin{&fakePlugin{name: "httpd", requires: []string{"queries"}}}
		err := validate(reg, plugins)
		assert.ErrorIs(t, err, ErrUnsatisfied)

		require.NoError(t, reg.RegisterCategoryProvider("queries", "kysely"))
		assert.NoError(t, validate(reg, plugins))
	})
}

func TestCheckCycles(t *testing.T) {
	t.Run("chain is acyclic", func(t *testing.T) {
		reg := regWith(t, map[string]string{
			"types:User":   "a",
			"schemas:User": "b",
		})
		plugins := []plugin.Plugin{
			&fakePlugin{name: "a"},
			&fakePlugin{name: "b", requires: []string{"types:User"}},
			&fakePlugin{name: "c", requires: []string{"schemas:User"}},
		}
		assert.NoError(t, validate(reg, plugins))
	})

	t.Run("two-plugin cycle is rejected", func(t *testing.T) {
		reg := regWith(t, map[string]string{
			"types:User":   "a",
			"schemas:User": "b",
		})
		plugins := []plugin.Plugin{
			&fakePlugin{name: "a", requires: []string{"schemas:User"}},
			&fakePlugin{name: "b", requires: []string{"types:User"}},
		}
		err := validate(reg, plugins)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCycle)
		var ce *CycleError
		require.ErrorAs(t, err, &ce)
		assert.GreaterOrEqual(t, len(ce.Path), 3)
		assert.Equal(t, ce.Path[0], ce.Path[len(ce.Path)-1])
	})

	t.Run("self requirement is not a cycle", func(t *testing.T) {
		reg := regWith(t, map[string]string{"types:User": "a"})
		plugins := []plugin.Plugin{&fakePlugin{name: "a", requires: []string{"types:User"}}}
		assert.NoError(t, validate(reg, plugins))
	})
}

func TestCheckCategoryOwnership(t *testing.T) {
	reg := registry.New()
	require.NoError(t, reg.RegisterCategoryProvider("queries", "kysely"))
	require.NoError(t, reg.Register(&registry.Declaration{
		Name:       "sneaky",
		Capability: capability.Parse("queries:Sneaky"),
		Plugin:     "intruder",
	}))

	err := validate(reg, []plugin.Plugin{&fakePlugin{name: "intruder"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, registry.ErrCategoryConflict)
}
