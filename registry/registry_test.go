package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/tsast"
)

func declare(t *testing.T, r *Registry, plugin, cap, name string) *Declaration {
	t.Helper()
	d := &Declaration{Name: name, Capability: capability.Parse(cap), Plugin: plugin}
	require.NoError(t, r.Register(d))
	return d
}

func TestResolveCapability(t *testing.T) {
	t.Run("bare capabilities resolve to themselves", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		k := capability.Parse("runtime")
		assert.Equal(t, "runtime", r.ResolveCapability(k).String())
	})

	t.Run("unbound category passes through", func(t *testing.T) {
		r := New()
		k := capability.Parse("queries:User:findById")
		assert.Equal(t, "queries:User:findById", r.ResolveCapability(k).String())
	})

	t.Run("provider is inserted after the category", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		k := r.ResolveCapability(capability.Parse("queries:User:findById"))
		assert.Equal(t, "queries:kysely:User:findById", k.String())
		assert.True(t, k.Qualified())
	})

	t.Run("already spelled provider is not doubled", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		k := r.ResolveCapability(capability.Parse("queries:kysely:User:findById"))
		assert.Equal(t, "queries:kysely:User:findById", k.String())
	})

	t.Run("another provider token is treated as qualified", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		require.NoError(t, r.RegisterCategoryProvider("schemas", "zod"))
		// A queries key that names the zod provider explicitly stays as
		// written instead of gaining a second provider segment.
		k := r.ResolveCapability(capability.Parse("queries:zod:User"))
		assert.Equal(t, "queries:zod:User", k.String())
	})

	t.Run("qualified keys are never rewritten", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		k := capability.Parse("queries:User").Qualify("custom")
		assert.Equal(t, "queries:custom:User", r.ResolveCapability(k).String())
	})
}

func TestRegisterCategoryProvider(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))

	t.Run("second plugin conflicts", func(t *testing.T) {
		err := r.RegisterCategoryProvider("queries", "other")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCategoryConflict)
		var conflict *ConflictError
		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, "kysely", conflict.Existing)
	})

	t.Run("duplicate by the same plugin conflicts too", func(t *testing.T) {
		assert.ErrorIs(t, r.RegisterCategoryProvider("queries", "kysely"), ErrCategoryConflict)
	})
}

func TestRegister(t *testing.T) {
	t.Run("first declaration wins, second collides", func(t *testing.T) {
		r := New()
		declare(t, r, "a", "types:User", "User")
		err := r.Register(&Declaration{Name: "User2", Capability: capability.Parse("types:User"), Plugin: "b"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrCollision)
		var collision *CollisionError
		require.ErrorAs(t, err, &collision)
		assert.Equal(t, "a", collision.Existing)
		assert.Equal(t, "b", collision.Incoming)

		d, lookupErr := r.Lookup(capability.Parse("types:User"))
		require.NoError(t, lookupErr)
		assert.Equal(t, "User", d.Name)
	})

	t.Run("registration stores the qualified form", func(t *testing.T) {
		r := New()
		require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
		d := declare(t, r, "kysely", "queries:User:findById", "findUserById")
		assert.Equal(t, "queries:kysely:User:findById", d.Capability.String())

		// Both the short and the qualified spelling find it.
		assert.True(t, r.Has(capability.Parse("queries:User:findById")))
		assert.True(t, r.Has(capability.Parse("queries:kysely:User:findById")))
	})
}

func TestLookup(t *testing.T) {
	r := New()
	_, err := r.Lookup(capability.Parse("types:Missing"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "types:Missing", nf.Capability)
}

func TestImportRecordsOnInvocation(t *testing.T) {
	r := New()
	declare(t, r, "types", "types:User", "User")
	declare(t, r, "schemas", "schemas:User", "UserSchema")

	r.SetCurrentCapabilities(capability.Parse("schemas:User"))
	defer r.ClearCurrentCapabilities()

	h, err := r.Import(capability.Parse("types:User"))
	require.NoError(t, err)

	t.Run("obtaining a handle records nothing", func(t *testing.T) {
		assert.Empty(t, r.References())
	})

	t.Run("Name records nothing", func(t *testing.T) {
		assert.Equal(t, "User", h.Name())
		assert.Empty(t, r.References())
	})

	t.Run("Ref records one edge", func(t *testing.T) {
		assert.Equal(t, "User", h.Ref())
		require.Len(t, r.References(), 1)
		assert.Equal(t, "schemas:User", r.References()[0].Source.String())
		assert.Equal(t, "types:User", r.References()[0].Target.String())
	})

	t.Run("repeat invocations deduplicate", func(t *testing.T) {
		_ = h.Ref()
		_ = h.Invoke("row")
		assert.Len(t, r.References(), 1)
	})

	t.Run("Invoke renders a call expression", func(t *testing.T) {
		assert.Equal(t, "User(a, b)", h.Invoke("a", "b"))
	})

	t.Run("import of an undeclared capability fails", func(t *testing.T) {
		_, err := r.Import(capability.Parse("types:Missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestMustImport(t *testing.T) {
	r := New()
	declare(t, r, "types", "types:User", "User")
	assert.NotPanics(t, func() { r.MustImport(capability.Parse("types:User")) })
	assert.Panics(t, func() { r.MustImport(capability.Parse("types:Nope")) })
}

func TestForSymbol(t *testing.T) {
	r := New()
	declare(t, r, "types", "types:User", "User")
	declare(t, r, "schemas", "schemas:User", "UserSchema")
	declare(t, r, "schemas", "schemas:Post", "PostSchema")

	r.SetCurrentCapabilities(capability.Parse("schemas:User"), capability.Parse("schemas:Post"))
	defer r.ClearCurrentCapabilities()

	err := r.ForSymbol(capability.Parse("schemas:User"), func() error {
		h := r.MustImport(capability.Parse("types:User"))
		_ = h.Ref()
		return nil
	})
	require.NoError(t, err)

	t.Run("references inside fn attribute to the narrowed symbol alone", func(t *testing.T) {
		require.Len(t, r.References(), 1)
		assert.Equal(t, "schemas:User", r.References()[0].Source.String())
	})

	t.Run("prior context is restored exactly", func(t *testing.T) {
		h := r.MustImport(capability.Parse("types:User"))
		_ = h.Ref()
		// Both batch members now carry the edge.
		assert.Len(t, r.References(), 2)
		assert.Equal(t, "schemas:Post", r.References()[1].Source.String())
	})

	t.Run("restores on error too", func(t *testing.T) {
		boom := errors.New("boom")
		err := r.ForSymbol(capability.Parse("schemas:Post"), func() error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.Len(t, r.current, 2)
	})
}

func TestOwnedDeclarations(t *testing.T) {
	r := New()
	a := declare(t, r, "types", "types:User", "User")
	b := declare(t, r, "types", "types:Post", "Post")
	r.SetOwnedDeclarations("types", []*Declaration{a, b})

	assert.Equal(t, []*Declaration{a, b}, r.Own("types"))
	assert.Nil(t, r.Own("unknown"))
}

func TestAddRendered(t *testing.T) {
	r := New()
	require.NoError(t, r.RegisterCategoryProvider("queries", "kysely"))
	declare(t, r, "kysely", "queries:User:findById", "findUserById")

	s := &Rendered{
		Name:       "findUserById",
		Capability: capability.Parse("queries:User:findById"),
		Node:       tsast.Raw(tsast.KindFunction, "function findUserById() {}"),
		Export:     ExportNamed,
	}
	require.NoError(t, r.AddRendered(s))

	t.Run("cached under the qualified key", func(t *testing.T) {
		got, ok := r.RenderedFor(capability.Parse("queries:User:findById"))
		require.True(t, ok)
		assert.Equal(t, "queries:kysely:User:findById", got.Capability.String())
	})

	t.Run("second render of one capability collides", func(t *testing.T) {
		err := r.AddRendered(&Rendered{Capability: capability.Parse("queries:kysely:User:findById")})
		assert.ErrorIs(t, err, ErrCollision)
	})
}

func TestMetadataHandle(t *testing.T) {
	r := New()
	declare(t, r, "meta", "hints:User", "userHints")
	require.NoError(t, r.AddRendered(&Rendered{
		Capability: capability.Parse("hints:User"),
		Export:     ExportNone,
		Metadata:   map[string]any{"softDelete": true},
	}))

	r.SetCurrentCapabilities(capability.Parse("queries:User"))
	defer r.ClearCurrentCapabilities()

	h := r.MustImport(capability.Parse("hints:User"))
	assert.Equal(t, map[string]any{"softDelete": true}, h.Metadata())
	// Metadata access is not a code reference.
	assert.Empty(t, r.References())
}
