package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielFGray/pg-sourcerer-sub001/capability"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/registry"
)

func testAssigner(svc *naming.Service, defaultRule *Rule) *Assigner {
	rules := []Rule{
		{Pattern: "types:", Dir: "models", Name: TemplateName("{folder}.ts")},
		{Pattern: "schemas:", Dir: "schemas", Name: TemplateName("{folder}.schema.ts")},
		{Pattern: "queries:", Dir: "queries", Name: TemplateName("{folder}.queries.ts")},
	}
	categories := map[string]bool{"types": true, "schemas": true, "queries": true}
	providers := map[string]bool{"kysely": true, "zod": true}
	return NewAssigner(rules, defaultRule, svc, categories, providers)
}

func decl(cap, name string) *registry.Declaration {
	return &registry.Declaration{Name: name, Capability: capability.Parse(cap)}
}

func TestFileFor(t *testing.T) {
	svc := naming.New()
	a := testAssigner(svc, nil)

	t.Run("explicit output path bypasses rules", func(t *testing.T) {
		d := decl("types:User", "User")
		d.OutputPath = "custom/override.ts"
		p, err := a.FileFor(d)
		require.NoError(t, err)
		assert.Equal(t, "custom/override.ts", p)
	})

	t.Run("entity parsed from capability", func(t *testing.T) {
		p, err := a.FileFor(decl("types:User", "User"))
		require.NoError(t, err)
		assert.Equal(t, "models/user.ts", p)
	})

	t.Run("provider token is skipped", func(t *testing.T) {
		d := decl("queries:kysely:UserAccount:findById", "findUserAccountById")
		p, err := a.FileFor(d)
		require.NoError(t, err)
		assert.Equal(t, "queries/user-account.queries.ts", p)
	})

	t.Run("schema-qualified entity splits on dot", func(t *testing.T) {
		d := decl("types:audit.Event", "AuditEvent")
		p, err := a.FileFor(d)
		require.NoError(t, err)
		assert.Equal(t, "models/event.ts", p)
	})

	t.Run("referential purity", func(t *testing.T) {
		d := decl("queries:kysely:User:findById", "findUserById")
		first, err := a.FileFor(d)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := a.FileFor(d)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("no rule and no default is a configuration error", func(t *testing.T) {
		_, err := a.FileFor(decl("routes:User", "userRoutes"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoRule)
		var re *RuleError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "routes:User", re.Capability)
	})

	t.Run("default rule catches the rest", func(t *testing.T) {
		def := &Rule{Dir: "misc", Name: TemplateName("{folder}.ts")}
		withDefault := testAssigner(svc, def)
		p, err := withDefault.FileFor(decl("routes:User", "userRoutes"))
		require.NoError(t, err)
		assert.Equal(t, "misc/user.ts", p)
	})
}

func TestDerivationPriority(t *testing.T) {
	t.Run("naming provenance wins over everything", func(t *testing.T) {
		svc := naming.New()
		svc.Record("NewUser", naming.Provenance{Entity: "User", Base: "User", Variant: "insert"})
		a := testAssigner(svc, nil)

		d := decl("types:NewUser", "NewUser")
		d.BaseEntityName = "SomethingElse"
		p, err := a.FileFor(d)
		require.NoError(t, err)
		assert.Equal(t, "models/user.ts", p)
	})

	t.Run("explicit base entity beats capability parsing", func(t *testing.T) {
		a := testAssigner(naming.New(), nil)
		d := decl("types:UserInsert", "UserInsert")
		d.BaseEntityName = "User"
		p, err := a.FileFor(d)
		require.NoError(t, err)
		assert.Equal(t, "models/user.ts", p)
	})
}

func TestCoAssignment(t *testing.T) {
	// Two declarations sharing a resolved base entity and matching the
	// same rule always land in the same file.
	svc := naming.New()
	svc.Record("NewUser", naming.Provenance{Entity: "User", Base: "User", Variant: "insert"})
	a := testAssigner(svc, nil)

	row := decl("types:User", "User")
	insert := decl("types:User:insert", "NewUser")

	pRow, err := a.FileFor(row)
	require.NoError(t, err)
	pInsert, err := a.FileFor(insert)
	require.NoError(t, err)
	assert.Equal(t, pRow, pInsert)
}

func TestAssign(t *testing.T) {
	a := testAssigner(naming.New(), nil)
	decls := []*registry.Declaration{
		decl("types:User", "User"),
		decl("schemas:User", "UserSchema"),
	}
	assigned, err := a.Assign(decls)
	require.NoError(t, err)
	require.Len(t, assigned, 2)
	assert.Equal(t, "models/user.ts", assigned[0].FilePath)
	assert.Equal(t, "schemas/user.schema.ts", assigned[1].FilePath)

	t.Run("failure propagates", func(t *testing.T) {
		_, err := a.Assign([]*registry.Declaration{decl("routes:User", "r")})
		assert.ErrorIs(t, err, ErrNoRule)
	})
}

func TestStaticName(t *testing.T) {
	a := NewAssigner([]Rule{{Pattern: "types:", Name: StaticName("types.ts")}}, nil, naming.New(),
		map[string]bool{"types": true}, nil)
	p, err := a.FileFor(decl("types:User", "User"))
	require.NoError(t, err)
	assert.Equal(t, "types.ts", p)
}
