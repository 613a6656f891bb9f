package queries

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DanielFGray/pg-sourcerer-sub001/emit"
	"github.com/DanielFGray/pg-sourcerer-sub001/layout"
	"github.com/DanielFGray/pg-sourcerer-sub001/naming"
	"github.com/DanielFGray/pg-sourcerer-sub001/pipeline"
	"github.com/DanielFGray/pg-sourcerer-sub001/plugins"
	_ "github.com/DanielFGray/pg-sourcerer-sub001/plugins/tstypes"
	"github.com/DanielFGray/pg-sourcerer-sub001/schema"
)

func fixture() *schema.Schema {
	return &schema.Schema{
		Name: "public",
		Tables: []*schema.Table{
			{
				Schema: "public",
				Name:   "users",
				Columns: []*schema.Column{
					{Name: "id", Type: "int4", HasDefault: true},
					{Name: "email", Type: "text"},
				},
				PrimaryKey: []string{"id"},
			},
			{
				Schema: "public",
				Name:   "user_stats",
				View:   true,
				Columns: []*schema.Column{
					{Name: "user_id", Type: "int4"},
					{Name: "post_count", Type: "int8"},
				},
			},
		},
	}
}

func generate(t *testing.T, opts ...pipeline.Option) (map[string]string, *pipeline.Result) {
	t.Helper()
	types, err := plugins.New("tstypes")
	require.NoError(t, err)
	opts = append([]pipeline.Option{
		pipeline.WithPlugins(types, &kysely{}),
		pipeline.WithRules(layout.Rule{Pattern: "queries:", Dir: "queries", Name: layout.TemplateName("{folder}.queries.ts")}),
		pipeline.WithDefaultRule(layout.Rule{Dir: "models", Name: layout.TemplateName("{folder}.ts")}),
	}, opts...)
	p, err := pipeline.New(fixture(), naming.New(), opts...)
	require.NoError(t, err)
	res, err := p.Run(context.Background())
	require.NoError(t, err)
	files, err := emit.NewEmitter().Emit(res)
	require.NoError(t, err)
	byPath := make(map[string]string, len(files))
	for _, f := range files {
		byPath[f.Path] = f.Content
	}
	return byPath, res
}

func TestDatabaseInterface(t *testing.T) {
	files, _ := generate(t)
	db := files["db.ts"]
	require.NotEmpty(t, db, "OutputPath bypasses the rule list")

	assert.Contains(t, db, "export interface Database {")
	assert.Contains(t, db, "  users: User;")
	assert.Contains(t, db, "  user_stats: UserStat;")
	assert.Contains(t, db, "import { User } from './models/user.js';")
	assert.Contains(t, db, "import { UserStat } from './models/user-stat.js';")
}

func TestQueryFunctions(t *testing.T) {
	files, _ := generate(t)
	out := files["queries/user.queries.ts"]
	require.NotEmpty(t, out)

	t.Run("findById", func(t *testing.T) {
		assert.Contains(t, out, "export async function findUserById(db: Kysely<Database>, id: number): Promise<User | undefined> {")
		assert.Contains(t, out, "return await db.selectFrom('users')")
		assert.Contains(t, out, ".where('id', '=', id)")
		assert.Contains(t, out, ".executeTakeFirst();")
	})

	t.Run("list", func(t *testing.T) {
		assert.Contains(t, out, "export async function listUsers(db: Kysely<Database>): Promise<User[]> {")
	})

	t.Run("insertOne", func(t *testing.T) {
		assert.Contains(t, out, "export async function insertUser(db: Kysely<Database>, values: UserInsert): Promise<User> {")
		assert.Contains(t, out, ".returningAll()")
	})

	t.Run("imports", func(t *testing.T) {
		assert.Contains(t, out, "import type { Kysely } from 'kysely';")
		assert.Contains(t, out, "import { Database } from '../db.js';")
		assert.Contains(t, out, "import { User, UserInsert } from '../models/user.js';")
	})
}

func TestViewsAreReadOnly(t *testing.T) {
	files, res := generate(t)
	out := files["queries/user-stat.queries.ts"]
	require.NotEmpty(t, out)

	assert.Contains(t, out, "export async function listUserStats(db: Kysely<Database>): Promise<UserStat[]> {")
	assert.NotContains(t, out, "insertUserStat")

	t.Run("no findById without a single-column primary key", func(t *testing.T) {
		for _, d := range res.Declarations {
			assert.NotEqual(t, "findUserStatById", d.Name)
		}
	})
}

func TestProviderAliasResolves(t *testing.T) {
	_, res := generate(t)

	t.Run("consumer spelling with explicit provider", func(t *testing.T) {
		caps := make([]string, len(res.Declarations))
		for i, d := range res.Declarations {
			caps[i] = d.Capability.String()
		}
		assert.Contains(t, caps, "queries:kysely:User:findById")
	})
}
