package introspect

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, dialect := range []string{"postgres", "mysql", "sqlite"} {
		in, err := New(dialect, db)
		require.NoError(t, err, dialect)
		assert.NotNil(t, in)
	}

	_, err = New("oracle", db)
	assert.ErrorContains(t, err, "no introspector for dialect")
}

func TestPostgresIntrospect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("pg_enum").WillReturnRows(
		sqlmock.NewRows([]string{"nspname", "typname", "enumlabel"}).
			AddRow("public", "user_role", "admin").
			AddRow("public", "user_role", "member"),
	)
	mock.ExpectQuery("information_schema.tables").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "table_type"}).
			AddRow("public", "posts", "BASE TABLE").
			AddRow("public", "users", "BASE TABLE"),
	)
	mock.ExpectQuery("information_schema.columns").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name", "udt_name", "is_nullable", "column_default"}).
			AddRow("public", "posts", "id", "int4", "NO", "nextval('posts_id_seq')").
			AddRow("public", "posts", "author_id", "int4", "NO", nil).
			AddRow("public", "users", "id", "int4", "NO", "nextval('users_id_seq')").
			AddRow("public", "users", "email", "text", "NO", nil).
			AddRow("public", "users", "bio", "text", "YES", nil).
			AddRow("public", "users", "role", "user_role", "NO", "'member'::user_role"),
	)
	mock.ExpectQuery("PRIMARY KEY").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "column_name"}).
			AddRow("public", "posts", "id").
			AddRow("public", "users", "id"),
	)
	mock.ExpectQuery("FOREIGN KEY").WillReturnRows(
		sqlmock.NewRows([]string{"table_schema", "table_name", "constraint_name", "column_name", "ref_table", "ref_column"}).
			AddRow("public", "posts", "posts_author_id_fkey", "author_id", "users", "id"),
	)

	in, err := New("postgres", db)
	require.NoError(t, err)
	s, err := in.Introspect(context.Background(), []string{"public"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	t.Run("tables and columns", func(t *testing.T) {
		require.Len(t, s.Tables, 2)
		users := s.Table("users")
		require.NotNil(t, users)
		require.Len(t, users.Columns, 4)
		assert.True(t, users.Column("bio").Nullable)
		assert.True(t, users.Column("id").HasDefault)
		assert.False(t, users.Column("email").Nullable)
	})

	t.Run("enum columns are linked", func(t *testing.T) {
		require.NotNil(t, s.Enum("user_role"))
		assert.Equal(t, []string{"admin", "member"}, s.Enum("user_role").Values)
		assert.Equal(t, "user_role", s.Table("users").Column("role").Enum)
	})

	t.Run("keys", func(t *testing.T) {
		assert.Equal(t, []string{"id"}, s.Table("users").PrimaryKey)
		posts := s.Table("posts")
		require.Len(t, posts.ForeignKeys, 1)
		assert.Equal(t, "users", posts.ForeignKeys[0].RefTable)
		assert.Equal(t, []string{"author_id"}, posts.ForeignKeys[0].Columns)
	})
}

func TestPostgresQueryFailurePropagates(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("pg_enum").WillReturnError(assert.AnError)

	in, _ := New("postgres", db)
	_, err = in.Introspect(context.Background(), nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMySQLIntrospect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.TABLES").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_NAME", "TABLE_TYPE"}).
			AddRow("users", "BASE TABLE"),
	)
	mock.ExpectQuery("information_schema.COLUMNS").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "COLUMN_TYPE", "IS_NULLABLE", "COLUMN_DEFAULT", "COLUMN_KEY"}).
			AddRow("users", "id", "int", "int(11)", "NO", nil, "PRI").
			AddRow("users", "status", "enum", "enum('active','banned')", "NO", "'active'", ""),
	)
	mock.ExpectQuery("KEY_COLUMN_USAGE").WillReturnRows(
		sqlmock.NewRows([]string{"TABLE_NAME", "CONSTRAINT_NAME", "COLUMN_NAME", "REFERENCED_TABLE_NAME", "REFERENCED_COLUMN_NAME"}),
	)

	in, err := New("mysql", db)
	require.NoError(t, err)
	s, err := in.Introspect(context.Background(), []string{"app"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	users := s.Table("users")
	require.NotNil(t, users)
	assert.Equal(t, []string{"id"}, users.PrimaryKey)

	t.Run("inline enum becomes a synthetic enum type", func(t *testing.T) {
		require.NotNil(t, s.Enum("users_status"))
		assert.Equal(t, []string{"active", "banned"}, s.Enum("users_status").Values)
		assert.Equal(t, "users_status", users.Column("status").Enum)
	})
}

func TestSQLiteIntrospect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("sqlite_master").WillReturnRows(
		sqlmock.NewRows([]string{"name", "type"}).AddRow("notes", "table"),
	)
	mock.ExpectQuery("PRAGMA table_info").WillReturnRows(
		sqlmock.NewRows([]string{"cid", "name", "type", "notnull", "dflt_value", "pk"}).
			AddRow(0, "id", "INTEGER", 0, nil, 1).
			AddRow(1, "body", "TEXT", 1, nil, 0),
	)
	mock.ExpectQuery("PRAGMA foreign_key_list").WillReturnRows(
		sqlmock.NewRows([]string{"id", "seq", "table", "from", "to", "on_update", "on_delete", "match"}),
	)

	in, err := New("sqlite", db)
	require.NoError(t, err)
	s, err := in.Introspect(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	notes := s.Table("notes")
	require.NotNil(t, notes)
	assert.Equal(t, []string{"id"}, notes.PrimaryKey)
	assert.Equal(t, "integer", notes.Column("id").Type)
	assert.False(t, notes.Column("body").Nullable)
	assert.False(t, notes.Column("id").Nullable, "primary key columns are never nullable")
}

func TestParseInlineEnum(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseInlineEnum("enum('a','b')"))
	assert.Equal(t, []string{"it's"}, parseInlineEnum("enum('it''s')"))
	assert.Nil(t, parseInlineEnum("int"))
}
