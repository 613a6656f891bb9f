package tsast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInterface(t *testing.T) {
	n := Interface("User", []Field{
		{Name: "id", Type: "number"},
		{Name: "display_name", Type: "string", Optional: true},
		{Name: "created-at", Type: "Date"},
	})
	assert.Equal(t, KindInterface, n.Kind())
	assert.Equal(t, "interface User {\n  id: number;\n  display_name?: string;\n  'created-at': Date;\n}", Sprint(n))
}

func TestExport(t *testing.T) {
	t.Run("prefixes the export keyword", func(t *testing.T) {
		n := Export(TypeAlias("UserId", "number"))
		assert.True(t, n.Exported())
		assert.Equal(t, "export type UserId = number;", Sprint(n))
	})

	t.Run("never double wraps", func(t *testing.T) {
		n := Export(Export(Const("VERSION", "", "'1'")))
		assert.Equal(t, "export const VERSION = '1';", Sprint(n))
	})

	t.Run("default export", func(t *testing.T) {
		n := ExportDefault(Func("handler", nil, "void", false, "return;"))
		assert.Equal(t, "export default function handler() {\n  return;\n}", Sprint(n))
	})
}

func TestFunc(t *testing.T) {
	n := Func("findById", []Param{{Name: "id", Type: "number"}}, "Promise<User>", true,
		"return db.selectFrom('user').where('id', '=', id).executeTakeFirstOrThrow();",
	)
	assert.Equal(t, KindFunction, n.Kind())
	assert.Contains(t, Sprint(n), "async function findById(id: number): Promise<User> {")
}

func TestKindClassification(t *testing.T) {
	assert.True(t, KindInterface.TypeLevel())
	assert.True(t, KindTypeAlias.TypeLevel())
	assert.False(t, KindConst.TypeLevel())
	assert.Equal(t, "type", KindTypeAlias.String())
	assert.Equal(t, "const", KindConst.String())
}

func TestUnionOfStrings(t *testing.T) {
	assert.Equal(t, "'a' | 'b'", UnionOfStrings([]string{"a", "b"}))
	assert.Equal(t, "never", UnionOfStrings(nil))
	assert.Equal(t, `'it\'s'`, StringLit("it's"))
}
