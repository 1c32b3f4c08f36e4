package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeStrings(t *testing.T) {
	assert.Equal(t, "int", IntType.String())
	assert.Equal(t, "int[]", NewArray(IntType).String())
	assert.Equal(t, "int...", NewVarargs(IntType).String())
	assert.Equal(t, "Foo", NewClass("Foo").String())

	assert.Equal(t, ".i32", IntType.Suffix())
	assert.Equal(t, ".array.bool", NewArray(BooleanType).Suffix())
	assert.Equal(t, ".V", VoidType.Suffix())
}

func TestTypeEqualIgnoresVarargs(t *testing.T) {
	assert.True(t, NewArray(IntType).Equal(NewVarargs(IntType)))
	assert.False(t, NewArray(IntType).Equal(NewArray(BooleanType)))
	assert.False(t, NewClass("A").Equal(NewClass("B")))
	assert.True(t, NewClass("A").Equal(NewClass("A")))
}

func TestReferenceKinds(t *testing.T) {
	assert.False(t, IntType.IsReference())
	assert.False(t, BooleanType.IsReference())
	assert.True(t, StringType.IsReference())
	assert.True(t, NewArray(IntType).IsReference())
	assert.True(t, NewClass("Foo").IsReference())
}

func TestRegistryImports(t *testing.T) {
	registry := NewTypeRegistry()
	registry.SetClassName("Main")
	registry.AddImport("io.Console")
	registry.AddImport("java.util.List")

	assert.True(t, registry.IsImported("Console"))
	assert.True(t, registry.IsImported("List"))
	assert.False(t, registry.IsImported("util"))
	assert.True(t, registry.IsKnownClass("Main"))
	assert.Same(t, IntType, registry.Lookup("int"))
	assert.Equal(t, Class, registry.Lookup("Console").Kind)

	imports := registry.Imports()
	if assert.Len(t, imports, 2) {
		assert.Equal(t, "io.Console", imports[0].Path)
		assert.Equal(t, "List", imports[1].Name)
	}
}
