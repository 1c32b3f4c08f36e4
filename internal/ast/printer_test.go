package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"jmmc/internal/types"
)

func TestProgramString(t *testing.T) {
	program := &Program{
		Imports: []*Import{{Path: []string{"io", "Console"}}},
		Class: &ClassDecl{
			Name:   "Main",
			Super:  "Base",
			Fields: []*VarDecl{{Name: "count", Type: types.IntType}},
			Methods: []*MethodDecl{
				{
					Name:   "get",
					Public: true,
					Return: types.IntType,
					Body: []Stmt{
						&ReturnStmt{Value: &VarRef{Name: "count"}},
					},
				},
			},
		},
	}

	expected := "import io.Console;\n" +
		"class Main extends Base {\n" +
		"  int count;\n" +
		"  public int get() {\n" +
		"    return count;\n" +
		"  }\n" +
		"}"
	assert.Equal(t, expected, program.String())
}

func TestExpressionStrings(t *testing.T) {
	sum := &BinaryExpr{Op: "+", Left: &IntLit{Value: 1}, Right: &VarRef{Name: "x"}}
	assert.Equal(t, "1 + x", sum.String())

	call := &CallExpr{Receiver: &ThisExpr{}, Method: "foo", Args: []Expr{sum, &BoolLit{Value: true}}}
	assert.Equal(t, "this.foo(1 + x, true)", call.String())

	array := &NewArrayExpr{Elem: types.IntType, Length: &IntLit{Value: 3}}
	assert.Equal(t, "new int[3]", array.String())

	literal := &ArrayLiteral{Elements: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	assert.Equal(t, "[1, 2]", literal.String())

	index := &IndexExpr{Array: &VarRef{Name: "a"}, Index: &IntLit{Value: 0}}
	assert.Equal(t, "a[0].length", (&LengthExpr{Array: index}).String())
}

func TestUnparen(t *testing.T) {
	inner := &VarRef{Name: "x"}
	wrapped := &ParenExpr{Inner: &ParenExpr{Inner: inner}}
	assert.Same(t, inner, Unparen(wrapped))
	assert.Same(t, inner, Unparen(inner))
}

func TestResolvedTypeCache(t *testing.T) {
	ref := &VarRef{Name: "x"}
	assert.Nil(t, ref.ResolvedType())
	ref.SetResolvedType(types.BooleanType)
	assert.Same(t, types.BooleanType, ref.ResolvedType())
}

func TestMethodIsVarargs(t *testing.T) {
	method := &MethodDecl{Params: []*VarDecl{
		{Name: "a", Type: types.IntType},
		{Name: "rest", Type: types.NewVarargs(types.IntType)},
	}}
	assert.True(t, method.IsVarargs())
	assert.False(t, (&MethodDecl{}).IsVarargs())
}
