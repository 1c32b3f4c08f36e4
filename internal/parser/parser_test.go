package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
	"jmmc/internal/types"
)

func TestParseClassShape(t *testing.T) {
	program, err := ParseFile("../../examples/Simple.jmm")
	require.NoError(t, err)

	require.Len(t, program.Imports, 1)
	assert.Equal(t, []string{"io"}, program.Imports[0].Path)

	class := program.Class
	assert.Equal(t, "Simple", class.Name)
	require.Len(t, class.Fields, 1)
	assert.True(t, class.Fields[0].Type.IsInt())
	require.Len(t, class.Methods, 2)

	add := class.Methods[0]
	assert.Equal(t, "add", add.Name)
	assert.True(t, types.IntType.Equal(add.Return))
	require.Len(t, add.Params, 2)
	assert.Equal(t, "a", add.Params[0].Name)
	require.Len(t, add.Body, 3)

	assign, ok := add.Body[0].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "c", assign.Target.Name)
	sum, ok := assign.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", sum.Op)

	main := class.Methods[1]
	assert.True(t, main.Static)
	assert.Equal(t, "String[]", main.Params[0].Type.String())
	assert.Equal(t, main.Pos.Line, main.Params[0].Pos.Line)
}

func TestParseExpressions(t *testing.T) {
	source := `class A {
    public boolean f(int a, int... rest) {
        return a < 3 + 4 * 2 && !(rest.length == 0);
    }
}`
	program, err := ParseSource("A.jmm", source)
	require.NoError(t, err)

	f := program.Class.Methods[0]
	assert.True(t, f.IsVarargs())

	ret := f.Body[0].(*ast.ReturnStmt)
	and, ok := ret.Value.(*ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Op)
	assert.Equal(t, "a < 3 + 4 * 2 && !(rest.length == 0)", and.String())

	less := and.Left.(*ast.BinaryExpr)
	assert.Equal(t, "<", less.Op)
	plus := less.Right.(*ast.BinaryExpr)
	assert.Equal(t, "+", plus.Op)
	_, isMul := plus.Right.(*ast.BinaryExpr)
	assert.True(t, isMul)

	not := and.Right.(*ast.UnaryExpr)
	inner := ast.Unparen(not.Operand).(*ast.BinaryExpr)
	_, isLength := inner.Left.(*ast.LengthExpr)
	assert.True(t, isLength)
}

func TestParseArrayAndCallStatements(t *testing.T) {
	source := `import io;
class A {
    public void f() {
        int[] a;
        a = [1, 2, 3];
        a[1] = new int[2].length;
        io.println(a[1]);
        new A().f();
    }
}`
	program, err := ParseSource("A.jmm", source)
	require.NoError(t, err)

	body := program.Class.Methods[0].Body
	require.Len(t, body, 4)

	literal := body[0].(*ast.AssignStmt).Value.(*ast.ArrayLiteral)
	assert.Len(t, literal.Elements, 3)

	store := body[1].(*ast.ArrayAssignStmt)
	assert.Equal(t, "a", store.Target.Name)
	assert.Equal(t, "1", store.Index.String())
	_, ok := store.Value.(*ast.LengthExpr)
	assert.True(t, ok)

	call := body[2].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	assert.Equal(t, "println", call.Method)
	assert.Equal(t, "io", call.Receiver.String())
	_, ok = call.Args[0].(*ast.IndexExpr)
	assert.True(t, ok)

	chained := body[3].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	_, ok = chained.Receiver.(*ast.NewObjectExpr)
	assert.True(t, ok)
}

func TestParseIfElseWhile(t *testing.T) {
	source := `class A {
    public int f(int n) {
        while (0 < n) {
            if (n < 5) n = n - 1; else { n = n - 2; }
        }
        return n;
    }
}`
	program, err := ParseSource("A.jmm", source)
	require.NoError(t, err)

	loop := program.Class.Methods[0].Body[0].(*ast.WhileStmt)
	block := loop.Body.(*ast.BlockStmt)
	branch := block.Stmts[0].(*ast.IfStmt)
	_, ok := branch.Then.(*ast.AssignStmt)
	assert.True(t, ok)
	_, ok = branch.Else.(*ast.BlockStmt)
	assert.True(t, ok)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"syntax", "class A {\n  int x\n}", ""},
		{"bad target", "class A { public void f() { this = 1; } }", "cannot assign to 'this'"},
		{"overflow", "class A { public int f() { return 3000000000; } }", "out of range"},
		{"varargs position", "class A { public void f(int... a, int b) { } }", "must be the last parameter"},
		{"field access", "class A { public int f() { return this.x; } }", "field access"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource("A.jmm", tt.source)
			require.Error(t, err)

			ce, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorParse, ce.Code)
			assert.Equal(t, "A.jmm", ce.Position.Filename)
			assert.Positive(t, ce.Position.Line)
			assert.Contains(t, ce.Message, tt.message)
		})
	}
}
