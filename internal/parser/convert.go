package parser

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/participle/v2/lexer"
	"jmmc/grammar"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
	"jmmc/internal/types"
)

// converter turns the participle parse tree into the AST, collecting the
// constructs the grammar accepts but the language does not
type converter struct {
	errs []errors.CompilerError
}

func (c *converter) fail(pos lexer.Position, format string, args ...any) {
	c.errs = append(c.errs, errors.ParseError(fmt.Sprintf(format, args...), position(pos)))
}

func (c *converter) file(f *grammar.File) *ast.Program {
	program := &ast.Program{Pos: position(f.Pos)}
	for _, imp := range f.Imports {
		program.Imports = append(program.Imports, &ast.Import{Pos: position(imp.Pos), Path: imp.Path})
	}
	program.Class = c.class(f.Class)
	return program
}

func (c *converter) class(cd *grammar.ClassDecl) *ast.ClassDecl {
	class := &ast.ClassDecl{Pos: position(cd.Pos), Name: cd.Name, Super: cd.Super}
	for _, member := range cd.Members {
		switch {
		case member.Field != nil:
			class.Fields = append(class.Fields, c.varDecl(member.Field.Pos, member.Field.Name, member.Field.Type))
		case member.Method != nil:
			class.Methods = append(class.Methods, c.method(member.Method))
		}
	}
	return class
}

func (c *converter) method(md *grammar.MethodDecl) *ast.MethodDecl {
	method := &ast.MethodDecl{
		Pos:    position(md.Pos),
		Name:   md.Name,
		Public: md.Public,
		Static: md.Static,
		Return: c.typeRef(md.Return),
	}
	for i, p := range md.Params {
		if p.Type.Varargs && i != len(md.Params)-1 {
			c.fail(p.Pos, "varargs parameter '%s' must be the last parameter", p.Name)
		}
		method.Params = append(method.Params, c.varDecl(p.Pos, p.Name, p.Type))
	}
	for _, local := range md.Locals {
		method.Locals = append(method.Locals, c.varDecl(local.Pos, local.Name, local.Type))
	}
	for _, stmt := range md.Body {
		method.Body = append(method.Body, c.stmt(stmt))
	}
	return method
}

func (c *converter) varDecl(pos lexer.Position, name string, tr *grammar.TypeRef) *ast.VarDecl {
	return &ast.VarDecl{Pos: position(pos), Name: name, Type: c.typeRef(tr)}
}

func (c *converter) typeRef(tr *grammar.TypeRef) *types.Type {
	base := namedType(tr.Name)
	switch {
	case tr.Varargs:
		return types.NewVarargs(base)
	case tr.Array:
		return types.NewArray(base)
	}
	return base
}

func namedType(name string) *types.Type {
	switch name {
	case "int":
		return types.IntType
	case "boolean":
		return types.BooleanType
	case "void":
		return types.VoidType
	case "String":
		return types.StringType
	}
	return types.NewClass(name)
}

func (c *converter) stmt(s *grammar.Statement) ast.Stmt {
	switch {
	case s.Block != nil:
		block := &ast.BlockStmt{Pos: position(s.Block.Pos)}
		for _, inner := range s.Block.Stmts {
			block.Stmts = append(block.Stmts, c.stmt(inner))
		}
		return block
	case s.If != nil:
		stmt := &ast.IfStmt{Pos: position(s.If.Pos), Cond: c.expr(s.If.Cond), Then: c.stmt(s.If.Then)}
		if s.If.Else != nil {
			stmt.Else = c.stmt(s.If.Else)
		}
		return stmt
	case s.While != nil:
		return &ast.WhileStmt{Pos: position(s.While.Pos), Cond: c.expr(s.While.Cond), Body: c.stmt(s.While.Body)}
	case s.Return != nil:
		stmt := &ast.ReturnStmt{Pos: position(s.Return.Pos)}
		if s.Return.Value != nil {
			stmt.Value = c.expr(s.Return.Value)
		}
		return stmt
	default:
		return c.simple(s.Simple)
	}
}

func (c *converter) simple(s *grammar.SimpleStmt) ast.Stmt {
	target := c.expr(s.Target)
	if s.Value == nil {
		return &ast.ExprStmt{Pos: position(s.Pos), Expr: target}
	}
	value := c.expr(s.Value)
	switch t := target.(type) {
	case *ast.VarRef:
		return &ast.AssignStmt{Pos: position(s.Pos), Target: t, Value: value}
	case *ast.IndexExpr:
		if ref, ok := t.Array.(*ast.VarRef); ok {
			return &ast.ArrayAssignStmt{Pos: position(s.Pos), Target: ref, Index: t.Index, Value: value}
		}
	}
	c.fail(s.Pos, "cannot assign to '%s'", target)
	return &ast.ExprStmt{Pos: position(s.Pos), Expr: target}
}

func (c *converter) expr(e *grammar.Expr) ast.Expr {
	left := c.comparison(e.Left)
	for _, right := range e.Right {
		left = &ast.BinaryExpr{Pos: position(e.Pos), Op: "&&", Left: left, Right: c.comparison(right)}
	}
	return left
}

func (c *converter) comparison(e *grammar.Comparison) ast.Expr {
	left := c.additive(e.Left)
	if e.Op == "" {
		return left
	}
	return &ast.BinaryExpr{Pos: position(e.Pos), Op: e.Op, Left: left, Right: c.additive(e.Right)}
}

func (c *converter) additive(e *grammar.Additive) ast.Expr {
	left := c.multiplicative(e.Left)
	for _, op := range e.Rest {
		left = &ast.BinaryExpr{Pos: position(op.Pos), Op: op.Op, Left: left, Right: c.multiplicative(op.Right)}
	}
	return left
}

func (c *converter) multiplicative(e *grammar.Multiplicative) ast.Expr {
	left := c.unary(e.Left)
	for _, op := range e.Rest {
		left = &ast.BinaryExpr{Pos: position(op.Pos), Op: op.Op, Left: left, Right: c.unary(op.Right)}
	}
	return left
}

func (c *converter) unary(e *grammar.Unary) ast.Expr {
	if e.Not != nil {
		return &ast.UnaryExpr{Pos: position(e.Pos), Op: "!", Operand: c.unary(e.Not)}
	}
	return c.postfix(e.Postfix)
}

func (c *converter) postfix(e *grammar.Postfix) ast.Expr {
	current := c.primary(e.Primary)
	for _, op := range e.Ops {
		pos := position(op.Pos)
		switch {
		case op.Index != nil:
			current = &ast.IndexExpr{Pos: pos, Array: current, Index: c.expr(op.Index)}
		case op.Call != nil:
			current = &ast.CallExpr{Pos: pos, Receiver: current, Method: op.Name, Args: c.exprs(op.Call.Args)}
		case op.Name == "length":
			current = &ast.LengthExpr{Pos: pos, Array: current}
		default:
			c.fail(op.Pos, "field access '.%s' is only supported on this class through bare names", op.Name)
		}
	}
	return current
}

func (c *converter) primary(p *grammar.Primary) ast.Expr {
	pos := position(p.Pos)
	switch {
	case p.Number != nil:
		value, err := strconv.ParseInt(*p.Number, 10, 32)
		if err != nil {
			c.fail(p.Pos, "integer literal %s out of range", *p.Number)
		}
		return &ast.IntLit{Pos: pos, Value: int32(value)}
	case p.True:
		return &ast.BoolLit{Pos: pos, Value: true}
	case p.False:
		return &ast.BoolLit{Pos: pos, Value: false}
	case p.This:
		return &ast.ThisExpr{Pos: pos}
	case p.NewArray != nil:
		return &ast.NewArrayExpr{Pos: pos, Elem: namedType(p.NewArray.Elem), Length: c.expr(p.NewArray.Length)}
	case p.NewObject != nil:
		return &ast.NewObjectExpr{Pos: pos, Class: p.NewObject.Class, Args: c.exprs(p.NewObject.Args)}
	case p.Array != nil:
		return &ast.ArrayLiteral{Pos: pos, Elements: c.exprs(p.Array.Elements)}
	case p.Ident != nil:
		return &ast.VarRef{Pos: pos, Name: *p.Ident}
	default:
		return &ast.ParenExpr{Pos: pos, Inner: c.expr(p.Parens)}
	}
}

func (c *converter) exprs(list []*grammar.Expr) []ast.Expr {
	out := make([]ast.Expr, 0, len(list))
	for _, e := range list {
		out = append(out, c.expr(e))
	}
	return out
}
