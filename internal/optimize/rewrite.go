package optimize

import "jmmc/internal/ast"

// exprRewriter replaces an already-copied expression, or returns it unchanged
type exprRewriter func(ast.Expr) ast.Expr

// rewriteExpr copies e bottom-up, applying fn to every copied node.
// Cached resolved types travel with the copies.
func rewriteExpr(e ast.Expr, fn exprRewriter) ast.Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *ast.IntLit:
		cp := *n
		return fn(&cp)
	case *ast.BoolLit:
		cp := *n
		return fn(&cp)
	case *ast.ThisExpr:
		cp := *n
		return fn(&cp)
	case *ast.VarRef:
		cp := *n
		return fn(&cp)
	case *ast.ParenExpr:
		cp := *n
		cp.Inner = rewriteExpr(n.Inner, fn)
		return fn(&cp)
	case *ast.UnaryExpr:
		cp := *n
		cp.Operand = rewriteExpr(n.Operand, fn)
		return fn(&cp)
	case *ast.BinaryExpr:
		cp := *n
		cp.Left = rewriteExpr(n.Left, fn)
		cp.Right = rewriteExpr(n.Right, fn)
		return fn(&cp)
	case *ast.IndexExpr:
		cp := *n
		cp.Array = rewriteExpr(n.Array, fn)
		cp.Index = rewriteExpr(n.Index, fn)
		return fn(&cp)
	case *ast.LengthExpr:
		cp := *n
		cp.Array = rewriteExpr(n.Array, fn)
		return fn(&cp)
	case *ast.CallExpr:
		cp := *n
		cp.Receiver = rewriteExpr(n.Receiver, fn)
		cp.Args = rewriteExprs(n.Args, fn)
		return fn(&cp)
	case *ast.NewObjectExpr:
		cp := *n
		cp.Args = rewriteExprs(n.Args, fn)
		return fn(&cp)
	case *ast.NewArrayExpr:
		cp := *n
		cp.Length = rewriteExpr(n.Length, fn)
		return fn(&cp)
	case *ast.ArrayLiteral:
		cp := *n
		cp.Elements = rewriteExprs(n.Elements, fn)
		return fn(&cp)
	}
	return e
}

func rewriteExprs(list []ast.Expr, fn exprRewriter) []ast.Expr {
	if list == nil {
		return nil
	}
	out := make([]ast.Expr, len(list))
	for i, e := range list {
		out[i] = rewriteExpr(e, fn)
	}
	return out
}

// rewriteStmt copies s, rewriting every expression it reads. Assignment
// targets are copied but never passed to fn.
func rewriteStmt(s ast.Stmt, fn exprRewriter) ast.Stmt {
	switch n := s.(type) {
	case *ast.BlockStmt:
		cp := *n
		cp.Stmts = rewriteStmts(n.Stmts, fn)
		return &cp
	case *ast.IfStmt:
		cp := *n
		cp.Cond = rewriteExpr(n.Cond, fn)
		cp.Then = rewriteStmt(n.Then, fn)
		if n.Else != nil {
			cp.Else = rewriteStmt(n.Else, fn)
		}
		return &cp
	case *ast.WhileStmt:
		cp := *n
		cp.Cond = rewriteExpr(n.Cond, fn)
		cp.Body = rewriteStmt(n.Body, fn)
		return &cp
	case *ast.ExprStmt:
		cp := *n
		cp.Expr = rewriteExpr(n.Expr, fn)
		return &cp
	case *ast.AssignStmt:
		cp := *n
		target := *n.Target
		cp.Target = &target
		cp.Value = rewriteExpr(n.Value, fn)
		return &cp
	case *ast.ArrayAssignStmt:
		cp := *n
		target := *n.Target
		cp.Target = &target
		cp.Index = rewriteExpr(n.Index, fn)
		cp.Value = rewriteExpr(n.Value, fn)
		return &cp
	case *ast.ReturnStmt:
		cp := *n
		cp.Value = rewriteExpr(n.Value, fn)
		return &cp
	}
	return s
}

func rewriteStmts(list []ast.Stmt, fn exprRewriter) []ast.Stmt {
	if list == nil {
		return nil
	}
	out := make([]ast.Stmt, len(list))
	for i, s := range list {
		out[i] = rewriteStmt(s, fn)
	}
	return out
}

// rewriteMethods copies the program with each method body produced by fn
func rewriteMethods(program *ast.Program, fn func(*ast.MethodDecl) []ast.Stmt) *ast.Program {
	out := *program
	class := *program.Class
	class.Methods = make([]*ast.MethodDecl, len(program.Class.Methods))
	for i, m := range program.Class.Methods {
		method := *m
		method.Body = fn(m)
		class.Methods[i] = &method
	}
	out.Class = &class
	return &out
}
