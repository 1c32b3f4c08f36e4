package optimize

import (
	"jmmc/internal/ast"
	"jmmc/internal/types"
)

// ConstantFolding evaluates operators whose operands are literals
type ConstantFolding struct{}

func (cf *ConstantFolding) Name() string {
	return "ConstantFolding"
}

func (cf *ConstantFolding) Description() string {
	return "Evaluates arithmetic, comparisons and boolean operators over literals"
}

func (cf *ConstantFolding) Apply(program *ast.Program) (*ast.Program, bool) {
	changed := false
	fold := func(e ast.Expr) ast.Expr {
		folded := cf.fold(e)
		if folded != e {
			changed = true
		}
		return folded
	}
	out := rewriteMethods(program, func(m *ast.MethodDecl) []ast.Stmt {
		return rewriteStmts(m.Body, fold)
	})
	return out, changed
}

func (cf *ConstantFolding) fold(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.ParenExpr:
		switch n.Inner.(type) {
		case *ast.IntLit, *ast.BoolLit:
			return n.Inner
		}
	case *ast.UnaryExpr:
		if operand, ok := n.Operand.(*ast.BoolLit); ok && n.Op == "!" {
			return boolLit(n.Pos, !operand.Value)
		}
	case *ast.BinaryExpr:
		return cf.foldBinary(n)
	}
	return e
}

func (cf *ConstantFolding) foldBinary(n *ast.BinaryExpr) ast.Expr {
	if n.Op == "&&" {
		// a false left operand short-circuits, so the right side may be dropped
		if left, ok := n.Left.(*ast.BoolLit); ok {
			if !left.Value {
				return boolLit(n.Pos, false)
			}
			return n.Right
		}
		return n
	}

	left, lok := n.Left.(*ast.IntLit)
	right, rok := n.Right.(*ast.IntLit)
	if !lok || !rok {
		if lb, ok := n.Left.(*ast.BoolLit); ok {
			if rb, ok := n.Right.(*ast.BoolLit); ok {
				switch n.Op {
				case "==":
					return boolLit(n.Pos, lb.Value == rb.Value)
				case "!=":
					return boolLit(n.Pos, lb.Value != rb.Value)
				}
			}
		}
		return n
	}

	l, r := left.Value, right.Value
	switch n.Op {
	case "+":
		return intLit(n.Pos, l+r)
	case "-":
		return intLit(n.Pos, l-r)
	case "*":
		return intLit(n.Pos, l*r)
	case "/":
		// division by zero and MinInt32 / -1 are left to the VM
		if r == 0 || (r == -1 && l == -1<<31) {
			return n
		}
		return intLit(n.Pos, l/r)
	case "<":
		return boolLit(n.Pos, l < r)
	case "<=":
		return boolLit(n.Pos, l <= r)
	case ">":
		return boolLit(n.Pos, l > r)
	case ">=":
		return boolLit(n.Pos, l >= r)
	case "==":
		return boolLit(n.Pos, l == r)
	case "!=":
		return boolLit(n.Pos, l != r)
	}
	return n
}

func intLit(pos ast.Position, v int32) *ast.IntLit {
	lit := &ast.IntLit{Pos: pos, Value: v}
	lit.SetResolvedType(types.IntType)
	return lit
}

func boolLit(pos ast.Position, v bool) *ast.BoolLit {
	lit := &ast.BoolLit{Pos: pos, Value: v}
	lit.SetResolvedType(types.BooleanType)
	return lit
}
