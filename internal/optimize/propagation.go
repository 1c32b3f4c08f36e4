package optimize

import (
	"jmmc/internal/ast"
)

// ConstantPropagation replaces reads of a local with its value when the local is
// assigned exactly once in the method, by a top-level statement, with a literal.
// Only reads in the statements after that assignment are replaced.
type ConstantPropagation struct{}

func (cp *ConstantPropagation) Name() string {
	return "ConstantPropagation"
}

func (cp *ConstantPropagation) Description() string {
	return "Substitutes literal values of single-assignment locals"
}

func (cp *ConstantPropagation) Apply(program *ast.Program) (*ast.Program, bool) {
	changed := false
	out := rewriteMethods(program, func(m *ast.MethodDecl) []ast.Stmt {
		body, methodChanged := cp.propagate(m.Body)
		changed = changed || methodChanged
		return body
	})
	return out, changed
}

func (cp *ConstantPropagation) propagate(body []ast.Stmt) ([]ast.Stmt, bool) {
	counts := make(map[string]int)
	for _, stmt := range body {
		countAssignments(stmt, counts)
	}

	changed := false
	known := make(map[string]ast.Expr)
	out := make([]ast.Stmt, len(body))
	for i, stmt := range body {
		out[i] = rewriteStmt(stmt, func(e ast.Expr) ast.Expr {
			ref, ok := e.(*ast.VarRef)
			if !ok || ref.Origin != ast.OriginLocal {
				return e
			}
			value, ok := known[ref.Name]
			if !ok {
				return e
			}
			changed = true
			return rewriteExpr(value, func(e ast.Expr) ast.Expr { return e })
		})

		assign, ok := stmt.(*ast.AssignStmt)
		if !ok || assign.Target.Origin != ast.OriginLocal || counts[assign.Target.Name] != 1 {
			continue
		}
		switch assign.Value.(type) {
		case *ast.IntLit, *ast.BoolLit:
			known[assign.Target.Name] = assign.Value
		}
	}
	return out, changed
}

func countAssignments(stmt ast.Stmt, counts map[string]int) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			countAssignments(inner, counts)
		}
	case *ast.IfStmt:
		countAssignments(s.Then, counts)
		if s.Else != nil {
			countAssignments(s.Else, counts)
		}
	case *ast.WhileStmt:
		countAssignments(s.Body, counts)
	case *ast.AssignStmt:
		counts[s.Target.Name]++
	}
}
