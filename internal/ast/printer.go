package ast

import (
	"fmt"
	"strings"
)

func (p *Program) String() string {
	var b strings.Builder
	for _, imp := range p.Imports {
		b.WriteString(imp.String())
		b.WriteString("\n")
	}
	if p.Class != nil {
		b.WriteString(p.Class.String())
	}
	return b.String()
}

func (i *Import) String() string {
	return fmt.Sprintf("import %s;", strings.Join(i.Path, "."))
}

func (c *ClassDecl) String() string {
	var b strings.Builder
	b.WriteString("class " + c.Name)
	if c.Super != "" {
		b.WriteString(" extends " + c.Super)
	}
	b.WriteString(" {\n")
	for _, field := range c.Fields {
		b.WriteString("  " + field.String() + ";\n")
	}
	for _, method := range c.Methods {
		b.WriteString("  " + strings.ReplaceAll(method.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (v *VarDecl) String() string {
	return fmt.Sprintf("%s %s", v.Type, v.Name)
}

func (m *MethodDecl) String() string {
	var b strings.Builder
	if m.Public {
		b.WriteString("public ")
	}
	if m.Static {
		b.WriteString("static ")
	}
	params := make([]string, len(m.Params))
	for i, param := range m.Params {
		params[i] = param.String()
	}
	b.WriteString(fmt.Sprintf("%s %s(%s) {\n", m.Return, m.Name, strings.Join(params, ", ")))
	for _, local := range m.Locals {
		b.WriteString("  " + local.String() + ";\n")
	}
	for _, stmt := range m.Body {
		b.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (s *BlockStmt) String() string {
	var b strings.Builder
	b.WriteString("{\n")
	for _, stmt := range s.Stmts {
		b.WriteString("  " + strings.ReplaceAll(stmt.String(), "\n", "\n  ") + "\n")
	}
	b.WriteString("}")
	return b.String()
}

func (s *IfStmt) String() string {
	out := fmt.Sprintf("if (%s) %s", s.Cond, s.Then)
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

func (s *WhileStmt) String() string {
	return fmt.Sprintf("while (%s) %s", s.Cond, s.Body)
}

func (s *ExprStmt) String() string {
	return s.Expr.String() + ";"
}

func (s *AssignStmt) String() string {
	return fmt.Sprintf("%s = %s;", s.Target, s.Value)
}

func (s *ArrayAssignStmt) String() string {
	return fmt.Sprintf("%s[%s] = %s;", s.Target, s.Index, s.Value)
}

func (s *ReturnStmt) String() string {
	if s.Value == nil {
		return "return;"
	}
	return fmt.Sprintf("return %s;", s.Value)
}

func (e *IntLit) String() string { return fmt.Sprintf("%d", e.Value) }

func (e *BoolLit) String() string { return fmt.Sprintf("%t", e.Value) }

func (e *ThisExpr) String() string { return "this" }

func (e *VarRef) String() string { return e.Name }

func (e *ParenExpr) String() string { return "(" + e.Inner.String() + ")" }

func (e *UnaryExpr) String() string { return e.Op + e.Operand.String() }

func (e *BinaryExpr) String() string {
	return fmt.Sprintf("%s %s %s", e.Left, e.Op, e.Right)
}

func (e *IndexExpr) String() string {
	return fmt.Sprintf("%s[%s]", e.Array, e.Index)
}

func (e *LengthExpr) String() string { return e.Array.String() + ".length" }

func (e *CallExpr) String() string {
	return fmt.Sprintf("%s.%s(%s)", e.Receiver, e.Method, joinExprs(e.Args))
}

func (e *NewObjectExpr) String() string {
	return fmt.Sprintf("new %s(%s)", e.Class, joinExprs(e.Args))
}

func (e *NewArrayExpr) String() string {
	return fmt.Sprintf("new %s[%s]", e.Elem, e.Length)
}

func (e *ArrayLiteral) String() string {
	return "[" + joinExprs(e.Elements) + "]"
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
