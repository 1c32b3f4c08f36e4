package ast

import "jmmc/internal/types"

// Program is one compilation unit: its imports and the single class it declares
type Program struct {
	Pos     Position
	Imports []*Import
	Class   *ClassDecl
}

// Import is a dotted import path such as io.Console
type Import struct {
	Pos  Position
	Path []string
}

type ClassDecl struct {
	Pos     Position
	Name    string
	Super   string // empty when the class has no extends clause
	Fields  []*VarDecl
	Methods []*MethodDecl
}

// VarDecl declares a field, parameter or local variable
type VarDecl struct {
	Pos  Position
	Name string
	Type *types.Type
}

type MethodDecl struct {
	Pos    Position
	Name   string
	Public bool
	Static bool
	Params []*VarDecl
	Return *types.Type
	Locals []*VarDecl
	Body   []Stmt
}

// IsVarargs reports whether the final parameter is declared as T...
func (m *MethodDecl) IsVarargs() bool {
	if len(m.Params) == 0 {
		return false
	}
	return m.Params[len(m.Params)-1].Type.Varargs
}
