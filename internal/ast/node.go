package ast

import "jmmc/internal/types"

// Position locates a node in the source file
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

type Node interface {
	NodePos() Position
	String() string
}

type Expr interface {
	Node
	// ResolvedType is the type cached by semantic annotation, nil before it runs
	ResolvedType() *types.Type
	SetResolvedType(*types.Type)
	isExpr()
}

type Stmt interface {
	Node
	isStmt()
}

// typed carries the cached resolved type shared by every expression node
type typed struct {
	Type *types.Type
}

func (t *typed) ResolvedType() *types.Type      { return t.Type }
func (t *typed) SetResolvedType(tp *types.Type) { t.Type = tp }

func (p *Program) NodePos() Position    { return p.Pos }
func (i *Import) NodePos() Position     { return i.Pos }
func (c *ClassDecl) NodePos() Position  { return c.Pos }
func (v *VarDecl) NodePos() Position    { return v.Pos }
func (m *MethodDecl) NodePos() Position { return m.Pos }

func (s *BlockStmt) NodePos() Position       { return s.Pos }
func (s *IfStmt) NodePos() Position          { return s.Pos }
func (s *WhileStmt) NodePos() Position       { return s.Pos }
func (s *ExprStmt) NodePos() Position        { return s.Pos }
func (s *AssignStmt) NodePos() Position      { return s.Pos }
func (s *ArrayAssignStmt) NodePos() Position { return s.Pos }
func (s *ReturnStmt) NodePos() Position      { return s.Pos }

func (*BlockStmt) isStmt()       {}
func (*IfStmt) isStmt()          {}
func (*WhileStmt) isStmt()       {}
func (*ExprStmt) isStmt()        {}
func (*AssignStmt) isStmt()      {}
func (*ArrayAssignStmt) isStmt() {}
func (*ReturnStmt) isStmt()      {}

func (e *IntLit) NodePos() Position        { return e.Pos }
func (e *BoolLit) NodePos() Position       { return e.Pos }
func (e *ThisExpr) NodePos() Position      { return e.Pos }
func (e *VarRef) NodePos() Position        { return e.Pos }
func (e *ParenExpr) NodePos() Position     { return e.Pos }
func (e *UnaryExpr) NodePos() Position     { return e.Pos }
func (e *BinaryExpr) NodePos() Position    { return e.Pos }
func (e *IndexExpr) NodePos() Position     { return e.Pos }
func (e *LengthExpr) NodePos() Position    { return e.Pos }
func (e *CallExpr) NodePos() Position      { return e.Pos }
func (e *NewObjectExpr) NodePos() Position { return e.Pos }
func (e *NewArrayExpr) NodePos() Position  { return e.Pos }
func (e *ArrayLiteral) NodePos() Position  { return e.Pos }

func (*IntLit) isExpr()        {}
func (*BoolLit) isExpr()       {}
func (*ThisExpr) isExpr()      {}
func (*VarRef) isExpr()        {}
func (*ParenExpr) isExpr()     {}
func (*UnaryExpr) isExpr()     {}
func (*BinaryExpr) isExpr()    {}
func (*IndexExpr) isExpr()     {}
func (*LengthExpr) isExpr()    {}
func (*CallExpr) isExpr()      {}
func (*NewObjectExpr) isExpr() {}
func (*NewArrayExpr) isExpr()  {}
func (*ArrayLiteral) isExpr()  {}
