package ast

type BlockStmt struct {
	Pos   Position
	Stmts []Stmt
}

// IfStmt has an optional Else branch
type IfStmt struct {
	Pos  Position
	Cond Expr
	Then Stmt
	Else Stmt
}

type WhileStmt struct {
	Pos  Position
	Cond Expr
	Body Stmt
}

// ExprStmt evaluates an expression for its side effects and discards the value
type ExprStmt struct {
	Pos  Position
	Expr Expr
}

type AssignStmt struct {
	Pos    Position
	Target *VarRef
	Value  Expr
}

// ArrayAssignStmt stores Value into Target[Index]
type ArrayAssignStmt struct {
	Pos    Position
	Target *VarRef
	Index  Expr
	Value  Expr
}

// ReturnStmt has a nil Value in void methods
type ReturnStmt struct {
	Pos   Position
	Value Expr
}
