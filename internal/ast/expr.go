package ast

import "jmmc/internal/types"

// Origin classifies what a name reference resolves to
type Origin int

const (
	OriginUnknown Origin = iota
	OriginLocal
	OriginParam
	OriginField
	OriginImport
	OriginClass
)

func (o Origin) String() string {
	switch o {
	case OriginLocal:
		return "local"
	case OriginParam:
		return "param"
	case OriginField:
		return "field"
	case OriginImport:
		return "import"
	case OriginClass:
		return "class"
	default:
		return "unknown"
	}
}

type IntLit struct {
	typed
	Pos   Position
	Value int32
}

type BoolLit struct {
	typed
	Pos   Position
	Value bool
}

type ThisExpr struct {
	typed
	Pos Position
}

// VarRef is a bare name; Origin is filled in by semantic annotation
type VarRef struct {
	typed
	Pos    Position
	Name   string
	Origin Origin
}

type ParenExpr struct {
	typed
	Pos   Position
	Inner Expr
}

type UnaryExpr struct {
	typed
	Pos     Position
	Op      string
	Operand Expr
}

type BinaryExpr struct {
	typed
	Pos   Position
	Op    string
	Left  Expr
	Right Expr
}

type IndexExpr struct {
	typed
	Pos   Position
	Array Expr
	Index Expr
}

type LengthExpr struct {
	typed
	Pos   Position
	Array Expr
}

// CallExpr is Receiver.Method(Args...)
type CallExpr struct {
	typed
	Pos      Position
	Receiver Expr
	Method   string
	Args     []Expr
}

type NewObjectExpr struct {
	typed
	Pos   Position
	Class string
	Args  []Expr
}

type NewArrayExpr struct {
	typed
	Pos    Position
	Elem   *types.Type
	Length Expr
}

// ArrayLiteral is an in-place array such as [1, 2, 3]
type ArrayLiteral struct {
	typed
	Pos      Position
	Elements []Expr
}

// Unparen strips any number of enclosing parentheses
func Unparen(e Expr) Expr {
	for {
		p, ok := e.(*ParenExpr)
		if !ok {
			return e
		}
		e = p.Inner
	}
}
