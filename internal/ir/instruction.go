package ir

import (
	"fmt"
	"strings"

	"jmmc/internal/types"
)

// Operand is a value an instruction reads or writes. The set of operand kinds is
// closed; switches over it must handle every kind below.
type Operand interface {
	Type() *types.Type
	String() string
	isOperand()
}

type IntegerLiteral struct {
	Value int32
}

type BooleanLiteral struct {
	Value bool
}

// Variable is a named local, parameter or temporary
type Variable struct {
	Name    string
	VarType *types.Type
}

// ArrayElement reads or writes Array[Index]; Elem is the element type
type ArrayElement struct {
	Array string
	Index Operand
	Elem  *types.Type
}

// This is the receiver of an instance method
type This struct {
	Class string
}

// ClassRef is the qualifier of a static call or an allocation
type ClassRef struct {
	Name string
}

func (*IntegerLiteral) isOperand() {}
func (*BooleanLiteral) isOperand() {}
func (*Variable) isOperand()       {}
func (*ArrayElement) isOperand()   {}
func (*This) isOperand()           {}
func (*ClassRef) isOperand()       {}

func (o *IntegerLiteral) Type() *types.Type { return types.IntType }
func (o *BooleanLiteral) Type() *types.Type { return types.BooleanType }
func (o *Variable) Type() *types.Type       { return o.VarType }
func (o *ArrayElement) Type() *types.Type   { return o.Elem }
func (o *This) Type() *types.Type           { return types.NewClass(o.Class) }
func (o *ClassRef) Type() *types.Type       { return types.NewClass(o.Name) }

func (o *IntegerLiteral) String() string { return fmt.Sprintf("%d.i32", o.Value) }

func (o *BooleanLiteral) String() string {
	if o.Value {
		return "1.bool"
	}
	return "0.bool"
}

func (o *Variable) String() string { return o.Name + o.VarType.Suffix() }
func (o *ArrayElement) String() string {
	return fmt.Sprintf("%s[%s]%s", o.Array, o.Index, o.Elem.Suffix())
}
func (o *This) String() string     { return "this." + o.Class }
func (o *ClassRef) String() string { return o.Name }

type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpLT
	OpLE
	OpGT
	OpGE
	OpEQ
	OpNE
)

var binOpSymbols = map[BinOp]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/",
	OpLT: "<", OpLE: "<=", OpGT: ">", OpGE: ">=", OpEQ: "==", OpNE: "!=",
}

func (op BinOp) String() string {
	if s, ok := binOpSymbols[op]; ok {
		return s
	}
	return fmt.Sprintf("BinOp(%d)", int(op))
}

func (op BinOp) IsComparison() bool {
	return op >= OpLT && op <= OpNE
}

// Condition maps a comparison operator to the branch condition it tests
func (op BinOp) Condition() CondKind {
	return CondKind(op-OpLT) + CondLT
}

// ParseBinOp maps a source operator to a BinOp
func ParseBinOp(symbol string) (BinOp, bool) {
	for op, s := range binOpSymbols {
		if s == symbol {
			return op, true
		}
	}
	return 0, false
}

type UnOp int

const (
	OpNot UnOp = iota
)

func (op UnOp) String() string {
	if op == OpNot {
		return "!"
	}
	return fmt.Sprintf("UnOp(%d)", int(op))
}

// CondKind is what a CondBranch tests. CondTrue and CondFalse take one operand,
// the comparisons take two.
type CondKind int

const (
	CondTrue CondKind = iota
	CondFalse
	CondLT
	CondLE
	CondGT
	CondGE
	CondEQ
	CondNE
)

func (c CondKind) Arity() int {
	if c == CondTrue || c == CondFalse {
		return 1
	}
	return 2
}

func (c CondKind) Negate() CondKind {
	switch c {
	case CondTrue:
		return CondFalse
	case CondFalse:
		return CondTrue
	case CondLT:
		return CondGE
	case CondLE:
		return CondGT
	case CondGT:
		return CondLE
	case CondGE:
		return CondLT
	case CondEQ:
		return CondNE
	default:
		return CondEQ
	}
}

func (c CondKind) String() string {
	switch c {
	case CondTrue:
		return "true"
	case CondFalse:
		return "false"
	}
	return (BinOp(c-CondLT) + OpLT).String()
}

type CallKind int

const (
	CallNew CallKind = iota
	CallNewArray
	CallArrayLength
	CallInvokeSpecial
	CallInvokeStatic
	CallInvokeVirtual
)

func (k CallKind) String() string {
	switch k {
	case CallNew:
		return "new"
	case CallNewArray:
		return "new array"
	case CallArrayLength:
		return "arraylength"
	case CallInvokeSpecial:
		return "invokespecial"
	case CallInvokeStatic:
		return "invokestatic"
	case CallInvokeVirtual:
		return "invokevirtual"
	}
	return fmt.Sprintf("CallKind(%d)", int(k))
}

// Instruction is one IR statement. The set of instruction kinds is closed.
type Instruction interface {
	String() string
	isInstruction()
}

// Assign writes the value of RHS into Dest, a *Variable or an *ArrayElement
type Assign struct {
	Dest Operand
	RHS  Instruction
}

type SingleOp struct {
	Operand Operand
}

type BinaryOp struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

type UnaryOp struct {
	Op      UnOp
	Operand Operand
}

// Call covers allocation, array length and the three invoke forms.
// Caller is nil for CallNewArray.
type Call struct {
	Kind   CallKind
	Caller Operand
	Method string
	Args   []Operand
	Return *types.Type
}

type GetField struct {
	Object Operand
	Field  *Variable
}

type PutField struct {
	Object Operand
	Field  *Variable
	Value  Operand
}

// Return has a nil Operand in void methods
type Return struct {
	Type    *types.Type
	Operand Operand
}

type Goto struct {
	Label string
}

type CondBranch struct {
	Cond     CondKind
	Operands []Operand
	Label    string
}

func (*Assign) isInstruction()     {}
func (*SingleOp) isInstruction()   {}
func (*BinaryOp) isInstruction()   {}
func (*UnaryOp) isInstruction()    {}
func (*Call) isInstruction()       {}
func (*GetField) isInstruction()   {}
func (*PutField) isInstruction()   {}
func (*Return) isInstruction()     {}
func (*Goto) isInstruction()       {}
func (*CondBranch) isInstruction() {}

// ResultType is the type of the value inst produces, void for none
func ResultType(inst Instruction) *types.Type {
	switch i := inst.(type) {
	case *SingleOp:
		return i.Operand.Type()
	case *BinaryOp:
		if i.Op.IsComparison() {
			return types.BooleanType
		}
		return types.IntType
	case *UnaryOp:
		return types.BooleanType
	case *Call:
		if i.Return == nil {
			return types.VoidType
		}
		return i.Return
	case *GetField:
		return i.Field.VarType
	case *Assign:
		return i.Dest.Type()
	}
	return types.VoidType
}

func (i *Assign) String() string {
	return fmt.Sprintf("%s :=%s %s", i.Dest, i.Dest.Type().Suffix(), i.RHS)
}

func (i *SingleOp) String() string { return i.Operand.String() }

func (i *BinaryOp) String() string {
	return fmt.Sprintf("%s %s%s %s", i.Left, i.Op, ResultType(i).Suffix(), i.Right)
}

func (i *UnaryOp) String() string {
	return fmt.Sprintf("%s.bool %s", i.Op, i.Operand)
}

func (i *Call) String() string {
	parts := make([]string, 0, len(i.Args)+2)
	switch i.Kind {
	case CallNewArray:
		parts = append(parts, "array")
	default:
		parts = append(parts, i.Caller.String())
	}
	if i.Kind == CallInvokeSpecial || i.Kind == CallInvokeStatic || i.Kind == CallInvokeVirtual {
		parts = append(parts, fmt.Sprintf("%q", i.Method))
	}
	for _, arg := range i.Args {
		parts = append(parts, arg.String())
	}
	name := i.Kind.String()
	if i.Kind == CallNewArray {
		name = "new"
	}
	return fmt.Sprintf("%s(%s)%s", name, strings.Join(parts, ", "), ResultType(i).Suffix())
}

func (i *GetField) String() string {
	return fmt.Sprintf("getfield(%s, %s)%s", i.Object, i.Field, i.Field.VarType.Suffix())
}

func (i *PutField) String() string {
	return fmt.Sprintf("putfield(%s, %s, %s).V", i.Object, i.Field, i.Value)
}

func (i *Return) String() string {
	if i.Operand == nil {
		return "ret.V"
	}
	return fmt.Sprintf("ret%s %s", i.Type.Suffix(), i.Operand)
}

func (i *Goto) String() string { return "goto " + i.Label }

func (i *CondBranch) String() string {
	switch {
	case i.Cond == CondTrue && len(i.Operands) == 1:
		return fmt.Sprintf("if (%s) goto %s", i.Operands[0], i.Label)
	case i.Cond == CondFalse && len(i.Operands) == 1:
		return fmt.Sprintf("if (!.bool %s) goto %s", i.Operands[0], i.Label)
	case len(i.Operands) == 2:
		return fmt.Sprintf("if (%s %s.bool %s) goto %s", i.Operands[0], i.Cond, i.Operands[1], i.Label)
	}
	return fmt.Sprintf("if (<malformed %s>) goto %s", i.Cond, i.Label)
}
