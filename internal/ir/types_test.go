package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jmmc/internal/types"
)

func TestVarTableSequentialRegisters(t *testing.T) {
	vt := NewVarTable()
	assert.Equal(t, -1, vt.MaxRegister())

	vt.Add("this", types.NewClass("A"))
	vt.Add("a", types.IntType)
	again := vt.Add("this", types.IntType)
	vt.Add("b", types.BooleanType)

	assert.Equal(t, 0, again.Register)
	assert.Equal(t, "A", again.Type.Name, "re-adding keeps the first descriptor")
	assert.Equal(t, []string{"this", "a", "b"}, vt.Names())
	assert.Equal(t, 3, vt.Len())
	assert.Equal(t, 2, vt.MaxRegister())

	d, ok := vt.Get("b")
	require.True(t, ok)
	assert.Equal(t, 2, d.Register)
	_, ok = vt.Get("missing")
	assert.False(t, ok)
}

func TestLabelTable(t *testing.T) {
	lt := make(LabelTable)
	lt.Add(4, "if_end_1")
	lt.Add(0, "while_cond_0")
	lt.Add(4, "while_end_0")

	assert.Equal(t, []int{0, 4}, lt.Indices())
	assert.Equal(t, []string{"if_end_1", "while_end_0"}, lt.At(4))
	assert.Empty(t, lt.At(2))
	assert.Equal(t, map[string]int{"if_end_1": 4, "while_end_0": 4, "while_cond_0": 0}, lt.Targets())
}

func TestCodePendingLabels(t *testing.T) {
	inner := NewCode()
	inner.Mark("start")
	inner.Emit(&Goto{Label: "start"})
	inner.Mark("end")

	code := NewCode()
	code.Emit(&Return{Type: types.VoidType})
	code.Append(inner)
	assert.Equal(t, []string{"end"}, code.Pending, "trailing labels stay pending across Append")

	code.Emit(&Return{Type: types.VoidType})
	assert.Empty(t, code.Pending)
	assert.Equal(t, 3, code.Len())
	assert.Equal(t, []string{"start"}, code.Labels.At(1))
	assert.Equal(t, []string{"end"}, code.Labels.At(2))
	assert.IsType(t, &Return{}, code.Last())
	assert.Nil(t, NewCode().Last())
}

func TestNamerSharesOneCounter(t *testing.T) {
	n := NewNamer()
	assert.Equal(t, "tmp0", n.Temp())
	assert.Equal(t, []string{"if_then_1", "if_end_1"}, n.Labels("if_then", "if_end"))
	assert.Equal(t, "tmp2", n.Temp())
}

func TestMethodFixedSlots(t *testing.T) {
	params := []*Param{{Name: "a", Type: types.IntType}, {Name: "b", Type: types.IntType}}
	assert.Equal(t, 3, (&Method{Params: params}).FixedSlots())
	assert.Equal(t, 2, (&Method{Params: params, Static: true}).FixedSlots())
}

func TestInstructionStrings(t *testing.T) {
	a := &Variable{Name: "a", VarType: types.IntType}
	b := &Variable{Name: "b", VarType: types.IntType}
	c := &Variable{Name: "c", VarType: types.IntType}

	tests := []struct {
		inst     Instruction
		expected string
	}{
		{&Assign{Dest: c, RHS: &BinaryOp{Op: OpAdd, Left: a, Right: b}}, "c.i32 :=.i32 a.i32 +.i32 b.i32"},
		{&Assign{Dest: c, RHS: &BinaryOp{Op: OpLT, Left: a, Right: b}}, "c.i32 :=.i32 a.i32 <.bool b.i32"},
		{&Return{Type: types.VoidType}, "ret.V"},
		{&Return{Type: types.IntType, Operand: &IntegerLiteral{Value: 5}}, "ret.i32 5.i32"},
		{&Goto{Label: "L"}, "goto L"},
		{&CondBranch{Cond: CondLT, Operands: []Operand{a, b}, Label: "L"}, "if (a.i32 <.bool b.i32) goto L"},
		{&CondBranch{Cond: CondTrue, Operands: []Operand{&BooleanLiteral{Value: true}}, Label: "L"}, "if (1.bool) goto L"},
		{&CondBranch{Cond: CondFalse, Operands: []Operand{&BooleanLiteral{}}, Label: "L"}, "if (!.bool 0.bool) goto L"},
		{&Call{Kind: CallInvokeStatic, Caller: &ClassRef{Name: "io"}, Method: "println", Args: []Operand{a}, Return: types.VoidType},
			`invokestatic(io, "println", a.i32).V`},
		{&Call{Kind: CallNewArray, Args: []Operand{&IntegerLiteral{Value: 3}}, Return: types.NewArray(types.IntType)},
			"new(array, 3.i32).array.i32"},
		{&Assign{Dest: &ArrayElement{Array: "arr", Index: a, Elem: types.IntType}, RHS: &SingleOp{Operand: b}},
			"arr[a.i32].i32 :=.i32 b.i32"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.inst.String())
	}
}

func TestCondKindNegateAndOperators(t *testing.T) {
	pairs := map[CondKind]CondKind{
		CondTrue: CondFalse, CondLT: CondGE, CondLE: CondGT, CondEQ: CondNE,
	}
	for kind, negated := range pairs {
		assert.Equal(t, negated, kind.Negate())
		assert.Equal(t, kind, negated.Negate())
	}

	op, ok := ParseBinOp("<=")
	require.True(t, ok)
	assert.True(t, op.IsComparison())
	assert.Equal(t, CondLE, op.Condition())
	assert.Equal(t, 2, op.Condition().Arity())
	assert.Equal(t, 1, CondFalse.Arity())

	_, ok = ParseBinOp("&&")
	assert.False(t, ok)
}

func TestVarTableSetRegister(t *testing.T) {
	vt := NewVarTable()
	vt.Add("a", types.IntType)
	vt.Add("b", types.IntType)

	assert.True(t, vt.SetRegister("b", 0))
	assert.False(t, vt.SetRegister("c", 4))
	d, _ := vt.Get("b")
	assert.Equal(t, 0, d.Register)
	assert.Equal(t, 0, vt.MaxRegister())
	assert.Equal(t, []string{"a", "b"}, vt.Names(), "rebinding keeps insertion order")
}
