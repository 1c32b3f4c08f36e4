package ir

// This file describes what each instruction reads and writes. Liveness and the
// variable table are both derived from these sets.

// Operands lists every operand inst mentions, in evaluation order, including
// the destination of an assignment and nested right-hand sides
func Operands(inst Instruction) []Operand {
	switch i := inst.(type) {
	case *Assign:
		return append([]Operand{i.Dest}, Operands(i.RHS)...)
	case *SingleOp:
		return []Operand{i.Operand}
	case *BinaryOp:
		return []Operand{i.Left, i.Right}
	case *UnaryOp:
		return []Operand{i.Operand}
	case *Call:
		var ops []Operand
		if i.Caller != nil {
			ops = append(ops, i.Caller)
		}
		return append(ops, i.Args...)
	case *GetField:
		return []Operand{i.Object}
	case *PutField:
		return []Operand{i.Object, i.Value}
	case *Return:
		if i.Operand == nil {
			return nil
		}
		return []Operand{i.Operand}
	case *CondBranch:
		return i.Operands
	}
	return nil
}

// Uses returns the variables inst reads. An array element reads its array
// and index variables even when it is the destination of a store.
func Uses(inst Instruction) []string {
	var names []string
	add := func(op Operand) {
		names = append(names, readsOf(op)...)
	}
	switch i := inst.(type) {
	case *Assign:
		if elem, ok := i.Dest.(*ArrayElement); ok {
			add(elem)
		}
		for _, op := range Operands(i.RHS) {
			add(op)
		}
	default:
		for _, op := range Operands(inst) {
			add(op)
		}
	}
	return names
}

// Defs returns the variables inst writes: only the destination of an
// assignment to a plain variable
func Defs(inst Instruction) []string {
	if assign, ok := inst.(*Assign); ok {
		if v, ok := assign.Dest.(*Variable); ok {
			return []string{v.Name}
		}
	}
	return nil
}

func readsOf(op Operand) []string {
	switch o := op.(type) {
	case *Variable:
		return []string{o.Name}
	case *ArrayElement:
		return append([]string{o.Array}, readsOf(o.Index)...)
	}
	return nil
}

// IsTerminator reports whether control never falls through inst
func IsTerminator(inst Instruction) bool {
	switch inst.(type) {
	case *Goto, *Return:
		return true
	}
	return false
}
