package jasmin

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"
	"jmmc/internal/errors"
	"jmmc/internal/ir"
	"jmmc/internal/types"
)

var log = commonlog.GetLogger("jmmc.jasmin")

// Emitter turns a ClassUnit into a Jasmin listing, tracking the operand stack
// depth of every method as it goes
type Emitter struct {
	unit     *ir.ClassUnit
	resolve  *Resolver
	method   *ir.Method
	body     []Line
	depth    int
	maxDepth int
	diamonds int
}

func NewEmitter(unit *ir.ClassUnit) *Emitter {
	return &Emitter{
		unit:    unit,
		resolve: NewResolver(unit.Name, unit.Imports),
	}
}

// Emit is a convenience wrapper around NewEmitter(unit).Emit()
func Emit(unit *ir.ClassUnit) (*Class, error) {
	return NewEmitter(unit).Emit()
}

func (e *Emitter) Emit() (*Class, error) {
	super := e.resolve.Super(e.unit.Super)
	class := &Class{Header: []string{
		".class " + e.resolve.Class(e.unit.Name),
		".super " + super,
	}}

	for _, field := range e.unit.Fields {
		desc, err := e.resolve.Descriptor(field.Type)
		if err != nil {
			return nil, err
		}
		// default access is widened to public
		class.Header = append(class.Header, fmt.Sprintf(".field public %s %s", FieldName(field.Name), desc))
	}

	class.Methods = append(class.Methods, &Method{
		Header: ".method public <init>()V",
		Body: []Line{
			Op("aload", "0"),
			Op("invokespecial", super+"/<init>()V"),
			Op("return"),
		},
		StackLimit:  1,
		LocalsLimit: 1,
	})

	for _, m := range e.unit.Methods {
		method, err := e.emitMethod(m)
		if err != nil {
			return nil, err
		}
		class.Methods = append(class.Methods, method)
	}
	return class, nil
}

func (e *Emitter) emitMethod(m *ir.Method) (*Method, error) {
	if m.Vars == nil {
		return nil, errors.Precondition("method %s has no variable table", m.Name)
	}
	e.method = m
	e.body = nil
	e.depth = 0
	e.maxDepth = 0

	params := make([]*types.Type, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Type
	}
	desc, err := e.resolve.MethodDescriptor(params, m.Return)
	if err != nil {
		return nil, err
	}
	modifiers := ""
	if m.Access == ir.AccessPublic {
		modifiers += "public "
	}
	if m.Static {
		modifiers += "static "
	}

	for index, inst := range m.Instructions {
		for _, label := range m.Labels.At(index) {
			e.body = append(e.body, LabelLine(label))
		}
		if err := e.emitInstruction(inst); err != nil {
			return nil, err
		}
	}

	method := &Method{
		Header:      fmt.Sprintf(".method %s%s%s", modifiers, m.Name, desc),
		Body:        e.body,
		StackLimit:  e.maxDepth,
		LocalsLimit: max(m.Vars.MaxRegister()+1, m.FixedSlots()),
		Limits:      true,
	}
	log.Debugf("emitted %s: %d lines, stack %d, locals %d", m.Name, len(method.Body), method.StackLimit, method.LocalsLimit)
	return method, nil
}

// op appends an instruction whose net stack effect is delta
func (e *Emitter) op(delta int, opcode string, args ...string) {
	e.body = append(e.body, Op(opcode, args...))
	e.depth += delta
	e.maxDepth = max(e.maxDepth, e.depth)
}

func (e *Emitter) label(name string) {
	e.body = append(e.body, LabelLine(name))
}

func (e *Emitter) register(name string) (int, error) {
	d, ok := e.method.Vars.Get(name)
	if !ok {
		return 0, errors.Precondition("method %s: variable %s has no register", e.method.Name, name)
	}
	return d.Register, nil
}

func (e *Emitter) emitInstruction(inst ir.Instruction) error {
	switch i := inst.(type) {
	case *ir.Assign:
		return e.emitAssign(i)
	case *ir.Call:
		if err := e.emitCall(i); err != nil {
			return err
		}
		// constructor chains return void, so only value-producing calls pop
		if !ir.ResultType(i).IsVoid() {
			e.op(-1, "pop")
		}
		return nil
	case *ir.SingleOp, *ir.BinaryOp, *ir.UnaryOp, *ir.GetField:
		if err := e.emitValue(inst); err != nil {
			return err
		}
		e.op(-1, "pop")
		return nil
	case *ir.PutField:
		if err := e.loadObject(i.Object); err != nil {
			return err
		}
		if err := e.load(i.Value); err != nil {
			return err
		}
		ref, err := e.fieldRef(i.Field)
		if err != nil {
			return err
		}
		e.op(-2, "putfield", ref...)
		return nil
	case *ir.Return:
		if i.Operand == nil || i.Type.IsVoid() {
			e.op(0, "return")
			return nil
		}
		if err := e.load(i.Operand); err != nil {
			return err
		}
		if i.Type.IsReference() {
			e.op(-1, "areturn")
		} else {
			e.op(-1, "ireturn")
		}
		return nil
	case *ir.Goto:
		e.op(0, "goto", i.Label)
		return nil
	case *ir.CondBranch:
		return e.emitCondBranch(i)
	}
	return errors.Unsupported(fmt.Sprintf("instruction %T", inst))
}

func (e *Emitter) emitAssign(a *ir.Assign) error {
	switch dest := a.Dest.(type) {
	case *ir.ArrayElement:
		if err := e.loadArrayRef(dest); err != nil {
			return err
		}
		if err := e.emitValue(a.RHS); err != nil {
			return err
		}
		e.op(-3, arrayOpcode(dest.Elem, "astore"))
		return nil
	case *ir.Variable:
		reg, err := e.register(dest.Name)
		if err != nil {
			return err
		}
		if delta, ok := incrementOf(dest, a.RHS); ok {
			e.op(0, "iinc", strconv.Itoa(reg), strconv.Itoa(delta))
			return nil
		}
		if c, ok := negatedIncrementOf(dest, a.RHS); ok {
			// x := c - x becomes x := -x; x += c
			e.op(1, "iload", strconv.Itoa(reg))
			e.op(0, "ineg")
			e.op(-1, "istore", strconv.Itoa(reg))
			e.op(0, "iinc", strconv.Itoa(reg), strconv.Itoa(c))
			return nil
		}
		if err := e.emitValue(a.RHS); err != nil {
			return err
		}
		e.op(-1, typedOpcode(dest.VarType, "store"), strconv.Itoa(reg))
		return nil
	}
	return errors.Unsupported(fmt.Sprintf("assignment to %s", a.Dest))
}

// incrementOf recognizes x := x + c, x := c + x and x := x - c on an int
// variable with a byte-sized step
func incrementOf(dest *ir.Variable, rhs ir.Instruction) (int, bool) {
	bin, ok := rhs.(*ir.BinaryOp)
	if !ok || !dest.VarType.IsInt() {
		return 0, false
	}
	same := func(op ir.Operand) bool {
		v, ok := op.(*ir.Variable)
		return ok && v.Name == dest.Name
	}
	literal := func(op ir.Operand) (int, bool) {
		lit, ok := op.(*ir.IntegerLiteral)
		if !ok {
			return 0, false
		}
		return int(lit.Value), true
	}

	delta, found := 0, false
	switch bin.Op {
	case ir.OpAdd:
		if c, ok := literal(bin.Right); ok && same(bin.Left) {
			delta, found = c, true
		} else if c, ok := literal(bin.Left); ok && same(bin.Right) {
			delta, found = c, true
		}
	case ir.OpSub:
		if c, ok := literal(bin.Right); ok && same(bin.Left) {
			delta, found = -c, true
		}
	}
	if !found || delta < -128 || delta > 127 {
		return 0, false
	}
	return delta, true
}

// negatedIncrementOf recognizes x := c - x on an int variable with a
// byte-sized c
func negatedIncrementOf(dest *ir.Variable, rhs ir.Instruction) (int, bool) {
	bin, ok := rhs.(*ir.BinaryOp)
	if !ok || bin.Op != ir.OpSub || !dest.VarType.IsInt() {
		return 0, false
	}
	lit, ok := bin.Left.(*ir.IntegerLiteral)
	if !ok || lit.Value < -128 || lit.Value > 127 {
		return 0, false
	}
	if v, ok := bin.Right.(*ir.Variable); !ok || v.Name != dest.Name {
		return 0, false
	}
	return int(lit.Value), true
}

// emitValue leaves the value of a right-hand side on the stack
func (e *Emitter) emitValue(inst ir.Instruction) error {
	switch i := inst.(type) {
	case *ir.SingleOp:
		return e.load(i.Operand)
	case *ir.BinaryOp:
		if err := e.load(i.Left); err != nil {
			return err
		}
		if err := e.load(i.Right); err != nil {
			return err
		}
		if i.Op.IsComparison() {
			e.materializeCondition(compareOpcode(i.Op.Condition(), i.Left.Type()))
			return nil
		}
		switch i.Op {
		case ir.OpAdd:
			e.op(-1, "iadd")
		case ir.OpSub:
			e.op(-1, "isub")
		case ir.OpMul:
			e.op(-1, "imul")
		case ir.OpDiv:
			e.op(-1, "idiv")
		default:
			return errors.Unsupported("binary operator " + i.Op.String())
		}
		return nil
	case *ir.UnaryOp:
		if i.Op != ir.OpNot {
			return errors.Unsupported("unary operator " + i.Op.String())
		}
		if err := e.load(i.Operand); err != nil {
			return err
		}
		e.op(1, "iconst_1")
		e.op(-1, "ixor")
		return nil
	case *ir.Call:
		if ir.ResultType(i).IsVoid() {
			return errors.Precondition("call to %s produces no value", i.Method)
		}
		return e.emitCall(i)
	case *ir.GetField:
		if err := e.loadObject(i.Object); err != nil {
			return err
		}
		ref, err := e.fieldRef(i.Field)
		if err != nil {
			return err
		}
		e.op(0, "getfield", ref...)
		return nil
	}
	return errors.Unsupported(fmt.Sprintf("value %T", inst))
}

// materializeCondition turns the two compared values on the stack into 0 or 1
//
//	if_icmp<cc> cmp_true_n
//	iconst_0
//	goto cmp_end_n
//	cmp_true_n: iconst_1
//	cmp_end_n:
func (e *Emitter) materializeCondition(branch string) {
	n := e.diamonds
	e.diamonds++
	trueLabel := fmt.Sprintf("cmp_true_%d", n)
	endLabel := fmt.Sprintf("cmp_end_%d", n)

	e.op(-2, branch, trueLabel)
	base := e.depth
	e.op(1, "iconst_0")
	e.op(0, "goto", endLabel)
	e.depth = base
	e.label(trueLabel)
	e.op(1, "iconst_1")
	e.label(endLabel)
}

func (e *Emitter) emitCondBranch(b *ir.CondBranch) error {
	if len(b.Operands) != b.Cond.Arity() {
		return errors.Precondition("branch %s takes %d operands, got %d", b.Cond, b.Cond.Arity(), len(b.Operands))
	}
	for _, op := range b.Operands {
		if err := e.load(op); err != nil {
			return err
		}
	}
	switch b.Cond {
	case ir.CondTrue:
		e.op(-1, "ifne", b.Label)
	case ir.CondFalse:
		e.op(-1, "ifeq", b.Label)
	default:
		e.op(-2, compareOpcode(b.Cond, b.Operands[0].Type()), b.Label)
	}
	return nil
}

func compareOpcode(cond ir.CondKind, operand *types.Type) string {
	suffixes := map[ir.CondKind]string{
		ir.CondLT: "lt", ir.CondLE: "le", ir.CondGT: "gt",
		ir.CondGE: "ge", ir.CondEQ: "eq", ir.CondNE: "ne",
	}
	if operand.IsReference() && (cond == ir.CondEQ || cond == ir.CondNE) {
		return "if_acmp" + suffixes[cond]
	}
	return "if_icmp" + suffixes[cond]
}

// emitCall pushes the call's result, if any
func (e *Emitter) emitCall(c *ir.Call) error {
	switch c.Kind {
	case ir.CallNew:
		ref, ok := c.Caller.(*ir.ClassRef)
		if !ok {
			return errors.Precondition("new expects a class, got %s", c.Caller)
		}
		e.op(1, "new", e.resolve.Class(ref.Name))
		return nil
	case ir.CallNewArray:
		if len(c.Args) != 1 || !c.Return.IsArray() {
			return errors.Precondition("malformed array allocation %s", c)
		}
		if err := e.load(c.Args[0]); err != nil {
			return err
		}
		switch elem := c.Return.Elem; elem.Kind {
		case types.Int:
			e.op(0, "newarray", "int")
		case types.Boolean:
			e.op(0, "newarray", "boolean")
		case types.String, types.Class:
			desc, err := e.resolve.Descriptor(elem)
			if err != nil {
				return err
			}
			e.op(0, "anewarray", strings.TrimSuffix(strings.TrimPrefix(desc, "L"), ";"))
		default:
			return errors.MalformedType("array of " + elem.String())
		}
		return nil
	case ir.CallArrayLength:
		if err := e.load(c.Caller); err != nil {
			return err
		}
		e.op(0, "arraylength")
		return nil
	case ir.CallInvokeStatic:
		ref, ok := c.Caller.(*ir.ClassRef)
		if !ok {
			return errors.Precondition("static call %s needs a class qualifier", c.Method)
		}
		return e.invoke("invokestatic", e.resolve.Class(ref.Name), c, 0)
	case ir.CallInvokeVirtual, ir.CallInvokeSpecial:
		if err := e.loadObject(c.Caller); err != nil {
			return err
		}
		owner := c.Caller.Type()
		if owner.Kind != types.Class && owner.Kind != types.String {
			return errors.Precondition("call %s on non-object %s", c.Method, c.Caller)
		}
		name := e.resolve.Class(owner.Name)
		if owner.Kind == types.String {
			name = e.resolve.Class("String")
		}
		opcode := "invokevirtual"
		if c.Kind == ir.CallInvokeSpecial {
			opcode = "invokespecial"
		}
		return e.invoke(opcode, name, c, 1)
	}
	return errors.Unsupported("call kind " + c.Kind.String())
}

// invoke loads the arguments and emits the invocation; receiver is the number
// of stack slots taken by the object reference
func (e *Emitter) invoke(opcode, owner string, c *ir.Call, receiver int) error {
	params := make([]*types.Type, len(c.Args))
	for i, arg := range c.Args {
		if err := e.load(arg); err != nil {
			return err
		}
		params[i] = arg.Type()
	}
	desc, err := e.resolve.MethodDescriptor(params, ir.ResultType(c))
	if err != nil {
		return err
	}
	delta := -receiver - len(c.Args)
	if !ir.ResultType(c).IsVoid() {
		delta++
	}
	e.op(delta, opcode, owner+"/"+c.Method+desc)
	return nil
}

func (e *Emitter) fieldRef(field *ir.Variable) ([]string, error) {
	desc, err := e.resolve.Descriptor(field.VarType)
	if err != nil {
		return nil, err
	}
	return []string{e.resolve.Class(e.unit.Name) + "/" + FieldName(field.Name), desc}, nil
}

// loadObject pushes the object a field access or call acts on
func (e *Emitter) loadObject(op ir.Operand) error {
	switch op.(type) {
	case *ir.This, *ir.Variable:
		return e.load(op)
	}
	return errors.Precondition("%s is not an object reference", op)
}

// load pushes the value of op
func (e *Emitter) load(op ir.Operand) error {
	switch o := op.(type) {
	case *ir.IntegerLiteral:
		opcode, args := constant(o.Value)
		e.op(1, opcode, args...)
		return nil
	case *ir.BooleanLiteral:
		if o.Value {
			e.op(1, "iconst_1")
		} else {
			e.op(1, "iconst_0")
		}
		return nil
	case *ir.This:
		if e.method.Static {
			return errors.Precondition("static method %s refers to this", e.method.Name)
		}
		e.op(1, "aload", "0")
		return nil
	case *ir.Variable:
		reg, err := e.register(o.Name)
		if err != nil {
			return err
		}
		e.op(1, typedOpcode(o.VarType, "load"), strconv.Itoa(reg))
		return nil
	case *ir.ArrayElement:
		if err := e.loadArrayRef(o); err != nil {
			return err
		}
		e.op(-1, arrayOpcode(o.Elem, "aload"))
		return nil
	case *ir.ClassRef:
		return errors.Precondition("class %s used as a value", o.Name)
	}
	return errors.Unsupported(fmt.Sprintf("operand %T", op))
}

// loadArrayRef pushes the array reference and the index of an element
func (e *Emitter) loadArrayRef(el *ir.ArrayElement) error {
	reg, err := e.register(el.Array)
	if err != nil {
		return err
	}
	e.op(1, "aload", strconv.Itoa(reg))
	return e.load(el.Index)
}

// constant selects the shortest instruction pushing v
func constant(v int32) (string, []string) {
	switch {
	case v == -1:
		return "iconst_m1", nil
	case v >= 0 && v <= 5:
		return "iconst_" + strconv.Itoa(int(v)), nil
	case v >= -128 && v <= 127:
		return "bipush", []string{strconv.Itoa(int(v))}
	case v >= -32768 && v <= 32767:
		return "sipush", []string{strconv.Itoa(int(v))}
	}
	return "ldc", []string{strconv.Itoa(int(v))}
}

// typedOpcode prefixes a load or store with i or a by the value's type
func typedOpcode(t *types.Type, action string) string {
	if t.IsReference() {
		return "a" + action
	}
	return "i" + action
}

// arrayOpcode selects iaload/baload/aaload or the matching store
func arrayOpcode(elem *types.Type, action string) string {
	switch {
	case elem.IsInt():
		return "i" + action
	case elem.IsBoolean():
		return "b" + action
	}
	return "a" + action
}
