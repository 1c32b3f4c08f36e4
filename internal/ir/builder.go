package ir

import (
	"github.com/tliron/commonlog"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
	"jmmc/internal/semantic"
	"jmmc/internal/types"
)

var log = commonlog.GetLogger("jmmc.ir")

// Builder lowers an annotated AST into linear IR. One Builder serves one
// compilation unit; its Namer is shared by every method of the unit.
type Builder struct {
	namer  *Namer
	table  *semantic.Table
	method *semantic.MethodSymbol
	names  map[string]bool // source names declared in the current method
	err    error
}

func NewBuilder(table *semantic.Table) *Builder {
	return &Builder{
		namer: NewNamer(),
		table: table,
	}
}

// Build lowers every method of program. The first failure aborts the unit.
func (b *Builder) Build(program *ast.Program) (*ClassUnit, error) {
	unit := &ClassUnit{
		Name:    b.table.ClassName,
		Super:   b.table.Super,
		Imports: b.table.Imports(),
	}
	for _, field := range b.table.Fields {
		unit.Fields = append(unit.Fields, &Field{Name: field.Name, Type: field.Type, Access: AccessPublic})
	}
	for _, decl := range program.Class.Methods {
		method := b.buildMethod(decl)
		if b.err != nil {
			return nil, b.err
		}
		log.Debugf("lowered %s.%s: %d instructions, %d variables",
			unit.Name, method.Name, len(method.Instructions), method.Vars.Len())
		unit.Methods = append(unit.Methods, method)
	}
	return unit, nil
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) buildMethod(decl *ast.MethodDecl) *Method {
	sym, ok := b.table.Method(decl.Name)
	if !ok {
		b.fail(errors.Precondition("method %s is missing from the symbol table", decl.Name))
		return nil
	}
	b.method = sym
	b.names = make(map[string]bool)
	for _, p := range sym.Params {
		b.names[p.Name] = true
	}
	for _, l := range sym.Locals {
		b.names[l.Name] = true
	}

	code := NewCode()
	for _, stmt := range decl.Body {
		code.Append(b.lowerStmt(stmt))
	}
	b.closeMethod(code, sym)

	method := &Method{
		Name:         sym.Name,
		Static:       sym.Static,
		Return:       sym.Return,
		Instructions: code.Instructions,
		Labels:       code.Labels,
	}
	if sym.Public {
		method.Access = AccessPublic
	}
	for _, p := range sym.Params {
		method.Params = append(method.Params, &Param{Name: p.Name, Type: p.Type})
	}
	method.Vars = b.buildVarTable(method)
	return method
}

// closeMethod guarantees the body ends in a Return that every pending label can
// attach to
func (b *Builder) closeMethod(code *Code, sym *semantic.MethodSymbol) {
	if _, ok := code.Last().(*Return); ok && len(code.Pending) == 0 {
		return
	}
	switch {
	case sym.Return.IsVoid():
		code.Emit(&Return{Type: types.VoidType})
	case sym.Return.IsInt():
		code.Emit(&Return{Type: sym.Return, Operand: &IntegerLiteral{}})
	case sym.Return.IsBoolean():
		code.Emit(&Return{Type: sym.Return, Operand: &BooleanLiteral{}})
	default:
		b.fail(errors.Precondition("method %s can complete without returning a %s", sym.Name, sym.Return))
	}
}

// buildVarTable registers the receiver, then the parameters, then every other
// variable in order of first appearance, each on the next sequential register
func (b *Builder) buildVarTable(m *Method) *VarTable {
	vt := NewVarTable()
	if !m.Static {
		vt.Add("this", types.NewClass(b.table.ClassName))
	}
	for _, p := range m.Params {
		vt.Add(p.Name, p.Type)
	}

	arrays := make(map[string]*types.Type)
	var visit func(op Operand)
	visit = func(op Operand) {
		switch o := op.(type) {
		case *Variable:
			vt.Add(o.Name, o.VarType)
		case *ArrayElement:
			if _, ok := vt.Get(o.Array); !ok {
				arrays[o.Array] = types.NewArray(o.Elem)
			}
			vt.Add(o.Array, arrays[o.Array])
			visit(o.Index)
		}
	}
	for _, inst := range m.Instructions {
		for _, op := range Operands(inst) {
			visit(op)
		}
	}
	return vt
}

func (b *Builder) temp() string {
	for {
		name := b.namer.Temp()
		if !b.names[name] {
			return name
		}
	}
}

// materialize assigns rhs to a fresh temporary and returns it
func (b *Builder) materialize(code *Code, rhs Instruction) *Variable {
	b.checkValue(rhs)
	tmp := &Variable{Name: b.temp(), VarType: ResultType(rhs)}
	code.Emit(&Assign{Dest: tmp, RHS: rhs})
	return tmp
}

func (b *Builder) checkValue(rhs Instruction) {
	if !ResultType(rhs).IsVoid() {
		return
	}
	if call, ok := rhs.(*Call); ok {
		b.fail(errors.Precondition("call to %s is used as a value but returns void", call.Method))
	} else {
		b.fail(errors.Precondition("%s is used as a value but produces none", rhs))
	}
}

// forceVariable returns op when it already names a variable, otherwise copies
// it into a temporary
func (b *Builder) forceVariable(code *Code, op Operand) *Variable {
	if v, ok := op.(*Variable); ok {
		return v
	}
	return b.materialize(code, &SingleOp{Operand: op})
}

func (b *Builder) varOperand(ref *ast.VarRef) *Variable {
	typ := ref.ResolvedType()
	if typ == nil {
		b.fail(errors.Precondition("variable %s has no resolved type", ref.Name))
		typ = types.IntType
	}
	return &Variable{Name: ref.Name, VarType: typ}
}

func (b *Builder) fieldOf(name string) *Variable {
	field, ok := b.table.Field(name)
	if !ok {
		b.fail(errors.Precondition("field %s is missing from the symbol table", name))
		return &Variable{Name: name, VarType: types.IntType}
	}
	return &Variable{Name: name, VarType: field.Type}
}

func (b *Builder) this() *This {
	return &This{Class: b.table.ClassName}
}

// Statements

func (b *Builder) lowerStmt(stmt ast.Stmt) *Code {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		code := NewCode()
		for _, inner := range s.Stmts {
			code.Append(b.lowerStmt(inner))
		}
		return code
	case *ast.IfStmt:
		return b.lowerIf(s)
	case *ast.WhileStmt:
		return b.lowerWhile(s)
	case *ast.ExprStmt:
		return b.lowerExprStmt(s)
	case *ast.AssignStmt:
		return b.lowerAssign(s)
	case *ast.ArrayAssignStmt:
		return b.lowerArrayAssign(s)
	case *ast.ReturnStmt:
		code := NewCode()
		if s.Value == nil {
			code.Emit(&Return{Type: types.VoidType})
			return code
		}
		c, op := b.lowerExpr(s.Value)
		code.Append(c)
		code.Emit(&Return{Type: b.method.Return, Operand: op})
		return code
	}
	b.fail(errors.Unsupported("statement " + stmt.String()))
	return NewCode()
}

// lowerIf produces
//
//	if (cond) goto if_then
//	<else>
//	goto if_end
//	if_then: <then>
//	if_end:
func (b *Builder) lowerIf(s *ast.IfStmt) *Code {
	labels := b.namer.Labels("if_then", "if_end")
	then, end := labels[0], labels[1]

	code := b.lowerCondJump(s.Cond, true, then)
	if s.Else != nil {
		code.Append(b.lowerStmt(s.Else))
	}
	code.Emit(&Goto{Label: end})
	code.Mark(then)
	code.Append(b.lowerStmt(s.Then))
	code.Mark(end)
	return code
}

// lowerWhile produces
//
//	while_cond: if (!cond) goto while_end
//	<body>
//	goto while_cond
//	while_end:
func (b *Builder) lowerWhile(s *ast.WhileStmt) *Code {
	labels := b.namer.Labels("while_cond", "while_end")
	cond, end := labels[0], labels[1]

	code := NewCode()
	code.Mark(cond)
	code.Append(b.lowerCondJump(s.Cond, false, end))
	code.Append(b.lowerStmt(s.Body))
	code.Emit(&Goto{Label: cond})
	code.Mark(end)
	return code
}

// lowerCondJump branches to label when cond evaluates to jumpIf. Comparisons
// become two-operand branches; negations flip the sense instead of computing a value.
func (b *Builder) lowerCondJump(cond ast.Expr, jumpIf bool, label string) *Code {
	switch e := ast.Unparen(cond).(type) {
	case *ast.UnaryExpr:
		if e.Op == "!" {
			return b.lowerCondJump(e.Operand, !jumpIf, label)
		}
	case *ast.BinaryExpr:
		if op, ok := ParseBinOp(e.Op); ok && op.IsComparison() {
			code, left := b.lowerExpr(e.Left)
			rc, right := b.lowerExpr(e.Right)
			code.Append(rc)
			kind := op.Condition()
			if !jumpIf {
				kind = kind.Negate()
			}
			code.Emit(&CondBranch{Cond: kind, Operands: []Operand{left, right}, Label: label})
			return code
		}
	}

	code, op := b.lowerExpr(cond)
	kind := CondTrue
	if !jumpIf {
		kind = CondFalse
	}
	code.Emit(&CondBranch{Cond: kind, Operands: []Operand{op}, Label: label})
	return code
}

func (b *Builder) lowerExprStmt(s *ast.ExprStmt) *Code {
	if call, ok := ast.Unparen(s.Expr).(*ast.CallExpr); ok {
		code, inst := b.lowerCall(call)
		code.Emit(inst)
		return code
	}
	code, _ := b.lowerExpr(s.Expr)
	return code
}

func (b *Builder) lowerAssign(s *ast.AssignStmt) *Code {
	if s.Target.Origin == ast.OriginField {
		code, value := b.lowerExpr(s.Value)
		code.Emit(&PutField{Object: b.this(), Field: b.fieldOf(s.Target.Name), Value: value})
		return code
	}
	if s.Target.Origin != ast.OriginLocal && s.Target.Origin != ast.OriginParam {
		b.fail(errors.Precondition("cannot assign to %s %s", s.Target.Origin, s.Target.Name))
		return NewCode()
	}
	code, rhs := b.lowerRHS(s.Value)
	b.checkValue(rhs)
	code.Emit(&Assign{Dest: b.varOperand(s.Target), RHS: rhs})
	return code
}

func (b *Builder) lowerArrayAssign(s *ast.ArrayAssignStmt) *Code {
	code, array := b.lowerExpr(s.Target)
	arrayVar := b.forceVariable(code, array)
	ic, index := b.lowerExpr(s.Index)
	code.Append(ic)
	index = b.indexOperand(code, index)
	vc, rhs := b.lowerRHS(s.Value)
	code.Append(vc)
	b.checkValue(rhs)

	elem := types.IntType
	if arrayVar.VarType.IsArray() {
		elem = arrayVar.VarType.Elem
	}
	code.Emit(&Assign{Dest: &ArrayElement{Array: arrayVar.Name, Index: index, Elem: elem}, RHS: rhs})
	return code
}

// Expressions

// lowerRHS lowers e into a computation plus the instruction that produces its
// value, so an assignment can take that instruction as its right-hand side
func (b *Builder) lowerRHS(e ast.Expr) (*Code, Instruction) {
	switch n := ast.Unparen(e).(type) {
	case *ast.BinaryExpr:
		if n.Op != "&&" {
			op, ok := ParseBinOp(n.Op)
			if !ok {
				b.fail(errors.Unsupported("binary operator " + n.Op))
				return NewCode(), &SingleOp{Operand: &IntegerLiteral{}}
			}
			code, left := b.lowerExpr(n.Left)
			rc, right := b.lowerExpr(n.Right)
			code.Append(rc)
			return code, &BinaryOp{Op: op, Left: left, Right: right}
		}
	case *ast.UnaryExpr:
		if n.Op != "!" {
			b.fail(errors.Unsupported("unary operator " + n.Op))
			return NewCode(), &SingleOp{Operand: &BooleanLiteral{}}
		}
		code, operand := b.lowerExpr(n.Operand)
		return code, &UnaryOp{Op: OpNot, Operand: operand}
	case *ast.CallExpr:
		return b.lowerCall(n)
	case *ast.LengthExpr:
		code, array := b.lowerExpr(n.Array)
		arrayVar := b.forceVariable(code, array)
		return code, &Call{Kind: CallArrayLength, Caller: arrayVar, Method: "length", Return: types.IntType}
	case *ast.VarRef:
		if n.Origin == ast.OriginField {
			return NewCode(), &GetField{Object: b.this(), Field: b.fieldOf(n.Name)}
		}
	case *ast.NewArrayExpr:
		code, length := b.lowerExpr(n.Length)
		return code, &Call{Kind: CallNewArray, Args: []Operand{length}, Return: types.NewArray(n.Elem)}
	}
	code, op := b.lowerExpr(e)
	return code, &SingleOp{Operand: op}
}

// lowerExpr lowers e into a computation plus the operand holding its value
func (b *Builder) lowerExpr(e ast.Expr) (*Code, Operand) {
	switch n := e.(type) {
	case *ast.IntLit:
		return NewCode(), &IntegerLiteral{Value: n.Value}
	case *ast.BoolLit:
		return NewCode(), &BooleanLiteral{Value: n.Value}
	case *ast.ThisExpr:
		return NewCode(), b.this()
	case *ast.ParenExpr:
		return b.lowerExpr(n.Inner)
	case *ast.VarRef:
		switch n.Origin {
		case ast.OriginLocal, ast.OriginParam:
			return NewCode(), b.varOperand(n)
		case ast.OriginImport, ast.OriginClass:
			return NewCode(), &ClassRef{Name: n.Name}
		case ast.OriginField:
			return b.lowerValue(n)
		}
		b.fail(errors.Precondition("name %s was not resolved", n.Name))
		return NewCode(), &IntegerLiteral{}
	case *ast.BinaryExpr:
		if n.Op == "&&" {
			return b.lowerAnd(n)
		}
		return b.lowerValue(n)
	case *ast.IndexExpr:
		return b.lowerIndex(n)
	case *ast.NewObjectExpr:
		return b.lowerNew(n)
	case *ast.ArrayLiteral:
		return b.lowerArrayLiteral(n)
	case *ast.UnaryExpr, *ast.CallExpr, *ast.LengthExpr, *ast.NewArrayExpr:
		return b.lowerValue(n)
	}
	b.fail(errors.Unsupported("expression " + e.String()))
	return NewCode(), &IntegerLiteral{}
}

// lowerValue materializes the right-hand side of e into a temporary
func (b *Builder) lowerValue(e ast.Expr) (*Code, Operand) {
	code, rhs := b.lowerRHS(e)
	return code, b.materialize(code, rhs)
}

// lowerAnd produces
//
//	if (!left) goto and_false
//	tmp := right
//	goto and_end
//	and_false: tmp := false
//	and_end:
func (b *Builder) lowerAnd(n *ast.BinaryExpr) (*Code, Operand) {
	labels := b.namer.Labels("and_false", "and_end")
	falseLabel, end := labels[0], labels[1]
	tmp := &Variable{Name: b.temp(), VarType: types.BooleanType}

	code := b.lowerCondJump(n.Left, false, falseLabel)
	rc, rhs := b.lowerRHS(n.Right)
	code.Append(rc)
	code.Emit(&Assign{Dest: tmp, RHS: rhs})
	code.Emit(&Goto{Label: end})
	code.Mark(falseLabel)
	code.Emit(&Assign{Dest: tmp, RHS: &SingleOp{Operand: &BooleanLiteral{Value: false}}})
	code.Mark(end)
	return code, tmp
}

// indexOperand keeps literals and named variables, anything else goes through a temporary
func (b *Builder) indexOperand(code *Code, index Operand) Operand {
	switch index.(type) {
	case *IntegerLiteral, *Variable:
		return index
	}
	return b.materialize(code, &SingleOp{Operand: index})
}

func (b *Builder) lowerIndex(n *ast.IndexExpr) (*Code, Operand) {
	code, array := b.lowerExpr(n.Array)
	arrayVar := b.forceVariable(code, array)
	ic, index := b.lowerExpr(n.Index)
	code.Append(ic)
	index = b.indexOperand(code, index)

	elem := n.ResolvedType()
	if elem == nil && arrayVar.VarType.IsArray() {
		elem = arrayVar.VarType.Elem
	}
	if elem == nil {
		b.fail(errors.Precondition("array element %s has no resolved type", n))
		elem = types.IntType
	}
	if elem.IsArray() {
		b.fail(errors.Unsupported("multi-dimensional array " + n.String()))
	}
	return code, &ArrayElement{Array: arrayVar.Name, Index: index, Elem: elem}
}

func (b *Builder) lowerNew(n *ast.NewObjectExpr) (*Code, Operand) {
	code := NewCode()
	args := b.lowerArgs(code, n.Args)
	class := types.NewClass(n.Class)
	obj := b.materialize(code, &Call{Kind: CallNew, Caller: &ClassRef{Name: n.Class}, Return: class})
	code.Emit(&Call{Kind: CallInvokeSpecial, Caller: obj, Method: "<init>", Args: args, Return: types.VoidType})
	return code, obj
}

func (b *Builder) lowerArrayLiteral(n *ast.ArrayLiteral) (*Code, Operand) {
	elem := types.IntType
	if t := n.ResolvedType(); t.IsArray() {
		elem = t.Elem
	}
	code := NewCode()
	array := b.materialize(code, &Call{
		Kind:   CallNewArray,
		Args:   []Operand{&IntegerLiteral{Value: int32(len(n.Elements))}},
		Return: types.NewArray(elem),
	})
	for i, element := range n.Elements {
		ec, rhs := b.lowerRHS(element)
		code.Append(ec)
		code.Emit(&Assign{
			Dest: &ArrayElement{Array: array.Name, Index: &IntegerLiteral{Value: int32(i)}, Elem: elem},
			RHS:  rhs,
		})
	}
	return code, array
}

func (b *Builder) lowerArgs(code *Code, args []ast.Expr) []Operand {
	ops := make([]Operand, 0, len(args))
	for _, arg := range args {
		c, op := b.lowerExpr(arg)
		code.Append(c)
		ops = append(ops, op)
	}
	return ops
}

// lowerCall classifies the receiver: this-call, static call on an imported or
// the current class, or a virtual call on a local, parameter, field or any
// other expression forced into a temporary
func (b *Builder) lowerCall(n *ast.CallExpr) (*Code, *Call) {
	code := NewCode()
	call := &Call{Kind: CallInvokeVirtual, Method: n.Method, Return: n.ResolvedType()}
	if call.Return == nil {
		call.Return = types.VoidType
	}

	switch r := ast.Unparen(n.Receiver).(type) {
	case *ast.ThisExpr:
		call.Caller = b.this()
	case *ast.VarRef:
		if r.Origin == ast.OriginImport || r.Origin == ast.OriginClass {
			call.Kind = CallInvokeStatic
			call.Caller = &ClassRef{Name: r.Name}
			break
		}
		c, op := b.lowerExpr(r)
		code.Append(c)
		call.Caller = b.forceVariable(code, op)
	default:
		c, op := b.lowerExpr(n.Receiver)
		code.Append(c)
		if this, ok := op.(*This); ok {
			call.Caller = this
		} else {
			call.Caller = b.forceVariable(code, op)
		}
	}

	call.Args = b.lowerArgs(code, n.Args)
	if recv := n.Receiver.ResolvedType(); recv != nil && recv.Kind == types.Class && recv.Name == b.table.ClassName {
		if sym, ok := b.table.Method(n.Method); ok && sym.Varargs {
			call.Args = b.packVarargs(code, sym, n.Args, call.Args)
		}
	}
	return code, call
}

// packVarargs bundles the trailing arguments of a variadic call into one fresh
// array, unless the caller already passes a single array in that position
func (b *Builder) packVarargs(code *Code, sym *semantic.MethodSymbol, exprs []ast.Expr, args []Operand) []Operand {
	fixed := len(sym.Params) - 1
	if len(args) < fixed {
		return args
	}
	if len(args) == fixed+1 && exprs[fixed].ResolvedType().IsArray() {
		return args
	}

	elem := sym.Params[fixed].Type.Elem
	rest := args[fixed:]
	array := b.materialize(code, &Call{
		Kind:   CallNewArray,
		Args:   []Operand{&IntegerLiteral{Value: int32(len(rest))}},
		Return: types.NewArray(elem),
	})
	for i, arg := range rest {
		code.Emit(&Assign{
			Dest: &ArrayElement{Array: array.Name, Index: &IntegerLiteral{Value: int32(i)}, Elem: elem},
			RHS:  &SingleOp{Operand: arg},
		})
	}
	packed := append([]Operand(nil), args[:fixed]...)
	return append(packed, array)
}
