package semantic

import (
	"slices"
	"strings"

	"github.com/tliron/commonlog"
	"jmmc/internal/ast"
	"jmmc/internal/errors"
	"jmmc/internal/types"
)

var log = commonlog.GetLogger("jmmc.semantic")

// Analyzer builds the symbol table of a program and annotates its AST in place:
// every name reference gets an Origin and every expression a resolved type.
// It performs no type checking beyond what the backend needs.
type Analyzer struct {
	table  *Table
	scope  *SymbolTable
	method *MethodSymbol
	errors []errors.CompilerError
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze returns the symbol table and the resolution errors, in source order
func (a *Analyzer) Analyze(program *ast.Program) (*Table, []errors.CompilerError) {
	a.errors = nil
	a.table = newTable(program.Class)

	for _, imp := range program.Imports {
		a.table.Types.AddImport(strings.Join(imp.Path, "."))
	}
	for _, field := range program.Class.Fields {
		a.table.Fields = append(a.table.Fields,
			a.table.scope.Define(field.Name, SymbolField, field.Type, field.Pos))
	}
	for _, method := range program.Class.Methods {
		a.declareMethod(method)
	}
	for _, method := range program.Class.Methods {
		a.analyzeMethod(method)
	}
	log.Debugf("class %s: %d methods, %d errors", a.table.ClassName, len(a.table.Methods), len(a.errors))
	return a.table, a.errors
}

func (a *Analyzer) GetErrors() []errors.CompilerError {
	return a.errors
}

func (a *Analyzer) declareMethod(m *ast.MethodDecl) {
	symbol := &MethodSymbol{
		Name:    m.Name,
		Public:  m.Public,
		Static:  m.Static,
		Return:  m.Return,
		Varargs: m.IsVarargs(),
	}
	for _, p := range m.Params {
		symbol.Params = append(symbol.Params, &Symbol{Name: p.Name, Kind: SymbolParameter, Type: p.Type, Position: p.Pos})
	}
	for _, l := range m.Locals {
		symbol.Locals = append(symbol.Locals, &Symbol{Name: l.Name, Kind: SymbolLocal, Type: l.Type, Position: l.Pos})
	}
	a.table.Methods = append(a.table.Methods, symbol)
	a.table.methods[m.Name] = symbol
}

func (a *Analyzer) analyzeMethod(m *ast.MethodDecl) {
	a.method = a.table.methods[m.Name]
	a.scope = NewSymbolTable(a.table.scope)
	for _, p := range a.method.Params {
		a.scope.Define(p.Name, SymbolParameter, p.Type, p.Position)
	}
	for _, l := range a.method.Locals {
		a.scope.Define(l.Name, SymbolLocal, l.Type, l.Position)
	}
	for _, stmt := range m.Body {
		a.analyzeStmt(stmt)
	}
	a.scope = nil
	a.method = nil
}

func (a *Analyzer) analyzeStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		for _, inner := range s.Stmts {
			a.analyzeStmt(inner)
		}
	case *ast.IfStmt:
		a.analyzeExpr(s.Cond, types.BooleanType)
		a.analyzeStmt(s.Then)
		if s.Else != nil {
			a.analyzeStmt(s.Else)
		}
	case *ast.WhileStmt:
		a.analyzeExpr(s.Cond, types.BooleanType)
		a.analyzeStmt(s.Body)
	case *ast.ExprStmt:
		a.analyzeExpr(s.Expr, types.VoidType)
	case *ast.AssignStmt:
		target := a.analyzeExpr(s.Target, nil)
		a.analyzeExpr(s.Value, target)
	case *ast.ArrayAssignStmt:
		target := a.analyzeExpr(s.Target, nil)
		a.analyzeExpr(s.Index, types.IntType)
		elem := types.IntType
		if target.IsArray() {
			elem = target.Elem
		}
		a.analyzeExpr(s.Value, elem)
	case *ast.ReturnStmt:
		if s.Value != nil {
			a.analyzeExpr(s.Value, a.method.Return)
		}
	}
}

// analyzeExpr resolves e and caches its type. expected is the type the context
// requires, used for calls whose return type is not declared in this class.
func (a *Analyzer) analyzeExpr(e ast.Expr, expected *types.Type) *types.Type {
	t := a.inferExpr(e, expected)
	e.SetResolvedType(t)
	return t
}

func (a *Analyzer) inferExpr(e ast.Expr, expected *types.Type) *types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return types.IntType
	case *ast.BoolLit:
		return types.BooleanType
	case *ast.ThisExpr:
		return types.NewClass(a.table.ClassName)
	case *ast.VarRef:
		return a.resolveName(n)
	case *ast.ParenExpr:
		return a.analyzeExpr(n.Inner, expected)
	case *ast.UnaryExpr:
		a.analyzeExpr(n.Operand, types.BooleanType)
		return types.BooleanType
	case *ast.BinaryExpr:
		return a.inferBinary(n)
	case *ast.IndexExpr:
		array := a.analyzeExpr(n.Array, nil)
		a.analyzeExpr(n.Index, types.IntType)
		if array.IsArray() {
			return array.Elem
		}
		return types.IntType
	case *ast.LengthExpr:
		a.analyzeExpr(n.Array, nil)
		return types.IntType
	case *ast.CallExpr:
		return a.inferCall(n, expected)
	case *ast.NewObjectExpr:
		for _, arg := range n.Args {
			a.analyzeExpr(arg, nil)
		}
		return types.NewClass(n.Class)
	case *ast.NewArrayExpr:
		a.analyzeExpr(n.Length, types.IntType)
		return types.NewArray(n.Elem)
	case *ast.ArrayLiteral:
		elem := types.IntType
		if expected.IsArray() {
			elem = expected.Elem
		}
		for _, el := range n.Elements {
			a.analyzeExpr(el, elem)
		}
		return types.NewArray(elem)
	}
	return nil
}

func (a *Analyzer) inferBinary(n *ast.BinaryExpr) *types.Type {
	switch n.Op {
	case "&&":
		a.analyzeExpr(n.Left, types.BooleanType)
		a.analyzeExpr(n.Right, types.BooleanType)
		return types.BooleanType
	case "<", "<=", ">", ">=":
		a.analyzeExpr(n.Left, types.IntType)
		a.analyzeExpr(n.Right, types.IntType)
		return types.BooleanType
	case "==", "!=":
		left := a.analyzeExpr(n.Left, nil)
		a.analyzeExpr(n.Right, left)
		return types.BooleanType
	default:
		a.analyzeExpr(n.Left, types.IntType)
		a.analyzeExpr(n.Right, types.IntType)
		return types.IntType
	}
}

func (a *Analyzer) inferCall(n *ast.CallExpr, expected *types.Type) *types.Type {
	receiver := a.analyzeExpr(n.Receiver, nil)

	var declared *MethodSymbol
	if receiver != nil && receiver.Kind == types.Class && receiver.Name == a.table.ClassName {
		declared, _ = a.table.Method(n.Method)
	}

	for i, arg := range n.Args {
		// arguments of external methods default to int
		param := types.IntType
		if declared != nil {
			param = nil
		}
		if declared != nil && len(declared.Params) > 0 {
			last := len(declared.Params) - 1
			switch {
			case i < last:
				param = declared.Params[i].Type
			case declared.Varargs:
				param = declared.Params[last].Type.Elem
				if len(n.Args) == len(declared.Params) {
					param = nil
				}
			case i == last:
				param = declared.Params[last].Type
			}
		}
		a.analyzeExpr(arg, param)
	}

	if declared != nil {
		return declared.Return
	}
	if expected == nil {
		// e.g. the receiver of a chained call; nothing better is known
		return types.VoidType
	}
	return expected
}

func (a *Analyzer) resolveName(ref *ast.VarRef) *types.Type {
	if symbol := a.scope.Lookup(ref.Name); symbol != nil {
		switch symbol.Kind {
		case SymbolLocal:
			ref.Origin = ast.OriginLocal
		case SymbolParameter:
			ref.Origin = ast.OriginParam
		case SymbolField:
			ref.Origin = ast.OriginField
		}
		return symbol.Type
	}

	if a.table.Types.IsImported(ref.Name) {
		ref.Origin = ast.OriginImport
		return types.NewClass(ref.Name)
	}
	if ref.Name == a.table.ClassName {
		ref.Origin = ast.OriginClass
		return types.NewClass(ref.Name)
	}

	candidates := a.scope.Names()
	for _, imp := range a.table.Types.Imports() {
		candidates = append(candidates, imp.Name)
	}
	slices.Sort(candidates)
	a.errors = append(a.errors, errors.UnresolvedSymbol(ref.Name, ref.Pos, candidates))
	return nil
}
