package semantic

import (
	"jmmc/internal/ast"
	"jmmc/internal/types"
)

type SymbolKind int

const (
	SymbolField SymbolKind = iota
	SymbolParameter
	SymbolLocal
)

type Symbol struct {
	Name     string
	Kind     SymbolKind
	Type     *types.Type
	Position ast.Position
}

// SymbolTable is one lexical scope; method scopes chain to the class scope
type SymbolTable struct {
	symbols map[string]*Symbol
	parent  *SymbolTable
}

func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
		parent:  parent,
	}
}

func (st *SymbolTable) Define(name string, kind SymbolKind, typ *types.Type, pos ast.Position) *Symbol {
	symbol := &Symbol{
		Name:     name,
		Kind:     kind,
		Type:     typ,
		Position: pos,
	}
	st.symbols[name] = symbol
	return symbol
}

func (st *SymbolTable) Lookup(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	if st.parent != nil {
		return st.parent.Lookup(name)
	}
	return nil
}

func (st *SymbolTable) LookupLocal(name string) *Symbol {
	return st.symbols[name]
}

// Names lists every name visible from this scope
func (st *SymbolTable) Names() []string {
	var names []string
	for scope := st; scope != nil; scope = scope.parent {
		for name := range scope.symbols {
			names = append(names, name)
		}
	}
	return names
}

// MethodSymbol is the signature of a declared method
type MethodSymbol struct {
	Name    string
	Public  bool
	Static  bool
	Return  *types.Type
	Params  []*Symbol
	Locals  []*Symbol
	Varargs bool
}

// Table is the class-level symbol table handed to the backend
type Table struct {
	ClassName string
	Super     string
	Types     *types.TypeRegistry
	Fields    []*Symbol
	Methods   []*MethodSymbol

	scope   *SymbolTable
	methods map[string]*MethodSymbol
}

func newTable(class *ast.ClassDecl) *Table {
	table := &Table{
		ClassName: class.Name,
		Super:     class.Super,
		Types:     types.NewTypeRegistry(),
		scope:     NewSymbolTable(nil),
		methods:   make(map[string]*MethodSymbol),
	}
	table.Types.SetClassName(class.Name)
	return table
}

func (t *Table) Method(name string) (*MethodSymbol, bool) {
	m, ok := t.methods[name]
	return m, ok
}

func (t *Table) Field(name string) (*Symbol, bool) {
	s := t.scope.LookupLocal(name)
	return s, s != nil
}

// Imports returns the dotted import paths in declaration order
func (t *Table) Imports() []string {
	imports := t.Types.Imports()
	paths := make([]string, len(imports))
	for i, imp := range imports {
		paths[i] = imp.Path
	}
	return paths
}
