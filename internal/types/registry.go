package types

import "strings"

// ImportedType represents a class made visible by an import declaration
type ImportedType struct {
	Name string // short name, the last path segment
	Path string // full dotted path, e.g. "io.Console"
}

// TypeRegistry knows which class names are usable in a compilation unit
type TypeRegistry struct {
	builtins  map[string]*Type
	imports   map[string]*ImportedType
	order     []string
	className string
}

// NewTypeRegistry creates a registry with the built-in types registered
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		builtins: map[string]*Type{
			"int":     IntType,
			"boolean": BooleanType,
			"String":  StringType,
			"void":    VoidType,
		},
		imports: make(map[string]*ImportedType),
	}
}

// SetClassName registers the unit's own class
func (tr *TypeRegistry) SetClassName(name string) {
	tr.className = name
}

// AddImport registers a dotted import path under its last segment
func (tr *TypeRegistry) AddImport(path string) *ImportedType {
	imported := &ImportedType{Name: ShortName(path), Path: path}
	if _, exists := tr.imports[imported.Name]; !exists {
		tr.order = append(tr.order, imported.Name)
	}
	tr.imports[imported.Name] = imported
	return imported
}

// Lookup resolves a type name to a Type. Unknown names resolve to class types;
// the backend does not validate them.
func (tr *TypeRegistry) Lookup(name string) *Type {
	if t, ok := tr.builtins[name]; ok {
		return t
	}
	return NewClass(name)
}

// IsImported reports whether name is the short name of an import
func (tr *TypeRegistry) IsImported(name string) bool {
	return tr.imports[name] != nil
}

// IsKnownClass reports whether name is the unit's class or an import
func (tr *TypeRegistry) IsKnownClass(name string) bool {
	return name == tr.className || tr.IsImported(name)
}

// Imports returns the registered imports in declaration order
func (tr *TypeRegistry) Imports() []*ImportedType {
	result := make([]*ImportedType, 0, len(tr.order))
	for _, name := range tr.order {
		result = append(result, tr.imports[name])
	}
	return result
}

// ShortName returns the last dot-separated segment of an import path
func ShortName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}
