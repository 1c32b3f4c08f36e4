package types

import "fmt"

// Kind classifies a semantic type
type Kind int

const (
	Invalid Kind = iota
	Int
	Boolean
	String
	Void
	Array
	Class
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Boolean:
		return "boolean"
	case String:
		return "String"
	case Void:
		return "void"
	case Array:
		return "array"
	case Class:
		return "class"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Type is the resolved type of a declaration or expression. Types are treated
// as immutable once built; use the constructors instead of mutating shared values.
type Type struct {
	Kind    Kind
	Name    string // class name when Kind == Class
	Elem    *Type  // element type when Kind == Array
	Varargs bool   // array parameter declared as T...
}

var (
	IntType     = &Type{Kind: Int}
	BooleanType = &Type{Kind: Boolean}
	StringType  = &Type{Kind: String}
	VoidType    = &Type{Kind: Void}
)

// NewArray returns the one-dimensional array type of elem
func NewArray(elem *Type) *Type {
	return &Type{Kind: Array, Elem: elem}
}

// NewVarargs returns the array type used for a trailing T... parameter
func NewVarargs(elem *Type) *Type {
	return &Type{Kind: Array, Elem: elem, Varargs: true}
}

// NewClass returns a reference to the named class
func NewClass(name string) *Type {
	return &Type{Kind: Class, Name: name}
}

func (t *Type) IsArray() bool   { return t != nil && t.Kind == Array }
func (t *Type) IsVoid() bool    { return t == nil || t.Kind == Void }
func (t *Type) IsInt() bool     { return t != nil && t.Kind == Int }
func (t *Type) IsBoolean() bool { return t != nil && t.Kind == Boolean }

// IsReference reports whether values of t live in reference registers
func (t *Type) IsReference() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case String, Array, Class:
		return true
	}
	return false
}

// Equal compares structure, ignoring the varargs marker
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Class:
		return t.Name == other.Name
	case Array:
		return t.Elem.Equal(other.Elem)
	}
	return true
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case Class:
		return t.Name
	case Array:
		if t.Varargs {
			return t.Elem.String() + "..."
		}
		return t.Elem.String() + "[]"
	default:
		return t.Kind.String()
	}
}

// Suffix renders the type in the dotted annotation form used by the IR printer
func (t *Type) Suffix() string {
	if t == nil {
		return ".?"
	}
	switch t.Kind {
	case Int:
		return ".i32"
	case Boolean:
		return ".bool"
	case String:
		return ".String"
	case Void:
		return ".V"
	case Array:
		return ".array" + t.Elem.Suffix()
	case Class:
		return "." + t.Name
	default:
		return ".?"
	}
}
