package jasmin

import (
	"strings"

	"jmmc/internal/errors"
	"jmmc/internal/types"
)

// reservedWords are Jasmin keywords that cannot appear as field or class names
var reservedWords = map[string]bool{
	"class": true, "field": true, "method": true, "super": true, "limit": true,
	"stack": true, "locals": true, "end": true, "static": true, "public": true,
	"private": true, "protected": true, "final": true, "abstract": true,
	"interface": true, "implements": true, "from": true, "to": true, "using": true,
	"is": true, "default": true, "catch": true, "throws": true, "var": true,
	"line": true, "source": true, "signature": true,
}

// FieldName remaps reserved words so the field can be declared and accessed
func FieldName(name string) string {
	if reservedWords[name] {
		return name + "0"
	}
	return name
}

// ClassName remaps reserved words in the name of the compiled class
func ClassName(name string) string {
	return FieldName(name)
}

// Resolver maps source class names to JVM internal names through the imports
// of a class
type Resolver struct {
	class   string
	imports []string
}

func NewResolver(class string, imports []string) *Resolver {
	return &Resolver{class: class, imports: imports}
}

// Class returns the internal name of name: the import whose last segment
// matches, with dots turned into slashes, or the bare name
func (r *Resolver) Class(name string) string {
	if name == "String" {
		return "java/lang/String"
	}
	if name == r.class {
		return ClassName(name)
	}
	for _, path := range r.imports {
		segments := strings.Split(path, ".")
		if segments[len(segments)-1] == name {
			return strings.Join(segments, "/")
		}
	}
	return name
}

// Super returns the internal name of the superclass
func (r *Resolver) Super(super string) string {
	if super == "" || super == "Object" {
		return "java/lang/Object"
	}
	return r.Class(super)
}

// Descriptor returns the JVM type descriptor of t
func (r *Resolver) Descriptor(t *types.Type) (string, error) {
	if t == nil {
		return "", errors.MalformedType("missing type")
	}
	switch t.Kind {
	case types.Int:
		return "I", nil
	case types.Boolean:
		return "Z", nil
	case types.String:
		return "Ljava/lang/String;", nil
	case types.Void:
		return "V", nil
	case types.Array:
		if t.Elem.IsArray() {
			return "", errors.MalformedType("multi-dimensional array " + t.String())
		}
		elem, err := r.Descriptor(t.Elem)
		if err != nil {
			return "", err
		}
		return "[" + elem, nil
	case types.Class:
		if t.Name == "" {
			return "", errors.MalformedType("class type without a name")
		}
		return "L" + r.Class(t.Name) + ";", nil
	}
	return "", errors.MalformedType(t.String())
}

// MethodDescriptor builds (params)ret
func (r *Resolver) MethodDescriptor(params []*types.Type, ret *types.Type) (string, error) {
	var b strings.Builder
	b.WriteString("(")
	for _, p := range params {
		d, err := r.Descriptor(p)
		if err != nil {
			return "", err
		}
		b.WriteString(d)
	}
	b.WriteString(")")
	d, err := r.Descriptor(ret)
	if err != nil {
		return "", err
	}
	b.WriteString(d)
	return b.String(), nil
}
