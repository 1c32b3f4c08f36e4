package ir

import (
	"fmt"
	"strings"
)

// Printer renders a ClassUnit as an OLLIR-style listing
type Printer struct {
	indent int
	output strings.Builder
}

func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the listing of unit
func Print(unit *ClassUnit) string {
	p := NewPrinter()
	p.printUnit(unit)
	return p.output.String()
}

// PrintMethod returns the listing of a single method, with register
// assignments when a variable table is present
func PrintMethod(method *Method) string {
	p := NewPrinter()
	p.printMethod(method)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	if format == "" {
		p.output.WriteString("\n")
		return
	}
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printUnit(unit *ClassUnit) {
	for _, path := range unit.Imports {
		p.writeLine("import %s;", path)
	}
	if len(unit.Imports) > 0 {
		p.writeLine("")
	}

	header := unit.Name
	if unit.Super != "" {
		header += " extends " + unit.Super
	}
	p.writeLine("%s {", header)
	p.indent++

	for _, field := range unit.Fields {
		p.writeLine(".field %s %s%s;", field.Access, field.Name, field.Type.Suffix())
	}
	if len(unit.Fields) > 0 {
		p.writeLine("")
	}

	p.writeLine(".construct %s().V {", unit.Name)
	p.indent++
	p.writeLine("invokespecial(this, \"<init>\").V;")
	p.indent--
	p.writeLine("}")

	for _, method := range unit.Methods {
		p.writeLine("")
		p.printMethod(method)
	}

	p.indent--
	p.writeLine("}")
}

func (p *Printer) printMethod(m *Method) {
	modifiers := []string{m.Access.String()}
	if m.Static {
		modifiers = append(modifiers, "static")
	}
	params := make([]string, len(m.Params))
	for i, param := range m.Params {
		params[i] = param.Name + param.Type.Suffix()
	}
	p.writeLine(".method %s %s(%s)%s {",
		strings.Join(modifiers, " "), m.Name, strings.Join(params, ", "), m.Return.Suffix())
	p.indent++

	if m.Vars != nil && m.Vars.Len() > 0 {
		for _, name := range m.Vars.Names() {
			d, _ := m.Vars.Get(name)
			p.writeLine("; %s -> r%d", name, d.Register)
		}
	}

	for index, inst := range m.Instructions {
		for _, label := range m.Labels.At(index) {
			p.indent--
			p.writeLine("%s:", label)
			p.indent++
		}
		p.writeLine("%s;", inst)
	}

	p.indent--
	p.writeLine("}")
}
