package jasmin

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"jmmc/internal/errors"
)

const indent = "    "

// Line is one line of a method body: either a label or an opcode with its
// operands
type Line struct {
	Label  string
	Opcode string
	Args   []string
}

func Op(opcode string, args ...string) Line {
	return Line{Opcode: opcode, Args: args}
}

func LabelLine(name string) Line {
	return Line{Label: name}
}

func (l Line) IsLabel() bool {
	return l.Label != ""
}

func (l Line) String() string {
	if l.IsLabel() {
		return l.Label + ":"
	}
	if len(l.Args) == 0 {
		return l.Opcode
	}
	return l.Opcode + " " + strings.Join(l.Args, " ")
}

// Method is the listing of one method. Limits is false for the synthesized
// constructor, whose limits stay implicit.
type Method struct {
	Header      string // the full .method line
	Body        []Line
	StackLimit  int
	LocalsLimit int
	Limits      bool
}

// Name extracts the method name from the header
func (m *Method) Name() string {
	fields := strings.Fields(m.Header)
	if len(fields) == 0 {
		return ""
	}
	sig := fields[len(fields)-1]
	if i := strings.IndexByte(sig, '('); i >= 0 {
		return sig[:i]
	}
	return sig
}

// Class is a structured Jasmin listing: the class directives followed by its methods
type Class struct {
	Header  []string
	Methods []*Method
}

// String renders the listing as Jasmin source
func (c *Class) String() string {
	var b strings.Builder
	for _, line := range c.Header {
		b.WriteString(line)
		b.WriteString("\n")
	}
	for _, m := range c.Methods {
		b.WriteString("\n")
		b.WriteString(m.Header)
		b.WriteString("\n")
		for _, line := range m.Body {
			b.WriteString(indent)
			b.WriteString(line.String())
			b.WriteString("\n")
		}
		if m.Limits {
			fmt.Fprintf(&b, "%s.limit stack %d\n", indent, m.StackLimit)
			fmt.Fprintf(&b, "%s.limit locals %d\n", indent, m.LocalsLimit)
		}
		b.WriteString(".end method\n")
	}
	return b.String()
}

// Parse reads Jasmin text back into a structured listing. Comments and blank
// lines are dropped.
func Parse(text string) (*Class, error) {
	class := &Class{}
	var current *Method

	scanner := bufio.NewScanner(strings.NewReader(text))
	number := 0
	for scanner.Scan() {
		number++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		switch {
		case strings.HasPrefix(line, ".method"):
			if current != nil {
				return nil, parseError(number, "nested .method")
			}
			current = &Method{Header: line, StackLimit: 1, LocalsLimit: 1}
		case line == ".end method":
			if current == nil {
				return nil, parseError(number, ".end method outside a method")
			}
			class.Methods = append(class.Methods, current)
			current = nil
		case current == nil:
			class.Header = append(class.Header, line)
		case strings.HasPrefix(line, ".limit"):
			fields := strings.Fields(line)
			if len(fields) != 3 {
				return nil, parseError(number, "malformed .limit")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, parseError(number, "malformed .limit value")
			}
			switch fields[1] {
			case "stack":
				current.StackLimit = n
			case "locals":
				current.LocalsLimit = n
			default:
				return nil, parseError(number, "unknown .limit "+fields[1])
			}
			current.Limits = true
		case strings.HasSuffix(line, ":") && !strings.ContainsAny(line, " \t"):
			current.Body = append(current.Body, LabelLine(strings.TrimSuffix(line, ":")))
		default:
			fields := strings.Fields(line)
			current.Body = append(current.Body, Op(fields[0], fields[1:]...))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if current != nil {
		return nil, parseError(number, "missing .end method")
	}
	return class, nil
}

func parseError(line int, message string) error {
	return errors.Precondition("jasmin listing line %d: %s", line, message)
}
