package jasmin

import (
	"fmt"
	"strconv"
	"strings"

	"jmmc/internal/errors"
)

// effect is the stack behaviour of one opcode
type effect struct {
	pop, push int
	local     bool // operand 0 is a register
	jump      bool // operand 0 is a label
	final     bool // control never falls through
}

var effects = map[string]effect{
	"iconst_m1": {push: 1}, "iconst_0": {push: 1}, "iconst_1": {push: 1}, "iconst_2": {push: 1},
	"iconst_3": {push: 1}, "iconst_4": {push: 1}, "iconst_5": {push: 1},
	"bipush": {push: 1}, "sipush": {push: 1}, "ldc": {push: 1},
	"iload": {push: 1, local: true}, "aload": {push: 1, local: true},
	"istore": {pop: 1, local: true}, "astore": {pop: 1, local: true},
	"iinc": {local: true},
	"iadd": {pop: 2, push: 1}, "isub": {pop: 2, push: 1}, "imul": {pop: 2, push: 1},
	"idiv": {pop: 2, push: 1}, "iand": {pop: 2, push: 1}, "ior": {pop: 2, push: 1},
	"ixor": {pop: 2, push: 1}, "ineg": {pop: 1, push: 1},
	"iaload": {pop: 2, push: 1}, "baload": {pop: 2, push: 1}, "aaload": {pop: 2, push: 1},
	"iastore": {pop: 3}, "bastore": {pop: 3}, "aastore": {pop: 3},
	"newarray": {pop: 1, push: 1}, "anewarray": {pop: 1, push: 1}, "arraylength": {pop: 1, push: 1},
	"new": {push: 1}, "dup": {pop: 1, push: 2}, "pop": {pop: 1},
	"getfield": {pop: 1, push: 1}, "putfield": {pop: 2},
	"goto": {jump: true, final: true},
	"ifeq": {pop: 1, jump: true}, "ifne": {pop: 1, jump: true},
	"iflt": {pop: 1, jump: true}, "ifle": {pop: 1, jump: true},
	"ifgt": {pop: 1, jump: true}, "ifge": {pop: 1, jump: true},
	"if_icmplt": {pop: 2, jump: true}, "if_icmple": {pop: 2, jump: true},
	"if_icmpgt": {pop: 2, jump: true}, "if_icmpge": {pop: 2, jump: true},
	"if_icmpeq": {pop: 2, jump: true}, "if_icmpne": {pop: 2, jump: true},
	"if_acmpeq": {pop: 2, jump: true}, "if_acmpne": {pop: 2, jump: true},
	"return": {final: true}, "ireturn": {pop: 1, final: true}, "areturn": {pop: 1, final: true},
}

// effectOf resolves compact register forms and invocations, whose effect
// depends on their descriptor
func effectOf(line Line) (effect, int, error) {
	if base, suffix, found := strings.Cut(line.Opcode, "_"); found && len(suffix) == 1 {
		if e, ok := effects[base]; ok && e.local {
			r, err := strconv.Atoi(suffix)
			if err == nil && r >= 0 && r <= 3 {
				return e, r, nil
			}
		}
	}

	if strings.HasPrefix(line.Opcode, "invoke") {
		if len(line.Args) != 1 {
			return effect{}, -1, fmt.Errorf("%s without a method reference", line.Opcode)
		}
		args, ret, err := countDescriptor(line.Args[0])
		if err != nil {
			return effect{}, -1, err
		}
		e := effect{pop: args, push: ret}
		switch line.Opcode {
		case "invokevirtual", "invokespecial":
			e.pop++
		case "invokestatic":
		default:
			return effect{}, -1, fmt.Errorf("unknown opcode %s", line.Opcode)
		}
		return e, -1, nil
	}

	e, ok := effects[line.Opcode]
	if !ok {
		return effect{}, -1, fmt.Errorf("unknown opcode %s", line.Opcode)
	}
	if e.local {
		if len(line.Args) == 0 {
			return effect{}, -1, fmt.Errorf("%s without a register", line.Opcode)
		}
		r, err := strconv.Atoi(line.Args[0])
		if err != nil || r < 0 {
			return effect{}, -1, fmt.Errorf("%s with bad register %q", line.Opcode, line.Args[0])
		}
		return e, r, nil
	}
	return e, -1, nil
}

// countDescriptor returns the argument slots and return slots of a method
// reference such as A/m(I[ILjava/lang/String;)V
func countDescriptor(ref string) (int, int, error) {
	open := strings.IndexByte(ref, '(')
	closing := strings.IndexByte(ref, ')')
	if open < 0 || closing < open {
		return 0, 0, fmt.Errorf("malformed method reference %s", ref)
	}
	params := ref[open+1 : closing]
	args := 0
	for i := 0; i < len(params); i++ {
		for params[i] == '[' {
			i++
			if i == len(params) {
				return 0, 0, fmt.Errorf("malformed descriptor %s", ref)
			}
		}
		if params[i] == 'L' {
			end := strings.IndexByte(params[i:], ';')
			if end < 0 {
				return 0, 0, fmt.Errorf("malformed descriptor %s", ref)
			}
			i += end
		}
		args++
	}
	ret := 1
	if ref[closing+1:] == "V" {
		ret = 0
	}
	return args, ret, nil
}

// StackChecker simulates the operand stack of one method over its control flow
type StackChecker struct {
	method   *Method
	labels   map[string]int
	depth    []int // depth on entry to each line, -1 until reached
	maxDepth int
}

func NewStackChecker(m *Method) *StackChecker {
	return &StackChecker{method: m}
}

// Run walks every reachable line and returns the highest depth seen
func (sc *StackChecker) Run() (int, error) {
	body := sc.method.Body
	sc.labels = make(map[string]int)
	sc.depth = make([]int, len(body))
	for i, line := range body {
		sc.depth[i] = -1
		if line.IsLabel() {
			sc.labels[line.Label] = i
		}
	}
	if len(body) == 0 {
		return 0, nil
	}

	sc.depth[0] = 0
	worklist := []int{0}
	for len(worklist) > 0 {
		i := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]

		successors, depth, err := sc.step(i)
		if err != nil {
			return 0, sc.fail(i, err.Error())
		}
		for _, s := range successors {
			if s >= len(body) {
				return 0, sc.fail(i, "control falls off the end of the method")
			}
			switch sc.depth[s] {
			case -1:
				sc.depth[s] = depth
				worklist = append(worklist, s)
			case depth:
			default:
				return 0, sc.fail(s, fmt.Sprintf("inconsistent stack depth at join: %d and %d", sc.depth[s], depth))
			}
		}
	}
	return sc.maxDepth, nil
}

// step applies line i to its entry depth, returning the successors and the
// depth they start with
func (sc *StackChecker) step(i int) ([]int, int, error) {
	line := sc.method.Body[i]
	depth := sc.depth[i]
	if line.IsLabel() {
		return []int{i + 1}, depth, nil
	}

	e, register, err := effectOf(line)
	if err != nil {
		return nil, 0, err
	}
	if register >= 0 && sc.method.Limits && register >= sc.method.LocalsLimit {
		return nil, 0, fmt.Errorf("register %d is outside .limit locals %d", register, sc.method.LocalsLimit)
	}
	if depth < e.pop {
		return nil, 0, fmt.Errorf("stack underflow: %s needs %d values, depth is %d", line, e.pop, depth)
	}
	depth += e.push - e.pop
	sc.maxDepth = max(sc.maxDepth, depth)
	if depth > sc.method.StackLimit {
		return nil, 0, fmt.Errorf("stack depth %d exceeds .limit stack %d", depth, sc.method.StackLimit)
	}

	var successors []int
	if !e.final {
		successors = append(successors, i+1)
	}
	if e.jump {
		if len(line.Args) != 1 {
			return nil, 0, fmt.Errorf("%s without a label", line.Opcode)
		}
		target, ok := sc.labels[line.Args[0]]
		if !ok {
			return nil, 0, fmt.Errorf("jump to undefined label %s", line.Args[0])
		}
		successors = append(successors, target)
	}
	return successors, depth, nil
}

func (sc *StackChecker) fail(i int, problem string) error {
	return errors.Verification(sc.method.Name(), fmt.Sprintf("line %d (%s): %s", i+1, sc.method.Body[i], problem))
}

// MaxStack returns the highest operand stack depth reachable in m
func MaxStack(m *Method) (int, error) {
	return NewStackChecker(m).Run()
}

// CheckStack verifies every method of class: no underflow, consistent depths
// where control joins, depths within .limit stack and registers within
// .limit locals
func CheckStack(class *Class) error {
	for _, m := range class.Methods {
		if _, err := MaxStack(m); err != nil {
			return err
		}
	}
	return nil
}
