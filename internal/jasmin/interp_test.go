package jasmin

import (
	"fmt"
	"strconv"
	"strings"
)

// machine executes the subset of JVM instructions a method without calls or
// fields can contain. It exists so tests can compare listings by behaviour.
type machine struct {
	method *Method
	labels map[string]int
	locals []any
	stack  []any
}

type array struct {
	data []int32
}

func run(m *Method, args ...any) (any, error) {
	vm := &machine{method: m, labels: make(map[string]int), locals: make([]any, max(m.LocalsLimit, len(args)))}
	copy(vm.locals, args)
	for i, line := range m.Body {
		if line.IsLabel() {
			vm.labels[line.Label] = i
		}
	}
	return vm.exec()
}

func (vm *machine) push(v any) { vm.stack = append(vm.stack, v) }

func (vm *machine) pop() any {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func (vm *machine) popInt() int32 { return vm.pop().(int32) }

func (vm *machine) exec() (any, error) {
	body := vm.method.Body
	for pc, steps := 0, 0; pc < len(body); steps++ {
		if steps > 100000 {
			return nil, fmt.Errorf("step limit exceeded")
		}
		line := body[pc]
		pc++
		if line.IsLabel() {
			continue
		}

		opcode := line.Opcode
		register := -1
		if base, suffix, found := strings.Cut(opcode, "_"); found && (base == "iload" || base == "aload" || base == "istore" || base == "astore") {
			register, _ = strconv.Atoi(suffix)
			opcode = base
		} else if len(line.Args) > 0 {
			register, _ = strconv.Atoi(line.Args[0])
		}
		arg := func() int32 {
			n, _ := strconv.Atoi(line.Args[0])
			return int32(n)
		}
		jump := func(taken bool) {
			if taken {
				pc = vm.labels[line.Args[0]]
			}
		}

		switch opcode {
		case "iconst_m1", "iconst_0", "iconst_1", "iconst_2", "iconst_3", "iconst_4", "iconst_5":
			n, _ := strconv.Atoi(strings.Replace(strings.TrimPrefix(opcode, "iconst_"), "m", "-", 1))
			vm.push(int32(n))
		case "bipush", "sipush", "ldc":
			vm.push(arg())
		case "iload", "aload":
			vm.push(vm.locals[register])
		case "istore", "astore":
			vm.locals[register] = vm.pop()
		case "iinc":
			n, _ := strconv.Atoi(line.Args[1])
			vm.locals[register] = vm.locals[register].(int32) + int32(n)
		case "ineg":
			vm.push(-vm.popInt())
		case "iadd", "isub", "imul", "idiv", "ixor":
			b, a := vm.popInt(), vm.popInt()
			switch opcode {
			case "iadd":
				vm.push(a + b)
			case "isub":
				vm.push(a - b)
			case "imul":
				vm.push(a * b)
			case "idiv":
				vm.push(a / b)
			case "ixor":
				vm.push(a ^ b)
			}
		case "newarray":
			vm.push(&array{data: make([]int32, vm.popInt())})
		case "arraylength":
			vm.push(int32(len(vm.pop().(*array).data)))
		case "iaload", "baload":
			index := vm.popInt()
			vm.push(vm.pop().(*array).data[index])
		case "iastore", "bastore":
			value, index := vm.popInt(), vm.popInt()
			vm.pop().(*array).data[index] = value
		case "pop":
			vm.pop()
		case "goto":
			jump(true)
		case "ifeq":
			jump(vm.popInt() == 0)
		case "ifne":
			jump(vm.popInt() != 0)
		case "if_icmplt", "if_icmple", "if_icmpgt", "if_icmpge", "if_icmpeq", "if_icmpne":
			b, a := vm.popInt(), vm.popInt()
			jump(map[string]bool{
				"if_icmplt": a < b, "if_icmple": a <= b, "if_icmpgt": a > b,
				"if_icmpge": a >= b, "if_icmpeq": a == b, "if_icmpne": a != b,
			}[opcode])
		case "ireturn", "areturn":
			return vm.pop(), nil
		case "return":
			return nil, nil
		default:
			return nil, fmt.Errorf("machine cannot execute %s", line)
		}
	}
	return nil, fmt.Errorf("fell off the end of %s", vm.method.Name())
}
