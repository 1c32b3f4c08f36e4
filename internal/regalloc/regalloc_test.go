package regalloc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jmmc/internal/errors"
	"jmmc/internal/ir"
	"jmmc/internal/parser"
	"jmmc/internal/semantic"
)

func lowerUnit(t *testing.T, source string) *ir.ClassUnit {
	t.Helper()
	program, err := parser.ParseSource("test.jmm", source)
	require.NoError(t, err)
	table, errs := semantic.NewAnalyzer().Analyze(program)
	require.Empty(t, errs)
	unit, err := ir.BuildUnit(program, table)
	require.NoError(t, err)
	return unit
}

func lowerMethod(t *testing.T, source, name string) *ir.Method {
	t.Helper()
	for _, m := range lowerUnit(t, source).Methods {
		if m.Name == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func readExample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "examples", name))
	require.NoError(t, err)
	return string(data)
}

const loopSource = `class A {
    public int m(int n) {
        int i;
        int s;
        i = 0;
        s = 0;
        while (i < n) {
            s = s + i;
            i = i + 1;
        }
        return s;
    }
}`

func TestLivenessStraightLine(t *testing.T) {
	m := lowerMethod(t, `class A {
    public int m(int a) {
        int b;
        int c;
        b = a + 1;
        c = b * 2;
        return c;
    }
}`, "m")

	lv, err := Analyze(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, lv.In[0].Sorted())
	assert.Equal(t, []string{"b"}, lv.Out[0].Sorted())
	assert.Equal(t, []string{"b"}, lv.In[1].Sorted())
	assert.Equal(t, []string{"c"}, lv.In[2].Sorted())
	assert.Empty(t, lv.Out[2])
}

func TestLivenessFollowsControlFlow(t *testing.T) {
	m := lowerMethod(t, loopSource, "m")
	require.Len(t, m.Instructions, 7)

	lv, err := Analyze(m)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 6}, lv.Succ[2], "branch falls through and jumps")
	assert.Equal(t, []int{2}, lv.Succ[5], "goto reaches only its target")
	assert.Empty(t, lv.Succ[6], "return has no successor")
	assert.ElementsMatch(t, []int{1, 5}, lv.Pred[2])

	assert.Equal(t, []string{"i", "n", "s"}, lv.In[2].Sorted())
	assert.Equal(t, []string{"i", "n", "s"}, lv.Out[4].Sorted(), "loop-carried values stay live across the back edge")
	assert.Equal(t, []string{"s"}, lv.In[6].Sorted())
	assert.NotContains(t, lv.In[0].Sorted(), "i")
}

func TestSuccessorsRejectsUndefinedLabel(t *testing.T) {
	m := &ir.Method{Name: "m", Labels: make(ir.LabelTable), Instructions: []ir.Instruction{&ir.Goto{Label: "nowhere"}}}
	_, err := Successors(m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undefined label nowhere")
}

func TestGraph(t *testing.T) {
	g := NewGraph()
	g.AddEdge("b", "a")
	g.AddEdge("a", "c")
	g.AddEdge("a", "a")
	g.AddNode("d")

	assert.Equal(t, []string{"a", "b", "c", "d"}, g.Nodes())
	assert.Equal(t, []string{"b", "c"}, g.Neighbors("a"))
	assert.True(t, g.Interferes("b", "a"))
	assert.False(t, g.Interferes("b", "c"))
	assert.Equal(t, 0, g.Degree("d"))
}

func assertValidColouring(t *testing.T, m *ir.Method) {
	t.Helper()
	lv, err := Analyze(m)
	require.NoError(t, err)
	g := BuildGraph(m.Vars.Names(), lv)

	for _, a := range g.Nodes() {
		ra, _ := m.Vars.Get(a)
		for _, b := range g.Neighbors(a) {
			rb, _ := m.Vars.Get(b)
			assert.NotEqual(t, ra.Register, rb.Register, "%s and %s interfere in %s", a, b, m.Name)
		}
	}
}

func TestAllocateProducesValidColouring(t *testing.T) {
	sources := []string{loopSource, readExample(t, "Registers.jmm"), readExample(t, "Arrays.jmm")}
	for _, source := range sources {
		for _, m := range lowerUnit(t, source).Methods {
			result, err := Allocate(m, 0)
			require.NoError(t, err)
			assert.LessOrEqual(t, result.Registers, m.Vars.Len())
			assert.Equal(t, result.Registers, m.Vars.MaxRegister()+1)
			assertValidColouring(t, m)
		}
	}
}

func TestAllocateKeepsReceiverAndParams(t *testing.T) {
	m := lowerMethod(t, readExample(t, "Registers.jmm"), "sum")
	_, err := Allocate(m, 0)
	require.NoError(t, err)

	for register, name := range []string{"this", "a", "b"} {
		d, ok := m.Vars.Get(name)
		require.True(t, ok)
		assert.Equal(t, register, d.Register)
	}
	for _, name := range m.Vars.Names()[3:] {
		d, _ := m.Vars.Get(name)
		assert.GreaterOrEqual(t, d.Register, 3)
	}
}

func TestAllocateMinimisesWithoutCap(t *testing.T) {
	m := lowerMethod(t, readExample(t, "Registers.jmm"), "sum")
	assert.Equal(t, 8, m.Vars.Len())

	result, err := Allocate(m, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Registers)
	assert.Empty(t, result.Spilled)
}

func TestAllocateBudget(t *testing.T) {
	source := readExample(t, "Registers.jmm")

	result, err := Allocate(lowerMethod(t, source, "sum"), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, result.Registers)

	_, err = Allocate(lowerMethod(t, source, "sum"), 6)
	require.Error(t, err)
	compilerErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrorInsufficientRegisters, compilerErr.Code)
	assert.Contains(t, err.Error(), "method sum requires 7 registers, only 6 available")
}

func TestAllocateTwoLiveLocalsDoNotFitOneRegister(t *testing.T) {
	m := lowerMethod(t, `class A {
    public int m() {
        int a;
        int b;
        a = 1;
        b = 2;
        return a + b;
    }
}`, "m")

	before := m.Vars.Names()
	_, err := Allocate(m, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "method m requires")
	assert.Contains(t, err.Error(), "only 1 available")

	d, _ := m.Vars.Get("b")
	assert.Equal(t, 2, d.Register, "a failed allocation leaves the table untouched")
	assert.Equal(t, before, m.Vars.Names())
}

func TestAllocateDisabled(t *testing.T) {
	m := lowerMethod(t, readExample(t, "Registers.jmm"), "sum")
	result, err := Allocate(m, Disabled)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, "allocation disabled", result.Describe())
	assert.Equal(t, 7, m.Vars.MaxRegister())
}

func TestAllocateIsDeterministic(t *testing.T) {
	source := readExample(t, "Arrays.jmm")
	registers := func() map[string]int {
		out := make(map[string]int)
		for _, m := range lowerUnit(t, source).Methods {
			_, err := Allocate(m, 0)
			require.NoError(t, err)
			for _, name := range m.Vars.Names() {
				d, _ := m.Vars.Get(name)
				out[m.Name+"."+name] = d.Register
			}
		}
		return out
	}

	first := registers()
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, registers())
	}
}

func TestAllocateUnit(t *testing.T) {
	unit := lowerUnit(t, loopSource)
	require.NoError(t, AllocateUnit(unit, 0))
	assert.Equal(t, 4, unit.Methods[0].Vars.MaxRegister()+1)
}
