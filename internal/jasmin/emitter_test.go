package jasmin

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jmmc/internal/ir"
	"jmmc/internal/parser"
	"jmmc/internal/regalloc"
	"jmmc/internal/semantic"
	"jmmc/internal/types"
)

// emit compiles source down to a listing; budget follows regalloc.Allocate
func emit(t *testing.T, source string, budget int) *Class {
	t.Helper()
	program, err := parser.ParseSource("test.jmm", source)
	require.NoError(t, err)
	table, errs := semantic.NewAnalyzer().Analyze(program)
	require.Empty(t, errs)
	unit, err := ir.BuildUnit(program, table)
	require.NoError(t, err)
	require.NoError(t, regalloc.AllocateUnit(unit, budget))
	class, err := Emit(unit)
	require.NoError(t, err)
	return class
}

func readExample(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "examples", name))
	require.NoError(t, err)
	return string(data)
}

func method(t *testing.T, class *Class, name string) *Method {
	t.Helper()
	for _, m := range class.Methods {
		if m.Name() == name {
			return m
		}
	}
	t.Fatalf("method %s not found", name)
	return nil
}

func lines(m *Method) []string {
	out := make([]string, len(m.Body))
	for i, line := range m.Body {
		out[i] = line.String()
	}
	return out
}

func TestEmitSimpleClass(t *testing.T) {
	class := emit(t, readExample(t, "Simple.jmm"), regalloc.Disabled)
	Peephole(class)

	expected := `.class Simple
.super java/lang/Object
.field public total I

.method public <init>()V
    aload_0
    invokespecial java/lang/Object/<init>()V
    return
.end method

.method public add(II)I
    iload_1
    iload_2
    iadd
    istore_3
    aload_0
    getfield Simple/total I
    iload_3
    iadd
    istore 5
    aload_0
    iload 5
    putfield Simple/total I
    iload_3
    ireturn
    .limit stack 2
    .limit locals 6
.end method

.method public static main([Ljava/lang/String;)V
    new Simple
    astore_1
    aload_1
    invokespecial Simple/<init>()V
    aload_1
    iconst_1
    iconst_2
    invokevirtual Simple/add(II)I
    invokestatic io/println(I)V
    return
    .limit stack 3
    .limit locals 4
.end method
`
	assert.Equal(t, expected, class.String())
}

func TestEmitConstants(t *testing.T) {
	class := emit(t, `class A {
    public int small() { return 5; }
    public int medium() { return 100; }
    public int wide() { return 200; }
    public int large() { return 40000; }
}`, regalloc.Disabled)

	assert.Equal(t, []string{"iconst_5", "ireturn"}, lines(method(t, class, "small")))
	assert.Equal(t, []string{"bipush 100", "ireturn"}, lines(method(t, class, "medium")))
	assert.Equal(t, []string{"sipush 200", "ireturn"}, lines(method(t, class, "wide")))
	assert.Equal(t, []string{"ldc 40000", "ireturn"}, lines(method(t, class, "large")))

	tests := []struct {
		value    int32
		expected string
	}{
		{-1, "iconst_m1"},
		{0, "iconst_0"},
		{6, "bipush 6"},
		{-128, "bipush -128"},
		{-129, "sipush -129"},
		{32767, "sipush 32767"},
		{32768, "ldc 32768"},
		{-40000, "ldc -40000"},
	}
	for _, tt := range tests {
		opcode, args := constant(tt.value)
		assert.Equal(t, tt.expected, Op(opcode, args...).String())
	}
}

func TestEmitImportsAndSuper(t *testing.T) {
	class := emit(t, readExample(t, "Arrays.jmm"), 0)
	text := class.String()

	assert.Contains(t, text, ".super Base\n")
	assert.Contains(t, text, ".field public data [I\n")
	assert.Contains(t, text, "invokespecial Base/<init>()V")
	assert.Contains(t, text, "invokestatic util/Math/max(II)I")
	assert.Contains(t, text, "invokevirtual Arrays/sum([I)I")
	assert.Contains(t, text, "invokevirtual Arrays/count([I)I")
	assert.Contains(t, text, ".method public count([I)I")
	assert.Contains(t, text, "newarray int")
	assert.Contains(t, text, "putfield Arrays/data [I")
}

func TestEmitIncrementAndPop(t *testing.T) {
	class := emit(t, `class A {
    public int get() { return 1; }
    public int m(int i) {
        i = i + 1;
        i = 2 + i;
        i = i - 3;
        i = i + 200;
        this.get();
        return i;
    }
}`, regalloc.Disabled)
	body := lines(method(t, class, "m"))

	assert.Equal(t, []string{
		"iinc 1 1",
		"iinc 1 2",
		"iinc 1 -3",
		"iload 1",
		"sipush 200",
		"iadd",
		"istore 1",
		"aload 0",
		"invokevirtual A/get()I",
		"pop",
		"iload 1",
		"ireturn",
	}, body)
}

func TestEmitNegatedIncrement(t *testing.T) {
	class := emit(t, `class A {
    public static int flip(int x) {
        x = 10 - x;
        x = 300 - x;
        return x;
    }
}`, regalloc.Disabled)
	m := method(t, class, "flip")

	assert.Equal(t, []string{
		"iload 0",
		"ineg",
		"istore 0",
		"iinc 0 10",
		"sipush 300",
		"iload 0",
		"isub",
		"istore 0",
		"iload 0",
		"ireturn",
	}, lines(m))
	require.NoError(t, CheckStack(class))

	result, err := run(m, int32(4))
	require.NoError(t, err)
	assert.Equal(t, int32(294), result)
}

func TestEmitComparisonAndBranches(t *testing.T) {
	class := emit(t, `class A {
    public boolean less(int a, int b) {
        boolean r;
        r = a < b;
        return r;
    }
    public int pick(boolean c) {
        int x;
        x = 0;
        if (c) x = 1; else x = 2;
        return x;
    }
}`, regalloc.Disabled)

	assert.Equal(t, []string{
		"iload 1",
		"iload 2",
		"if_icmplt cmp_true_0",
		"iconst_0",
		"goto cmp_end_0",
		"cmp_true_0:",
		"iconst_1",
		"cmp_end_0:",
		"istore 3",
		"iload 3",
		"ireturn",
	}, lines(method(t, class, "less")))

	pick := lines(method(t, class, "pick"))
	assert.Contains(t, pick, "ifne if_then_0")
	assert.Contains(t, pick, "goto if_end_0")
	assert.Contains(t, pick, "if_then_0:")
}

func TestEmitBooleanArraysAndNot(t *testing.T) {
	class := emit(t, `class A {
    public boolean m() {
        boolean[] flags;
        flags = new boolean[2];
        flags[0] = !flags[1];
        return flags[0];
    }
}`, regalloc.Disabled)
	body := lines(method(t, class, "m"))

	assert.Contains(t, body, "newarray boolean")
	assert.Contains(t, body, "baload")
	assert.Contains(t, body, "bastore")
	assert.Contains(t, body, "ixor")
}

func TestEmitReservedFieldName(t *testing.T) {
	class := emit(t, `class A {
    int field;
    public int m() { field = 1; return field; }
}`, regalloc.Disabled)
	text := class.String()

	assert.Contains(t, text, ".field public field0 I\n")
	assert.Contains(t, text, "putfield A/field0 I")
	assert.NotContains(t, text, "A/field I")
	assert.Equal(t, "count", FieldName("count"))
}

func TestEmitReservedClassName(t *testing.T) {
	class := emit(t, `class limit {
    int x;
    public int m() {
        limit other;
        other = new limit();
        x = 1;
        return x;
    }
}`, regalloc.Disabled)
	text := class.String()

	assert.True(t, strings.HasPrefix(text, ".class limit0\n"))
	assert.Contains(t, text, "putfield limit0/x I")
	assert.Contains(t, text, "new limit0")
	assert.Contains(t, text, "invokespecial limit0/<init>()V")
	assert.NotContains(t, text, " limit/")
	assert.Equal(t, "Main", ClassName("Main"))
}

func TestResolver(t *testing.T) {
	r := NewResolver("Main", []string{"io", "java.util.List", "a.b.Main2"})

	assert.Equal(t, "java/util/List", r.Class("List"))
	assert.Equal(t, "io", r.Class("io"))
	assert.Equal(t, "java/lang/String", r.Class("String"))
	assert.Equal(t, "Main", r.Class("Main"))
	assert.Equal(t, "Other", r.Class("Other"))
	assert.Equal(t, "java/lang/Object", r.Super(""))
	assert.Equal(t, "java/util/List", r.Super("List"))

	desc, err := r.MethodDescriptor([]*types.Type{
		types.IntType,
		types.NewArray(types.BooleanType),
		types.NewClass("List"),
		types.NewArray(types.StringType),
	}, types.VoidType)
	require.NoError(t, err)
	assert.Equal(t, "(I[ZLjava/util/List;[Ljava/lang/String;)V", desc)

	_, err = r.Descriptor(types.NewArray(types.NewArray(types.IntType)))
	assert.Error(t, err)
	_, err = r.Descriptor(nil)
	assert.Error(t, err)
}

func TestEmittedCodeIsStackAndLocalsSound(t *testing.T) {
	sources := []string{
		readExample(t, "Simple.jmm"),
		readExample(t, "Arrays.jmm"),
		readExample(t, "Registers.jmm"),
	}
	for _, source := range sources {
		for _, budget := range []int{regalloc.Disabled, 0} {
			class := emit(t, source, budget)
			require.NoError(t, CheckStack(class))
			for _, m := range class.Methods {
				depth, err := MaxStack(m)
				require.NoError(t, err)
				assert.LessOrEqual(t, depth, m.StackLimit, m.Name())
			}

			Peephole(class)
			require.NoError(t, CheckStack(class))
		}
	}
}

func TestTrackedStackMatchesChecker(t *testing.T) {
	class := emit(t, readExample(t, "Registers.jmm"), regalloc.Disabled)
	m := method(t, class, "sum")
	depth, err := MaxStack(m)
	require.NoError(t, err)
	assert.Equal(t, m.StackLimit, depth)
}

func TestArrayRoundTrip(t *testing.T) {
	source := `class A {
    public static int m() {
        int[] a;
        a = new int[3];
        a[0] = 10;
        a[1] = 20;
        a[2] = 30;
        return a[1];
    }
}`
	for _, budget := range []int{regalloc.Disabled, 0} {
		class := emit(t, source, budget)
		m := method(t, class, "m")

		result, err := run(m)
		require.NoError(t, err)
		assert.Equal(t, int32(20), result)

		Peephole(class)
		result, err = run(m)
		require.NoError(t, err)
		assert.Equal(t, int32(20), result)
	}
}

func TestLoopExecutes(t *testing.T) {
	class := emit(t, `class A {
    public static int sum(int n) {
        int i;
        int s;
        i = 0;
        s = 0;
        while (i < n && !(s < 0)) {
            s = s + i;
            i = i + 1;
        }
        return s;
    }
}`, 0)
	m := method(t, class, "sum")

	result, err := run(m, int32(10))
	require.NoError(t, err)
	assert.Equal(t, int32(45), result)

	Peephole(class)
	result, err = run(m, int32(10))
	require.NoError(t, err)
	assert.Equal(t, int32(45), result)
	assert.True(t, strings.Contains(strings.Join(lines(m), "\n"), "iinc"))
}
