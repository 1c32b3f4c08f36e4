package ir

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"jmmc/internal/types"
)

func TestPrintUnit(t *testing.T) {
	unit := mustLower(t, `import io;
class A extends B {
    int total;
    public int add(int a, int b) {
        if (a < b) total = a; else total = b;
        return a + b;
    }
}`)
	out := PrintUnit(unit)

	assert.True(t, strings.HasPrefix(out, "import io;\n\nA extends B {\n"))
	assert.Contains(t, out, "  .field public total.i32;\n")
	assert.Contains(t, out, "  .construct A().V {\n    invokespecial(this, \"<init>\").V;\n  }\n")
	assert.Contains(t, out, "  .method public add(a.i32, b.i32).i32 {\n")
	assert.Contains(t, out, "    ; a -> r1\n")
	assert.Contains(t, out, "  if_then_0:\n    putfield(this.A, total.i32, a.i32).V;\n")
	assert.Contains(t, out, "  if_end_0:\n    tmp1.i32 :=.i32 a.i32 +.i32 b.i32;\n")
	assert.True(t, strings.HasSuffix(out, "  }\n}\n"))
}

func TestPrintMethodWithoutVars(t *testing.T) {
	m := &Method{Name: "v", Static: true, Return: types.VoidType, Labels: make(LabelTable)}
	m.Instructions = append(m.Instructions, &Goto{Label: "top"})
	m.Labels.Add(0, "top")

	assert.Equal(t, ".method default static v().V {\ntop:\n  goto top;\n}\n", PrintMethod(m))
}
