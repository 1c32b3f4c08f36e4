package repl

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"jmmc/internal/compiler"
)

func TestStartCompilesEachBlock(t *testing.T) {
	color.NoColor = true

	input := strings.Join([]string{
		"class A {",
		"    public int one() {",
		"        return 1;",
		"    }",
		"}",
		".",
		"class B {",
		"    int",
		"}",
		".",
		"class C {",
		"}",
	}, "\n")

	var out strings.Builder
	Start(strings.NewReader(input), &out, compiler.DefaultConfig())
	text := out.String()

	assert.Contains(t, text, ".class A\n")
	assert.Contains(t, text, ".method public one()I\n")
	assert.Contains(t, text, "error[E0100]")
	assert.Contains(t, text, ".class C\n")
	assert.NotContains(t, text, ".class B\n")
	assert.Equal(t, 2, strings.Count(text, "ok\n"))
}

func TestStartSkipsEmptyBlocks(t *testing.T) {
	var out strings.Builder
	Start(strings.NewReader(".\n.\n"), &out, compiler.DefaultConfig())
	assert.Equal(t, PROMPT+PROMPT+PROMPT+"\n", out.String())
}
