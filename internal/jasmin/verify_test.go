package jasmin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"jmmc/internal/errors"
)

func TestCheckStackAcceptsBranches(t *testing.T) {
	m := bodyOf(
		Op("iload_0"),
		Op("ifeq", "zero"),
		Op("iconst_1"),
		Op("goto", "end"),
		LabelLine("zero"),
		Op("iconst_0"),
		LabelLine("end"),
		Op("ireturn"),
	)
	depth, err := MaxStack(m)
	require.NoError(t, err)
	assert.Equal(t, 1, depth)
}

func TestCheckStackCountsInvocations(t *testing.T) {
	m := bodyOf(
		Op("aload_0"),
		Op("iconst_1"),
		Op("aload", "1"),
		Op("invokevirtual", "A/f(I[Ljava/lang/String;)I"),
		Op("invokestatic", "B/g(I)V"),
		Op("return"),
	)
	depth, err := MaxStack(m)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)
}

func TestCheckStackFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    []Line
		message string
	}{
		{"underflow", []Line{Op("iadd"), Op("ireturn")}, "stack underflow"},
		{"join mismatch", []Line{
			Op("iconst_0"), Op("ifeq", "L"), Op("iconst_1"), LabelLine("L"), Op("return"),
		}, "inconsistent stack depth"},
		{"limit exceeded", []Line{
			Op("iconst_0"), Op("iconst_0"), Op("iconst_0"), Op("iconst_0"), Op("iconst_0"), Op("return"),
		}, "exceeds .limit stack 4"},
		{"register out of range", []Line{Op("iload", "6"), Op("ireturn")}, "outside .limit locals 6"},
		{"undefined label", []Line{Op("goto", "nowhere")}, "undefined label nowhere"},
		{"falls off the end", []Line{Op("iconst_0"), Op("pop")}, "falls off the end"},
		{"unknown opcode", []Line{Op("frobnicate"), Op("return")}, "unknown opcode frobnicate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckStack(&Class{Methods: []*Method{bodyOf(tt.body...)}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
			compilerErr, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.ErrorVerification, compilerErr.Code)
		})
	}
}

func TestCountDescriptor(t *testing.T) {
	args, ret, err := countDescriptor("A/m(IZ[I[[Ljava/lang/String;LFoo;)V")
	require.NoError(t, err)
	assert.Equal(t, 5, args)
	assert.Equal(t, 0, ret)

	_, _, err = countDescriptor("A/m(Lbroken)V")
	assert.Error(t, err)
}
