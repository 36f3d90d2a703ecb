package tacfmt

import (
	"testing"

	"github.com/alecthomas/participle/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssac/internal/interner"
	"ssac/internal/ir"
)

func TestParseAndConvert_Diamond(t *testing.T) {
	src := `
proc main {
L0:
	x = 1
	if x == 1 goto L1
	goto L2
L1:
	y = x + 2
	goto L3
L2:
	y = x - 2
	goto L3
L3:
	return y
}
`
	prog, err := ParseSource("test.tac", src)
	require.NoError(t, err)
	require.Len(t, prog.Procs, 1)
	assert.Equal(t, "main", prog.Procs[0].Name)
	assert.Len(t, prog.Procs[0].Blocks, 4)

	sym := interner.New()
	procs, err := Convert(prog, sym)
	require.NoError(t, err)
	require.Len(t, procs, 1)

	var sawCJump, sawReturn bool
	for _, s := range procs[0].Stmts {
		switch st := s.(type) {
		case *ir.CJumpStmt:
			sawCJump = true
			_, ok := st.Cond.(*ir.LogicalExpr)
			assert.True(t, ok, "expected CJump condition to be a LogicalExpr, got %T", st.Cond)
		case *ir.ReturnStmt:
			sawReturn = true
			assert.NotNil(t, st.Operand, "expected return to carry an operand")
		}
	}
	assert.True(t, sawCJump, "expected a CJumpStmt in the converted statement list")
	assert.True(t, sawReturn, "expected a ReturnStmt in the converted statement list")
}

func TestConvert_UndefinedLabelErrors(t *testing.T) {
	src := `
proc f {
L0:
	goto nowhere
}
`
	prog, err := ParseSource("test.tac", src)
	require.NoError(t, err)

	sym := interner.New()
	_, err = Convert(prog, sym)
	assert.Error(t, err, "expected an error for a goto targeting an undefined label")
}

func TestParseAndConvert_CallPushCast(t *testing.T) {
	src := `
proc helper {
L0:
	push 1
	push 2
	call add/2
	cast r as f64
	return r
}
`
	prog, err := ParseSource("test.tac", src)
	require.NoError(t, err)

	sym := interner.New()
	procs, err := Convert(prog, sym)
	require.NoError(t, err)

	var pushes, calls, casts int
	for _, s := range procs[0].Stmts {
		switch st := s.(type) {
		case *ir.StackPushStmt:
			pushes++
		case *ir.CallStmt:
			calls++
			assert.Equal(t, 2, st.Arity)
		case *ir.CastAsStmt:
			casts++
		}
	}
	assert.Equal(t, 2, pushes)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, casts)
}

func TestParseSource_SyntaxErrorCarriesPosition(t *testing.T) {
	src := "proc main {\nL0:\n\tx = \n}"
	_, err := ParseSource("bad.tac", src)
	require.Error(t, err)
	var pe participle.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "bad.tac", pe.Position().Filename)
	assert.Positive(t, pe.Position().Line)
}
