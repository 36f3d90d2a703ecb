package lower

import (
	"testing"

	"ssac/internal/cfgir"
	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

func sym(in *interner.Interner, s string) interner.ID { return in.Intern(s) }

// straightLineAllocated mirrors regalloc's fixture but with already-resolved
// Register operands, as if C7 had already run: a ← 1; b ← 2; r ← a + b;
// return r.
func straightLineAllocated(t *testing.T) *cfgir.CFG {
	t.Helper()
	in := interner.New()
	_ = sym(in, "unused")
	a := ir.Register(0)
	b := ir.Register(1)
	r := ir.Register(0) // reused once a's last use has passed

	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.TacStmt{LHS: a, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
		&ir.TacStmt{LHS: b, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 2))}},
		&ir.TacStmt{LHS: r, RHS: &ir.BinaryExpr{Left: a, Op: ir.Add, Right: b}},
		&ir.ReturnStmt{Operand: &r},
	}
	cfg, err := cfgir.Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return cfg
}

func TestLowerInto_StraightLine(t *testing.T) {
	cfg := straightLineAllocated(t)
	m := NewModule()
	idx, err := LowerInto(m, cfg, true)
	if err != nil {
		t.Fatalf("LowerInto: %v", err)
	}
	chunk := m.Chunks[idx]

	var sawMov, sawAdd, sawReturn, sawHlt int
	for _, insn := range chunk.Instructions {
		switch insn.(type) {
		case *MovInsn:
			sawMov++
		case *ArithInsn:
			sawAdd++
		case *ReturnInsn:
			sawReturn++
		case *HltInsn:
			sawHlt++
		}
	}
	if sawMov != 2 {
		t.Fatalf("expected 2 MOVs (the two literal loads), got %d", sawMov)
	}
	if sawAdd != 1 {
		t.Fatalf("expected 1 ADD, got %d", sawAdd)
	}
	if sawReturn != 1 {
		t.Fatalf("expected 1 RETURN, got %d", sawReturn)
	}
	if sawHlt != 1 {
		t.Fatalf("expected a trailing HLT for the entry procedure, got %d", sawHlt)
	}
	if len(m.Values.Pool) != 2 {
		t.Fatalf("expected 2 distinct pooled constants, got %d", len(m.Values.Pool))
	}
}

func TestLowerInto_ResolvesBranchTargets(t *testing.T) {
	in := interner.New()
	x := sym(in, "x")
	xOp := ir.Register(2)
	_ = x
	L1 := ir.Marker(1)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.CJumpStmt{Cond: &ir.OperExpr{Operand: xOp}, Target: L1},
		&ir.ReturnStmt{},
		&ir.LabelStmt{Label: L1},
		&ir.ReturnStmt{},
	}
	cfg, err := cfgir.Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	m := NewModule()
	idx, err := LowerInto(m, cfg, false)
	if err != nil {
		t.Fatalf("LowerInto: %v", err)
	}
	chunk := m.Chunks[idx]

	var branch *BranchInsn
	for _, insn := range chunk.Instructions {
		if b, ok := insn.(*BranchInsn); ok {
			branch = b
		}
	}
	if branch == nil {
		t.Fatal("expected a BT instruction")
	}
	target := chunk.Instructions[branch.Target.Instr]
	if _, ok := target.(*LabelInsn); !ok {
		t.Fatalf("branch target should resolve to the L1 label instruction, got %T", target)
	}
}
