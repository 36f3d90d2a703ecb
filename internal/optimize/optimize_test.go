package optimize

import (
	"testing"

	"ssac/internal/cfgir"
	"ssac/internal/dominance"
	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/ssa"
	"ssac/internal/value"
)

func sym(in *interner.Interner, s string) interner.ID { return in.Intern(s) }

func buildAndConstruct(t *testing.T, stmts []ir.Statement) *cfgir.CFG {
	t.Helper()
	cfg, err := cfgir.Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	dom := dominance.ComputeIterative(cfg)
	ssa.Construct(cfg, dom)
	return cfg
}

// TestConstantFoldAndPropagate: `t0 <- 2 + 3; return t0` folds to a literal
// copy, propagates into the Return, and DCE removes the now-dead Tac.
func TestConstantFoldAndPropagate(t *testing.T) {
	in := interner.New()
	x := sym(in, "x")
	t0 := ir.SSA(ir.SSATemp, x, 0)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Named(sym(in, "main"))},
		&ir.TacStmt{LHS: t0, RHS: &ir.BinaryExpr{Left: ir.Val(value.Int(64, 2)), Op: ir.Add, Right: ir.Val(value.Int(64, 3))}},
		&ir.ReturnStmt{Operand: &t0},
	}
	cfg := buildAndConstruct(t, stmts)
	Optimize(cfg, Config{})

	b := cfg.Block(0)
	if len(b.Stmts) != 1 {
		t.Fatalf("expected only the Return to survive, got %d statements", len(b.Stmts))
	}
	ret, ok := cfg.Statement(b.Stmts[0]).(*ir.ReturnStmt)
	if !ok {
		t.Fatalf("expected a ReturnStmt, got %T", cfg.Statement(b.Stmts[0]))
	}
	if ret.Operand == nil || ret.Operand.Kind != ir.OperandValue {
		t.Fatalf("expected Return to use a folded literal, got %v", ret.Operand)
	}
	n, _ := ret.Operand.Value.AsInt()
	if n != 5 {
		t.Fatalf("expected folded value 5, got %d", n)
	}
}

// TestDivisionByZeroSkipsFold: ArithmeticOverflow (spec.md §7) is non-fatal
// and simply leaves the statement unfolded.
func TestDivisionByZeroSkipsFold(t *testing.T) {
	in := interner.New()
	x := sym(in, "x")
	t0 := ir.SSA(ir.SSATemp, x, 0)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Named(sym(in, "main"))},
		&ir.TacStmt{LHS: t0, RHS: &ir.BinaryExpr{Left: ir.Val(value.Int(64, 1)), Op: ir.Div, Right: ir.Val(value.Int(64, 0))}},
		&ir.ReturnStmt{Operand: &t0},
	}
	cfg := buildAndConstruct(t, stmts)
	Optimize(cfg, Config{})

	b := cfg.Block(0)
	if len(b.Stmts) != 2 {
		t.Fatalf("expected the division Tac and the Return to survive unfolded, got %d statements", len(b.Stmts))
	}
	tac, ok := cfg.Statement(b.Stmts[0]).(*ir.TacStmt)
	if !ok {
		t.Fatalf("expected a TacStmt, got %T", cfg.Statement(b.Stmts[0]))
	}
	if _, stillBinary := tac.RHS.(*ir.BinaryExpr); !stillBinary {
		t.Fatalf("expected the division to remain a BinaryExpr, got %T", tac.RHS)
	}
}

// TestDiamondPhiNotRemoved exercises spec.md §8 S2: the arms' constant
// copies `t.1 ← 1` and `t.2 ← 2` are folded into the join's φ arguments,
// but the φ itself is not removed, because its two literal arguments differ.
func TestDiamondPhiNotRemoved(t *testing.T) {
	in := interner.New()
	x := sym(in, "x")
	tv := sym(in, "t")
	xOp := ir.SSA(ir.SSAVar, x, 0)
	tOp := ir.SSA(ir.SSAVar, tv, 0)

	L1, L2, L3 := ir.Marker(1), ir.Marker(2), ir.Marker(3)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.CJumpStmt{Cond: &ir.OperExpr{Operand: xOp}, Target: L2},
		&ir.LabelStmt{Label: L1},
		&ir.TacStmt{LHS: tOp, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
		&ir.JumpStmt{Target: L3},
		&ir.LabelStmt{Label: L2},
		&ir.TacStmt{LHS: tOp, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 2))}},
		&ir.JumpStmt{Target: L3},
		&ir.LabelStmt{Label: L3},
		&ir.ReturnStmt{Operand: &tOp},
	}
	cfg := buildAndConstruct(t, stmts)
	Optimize(cfg, Config{})

	join := cfg.Block(3)
	if len(join.Stmts) == 0 {
		t.Fatal("expected the join block's phi to survive optimization")
	}
	tac, ok := cfg.Statement(join.Stmts[0]).(*ir.TacStmt)
	if !ok {
		t.Fatalf("expected a TacStmt, got %T", cfg.Statement(join.Stmts[0]))
	}
	if _, isPhi := tac.RHS.(*ir.PhiExpr); !isPhi {
		t.Fatalf("expected the join block's phi to survive (constant-copy folds of 1 and 2 are each literal but distinct), got %T", tac.RHS)
	}
}

// TestConstantBranchElimination exercises spec.md §4.4 rule 5: a literal
// CJump drops its never-taken edge and the dead arm is pruned.
func TestConstantBranchElimination(t *testing.T) {
	in := interner.New()
	tv := sym(in, "t")
	tOp := ir.SSA(ir.SSAVar, tv, 0)
	L1, L2, L3 := ir.Marker(1), ir.Marker(2), ir.Marker(3)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.CJumpStmt{Cond: &ir.OperExpr{Operand: ir.Val(value.Bool(true))}, Target: L2},
		&ir.LabelStmt{Label: L1},
		&ir.TacStmt{LHS: tOp, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
		&ir.JumpStmt{Target: L3},
		&ir.LabelStmt{Label: L2},
		&ir.TacStmt{LHS: tOp, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 2))}},
		&ir.JumpStmt{Target: L3},
		&ir.LabelStmt{Label: L3},
		&ir.ReturnStmt{Operand: &tOp},
	}
	cfg := buildAndConstruct(t, stmts)
	Optimize(cfg, Config{})

	if len(cfg.Block(0).Succs) != 1 {
		t.Fatalf("expected entry to keep a single successor after branch elimination, got %d", len(cfg.Block(0).Succs))
	}
	if len(cfg.Block(1).Preds) != 0 {
		t.Fatal("expected the never-taken arm to have no predecessors left")
	}
	join := cfg.Block(3)
	if len(join.Preds) != 1 {
		t.Fatalf("expected the join block to have a single predecessor after pruning, got %d", len(join.Preds))
	}
	// The surviving arm's producer is itself a literal, so the phi
	// collapses to a plain copy and that copy is then itself constant-
	// folded away: the Return ends up using the literal directly.
	if len(join.Stmts) != 1 {
		t.Fatalf("expected only the Return to remain in the join block, got %d statements", len(join.Stmts))
	}
	ret, ok := cfg.Statement(join.Stmts[0]).(*ir.ReturnStmt)
	if !ok {
		t.Fatalf("expected a ReturnStmt, got %T", cfg.Statement(join.Stmts[0]))
	}
	if ret.Operand == nil || ret.Operand.Kind != ir.OperandValue {
		t.Fatalf("expected Return to use the fully-folded literal, got %v", ret.Operand)
	}
	n, _ := ret.Operand.Value.AsInt()
	if n != 2 {
		t.Fatalf("expected folded value 2 (the taken arm), got %d", n)
	}
}
