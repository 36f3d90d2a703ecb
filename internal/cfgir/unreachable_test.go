package cfgir

import (
	"testing"

	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

// TestUnreachable_SkippedBlock mirrors spec.md §8 S5's shape: L0 jumps
// straight past L1 to L2, leaving L1 reachable by neither a fall-through
// nor an explicit edge.
func TestUnreachable_SkippedBlock(t *testing.T) {
	in := interner.New()
	l1 := ir.Named(sym(in, "skipped"))
	l2 := ir.Named(sym(in, "landing"))
	t0 := ir.SSA(ir.SSATemp, sym(in, "t"), 0)

	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Named(sym(in, "main"))},
		&ir.JumpStmt{Target: l2},
		&ir.LabelStmt{Label: l1},
		&ir.TacStmt{LHS: t0, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 0))}},
		&ir.ReturnStmt{Operand: &t0},
		&ir.LabelStmt{Label: l2},
		&ir.ReturnStmt{Operand: &t0},
	}

	cfg, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	unreachable := cfg.Unreachable()
	if len(unreachable) != 1 {
		t.Fatalf("expected exactly one unreachable block, got %v", unreachable)
	}
	if cfg.Block(unreachable[0]).Label != l1 {
		t.Fatalf("expected the skipped block (%s) to be reported unreachable, got block %d (%s)",
			l1, unreachable[0], cfg.Block(unreachable[0]).Label)
	}
}

func TestUnreachable_StraightLineHasNone(t *testing.T) {
	in := interner.New()
	t0 := ir.SSA(ir.SSATemp, sym(in, "t"), 0)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Named(sym(in, "main"))},
		&ir.TacStmt{LHS: t0, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
		&ir.ReturnStmt{Operand: &t0},
	}
	cfg, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := cfg.Unreachable(); len(got) != 0 {
		t.Fatalf("expected no unreachable blocks, got %v", got)
	}
}
