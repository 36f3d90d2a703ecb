package cfgir

import (
	"testing"

	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

func sym(in *interner.Interner, s string) interner.ID { return in.Intern(s) }

// S1 — Straight line (spec.md §8 S1).
func TestBuild_StraightLine(t *testing.T) {
	in := interner.New()
	x := sym(in, "x")
	t0 := ir.SSA(ir.SSATemp, x, 0)

	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Named(sym(in, "main"))},
		&ir.TacStmt{LHS: t0, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
		&ir.ReturnStmt{Operand: &t0},
	}

	cfg, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.NumBlocks() != 1 {
		t.Fatalf("expected 1 block, got %d", cfg.NumBlocks())
	}
	b := cfg.Block(0)
	if len(b.Stmts) != 2 {
		t.Fatalf("expected 2 interior statements, got %d", len(b.Stmts))
	}
	if b.Exit != nil {
		t.Fatalf("return-terminated block should have no Jump/CJump exit")
	}
}

// S2 — Diamond (spec.md §8 S2).
func TestBuild_Diamond(t *testing.T) {
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

	cfg, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.NumBlocks() != 4 {
		t.Fatalf("expected 4 blocks, got %d", cfg.NumBlocks())
	}
	if len(cfg.Block(0).Succs) != 2 {
		t.Fatalf("entry should have 2 successors, got %d", len(cfg.Block(0).Succs))
	}
	if len(cfg.Block(3).Preds) != 2 {
		t.Fatalf("join block should have 2 predecessors, got %d", len(cfg.Block(3).Preds))
	}
}

func TestBuild_RejectsEmptyInput(t *testing.T) {
	if _, err := Build(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestBuild_RejectsMissingEntryLabel(t *testing.T) {
	in := interner.New()
	x := ir.SSA(ir.SSAVar, sym(in, "x"), 0)
	_, err := Build([]ir.Statement{&ir.TacStmt{LHS: x, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}}})
	if err == nil {
		t.Fatal("expected error when first statement is not a Label")
	}
}

func TestBuild_RejectsUndefinedJumpTarget(t *testing.T) {
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.JumpStmt{Target: ir.Marker(99)},
	}
	if _, err := Build(stmts); err == nil {
		t.Fatal("expected error for jump to undefined label")
	}
}

// TestBuild_TrailingFallthroughGetsSyntheticBlock exercises spec.md §4.1
// step 2: a block whose last statement is not Jump/CJump is closed with a
// synthesized Jump to a fresh marker label.
func TestBuild_TrailingFallthroughGetsSyntheticBlock(t *testing.T) {
	in := interner.New()
	x := ir.SSA(ir.SSAVar, sym(in, "x"), 0)
	stmts := []ir.Statement{
		&ir.LabelStmt{Label: ir.Marker(0)},
		&ir.TacStmt{LHS: x, RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, 1))}},
	}
	cfg, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if cfg.NumBlocks() != 2 {
		t.Fatalf("expected synthetic trailing block, got %d blocks", cfg.NumBlocks())
	}
	if cfg.Block(0).Exit == nil {
		t.Fatal("first block should have been closed with a synthesized Jump")
	}
}
