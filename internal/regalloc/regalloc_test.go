package regalloc

import (
	"testing"

	"ssac/internal/cfgir"
	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

func sym(in *interner.Interner, s string) interner.ID { return in.Intern(s) }

// straightLine builds one block computing `a` live across `b`'s definition,
// then using both: a ← 1; b ← 2; r ← a + b; return r.
func straightLine(t *testing.T) (*cfgir.CFG, ir.Operand, ir.Operand, ir.Operand) {
	t.Helper()
	in := interner.New()
	a := ir.SSA(ir.SSAVar, sym(in, "a"), 0)
	b := ir.SSA(ir.SSAVar, sym(in, "b"), 0)
	r := ir.SSA(ir.SSAVar, sym(in, "r"), 0)

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
	return cfg, a, b, r
}

func TestComputeIntervals_StraightLine(t *testing.T) {
	cfg, a, b, r := straightLine(t)
	intervals := ComputeIntervals(cfg)

	byOperand := make(map[ir.Operand]Interval)
	for _, iv := range intervals {
		byOperand[iv.Operand] = iv
	}

	ia, ok := byOperand[a]
	if !ok {
		t.Fatal("expected an interval for a")
	}
	ib, ok := byOperand[b]
	if !ok {
		t.Fatal("expected an interval for b")
	}
	ir_, ok := byOperand[r]
	if !ok {
		t.Fatal("expected an interval for r")
	}

	if ia.Start >= ib.Start {
		t.Fatalf("a should be defined before b: a.Start=%d b.Start=%d", ia.Start, ib.Start)
	}
	if ia.End < ib.Start {
		t.Fatalf("a's last use (in the add) should be at or after b's definition: a.End=%d b.Start=%d", ia.End, ib.Start)
	}
	if ir_.Start != ib.End {
		t.Fatalf("r should be defined at the same position as b's last use (the add): r.Start=%d b.End=%d", ir_.Start, ib.End)
	}
}

// TestLinearScan_NoSpillWithinBudget exercises the common path: 3 overlapping
// intervals, 16 registers available, no spill.
func TestLinearScan_NoSpillWithinBudget(t *testing.T) {
	cfg, a, b, r := straightLine(t)
	intervals := ComputeIntervals(cfg)
	alloc := LinearScan(intervals)

	for _, o := range []ir.Operand{a, b, r} {
		if _, ok := alloc.Registers[o]; !ok {
			t.Fatalf("expected %s to receive a register, got stack slot or nothing", o)
		}
	}
	if len(alloc.Stack) != 0 {
		t.Fatalf("expected no spills, got %v", alloc.Stack)
	}
}

// TestLinearScan_Spills builds NumRegisters+1 intervals all live across the
// same point, forcing at least one spill (spec.md §4.6 step 2's spill rule:
// the active interval with the largest end is evicted in favor of the new
// one only when strictly longer-lived; ties and shorter intervals spill the
// newcomer instead — here each variable's last use comes one statement
// after the previous variable's, so every newcomer outlives all active
// intervals and spills itself).
func TestLinearScan_Spills(t *testing.T) {
	in := interner.New()
	n := NumRegisters + 1
	vars := make([]ir.Operand, n)
	stmts := []ir.Statement{&ir.LabelStmt{Label: ir.Marker(0)}}
	for i := 0; i < n; i++ {
		vars[i] = ir.SSA(ir.SSAVar, sym(in, string(rune('a'+i))), 0)
		stmts = append(stmts, &ir.TacStmt{LHS: vars[i], RHS: &ir.OperExpr{Operand: ir.Val(value.Int(64, int64(i)))}})
	}
	// One copy per variable, in definition order, keeps all n intervals live
	// across the first copy, guaranteeing more simultaneously-live intervals
	// than there are registers.
	sumRHS := &ir.OperExpr{Operand: vars[0]}
	stmts = append(stmts, &ir.TacStmt{LHS: ir.SSA(ir.SSAVar, sym(in, "s"), 0), RHS: sumRHS})
	for _, v := range vars[1:] {
		stmts = append(stmts, &ir.TacStmt{LHS: ir.SSA(ir.SSAVar, sym(in, "s"), 0), RHS: &ir.OperExpr{Operand: v}})
	}

	cfg, err := cfgir.Build(stmts)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	intervals := ComputeIntervals(cfg)
	alloc := LinearScan(intervals)

	if len(alloc.Stack) == 0 {
		t.Fatal("expected at least one spill with more live intervals than registers")
	}
	seen := make(map[int]ir.Operand)
	for o, r := range alloc.Registers {
		if other, dup := seen[r]; dup {
			t.Fatalf("register %d double-assigned to both %s and %s", r, other, o)
		}
		seen[r] = o
	}
	slots := make(map[int]bool)
	for _, s := range alloc.Stack {
		if s < 1 {
			t.Fatalf("expected stack slots numbered from 1, got %d", s)
		}
		if slots[s] {
			t.Fatalf("duplicate stack slot %d", s)
		}
		slots[s] = true
	}
}

func TestRewrite_ReplacesEverySSAOperand(t *testing.T) {
	cfg, _, _, _ := straightLine(t)
	if err := Allocate(cfg); err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	for _, id := range cfg.AllStatementsInOrder() {
		stmt := cfg.Statement(id)
		if def, ok := stmt.Defines(); ok && def.IsSSA() {
			t.Fatalf("statement %d still defines an SSA operand %s after allocation", id, def)
		}
		for _, u := range stmt.Uses() {
			if u.IsSSA() {
				t.Fatalf("statement %d still uses an SSA operand %s after allocation", id, u)
			}
		}
	}
}
