package regalloc

import (
	"ssac/internal/cfgir"
	cerrors "ssac/internal/errors"
	"ssac/internal/ir"
)

const passName = "regalloc"

// Allocate implements C7 end to end (spec.md §4.6): compute live intervals
// over cfg, run linear-scan allocation, and rewrite every SSA operand in
// place to either Register(r) or StackSlot(k). cfg must already be a
// destructed (non-SSA) CFG; Allocate does not check for surviving φs or
// ParallelCopy itself (destruct.Destruct's own postcondition covers that).
func Allocate(cfg *cfgir.CFG) error {
	intervals := ComputeIntervals(cfg)
	alloc := LinearScan(intervals)
	return rewrite(cfg, alloc)
}

// rewrite replaces every SSA operand with its assigned Register or
// StackSlot. Walking every statement's Defines/Uses again (rather than
// trusting the interval list's operand set) catches an operand allocation
// never heard about — spec.md §7's "operand with no interval during
// allocation" InvariantViolation.
func rewrite(cfg *cfgir.CFG, alloc Allocation) error {
	ids := cfg.AllStatementsInOrder()
	for pos, id := range ids {
		stmt := cfg.Statement(id)

		if def, ok := stmt.Defines(); ok && def.IsSSA() {
			repl, err := resolve(def, alloc, pos)
			if err != nil {
				return err
			}
			stmt.ReplaceDef(def, repl)
		}
		for _, u := range stmt.Uses() {
			if !u.IsSSA() {
				continue
			}
			repl, err := resolve(u, alloc, pos)
			if err != nil {
				return err
			}
			stmt.ReplaceUse(u, repl)
		}
	}
	return nil
}

func resolve(o ir.Operand, alloc Allocation, pos int) (ir.Operand, error) {
	if r, ok := alloc.Registers[o]; ok {
		return ir.Register(r), nil
	}
	if s, ok := alloc.Stack[o]; ok {
		return ir.StackSlot(s), nil
	}
	return ir.Operand{}, cerrors.At(passName, cerrors.InvariantViolation, -1, pos,
		"operand %s has no interval during allocation", o)
}
