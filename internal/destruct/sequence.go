package destruct

import (
	"sort"

	"ssac/internal/cfgir"
	"ssac/internal/ir"
)

// flattenAll implements stage 4: every remaining ParallelCopy is serialized
// into an ordered run of plain copies, breaking any cycle with a fresh
// temporary, then inlined in place of the placeholder. tempCounter hands
// out strictly-decreasing synthetic versions so a cycle-breaking temp never
// collides with a real, Rename-assigned version (which are always >= 0).
func flattenAll(cfg *cfgir.CFG) {
	tempCounter := 0
	n := cfg.NumBlocks()
	for bi := 0; bi < n; bi++ {
		block := cfg.Block(bi)
		var out []ir.StatementID
		for _, id := range block.Stmts {
			pc, ok := cfg.Statement(id).(*ir.ParallelCopy)
			if !ok {
				out = append(out, id)
				continue
			}
			out = append(out, flattenOne(cfg, pc, &tempCounter)...)
		}
		block.Stmts = out
	}
}

// flattenOne sequences one ParallelCopy's children and returns the
// StatementIDs to splice in its place, in safe execution order.
func flattenOne(cfg *cfgir.CFG, pc *ir.ParallelCopy, tempCounter *int) []ir.StatementID {
	pending := make(map[ir.Operand]ir.Operand, len(pc.Children))
	for _, id := range pc.Children {
		tac := cfg.Statement(id).(*ir.TacStmt)
		rhs := tac.RHS.(*ir.OperExpr)
		if tac.LHS == rhs.Operand {
			continue // self-copy, already a no-op
		}
		pending[tac.LHS] = rhs.Operand
	}

	usedAsSrc := make(map[ir.Operand]int, len(pending))
	for _, s := range pending {
		usedAsSrc[s]++
	}

	var order []ir.Operand
	for d := range pending {
		order = append(order, d)
	}
	sort.Slice(order, func(i, j int) bool { return operandLess(order[i], order[j]) })

	var result []ir.StatementID
	for len(pending) > 0 {
		progressed := false
		for _, d := range order {
			s, ok := pending[d]
			if !ok || usedAsSrc[d] != 0 {
				continue
			}
			result = append(result, cfg.AddStatement(&ir.TacStmt{LHS: d, RHS: &ir.OperExpr{Operand: s}}))
			delete(pending, d)
			usedAsSrc[s]--
			progressed = true
		}
		if progressed {
			continue
		}

		// A cycle remains: every pending dst is still somebody's needed
		// source. Break it by preserving one dst's current value in a
		// fresh temp, then redirect every pair reading that dst to read
		// the temp instead.
		d0 := order[0]
		for _, d := range order {
			if _, ok := pending[d]; ok {
				d0 = d
				break
			}
		}
		*tempCounter--
		tmp := d0.WithVersion(*tempCounter)
		result = append(result, cfg.AddStatement(&ir.TacStmt{LHS: tmp, RHS: &ir.OperExpr{Operand: d0}}))
		for d, s := range pending {
			if s == d0 {
				pending[d] = tmp
			}
		}
		usedAsSrc[tmp] = usedAsSrc[d0]
		usedAsSrc[d0] = 0
	}
	return result
}

func operandLess(a, b ir.Operand) bool {
	if a.SSAKind != b.SSAKind {
		return a.SSAKind < b.SSAKind
	}
	if a.Sym != b.Sym {
		return a.Sym < b.Sym
	}
	return a.Version < b.Version
}
