package destruct

import (
	"ssac/internal/cfgir"
	"ssac/internal/ir"
)

// convertToCSSA implements stage 2: for every `v0 ← Φ(v1@p1, …, vk@pk)`, a
// fresh same-symbol placeholder vi' is copied from vi at the end of each
// predecessor pi, the φ's i-th argument is rewritten to vi', a fresh v0'
// replaces the φ's own result, and `v0 ← v0'` is inserted right after the
// φ. Versions are left at the placeholder 0 here; Rename (stage 3) assigns
// each of these new definitions its own version, exactly as it does for
// φ-insertion's own placeholders.
//
// The per-predecessor copies are left as flat statements — not yet bundled
// into a ParallelCopy — so Rename still walks each block's statements
// directly and gives every one of these new definitions its own version;
// ParallelCopy's Defines/Uses are deliberately no-ops (ir/stmt.go), so a
// bundled copy would be invisible to the renamer. bundleEndGroups does the
// bundling once renaming (and the substitution φ-elimination depends on)
// is done. Returns, per predecessor block, the ids of the copies it ends
// up owning, because two φs at the same join can reference each other's
// incoming values (spec.md §8 S6's swap) — sequential execution would
// clobber one before the other reads it, which bundling into one
// simultaneous ParallelCopy (and sequencing it properly at flatten time)
// rules out.
func convertToCSSA(cfg *cfgir.CFG) map[int][]ir.StatementID {
	endGroup := make(map[int][]ir.StatementID)

	n := cfg.NumBlocks()
	for bi := 0; bi < n; bi++ {
		block := cfg.Block(bi)
		for _, id := range append([]ir.StatementID(nil), block.Stmts...) {
			tac, ok := cfg.Statement(id).(*ir.TacStmt)
			if !ok {
				continue
			}
			phi, ok := tac.RHS.(*ir.PhiExpr)
			if !ok {
				continue
			}

			v0 := tac.LHS
			v0Fresh := v0.WithVersion(0)

			for i := range phi.Args {
				vi := phi.Args[i].Operand
				pred := phi.Args[i].Pred
				viFresh := vi.WithVersion(0)
				if !vi.IsSSA() {
					// A literal argument has no symbol of its own: its
					// placeholder takes the φ's symbol instead.
					viFresh = v0Fresh
				}

				copyID := cfg.AddStatement(&ir.TacStmt{LHS: viFresh, RHS: &ir.OperExpr{Operand: vi}})
				cfg.Block(pred).Stmts = append(cfg.Block(pred).Stmts, copyID)
				endGroup[pred] = append(endGroup[pred], copyID)

				phi.Args[i].Operand = viFresh
			}

			tac.LHS = v0Fresh
			cfg.InsertAfter(id, &ir.TacStmt{LHS: v0, RHS: &ir.OperExpr{Operand: v0Fresh}})
		}
	}

	return endGroup
}

// bundleEndGroups replaces each predecessor's flat, sequentially-appended
// copy statements with a single ParallelCopy referencing them, once their
// final (renamed, φ-eliminated) operand identities are settled.
func bundleEndGroups(cfg *cfgir.CFG, endGroup map[int][]ir.StatementID) {
	for pred, ids := range endGroup {
		block := cfg.Block(pred)
		member := make(map[ir.StatementID]bool, len(ids))
		for _, id := range ids {
			member[id] = true
		}

		remaining := make([]ir.StatementID, 0, len(block.Stmts))
		for _, id := range block.Stmts {
			if !member[id] {
				remaining = append(remaining, id)
			}
		}

		pcID := cfg.AddStatement(&ir.ParallelCopy{Children: ids})
		block.Stmts = append(remaining, pcID)
	}
}
