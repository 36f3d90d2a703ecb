package destruct

import (
	"ssac/internal/cfgir"
	"ssac/internal/ir"
)

// eliminatePhis implements the φ-elimination this package's DESIGN.md entry
// adds to spec.md §4.5's four stages: it runs after Rename, once every
// operand CSSA conversion introduced carries its own final version. By
// construction, each φ argument is now read exactly once — by the φ itself
// — so unioning it into the φ's own (also once-read, by the immediately
// following copy) result is a total, safe substitution: every definition
// and use of the argument anywhere in the program becomes a definition or
// use of the φ's result instead. The φ is then dropped.
func eliminatePhis(cfg *cfgir.CFG) {
	n := cfg.NumBlocks()
	for bi := 0; bi < n; bi++ {
		block := cfg.Block(bi)
		remaining := make([]ir.StatementID, 0, len(block.Stmts))
		for _, id := range block.Stmts {
			tac, ok := cfg.Statement(id).(*ir.TacStmt)
			if !ok {
				remaining = append(remaining, id)
				continue
			}
			phi, ok := tac.RHS.(*ir.PhiExpr)
			if !ok {
				remaining = append(remaining, id)
				continue
			}
			for _, arg := range phi.Args {
				if arg.Operand != tac.LHS {
					cfg.SubstituteOperand(arg.Operand, tac.LHS)
				}
			}
		}
		block.Stmts = remaining
	}
}
