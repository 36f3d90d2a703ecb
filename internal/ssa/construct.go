// Package ssa implements C4 (spec.md §4.3): φ-insertion at dominance
// frontiers and dominator-tree preorder renaming, grounded on
// original_source's src/compiler/static_single_assignment/mod.rs
// (insert_phi_functions, convert_vars_to_ssa, rename).
package ssa

import (
	"sort"

	"ssac/internal/cfgir"
	"ssac/internal/dominance"
	"ssac/internal/ir"
)

// Construct mutates cfg in place: it inserts φ-functions at join points and
// renames every SSA operand so each definition carries a unique version.
func Construct(cfg *cfgir.CFG, dom *dominance.Info) {
	insertPhis(cfg, dom)
	rename(cfg, dom)
}

// insertPhis implements the defsite/worklist algorithm of spec.md §4.3.
// Symbols are processed in a deterministic order (sorted by kind/sym) so two
// runs over the same CFG insert φ-functions identically.
func insertPhis(cfg *cfgir.CFG, dom *dominance.Info) {
	defsites := cfg.DefSites()
	symbols := make([]ir.Operand, 0, len(defsites))
	for sym := range defsites {
		symbols = append(symbols, sym)
	}
	sort.Slice(symbols, func(i, j int) bool { return operandLess(symbols[i], symbols[j]) })

	for _, sym := range symbols {
		d := defsites[sym]
		inF := make(map[int]bool)
		queue := make([]int, 0, len(d))
		for b := range d {
			queue = append(queue, b)
		}
		sort.Ints(queue)

		for len(queue) > 0 {
			x := queue[0]
			queue = queue[1:]
			frontier := make([]int, 0, len(dom.Frontier[x]))
			for y := range dom.Frontier[x] {
				frontier = append(frontier, y)
			}
			sort.Ints(frontier)
			for _, y := range frontier {
				if inF[y] {
					continue
				}
				insertPhiAt(cfg, y, sym)
				inF[y] = true
				if !d[y] {
					queue = append(queue, y)
					sort.Ints(queue)
				}
			}
		}
	}
}

// insertPhiAt prepends a placeholder φ-statement to block y's body for
// symbol sym: exactly |pred(y)| arguments, each a version-0 placeholder
// bound to its predecessor's block index, per spec.md §4.3 and the
// Phi shape of §3.
func insertPhiAt(cfg *cfgir.CFG, y int, sym ir.Operand) {
	block := cfg.Block(y)
	args := make([]ir.PhiArg, len(block.Preds))
	for i, p := range block.Preds {
		args[i] = ir.PhiArg{Operand: sym, Pred: p}
	}
	id := cfg.AddStatement(&ir.TacStmt{LHS: sym, RHS: &ir.PhiExpr{Args: args}})
	block.Stmts = append([]ir.StatementID{id}, block.Stmts...)
}

// Rename re-runs the renaming pass on its own, discarding whatever versions
// operands currently carry and reassigning fresh ones by dominator-tree
// preorder traversal. destruct (C6) calls this after CSSA construction
// introduces new definition sites for symbols that already had versions.
func Rename(cfg *cfgir.CFG, dom *dominance.Info) { rename(cfg, dom) }

// rename implements the renaming pass of spec.md §4.3: a dominator-tree
// preorder traversal from block 0, carrying per-symbol count/stack.
func rename(cfg *cfgir.CFG, dom *dominance.Info) {
	count := make(map[ir.Operand]int)
	stack := make(map[ir.Operand][]int)

	var visit func(b int)
	visit = func(b int) {
		block := cfg.Block(b)
		var defined []ir.Operand

		for _, id := range block.AllStatements() {
			stmt := cfg.Statement(id)
			tac, isTac := stmt.(*ir.TacStmt)
			_, isPhi := tacPhi(tac, isTac)

			if !isPhi {
				for _, u := range stmt.Uses() {
					if !u.IsSSA() {
						continue
					}
					key := cfgir.Operand0(u)
					if top, ok := stackTop(stack, key); ok {
						stmt.ReplaceUse(u, u.WithVersion(top))
					}
				}
			}

			if def, ok := stmt.Defines(); ok && def.IsSSA() {
				key := cfgir.Operand0(def)
				count[key]++
				ver := count[key]
				stack[key] = append(stack[key], ver)
				stmt.ReplaceDef(def, def.WithVersion(ver))
				defined = append(defined, key)
			}
		}

		for _, y := range block.Succs {
			succ := cfg.Block(y)
			j := predIndex(succ, b)
			if j < 0 {
				continue
			}
			for _, id := range succ.Stmts {
				tac, isTac := cfg.Statement(id).(*ir.TacStmt)
				phi, isPhi := tacPhi(tac, isTac)
				if !isPhi {
					continue
				}
				arg := phi.Args[j]
				key := cfgir.Operand0(arg.Operand)
				if top, ok := stackTop(stack, key); ok {
					phi.Args[j].Operand = arg.Operand.WithVersion(top)
				}
			}
		}

		for _, c := range dom.Children[b] {
			visit(c)
		}

		for _, key := range defined {
			stack[key] = stack[key][:len(stack[key])-1]
		}
	}

	visit(0)
}

func tacPhi(tac *ir.TacStmt, isTac bool) (*ir.PhiExpr, bool) {
	if !isTac {
		return nil, false
	}
	phi, ok := tac.RHS.(*ir.PhiExpr)
	return phi, ok
}

func stackTop(stack map[ir.Operand][]int, key ir.Operand) (int, bool) {
	s := stack[key]
	if len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

func predIndex(block *cfgir.BasicBlock, pred int) int {
	for i, p := range block.Preds {
		if p == pred {
			return i
		}
	}
	return -1
}

func operandLess(a, b ir.Operand) bool {
	if a.SSAKind != b.SSAKind {
		return a.SSAKind < b.SSAKind
	}
	return a.Sym < b.Sym
}
