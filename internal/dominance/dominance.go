// Package dominance implements C3: dominator sets, immediate dominators,
// and the dominance frontier (spec.md §4.2). Two independent algorithms are
// provided, grounded on the two variants original_source carries
// (src/compiler/dominator/algorithm.rs for the iterative fixpoint,
// src/compiler/dominator/mod.rs for Lengauer–Tarjan) — spec.md requires
// both to agree on every input, and ComputeIterative exists mainly as the
// test oracle ComputeLengauerTarjan is checked against.
package dominance

import "ssac/internal/cfgir"

// Info is the dominance information attached to one CFG: the strict
// dominator sets, the immediate-dominator tree (both as a parent map and a
// children adjacency, per spec.md §9's preference for a materialized tree
// the SSA renamer can walk iteratively), and the dominance frontier.
type Info struct {
	// StrictDom[b] is the set of blocks that strictly dominate b.
	StrictDom []map[int]bool
	// IDom[b] is b's immediate dominator, or -1 for the entry block.
	IDom []int
	// Children[b] lists the blocks whose immediate dominator is b.
	Children [][]int
	// Frontier[b] is b's dominance frontier.
	Frontier []map[int]bool
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func (in *Info) Dominates(a, b int) bool {
	return a == b || in.StrictDom[b][a]
}

// StrictlyDominates reports whether a strictly dominates b.
func (in *Info) StrictlyDominates(a, b int) bool {
	return in.StrictDom[b][a]
}

func newInfo(n int) *Info {
	in := &Info{
		StrictDom: make([]map[int]bool, n),
		IDom:      make([]int, n),
		Children:  make([][]int, n),
		Frontier:  make([]map[int]bool, n),
	}
	for i := range in.StrictDom {
		in.StrictDom[i] = make(map[int]bool)
		in.Frontier[i] = make(map[int]bool)
		in.IDom[i] = -1
	}
	return in
}

func buildChildrenAndFrontier(cfg *cfgir.CFG, in *Info) {
	for b := 1; b < cfg.NumBlocks(); b++ {
		if in.IDom[b] >= 0 {
			in.Children[in.IDom[b]] = append(in.Children[in.IDom[b]], b)
		}
	}
	// Dominance frontier, spec.md §4.2: for every block with more than one
	// predecessor, walk from each predecessor up the idom chain, adding the
	// join block to DF of every node visited, stopping at idom(join).
	for _, b := range cfg.Blocks {
		if len(b.Preds) < 2 {
			continue
		}
		for _, p := range b.Preds {
			runner := p
			for runner != in.IDom[b.Index] && runner != -1 {
				in.Frontier[runner][b.Index] = true
				runner = in.IDom[runner]
			}
		}
	}
}
