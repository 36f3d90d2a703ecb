package dominance

import "ssac/internal/cfgir"

// ComputeIterative implements the iterative set fixpoint algorithm of
// spec.md §4.2, grounded on original_source's
// src/compiler/dominator/algorithm.rs: dom(0) = {0}; dom(b) = all nodes for
// b != 0; iterate dom(b) = {b} ∪ ⋂ dom(p) over predecessors p until stable.
func ComputeIterative(cfg *cfgir.CFG) *Info {
	n := cfg.NumBlocks()
	in := newInfo(n)
	if n == 0 {
		return in
	}

	dom := make([]map[int]bool, n)
	all := make(map[int]bool, n)
	for i := 0; i < n; i++ {
		all[i] = true
	}
	dom[0] = map[int]bool{0: true}
	for b := 1; b < n; b++ {
		dom[b] = copySet(all)
	}

	changed := true
	for changed {
		changed = false
		for b := 1; b < n; b++ {
			var inter map[int]bool
			for i, p := range cfg.Block(b).Preds {
				if i == 0 {
					inter = copySet(dom[p])
				} else {
					inter = intersect(inter, dom[p])
				}
			}
			if inter == nil {
				inter = make(map[int]bool)
			}
			inter[b] = true
			if !setsEqual(inter, dom[b]) {
				dom[b] = inter
				changed = true
			}
		}
	}

	for b := 0; b < n; b++ {
		for d := range dom[b] {
			if d != b {
				in.StrictDom[b][d] = true
			}
		}
	}
	in.IDom[0] = -1
	for b := 1; b < n; b++ {
		in.IDom[b] = pickImmediate(b, in.StrictDom[b], in.StrictDom)
	}

	buildChildrenAndFrontier(cfg, in)
	return in
}

// pickImmediate returns the strict dominator of b that is itself strictly
// dominated by every other strict dominator of b (spec.md §4.2's
// definition of idom). allStrict[cand] is cand's own strict-dominator set,
// so "other dominates cand" reads as allStrict[cand][other].
func pickImmediate(b int, strict map[int]bool, allStrict []map[int]bool) int {
	for cand := range strict {
		isImmediate := true
		for other := range strict {
			if other != cand && !allStrict[cand][other] {
				isImmediate = false
				break
			}
		}
		if isImmediate {
			return cand
		}
	}
	return -1
}

func copySet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersect(a, b map[int]bool) map[int]bool {
	out := make(map[int]bool)
	for k := range a {
		if b[k] {
			out[k] = true
		}
	}
	return out
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
