package dominance

import "ssac/internal/cfgir"

// ComputeLengauerTarjan implements spec.md §4.2's speed-oriented algorithm,
// grounded on original_source's src/compiler/dominator/mod.rs: depth-first
// numbering from the entry, semidominator computation with path
// compression (ancestor-with-lowest-semi), and a final pass resolving idom
// via samedom.
func ComputeLengauerTarjan(cfg *cfgir.CFG) *Info {
	n := cfg.NumBlocks()
	in := newInfo(n)
	if n == 0 {
		return in
	}

	dfnum := make([]int, n)
	for i := range dfnum {
		dfnum[i] = -1
	}
	vertex := make([]int, n)
	parent := make([]int, n)
	semi := make([]int, n)
	ancestor := make([]int, n)
	best := make([]int, n)
	samedom := make([]int, n)
	idom := make([]int, n)
	bucket := make([]map[int]bool, n)
	for i := 0; i < n; i++ {
		parent[i] = -1
		semi[i] = -1
		ancestor[i] = -1
		best[i] = -1
		samedom[i] = -1
		idom[i] = -1
		bucket[i] = make(map[int]bool)
	}

	count := 0
	var dfs func(p, node int)
	dfs = func(p, node int) {
		if dfnum[node] != -1 {
			return
		}
		dfnum[node] = count
		vertex[count] = node
		parent[node] = p
		count++
		for _, succ := range cfg.Block(node).Succs {
			dfs(node, succ)
		}
	}
	dfs(-1, 0)

	link := func(p, node int) {
		ancestor[node] = p
		best[node] = node
	}

	var ancestorWithLowestSemi func(v int) int
	ancestorWithLowestSemi = func(v int) int {
		if ancestor[v] == -1 {
			return best[v]
		}
		if ancestor[ancestor[v]] != -1 {
			b := ancestorWithLowestSemi(ancestor[v])
			ancestor[v] = ancestor[ancestor[v]]
			if dfnum[semi[b]] < dfnum[semi[best[v]]] {
				best[v] = b
			}
		}
		return best[v]
	}

	for i := count - 1; i >= 1; i-- {
		node := vertex[i]
		p := parent[node]
		s := p

		for _, v := range cfg.Block(node).Preds {
			if dfnum[v] == -1 {
				continue // unreachable predecessor, never visited by dfs
			}
			var sPrime int
			if dfnum[v] <= dfnum[node] {
				sPrime = v
			} else {
				lowest := ancestorWithLowestSemi(v)
				sPrime = semi[lowest]
			}
			if dfnum[sPrime] < dfnum[s] {
				s = sPrime
			}
		}

		semi[node] = s
		bucket[s][node] = true
		link(p, node)

		for v := range bucket[p] {
			y := ancestorWithLowestSemi(v)
			if semi[y] == semi[v] {
				idom[v] = p
			} else {
				samedom[v] = y
			}
		}
		bucket[p] = make(map[int]bool)
	}

	for i := 1; i < count; i++ {
		node := vertex[i]
		if samedom[node] != -1 {
			idom[node] = idom[samedom[node]]
		}
	}

	in.IDom[0] = -1
	for b := 1; b < n; b++ {
		if dfnum[b] == -1 {
			// Unreachable block (spec.md §4.1 step 4): left with no
			// dominator information; it carries no idom/frontier.
			in.IDom[b] = -1
			continue
		}
		in.IDom[b] = idom[b]
	}

	computeStrictDom(in)
	buildChildrenAndFrontier(cfg, in)
	return in
}

// computeStrictDom derives each block's full strict-dominator set by
// walking the idom chain, so Dominates/StrictlyDominates answer in O(depth)
// without re-deriving the chain each call.
func computeStrictDom(in *Info) {
	for b := range in.IDom {
		cur := in.IDom[b]
		for cur != -1 {
			in.StrictDom[b][cur] = true
			cur = in.IDom[cur]
		}
	}
}
