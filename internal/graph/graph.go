// Package graph implements C1 (spec.md §2): directed and undirected graph
// primitives with predecessor/successor queries, grounded on
// original_source's src/graph/mod.rs DirectedGraph/UndirectedGraph. Node
// sets there are hash sets with no defined iteration order; here Insert and
// AddEdge instead preserve first-insertion order, since cfgir's block
// adjacency (C2) depends on a stable predecessor order to keep φ-argument
// positions correspondent to a fixed predecessor index.
package graph

// DirectedGraph is a directed graph over a comparable node type, carrying
// both successor and predecessor adjacency so neighbor queries in either
// direction are O(1) lookups rather than a scan.
type DirectedGraph[T comparable] struct {
	order []T
	nodes map[T]bool
	succ  map[T][]T
	pred  map[T][]T
}

// NewDirected creates an empty DirectedGraph.
func NewDirected[T comparable]() *DirectedGraph[T] {
	return &DirectedGraph[T]{
		nodes: make(map[T]bool),
		succ:  make(map[T][]T),
		pred:  make(map[T][]T),
	}
}

// Insert adds a node with no edges, a no-op if a is already present.
func (g *DirectedGraph[T]) Insert(a T) {
	if g.nodes[a] {
		return
	}
	g.nodes[a] = true
	g.order = append(g.order, a)
	g.succ[a] = nil
	g.pred[a] = nil
}

// Nodes returns every node in insertion order.
func (g *DirectedGraph[T]) Nodes() []T {
	return append([]T(nil), g.order...)
}

// Remove deletes a node and every edge touching it.
func (g *DirectedGraph[T]) Remove(a T) {
	if !g.nodes[a] {
		return
	}
	delete(g.nodes, a)
	for _, s := range g.succ[a] {
		g.pred[s] = removeFirst(g.pred[s], a)
	}
	for _, p := range g.pred[a] {
		g.succ[p] = removeFirst(g.succ[p], a)
	}
	delete(g.succ, a)
	delete(g.pred, a)
	for i, n := range g.order {
		if n == a {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// AddEdge records a→b. Both endpoints must already be present; matches
// original_source's add_edge, which silently no-ops on an unknown endpoint
// rather than inserting it implicitly.
func (g *DirectedGraph[T]) AddEdge(a, b T) {
	if !g.nodes[a] || !g.nodes[b] {
		return
	}
	if !contains(g.succ[a], b) {
		g.succ[a] = append(g.succ[a], b)
	}
	if !contains(g.pred[b], a) {
		g.pred[b] = append(g.pred[b], a)
	}
}

// RemoveEdge deletes a→b if present.
func (g *DirectedGraph[T]) RemoveEdge(a, b T) {
	g.succ[a] = removeFirst(g.succ[a], b)
	g.pred[b] = removeFirst(g.pred[b], a)
}

// Succ returns a's successors in the order edges were added.
func (g *DirectedGraph[T]) Succ(a T) []T { return append([]T(nil), g.succ[a]...) }

// Pred returns a's predecessors in the order edges were added.
func (g *DirectedGraph[T]) Pred(a T) []T { return append([]T(nil), g.pred[a]...) }

// Reachable returns every node reachable from start (including start
// itself) by a forward edge, via breadth-first traversal.
func (g *DirectedGraph[T]) Reachable(start T) map[T]bool {
	seen := map[T]bool{start: true}
	queue := []T{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, s := range g.succ[n] {
			if !seen[s] {
				seen[s] = true
				queue = append(queue, s)
			}
		}
	}
	return seen
}

func contains[T comparable](xs []T, x T) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func removeFirst[T comparable](xs []T, x T) []T {
	for i, v := range xs {
		if v == x {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}

// UndirectedGraph is an undirected graph: AddEdge always wires both
// directions, grounded on original_source's UndirectedGraph (used there for
// the interference graph a graph-coloring allocator would build — this
// compiler's C7 uses linear scan instead, per spec.md §4.6, so nothing in
// this module constructs one today; it is kept as the C1 primitive the
// pack's liveness_analysis/interference_graph.rs names).
type UndirectedGraph[T comparable] struct {
	order []T
	nodes map[T]bool
	edges map[T][]T
}

// NewUndirected creates an empty UndirectedGraph.
func NewUndirected[T comparable]() *UndirectedGraph[T] {
	return &UndirectedGraph[T]{nodes: make(map[T]bool), edges: make(map[T][]T)}
}

// Insert adds a node, a no-op if a is already present.
func (g *UndirectedGraph[T]) Insert(a T) {
	if g.nodes[a] {
		return
	}
	g.nodes[a] = true
	g.order = append(g.order, a)
	g.edges[a] = nil
}

// Nodes returns every node in insertion order.
func (g *UndirectedGraph[T]) Nodes() []T { return append([]T(nil), g.order...) }

// AddEdge records an edge between a and b in both directions.
func (g *UndirectedGraph[T]) AddEdge(a, b T) {
	if !contains(g.edges[a], b) {
		g.edges[a] = append(g.edges[a], b)
	}
	if !contains(g.edges[b], a) {
		g.edges[b] = append(g.edges[b], a)
	}
}

// Neighbors returns every node sharing an edge with a.
func (g *UndirectedGraph[T]) Neighbors(a T) []T { return append([]T(nil), g.edges[a]...) }
