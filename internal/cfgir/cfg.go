// Package cfgir implements C2, the CFG builder of spec.md §4.1: it turns a
// flat TAC statement sequence into a control-flow graph honoring the
// BasicBlock invariants of §3. It also carries the CFG-provided scanning
// helpers (statements_using, replace_all) spec.md §5 requires, since the
// def/use indices are not incrementally maintained across passes.
package cfgir

import (
	"ssac/internal/graph"
	"ssac/internal/ir"
)

// BasicBlock is spec.md §3's BasicBlock: an entry label, an ordered list of
// interior statements, and an optional exit Jump/CJump, indexed by
// StatementID into the owning CFG's statement table (spec.md §9,
// "Ownership of statements").
type BasicBlock struct {
	Index int
	Label ir.Label
	// LabelID is the StatementID of this block's entry LabelStmt.
	LabelID ir.StatementID
	// Stmts holds interior, non-control-flow statement ids in order.
	Stmts []ir.StatementID
	// Exit is the block's terminating Jump or CJump. It is nil only for the
	// last block: either the trailing empty landing-pad block synthesized
	// when the input's last block has no explicit transfer, or a last block
	// that ends in Return.
	Exit *ir.StatementID

	Preds []int
	Succs []int
}

// AllStatements returns this block's statements in final emission order:
// the label, the interior statements, then the exit if present.
func (b *BasicBlock) AllStatements() []ir.StatementID {
	out := make([]ir.StatementID, 0, len(b.Stmts)+2)
	out = append(out, b.LabelID)
	out = append(out, b.Stmts...)
	if b.Exit != nil {
		out = append(out, *b.Exit)
	}
	return out
}

// CFG owns the block vector, the statement table, and the procedure's entry
// label, per spec.md §3. Dominance, SSA, and later passes attach their own
// analysis structures alongside a *CFG rather than embedding into it, to
// keep this package free of forward dependencies on later stages.
type CFG struct {
	Blocks     []*BasicBlock
	Entry      ir.Label
	LabelAlloc *ir.LabelAllocator

	statements map[ir.StatementID]ir.Statement
	nextID     ir.StatementID
}

// New creates an empty CFG. Build is the usual entry point; New is exposed
// for passes (like destruct) that synthesize additional blocks/statements
// on an existing CFG rather than constructing one from scratch.
func New() *CFG {
	return &CFG{statements: make(map[ir.StatementID]ir.Statement)}
}

// AddStatement inserts stmt into the statement table and returns its new,
// stable id.
func (c *CFG) AddStatement(stmt ir.Statement) ir.StatementID {
	id := c.nextID
	c.nextID++
	c.statements[id] = stmt
	return id
}

// Statement looks up a statement by id.
func (c *CFG) Statement(id ir.StatementID) ir.Statement { return c.statements[id] }

// SetStatement structurally replaces the statement stored at id (used when
// a pass rewrites a TacStmt into a different kind, e.g. folding a Phi to a
// plain copy).
func (c *CFG) SetStatement(id ir.StatementID, stmt ir.Statement) { c.statements[id] = stmt }

// Block returns the block at index i.
func (c *CFG) Block(i int) *BasicBlock { return c.Blocks[i] }

// NumBlocks reports the number of blocks, including any unreachable ones
// still represented per spec.md §4.1 step 4.
func (c *CFG) NumBlocks() int { return len(c.Blocks) }

// AllStatementsInOrder returns every live statement id across the whole
// CFG in block-index, then intra-block, order — the flat position space
// spec.md §4.6 builds live intervals over.
func (c *CFG) AllStatementsInOrder() []ir.StatementID {
	var out []ir.StatementID
	for _, b := range c.Blocks {
		out = append(out, b.AllStatements()...)
	}
	return out
}

// StatementsUsing scans every live statement for a use of o, per the
// CFG-provided helper spec.md §5 names explicitly (the use-site index is
// not incrementally maintained).
func (c *CFG) StatementsUsing(o ir.Operand) []ir.StatementID {
	var out []ir.StatementID
	for _, id := range c.AllStatementsInOrder() {
		for _, u := range c.statements[id].Uses() {
			if u == o {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// ReplaceAll rewrites every use of old to replacement across every live
// statement, per the CFG-provided helper spec.md §5 names explicitly.
func (c *CFG) ReplaceAll(old, replacement ir.Operand) {
	for _, id := range c.AllStatementsInOrder() {
		c.statements[id].ReplaceUse(old, replacement)
	}
}

// SubstituteOperand unions old into replacement everywhere old appears,
// at both definition and use sites. Used by destruct's φ-elimination
// (DESIGN.md): once CSSA construction guarantees an operand is written and
// read by exactly the statements a single φ-web touches, merging it into
// the web's representative name is a total, safe rewrite.
func (c *CFG) SubstituteOperand(old, replacement ir.Operand) {
	for _, id := range c.AllStatementsInOrder() {
		stmt := c.statements[id]
		stmt.ReplaceDef(old, replacement)
		stmt.ReplaceUse(old, replacement)
	}
}

// DefSites returns, for every distinct SSA operand symbol assigned anywhere
// in the CFG, the set of block indices containing a defining statement.
// Per spec.md §9's Open Question (a), this spans both Var and Temp
// symbols uniformly.
func (c *CFG) DefSites() map[ir.Operand]map[int]bool {
	sites := make(map[ir.Operand]map[int]bool)
	for _, b := range c.Blocks {
		for _, id := range b.AllStatements() {
			def, ok := c.statements[id].Defines()
			if !ok || !def.IsSSA() {
				continue
			}
			key := Operand0(def)
			if sites[key] == nil {
				sites[key] = make(map[int]bool)
			}
			sites[key][b.Index] = true
		}
	}
	return sites
}

// Operand0 normalizes an SSA operand to version 0, the canonical key used
// to group all versions of one symbol together (def-sites, version
// stacks, and so on all key on symbol identity, not a particular version).
func Operand0(o ir.Operand) ir.Operand {
	if o.IsSSA() {
		return o.WithVersion(0)
	}
	return o
}

// Remove unlinks id from whichever block's interior Stmts holds it. Labels
// and block exits are never removed this way; DCE and optimization only
// ever drop interior Tac statements. A no-op if id is not present (already
// removed, or never an interior statement).
func (c *CFG) Remove(id ir.StatementID) {
	for _, b := range c.Blocks {
		for i, s := range b.Stmts {
			if s == id {
				b.Stmts = append(b.Stmts[:i], b.Stmts[i+1:]...)
				return
			}
		}
	}
}

// InsertAfter inserts a new statement immediately after `after` in whichever
// block holds it, used by the SSA optimizer's constant-branch rule to
// rewrite a surviving phi to a plain copy in place (spec.md §4.4 rule 5).
func (c *CFG) InsertAfter(after ir.StatementID, stmt ir.Statement) ir.StatementID {
	id := c.AddStatement(stmt)
	for _, b := range c.Blocks {
		for i, s := range b.Stmts {
			if s == after {
				b.Stmts = append(b.Stmts[:i+1], append([]ir.StatementID{id}, b.Stmts[i+1:]...)...)
				return id
			}
		}
	}
	return id
}

// RemoveBlockEdge detaches the edge from→to on both ends, used when
// constant-branch elimination prunes a never-taken successor.
func RemoveBlockEdge(cfg *CFG, from, to int) {
	fb := cfg.Blocks[from]
	for i, s := range fb.Succs {
		if s == to {
			fb.Succs = append(fb.Succs[:i], fb.Succs[i+1:]...)
			break
		}
	}
	tb := cfg.Blocks[to]
	for i, p := range tb.Preds {
		if p == from {
			tb.Preds = append(tb.Preds[:i], tb.Preds[i+1:]...)
			break
		}
	}
}

// Unreachable returns the index of every block not reachable from block 0
// by a forward edge, in index order — spec.md §4.1 step 4's "any block
// unreachable from block 0 must still be represented" condition, surfaced
// as a query rather than enforced, since an unreachable block is valid
// input to later passes (it is pruned structurally only by DCE, per §9's
// Open Question (b)). Built via C1's graph.DirectedGraph rather than a
// bespoke walk, since this is exactly the predecessor/successor-query
// primitive that package exists for.
func (c *CFG) Unreachable() []int {
	g := graph.NewDirected[int]()
	for i := range c.Blocks {
		g.Insert(i)
	}
	for i, b := range c.Blocks {
		for _, s := range b.Succs {
			g.AddEdge(i, s)
		}
	}
	if len(c.Blocks) == 0 {
		return nil
	}
	reach := g.Reachable(0)
	var out []int
	for i := range c.Blocks {
		if !reach[i] {
			out = append(out, i)
		}
	}
	return out
}

// Successors and predecessors are exposed as plain index slices (spec.md
// §9, "Cyclic graphs" — edges are indices, never ownership handles).
func (b *BasicBlock) String() string { return "" }
