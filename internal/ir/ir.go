// Package ir implements the data model of spec.md §3: operands,
// expressions, statements and labels that every later pass (cfgir,
// dominance, ssa, optimize, destruct, regalloc, lower) reads and rewrites in
// place; the basic-block/CFG shell itself is package cfgir. The split across
// files (ir.go, operand.go, expr.go, stmt.go, label.go) follows
// kanso/internal/ir's own file-per-
// concern layout; the tagged-variant style (a Kind enum plus exhaustive
// switches, for anything that must be a comparable map key) follows
// spec.md §9's "Tagged unions" design note.
package ir
