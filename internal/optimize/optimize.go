// Package optimize implements C5, the worklist-driven SSA optimizer of
// spec.md §4.4: constant-φ folding, constant-copy folding, copy
// propagation, constant folding, constant-branch elimination, and a final
// dead-code elimination pass. Grounded on kanso's
// internal/ir/optimizations.go OptimizationPass/OptimizationPipeline
// structure (a named pass iterated to fixpoint) and on original_source's
// src/compiler/optimization/{constant_optimization,dead_code}.rs for the
// per-rule semantics.
package optimize

import (
	"math"

	"ssac/internal/cfgir"
	"ssac/internal/ir"
	"ssac/internal/value"
)

// Config carries the tunables the fold rules need from the driver, per
// spec.md §4.4's floating-point equality note.
type Config struct {
	Epsilon value.Epsilon
}

// Optimize mutates cfg in place to a fixpoint, then runs dead-code
// elimination.
func Optimize(cfg *cfgir.CFG, conf Config) {
	wl := newQueue(cfg.AllStatementsInOrder())

	for {
		id, ok := wl.pop()
		if !ok {
			break
		}
		stmt := cfg.Statement(id)
		if stmt == nil {
			continue
		}

		if tac, isTac := stmt.(*ir.TacStmt); isTac {
			if applyTac(cfg, wl, id, tac, conf.Epsilon) {
				continue
			}
		}
		if cj, isCJump := stmt.(*ir.CJumpStmt); isCJump {
			applyCJump(cfg, wl, id, cj, conf.Epsilon)
		}
	}

	deadCodeEliminate(cfg)
}

// applyTac applies rules 1-4 to a single Tac statement. It returns true if
// the worklist should move on (the statement was removed or re-enqueued by
// a fold), false if nothing matched.
func applyTac(cfg *cfgir.CFG, wl *queue, id ir.StatementID, tac *ir.TacStmt, eps value.Epsilon) bool {
	switch rhs := tac.RHS.(type) {
	case *ir.PhiExpr:
		if c, ok := constantPhi(rhs); ok {
			foldDefToConstant(cfg, wl, id, tac.LHS, c)
			return true
		}
	case *ir.OperExpr:
		if rhs.Operand.Kind == ir.OperandValue {
			foldDefToConstant(cfg, wl, id, tac.LHS, rhs.Operand.Value)
			return true
		}
		if rhs.Operand.IsSSA() {
			propagateDef(cfg, wl, id, tac.LHS, rhs.Operand)
			return true
		}
	case *ir.BinaryExpr:
		if folded, ok := evalBinary(rhs.Op, rhs.Left, rhs.Right); ok {
			tac.RHS = &ir.OperExpr{Operand: ir.Val(folded)}
			wl.push(id)
			return true
		}
	case *ir.LogicalExpr:
		if folded, ok := evalLogical(rhs.Rel, rhs.Left, rhs.Right, eps); ok {
			tac.RHS = &ir.OperExpr{Operand: ir.Val(folded)}
			wl.push(id)
			return true
		}
	}
	return false
}

func applyCJump(cfg *cfgir.CFG, wl *queue, id ir.StatementID, cj *ir.CJumpStmt, eps value.Epsilon) {
	switch cond := cj.Cond.(type) {
	case *ir.OperExpr:
		if cond.Operand.Kind == ir.OperandValue {
			if b, ok := cond.Operand.Value.AsBool(); ok {
				eliminateBranch(cfg, wl, id, cj, b)
			}
		}
	case *ir.LogicalExpr:
		if folded, ok := evalLogical(cond.Rel, cond.Left, cond.Right, eps); ok {
			cj.Cond = &ir.OperExpr{Operand: ir.Val(folded)}
			wl.push(id)
		}
	}
}

// constantPhi reports whether every φ argument is the identical literal.
func constantPhi(phi *ir.PhiExpr) (value.Value, bool) {
	if len(phi.Args) == 0 {
		return value.Value{}, false
	}
	first := phi.Args[0].Operand
	if first.Kind != ir.OperandValue {
		return value.Value{}, false
	}
	for _, a := range phi.Args[1:] {
		if a.Operand.Kind != ir.OperandValue || a.Operand.Value != first.Value {
			return value.Value{}, false
		}
	}
	return first.Value, true
}

// foldDefToConstant and propagateDef implement rules 1-3: substitute at
// every use, then remove the defining statement. Users are snapshotted
// before the substitution so the worklist re-examines exactly the
// statements the rewrite touched, per spec.md §4.4's "each substitution
// enqueues every reachable user" termination argument.
func foldDefToConstant(cfg *cfgir.CFG, wl *queue, id ir.StatementID, lhs ir.Operand, c value.Value) {
	users := cfg.StatementsUsing(lhs)
	cfg.ReplaceAll(lhs, ir.Val(c))
	cfg.Remove(id)
	for _, u := range users {
		wl.push(u)
	}
}

func propagateDef(cfg *cfgir.CFG, wl *queue, id ir.StatementID, lhs, w ir.Operand) {
	users := cfg.StatementsUsing(lhs)
	cfg.ReplaceAll(lhs, w)
	cfg.Remove(id)
	for _, u := range users {
		wl.push(u)
	}
}

// evalBinary folds an arithmetic BinaryExpr per spec.md §4.4's numeric
// semantics: two's-complement modular integers, IEEE-754 floats, Euclidean
// remainder. A zero divisor is ArithmeticOverflow (spec.md §7): non-fatal,
// the fold is simply skipped.
func evalBinary(op ir.BinOp, l, r ir.Operand) (value.Value, bool) {
	if l.Kind != ir.OperandValue || r.Kind != ir.OperandValue {
		return value.Value{}, false
	}
	a, b := l.Value, r.Value

	if at, ok := a.Type.(value.IntType); ok {
		bt, ok2 := b.Type.(value.IntType)
		ai, aok := a.AsInt()
		bi, bok := b.AsInt()
		if !ok2 || bt.Bits != at.Bits || !aok || !bok {
			return value.Value{}, false
		}
		switch op {
		case ir.Add:
			return value.Int(at.Bits, ai+bi), true
		case ir.Sub:
			return value.Int(at.Bits, ai-bi), true
		case ir.Mul:
			return value.Int(at.Bits, ai*bi), true
		case ir.Div:
			if bi == 0 {
				return value.Value{}, false
			}
			return value.Int(at.Bits, ai/bi), true
		case ir.Mod:
			if bi == 0 {
				return value.Value{}, false
			}
			return value.Int(at.Bits, euclidMod(ai, bi)), true
		case ir.Pow:
			return value.Int(at.Bits, intPow(ai, bi)), true
		}
		return value.Value{}, false
	}

	if at, ok := a.Type.(value.FloatType); ok {
		bt, ok2 := b.Type.(value.FloatType)
		af, aok := a.AsFloat()
		bf, bok := b.AsFloat()
		if !ok2 || bt.Bits != at.Bits || !aok || !bok {
			return value.Value{}, false
		}
		switch op {
		case ir.Add:
			return value.Float(at.Bits, af+bf), true
		case ir.Sub:
			return value.Float(at.Bits, af-bf), true
		case ir.Mul:
			return value.Float(at.Bits, af*bf), true
		case ir.Div:
			if bf == 0 {
				return value.Value{}, false
			}
			return value.Float(at.Bits, af/bf), true
		case ir.Mod:
			if bf == 0 {
				return value.Value{}, false
			}
			m := math.Mod(af, bf)
			if m < 0 {
				m += math.Abs(bf)
			}
			return value.Float(at.Bits, m), true
		case ir.Pow:
			return value.Float(at.Bits, math.Pow(af, bf)), true
		}
	}
	return value.Value{}, false
}

func euclidMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		if b < 0 {
			m -= b
		} else {
			m += b
		}
	}
	return m
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	var result int64 = 1
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// evalLogical folds a relational LogicalExpr to a Bool literal. Equality
// honors the epsilon-or-bit-exact rule of spec.md §4.4/§9; ordering
// comparisons are numeric only.
func evalLogical(op ir.RelOp, l, r ir.Operand, eps value.Epsilon) (value.Value, bool) {
	if l.Kind != ir.OperandValue || r.Kind != ir.OperandValue {
		return value.Value{}, false
	}
	a, b := l.Value, r.Value

	switch op {
	case ir.EQ, ir.NEQ:
		eq, ok := value.Equal(a, b, eps)
		if !ok {
			return value.Value{}, false
		}
		if op == ir.NEQ {
			eq = !eq
		}
		return value.Bool(eq), true
	default:
		if ai, aok := a.AsInt(); aok {
			bi, bok := b.AsInt()
			if !bok {
				return value.Value{}, false
			}
			return value.Bool(compareOrdered(op, float64(ai), float64(bi))), true
		}
		if af, aok := a.AsFloat(); aok {
			bf, bok := b.AsFloat()
			if !bok {
				return value.Value{}, false
			}
			return value.Bool(compareOrdered(op, af, bf)), true
		}
		return value.Value{}, false
	}
}

func compareOrdered(op ir.RelOp, a, b float64) bool {
	switch op {
	case ir.LT:
		return a < b
	case ir.LTE:
		return a <= b
	case ir.GT:
		return a > b
	case ir.GTE:
		return a >= b
	default:
		return false
	}
}

// eliminateBranch implements rule 5: drop the never-taken edge, collapse
// the CJump to a plain Jump, and recursively prune any block whose
// predecessor set becomes empty, stripping the corresponding φ argument
// slot in every surviving successor (spec.md §4.4 rule 5).
func eliminateBranch(cfg *cfgir.CFG, wl *queue, id ir.StatementID, cj *ir.CJumpStmt, taken bool) {
	b, ok := blockOf(cfg, id)
	if !ok {
		return
	}
	targetIdx, ok := blockByLabel(cfg, cj.Target)
	if !ok {
		return
	}
	fallIdx := b + 1
	if fallIdx >= cfg.NumBlocks() {
		return
	}

	var removedIdx int
	var keptLabel ir.Label
	if taken {
		removedIdx = fallIdx
		keptLabel = cj.Target
	} else {
		removedIdx = targetIdx
		keptLabel = cfg.Block(fallIdx).Label
	}

	cfgir.RemoveBlockEdge(cfg, b, removedIdx)
	cfg.SetStatement(id, &ir.JumpStmt{Target: keptLabel})
	pruneIfDead(cfg, wl, removedIdx)
}

func pruneIfDead(cfg *cfgir.CFG, wl *queue, b int) {
	if b == 0 {
		return
	}
	block := cfg.Block(b)
	if len(block.Preds) > 0 {
		return
	}
	succs := append([]int(nil), block.Succs...)
	for _, s := range succs {
		if j := predIndex(cfg.Block(s), b); j >= 0 {
			stripPhiArg(cfg, wl, s, j)
		}
		cfgir.RemoveBlockEdge(cfg, b, s)
		pruneIfDead(cfg, wl, s)
	}
}

// stripPhiArg removes argument slot argIdx from every φ in block succIdx.
// If that leaves exactly one argument, the φ is rewritten to a plain copy
// and re-enqueued (spec.md §4.4 rule 5, second sentence).
func stripPhiArg(cfg *cfgir.CFG, wl *queue, succIdx, argIdx int) {
	block := cfg.Block(succIdx)
	for _, sid := range append([]ir.StatementID(nil), block.Stmts...) {
		tac, ok := cfg.Statement(sid).(*ir.TacStmt)
		if !ok {
			continue
		}
		phi, ok := tac.RHS.(*ir.PhiExpr)
		if !ok || argIdx >= len(phi.Args) {
			continue
		}
		phi.Args = append(phi.Args[:argIdx], phi.Args[argIdx+1:]...)
		if len(phi.Args) == 1 {
			tac.RHS = &ir.OperExpr{Operand: phi.Args[0].Operand}
			wl.push(sid)
		}
	}
}

func blockOf(cfg *cfgir.CFG, id ir.StatementID) (int, bool) {
	for i := 0; i < cfg.NumBlocks(); i++ {
		if e := cfg.Block(i).Exit; e != nil && *e == id {
			return i, true
		}
	}
	return 0, false
}

func blockByLabel(cfg *cfgir.CFG, l ir.Label) (int, bool) {
	for i := 0; i < cfg.NumBlocks(); i++ {
		if cfg.Block(i).Label == l {
			return i, true
		}
	}
	return 0, false
}

func predIndex(block *cfgir.BasicBlock, pred int) int {
	for i, p := range block.Preds {
		if p == pred {
			return i
		}
	}
	return -1
}

// deadCodeEliminate implements the final pass of spec.md §4.4: repeatedly
// remove any statement whose sole defined operand has no remaining uses
// and whose side-effect set is empty.
func deadCodeEliminate(cfg *cfgir.CFG) {
	changed := true
	for changed {
		changed = false
		for _, id := range cfg.AllStatementsInOrder() {
			stmt := cfg.Statement(id)
			if stmt == nil || stmt.HasSideEffects() {
				continue
			}
			def, ok := stmt.Defines()
			if !ok {
				continue
			}
			if len(cfg.StatementsUsing(def)) == 0 {
				cfg.Remove(id)
				changed = true
			}
		}
	}
}
