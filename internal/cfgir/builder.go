package cfgir

import (
	cerrors "ssac/internal/errors"
	"ssac/internal/ir"
)

const passName = "cfg-builder"

// Build implements C2 (spec.md §4.1): it partitions a flat TAC statement
// sequence into basic blocks and wires the successor/predecessor edges.
func Build(stmts []ir.Statement) (*CFG, error) {
	if len(stmts) == 0 {
		return nil, cerrors.New(passName, cerrors.MalformedInput, "empty TAC input")
	}
	entryLabel, ok := stmts[0].(*ir.LabelStmt)
	if !ok {
		return nil, cerrors.New(passName, cerrors.MalformedInput, "first statement is not a Label")
	}

	cfg := New()
	cfg.Entry = entryLabel.Label
	cfg.LabelAlloc = ir.NewLabelAllocator(highestMarker(stmts))

	type rawBlock struct {
		label   ir.Label
		labelID ir.StatementID
		body    []ir.StatementID
		exit    *ir.StatementID
	}

	var blocks []*rawBlock
	var cur *rawBlock

	closeWithFallthrough := func(next ir.Label) {
		id := cfg.AddStatement(&ir.JumpStmt{Target: next})
		cur.exit = &id
		blocks = append(blocks, cur)
		cur = nil
	}

	// openFresh starts a block under a synthesized marker label, for
	// statements that follow a Jump/CJump without a Label of their own.
	openFresh := func() {
		l := cfg.LabelAlloc.Fresh()
		id := cfg.AddStatement(&ir.LabelStmt{Label: l})
		cur = &rawBlock{label: l, labelID: id}
	}

	for _, st := range stmts {
		switch s := st.(type) {
		case *ir.LabelStmt:
			if cur != nil {
				closeWithFallthrough(s.Label)
			}
			id := cfg.AddStatement(st)
			cur = &rawBlock{label: s.Label, labelID: id}
		case *ir.JumpStmt, *ir.CJumpStmt:
			if cur == nil {
				openFresh()
			}
			id := cfg.AddStatement(st)
			cur.exit = &id
			blocks = append(blocks, cur)
			cur = nil
		default:
			if cur == nil {
				openFresh()
			}
			id := cfg.AddStatement(st)
			cur.body = append(cur.body, id)
		}
	}

	if cur != nil && len(cur.body) > 0 {
		// A trailing block that ends in Return has no successor: it is
		// kept as the last block with a nil exit.
		if _, isRet := cfg.Statement(cur.body[len(cur.body)-1]).(*ir.ReturnStmt); isRet {
			blocks = append(blocks, cur)
			cur = nil
		}
	}

	if cur != nil {
		// Trailing block has no explicit transfer: synthesize a fresh
		// marker label and an empty landing-pad block, per spec.md §4.1
		// step 2.
		end := cfg.LabelAlloc.Fresh()
		closeWithFallthrough(end)
		endLabelID := cfg.AddStatement(&ir.LabelStmt{Label: end})
		blocks = append(blocks, &rawBlock{label: end, labelID: endLabelID})
	}

	labelIndex := make(map[ir.Label]int, len(blocks))
	for i, b := range blocks {
		labelIndex[b.label] = i
	}

	cfg.Blocks = make([]*BasicBlock, len(blocks))
	for i, b := range blocks {
		cfg.Blocks[i] = &BasicBlock{
			Index:   i,
			Label:   b.label,
			LabelID: b.labelID,
			Stmts:   b.body,
			Exit:    b.exit,
		}
	}

	for i, b := range blocks {
		if b.exit == nil {
			continue
		}
		switch exit := cfg.Statement(*b.exit).(type) {
		case *ir.JumpStmt:
			target, ok := labelIndex[exit.Target]
			if !ok {
				return nil, cerrors.At(passName, cerrors.MalformedInput, i, int(*b.exit), "jump to undefined label %s", exit.Target)
			}
			addEdge(cfg, i, target)
		case *ir.CJumpStmt:
			target, ok := labelIndex[exit.Target]
			if !ok {
				return nil, cerrors.At(passName, cerrors.MalformedInput, i, int(*b.exit), "conditional jump to undefined label %s", exit.Target)
			}
			if i+1 >= len(cfg.Blocks) {
				return nil, cerrors.At(passName, cerrors.MalformedInput, i, int(*b.exit), "conditional jump has no fall-through block")
			}
			addEdge(cfg, i, i+1)
			addEdge(cfg, i, target)
		}
	}

	return cfg, nil
}

func addEdge(cfg *CFG, from, to int) {
	for _, s := range cfg.Blocks[from].Succs {
		if s == to {
			return
		}
	}
	cfg.Blocks[from].Succs = append(cfg.Blocks[from].Succs, to)
	cfg.Blocks[to].Preds = append(cfg.Blocks[to].Preds, from)
}

func highestMarker(stmts []ir.Statement) int {
	max := -1
	visit := func(l ir.Label) {
		if l.Kind == ir.LabelMarker && l.N > max {
			max = l.N
		}
	}
	for _, st := range stmts {
		switch s := st.(type) {
		case *ir.LabelStmt:
			visit(s.Label)
		case *ir.JumpStmt:
			visit(s.Target)
		case *ir.CJumpStmt:
			visit(s.Target)
		}
	}
	return max
}
