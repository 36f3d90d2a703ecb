package lower

import (
	"ssac/internal/cfgir"
	cerrors "ssac/internal/errors"
	"ssac/internal/ir"
)

const passName = "lower"

// LowerInto implements C8 (spec.md §4.7): it appends a fresh chunk to m for
// cfg — already destructed and register-allocated — and returns that
// chunk's index. Blocks are walked in index order; every Label becomes a
// marker instruction, every Tac becomes the matching arithmetic/move/cast
// instruction on its resolved operands, Call passes through unchanged, and
// every Jump/CJump target is resolved to a (chunk, instruction) position in
// a second pass once the whole chunk has been emitted. isEntry appends a
// trailing HLT, per spec.md §4.7's "halt at the end of the entry procedure".
func LowerInto(m *Module, cfg *cfgir.CFG, isEntry bool) (int, error) {
	chunkIndex := m.AddChunk()
	chunk := m.Chunks[chunkIndex]

	for bi, b := range cfg.Blocks {
		for _, id := range b.AllStatements() {
			if err := lowerOne(m, chunk, cfg.Statement(id), bi, int(id)); err != nil {
				return chunkIndex, err
			}
		}
	}

	if isEntry {
		chunk.add(&HltInsn{})
	}

	if err := resolveLabels(chunk, chunkIndex); err != nil {
		return chunkIndex, err
	}
	return chunkIndex, nil
}

func lowerOne(m *Module, chunk *Chunk, stmt ir.Statement, block, pos int) error {
	switch s := stmt.(type) {
	case *ir.LabelStmt:
		chunk.add(&LabelInsn{Of: s.Label})

	case *ir.TacStmt:
		out, err := convertOperand(m, s.LHS, block, pos)
		if err != nil {
			return err
		}
		switch rhs := s.RHS.(type) {
		case *ir.OperExpr:
			in, err := convertOperand(m, rhs.Operand, block, pos)
			if err != nil {
				return err
			}
			chunk.add(&MovInsn{Out: out, In: in})
		case *ir.BinaryExpr:
			a, err := convertOperand(m, rhs.Left, block, pos)
			if err != nil {
				return err
			}
			b, err := convertOperand(m, rhs.Right, block, pos)
			if err != nil {
				return err
			}
			chunk.add(&ArithInsn{Op: rhs.Op, Out: out, A: a, B: b})
		case *ir.LogicalExpr:
			a, err := convertOperand(m, rhs.Left, block, pos)
			if err != nil {
				return err
			}
			b, err := convertOperand(m, rhs.Right, block, pos)
			if err != nil {
				return err
			}
			chunk.add(&CmpInsn{Op: rhs.Rel, Out: out, A: a, B: b})
		case *ir.PhiExpr:
			return cerrors.At(passName, cerrors.InvariantViolation, block, pos, "phi survived to lowering")
		default:
			return cerrors.At(passName, cerrors.InvariantViolation, block, pos, "unrecognized Tac RHS %T", rhs)
		}

	case *ir.CastAsStmt:
		out, err := convertOperand(m, s.Operand, block, pos)
		if err != nil {
			return err
		}
		chunk.add(&CastInsn{Out: out, Type: s.Type})

	case *ir.StackPushStmt:
		in, err := convertOperand(m, s.Operand, block, pos)
		if err != nil {
			return err
		}
		chunk.add(&PushInsn{In: in})

	case *ir.CallStmt:
		// The caller-save convention is enforced here, not carried as IR:
		// StackPushAllReg/StackPopAllReg are instructions lowering emits
		// around every Call, never statements earlier passes produce.
		chunk.add(&PushAllRegInsn{})
		chunk.add(&CallInsn{Sym: s.Sym, Arity: s.Arity})
		chunk.add(&PopAllRegInsn{})

	case *ir.ReturnStmt:
		if s.Operand == nil {
			chunk.add(&ReturnInsn{In: Operand{Kind: OpNone}})
			return nil
		}
		in, err := convertOperand(m, *s.Operand, block, pos)
		if err != nil {
			return err
		}
		chunk.add(&ReturnInsn{In: in})

	case *ir.JumpStmt:
		chunk.add(&JumpInsn{Of: s.Target})

	case *ir.CJumpStmt:
		cond, ok := s.Cond.(*ir.OperExpr)
		if !ok {
			return cerrors.At(passName, cerrors.InvariantViolation, block, pos, "conditional jump condition is not a single operand")
		}
		in, err := convertOperand(m, cond.Operand, block, pos)
		if err != nil {
			return err
		}
		chunk.add(&BranchInsn{True: true, In: in, Of: s.Target})

	case *ir.ParallelCopy:
		return cerrors.At(passName, cerrors.InvariantViolation, block, pos, "parallel copy survived to lowering")

	default:
		return cerrors.At(passName, cerrors.InvariantViolation, block, pos, "unrecognized statement %T", stmt)
	}
	return nil
}

func convertOperand(m *Module, o ir.Operand, block, pos int) (Operand, error) {
	switch o.Kind {
	case ir.OperandRegister:
		return Operand{Kind: OpRegister, Index: o.Index}, nil
	case ir.OperandStackSlot:
		return Operand{Kind: OpStack, Index: o.Index}, nil
	case ir.OperandValue:
		return Operand{Kind: OpValue, Index: m.Values.Insert(o.Value)}, nil
	case ir.OperandStackPop:
		return Operand{Kind: OpStackPop}, nil
	case ir.OperandReturnValue:
		return Operand{Kind: OpRetVal}, nil
	default:
		return Operand{}, cerrors.At(passName, cerrors.InvariantViolation, block, pos, "SSA operand %s survived to lowering", o)
	}
}

// resolveLabels implements the second pass of spec.md §4.7: scan chunk for
// every LabelInsn to build a label → position table, then fill in every
// Jump/Branch's Target.
func resolveLabels(chunk *Chunk, chunkIndex int) error {
	positions := make(map[ir.Label]Position)
	for idx, insn := range chunk.Instructions {
		if l, ok := insn.(*LabelInsn); ok {
			positions[l.Of] = Position{Chunk: chunkIndex, Instr: idx}
		}
	}
	for _, insn := range chunk.Instructions {
		switch i := insn.(type) {
		case *JumpInsn:
			pos, ok := positions[i.Of]
			if !ok {
				return cerrors.New(passName, cerrors.InvariantViolation, "jump to unresolved label %s", i.Of)
			}
			i.Target = pos
		case *BranchInsn:
			pos, ok := positions[i.Of]
			if !ok {
				return cerrors.New(passName, cerrors.InvariantViolation, "branch to unresolved label %s", i.Of)
			}
			i.Target = pos
		}
	}
	return nil
}
