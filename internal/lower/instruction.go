// Package lower implements C8 (spec.md §4.7): it linearizes a destructed,
// register-allocated CFG into the final Module/Chunk/Instruction form of
// spec.md §6, resolving every label to a (chunk, instruction) position in a
// second pass — grounded on original_source/bytecode/{chunk,module}.rs's
// Chunk/Module shape, adapted from a Vec<Instruction> per chunk to the
// tagged-interface instruction style the rest of this module already uses
// for ir.Statement and ir.Expression.
package lower

import (
	"fmt"

	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

// OperandKind tags a lowered Instruction operand per spec.md §6: `out` is
// always Register or Stack; `in` may additionally be Value, StackPop, or
// RetVal.
type OperandKind int

const (
	OpNone OperandKind = iota
	OpRegister
	OpStack
	OpValue
	OpStackPop
	OpRetVal
)

// Operand is a resolved instruction operand: no SSA identity survives past
// C7, so this carries only a kind and a single index (register number,
// stack slot, or value-pool index).
type Operand struct {
	Kind  OperandKind
	Index int
}

func (o Operand) String() string {
	switch o.Kind {
	case OpRegister:
		return fmt.Sprintf("REG(%d)", o.Index)
	case OpStack:
		return fmt.Sprintf("STACK(%d)", o.Index)
	case OpValue:
		return fmt.Sprintf("VALUE(%d)", o.Index)
	case OpStackPop:
		return "STACKPOP"
	case OpRetVal:
		return "RETVAL"
	default:
		return "-"
	}
}

// Position names a resolved label: the chunk and instruction index a Jump,
// BT, or BF lands on.
type Position struct {
	Chunk int
	Instr int
}

// Instruction is spec.md §6's exhaustive mnemonic set, one variant per row
// of the table.
type Instruction interface {
	isInstruction()
	String() string
}

type LabelInsn struct{ Of ir.Label }
type MovInsn struct{ Out, In Operand }
type ArithInsn struct {
	Op      ir.BinOp
	Out, A, B Operand
}
type CmpInsn struct {
	Op      ir.RelOp
	Out, A, B Operand
}
type CastInsn struct {
	Out  Operand
	Type value.Type
}
type PushInsn struct{ In Operand }
type PopInsn struct{ Out Operand }
type PushAllRegInsn struct{}
type PopAllRegInsn struct{}

// JumpInsn, BranchInsn carry the unresolved target label until resolveLabels
// fills in Target; Of is left around for debugging/printing.
type JumpInsn struct {
	Of     ir.Label
	Target Position
}
type BranchInsn struct {
	True   bool // BT if true, BF if false
	In     Operand
	Of     ir.Label
	Target Position
}
type CallInsn struct {
	Sym   interner.ID
	Arity int
}
type ReturnInsn struct{ In Operand }
type NopInsn struct{}
type HltInsn struct{}

func (*LabelInsn) isInstruction()      {}
func (*MovInsn) isInstruction()        {}
func (*ArithInsn) isInstruction()      {}
func (*CmpInsn) isInstruction()        {}
func (*CastInsn) isInstruction()       {}
func (*PushInsn) isInstruction()       {}
func (*PopInsn) isInstruction()        {}
func (*PushAllRegInsn) isInstruction() {}
func (*PopAllRegInsn) isInstruction()  {}
func (*JumpInsn) isInstruction()       {}
func (*BranchInsn) isInstruction()     {}
func (*CallInsn) isInstruction()       {}
func (*ReturnInsn) isInstruction()     {}
func (*NopInsn) isInstruction()        {}
func (*HltInsn) isInstruction()        {}

func (i *LabelInsn) String() string { return fmt.Sprintf("LABEL %s", i.Of) }
func (i *MovInsn) String() string   { return fmt.Sprintf("MOV %s %s", i.Out, i.In) }
func (i *ArithInsn) String() string {
	return fmt.Sprintf("%s %s %s %s", mnemonicForBinOp(i.Op), i.Out, i.A, i.B)
}
func (i *CmpInsn) String() string {
	return fmt.Sprintf("%s %s %s %s", mnemonicForRelOp(i.Op), i.Out, i.A, i.B)
}
func (i *CastInsn) String() string      { return fmt.Sprintf("CAST %s %s", i.Out, i.Type) }
func (i *PushInsn) String() string      { return fmt.Sprintf("PUSH %s", i.In) }
func (i *PopInsn) String() string       { return fmt.Sprintf("POP %s", i.Out) }
func (*PushAllRegInsn) String() string  { return "PUSHA" }
func (*PopAllRegInsn) String() string   { return "POPA" }
func (i *JumpInsn) String() string      { return fmt.Sprintf("JUMP %s", i.Of) }
func (i *BranchInsn) String() string {
	if i.True {
		return fmt.Sprintf("BT %s %s", i.In, i.Of)
	}
	return fmt.Sprintf("BF %s %s", i.In, i.Of)
}
func (i *CallInsn) String() string  { return fmt.Sprintf("CALL %d/%d", i.Sym, i.Arity) }
func (i *ReturnInsn) String() string { return fmt.Sprintf("RETURN %s", i.In) }
func (*NopInsn) String() string      { return "NOP" }
func (*HltInsn) String() string      { return "HLT" }

func mnemonicForBinOp(op ir.BinOp) string {
	return [...]string{"ADD", "SUB", "MUL", "DIV", "MOD", "POW"}[op]
}

func mnemonicForRelOp(op ir.RelOp) string {
	return [...]string{"LT", "LTE", "GT", "GTE", "EQ", "NEQ"}[op]
}
