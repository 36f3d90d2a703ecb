package tacfmt

import (
	"fmt"

	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/value"
)

// Procedure is one parsed procedure, ready to hand to the pipeline package
// once the caller decides which procedure is the module's entry point —
// a decision tacfmt leaves to its caller, since the textual syntax has no
// notion of an entry marker of its own.
type Procedure struct {
	Name  string
	Stmts []ir.Statement
}

var binOps = map[string]ir.BinOp{
	"+": ir.Add, "-": ir.Sub, "*": ir.Mul, "/": ir.Div, "%": ir.Mod, "^": ir.Pow,
}

var relOps = map[string]ir.RelOp{
	"<": ir.LT, "<=": ir.LTE, ">": ir.GT, ">=": ir.GTE, "==": ir.EQ, "!=": ir.NEQ,
}

var typeNames = map[string]value.Type{
	"i8": value.IntType{Bits: 8}, "i16": value.IntType{Bits: 16},
	"i32": value.IntType{Bits: 32}, "i64": value.IntType{Bits: 64},
	"f32": value.FloatType{Bits: 32}, "f64": value.FloatType{Bits: 64},
	"bool": value.BoolType{},
}

// Convert lowers a parsed Program into one tacfmt.Procedure per proc
// block, resolving every goto/if target against that procedure's own
// labels. Every identifier interns into sym using the shared interner a
// caller threads through the whole pipeline run (spec.md §5).
func Convert(prog *Program, sym *interner.Interner) ([]Procedure, error) {
	out := make([]Procedure, 0, len(prog.Procs))
	for _, p := range prog.Procs {
		proc, err := convertProc(p, sym)
		if err != nil {
			return nil, fmt.Errorf("tacfmt: procedure %q: %w", p.Name, err)
		}
		out = append(out, proc)
	}
	return out, nil
}

func convertProc(p *Proc, sym *interner.Interner) (Procedure, error) {
	labels := make(map[string]ir.Label, len(p.Blocks))
	for _, b := range p.Blocks {
		labels[b.Label] = ir.Named(sym.Intern(p.Name + "::" + b.Label))
	}
	resolve := func(name string) (ir.Label, error) {
		l, ok := labels[name]
		if !ok {
			return ir.Label{}, fmt.Errorf("undefined label %q", name)
		}
		return l, nil
	}

	var stmts []ir.Statement
	for _, b := range p.Blocks {
		stmts = append(stmts, &ir.LabelStmt{Label: labels[b.Label]})
		for _, s := range b.Stmts {
			stmt, err := convertStmt(s, sym, resolve)
			if err != nil {
				return Procedure{}, err
			}
			stmts = append(stmts, stmt)
		}
	}
	return Procedure{Name: p.Name, Stmts: stmts}, nil
}

func convertStmt(s *Stmt, sym *interner.Interner, resolve func(string) (ir.Label, error)) (ir.Statement, error) {
	switch {
	case s.If != nil:
		return convertIf(s.If, sym, resolve)
	case s.Goto != nil:
		target, err := resolve(s.Goto.Target)
		if err != nil {
			return nil, err
		}
		return &ir.JumpStmt{Target: target}, nil
	case s.Return != nil:
		if s.Return.Operand == nil {
			return &ir.ReturnStmt{}, nil
		}
		op, err := convertOperand(s.Return.Operand, sym)
		if err != nil {
			return nil, err
		}
		return &ir.ReturnStmt{Operand: &op}, nil
	case s.Call != nil:
		return &ir.CallStmt{Sym: sym.Intern(s.Call.Name), Arity: s.Call.Arity}, nil
	case s.Push != nil:
		op, err := convertOperand(&s.Push.Operand, sym)
		if err != nil {
			return nil, err
		}
		return &ir.StackPushStmt{Operand: op}, nil
	case s.Cast != nil:
		t, ok := typeNames[s.Cast.Type]
		if !ok {
			return nil, fmt.Errorf("unknown cast type %q", s.Cast.Type)
		}
		return &ir.CastAsStmt{Operand: ir.SSA(ir.SSAVar, sym.Intern(s.Cast.Name), 0), Type: t}, nil
	case s.Assign != nil:
		return convertAssign(s.Assign, sym)
	default:
		return nil, fmt.Errorf("empty statement")
	}
}

func convertAssign(a *AssignStmt, sym *interner.Interner) (ir.Statement, error) {
	lhs := ir.SSA(ir.SSAVar, sym.Intern(a.LHS), 0)
	left, err := convertOperand(&a.Left, sym)
	if err != nil {
		return nil, err
	}
	if a.Op == nil {
		return &ir.TacStmt{LHS: lhs, RHS: &ir.OperExpr{Operand: left}}, nil
	}
	right, err := convertOperand(a.Right, sym)
	if err != nil {
		return nil, err
	}
	if op, ok := binOps[*a.Op]; ok {
		return &ir.TacStmt{LHS: lhs, RHS: &ir.BinaryExpr{Left: left, Op: op, Right: right}}, nil
	}
	if rel, ok := relOps[*a.Op]; ok {
		return &ir.TacStmt{LHS: lhs, RHS: &ir.LogicalExpr{Left: left, Rel: rel, Right: right}}, nil
	}
	return nil, fmt.Errorf("unknown operator %q", *a.Op)
}

func convertIf(s *IfStmt, sym *interner.Interner, resolve func(string) (ir.Label, error)) (ir.Statement, error) {
	target, err := resolve(s.Target)
	if err != nil {
		return nil, err
	}
	left, err := convertOperand(&s.Left, sym)
	if err != nil {
		return nil, err
	}
	if s.Op == nil {
		return &ir.CJumpStmt{Cond: &ir.OperExpr{Operand: left}, Target: target}, nil
	}
	right, err := convertOperand(s.Right, sym)
	if err != nil {
		return nil, err
	}
	rel, ok := relOps[*s.Op]
	if !ok {
		return nil, fmt.Errorf("unknown relational operator %q", *s.Op)
	}
	return &ir.CJumpStmt{Cond: &ir.LogicalExpr{Left: left, Rel: rel, Right: right}, Target: target}, nil
}

func convertOperand(o *Operand, sym *interner.Interner) (ir.Operand, error) {
	switch {
	case o.Ident != nil:
		switch *o.Ident {
		case "true":
			return ir.Val(value.Bool(true)), nil
		case "false":
			return ir.Val(value.Bool(false)), nil
		default:
			return ir.SSA(ir.SSAVar, sym.Intern(*o.Ident), 0), nil
		}
	case o.Flt != nil:
		return ir.Val(value.Float(64, *o.Flt)), nil
	case o.Int != nil:
		return ir.Val(value.Int(64, *o.Int)), nil
	default:
		return ir.Operand{}, fmt.Errorf("empty operand")
	}
}
