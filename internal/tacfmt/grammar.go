package tacfmt

import "github.com/alecthomas/participle/v2/lexer"

// Program is the root of one parsed file: zero or more procedures.
type Program struct {
	Pos   lexer.Position
	Procs []*Proc `@@*`
}

// Proc is `proc <name> { <block>* }`.
type Proc struct {
	Pos    lexer.Position
	Name   string   `"proc" @Ident "{"`
	Blocks []*Block `@@* "}"`
}

// Block is one label and the straight-line statements following it, up to
// the next label or the procedure's closing brace.
type Block struct {
	Pos   lexer.Position
	Label string  `@Ident ":"`
	Stmts []*Stmt `@@*`
}

// Stmt is the surface statement sum type. Order matters: every
// keyword-led alternative must be tried before Assign, since "if", "goto",
// "return", "call", "push", and "cast" all lex as a plain Ident token and
// are only distinguished from an assignment's LHS by the literal keyword
// match succeeding first.
type Stmt struct {
	Pos    lexer.Position
	If     *IfStmt     `( @@`
	Goto   *GotoStmt   `| @@`
	Return *ReturnStmt `| @@`
	Call   *CallStmt   `| @@`
	Push   *PushStmt   `| @@`
	Cast   *CastStmt   `| @@`
	Assign *AssignStmt `| @@ )`
}

// AssignStmt is `x = operand` or `x = operand op operand`, where op is
// resolved to either a BinOp or a RelOp by the token it captures
// (convert.go's binOps and relOps tables decide which).
type AssignStmt struct {
	Pos   lexer.Position
	LHS   string   `@Ident "="`
	Left  Operand  `@@`
	Op    *string  `( @("+" | "-" | "*" | "/" | "%" | "^" | "<=" | ">=" | "==" | "!=" | "<" | ">")`
	Right *Operand `  @@ )?`
}

// IfStmt is `if operand [rel operand] goto label`; an operand alone is
// truthiness on a bool-typed value.
type IfStmt struct {
	Pos    lexer.Position
	Left   Operand  `"if" @@`
	Op     *string  `( @("<=" | ">=" | "==" | "!=" | "<" | ">")`
	Right  *Operand `  @@ )?`
	Target string   `"goto" @Ident`
}

// GotoStmt is an unconditional jump.
type GotoStmt struct {
	Pos    lexer.Position
	Target string `"goto" @Ident`
}

// ReturnStmt optionally carries a value.
type ReturnStmt struct {
	Pos     lexer.Position
	Operand *Operand `"return" @@?`
}

// CallStmt names a callee by its fixed arity, matching ir.CallStmt.
type CallStmt struct {
	Pos   lexer.Position
	Name  string `"call" @Ident`
	Arity int    `"/" @Int`
}

// PushStmt stages one operand for an imminent CallStmt's argument passing.
type PushStmt struct {
	Pos     lexer.Position
	Operand Operand `"push" @@`
}

// CastStmt reinterprets an operand's value as Type in place; Type is one
// of i8/i16/i32/i64, f32/f64, or bool (convert.go's typeNames).
type CastStmt struct {
	Pos  lexer.Position
	Name string `"cast" @Ident`
	Type string `"as" @Ident`
}

// Operand is an identifier (a variable, or the literals true/false) or a
// numeric literal. Every identifier is pre-SSA: tacfmt is the textual
// front end, not the AST-to-TAC lowering stage, so it never emits a
// versioned or compiler-generated temporary (spec.md §6 leaves that stage
// to an external collaborator).
type Operand struct {
	Pos   lexer.Position
	Ident *string  `( @Ident`
	Flt   *float64 `| @Float`
	Int   *int64   `| @Int )`
}
