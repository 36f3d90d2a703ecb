// Package tacfmt is a minimal textual surface syntax for the three-address
// statement list spec.md §3 models as an already-resolved Vec<Stmt> — the
// scanning/parsing stage spec.md §6 and §1 place out of scope for the core
// compiler. It exists only so a CLI driver and this repo's own tests have a
// human-writable way to hand the pipeline a procedure, grounded on
// kanso/grammar's participle/v2 lexer and AST conventions rather than
// inventing a bespoke one.
package tacfmt

import "github.com/alecthomas/participle/v2/lexer"

// TacLexer tokenizes one procedure body. Rule order matters: Float must be
// tried before Int (both start with a digit). Ident and Operator never match
// the same text, so keywords such as "goto" lex as a single Ident.
var TacLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `#[^\n]*`, nil},
		{"Float", `[0-9]+\.[0-9]+`, nil},
		{"Int", `[0-9]+`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Operator", `(<=|>=|==|!=|[-+*/%^<>=])`, nil},
		{"Punctuation", `[{}():,;]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
