// Package ast carries only the position type shared by this compiler's
// diagnostics (internal/errors' CompilerError.Position) and its CLI
// driver. The teacher's full source-language AST — Contract, Struct,
// Function, Expr and its printer/metadata machinery — had no equivalent
// concept in this compiler's domain (a TAC middle-end never parses or
// prints a source tree) and was removed rather than kept unwired;
// see DESIGN.md.
package ast

// Position tracks a location for error reporting and tooling. Most of
// this compiler's passes operate past the point where a byte-accurate
// source position is recoverable (see internal/errors' FromPassError), so
// a zero Position is a valid, common value here, not just an edge case.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}
