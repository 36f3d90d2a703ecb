package errors

import (
	"fmt"

	"github.com/fatih/color"
	"ssac/internal/ast"
)

func codeForKind(k Kind) string {
	switch k {
	case MalformedInput:
		return ErrorMalformedInput
	case InvariantViolation:
		return ErrorInvariantViolation
	case ArithmeticOverflow:
		return ErrorArithmeticOverflow
	default:
		return ErrorGenericSemantic
	}
}

// FromPassError adapts a middle-end PassError into a CompilerError, reusing
// the same structured diagnostic shape ErrorReporter already knows how to
// render for semantic errors. A PassError has no source span of its own —
// cfgir.Build's Statement index addresses the resolved Vec<Stmt>, not a
// textual position tacfmt ever records — so Position is left zeroed and
// FormatPassError renders without a source-line excerpt rather than
// attempting (and corrupting) one.
func FromPassError(e *PassError) CompilerError {
	var notes []string
	if e.Block >= 0 {
		note := fmt.Sprintf("in block %d", e.Block)
		if e.Statement >= 0 {
			note += fmt.Sprintf(", statement %d", e.Statement)
		}
		notes = append(notes, note)
	}
	return CompilerError{
		Level:    Error,
		Code:     codeForKind(e.Kind),
		Message:  fmt.Sprintf("[%s] %s", e.Pass, e.Message),
		Position: ast.Position{},
		Notes:    notes,
	}
}

// FormatPassError renders a CompilerError produced by FromPassError. It
// mirrors ErrorReporter.FormatError's header/notes/help styling but omits
// the "--> file:line:col" location line and source excerpt entirely, since
// those require a byte-accurate source position FromPassError deliberately
// does not fabricate.
func FormatPassError(ce CompilerError) string {
	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	noteColor := color.New(color.FgBlue).SprintFunc()

	out := fmt.Sprintf("%s[%s]: %s\n", levelColor(string(ce.Level)), ce.Code, ce.Message)
	for _, note := range ce.Notes {
		out += fmt.Sprintf("  %s %s %s\n", dim("│"), noteColor("note:"), note)
	}
	if ce.HelpText != "" {
		out += fmt.Sprintf("  %s help: %s\n", dim("│"), ce.HelpText)
	}
	return out
}
