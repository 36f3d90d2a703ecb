package main

import (
	"fmt"
	"log"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"ssac/internal/ast"
	cerrors "ssac/internal/errors"
	"ssac/internal/interner"
	"ssac/internal/pipeline"
	"ssac/internal/symtab"
	"ssac/internal/tacfmt"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: ssac-cli <file.tac>")
		os.Exit(1)
	}
	path := os.Args[1]

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read %s: %s", path, err)
		os.Exit(1)
	}

	prog, err := tacfmt.ParseSource(path, string(source))
	if err != nil {
		msg, _ := parseErrorMessage(path, string(source), err)
		fmt.Print(msg)
		os.Exit(1)
	}

	sym := interner.New()
	parsed, err := tacfmt.Convert(prog, sym)
	if err != nil {
		color.Red("✗ %s", err)
		os.Exit(1)
	}
	if len(parsed) == 0 {
		color.Red("✗ %s: no procedures", path)
		os.Exit(1)
	}

	procs := make([]pipeline.Procedure, len(parsed))
	for i, p := range parsed {
		procs[i] = pipeline.Procedure{Name: p.Name, Stmts: p.Stmts, IsEntry: p.Name == "main"}
	}
	if !anyEntry(procs) {
		procs[0].IsEntry = true
	}

	log.Printf("compiling %s: %d procedure(s)", path, len(procs))

	conf := pipeline.Config{Interner: sym, Symbols: symtab.New()}
	module, results, err := pipeline.Compile(procs, conf)
	if err != nil {
		msg, _ := passErrorMessage(err)
		fmt.Print(msg)
		os.Exit(1)
	}

	for _, r := range results {
		log.Printf("procedure %q: %d block(s), chunk %d, %d unreachable",
			r.Name, r.CFG.NumBlocks(), r.ChunkIndex, len(r.Unreachable))
		for _, b := range r.Unreachable {
			log.Printf("  block %d:", b)
			fmt.Print(cerrors.FormatPassError(cerrors.UnreachableCode(ast.Position{})))
		}
	}
	for i, chunk := range module.Chunks {
		fmt.Printf("-- chunk %d --\n", i)
		for _, insn := range chunk.Instructions {
			fmt.Println(" ", insn)
		}
	}

	color.Green("✅ compiled %s", path)
}

func anyEntry(procs []pipeline.Procedure) bool {
	for _, p := range procs {
		if p.IsEntry {
			return true
		}
	}
	return false
}

// parseErrorMessage renders a tacfmt.ParseSource failure through the
// shared ErrorReporter instead of a bespoke caret renderer: a participle
// error carries a genuine position into the source text it was given, so
// unlike a PassError it can show a real source-line excerpt. ok reports
// whether err was a participle.Error; when it isn't, the caller gets a
// bare fallback message instead.
func parseErrorMessage(filename, source string, err error) (string, bool) {
	pe, ok := err.(participle.Error)
	if !ok {
		return color.RedString("unexpected error: %s\n", err), false
	}
	pos := pe.Position()
	ce := cerrors.SyntaxError(ast.Position{
		Filename: pos.Filename,
		Offset:   pos.Offset,
		Line:     pos.Line,
		Column:   pos.Column,
	}, pe.Message())
	return cerrors.NewErrorReporter(filename, source).FormatError(ce), true
}

// passErrorMessage renders a middle-end PassError via the adapted
// CompilerError/FormatPassError path — no source span is available this
// deep in the pipeline, so it deliberately does not try to fake one.
func passErrorMessage(err error) (string, bool) {
	pe, ok := err.(*cerrors.PassError)
	if !ok {
		return color.RedString("unexpected error: %s\n", err), false
	}
	return cerrors.FormatPassError(cerrors.FromPassError(pe)), true
}
