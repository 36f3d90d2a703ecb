// Package pipeline wires C2 through C8 into the single end-to-end compile
// described by spec.md §2's data-flow table: a list of TAC statements enters
// C2 and becomes a CFG; C3 through C8 each consume the previous stage's
// output in place, finishing with one lowered chunk per procedure sharing a
// single Module. Grounded on destruct.Destruct and ssa.Construct, which
// already compose several sub-passes behind one entry point in exactly this
// style.
package pipeline

import (
	"fmt"

	"ssac/internal/cfgir"
	"ssac/internal/destruct"
	"ssac/internal/dominance"
	cerrors "ssac/internal/errors"
	"ssac/internal/interner"
	"ssac/internal/ir"
	"ssac/internal/lower"
	"ssac/internal/optimize"
	"ssac/internal/regalloc"
	"ssac/internal/ssa"
	"ssac/internal/symtab"
)

const passName = "pipeline"

// Config carries the process-wide facilities and tunables spec.md §5
// describes as shared state: a single interner and symbol table live for
// the process's whole lifetime and are threaded through every procedure's
// compilation, entering and exiting a scope per procedure rather than being
// rebuilt each time.
type Config struct {
	Interner *interner.Interner
	Symbols  *symtab.Table
	Optimize optimize.Config
}

// Procedure is one compilation unit: a named sequence of TAC statements,
// plus whether it is the module's entry procedure (spec.md §4.7's "halt at
// the end of the entry procedure").
type Procedure struct {
	Name    string
	Stmts   []ir.Statement
	IsEntry bool
}

// Result is what CompileProcedure reports back about one procedure's
// compilation, for callers that want to inspect intermediate shape (tests,
// a -dump-cfg style CLI flag) without re-running the pipeline.
type Result struct {
	Name       string
	CFG        *cfgir.CFG
	ChunkIndex int
	// Unreachable lists, by block index, every block of the final CFG that
	// no forward edge from block 0 reaches (spec.md §4.1 step 4) — a block
	// left behind by a skipped or eliminated branch rather than an error,
	// surfaced here so a caller can report it without re-deriving it.
	Unreachable []int
}

// Compile runs every procedure in procs through the full C2→C8 pipeline and
// returns the shared lower.Module plus one Result per procedure, in the
// same order as procs. Per spec.md §5, procedures are independent: the only
// mutable state carried from one procedure to the next is the shared Module
// (its chunk list and value pool) and conf's shared interner and symbol
// table. Procedures are compiled one after another, in procs order.
func Compile(procs []Procedure, conf Config) (*lower.Module, []Result, error) {
	m := lower.NewModule()
	results := make([]Result, 0, len(procs))

	for _, p := range procs {
		cfg, err := CompileProcedure(m, p, conf)
		if err != nil {
			return nil, nil, cerrors.Wrap(passName, cerrors.InvariantViolation, -1, -1,
				fmt.Errorf("procedure %q: %w", p.Name, err))
		}
		idx, _ := lastChunkIndex(m)
		results = append(results, Result{Name: p.Name, CFG: cfg, ChunkIndex: idx, Unreachable: cfg.Unreachable()})
	}

	return m, results, nil
}

// CompileProcedure runs one procedure through C2–C8 and appends its lowered
// chunk to m, per spec.md §5's "entered/exited scope-wise" symbol-table
// contract: the procedure's own scope is entered before construction and
// exited once lowering has produced its chunk, regardless of outcome.
func CompileProcedure(m *lower.Module, p Procedure, conf Config) (*cfgir.CFG, error) {
	if conf.Symbols != nil {
		conf.Symbols.Enter()
		defer conf.Symbols.Exit()
	}

	cfg, err := cfgir.Build(p.Stmts)
	if err != nil {
		return nil, err
	}

	dom := dominance.ComputeLengauerTarjan(cfg)
	ssa.Construct(cfg, dom)
	optimize.Optimize(cfg, conf.Optimize)
	destruct.Destruct(cfg)

	if err := regalloc.Allocate(cfg); err != nil {
		return cfg, err
	}

	if _, err := lower.LowerInto(m, cfg, p.IsEntry); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func lastChunkIndex(m *lower.Module) (int, bool) {
	if len(m.Chunks) == 0 {
		return -1, false
	}
	return len(m.Chunks) - 1, true
}
