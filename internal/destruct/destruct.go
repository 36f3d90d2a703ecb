package destruct

import (
	"ssac/internal/cfgir"
	"ssac/internal/dominance"
	"ssac/internal/ssa"
)

// Destruct implements C6 (spec.md §4.5) end to end: critical-edge
// splitting, CSSA conversion, re-renaming, φ-elimination, and parallel-copy
// sequencing/flattening. Mutates cfg in place; afterward no PhiExpr or
// ParallelCopy remains anywhere in it.
func Destruct(cfg *cfgir.CFG) {
	splitCriticalEdges(cfg)
	endGroup := convertToCSSA(cfg)

	dom := dominance.ComputeIterative(cfg)
	ssa.Rename(cfg, dom)

	eliminatePhis(cfg)
	bundleEndGroups(cfg, endGroup)
	flattenAll(cfg)
}
