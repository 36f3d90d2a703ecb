package regalloc

import (
	"sort"

	"ssac/internal/ir"
)

// NumRegisters is spec.md §4.6's target register count N.
const NumRegisters = 16

// Allocation is the result of linear-scan allocation: for every interval's
// operand, either a physical register or a freshly numbered stack slot.
type Allocation struct {
	Registers map[ir.Operand]int
	Stack     map[ir.Operand]int
}

// active holds one interval currently occupying a register, kept sorted by
// End so expiry and spill-victim selection both just look at the tail.
type active struct {
	iv  Interval
	reg int
}

// LinearScan implements stage 2 of spec.md §4.6. Intervals are sorted by
// start; free registers are handed out low-to-high for determinism (the
// algorithm's outcome does not depend on which free register is chosen, but
// a stable one keeps allocation output reproducible across runs, mirroring
// original_source's register_allocation/mod.rs).
func LinearScan(intervals []Interval) Allocation {
	sorted := append([]Interval(nil), intervals...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return operandLess(sorted[i].Operand, sorted[j].Operand)
	})

	alloc := Allocation{
		Registers: make(map[ir.Operand]int),
		Stack:     make(map[ir.Operand]int),
	}

	free := make([]int, NumRegisters)
	for i := range free {
		free[i] = NumRegisters - 1 - i // pop from the tail = lowest index first
	}

	var activeList []active
	nextStackSlot := 1

	popFree := func() int {
		r := free[len(free)-1]
		free = free[:len(free)-1]
		return r
	}

	spillSlot := func() int {
		s := nextStackSlot
		nextStackSlot++
		return s
	}

	for _, iv := range sorted {
		// Expire: return to the free set every active interval that ended
		// strictly before this one starts.
		kept := activeList[:0]
		for _, a := range activeList {
			if a.iv.End < iv.Start {
				free = append(free, a.reg)
			} else {
				kept = append(kept, a)
			}
		}
		activeList = kept

		if len(activeList) < NumRegisters {
			reg := popFree()
			alloc.Registers[iv.Operand] = reg
			activeList = append(activeList, active{iv: iv, reg: reg})
			sort.Slice(activeList, func(i, j int) bool { return activeList[i].iv.End < activeList[j].iv.End })
			continue
		}

		// Spill: the active interval ending latest is the cheapest to evict.
		spillIdx := len(activeList) - 1
		spill := activeList[spillIdx]
		if spill.iv.End > iv.End {
			alloc.Registers[iv.Operand] = spill.reg
			delete(alloc.Registers, spill.iv.Operand)
			alloc.Stack[spill.iv.Operand] = spillSlot()
			activeList[spillIdx] = active{iv: iv, reg: spill.reg}
			sort.Slice(activeList, func(i, j int) bool { return activeList[i].iv.End < activeList[j].iv.End })
		} else {
			alloc.Stack[iv.Operand] = spillSlot()
		}
	}

	return alloc
}

func operandLess(a, b ir.Operand) bool {
	if a.SSAKind != b.SSAKind {
		return a.SSAKind < b.SSAKind
	}
	if a.Sym != b.Sym {
		return a.Sym < b.Sym
	}
	return a.Version < b.Version
}
