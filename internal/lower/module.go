package lower

import "ssac/internal/value"

// Chunk is one procedure's linear instruction stream, grounded on
// original_source/bytecode/chunk.rs's Chunk (a bare Vec<Instruction>).
type Chunk struct {
	Instructions []Instruction
}

func (c *Chunk) add(i Instruction) int {
	c.Instructions = append(c.Instructions, i)
	return len(c.Instructions) - 1
}

// ValuePool deduplicates literal constants across a Module, grounded on
// original_source/bytecode/constant_pool.rs's ConstantPool.
type ValuePool struct {
	Pool  []value.Value
	cache map[value.Value]int
}

func newValuePool() ValuePool {
	return ValuePool{cache: make(map[value.Value]int)}
}

// Insert returns v's index in the pool, reusing an existing entry if v was
// already inserted.
func (p *ValuePool) Insert(v value.Value) int {
	if idx, ok := p.cache[v]; ok {
		return idx
	}
	idx := len(p.Pool)
	p.Pool = append(p.Pool, v)
	p.cache[v] = idx
	return idx
}

// Module is the output of C8: one chunk per lowered procedure sharing a
// single value pool, grounded on original_source/bytecode/module.rs.
type Module struct {
	Chunks []*Chunk
	Values ValuePool
}

// NewModule creates an empty Module.
func NewModule() *Module {
	return &Module{Values: newValuePool()}
}

// AddChunk appends a fresh empty chunk and returns its index.
func (m *Module) AddChunk() int {
	m.Chunks = append(m.Chunks, &Chunk{})
	return len(m.Chunks) - 1
}
