package runtime

// valuePool is the free list of recycled *Value wrappers a sweep hands
// back for reuse, plus the allocation counters used to judge pool
// effectiveness. Grounded on the teacher's sync.Pool-based value pooling
// (internal/interp/runtime/pool.go) but adapted from a concurrency-safe
// pool to a plain slice: this interpreter is single-threaded by design
// (spec.md §5) and sweep-driven recycling needs the free list to be
// exactly the set of wrappers this GC cycle just released, which a
// sync.Pool (whose contents may vanish between any two calls) cannot
// guarantee.
type valuePool struct {
	free []*Value

	allocs uint64 // fresh *Value allocations (pool misses)
	gets   uint64 // total allocate() calls
	puts   uint64 // total recycle() calls
}

func (p *valuePool) allocate() *Value {
	p.gets++
	if n := len(p.free); n > 0 {
		v := p.free[n-1]
		p.free = p.free[:n-1]
		*v = Value{}
		return v
	}
	p.allocs++
	return &Value{}
}

func (p *valuePool) recycle(v *Value) {
	p.puts++
	p.free = append(p.free, v)
}

// PoolStats reports value-pool allocation behavior, in the spirit of the
// teacher's GetPoolStats/PoolEfficiency helpers.
type PoolStats struct {
	Allocs uint64
	Gets   uint64
	Puts   uint64
}

// Efficiency returns the fraction of allocate() calls satisfied from the
// free list rather than a fresh allocation; 0 when nothing has been
// requested yet.
func (s PoolStats) Efficiency() float64 {
	if s.Gets == 0 {
		return 0
	}
	return float64(s.Gets-s.Allocs) / float64(s.Gets)
}

// PoolStats returns the current value-pool statistics.
func (gc *GC) PoolStats() PoolStats {
	return PoolStats{Allocs: gc.pool.allocs, Gets: gc.pool.gets, Puts: gc.pool.puts}
}
