package pool

// Pool supplies and reclaims Regions.
//
// Implementations must be safe for concurrent use by independent streams.
// A region must be released exactly once, into the pool that produced it and
// with the method matching its Kind.
type Pool interface {
	// AllocateArray returns a heap-backed region of at least size bytes.
	AllocateArray(size int) *Region
	// ReleaseArray returns a region obtained from AllocateArray.
	ReleaseArray(r *Region)
	// AllocateDirect returns a natively addressable region of at least size bytes.
	AllocateDirect(size int) *Region
	// ReleaseDirect returns a region obtained from AllocateDirect.
	ReleaseDirect(r *Region)
}

// NoopPool allocates fresh memory for every request and frees it on release.
type NoopPool struct{}

var _ Pool = (*NoopPool)(nil)

// NewNoopPool creates a pool that performs no caching.
func NewNoopPool() *NoopPool {
	return &NoopPool{}
}

// AllocateArray allocates exactly size bytes on the heap.
func (p *NoopPool) AllocateArray(size int) *Region {
	if size < 0 {
		panic("pool: negative region size")
	}

	return newRegion(p, KindArray, make([]byte, size), false, size)
}

// ReleaseArray drops r.
func (p *NoopPool) ReleaseArray(r *Region) {
	r.checkout(p, KindArray)
}

// AllocateDirect maps exactly size bytes.
func (p *NoopPool) AllocateDirect(size int) *Region {
	if size < 0 {
		panic("pool: negative region size")
	}
	buf, mapped := allocDirect(size)

	return newRegion(p, KindDirect, buf, mapped, size)
}

// ReleaseDirect unmaps r.
func (p *NoopPool) ReleaseDirect(r *Region) {
	mapped := r.mapped
	freeDirect(r.checkout(p, KindDirect), mapped)
}
