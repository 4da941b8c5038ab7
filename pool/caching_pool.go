package pool

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/arloliu/snapframe/errs"
	"github.com/arloliu/snapframe/internal/options"
)

const (
	// DefaultMaxRetainedBytes caps the memory a CachingPool keeps idle.
	DefaultMaxRetainedBytes = 64 << 20 // 64MiB
	// DefaultMaxPerBucket caps the idle regions kept per bucket.
	DefaultMaxPerBucket = 16
)

// CachingPoolOption configures a CachingPool.
type CachingPoolOption = options.Option[*CachingPool]

// WithMaxRetainedBytes sets the total size of idle regions the pool may keep.
// Zero disables retention.
func WithMaxRetainedBytes(n int64) CachingPoolOption {
	return options.New(func(p *CachingPool) error {
		if n < 0 {
			return fmt.Errorf("%w: max retained bytes %d", errs.ErrInvalidOption, n)
		}
		p.maxRetained = n

		return nil
	})
}

// WithMaxPerBucket sets how many idle regions each bucket may keep.
func WithMaxPerBucket(n int) CachingPoolOption {
	return options.New(func(p *CachingPool) error {
		if n < 0 {
			return fmt.Errorf("%w: max per bucket %d", errs.ErrInvalidOption, n)
		}
		p.maxPerBucket = n

		return nil
	})
}

// PoolStats is a snapshot of CachingPool counters.
type PoolStats struct {
	Hits          int64 // allocations served from a bucket
	Misses        int64 // allocations that needed fresh memory
	Evictions     int64 // releases dropped because a cap was reached
	RetainedBytes int64 // idle bytes currently held
}

type spare struct {
	buf    []byte
	mapped bool
}

// bucket is a LIFO stack of idle regions of one size and kind.
type bucket struct {
	mu    sync.Mutex
	stack []spare
}

func (b *bucket) pop() (spare, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.stack)
	if n == 0 {
		return spare{}, false
	}
	s := b.stack[n-1]
	b.stack[n-1] = spare{}
	b.stack = b.stack[:n-1]

	return s, true
}

func (b *bucket) push(s spare, limit int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.stack) >= limit {
		return false
	}
	b.stack = append(b.stack, s)

	return true
}

func (b *bucket) drain() []spare {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.stack
	b.stack = nil

	return s
}

// CachingPool keeps released regions in size buckets for reuse.
//
// Buckets live in lock-free maps keyed by bucket size and each bucket has its
// own mutex, so streams using different sizes never contend.
type CachingPool struct {
	array  sync.Map // int -> *bucket
	direct sync.Map // int -> *bucket

	maxRetained  int64
	maxPerBucket int

	retained  atomic.Int64
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

var _ Pool = (*CachingPool)(nil)

// NewCachingPool creates a CachingPool.
//
// Returns:
//   - *CachingPool: the pool
//   - error: ErrInvalidOption if an option value is out of range
func NewCachingPool(opts ...CachingPoolOption) (*CachingPool, error) {
	p := &CachingPool{
		maxRetained:  DefaultMaxRetainedBytes,
		maxPerBucket: DefaultMaxPerBucket,
	}
	if err := options.Apply(p, opts...); err != nil {
		return nil, err
	}

	return p, nil
}

// AllocateArray returns a heap region from the bucket covering size.
func (p *CachingPool) AllocateArray(size int) *Region {
	n := roundSize(size)
	if s, ok := p.bucketFor(&p.array, n).pop(); ok {
		p.hit(n)
		return newRegion(p, KindArray, s.buf, false, size)
	}
	p.misses.Add(1)

	return newRegion(p, KindArray, make([]byte, n), false, size)
}

// ReleaseArray keeps r for reuse unless a cap is reached.
func (p *CachingPool) ReleaseArray(r *Region) {
	p.release(&p.array, r, KindArray)
}

// AllocateDirect returns a mapped region from the bucket covering size.
func (p *CachingPool) AllocateDirect(size int) *Region {
	n := roundSize(size)
	if s, ok := p.bucketFor(&p.direct, n).pop(); ok {
		p.hit(n)
		return newRegion(p, KindDirect, s.buf, s.mapped, size)
	}
	p.misses.Add(1)
	buf, mapped := allocDirect(n)

	return newRegion(p, KindDirect, buf, mapped, size)
}

// ReleaseDirect keeps r for reuse unless a cap is reached, in which case the
// memory is unmapped.
func (p *CachingPool) ReleaseDirect(r *Region) {
	p.release(&p.direct, r, KindDirect)
}

// Purge drops every idle region.
func (p *CachingPool) Purge() {
	purge := func(m *sync.Map, kind Kind) {
		m.Range(func(_, v any) bool {
			for _, s := range v.(*bucket).drain() {
				p.retained.Add(-int64(len(s.buf)))
				if kind == KindDirect {
					freeDirect(s.buf, s.mapped)
				}
			}

			return true
		})
	}
	purge(&p.array, KindArray)
	purge(&p.direct, KindDirect)
}

// Stats returns a snapshot of the pool counters.
func (p *CachingPool) Stats() PoolStats {
	return PoolStats{
		Hits:          p.hits.Load(),
		Misses:        p.misses.Load(),
		Evictions:     p.evictions.Load(),
		RetainedBytes: p.retained.Load(),
	}
}

func (p *CachingPool) hit(n int) {
	p.hits.Add(1)
	p.retained.Add(-int64(n))
}

func (p *CachingPool) bucketFor(m *sync.Map, n int) *bucket {
	if b, ok := m.Load(n); ok {
		return b.(*bucket)
	}
	b, _ := m.LoadOrStore(n, &bucket{})

	return b.(*bucket)
}

func (p *CachingPool) release(m *sync.Map, r *Region, kind Kind) {
	mapped := r.mapped
	buf := r.checkout(p, kind)
	n := len(buf)
	if !isBucketSize(n) {
		panic(fmt.Sprintf("pool: region of %d bytes is not a bucket size", n))
	}

	if p.retained.Add(int64(n)) > p.maxRetained {
		p.retained.Add(-int64(n))
		p.evict(buf, mapped, kind)

		return
	}
	if !p.bucketFor(m, n).push(spare{buf: buf, mapped: mapped}, p.maxPerBucket) {
		p.retained.Add(-int64(n))
		p.evict(buf, mapped, kind)
	}
}

func (p *CachingPool) evict(buf []byte, mapped bool, kind Kind) {
	p.evictions.Add(1)
	if kind == KindDirect {
		freeDirect(buf, mapped)
	}
}

var defaultPool = func() *CachingPool {
	p, _ := NewCachingPool()
	return p
}()

// Default returns the process-wide CachingPool used when no pool is
// configured.
func Default() *CachingPool {
	return defaultPool
}
