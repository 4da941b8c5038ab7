// Package pool supplies the working memory used by the block codec and the
// framing writer and reader.
//
// A Region is a byte range checked out from a Pool. Two backing kinds exist:
//
//   - KindArray: ordinary Go heap memory.
//   - KindDirect: natively addressable memory outside the Go heap (anonymous
//     mmap on Linux and the BSDs, heap memory elsewhere).
//
// Both kinds expose the same []byte view, so codec code has a single path for
// either backing.
//
// # Implementations
//
//   - NoopPool allocates on every request and frees on every release.
//   - CachingPool rounds requests up to a coarse size bucket and keeps
//     released regions per bucket for reuse, most recently released first,
//     bounded by a retained-bytes cap and a per-bucket count cap.
//
// # Ownership
//
// A region is exclusively owned by whoever checked it out until it is
// released. Releasing twice, or releasing a region into a pool that did not
// produce it, panics: both are programming errors, not data errors.
//
//	r := pool.Default().AllocateArray(64 << 10)
//	defer r.Release()
//	buf := r.Bytes()
package pool
