package pool

import (
	"fmt"
	"sync/atomic"
)

// Kind identifies the backing memory of a Region.
type Kind uint8

const (
	KindArray  Kind = iota // KindArray is Go heap memory.
	KindDirect             // KindDirect is memory outside the Go heap.
)

func (k Kind) String() string {
	switch k {
	case KindArray:
		return "Array"
	case KindDirect:
		return "Direct"
	default:
		return "Unknown"
	}
}

// Region is a byte range checked out from a Pool.
//
// A Region value represents one checkout: once released it must not be used
// again, even if the pool hands the same memory to a later caller.
type Region struct {
	buf      []byte // len == requested size, cap == bucket size
	backing  []byte // full allocation, kept for unmapping
	kind     Kind
	mapped   bool
	owner    Pool
	released atomic.Bool
}

func newRegion(owner Pool, kind Kind, backing []byte, mapped bool, size int) *Region {
	return &Region{
		buf:     backing[:size:len(backing)],
		backing: backing,
		kind:    kind,
		mapped:  mapped,
		owner:   owner,
	}
}

// Bytes returns the region's memory, sized to the requested length. The slice
// capacity is the bucket size, so callers may reslice up to Cap. Contents are
// unspecified on checkout.
func (r *Region) Bytes() []byte {
	return r.buf
}

// Len returns the requested length.
func (r *Region) Len() int {
	return len(r.buf)
}

// Cap returns the usable capacity of the region.
func (r *Region) Cap() int {
	return len(r.backing)
}

// Kind returns the backing kind.
func (r *Region) Kind() Kind {
	return r.kind
}

// Release returns the region to the pool that produced it.
func (r *Region) Release() {
	switch r.kind {
	case KindDirect:
		r.owner.ReleaseDirect(r)
	default:
		r.owner.ReleaseArray(r)
	}
}

// checkout marks r released and returns its backing memory. It panics on
// contract violations.
func (r *Region) checkout(owner Pool, kind Kind) []byte {
	if r == nil {
		panic("pool: release of nil region")
	}
	if r.owner != owner {
		panic("pool: region released into a foreign pool")
	}
	if r.kind != kind {
		panic(fmt.Sprintf("pool: %s region released as %s", r.kind, kind))
	}
	if !r.released.CompareAndSwap(false, true) {
		panic("pool: region released twice")
	}

	backing := r.backing
	r.buf, r.backing = nil, nil

	return backing
}
