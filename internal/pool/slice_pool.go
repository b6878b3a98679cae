package pool

import "sync"

// SlicePool recycles typed scratch slices: decoded dictionary indices, delta blocks and
// compressor match tables. A slice obtained from Get belongs to a single call and must be
// released before the call returns.
type SlicePool[T any] struct {
	pool sync.Pool
}

// NewSlicePool creates an empty SlicePool.
func NewSlicePool[T any]() *SlicePool[T] {
	return &SlicePool[T]{
		pool: sync.Pool{
			New: func() any { return new([]T) },
		},
	}
}

// Get returns a slice of exactly size elements and a release function.
//
// The contents are whatever the previous user left behind; callers that need a zeroed
// or filled slice must initialize it themselves.
//
// Example:
//
//	indices, release := pool.Uint32s.Get(1024)
//	defer release()
func (p *SlicePool[T]) Get(size int) ([]T, func()) {
	ptr, _ := p.pool.Get().(*[]T)
	slice := *ptr
	if cap(slice) < size {
		slice = make([]T, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { p.pool.Put(ptr) }
}

var (
	// Uint32s holds dictionary index and level scratch.
	Uint32s = NewSlicePool[uint32]()
	// Int32s holds int32 delta blocks and match-finder tables.
	Int32s = NewSlicePool[int32]()
	// Int64s holds int64 delta blocks.
	Int64s = NewSlicePool[int64]()
	// Uint64s holds delta residual lanes.
	Uint64s = NewSlicePool[uint64]()
)
