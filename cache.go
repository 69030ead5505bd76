package patch

import "sync"

// memo keeps the result of the latest computed batch.
type memo[T any] struct {
	valid   bool
	index   uint64
	isConst bool
	c       ConstBuf[T]
	s       SliceBuf[T]
}

// sample replays the memoized batch for any batch index at or below the
// latest computed one. Otherwise the signal is sampled and memoized.
func (m *memo[T]) sample(ctx *Ctx, sig Signal[T]) Buf[T] {
	if !m.valid || ctx.BatchIndex > m.index {
		b := sig.Sample(ctx)
		if v, ok := constant(b); ok {
			m.c = ConstBuf[T]{Value: v, Count: b.Len()}
			m.isConst = true
		} else {
			m.s.Values = Collect(b, m.s.Values)
			m.isConst = false
		}
		m.index = ctx.BatchIndex
		m.valid = true
	}
	if m.isConst {
		return &m.c
	}
	return &m.s
}

// Cached is a signal which is computed at most once per batch index.
type Cached[T any] struct {
	sig  Signal[T]
	memo memo[T]
}

// Cache wraps the signal to prevent recomputation for the same batch.
func Cache[T any](sig Signal[T]) *Cached[T] {
	return &Cached[T]{sig: sig}
}

// Sample returns memoized batch.
func (c *Cached[T]) Sample(ctx *Ctx) Buf[T] {
	return c.memo.sample(ctx, c.sig)
}

// sharedNode is the state behind all copies of a shared handle.
type sharedNode[T any] struct {
	mu   sync.Mutex
	sig  Signal[T]
	memo memo[T]
}

// Shared is a cached signal which can be copied. All copies observe the
// same memoized batch, so a signal used by many consumers is computed once
// per batch. The memoized batch stays valid until the next batch index is
// sampled.
type Shared[T any] struct {
	node *sharedNode[T]
}

// Share returns a shared handle of the signal.
func Share[T any](sig Signal[T]) Shared[T] {
	return Shared[T]{node: &sharedNode[T]{sig: sig}}
}

// Sample returns memoized batch.
func (s Shared[T]) Sample(ctx *Ctx) Buf[T] {
	s.node.mu.Lock()
	defer s.node.mu.Unlock()
	return s.node.memo.sample(ctx, s.node.sig)
}

// Clone returns a new handle of the same shared signal.
func (s Shared[T]) Clone() Shared[T] {
	return s
}

// Cell is a shared signal whose inner signal can be replaced while the
// graph is running.
type Cell[T any] struct {
	Shared[T]
}

// NewCell returns a cell with initial signal.
func NewCell[T any](sig Signal[T]) Cell[T] {
	return Cell[T]{Shared: Share(sig)}
}

// Set replaces the inner signal. It's synchronized with sampling, so the
// batch being computed finishes with the old signal and the next batch is
// computed with the new one. Replays of already computed batches keep
// returning the old result.
func (c Cell[T]) Set(sig Signal[T]) {
	c.node.mu.Lock()
	c.node.sig = sig
	c.node.mu.Unlock()
}

// Clone returns a new handle of the same cell.
func (c Cell[T]) Clone() Cell[T] {
	return c
}
