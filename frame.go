package patch

import "sync"

// FrameSignal is a node which produces a single value per batch. It suits
// control data which changes at most once per audio callback, like
// keyboard state or sequencer steps.
type FrameSignal[T any] interface {
	SampleFrame(ctx *Ctx) T
}

// FrameFunc allows to use a function as a frame signal.
type FrameFunc[T any] func(ctx *Ctx) T

// SampleFrame calls the function.
func (f FrameFunc[T]) SampleFrame(ctx *Ctx) T {
	return f(ctx)
}

// FrameValue is a constant frame signal.
type FrameValue[T any] struct {
	Value T
}

// SampleFrame returns the value.
func (f FrameValue[T]) SampleFrame(*Ctx) T {
	return f.Value
}

// FrameMap returns a frame signal which applies f to the value of s. Since
// it's called once per batch, f may be stateful.
func FrameMap[I, O any](s FrameSignal[I], f func(I) O) FrameFunc[O] {
	return func(ctx *Ctx) O {
		return f(s.SampleFrame(ctx))
	}
}

// FrameMapCtx is like FrameMap, but f also receives the batch context.
func FrameMapCtx[I, O any](s FrameSignal[I], f func(I, *Ctx) O) FrameFunc[O] {
	return func(ctx *Ctx) O {
		return f(s.SampleFrame(ctx), ctx)
	}
}

// FrameZip returns a frame signal of pairs.
func FrameZip[A, B any](a FrameSignal[A], b FrameSignal[B]) FrameFunc[Pair[A, B]] {
	return func(ctx *Ctx) Pair[A, B] {
		return Pair[A, B]{A: a.SampleFrame(ctx), B: b.SampleFrame(ctx)}
	}
}

// FrameZipWith returns a frame signal which applies f to values of l and r.
func FrameZipWith[L, R, O any](l FrameSignal[L], r FrameSignal[R], f func(L, R) O) FrameFunc[O] {
	return func(ctx *Ctx) O {
		return f(l.SampleFrame(ctx), r.SampleFrame(ctx))
	}
}

// FrameAdd returns sum of two frame signals.
func FrameAdd[T Number](a, b FrameSignal[T]) FrameFunc[T] { return FrameZipWith(a, b, add[T]) }

// FrameSub returns difference of two frame signals.
func FrameSub[T Number](a, b FrameSignal[T]) FrameFunc[T] { return FrameZipWith(a, b, sub[T]) }

// FrameMul returns product of two frame signals.
func FrameMul[T Number](a, b FrameSignal[T]) FrameFunc[T] { return FrameZipWith(a, b, mul[T]) }

// FrameDiv returns quotient of two frame signals.
func FrameDiv[T Number](a, b FrameSignal[T]) FrameFunc[T] { return FrameZipWith(a, b, div[T]) }

// FrameClampSymmetric clamps values of s between -|limit| and |limit|.
func FrameClampSymmetric[T Float](s, limit FrameSignal[T]) FrameFunc[T] {
	return FrameZipWith(s, limit, clampSymmetric[T])
}

// FrameExp01 is the frame version of Exp01.
func FrameExp01[T Float](s, k FrameSignal[T]) FrameFunc[T] {
	return FrameZipWith(s, k, exp01[T])
}

// FrameInv01 returns 1 - s.
func FrameInv01[T Float](s FrameSignal[T]) FrameFunc[T] {
	return FrameMap(s, func(v T) T { return 1 - v })
}

// FrameSignedTo01 maps [-1, 1] onto [0, 1].
func FrameSignedTo01[T Float](s FrameSignal[T]) FrameFunc[T] {
	return FrameMap(s, func(v T) T { return (v + 1) / 2 })
}

// FrameDebug calls f with every value of the frame signal and passes the
// value through.
func FrameDebug[T any](s FrameSignal[T], f func(T)) FrameFunc[T] {
	return FrameMap(s, func(v T) T {
		f(v)
		return v
	})
}

// LiftedSignal is a frame signal converted into a signal.
type LiftedSignal[T any] struct {
	frame FrameSignal[T]
	out   ConstBuf[T]
}

// Lift converts the frame signal into a signal. The frame value is sampled
// once per batch and broadcast to every sample.
func Lift[T any](frame FrameSignal[T]) *LiftedSignal[T] {
	return &LiftedSignal[T]{frame: frame}
}

// Sample returns broadcast of the frame value.
func (s *LiftedSignal[T]) Sample(ctx *Ctx) Buf[T] {
	s.out = ConstBuf[T]{Value: s.frame.SampleFrame(ctx), Count: ctx.NumSamples}
	return &s.out
}

// FrameFilter passes lifted frame signal through the filter.
func FrameFilter[I, O any](frame FrameSignal[I], filter Filter[I, O]) *FilteredSignal[I, O] {
	return ApplyFilter(Signal[I](Lift(frame)), filter)
}

// FrameCached is a frame signal which is computed at most once per batch
// index. Unlike FrameShared it can't be copied and is not safe for
// concurrent use.
type FrameCached[T any] struct {
	frame FrameSignal[T]
	valid bool
	index uint64
	value T
}

// FrameCache wraps the frame signal to prevent recomputation for the
// same batch.
func FrameCache[T any](frame FrameSignal[T]) *FrameCached[T] {
	return &FrameCached[T]{frame: frame}
}

// SampleFrame returns memoized value.
func (c *FrameCached[T]) SampleFrame(ctx *Ctx) T {
	if !c.valid || ctx.BatchIndex > c.index {
		c.value = c.frame.SampleFrame(ctx)
		c.index = ctx.BatchIndex
		c.valid = true
	}
	return c.value
}

// frameNode is the state behind all copies of a shared frame signal.
type frameNode[T any] struct {
	mu    sync.Mutex
	frame FrameSignal[T]
	valid bool
	index uint64
	value T
}

// FrameShared is a frame signal which can be copied and is computed at
// most once per batch index.
type FrameShared[T any] struct {
	node *frameNode[T]
}

// ShareFrame returns a shared handle of the frame signal.
func ShareFrame[T any](frame FrameSignal[T]) FrameShared[T] {
	return FrameShared[T]{node: &frameNode[T]{frame: frame}}
}

// SampleFrame returns memoized value.
func (s FrameShared[T]) SampleFrame(ctx *Ctx) T {
	n := s.node
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.valid || ctx.BatchIndex > n.index {
		n.value = n.frame.SampleFrame(ctx)
		n.index = ctx.BatchIndex
		n.valid = true
	}
	return n.value
}

// Clone returns a new handle of the same shared frame signal.
func (s FrameShared[T]) Clone() FrameShared[T] {
	return s
}
