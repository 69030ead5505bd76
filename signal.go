package patch

// Signal is a node which produces a value for each audio sample. Stateful
// signals must only mutate their own state during the Sample call.
type Signal[T any] interface {
	Sample(ctx *Ctx) Buf[T]
}

// SignalFunc allows to use a function as a signal. Function must return
// exactly ctx.NumSamples values.
type SignalFunc[T any] func(ctx *Ctx) Buf[T]

// Sample calls the function.
func (f SignalFunc[T]) Sample(ctx *Ctx) Buf[T] {
	return f(ctx)
}

type (
	// ConstSignal yields the same value for every sample.
	ConstSignal[T any] struct {
		value T
		out   ConstBuf[T]
	}

	// GenSignal calls the generator function once per sample, in order.
	GenSignal[T any] struct {
		f   func(*Ctx) T
		out SliceBuf[T]
	}

	// MapSignal is a lazy pure map of a signal.
	MapSignal[I, O any] struct {
		sig Signal[I]
		f   func(I) O
		out MapBuf[I, O]
		c   ConstBuf[O]
	}

	// MapCtxSignal is a lazy pure map of a signal which can read the
	// context.
	MapCtxSignal[I, O any] struct {
		sig Signal[I]
		f   func(I, *Ctx) O
		ctx *Ctx
		out MapBuf[I, O]
	}

	// MapMutSignal is a stateful map. Values are computed in order and
	// materialized.
	MapMutSignal[I, O any] struct {
		sig Signal[I]
		f   func(I, *Ctx) O
		out SliceBuf[O]
	}

	// ZipSignal pairs two signals.
	ZipSignal[A, B any] struct {
		a   Signal[A]
		b   Signal[B]
		out ZipBuf[A, B]
	}

	// Zip3Signal joins three signals.
	Zip3Signal[A, B, C any] struct {
		a   Signal[A]
		b   Signal[B]
		c   Signal[C]
		out Zip3Buf[A, B, C]
	}

	// Zip4Signal joins four signals.
	Zip4Signal[A, B, C, D any] struct {
		a   Signal[A]
		b   Signal[B]
		c   Signal[C]
		d   Signal[D]
		out Zip4Buf[A, B, C, D]
	}

	// ZipWithSignal applies a pure function pairwise to two signals.
	ZipWithSignal[L, R, O any] struct {
		l   Signal[L]
		r   Signal[R]
		f   func(L, R) O
		out MapBuf2[L, R, O]
		c   ConstBuf[O]
	}
)

// Const returns a signal of constant value.
func Const[T any](v T) *ConstSignal[T] {
	return &ConstSignal[T]{value: v}
}

// Sample returns broadcast of the value.
func (s *ConstSignal[T]) Sample(ctx *Ctx) Buf[T] {
	s.out = ConstBuf[T]{Value: s.value, Count: ctx.NumSamples}
	return &s.out
}

// Generate returns a signal which calls f for each sample. It's a simple
// way to define stateful leaves.
func Generate[T any](f func(ctx *Ctx) T) *GenSignal[T] {
	return &GenSignal[T]{f: f}
}

// Sample calls generator function ctx.NumSamples times.
func (s *GenSignal[T]) Sample(ctx *Ctx) Buf[T] {
	s.out.Values = resize(s.out.Values, ctx.NumSamples)
	for i := range s.out.Values {
		s.out.Values[i] = s.f(ctx)
	}
	return &s.out
}

// Map returns a signal which applies f to every value of sig. The function
// is applied lazily when the result is read, so it must be pure.
func Map[I, O any](sig Signal[I], f func(I) O) *MapSignal[I, O] {
	return &MapSignal[I, O]{
		sig: sig,
		f:   f,
		out: MapBuf[I, O]{f: f},
	}
}

// Sample returns lazily mapped batch.
func (s *MapSignal[I, O]) Sample(ctx *Ctx) Buf[O] {
	in := s.sig.Sample(ctx)
	if v, ok := constant(in); ok {
		s.c = ConstBuf[O]{Value: s.f(v), Count: in.Len()}
		return &s.c
	}
	s.out.in = in
	return &s.out
}

// MapCtx is like Map, but f also receives the batch context.
func MapCtx[I, O any](sig Signal[I], f func(I, *Ctx) O) *MapCtxSignal[I, O] {
	s := &MapCtxSignal[I, O]{
		sig: sig,
		f:   f,
	}
	s.out.f = func(v I) O { return s.f(v, s.ctx) }
	return s
}

// Sample returns lazily mapped batch.
func (s *MapCtxSignal[I, O]) Sample(ctx *Ctx) Buf[O] {
	s.ctx = ctx
	s.out.in = s.sig.Sample(ctx)
	return &s.out
}

// MapMut returns a signal which applies stateful f to every value of sig
// in order.
func MapMut[I, O any](sig Signal[I], f func(I) O) *MapMutSignal[I, O] {
	return MapMutCtx(sig, func(v I, _ *Ctx) O { return f(v) })
}

// MapMutCtx is like MapMut, but f also receives the batch context.
func MapMutCtx[I, O any](sig Signal[I], f func(I, *Ctx) O) *MapMutSignal[I, O] {
	return &MapMutSignal[I, O]{
		sig: sig,
		f:   f,
	}
}

// Sample computes mapped values.
func (s *MapMutSignal[I, O]) Sample(ctx *Ctx) Buf[O] {
	in := s.sig.Sample(ctx)
	s.out.Values = resize(s.out.Values, in.Len())
	for i := range s.out.Values {
		s.out.Values[i] = s.f(in.At(i), ctx)
	}
	return &s.out
}

// Debug calls f for every value of the signal and passes the value
// through unchanged.
func Debug[T any](sig Signal[T], f func(T)) *MapMutSignal[T, T] {
	return MapMut(sig, func(v T) T {
		f(v)
		return v
	})
}

// Zip returns a signal of pairs. Each signal is sampled once per batch.
func Zip[A, B any](a Signal[A], b Signal[B]) *ZipSignal[A, B] {
	return &ZipSignal[A, B]{a: a, b: b}
}

// Sample returns lazily zipped batch.
func (s *ZipSignal[A, B]) Sample(ctx *Ctx) Buf[Pair[A, B]] {
	s.out.a = s.a.Sample(ctx)
	s.out.b = s.b.Sample(ctx)
	return &s.out
}

// Zip3 returns a signal of tuples of three signals.
func Zip3[A, B, C any](a Signal[A], b Signal[B], c Signal[C]) *Zip3Signal[A, B, C] {
	return &Zip3Signal[A, B, C]{a: a, b: b, c: c}
}

// Sample returns lazily zipped batch.
func (s *Zip3Signal[A, B, C]) Sample(ctx *Ctx) Buf[Tuple3[A, B, C]] {
	s.out.a = s.a.Sample(ctx)
	s.out.b = s.b.Sample(ctx)
	s.out.c = s.c.Sample(ctx)
	return &s.out
}

// Zip4 returns a signal of tuples of four signals.
func Zip4[A, B, C, D any](a Signal[A], b Signal[B], c Signal[C], d Signal[D]) *Zip4Signal[A, B, C, D] {
	return &Zip4Signal[A, B, C, D]{a: a, b: b, c: c, d: d}
}

// Sample returns lazily zipped batch.
func (s *Zip4Signal[A, B, C, D]) Sample(ctx *Ctx) Buf[Tuple4[A, B, C, D]] {
	s.out.a = s.a.Sample(ctx)
	s.out.b = s.b.Sample(ctx)
	s.out.c = s.c.Sample(ctx)
	s.out.d = s.d.Sample(ctx)
	return &s.out
}

// ZipWith returns a signal which applies pure f pairwise to values of l
// and r. It's a fused Zip followed by Map.
func ZipWith[L, R, O any](l Signal[L], r Signal[R], f func(L, R) O) *ZipWithSignal[L, R, O] {
	return &ZipWithSignal[L, R, O]{
		l:   l,
		r:   r,
		f:   f,
		out: MapBuf2[L, R, O]{f: f},
	}
}

// Sample returns lazily mapped batch.
func (s *ZipWithSignal[L, R, O]) Sample(ctx *Ctx) Buf[O] {
	l := s.l.Sample(ctx)
	r := s.r.Sample(ctx)
	lv, lok := constant(l)
	rv, rok := constant(r)
	if lok && rok {
		s.c = ConstBuf[O]{Value: s.f(lv, rv), Count: l.Len()}
		return &s.c
	}
	s.out.l = l
	s.out.r = r
	return &s.out
}
