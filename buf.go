package patch

// Buf is a batch of values produced by a node. Its length always equals
// the number of samples requested in the context.
type Buf[T any] interface {
	Len() int
	At(i int) T
}

type (
	// ConstBuf is a batch of one repeated value.
	ConstBuf[T any] struct {
		Value T
		Count int
	}

	// SliceBuf is a materialized batch.
	SliceBuf[T any] struct {
		Values []T
	}

	// MapBuf applies a function to each value of upstream batch when the
	// value is read.
	MapBuf[I, O any] struct {
		in Buf[I]
		f  func(I) O
	}

	// MapBuf2 applies a function pairwise to values of two upstream
	// batches when the value is read.
	MapBuf2[L, R, O any] struct {
		l Buf[L]
		r Buf[R]
		f func(L, R) O
	}

	// ZipBuf pairs values of two upstream batches.
	ZipBuf[A, B any] struct {
		a Buf[A]
		b Buf[B]
	}

	// Zip3Buf joins values of three upstream batches.
	Zip3Buf[A, B, C any] struct {
		a Buf[A]
		b Buf[B]
		c Buf[C]
	}

	// Zip4Buf joins values of four upstream batches.
	Zip4Buf[A, B, C, D any] struct {
		a Buf[A]
		b Buf[B]
		c Buf[C]
		d Buf[D]
	}
)

// Pair is a value of zipped batches.
type Pair[A, B any] struct {
	A A
	B B
}

// Tuple3 is a value of three zipped batches.
type Tuple3[A, B, C any] struct {
	A A
	B B
	C C
}

// Tuple4 is a value of four zipped batches.
type Tuple4[A, B, C, D any] struct {
	A A
	B B
	C C
	D D
}

// Len returns number of values.
func (b *ConstBuf[T]) Len() int { return b.Count }

// At returns the repeated value.
func (b *ConstBuf[T]) At(int) T { return b.Value }

// Len returns number of values.
func (b *SliceBuf[T]) Len() int { return len(b.Values) }

// At returns i-th value.
func (b *SliceBuf[T]) At(i int) T { return b.Values[i] }

// Len returns number of values.
func (b *MapBuf[I, O]) Len() int { return b.in.Len() }

// At returns i-th mapped value.
func (b *MapBuf[I, O]) At(i int) O { return b.f(b.in.At(i)) }

// Len returns number of values.
func (b *MapBuf2[L, R, O]) Len() int { return b.l.Len() }

// At returns i-th mapped value.
func (b *MapBuf2[L, R, O]) At(i int) O { return b.f(b.l.At(i), b.r.At(i)) }

// Len returns number of values.
func (b *ZipBuf[A, B]) Len() int { return b.a.Len() }

// At returns i-th pair.
func (b *ZipBuf[A, B]) At(i int) Pair[A, B] {
	return Pair[A, B]{A: b.a.At(i), B: b.b.At(i)}
}

// Len returns number of values.
func (b *Zip3Buf[A, B, C]) Len() int { return b.a.Len() }

// At returns i-th tuple.
func (b *Zip3Buf[A, B, C]) At(i int) Tuple3[A, B, C] {
	return Tuple3[A, B, C]{A: b.a.At(i), B: b.b.At(i), C: b.c.At(i)}
}

// Len returns number of values.
func (b *Zip4Buf[A, B, C, D]) Len() int { return b.a.Len() }

// At returns i-th tuple.
func (b *Zip4Buf[A, B, C, D]) At(i int) Tuple4[A, B, C, D] {
	return Tuple4[A, B, C, D]{A: b.a.At(i), B: b.b.At(i), C: b.c.At(i), D: b.d.At(i)}
}

// Collect materializes the batch into dst. Capacity of dst is reused, so
// steady-state collection doesn't allocate.
func Collect[T any](b Buf[T], dst []T) []T {
	n := b.Len()
	dst = resize(dst, n)
	switch b := b.(type) {
	case *ConstBuf[T]:
		for i := range dst {
			dst[i] = b.Value
		}
	case *SliceBuf[T]:
		copy(dst, b.Values)
	default:
		for i := range dst {
			dst[i] = b.At(i)
		}
	}
	return dst
}

// resize returns slice of length n reusing capacity of s.
func resize[T any](s []T, n int) []T {
	if cap(s) < n {
		return make([]T, n)
	}
	return s[:n]
}

// constant returns the value of a batch if it's a broadcast of one value.
func constant[T any](b Buf[T]) (T, bool) {
	if c, ok := b.(*ConstBuf[T]); ok {
		return c.Value, true
	}
	var zero T
	return zero, false
}
