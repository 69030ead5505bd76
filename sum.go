package patch

// SumSignal sums any number of signals into a single buffer.
type SumSignal[T Number] struct {
	sigs []Signal[T]
	out  SliceBuf[T]
	zero ConstBuf[T]
}

// Sum returns a signal which is the sum of all provided signals. The
// output buffer is reused for all operands. Sum of no signals is silence.
func Sum[T Number](sigs ...Signal[T]) *SumSignal[T] {
	return &SumSignal[T]{sigs: sigs}
}

// Sample accumulates all operands.
func (s *SumSignal[T]) Sample(ctx *Ctx) Buf[T] {
	if len(s.sigs) == 0 {
		s.zero.Count = ctx.NumSamples
		return &s.zero
	}
	s.out.Values = resize(s.out.Values, ctx.NumSamples)
	clear(s.out.Values)
	for _, sig := range s.sigs {
		b := sig.Sample(ctx)
		if v, ok := constant(b); ok {
			for i := range s.out.Values {
				s.out.Values[i] += v
			}
			continue
		}
		for i := range s.out.Values {
			s.out.Values[i] += b.At(i)
		}
	}
	return &s.out
}
