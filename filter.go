package patch

// Filter is a named stateful transform. Run processes one batch: in and out
// both have ctx.NumSamples values. Filters may sample their own parameter
// signals with the same ctx.
type Filter[I, O any] interface {
	Name() string
	Run(ctx *Ctx, in []I, out []O)
}

// FilteredSignal is a signal passed through a filter.
type FilteredSignal[I, O any] struct {
	sig    Signal[I]
	filter Filter[I, O]
	in     []I
	out    SliceBuf[O]
}

// ApplyFilter returns a signal which passes sig through the filter. The
// input batch is materialized because the filter carries state from one
// sample to the next.
func ApplyFilter[I, O any](sig Signal[I], filter Filter[I, O]) *FilteredSignal[I, O] {
	return &FilteredSignal[I, O]{
		sig:    sig,
		filter: filter,
	}
}

// Sample runs the filter over the input batch.
func (s *FilteredSignal[I, O]) Sample(ctx *Ctx) Buf[O] {
	s.in = Collect(s.sig.Sample(ctx), s.in)
	s.out.Values = resize(s.out.Values, len(s.in))
	s.filter.Run(ctx, s.in, s.out.Values)
	return &s.out
}

// Name returns the name of the filter.
func (s *FilteredSignal[I, O]) Name() string {
	return s.filter.Name()
}

// recurrence is a filter defined by a per-sample step function.
type recurrence[I, O any] struct {
	name string
	step func(ctx *Ctx, x I) O
}

// Recurrence returns a filter which calls step for each sample in order.
// Step function keeps its state in the closure.
func Recurrence[I, O any](name string, step func(ctx *Ctx, x I) O) Filter[I, O] {
	return &recurrence[I, O]{name: name, step: step}
}

func (r *recurrence[I, O]) Name() string { return r.name }

func (r *recurrence[I, O]) Run(ctx *Ctx, in []I, out []O) {
	for i := range in {
		out[i] = r.step(ctx, in[i])
	}
}
