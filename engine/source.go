package engine

import (
	"fmt"

	"pipelined.dev/patch"
)

// Sample is a constraint for values which can be played.
type Sample interface {
	~float32 | ~float64
}

// Source is a root of the graph which engine plays. It's either Mono or
// Stereo.
type Source interface {
	// channels returns number of channel buffers the source fills.
	channels() int
	// fill samples the graph into the buffers. Each buffer has
	// ctx.NumSamples length.
	fill(ctx *patch.Ctx, bufs [][]float64)
}

// MonoSource plays a single signal on all device channels.
type MonoSource[T Sample] struct {
	sig       patch.Signal[T]
	observers []func(ctx *patch.Ctx, samples []float64)
}

// Mono returns a source of a single signal.
func Mono[T Sample](sig patch.Signal[T]) *MonoSource[T] {
	return &MonoSource[T]{sig: sig}
}

// Observe adds a function which is called on the control goroutine after
// each batch is computed. Samples must not be retained.
func (s *MonoSource[T]) Observe(fn func(ctx *patch.Ctx, samples []float64)) *MonoSource[T] {
	s.observers = append(s.observers, fn)
	return s
}

func (s *MonoSource[T]) channels() int { return 1 }

func (s *MonoSource[T]) fill(ctx *patch.Ctx, bufs [][]float64) {
	copyBatch(ctx, s.sig.Sample(ctx), bufs[0])
}

func (s *MonoSource[T]) observe(ctx *patch.Ctx, bufs [][]float64) {
	for _, fn := range s.observers {
		fn(ctx, bufs[0])
	}
}

// StereoSource plays a stereo pair on the first two device channels. Both
// channels are computed with the same context, so nodes shared between
// them are computed once per batch.
type StereoSource[L, R Sample] struct {
	sig       patch.Stereo[L, R]
	observers []func(ctx *patch.Ctx, left, right []float64)
}

// Stereo returns a source of a stereo pair.
func Stereo[L, R Sample](sig patch.Stereo[L, R]) *StereoSource[L, R] {
	return &StereoSource[L, R]{sig: sig}
}

// Observe adds a function which is called on the control goroutine after
// each batch is computed. Samples must not be retained.
func (s *StereoSource[L, R]) Observe(fn func(ctx *patch.Ctx, left, right []float64)) *StereoSource[L, R] {
	s.observers = append(s.observers, fn)
	return s
}

func (s *StereoSource[L, R]) channels() int { return 2 }

func (s *StereoSource[L, R]) fill(ctx *patch.Ctx, bufs [][]float64) {
	// left batch is copied before right channel is sampled, so a node
	// used by both channels without sharing can't overwrite it.
	copyBatch(ctx, s.sig.Left.Sample(ctx), bufs[0])
	copyBatch(ctx, s.sig.Right.Sample(ctx), bufs[1])
}

func (s *StereoSource[L, R]) observe(ctx *patch.Ctx, bufs [][]float64) {
	for _, fn := range s.observers {
		fn(ctx, bufs[0], bufs[1])
	}
}

// observer is implemented by sources with observers.
type observer interface {
	observe(ctx *patch.Ctx, bufs [][]float64)
}

// copyBatch writes batch into dst. Batch of wrong length is a broken
// contract and causes panic.
func copyBatch[T Sample](ctx *patch.Ctx, b patch.Buf[T], dst []float64) {
	if b.Len() != ctx.NumSamples {
		panic(fmt.Sprintf("batch %d: signal returned %d samples instead of %d", ctx.BatchIndex, b.Len(), ctx.NumSamples))
	}
	switch b := b.(type) {
	case *patch.ConstBuf[T]:
		v := float64(b.Value)
		for i := range dst {
			dst[i] = v
		}
	case *patch.SliceBuf[T]:
		for i, v := range b.Values {
			dst[i] = float64(v)
		}
	default:
		for i := range dst {
			dst[i] = float64(b.At(i))
		}
	}
}
