// Package dspfilter adapts algo-dsp filters to patch filters. Filter
// parameters are signals, they are sampled once per batch and coefficients
// are rebuilt only when parameters change.
package dspfilter

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
	"github.com/cwbudde/algo-dsp/dsp/filter/moog"

	"pipelined.dev/patch"
)

// ErrOrder is returned when filter order is not positive.
var ErrOrder = errors.New("filter order must be positive")

// Cutoff is kept within this range of the nyquist frequency.
const (
	minCutoffHz   = 1.0
	maxCutoffRate = 0.45
	maxResonance  = 4.0
)

// Pass is the response of butterworth filter.
type Pass int

// Butterworth responses.
const (
	LowPass Pass = iota
	HighPass
)

func (p Pass) String() string {
	if p == HighPass {
		return "hp"
	}
	return "lp"
}

type (
	// Butterworth is a butterworth filter with cutoff modulation.
	Butterworth struct {
		pass       Pass
		order      int
		cutoff     patch.Signal[float64]
		chain      *biquad.Chain
		cutoffHz   float64
		sampleRate float64
	}

	// Moog is a nonlinear moog ladder filter with cutoff and resonance
	// modulation.
	Moog struct {
		cutoff     patch.Signal[float64]
		resonance  patch.Signal[float64]
		filter     *moog.Filter
		sampleRate float64
	}
)

// NewButterworth returns butterworth filter of the order.
func NewButterworth(pass Pass, order int, cutoff patch.Signal[float64]) (*Butterworth, error) {
	if order <= 0 {
		return nil, fmt.Errorf("butterworth order %d: %w", order, ErrOrder)
	}
	return &Butterworth{
		pass:   pass,
		order:  order,
		cutoff: cutoff,
	}, nil
}

// Name returns filter name, for example "butterworth-lp-4".
func (f *Butterworth) Name() string {
	return fmt.Sprintf("butterworth-%v-%d", f.pass, f.order)
}

// Run filters the batch.
func (f *Butterworth) Run(ctx *patch.Ctx, in, out []float64) {
	cutoff, ok := first(ctx, f.cutoff)
	if !ok {
		return
	}
	cutoff = clampCutoff(cutoff, ctx.SampleRateHz)
	if f.chain == nil || cutoff != f.cutoffHz || ctx.SampleRateHz != f.sampleRate {
		f.update(cutoff, ctx.SampleRateHz)
	}
	for i := range in {
		out[i] = f.chain.ProcessSample(in[i])
	}
}

func (f *Butterworth) update(cutoff, sampleRate float64) {
	var coeffs []biquad.Coefficients
	switch f.pass {
	case HighPass:
		coeffs = design.ButterworthHP(cutoff, f.order, sampleRate)
	default:
		coeffs = design.ButterworthLP(cutoff, f.order, sampleRate)
	}
	if f.chain == nil {
		f.chain = biquad.NewChain(coeffs)
	} else {
		f.chain.UpdateCoefficients(coeffs, 1)
	}
	f.cutoffHz = cutoff
	f.sampleRate = sampleRate
}

// NewMoog returns moog ladder filter. Resonance is within [0, 4], the
// filter self-oscillates near 4.
func NewMoog(cutoff, resonance patch.Signal[float64]) *Moog {
	return &Moog{
		cutoff:    cutoff,
		resonance: resonance,
	}
}

// Name returns filter name.
func (f *Moog) Name() string {
	return "moog"
}

// Run filters the batch. Parameters are clamped to the valid range, so
// the filter never fails while running.
func (f *Moog) Run(ctx *patch.Ctx, in, out []float64) {
	cutoff, ok := first(ctx, f.cutoff)
	if !ok {
		return
	}
	resonance, _ := first(ctx, f.resonance)
	cutoff = clampCutoff(cutoff, ctx.SampleRateHz)
	resonance = clamp(resonance, 0, maxResonance)
	if f.filter == nil || ctx.SampleRateHz != f.sampleRate {
		mf, err := moog.New(ctx.SampleRateHz, moog.WithCutoffHz(cutoff), moog.WithResonance(resonance))
		if err != nil {
			f.bypass(in, out)
			return
		}
		f.filter = mf
		f.sampleRate = ctx.SampleRateHz
	}
	if cutoff != f.filter.CutoffHz() {
		if err := f.filter.SetCutoffHz(cutoff); err != nil {
			f.bypass(in, out)
			return
		}
	}
	if resonance != f.filter.Resonance() {
		if err := f.filter.SetResonance(resonance); err != nil {
			f.bypass(in, out)
			return
		}
	}
	f.filter.ProcessTo(out, in)
}

// bypass passes the batch unfiltered. The filter is dropped and created
// again for the next batch.
func (f *Moog) bypass(in, out []float64) {
	f.filter = nil
	copy(out, in)
}

// first returns the first value of the parameter batch.
func first(ctx *patch.Ctx, sig patch.Signal[float64]) (float64, bool) {
	b := sig.Sample(ctx)
	if b.Len() == 0 {
		return 0, false
	}
	return b.At(0), true
}

func clampCutoff(hz, sampleRate float64) float64 {
	return clamp(hz, minCutoffHz, maxCutoffRate*sampleRate)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}
