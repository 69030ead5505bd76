// Package osc provides band-unlimited oscillators driven by frequency
// signals.
package osc

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"pipelined.dev/patch"
)

// ErrUnknownWave is returned when wave name is not known.
var ErrUnknownWave = errors.New("unknown wave")

// Wave is the shape of oscillator.
type Wave int

// Supported waves.
const (
	Sine Wave = iota
	Saw
	Square
	Triangle
)

var waveNames = [...]string{
	Sine:     "sine",
	Saw:      "saw",
	Square:   "square",
	Triangle: "triangle",
}

func (w Wave) String() string {
	if w < 0 || int(w) >= len(waveNames) {
		return fmt.Sprintf("wave(%d)", int(w))
	}
	return waveNames[w]
}

// ParseWave returns the wave with the name.
func ParseWave(name string) (Wave, error) {
	for i, n := range waveNames {
		if n == name {
			return Wave(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownWave)
}

// value returns wave value at the phase within [0, 1).
func (w Wave) value(phase float64) float64 {
	switch w {
	case Saw:
		return 2*phase - 1
	case Square:
		if phase < 0.5 {
			return 1
		}
		return -1
	case Triangle:
		return 1 - 4*math.Abs(phase-0.5)
	default:
		return math.Sin(2 * math.Pi * phase)
	}
}

// Oscillator is a signal of periodic wave. Phase advances by frequency of
// each sample, so frequency can be modulated at audio rate.
type Oscillator struct {
	wave  Wave
	freq  patch.Signal[float64]
	phase float64
	out   patch.SliceBuf[float64]
}

// New returns oscillator of the wave.
func New(wave Wave, freq patch.Signal[float64]) *Oscillator {
	return &Oscillator{wave: wave, freq: freq}
}

// Sample returns the next batch of the wave.
func (o *Oscillator) Sample(ctx *patch.Ctx) patch.Buf[float64] {
	freq := o.freq.Sample(ctx)
	n := freq.Len()
	if cap(o.out.Values) < n {
		o.out.Values = make([]float64, n)
	}
	o.out.Values = o.out.Values[:n]
	period := ctx.SamplePeriod()
	for i := range o.out.Values {
		o.out.Values[i] = o.wave.value(o.phase)
		o.phase += freq.At(i) * period
		o.phase -= math.Floor(o.phase)
	}
	return &o.out
}

// Noise returns white noise within [-1, 1). Seeded noise is deterministic.
func Noise(seed uint64) *patch.GenSignal[float64] {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return patch.Generate(func(*patch.Ctx) float64 {
		return 2*r.Float64() - 1
	})
}

// NoteHz returns frequency of midi note in equal temperament, A4 is 69.
func NoteHz(note int) float64 {
	return 440 * math.Exp2(float64(note-69)/12)
}

// Detune returns frequency shifted by cents.
func Detune(hz, cents float64) float64 {
	return hz * math.Exp2(cents/1200)
}
