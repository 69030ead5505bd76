package dspfilter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/patch"
	"pipelined.dev/patch/dspfilter"
)

const (
	sampleRate = 48000
	batch      = 480
)

func sine(hz float64) patch.Signal[float64] {
	var phase float64
	return patch.Generate(func(ctx *patch.Ctx) float64 {
		v := math.Sin(2 * math.Pi * phase)
		phase += hz * ctx.SamplePeriod()
		return v
	})
}

// rms runs the signal for a number of ticks and returns rms of the last.
func rms(sig patch.Signal[float64], ticks int) float64 {
	ctx := patch.Ctx{SampleRateHz: sampleRate, NumSamples: batch}
	var out []float64
	for i := 0; i < ticks; i++ {
		out = patch.Collect(sig.Sample(&ctx), out)
		ctx.BatchIndex++
	}
	var sum float64
	for _, v := range out {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(out)))
}

func TestButterworth(t *testing.T) {
	tests := []struct {
		name     string
		pass     dspfilter.Pass
		hz       float64
		min, max float64
	}{
		{name: "lp passes low", pass: dspfilter.LowPass, hz: 100, min: 0.65, max: 0.75},
		{name: "lp stops high", pass: dspfilter.LowPass, hz: 10000, max: 0.01},
		{name: "hp passes high", pass: dspfilter.HighPass, hz: 10000, min: 0.65, max: 0.75},
		{name: "hp stops low", pass: dspfilter.HighPass, hz: 50, max: 0.01},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := dspfilter.NewButterworth(test.pass, 4, patch.Const(1000.0))
			require.NoError(t, err)
			v := rms(patch.ApplyFilter(sine(test.hz), f), 20)
			assert.GreaterOrEqual(t, v, test.min)
			assert.LessOrEqual(t, v, test.max)
		})
	}
}

func TestButterworthModulation(t *testing.T) {
	cutoff := patch.NewCell[float64](patch.Const(20000.0))
	f, err := dspfilter.NewButterworth(dspfilter.LowPass, 2, cutoff)
	require.NoError(t, err)
	sig := patch.ApplyFilter(sine(5000), f)
	assert.Greater(t, rms(sig, 10), 0.6)

	cutoff.Set(patch.Const(100.0))
	assert.Less(t, rms(sig, 10), 0.01)
}

func TestButterworthOrder(t *testing.T) {
	_, err := dspfilter.NewButterworth(dspfilter.LowPass, 0, patch.Const(1000.0))
	assert.ErrorIs(t, err, dspfilter.ErrOrder)

	f, err := dspfilter.NewButterworth(dspfilter.HighPass, 3, patch.Const(1000.0))
	require.NoError(t, err)
	assert.Equal(t, "butterworth-hp-3", f.Name())
}

func TestMoog(t *testing.T) {
	low := rms(patch.ApplyFilter(sine(100), dspfilter.NewMoog(patch.Const(1000.0), patch.Const(0.0))), 20)
	high := rms(patch.ApplyFilter(sine(15000), dspfilter.NewMoog(patch.Const(1000.0), patch.Const(0.0))), 20)
	assert.Greater(t, low, 10*high)
}

func TestMoogClampsParameters(t *testing.T) {
	f := dspfilter.NewMoog(patch.Const(math.NaN()), patch.Const(100.0))
	assert.Equal(t, "moog", f.Name())
	sig := patch.ApplyFilter(sine(440), f)
	v := rms(sig, 5)
	assert.False(t, math.IsNaN(v))
}

func TestMoogModulation(t *testing.T) {
	var calls int
	cutoff := patch.Generate(func(*patch.Ctx) float64 {
		calls++
		return float64(calls)
	})
	sig := patch.ApplyFilter(sine(440), dspfilter.NewMoog(cutoff, patch.Const(0.5)))
	v := rms(sig, 10)
	assert.False(t, math.IsNaN(v))
	assert.Greater(t, v, 0.0)
}

func TestMoogBypass(t *testing.T) {
	in := patch.Collect(sine(440).Sample(&patch.Ctx{SampleRateHz: sampleRate, NumSamples: 16}), nil)
	out := make([]float64, len(in))
	f := dspfilter.NewMoog(patch.Const(1000.0), patch.Const(0.0))
	f.Run(&patch.Ctx{SampleRateHz: 0, NumSamples: len(in)}, in, out)
	assert.Equal(t, in, out, "invalid sample rate passes batch through")

	f.Run(&patch.Ctx{SampleRateHz: sampleRate, NumSamples: len(in)}, in, out)
	assert.NotEqual(t, in, out, "filter is created again")
}

func TestEmptyBatch(t *testing.T) {
	f, err := dspfilter.NewButterworth(dspfilter.LowPass, 2, patch.Const(1000.0))
	require.NoError(t, err)
	ctx := patch.Ctx{SampleRateHz: sampleRate}
	assert.Equal(t, 0, patch.ApplyFilter(sine(440), f).Sample(&ctx).Len())
}
