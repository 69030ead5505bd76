package patch_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/patch"
)

func TestArithmetic(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 3}
	tests := []struct {
		description string
		sig         patch.Signal[float64]
		expected    []float64
	}{
		{description: "add", sig: patch.Add[float64](ramp(), ramp()), expected: []float64{2, 4, 6}},
		{description: "sub", sig: patch.Sub[float64](ramp(), patch.Const(1.0)), expected: []float64{0, 1, 2}},
		{description: "mul", sig: patch.Mul[float64](ramp(), ramp()), expected: []float64{1, 4, 9}},
		{description: "div", sig: patch.Div[float64](ramp(), patch.Const(2.0)), expected: []float64{0.5, 1, 1.5}},
		{description: "add scalar", sig: patch.AddScalar[float64](ramp(), 1), expected: []float64{2, 3, 4}},
		{description: "sub scalar", sig: patch.SubScalar[float64](ramp(), 1), expected: []float64{0, 1, 2}},
		{description: "mul scalar", sig: patch.MulScalar[float64](ramp(), 3), expected: []float64{3, 6, 9}},
		{description: "div scalar", sig: patch.DivScalar[float64](ramp(), 2), expected: []float64{0.5, 1, 1.5}},
		{description: "scalar sub", sig: patch.ScalarSub[float64](10, ramp()), expected: []float64{9, 8, 7}},
		{description: "scalar div", sig: patch.ScalarDiv[float64](6, ramp()), expected: []float64{6, 3, 2}},
		{description: "abs", sig: patch.Abs[float64](patch.ScalarSub[float64](2, ramp())), expected: []float64{1, 0, 1}},
		{
			description: "clamp",
			sig:         patch.ClampSymmetric[float64](patch.MulScalar[float64](ramp(), -1), patch.Const(-2.0)),
			expected:    []float64{-1, -2, -2},
		},
		{
			description: "inv01",
			sig:         patch.Inv01[float64](patch.DivScalar[float64](ramp(), 4)),
			expected:    []float64{0.75, 0.5, 0.25},
		},
		{
			description: "signed to 01",
			sig:         patch.SignedTo01[float64](patch.SubScalar[float64](ramp(), 2)),
			expected:    []float64{0, 0.5, 1},
		},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, patch.Collect(test.sig.Sample(&ctx), nil), test.description)
	}
}

func TestConstantPropagation(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 1024}
	sig := patch.MulScalar[float64](patch.Add[float64](patch.Const(1.0), patch.Const(2.0)), 2)
	b := sig.Sample(&ctx)
	assert.IsType(t, &patch.ConstBuf[float64]{}, b)
	assert.Equal(t, 6.0, b.At(1023))
	assert.Equal(t, 1024, b.Len())
}

func TestGates(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 4}
	odd := func() patch.Signal[bool] {
		var i int
		return patch.Generate(func(*patch.Ctx) bool {
			i++
			return i%2 == 1
		})
	}
	assert.Equal(t, []bool{false, false, false, false}, patch.Collect(patch.And(odd(), patch.Const(false)).Sample(&ctx), nil))
	assert.Equal(t, []bool{true, false, true, false}, patch.Collect(patch.And(odd(), patch.Const(true)).Sample(&ctx), nil))
	assert.Equal(t, []bool{true, true, true, true}, patch.Collect(patch.Or(odd(), patch.Const(true)).Sample(&ctx), nil))
}

func TestExp01(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 1}
	for _, k := range []float64{-4, -1, 0, 1, 4} {
		zero := patch.Exp01[float64](patch.Const(0.0), patch.Const(k)).Sample(&ctx).At(0)
		one := patch.Exp01[float64](patch.Const(1.0), patch.Const(k)).Sample(&ctx).At(0)
		assert.InDelta(t, 0.0, zero, 1e-9, "k=%v", k)
		assert.InDelta(t, 1.0, one, 1e-9, "k=%v", k)
	}
	mid := patch.Exp01[float64](patch.Const(0.5), patch.Const(4.0)).Sample(&ctx).At(0)
	assert.Less(t, mid, 0.5)
	mid = patch.Exp01[float64](patch.Const(0.5), patch.Const(-4.0)).Sample(&ctx).At(0)
	assert.Greater(t, mid, 0.5)
}

func TestSum(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 3}
	sum := patch.Sum[float64](ramp(), patch.Const(0.5), patch.MulScalar[float64](ramp(), 2))
	assert.Equal(t, []float64{3.5, 6.5, 9.5}, patch.Collect(sum.Sample(&ctx), nil))

	silence := patch.Sum[float64]()
	b := silence.Sample(&ctx)
	assert.Equal(t, []float64{0, 0, 0}, patch.Collect(b, nil))
}

func TestRecurrence(t *testing.T) {
	// one-pole lowpass with coefficient 0.5.
	var y float64
	lp := patch.Recurrence("lowpass", func(_ *patch.Ctx, x float64) float64 {
		y += 0.5 * (x - y)
		return y
	})
	sig := patch.ApplyFilter[float64](patch.Const(1.0), lp)
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 3}
	assert.Equal(t, []float64{0.5, 0.75, 0.875}, patch.Collect(sig.Sample(&ctx), nil))
	ctx.BatchIndex++
	assert.InDelta(t, 0.9375, sig.Sample(&ctx).At(0), 1e-12)
	assert.Equal(t, "lowpass", sig.Name())
}

func TestCtx(t *testing.T) {
	ctx := patch.Ctx{SampleRateHz: 48000, NumSamples: 480}
	assert.InDelta(t, 1.0/48000, ctx.SamplePeriod(), 1e-15)
	assert.Equal(t, 10*time.Millisecond, ctx.Duration().Round(time.Microsecond))
}
