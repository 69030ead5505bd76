package patch_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"pipelined.dev/patch"
)

func TestCacheReplay(t *testing.T) {
	c := &counter{}
	cached := patch.Cache[float64](c)
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 4, BatchIndex: 3}

	first := patch.Collect(cached.Sample(&ctx), nil)
	second := patch.Collect(cached.Sample(&ctx), nil)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, c.computed)

	// older index replays the latest computed batch.
	ctx.BatchIndex = 1
	assert.Equal(t, first, patch.Collect(cached.Sample(&ctx), nil))
	assert.Equal(t, 1, c.computed)

	ctx.BatchIndex = 4
	assert.Equal(t, []float64{4000, 4001, 4002, 4003}, patch.Collect(cached.Sample(&ctx), nil))
	assert.Equal(t, 2, c.computed)
}

func TestCacheKeepsConstant(t *testing.T) {
	cached := patch.Cache[float64](patch.Const(0.25))
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 16}
	b := cached.Sample(&ctx)
	assert.IsType(t, &patch.ConstBuf[float64]{}, b)
	assert.Equal(t, 16, b.Len())
}

func TestSharedFanOut(t *testing.T) {
	tests := []struct {
		description string
		order       []int
	}{
		{
			description: "left first",
			order:       []int{0, 1},
		},
		{
			description: "right first",
			order:       []int{1, 0},
		},
		{
			description: "many consumers",
			order:       []int{0, 1, 1, 0, 1},
		},
	}
	for _, test := range tests {
		var calls int
		c := patch.Share[int](patch.Generate(func(*patch.Ctx) int {
			calls++
			return calls
		}))
		consumers := []patch.Signal[int]{c, c.Clone()}
		for batch := uint64(0); batch < 5; batch++ {
			ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 1, BatchIndex: batch}
			for _, i := range test.order {
				v := consumers[i].Sample(&ctx).At(0)
				assert.Equal(t, int(batch)+1, v, test.description)
			}
		}
		assert.Equal(t, 5, calls, test.description)
	}
}

func TestSharedStereo(t *testing.T) {
	c := &counter{}
	shared := patch.Share[float64](c)
	st := patch.NewStereo[float64, float64](
		patch.MulScalar[float64](shared, 2),
		patch.Map[float64](shared.Clone(), func(v float64) float64 { return -v }),
	)
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 2, BatchIndex: 1}
	l, r := st.Sample(&ctx)
	assert.Equal(t, []float64{2000, 2002}, patch.Collect(l, nil))
	assert.Equal(t, []float64{-1000, -1001}, patch.Collect(r, nil))
	assert.Equal(t, 1, c.computed)
}

func TestStereoFunc(t *testing.T) {
	st := patch.StereoFunc(func(ch patch.Channel) patch.Signal[float64] {
		if ch == patch.Left {
			return patch.Const(-1.0)
		}
		return patch.Const(1.0)
	})
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 1}
	l, r := st.Sample(&ctx)
	assert.Equal(t, -1.0, l.At(0))
	assert.Equal(t, 1.0, r.At(0))
	assert.Equal(t, "left", patch.Left.String())
	assert.Equal(t, "right", patch.Right.String())
}

func TestCellSet(t *testing.T) {
	cell := patch.NewCell[float64](patch.Const(1.0))
	consumer := patch.AddScalar[float64](cell.Clone(), 10)
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 2}
	assert.Equal(t, []float64{11, 11}, patch.Collect(consumer.Sample(&ctx), nil))

	cell.Set(patch.Const(2.0))
	// same batch is replayed with the old result.
	assert.Equal(t, []float64{11, 11}, patch.Collect(consumer.Sample(&ctx), nil))

	ctx.BatchIndex++
	assert.Equal(t, []float64{12, 12}, patch.Collect(consumer.Sample(&ctx), nil))
}

func TestCellConcurrentSet(t *testing.T) {
	cell := patch.NewCell[float64](patch.Const(0.0))
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			cell.Set(patch.Const(float64(i)))
		}
	}()
	for i := 0; i < 100; i++ {
		ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 8, BatchIndex: uint64(i)}
		b := cell.Sample(&ctx)
		assert.Equal(t, 8, b.Len())
	}
	wg.Wait()
}
