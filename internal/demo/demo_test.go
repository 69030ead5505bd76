package demo_test

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/patch"
	"pipelined.dev/patch/config"
	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/internal/demo"
	"pipelined.dev/patch/log"
	"pipelined.dev/patch/render"
	"pipelined.dev/patch/wav"
)

// play samples the patch and returns peaks of both channels.
func play(p *demo.Patch, ticks int) (left, right float64) {
	s := p.Stereo()
	ctx := patch.Ctx{SampleRateHz: 44100, NumSamples: 441}
	var l, r []float64
	for i := 0; i < ticks; i++ {
		lb, rb := s.Sample(&ctx)
		l = patch.Collect(lb, l)
		r = patch.Collect(rb, r)
		for j := range l {
			left = math.Max(left, math.Abs(l[j]))
			right = math.Max(right, math.Abs(r[j]))
		}
		ctx.BatchIndex++
	}
	return left, right
}

func TestPatch(t *testing.T) {
	for _, filter := range []string{config.FilterNone, config.FilterMoog, config.FilterButterworth} {
		t.Run(filter, func(t *testing.T) {
			cfg := config.Default().Patch
			cfg.Filter = filter
			p, err := demo.New(cfg)
			require.NoError(t, err)
			left, right := play(p, 100)
			assert.Greater(t, left, 0.0)
			assert.Greater(t, right, 0.0)
			assert.Less(t, left, 1.0)
			assert.Less(t, right, 1.0)
		})
	}
}

func TestUpdate(t *testing.T) {
	cfg := config.Default().Patch
	p, err := demo.New(cfg)
	require.NoError(t, err)

	silent := cfg
	silent.Gain = 0
	require.NoError(t, p.Update(silent))
	left, right := play(p, 50)
	assert.Equal(t, 0.0, left)
	assert.Equal(t, 0.0, right)

	invalid := cfg
	invalid.Waveform = "pulse"
	assert.ErrorIs(t, p.Update(invalid), config.ErrInvalid)
	left, _ = play(p, 10)
	assert.Equal(t, 0.0, left, "invalid update keeps the patch")
}

func TestNewInvalid(t *testing.T) {
	cfg := config.Default().Patch
	cfg.Steps = nil
	_, err := demo.New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRender(t *testing.T) {
	p, err := demo.New(config.Default().Patch)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "demo.wav")
	err = render.Run(context.Background(), engine.Stereo(p.Stereo()), render.Options{
		Path:     path,
		Duration: 500 * time.Millisecond,
	}, engine.WithLogger(log.Silent()))
	require.NoError(t, err)

	clip, err := wav.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 22050, clip.Frames())
	assert.NotEqual(t, clip.Channel(0, nil), clip.Channel(1, nil), "right channel is detuned")
}
