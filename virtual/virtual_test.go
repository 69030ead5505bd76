package virtual_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pipelined.dev/patch"
	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/log"
	"pipelined.dev/patch/pcm"
	"pipelined.dev/patch/virtual"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestInfo(t *testing.T) {
	info, err := (&virtual.Device{}).Info()
	require.NoError(t, err)
	assert.Equal(t, engine.DeviceInfo{
		Name:              "virtual",
		DefaultSampleRate: virtual.DefaultSampleRate,
		MaxOutputChannels: virtual.DefaultChannels,
	}, info)
}

func TestFrames(t *testing.T) {
	tests := []struct {
		description string
		device      virtual.Device
		latency     time.Duration
		expected    []int
	}{
		{
			description: "default buffer",
			device:      virtual.Device{Frames: 1100},
			expected:    []int{512, 512, 76},
		},
		{
			description: "negotiated buffer",
			device: virtual.Device{
				Frames:     1000,
				SampleRate: 44100,
				MinFrames:  4,
				MaxFrames:  4096,
			},
			latency:  10 * time.Millisecond,
			expected: []int{440, 440, 120},
		},
		{
			description: "clamped buffer",
			device: virtual.Device{
				Frames:    600,
				MinFrames: 256,
				MaxFrames: 256,
			},
			latency:  time.Second,
			expected: []int{256, 256, 88},
		},
		{
			description: "no frames",
			device:      virtual.Device{},
		},
	}
	for _, test := range tests {
		var frames []int
		device := test.device
		device.Sink = func(block pcm.Interleaved) error {
			frames = append(frames, block.Frames())
			return nil
		}
		e, err := engine.New(&device,
			engine.WithLogger(log.Silent()),
			engine.WithConfig(engine.Config{SystemLatency: test.latency}),
		)
		require.NoError(t, err)
		err = e.Play(context.Background(), engine.Mono[float64](patch.Const(0.0)))
		assert.NoError(t, err, test.description)
		assert.Equal(t, test.expected, frames, test.description)
	}
}
