//go:build portaudio

package portaudio_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/patch"
	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/log"
	"pipelined.dev/patch/portaudio"
)

func TestDevices(t *testing.T) {
	devices, err := portaudio.Devices()
	require.NoError(t, err)
	assert.NotEmpty(t, devices)
}

func TestPlay(t *testing.T) {
	device := portaudio.Default()
	e, err := engine.New(device, engine.WithLogger(log.Silent()))
	require.NoError(t, err)

	var phase float64
	sine := patch.Generate(func(ctx *patch.Ctx) float64 {
		phase += 440 * ctx.SamplePeriod()
		return 0.1 * math.Sin(2*math.Pi*phase)
	})
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	err = e.Play(ctx, engine.Mono[float64](sine))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestUnknownDevice(t *testing.T) {
	_, err := portaudio.Named("no such device").Info()
	assert.ErrorIs(t, err, engine.ErrNoDevice)
}
