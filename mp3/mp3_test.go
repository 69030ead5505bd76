package mp3_test

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/patch/mp3"
	"pipelined.dev/patch/pcm"
)

func sine(frames, channels int) pcm.Interleaved {
	data := make([]float32, frames*channels)
	for i := 0; i < frames; i++ {
		v := float32(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
		for c := 0; c < channels; c++ {
			data[i*channels+c] = v
		}
	}
	return pcm.Interleaved{Data: data, NumChannels: channels}
}

func TestSink(t *testing.T) {
	for _, channels := range []int{1, 2} {
		path := filepath.Join(t.TempDir(), "out.mp3")
		sink, err := mp3.NewSink(path, 44100, channels, 192, 2)
		require.NoError(t, err)
		block := sine(4410, channels)
		for i := 0; i < 10; i++ {
			require.NoError(t, sink.Write(block))
		}
		require.NoError(t, sink.Close())

		f, err := os.Open(path)
		require.NoError(t, err)
		d, err := gomp3.NewDecoder(f)
		require.NoError(t, err)
		assert.Equal(t, 44100, d.SampleRate())
		assert.Greater(t, d.Length(), int64(0))
		require.NoError(t, f.Close())
	}
}

func TestUnsupportedChannels(t *testing.T) {
	_, err := mp3.NewSink(filepath.Join(t.TempDir(), "out.mp3"), 44100, 3, 192, 2)
	assert.ErrorIs(t, err, mp3.ErrUnsupportedChannels)

	sink, err := mp3.NewSink(filepath.Join(t.TempDir(), "out.mp3"), 44100, 2, 192, 2)
	require.NoError(t, err)
	err = sink.Write(pcm.Interleaved{Data: make([]float32, 3), NumChannels: 3})
	assert.ErrorIs(t, err, mp3.ErrUnsupportedChannels)
	require.NoError(t, sink.Close())
}
