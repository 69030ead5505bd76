// Package pcm provides conversions of interleaved audio blocks. It allows to:
//	- convert float samples to ints of given bit depth
//	- extract single channel from interleaved data
//	- convert between sample counts and durations
package pcm

import (
	"math"
	"time"
)

const (
	// BitDepth8 is 8 bit depth.
	BitDepth8 = BitDepth(8)
	// BitDepth16 is 16 bit depth.
	BitDepth16 = BitDepth(16)
	// BitDepth24 is 24 bit depth.
	BitDepth24 = BitDepth(24)
	// BitDepth32 is 32 bit depth.
	BitDepth32 = BitDepth(32)
)

// BitDepth contains values required for float-to-int conversion.
type BitDepth int

// Valid reports if bit depth is supported.
func (bitDepth BitDepth) Valid() bool {
	return bitDepth.multiplier() != 0
}

// multiplier is used when float to int conversion is done.
func (bitDepth BitDepth) multiplier() int {
	switch bitDepth {
	case BitDepth8:
		return math.MaxInt8
	case BitDepth16:
		return math.MaxInt16
	case BitDepth24:
		return 1<<23 - 1
	case BitDepth32:
		return math.MaxInt32
	default:
		return 0
	}
}

// Interleaved is a block of float samples where frames follow each other
// and each frame holds one sample per channel.
type Interleaved struct {
	Data        []float32
	NumChannels int
}

// Frames returns number of frames in the block.
func (f Interleaved) Frames() int {
	if f.NumChannels == 0 {
		return 0
	}
	return len(f.Data) / f.NumChannels
}

// AsInts converts samples to ints of provided bit depth. Samples outside
// of [-1, 1] are clipped. Capacity of dst is reused.
func (f Interleaved) AsInts(bitDepth BitDepth, dst []int) []int {
	multiplier := float64(bitDepth.multiplier())
	if cap(dst) < len(f.Data) {
		dst = make([]int, len(f.Data))
	}
	dst = dst[:len(f.Data)]
	for i, v := range f.Data {
		s := float64(v)
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		dst[i] = int(s * multiplier)
	}
	return dst
}

// FromInts converts interleaved ints of provided bit depth to floats.
func FromInts(ints []int, numChannels int, bitDepth BitDepth) Interleaved {
	divider := 1.0
	if bitDepth.Valid() {
		divider = float64(bitDepth.multiplier())
	}
	data := make([]float32, len(ints))
	for i, v := range ints {
		data[i] = float32(float64(v) / divider)
	}
	return Interleaved{Data: data, NumChannels: numChannels}
}

// Channel returns samples of a single channel. Capacity of dst is reused.
func (f Interleaved) Channel(channel int, dst []float64) []float64 {
	dst = dst[:0]
	if channel < 0 || channel >= f.NumChannels {
		return dst
	}
	for i := channel; i < len(f.Data); i += f.NumChannels {
		dst = append(dst, float64(f.Data[i]))
	}
	return dst
}

// Silence zeroes all samples.
func Silence(data []float32) {
	clear(data)
}

// DurationOf returns time duration of passed samples for this sample rate.
func DurationOf(sampleRate int, samples int) time.Duration {
	return time.Duration(float64(samples) / float64(sampleRate) * float64(time.Second))
}

// FramesOf returns number of frames which fit into duration for this
// sample rate. Result is rounded down.
func FramesOf(sampleRate int, d time.Duration) int {
	return int(d.Seconds() * float64(sampleRate))
}
