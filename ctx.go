package patch

import "time"

// Ctx is a context of a single batch. It's shared by all nodes sampled for
// the same batch and must not be modified by them.
type Ctx struct {
	// SampleRateHz is the sample rate of the audio device.
	SampleRateHz float64
	// BatchIndex is increased by one for each new batch.
	BatchIndex uint64
	// NumSamples is the number of samples requested for this batch.
	NumSamples int
}

// SamplePeriod returns the duration of one sample in seconds.
func (ctx *Ctx) SamplePeriod() float64 {
	return 1 / ctx.SampleRateHz
}

// Duration returns the duration of this batch.
func (ctx *Ctx) Duration() time.Duration {
	if ctx.SampleRateHz == 0 {
		return 0
	}
	return time.Duration(float64(ctx.NumSamples) / ctx.SampleRateHz * float64(time.Second))
}
