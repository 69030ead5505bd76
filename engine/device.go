package engine

import "time"

// DefaultLatency is used when config doesn't define system latency.
const DefaultLatency = 10 * time.Millisecond

type (
	// Config defines how engine negotiates the stream with a device.
	Config struct {
		// SystemLatency is the desired duration of a single batch.
		SystemLatency time.Duration
		// SampleRate of the stream. Zero means device default.
		SampleRate int
		// Channels of the stream. Zero means two channels.
		Channels int
	}

	// DeviceInfo describes capabilities of an output device.
	DeviceInfo struct {
		Name              string
		DefaultSampleRate int
		MaxOutputChannels int
		// MinFrames and MaxFrames limit frames per buffer. Zero values
		// mean the device doesn't report the range.
		MinFrames int
		MaxFrames int
	}

	// StreamConfig is a negotiated configuration of the stream.
	StreamConfig struct {
		SampleRate int
		Channels   int
		// FramesPerBuffer is zero when device chooses the size.
		FramesPerBuffer int
	}

	// Callback is called by a device on its real-time thread. It must fill
	// out with interleaved samples, len(out) is a multiple of channels.
	Callback func(out []float32)

	// Device is an audio output device.
	Device interface {
		Info() (DeviceInfo, error)
		// Open opens the stream. Stream errors after it's started are
		// reported with onError, which may be called from any goroutine.
		Open(cfg StreamConfig, cb Callback, onError func(error)) (Stream, error)
	}

	// Stream is an opened device stream. Close must not return until the
	// last callback call has returned.
	Stream interface {
		Start() error
		Close() error
	}
)

// negotiate resolves stream config for the device.
func (cfg Config) negotiate(info DeviceInfo) (StreamConfig, error) {
	sc := StreamConfig{
		SampleRate: cfg.SampleRate,
		Channels:   cfg.Channels,
	}
	if sc.SampleRate == 0 {
		sc.SampleRate = info.DefaultSampleRate
	}
	if sc.Channels == 0 {
		sc.Channels = 2
	}
	if sc.SampleRate <= 0 {
		return StreamConfig{}, ErrSampleRate
	}
	if info.MaxOutputChannels > 0 && sc.Channels > info.MaxOutputChannels {
		return StreamConfig{}, ErrChannels
	}
	sc.FramesPerBuffer = framesPerBuffer(cfg.SystemLatency, sc.SampleRate, info)
	return sc, nil
}

// framesPerBuffer returns the number of frames which correspond to the
// latency. Result is rounded down to a multiple of four since some hosts
// reject other sizes and clamped to the device range. Zero is returned if
// device doesn't report the range.
func framesPerBuffer(latency time.Duration, sampleRate int, info DeviceInfo) int {
	if info.MinFrames == 0 && info.MaxFrames == 0 {
		return 0
	}
	if latency == 0 {
		latency = DefaultLatency
	}
	frames := int(latency.Seconds()*float64(sampleRate)) &^ 3
	if frames < info.MinFrames {
		return info.MinFrames
	}
	if info.MaxFrames > 0 && frames > info.MaxFrames {
		return info.MaxFrames
	}
	return frames
}
