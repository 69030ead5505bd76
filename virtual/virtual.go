// Package virtual provides an output device which isn't backed by audio
// hardware. It calls engine callback in a plain goroutine as fast as the
// engine computes batches, so it's used to render patches offline and to
// test engines with scripted buffer sizes.
package virtual

import (
	"sync"

	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/pcm"
)

const (
	// DefaultSampleRate is used if device sample rate is not set.
	DefaultSampleRate = 44100
	// DefaultChannels is used if device channels are not set.
	DefaultChannels = 2
	// DefaultFrames is used if stream doesn't define frames per buffer.
	DefaultFrames = 512
)

type (
	// Device is a finite virtual device. It requests either scripted
	// blocks or Frames split by negotiated buffer size. When all frames
	// are requested, the device reports engine.ErrEndOfStream.
	Device struct {
		Name       string
		SampleRate int
		Channels   int
		MinFrames  int
		MaxFrames  int
		// Blocks defines frames of each callback. If empty, Frames are
		// requested.
		Blocks []int
		// Frames is the total number of frames requested.
		Frames int
		// Sink receives the output of each callback. Block is only valid
		// during the call. Error stops the stream.
		Sink func(block pcm.Interleaved) error
	}

	stream struct {
		device  *Device
		cfg     engine.StreamConfig
		cb      engine.Callback
		onError func(error)

		stop chan struct{}
		wg   sync.WaitGroup
		once sync.Once
	}
)

// Info returns device info.
func (d *Device) Info() (engine.DeviceInfo, error) {
	info := engine.DeviceInfo{
		Name:              d.Name,
		DefaultSampleRate: d.SampleRate,
		MaxOutputChannels: d.Channels,
		MinFrames:         d.MinFrames,
		MaxFrames:         d.MaxFrames,
	}
	if info.Name == "" {
		info.Name = "virtual"
	}
	if info.DefaultSampleRate == 0 {
		info.DefaultSampleRate = DefaultSampleRate
	}
	if info.MaxOutputChannels == 0 {
		info.MaxOutputChannels = DefaultChannels
	}
	return info, nil
}

// Open returns a new stream. Blocks are requested once stream is started.
func (d *Device) Open(cfg engine.StreamConfig, cb engine.Callback, onError func(error)) (engine.Stream, error) {
	return &stream{
		device:  d,
		cfg:     cfg,
		cb:      cb,
		onError: onError,
		stop:    make(chan struct{}),
	}, nil
}

// next returns the frames of i-th callback given the frames requested so
// far. False is returned when device doesn't need more frames.
func (d *Device) next(i, requested, framesPerBuffer int) (int, bool) {
	if len(d.Blocks) > 0 {
		if i >= len(d.Blocks) {
			return 0, false
		}
		return d.Blocks[i], true
	}
	if requested >= d.Frames {
		return 0, false
	}
	if framesPerBuffer == 0 {
		framesPerBuffer = DefaultFrames
	}
	return min(d.Frames-requested, framesPerBuffer), true
}

func (s *stream) Start() error {
	s.wg.Add(1)
	go s.run()
	return nil
}

func (s *stream) run() {
	defer s.wg.Done()
	var (
		buf       []float32
		requested int
	)
	for i := 0; ; i++ {
		frames, ok := s.device.next(i, requested, s.cfg.FramesPerBuffer)
		if !ok {
			break
		}
		select {
		case <-s.stop:
			return
		default:
		}
		n := frames * s.cfg.Channels
		if cap(buf) < n {
			buf = make([]float32, n)
		}
		out := buf[:n]
		s.cb(out)
		requested += frames
		if s.device.Sink != nil {
			if err := s.device.Sink(pcm.Interleaved{Data: out, NumChannels: s.cfg.Channels}); err != nil {
				s.onError(err)
				return
			}
		}
	}
	s.onError(engine.ErrEndOfStream)
}

// Close stops requesting blocks and waits for the last callback.
func (s *stream) Close() error {
	s.once.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
	return nil
}
