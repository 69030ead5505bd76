// Package portaudio provides output devices backed by portaudio.
package portaudio

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"pipelined.dev/patch/engine"
)

// Portaudio doesn't report supported buffer sizes, so the range is wide
// enough for any sensible latency.
const (
	minFrames = 4
	maxFrames = 1 << 14
)

type (
	// Device is a portaudio output device.
	Device struct {
		// name is empty for default device.
		name       string
		underflows atomic.Uint64
	}

	stream struct {
		stream *portaudio.Stream
	}
)

// Default returns default output device of the host.
func Default() *Device {
	return &Device{}
}

// Named returns output device with the name.
func Named(name string) *Device {
	return &Device{name: name}
}

// Devices returns all output devices.
func Devices() ([]engine.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	defer portaudio.Terminate()
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	infos := make([]engine.DeviceInfo, 0, len(devices))
	for _, d := range devices {
		if d.MaxOutputChannels == 0 {
			continue
		}
		infos = append(infos, info(d))
	}
	return infos, nil
}

// Underflows returns the number of callbacks which were late to fill the
// output.
func (d *Device) Underflows() uint64 {
	return d.underflows.Load()
}

// Info returns device info.
func (d *Device) Info() (engine.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return engine.DeviceInfo{}, err
	}
	defer portaudio.Terminate()
	dev, err := d.lookup()
	if err != nil {
		return engine.DeviceInfo{}, err
	}
	return info(dev), nil
}

// Open opens a low latency output stream. Portaudio is initialized until
// the stream is closed. Portaudio doesn't report errors of running
// streams, so onError is never called and underflows are only counted.
func (d *Device) Open(cfg engine.StreamConfig, cb engine.Callback, _ func(error)) (engine.Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	dev, err := d.lookup()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	params := portaudio.LowLatencyParameters(nil, dev)
	params.Output.Channels = cfg.Channels
	params.SampleRate = float64(cfg.SampleRate)
	params.FramesPerBuffer = cfg.FramesPerBuffer
	s, err := portaudio.OpenStream(params, func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
		if flags&portaudio.OutputUnderflow != 0 {
			d.underflows.Add(1)
		}
		cb(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("error opening portaudio stream on %q: %w", dev.Name, err)
	}
	return &stream{stream: s}, nil
}

func (d *Device) lookup() (*portaudio.DeviceInfo, error) {
	if d.name == "" {
		dev, err := portaudio.DefaultOutputDevice()
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, engine.ErrNoDevice)
		}
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	for _, dev := range devices {
		if dev.Name == d.name && dev.MaxOutputChannels > 0 {
			return dev, nil
		}
	}
	return nil, fmt.Errorf("device %q: %w", d.name, engine.ErrNoDevice)
}

func info(d *portaudio.DeviceInfo) engine.DeviceInfo {
	return engine.DeviceInfo{
		Name:              d.Name,
		DefaultSampleRate: int(d.DefaultSampleRate),
		MaxOutputChannels: d.MaxOutputChannels,
		MinFrames:         minFrames,
		MaxFrames:         maxFrames,
	}
}

func (s *stream) Start() error {
	return s.stream.Start()
}

// Close stops the stream, which waits for the last callback, and
// terminates portaudio.
func (s *stream) Close() error {
	errStop := s.stream.Stop()
	errClose := s.stream.Close()
	errTerminate := portaudio.Terminate()
	switch {
	case errStop != nil:
		return fmt.Errorf("error stopping portaudio stream: %w", errStop)
	case errClose != nil:
		return fmt.Errorf("error closing portaudio stream: %w", errClose)
	case errTerminate != nil:
		return fmt.Errorf("error terminating portaudio: %w", errTerminate)
	}
	return nil
}
