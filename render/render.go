// Package render plays patches into audio files. Rendering uses the same
// engine as live playback, only the device is virtual, so the file
// contains exactly what would be heard.
package render

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"pipelined.dev/patch/aiff"
	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/mp3"
	"pipelined.dev/patch/pcm"
	"pipelined.dev/patch/virtual"
	"pipelined.dev/patch/wav"
)

// Format of the rendered file.
type Format string

// Supported formats.
const (
	WAV  Format = "wav"
	AIFF Format = "aiff"
	MP3  Format = "mp3"
)

// ErrUnsupportedFormat is returned when format is not known.
var ErrUnsupportedFormat = errors.New("unsupported format")

const (
	defaultBitDepth = pcm.BitDepth16
	defaultBitRate  = 192
	defaultQuality  = 2
	minFrames       = 4
	maxFrames       = 1 << 16
)

type (
	// Options of the render.
	Options struct {
		Path string
		// Format is derived from path extension if empty.
		Format     Format
		Duration   time.Duration
		SampleRate int
		Channels   int
		// Latency defines the size of rendered blocks.
		Latency  time.Duration
		BitDepth pcm.BitDepth
		BitRate  int
		Quality  int
	}

	// Sink receives rendered blocks.
	Sink interface {
		Write(pcm.Interleaved) error
		Close() error
	}
)

// FormatOf returns format which corresponds to path extension.
func FormatOf(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "wav", "wave":
		return WAV, nil
	case "aif", "aiff":
		return AIFF, nil
	case "mp3":
		return MP3, nil
	}
	return "", fmt.Errorf("extension %q: %w", ext, ErrUnsupportedFormat)
}

// withDefaults fills zero options.
func (opts Options) withDefaults() (Options, error) {
	if opts.Format == "" {
		f, err := FormatOf(opts.Path)
		if err != nil {
			return Options{}, err
		}
		opts.Format = f
	}
	if opts.SampleRate == 0 {
		opts.SampleRate = virtual.DefaultSampleRate
	}
	if opts.Channels == 0 {
		opts.Channels = virtual.DefaultChannels
	}
	if opts.Latency == 0 {
		opts.Latency = engine.DefaultLatency
	}
	if opts.BitDepth == 0 {
		opts.BitDepth = defaultBitDepth
	}
	if opts.BitRate == 0 {
		opts.BitRate = defaultBitRate
	}
	if opts.Quality == 0 {
		opts.Quality = defaultQuality
	}
	return opts, nil
}

// NewSink creates file sink of the options format.
func NewSink(opts Options) (Sink, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	switch opts.Format {
	case WAV:
		s, err := wav.NewSink(opts.Path, opts.SampleRate, opts.Channels, opts.BitDepth)
		if err != nil {
			return nil, err
		}
		return s, nil
	case AIFF:
		s, err := aiff.NewSink(opts.Path, opts.SampleRate, opts.Channels, opts.BitDepth)
		if err != nil {
			return nil, err
		}
		return s, nil
	case MP3:
		s, err := mp3.NewSink(opts.Path, opts.SampleRate, opts.Channels, opts.BitRate, opts.Quality)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("format %q: %w", opts.Format, ErrUnsupportedFormat)
}

// Run renders the source into file. Engine options are applied after the
// render config, so only logger and metrics should be provided.
func Run(ctx context.Context, src engine.Source, opts Options, options ...engine.Option) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}
	sink, err := NewSink(opts)
	if err != nil {
		return fmt.Errorf("error creating %s sink: %w", opts.Format, err)
	}
	device := &virtual.Device{
		Name:       "render " + opts.Path,
		SampleRate: opts.SampleRate,
		Channels:   opts.Channels,
		MinFrames:  minFrames,
		MaxFrames:  maxFrames,
		Frames:     pcm.FramesOf(opts.SampleRate, opts.Duration),
		Sink:       sink.Write,
	}
	e, err := engine.New(device, append([]engine.Option{
		engine.WithConfig(engine.Config{
			SystemLatency: opts.Latency,
			SampleRate:    opts.SampleRate,
			Channels:      opts.Channels,
		}),
	}, options...)...)
	if err != nil {
		_ = sink.Close()
		return err
	}
	if err := e.Play(ctx, src); err != nil {
		_ = sink.Close()
		return fmt.Errorf("error rendering %s: %w", opts.Path, err)
	}
	return sink.Close()
}
