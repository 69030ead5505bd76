// Package config loads patch player configuration from yaml files.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pipelined.dev/patch/engine"
	"pipelined.dev/patch/pcm"
	"pipelined.dev/patch/render"
)

// ErrInvalid is returned when config has invalid values.
var ErrInvalid = errors.New("invalid config")

// Supported waveforms and filters of the patch.
const (
	WaveSine     = "sine"
	WaveSaw      = "saw"
	WaveSquare   = "square"
	WaveTriangle = "triangle"

	FilterNone        = "none"
	FilterMoog        = "moog"
	FilterButterworth = "butterworth"
)

type (
	// Config is the root of configuration file.
	Config struct {
		Log     Log     `yaml:"log"`
		Engine  Engine  `yaml:"engine"`
		Patch   Patch   `yaml:"patch"`
		Render  Render  `yaml:"render"`
		Metrics Metrics `yaml:"metrics"`
	}

	// Log configures logger.
	Log struct {
		Level string `yaml:"level"`
	}

	// Engine configures audio device stream.
	Engine struct {
		// Device name, empty for default device.
		Device     string        `yaml:"device"`
		Latency    time.Duration `yaml:"latency"`
		SampleRate int           `yaml:"sample_rate"`
		Channels   int           `yaml:"channels"`
	}

	// Patch configures demo patch. It can be changed while playing.
	Patch struct {
		// Tempo of step sequencer in beats per minute.
		Tempo float64 `yaml:"tempo"`
		// Steps are midi notes played by sequencer, one per beat.
		Steps       []int   `yaml:"steps"`
		Waveform    string  `yaml:"waveform"`
		Filter      string  `yaml:"filter"`
		FilterOrder int     `yaml:"filter_order"`
		Cutoff      float64 `yaml:"cutoff"`
		Resonance   float64 `yaml:"resonance"`
		LFORate     float64 `yaml:"lfo_rate"`
		LFODepth    float64 `yaml:"lfo_depth"`
		// Detune of right channel in cents.
		Detune float64 `yaml:"detune"`
		Gain   float64 `yaml:"gain"`
	}

	// Render configures offline rendering.
	Render struct {
		Path     string        `yaml:"path"`
		Duration time.Duration `yaml:"duration"`
		BitDepth int           `yaml:"bit_depth"`
		BitRate  int           `yaml:"bit_rate"`
		Quality  int           `yaml:"quality"`
	}

	// Metrics configures prometheus endpoint.
	Metrics struct {
		// Addr to listen, empty disables endpoint.
		Addr string `yaml:"addr"`
	}
)

// Default returns config with default values.
func Default() Config {
	return Config{
		Log: Log{
			Level: "info",
		},
		Engine: Engine{
			Latency:  engine.DefaultLatency,
			Channels: 2,
		},
		Patch: Patch{
			Tempo:       120,
			Steps:       []int{45, 48, 52, 55, 57, 55, 52, 48},
			Waveform:    WaveSaw,
			Filter:      FilterMoog,
			FilterOrder: 4,
			Cutoff:      1200,
			Resonance:   0.4,
			LFORate:     0.25,
			LFODepth:    0.5,
			Detune:      7,
			Gain:        0.2,
		},
		Render: Render{
			Path:     "patch.wav",
			Duration: 10 * time.Second,
			BitDepth: 16,
			BitRate:  192,
			Quality:  2,
		},
	}
}

// Load reads config file. Values missing in file keep defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("error reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes config. Values missing in data keep defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %v: %w", err, ErrInvalid)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks config values.
func (c Config) Validate() error {
	switch {
	case c.Engine.Latency < 0:
		return fmt.Errorf("negative latency %v: %w", c.Engine.Latency, ErrInvalid)
	case c.Engine.SampleRate < 0:
		return fmt.Errorf("negative sample rate %d: %w", c.Engine.SampleRate, ErrInvalid)
	case c.Engine.Channels < 0:
		return fmt.Errorf("negative channels %d: %w", c.Engine.Channels, ErrInvalid)
	case c.Render.Duration < 0:
		return fmt.Errorf("negative render duration %v: %w", c.Render.Duration, ErrInvalid)
	case c.Render.BitDepth != 0 && !pcm.BitDepth(c.Render.BitDepth).Valid():
		return fmt.Errorf("bit depth %d: %w", c.Render.BitDepth, ErrInvalid)
	}
	return c.Patch.Validate()
}

// Validate checks patch values.
func (p Patch) Validate() error {
	switch {
	case p.Tempo <= 0:
		return fmt.Errorf("tempo %v must be positive: %w", p.Tempo, ErrInvalid)
	case len(p.Steps) == 0:
		return fmt.Errorf("no sequencer steps: %w", ErrInvalid)
	case p.Cutoff <= 0:
		return fmt.Errorf("cutoff %v must be positive: %w", p.Cutoff, ErrInvalid)
	case p.Resonance < 0 || p.Resonance > 1:
		return fmt.Errorf("resonance %v must be within [0, 1]: %w", p.Resonance, ErrInvalid)
	case p.LFORate < 0:
		return fmt.Errorf("negative lfo rate %v: %w", p.LFORate, ErrInvalid)
	case p.LFODepth < 0 || p.LFODepth > 1:
		return fmt.Errorf("lfo depth %v must be within [0, 1]: %w", p.LFODepth, ErrInvalid)
	case p.Gain < 0 || p.Gain > 1:
		return fmt.Errorf("gain %v must be within [0, 1]: %w", p.Gain, ErrInvalid)
	}
	for _, note := range p.Steps {
		if note < 0 || note > 127 {
			return fmt.Errorf("step note %d is not a midi note: %w", note, ErrInvalid)
		}
	}
	switch p.Waveform {
	case WaveSine, WaveSaw, WaveSquare, WaveTriangle:
	default:
		return fmt.Errorf("waveform %q: %w", p.Waveform, ErrInvalid)
	}
	switch p.Filter {
	case FilterNone, FilterMoog:
	case FilterButterworth:
		if p.FilterOrder <= 0 {
			return fmt.Errorf("butterworth order %d must be positive: %w", p.FilterOrder, ErrInvalid)
		}
	default:
		return fmt.Errorf("filter %q: %w", p.Filter, ErrInvalid)
	}
	return nil
}

// EngineConfig returns engine config.
func (c Config) EngineConfig() engine.Config {
	return engine.Config{
		SystemLatency: c.Engine.Latency,
		SampleRate:    c.Engine.SampleRate,
		Channels:      c.Engine.Channels,
	}
}

// RenderOptions returns render options.
func (c Config) RenderOptions() render.Options {
	return render.Options{
		Path:       c.Render.Path,
		Duration:   c.Render.Duration,
		SampleRate: c.Engine.SampleRate,
		Channels:   c.Engine.Channels,
		Latency:    c.Engine.Latency,
		BitDepth:   pcm.BitDepth(c.Render.BitDepth),
		BitRate:    c.Render.BitRate,
		Quality:    c.Render.Quality,
	}
}
