// Package demo builds the stereo patch played by the command line tool.
//
// A step sequencer picks the note of each beat and triggers an envelope.
// Each channel has its own oscillator and filter, the right one is
// detuned. Filter cutoff is modulated by a shared slow LFO.
package demo

import (
	"math"

	"pipelined.dev/patch"
	"pipelined.dev/patch/config"
	"pipelined.dev/patch/dspfilter"
	"pipelined.dev/patch/internal/osc"
)

const (
	attackS  = 0.002
	releaseS = 0.08
	// gate is open for this share of the beat.
	gateShare = 0.5
	// LFO sweeps cutoff this many octaves up and down at full depth.
	lfoOctaves = 2
	// resonance of config is scaled to the moog range.
	moogResonance = 4
)

// Patch is a hot-swappable stereo patch.
type Patch struct {
	left  patch.Cell[float64]
	right patch.Cell[float64]
}

// beat is the value of sequencer for a batch.
type beat struct {
	hz   float64
	trig bool
}

// New builds the patch.
func New(cfg config.Patch) (*Patch, error) {
	s, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return &Patch{
		left:  patch.NewCell(s.Left),
		right: patch.NewCell(s.Right),
	}, nil
}

// Stereo returns output of the patch.
func (p *Patch) Stereo() patch.Stereo[float64, float64] {
	return patch.NewStereo[float64, float64](p.left.Clone(), p.right.Clone())
}

// Update rebuilds the patch with new config. The sequencer starts from
// the first step. To swap both channels in the same batch, call it from
// engine mutation.
func (p *Patch) Update(cfg config.Patch) error {
	s, err := build(cfg)
	if err != nil {
		return err
	}
	p.left.Set(s.Left)
	p.right.Set(s.Right)
	return nil
}

func build(cfg config.Patch) (patch.Stereo[float64, float64], error) {
	if err := cfg.Validate(); err != nil {
		return patch.Stereo[float64, float64]{}, err
	}
	wave, err := osc.ParseWave(cfg.Waveform)
	if err != nil {
		return patch.Stereo[float64, float64]{}, err
	}
	beatS := 60 / cfg.Tempo
	seq := sequencer(cfg.Steps, beatS)
	env := envelope(seq, beatS*gateShare)
	lfo := patch.Share[float64](osc.New(osc.Sine, patch.Const(cfg.LFORate)))
	cutoff := patch.Share[float64](patch.Map[float64](lfo, func(v float64) float64 {
		return cfg.Cutoff * math.Exp2(lfoOctaves*cfg.LFODepth*v)
	}))

	var buildErr error
	s := patch.StereoFunc(func(ch patch.Channel) patch.Signal[float64] {
		detune := 0.0
		if ch == patch.Right {
			detune = cfg.Detune
		}
		freq := patch.FrameMap[beat](seq, func(b beat) float64 {
			return osc.Detune(b.hz, detune)
		})
		voice, ferr := filter(cfg, osc.New(wave, patch.Lift[float64](freq)), cutoff.Clone())
		if ferr != nil {
			buildErr = ferr
			return patch.Const(0.0)
		}
		return patch.MulScalar(patch.Mul(voice, patch.Signal[float64](env.Clone())), cfg.Gain)
	})
	if buildErr != nil {
		return patch.Stereo[float64, float64]{}, buildErr
	}
	return s, nil
}

// sequencer returns the note of current beat. Beats are counted in
// batches, so a beat starts at the first batch after its time.
func sequencer(steps []int, beatS float64) patch.FrameShared[beat] {
	notes := make([]float64, len(steps))
	for i, n := range steps {
		notes[i] = osc.NoteHz(n)
	}
	var (
		elapsed float64
		last    = -1
	)
	return patch.ShareFrame[beat](patch.FrameFunc[beat](func(ctx *patch.Ctx) beat {
		k := int(elapsed / beatS)
		elapsed += float64(ctx.NumSamples) * ctx.SamplePeriod()
		b := beat{hz: notes[k%len(notes)], trig: k != last}
		last = k
		return b
	}))
}

// envelope returns amplitude which rises when the beat starts and decays
// after the gate closes.
func envelope(seq patch.FrameShared[beat], gateS float64) patch.Shared[float64] {
	trig := patch.RisingEdge(patch.Lift[bool](patch.FrameMap[beat](seq, func(b beat) bool {
		return b.trig
	})))
	gate := patch.Map[bool](patch.TrigToGate[float64](trig, patch.Const(gateS)), func(open bool) float64 {
		if open {
			return 1
		}
		return 0
	})
	var level float64
	smooth := patch.Recurrence("envelope", func(ctx *patch.Ctx, target float64) float64 {
		t := releaseS
		if target > level {
			t = attackS
		}
		level += (target - level) * (1 - math.Exp(-ctx.SamplePeriod()/t))
		return level
	})
	return patch.Share[float64](patch.ApplyFilter[float64, float64](gate, smooth))
}

func filter(cfg config.Patch, in, cutoff patch.Signal[float64]) (patch.Signal[float64], error) {
	switch cfg.Filter {
	case config.FilterMoog:
		return patch.ApplyFilter[float64, float64](in, dspfilter.NewMoog(cutoff, patch.Const(cfg.Resonance*moogResonance))), nil
	case config.FilterButterworth:
		f, err := dspfilter.NewButterworth(dspfilter.LowPass, cfg.FilterOrder, cutoff)
		if err != nil {
			return nil, err
		}
		return patch.ApplyFilter[float64, float64](in, f), nil
	}
	return in, nil
}
