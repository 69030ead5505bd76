// Package engine plays signal graphs on audio devices.
//
// Engine drives the graph from a single control goroutine, the one which
// calls Play. Device callback never runs graph code: for every callback
// it requests a batch of samples, waits until control goroutine
// acknowledges the request and then copies the computed batch under read
// lock. Control goroutine takes the write lock before acknowledging, so
// the callback always observes the batch computed for its own request.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"pipelined.dev/patch"
	"pipelined.dev/patch/log"
	"pipelined.dev/patch/metric"
	"pipelined.dev/patch/pcm"
)

type (
	// Engine plays a source on the device. Only one source can be played
	// at the time.
	Engine struct {
		uid     string
		device  Device
		config  Config
		logger  log.Logger
		metrics *metric.Metrics

		// mu guards bufs. Control goroutine writes, callback reads.
		mu   sync.RWMutex
		bufs [][]float64

		// stateMu guards link, which is nil when engine is stopped.
		stateMu   sync.Mutex
		link      *link
		mutations chan mutations

		// batchIndex is the index of the next batch. It continues across
		// plays, so memoized nodes of a graph played again never see the
		// index going back. Only control goroutine accesses it.
		batchIndex uint64
	}

	// Option provides a way to set functional parameters to engine.
	Option func(*Engine) error

	// Mutation changes the graph. Mutations are applied on the control
	// goroutine between two batches.
	Mutation func()

	mutations struct {
		ms   []Mutation
		done chan struct{}
	}
)

// New creates a new engine for the device.
func New(device Device, options ...Option) (*Engine, error) {
	if device == nil {
		return nil, ErrNoDevice
	}
	uid := xid.New().String()
	e := &Engine{
		uid:       uid,
		device:    device,
		config:    Config{SystemLatency: DefaultLatency},
		logger:    log.GetLogger().WithField("engine", uid),
		mutations: make(chan mutations),
	}
	for _, option := range options {
		if err := option(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// WithConfig sets engine config.
func WithConfig(cfg Config) Option {
	return func(e *Engine) error {
		if cfg.SystemLatency < 0 {
			return fmt.Errorf("negative latency %v", cfg.SystemLatency)
		}
		if cfg.SampleRate < 0 {
			return fmt.Errorf("negative sample rate %d: %w", cfg.SampleRate, ErrSampleRate)
		}
		if cfg.Channels < 0 {
			return fmt.Errorf("negative channels %d: %w", cfg.Channels, ErrChannels)
		}
		e.config = cfg
		return nil
	}
}

// WithLogger sets engine logger.
func WithLogger(logger log.Logger) Option {
	return func(e *Engine) error {
		e.logger = logger
		return nil
	}
}

// WithMetrics enables engine metrics.
func WithMetrics(m *metric.Metrics) Option {
	return func(e *Engine) error {
		e.metrics = m
		return nil
	}
}

// ID returns unique identifier of the engine.
func (e *Engine) ID() string {
	return e.uid
}

// Play opens the device stream and drives the source until context is
// done, the device reports an error or a finite device reaches the end of
// stream. Start-time errors are returned before any sample is computed.
// Signal which returns a batch of wrong length causes panic.
func (e *Engine) Play(ctx context.Context, src Source) (err error) {
	info, err := e.device.Info()
	if err != nil {
		return fmt.Errorf("error getting device info: %w", err)
	}
	sc, err := e.config.negotiate(info)
	if err != nil {
		return fmt.Errorf("error negotiating stream with %q: %w", info.Name, err)
	}
	if src.channels() > sc.Channels {
		return fmt.Errorf("source needs %d channels, stream has %d: %w", src.channels(), sc.Channels, ErrChannels)
	}

	l, err := e.start()
	if err != nil {
		return err
	}
	defer e.stop()

	e.allocate(src.channels(), sc.FramesPerBuffer)
	errc := make(chan error, 1)
	stream, err := e.device.Open(sc, e.callback(l, sc.Channels), func(err error) {
		select {
		case errc <- err:
		default:
		}
	})
	if err != nil {
		l.close()
		return fmt.Errorf("error opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		l.close()
		_ = stream.Close()
		return fmt.Errorf("error starting stream: %w", err)
	}
	e.logger.Info(fmt.Sprintf("streaming to %q: %d Hz, %d channels, %d frames per buffer",
		info.Name, sc.SampleRate, sc.Channels, sc.FramesPerBuffer))
	defer e.metrics.Streaming(sc.SampleRate)()
	defer func() {
		l.close()
		var errClose error
		if errClose = stream.Close(); errClose != nil {
			errClose = fmt.Errorf("error closing stream: %w", errClose)
		}
		e.logger.Debug("stream closed")
		perr := ErrorPlay{ErrStream: err, ErrClose: errClose}
		err = perr.ret()
	}()
	return e.serve(ctx, l, src, sc.SampleRate, errc)
}

// Mutate applies mutations between two batches. It blocks until mutations
// are applied and returns ErrInvalidState if engine is not playing. It
// must not be called from signals or observers.
func (e *Engine) Mutate(ms ...Mutation) error {
	e.stateMu.Lock()
	l := e.link
	e.stateMu.Unlock()
	if l == nil {
		return ErrInvalidState
	}
	m := mutations{ms: ms, done: make(chan struct{})}
	select {
	case e.mutations <- m:
	case <-l.quit:
		return ErrInvalidState
	}
	select {
	case <-m.done:
		return nil
	case <-l.quit:
		select {
		case <-m.done:
			return nil
		default:
			return ErrInvalidState
		}
	}
}

func (e *Engine) start() (*link, error) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if e.link != nil {
		return nil, fmt.Errorf("engine %s is already playing: %w", e.uid, ErrInvalidState)
	}
	e.link = newLink()
	return e.link, nil
}

func (e *Engine) stop() {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	e.link = nil
}

// allocate creates buffers before the stream is started, so the steady
// state doesn't allocate if device sticks to negotiated buffer size.
func (e *Engine) allocate(channels, frames int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.bufs = make([][]float64, channels)
	for i := range e.bufs {
		e.bufs[i] = make([]float64, 0, frames)
	}
}

// serve is the control loop. It computes one batch per request and
// applies mutations between batches.
func (e *Engine) serve(ctx context.Context, l *link, src Source, sampleRate int, errc <-chan error) error {
	measure := e.metrics.Meter(e.uid, sampleRate)()
	obs, _ := src.(observer)
	batch := patch.Ctx{SampleRateHz: float64(sampleRate), BatchIndex: e.batchIndex}
	for {
		select {
		case n := <-l.requests:
			// advanced before the fill, a batch interrupted by panic
			// might be memoized already.
			e.batchIndex = batch.BatchIndex + 1
			elapsed := e.fill(l, src, &batch, n)
			if late := measure(n, elapsed); late {
				e.logger.Debug(fmt.Sprintf("late fill: batch %d of %d samples took %v", batch.BatchIndex, n, elapsed))
			}
			if obs != nil {
				obs.observe(&batch, e.bufs)
			}
			batch.BatchIndex++
		case m := <-e.mutations:
			for _, fn := range m.ms {
				fn()
			}
			close(m.done)
		case err := <-errc:
			if errors.Is(err, ErrEndOfStream) {
				e.logger.Debug(fmt.Sprintf("end of stream after %d batches", batch.BatchIndex))
				return nil
			}
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// fill acknowledges the request and computes the batch under write lock.
func (e *Engine) fill(l *link, src Source, batch *patch.Ctx, n int) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	l.acknowledge()
	start := time.Now()
	batch.NumSamples = n
	for i := range e.bufs {
		if cap(e.bufs[i]) < n {
			e.bufs[i] = make([]float64, n)
		}
		e.bufs[i] = e.bufs[i][:n]
	}
	src.fill(batch, e.bufs)
	return time.Since(start)
}

// callback returns the function which is called by device on its
// real-time thread. It outputs silence once engine has stopped.
func (e *Engine) callback(l *link, channels int) Callback {
	return func(out []float32) {
		if !l.request(len(out) / channels) {
			pcm.Silence(out)
			return
		}
		e.mu.RLock()
		defer e.mu.RUnlock()
		interleave(out, e.bufs, channels)
	}
}

// interleave writes buffers into device output. Single buffer is written
// to every channel. Otherwise buffers are written to first channels and
// the rest is silenced.
func interleave(out []float32, bufs [][]float64, channels int) {
	if len(bufs) == 1 {
		for i, v := range bufs[0] {
			s := float32(v)
			frame := out[i*channels : (i+1)*channels]
			for j := range frame {
				frame[j] = s
			}
		}
		return
	}
	for i := 0; i < len(out)/channels; i++ {
		frame := out[i*channels : (i+1)*channels]
		for j := range frame {
			if j < len(bufs) {
				frame[j] = float32(bufs[j][i])
			} else {
				frame[j] = 0
			}
		}
	}
}
