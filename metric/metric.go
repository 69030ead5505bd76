// Package metric exposes engine counters as prometheus metrics.
package metric

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pipelined.dev/patch/pcm"
)

const (
	namespace   = "patch"
	engineLabel = "engine"
	rateLabel   = "sample_rate"
)

// Metrics holds collectors of engine fills. Nil metrics are valid and
// only detect late fills.
type Metrics struct {
	Fills        *prometheus.CounterVec
	Samples      *prometheus.CounterVec
	LateFills    *prometheus.CounterVec
	FillDuration *prometheus.HistogramVec
	Interval     *prometheus.GaugeVec
	Engines      *prometheus.GaugeVec
}

// New registers engine metrics with the registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Fills: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fills_total",
				Help:      "Number of batches computed by the engine.",
			},
			[]string{engineLabel},
		),
		Samples: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "samples_total",
				Help:      "Number of samples computed by the engine.",
			},
			[]string{engineLabel},
		),
		LateFills: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "late_fills_total",
				Help:      "Number of batches which took longer to compute than to play.",
			},
			[]string{engineLabel},
		),
		FillDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fill_duration_seconds",
				Help:      "Time spent computing a batch.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
			},
			[]string{engineLabel},
		),
		Interval: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "fill_interval_seconds",
				Help:      "Time between two latest batch requests.",
			},
			[]string{engineLabel},
		),
		Engines: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "engines",
				Help:      "Number of streaming engines.",
			},
			[]string{rateLabel},
		),
	}
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until engine is actually streaming.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when batch is computed. It reports if the
// batch took longer to compute than its playback duration. Empty batches
// are never late.
type MeasureFunc func(numSamples int, elapsed time.Duration) (late bool)

// Meter creates new meter closure to capture engine counters.
func (m *Metrics) Meter(engine string, sampleRate int) ResetFunc {
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			batchSize     int
			batchDuration time.Duration
		)
		return func(n int, elapsed time.Duration) bool {
			// recalculate batch duration only when batch size has changed
			if batchSize != n {
				batchSize = n
				batchDuration = pcm.DurationOf(sampleRate, n)
			}
			late := n > 0 && elapsed > batchDuration
			if m != nil {
				m.Interval.WithLabelValues(engine).Set(time.Since(calledAt).Seconds())
				m.Fills.WithLabelValues(engine).Inc()
				m.Samples.WithLabelValues(engine).Add(float64(n))
				m.FillDuration.WithLabelValues(engine).Observe(elapsed.Seconds())
				if late {
					m.LateFills.WithLabelValues(engine).Inc()
				}
			}
			calledAt = time.Now()
			return late
		}
	}
}

// Streaming marks an engine of provided sample rate as streaming. Returned
// function marks it stopped.
func (m *Metrics) Streaming(sampleRate int) func() {
	if m == nil {
		return func() {}
	}
	g := m.Engines.WithLabelValues(strconv.Itoa(sampleRate))
	g.Inc()
	return g.Dec
}
