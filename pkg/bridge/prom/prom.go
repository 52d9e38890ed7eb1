// Package prom exports handshake metrics to Prometheus.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/robotalks/newbridge/pkg/bridge"
)

// NewRegistry returns a fresh Prometheus registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Handler returns a Prometheus HTTP handler bound to the registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Observer implements bridge.Observer with Prometheus metrics.
type Observer struct {
	phase      prometheus.Gauge
	handshakes *prometheus.CounterVec
	rounds     *prometheus.CounterVec
	lastRounds prometheus.Gauge
	drained    prometheus.Counter
	overflows  prometheus.Counter
	duration   prometheus.Histogram
}

// NewObserver registers handshake metrics on the registry.
func NewObserver(reg prometheus.Registerer) *Observer {
	o := &Observer{
		phase: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newbridge_handshake_phase",
			Help: "Current handshake phase (0=INIT .. 4=DONE).",
		}),
		handshakes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newbridge_handshakes_total",
			Help: "Completed handshakes by status.",
		}, []string{"status"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newbridge_handshake_rounds_total",
			Help: "Shell sync rounds by prompt match outcome.",
		}, []string{"matched"}),
		lastRounds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newbridge_handshake_last_rounds",
			Help: "Rounds reported by the last handshake.",
		}),
		drained: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newbridge_drained_bytes_total",
			Help: "Bytes discarded while draining peer output.",
		}),
		overflows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newbridge_line_overflows_total",
			Help: "Lines discarded for exceeding the prompt line buffer.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newbridge_handshake_duration_seconds",
			Help:    "Duration of completed handshakes.",
			Buckets: []float64{5, 7.5, 10, 15, 30, 60, 120},
		}),
	}
	reg.MustRegister(
		o.phase,
		o.handshakes,
		o.rounds,
		o.lastRounds,
		o.drained,
		o.overflows,
		o.duration,
	)
	return o
}

// PhaseChanged implements bridge.Observer.
func (o *Observer) PhaseChanged(phase bridge.Phase) {
	o.phase.Set(float64(phase))
}

// RoundCompleted implements bridge.Observer.
func (o *Observer) RoundCompleted(round int, matched bool) {
	if matched {
		o.rounds.WithLabelValues("true").Inc()
	} else {
		o.rounds.WithLabelValues("false").Inc()
	}
}

// HandshakeDone implements bridge.Observer.
func (o *Observer) HandshakeDone(res bridge.Result) {
	o.handshakes.WithLabelValues(res.Status().String()).Inc()
	o.lastRounds.Set(float64(res.Rounds))
	o.drained.Add(float64(res.Drained))
	o.overflows.Add(float64(res.Overflows))
	o.duration.Observe(res.Elapsed.Seconds())
}
