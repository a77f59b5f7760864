package zmqasync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instrumentation for one [worker], styled
// after the counters/gauges in kstaniek-go-ampio-server's internal/metrics
// package. Unlike that package's process-global promauto vars, these are
// registered against a caller-supplied (or private, if nil) Registerer,
// since a process may host more than one [Session] — e.g. under test —
// and package-level globals would collide on the second registration.
type Metrics struct {
	sendsTotal        prometheus.Counter
	recvsTotal        prometheus.Counter
	backpressureTotal prometheus.Counter
	wakeupsTotal      prometheus.Counter
	socketsGauge      prometheus.Gauge
	pendingRecvGauge  prometheus.Gauge
}

// NewMetrics registers this package's metrics against reg. If reg is nil,
// a private registry is created so callers who don't care about scraping
// (e.g. tests) don't need to thread one through.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)

	return &Metrics{
		sendsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "zmqasync",
			Name:      "sends_total",
			Help:      "Total send requests received for registered sockets, including ones rejected for back-pressure.",
		}),
		recvsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "zmqasync",
			Name:      "recvs_total",
			Help:      "Total receive requests received for registered sockets.",
		}),
		backpressureTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "zmqasync",
			Name:      "backpressure_rejections_total",
			Help:      "Total StartSend calls rejected due to a full outgoing buffer.",
		}),
		wakeupsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: "zmqasync",
			Name:      "worker_wakeups_total",
			Help:      "Total times the worker's self-pipe woke its poll call.",
		}),
		socketsGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "zmqasync",
			Name:      "sockets",
			Help:      "Current number of sockets registered with the worker.",
		}),
		pendingRecvGauge: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "zmqasync",
			Name:      "pending_receives",
			Help:      "Current number of buffered, undelivered received multiparts.",
		}),
	}
}
