// Package metrics exports exchange statistics to Prometheus. A Collector is a
// fetch.Observer, so it is plugged into a session via Session.Observe.
package metrics

import (
	"strconv"

	"github.com/indigo-web/fetch"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var _ fetch.Observer = new(Collector)

// Collector counts exchanges by method and outcome, where the outcome is either
// the status class of the response (2xx, 4xx, ...) or "error". Failures are
// additionally counted by their kind.
type Collector struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	failures  *prometheus.CounterVec
	bodySize  *prometheus.HistogramVec
}

// NewDefault registers the collector in prometheus.DefaultRegisterer.
func NewDefault() *Collector {
	return New(prometheus.DefaultRegisterer)
}

func New(registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)

	return &Collector{
		exchanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetch_exchanges_total",
				Help: "Total number of finished exchanges",
			},
			[]string{"method", "outcome"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetch_exchange_duration_seconds",
				Help:    "Time from sending a request until its future is resolved",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetch_failures_total",
				Help: "Total number of failed exchanges by the kind of failure",
			},
			[]string{"method", "kind"},
		),
		bodySize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetch_response_body_bytes",
				Help:    "Size of received response bodies",
				Buckets: prometheus.ExponentialBuckets(64, 4, 10),
			},
			[]string{"method"},
		),
	}
}

func (c *Collector) Observe(exchange fetch.Exchange) {
	outcome := Outcome(exchange)
	c.exchanges.WithLabelValues(exchange.Method, outcome).Inc()
	c.duration.WithLabelValues(exchange.Method, outcome).Observe(exchange.Elapsed.Seconds())

	if exchange.Err != nil {
		c.failures.WithLabelValues(exchange.Method, fetch.KindOf(exchange.Err).String()).Inc()
		return
	}

	c.bodySize.WithLabelValues(exchange.Method).Observe(float64(len(exchange.Response.Body())))
}

// Outcome returns the label the exchange is accounted under.
func Outcome(exchange fetch.Exchange) string {
	if exchange.Err != nil || exchange.Response == nil {
		return "error"
	}

	return strconv.Itoa(int(exchange.Response.StatusCode().Class())) + "xx"
}
