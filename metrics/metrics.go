// Package metrics exports bridge handle and parse activity to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wippyai/mecab-bridge/bridge"
	"github.com/wippyai/mecab-bridge/resource"
)

const namespace = "mecab"

// Collector observes bridges. Pass it to bridge.WithObserver and
// bridge.WithParseObserver; one collector may serve many bridges.
type Collector struct {
	registry *prometheus.Registry

	handles       *prometheus.GaugeVec
	handleEvents  *prometheus.CounterVec
	parses        *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	parseBytes    prometheus.Histogram
}

// New creates a collector with its own registry, which also carries the
// Go runtime and process collectors.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		handles: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "handles",
				Help:      "Live handles by kind",
			},
			[]string{"kind"},
		),
		handleEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "handle_events_total",
				Help:      "Handle lifecycle events by kind and event",
			},
			[]string{"kind", "event"},
		),
		parses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parses_total",
				Help:      "Parse calls by request type and result",
			},
			[]string{"request_type", "result"},
		),
		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_duration_seconds",
				Help:      "Duration of parse calls",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"request_type"},
		),
		parseBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "parse_sentence_bytes",
				Help:      "Sentence sizes of parse calls",
				Buckets:   prometheus.ExponentialBuckets(16, 4, 8),
			},
		),
	}
	c.registry.MustRegister(
		c.handles,
		c.handleEvents,
		c.parses,
		c.parseDuration,
		c.parseBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Registry returns the registry the collector's metrics live in.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// BridgeOptions returns the options that attach c to a bridge.
func (c *Collector) BridgeOptions() []bridge.Option {
	return []bridge.Option{bridge.WithObserver(c), bridge.WithParseObserver(c)}
}

// OnResourceEvent implements resource.Observer.
func (c *Collector) OnResourceEvent(e resource.Event) {
	switch e.Type {
	case resource.EventCreated:
		kind := bridge.TypeName(e.TypeID)
		c.handles.WithLabelValues(kind).Inc()
		c.handleEvents.WithLabelValues(kind, e.Type.String()).Inc()
	case resource.EventDropped:
		kind := bridge.TypeName(e.TypeID)
		c.handles.WithLabelValues(kind).Dec()
		c.handleEvents.WithLabelValues(kind, e.Type.String()).Inc()
	}
}

// OnParse implements bridge.ParseObserver.
func (c *Collector) OnParse(e bridge.ParseEvent) {
	rt := e.RequestType.String()
	result := "ok"
	if e.Err != nil {
		result = "error"
	}
	c.parses.WithLabelValues(rt, result).Inc()
	c.parseDuration.WithLabelValues(rt).Observe(e.Duration.Seconds())
	c.parseBytes.Observe(float64(e.Bytes))
}

var (
	_ resource.Observer    = (*Collector)(nil)
	_ bridge.ParseObserver = (*Collector)(nil)
)
