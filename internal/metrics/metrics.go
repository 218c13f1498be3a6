// Package metrics exposes Prometheus telemetry for intents, notifications and the outbox.
package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vendor-ops-ledger/internal/domain/shared"
)

// Recorder is what the engine reports to
type Recorder interface {
	RecordIntent(intent string, duration time.Duration, err error)
	RecordNotification(delivered bool)
	RecordOutboxPublish(err error)
	RecordWorkerPool(running, capacity int)
}

// Collector is the Prometheus-backed Recorder
type Collector struct {
	registry *prometheus.Registry

	intentsTotal       *prometheus.CounterVec
	intentLatency      *prometheus.HistogramVec
	notificationsTotal *prometheus.CounterVec
	outboxPublishTotal *prometheus.CounterVec
	workerPoolRunning  prometheus.Gauge
	workerPoolCapacity prometheus.Gauge
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "vendor_ledger"
	}

	c := &Collector{registry: prometheus.NewRegistry()}

	c.intentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "intents_total",
			Help:      "Facade intents by outcome; result is ok or the lower-cased error kind",
		},
		[]string{"intent", "result"},
	)

	c.intentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "intent_duration_seconds",
			Help:      "Time from permission check to commit",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		},
		[]string{"intent"},
	)

	c.notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notifier",
			Name:      "notifications_total",
			Help:      "Notifications handed to the sink, by delivered or dropped",
		},
		[]string{"result"},
	)

	c.outboxPublishTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbox",
			Name:      "publish_total",
			Help:      "Outbox messages published by the poller",
		},
		[]string{"result"},
	)

	c.workerPoolRunning = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker_pool",
		Name:      "running",
		Help:      "Intents currently executing in the worker pool",
	})

	c.workerPoolCapacity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker_pool",
		Name:      "capacity",
		Help:      "Worker pool size",
	})

	c.registry.MustRegister(
		c.intentsTotal,
		c.intentLatency,
		c.notificationsTotal,
		c.outboxPublishTotal,
		c.workerPoolRunning,
		c.workerPoolCapacity,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Registry returns the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Server is a standalone listener for processes without an HTTP API
func (c *Collector) Server(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, c.Handler())
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (c *Collector) RecordIntent(intent string, duration time.Duration, err error) {
	c.intentsTotal.WithLabelValues(intent, Result(err)).Inc()
	c.intentLatency.WithLabelValues(intent).Observe(duration.Seconds())
}

func (c *Collector) RecordNotification(delivered bool) {
	result := "delivered"
	if !delivered {
		result = "dropped"
	}
	c.notificationsTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordOutboxPublish(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.outboxPublishTotal.WithLabelValues(result).Inc()
}

func (c *Collector) RecordWorkerPool(running, capacity int) {
	c.workerPoolRunning.Set(float64(running))
	c.workerPoolCapacity.Set(float64(capacity))
}

// Result is the label value for an outcome: ok, the error kind, or internal
func Result(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := shared.KindOf(err); kind != "" {
		return strings.ToLower(string(kind))
	}
	return "internal"
}

// NoOpCollector discards everything; used when metrics are disabled and in tests
type NoOpCollector struct{}

func NewNoOpCollector() *NoOpCollector {
	return &NoOpCollector{}
}

func (*NoOpCollector) RecordIntent(intent string, d time.Duration, err error) {}
func (*NoOpCollector) RecordNotification(delivered bool)                    {}
func (*NoOpCollector) RecordOutboxPublish(err error)                        {}
func (*NoOpCollector) RecordWorkerPool(running, capacity int)               {}
