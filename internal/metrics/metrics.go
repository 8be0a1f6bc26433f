// Package metrics exposes Prometheus counters for the list session, the
// HTTP surface and backups.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/shoplist/internal/model"
)

const namespace = "shoplist"

type Collector struct {
	mutations     *prometheus.CounterVec
	writes        *prometheus.CounterVec
	loadFallbacks *prometheus.CounterVec
	items         *prometheus.GaugeVec
	backups       *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpLatency   prometheus.Histogram
}

// NewCollector creates the collector and registers every metric with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "State changes applied, by operation.",
		}, []string{"op"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persist_writes_total",
			Help:      "Persistence writes, by key and result.",
		}, []string{"key", "result"}),
		loadFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_fallbacks_total",
			Help:      "Keys that were unreadable at startup and fell back to defaults.",
		}, []string{"key"}),
		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "list_items",
			Help:      "Items currently on each list.",
		}, []string{"list"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backups_total",
			Help:      "Backup runs, by result.",
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests, by method and status code.",
		}, []string{"method", "status"}),
		httpLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.mutations,
		c.writes,
		c.loadFallbacks,
		c.items,
		c.backups,
		c.httpRequests,
		c.httpLatency,
	)
	return c
}

func (c *Collector) Mutation(op string) {
	c.mutations.WithLabelValues(op).Inc()
}

// Write records the outcome of one persistence write.
func (c *Collector) Write(key string, err error) {
	c.writes.WithLabelValues(key, result(err)).Inc()
}

func (c *Collector) LoadFallback(key string) {
	c.loadFallbacks.WithLabelValues(key).Inc()
}

func (c *Collector) Items(lt model.ListType, n int) {
	c.items.WithLabelValues(string(lt)).Set(float64(n))
}

func (c *Collector) Backup(err error) {
	c.backups.WithLabelValues(result(err)).Inc()
}

func (c *Collector) Request(method string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.httpLatency.Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Handler serves the gathered metrics in the Prometheus text format.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
