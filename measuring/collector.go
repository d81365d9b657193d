package measuring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector exposes the Store summary to Prometheus. Each scrape reads one
// consistent Summary of the store.
type Collector struct {
	store    *Store
	requests *prometheus.Desc
	sum      *prometheus.Desc
	max      *prometheus.Desc
	min      *prometheus.Desc
}

func NewCollector(store *Store, namespace string) *Collector {
	labels := []string{"path", "method"}
	return &Collector{
		store: store,
		requests: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "requests_total"),
			"Number of measured requests per route pattern and method.",
			labels, nil,
		),
		sum: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "request_duration", "milliseconds_sum"),
			"Total response time in milliseconds per route pattern and method.",
			labels, nil,
		),
		max: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "request_duration", "milliseconds_max"),
			"Longest response time in milliseconds per route pattern and method.",
			labels, nil,
		),
		min: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "request_duration", "milliseconds_min"),
			"Shortest response time in milliseconds per route pattern and method.",
			labels, nil,
		),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.requests
	ch <- c.sum
	ch <- c.max
	ch <- c.min
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, row := range c.store.Summary(SortPath) {
		ch <- prometheus.MustNewConstMetric(c.requests, prometheus.CounterValue, float64(row.Count), row.Path, row.Method)
		ch <- prometheus.MustNewConstMetric(c.sum, prometheus.CounterValue, float64(row.Sum), row.Path, row.Method)
		ch <- prometheus.MustNewConstMetric(c.max, prometheus.GaugeValue, float64(row.Max), row.Path, row.Method)
		ch <- prometheus.MustNewConstMetric(c.min, prometheus.GaugeValue, float64(row.Min), row.Path, row.Method)
	}
}
