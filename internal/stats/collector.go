package stats

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "snbloader"

// Collector exports worker counters to Prometheus. Values are read on scrape.
type Collector struct {
	workers []*Worker

	lines     *prometheus.Desc
	bytes     *prometheus.Desc
	processed *prometheus.Desc
	assigned  *prometheus.Desc
}

// NewCollector creates a collector over workers.
func NewCollector(workers []*Worker) *Collector {
	labels := []string{"worker"}
	return &Collector{
		workers: workers,
		lines: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "lines_processed_total"),
			"Data lines parsed and handed to the sink.", labels, nil),
		bytes: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "bytes_read_total"),
			"Input bytes read, including header lines.", labels, nil),
		processed: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "files_processed_total"),
			"Assigned files fully processed.", labels, nil),
		assigned: prometheus.NewDesc(prometheus.BuildFQName(namespace, "", "files_assigned"),
			"Files assigned to the worker.", labels, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.lines
	ch <- c.bytes
	ch <- c.processed
	ch <- c.assigned
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, w := range c.workers {
		s := w.Snapshot()
		rank := strconv.Itoa(w.Rank())
		ch <- prometheus.MustNewConstMetric(c.lines, prometheus.CounterValue, float64(s.Lines), rank)
		ch <- prometheus.MustNewConstMetric(c.bytes, prometheus.CounterValue, float64(s.Bytes), rank)
		ch <- prometheus.MustNewConstMetric(c.processed, prometheus.CounterValue, float64(s.FilesProcessed), rank)
		ch <- prometheus.MustNewConstMetric(c.assigned, prometheus.GaugeValue, float64(s.FilesAssigned), rank)
	}
}
