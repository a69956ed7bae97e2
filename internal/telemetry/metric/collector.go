package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CountFunc reports the number of records in the inbox.
type CountFunc func(ctx context.Context) (int, error)

// InboxCollector reports the inbox record count at scrape time.
type InboxCollector struct {
	count   CountFunc
	timeout time.Duration
	desc    *prometheus.Desc
}

// NewInboxCollector creates a collector around count. Each scrape waits
// at most timeout for the count.
func NewInboxCollector(count CountFunc, timeout time.Duration) *InboxCollector {
	return &InboxCollector{
		count:   count,
		timeout: timeout,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "inbox", "records"),
			"Notification records held in the inbox.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *InboxCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *InboxCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	n, err := c.count(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n))
}
