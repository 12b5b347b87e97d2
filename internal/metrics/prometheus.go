package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// metricDesc pairs a Prometheus descriptor with the counter it reads.
type metricDesc struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(c *Collector) *atomic.Int64
}

var descs = []metricDesc{
	gauge("peers_active", "Number of peers currently registered",
		func(c *Collector) *atomic.Int64 { return &c.peersActive }),
	counter("peers_total", "Total number of peers accepted",
		func(c *Collector) *atomic.Int64 { return &c.peersTotal }),
	counter("messages_received_total", "Total number of successful peer reads",
		func(c *Collector) *atomic.Int64 { return &c.messagesReceived }),
	counter("messages_rejected_total", "Total number of messages discarded by validation",
		func(c *Collector) *atomic.Int64 { return &c.messagesRejected }),
	counter("broadcasts_total", "Total number of accepted messages broadcast",
		func(c *Collector) *atomic.Int64 { return &c.broadcasts }),
	counter("frames_delivered_total", "Total number of frames written to peers",
		func(c *Collector) *atomic.Int64 { return &c.framesDelivered }),
	counter("send_failures_total", "Total number of failed writes to peers",
		func(c *Collector) *atomic.Int64 { return &c.sendFailures }),
	counter("bytes_in_total", "Total bytes read from peers",
		func(c *Collector) *atomic.Int64 { return &c.bytesIn }),
	counter("bytes_out_total", "Total bytes written to peers",
		func(c *Collector) *atomic.Int64 { return &c.bytesOut }),
	counter("accept_errors_total", "Total number of accept loop errors",
		func(c *Collector) *atomic.Int64 { return &c.acceptErrors }),
	counter("errors_total", "Total number of errors recorded",
		func(c *Collector) *atomic.Int64 { return &c.errorsTotal }),
}

func counter(name, help string, v func(*Collector) *atomic.Int64) metricDesc {
	return metricDesc{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), help, nil, nil),
		kind:  prometheus.CounterValue,
		value: v,
	}
}

func gauge(name, help string, v func(*Collector) *atomic.Int64) metricDesc {
	return metricDesc{
		desc:  prometheus.NewDesc(prometheus.BuildFQName(Namespace, "", name), help, nil, nil),
		kind:  prometheus.GaugeValue,
		value: v,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range descs {
		ch <- d.desc
	}
}

// Collect implements prometheus.Collector.  A nil Collector reports
// every metric as zero.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, d := range descs {
		var v int64
		if c != nil {
			v = d.value(c).Load()
		}
		ch <- prometheus.MustNewConstMetric(d.desc, d.kind, float64(v))
	}
}
