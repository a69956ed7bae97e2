package metric

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/esnet/nsi-dds-go/internal/infra/buildinfo"
)

// Namespace prefixes every metric name.
const Namespace = "dds"

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	notificationsReceived prometheus.Counter
	notificationEntries   *prometheus.CounterVec
	decodeErrors          *prometheus.CounterVec
	prologSkippedBytes    prometheus.Histogram

	rateLimited  prometheus.Counter
	peerRejected prometheus.Counter
	certExpiry   prometheus.Gauge
}

// NewRegistry creates a registry with the application metrics, the Go
// runtime and process collectors, and a build info gauge.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		notificationsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notifications_received_total",
			Help:      "Notification lists accepted.",
		}),
		notificationEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notification_entries_total",
			Help:      "Notifications accepted, by document event.",
		}, []string{"event"}),
		decodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "decode_errors_total",
			Help:      "Rejected notification bodies, by error code.",
		}, []string{"code"}),
		prologSkippedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "prolog_skipped_bytes",
			Help:      "Bytes discarded ahead of the XML declaration of notification bodies.",
			Buckets:   []float64{0, 1, 8, 16, 64, 256, 1024, 4096},
		}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the per-peer rate limiter.",
		}),
		peerRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "peer_rejected_total",
			Help:      "Requests rejected by the peer allow list.",
		}),
		certExpiry: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: "tls",
			Name:      "certificate_expiry_timestamp_seconds",
			Help:      "Expiry of the served TLS certificate as a Unix timestamp.",
		}),
	}

	info := buildinfo.Get()
	buildInfo := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   Namespace,
		Name:        "build_info",
		Help:        "Build information of the running server.",
		ConstLabels: prometheus.Labels{"version": info.Version, "commit": info.Commit, "go_version": info.GoVersion},
	})
	buildInfo.Set(1)

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo,
		r.requestsTotal,
		r.requestDuration,
		r.notificationsReceived,
		r.notificationEntries,
		r.decodeErrors,
		r.prologSkippedBytes,
		r.rateLimited,
		r.peerRejected,
		r.certExpiry,
	)
	return r
}

// Prometheus returns the underlying registry for components that
// register their own collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Register adds a collector to the registry.
func (r *Registry) Register(c prometheus.Collector) error {
	if r == nil {
		return nil
	}
	return r.reg.Register(c)
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// ObserveRequest records one HTTP request.
func (r *Registry) ObserveRequest(method, route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// NotificationReceived records an accepted notification list.
func (r *Registry) NotificationReceived(events map[string]int, skipped int64) {
	if r == nil {
		return
	}
	r.notificationsReceived.Inc()
	for event, n := range events {
		r.notificationEntries.WithLabelValues(event).Add(float64(n))
	}
	r.prologSkippedBytes.Observe(float64(skipped))
}

// DecodeError records a rejected notification body.
func (r *Registry) DecodeError(code string) {
	if r == nil {
		return
	}
	r.decodeErrors.WithLabelValues(code).Inc()
}

// RateLimited records a request rejected by the rate limiter.
func (r *Registry) RateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// PeerRejected records a request rejected by the allow list.
func (r *Registry) PeerRejected() {
	if r == nil {
		return
	}
	r.peerRejected.Inc()
}

// SetCertExpiry records the expiry of the served certificate.
func (r *Registry) SetCertExpiry(t time.Time) {
	if r == nil {
		return
	}
	r.certExpiry.Set(float64(t.Unix()))
}
