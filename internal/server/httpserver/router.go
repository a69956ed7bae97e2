package httpserver

import (
	"net/http"

	"github.com/esnet/nsi-dds-go/internal/server/httpserver/handler"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Handler *handler.Handler

	// Metrics records request metrics. Nil disables them.
	Metrics *metric.Registry

	// MetricsPath serves Metrics when both are set.
	MetricsPath string

	Logger logger.Logger

	// AllowList restricts which peers may post notifications.
	AllowList []string

	// RateLimit is the per-peer notification rate (requests/second).
	// Zero disables rate limiting.
	RateLimit float64
	Burst     int

	// MaxBodyBytes limits notification bodies. Zero disables the limit.
	MaxBodyBytes int64
}

// NewRouter creates the top-level handler with all routes and
// middleware.
//
// Every route gets RequestID -> Recover -> Audit -> Instrument. The
// notification POST additionally gets NetworkACL -> RateLimit -> MaxBody.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	h := cfg.Handler
	onError := h.WriteError

	base := func(route string, extra ...Middleware) http.Handler {
		mws := append([]Middleware{
			RequestID(),
			Recover(log, onError),
			Audit(log),
			Instrument(cfg.Metrics, route),
		}, extra...)
		return Chain(h, mws...)
	}

	mux := http.NewServeMux()

	mux.Handle("GET /health", base("/health"))
	mux.Handle("GET /ready", base("/ready"))

	mux.Handle("GET /dds/ping", base("/dds/ping"))
	mux.Handle("POST /dds/notifications", base("/dds/notifications",
		NetworkACL(NetworkACLConfig{
			AllowList: cfg.AllowList,
			Logger:    log,
			Metrics:   cfg.Metrics,
			OnError:   onError,
		}),
		RateLimit(RateLimitConfig{
			Rate:    cfg.RateLimit,
			Burst:   cfg.Burst,
			Metrics: cfg.Metrics,
			OnError: onError,
		}),
		MaxBody(cfg.MaxBodyBytes),
	))
	mux.Handle("GET /dds/notifications", base("/dds/notifications"))
	mux.Handle("GET /dds/notifications/{id}", base("/dds/notifications/{id}"))

	if cfg.Metrics != nil && cfg.MetricsPath != "" {
		mux.Handle("GET "+cfg.MetricsPath, Chain(cfg.Metrics.Handler(), RequestID(), Recover(log, onError)))
	}

	return mux
}
