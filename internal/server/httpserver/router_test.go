package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/esnet/nsi-dds-go/internal/server/httpserver/handler"
	"github.com/esnet/nsi-dds-go/internal/storage/memory"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/telemetry/metric"
	"github.com/esnet/nsi-dds-go/internal/xmlcodec"
)

const testNotification = `<?xml version="1.0" encoding="UTF-8"?>
<notifications xmlns="http://schemas.ogf.org/nsi/2014/02/discovery/types" id="n-1" providerId="urn:ogf:network:example.net:2020:nsa">
    <notification>
        <event>New</event>
        <document id="urn:ogf:network:example.net:2020:nsa" version="2020-01-01T00:00:00Z" expires="2020-02-01T00:00:00Z">
            <nsa>urn:ogf:network:example.net:2020:nsa</nsa>
            <type>vnd.ogf.nsi.nsa.v1+xml</type>
        </document>
    </notification>
</notifications>
`

type routerEnv struct {
	router  http.Handler
	inbox   *memory.Inbox
	metrics *metric.Registry
}

func newRouterEnv(t *testing.T, mutate func(*RouterConfig)) *routerEnv {
	t.Helper()
	codec, err := xmlcodec.NewDefault(logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	env := &routerEnv{inbox: memory.New(), metrics: metric.NewRegistry()}
	cfg := &RouterConfig{
		Handler: handler.New(handler.Config{
			Codec:   codec,
			Inbox:   env.inbox,
			Metrics: env.metrics,
			Logger:  logger.Nop(),
		}),
		Metrics:      env.metrics,
		MetricsPath:  "/metrics",
		Logger:       logger.Nop(),
		MaxBodyBytes: 1 << 20,
	}
	if mutate != nil {
		mutate(cfg)
	}
	env.router = NewRouter(cfg)
	return env
}

func (e *routerEnv) do(method, target, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if remote != "" {
		req.RemoteAddr = remote
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Routes(t *testing.T) {
	env := newRouterEnv(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/dds/ping", "", http.StatusOK},
		{http.MethodPost, "/dds/notifications", testNotification, http.StatusAccepted},
		{http.MethodGet, "/dds/notifications", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/unknown", "", http.StatusNotFound},
		{http.MethodDelete, "/dds/notifications", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := env.do(tt.method, tt.path, "", tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if tt.want < 400 && rec.Header().Get(HeaderRequestID) == "" && tt.path != "/metrics" {
				t.Error("missing X-Request-ID")
			}
		})
	}
}

func TestRouter_NotificationRecordsRequestID(t *testing.T) {
	env := newRouterEnv(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/dds/notifications", strings.NewReader(testNotification))
	req.Header.Set(HeaderRequestID, "peer-req-7")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d", rec.Code)
	}

	records, _ := env.inbox.List(context.Background(), 1)
	if len(records) != 1 || records[0].RequestID != "peer-req-7" || records[0].RemoteAddr != "192.0.2.1" {
		t.Errorf("records = %+v", records)
	}
}

func TestRouter_AllowList(t *testing.T) {
	env := newRouterEnv(t, func(c *RouterConfig) {
		c.AllowList = []string{"198.51.100.0/24"}
	})

	if rec := env.do(http.MethodPost, "/dds/notifications", "198.51.100.7:4000", testNotification); rec.Code != http.StatusAccepted {
		t.Errorf("allowed peer status = %d, want 202", rec.Code)
	}
	rec := env.do(http.MethodPost, "/dds/notifications", "203.0.113.9:4000", testNotification)
	if rec.Code != http.StatusForbidden {
		t.Errorf("denied peer status = %d, want 403", rec.Code)
	}
	if rec.Header().Get("X-Error-Code") != "DDS-SYS-4031" {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}
	if !strings.Contains(rec.Body.String(), `id="DDS-SYS-4031"`) {
		t.Errorf("body is not an ErrorType document: %s", rec.Body.String())
	}

	// reads are not restricted
	if rec := env.do(http.MethodGet, "/dds/ping", "203.0.113.9:4000", ""); rec.Code != http.StatusOK {
		t.Errorf("ping from other peer status = %d", rec.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	env := newRouterEnv(t, func(c *RouterConfig) {
		c.RateLimit = 0.001
		c.Burst = 1
	})

	if rec := env.do(http.MethodPost, "/dds/notifications", "", testNotification); rec.Code != http.StatusAccepted {
		t.Fatalf("first status = %d", rec.Code)
	}
	rec := env.do(http.MethodPost, "/dds/notifications", "", testNotification)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestRouter_MaxBody(t *testing.T) {
	env := newRouterEnv(t, func(c *RouterConfig) {
		c.MaxBodyBytes = 100
	})

	rec := env.do(http.MethodPost, "/dds/notifications", "", testNotification)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRouter_MetricsDisabled(t *testing.T) {
	env := newRouterEnv(t, func(c *RouterConfig) {
		c.MetricsPath = ""
	})
	if rec := env.do(http.MethodGet, "/metrics", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestRouter_InstrumentsRoutes(t *testing.T) {
	env := newRouterEnv(t, nil)
	env.do(http.MethodGet, "/dds/ping", "", "")
	env.do(http.MethodGet, "/dds/notifications/ddsn-01hq3z5x6k7m8n9p0q1r2s3t4v", "", "")

	body := env.do(http.MethodGet, "/metrics", "", "").Body.String()
	for _, want := range []string{
		`dds_http_requests_total{code="200",method="GET",route="/dds/ping"} 1`,
		`route="/dds/notifications/{id}"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}
