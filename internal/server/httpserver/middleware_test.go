package httpserver

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/esnet/nsi-dds-go/internal/core/domain"
	"github.com/esnet/nsi-dds-go/internal/telemetry/logger"
	"github.com/esnet/nsi-dds-go/internal/telemetry/metric"
)

// recordError writes the error code as plain text for assertions.
func recordError(w http.ResponseWriter, _ *http.Request, err error) {
	code := domain.GetErrorCode(err)
	w.Header().Set("X-Error-Code", code)
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrPeerNotAllowed):
		status = http.StatusForbidden
	}
	w.WriteHeader(status)
	io.WriteString(w, code)
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, "ok")
})

func newRequest(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/dds/notifications", nil)
	req.RemoteAddr = remote
	return req
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mw("a"), mw("b"), mw("c")).ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4:1"))

	if strings.Join(order, ",") != "a,b,c" {
		t.Errorf("order = %v, want a,b,c", order)
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.RequestIDFromContext(r.Context())
		if _, ok := r.Context().Value(ContextKeyStartTime).(time.Time); !ok {
			t.Error("start time missing from context")
		}
	}))

	t.Run("generated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("1.2.3.4:1"))
		if !strings.HasPrefix(seen, "req-") || len(seen) != 30 {
			t.Errorf("request id = %q", seen)
		}
		if rec.Header().Get(HeaderRequestID) != seen {
			t.Error("response header does not carry the request id")
		}
	})

	t.Run("propagated", func(t *testing.T) {
		req := newRequest("1.2.3.4:1")
		req.Header.Set(HeaderRequestID, "upstream-42")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if seen != "upstream-42" {
			t.Errorf("request id = %q, want upstream-42", seen)
		}
	})

	t.Run("invalid replaced", func(t *testing.T) {
		req := newRequest("1.2.3.4:1")
		req.Header.Set(HeaderRequestID, "bad id\x01")
		h.ServeHTTP(httptest.NewRecorder(), req)
		if !strings.HasPrefix(seen, "req-") {
			t.Errorf("request id = %q, want generated", seen)
		}
	})
}

func TestRecover(t *testing.T) {
	panicky := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	Recover(logger.Nop(), recordError)(panicky).ServeHTTP(rec, newRequest("1.2.3.4:1"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("X-Error-Code") != "DDS-SYS-5000" {
		t.Errorf("X-Error-Code = %q", rec.Header().Get("X-Error-Code"))
	}
}

func TestRecover_AbortHandler(t *testing.T) {
	abort := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Errorf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	Recover(logger.Nop(), recordError)(abort).ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4:1"))
}

func TestAudit(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Config{Level: "debug", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}

	h := Chain(okHandler, RequestID(), Audit(log))
	h.ServeHTTP(httptest.NewRecorder(), newRequest("10.1.1.1:5555"))

	out := buf.String()
	for _, want := range []string{`"msg":"request completed"`, `"status":200`, `"bytes":2`, `"client_ip":"10.1.1.1"`, `"request_id":"req-`} {
		if !strings.Contains(out, want) {
			t.Errorf("audit log missing %s: %s", want, out)
		}
	}

	buf.Reset()
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	Audit(log)(notFound).ServeHTTP(httptest.NewRecorder(), newRequest("10.1.1.1:5555"))
	if !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Errorf("4xx should log at warn: %s", buf.String())
	}
}

func TestInstrument(t *testing.T) {
	reg := metric.NewRegistry()
	h := Instrument(reg, "/dds/notifications")(okHandler)
	for range 3 {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("1.2.3.4:1"))
	}

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	want := `dds_http_requests_total{code="200",method="POST",route="/dds/notifications"} 3`
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %s", want)
	}

	if Instrument(nil, "/x")(okHandler) == nil {
		t.Error("Instrument(nil) should pass through")
	}
}

func TestMaxBody(t *testing.T) {
	var readErr error
	h := MaxBody(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("12345678")))
	if readErr != nil {
		t.Errorf("body at limit: %v", readErr)
	}

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("123456789")))
	var mbe *http.MaxBytesError
	if !errors.As(readErr, &mbe) {
		t.Errorf("body over limit error = %v, want MaxBytesError", readErr)
	}
}

func TestRateLimit(t *testing.T) {
	reg := metric.NewRegistry()
	h := RateLimit(RateLimitConfig{Rate: 1, Burst: 2, Metrics: reg, OnError: recordError})(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, newRequest("192.0.2.1:1000"))
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After")
		}
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != 429 {
		t.Errorf("codes = %v, want [200 200 429]", codes)
	}

	// a different peer has its own bucket
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest("192.0.2.2:1000"))
	if rec.Code != http.StatusOK {
		t.Errorf("second peer status = %d, want 200", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	var calls atomic.Int32
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { calls.Add(1) })
	h := RateLimit(RateLimitConfig{Rate: 0, OnError: recordError})(next)

	for range 50 {
		h.ServeHTTP(httptest.NewRecorder(), newRequest("192.0.2.1:1"))
	}
	if calls.Load() != 50 {
		t.Errorf("calls = %d, want 50", calls.Load())
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want int
	}{
		{0, 1},
		{300 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
	}
	for _, tt := range tests {
		if got := retryAfterSeconds(tt.d); got != tt.want {
			t.Errorf("retryAfterSeconds(%v) = %d, want %d", tt.d, got, tt.want)
		}
	}
}

func TestNetworkACL(t *testing.T) {
	h := NetworkACL(NetworkACLConfig{
		AllowList: []string{"192.0.2.10", "10.0.0.0/8", "2001:db8::/32", "not-an-ip"},
		Logger:    logger.Nop(),
		OnError:   recordError,
	})(okHandler)

	tests := []struct {
		remote string
		want   int
	}{
		{"192.0.2.10:443", http.StatusOK},
		{"192.0.2.11:443", http.StatusForbidden},
		{"10.20.30.40:1", http.StatusOK},
		{"[2001:db8::1]:443", http.StatusOK},
		{"[2001:db9::1]:443", http.StatusForbidden},
		{"[::ffff:10.1.2.3]:443", http.StatusOK},
		{"garbage", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.remote, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, newRequest(tt.remote))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestNetworkACL_IgnoresForwardedFor(t *testing.T) {
	h := NetworkACL(NetworkACLConfig{AllowList: []string{"10.0.0.1"}, OnError: recordError})(okHandler)

	req := newRequest("203.0.113.5:1")
	req.Header.Set("X-Forwarded-For", "10.0.0.1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestNetworkACL_EmptyAllowsAll(t *testing.T) {
	h := NetworkACL(NetworkACLConfig{OnError: recordError})(okHandler)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest("203.0.113.5:1"))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
