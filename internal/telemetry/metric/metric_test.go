package metric

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestRegistry_Records(t *testing.T) {
	r := NewRegistry()

	r.ObserveRequest(http.MethodPost, "/dds/notifications", http.StatusAccepted, 20*time.Millisecond)
	r.ObserveRequest(http.MethodPost, "/dds/notifications", http.StatusAccepted, 10*time.Millisecond)
	r.NotificationReceived(map[string]int{"New": 2, "Updated": 1}, 7)
	r.DecodeError("DDS-XML-4002")
	r.RateLimited()
	r.PeerRejected()
	r.SetCertExpiry(time.Unix(1700000000, 0))

	if got := testutil.ToFloat64(r.requestsTotal.WithLabelValues("POST", "/dds/notifications", "202")); got != 2 {
		t.Errorf("requests_total = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.notificationsReceived); got != 1 {
		t.Errorf("notifications_received_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.notificationEntries.WithLabelValues("New")); got != 2 {
		t.Errorf("notification_entries_total{New} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.decodeErrors.WithLabelValues("DDS-XML-4002")); got != 1 {
		t.Errorf("decode_errors_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.certExpiry); got != 1700000000 {
		t.Errorf("certificate expiry = %v", got)
	}

	body := scrape(t, r)
	for _, name := range []string{
		"dds_http_requests_total",
		"dds_http_request_duration_seconds",
		"dds_notifications_received_total",
		"dds_prolog_skipped_bytes",
		"dds_http_rate_limited_total",
		"dds_http_peer_rejected_total",
		"dds_build_info",
		"go_goroutines",
	} {
		if !strings.Contains(body, name) {
			t.Errorf("scrape missing %s", name)
		}
	}
}

func TestRegistry_Nil(t *testing.T) {
	var r *Registry

	// none of these may panic
	r.ObserveRequest("GET", "/", 200, time.Millisecond)
	r.NotificationReceived(map[string]int{"New": 1}, 0)
	r.DecodeError("x")
	r.RateLimited()
	r.PeerRejected()
	r.SetCertExpiry(time.Now())
	if err := r.Register(nil); err != nil {
		t.Errorf("Register() on nil registry = %v", err)
	}
	if r.Prometheus() != nil {
		t.Error("Prometheus() on nil registry should be nil")
	}

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("nil registry handler status = %d, want 404", rec.Code)
	}
}

func TestInboxCollector(t *testing.T) {
	r := NewRegistry()
	n := 3
	if err := r.Register(NewInboxCollector(func(context.Context) (int, error) { return n, nil }, time.Second)); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if !strings.Contains(scrape(t, r), "dds_inbox_records 3") {
		t.Error("scrape missing dds_inbox_records 3")
	}

	n = 5
	if !strings.Contains(scrape(t, r), "dds_inbox_records 5") {
		t.Error("inbox count should be read at scrape time")
	}
}

func TestInboxCollector_Error(t *testing.T) {
	c := NewInboxCollector(func(context.Context) (int, error) { return 0, errors.New("closed") }, time.Second)
	if err := testutil.CollectAndCompare(c, strings.NewReader("")); err == nil {
		t.Error("collection should fail when the count fails")
	}
}
