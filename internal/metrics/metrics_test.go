package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestAndOutcomes(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/api/programs", 200, 120*time.Millisecond)
	m.IncBookingOutcome("paid")
	m.IncBookingOutcome("paid")
	m.IncCheckoutOutcome("payment_dismissed")
	m.ObserveRealtime("in", "new_message")

	if got := testutil.ToFloat64(m.BookingOutcomes.WithLabelValues("paid")); got != 2 {
		t.Fatalf("expected 2 paid outcomes, got %v", got)
	}
	if got := testutil.ToFloat64(m.CheckoutOutcomes.WithLabelValues("payment_dismissed")); got != 1 {
		t.Fatalf("expected 1 dismissed checkout, got %v", got)
	}
	if got := testutil.CollectAndCount(m.BackendRequests); got != 1 {
		t.Fatalf("expected one request series, got %d", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ObserveRealtime("out", "send_message")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fitsphere_dashboard_realtime_events_total{direction="out",event="send_message"} 1`) {
		t.Fatalf("metric missing from output:\n%s", body)
	}
}
