package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSubmission(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}

	c.ObserveSubmission("create_agent", OutcomeSuccess, 1200, true, 20*time.Millisecond)
	c.ObserveSubmission("create_agent", OutcomeSuccess, 800, true, 10*time.Millisecond)
	c.ObserveSubmission("create_agent", OutcomeNetwork, 0, false, time.Second)

	if got := testutil.ToFloat64(c.submissions.WithLabelValues("create_agent", OutcomeSuccess)); got != 2 {
		t.Fatalf("expected 2 successes, got %v", got)
	}
	if got := testutil.ToFloat64(c.submissions.WithLabelValues("create_agent", OutcomeNetwork)); got != 1 {
		t.Fatalf("expected 1 network error, got %v", got)
	}
	if n := testutil.CollectAndCount(c.gas); n != 1 {
		t.Fatalf("expected one gas series, got %d", n)
	}

	if _, err := NewCollector(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}

	var nilCollector *Collector
	nilCollector.ObserveSubmission("x", OutcomeSuccess, 1, true, time.Millisecond)
}

func TestHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := NewCollector(reg)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	c.ObserveSubmission("create_model", OutcomeFault, 500, true, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `suiai_submissions_total{operation="create_model",outcome="fault"} 1`) {
		t.Fatalf("metric missing from output:\n%s", body)
	}
}
