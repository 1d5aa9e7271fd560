package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	r := NewRegistry("farewatch")
	r.ObserveRequest("search", 200)
	r.ObserveRequest("search", 200)
	r.ObserveRequest("search", 429)

	if got := testutil.ToFloat64(r.Requests.WithLabelValues("search", "200")); got != 2 {
		t.Errorf("expected 2 successful requests, got %v", got)
	}
	if got := testutil.ToFloat64(r.Requests.WithLabelValues("search", "429")); got != 1 {
		t.Errorf("expected 1 rate-limited request, got %v", got)
	}

	var nilRegistry *Registry
	nilRegistry.ObserveRequest("search", 200)
	nilRegistry.ObserveBackoff(time.Second)
	nilRegistry.ObserveEvaluation("direct", true)
	nilRegistry.ObserveCache(true)
	nilRegistry.ObserveNotifyFailure()
	nilRegistry.ObserveRun(time.Now(), time.Now())
}

func TestObserveBackoffAndEvaluation(t *testing.T) {
	r := NewRegistry("farewatch")
	r.ObserveBackoff(2 * time.Second)
	r.ObserveBackoff(4 * time.Second)
	r.ObserveEvaluation("direct", true)
	r.ObserveEvaluation("direct", false)
	r.ObserveEvaluation("direct", false)

	if got := testutil.ToFloat64(r.RateLimitRetries); got != 2 {
		t.Errorf("expected 2 retries, got %v", got)
	}
	if got := testutil.ToFloat64(r.BackoffSeconds); got != 6 {
		t.Errorf("expected 6s of backoff, got %v", got)
	}
	if got := testutil.ToFloat64(r.OffersEvaluated.WithLabelValues("direct", "rejected")); got != 2 {
		t.Errorf("expected 2 rejected offers, got %v", got)
	}
}

func TestPush(t *testing.T) {
	var gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotPath = req.URL.Path
		body, _ := io.ReadAll(req.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRegistry("farewatch")
	r.RateLimitRetries.Add(3)

	if err := r.Push(context.Background(), srv.URL, "farewatch", srv.Client()); err != nil {
		t.Fatalf("push failed: %v", err)
	}
	if gotPath != "/metrics/job/farewatch" {
		t.Errorf("unexpected push path %q", gotPath)
	}
	if !strings.Contains(gotBody, "farewatch_rate_limit_retries_total") {
		t.Error("pushed body does not contain the retry counter")
	}
}
