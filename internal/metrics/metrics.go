package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Registry holds the metrics of a single run. A run is a short-lived batch
// job, so values are pushed to a Pushgateway rather than scraped.
type Registry struct {
	reg *prometheus.Registry

	Requests         *prometheus.CounterVec
	RateLimitRetries prometheus.Counter
	BackoffSeconds   prometheus.Counter
	OffersEvaluated  *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	NotifyFailures   prometheus.Counter
	RunDuration      prometheus.Gauge
	LastSuccess      prometheus.Gauge
}

func NewRegistry(namespace string) *Registry {
	r := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Requests sent to the flight-offers API by endpoint and HTTP status.",
	}, []string{"endpoint", "code"})
	retries := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_retries_total",
		Help:      "Requests retried after an HTTP 429.",
	})
	backoff := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backoff_seconds_total",
		Help:      "Time spent sleeping on rate-limit backoff.",
	})
	evaluated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "offers_evaluated_total",
		Help:      "Offers evaluated against the rule set by phase and result.",
	}, []string{"phase", "result"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Search cache lookups by result.",
	}, []string{"result"})
	notifyFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notify_failures_total",
		Help:      "Webhook deliveries that failed.",
	})
	runDuration := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of the last run.",
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last completed run.",
	})

	r.MustRegister(requests, retries, backoff, evaluated, cacheLookups, notifyFailures, runDuration, lastSuccess)

	return &Registry{
		reg:              r,
		Requests:         requests,
		RateLimitRetries: retries,
		BackoffSeconds:   backoff,
		OffersEvaluated:  evaluated,
		CacheLookups:     cacheLookups,
		NotifyFailures:   notifyFailures,
		RunDuration:      runDuration,
		LastSuccess:      lastSuccess,
	}
}

// ObserveRequest counts one API response.
func (r *Registry) ObserveRequest(endpoint string, status int) {
	if r == nil {
		return
	}
	r.Requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
}

// ObserveBackoff counts one rate-limit retry and the time it waited.
func (r *Registry) ObserveBackoff(wait time.Duration) {
	if r == nil {
		return
	}
	r.RateLimitRetries.Inc()
	r.BackoffSeconds.Add(wait.Seconds())
}

func (r *Registry) ObserveEvaluation(phase string, passed bool) {
	if r == nil {
		return
	}
	result := "rejected"
	if passed {
		result = "passed"
	}
	r.OffersEvaluated.WithLabelValues(phase, result).Inc()
}

func (r *Registry) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheLookups.WithLabelValues(result).Inc()
}

func (r *Registry) ObserveNotifyFailure() {
	if r == nil {
		return
	}
	r.NotifyFailures.Inc()
}

// ObserveRun records a completed run.
func (r *Registry) ObserveRun(started, finished time.Time) {
	if r == nil {
		return
	}
	r.RunDuration.Set(finished.Sub(started).Seconds())
	r.LastSuccess.Set(float64(finished.Unix()))
}

// Push sends the registry to a Pushgateway under the given job name.
func (r *Registry) Push(ctx context.Context, url, job string, client *http.Client) error {
	pusher := push.New(url, job).Gatherer(r.reg)
	if client != nil {
		pusher = pusher.Client(client)
	}
	return pusher.PushContext(ctx)
}
