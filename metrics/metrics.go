// Package metrics provides Prometheus collectors for context construction
// and provider chat calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// FactoryLookupsTotal counts context constructions by provider and
	// whether this was the provider's first lookup (miss) or a repeat (hit).
	FactoryLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyni_factory_lookups_total",
			Help: "Context factory lookups",
		},
		[]string{"provider", "result"},
	)

	// ChatRequestsTotal counts chat calls sent to providers.
	ChatRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyni_chat_requests_total",
			Help: "Chat requests",
		},
		[]string{"provider", "model", "status"},
	)

	// ChatDuration records chat call latency in seconds, retries included.
	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hyni_chat_duration_seconds",
			Help:    "Chat duration",
			Buckets: LLMBuckets,
		},
		[]string{"provider", "model"},
	)

	// ChatTokensTotal counts tokens reported by providers by direction.
	ChatTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hyni_chat_tokens_total",
			Help: "Token count",
		},
		[]string{"provider", "model", "direction"},
	)
)

func init() {
	prometheus.MustRegister(
		FactoryLookupsTotal,
		ChatRequestsTotal,
		ChatDuration,
		ChatTokensTotal,
	)
}

// Lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Chat statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// RecordLookup counts one factory lookup for provider.
func RecordLookup(provider string, hit bool) {
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	FactoryLookupsTotal.WithLabelValues(provider, result).Inc()
}

// RecordChat counts one chat call and observes its duration.
func RecordChat(provider, model string, err error, elapsed time.Duration) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}
	ChatRequestsTotal.WithLabelValues(provider, model, status).Inc()
	ChatDuration.WithLabelValues(provider, model).Observe(elapsed.Seconds())
}

// RecordTokens adds reported token usage. Zero counts are skipped.
func RecordTokens(provider, model string, input, output int) {
	if input > 0 {
		ChatTokensTotal.WithLabelValues(provider, model, "input").Add(float64(input))
	}
	if output > 0 {
		ChatTokensTotal.WithLabelValues(provider, model, "output").Add(float64(output))
	}
}
