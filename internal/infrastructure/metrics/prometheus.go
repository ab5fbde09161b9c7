// Package metrics exposes usage counters in Prometheus format.
package metrics

import (
	"net/http"

	"github.com/Milo82/construction-ai-assistant/internal/domain/entities"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "assistant"

// Recorder implements ports.UsageRecorder. Each Recorder owns its registry so
// that several can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry

	completions *prometheus.CounterVec
	tokens      *prometheus.CounterVec
	cost        prometheus.Counter
	ingested    *prometheus.CounterVec
	gated       prometheus.Counter
}

// NewRecorder creates and registers all counters.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),

		completions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Completion calls labeled by outcome (success or an error kind).",
		}, []string{"outcome"}),

		tokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens reported by the provider, labeled by kind (prompt or completion).",
		}, []string{"kind"}),

		cost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_usd_total",
			Help:      "Estimated spend in USD across all sessions.",
		}),

		ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_files_total",
			Help:      "Uploaded files processed, labeled by outcome.",
		}, []string{"outcome"}),

		gated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gated_requests_total",
			Help:      "Chat attempts refused because no credential was set.",
		}),
	}

	r.registry.MustRegister(r.completions, r.tokens, r.cost, r.ingested, r.gated)
	return r
}

// RecordIngest counts one batch.
func (r *Recorder) RecordIngest(succeeded, failed int) {
	r.ingested.WithLabelValues("ok").Add(float64(succeeded))
	r.ingested.WithLabelValues("failed").Add(float64(failed))
}

// RecordCompletion counts one completion call.
func (r *Recorder) RecordCompletion(outcome string, usage entities.Usage, cost decimal.Decimal) {
	r.completions.WithLabelValues(outcome).Inc()
	r.tokens.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	r.tokens.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
	if cost.IsPositive() {
		r.cost.Add(cost.InexactFloat64())
	}
}

// RecordGated counts a refused chat attempt.
func (r *Recorder) RecordGated() {
	r.gated.Inc()
}

// Handler serves the registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
