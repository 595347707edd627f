package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Message outcomes
const (
	OutcomeAnalysed  = "analysed"
	OutcomeDefaulted = "defaulted"
)

var (
	// MessagesProcessed counts messages run through classification
	MessagesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailtriage_messages_processed_total",
			Help: "Total number of messages classified",
		},
		[]string{"outcome"}, // analysed, defaulted
	)

	// LLMFailures counts failed completion calls
	LLMFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mailtriage_llm_failures_total",
			Help: "Total number of failed LLM completion calls",
		},
	)

	// ExtractorStrategy counts which extraction strategy recovered the analysis
	ExtractorStrategy = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mailtriage_extractor_strategy_total",
			Help: "Analysis extraction results by winning strategy",
		},
		[]string{"strategy"}, // span, document, labels, none
	)

	// JobDuration tracks end-to-end classification job latency
	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mailtriage_job_duration_seconds",
			Help:    "Classification job duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 12), // 0.5s to ~17m
		},
		[]string{"status"},
	)
)

func IncrementMessageProcessed(outcome string) {
	MessagesProcessed.WithLabelValues(outcome).Inc()
}

func IncrementLLMFailure() {
	LLMFailures.Inc()
}

// IncrementExtractorStrategy records the winning strategy; empty means none matched
func IncrementExtractorStrategy(strategy string) {
	if strategy == "" {
		strategy = "none"
	}
	ExtractorStrategy.WithLabelValues(strategy).Inc()
}

func RecordJobDuration(status string, duration time.Duration) {
	JobDuration.WithLabelValues(status).Observe(duration.Seconds())
}
