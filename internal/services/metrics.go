package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application
type Metrics struct {
	// Selection metrics
	Selections    *prometheus.CounterVec
	CorpusReloads prometheus.Counter
	CorpusSize    prometheus.Gauge

	// Reconciliation metrics
	Reconciliations *prometheus.CounterVec
	SweepRuns       *prometheus.CounterVec

	// Outbound collaborator metrics
	CollaboratorRequests *prometheus.CounterVec
	CollaboratorErrors   *prometheus.CounterVec
	CollaboratorLatency  *prometheus.HistogramVec

	// Export metrics
	Exports prometheus.Counter

	// Prompt service reference for dynamic metrics
	prompts *PromptService
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics(prompts *PromptService) *Metrics {
	metrics := &Metrics{
		prompts: prompts,

		// Prompt selections by the anchor the cascade filtered with
		Selections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_journal_selections_total",
			Help: "Total number of prompt selections by anchor",
		}, []string{"anchor"}),

		// Corpus reloads (counter - only goes up)
		CorpusReloads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_journal_corpus_reloads_total",
			Help: "Total number of prompt corpus reloads from disk",
		}),

		// Corpus size as of the last reload
		CorpusSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "echo_journal_corpus_templates",
			Help: "Number of prompt templates loaded at the last corpus reload",
		}),

		// Reconciliation outcomes
		Reconciliations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_journal_reconciliations_total",
			Help: "Total number of mood log reconciliation attempts by outcome",
		}, []string{"outcome"}), // outcome: "recorded", "skipped" or "failed"

		// Background sweep runs
		SweepRuns: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_journal_sweep_runs_total",
			Help: "Total number of reconciliation sweep runs by result",
		}, []string{"result"}),

		// Outbound requests to day-brief collaborators
		CollaboratorRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_journal_collaborator_requests_total",
			Help: "Total number of outbound collaborator requests by service",
		}, []string{"service"}),

		CollaboratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "echo_journal_collaborator_errors_total",
			Help: "Total number of failed collaborator requests by service",
		}, []string{"service"}),

		CollaboratorLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "echo_journal_collaborator_request_duration_seconds",
			Help:    "Collaborator request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30}, // generation calls can be slow
		}, []string{"service"}),

		// Workbook exports
		Exports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "echo_journal_exports_total",
			Help: "Total number of mood workbook exports",
		}),
	}

	// Register a collector that reports the live corpus size from the prompt service
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "echo_journal_corpus_templates_current",
			Help: "Current number of prompt templates (from the prompt service)",
		},
		func() float64 {
			if prompts != nil {
				return float64(len(prompts.Load()))
			}
			return 0
		},
	))

	globalMetrics = metrics
	return metrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	return globalMetrics
}

// RecordSelection records a prompt selection
func (m *Metrics) RecordSelection(anchor string) {
	if anchor == "" {
		anchor = "none"
	}
	m.Selections.WithLabelValues(anchor).Inc()
}

// RecordCorpusReload records a corpus reload and its resulting size
func (m *Metrics) RecordCorpusReload(count int) {
	m.CorpusReloads.Inc()
	m.CorpusSize.Set(float64(count))
}

// RecordReconciliation records a reconciliation attempt outcome
func (m *Metrics) RecordReconciliation(outcome string) {
	m.Reconciliations.WithLabelValues(outcome).Inc()
}

// RecordSweepRun records a background sweep run
func (m *Metrics) RecordSweepRun(result string) {
	m.SweepRuns.WithLabelValues(result).Inc()
}

// RecordCollaboratorRequest records an outbound collaborator request
func (m *Metrics) RecordCollaboratorRequest(service string) {
	m.CollaboratorRequests.WithLabelValues(service).Inc()
}

// RecordCollaboratorError records a failed collaborator request
func (m *Metrics) RecordCollaboratorError(service string) {
	m.CollaboratorErrors.WithLabelValues(service).Inc()
}

// RecordCollaboratorLatency records collaborator request latency
func (m *Metrics) RecordCollaboratorLatency(service string, seconds float64) {
	m.CollaboratorLatency.WithLabelValues(service).Observe(seconds)
}

// RecordExport records a workbook export
func (m *Metrics) RecordExport() {
	m.Exports.Inc()
}
