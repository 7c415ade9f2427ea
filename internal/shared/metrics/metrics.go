package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	generationOutcomesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_outcomes_total",
			Help: "Generation outcomes by content kind and status.",
		},
		[]string{"kind", "status"},
	)
	providerRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_provider_request_duration_seconds",
			Help:    "Duration of calls to the text generation provider.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"kind"},
	)
	batchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batch_runs_total",
			Help: "Batch runs by kind and final state.",
		},
		[]string{"kind", "state"},
	)
	batchItems = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "batch_items",
			Help:    "Number of items submitted per batch.",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 40},
		},
	)
	persistenceFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "persistence_failures_total",
			Help: "Failed document or export persistence attempts.",
		},
		[]string{"target"},
	)
	workerJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_total",
			Help: "Queue jobs handled by the worker by result.",
		},
		[]string{"result"},
	)
)

// ObserveOutcome records one generation outcome.
func ObserveOutcome(kind, status string) {
	generationOutcomesTotal.WithLabelValues(kind, status).Inc()
}

// ObserveProviderDuration records how long a provider call took.
func ObserveProviderDuration(kind string, d time.Duration) {
	providerRequestDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// ObserveBatch records a finished batch and its size.
func ObserveBatch(kind, state string, items int) {
	batchRunsTotal.WithLabelValues(kind, state).Inc()
	batchItems.Observe(float64(items))
}

// IncPersistenceFailure counts a failed save (documents, exports).
func IncPersistenceFailure(target string) {
	persistenceFailuresTotal.WithLabelValues(target).Inc()
}

// IncWorkerJob counts a worker job by result (completed, failed, deleted_unrecoverable).
func IncWorkerJob(result string) {
	workerJobsTotal.WithLabelValues(result).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
