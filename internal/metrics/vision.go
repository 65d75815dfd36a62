package metrics

import "github.com/prometheus/client_golang/prometheus"

// Vision extraction Prometheus metrics.
var (
	VisionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "herbadex",
			Name:      "vision_requests_total",
			Help:      "Total number of vision extraction requests",
		},
		[]string{"model", "status"},
	)

	VisionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "herbadex",
			Name:      "vision_request_duration_seconds",
			Help:      "Vision extraction request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"model"},
	)

	VisionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "herbadex",
			Name:      "vision_tokens_total",
			Help:      "Total vision tokens consumed",
		},
		[]string{"model", "type"},
	)

	VisionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "herbadex",
			Name:      "vision_errors_total",
			Help:      "Total vision extraction errors",
		},
		[]string{"model", "error_type"},
	)

	AnalysisOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "herbadex",
			Name:      "analysis_outcomes_total",
			Help:      "Terminal analysis outcomes by state",
		},
		[]string{"state"}, // "succeeded" / "failed" / "stale"
	)

	JobsQueueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "herbadex",
			Name:      "jobs_queue_depth",
			Help:      "Number of pending analysis jobs",
		},
		[]string{"queue"},
	)
)

var visionMetricsRegistered bool

// RegisterVisionMetrics registers Prometheus vision metrics. Must be called once from main.
func RegisterVisionMetrics() {
	if visionMetricsRegistered {
		return
	}
	prometheus.MustRegister(VisionRequestsTotal)
	prometheus.MustRegister(VisionRequestDuration)
	prometheus.MustRegister(VisionTokensTotal)
	prometheus.MustRegister(VisionErrorsTotal)
	prometheus.MustRegister(AnalysisOutcomesTotal)
	prometheus.MustRegister(JobsQueueDepth)
	visionMetricsRegistered = true
}
