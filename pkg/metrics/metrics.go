package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	QueueLength           prometheus.Gauge
	JobsTotal             *prometheus.CounterVec
	JobDuration           prometheus.Histogram
	DetectionsTotal       *prometheus.CounterVec
	EntitiesCreatedTotal  *prometheus.CounterVec
	HeartbeatTicksTotal   *prometheus.CounterVec
	SelfTerminationsTotal prometheus.Counter
	MobileImagesTotal     *prometheus.CounterVec

	initOnce sync.Once
)

// Init registers every collector with the default registry. Safe to call
// more than once; only the first call registers.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	QueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classify_queue_length",
			Help: "Number of product jobs waiting on the intake queue, sampled after each pop.",
		},
	)

	JobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classify_jobs_total",
			Help: "Total number of classification jobs by outcome.",
		},
		[]string{"status"}, // classified, empty, unavailable, failed, invalid
	)

	JobDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "classify_job_duration_seconds",
			Help:    "Duration of a classification job from pop to completion.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
	)

	DetectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "detector_calls_total",
			Help: "Detector calls by typed outcome.",
		},
		[]string{"outcome"}, // success, empty, transport_error, unavailable
	)

	EntitiesCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entities_created_total",
			Help: "Persisted entities by kind.",
		},
		[]string{"kind"}, // image, object, feature, main_object
	)

	HeartbeatTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "heartbeat_ticks_total",
			Help: "Heartbeat monitor ticks by result.",
		},
		[]string{"result"}, // alive, stalled
	)

	SelfTerminationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "self_termination_requests_total",
			Help: "Self-termination requests sent to the pool manager.",
		},
	)

	MobileImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mobile_images_total",
			Help: "Mobile main-image renditions by result.",
		},
		[]string{"result"},
	)
}
