package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AssetsAnalyzed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "assets_analyzed_total",
		Help:      "Total number of uploaded assets analyzed",
	}, []string{"kind"})

	FacesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "faces_detected_total",
		Help:      "Total number of faces that passed the quality filters",
	}, []string{"kind"})

	FacesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "faces_matched_total",
		Help:      "Total number of faces resolved to an existing identity",
	})

	IdentitiesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "identities_created_total",
		Help:      "Total number of new identities added to catalogues",
	})

	OccurrencesIndexed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "occurrences_indexed_total",
		Help:      "Total number of occurrence entries appended",
	})

	DetectionJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "detection_jobs_total",
		Help:      "Video face detection jobs by terminal status",
	}, []string{"status"})

	InferenceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mm",
		Name:      "inference_duration_seconds",
		Help:      "Duration of ML inference stages",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"stage"})

	AssemblyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mm",
		Name:      "assembly_duration_seconds",
		Help:      "Wall time spent assembling one moment",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	ClipsAssembled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mm",
		Name:      "clips_assembled_total",
		Help:      "Total number of clips that went into assembled moments",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mm",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mm",
		Name:      "ws_connections",
		Help:      "Number of active WebSocket connections",
	})

	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mm",
		Name:      "queue_depth",
		Help:      "Number of pending upload signals in queue",
	})
)
