package recognition

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	framesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceattend_frames_processed_total",
		Help: "Frames run through the recognition pipeline.",
	})
	facesMatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceattend_faces_matched_total",
		Help: "Detections resolved to an enrolled identity.",
	})
	facesUnknown = promauto.NewCounter(prometheus.CounterOpts{
		Name: "faceattend_faces_unknown_total",
		Help: "Detections that resolved to no enrolled identity.",
	})
	eventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "faceattend_attendance_events_total",
		Help: "Ledger events recorded, by kind.",
	}, []string{"kind"})
	matchDistance = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "faceattend_match_distance",
		Help:    "Distance of resolved matches.",
		Buckets: prometheus.LinearBuckets(0, 0.1, 10),
	})
)
