package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_created_total",
			Help: "Total number of posts created",
		},
	)

	PostsUpdatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_updated_total",
			Help: "Total number of posts updated",
		},
	)

	PostsDeletedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "posts_deleted_total",
			Help: "Total number of posts deleted",
		},
	)

	PostListingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "post_listings_total",
			Help: "Total number of listing queries by scope",
		},
		[]string{"scope"},
	)

	MediaUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Total number of media relay uploads by outcome",
		},
		[]string{"outcome"},
	)

	MediaUploadDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_upload_duration_seconds",
			Help:    "Duration of media relay uploads in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	MediaCompensationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_compensations_total",
			Help: "Total number of compensating media deletes by outcome",
		},
		[]string{"outcome"},
	)
)
