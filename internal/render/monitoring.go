package render

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	framesRendered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borderlight_frames_rendered",
		Help: "Count of frames rendered and handed to the driver.",
	})

	frameErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borderlight_frame_errors",
		Help: "Count of frames that failed, by stage.",
	}, []string{"stage"})

	pixelQueries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borderlight_pixel_queries",
		Help: "Count of screen pixels sampled.",
	})

	frameSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "borderlight_frame_seconds",
		Help:    "Time spent per frame stage.",
		Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
	}, []string{"stage"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		framesRendered,
		frameErrors,
		pixelQueries,
		frameSeconds,
	)
}
