package led

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sentFrames = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borderlight_led_sent_frames",
		Help: "Count of frames delivered to the strip.",
	})

	sentBytes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "borderlight_led_sent_bytes",
		Help: "Count of bytes delivered to the strip.",
	})

	linkErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "borderlight_led_link_errors",
		Help: "Count of failed frame writes, by kind.",
	}, []string{"kind"})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		sentFrames,
		sentBytes,
		linkErrors,
	)
}
