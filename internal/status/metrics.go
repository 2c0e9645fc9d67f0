package status

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/statusdeck/statusdeck/internal/domain"
)

const namespace = "statusdeck"

var (
	probeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "probes",
			Name:      "check_duration_seconds",
			Help:      "Time to complete one probe check, fallbacks included",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "source"},
	)

	probeResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "probes",
			Name:      "results_total",
			Help:      "Probe results by provider and source",
		},
		[]string{"provider", "source"},
	)

	pollDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "duration_seconds",
			Help:      "Time to complete one full fan-out poll",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)

	pollOverallGrade = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "poll",
			Name:      "overall_grade",
			Help:      "Overall grade of the most recent poll (0=operational .. 4=unknown)",
		},
	)
)

// recordProbe records one probe completion.
func recordProbe(providerID string, source domain.StatusSource, duration time.Duration) {
	probeDuration.WithLabelValues(providerID, string(source)).Observe(duration.Seconds())
	probeResults.WithLabelValues(providerID, string(source)).Inc()
}

// recordPoll records one completed fan-out poll.
func recordPoll(snapshot domain.DashboardSnapshot, duration time.Duration) {
	pollDuration.Observe(duration.Seconds())
	pollOverallGrade.Set(float64(snapshot.OverallGrade))
}
