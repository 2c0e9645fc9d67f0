package snapshot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statusdeck"

var (
	schedulerTicks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "ticks_total",
			Help:      "Scheduler ticks by outcome",
		},
		[]string{"outcome"},
	)

	storeSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "snapshots",
			Name:      "store_size",
			Help:      "Number of snapshots currently retained",
		},
	)
)

func recordTick(outcome string) {
	schedulerTicks.WithLabelValues(outcome).Inc()
}

func recordStoreSize(n int) {
	storeSize.Set(float64(n))
}
