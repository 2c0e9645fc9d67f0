package incidents

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "statusdeck"

var (
	ingestedRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "ingested_rows_total",
			Help:      "Ingested rows by outcome",
		},
		[]string{"outcome"},
	)

	repositoryGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "incidents",
			Name:      "repository_generation",
			Help:      "Current incident repository generation number",
		},
	)
)

func recordIngestion(accepted, rejected int, generation uint64) {
	ingestedRows.WithLabelValues("accepted").Add(float64(accepted))
	ingestedRows.WithLabelValues("rejected").Add(float64(rejected))
	repositoryGeneration.Set(float64(generation))
}
