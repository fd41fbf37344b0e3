package predict

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"churnguard/internal/domain/entity"
)

//nolint:gochecknoglobals
var (
	predictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "churnguard",
		Name:      "predictions_total",
		Help:      "Scored customers by risk tier.",
	}, []string{"tier"})

	predictionFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "churnguard",
		Name:      "prediction_failures_total",
		Help:      "Requests rejected by validation, encoding or inference.",
	})

	flaggedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "churnguard",
		Name:      "flagged_customers_total",
		Help:      "Customers at or above the decision threshold.",
	})

	canaryProbability = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "churnguard",
		Name:      "canary_probability",
		Help:      "Probability of the last canary health check prediction.",
	})
)

func observePrediction(assessment entity.RiskAssessment) {
	predictionsTotal.WithLabelValues(assessment.Tier.String()).Inc()
	if assessment.Flagged {
		flaggedTotal.Inc()
	}
}

func observeFailure() {
	predictionFailuresTotal.Inc()
}

func observeCanary(probability float64) {
	canaryProbability.Set(probability)
}
