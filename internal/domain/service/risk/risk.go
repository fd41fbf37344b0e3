package risk

import (
	"fmt"
	"math"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/pkg/errcodes"
)

var recommendations = map[entity.RiskTier]string{ //nolint:gochecknoglobals
	entity.TierCritical:   "Immediate action: urgent contact plus premium retention offer",
	entity.TierHigh:       "High priority: contact within 48 hours and a personalised offer",
	entity.TierMediumHigh: "Watch closely: contact within a week and review conditions",
	entity.TierMedium:     "Monitoring: include in the next retention campaign",
	entity.TierLowMedium:  "Tracking: monthly follow-up and loyalty programme",
	entity.TierLow:        "Stable: loyal customer, maintain service quality",
}

// Scorer maps churn probabilities to calibrated risk assessments. The six
// tiers are derived from the decision threshold: three equal bands below it
// and three above, so the banding stays meaningful for any threshold in
// (0, 1) instead of assuming it sits near 0.5.
type Scorer struct {
	threshold float64
	cuts      [5]float64
}

func NewScorer(threshold float64) (*Scorer, error) {
	if threshold <= 0 || threshold >= 1 || math.IsNaN(threshold) {
		return nil, domain.NewError(errcodes.InvalidThreshold,
			fmt.Sprintf("decision threshold must lie strictly inside (0, 1), got %g", threshold))
	}

	above := (1 - threshold) / 3

	return &Scorer{
		threshold: threshold,
		cuts: [5]float64{
			threshold / 3,
			2 * threshold / 3,
			threshold,
			threshold + above,
			threshold + 2*above,
		},
	}, nil
}

// Threshold returns the decision threshold the scorer was built with.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Assess interprets a single probability. A probability exactly at the
// threshold is flagged: the operating point was chosen so that "at least
// threshold" means act.
func (s *Scorer) Assess(probability float64) (entity.RiskAssessment, error) {
	if probability < 0 || probability > 1 || math.IsNaN(probability) {
		return entity.RiskAssessment{}, domain.NewError(errcodes.InvalidProbability,
			fmt.Sprintf("probability must lie in [0, 1], got %g", probability))
	}

	tier := s.tier(probability)

	return entity.RiskAssessment{
		Probability:    probability,
		Threshold:      s.threshold,
		Flagged:        probability >= s.threshold,
		Tier:           tier,
		Recommendation: recommendations[tier],
		Confidence:     s.confidence(probability),
	}, nil
}

func (s *Scorer) tier(probability float64) entity.RiskTier {
	for i, cut := range s.cuts {
		if probability < cut {
			return entity.RiskTier(i)
		}
	}
	return entity.TierCritical
}

// confidence grows linearly with the distance from the threshold, from 0.5
// at the decision boundary to 1.0 at the farther end of the [0, 1] interval.
func (s *Scorer) confidence(probability float64) float64 {
	distance := math.Abs(probability - s.threshold)
	span := math.Max(s.threshold, 1-s.threshold)

	return math.Min(1.0, 0.5+0.5*distance/span)
}
