package entity

// RiskTier is one of six ordered bands partitioning predicted probability
// into actionable categories. The order is significant: tiers at or above
// TierMediumHigh sit above the decision threshold ("flag-for-action").
type RiskTier int

const (
	TierLow RiskTier = iota
	TierLowMedium
	TierMedium
	TierMediumHigh
	TierHigh
	TierCritical
)

var tierNames = map[RiskTier]string{ //nolint:gochecknoglobals
	TierLow:        "Low Risk",
	TierLowMedium:  "Low-Medium Risk",
	TierMedium:     "Medium Risk",
	TierMediumHigh: "Medium-High Risk",
	TierHigh:       "High Risk",
	TierCritical:   "Critical Risk",
}

func (t RiskTier) String() string {
	name, ok := tierNames[t]
	if !ok {
		return "Unknown"
	}
	return name
}

// AllTiers returns the tiers in ascending order.
func AllTiers() []RiskTier {
	return []RiskTier{TierLow, TierLowMedium, TierMedium, TierMediumHigh, TierHigh, TierCritical}
}

// RiskAssessment is the calibrated interpretation of a single churn
// probability. Constructed once per request, immutable afterwards.
type RiskAssessment struct {
	Probability    float64  `json:"probability"`
	Threshold      float64  `json:"threshold"`
	Flagged        bool     `json:"flagged"` // probability >= threshold
	Tier           RiskTier `json:"tier"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"` // [0.5, 1.0], grows with distance from threshold
}
