package entity

import "time"

// Prediction is one scored customer: the input record, the calibrated
// assessment and the model that produced it.
type Prediction struct {
	ID           string         `json:"id" db:"id"`
	ClientID     string         `json:"client_id,omitempty" db:"client_id"`
	Record       CustomerRecord `json:"record"`
	Assessment   RiskAssessment `json:"assessment"`
	ModelVersion string         `json:"model_version" db:"model_version"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
