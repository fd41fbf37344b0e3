// This file mirrors the public OpenAPI surface and should eventually be
// generated from the schema as types.gen.go.
package rest

// Customer are the seven raw business attributes of a single customer.
type Customer struct {
	Contract         string  `json:"contract" validate:"required"`
	Tenure           int     `json:"tenure" validate:"min=0"`
	MonthlyCharges   float64 `json:"monthlyCharges" validate:"required,gt=0"`
	TotalCharges     float64 `json:"totalCharges" validate:"min=0"`
	PaymentMethod    string  `json:"paymentMethod" validate:"required"`
	InternetService  string  `json:"internetService" validate:"required"`
	PaperlessBilling bool    `json:"paperlessBilling"`
}

type PredictionRequest struct {
	Customer Customer `json:"customer" validate:"required"`
	ClientID string   `json:"clientId,omitempty"`
}

type BatchPredictionRequest struct {
	ClientID  string     `json:"clientId,omitempty"`
	Customers []Customer `json:"customers" validate:"required,min=1,max=500,dive"`
}

type Prediction struct {
	ID             string  `json:"id"`
	ClientID       string  `json:"clientId,omitempty"`
	Probability    float64 `json:"probability"`
	Threshold      float64 `json:"threshold"`
	Flagged        bool    `json:"flagged"`
	RiskTier       string  `json:"riskTier"`
	Recommendation string  `json:"recommendation"`
	Confidence     float64 `json:"confidence"`
	ModelVersion   string  `json:"modelVersion"`
	CreatedAt      string  `json:"createdAt"`
}

type BatchPrediction struct {
	Predictions []Prediction `json:"predictions"`
}

type EnqueuedBatch struct {
	TaskID string `json:"taskId"`
	Queue  string `json:"queue"`
	Count  int    `json:"count"`
}

type PredictionHistory struct {
	Predictions []Prediction `json:"predictions"`
}

type ModelInfo struct {
	Version      string             `json:"version"`
	Threshold    float64            `json:"threshold"`
	FeatureCount int                `json:"featureCount"`
	FeatureOrder []string           `json:"featureOrder"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
	Hyperparams  map[string]any     `json:"hyperparams,omitempty"`
}

type FeatureInfo struct {
	FeatureOrder []string                  `json:"featureOrder"`
	Categories   map[string]map[string]int `json:"categories"`
	Constraints  map[string]string         `json:"constraints"`
}

type Sample struct {
	Customer Customer `json:"customer"`
	ClientID string   `json:"clientId"`
	Profile  string   `json:"profile"`
}

type TierStats struct {
	Tiers map[string]int64 `json:"tiers"`
	Total int64            `json:"total"`
}

// Error Error model.
type Error struct {
	// Code error code
	Code ErrorCode `json:"code"`

	// Message human readable error message
	Message string `json:"message"`
}

// ErrorCode error code.
type ErrorCode string
