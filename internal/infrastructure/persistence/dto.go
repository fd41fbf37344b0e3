package persistence

import (
	"encoding/json"
	"time"

	"churnguard/internal/domain/entity"
)

// predictionSchema maps one row of the predictions table. The raw record is
// stored as JSONB; assessment fields get their own columns so history can be
// filtered by tier or probability without unpacking the document.
type predictionSchema struct {
	ID             string    `db:"id"`
	ClientID       string    `db:"client_id"`
	Record         []byte    `db:"record"`
	Probability    float64   `db:"probability"`
	Threshold      float64   `db:"threshold"`
	Flagged        bool      `db:"flagged"`
	Tier           int       `db:"tier"`
	Recommendation string    `db:"recommendation"`
	Confidence     float64   `db:"confidence"`
	ModelVersion   string    `db:"model_version"`
	CreatedAt      time.Time `db:"created_at"`
}

func fromPrediction(p *entity.Prediction) (*predictionSchema, error) {
	record, err := json.Marshal(p.Record)
	if err != nil {
		return nil, err
	}

	return &predictionSchema{
		ID:             p.ID,
		ClientID:       p.ClientID,
		Record:         record,
		Probability:    p.Assessment.Probability,
		Threshold:      p.Assessment.Threshold,
		Flagged:        p.Assessment.Flagged,
		Tier:           int(p.Assessment.Tier),
		Recommendation: p.Assessment.Recommendation,
		Confidence:     p.Assessment.Confidence,
		ModelVersion:   p.ModelVersion,
		CreatedAt:      p.CreatedAt,
	}, nil
}

func (s *predictionSchema) toDomain() (*entity.Prediction, error) {
	var record entity.CustomerRecord
	if len(s.Record) > 0 {
		if err := json.Unmarshal(s.Record, &record); err != nil {
			return nil, err
		}
	}

	return &entity.Prediction{
		ID:       s.ID,
		ClientID: s.ClientID,
		Record:   record,
		Assessment: entity.RiskAssessment{
			Probability:    s.Probability,
			Threshold:      s.Threshold,
			Flagged:        s.Flagged,
			Tier:           entity.RiskTier(s.Tier),
			Recommendation: s.Recommendation,
			Confidence:     s.Confidence,
		},
		ModelVersion: s.ModelVersion,
		CreatedAt:    s.CreatedAt,
	}, nil
}
