package predict

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/rs/xid"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/service/features"
	"churnguard/internal/domain/service/risk"
	"churnguard/internal/domain/value"
	"churnguard/pkg/errcodes"
	"churnguard/pkg/logx"
)

const assessmentCacheTTL = 10 * time.Minute

// canaryRecord is a known-good customer used to verify the whole pipeline
// end to end. Scoring it must always succeed with a probability in [0, 1].
var canaryRecord = entity.CustomerRecord{ //nolint:gochecknoglobals
	Contract:         "Month-to-month",
	Tenure:           12,
	MonthlyCharges:   75.0,
	TotalCharges:     900.0,
	PaymentMethod:    "Electronic check",
	InternetService:  "Fiber optic",
	PaperlessBilling: true,
}

type Inferencer interface {
	Predict(vector value.FeatureVector) (float64, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, prediction *entity.Prediction) error
	CreateBatch(ctx context.Context, predictions []*entity.Prediction) error
	ListRecent(ctx context.Context, limit int) ([]entity.Prediction, error)
	GetByID(ctx context.Context, id string) (*entity.Prediction, error)
}

type StatsRecorder interface {
	Record(ctx context.Context, tier entity.RiskTier) error
	Snapshot(ctx context.Context) (map[entity.RiskTier]int64, error)
}

type Alerter interface {
	Alert(ctx context.Context, prediction entity.Prediction) error
}

// Info is the metadata surfaced on the model info endpoint.
type Info struct {
	Version     string
	Threshold   float64
	Features    []string
	Hyperparams map[string]any
	Metrics     map[string]float64
}

// Service scores customers: feature engineering, inference, risk calibration,
// then the optional side effects (history, stats, alerts). History, stats and
// alerts are best effort; their failure never fails the scoring itself.
type Service struct {
	engineer     *features.Engineer
	scorer       *risk.Scorer
	inferencer   Inferencer
	modelVersion string
	hyperparams  map[string]any
	metrics      map[string]float64

	history HistoryRepository
	stats   StatsRecorder
	alerter Alerter

	assessmentCache *cache.Cache
}

func NewService(
	engineer *features.Engineer,
	scorer *risk.Scorer,
	inferencer Inferencer,
	modelVersion string,
) *Service {
	return &Service{
		engineer:        engineer,
		scorer:          scorer,
		inferencer:      inferencer,
		modelVersion:    modelVersion,
		assessmentCache: cache.New(assessmentCacheTTL, assessmentCacheTTL),
	}
}

func (s *Service) WithHistory(history HistoryRepository) *Service {
	s.history = history
	return s
}

func (s *Service) WithStats(stats StatsRecorder) *Service {
	s.stats = stats
	return s
}

func (s *Service) WithAlerter(alerter Alerter) *Service {
	s.alerter = alerter
	return s
}

func (s *Service) WithTrainingMeta(hyperparams map[string]any, metrics map[string]float64) *Service {
	s.hyperparams = hyperparams
	s.metrics = metrics
	return s
}

// Predict scores one customer and records the result.
func (s *Service) Predict(ctx context.Context, clientID string, record entity.CustomerRecord) (entity.Prediction, error) {
	assessment, err := s.assess(record)
	if err != nil {
		observeFailure()
		return entity.Prediction{}, err
	}

	prediction := entity.Prediction{
		ID:           xid.New().String(),
		ClientID:     clientID,
		Record:       record,
		Assessment:   assessment,
		ModelVersion: s.modelVersion,
		CreatedAt:    time.Now().UTC(),
	}

	observePrediction(assessment)
	s.recordSideEffects(ctx, []*entity.Prediction{&prediction})

	logger(ctx).Info("customer scored",
		slog.String(logx.FieldPredictionID, prediction.ID),
		slog.String(logx.FieldClientID, prediction.ClientID),
		slog.Float64(logx.FieldProbability, assessment.Probability),
		slog.String(logx.FieldRiskTier, assessment.Tier.String()),
		slog.String(logx.FieldModelVersion, prediction.ModelVersion),
	)

	return prediction, nil
}

// PredictBatch scores records independently; one bad record fails the whole
// batch with its position, nothing is recorded for a failed batch.
func (s *Service) PredictBatch(ctx context.Context, clientID string, records []entity.CustomerRecord) ([]entity.Prediction, error) {
	if len(records) == 0 {
		return nil, domain.NewError(errcodes.InvalidBatchRequest, "batch holds no customers")
	}

	predictions := make([]*entity.Prediction, 0, len(records))
	now := time.Now().UTC()

	for i, record := range records {
		assessment, err := s.assess(record)
		if err != nil {
			observeFailure()
			return nil, domain.WrapError(err, errcodes.InvalidBatchRequest,
				fmt.Sprintf("customer at position %d", i))
		}

		predictions = append(predictions, &entity.Prediction{
			ID:           xid.New().String(),
			ClientID:     clientID,
			Record:       record,
			Assessment:   assessment,
			ModelVersion: s.modelVersion,
			CreatedAt:    now,
		})
	}

	for _, p := range predictions {
		observePrediction(p.Assessment)
	}
	s.recordSideEffects(ctx, predictions)

	result := make([]entity.Prediction, len(predictions))
	for i, p := range predictions {
		result[i] = *p
	}

	return result, nil
}

// assess runs the deterministic part of the pipeline. Identical records hit
// the memoization cache instead of re-walking the ensemble.
func (s *Service) assess(record entity.CustomerRecord) (entity.RiskAssessment, error) {
	key := cacheKey(record)
	if cached, found := s.assessmentCache.Get(key); found {
		return cached.(entity.RiskAssessment), nil
	}

	vector, err := s.engineer.Vector(record)
	if err != nil {
		return entity.RiskAssessment{}, err
	}

	probability, err := s.inferencer.Predict(vector)
	if err != nil {
		return entity.RiskAssessment{}, err
	}

	assessment, err := s.scorer.Assess(probability)
	if err != nil {
		return entity.RiskAssessment{}, err
	}

	s.assessmentCache.Set(key, assessment, cache.DefaultExpiration)

	return assessment, nil
}

func (s *Service) recordSideEffects(ctx context.Context, predictions []*entity.Prediction) {
	if s.history != nil {
		if err := s.history.CreateBatch(ctx, predictions); err != nil {
			logger(ctx).Error("failed to persist predictions", "count", len(predictions), "error", err)
		}
	}

	for _, p := range predictions {
		if s.stats != nil {
			if err := s.stats.Record(ctx, p.Assessment.Tier); err != nil {
				logger(ctx).Error("failed to record tier stats", "tier", p.Assessment.Tier.String(), "error", err)
			}
		}

		if s.alerter != nil && p.Assessment.Tier == entity.TierCritical {
			if err := s.alerter.Alert(ctx, *p); err != nil {
				logger(ctx).Error("failed to send critical risk alert", "prediction_id", p.ID, "error", err)
			}
		}
	}
}

// History returns the latest stored predictions, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]entity.Prediction, error) {
	if s.history == nil {
		return nil, domain.NewError(errcodes.NotFound, "prediction history is not configured")
	}
	return s.history.ListRecent(ctx, limit)
}

// HistoryByID returns one stored prediction.
func (s *Service) HistoryByID(ctx context.Context, id string) (*entity.Prediction, error) {
	if s.history == nil {
		return nil, domain.NewError(errcodes.NotFound, "prediction history is not configured")
	}
	return s.history.GetByID(ctx, id)
}

// TierStats returns the running per-tier prediction counters.
func (s *Service) TierStats(ctx context.Context) (map[entity.RiskTier]int64, error) {
	if s.stats == nil {
		return map[entity.RiskTier]int64{}, nil
	}
	return s.stats.Snapshot(ctx)
}

// ModelInfo describes the loaded model.
func (s *Service) ModelInfo() Info {
	return Info{
		Version:     s.modelVersion,
		Threshold:   s.scorer.Threshold(),
		Features:    value.FeatureOrder(),
		Hyperparams: s.hyperparams,
		Metrics:     s.metrics,
	}
}

// HealthCheck scores the canary customer through the full pipeline.
func (s *Service) HealthCheck(ctx context.Context) error {
	vector, err := s.engineer.Vector(canaryRecord)
	if err != nil {
		return domain.WrapError(err, errcodes.ModelNotReady, "canary feature engineering failed")
	}

	probability, err := s.inferencer.Predict(vector)
	if err != nil {
		return domain.WrapError(err, errcodes.ModelNotReady, "canary inference failed")
	}

	if _, err := s.scorer.Assess(probability); err != nil {
		return domain.WrapError(err, errcodes.ModelNotReady, "canary assessment failed")
	}

	observeCanary(probability)
	logger(ctx).Debug("canary prediction succeeded", "probability", probability)

	return nil
}

func cacheKey(record entity.CustomerRecord) string {
	return fmt.Sprintf("%s|%d|%g|%g|%s|%s|%t",
		record.Contract, record.Tenure, record.MonthlyCharges, record.TotalCharges,
		record.PaymentMethod, record.InternetService, record.PaperlessBilling)
}
