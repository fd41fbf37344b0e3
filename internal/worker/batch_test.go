package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/service/features"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/domain/service/risk"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/queue"
)

type fixedInferencer struct {
	probability float64
}

func (f fixedInferencer) Predict(value.FeatureVector) (float64, error) {
	return f.probability, nil
}

type brokenInferencer struct{}

func (brokenInferencer) Predict(value.FeatureVector) (float64, error) {
	return 0, errors.New("model not loaded")
}

func newTestPredictService(t *testing.T, probability float64) *predict.Service {
	t.Helper()
	return newTestPredictServiceWith(t, fixedInferencer{probability: probability})
}

func newTestPredictServiceWith(t *testing.T, inferencer predict.Inferencer) *predict.Service {
	t.Helper()

	scorer, err := risk.NewScorer(0.351)
	require.NoError(t, err)

	engineer := features.NewEngineer(value.EncoderSet{
		Contract: value.LabelEncoder{"Month-to-month": 0, "One year": 1, "Two year": 2},
		PaymentMethod: value.LabelEncoder{
			"Bank transfer (automatic)": 0,
			"Credit card (automatic)":   1,
			"Electronic check":          2,
			"Mailed check":              3,
		},
		InternetService:  value.LabelEncoder{"DSL": 0, "Fiber optic": 1, "No": 2},
		PaperlessBilling: value.LabelEncoder{"No": 0, "Yes": 1},
	}, value.TenureSegments{
		{MaxTenure: 6, Code: 0},
		{MaxTenure: 12, Code: 1},
		{MaxTenure: 24, Code: 2},
		{MaxTenure: -1, Code: 3},
	})

	return predict.NewService(engineer, scorer, inferencer, "v1-test")
}

func validRecord() entity.CustomerRecord {
	return entity.CustomerRecord{
		Contract:         "Month-to-month",
		Tenure:           2,
		MonthlyCharges:   80.0,
		TotalCharges:     160.0,
		PaymentMethod:    "Electronic check",
		InternetService:  "Fiber optic",
		PaperlessBilling: true,
	}
}

func TestBatchScorer_HandleBatchScore(t *testing.T) {
	rq := require.New(t)

	scorer := NewBatchScorer(newTestPredictService(t, 0.6))

	task, err := queue.NewBatchScoreTask(queue.BatchScorePayload{
		BatchID: "batch-1",
		Records: []entity.CustomerRecord{validRecord(), validRecord()},
	})
	rq.NoError(err)

	rq.NoError(scorer.HandleBatchScore(context.Background(), task))
}

func TestBatchScorer_HandleBatchScore_SkipsRetryOnBadRecord(t *testing.T) {
	rq := require.New(t)

	scorer := NewBatchScorer(newTestPredictService(t, 0.6))

	bad := validRecord()
	bad.PaymentMethod = "Barter"

	task, err := queue.NewBatchScoreTask(queue.BatchScorePayload{
		BatchID: "batch-2",
		Records: []entity.CustomerRecord{bad},
	})
	rq.NoError(err)

	err = scorer.HandleBatchScore(context.Background(), task)
	rq.Error(err)
	rq.True(errors.Is(err, asynq.SkipRetry))
}

func TestBatchScorer_HandleBatchScore_MalformedPayload(t *testing.T) {
	rq := require.New(t)

	scorer := NewBatchScorer(newTestPredictService(t, 0.6))

	task := asynq.NewTask(queue.TypeBatchScore, []byte("not json"))

	err := scorer.HandleBatchScore(context.Background(), task)
	rq.Error(err)
	rq.True(errors.Is(err, asynq.SkipRetry))
}

func TestCanaryWorker(t *testing.T) {
	rq := require.New(t)

	worker := NewCanaryWorker(newTestPredictService(t, 0.4)).WithInterval(10 * time.Millisecond)
	rq.True(worker.Healthy())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)
	rq.ErrorIs(err, context.DeadlineExceeded)
	rq.True(worker.Healthy())
}

// a failing canary must flip Healthy to false, which the probe server
// surfaces as a 503 on /ready.
func TestCanaryWorker_UnhealthyOnBrokenModel(t *testing.T) {
	rq := require.New(t)

	worker := NewCanaryWorker(newTestPredictServiceWith(t, brokenInferencer{})).
		WithInterval(10 * time.Millisecond)
	rq.True(worker.Healthy())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := worker.Run(ctx)
	rq.ErrorIs(err, context.DeadlineExceeded)
	rq.False(worker.Healthy())
}
