package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/infrastructure/sample"
	"churnguard/pkg/httpx/reply"
	"churnguard/pkg/httpx/req"
	"churnguard/pkg/rest"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
	defaultSampleCount  = 1
	maxSampleCount      = 100
)

type predictionService interface {
	Predict(ctx context.Context, clientID string, record entity.CustomerRecord) (entity.Prediction, error)
	PredictBatch(ctx context.Context, clientID string, records []entity.CustomerRecord) ([]entity.Prediction, error)
	History(ctx context.Context, limit int) ([]entity.Prediction, error)
	HistoryByID(ctx context.Context, id string) (*entity.Prediction, error)
	TierStats(ctx context.Context) (map[entity.RiskTier]int64, error)
	ModelInfo() predict.Info
}

type batchEnqueuer interface {
	EnqueueBatch(ctx context.Context, clientID string, records []entity.CustomerRecord) (string, error)
}

type sampleGenerator interface {
	Generate(profile sample.Profile) (entity.CustomerRecord, string, error)
}

type PredictionServer struct {
	predictionService predictionService
	enqueuer          batchEnqueuer
	samples           sampleGenerator
	encoderCategories map[string]map[string]int
}

func NewPredictionServer(
	predictionService predictionService,
	enqueuer batchEnqueuer,
	samples sampleGenerator,
	encoderCategories map[string]map[string]int,
) PredictionServer {
	return PredictionServer{
		predictionService: predictionService,
		enqueuer:          enqueuer,
		samples:           samples,
		encoderCategories: encoderCategories,
	}
}

func (s PredictionServer) postV1Prediction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.PredictionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	prediction, err := s.predictionService.Predict(ctx, request.ClientID, newDomainCustomer(request.Customer))
	if err != nil {
		return asFailure(fmt.Errorf("predictionService.Predict: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPrediction(prediction))

	return nil
}

func (s PredictionServer) postV1PredictionBatch(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.BatchPredictionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	clientID, records := newDomainBatch(request)

	predictions, err := s.predictionService.PredictBatch(ctx, clientID, records)
	if err != nil {
		return asFailure(fmt.Errorf("predictionService.PredictBatch: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTBatchPrediction(predictions))

	return nil
}

func (s PredictionServer) postV1PredictionBatchAsync(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.BatchPredictionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	clientID, records := newDomainBatch(request)

	batchID, err := s.enqueuer.EnqueueBatch(ctx, clientID, records)
	if err != nil {
		return asFailure(fmt.Errorf("enqueuer.EnqueueBatch: %w", err))
	}

	reply.JSON(ctx, w, http.StatusAccepted, newRESTEnqueuedBatch(batchID, len(records)))

	return nil
}

func (s PredictionServer) getV1Predictions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit := queryInt(r, "limit", defaultHistoryLimit, maxHistoryLimit)

	predictions, err := s.predictionService.History(ctx, limit)
	if err != nil {
		return asFailure(fmt.Errorf("predictionService.History: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPredictionHistory(predictions))

	return nil
}

func (s PredictionServer) getV1Prediction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	prediction, err := s.predictionService.HistoryByID(ctx, r.PathValue("id"))
	if err != nil {
		return asFailure(fmt.Errorf("predictionService.HistoryByID: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPrediction(*prediction))

	return nil
}

func (s PredictionServer) getV1Model(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, newRESTModelInfo(s.predictionService.ModelInfo()))

	return nil
}

func (s PredictionServer) getV1ModelFeatures(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	info := s.predictionService.ModelInfo()

	reply.JSON(ctx, w, http.StatusOK, rest.FeatureInfo{
		FeatureOrder: info.Features,
		Categories:   s.encoderCategories,
		Constraints: map[string]string{
			"tenure":         "integer >= 0, months",
			"monthlyCharges": "float > 0",
			"totalCharges":   "float >= 0",
		},
	})

	return nil
}

func (s PredictionServer) getV1Stats(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	counts, err := s.predictionService.TierStats(ctx)
	if err != nil {
		return asFailure(fmt.Errorf("predictionService.TierStats: %w", err))
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTTierStats(counts))

	return nil
}

func (s PredictionServer) getV1Samples(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	profile := sample.Profile(r.URL.Query().Get("profile"))
	if profile == "" {
		profile = sample.ProfileRandom
	}

	count := queryInt(r, "count", defaultSampleCount, maxSampleCount)

	samples := make([]rest.Sample, 0, count)
	for i := 0; i < count; i++ {
		record, clientID, err := s.samples.Generate(profile)
		if err != nil {
			return asFailure(fmt.Errorf("samples.Generate: %w", err))
		}
		samples = append(samples, newRESTSample(record, clientID, profile))
	}

	reply.JSON(ctx, w, http.StatusOK, samples)

	return nil
}

func queryInt(r *http.Request, name string, fallback, ceiling int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed < 1 {
		return fallback
	}
	if parsed > ceiling {
		return ceiling
	}

	return parsed
}
