package server

import (
	"errors"
	"time"

	"git.appkode.ru/pub/go/failure"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/domain/value"
	"churnguard/internal/infrastructure/queue"
	"churnguard/internal/infrastructure/sample"
	"churnguard/pkg/errcodes"
	"churnguard/pkg/lox"
	"churnguard/pkg/rest"
)

func newDomainCustomer(customer rest.Customer) entity.CustomerRecord {
	return entity.CustomerRecord{
		Contract:         customer.Contract,
		Tenure:           customer.Tenure,
		MonthlyCharges:   customer.MonthlyCharges,
		TotalCharges:     customer.TotalCharges,
		PaymentMethod:    customer.PaymentMethod,
		InternetService:  customer.InternetService,
		PaperlessBilling: customer.PaperlessBilling,
	}
}

func newDomainBatch(request rest.BatchPredictionRequest) (string, []entity.CustomerRecord) {
	return request.ClientID, lox.Map(request.Customers, newDomainCustomer)
}

func newRESTCustomer(record entity.CustomerRecord) rest.Customer {
	return rest.Customer{
		Contract:         record.Contract,
		Tenure:           record.Tenure,
		MonthlyCharges:   record.MonthlyCharges,
		TotalCharges:     record.TotalCharges,
		PaymentMethod:    record.PaymentMethod,
		InternetService:  record.InternetService,
		PaperlessBilling: record.PaperlessBilling,
	}
}

func newRESTPrediction(prediction entity.Prediction) rest.Prediction {
	return rest.Prediction{
		ID:             prediction.ID,
		ClientID:       prediction.ClientID,
		Probability:    prediction.Assessment.Probability,
		Threshold:      prediction.Assessment.Threshold,
		Flagged:        prediction.Assessment.Flagged,
		RiskTier:       prediction.Assessment.Tier.String(),
		Recommendation: prediction.Assessment.Recommendation,
		Confidence:     prediction.Assessment.Confidence,
		ModelVersion:   prediction.ModelVersion,
		CreatedAt:      prediction.CreatedAt.Format(time.RFC3339Nano),
	}
}

func newRESTBatchPrediction(predictions []entity.Prediction) rest.BatchPrediction {
	return rest.BatchPrediction{Predictions: lox.Map(predictions, newRESTPrediction)}
}

func newRESTEnqueuedBatch(batchID string, count int) rest.EnqueuedBatch {
	return rest.EnqueuedBatch{
		TaskID: batchID,
		Queue:  queue.QueueName,
		Count:  count,
	}
}

func newRESTPredictionHistory(predictions []entity.Prediction) rest.PredictionHistory {
	return rest.PredictionHistory{Predictions: lox.Map(predictions, newRESTPrediction)}
}

func newRESTModelInfo(info predict.Info) rest.ModelInfo {
	return rest.ModelInfo{
		Version:      info.Version,
		Threshold:    info.Threshold,
		FeatureCount: value.FeatureCount,
		FeatureOrder: info.Features,
		Metrics:      info.Metrics,
		Hyperparams:  info.Hyperparams,
	}
}

func newRESTTierStats(counts map[entity.RiskTier]int64) rest.TierStats {
	tiers := make(map[string]int64, len(counts))

	var total int64
	for tier, count := range counts {
		tiers[tier.String()] = count
		total += count
	}

	return rest.TierStats{Tiers: tiers, Total: total}
}

func newRESTSample(record entity.CustomerRecord, clientID string, profile sample.Profile) rest.Sample {
	return rest.Sample{
		Customer: newRESTCustomer(record),
		ClientID: clientID,
		Profile:  string(profile),
	}
}

// asFailure classifies domain errors so the transport layer maps them onto
// the right status codes.
func asFailure(err error) error {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		return err
	}

	switch appErr.Code {
	case errcodes.ValidationError, errcodes.EncodingError, errcodes.InvalidCustomer,
		errcodes.InvalidProbability, errcodes.UnknownProfileType, errcodes.InvalidBatchRequest:
		return failure.NewInvalidArgumentErrorFromError(err, failure.WithCode(appErr.Code))
	case errcodes.NotFound, errcodes.PredictionNotFound:
		return failure.NewNotFoundErrorFromError(err, failure.WithCode(appErr.Code))
	default:
		return err
	}
}
