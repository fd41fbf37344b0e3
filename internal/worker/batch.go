package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"churnguard/internal/domain"
	"churnguard/internal/domain/service/predict"
	"churnguard/internal/infrastructure/queue"
)

// BatchScorer consumes queued batch scoring jobs. Side effects (history,
// stats, alerts) run through the same prediction service as the synchronous
// path, so queued batches land in the same history table.
type BatchScorer struct {
	service *predict.Service
}

func NewBatchScorer(service *predict.Service) *BatchScorer {
	return &BatchScorer{service: service}
}

// HandleBatchScore processes one queued batch. A malformed payload is not
// retried; a scoring failure is returned so asynq can retry it.
func (w *BatchScorer) HandleBatchScore(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseBatchScoreTask(task)
	if err != nil {
		return fmt.Errorf("parse batch task: %w: %w", err, asynq.SkipRetry)
	}

	logger(ctx).Info("processing batch scoring job",
		"batch_id", payload.BatchID,
		"records", len(payload.Records),
	)

	predictions, err := w.service.PredictBatch(ctx, payload.ClientID, payload.Records)
	if err != nil {
		// validation and encoding failures are deterministic, retrying
		// the same payload cannot succeed
		if domain.IsAppError(err) {
			return fmt.Errorf("score batch %s: %w: %w", payload.BatchID, err, asynq.SkipRetry)
		}
		return fmt.Errorf("score batch %s: %w", payload.BatchID, err)
	}

	flagged := 0
	for _, p := range predictions {
		if p.Assessment.Flagged {
			flagged++
		}
	}

	logger(ctx).Info("batch scoring job completed",
		"batch_id", payload.BatchID,
		"scored", len(predictions),
		"flagged", flagged,
	)

	return nil
}
