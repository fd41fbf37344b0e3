package queue

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"churnguard/internal/domain/entity"
)

// TypeBatchScore is the task type of an asynchronous batch scoring job.
const TypeBatchScore = "prediction:batch"

// QueueName is the asynq queue batch jobs are routed to.
const QueueName = "scoring"

// BatchScorePayload is the JSON body of a batch scoring task.
type BatchScorePayload struct {
	BatchID  string                  `json:"batch_id"`
	ClientID string                  `json:"client_id,omitempty"`
	Records  []entity.CustomerRecord `json:"records"`
}

// NewBatchScoreTask builds the asynq task for the payload.
func NewBatchScoreTask(payload BatchScorePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	return asynq.NewTask(TypeBatchScore, body, asynq.Queue(QueueName), asynq.MaxRetry(3)), nil
}

// ParseBatchScoreTask decodes a task body back into the payload.
func ParseBatchScoreTask(task *asynq.Task) (BatchScorePayload, error) {
	var payload BatchScorePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BatchScorePayload{}, fmt.Errorf("unmarshal payload: %w", err)
	}

	return payload, nil
}
