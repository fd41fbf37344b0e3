package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/xid"

	"churnguard/internal/domain"
	"churnguard/internal/domain/entity"
	"churnguard/pkg/errcodes"
)

// Client enqueues batch scoring jobs.
type Client struct {
	asynq *asynq.Client
}

func NewClient(redisAddr, username, password string, db int) *Client {
	return &Client{
		asynq: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		}),
	}
}

// EnqueueBatch queues records for background scoring and returns the batch id
// the caller can correlate stored predictions with.
func (c *Client) EnqueueBatch(ctx context.Context, clientID string, records []entity.CustomerRecord) (string, error) {
	if len(records) == 0 {
		return "", domain.NewError(errcodes.InvalidBatchRequest, "batch holds no customers")
	}

	batchID := xid.New().String()

	task, err := NewBatchScoreTask(BatchScorePayload{
		BatchID:  batchID,
		ClientID: clientID,
		Records:  records,
	})
	if err != nil {
		return "", domain.WrapError(err, errcodes.InternalServerError, "failed to build batch task")
	}

	info, err := c.asynq.EnqueueContext(ctx, task)
	if err != nil {
		return "", domain.WrapError(err, errcodes.InternalServerError, "failed to enqueue batch")
	}

	logger(ctx).Info("batch scoring job enqueued",
		"batch_id", batchID,
		"task_id", info.ID,
		"records", len(records),
	)

	return batchID, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	if err := c.asynq.Close(); err != nil {
		return fmt.Errorf("asynq close: %w", err)
	}
	return nil
}
